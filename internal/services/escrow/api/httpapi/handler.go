// Package httpapi is the JSON adapter in front of the escrow service. It
// stays deliberately thin: decode input, call the service, translate coded
// errors to HTTP statuses. All business rules live behind the service.
package httpapi

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	apperrors "github.com/wolfedge/escrow/internal/platform/errors"
	"github.com/wolfedge/escrow/internal/services/escrow/domain/escrow"
	"github.com/wolfedge/escrow/internal/services/escrow/service"
	"github.com/wolfedge/escrow/internal/services/escrow/storage"
)

// EscrowService is the surface of the service layer consumed by the adapter.
type EscrowService interface {
	CreateEscrow(ctx context.Context, terms escrow.NewEscrow) (service.CreateResult, error)
	Submit(ctx context.Context, escrowID string, action escrow.Action, actorID int64) (service.SubmitResult, error)
	GetMetadata(ctx context.Context, escrowID string) (escrow.Metadata, error)
	GetState(ctx context.Context, escrowID string) (escrow.State, error)
	ListEvents(ctx context.Context, escrowID string) ([]escrow.Event, error)
	ListAllEvents(ctx context.Context) ([]storage.EventWithMetadata, error)
}

// Handler serves the escrow JSON API.
type Handler struct {
	svc    EscrowService
	router http.Handler
}

// New builds the handler and its route table.
func New(svc EscrowService) *Handler {
	h := &Handler{svc: svc}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", h.health)
	r.Get("/events", h.listAllEvents)
	r.Route("/escrows", func(r chi.Router) {
		r.Post("/", h.createEscrow)
		r.Get("/{id}", h.getEscrow)
		r.Post("/{id}/actions", h.submitAction)
		r.Get("/{id}/state", h.getState)
		r.Get("/{id}/events", h.listEvents)
	})

	h.router = r
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type createRequest struct {
	Amount    int64 `json:"amount"`
	BuyerID   int64 `json:"buyer_id"`
	SellerID  int64 `json:"seller_id"`
	ArbiterID int64 `json:"arbiter_id"`
}

type escrowResponse struct {
	ID        string        `json:"id"`
	Amount    int64         `json:"amount"`
	BuyerID   int64         `json:"buyer_id"`
	SellerID  int64         `json:"seller_id"`
	ArbiterID int64         `json:"arbiter_id"`
	Status    escrow.Status `json:"status"`
	Version   int64         `json:"version"`
	CreatedAt string        `json:"created_at"`
}

func (h *Handler) createEscrow(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.Wrap(apperrors.CodeInvalidRequest, "invalid request body", err))
		return
	}

	result, err := h.svc.CreateEscrow(r.Context(), escrow.NewEscrow{
		Amount:    req.Amount,
		BuyerID:   req.BuyerID,
		SellerID:  req.SellerID,
		ArbiterID: req.ArbiterID,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	meta := result.Metadata
	writeJSON(w, http.StatusCreated, escrowResponse{
		ID:        meta.ID,
		Amount:    meta.Amount,
		BuyerID:   meta.BuyerID,
		SellerID:  meta.SellerID,
		ArbiterID: meta.ArbiterID,
		Status:    escrow.StatusProposed,
		Version:   result.Event.Version,
		CreatedAt: meta.CreatedAt.UTC().Format(timeLayout),
	})
}

type metadataResponse struct {
	ID        string `json:"id"`
	Amount    int64  `json:"amount"`
	BuyerID   int64  `json:"buyer_id"`
	SellerID  int64  `json:"seller_id"`
	ArbiterID int64  `json:"arbiter_id"`
	CreatedAt string `json:"created_at"`
}

func (h *Handler) getEscrow(w http.ResponseWriter, r *http.Request) {
	escrowID := chi.URLParam(r, "id")

	meta, err := h.svc.GetMetadata(r.Context(), escrowID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, metadataResponse{
		ID:        meta.ID,
		Amount:    meta.Amount,
		BuyerID:   meta.BuyerID,
		SellerID:  meta.SellerID,
		ArbiterID: meta.ArbiterID,
		CreatedAt: meta.CreatedAt.UTC().Format(timeLayout),
	})
}

type actionRequest struct {
	Action  string `json:"action"`
	ActorID int64  `json:"actor_id"`
}

type actionResponse struct {
	EscrowID       string        `json:"escrow_id"`
	PreviousStatus escrow.Status `json:"previous_status"`
	NewStatus      escrow.Status `json:"new_status"`
	Version        int64         `json:"version"`
	Event          eventResponse `json:"event"`
}

func (h *Handler) submitAction(w http.ResponseWriter, r *http.Request) {
	escrowID := chi.URLParam(r, "id")

	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.Wrap(apperrors.CodeInvalidRequest, "invalid request body", err))
		return
	}
	action, ok := escrow.NormalizeAction(req.Action)
	if !ok {
		writeError(w, apperrors.WithMetadata(apperrors.CodeInvalidRequest,
			"unknown action", map[string]string{"Action": req.Action}))
		return
	}
	if req.ActorID < 0 {
		writeError(w, apperrors.New(apperrors.CodeInvalidRequest, "actor_id must be non-negative"))
		return
	}

	result, err := h.svc.Submit(r.Context(), escrowID, action, req.ActorID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, actionResponse{
		EscrowID:       escrowID,
		PreviousStatus: result.PreviousStatus,
		NewStatus:      result.NewStatus,
		Version:        result.Event.Version,
		Event:          toEventResponse(result.Event),
	})
}

type stateResponse struct {
	EscrowID string        `json:"escrow_id"`
	Status   escrow.Status `json:"status"`
	BuyerID  *int64        `json:"buyer_id"`
	SellerID *int64        `json:"seller_id"`
	Amount   *int64        `json:"amount"`
	Version  int64         `json:"version"`
	Final    bool          `json:"final"`
}

func (h *Handler) getState(w http.ResponseWriter, r *http.Request) {
	escrowID := chi.URLParam(r, "id")

	state, err := h.svc.GetState(r.Context(), escrowID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stateResponse{
		EscrowID: escrowID,
		Status:   state.Status,
		BuyerID:  state.BuyerID,
		SellerID: state.SellerID,
		Amount:   state.Amount,
		Version:  state.Version,
		Final:    state.Final,
	})
}

type eventResponse struct {
	ID        int64            `json:"id"`
	Type      escrow.EventType `json:"type"`
	ActorID   int64            `json:"actor_id"`
	Payload   json.RawMessage  `json:"payload"`
	Version   int64            `json:"version"`
	CreatedAt string           `json:"created_at"`
}

type eventsResponse struct {
	EscrowID string          `json:"escrow_id"`
	Events   []eventResponse `json:"events"`
}

func (h *Handler) listEvents(w http.ResponseWriter, r *http.Request) {
	escrowID := chi.URLParam(r, "id")

	events, err := h.svc.ListEvents(r.Context(), escrowID)
	if err != nil {
		writeError(w, err)
		return
	}

	out := eventsResponse{EscrowID: escrowID, Events: make([]eventResponse, 0, len(events))}
	for _, evt := range events {
		out.Events = append(out.Events, toEventResponse(evt))
	}
	writeJSON(w, http.StatusOK, out)
}

type feedEventResponse struct {
	eventResponse
	EscrowID  string `json:"escrow_id"`
	Amount    int64  `json:"amount"`
	BuyerID   int64  `json:"buyer_id"`
	SellerID  int64  `json:"seller_id"`
	ArbiterID int64  `json:"arbiter_id"`
}

type feedResponse struct {
	Events []feedEventResponse `json:"events"`
}

// listAllEvents serves the global feed: every event of every escrow in append
// order, joined with the owning escrow's terms.
func (h *Handler) listAllEvents(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.ListAllEvents(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	out := feedResponse{Events: make([]feedEventResponse, 0, len(entries))}
	for _, entry := range entries {
		out.Events = append(out.Events, feedEventResponse{
			eventResponse: toEventResponse(entry.Event),
			EscrowID:      entry.Event.EscrowID,
			Amount:        entry.Metadata.Amount,
			BuyerID:       entry.Metadata.BuyerID,
			SellerID:      entry.Metadata.SellerID,
			ArbiterID:     entry.Metadata.ArbiterID,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

const timeLayout = "2006-01-02T15:04:05.000Z07:00"

func toEventResponse(evt escrow.Event) eventResponse {
	var payload json.RawMessage
	if len(evt.PayloadJSON) > 0 {
		payload = json.RawMessage(evt.PayloadJSON)
	}
	return eventResponse{
		ID:        evt.ID,
		Type:      evt.Type,
		ActorID:   evt.ActorID,
		Payload:   payload,
		Version:   evt.Version,
		CreatedAt: evt.CreatedAt.UTC().Format(timeLayout),
	}
}

type errorBody struct {
	Code      apperrors.Code `json:"code"`
	Message   string         `json:"message"`
	Retryable bool           `json:"retryable"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func writeError(w http.ResponseWriter, err error) {
	code := apperrors.CodeOf(err)
	message := err.Error()
	if code == apperrors.CodeStorage || code == apperrors.CodeUnknown {
		// Internal details stay in the logs.
		log.Printf("escrow api internal error code=%s err=%v", code, err)
		message = "internal error"
	}
	writeJSON(w, code.HTTPStatus(), errorResponse{Error: errorBody{
		Code:      code,
		Message:   message,
		Retryable: code.Retryable(),
	}})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("escrow api encode response: %v", err)
	}
}
