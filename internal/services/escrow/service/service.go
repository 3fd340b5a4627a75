// Package service coordinates escrow commands against the event store.
//
// Submit is the concurrency controller from the service's design: it takes
// per-escrow exclusive access, derives state by replay, runs authorization
// and transition checks, and appends exactly one event. The lock spans the
// whole read-validate-append sequence so two concurrent callers can never
// both act on the same observed state.
package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/wolfedge/escrow/internal/platform/errors"
	"github.com/wolfedge/escrow/internal/services/escrow/domain/escrow"
	"github.com/wolfedge/escrow/internal/services/escrow/storage"
)

const defaultLockTimeout = 5 * time.Second

// Service exposes the escrow operations consumed by adapters.
type Service struct {
	store       storage.EventStore
	locks       *escrowLocks
	lockTimeout time.Duration
	tracer      trace.Tracer
}

// Option configures service behavior.
type Option func(*Service)

// WithLockTimeout bounds how long a submission waits for exclusive access.
func WithLockTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		if timeout > 0 {
			s.lockTimeout = timeout
		}
	}
}

// New builds a Service around an event store.
func New(store storage.EventStore, opts ...Option) *Service {
	svc := &Service{
		store:       store,
		locks:       newEscrowLocks(),
		lockTimeout: defaultLockTimeout,
		tracer:      otel.Tracer("escrow/service"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// CreateResult carries the outcome of escrow creation.
type CreateResult struct {
	Metadata escrow.Metadata
	Event    escrow.Event
}

// CreateEscrow validates terms and persists the metadata together with its
// founding EscrowProposed event.
func (s *Service) CreateEscrow(ctx context.Context, terms escrow.NewEscrow) (CreateResult, error) {
	ctx, span := s.tracer.Start(ctx, "escrow.create")
	defer span.End()

	meta, founding, err := s.store.CreateEscrow(ctx, terms)
	if err != nil {
		return CreateResult{}, err
	}
	log.Printf("escrow created escrow_id=%s amount=%d buyer_id=%d seller_id=%d arbiter_id=%d",
		meta.ID, meta.Amount, meta.BuyerID, meta.SellerID, meta.ArbiterID)
	return CreateResult{Metadata: meta, Event: founding}, nil
}

// SubmitResult carries the outcome of a successful submission.
type SubmitResult struct {
	PreviousStatus escrow.Status
	NewStatus      escrow.Status
	Event          escrow.Event
}

// Version returns the version of the appended event.
func (r SubmitResult) Version() int64 {
	return r.Event.Version
}

// Submit runs one command through the full pipeline: exclusive access, state
// replay, authorization, transition validation, append. Any failure leaves
// the event stream untouched, and the lock never outlives the call.
func (s *Service) Submit(ctx context.Context, escrowID string, action escrow.Action, actorID int64) (SubmitResult, error) {
	ctx, span := s.tracer.Start(ctx, "escrow.submit", trace.WithAttributes(
		attribute.String("escrow.id", escrowID),
		attribute.String("escrow.action", string(action)),
	))
	defer span.End()

	release, err := s.locks.acquire(ctx, escrowID, s.lockTimeout)
	if err != nil {
		return SubmitResult{}, err
	}
	defer release()

	meta, err := s.store.GetMetadata(ctx, escrowID)
	if err != nil {
		return SubmitResult{}, err
	}

	events, err := s.store.ListEvents(ctx, escrowID)
	if err != nil {
		return SubmitResult{}, err
	}
	state := escrow.Fold(events)

	if !escrow.CanPerform(action, actorID, meta.Roles()) {
		return SubmitResult{}, apperrors.WithMetadata(
			apperrors.CodePermissionDenied,
			fmt.Sprintf("user %d may not perform %s", actorID, action),
			map[string]string{
				"ActorID": fmt.Sprintf("%d", actorID),
				"Action":  string(action),
			},
		)
	}

	if !escrow.IsTransitionAllowed(state.Status, action) {
		return SubmitResult{}, apperrors.WithMetadata(
			apperrors.CodeInvalidTransition,
			fmt.Sprintf("action %s is not allowed from status %s", action, state.Status),
			map[string]string{
				"Status": string(state.Status),
				"Action": string(action),
			},
		)
	}

	stored, err := s.store.AppendEvent(ctx, escrow.Event{
		EscrowID: escrowID,
		Type:     escrow.EventTypeForAction(action),
		ActorID:  actorID,
		Version:  state.Version + 1,
	})
	if err != nil {
		return SubmitResult{}, err
	}

	log.Printf("escrow event appended escrow_id=%s event_type=%s actor_id=%d version=%d previous_status=%s new_status=%s",
		escrowID, stored.Type, actorID, stored.Version, state.Status, action.Status())

	return SubmitResult{
		PreviousStatus: state.Status,
		NewStatus:      action.Status(),
		Event:          stored,
	}, nil
}

// GetMetadata returns the immutable terms of an escrow.
func (s *Service) GetMetadata(ctx context.Context, escrowID string) (escrow.Metadata, error) {
	ctx, span := s.tracer.Start(ctx, "escrow.get_metadata")
	defer span.End()

	return s.store.GetMetadata(ctx, escrowID)
}

// GetState derives the current state of an escrow by replaying its history.
func (s *Service) GetState(ctx context.Context, escrowID string) (escrow.State, error) {
	ctx, span := s.tracer.Start(ctx, "escrow.get_state")
	defer span.End()

	events, err := s.store.ListEvents(ctx, escrowID)
	if err != nil {
		return escrow.State{}, err
	}
	return escrow.Fold(events), nil
}

// ListEvents returns the escrow's full ordered history.
func (s *Service) ListEvents(ctx context.Context, escrowID string) ([]escrow.Event, error) {
	ctx, span := s.tracer.Start(ctx, "escrow.list_events")
	defer span.End()

	return s.store.ListEvents(ctx, escrowID)
}

// ListAllEvents returns the global feed of events across every escrow, each
// joined with its escrow's terms.
func (s *Service) ListAllEvents(ctx context.Context) ([]storage.EventWithMetadata, error) {
	ctx, span := s.tracer.Start(ctx, "escrow.list_all_events")
	defer span.End()

	return s.store.ListAllEvents(ctx)
}
