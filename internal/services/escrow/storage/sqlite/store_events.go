package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/wolfedge/escrow/internal/services/escrow/domain/escrow"
	"github.com/wolfedge/escrow/internal/services/escrow/storage"
)

// ListEvents returns the escrow's full history in version order. An escrow
// id without a metadata row yields storage.ErrNotFound; a known escrow
// always has at least its founding event.
func (s *Store) ListEvents(ctx context.Context, escrowID string) ([]escrow.Event, error) {
	if err := ctxError(ctx); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	if _, err := s.GetMetadata(ctx, escrowID); err != nil {
		return nil, err
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, escrow_id, event_type, actor_id, payload_json, version, created_at
FROM escrow_events WHERE escrow_id = ? ORDER BY version ASC`, escrowID)
	if err != nil {
		return nil, storageError("list events", err)
	}
	defer rows.Close()

	var events []escrow.Event
	for rows.Next() {
		evt, err := scanEvent(rows)
		if err != nil {
			return nil, storageError("scan event", err)
		}
		events = append(events, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("iterate events", err)
	}
	return events, nil
}

// ListAllEvents returns the global feed: every event across all escrows in
// append order, joined with the owning escrow's terms.
func (s *Store) ListAllEvents(ctx context.Context) ([]storage.EventWithMetadata, error) {
	if err := ctxError(ctx); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT e.id, e.escrow_id, e.event_type, e.actor_id, e.payload_json, e.version, e.created_at,
       m.amount, m.buyer_id, m.seller_id, m.arbiter_id, m.created_at
FROM escrow_events e
JOIN escrow_metadata m ON m.escrow_id = e.escrow_id
ORDER BY e.id ASC`)
	if err != nil {
		return nil, storageError("list all events", err)
	}
	defer rows.Close()

	var entries []storage.EventWithMetadata
	for rows.Next() {
		var entry storage.EventWithMetadata
		var payload sql.NullString
		var evtCreated, metaCreated int64
		if err := rows.Scan(
			&entry.Event.ID, &entry.Event.EscrowID, (*string)(&entry.Event.Type),
			&entry.Event.ActorID, &payload, &entry.Event.Version, &evtCreated,
			&entry.Metadata.Amount, &entry.Metadata.BuyerID, &entry.Metadata.SellerID,
			&entry.Metadata.ArbiterID, &metaCreated,
		); err != nil {
			return nil, storageError("scan feed entry", err)
		}
		if payload.Valid {
			entry.Event.PayloadJSON = []byte(payload.String)
		}
		entry.Event.CreatedAt = fromMillis(evtCreated)
		entry.Metadata.ID = entry.Event.EscrowID
		entry.Metadata.CreatedAt = fromMillis(metaCreated)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("iterate feed", err)
	}
	return entries, nil
}

// AppendEvent inserts one immutable event. A positive evt.Version is written
// as-is; the UNIQUE(escrow_id, version) constraint turns a concurrently
// claimed version into storage.ErrVersionConflict. A zero version lets the
// store allocate max(version)+1 inside the transaction.
func (s *Store) AppendEvent(ctx context.Context, evt escrow.Event) (escrow.Event, error) {
	if err := ctxError(ctx); err != nil {
		return escrow.Event{}, err
	}
	if s == nil || s.sqlDB == nil {
		return escrow.Event{}, fmt.Errorf("storage is not configured")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return escrow.Event{}, storageError("begin tx", err)
	}
	defer tx.Rollback()

	if evt.CreatedAt.IsZero() {
		evt.CreatedAt = s.now().UTC().Truncate(timePrecision)
	}
	evt.CreatedAt = evt.CreatedAt.UTC().Truncate(timePrecision)

	stored, err := appendEventTx(ctx, tx, evt)
	if err != nil {
		return escrow.Event{}, err
	}
	if err := tx.Commit(); err != nil {
		return escrow.Event{}, storageError("commit", err)
	}
	return stored, nil
}

// appendEventTx writes an event inside an open transaction. CreateEscrow
// reuses it so the founding event shares the metadata transaction.
func appendEventTx(ctx context.Context, tx *sql.Tx, evt escrow.Event) (escrow.Event, error) {
	if evt.Version <= 0 {
		var current sql.NullInt64
		if err := tx.QueryRowContext(ctx,
			"SELECT MAX(version) FROM escrow_events WHERE escrow_id = ?", evt.EscrowID,
		).Scan(&current); err != nil {
			return escrow.Event{}, storageError("load current version", err)
		}
		evt.Version = current.Int64 + 1
	}

	result, err := tx.ExecContext(ctx, `
INSERT INTO escrow_events (escrow_id, event_type, actor_id, payload_json, version, created_at)
VALUES (?, ?, ?, ?, ?, ?)`,
		evt.EscrowID, string(evt.Type), evt.ActorID, payloadColumn(evt.PayloadJSON), evt.Version, toMillis(evt.CreatedAt),
	)
	if err != nil {
		if isConstraintError(err) {
			return escrow.Event{}, storage.ErrVersionConflict
		}
		return escrow.Event{}, storageError("append event", err)
	}

	rowID, err := result.LastInsertId()
	if err != nil {
		return escrow.Event{}, storageError("event row id", err)
	}
	evt.ID = rowID
	return evt, nil
}

// payloadColumn maps an absent payload to NULL rather than an empty string.
func payloadColumn(payload []byte) any {
	if len(payload) == 0 {
		return nil
	}
	return string(payload)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (escrow.Event, error) {
	var evt escrow.Event
	var payload sql.NullString
	var createdAt int64
	if err := row.Scan(&evt.ID, &evt.EscrowID, (*string)(&evt.Type), &evt.ActorID, &payload, &evt.Version, &createdAt); err != nil {
		return escrow.Event{}, err
	}
	if payload.Valid {
		evt.PayloadJSON = []byte(payload.String)
	}
	evt.CreatedAt = fromMillis(createdAt)
	return evt, nil
}
