// Package storage defines the persistence contracts for the escrow service.
package storage

import (
	"context"

	apperrors "github.com/wolfedge/escrow/internal/platform/errors"
	"github.com/wolfedge/escrow/internal/services/escrow/domain/escrow"
)

// ErrNotFound indicates a requested persistence record is missing.
// Callers use this to differentiate between legitimate "no such escrow"
// states and transport or data corruption failures.
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")

// ErrVersionConflict indicates a concurrent append already claimed the event
// version. It is retryable: the loser re-reads and re-validates.
var ErrVersionConflict = apperrors.New(apperrors.CodeContention, "event version already claimed")

// EventStore is the durable, append-only record of escrow history and the
// single source of truth for derived state. Events and metadata are never
// updated or deleted.
type EventStore interface {
	// CreateEscrow validates terms against the user directory and atomically
	// writes the metadata row together with its founding EscrowProposed event
	// (version 1). Neither exists without the other.
	CreateEscrow(ctx context.Context, terms escrow.NewEscrow) (escrow.Metadata, escrow.Event, error)

	// GetMetadata loads the immutable terms of an escrow, or ErrNotFound.
	GetMetadata(ctx context.Context, escrowID string) (escrow.Metadata, error)

	// ListEvents returns the escrow's full history in version order, or
	// ErrNotFound when no metadata exists for the id.
	ListEvents(ctx context.Context, escrowID string) ([]escrow.Event, error)

	// AppendEvent inserts one event. When evt.Version is positive it is used
	// as-is and a concurrent claim of the same version fails with
	// ErrVersionConflict; when zero, the store allocates max(version)+1.
	AppendEvent(ctx context.Context, evt escrow.Event) (escrow.Event, error)

	// ListAllEvents returns every event across all escrows in append order,
	// each joined with its escrow's immutable terms.
	ListAllEvents(ctx context.Context) ([]EventWithMetadata, error)
}

// EventWithMetadata pairs a journal entry with the terms of the escrow it
// belongs to. The global feed serves these so consumers need no second read
// per event.
type EventWithMetadata struct {
	Event    escrow.Event
	Metadata escrow.Metadata
}

// UserDirectory answers existence checks against the known-user relation.
// Directory management itself lives outside this service.
type UserDirectory interface {
	// EnsureUser records a user id so escrow participants can reference it.
	EnsureUser(ctx context.Context, userID int64, displayName string) error

	// UserExists reports whether a user id is known.
	UserExists(ctx context.Context, userID int64) (bool, error)
}
