package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	apperrors "github.com/wolfedge/escrow/internal/platform/errors"
	"github.com/wolfedge/escrow/internal/platform/id"
	"github.com/wolfedge/escrow/internal/services/escrow/domain/escrow"
	"github.com/wolfedge/escrow/internal/services/escrow/storage"
)

// CreateEscrow validates terms and atomically writes the metadata row with
// its founding EscrowProposed event. The transaction guarantees metadata
// never exists without version 1 of its history, and vice versa.
func (s *Store) CreateEscrow(ctx context.Context, terms escrow.NewEscrow) (escrow.Metadata, escrow.Event, error) {
	if err := ctxError(ctx); err != nil {
		return escrow.Metadata{}, escrow.Event{}, err
	}
	if s == nil || s.sqlDB == nil {
		return escrow.Metadata{}, escrow.Event{}, fmt.Errorf("storage is not configured")
	}
	if err := terms.Validate(); err != nil {
		return escrow.Metadata{}, escrow.Event{}, err
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return escrow.Metadata{}, escrow.Event{}, storageError("begin tx", err)
	}
	defer tx.Rollback()

	for _, userID := range []int64{terms.BuyerID, terms.SellerID, terms.ArbiterID} {
		exists, err := userExistsTx(ctx, tx, userID)
		if err != nil {
			return escrow.Metadata{}, escrow.Event{}, storageError("check user", err)
		}
		if !exists {
			return escrow.Metadata{}, escrow.Event{}, apperrors.WithMetadata(
				apperrors.CodeEscrowUnknownUser,
				fmt.Sprintf("user %d does not exist", userID),
				map[string]string{"UserID": fmt.Sprintf("%d", userID)},
			)
		}
	}

	newID := s.newID
	if newID == nil {
		newID = id.NewID
	}
	escrowID, err := newID()
	if err != nil {
		return escrow.Metadata{}, escrow.Event{}, storageError("generate escrow id", err)
	}
	createdAt := s.now().UTC().Truncate(timePrecision)

	meta := escrow.Metadata{
		ID:        escrowID,
		Amount:    terms.Amount,
		BuyerID:   terms.BuyerID,
		SellerID:  terms.SellerID,
		ArbiterID: terms.ArbiterID,
		CreatedAt: createdAt,
	}

	if _, err := tx.ExecContext(ctx, `
INSERT INTO escrow_metadata (escrow_id, amount, buyer_id, seller_id, arbiter_id, created_at)
VALUES (?, ?, ?, ?, ?, ?)`,
		meta.ID, meta.Amount, meta.BuyerID, meta.SellerID, meta.ArbiterID, toMillis(meta.CreatedAt),
	); err != nil {
		return escrow.Metadata{}, escrow.Event{}, storageError("insert metadata", err)
	}

	payload, err := escrow.EncodeProposedPayload(terms.BuyerID, terms.SellerID, terms.Amount)
	if err != nil {
		return escrow.Metadata{}, escrow.Event{}, storageError("encode payload", err)
	}

	founding := escrow.Event{
		EscrowID:    meta.ID,
		Type:        escrow.EventProposed,
		ActorID:     terms.BuyerID,
		PayloadJSON: payload,
		Version:     1,
		CreatedAt:   createdAt,
	}
	stored, err := appendEventTx(ctx, tx, founding)
	if err != nil {
		return escrow.Metadata{}, escrow.Event{}, err
	}

	if err := tx.Commit(); err != nil {
		return escrow.Metadata{}, escrow.Event{}, storageError("commit", err)
	}
	return meta, stored, nil
}

// GetMetadata loads the immutable terms of an escrow.
func (s *Store) GetMetadata(ctx context.Context, escrowID string) (escrow.Metadata, error) {
	if err := ctxError(ctx); err != nil {
		return escrow.Metadata{}, err
	}
	if s == nil || s.sqlDB == nil {
		return escrow.Metadata{}, fmt.Errorf("storage is not configured")
	}

	var meta escrow.Metadata
	var createdAt int64
	err := s.sqlDB.QueryRowContext(ctx, `
SELECT escrow_id, amount, buyer_id, seller_id, arbiter_id, created_at
FROM escrow_metadata WHERE escrow_id = ?`, escrowID,
	).Scan(&meta.ID, &meta.Amount, &meta.BuyerID, &meta.SellerID, &meta.ArbiterID, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return escrow.Metadata{}, storage.ErrNotFound
	}
	if err != nil {
		return escrow.Metadata{}, storageError("load metadata", err)
	}
	meta.CreatedAt = fromMillis(createdAt)
	return meta, nil
}

// EnsureUser records a user id in the directory relation. Re-registering an
// existing id is a no-op.
func (s *Store) EnsureUser(ctx context.Context, userID int64, displayName string) error {
	if err := ctxError(ctx); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if _, err := s.sqlDB.ExecContext(ctx, `
INSERT OR IGNORE INTO users (id, display_name, created_at) VALUES (?, ?, ?)`,
		userID, displayName, toMillis(s.now()),
	); err != nil {
		return storageError("ensure user", err)
	}
	return nil
}

// UserExists reports whether a user id is known to the directory.
func (s *Store) UserExists(ctx context.Context, userID int64) (bool, error) {
	if err := ctxError(ctx); err != nil {
		return false, err
	}
	if s == nil || s.sqlDB == nil {
		return false, fmt.Errorf("storage is not configured")
	}
	var count int
	if err := s.sqlDB.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE id = ?", userID).Scan(&count); err != nil {
		return false, storageError("check user", err)
	}
	return count > 0, nil
}

func userExistsTx(ctx context.Context, tx *sql.Tx, userID int64) (bool, error) {
	var count int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE id = ?", userID).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}
