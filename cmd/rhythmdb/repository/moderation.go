package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/harukilab/rhythmdb/cmd/rhythmdb/models"
	"github.com/harukilab/rhythmdb/common/db"
)

// ModerationRepository handles the pending/rejected alias tables and the
// admin allow-list
type ModerationRepository struct {
	db *db.DB
}

// NewModerationRepository creates a new moderation repository
func NewModerationRepository(db *db.DB) *ModerationRepository {
	return &ModerationRepository{db: db}
}

// IsAdmin reports whether an IM user is on the alias admin allow-list
func (r *ModerationRepository) IsAdmin(ctx context.Context, imID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM alias_admins WHERE im_id = $1)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, imID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check alias admin: %w", err)
	}

	return exists, nil
}

// InsertPending queues an alias submission for review
func (r *ModerationRepository) InsertPending(ctx context.Context, aliasType string, aliasTypeID int, alias, submittedBy string) (*models.PendingAlias, error) {
	query := `
		INSERT INTO pending_aliases (alias_type, alias_type_id, alias, submitted_by, submitted_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	pending := &models.PendingAlias{
		AliasType:   aliasType,
		AliasTypeID: aliasTypeID,
		Alias:       alias,
		SubmittedBy: submittedBy,
		SubmittedAt: time.Now().UTC(),
	}
	err := r.db.QueryRow(ctx, query,
		pending.AliasType,
		pending.AliasTypeID,
		pending.Alias,
		pending.SubmittedBy,
		pending.SubmittedAt,
	).Scan(&pending.ID)
	if err != nil {
		return nil, fmt.Errorf("insert pending alias: %w", err)
	}

	return pending, nil
}

// GetPending fetches one pending submission. Returns (nil, nil) when the
// id is unknown.
func (r *ModerationRepository) GetPending(ctx context.Context, pendingID int64) (*models.PendingAlias, error) {
	query := `
		SELECT id, alias_type, alias_type_id, alias, submitted_by, submitted_at
		FROM pending_aliases
		WHERE id = $1
	`

	pending := &models.PendingAlias{}
	err := r.db.QueryRow(ctx, query, pendingID).Scan(
		&pending.ID,
		&pending.AliasType,
		&pending.AliasTypeID,
		&pending.Alias,
		&pending.SubmittedBy,
		&pending.SubmittedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get pending alias: %w", err)
	}

	return pending, nil
}

// ListPending returns the whole review queue, oldest first
func (r *ModerationRepository) ListPending(ctx context.Context) ([]models.PendingAlias, error) {
	query := `
		SELECT id, alias_type, alias_type_id, alias, submitted_by, submitted_at
		FROM pending_aliases
		ORDER BY id
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list pending aliases: %w", err)
	}
	defer rows.Close()

	pending := []models.PendingAlias{}
	for rows.Next() {
		var p models.PendingAlias
		err := rows.Scan(&p.ID, &p.AliasType, &p.AliasTypeID, &p.Alias, &p.SubmittedBy, &p.SubmittedAt)
		if err != nil {
			return nil, fmt.Errorf("scan pending alias: %w", err)
		}
		pending = append(pending, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending aliases: %w", err)
	}

	return pending, nil
}

// DeletePending removes a pending submission after review
func (r *ModerationRepository) DeletePending(ctx context.Context, pendingID int64) error {
	query := `DELETE FROM pending_aliases WHERE id = $1`

	if _, err := r.db.Exec(ctx, query, pendingID); err != nil {
		return fmt.Errorf("delete pending alias: %w", err)
	}

	return nil
}

// InsertRejected records a rejected submission under its original pending id
func (r *ModerationRepository) InsertRejected(ctx context.Context, rejected *models.RejectedAlias) error {
	query := `
		INSERT INTO rejected_aliases (id, alias_type, alias_type_id, alias, reviewed_by, reason, reviewed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query,
		rejected.ID,
		rejected.AliasType,
		rejected.AliasTypeID,
		rejected.Alias,
		rejected.ReviewedBy,
		rejected.Reason,
		rejected.ReviewedAt,
	)
	if err != nil {
		return fmt.Errorf("insert rejected alias: %w", err)
	}

	return nil
}

// GetRejectedReason fetches the rejection reason for a pending id.
// Returns (nil, nil) when no rejection is recorded.
func (r *ModerationRepository) GetRejectedReason(ctx context.Context, pendingID int64) (*string, error) {
	query := `SELECT reason FROM rejected_aliases WHERE id = $1`

	var reason string
	err := r.db.QueryRow(ctx, query, pendingID).Scan(&reason)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get rejection reason: %w", err)
	}

	return &reason, nil
}
