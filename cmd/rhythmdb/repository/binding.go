package repository

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/harukilab/rhythmdb/cmd/rhythmdb/models"
	"github.com/harukilab/rhythmdb/common/db"
)

// BindingRepository handles user game-account bindings and the per-server
// default binding pointers
type BindingRepository struct {
	db *db.DB
}

// NewBindingRepository creates a new binding repository
func NewBindingRepository(db *db.DB) *BindingRepository {
	return &BindingRepository{db: db}
}

// List returns a user's bindings, optionally narrowed to one server
func (r *BindingRepository) List(ctx context.Context, imID string, server *string) ([]models.UserBinding, error) {
	builder := psql.Select("id", "im_id", "server", "user_id", "visible").
		From("user_bindings").
		Where(sq.Eq{"im_id": imID}).
		OrderBy("id")
	if server != nil {
		builder = builder.Where(sq.Eq{"server": *server})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build binding list: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list bindings: %w", err)
	}
	defer rows.Close()

	bindings := []models.UserBinding{}
	for rows.Next() {
		var b models.UserBinding
		if err := rows.Scan(&b.ID, &b.ImID, &b.Server, &b.UserID, &b.Visible); err != nil {
			return nil, fmt.Errorf("scan binding: %w", err)
		}
		bindings = append(bindings, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bindings: %w", err)
	}

	return bindings, nil
}

// Get fetches one binding by id, scoped to its owner. Returns (nil, nil)
// when not found.
func (r *BindingRepository) Get(ctx context.Context, imID string, bindID int) (*models.UserBinding, error) {
	query := `
		SELECT id, im_id, server, user_id, visible
		FROM user_bindings
		WHERE im_id = $1 AND id = $2
	`

	b := &models.UserBinding{}
	err := r.db.QueryRow(ctx, query, imID, bindID).Scan(&b.ID, &b.ImID, &b.Server, &b.UserID, &b.Visible)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get binding: %w", err)
	}

	return b, nil
}

// Exists reports whether the exact (server, user_id) binding already exists
// for the user
func (r *BindingRepository) Exists(ctx context.Context, imID, server, userID string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM user_bindings
			WHERE im_id = $1 AND server = $2 AND user_id = $3
		)
	`

	var exists bool
	if err := r.db.QueryRow(ctx, query, imID, server, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check binding existence: %w", err)
	}

	return exists, nil
}

// Insert creates a binding and returns its id
func (r *BindingRepository) Insert(ctx context.Context, binding *models.UserBinding) (int, error) {
	query := `
		INSERT INTO user_bindings (im_id, server, user_id, visible)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	var id int
	err := r.db.QueryRow(ctx, query, binding.ImID, binding.Server, binding.UserID, binding.Visible).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert binding: %w", err)
	}

	return id, nil
}

// UpdateVisibility toggles the visibility flag of one binding
func (r *BindingRepository) UpdateVisibility(ctx context.Context, imID string, bindID int, visible bool) error {
	query := `UPDATE user_bindings SET visible = $3 WHERE im_id = $1 AND id = $2`

	if _, err := r.db.Exec(ctx, query, imID, bindID, visible); err != nil {
		return fmt.Errorf("update binding visibility: %w", err)
	}

	return nil
}

// Delete removes a binding. Default-binding rows referencing it are removed
// first so the pointer never dangles.
func (r *BindingRepository) Delete(ctx context.Context, imID string, bindID int) error {
	if _, err := r.db.Exec(ctx,
		`DELETE FROM user_default_bindings WHERE im_id = $1 AND bind_id = $2`, imID, bindID); err != nil {
		return fmt.Errorf("delete default binding refs: %w", err)
	}

	if _, err := r.db.Exec(ctx,
		`DELETE FROM user_bindings WHERE im_id = $1 AND id = $2`, imID, bindID); err != nil {
		return fmt.Errorf("delete binding: %w", err)
	}

	return nil
}

// GetDefault resolves the default binding for a server (or the global
// "default" slot). Returns (nil, nil) when no default is set.
func (r *BindingRepository) GetDefault(ctx context.Context, imID, server string) (*models.UserBinding, error) {
	query := `
		SELECT b.id, b.im_id, b.server, b.user_id, b.visible
		FROM user_default_bindings d
		JOIN user_bindings b ON b.id = d.bind_id
		WHERE d.im_id = $1 AND d.server = $2
	`

	b := &models.UserBinding{}
	err := r.db.QueryRow(ctx, query, imID, server).Scan(&b.ID, &b.ImID, &b.Server, &b.UserID, &b.Visible)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get default binding: %w", err)
	}

	return b, nil
}

// SetDefault replaces the default binding pointer for a server slot
func (r *BindingRepository) SetDefault(ctx context.Context, imID, server string, bindID int) error {
	query := `
		INSERT INTO user_default_bindings (im_id, server, bind_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (im_id, server) DO UPDATE SET bind_id = EXCLUDED.bind_id
	`

	if _, err := r.db.Exec(ctx, query, imID, server, bindID); err != nil {
		return fmt.Errorf("set default binding: %w", err)
	}

	return nil
}

// DeleteDefault removes the default binding pointer for a server slot and
// returns the number of rows removed
func (r *BindingRepository) DeleteDefault(ctx context.Context, imID, server string) (int64, error) {
	query := `DELETE FROM user_default_bindings WHERE im_id = $1 AND server = $2`

	tag, err := r.db.Exec(ctx, query, imID, server)
	if err != nil {
		return 0, fmt.Errorf("delete default binding: %w", err)
	}

	return tag.RowsAffected(), nil
}
