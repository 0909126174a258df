package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/harukilab/rhythmdb/cmd/rhythmdb/models"
	"github.com/harukilab/rhythmdb/common/db"
)

// PreferenceRepository handles per-user option storage
type PreferenceRepository struct {
	db *db.DB
}

// NewPreferenceRepository creates a new preference repository
func NewPreferenceRepository(db *db.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// List returns all options of a user
func (r *PreferenceRepository) List(ctx context.Context, imID string) ([]models.Preference, error) {
	query := `SELECT option, value FROM user_preferences WHERE im_id = $1 ORDER BY option`

	rows, err := r.db.Query(ctx, query, imID)
	if err != nil {
		return nil, fmt.Errorf("list preferences: %w", err)
	}
	defer rows.Close()

	prefs := []models.Preference{}
	for rows.Next() {
		var p models.Preference
		if err := rows.Scan(&p.Option, &p.Value); err != nil {
			return nil, fmt.Errorf("scan preference: %w", err)
		}
		prefs = append(prefs, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate preferences: %w", err)
	}

	return prefs, nil
}

// Get fetches one option. Returns (nil, nil) when the option is not set.
func (r *PreferenceRepository) Get(ctx context.Context, imID, option string) (*models.Preference, error) {
	query := `SELECT option, value FROM user_preferences WHERE im_id = $1 AND option = $2`

	p := &models.Preference{}
	err := r.db.QueryRow(ctx, query, imID, option).Scan(&p.Option, &p.Value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get preference: %w", err)
	}

	return p, nil
}

// Upsert sets an option, creating it when absent
func (r *PreferenceRepository) Upsert(ctx context.Context, imID, option, value string) error {
	query := `
		INSERT INTO user_preferences (im_id, option, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (im_id, option) DO UPDATE SET value = EXCLUDED.value
	`

	if _, err := r.db.Exec(ctx, query, imID, option, value); err != nil {
		return fmt.Errorf("upsert preference: %w", err)
	}

	return nil
}

// Delete removes one option
func (r *PreferenceRepository) Delete(ctx context.Context, imID, option string) error {
	query := `DELETE FROM user_preferences WHERE im_id = $1 AND option = $2`

	if _, err := r.db.Exec(ctx, query, imID, option); err != nil {
		return fmt.Errorf("delete preference: %w", err)
	}

	return nil
}
