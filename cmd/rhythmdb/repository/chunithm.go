package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/harukilab/rhythmdb/cmd/rhythmdb/models"
	"github.com/harukilab/rhythmdb/common/db"
)

// ChunithmRepository handles chunithm aliases, aime-card bindings and the
// default server table
type ChunithmRepository struct {
	db *db.DB
}

// NewChunithmRepository creates a new chunithm repository
func NewChunithmRepository(db *db.DB) *ChunithmRepository {
	return &ChunithmRepository{db: db}
}

// LookupMusicIDs returns all music ids an alias maps to
func (r *ChunithmRepository) LookupMusicIDs(ctx context.Context, alias string) ([]int, error) {
	query := `SELECT music_id FROM chunithm_aliases WHERE alias = $1 ORDER BY id`

	rows, err := r.db.Query(ctx, query, alias)
	if err != nil {
		return nil, fmt.Errorf("lookup chunithm music ids: %w", err)
	}
	defer rows.Close()

	ids := []int{}
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan chunithm music id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chunithm music ids: %w", err)
	}

	return ids, nil
}

// LookupAliases returns all aliases of a song
func (r *ChunithmRepository) LookupAliases(ctx context.Context, musicID int) ([]string, error) {
	query := `SELECT alias FROM chunithm_aliases WHERE music_id = $1 ORDER BY id`

	rows, err := r.db.Query(ctx, query, musicID)
	if err != nil {
		return nil, fmt.Errorf("lookup chunithm aliases: %w", err)
	}
	defer rows.Close()

	aliases := []string{}
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, fmt.Errorf("scan chunithm alias: %w", err)
		}
		aliases = append(aliases, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chunithm aliases: %w", err)
	}

	return aliases, nil
}

// InsertAlias adds an alias and returns its id
func (r *ChunithmRepository) InsertAlias(ctx context.Context, musicID int, alias string) (int64, error) {
	query := `INSERT INTO chunithm_aliases (music_id, alias) VALUES ($1, $2) RETURNING id`

	var id int64
	if err := r.db.QueryRow(ctx, query, musicID, alias).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert chunithm alias: %w", err)
	}

	return id, nil
}

// DeleteAlias removes one alias row and returns its alias text, so the
// caller can invalidate the alias lookup key. Returns (nil, nil) when no
// row matched.
func (r *ChunithmRepository) DeleteAlias(ctx context.Context, musicID int, internalID int64) (*string, error) {
	query := `DELETE FROM chunithm_aliases WHERE music_id = $1 AND id = $2 RETURNING alias`

	var alias string
	err := r.db.QueryRow(ctx, query, musicID, internalID).Scan(&alias)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("delete chunithm alias: %w", err)
	}

	return &alias, nil
}

// GetDefaultServer returns the user's default server. Returns (nil, nil)
// when not set.
func (r *ChunithmRepository) GetDefaultServer(ctx context.Context, imID string) (*string, error) {
	query := `SELECT server FROM chunithm_default_servers WHERE im_id = $1`

	var server string
	err := r.db.QueryRow(ctx, query, imID).Scan(&server)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get chunithm default server: %w", err)
	}

	return &server, nil
}

// GetBind returns the aime id bound on a server. Returns (nil, nil) when
// no binding exists.
func (r *ChunithmRepository) GetBind(ctx context.Context, imID, server string) (*string, error) {
	query := `SELECT aime_id FROM chunithm_binds WHERE im_id = $1 AND server = $2`

	var aimeID string
	err := r.db.QueryRow(ctx, query, imID, server).Scan(&aimeID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get chunithm bind: %w", err)
	}

	return &aimeID, nil
}

// UpsertBind sets the aime id bound on a server, replacing any previous one
func (r *ChunithmRepository) UpsertBind(ctx context.Context, bind *models.ChunithmBind) error {
	update := `UPDATE chunithm_binds SET aime_id = $3 WHERE im_id = $1 AND server = $2`

	tag, err := r.db.Exec(ctx, update, bind.ImID, bind.Server, bind.AimeID)
	if err != nil {
		return fmt.Errorf("update chunithm bind: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	insert := `INSERT INTO chunithm_binds (im_id, server, aime_id) VALUES ($1, $2, $3)`
	if _, err := r.db.Exec(ctx, insert, bind.ImID, bind.Server, bind.AimeID); err != nil {
		return fmt.Errorf("insert chunithm bind: %w", err)
	}

	return nil
}

// DeleteBind removes an exact binding and returns the number of rows removed
func (r *ChunithmRepository) DeleteBind(ctx context.Context, bind *models.ChunithmBind) (int64, error) {
	query := `DELETE FROM chunithm_binds WHERE im_id = $1 AND server = $2 AND aime_id = $3`

	tag, err := r.db.Exec(ctx, query, bind.ImID, bind.Server, bind.AimeID)
	if err != nil {
		return 0, fmt.Errorf("delete chunithm bind: %w", err)
	}

	return tag.RowsAffected(), nil
}
