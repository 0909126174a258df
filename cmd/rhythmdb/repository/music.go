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

// MusicRepository handles chunithm music metadata tables
type MusicRepository struct {
	db *db.DB
}

// NewMusicRepository creates a new music repository
func NewMusicRepository(db *db.DB) *MusicRepository {
	return &MusicRepository{db: db}
}

const musicInfoColumns = `title, artist, category, version, release_date::text, is_deleted, deleted_version`

// GetInfo fetches a song's basic metadata. Returns (nil, nil) when the
// song is unknown.
func (r *MusicRepository) GetInfo(ctx context.Context, musicID int) (*models.MusicInfo, error) {
	query := `SELECT ` + musicInfoColumns + ` FROM chunithm_music WHERE music_id = $1`

	info := &models.MusicInfo{}
	err := r.db.QueryRow(ctx, query, musicID).Scan(
		&info.Title,
		&info.Artist,
		&info.Category,
		&info.Version,
		&info.ReleaseDate,
		&info.IsDeleted,
		&info.DeletedVersion,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get music info: %w", err)
	}

	return info, nil
}

// GetInfoBatch fetches basic metadata for many songs at once, keyed by
// music id. Unknown ids are simply absent from the map.
func (r *MusicRepository) GetInfoBatch(ctx context.Context, musicIDs []int) (map[int]models.MusicInfo, error) {
	builder := psql.Select("music_id", "title", "artist", "category", "version", "release_date::text", "is_deleted", "deleted_version").
		From("chunithm_music").
		Where(sq.Eq{"music_id": musicIDs})

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build music info batch: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get music info batch: %w", err)
	}
	defer rows.Close()

	infos := make(map[int]models.MusicInfo, len(musicIDs))
	for rows.Next() {
		var id int
		var info models.MusicInfo
		err := rows.Scan(&id, &info.Title, &info.Artist, &info.Category, &info.Version, &info.ReleaseDate, &info.IsDeleted, &info.DeletedVersion)
		if err != nil {
			return nil, fmt.Errorf("scan music info: %w", err)
		}
		infos[id] = info
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate music infos: %w", err)
	}

	return infos, nil
}

// ListAllTitles returns the id and title of every song in the catalog
func (r *MusicRepository) ListAllTitles(ctx context.Context) ([]models.MusicTitle, error) {
	query := `SELECT music_id, title FROM chunithm_music ORDER BY music_id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list music titles: %w", err)
	}
	defer rows.Close()

	titles := []models.MusicTitle{}
	for rows.Next() {
		var t models.MusicTitle
		if err := rows.Scan(&t.MusicID, &t.Title); err != nil {
			return nil, fmt.Errorf("scan music title: %w", err)
		}
		titles = append(titles, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate music titles: %w", err)
	}

	return titles, nil
}

// ListDifficulties returns every per-version difficulty row of a song
func (r *MusicRepository) ListDifficulties(ctx context.Context, musicID int) ([]models.MusicDifficulty, error) {
	return r.listDifficulties(ctx, sq.Eq{"music_id": musicID})
}

// ListDifficultiesBatch returns the difficulty rows of many songs at once
func (r *MusicRepository) ListDifficultiesBatch(ctx context.Context, musicIDs []int) ([]models.MusicDifficulty, error) {
	return r.listDifficulties(ctx, sq.Eq{"music_id": musicIDs})
}

func (r *MusicRepository) listDifficulties(ctx context.Context, where sq.Eq) ([]models.MusicDifficulty, error) {
	builder := psql.Select("music_id", "version", "diff0_const", "diff1_const", "diff2_const", "diff3_const", "diff4_const").
		From("chunithm_music_difficulty").
		Where(where).
		OrderBy("music_id", "version")

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build difficulty list: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list difficulties: %w", err)
	}
	defer rows.Close()

	diffs := []models.MusicDifficulty{}
	for rows.Next() {
		var d models.MusicDifficulty
		err := rows.Scan(&d.MusicID, &d.Version, &d.Diff0Const, &d.Diff1Const, &d.Diff2Const, &d.Diff3Const, &d.Diff4Const)
		if err != nil {
			return nil, fmt.Errorf("scan difficulty: %w", err)
		}
		diffs = append(diffs, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate difficulties: %w", err)
	}

	return diffs, nil
}

// ListChartData returns the note-count rows of a song, one per difficulty
func (r *MusicRepository) ListChartData(ctx context.Context, musicID int) ([]models.ChartData, error) {
	query := `
		SELECT difficulty, creator, bpm, tap_count, hold_count, slide_count, air_count, flick_count, total_count
		FROM chunithm_chart_data
		WHERE music_id = $1
		ORDER BY difficulty
	`

	rows, err := r.db.Query(ctx, query, musicID)
	if err != nil {
		return nil, fmt.Errorf("list chart data: %w", err)
	}
	defer rows.Close()

	charts := []models.ChartData{}
	for rows.Next() {
		var c models.ChartData
		err := rows.Scan(&c.Difficulty, &c.Creator, &c.BPM, &c.TapCount, &c.HoldCount, &c.SlideCount, &c.AirCount, &c.FlickCount, &c.TotalCount)
		if err != nil {
			return nil, fmt.Errorf("scan chart data: %w", err)
		}
		charts = append(charts, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chart data: %w", err)
	}

	return charts, nil
}
