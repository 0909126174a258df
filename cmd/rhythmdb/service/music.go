package service

import (
	"context"
	"fmt"

	"github.com/harukilab/rhythmdb/cmd/rhythmdb/models"
	"github.com/harukilab/rhythmdb/common/cache"
	"github.com/harukilab/rhythmdb/common/logger"
	"github.com/harukilab/rhythmdb/common/metrics"
)

// MusicStore is the persistence surface for chunithm music metadata.
// Implemented by repository.MusicRepository.
type MusicStore interface {
	GetInfo(ctx context.Context, musicID int) (*models.MusicInfo, error)
	GetInfoBatch(ctx context.Context, musicIDs []int) (map[int]models.MusicInfo, error)
	ListAllTitles(ctx context.Context) ([]models.MusicTitle, error)
	ListDifficulties(ctx context.Context, musicID int) ([]models.MusicDifficulty, error)
	ListDifficultiesBatch(ctx context.Context, musicIDs []int) ([]models.MusicDifficulty, error)
	ListChartData(ctx context.Context, musicID int) ([]models.ChartData, error)
}

// MusicService serves chunithm music metadata
type MusicService struct {
	store   MusicStore
	cache   cache.Cache
	metrics *metrics.Metrics
	log     *logger.Logger
}

// NewMusicService creates a new music service
func NewMusicService(store MusicStore, c cache.Cache, m *metrics.Metrics, log *logger.Logger) *MusicService {
	return &MusicService{
		store:   store,
		cache:   c,
		metrics: m,
		log:     log,
	}
}

// BasicInfo returns a song's basic metadata; unknown songs are ErrNotFound
func (s *MusicService) BasicInfo(ctx context.Context, musicID int) (*models.MusicInfo, error) {
	info, err := fetchCached(ctx, s.cache, s.metrics, "music_info", musicInfoKey(musicID),
		func(ctx context.Context) (*models.MusicInfo, error) {
			return s.store.GetInfo(ctx, musicID)
		})
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, fmt.Errorf("music %d: %w", musicID, ErrNotFound)
	}

	return info, nil
}

// AllTitles returns the id and title of every song in the catalog. An
// empty catalog is an empty list, not an error.
func (s *MusicService) AllTitles(ctx context.Context) ([]models.MusicTitle, error) {
	return fetchCached(ctx, s.cache, s.metrics, "music_titles", musicTitlesKey(),
		func(ctx context.Context) ([]models.MusicTitle, error) {
			return s.store.ListAllTitles(ctx)
		})
}

// DifficultyInfo returns the chart constants of a song for one game
// version: the exact version's row when present, otherwise the row of the
// most recent version. A song without difficulty data is ErrNotFound.
func (s *MusicService) DifficultyInfo(ctx context.Context, musicID int, version string) (*models.MusicDifficulty, error) {
	if version == "" {
		return nil, fmt.Errorf("missing version: %w", ErrInvalidArgument)
	}

	diffs, err := s.store.ListDifficulties(ctx, musicID)
	if err != nil {
		return nil, err
	}

	picked := pickDifficulty(diffs, version)
	if picked == nil {
		return nil, fmt.Errorf("difficulty for music %d: %w", musicID, ErrNotFound)
	}

	return picked, nil
}

// ChartData returns the note-count breakdown of a song's charts; a song
// without chart data is ErrNotFound
func (s *MusicService) ChartData(ctx context.Context, musicID int) ([]models.ChartData, error) {
	charts, err := fetchCached(ctx, s.cache, s.metrics, "chart_data", chartDataKey(musicID),
		func(ctx context.Context) ([]models.ChartData, error) {
			return s.store.ListChartData(ctx, musicID)
		})
	if err != nil {
		return nil, err
	}
	if len(charts) == 0 {
		return nil, fmt.Errorf("chart data for music %d: %w", musicID, ErrNotFound)
	}

	return charts, nil
}

// QueryBatch resolves info and difficulty for many songs at once. Unknown
// ids still get an entry, with an "Unknown" info stub and empty constants.
func (s *MusicService) QueryBatch(ctx context.Context, req *models.MusicBatchRequest) (map[int]models.MusicBatchItem, error) {
	if len(req.MusicIDs) == 0 {
		return nil, fmt.Errorf("empty music_ids: %w", ErrInvalidArgument)
	}

	infos, err := s.store.GetInfoBatch(ctx, req.MusicIDs)
	if err != nil {
		return nil, err
	}
	diffs, err := s.store.ListDifficultiesBatch(ctx, req.MusicIDs)
	if err != nil {
		return nil, err
	}

	diffsByMusic := make(map[int][]models.MusicDifficulty)
	for _, d := range diffs {
		diffsByMusic[d.MusicID] = append(diffsByMusic[d.MusicID], d)
	}

	result := make(map[int]models.MusicBatchItem, len(req.MusicIDs))
	for _, id := range req.MusicIDs {
		item := models.MusicBatchItem{
			Difficulty: make([]*float64, 5),
			Info: models.MusicInfo{
				Title:  "Unknown",
				Artist: "Unknown",
			},
		}

		if info, ok := infos[id]; ok {
			item.Info = info
			item.Version = info.Version
		}
		if picked := pickDifficulty(diffsByMusic[id], req.Version); picked != nil {
			item.Difficulty = picked.Constants()
		}

		result[id] = item
	}

	return result, nil
}

// pickDifficulty chooses the row for the requested version, falling back
// to the lexically greatest version when the exact one is absent.
// Versions are zero-padded strings upstream, so string order tracks
// release order.
func pickDifficulty(diffs []models.MusicDifficulty, version string) *models.MusicDifficulty {
	var latest *models.MusicDifficulty
	for i := range diffs {
		d := &diffs[i]
		if d.Version == version {
			return d
		}
		if latest == nil || d.Version > latest.Version {
			latest = d
		}
	}
	return latest
}
