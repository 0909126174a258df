package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harukilab/rhythmdb/cmd/rhythmdb/models"
	"github.com/harukilab/rhythmdb/common/cache"
)

func f(v float64) *float64 { return &v }

func diffRow(musicID int, version string, c0 float64) models.MusicDifficulty {
	return models.MusicDifficulty{MusicID: musicID, Version: version, Diff0Const: f(c0)}
}

func TestPickDifficulty_ExactVersionWins(t *testing.T) {
	diffs := []models.MusicDifficulty{
		diffRow(1, "2.00", 3.0),
		diffRow(1, "2.10", 3.5),
		diffRow(1, "2.20", 4.0),
	}

	picked := pickDifficulty(diffs, "2.10")
	require.NotNil(t, picked)
	assert.Equal(t, "2.10", picked.Version)
}

func TestPickDifficulty_FallsBackToLatest(t *testing.T) {
	diffs := []models.MusicDifficulty{
		diffRow(1, "2.00", 3.0),
		diffRow(1, "2.20", 4.0),
		diffRow(1, "2.10", 3.5),
	}

	picked := pickDifficulty(diffs, "9.99")
	require.NotNil(t, picked)
	assert.Equal(t, "2.20", picked.Version)
}

func TestPickDifficulty_NoRows(t *testing.T) {
	assert.Nil(t, pickDifficulty(nil, "2.00"))
}

// fakeMusicStore backs MusicService tests without a database
type fakeMusicStore struct {
	infos  map[int]models.MusicInfo
	titles []models.MusicTitle
	diffs  []models.MusicDifficulty
	charts map[int][]models.ChartData
}

func (s *fakeMusicStore) GetInfo(ctx context.Context, musicID int) (*models.MusicInfo, error) {
	if info, ok := s.infos[musicID]; ok {
		return &info, nil
	}
	return nil, nil
}

func (s *fakeMusicStore) GetInfoBatch(ctx context.Context, musicIDs []int) (map[int]models.MusicInfo, error) {
	out := make(map[int]models.MusicInfo)
	for _, id := range musicIDs {
		if info, ok := s.infos[id]; ok {
			out[id] = info
		}
	}
	return out, nil
}

func (s *fakeMusicStore) ListAllTitles(ctx context.Context) ([]models.MusicTitle, error) {
	return s.titles, nil
}

func (s *fakeMusicStore) ListDifficulties(ctx context.Context, musicID int) ([]models.MusicDifficulty, error) {
	out := []models.MusicDifficulty{}
	for _, d := range s.diffs {
		if d.MusicID == musicID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *fakeMusicStore) ListDifficultiesBatch(ctx context.Context, musicIDs []int) ([]models.MusicDifficulty, error) {
	want := make(map[int]bool)
	for _, id := range musicIDs {
		want[id] = true
	}
	out := []models.MusicDifficulty{}
	for _, d := range s.diffs {
		if want[d.MusicID] {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *fakeMusicStore) ListChartData(ctx context.Context, musicID int) ([]models.ChartData, error) {
	return s.charts[musicID], nil
}

func newMusicService(store *fakeMusicStore) *MusicService {
	return NewMusicService(store, cache.NewMemoryCache(time.Minute), testMetrics(), testLogger())
}

func TestDifficultyInfo_RequiresVersion(t *testing.T) {
	svc := newMusicService(&fakeMusicStore{})

	_, err := svc.DifficultyInfo(context.Background(), 1, "")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestDifficultyInfo_UnknownSongIsNotFound(t *testing.T) {
	svc := newMusicService(&fakeMusicStore{})

	_, err := svc.DifficultyInfo(context.Background(), 1, "2.00")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestQueryBatch_KnownAndUnknownSongs(t *testing.T) {
	version := "2.10"
	store := &fakeMusicStore{
		infos: map[int]models.MusicInfo{
			1: {Title: "Song A", Artist: "Artist A", Category: "POPS & ANIME", Version: &version},
		},
		diffs: []models.MusicDifficulty{
			diffRow(1, "2.00", 3.0),
			diffRow(1, "2.10", 3.5),
		},
	}
	svc := newMusicService(store)

	result, err := svc.QueryBatch(context.Background(), &models.MusicBatchRequest{
		MusicIDs: []int{1, 2},
		Version:  "2.10",
	})
	require.NoError(t, err)
	require.Len(t, result, 2)

	known := result[1]
	assert.Equal(t, "Song A", known.Info.Title)
	assert.Equal(t, "POPS & ANIME", known.Info.Category)
	require.NotNil(t, known.Difficulty[0])
	assert.Equal(t, 3.5, *known.Difficulty[0])

	unknown := result[2]
	assert.Equal(t, "Unknown", unknown.Info.Title)
	assert.Equal(t, []*float64{nil, nil, nil, nil, nil}, unknown.Difficulty)
	assert.Nil(t, unknown.Version)
}

func TestAllTitles_ReturnsCatalog(t *testing.T) {
	store := &fakeMusicStore{
		titles: []models.MusicTitle{
			{MusicID: 1, Title: "Song A"},
			{MusicID: 2, Title: "Song B"},
		},
	}
	svc := newMusicService(store)

	titles, err := svc.AllTitles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, store.titles, titles)
}

func TestAllTitles_EmptyCatalogIsNotAnError(t *testing.T) {
	svc := newMusicService(&fakeMusicStore{titles: []models.MusicTitle{}})

	titles, err := svc.AllTitles(context.Background())
	require.NoError(t, err)
	assert.Empty(t, titles)
}

func TestQueryBatch_EmptyRequest(t *testing.T) {
	svc := newMusicService(&fakeMusicStore{})

	_, err := svc.QueryBatch(context.Background(), &models.MusicBatchRequest{Version: "2.00"})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
