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

// fakeChunithmStore backs ChunithmService tests without a database
type fakeChunithmStore struct {
	nextID   int64
	aliases  []models.ChunithmAlias
	defaults map[string]string
	binds    map[string]string
	lookups  int // LookupMusicIDs call count, for cache assertions
}

func newFakeChunithmStore() *fakeChunithmStore {
	return &fakeChunithmStore{
		defaults: make(map[string]string),
		binds:    make(map[string]string),
	}
}

func (f *fakeChunithmStore) LookupMusicIDs(ctx context.Context, alias string) ([]int, error) {
	f.lookups++
	ids := []int{}
	for _, a := range f.aliases {
		if a.Alias == alias {
			ids = append(ids, a.MusicID)
		}
	}
	return ids, nil
}

func (f *fakeChunithmStore) LookupAliases(ctx context.Context, musicID int) ([]string, error) {
	aliases := []string{}
	for _, a := range f.aliases {
		if a.MusicID == musicID {
			aliases = append(aliases, a.Alias)
		}
	}
	return aliases, nil
}

func (f *fakeChunithmStore) InsertAlias(ctx context.Context, musicID int, alias string) (int64, error) {
	f.nextID++
	f.aliases = append(f.aliases, models.ChunithmAlias{ID: f.nextID, MusicID: musicID, Alias: alias})
	return f.nextID, nil
}

func (f *fakeChunithmStore) DeleteAlias(ctx context.Context, musicID int, internalID int64) (*string, error) {
	for i, a := range f.aliases {
		if a.MusicID == musicID && a.ID == internalID {
			alias := a.Alias
			f.aliases = append(f.aliases[:i], f.aliases[i+1:]...)
			return &alias, nil
		}
	}
	return nil, nil
}

func (f *fakeChunithmStore) GetDefaultServer(ctx context.Context, imID string) (*string, error) {
	if server, ok := f.defaults[imID]; ok {
		return &server, nil
	}
	return nil, nil
}

func (f *fakeChunithmStore) GetBind(ctx context.Context, imID, server string) (*string, error) {
	if aimeID, ok := f.binds[imID+"/"+server]; ok {
		return &aimeID, nil
	}
	return nil, nil
}

func (f *fakeChunithmStore) UpsertBind(ctx context.Context, bind *models.ChunithmBind) error {
	f.binds[bind.ImID+"/"+bind.Server] = bind.AimeID
	return nil
}

func (f *fakeChunithmStore) DeleteBind(ctx context.Context, bind *models.ChunithmBind) (int64, error) {
	key := bind.ImID + "/" + bind.Server
	if f.binds[key] != bind.AimeID {
		return 0, nil
	}
	delete(f.binds, key)
	return 1, nil
}

func newChunithmService(store *fakeChunithmStore) *ChunithmService {
	return NewChunithmService(store, cache.NewMemoryCache(time.Minute), testMetrics(), testLogger())
}

func TestChunithmRemoveAlias_InvalidatesAliasLookup(t *testing.T) {
	store := newFakeChunithmStore()
	svc := newChunithmService(store)

	id, err := svc.AddAlias(context.Background(), 42, "mySong")
	require.NoError(t, err)

	// warm the alias lookup cache
	ids, err := svc.GetMusicIDs(context.Background(), "mySong")
	require.NoError(t, err)
	require.Equal(t, []int{42}, ids)

	require.NoError(t, svc.RemoveAlias(context.Background(), 42, id))

	// the cached ids must be gone along with the row
	_, err = svc.GetMusicIDs(context.Background(), "mySong")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestChunithmRemoveAlias_NothingRemovedIsNotFound(t *testing.T) {
	svc := newChunithmService(newFakeChunithmStore())

	err := svc.RemoveAlias(context.Background(), 42, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestChunithmGetMusicIDs_SecondReadServedFromCache(t *testing.T) {
	store := newFakeChunithmStore()
	svc := newChunithmService(store)

	_, err := svc.AddAlias(context.Background(), 42, "mySong")
	require.NoError(t, err)
	calls := store.lookups

	first, err := svc.GetMusicIDs(context.Background(), "mySong")
	require.NoError(t, err)
	second, err := svc.GetMusicIDs(context.Background(), "mySong")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, calls+1, store.lookups, "second read should not hit the store")
}

func TestChunithmBind_SetGetDelete(t *testing.T) {
	svc := newChunithmService(newFakeChunithmStore())
	ctx := context.Background()

	_, err := svc.GetBind(ctx, "42", "jp")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.SetBind(ctx, "42", "jp", "aime1"))
	aimeID, err := svc.GetBind(ctx, "42", "jp")
	require.NoError(t, err)
	assert.Equal(t, "aime1", aimeID)

	// replacing the card is an update, not an error
	require.NoError(t, svc.SetBind(ctx, "42", "jp", "aime2"))
	aimeID, err = svc.GetBind(ctx, "42", "jp")
	require.NoError(t, err)
	assert.Equal(t, "aime2", aimeID)

	// deleting the old card no longer matches
	err = svc.DeleteBind(ctx, "42", "jp", "aime1")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.DeleteBind(ctx, "42", "jp", "aime2"))
	_, err = svc.GetBind(ctx, "42", "jp")
	assert.ErrorIs(t, err, ErrNotFound)
}
