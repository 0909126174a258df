package service

import (
	"context"
	"fmt"
	"time"

	"github.com/harukilab/rhythmdb/cmd/rhythmdb/models"
	"github.com/harukilab/rhythmdb/common/logger"
	"github.com/harukilab/rhythmdb/common/metrics"
)

// fakeStore is an in-memory stand-in for the alias and moderation
// repositories
type fakeStore struct {
	nextID    int64
	aliases   []models.Alias
	groups    map[string][]models.Alias
	pending   map[int64]models.PendingAlias
	rejected  map[int64]models.RejectedAlias
	admins    map[string]bool
	lookupIDs int // LookupIDs call count, for cache assertions
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		groups:   make(map[string][]models.Alias),
		pending:  make(map[int64]models.PendingAlias),
		rejected: make(map[int64]models.RejectedAlias),
		admins:   make(map[string]bool),
	}
}

func (f *fakeStore) LookupIDs(ctx context.Context, aliasType, alias string, groupID *string) ([]int, error) {
	f.lookupIDs++
	rows := f.aliases
	if groupID != nil {
		rows = f.groups[*groupID]
	}
	ids := []int{}
	for _, a := range rows {
		if a.AliasType == aliasType && a.Alias == alias {
			ids = append(ids, a.AliasTypeID)
		}
	}
	return ids, nil
}

func (f *fakeStore) LookupAliases(ctx context.Context, aliasType string, aliasTypeID int, groupID *string) ([]string, error) {
	rows := f.aliases
	if groupID != nil {
		rows = f.groups[*groupID]
	}
	aliases := []string{}
	for _, a := range rows {
		if a.AliasType == aliasType && a.AliasTypeID == aliasTypeID {
			aliases = append(aliases, a.Alias)
		}
	}
	return aliases, nil
}

func (f *fakeStore) Publish(ctx context.Context, aliasType string, aliasTypeID int, alias string) (*models.Alias, error) {
	f.nextID++
	row := models.Alias{ID: f.nextID, AliasType: aliasType, AliasTypeID: aliasTypeID, Alias: alias}
	f.aliases = append(f.aliases, row)
	return &row, nil
}

func (f *fakeStore) PublishGroup(ctx context.Context, groupID, aliasType string, aliasTypeID int, alias string) (*models.Alias, error) {
	f.nextID++
	row := models.Alias{ID: f.nextID, AliasType: aliasType, AliasTypeID: aliasTypeID, Alias: alias}
	f.groups[groupID] = append(f.groups[groupID], row)
	return &row, nil
}

func (f *fakeStore) Retract(ctx context.Context, aliasType string, aliasTypeID int, alias string, internalID *int64) (int64, error) {
	var kept []models.Alias
	var removed int64
	for _, a := range f.aliases {
		match := a.AliasType == aliasType && a.AliasTypeID == aliasTypeID && a.Alias == alias
		if match && internalID != nil {
			match = a.ID == *internalID
		}
		if match {
			removed++
			continue
		}
		kept = append(kept, a)
	}
	f.aliases = kept
	return removed, nil
}

func (f *fakeStore) RetractGroup(ctx context.Context, groupID, aliasType string, aliasTypeID int, alias string) (int64, error) {
	var kept []models.Alias
	var removed int64
	for _, a := range f.groups[groupID] {
		if a.AliasType == aliasType && a.AliasTypeID == aliasTypeID && a.Alias == alias {
			removed++
			continue
		}
		kept = append(kept, a)
	}
	f.groups[groupID] = kept
	return removed, nil
}

func (f *fakeStore) IsAdmin(ctx context.Context, imID string) (bool, error) {
	return f.admins[imID], nil
}

func (f *fakeStore) InsertPending(ctx context.Context, aliasType string, aliasTypeID int, alias, submittedBy string) (*models.PendingAlias, error) {
	f.nextID++
	row := models.PendingAlias{
		ID:          f.nextID,
		AliasType:   aliasType,
		AliasTypeID: aliasTypeID,
		Alias:       alias,
		SubmittedBy: submittedBy,
		SubmittedAt: time.Now().UTC(),
	}
	f.pending[row.ID] = row
	return &row, nil
}

func (f *fakeStore) GetPending(ctx context.Context, pendingID int64) (*models.PendingAlias, error) {
	if row, ok := f.pending[pendingID]; ok {
		return &row, nil
	}
	return nil, nil
}

func (f *fakeStore) ListPending(ctx context.Context) ([]models.PendingAlias, error) {
	rows := []models.PendingAlias{}
	for id := int64(1); id <= f.nextID; id++ {
		if row, ok := f.pending[id]; ok {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (f *fakeStore) DeletePending(ctx context.Context, pendingID int64) error {
	delete(f.pending, pendingID)
	return nil
}

func (f *fakeStore) InsertRejected(ctx context.Context, rejected *models.RejectedAlias) error {
	f.rejected[rejected.ID] = *rejected
	return nil
}

func (f *fakeStore) GetRejectedReason(ctx context.Context, pendingID int64) (*string, error) {
	if row, ok := f.rejected[pendingID]; ok {
		return &row.Reason, nil
	}
	return nil, nil
}

// brokenCache satisfies the cache Backend contract but fails every call,
// to prove reads degrade to misses
type brokenBackend struct{}

func (brokenBackend) Get(ctx context.Context, key string) (string, bool, error) {
	return "", false, fmt.Errorf("backend down")
}

func (brokenBackend) Set(ctx context.Context, key, value string, expiry time.Duration) error {
	return fmt.Errorf("backend down")
}

func (brokenBackend) Delete(ctx context.Context, keys ...string) error {
	return fmt.Errorf("backend down")
}

func testLogger() *logger.Logger {
	return logger.New("error", "text")
}

func testMetrics() *metrics.Metrics {
	return metrics.New("test")
}
