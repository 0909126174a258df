package service

import (
	"context"
	"fmt"

	"github.com/harukilab/rhythmdb/cmd/rhythmdb/models"
	"github.com/harukilab/rhythmdb/common/cache"
	"github.com/harukilab/rhythmdb/common/logger"
	"github.com/harukilab/rhythmdb/common/metrics"
)

// PreferenceStore is the persistence surface for user preferences.
// Implemented by repository.PreferenceRepository.
type PreferenceStore interface {
	List(ctx context.Context, imID string) ([]models.Preference, error)
	Get(ctx context.Context, imID, option string) (*models.Preference, error)
	Upsert(ctx context.Context, imID, option, value string) error
	Delete(ctx context.Context, imID, option string) error
}

// PreferenceService manages per-user option storage
type PreferenceService struct {
	store   PreferenceStore
	cache   cache.Cache
	metrics *metrics.Metrics
	log     *logger.Logger
}

// NewPreferenceService creates a new preference service
func NewPreferenceService(store PreferenceStore, c cache.Cache, m *metrics.Metrics, log *logger.Logger) *PreferenceService {
	return &PreferenceService{
		store:   store,
		cache:   c,
		metrics: m,
		log:     log,
	}
}

// List returns all options of a user; a user with none is ErrNotFound
func (s *PreferenceService) List(ctx context.Context, imID string) ([]models.Preference, error) {
	prefs, err := fetchCached(ctx, s.cache, s.metrics, "preferences", preferenceListKey(imID),
		func(ctx context.Context) ([]models.Preference, error) {
			return s.store.List(ctx, imID)
		})
	if err != nil {
		return nil, err
	}
	if len(prefs) == 0 {
		return nil, fmt.Errorf("preferences for %s: %w", imID, ErrNotFound)
	}

	return prefs, nil
}

// Get returns one option; an unset option is ErrNotFound
func (s *PreferenceService) Get(ctx context.Context, imID, option string) (*models.Preference, error) {
	pref, err := fetchCached(ctx, s.cache, s.metrics, "preferences", preferenceKey(imID, option),
		func(ctx context.Context) (*models.Preference, error) {
			return s.store.Get(ctx, imID, option)
		})
	if err != nil {
		return nil, err
	}
	if pref == nil {
		return nil, fmt.Errorf("preference %s: %w", option, ErrNotFound)
	}

	return pref, nil
}

// Set stores an option, creating it when absent
func (s *PreferenceService) Set(ctx context.Context, imID, option, value string) error {
	if err := s.store.Upsert(ctx, imID, option, value); err != nil {
		return err
	}

	s.cache.Delete(ctx, preferenceListKey(imID), preferenceKey(imID, option))
	return nil
}

// Delete removes an option. Removing an unset option is fine.
func (s *PreferenceService) Delete(ctx context.Context, imID, option string) error {
	if err := s.store.Delete(ctx, imID, option); err != nil {
		return err
	}

	s.cache.Delete(ctx, preferenceListKey(imID), preferenceKey(imID, option))
	return nil
}
