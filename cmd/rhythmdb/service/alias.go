package service

import (
	"context"
	"fmt"

	"github.com/harukilab/rhythmdb/cmd/rhythmdb/models"
	"github.com/harukilab/rhythmdb/common/cache"
	"github.com/harukilab/rhythmdb/common/logger"
	"github.com/harukilab/rhythmdb/common/metrics"
)

// AliasStore is the persistence surface the alias services need.
// Implemented by repository.AliasRepository.
type AliasStore interface {
	LookupIDs(ctx context.Context, aliasType, alias string, groupID *string) ([]int, error)
	LookupAliases(ctx context.Context, aliasType string, aliasTypeID int, groupID *string) ([]string, error)
	Publish(ctx context.Context, aliasType string, aliasTypeID int, alias string) (*models.Alias, error)
	PublishGroup(ctx context.Context, groupID, aliasType string, aliasTypeID int, alias string) (*models.Alias, error)
	Retract(ctx context.Context, aliasType string, aliasTypeID int, alias string, internalID *int64) (int64, error)
	RetractGroup(ctx context.Context, groupID, aliasType string, aliasTypeID int, alias string) (int64, error)
}

// AdminStore checks the alias admin allow-list.
// Implemented by repository.ModerationRepository.
type AdminStore interface {
	IsAdmin(ctx context.Context, imID string) (bool, error)
}

// AliasService serves the alias read path and the direct (non-moderated)
// mutations: admin deletions and per-group aliases.
type AliasService struct {
	store   AliasStore
	admins  AdminStore
	cache   cache.Cache
	metrics *metrics.Metrics
	log     *logger.Logger
}

// NewAliasService creates a new alias service
func NewAliasService(store AliasStore, admins AdminStore, c cache.Cache, m *metrics.Metrics, log *logger.Logger) *AliasService {
	return &AliasService{
		store:   store,
		admins:  admins,
		cache:   c,
		metrics: m,
		log:     log,
	}
}

// GetAliasTypeIDs resolves an alias text to target ids. An alias that maps
// to nothing is ErrNotFound; lookups are exact and case-sensitive.
func (s *AliasService) GetAliasTypeIDs(ctx context.Context, aliasType, alias string, groupID *string) ([]int, error) {
	if !models.ValidAliasType(aliasType) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAliasType, aliasType)
	}

	ids, err := fetchCached(ctx, s.cache, s.metrics, "alias_ids", aliasIDsKey(aliasType, alias, groupID),
		func(ctx context.Context) ([]int, error) {
			return s.store.LookupIDs(ctx, aliasType, alias, groupID)
		})
	if err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return nil, fmt.Errorf("alias %q: %w", alias, ErrNotFound)
	}

	return ids, nil
}

// GetAliases returns all aliases of a target. An unknown or alias-less
// target yields an empty list, never ErrNotFound.
func (s *AliasService) GetAliases(ctx context.Context, aliasType string, aliasTypeID int, groupID *string) ([]string, error) {
	if !models.ValidAliasType(aliasType) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAliasType, aliasType)
	}

	return fetchCached(ctx, s.cache, s.metrics, "aliases", aliasListKey(aliasType, aliasTypeID, groupID),
		func(ctx context.Context) ([]string, error) {
			return s.store.LookupAliases(ctx, aliasType, aliasTypeID, groupID)
		})
}

// RetractAlias removes a published alias. Admin-only; removing nothing is
// ErrNotFound.
func (s *AliasService) RetractAlias(ctx context.Context, aliasType string, aliasTypeID int, alias string, internalID int64, imID string) error {
	if !models.ValidAliasType(aliasType) {
		return fmt.Errorf("%w: %s", ErrInvalidAliasType, aliasType)
	}

	admin, err := s.admins.IsAdmin(ctx, imID)
	if err != nil {
		return err
	}
	if !admin {
		return fmt.Errorf("user %s: %w", imID, ErrPermissionDenied)
	}

	removed, err := s.store.Retract(ctx, aliasType, aliasTypeID, alias, &internalID)
	if err != nil {
		return err
	}
	if removed == 0 {
		return fmt.Errorf("alias %q: %w", alias, ErrNotFound)
	}

	s.invalidateAlias(ctx, aliasType, aliasTypeID, alias, nil)
	s.log.Info("alias retracted", "alias_type", aliasType, "alias_type_id", aliasTypeID, "alias", alias, "by", imID)
	return nil
}

// PublishGroupAlias adds a per-group alias. Group aliases bypass
// moderation entirely.
func (s *AliasService) PublishGroupAlias(ctx context.Context, groupID, aliasType string, aliasTypeID int, alias string) (*models.Alias, error) {
	if !models.ValidAliasType(aliasType) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAliasType, aliasType)
	}

	published, err := s.store.PublishGroup(ctx, groupID, aliasType, aliasTypeID, alias)
	if err != nil {
		return nil, err
	}

	s.invalidateAlias(ctx, aliasType, aliasTypeID, alias, &groupID)
	return published, nil
}

// RetractGroupAlias removes a per-group alias. Removing nothing is not an
// error; the end state is the same.
func (s *AliasService) RetractGroupAlias(ctx context.Context, groupID, aliasType string, aliasTypeID int, alias string) error {
	if !models.ValidAliasType(aliasType) {
		return fmt.Errorf("%w: %s", ErrInvalidAliasType, aliasType)
	}

	if _, err := s.store.RetractGroup(ctx, groupID, aliasType, aliasTypeID, alias); err != nil {
		return err
	}

	s.invalidateAlias(ctx, aliasType, aliasTypeID, alias, &groupID)
	return nil
}

// invalidateAlias drops every cached result a mutation of this alias could
// have gone stale
func (s *AliasService) invalidateAlias(ctx context.Context, aliasType string, aliasTypeID int, alias string, groupID *string) {
	s.cache.Delete(ctx,
		aliasListKey(aliasType, aliasTypeID, groupID),
		aliasIDsKey(aliasType, alias, groupID),
	)
}
