package service

import (
	"context"
	"fmt"

	"github.com/harukilab/rhythmdb/cmd/rhythmdb/models"
	"github.com/harukilab/rhythmdb/common/cache"
	"github.com/harukilab/rhythmdb/common/logger"
	"github.com/harukilab/rhythmdb/common/metrics"
)

// ChunithmStore is the persistence surface for chunithm aliases and
// bindings. Implemented by repository.ChunithmRepository.
type ChunithmStore interface {
	LookupMusicIDs(ctx context.Context, alias string) ([]int, error)
	LookupAliases(ctx context.Context, musicID int) ([]string, error)
	InsertAlias(ctx context.Context, musicID int, alias string) (int64, error)
	DeleteAlias(ctx context.Context, musicID int, internalID int64) (*string, error)
	GetDefaultServer(ctx context.Context, imID string) (*string, error)
	GetBind(ctx context.Context, imID, server string) (*string, error)
	UpsertBind(ctx context.Context, bind *models.ChunithmBind) error
	DeleteBind(ctx context.Context, bind *models.ChunithmBind) (int64, error)
}

// ChunithmService serves the chunithm community: music aliases without a
// moderation step, aime-card bindings and the default server setting
type ChunithmService struct {
	store   ChunithmStore
	cache   cache.Cache
	metrics *metrics.Metrics
	log     *logger.Logger
}

// NewChunithmService creates a new chunithm service
func NewChunithmService(store ChunithmStore, c cache.Cache, m *metrics.Metrics, log *logger.Logger) *ChunithmService {
	return &ChunithmService{
		store:   store,
		cache:   c,
		metrics: m,
		log:     log,
	}
}

// GetMusicIDs resolves an alias to music ids; no match is ErrNotFound
func (s *ChunithmService) GetMusicIDs(ctx context.Context, alias string) ([]int, error) {
	ids, err := fetchCached(ctx, s.cache, s.metrics, "chu_alias_ids", chunithmAliasIDsKey(alias),
		func(ctx context.Context) ([]int, error) {
			return s.store.LookupMusicIDs(ctx, alias)
		})
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("alias %q: %w", alias, ErrNotFound)
	}

	return ids, nil
}

// GetAliases returns all aliases of a song; an alias-less song yields an
// empty list
func (s *ChunithmService) GetAliases(ctx context.Context, musicID int) ([]string, error) {
	return fetchCached(ctx, s.cache, s.metrics, "chu_aliases", chunithmAliasListKey(musicID),
		func(ctx context.Context) ([]string, error) {
			return s.store.LookupAliases(ctx, musicID)
		})
}

// AddAlias adds an alias unconditionally and returns its row id
func (s *ChunithmService) AddAlias(ctx context.Context, musicID int, alias string) (int64, error) {
	id, err := s.store.InsertAlias(ctx, musicID, alias)
	if err != nil {
		return 0, err
	}

	s.cache.Delete(ctx, chunithmAliasListKey(musicID), chunithmAliasIDsKey(alias))
	s.log.Info("chunithm alias added", "music_id", musicID, "alias", alias, "id", id)
	return id, nil
}

// RemoveAlias deletes one alias row; removing nothing is ErrNotFound
func (s *ChunithmService) RemoveAlias(ctx context.Context, musicID int, internalID int64) error {
	alias, err := s.store.DeleteAlias(ctx, musicID, internalID)
	if err != nil {
		return err
	}
	if alias == nil {
		return fmt.Errorf("alias %d: %w", internalID, ErrNotFound)
	}

	s.cache.Delete(ctx, chunithmAliasListKey(musicID), chunithmAliasIDsKey(*alias))
	return nil
}

// GetDefaultServer returns the user's default server; unset is ErrNotFound
func (s *ChunithmService) GetDefaultServer(ctx context.Context, imID string) (string, error) {
	server, err := s.store.GetDefaultServer(ctx, imID)
	if err != nil {
		return "", err
	}
	if server == nil {
		return "", fmt.Errorf("default server for %s: %w", imID, ErrNotFound)
	}

	return *server, nil
}

// GetBind returns the aime id bound on a server; no binding is ErrNotFound
func (s *ChunithmService) GetBind(ctx context.Context, imID, server string) (string, error) {
	aimeID, err := s.store.GetBind(ctx, imID, server)
	if err != nil {
		return "", err
	}
	if aimeID == nil {
		return "", fmt.Errorf("bind for %s/%s: %w", imID, server, ErrNotFound)
	}

	return *aimeID, nil
}

// SetBind binds an aime card on a server, replacing any previous card
func (s *ChunithmService) SetBind(ctx context.Context, imID, server, aimeID string) error {
	err := s.store.UpsertBind(ctx, &models.ChunithmBind{ImID: imID, Server: server, AimeID: aimeID})
	if err != nil {
		return err
	}

	s.log.Info("chunithm bind set", "im_id", imID, "server", server)
	return nil
}

// DeleteBind removes an exact binding; removing nothing is ErrNotFound
func (s *ChunithmService) DeleteBind(ctx context.Context, imID, server, aimeID string) error {
	removed, err := s.store.DeleteBind(ctx, &models.ChunithmBind{ImID: imID, Server: server, AimeID: aimeID})
	if err != nil {
		return err
	}
	if removed == 0 {
		return fmt.Errorf("bind for %s/%s: %w", imID, server, ErrNotFound)
	}

	return nil
}
