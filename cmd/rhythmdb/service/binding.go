package service

import (
	"context"
	"fmt"

	"github.com/harukilab/rhythmdb/cmd/rhythmdb/models"
	"github.com/harukilab/rhythmdb/common/cache"
	"github.com/harukilab/rhythmdb/common/logger"
	"github.com/harukilab/rhythmdb/common/metrics"
)

// BindingStore is the persistence surface for user bindings.
// Implemented by repository.BindingRepository.
type BindingStore interface {
	List(ctx context.Context, imID string, server *string) ([]models.UserBinding, error)
	Get(ctx context.Context, imID string, bindID int) (*models.UserBinding, error)
	Exists(ctx context.Context, imID, server, userID string) (bool, error)
	Insert(ctx context.Context, binding *models.UserBinding) (int, error)
	UpdateVisibility(ctx context.Context, imID string, bindID int, visible bool) error
	Delete(ctx context.Context, imID string, bindID int) error
	GetDefault(ctx context.Context, imID, server string) (*models.UserBinding, error)
	SetDefault(ctx context.Context, imID, server string, bindID int) error
	DeleteDefault(ctx context.Context, imID, server string) (int64, error)
}

// BindingService manages game-account bindings and default-binding slots
// of pjsk users
type BindingService struct {
	store   BindingStore
	cache   cache.Cache
	metrics *metrics.Metrics
	log     *logger.Logger
}

// NewBindingService creates a new binding service
func NewBindingService(store BindingStore, c cache.Cache, m *metrics.Metrics, log *logger.Logger) *BindingService {
	return &BindingService{
		store:   store,
		cache:   c,
		metrics: m,
		log:     log,
	}
}

// List returns a user's bindings, optionally narrowed to one server.
// A user with no bindings is ErrNotFound.
func (s *BindingService) List(ctx context.Context, imID string, server *string) ([]models.UserBinding, error) {
	bindings, err := fetchCached(ctx, s.cache, s.metrics, "bindings", bindingListKey(imID, server),
		func(ctx context.Context) ([]models.UserBinding, error) {
			return s.store.List(ctx, imID, server)
		})
	if err != nil {
		return nil, err
	}

	if len(bindings) == 0 {
		return nil, fmt.Errorf("bindings for %s: %w", imID, ErrNotFound)
	}

	return bindings, nil
}

// Add creates a binding. The "default" server name is reserved for the
// default-binding slot; an identical binding is ErrConflict.
func (s *BindingService) Add(ctx context.Context, imID string, req *models.AddBindingRequest) (int, error) {
	if req.Server == models.DefaultServer {
		return 0, fmt.Errorf("server %q: %w", req.Server, ErrInvalidArgument)
	}

	exists, err := s.store.Exists(ctx, imID, req.Server, req.UserID)
	if err != nil {
		return 0, err
	}
	if exists {
		return 0, fmt.Errorf("binding %s/%s: %w", req.Server, req.UserID, ErrConflict)
	}

	visible := true
	if req.Visible != nil {
		visible = *req.Visible
	}

	bindID, err := s.store.Insert(ctx, &models.UserBinding{
		ImID:    imID,
		Server:  req.Server,
		UserID:  req.UserID,
		Visible: visible,
	})
	if err != nil {
		return 0, err
	}

	s.invalidateBindings(ctx, imID, req.Server)
	s.log.Info("binding added", "im_id", imID, "server", req.Server, "bind_id", bindID)
	return bindID, nil
}

// GetDefault resolves the default binding of a server slot (or the global
// "default" slot)
func (s *BindingService) GetDefault(ctx context.Context, imID, server string) (*models.UserBinding, error) {
	binding, err := fetchCached(ctx, s.cache, s.metrics, "default_binding", defaultBindingKey(imID, server),
		func(ctx context.Context) (*models.UserBinding, error) {
			return s.store.GetDefault(ctx, imID, server)
		})
	if err != nil {
		return nil, err
	}
	if binding == nil {
		return nil, fmt.Errorf("default binding for %s/%s: %w", imID, server, ErrNotFound)
	}

	return binding, nil
}

// SetDefault points a server slot at one of the user's bindings. The
// binding must exist and, for a concrete server slot, live on that server.
func (s *BindingService) SetDefault(ctx context.Context, imID, server string, bindID int) error {
	binding, err := s.store.Get(ctx, imID, bindID)
	if err != nil {
		return err
	}
	if binding == nil {
		return fmt.Errorf("binding %d: %w", bindID, ErrNotFound)
	}
	if server != models.DefaultServer && server != binding.Server {
		return fmt.Errorf("binding %d is on server %s: %w", bindID, binding.Server, ErrInvalidArgument)
	}

	if err := s.store.SetDefault(ctx, imID, server, bindID); err != nil {
		return err
	}

	s.cache.Delete(ctx, defaultBindingKey(imID, server))
	s.log.Info("default binding set", "im_id", imID, "server", server, "bind_id", bindID)
	return nil
}

// DeleteDefault clears a default-binding slot. Clearing an empty slot is
// fine; the end state is the same.
func (s *BindingService) DeleteDefault(ctx context.Context, imID, server string) error {
	if _, err := s.store.DeleteDefault(ctx, imID, server); err != nil {
		return err
	}

	s.cache.Delete(ctx, defaultBindingKey(imID, server))
	return nil
}

// SetVisibility toggles whether a binding's game uid may be shown
func (s *BindingService) SetVisibility(ctx context.Context, imID string, bindID int, visible bool) error {
	binding, err := s.store.Get(ctx, imID, bindID)
	if err != nil {
		return err
	}
	if binding == nil {
		return fmt.Errorf("binding %d: %w", bindID, ErrNotFound)
	}

	if err := s.store.UpdateVisibility(ctx, imID, bindID, visible); err != nil {
		return err
	}

	s.invalidateBindings(ctx, imID, binding.Server)
	return nil
}

// Delete removes a binding along with any default-binding slots pointing
// at it
func (s *BindingService) Delete(ctx context.Context, imID string, bindID int) error {
	binding, err := s.store.Get(ctx, imID, bindID)
	if err != nil {
		return err
	}
	if binding == nil {
		return fmt.Errorf("binding %d: %w", bindID, ErrNotFound)
	}

	if err := s.store.Delete(ctx, imID, bindID); err != nil {
		return err
	}

	s.invalidateBindings(ctx, imID, binding.Server)
	s.cache.Delete(ctx,
		defaultBindingKey(imID, models.DefaultServer),
		defaultBindingKey(imID, binding.Server),
	)
	s.log.Info("binding deleted", "im_id", imID, "bind_id", bindID)
	return nil
}

func (s *BindingService) invalidateBindings(ctx context.Context, imID, server string) {
	s.cache.Delete(ctx,
		bindingListKey(imID, nil),
		bindingListKey(imID, &server),
	)
}
