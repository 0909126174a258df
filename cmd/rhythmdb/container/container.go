package container

import (
	"time"

	"github.com/harukilab/rhythmdb/cmd/rhythmdb/repository"
	"github.com/harukilab/rhythmdb/cmd/rhythmdb/service"
	"github.com/harukilab/rhythmdb/common/bootstrap"
	"github.com/harukilab/rhythmdb/common/cache"
)

// Container holds all initialized services and repositories (singleton pattern)
type Container struct {
	Components *bootstrap.Components

	// Repositories
	AliasRepo      *repository.AliasRepository
	ModerationRepo *repository.ModerationRepository
	BindingRepo    *repository.BindingRepository
	PreferenceRepo *repository.PreferenceRepository
	ChunithmRepo   *repository.ChunithmRepository
	MusicRepo      *repository.MusicRepository

	// Services
	AliasService      *service.AliasService
	ModerationService *service.ModerationService
	BindingService    *service.BindingService
	PreferenceService *service.PreferenceService
	ChunithmService   *service.ChunithmService
	MusicService      *service.MusicService
}

// NewContainer initializes all services and repositories once
func NewContainer(components *bootstrap.Components) (*Container, error) {
	// When the cache is disabled in config, services still run through the
	// read-through path, just over a process-local store.
	c := components.Cache
	if c == nil {
		c = cache.NewMemoryCache(5 * time.Minute)
	}

	// Initialize repositories
	aliasRepo := repository.NewAliasRepository(components.DB)
	moderationRepo := repository.NewModerationRepository(components.DB)
	bindingRepo := repository.NewBindingRepository(components.DB)
	preferenceRepo := repository.NewPreferenceRepository(components.DB)
	chunithmRepo := repository.NewChunithmRepository(components.DB)
	musicRepo := repository.NewMusicRepository(components.DB)

	// Initialize services (bottom-up: dependencies first)
	aliasService := service.NewAliasService(aliasRepo, moderationRepo, c, components.Metrics, components.Logger)
	moderationService := service.NewModerationService(moderationRepo, aliasRepo, c, components.Metrics, components.Logger)
	bindingService := service.NewBindingService(bindingRepo, c, components.Metrics, components.Logger)
	preferenceService := service.NewPreferenceService(preferenceRepo, c, components.Metrics, components.Logger)
	chunithmService := service.NewChunithmService(chunithmRepo, c, components.Metrics, components.Logger)
	musicService := service.NewMusicService(musicRepo, c, components.Metrics, components.Logger)

	return &Container{
		Components:        components,
		AliasRepo:         aliasRepo,
		ModerationRepo:    moderationRepo,
		BindingRepo:       bindingRepo,
		PreferenceRepo:    preferenceRepo,
		ChunithmRepo:      chunithmRepo,
		MusicRepo:         musicRepo,
		AliasService:      aliasService,
		ModerationService: moderationService,
		BindingService:    bindingService,
		PreferenceService: preferenceService,
		ChunithmService:   chunithmService,
		MusicService:      musicService,
	}, nil
}
