package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/riskibarqy/mix-league/internal/config"
	"github.com/riskibarqy/mix-league/internal/domain/mix"
	"github.com/riskibarqy/mix-league/internal/domain/profile"
	"github.com/riskibarqy/mix-league/internal/domain/season"
	presencememory "github.com/riskibarqy/mix-league/internal/infrastructure/presence/memory"
	"github.com/riskibarqy/mix-league/internal/infrastructure/recordstore/memory"
	"github.com/riskibarqy/mix-league/internal/infrastructure/recordstore/postgres"
	"github.com/riskibarqy/mix-league/internal/infrastructure/recordstore/postgrest"
	cacherepo "github.com/riskibarqy/mix-league/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/mix-league/internal/infrastructure/repository/records"
	"github.com/riskibarqy/mix-league/internal/interfaces/httpapi"
	basecache "github.com/riskibarqy/mix-league/internal/platform/cache"
	idgen "github.com/riskibarqy/mix-league/internal/platform/id"
	"github.com/riskibarqy/mix-league/internal/platform/logging"
	"github.com/riskibarqy/mix-league/internal/platform/recordstore"
	"github.com/riskibarqy/mix-league/internal/platform/resilience"
	"github.com/riskibarqy/mix-league/internal/usecase"
)

const presenceSweepInterval = 15 * time.Second

// App owns the HTTP server and the background work bound to it.
type App struct {
	Server *http.Server

	hub         *presencememory.Hub
	ranking     *usecase.RankingService
	warmWorkers int
	closers     []func() error
	logger      *logging.Logger
}

func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	store, closeStore, err := openStore(cfg, logger)
	if err != nil {
		return nil, err
	}

	var cache *basecache.Store
	if cfg.CacheEnabled {
		cache = basecache.NewStore(cfg.CacheTTL)
	}

	// Finalization reads ratings inside its transaction, so it always gets
	// the store-backed profiles; everything else may read through the cache.
	storeProfiles := records.NewProfileRepository(store)

	var seasonRepo season.Repository = records.NewSeasonRepository(store, idgen.NewNanoIDGenerator())
	var mapRepo mix.MapRepository = records.NewMapRepository(store)
	var profileRepo profile.Repository = storeProfiles
	var profileCache usecase.ProfileInvalidator
	mixRepo := records.NewMixRepository(store, idgen.NewNanoIDGenerator())
	rosterRepo := records.NewRosterRepository(store)
	statRepo := records.NewStatRepository(store)
	if cache != nil {
		cachedProfiles := cacherepo.NewProfileRepository(storeProfiles, cache)
		seasonRepo = cacherepo.NewSeasonRepository(seasonRepo, cache)
		mapRepo = cacherepo.NewMapRepository(mapRepo, cache)
		profileRepo = cachedProfiles
		profileCache = cachedProfiles
	}

	tx := recordstore.TransactorFor(store)
	hub := presencememory.NewHub(cfg.PresenceTTL)

	rankingSvc := usecase.NewRankingService(seasonRepo, mixRepo, rosterRepo, statRepo, profileRepo, cache, logger)
	seasonSvc := usecase.NewSeasonService(seasonRepo, mixRepo, mapRepo, logger)
	ratingRepo := records.NewRatingRepository(store)
	mixSvc := usecase.NewMixService(mixRepo, mapRepo, rosterRepo, statRepo, profileRepo, tx, logger).
		WithSeasonInvalidator(rankingSvc).
		WithRatingLedger(ratingRepo)
	finalizeSvc := usecase.NewFinalizeService(
		mixRepo,
		mapRepo,
		rosterRepo,
		statRepo,
		records.NewAssignmentRepository(store),
		ratingRepo,
		storeProfiles,
		tx,
		logger,
	).WithSeasonInvalidator(rankingSvc).WithProfileInvalidator(profileCache)
	recruitSvc := usecase.NewRecruitService(hub, mixRepo, profileRepo, mixSvc, logger)
	profileSvc := usecase.NewProfileService(profileRepo, logger)

	handler := httpapi.NewHandler(seasonSvc, mixSvc, finalizeSvc, rankingSvc, recruitSvc, profileSvc, cache, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &App{
		Server:      server,
		hub:         hub,
		ranking:     rankingSvc,
		warmWorkers: cfg.RankingWarmWorkers,
		closers:     []func() error{closeStore},
		logger:      logger,
	}, nil
}

// Start launches the presence sweeper and warms the ranking cache. Both stop
// when ctx is cancelled.
func (a *App) Start(ctx context.Context) {
	go a.hub.Run(ctx, presenceSweepInterval)

	if a.warmWorkers == 0 {
		return
	}
	go func() {
		result, err := a.ranking.WarmActiveSeasons(ctx, a.warmWorkers)
		if err != nil {
			a.logger.WarnContext(ctx, "ranking warm-up failed", "error", err)
			return
		}
		a.logger.InfoContext(ctx, "ranking warm-up done",
			"seasons", result.Seasons,
			"warmed", result.Warmed,
			"failed", result.Failed,
		)
	}()
}

func (a *App) Close() error {
	var firstErr error
	for _, closeFn := range a.closers {
		if closeFn == nil {
			continue
		}
		if err := closeFn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func openStore(cfg config.Config, logger *logging.Logger) (recordstore.Store, func() error, error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		db, err := postgres.Open(context.Background(), postgres.OpenConfig{
			URL:             cfg.DBURL,
			ApplicationName: cfg.ServiceName,
			MaxOpenConns:    cfg.DBMaxOpenConns,
			MaxIdleConns:    cfg.DBMaxIdleConns,
			ConnMaxLifetime: cfg.DBConnMaxLifetime,
			PingTimeout:     5 * time.Second,
		})
		if err != nil {
			return nil, nil, err
		}
		logger.Info("record store ready", "driver", cfg.StoreDriver, "max_open_conns", cfg.DBMaxOpenConns)
		return postgres.NewStore(db, logger), db.Close, nil

	case config.StorePostgREST:
		store, err := postgrest.NewStore(postgrest.Config{
			BaseURL:    cfg.PostgRESTURL,
			APIKey:     cfg.PostgRESTAPIKey,
			Timeout:    cfg.PostgRESTTimeout,
			MaxRetries: cfg.PostgRESTMaxRetries,
			Logger:     logger,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.PostgRESTCircuitEnabled,
				FailureThreshold: cfg.PostgRESTCircuitFailureCount,
				OpenTimeout:      cfg.PostgRESTCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.PostgRESTCircuitHalfOpenMaxReq,
			},
		})
		if err != nil {
			return nil, nil, fmt.Errorf("build postgrest store: %w", err)
		}
		logger.Info("record store ready", "driver", cfg.StoreDriver, "base_url", cfg.PostgRESTURL)
		return store, nil, nil

	default:
		store := memory.New(records.MemoryOptions()...)
		store.Seed(records.CollectionMaps, records.SeedMapPool()...)
		store.Seed(records.CollectionProfiles, records.SeedProfiles()...)
		logger.Info("record store ready", "driver", config.StoreMemory)
		return store, nil, nil
	}
}
