package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/league-live/internal/config"
	"github.com/riskibarqy/league-live/internal/infrastructure/realtime"
	"github.com/riskibarqy/league-live/internal/interfaces/httpapi"
	idgen "github.com/riskibarqy/league-live/internal/platform/id"
	"github.com/riskibarqy/league-live/internal/platform/logging"
	"github.com/riskibarqy/league-live/internal/usecase"
)

// App owns the league server: repositories, services, the realtime hub and
// the HTTP server in front of them.
type App struct {
	cfg         config.Config
	logger      *logging.Logger
	db          *sqlx.DB
	hub         *realtime.Hub
	broadcaster *realtime.Broadcaster
	server      *http.Server
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	a := &App{cfg: cfg, logger: logger}

	seed := cfg.AppEnv == config.EnvDev
	var (
		repos repositories
		err   error
	)
	if cfg.DBURL == "" {
		logger.Warn("DB_URL empty, using in-memory repositories")
		repos, err = memoryRepositories(ctx, seed)
	} else {
		a.db, err = openDatabase(ctx, cfg)
		if err != nil {
			return nil, err
		}
		logger.Info("database connected", "db_name", dbNameFromURL(cfg.DBURL))
		repos, err = postgresRepositories(ctx, a.db, seed)
	}
	if err != nil {
		a.closeDatabase()
		return nil, err
	}
	repos = repos.withCache(cfg, logger)

	ids := idgen.NewUUIDGenerator()
	tournamentSvc := usecase.NewTournamentService(repos.tournaments, repos.teams, repos.standings, ids, logger)
	fixtureSvc := usecase.NewFixtureSchedulerService(repos.tournaments, repos.standings, repos.matches, ids, logger)
	standingSvc := usecase.NewStandingService(repos.tournaments, repos.matches, repos.events, repos.standings, logger)
	suspensionSvc := usecase.NewSuspensionService(repos.suspensions, repos.matches, repos.events, repos.standings, ids, logger)
	matchSvc := usecase.NewMatchService(
		repos.tournaments,
		repos.matches,
		repos.events,
		repos.standings,
		standingSvc,
		suspensionSvc,
		ids,
		logger,
	)

	a.hub = realtime.NewHub(logger)
	a.broadcaster, err = realtime.NewBroadcaster(a.hub, cfg.BroadcasterPoolSize, logger)
	if err != nil {
		a.closeDatabase()
		return nil, err
	}
	matchSvc.SetNotifier(a.broadcaster)

	handler := httpapi.NewHandler(tournamentSvc, fixtureSvc, matchSvc, standingSvc, suspensionSvc, logger)
	ws := realtime.NewHandler(a.hub, cfg.CORSAllowedOrigins, cfg.WSSendBuffer, logger)
	router := httpapi.NewRouter(handler, ws, logger, cfg.SwaggerEnabled, cfg.CORSAllowedOrigins)

	a.server = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return a, nil
}

// Handler exposes the router, mainly for tests.
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server starting", "addr", a.cfg.HTTPAddr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		a.shutdown()
		if ok {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	return a.shutdown()
}

func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
	}
	if err := a.broadcaster.Close(a.cfg.ShutdownTimeout); err != nil {
		errs = append(errs, fmt.Errorf("close broadcaster: %w", err))
	}
	a.closeDatabase()

	a.logger.Info("http server stopped")
	return errors.Join(errs...)
}

func (a *App) closeDatabase() {
	if a.db == nil {
		return
	}
	if err := a.db.Close(); err != nil {
		a.logger.Warn("close database failed", "error", err)
	}
	a.db = nil
}
