package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iliyamo/memo-auth-api/internal/cache"
	"github.com/iliyamo/memo-auth-api/internal/config"
	"github.com/iliyamo/memo-auth-api/internal/controller"
	"github.com/iliyamo/memo-auth-api/internal/database"
	"github.com/iliyamo/memo-auth-api/internal/handler"
	"github.com/iliyamo/memo-auth-api/internal/logger"
	"github.com/iliyamo/memo-auth-api/internal/middleware"
	"github.com/iliyamo/memo-auth-api/internal/queue"
	"github.com/iliyamo/memo-auth-api/internal/repository"
	"github.com/iliyamo/memo-auth-api/internal/repository/memory"
	"github.com/iliyamo/memo-auth-api/internal/router"
	"github.com/iliyamo/memo-auth-api/internal/service"
	"github.com/iliyamo/memo-auth-api/internal/usecase"
	"github.com/iliyamo/memo-auth-api/internal/utils"
)

func main() {
	if err := start(); err != nil {
		os.Exit(1)
	}
}

// start owns every deferred cleanup so main can exit with a status
// after they have run.
func start() error {
	cfg, err := config.Load()
	if err != nil {
		l := zerolog.New(os.Stderr)
		l.Error().Err(err).Msg("invalid configuration")
		return err
	}
	log := logger.New(logger.Config{Env: cfg.Env, Level: cfg.LogLevel})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error().Err(err).Msg("server stopped")
		return err
	}
	return nil
}

// stores groups the persistence adapters of the selected driver.
type stores struct {
	db      *sql.DB
	users   usecase.UserRepository
	tokens  repository.TokenStore
	devices usecase.DeviceRepository
	memos   usecase.MemoRepository
}

func openStores(ctx context.Context, cfg config.Config, log zerolog.Logger) (*stores, error) {
	if cfg.Store == config.StoreMemory {
		log.Warn().Msg("using in-memory store; data is lost on restart")
		return &stores{
			users:   memory.NewUserRepo(),
			tokens:  memory.NewTokenRepo(),
			devices: memory.NewDeviceRepo(),
			memos:   memory.NewMemoRepo(),
		}, nil
	}
	db, err := database.Open(ctx, database.Options{
		User:     cfg.DBUser,
		Password: cfg.DBPass,
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		Name:     cfg.DBName,
	})
	if err != nil {
		return nil, err
	}
	if err := database.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Info().Str("host", cfg.DBHost).Str("db", cfg.DBName).Msg("mysql connected")
	return &stores{
		db:      db,
		users:   repository.NewUserRepo(db),
		tokens:  repository.NewTokenRepo(db),
		devices: repository.NewDeviceRepo(db),
		memos:   repository.NewMemoRepo(db),
	}, nil
}

func run(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	if st.db != nil {
		defer st.db.Close()
	}

	rdb, err := config.NewRedisClient(ctx, config.LoadRedisConfig())
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable; session cache and rate limiting disabled")
	}
	if rdb != nil {
		defer rdb.Close()
	}
	sessions := repository.NewSessionStore(st.tokens, cache.NewSessionCache(cfg.SessionCache, rdb, log), log)

	issuer, err := utils.NewTokenIssuer(cfg.JWTIssuer,
		utils.KeyConfig{Secret: cfg.AccessSecret, TTL: cfg.AccessTTL},
		utils.KeyConfig{Secret: cfg.RefreshSecret, TTL: cfg.RefreshTTL},
	)
	if err != nil {
		return err
	}

	var events usecase.EventPublisher = service.NopPublisher{}
	if cfg.RabbitURL != "" {
		pub := service.NewPublisher(cfg.RabbitURL, log)
		if err := pub.Connect(); err != nil {
			log.Warn().Err(err).Msg("rabbitmq unavailable; publisher retries with backoff")
		}
		defer pub.Close()
		events = pub
		go func() {
			if err := queue.StartSessionConsumer(ctx, cfg.RabbitURL, log); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("session consumer stopped")
			}
		}()
	}

	deps := usecase.Deps{
		Users:    st.users,
		Sessions: sessions,
		Devices:  st.devices,
		Memos:    st.memos,
		Hasher:   utils.NewBcryptHasher(cfg.BcryptCost),
		Tokens:   issuer,
		Events:   events,
		Log:      log,
	}
	users := usecase.NewUsers(deps)
	if cfg.RootEmail != "" {
		if _, err := users.EnsureRootUser(ctx, cfg.RootEmail, cfg.RootPassword); err != nil {
			return err
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	gateMetrics, err := controller.NewGateMetrics(reg)
	if err != nil {
		return err
	}
	httpMetrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{Registerer: reg})
	if err != nil {
		return err
	}

	gates := handler.Gates{
		Authn:   usecase.NewValidateAuthentication(deps),
		Authz:   usecase.NewValidateAuthorization(),
		Metrics: gateMetrics,
	}
	h, err := buildHandlers(gates, deps, users, log)
	if err != nil {
		return err
	}
	h.Health = handler.Health(healthChecks(st.db, rdb))
	h.Metrics = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.RequestID())
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(log))
	e.Use(httpMetrics.Handler())
	router.RegisterRoutes(e, h, middleware.RateLimit(cfg.RateLimit, rdb, log))

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		log.Info().Str("addr", addr).Str("env", cfg.Env).Str("store", cfg.Store).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if !cfg.Production() {
		if err := sessions.DeleteAll(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("clear sessions on shutdown")
		}
	}
	return nil
}

func buildHandlers(g handler.Gates, deps usecase.Deps, users *usecase.Users, log zerolog.Logger) (router.Handlers, error) {
	var h router.Handlers
	var err error
	h.Auth, err = handler.NewAuthHandler(g, handler.AuthUseCases{
		Login:   usecase.NewLogin(deps),
		Refresh: usecase.NewRefreshAccessToken(deps),
		Logout:  usecase.NewLogout(deps),
		Users:   users,
	}, log)
	if err != nil {
		return h, err
	}
	if h.Devices, err = handler.NewDeviceHandler(g, usecase.NewDevices(deps), log); err != nil {
		return h, err
	}
	if h.Memos, err = handler.NewMemoHandler(g, usecase.NewMemos(deps), log); err != nil {
		return h, err
	}
	h.Admin, err = handler.NewAdminHandler(g, users, log)
	return h, err
}

func healthChecks(db *sql.DB, rdb *redis.Client) map[string]handler.Check {
	checks := map[string]handler.Check{}
	if db != nil {
		checks["mysql"] = db.PingContext
	}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	return checks
}
