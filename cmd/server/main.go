package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"crop_yield/internal/app/config"
	"crop_yield/internal/app/di"
	"crop_yield/internal/app/router"
	authadapters "crop_yield/internal/feature/auth/adapters"
	authentity "crop_yield/internal/feature/auth/domain/entity"
	authhandler "crop_yield/internal/feature/auth/transport/handler"
	authusecase "crop_yield/internal/feature/auth/usecase"
	navhandler "crop_yield/internal/feature/navigation/transport/handler"
	"crop_yield/internal/feature/navigation/transport/middleware"
	navusecase "crop_yield/internal/feature/navigation/usecase"
	predictionhandler "crop_yield/internal/feature/prediction/transport/handler"
	predictionusecase "crop_yield/internal/feature/prediction/usecase"
	infradb "crop_yield/internal/platform/db"
	healthhandler "crop_yield/internal/platform/http/handler"
	jwtmw "crop_yield/internal/platform/jwt"
	"crop_yield/internal/platform/logger"
	"crop_yield/internal/platform/metrics"
	infraredis "crop_yield/internal/platform/redis"
	"crop_yield/internal/platform/web"
	"crop_yield/internal/shared/ratelimiter"
)

const (
	shutdownTimeout = 10 * time.Second
	sweepInterval   = 10 * time.Minute
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.SetDefault(logger.New(os.Stdout, cfg.LogLevel, cfg.LogFormat))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// db
	db, err := infradb.OpenDB(cfg.DB, &authentity.User{})
	if err != nil {
		return err
	}
	checks := []healthhandler.Check{{Name: "db", Ping: func(ctx context.Context) error { return infradb.Ping(db) }}}

	// Redis
	var rdb *redisv9.Client
	if cfg.SessionStore == config.SessionStoreRedis {
		if tmp, err := infraredis.NewRedisClient(cfg.Redis); err != nil {
			slog.Warn("Redis unavailable", "addr", cfg.Redis.Addr(), "error", err)
		} else {
			rdb = tmp
			defer func() {
				if err := rdb.Close(); err != nil {
					slog.Error("failed to close Redis client", "error", err)
				}
			}()
			checks = append(checks, healthhandler.Check{Name: "redis", Ping: func(ctx context.Context) error { return rdb.Ping(ctx).Err() }})
		}
	}

	// Session
	machine := navusecase.NewMachine(cfg.LoginRequired)
	store := di.NewSessionStore(cfg.SessionStore, rdb, cfg.SessionTTL)
	di.StartSessionSweeper(ctx, store, sweepInterval)
	tokens := jwtmw.NewSessionTokens(cfg.SessionSecret, cfg.SessionTTL)

	// Usecase
	hasher, err := authusecase.NewPasswordHasher(cfg.PasswordHasher)
	if err != nil {
		return err
	}
	authUC := authusecase.NewAuthUsecase(authadapters.NewUserGorm(db), hasher)
	if cfg.Model.BaseURL == "" {
		slog.Warn("MODEL_BASE_URL is not set; predictions will fail until it is configured")
	}
	predictionUC := predictionusecase.NewPredictionUsecase(di.NewModel(cfg.Model), cfg.Policy)

	// Handler
	m := metrics.NewMetrics("crop_yield")
	handlers := router.Handlers{
		Auth:       authhandler.NewAuthHandler(authUC, machine, m),
		Pages:      navhandler.NewPageHandler(machine),
		Prediction: predictionhandler.NewPredictionHandler(predictionUC, machine, m),
	}

	tmpl, err := web.LoadTemplates()
	if err != nil {
		return err
	}

	// ルータ生成
	sessionOpts := middleware.Options{TTL: cfg.SessionTTL, Secure: cfg.SecureCookie}
	apiSessionOpts := sessionOpts
	apiSessionOpts.ReadOnly = true
	r := router.NewRouter(handlers, router.Options{
		Templates:    tmpl,
		Session:      middleware.Session(store, tokens, machine, sessionOpts),
		APISession:   middleware.Session(store, tokens, machine, apiSessionOpts),
		LoginLimiter: ratelimiter.NewKeyedLimiter(cfg.LoginRatePerMin, cfg.LoginBurst).Middleware(),
		Health:       healthhandler.Health(checks...),
		Metrics:      m.Handler(),
		CORSOrigins:  cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", srv.Addr, "variant", cfg.Policy.Name, "login_required", cfg.LoginRequired, "session_store", cfg.SessionStore)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
