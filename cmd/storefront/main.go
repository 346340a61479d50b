// Package main boots the storefront HTTP server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fairyhunter13/storefront/internal/auth"
	"github.com/fairyhunter13/storefront/internal/config"
	httpapi "github.com/fairyhunter13/storefront/internal/http"
	"github.com/fairyhunter13/storefront/internal/idempotency"
	"github.com/fairyhunter13/storefront/internal/notify"
	"github.com/fairyhunter13/storefront/internal/obs"
	"github.com/fairyhunter13/storefront/internal/queue"
	"github.com/fairyhunter13/storefront/internal/store"
	"github.com/fairyhunter13/storefront/internal/store/postgres"
)

func openStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	if cfg.DatabaseURL == "" {
		obs.Logger.Warnw("store_in_memory", "reason", "DATABASE_URL not set")
		return store.NewMemory(), nil
	}
	pg, err := postgres.Open(ctx, cfg.DatabaseURL, int32(cfg.DBMaxConns))
	if err != nil {
		return nil, err
	}
	if err := pg.Migrate(ctx); err != nil {
		pg.Close()
		return nil, err
	}
	obs.Logger.Infow("store_postgres", "max_conns", cfg.DBMaxConns)
	return pg, nil
}

func openIdempotency(ctx context.Context, cfg config.Config) (idempotency.Store, func(), error) {
	if cfg.RedisURL == "" {
		return idempotency.NewMemory(cfg.IdempotencyTTL), func() {}, nil
	}
	client, err := idempotency.OpenRedis(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	obs.Logger.Infow("idempotency_redis")
	return idempotency.NewRedis(client, cfg.IdempotencyTTL), func() { _ = client.Close() }, nil
}

func newMailer(cfg config.Config) notify.Mailer {
	if cfg.SendGridAPIKey == "" || cfg.SendGridFrom == "" {
		obs.Logger.Infow("mailer_log_only")
		return notify.LogMailer{}
	}
	return notify.NewSendGridMailer(cfg.SendGridAPIKey, cfg.SendGridFrom, "Storefront")
}

func main() {
	cfg := config.Load()
	obs.InitLogger(cfg.LogLevel)
	defer obs.Sync()
	if err := cfg.Validate(); err != nil {
		obs.Logger.Fatalw("invalid_config", "error", err)
	}
	if cfg.UsesDevSecret() {
		obs.Logger.Warnw("jwt_dev_secret", "hint", "set JWT_SECRET outside development")
	}
	obs.Logger.Infow("service_starting", "addr", cfg.HTTPAddr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bootCtx, cancelBoot := context.WithTimeout(ctx, 30*time.Second)
	st, err := openStore(bootCtx, cfg)
	if err != nil {
		cancelBoot()
		obs.Logger.Fatalw("store_open_failed", "error", err)
	}
	defer st.Close()
	idem, closeIdem, err := openIdempotency(bootCtx, cfg)
	if err != nil {
		cancelBoot()
		obs.Logger.Fatalw("redis_open_failed", "error", err)
	}
	defer closeIdem()

	mgr := queue.NewManager[notify.Message]("notifications", queue.OptionsFromConfig(cfg), queue.New[notify.Message](128), notify.Deliver(newMailer(cfg)))
	mgr.Start(ctx)

	app := httpapi.NewApp(cfg, st, auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL), idem, mgr)
	if cfg.AdminEmail != "" {
		admin, err := app.Accounts.EnsureAdmin(bootCtx, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			cancelBoot()
			obs.Logger.Fatalw("admin_bootstrap_failed", "error", err)
		}
		obs.Logger.Infow("admin_ready", "user_id", admin.ID)
	}
	cancelBoot()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewRouter(app),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		obs.Logger.Infow("http_listen", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			obs.Logger.Errorw("http_server_error", "error", err)
			os.Exit(1)
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	s := <-sigc
	obs.Logger.Infow("shutdown_signal", "signal", s.String())

	app.StartShutdown()

	ctxSrv, cancelSrv := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelSrv()
	if err := srv.Shutdown(ctxSrv); err != nil {
		obs.Logger.Errorw("http_shutdown_error", "error", err)
	}

	mt := mgr.Metrics()
	obs.Logger.Infow("shutdown_drain_begin", "backlog_size", mt.Backlog, "worker_count", mt.WorkerCount)
	ctxDrain, cancelDrain := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelDrain()
	if drained := mgr.DrainUntil(ctxDrain); !drained {
		obs.Logger.Warnw("shutdown_drain_timeout")
	} else {
		obs.Logger.Infow("shutdown_drain_complete")
	}
	mgr.Stop()
	obs.Logger.Infow("service_stopped")
}
