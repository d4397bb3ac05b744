package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sourcegraph/conc"

	"github.com/Proton-105/relay-bot/internal/bot"
	"github.com/Proton-105/relay-bot/internal/contact"
	apperrors "github.com/Proton-105/relay-bot/internal/errors"
	"github.com/Proton-105/relay-bot/internal/greeting"
	"github.com/Proton-105/relay-bot/internal/health"
	"github.com/Proton-105/relay-bot/internal/idempotency"
	"github.com/Proton-105/relay-bot/internal/kv"
	"github.com/Proton-105/relay-bot/internal/lifecycle"
	"github.com/Proton-105/relay-bot/internal/middleware"
	"github.com/Proton-105/relay-bot/internal/platform"
	"github.com/Proton-105/relay-bot/internal/ratelimit"
	"github.com/Proton-105/relay-bot/internal/registry"
	"github.com/Proton-105/relay-bot/pkg/config"
	"github.com/Proton-105/relay-bot/pkg/graceful"
	"github.com/Proton-105/relay-bot/pkg/logger"
	"github.com/Proton-105/relay-bot/pkg/metrics"
	pkgredis "github.com/Proton-105/relay-bot/pkg/redis"
)

func serve(ctx context.Context, configPath string) error {
	cfg, v, err := config.Load(configPath)
	if err != nil {
		return err
	}

	appLog, err := logger.New(logger.Options{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Sentry:     cfg.Sentry.Enabled,
	})
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = appLog.Close() }()

	log := appLog.Logger
	slog.SetDefault(log)

	if cfg.Sentry.Enabled {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.Sentry.DSN, Environment: cfg.AppEnv}); err != nil {
			return fmt.Errorf("init sentry: %w", err)
		}
	}

	config.Watch(v, log, func(next *config.Config) {
		if err := appLog.SetLevel(next.Log.Level); err != nil {
			log.Warn("failed to apply log level", slog.String("level", next.Log.Level), slog.Any("error", err))
		}
	})

	log.Info("starting relay bot",
		slog.String("env", cfg.AppEnv),
		slog.String("mode", cfg.Bot.Mode),
		slog.String("log_level", cfg.Log.Level),
	)

	rdb, err := pkgredis.New(ctx, pkgredis.Config{
		Addr:            cfg.Redis.Addr,
		Password:        cfg.Redis.Password,
		DB:              cfg.Redis.DB,
		PoolSize:        cfg.Redis.PoolSize,
		MinIdleConns:    cfg.Redis.MinIdleConns,
		PoolTimeout:     cfg.Redis.PoolTimeout,
		IdleTimeout:     cfg.Redis.IdleTimeout,
		MaxRetries:      cfg.Redis.MaxRetries,
		MinRetryBackoff: cfg.Redis.MinRetryBackoff,
		MaxRetryBackoff: cfg.Redis.MaxRetryBackoff,
	})
	if err != nil {
		return err
	}
	redisClient := pkgredis.NewMetricsClient(rdb)
	defer func() { _ = redisClient.Close() }()

	redisStore, err := kv.NewRedisStore(redisClient, cfg.Store.Root, log)
	if err != nil {
		return err
	}
	var store kv.Store = redisStore
	if cfg.Store.Cache {
		store = kv.NewCachedStore(redisStore)
	}

	tb, err := bot.NewTelebot(cfg.Bot)
	if err != nil {
		return err
	}
	client := platform.NewMetricsClient(platform.NewTelebotClient(tb))

	var locker contact.Locker
	if cfg.Contact.SerializeTopics {
		locker = contact.NewRedisLocker(redisClient, cfg.Store.Root, cfg.Contact.LockTTL, 0, log)
	}

	settings := registry.New(store, log)
	router := contact.New(store, client, locker, log)
	greeter := greeting.New(store, settings, client, cfg.Greeting.DefaultText, log)

	deps := bot.Deps{
		Settings:   settings,
		Contact:    router,
		Greeter:    greeter,
		Client:     client,
		ErrHandler: apperrors.NewHandler(log, cfg.Sentry.Enabled),
	}
	if cfg.Limits.DedupEnabled {
		deps.Guard = idempotency.NewRedisGuard(redisClient, cfg.Store.Root, cfg.Limits.DedupTTL, log)
	}
	if cfg.Limits.RateEnabled {
		deps.Limiter = ratelimit.NewRedisLimiter(redisClient, cfg.Store.Root, log)
		deps.Rules = ratelimit.NewRules(cfg.Limits)
	}

	relayBot := bot.New(tb, deps, log)

	checker := health.NewChecker(log)
	checker.AddCheck("redis", health.NewRedisChecker(redisClient))
	checker.AddCheck("telegram", health.NewTelegramChecker(tb))

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", checker)
	httpServer := graceful.NewServer(log, &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           middleware.HTTPLogging(log)(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}, cfg.Server.ShutdownTimeout)

	collector := metrics.NewContactCollector(router, relayBot.ID(), cfg.Contact.StatsInterval, log)

	var wg conc.WaitGroup
	wg.Go(func() {
		if err := httpServer.ListenAndServe(ctx); err != nil {
			log.Error("metrics server stopped", slog.Any("error", err))
		}
	})
	wg.Go(func() { collector.Run(ctx) })
	wg.Go(relayBot.Start)

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	shutdown := lifecycle.NewShutdown(log)
	shutdown.Register("telegram", func(context.Context) error {
		relayBot.Stop()
		return nil
	})
	if cfg.Sentry.Enabled {
		shutdown.Register("sentry", func(ctx context.Context) error {
			deadline, ok := ctx.Deadline()
			timeout := 2 * time.Second
			if ok {
				timeout = time.Until(deadline)
			}
			if !sentry.Flush(timeout) {
				return fmt.Errorf("sentry flush timed out")
			}
			return nil
		})
	}

	err = shutdown.Execute(shutdownCtx)
	wg.Wait()

	log.Info("relay bot stopped")
	return err
}
