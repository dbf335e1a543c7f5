package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"

	"github.com/commodity-desk/pricer/internal/api"
	"github.com/commodity-desk/pricer/internal/calendar"
	"github.com/commodity-desk/pricer/internal/marketdata"
	"github.com/commodity-desk/pricer/internal/publisher"
	"github.com/commodity-desk/pricer/internal/rate"
	"github.com/commodity-desk/pricer/internal/store"
	"github.com/commodity-desk/pricer/pkg/config"
	"github.com/commodity-desk/pricer/pkg/logger"
	"github.com/commodity-desk/pricer/pkg/secrets"
	"github.com/commodity-desk/pricer/pkg/utils"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Load configuration ---
	cfg := config.Load()

	logger.Init(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	defer logger.Sync()
	logg := logger.S()
	logg.Info("starting [pricer]...")
	logg.Info("connection to DSN: ", utils.MaskDSN(cfg.DatabaseURL))

	// --- Calendar API key (env var, or AWS Secrets Manager fallback) ---
	calendarAPIKey := cfg.CalendarAPIKey
	if calendarAPIKey == "" && cfg.CalendarSecretName != "" {
		awsProvider, err := secrets.NewAWSProvider(cfg.AWSRegion)
		if err != nil {
			logg.Fatalw("failed to create AWS Secrets Manager provider", "error", err)
		}
		keyCache := secrets.NewCache[string](cfg.SecretCacheTTL)
		calendarAPIKey, err = secrets.ResolveAPIKey(ctx, awsProvider, keyCache, cfg.CalendarSecretName)
		if err != nil {
			logg.Fatalw("failed to resolve calendar API key",
				"secret", cfg.CalendarSecretName, "error", err)
		}
	}

	// --- Store (Redis + Postgres hybrid) ---
	st, err := store.NewHybrid(cfg.RedisAddr, cfg.RedisDB, cfg.DatabaseURL, store.PGPoolConfig{
		MaxConns:          int32(cfg.PGMaxConns),
		MinConns:          int32(cfg.PGMinConns),
		MaxConnLifetime:   cfg.PGMaxConnLifetime,
		MaxConnIdleTime:   cfg.PGMaxConnIdleTime,
		HealthCheckPeriod: cfg.PGHealthCheckPeriod,
	}, logger.L())
	if err != nil {
		logg.Fatalw("failed to init store", "error", err)
	}

	// --- Trading-calendar source (rate-limited client behind a Redis cache) ---
	limiter := rate.New(rate.Config{
		RequestsPerSecond: 10,
		Burst:             20,
	})
	calClient := calendar.NewClient(logger.L(), cfg.CalendarBaseURL, calendarAPIKey, limiter)
	calSource := calendar.NewCachedSource(logger.L(), calClient, st, cfg.CalendarCacheTTL)

	// --- NATS publisher (optional) ---
	var nc *nats.Conn
	var pub marketdata.EventPublisher
	if cfg.NATSURL != "" {
		nc, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			logg.Fatalw("failed to connect to NATS", "error", err)
		}
		p, err := publisher.New(logger.L(), nc, cfg.UploadSubject, cfg.ServiceName)
		if err != nil {
			logg.Fatalw("failed to init publisher", "error", err)
		}
		pub = p
	}

	// --- Market-data pipeline ---
	svc := marketdata.NewService(logger.L(), st, calSource, pub)

	// --- Fiber HTTP Server ---
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
		BodyLimit:    cfg.HTTPBodyLimit,
	})

	handler := api.NewMarketDataHandler(logger.L(), svc)
	api.RegisterRoutes(app, nc, st, handler)

	// Start HTTP server
	go func() {
		logg.Infof("HTTP API listening on :%d", cfg.Port)
		if err := app.Listen(fmt.Sprintf(":%d", cfg.Port)); err != nil {
			logg.Fatalw("fiber.listen_failed", "error", err)
		}
	}()

	logg.Infow("[pricer] running",
		"env", cfg.Env,
		"calendar", cfg.CalendarBaseURL,
		"nats", cfg.NATSURL)

	<-ctx.Done()
	logg.Info("shutting down [pricer]...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logg.Warnw("fiber.shutdown_failed", "error", err)
	}
	if nc != nil {
		if err := nc.Drain(); err != nil {
			logg.Warnw("nats.drain_failed", "error", err)
		}
	}
	if err := st.Close(); err != nil {
		logg.Warnw("store.close_failed", "error", err)
	}
}
