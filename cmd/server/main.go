package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/neexbeast/kalshitherm/internal/api"
	"github.com/neexbeast/kalshitherm/internal/cache"
	"github.com/neexbeast/kalshitherm/internal/config"
	"github.com/neexbeast/kalshitherm/internal/market"
	"github.com/neexbeast/kalshitherm/internal/storage"
	"github.com/neexbeast/kalshitherm/internal/wallet"
	"github.com/neexbeast/kalshitherm/internal/weather"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if err := run(log); err != nil {
		log.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	cfg, err := config.Load(log)
	if err != nil {
		return err
	}

	ctx := context.Background()

	// Connect to PostgreSQL and apply migrations.
	pool, err := storage.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	if err := storage.RunMigrations(ctx, pool); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	log.Info("migrations applied")

	// Forecast cache: Redis when configured, in-process otherwise.
	var forecastCache weather.Cache
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer func() { _ = redisClient.Close() }()
		forecastCache = cache.NewRedis[*weather.Forecast](redisClient, log)
		log.Info("forecast cache backed by redis")
	} else {
		forecastCache = cache.NewMemory[*weather.Forecast]()
		log.Info("forecast cache in-process")
	}

	// Wire dependencies.
	repo := storage.NewRepository(pool)
	forecasts := weather.NewService(weather.NewClient(), forecastCache, log)
	predictor := market.NewPredictor(nil)
	scanner := market.NewScanner(log)
	rpc := wallet.NewRPCClient(cfg.SolanaRPCEndpoint)

	handlers := api.NewHandlers(forecasts, predictor, scanner, repo, rpc, log)

	// Build router with pingers adapted for the health check.
	dbPinger := &pgxPoolPinger{pool: pool}
	var redisPinger api.Pinger
	if redisClient != nil {
		redisPinger = &redisPingerAdapter{client: redisClient}
	}

	router := api.NewRouter(handlers, cfg.BearerToken, dbPinger, redisPinger, log)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error("server goroutine panicked", "recover", r)
				errCh <- fmt.Errorf("server panicked: %v", r)
			}
		}()
		log.Info("server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("listening: %w", err)
		}
	}()

	select {
	case sig := <-quit:
		log.Info("shutdown signal received", "signal", sig)
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	log.Info("server shut down cleanly")
	return nil
}

// pgxPoolPinger adapts pgxpool.Pool to the api health check.
type pgxPoolPinger struct {
	pool interface {
		Ping(ctx context.Context) error
	}
}

func (p *pgxPoolPinger) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// redisPingerAdapter adapts redis.Client to the api health check.
type redisPingerAdapter struct {
	client *redis.Client
}

func (r *redisPingerAdapter) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
