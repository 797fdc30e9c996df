package components

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"helphop/internal/api"
	"helphop/internal/config"
	"helphop/internal/geo"
	"helphop/internal/redis"
	"helphop/internal/service"
	"helphop/internal/storage/postgres"
	"helphop/pkg/logger"
)

type Components struct {
	logger     *slog.Logger
	HttpServer *api.Server
	Postgres   *postgres.Postgres
	Redis      *redis.Redis
	Sender     *service.BroadcastSender
}

func InitComponents(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Components, error) {
	logger.Info("Initializing Postgres")
	storage, err := postgres.NewPostgres(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to init postgres", slog.Any("error", err))
		return nil, fmt.Errorf("failed to init postgres: %w", err)
	}

	logger.Info("Initializing Redis")
	redisClient, err := redis.NewRedis(ctx, cfg, logger)
	if err != nil {
		storage.Pool.Close()
		return nil, fmt.Errorf("failed to init redis: %w", err)
	}

	queue := redis.NewBroadcastQueue(redisClient.Client, cfg.Broadcast.QueueKey)

	center := geo.Point{Lat: cfg.Rescue.CenterLat, Lng: cfg.Rescue.CenterLng}
	intakeSvc := service.NewIntakeService(storage.Incidents(), queue, logger, center, cfg.Rescue.RadiusKm)
	lifecycleSvc := service.NewLifecycleService(storage.Incidents(), logger)
	statsSvc := service.NewStatsService(storage.Stats())

	srv := service.NewService(intakeSvc, lifecycleSvc, statsSvc)

	httpServer := api.NewServer(cfg, logger, srv)
	logger.Info("Initialized server")

	var sender *service.BroadcastSender
	if !cfg.Broadcast.Disabled {
		sender = service.NewBroadcastSender(logger, cfg.Broadcast, queue)
	}

	return &Components{
		logger:     logger,
		HttpServer: httpServer,
		Postgres:   storage,
		Redis:      redisClient,
		Sender:     sender,
	}, nil
}

func SetupLogger(env string) *slog.Logger {
	switch env {
	case "local":
		return logger.SetupPrettySlog()
	case "dev":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	case "prod":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	default:
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	}
}

func (c *Components) ShutdownAll() {
	start := time.Now()
	c.logger.Info("Shutting down components")

	c.Postgres.Pool.Close()
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.logger.Error("Redis close failed", slog.String("err", err.Error()))
		}
	}

	c.logger.Info("All components stopped",
		slog.Duration("latency", time.Since(start)))
}
