package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tasktracker/internal/config"
	"tasktracker/internal/metrics"
	"tasktracker/internal/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type App struct {
	cfg    config.Config
	logger *slog.Logger
	db     *storage.DB
	redis  *redis.Client
	router *gin.Engine
}

func New(cfg config.Config, logger *slog.Logger) (*App, error) {
	metrics.Init()
	a := &App{cfg: cfg, logger: logger}

	if cfg.NeedsRedis() {
		rdb, err := newRedis(cfg.Redis)
		if err != nil {
			return nil, err
		}
		a.redis = rdb
	}

	backend, err := newBackend(cfg, logger, a.redis)
	if err != nil {
		a.closeRedis()
		return nil, err
	}
	a.db = storage.NewDB(backend)
	logger.Info("storage ready", slog.String("backend", cfg.Storage.Backend))

	router, err := newRouter(cfg, logger, a.db, a.redis)
	if err != nil {
		_ = a.db.Close()
		a.closeRedis()
		return nil, err
	}
	a.router = router
	return a, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

// Close releases storage and Redis. It stops waiting once ctx is done; the
// release keeps running in the background.
func (a *App) Close(ctx context.Context) error {
	done := make(chan error, 1)
	go func() {
		var err error
		if a.db != nil {
			err = a.db.Close()
		}
		a.closeRedis()
		done <- err
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		a.logger.Warn("shutdown timed out before storage was closed")
		return ctx.Err()
	}
}

func (a *App) closeRedis() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
}

func newBackend(cfg config.Config, logger *slog.Logger, rdb *redis.Client) (storage.Backend, error) {
	switch cfg.Storage.Backend {
	case config.BackendFile:
		return storage.NewFileBackend(cfg.Storage.Dir, storage.WithLogger(logger))
	case config.BackendRedis:
		return storage.NewRedisBackend(rdb, cfg.Redis.KeyPrefix), nil
	case config.BackendPostgres:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return storage.NewPostgresBackend(ctx, cfg.PG.DSN)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func newRedis(cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return rdb, nil
}

func newRouter(cfg config.Config, logger *slog.Logger, db *storage.DB, rdb *redis.Client) (*gin.Engine, error) {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(logger))

	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "HEAD"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length", "Content-Type"},
		MaxAge:        12 * time.Hour,
	}))

	if err := Setup(r, cfg, logger, db, rdb); err != nil {
		return nil, err
	}
	return r, nil
}
