package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"tasktracker/internal/auth"
	"tasktracker/internal/cache"
	"tasktracker/internal/config"
	"tasktracker/internal/handlers"
	"tasktracker/internal/ident"
	"tasktracker/internal/repo"
	"tasktracker/internal/service"
	"tasktracker/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"
)

// Setup registers all routes on the given engine. rdb may be nil when no
// component needs Redis.
func Setup(r *gin.Engine, cfg config.Config, logger *slog.Logger, db *storage.DB, rdb *redis.Client) error {
	hasher, err := auth.NewBcryptHasher(cfg.Auth.BcryptCost)
	if err != nil {
		return err
	}
	tokens, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL.Duration())
	if err != nil {
		return err
	}

	r.GET("/", rootHandler(cfg))
	r.GET("/health", healthHandler(cfg, db))
	r.GET("/version", versionHandler(cfg))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger-doc.json", swaggerDocHandler())
	r.GET("/swagger", func(c *gin.Context) { c.Redirect(http.StatusFound, "/swagger/index.html") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(
		swaggerFiles.Handler,
		ginSwagger.URL("/swagger-doc.json"),
		ginSwagger.DefaultModelsExpandDepth(-1),
		ginSwagger.PersistAuthorization(true),
	))

	api := r.Group("/api/v1")
	ids := ident.UUIDGenerator{}

	userSvc := service.NewUserService(repo.NewDocUserRepo(db), hasher, ids)
	authHandler := handlers.NewAuthHandler(userSvc, tokens, logger)
	registerAuthRoutes(api, authHandler)

	var taskCache service.ListCache
	if cfg.Cache.Enabled && rdb != nil {
		taskCache = cache.NewTaskCache(rdb, cfg.Redis.KeyPrefix, cfg.Cache.TTL.Duration())
	}
	taskSvc := service.NewTaskService(repo.NewDocTaskRepo(db), ids, taskCache)

	protected := api.Group("", auth.RequireToken(tokens, logger))
	registerUserRoutes(protected, handlers.NewUserHandler(userSvc, logger))
	registerTaskRoutes(protected, handlers.NewTaskHandler(taskSvc, logger))
	return nil
}

func rootHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "Task Tracker API",
			"version": cfg.App.Version,
			"env":     cfg.App.Env,
			"docs":    "/swagger/index.html",
			"spec":    "/swagger-doc.json",
			"health":  "/health",
			"api":     "/api/v1",
		})
	}
}

func healthHandler(cfg config.Config, db *storage.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "env": cfg.App.Env, "error": "storage unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "env": cfg.App.Env, "storage": cfg.Storage.Backend})
	}
}

func versionHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"version": cfg.App.Version})
	}
}

func swaggerDocHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := swag.ReadDoc("swagger")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(doc))
	}
}

func registerAuthRoutes(api *gin.RouterGroup, h *handlers.AuthHandler) {
	api.POST("/register", h.Register)
	api.POST("/login", h.Login)
}

func registerUserRoutes(api *gin.RouterGroup, h *handlers.UserHandler) {
	api.GET("/users", h.List)
}

func registerTaskRoutes(api *gin.RouterGroup, h *handlers.TaskHandler) {
	api.POST("/tasks", h.Create)
	api.GET("/tasks", h.List)
	api.GET("/tasks/:id", h.GetByID)
	api.PUT("/tasks/:id", h.Update)
	api.DELETE("/tasks/:id", h.Delete)
}
