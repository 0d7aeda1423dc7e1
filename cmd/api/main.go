// @title           Task Tracker API
// @version         1.0
// @description     Task tracker with bearer token auth.
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tasktracker/internal/app"
	"tasktracker/internal/config"
	"tasktracker/internal/logger"

	_ "tasktracker/docs"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	appLogger := logger.New(cfg.Log.Level, cfg.Log.Format)
	if cfg.App.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}
	appLogger.Info("config loaded",
		slog.String("env", cfg.App.Env),
		slog.String("version", cfg.App.Version),
		slog.String("storage", cfg.Storage.Backend),
	)

	application, err := app.New(cfg, appLogger)
	if err != nil {
		appLogger.Error("app init failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.HTTP.Port,
		Handler:      application.Router(),
		ReadTimeout:  cfg.HTTP.ReadTimeout.Duration(),
		WriteTimeout: cfg.HTTP.WriteTimeout.Duration(),
		IdleTimeout:  cfg.HTTP.IdleTimeout.Duration(),
	}

	serveErr := make(chan error, 1)
	go func() {
		appLogger.Info("http server listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		appLogger.Info("shutting down", slog.String("signal", sig.String()))
	case err := <-serveErr:
		appLogger.Error("http server failed", slog.String("error", err.Error()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLogger.Error("http shutdown failed", slog.String("error", err.Error()))
	}
	if err := application.Close(ctx); err != nil {
		appLogger.Error("close resources failed", slog.String("error", err.Error()))
	}
}
