// @title        Wine Quality Expert API
// @version      1.0.0
// @description  Predicts a wine quality score and tier from eleven chemical measurements.
// @BasePath     /
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

	"github.com/ZanzyTHEbar/wine-quality-expert/internal/config"
	apperrors "github.com/ZanzyTHEbar/wine-quality-expert/internal/errors"
	"github.com/ZanzyTHEbar/wine-quality-expert/internal/monitoring"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := monitoring.NewLogger(cfg.SlogLevel())
	slog.SetDefault(logger.Logger)

	gin.SetMode(cfg.GinMode)

	a, err := newApp(context.Background(), cfg, logger)
	if err != nil {
		if apperrors.IsModelLoad(err) {
			slog.Error("Failed to load model artifacts", "model_dir", cfg.ModelDir, "error", err)
		} else {
			slog.Error("Failed to initialize server", "error", err)
		}
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           a.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("Starting server", "port", cfg.Port, "mode", cfg.GinMode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	a.Close()

	slog.Info("Server exited")
}
