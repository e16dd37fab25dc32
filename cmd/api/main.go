package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/timmy/socialkit/internal/api"
	"github.com/timmy/socialkit/internal/api/middleware"
	"github.com/timmy/socialkit/internal/config"
	"github.com/timmy/socialkit/internal/logger"
	"github.com/timmy/socialkit/internal/service"
	"github.com/timmy/socialkit/internal/source/picsum"
	"github.com/timmy/socialkit/internal/storage"
)

func main() {
	// Support CONFIG_PATH environment variable for production deployments
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		logger.Fatal("Failed to load config: %v", err)
	}

	appLogger := logger.New(cfg.Log.LoggerOptions("socialkit-api"))
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	strategist := service.NewGeminiStrategist(&service.GeminiConfig{
		APIKey:  cfg.Gemini.APIKey,
		BaseURL: cfg.Gemini.BaseURL,
		Model:   cfg.Gemini.StrategyModel,
		Timeout: cfg.Gemini.Timeout,
	})
	renderer := service.NewGeminiRenderer(&service.GeminiConfig{
		APIKey:  cfg.Gemini.APIKey,
		BaseURL: cfg.Gemini.BaseURL,
		Model:   cfg.Gemini.RenderModel,
		Timeout: cfg.Gemini.Timeout,
	})

	sessions := service.NewSessionManager(strategist, renderer, service.SessionManagerConfig{
		TTL:             cfg.Session.TTL,
		JanitorInterval: cfg.Session.JanitorInterval,
		EventBuffer:     cfg.Session.EventBuffer,
	}, service.WithLogger(appLogger))
	go sessions.RunJanitor(ctx)

	// Export is optional; the API answers 503 on export routes without it.
	var exporter *service.KitExporter
	if cfg.Storage.Enabled {
		objectStorage, err := storage.NewStorage(ctx, &storage.S3Config{
			Type:      storage.StorageType(cfg.Storage.Type),
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			UseSSL:    cfg.Storage.UseSSL,
			Bucket:    cfg.Storage.Bucket,
			Region:    cfg.Storage.Region,
			PublicURL: cfg.Storage.PublicURL,
		}, cfg.Storage.LocalDir)
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to initialize storage")
		}
		if ensurer, ok := objectStorage.(storage.BucketEnsurer); ok {
			if err := ensurer.EnsureBucket(ctx); err != nil {
				appLogger.WithError(err).Fatal("Failed to ensure storage bucket")
			}
		}
		exporter = service.NewKitExporter(objectStorage, "kits")
	}

	templates := picsum.NewAdapter(picsum.Config{
		BaseURL: cfg.Templates.BaseURL,
		Width:   cfg.Templates.Width,
		Height:  cfg.Templates.Height,
		Timeout: cfg.Templates.Timeout,
	})

	router := api.SetupRouter(api.Dependencies{
		Sessions:  sessions,
		Templates: templates,
		Exporter:  exporter,
	}, cfg.Server.Mode, middleware.CORSConfig{
		AllowedOrigins:  cfg.Server.CORS.AllowedOrigins,
		AllowAllOrigins: cfg.Server.CORS.AllowAllOrigins,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.WithFields(logger.Fields{
			"port":   cfg.Server.Port,
			"mode":   cfg.Server.Mode,
			"export": exporter != nil,
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	cancel()
	// Closing sessions ends open event streams so Shutdown does not wait on them.
	sessions.Shutdown()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Error("Server forced to shutdown")
	}

	appLogger.Info("Server exited")
}
