// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andresuchdata/retail-ars/internal/api"
	"github.com/andresuchdata/retail-ars/internal/cache"
	"github.com/andresuchdata/retail-ars/internal/config"
	"github.com/andresuchdata/retail-ars/internal/repository"
	"github.com/andresuchdata/retail-ars/internal/repository/postgres"
	"github.com/andresuchdata/retail-ars/internal/service"
	"github.com/andresuchdata/retail-ars/pkg/logger"
)

func main() {
	cfg := config.Load()

	db, err := postgres.Connect(cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("database connection failed")
	}
	defer db.Close()

	metricsCache := cache.NewNoopMetricsCache()
	if cfg.Cache.Enabled {
		client, err := cache.NewRedisClient(cfg.Cache)
		if err != nil {
			logger.Log.Warn().Err(err).Msg("redis unavailable, caching disabled")
		} else {
			metricsCache = cache.NewRedisMetricsCache(client, time.Duration(cfg.Cache.SummaryTTLSeconds)*time.Second)
		}
	}

	svc := service.NewMetricsService(repository.NewMetricsRepository(db.DB), metricsCache)
	router := api.NewRouter(cfg, svc)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("analytics api listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error().Err(err).Msg("forced shutdown")
	}
	logger.Log.Info().Msg("server stopped")
}
