package main

import (
	"context"
	"log"

	"agora/internal/config"
	"agora/internal/db"
	"agora/internal/logger"
	"agora/internal/router"
	"agora/internal/services"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()

	logg, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logg.Sync()

	for _, key := range cfg.Problems {
		logg.Warn("Ignoring invalid config value, using default", "key", key)
	}

	if cfg.LogMode == "prod" || cfg.LogMode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize Database
	conn, err := db.Open(cfg, logg)
	if err != nil {
		logg.Fatal("Failed to connect to database", "driver", cfg.DBDriver, "error", err)
	}
	if err := db.Migrate(conn, logg); err != nil {
		logg.Fatal("Failed to migrate database", "error", err)
	}
	if err := db.SeedWellKnownTags(context.Background(), conn, logg); err != nil {
		logg.Fatal("Failed to seed tags", "error", err)
	}

	svc, err := services.New(conn, logg, services.Options{
		TagCacheSize: cfg.TagCacheSize,
		TagCacheTTL:  cfg.TagCacheTTL,
	})
	if err != nil {
		logg.Fatal("Failed to build services", "error", err)
	}

	r := router.New(svc, logg, cfg.CORSOrigins)

	logg.Info("Agora server starting", "port", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		logg.Fatal("Server stopped", "error", err)
	}
}
