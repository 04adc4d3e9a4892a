package main

import (
	"log"

	"github.com/labstack/echo/v4"
	"github.com/miniblog/backend/internal/cache"
	"github.com/miniblog/backend/internal/router"
	"github.com/miniblog/backend/pkg/config"
	"github.com/miniblog/backend/validators"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database connections
	db, err := config.InitDB()
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB() // Ensure database connections are closed when main exits

	// Page cache: redis when configured, in-process otherwise
	var pageCache cache.PageCache
	if cfg.RedisAddr != "" {
		redisCache, err := cache.NewRedisCache(cfg.RedisAddr, cfg.CacheTTL)
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		defer redisCache.Close()
		pageCache = redisCache
	} else {
		log.Println("REDIS_ADDR not set, using in-memory page cache.")
		pageCache = cache.NewMemoryCache(cfg.CacheTTL)
	}

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	router.SetupRoutes(e, db.Postgres, db.Mongo, pageCache, cfg.PageSize, cfg.UploadDir)

	// Validator
	e.Validator = validators.NewValidator()

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
