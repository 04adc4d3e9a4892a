package router

import (
	"log"

	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/miniblog/backend/internal/cache"
	"github.com/miniblog/backend/internal/handlers"
	"github.com/miniblog/backend/internal/middleware"
	"github.com/miniblog/backend/internal/models"
	"github.com/miniblog/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	log.Println("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, pgdb *gorm.DB, mgClient *mongo.Client, pageCache cache.PageCache, pageSize int, uploadDir string) {
	// AutoMigrate PostgreSQL models
	err := pgdb.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.Comment{},
		&models.Follow{},
	)
	if err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}
	log.Println("PostgreSQL auto-migrations completed for all models.")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(pgdb)
	groupRepo := repositories.NewPostgresGroupRepository(pgdb)
	postRepo := repositories.NewMongoPostRepository(mgClient.Database("miniblog"))
	commentRepo := repositories.NewPostgresCommentRepository(pgdb)
	followRepo := repositories.NewPostgresFollowRepository(pgdb)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	authHandler := handlers.NewAuthHandler(userRepo)
	authHandler.RegisterAuthRoutes(authGroup)
	log.Println("Auth routes configured.")

	// --- Public read-only routes ---
	public := e.Group("/api/v1")

	postHandler := handlers.NewPostHandler(postRepo, userRepo, groupRepo, commentRepo, pageSize)
	postHandler.RegisterListingRoutes(public)
	// Only the all-posts listing sits behind the page cache
	public.GET("/posts", postHandler.ListPosts, middleware.PageCacheMiddleware(pageCache))
	log.Println("Post listing routes configured.")

	groupHandler := handlers.NewGroupHandler(groupRepo, postRepo)
	groupHandler.RegisterPublicGroupRoutes(public)

	userHandler := handlers.NewUserHandler(userRepo, postRepo, commentRepo, followRepo)
	userHandler.RegisterPublicUserRoutes(public)

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware())
	log.Println("JWT authentication middleware applied to /api/v1 group.")

	userHandler.RegisterProfileRoutes(api)
	postHandler.RegisterPostRoutes(api)
	groupHandler.RegisterGroupRoutes(api)

	commentHandler := handlers.NewCommentHandler(commentRepo, postRepo)
	commentHandler.RegisterCommentRoutes(api)

	followHandler := handlers.NewFollowHandler(followRepo, userRepo)
	followHandler.RegisterFollowRoutes(api)

	feedHandler := handlers.NewFeedHandler(postRepo, followRepo, pageSize)
	feedHandler.RegisterFeedRoutes(api)

	mediaHandler := handlers.NewMediaHandler(uploadDir)
	mediaHandler.RegisterMediaRoutes(api)

	// Uploaded images are served statically
	e.Static("/media", uploadDir)

	log.Println("All routes configured.")
}
