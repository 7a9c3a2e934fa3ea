package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"

	"github.com/St0bbe/remix-of-our-little-pix/auth"
	"github.com/St0bbe/remix-of-our-little-pix/config"
	"github.com/St0bbe/remix-of-our-little-pix/database"
	"github.com/St0bbe/remix-of-our-little-pix/handlers"
	"github.com/St0bbe/remix-of-our-little-pix/middleware"
	"github.com/St0bbe/remix-of-our-little-pix/notify"
	"github.com/St0bbe/remix-of-our-little-pix/store"
)

const sessionTokenDuration = 7 * 24 * time.Hour

func main() {
	// Setup structured logging
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelDebug,
		TimeFormat: time.Kitchen,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg := config.LoadConfig()

	// Initialize database
	sqliteDB, err := database.NewSQLiteDB(cfg.DatabasePath)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer sqliteDB.Close()

	// Run migrations
	if err := sqliteDB.Migrate(); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Create indexes for better performance
	if err := sqliteDB.CreateIndexes(); err != nil {
		slog.Warn("failed to create indexes", "error", err)
	}

	// Initialize the photo store; seeds the default albums on first run
	photoStore, err := store.New(sqliteDB.GetDB())
	if err != nil {
		slog.Error("failed to initialize store", "error", err)
		os.Exit(1)
	}

	// Cross-session notifications: the hub observes store changes
	hub := notify.NewHub()
	photoStore.OnChange(hub.Broadcast)

	// Authentication
	authService := auth.NewService(sqliteDB.GetDB(), cfg.AllowedEmails, cfg.PasswordSalt)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, sessionTokenDuration)

	// Initialize Gin router
	if gin.Mode() == gin.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, jwtManager)
	photoHandler := handlers.NewPhotoHandler(photoStore, cfg)
	albumHandler := handlers.NewAlbumHandler(photoStore)
	commentHandler := handlers.NewCommentHandler(photoStore)
	shareHandler := handlers.NewShareHandler(photoStore)
	activityHandler := handlers.NewActivityHandler(photoStore)
	exportHandler := handlers.NewExportHandler(photoStore)
	notificationHandler := handlers.NewNotificationHandler(photoStore, hub)

	requireAuth := middleware.RequireAuth(jwtManager)

	// API routes
	api := router.Group("/api/v1")
	{
		// Authentication routes
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/change-password", requireAuth, authHandler.ChangePassword)
			authRoutes.POST("/reset-password", authHandler.ResetPassword)
		}

		// Photo routes
		photos := api.Group("/photos")
		{
			photos.POST("", requireAuth, photoHandler.UploadPhotos)
			photos.GET("", photoHandler.GetPhotos)
			photos.GET("/timeline", photoHandler.GetTimeline)
			photos.GET("/favorites", photoHandler.GetFavorites)
			photos.GET("/:id", photoHandler.GetPhoto)
			photos.PUT("/:id", requireAuth, photoHandler.UpdatePhoto)
			photos.DELETE("/:id", requireAuth, photoHandler.DeletePhoto)
			photos.POST("/:id/favorite", requireAuth, photoHandler.ToggleFavorite)
			photos.GET("/:id/file", photoHandler.ServePhoto)
			photos.GET("/:id/thumbnail", photoHandler.ServeThumbnail)
			photos.POST("/:id/comments", requireAuth, commentHandler.AddComment)
			photos.GET("/:id/comments", commentHandler.GetComments)
		}

		// Album routes
		albums := api.Group("/albums")
		{
			albums.POST("", requireAuth, albumHandler.CreateAlbum)
			albums.GET("", albumHandler.GetAlbums)
			albums.GET("/:id", albumHandler.GetAlbum)
			albums.PUT("/:id", requireAuth, albumHandler.UpdateAlbum)
			albums.DELETE("/:id", requireAuth, albumHandler.DeleteAlbum)
			albums.GET("/:id/photos", albumHandler.GetAlbumPhotos)
		}

		// Share routes: minting needs auth, resolving is the public surface
		api.POST("/shares", requireAuth, shareHandler.CreateShareLink)
		api.GET("/shared/:token", shareHandler.GetSharedContent)

		// Activity feed and statistics
		api.GET("/activity", activityHandler.GetActivity)
		api.GET("/stats", activityHandler.GetStats)

		// Backup export
		api.GET("/export", requireAuth, exportHandler.ExportBackup)

		// Cross-session notifications
		api.GET("/notifications/ws", notificationHandler.Subscribe)
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "family-album-server",
		})
	})

	// Start server
	address := fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)
	slog.Info("starting family album server",
		"address", address,
		"database", cfg.DatabasePath,
		"images", cfg.ImagesPath,
		"max_file_size", cfg.MaxFileSize,
	)

	if err := router.Run(address); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
