package api

import (
	"github.com/cmg/memehub/internal/api/handler"
	"github.com/cmg/memehub/internal/api/middleware"
	"github.com/cmg/memehub/internal/config"
	"github.com/cmg/memehub/internal/logger"
	"github.com/cmg/memehub/internal/service"
	"github.com/gin-gonic/gin"
)

// SetupRouter configures the Gin router with all routes
func SetupRouter(
	ingestService *service.IngestService,
	memeService *service.MemeService,
	cfg *config.Config,
	log *logger.Logger,
) *gin.Engine {
	// Set Gin mode
	switch cfg.Server.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	// Add middleware
	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware(log))
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:  cfg.Server.CORS.AllowedOrigins,
		AllowAllOrigins: cfg.Server.CORS.AllowAllOrigins,
	}))

	// Create handlers
	healthHandler := handler.NewHealthHandler()
	memeHandler := handler.NewMemeHandler(ingestService, memeService, log)
	adminHandler := handler.NewAdminHandler(memeService, log)

	// Health check
	r.GET("/health", healthHandler.Health)

	// Meme routes. Trailing slashes follow the published API surface.
	meme := r.Group("/api/meme")
	{
		meme.POST("/", memeHandler.CreateMeme)
		meme.GET("/top/", memeHandler.TopMemes)
		meme.GET("/random/", memeHandler.RandomMeme)
		meme.GET("/:id", memeHandler.GetMeme)
		meme.POST("/:id/vote/", memeHandler.VoteMeme)
	}

	// Admin routes
	admin := r.Group("/api/admin")
	{
		admin.GET("/memes/", adminHandler.ListMemes)
		admin.POST("/reset/", adminHandler.ResetStore)
	}

	return r
}
