package routes

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"brainbin/internal/handlers"
	"brainbin/internal/middleware"
	"brainbin/internal/ratelimit"
)

// Setup builds the gin engine with the full middleware chain and every
// route group mounted under /api/v1.
func Setup(h *handlers.AppHandlers, db *gorm.DB) *gin.Engine {
	if h.Cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggingMiddleware())
	r.Use(middleware.CORSMiddleware(h.Cfg.Server.AllowedOrigins))
	r.Use(middleware.DBMiddleware(db))

	h.Health.RegisterRoutes(r)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api/v1")
	{
		h.Auth.RegisterRoutes(api)
		api.POST("/waitlist", h.Waitlist.Join)

		authed := api.Group("")
		authed.Use(middleware.AuthMiddleware(h.Cfg.JWT.Secret))
		{
			fileOps := authed.Group("")
			fileOps.Use(middleware.RateLimitMiddleware(h.Limiter, ratelimit.CategoryFileOps))
			{
				fileOps.POST("/ingest", h.Ingest.Ingest)
				fileOps.POST("/ingest/async", h.Ingest.IngestAsync)
				fileOps.DELETE("/files/:id", h.Files.Delete)
			}

			queries := authed.Group("")
			queries.Use(middleware.RateLimitMiddleware(h.Limiter, ratelimit.CategoryQuery))
			{
				queries.POST("/query", h.Query.Query)
			}

			authed.GET("/files", h.Files.List)
			authed.GET("/tasks/:id", h.Ingest.TaskStatus)
			authed.DELETE("/query/context", h.Query.ClearContext)
			authed.GET("/query/history", h.Query.History)
		}
	}

	return r
}
