package router

import (
	"github.com/aiedgeeliza/videogen/internal/api/handler"
	"github.com/gin-gonic/gin"
)

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware())

	videoHandler := handler.NewVideoHandler(deps)

	r.GET("/health", videoHandler.Health)

	v1 := r.Group("/api/v1")
	{
		videos := v1.Group("/videos")
		{
			videos.POST("", videoHandler.CreateVideo)
			videos.GET("", videoHandler.ListVideos)
			videos.GET("/:video_id/status", videoHandler.GetStatus)
			videos.GET("/:video_id/script", videoHandler.GetScript)
			videos.GET("/:video_id/download", videoHandler.DownloadVideo)
			videos.POST("/:video_id/cancel", videoHandler.CancelVideo)
			videos.DELETE("/:video_id", videoHandler.DeleteVideo)
		}

		v1.GET("/stats", videoHandler.Stats)
		v1.POST("/cleanup", videoHandler.Cleanup)
	}

	return r
}
