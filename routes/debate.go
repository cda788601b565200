package routes

import (
	"eqcoach/controllers"
	"eqcoach/websocket"

	"github.com/gin-gonic/gin"
)

// SetupDebateRoutes registers the practice debate routes and their websocket.
func SetupDebateRoutes(router gin.IRouter, debates *controllers.DebateController, ws *websocket.DebateHandler, limit gin.HandlerFunc) {
	debate := router.Group("/debate")
	{
		debate.GET("/topics", debates.Topics)
		debate.POST("", debates.Create)
		debate.GET("/:id", debates.Get)
		debate.DELETE("/:id", debates.Delete)
		debate.GET("/:id/events", debates.Events)
		debate.POST("/:id/topic", debates.SelectTopic)
		debate.POST("/:id/side", debates.SelectSide)
		debate.POST("/:id/draft", debates.Draft)
		debate.POST("/:id/submit", limit, debates.Submit)
		debate.POST("/:id/reset", debates.Reset)
	}
	router.GET("/ws/debate/:id", ws.Serve)
}
