package routes

import (
	"eqcoach/controllers"

	"github.com/gin-gonic/gin"
)

// SetupCoachRoutes registers single-message analysis, coach chat and analytics.
func SetupCoachRoutes(router gin.IRouter, coach *controllers.CoachController, limit gin.HandlerFunc) {
	router.POST("/analyze", limit, coach.Analyze)
	router.POST("/coach/chat", limit, coach.Chat)
	router.GET("/analytics", coach.Analytics)
}
