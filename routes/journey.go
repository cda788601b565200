package routes

import (
	"eqcoach/controllers"

	"github.com/gin-gonic/gin"
)

// SetupJourneyRoutes registers the EQ journey routes. limit guards the calls
// that may reach the model.
func SetupJourneyRoutes(router gin.IRouter, journeys *controllers.JourneyController, limit gin.HandlerFunc) {
	journey := router.Group("/journey")
	{
		journey.POST("", journeys.Start)
		journey.GET("/:id", journeys.Get)
		journey.POST("/:id/respond", limit, journeys.Respond)
		journey.POST("/:id/reset", journeys.Reset)
	}
}
