package routes

import (
	"eqcoach/controllers"

	"github.com/gin-gonic/gin"
)

// SetupAuthRoutes registers the public account routes.
func SetupAuthRoutes(router gin.IRouter, auth *controllers.AuthController) {
	router.POST("/signup", auth.SignUp)
	router.POST("/login", auth.Login)
}
