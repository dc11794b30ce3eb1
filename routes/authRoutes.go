package routes

import (
	"civicfix-be/controllers"
	"civicfix-be/middlewares"

	"github.com/gin-gonic/gin"
)

// AuthRoutes sets up the authentication routes
func AuthRoutes(r *gin.RouterGroup, auth *middlewares.Auth, ac *controllers.AuthController) {
	group := r.Group("/auth")
	{
		group.POST("/register", ac.Register)
		group.POST("/login", ac.Login)
		group.GET("/me", auth.Authenticate(), ac.Me)
		group.PATCH("/profile", auth.Authenticate(), ac.UpdateProfile)
		group.POST("/logout", auth.Authenticate(), ac.Logout)
	}
}
