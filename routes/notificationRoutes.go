package routes

import (
	"civicfix-be/controllers"
	"civicfix-be/middlewares"

	"github.com/gin-gonic/gin"
)

// NotificationRoutes sets up the caller's inbox routes
func NotificationRoutes(r *gin.RouterGroup, auth *middlewares.Auth, nc *controllers.NotificationController) {
	group := r.Group("/notifications", auth.Authenticate())
	{
		group.GET("", nc.List)
		group.PATCH("/read-all", nc.MarkAllRead)
		group.PATCH("/:id/read", nc.MarkRead)
		group.DELETE("/:id", nc.Delete)
	}
}
