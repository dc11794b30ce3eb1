package routes

import (
	"civicfix-be/controllers"
	"civicfix-be/middlewares"
	"civicfix-be/models"

	"github.com/gin-gonic/gin"
)

// IssueRoutes sets up the issue, vote and comment routes
func IssueRoutes(r *gin.RouterGroup, auth *middlewares.Auth, limiter gin.HandlerFunc, ic *controllers.IssueController, cc *controllers.CommentController) {
	issue := r.Group("/issues")
	{
		issue.GET("", auth.OptionalAuth(), ic.List)
		issue.GET("/stats", ic.Stats)
		issue.GET("/user", auth.Authenticate(), ic.ListMine)
		issue.POST("", auth.Authenticate(), limiter, ic.Create)

		issue.GET("/:id", auth.OptionalAuth(), ic.Get)
		issue.PATCH("/:id", auth.Authenticate(), ic.Update)
		issue.DELETE("/:id", auth.Authenticate(), ic.Delete)
		issue.PATCH("/:id/status", auth.Authenticate(),
			middlewares.RequireRoles(models.RoleModerator, models.RoleAdmin, models.RoleSuperAdmin), ic.UpdateStatus)

		issue.POST("/:id/vote", auth.Authenticate(), ic.Vote)
		issue.POST("/:id/votes/recount", auth.Authenticate(),
			middlewares.RequireRoles(models.RoleAdmin, models.RoleSuperAdmin), ic.Recount)

		issue.GET("/:id/comments", cc.List)
		issue.POST("/:id/comments", auth.Authenticate(), cc.Create)
	}
}
