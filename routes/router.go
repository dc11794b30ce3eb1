package routes

import (
	"net/http"

	"civicfix-be/config"
	"civicfix-be/controllers"
	"civicfix-be/middlewares"
	"civicfix-be/services"
	"civicfix-be/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewRouter builds the gin engine with global middlewares and every route group.
func NewRouter(cfg *config.Config, svc *services.Services, redisClient *redis.Client, logger *zap.Logger) *gin.Engine {
	middlewares.RegisterValidators()

	r := gin.New()
	r.Use(
		middlewares.RequestLogger(logger),
		middlewares.Recovery(logger),
		middlewares.CORS(cfg.App.CORSOrigins),
		middlewares.RequestTimeout(cfg.App.RequestTimeout),
	)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	auth := middlewares.NewAuth(svc.Auth)
	limiter := middlewares.IssueRateLimiter(redisClient, cfg.Limits.IssueQueuePrefix, cfg.Limits.IssuesPerDay)

	api := r.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "redis": redisClient != nil})
	})

	AuthRoutes(api, auth, controllers.NewAuthController(svc.Auth, cfg.App))
	IssueRoutes(api, auth, limiter,
		controllers.NewIssueController(svc.Issues, svc.Query, svc.Ledger, svc.Workflow),
		controllers.NewCommentController(svc.Comments))
	NotificationRoutes(api, auth, controllers.NewNotificationController(svc.Notifications))

	r.NoRoute(func(c *gin.Context) {
		middlewares.RespondError(c, utils.NewNotFound("Route"))
	})
	return r
}
