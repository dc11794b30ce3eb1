package middlewares

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"civicfix-be/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const rateLimitWindow = 24 * time.Hour

// IssueRateLimiter caps how many issues a user may create per day. It needs
// Authenticate to have run. A nil client disables the limit.
func IssueRateLimiter(client *redis.Client, prefix string, limit int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if client == nil || limit <= 0 {
			c.Next()
			return
		}

		userID := CurrentUserID(c)
		if userID == "" {
			RespondError(c, utils.NewUnauthorized("User not authenticated"))
			return
		}

		ctx := c.Request.Context()
		// Create individual key for each user
		userKey := prefix + ":" + userID

		count, err := client.Incr(ctx, userKey).Result()
		if err != nil {
			RespondError(c, utils.NewInternalError(err))
			return
		}

		// Set TTL only for the first increment
		if count == 1 {
			if err := client.Expire(ctx, userKey, rateLimitWindow).Err(); err != nil {
				RespondError(c, utils.NewInternalError(err))
				return
			}
		}

		if count > int64(limit) {
			retryAfter, _ := client.TTL(ctx, userKey).Result()
			seconds := int64(math.Ceil(retryAfter.Seconds()))
			if seconds < 0 {
				seconds = 0
			}
			c.Header("Retry-After", strconv.FormatInt(seconds, 10))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"code":        "RATE_LIMITED",
				"retry_after": seconds,
			})
			return
		}

		c.Next()
	}
}
