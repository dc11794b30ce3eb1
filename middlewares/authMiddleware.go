package middlewares

import (
	"strings"

	"civicfix-be/models"
	"civicfix-be/services"
	"civicfix-be/utils"

	"github.com/gin-gonic/gin"
)

const (
	// AuthCookie carries the token for browser clients.
	AuthCookie = "auth_token"

	userKey   = "user"
	claimsKey = "claims"
	userIDKey = "user_id"
)

type Auth struct {
	service *services.AuthService
}

func NewAuth(service *services.AuthService) *Auth {
	return &Auth{service: service}
}

// tokenFrom reads a bearer token from the Authorization header, falling back
// to the auth cookie.
func tokenFrom(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		if strings.HasPrefix(header, "Bearer ") {
			return strings.TrimSpace(header[7:])
		}
		return strings.TrimSpace(header)
	}
	if cookie, err := c.Cookie(AuthCookie); err == nil {
		return cookie
	}
	return ""
}

func (a *Auth) load(c *gin.Context) error {
	token := tokenFrom(c)
	if token == "" {
		return utils.NewUnauthorized("No authorization token provided")
	}
	user, claims, err := a.service.Authenticate(c.Request.Context(), token)
	if err != nil {
		return err
	}
	c.Set(userKey, user)
	c.Set(claimsKey, claims)
	c.Set(userIDKey, user.ID)
	return nil
}

// Authenticate rejects requests without a valid token for an active user.
func (a *Auth) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := a.load(c); err != nil {
			RespondError(c, err)
			return
		}
		c.Next()
	}
}

// OptionalAuth identifies the caller when it can and lets anonymous requests through.
func (a *Auth) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		_ = a.load(c)
		c.Next()
	}
}

// RequireRoles must run after Authenticate.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			RespondError(c, utils.NewUnauthorized("User not authenticated"))
			return
		}
		if _, ok := allowed[user.Role]; !ok {
			RespondError(c, utils.NewForbidden("Insufficient role"))
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user, or nil for anonymous requests.
func CurrentUser(c *gin.Context) *models.User {
	value, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	user, _ := value.(*models.User)
	return user
}

func CurrentClaims(c *gin.Context) *utils.Claims {
	value, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := value.(*utils.Claims)
	return claims
}

// CurrentUserID returns the caller's id or "".
func CurrentUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
