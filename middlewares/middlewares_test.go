package middlewares

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"civicfix-be/config"
	"civicfix-be/models"
	"civicfix-be/repository"
	"civicfix-be/services"
	"civicfix-be/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return body
}

func asUser(id string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(userIDKey, id)
		c.Next()
	}
}

func TestIssueRateLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	r := gin.New()
	r.POST("/issues", asUser("u1"), IssueRateLimiter(client, "issue-limit", 2), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/issues", nil))
		if rec.Code != http.StatusCreated {
			t.Fatalf("request %d: expected 201, got %d", i, rec.Code)
		}
	}
	if ttl := mr.TTL("issue-limit:u1"); ttl != 24*time.Hour {
		t.Fatalf("expected 24h window, got %v", ttl)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/issues", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	body := decode(t, rec)
	if body["code"] != "RATE_LIMITED" || body["retry_after"].(float64) <= 0 {
		t.Fatalf("unexpected body %v", body)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("missing Retry-After header")
	}

	mr.FastForward(25 * time.Hour)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/issues", nil))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected limit to reset, got %d", rec.Code)
	}
}

func TestIssueRateLimiterWithoutRedis(t *testing.T) {
	r := gin.New()
	r.POST("/issues", IssueRateLimiter(nil, "issue-limit", 1), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/issues", nil))
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected pass-through, got %d", rec.Code)
		}
	}
}

func newAuthFixture(t *testing.T) (*Auth, *services.AuthService, *repository.Store) {
	t.Helper()
	store := repository.NewMemoryStore()
	svc := services.NewAuthService(
		config.AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour, BcryptCost: bcrypt.MinCost},
		store.Users, services.NewTokenRevoker(nil), nil)
	return NewAuth(svc), svc, store
}

func TestAuthenticate(t *testing.T) {
	auth, svc, _ := newAuthFixture(t)
	session, err := svc.Register(context.Background(), services.RegisterInput{
		Email: "mod@example.com", Password: "secret1", Name: "Mod",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	r := gin.New()
	r.GET("/me", auth.Authenticate(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": CurrentUserID(c), "jti": CurrentClaims(c).ID})
	})

	cases := []struct {
		name   string
		setup  func(*http.Request)
		status int
	}{
		{"missing token", func(*http.Request) {}, http.StatusUnauthorized},
		{"garbage token", func(req *http.Request) { req.Header.Set("Authorization", "Bearer nope") }, http.StatusUnauthorized},
		{"bearer header", func(req *http.Request) { req.Header.Set("Authorization", "Bearer "+session.Token) }, http.StatusOK},
		{"cookie", func(req *http.Request) { req.AddCookie(&http.Cookie{Name: AuthCookie, Value: session.Token}) }, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			tc.setup(req)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, rec.Code, rec.Body.String())
			}
			body := decode(t, rec)
			if tc.status == http.StatusOK && body["id"] != session.User.ID {
				t.Fatalf("unexpected user %v", body)
			}
			if tc.status == http.StatusUnauthorized && body["code"] != "UNAUTHORIZED" {
				t.Fatalf("unexpected error body %v", body)
			}
		})
	}
}

func TestOptionalAuthAndRoles(t *testing.T) {
	auth, svc, store := newAuthFixture(t)
	ctx := context.Background()
	session, err := svc.Register(ctx, services.RegisterInput{Email: "c@example.com", Password: "secret1", Name: "C"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	r := gin.New()
	r.GET("/open", auth.OptionalAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": CurrentUserID(c)})
	})
	r.GET("/staff", auth.Authenticate(), RequireRoles(models.RoleModerator), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	req.Header.Set("Authorization", "Bearer broken")
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || decode(t, rec)["id"] != "" {
		t.Fatalf("optional auth should ignore bad tokens: %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/staff", nil)
	req.Header.Set("Authorization", "Bearer "+session.Token)
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("citizen should be forbidden, got %d", rec.Code)
	}

	moderator := &models.User{Email: "mod@example.com", Name: "Mod", Role: models.RoleModerator, Status: models.UserActive}
	if err := moderator.SetPassword("secret1", bcrypt.MinCost); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	if err := store.Users.Create(ctx, moderator); err != nil {
		t.Fatalf("Create: %v", err)
	}
	login, err := svc.Login(ctx, "mod@example.com", "secret1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/staff", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("moderator should pass, got %d", rec.Code)
	}
}

func TestRecoveryRendersInternalError(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger(zap.NewNop()), Recovery(zap.NewNop()))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if body := decode(t, rec); body["code"] != "INTERNAL_ERROR" {
		t.Fatalf("unexpected body %v", body)
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Fatal("missing request id header")
	}
}

func TestRequestTimeoutSetsDeadline(t *testing.T) {
	r := gin.New()
	r.Use(RequestTimeout(time.Second))
	r.GET("/", func(c *gin.Context) {
		if _, ok := c.Request.Context().Deadline(); !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusOK)
	})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected a deadline on the request context")
	}
}

func TestRespondErrorIncludesDetails(t *testing.T) {
	r := gin.New()
	r.GET("/", func(c *gin.Context) {
		RespondError(c, utils.NewValidationError("Invalid vote type", map[string]any{"voteType": "sideways"}))
	})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	body := decode(t, rec)
	if rec.Code != http.StatusBadRequest || body["code"] != "VALIDATION_FAILED" || body["details"] == nil {
		t.Fatalf("unexpected response %d %v", rec.Code, body)
	}
}
