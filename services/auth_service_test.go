package services

import (
	"context"
	"testing"
	"time"

	"civicfix-be/config"
	"civicfix-be/models"
	"civicfix-be/repository"
	"civicfix-be/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

func newTestAuthService(t *testing.T, store *repository.Store, client *redis.Client) *AuthService {
	t.Helper()
	cfg := config.AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour, BcryptCost: bcrypt.MinCost}
	return NewAuthService(cfg, store.Users, NewTokenRevoker(client), nil)
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := newTestAuthService(t, store, nil)

	session, err := svc.Register(ctx, RegisterInput{
		Email: " Ada@Example.com ", Password: "secret1", Name: "Ada", Location: "Springfield",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if session.Token == "" || session.User.Email != "ada@example.com" || session.User.Role != models.RoleCitizen {
		t.Fatalf("unexpected session %+v", session.User)
	}
	if session.User.PasswordHash == "secret1" {
		t.Fatal("password stored in plain text")
	}

	if _, err := svc.Register(ctx, RegisterInput{Email: "ada@example.com", Password: "secret1", Name: "Ada"}); !utils.IsCode(err, "CONFLICT") {
		t.Fatalf("expected conflict for duplicate email, got %v", err)
	}

	login, err := svc.Login(ctx, "ADA@example.com", "secret1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if login.User.LoginCount != 1 || login.User.LastLoginAt == nil {
		t.Fatalf("login not recorded: %+v", login.User)
	}

	user, claims, err := svc.Authenticate(ctx, login.Token)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if user.ID != session.User.ID || claims.Role != string(models.RoleCitizen) {
		t.Fatalf("unexpected identity %s %+v", user.ID, claims)
	}

	if _, err := svc.Login(ctx, "ada@example.com", "wrong"); !utils.IsCode(err, "UNAUTHORIZED") {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody@example.com", "secret1"); !utils.IsCode(err, "UNAUTHORIZED") {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestAuthService(t, repository.NewMemoryStore(), nil)
	inputs := []RegisterInput{
		{Email: "not-an-email", Password: "secret1", Name: "A"},
		{Email: "a@example.com", Password: "short", Name: "A"},
		{Email: "a@example.com", Password: "secret1", Name: "  "},
	}
	for i, input := range inputs {
		if _, err := svc.Register(context.Background(), input); !utils.IsCode(err, "VALIDATION_FAILED") {
			t.Errorf("input %d: expected validation error, got %v", i, err)
		}
	}
}

func TestInactiveUsersCannotAuthenticate(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := newTestAuthService(t, store, nil)

	suspended := &models.User{Email: "s@example.com", Name: "S", Role: models.RoleCitizen, Status: models.UserSuspended}
	if err := suspended.SetPassword("secret1", bcrypt.MinCost); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	_ = store.Users.Create(ctx, suspended)

	if _, err := svc.Login(ctx, "s@example.com", "secret1"); !utils.IsCode(err, "FORBIDDEN") {
		t.Fatalf("expected forbidden login, got %v", err)
	}

	token, _, _ := utils.NewTokenManager("test-secret", time.Hour).Generate(suspended.ID, suspended.Email, string(suspended.Role))
	if _, _, err := svc.Authenticate(ctx, token); !utils.IsCode(err, "FORBIDDEN") {
		t.Fatalf("expected forbidden token use, got %v", err)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	store := repository.NewMemoryStore()
	svc := newTestAuthService(t, store, client)

	session, err := svc.Register(ctx, RegisterInput{Email: "b@example.com", Password: "secret1", Name: "B"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := svc.Logout(ctx, session.Claims); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, _, err := svc.Authenticate(ctx, session.Token); !utils.IsCode(err, "UNAUTHORIZED") {
		t.Fatalf("expected revoked token to be rejected, got %v", err)
	}

	ttl := mr.TTL("revoked-token:" + session.Claims.ID)
	if ttl <= 0 || ttl > time.Hour {
		t.Fatalf("revocation should expire with the token, ttl %v", ttl)
	}
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := newTestAuthService(t, store, nil)
	user := seedUser(t, store, models.RoleCitizen)

	bio, empty := "  Cyclist  ", " "
	updated, err := svc.UpdateProfile(ctx, user.ID, repository.ProfileUpdate{Bio: &bio})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if updated.Bio != "Cyclist" || updated.Name != user.Name {
		t.Fatalf("unexpected profile %+v", updated)
	}
	if _, err := svc.UpdateProfile(ctx, user.ID, repository.ProfileUpdate{Name: &empty}); !utils.IsCode(err, "VALIDATION_FAILED") {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := svc.Me(ctx, "missing"); !utils.IsCode(err, "NOT_FOUND") {
		t.Fatalf("expected not found, got %v", err)
	}
}
