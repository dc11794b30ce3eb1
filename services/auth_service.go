package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"civicfix-be/config"
	"civicfix-be/models"
	"civicfix-be/repository"
	"civicfix-be/utils"

	"go.uber.org/zap"
)

const minPasswordLength = 6

// AuthService coordinates registration, login and session validation.
type AuthService struct {
	users      repository.UserRepository
	tokens     *utils.TokenManager
	revoker    *TokenRevoker
	bcryptCost int
	logger     *zap.Logger
}

func NewAuthService(cfg config.AuthConfig, users repository.UserRepository, revoker *TokenRevoker, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      users,
		tokens:     utils.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL),
		revoker:    revoker,
		bcryptCost: cfg.BcryptCost,
		logger:     logger,
	}
}

// Session is an authenticated user with a freshly issued token.
type Session struct {
	User   *models.User
	Token  string
	Claims *utils.Claims
}

type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Location string
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	name := strings.TrimSpace(input.Name)
	if email == "" || !strings.Contains(email, "@") {
		return nil, utils.NewValidationError("A valid email is required", map[string]any{"field": "email"})
	}
	if len(input.Password) < minPasswordLength {
		return nil, utils.NewValidationError("Password must be at least 6 characters", map[string]any{"field": "password"})
	}
	if name == "" {
		return nil, utils.NewValidationError("Name is required", map[string]any{"field": "name"})
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, utils.NewConflict("User with this email already exists", nil)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, utils.NewInternalError(err)
	}

	now := time.Now()
	user := &models.User{
		Email:     email,
		Name:      name,
		Location:  strings.TrimSpace(input.Location),
		Role:      models.RoleCitizen,
		Status:    models.UserActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := user.SetPassword(input.Password, s.bcryptCost); err != nil {
		return nil, utils.NewInternalError(err)
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, utils.NewConflict("User with this email already exists", nil)
		}
		return nil, utils.NewInternalError(err)
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID))
	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, utils.NewUnauthorized("Invalid credentials")
	}
	if err != nil {
		return nil, utils.NewInternalError(err)
	}
	if !user.ComparePassword(password) {
		return nil, utils.NewUnauthorized("Invalid credentials")
	}
	if !user.Active() {
		return nil, utils.NewForbidden("Account is not active")
	}

	now := time.Now()
	if err := s.users.RecordLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn("failed to record login", zap.String("user_id", user.ID), zap.Error(err))
	} else {
		user.LastLoginAt = &now
		user.LoginCount++
	}
	return s.issue(user)
}

func (s *AuthService) issue(user *models.User) (*Session, error) {
	token, claims, err := s.tokens.Generate(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, utils.NewInternalError(err)
	}
	return &Session{User: user, Token: token, Claims: claims}, nil
}

// Authenticate resolves a bearer token to an active user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, *utils.Claims, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, nil, utils.NewUnauthorized("Invalid authorization token")
	}

	revoked, err := s.revoker.Revoked(ctx, claims.ID)
	if err != nil {
		s.logger.Warn("token revocation check failed", zap.Error(err))
	} else if revoked {
		return nil, nil, utils.NewUnauthorized("Token has been revoked")
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, utils.NewUnauthorized("User not found")
	}
	if err != nil {
		return nil, nil, utils.NewInternalError(err)
	}
	if !user.Active() {
		return nil, nil, utils.NewForbidden("Account is not active")
	}
	return user, claims, nil
}

func (s *AuthService) Me(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, storeError(err, "User")
	}
	return user, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID string, profile repository.ProfileUpdate) (*models.User, error) {
	for _, field := range []**string{&profile.Name, &profile.Bio, &profile.Location, &profile.Phone} {
		if *field != nil {
			trimmed := strings.TrimSpace(**field)
			*field = &trimmed
		}
	}
	if profile.Name != nil && *profile.Name == "" {
		return nil, utils.NewValidationError("Name cannot be empty", map[string]any{"field": "name"})
	}

	user, err := s.users.UpdateProfile(ctx, userID, profile)
	if err != nil {
		return nil, storeError(err, "User")
	}
	return user, nil
}

// Logout revokes the token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, claims *utils.Claims) error {
	if claims == nil || claims.ExpiresAt == nil {
		return nil
	}
	if err := s.revoker.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return utils.NewInternalError(err)
	}
	return nil
}

// TokenTTL is the lifetime of issued tokens.
func (s *AuthService) TokenTTL() time.Duration {
	return s.tokens.TTL()
}
