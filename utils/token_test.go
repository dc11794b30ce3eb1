package utils

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

func TestGenerateAndParseToken(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	token, issued, err := tm.Generate("user-1", "a@b.com", "citizen")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if issued.ID == "" {
		t.Fatal("expected token id")
	}

	claims, err := tm.Parse(token)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if claims.UserID != "user-1" || claims.Email != "a@b.com" || claims.Role != "citizen" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.ID != issued.ID {
		t.Fatalf("expected jti %q, got %q", issued.ID, claims.ID)
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	claims := &Claims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    TokenIssuer,
			Audience:  jwt.ClaimStrings{TokenAudience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := tm.Parse(signed); err == nil {
		t.Fatal("expected Parse() to fail for expired token")
	}
}

func TestParseRejectsWrongSecretAndAudience(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	other := NewTokenManager("other-secret", time.Hour)
	token, _, err := other.Generate("user-1", "a@b.com", "citizen")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if _, err := tm.Parse(token); err == nil {
		t.Fatal("expected signature mismatch")
	}

	claims := &Claims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    TokenIssuer,
			Audience:  jwt.ClaimStrings{"someone-else"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if _, err := tm.Parse(signed); err == nil {
		t.Fatal("expected audience mismatch")
	}
}

func TestGenerateRequiresSecret(t *testing.T) {
	if _, _, err := NewTokenManager("", time.Hour).Generate("u", "e", "citizen"); err == nil {
		t.Fatal("expected error without secret")
	}
}

func TestToAppError(t *testing.T) {
	if got := ToAppError(NewNotFound("Issue")); got.HTTPStatus != 404 || got.Message != "Issue not found" {
		t.Fatalf("unexpected not found mapping: %+v", got)
	}
	internal := ToAppError(jwt.ErrTokenExpired)
	if internal.HTTPStatus != 500 || internal.Code != "INTERNAL_ERROR" {
		t.Fatalf("unexpected internal mapping: %+v", internal)
	}
	if !IsCode(NewConflict("x", nil), "CONFLICT") {
		t.Fatal("expected conflict code")
	}
}
