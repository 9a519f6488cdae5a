package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-booking-api/core/config"
	"go-booking-api/core/errors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func withSecret(t *testing.T) {
	t.Helper()
	config.Set(&config.Config{Auth: config.AuthConfig{JWTSecret: "test-secret"}})
}

func TestTokenRoundTrip(t *testing.T) {
	withSecret(t)
	userID := uuid.New()

	token, err := GenerateToken(userID, "host@example.com", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken returned error: %v", err)
	}

	claims, err := ValidateAndParseToken(token)
	if err != nil {
		t.Fatalf("ValidateAndParseToken returned error: %v", err)
	}
	if claims.UserID != userID || claims.Email != "host@example.com" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestExpiredTokenIsRejected(t *testing.T) {
	withSecret(t)
	token, err := GenerateToken(uuid.New(), "", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken returned error: %v", err)
	}

	_, err = ValidateAndParseToken(token)
	if !errors.HasCode(err, errors.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestGarbageTokenIsRejected(t *testing.T) {
	withSecret(t)
	_, err := ValidateAndParseToken("not-a-jwt")
	if !errors.HasCode(err, errors.ErrInvalidTokenFormat) {
		t.Fatalf("expected ErrInvalidTokenFormat, got %v", err)
	}
}

func TestGetTokenFromHeader(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer abc.def")
	c := e.NewContext(req, httptest.NewRecorder())

	if got := GetTokenFromHeader(c); got != "abc.def" {
		t.Fatalf("expected abc.def, got %q", got)
	}

	empty := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	if got := GetTokenFromHeader(empty); got != "" {
		t.Fatalf("expected empty token, got %q", got)
	}
}
