package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foxxcyber/receipt-grammar/internal/config"
	"github.com/foxxcyber/receipt-grammar/internal/models"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, userID int, role models.Role, expires time.Time) string {
	t.Helper()
	claims := &JWTClaims{
		UserID: userID,
		Email:  "shopper@example.com",
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func newTestApp() *fiber.App {
	app := fiber.New()
	cfg := &config.Config{JWTSecret: testSecret}
	app.Get("/me", AuthRequired(cfg), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"id": GetUserID(c), "role": GetUserRole(c)})
	})
	app.Get("/admin", AuthRequired(cfg), AdminRequired(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func TestAuthRequired(t *testing.T) {
	app := newTestApp()
	future := time.Now().Add(time.Hour)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid token", "Bearer " + signToken(t, testSecret, 7, models.RoleUser, future), http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + signToken(t, "other", 7, models.RoleUser, future), http.StatusUnauthorized},
		{"expired", "Bearer " + signToken(t, testSecret, 7, models.RoleUser, time.Now().Add(-time.Hour)), http.StatusUnauthorized},
		{"no user id", "Bearer " + signToken(t, testSecret, 0, models.RoleUser, future), http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestAdminRequired(t *testing.T) {
	app := newTestApp()
	future := time.Now().Add(time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, 1, models.RoleUser, future))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, 1, models.RoleAdmin, future))
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestRequestID(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(GetRequestID(c))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	_, err = uuid.Parse(resp.Header.Get(RequestIDHeader))
	assert.NoError(t, err)

	sent := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, sent)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, sent, resp.Header.Get(RequestIDHeader))
}

func TestIssueToken(t *testing.T) {
	cfg := &config.Config{JWTSecret: testSecret, JWTExpiry: time.Hour}
	user := &models.User{ID: 42, Email: "shopper@example.com", Role: models.RoleAdmin}

	token, expires, err := IssueToken(cfg, user)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, time.Minute)

	claims, err := parseBearer("Bearer "+token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, 42, claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Equal(t, "42", claims.Subject)

	_, err = parseBearer("Bearer "+token, "other")
	assert.ErrorIs(t, err, errBadToken)
}
