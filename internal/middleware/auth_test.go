package middleware_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/kietute/safevoice/internal/middleware"
	"github.com/kietute/safevoice/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-jwt-secret"

func signToken(t *testing.T, role models.Role, expiresAt time.Time) string {
	t.Helper()
	claims := models.Claims{
		UserID: "staff-1",
		Phone:  "0901112222",
		Name:   "Ms. Lan",
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func newTestApp() *fiber.App {
	m := middleware.NewAuthMiddleware(testSecret)
	app := fiber.New()
	app.Get("/any", m.Authenticate(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})
	app.Get("/teacher", m.Authenticate(), m.RequireRole(models.RoleTeacher), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})
	app.Get("/admin", m.Authenticate(), m.RequireRole(models.RoleAdmin), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})
	return app
}

func request(t *testing.T, app *fiber.App, path, token string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func errorMessage(t *testing.T, resp *http.Response) string {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var out map[string]string
	require.NoError(t, json.Unmarshal(raw, &out))
	return out["error"]
}

func TestAuthenticateMissingHeader(t *testing.T) {
	app := newTestApp()
	resp := request(t, app, "/any", "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthenticateMalformedToken(t *testing.T) {
	app := newTestApp()
	resp := request(t, app, "/any", "not-a-jwt")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid token", errorMessage(t, resp))
}

func TestAuthenticateWrongSignature(t *testing.T) {
	claims := models.Claims{
		Role: models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-secret"))
	require.NoError(t, err)

	app := newTestApp()
	resp := request(t, app, "/any", token)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid token", errorMessage(t, resp))
}

// An expired token is reported distinctly from a malformed or forged
// one so clients know to re-authenticate instead of treating the
// session as broken.
func TestAuthenticateExpiredToken(t *testing.T) {
	app := newTestApp()
	token := signToken(t, models.RoleAdmin, time.Now().Add(-time.Hour))
	resp := request(t, app, "/any", token)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Token expired", errorMessage(t, resp))
}

func TestAuthenticateValidToken(t *testing.T) {
	app := newTestApp()
	token := signToken(t, models.RoleTeacher, time.Now().Add(time.Hour))
	resp := request(t, app, "/any", token)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequireRoleTeacherGate(t *testing.T) {
	app := newTestApp()

	teacher := signToken(t, models.RoleTeacher, time.Now().Add(time.Hour))
	resp := request(t, app, "/teacher", teacher)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// Admin implicitly satisfies teacher-level gates.
	admin := signToken(t, models.RoleAdmin, time.Now().Add(time.Hour))
	resp = request(t, app, "/teacher", admin)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequireRoleAdminGate(t *testing.T) {
	app := newTestApp()

	teacher := signToken(t, models.RoleTeacher, time.Now().Add(time.Hour))
	resp := request(t, app, "/admin", teacher)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	admin := signToken(t, models.RoleAdmin, time.Now().Add(time.Hour))
	resp = request(t, app, "/admin", admin)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
