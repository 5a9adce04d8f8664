package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/kietute/safevoice/internal/api/handlers"
	"github.com/kietute/safevoice/internal/api/router"
	"github.com/kietute/safevoice/internal/auth"
	"github.com/kietute/safevoice/internal/media"
	"github.com/kietute/safevoice/internal/middleware"
	"github.com/kietute/safevoice/internal/models"
	"github.com/kietute/safevoice/internal/storage"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	testJWTSecret      = "test-jwt-secret"
	testIdentitySecret = "test-identity-secret"
	testFallbackPin    = "123456"
)

// fakeUploader satisfies media.Uploader without talking to Cloudinary.
type fakeUploader struct{}

func (f *fakeUploader) UploadBuffer(ctx context.Context, data []byte, filename string) (*media.Image, error) {
	return &media.Image{
		URL:      "https://cdn.example.com/" + filename,
		PublicID: "fake/" + filename,
		Width:    100,
		Height:   100,
		Format:   "png",
	}, nil
}

func (f *fakeUploader) UploadBase64(ctx context.Context, dataURI, name string) (*media.Image, error) {
	return &media.Image{
		URL:      "https://cdn.example.com/base64-" + name,
		PublicID: "fake/base64-" + name,
		Width:    1,
		Height:   1,
		Format:   "png",
	}, nil
}

type testEnv struct {
	app   *fiber.App
	store *storage.InMemoryStorage
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	backing := storage.NewInMemoryStorage()
	return newTestEnvWithStorage(t, backing, backing)
}

// newTestEnvWithStorage wires the app against store while keeping
// backing reachable for seeding and direct inspection. Tests pass a
// wrapper as store to inject storage failures.
func newTestEnvWithStorage(t *testing.T, backing *storage.InMemoryStorage, store storage.Storage) *testEnv {
	t.Helper()

	log := zap.NewNop()
	pinService := auth.NewPinService(store, testFallbackPin, log)

	app := fiber.New()
	publicHandler := handlers.NewPublicHandler(store, &fakeUploader{}, testIdentitySecret, log)
	authHandler := handlers.NewAuthHandler(store, testJWTSecret, 7*24*time.Hour, log)
	adminHandler := handlers.NewAdminHandler(store, pinService, testIdentitySecret, log)
	authMiddleware := middleware.NewAuthMiddleware(testJWTSecret)

	router.NewRouter(app, publicHandler, authHandler, adminHandler, authMiddleware).SetupRoutes()

	return &testEnv{app: app, store: backing}
}

func (e *testEnv) seedStaff(t *testing.T, phone, password string, role models.Role) *models.Staff {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	staff, err := e.store.UpsertStaff(context.Background(), &models.Staff{
		Phone:    phone,
		Name:     "Test Staff",
		Password: string(hash),
		Role:     role,
	})
	require.NoError(t, err)
	return staff
}

// request performs a JSON round-trip against the test app and returns
// the response plus its raw body.
func (e *testEnv) request(t *testing.T, method, path, token string, body interface{}) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, raw
}

func (e *testEnv) login(t *testing.T, phone, password string) string {
	t.Helper()

	resp, raw := e.request(t, http.MethodPost, "/api/admin/login", "", fiber.Map{
		"sdt":      phone,
		"password": password,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))

	var out models.LoginResponse
	require.NoError(t, json.Unmarshal(raw, &out))
	require.NotEmpty(t, out.Token)
	return out.Token
}

func decodeMap(t *testing.T, raw []byte) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}
