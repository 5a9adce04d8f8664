package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/kietute/safevoice/internal/crypto"
	"github.com/kietute/safevoice/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fakeNamePattern = regexp.MustCompile(`^Student_\d{4}$`)

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	resp, raw := env.request(t, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, true, decodeMap(t, raw)["ok"])
}

func TestReportTypes(t *testing.T) {
	env := newTestEnv(t)
	resp, raw := env.request(t, http.MethodGet, "/api/report-types", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var types []models.ReportType
	require.NoError(t, json.Unmarshal(raw, &types))
	require.Len(t, types, 4)
	assert.Equal(t, "physical", types[0].Value)
	assert.Equal(t, "other", types[3].Value)
}

func TestSubmitEncryptsIdentity(t *testing.T) {
	env := newTestEnv(t)

	resp, raw := env.request(t, http.MethodPost, "/api/submit", "", fiber.Map{
		"zaloId":  "u123",
		"content": "bullying incident",
		"type":    "physical",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))

	body := decodeMap(t, raw)
	assert.Equal(t, true, body["success"])
	assert.Regexp(t, fakeNamePattern, body["fakeName"])
	reportID, _ := body["reportId"].(string)
	require.NotEmpty(t, reportID)

	stored, err := env.store.GetReport(context.Background(), reportID)
	require.NoError(t, err)
	assert.Equal(t, "physical", stored.Type)
	assert.Equal(t, models.StatusPending, stored.Status)
	assert.Equal(t, body["fakeName"], stored.DisplayName)

	// The plaintext identifier must never be stored.
	require.NotEmpty(t, stored.EncryptedID)
	assert.NotEqual(t, "u123", stored.EncryptedID)

	plaintext, err := crypto.Decrypt(stored.EncryptedID, testIdentitySecret)
	require.NoError(t, err)
	assert.Equal(t, "u123", plaintext)
}

func TestSubmitAnonymous(t *testing.T) {
	env := newTestEnv(t)

	resp, raw := env.request(t, http.MethodPost, "/api/submit", "", fiber.Map{
		"content": "no identifier supplied",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	reportID := decodeMap(t, raw)["reportId"].(string)
	stored, err := env.store.GetReport(context.Background(), reportID)
	require.NoError(t, err)
	assert.Empty(t, stored.EncryptedID)
	assert.Equal(t, "other", stored.Type)
}

func TestSubmitUnknownTypeCoerced(t *testing.T) {
	env := newTestEnv(t)

	resp, raw := env.request(t, http.MethodPost, "/api/submit", "", fiber.Map{
		"content": "weird category",
		"type":    "not_a_real_type",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	reportID := decodeMap(t, raw)["reportId"].(string)
	stored, err := env.store.GetReport(context.Background(), reportID)
	require.NoError(t, err)
	assert.Equal(t, "other", stored.Type)
}

func TestSubmitRejectsEmptyContent(t *testing.T) {
	env := newTestEnv(t)

	for _, content := range []string{"", "   ", "\n\t"} {
		resp, _ := env.request(t, http.MethodPost, "/api/submit", "", fiber.Map{
			"content": content,
		})
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, "content %q", content)
	}
}

func TestSubmitTruncatesLongContent(t *testing.T) {
	env := newTestEnv(t)

	resp, raw := env.request(t, http.MethodPost, "/api/submit", "", fiber.Map{
		"content": strings.Repeat("a", 1500),
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	reportID := decodeMap(t, raw)["reportId"].(string)
	stored, err := env.store.GetReport(context.Background(), reportID)
	require.NoError(t, err)
	assert.Len(t, []rune(stored.Content), 1000)
}

func TestSubmitCapsImages(t *testing.T) {
	env := newTestEnv(t)

	images := []string{
		"https://cdn.example.com/1.png",
		"  ",
		"https://cdn.example.com/2.png",
		"https://cdn.example.com/3.png",
		"",
		"https://cdn.example.com/4.png",
		"https://cdn.example.com/5.png",
		"https://cdn.example.com/6.png",
		"https://cdn.example.com/7.png",
	}
	resp, raw := env.request(t, http.MethodPost, "/api/submit", "", fiber.Map{
		"content": "with images",
		"images":  images,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	reportID := decodeMap(t, raw)["reportId"].(string)
	stored, err := env.store.GetReport(context.Background(), reportID)
	require.NoError(t, err)
	require.Len(t, stored.Images, 5)
	assert.Equal(t, "https://cdn.example.com/1.png", stored.Images[0])
	assert.Equal(t, "https://cdn.example.com/5.png", stored.Images[4])
}

func TestUploadBase64(t *testing.T) {
	env := newTestEnv(t)

	resp, raw := env.request(t, http.MethodPost, "/api/upload-image-base64", "", fiber.Map{
		"imageData": "data:image/png;base64,iVBORw0KGgo=",
		"fileName":  "evidence",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeMap(t, raw)
	assert.Equal(t, true, body["success"])
	image := body["image"].(map[string]interface{})
	assert.Equal(t, "https://cdn.example.com/base64-evidence", image["url"])
}

func TestUploadBase64MissingPayload(t *testing.T) {
	env := newTestEnv(t)
	resp, _ := env.request(t, http.MethodPost, "/api/upload-image-base64", "", fiber.Map{
		"fileName": "evidence",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func multipartUpload(t *testing.T, filenames []string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for _, name := range filenames {
		part, err := writer.CreateFormFile("file", name)
		require.NoError(t, err)
		_, err = part.Write([]byte("fake image bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func TestUploadMedia(t *testing.T) {
	env := newTestEnv(t)

	body, contentType := multipartUpload(t, []string{"a.png", "b.png"})
	req := httptest.NewRequest(http.MethodPost, "/api/upload/media", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out struct {
		Success bool `json:"success"`
		Count   int  `json:"count"`
		Images  []struct {
			URL string `json:"url"`
		} `json:"images"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	resp.Body.Close()

	assert.True(t, out.Success)
	assert.Equal(t, 2, out.Count)
	require.Len(t, out.Images, 2)
	assert.Equal(t, "https://cdn.example.com/a.png", out.Images[0].URL)
}

func TestUploadMediaNoFiles(t *testing.T) {
	env := newTestEnv(t)

	body, contentType := multipartUpload(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/upload/media", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestUploadMediaTooManyFiles(t *testing.T) {
	env := newTestEnv(t)

	body, contentType := multipartUpload(t, []string{"1.png", "2.png", "3.png", "4.png", "5.png", "6.png"})
	req := httptest.NewRequest(http.MethodPost, "/api/upload/media", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
