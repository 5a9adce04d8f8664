package handlers

import (
	"fmt"
	"io"
	"math/rand"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/kietute/safevoice/internal/crypto"
	"github.com/kietute/safevoice/internal/media"
	"github.com/kietute/safevoice/internal/models"
	"github.com/kietute/safevoice/internal/storage"
	"go.uber.org/zap"
)

const (
	maxUploadFiles   = 5
	maxUploadBytes   = 50 * 1024 * 1024
	maxContentLength = 1000
	maxReportImages  = 5
)

// PublicHandler serves the reporter-facing endpoints. None of them
// require authentication.
type PublicHandler struct {
	storage        storage.Storage
	uploader       media.Uploader
	identitySecret string
	logger         *zap.Logger
}

func NewPublicHandler(store storage.Storage, uploader media.Uploader, identitySecret string, logger *zap.Logger) *PublicHandler {
	return &PublicHandler{
		storage:        store,
		uploader:       uploader,
		identitySecret: identitySecret,
		logger:         logger,
	}
}

func (h *PublicHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"ok": true})
}

func (h *PublicHandler) ReportTypes(c *fiber.Ctx) error {
	return c.JSON(models.ReportTypes)
}

func (h *PublicHandler) UploadMedia(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid multipart form",
		})
	}

	files := form.File["file"]
	if len(files) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No image files uploaded",
		})
	}
	if len(files) > maxUploadFiles {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Too many files. Maximum 5 images",
		})
	}

	images := make([]*media.Image, 0, len(files))
	for _, fileHeader := range files {
		if fileHeader.Size > maxUploadBytes {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "File too large. Maximum size is 50MB",
			})
		}

		file, err := fileHeader.Open()
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Unreadable file in upload",
			})
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Unreadable file in upload",
			})
		}

		image, err := h.uploader.UploadBuffer(c.Context(), data, fileHeader.Filename)
		if err != nil {
			h.logger.Error("media upload failed", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to upload images",
			})
		}
		images = append(images, image)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"images":  images,
		"count":   len(images),
	})
}

type UploadBase64Request struct {
	ImageData string `json:"imageData"`
	FileName  string `json:"fileName"`
}

func (h *PublicHandler) UploadBase64(c *fiber.Ctx) error {
	var req UploadBase64Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.ImageData == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing image data",
		})
	}

	image, err := h.uploader.UploadBase64(c.Context(), req.ImageData, req.FileName)
	if err != nil {
		h.logger.Error("base64 upload failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to upload image",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"image":   image,
	})
}

type SubmitRequest struct {
	ZaloID     string             `json:"zaloId"`
	Content    string             `json:"content"`
	Type       string             `json:"type"`
	Images     []string           `json:"images"`
	SenderInfo *models.SenderInfo `json:"sender_info"`
}

// Submit records a new report. The reporter identifier, when present,
// is encrypted before anything is persisted; the plaintext never
// reaches the store.
func (h *PublicHandler) Submit(c *fiber.Ctx) error {
	var req SubmitRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Content is required",
		})
	}
	if runes := []rune(content); len(runes) > maxContentLength {
		content = string(runes[:maxContentLength])
	}

	images := make([]string, 0, maxReportImages)
	for _, img := range req.Images {
		if strings.TrimSpace(img) == "" {
			continue
		}
		images = append(images, img)
		if len(images) == maxReportImages {
			break
		}
	}

	encryptedID := ""
	if req.ZaloID != "" {
		var err error
		encryptedID, err = crypto.Encrypt(req.ZaloID, h.identitySecret)
		if err != nil {
			h.logger.Error("identity encryption failed", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Internal server error",
			})
		}
	}

	fakeName := fmt.Sprintf("Student_%d", 1000+rand.Intn(9000))

	report := &models.Report{
		ID:          uuid.NewString(),
		EncryptedID: encryptedID,
		DisplayName: fakeName,
		Type:        models.NormalizeReportType(req.Type),
		Content:     content,
		Images:      images,
		Status:      models.StatusPending,
		CreatedAt:   time.Now(),
	}
	if req.SenderInfo != nil {
		report.SenderInfo = *req.SenderInfo
	}

	if err := h.storage.CreateReport(c.Context(), report); err != nil {
		h.logger.Error("report create failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"fakeName": fakeName,
		"reportId": report.ID,
	})
}
