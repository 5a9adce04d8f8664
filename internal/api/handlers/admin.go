package handlers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/kietute/safevoice/internal/auth"
	"github.com/kietute/safevoice/internal/crypto"
	"github.com/kietute/safevoice/internal/models"
	"github.com/kietute/safevoice/internal/storage"
	"github.com/kietute/safevoice/internal/validation"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// revealTimeout bounds the whole disclosure flow: PIN check, report
// load, decrypt and audit write.
const revealTimeout = 10 * time.Second

// AdminHandler serves the staff-facing moderation endpoints. Role
// enforcement happens in the router via the auth middleware.
type AdminHandler struct {
	storage        storage.Storage
	pin            *auth.PinService
	identitySecret string
	logger         *zap.Logger
}

func NewAdminHandler(store storage.Storage, pin *auth.PinService, identitySecret string, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		storage:        store,
		pin:            pin,
		identitySecret: identitySecret,
		logger:         logger,
	}
}

type ListReportsRequest struct {
	Status string `query:"status"`
	Page   int    `query:"page"`
	Limit  int    `query:"limit"`
}

type ListReportsResponse struct {
	Items []models.ReportSummary `json:"items"`
	Total int64                  `json:"total"`
	Page  int                    `json:"page"`
	Limit int                    `json:"limit"`
}

func (h *AdminHandler) ListReports(c *fiber.Ctx) error {
	var req ListReportsRequest
	if err := c.QueryParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid query parameters",
		})
	}

	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 {
		req.Limit = 20
	}

	reports, total, err := h.storage.ListReports(c.Context(), storage.ReportFilter{
		Status: req.Status,
		Page:   req.Page,
		Limit:  req.Limit,
	})
	if err != nil {
		h.logger.Error("report listing failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch reports",
		})
	}

	items := make([]models.ReportSummary, 0, len(reports))
	for i := range reports {
		items = append(items, reports[i].Summary())
	}

	return c.JSON(ListReportsResponse{
		Items: items,
		Total: total,
		Page:  req.Page,
		Limit: req.Limit,
	})
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

func (h *AdminHandler) UpdateStatus(c *fiber.Ctx) error {
	id := c.Params("id")

	var req UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	status := models.ReportStatus(req.Status)
	if !status.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid status",
		})
	}

	report, err := h.storage.UpdateReportStatus(c.Context(), id, status)
	if err != nil {
		if errors.Is(err, storage.ErrReportNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Report not found",
			})
		}
		h.logger.Error("status update failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	return c.JSON(fiber.Map{
		"id":     report.ID,
		"status": report.Status,
	})
}

type RevealIdentityRequest struct {
	ReportID      string `json:"reportId"`
	AdminPassword string `json:"adminPassword"`
}

// RevealIdentity decrypts and returns the reporter identity of a single
// report. The caller must hold an admin session (enforced upstream) and
// present the emergency PIN. The flow fails closed: wrong PIN, missing
// report, missing identity or a failed audit write all refuse
// disclosure. A durable audit record is written before the identity is
// returned.
func (h *AdminHandler) RevealIdentity(c *fiber.Ctx) error {
	claims, ok := c.Locals("user").(*models.Claims)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "User not found in context",
		})
	}

	var req RevealIdentityRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.ReportID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing report id",
		})
	}

	ctx, cancel := context.WithTimeout(c.Context(), revealTimeout)
	defer cancel()

	// The PIN is checked before the report is loaded, so a wrong PIN
	// reveals nothing about whether the report exists.
	pinOK, err := h.pin.Verify(ctx, req.AdminPassword)
	if err != nil {
		h.logger.Error("pin verification failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}
	if !pinOK {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Incorrect emergency PIN",
		})
	}

	report, err := h.storage.GetReport(ctx, req.ReportID)
	if err != nil {
		if errors.Is(err, storage.ErrReportNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Report not found",
			})
		}
		h.logger.Error("report lookup failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	if report.EncryptedID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No identity to decrypt",
		})
	}

	realID, err := crypto.Decrypt(report.EncryptedID, h.identitySecret)
	if err != nil {
		h.logger.Error("identity decryption failed",
			zap.String("report_id", report.ID),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to decrypt identity",
		})
	}

	audit := &models.AuditRecord{
		ActorID:    claims.UserID,
		ActorPhone: claims.Phone,
		ReportID:   report.ID,
		Action:     models.AuditActionRevealIdentity,
		CreatedAt:  time.Now(),
	}
	if err := h.storage.CreateAuditRecord(ctx, audit); err != nil {
		h.logger.Error("audit write failed, refusing disclosure",
			zap.String("report_id", report.ID),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	h.logger.Warn("identity revealed",
		zap.String("actor_id", claims.UserID),
		zap.String("actor_sdt", claims.Phone),
		zap.String("report_id", report.ID),
	)

	return c.JSON(fiber.Map{
		"realZaloId":  realID,
		"sender_info": report.SenderInfo,
	})
}

func (h *AdminHandler) PinStatus(c *fiber.Ctx) error {
	configured, err := h.pin.Configured(c.Context())
	if err != nil {
		h.logger.Error("pin status lookup failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}
	return c.JSON(fiber.Map{"configured": configured})
}

type SetPinRequest struct {
	NewPin string `json:"newPin"`
}

func (h *AdminHandler) SetPin(c *fiber.Ctx) error {
	var req SetPinRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := h.pin.Set(c.Context(), req.NewPin); err != nil {
		if errors.Is(err, auth.ErrPinTooShort) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "PIN must be at least 4 characters",
			})
		}
		h.logger.Error("pin update failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	return c.JSON(fiber.Map{"success": true})
}

func (h *AdminHandler) ListTeachers(c *fiber.Ctx) error {
	list, err := h.storage.ListStaff(c.Context())
	if err != nil {
		h.logger.Error("staff listing failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}
	if list == nil {
		list = []models.Staff{}
	}
	return c.JSON(list)
}

type UpsertTeacherRequest struct {
	Phone    string `json:"sdt" validate:"required"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

func (h *AdminHandler) UpsertTeacher(c *fiber.Ctx) error {
	var req UpsertTeacherRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := validation.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing phone number",
		})
	}

	if req.Role == "" {
		req.Role = string(models.RoleTeacher)
	}
	role := models.Role(req.Role)
	if !role.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid role",
		})
	}

	passwordHash := ""
	if strings.TrimSpace(req.Password) != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			h.logger.Error("password hashing failed", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Internal server error",
			})
		}
		passwordHash = string(hash)
	}

	staff, err := h.storage.UpsertStaff(c.Context(), &models.Staff{
		Phone:    req.Phone,
		Name:     req.Name,
		Role:     role,
		Password: passwordHash,
	})
	if err != nil {
		h.logger.Error("staff upsert failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	return c.JSON(staff)
}

func (h *AdminHandler) DeleteTeacher(c *fiber.Ctx) error {
	phone := c.Params("sdt")
	if phone == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing phone number",
		})
	}

	deleted, err := h.storage.DeleteStaff(c.Context(), phone)
	if err != nil {
		h.logger.Error("staff delete failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	return c.JSON(fiber.Map{"deleted": deleted})
}
