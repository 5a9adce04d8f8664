package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/kietute/safevoice/internal/models"
	"github.com/kietute/safevoice/internal/storage"
	"github.com/kietute/safevoice/internal/validation"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type AuthHandler struct {
	storage     storage.Storage
	jwtSecret   string
	jwtDuration time.Duration
	logger      *zap.Logger
}

func NewAuthHandler(store storage.Storage, jwtSecret string, jwtDuration time.Duration, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		storage:     store,
		jwtSecret:   jwtSecret,
		jwtDuration: jwtDuration,
		logger:      logger,
	}
}

// Login authenticates a staff member by phone number and password.
// Unknown accounts and wrong passwords produce an identical response so
// the endpoint cannot be used to enumerate phone numbers.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := validation.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing login credentials",
		})
	}

	staff, err := h.storage.GetStaffByPhone(c.Context(), req.Phone)
	if err != nil {
		if errors.Is(err, storage.ErrStaffNotFound) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Invalid credentials",
			})
		}
		h.logger.Error("staff lookup failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(staff.Password), []byte(req.Password)); err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Invalid credentials",
		})
	}

	token, err := h.generateToken(staff)
	if err != nil {
		h.logger.Error("token generation failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate token",
		})
	}

	return c.JSON(models.LoginResponse{
		Token: token,
		User:  *staff,
	})
}

func (h *AuthHandler) generateToken(staff *models.Staff) (string, error) {
	claims := models.Claims{
		UserID: staff.ID,
		Phone:  staff.Phone,
		Name:   staff.Name,
		Role:   staff.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(h.jwtDuration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.jwtSecret))
}
