// Package auth holds the secondary-secret layer: the emergency PIN that
// gates identity disclosure on top of a valid admin session.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/kietute/safevoice/internal/storage"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var ErrPinTooShort = errors.New("pin must be at least 4 characters")

// PinService resolves and manages the emergency PIN. The PIN source is
// two-tier: the bcrypt hash stored in global settings wins; while none
// is configured, the environment fallback PIN applies.
type PinService struct {
	store    storage.Storage
	fallback string
	logger   *zap.Logger
}

func NewPinService(store storage.Storage, fallback string, logger *zap.Logger) *PinService {
	return &PinService{
		store:    store,
		fallback: fallback,
		logger:   logger,
	}
}

// Verify checks a candidate PIN against the active source. Once a PIN
// hash is configured the fallback is never consulted again.
func (s *PinService) Verify(ctx context.Context, candidate string) (bool, error) {
	settings, err := s.store.GetOrCreateSettings(ctx)
	if err != nil {
		return false, err
	}

	if settings.AdminMasterPinHash != "" {
		err := bcrypt.CompareHashAndPassword([]byte(settings.AdminMasterPinHash), []byte(candidate))
		return err == nil, nil
	}

	if candidate == "" {
		return false, nil
	}

	s.logger.Warn("no master PIN configured, verifying against environment fallback")
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(s.fallback)) == 1, nil
}

// Set replaces the stored PIN hash. PINs shorter than 4 characters are
// rejected.
func (s *PinService) Set(ctx context.Context, newPin string) error {
	if len(newPin) < 4 {
		return ErrPinTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPin), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	settings, err := s.store.GetOrCreateSettings(ctx)
	if err != nil {
		return err
	}
	settings.AdminMasterPinHash = string(hash)
	settings.UpdatedAt = time.Now()
	return s.store.SaveSettings(ctx, settings)
}

// Configured reports whether a PIN hash has been stored, i.e. whether
// the fallback PIN is still live.
func (s *PinService) Configured(ctx context.Context) (bool, error) {
	settings, err := s.store.GetOrCreateSettings(ctx)
	if err != nil {
		return false, err
	}
	return settings.AdminMasterPinHash != "", nil
}
