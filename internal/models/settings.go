package models

import (
	"time"
)

// SettingsKey is the primary key of the single global settings row.
const SettingsKey = "global"

// Settings is a singleton row holding the emergency PIN hash. While
// AdminMasterPinHash is empty the PinService falls back to the
// environment-configured PIN.
type Settings struct {
	Key                string    `json:"key" gorm:"primaryKey"`
	AdminMasterPinHash string    `json:"-"`
	UpdatedAt          time.Time `json:"updated_at"`
}
