package models

import (
	"time"
)

const AuditActionRevealIdentity = "reveal_identity"

// AuditRecord is a durable trace of a privileged disclosure. One row is
// written per reveal-identity call, before the decrypted identity is
// returned to the caller.
type AuditRecord struct {
	ID         string    `json:"id" gorm:"primaryKey"`
	ActorID    string    `json:"actor_id" gorm:"not null;index"`
	ActorPhone string    `json:"actor_sdt" gorm:"column:actor_sdt"`
	ReportID   string    `json:"report_id" gorm:"not null;index"`
	Action     string    `json:"action" gorm:"not null"`
	CreatedAt  time.Time `json:"created_at"`
}
