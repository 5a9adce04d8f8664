package models

import (
	"time"
)

type ReportStatus string

const (
	StatusPending   ReportStatus = "pending"
	StatusProcessed ReportStatus = "processed"
)

func (s ReportStatus) Valid() bool {
	return s == StatusPending || s == StatusProcessed
}

// ReportType is one entry of the static selector list shown to reporters.
type ReportType struct {
	Value string `json:"value"`
	Title string `json:"title"`
}

var ReportTypes = []ReportType{
	{Value: "physical", Title: "Physical violence"},
	{Value: "verbal", Title: "Verbal / emotional abuse"},
	{Value: "cyber", Title: "Cyberbullying"},
	{Value: "other", Title: "Feedback / other"},
}

// NormalizeReportType coerces unknown categories to "other". Submissions
// are never rejected over the category field.
func NormalizeReportType(value string) string {
	for _, t := range ReportTypes {
		if t.Value == value {
			return t.Value
		}
	}
	return "other"
}

// SenderInfo is optional, self-reported and unverified contact data
// supplied by the reporter. It is stored as-is and only ever returned
// through the reveal-identity flow.
type SenderInfo struct {
	Name   string `json:"name"`
	Phone  string `json:"sdt" gorm:"column:sdt"`
	Avatar string `json:"avatar"`
}

// Report is a single incident report. EncryptedID is the reporter's
// platform identifier, AES-GCM encrypted with the process-wide secret,
// or empty when the reporter stayed fully anonymous. DisplayName is the
// generated pseudonym used in every staff-facing listing.
type Report struct {
	ID          string       `json:"id" gorm:"primaryKey"`
	EncryptedID string       `json:"-" gorm:"column:encrypted_id"`
	DisplayName string       `json:"display_name"`
	Type        string       `json:"type"`
	Content     string       `json:"content"`
	Images      []string     `json:"images" gorm:"serializer:json"`
	SenderInfo  SenderInfo   `json:"sender_info" gorm:"embedded;embeddedPrefix:sender_"`
	Status      ReportStatus `json:"status" gorm:"not null;default:pending"`
	CreatedAt   time.Time    `json:"created_at"`
}

// ReportSummary is the staff-facing projection of a report. The
// ciphertext never leaves the store; listings only flag its presence.
type ReportSummary struct {
	ID             string       `json:"id"`
	DisplayName    string       `json:"display_name"`
	Type           string       `json:"type"`
	Content        string       `json:"content"`
	Images         []string     `json:"images"`
	Status         ReportStatus `json:"status"`
	CreatedAt      time.Time    `json:"created_at"`
	HasEncryptedID bool         `json:"has_encrypted_id"`
}

func (r *Report) Summary() ReportSummary {
	images := r.Images
	if images == nil {
		images = []string{}
	}
	return ReportSummary{
		ID:             r.ID,
		DisplayName:    r.DisplayName,
		Type:           r.Type,
		Content:        r.Content,
		Images:         images,
		Status:         r.Status,
		CreatedAt:      r.CreatedAt,
		HasEncryptedID: r.EncryptedID != "",
	}
}
