package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kietute/safevoice/internal/models"
)

// InMemoryStorage implements Storage without a database. Used by tests.
type InMemoryStorage struct {
	mu       sync.RWMutex
	reports  map[string]*models.Report
	staff    map[string]*models.Staff
	settings *models.Settings
	audits   []models.AuditRecord
}

func NewInMemoryStorage() *InMemoryStorage {
	return &InMemoryStorage{
		reports: make(map[string]*models.Report),
		staff:   make(map[string]*models.Staff),
	}
}

func (s *InMemoryStorage) CreateReport(ctx context.Context, report *models.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *report
	s.reports[report.ID] = &clone
	return nil
}

func (s *InMemoryStorage) GetReport(ctx context.Context, id string) (*models.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	report, exists := s.reports[id]
	if !exists {
		return nil, ErrReportNotFound
	}
	clone := *report
	return &clone, nil
}

func (s *InMemoryStorage) ListReports(ctx context.Context, filter ReportFilter) ([]models.Report, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []models.Report
	for _, report := range s.reports {
		if filter.Status != "" && string(report.Status) != filter.Status {
			continue
		}
		matched = append(matched, *report)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	offset := (filter.Page - 1) * filter.Limit
	if offset >= len(matched) {
		return []models.Report{}, total, nil
	}
	end := offset + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (s *InMemoryStorage) UpdateReportStatus(ctx context.Context, id string, status models.ReportStatus) (*models.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	report, exists := s.reports[id]
	if !exists {
		return nil, ErrReportNotFound
	}
	report.Status = status
	clone := *report
	return &clone, nil
}

func (s *InMemoryStorage) GetStaffByPhone(ctx context.Context, phone string) (*models.Staff, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	staff, exists := s.staff[phone]
	if !exists {
		return nil, ErrStaffNotFound
	}
	clone := *staff
	return &clone, nil
}

func (s *InMemoryStorage) ListStaff(ctx context.Context) ([]models.Staff, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var list []models.Staff
	for _, staff := range s.staff {
		list = append(list, *staff)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list, nil
}

func (s *InMemoryStorage) UpsertStaff(ctx context.Context, staff *models.Staff) (*models.Staff, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.staff[staff.Phone]
	if !exists {
		if staff.ID == "" {
			staff.ID = uuid.NewString()
		}
		staff.CreatedAt = time.Now()
		staff.UpdatedAt = staff.CreatedAt
		clone := *staff
		s.staff[staff.Phone] = &clone
		return staff, nil
	}

	existing.Name = staff.Name
	existing.Role = staff.Role
	if staff.Password != "" {
		existing.Password = staff.Password
	}
	existing.UpdatedAt = time.Now()
	clone := *existing
	return &clone, nil
}

func (s *InMemoryStorage) DeleteStaff(ctx context.Context, phone string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.staff[phone]; !exists {
		return 0, nil
	}
	delete(s.staff, phone)
	return 1, nil
}

func (s *InMemoryStorage) GetOrCreateSettings(ctx context.Context) (*models.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.settings == nil {
		s.settings = &models.Settings{Key: models.SettingsKey, UpdatedAt: time.Now()}
	}
	clone := *s.settings
	return &clone, nil
}

func (s *InMemoryStorage) SaveSettings(ctx context.Context, settings *models.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *settings
	s.settings = &clone
	return nil
}

func (s *InMemoryStorage) CreateAuditRecord(ctx context.Context, record *models.AuditRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	s.audits = append(s.audits, *record)
	return nil
}

// AuditRecords returns a snapshot of recorded disclosures.
func (s *InMemoryStorage) AuditRecords() []models.AuditRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.AuditRecord, len(s.audits))
	copy(out, s.audits)
	return out
}
