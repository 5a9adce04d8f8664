package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kietute/safevoice/internal/config"
	"github.com/kietute/safevoice/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var (
	ErrStaffNotFound  = errors.New("staff account not found")
	ErrReportNotFound = errors.New("report not found")
)

// ReportFilter narrows and pages report listings. Page and Limit are
// clamped to a minimum of 1 by the caller.
type ReportFilter struct {
	Status string
	Page   int
	Limit  int
}

type Storage interface {
	CreateReport(ctx context.Context, report *models.Report) error
	GetReport(ctx context.Context, id string) (*models.Report, error)
	ListReports(ctx context.Context, filter ReportFilter) ([]models.Report, int64, error)
	UpdateReportStatus(ctx context.Context, id string, status models.ReportStatus) (*models.Report, error)

	GetStaffByPhone(ctx context.Context, phone string) (*models.Staff, error)
	ListStaff(ctx context.Context) ([]models.Staff, error)
	UpsertStaff(ctx context.Context, staff *models.Staff) (*models.Staff, error)
	DeleteStaff(ctx context.Context, phone string) (int64, error)

	GetOrCreateSettings(ctx context.Context) (*models.Settings, error)
	SaveSettings(ctx context.Context, settings *models.Settings) error

	CreateAuditRecord(ctx context.Context, record *models.AuditRecord) error
}

type PostgresStorage struct {
	db *gorm.DB
}

func NewPostgresStorage(dsn string) (*PostgresStorage, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&models.Staff{},
		&models.Report{},
		&models.Settings{},
		&models.AuditRecord{},
	); err != nil {
		return nil, err
	}

	return &PostgresStorage{db: db}, nil
}

func (s *PostgresStorage) CreateReport(ctx context.Context, report *models.Report) error {
	return s.db.WithContext(ctx).Create(report).Error
}

func (s *PostgresStorage) GetReport(ctx context.Context, id string) (*models.Report, error) {
	var report models.Report
	if err := s.db.WithContext(ctx).First(&report, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}
	return &report, nil
}

func (s *PostgresStorage) ListReports(ctx context.Context, filter ReportFilter) ([]models.Report, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Report{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit

	var reports []models.Report
	if err := query.Order("created_at DESC").Offset(offset).Limit(filter.Limit).Find(&reports).Error; err != nil {
		return nil, 0, err
	}

	return reports, total, nil
}

func (s *PostgresStorage) UpdateReportStatus(ctx context.Context, id string, status models.ReportStatus) (*models.Report, error) {
	report, err := s.GetReport(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(report).Update("status", status).Error; err != nil {
		return nil, err
	}
	report.Status = status
	return report, nil
}

func (s *PostgresStorage) GetStaffByPhone(ctx context.Context, phone string) (*models.Staff, error) {
	var staff models.Staff
	if err := s.db.WithContext(ctx).First(&staff, "sdt = ?", phone).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStaffNotFound
		}
		return nil, err
	}
	return &staff, nil
}

func (s *PostgresStorage) ListStaff(ctx context.Context) ([]models.Staff, error) {
	var staff []models.Staff
	if err := s.db.WithContext(ctx).Order("created_at ASC").Find(&staff).Error; err != nil {
		return nil, err
	}
	return staff, nil
}

// UpsertStaff creates the account when the phone number is new, else
// updates name and role. The password hash is replaced only when the
// incoming record carries a non-empty one.
func (s *PostgresStorage) UpsertStaff(ctx context.Context, staff *models.Staff) (*models.Staff, error) {
	existing, err := s.GetStaffByPhone(ctx, staff.Phone)
	if err != nil {
		if !errors.Is(err, ErrStaffNotFound) {
			return nil, err
		}
		if staff.ID == "" {
			staff.ID = uuid.NewString()
		}
		if err := s.db.WithContext(ctx).Create(staff).Error; err != nil {
			return nil, err
		}
		return staff, nil
	}

	updates := map[string]interface{}{
		"name": staff.Name,
		"role": staff.Role,
	}
	if staff.Password != "" {
		updates["password"] = staff.Password
	}
	if err := s.db.WithContext(ctx).Model(existing).Updates(updates).Error; err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *PostgresStorage) DeleteStaff(ctx context.Context, phone string) (int64, error) {
	result := s.db.WithContext(ctx).Delete(&models.Staff{}, "sdt = ?", phone)
	return result.RowsAffected, result.Error
}

func (s *PostgresStorage) GetOrCreateSettings(ctx context.Context) (*models.Settings, error) {
	var settings models.Settings
	err := s.db.WithContext(ctx).First(&settings, "key = ?", models.SettingsKey).Error
	if err == nil {
		return &settings, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	settings = models.Settings{Key: models.SettingsKey, UpdatedAt: time.Now()}
	if err := s.db.WithContext(ctx).Create(&settings).Error; err != nil {
		return nil, err
	}
	return &settings, nil
}

func (s *PostgresStorage) SaveSettings(ctx context.Context, settings *models.Settings) error {
	return s.db.WithContext(ctx).Save(settings).Error
}

func (s *PostgresStorage) CreateAuditRecord(ctx context.Context, record *models.AuditRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	return s.db.WithContext(ctx).Create(record).Error
}

func BuildDSN(cfg config.DatabaseConfig) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.DBName,
		cfg.SSLMode,
	)
}
