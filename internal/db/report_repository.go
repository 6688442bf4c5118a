package db

import (
	"context"
	"time"

	"github.com/terraincognita07/healthpulse/internal/models"
	"gorm.io/gorm"
)

type ReportRepository struct {
	database *gorm.DB
}

func NewReportRepository(database *gorm.DB) *ReportRepository {
	return &ReportRepository{database: database}
}

// Timestamps are stored in UTC so text comparisons in SQLite stay ordered.
func (repo *ReportRepository) Create(ctx context.Context, report *models.SymptomReport) error {
	report.CreatedAt = report.CreatedAt.UTC()
	return repo.database.WithContext(ctx).Create(report).Error
}

func (repo *ReportRepository) ListSince(ctx context.Context, since time.Time) ([]models.SymptomReport, error) {
	reports := make([]models.SymptomReport, 0)
	if err := repo.database.WithContext(ctx).
		Where("created_at >= ?", since.UTC()).
		Order("created_at ASC, id ASC").
		Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}

func (repo *ReportRepository) ListAll(ctx context.Context) ([]models.SymptomReport, error) {
	reports := make([]models.SymptomReport, 0)
	if err := repo.database.WithContext(ctx).Order("created_at ASC, id ASC").Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}

func (repo *ReportRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := repo.database.WithContext(ctx).Model(&models.SymptomReport{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (repo *ReportRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := repo.database.WithContext(ctx).Where("created_at < ?", cutoff.UTC()).Delete(&models.SymptomReport{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
