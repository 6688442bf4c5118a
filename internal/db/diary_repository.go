package db

import (
	"github.com/terraincognita07/healthpulse/internal/models"
	"gorm.io/gorm"
)

type DiaryRepository struct {
	database *gorm.DB
}

func NewDiaryRepository(database *gorm.DB) *DiaryRepository {
	return &DiaryRepository{database: database}
}

func (repo *DiaryRepository) ListByDevice(deviceID string) ([]models.DiaryEntry, error) {
	entries := make([]models.DiaryEntry, 0)
	if err := repo.database.Where("device_id = ?", deviceID).Order("date DESC, id DESC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (repo *DiaryRepository) Create(entry *models.DiaryEntry) error {
	entry.Date = entry.Date.UTC()
	return repo.database.Create(entry).Error
}
