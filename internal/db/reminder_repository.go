package db

import (
	"time"

	"github.com/terraincognita07/healthpulse/internal/models"
	"gorm.io/gorm"
)

type ReminderRepository struct {
	database *gorm.DB
}

func NewReminderRepository(database *gorm.DB) *ReminderRepository {
	return &ReminderRepository{database: database}
}

func (repo *ReminderRepository) ListByDevice(deviceID string) ([]models.Reminder, error) {
	reminders := make([]models.Reminder, 0)
	if err := repo.database.Where("device_id = ?", deviceID).Order("id ASC").Find(&reminders).Error; err != nil {
		return nil, err
	}
	return reminders, nil
}

func (repo *ReminderRepository) ListEnabled() ([]models.Reminder, error) {
	reminders := make([]models.Reminder, 0)
	if err := repo.database.Where("enabled = ?", true).Order("id ASC").Find(&reminders).Error; err != nil {
		return nil, err
	}
	return reminders, nil
}

func (repo *ReminderRepository) FindByIDForDevice(reminderID uint, deviceID string) (models.Reminder, error) {
	reminder := models.Reminder{}
	if err := repo.database.Where("id = ? AND device_id = ?", reminderID, deviceID).First(&reminder).Error; err != nil {
		return models.Reminder{}, err
	}
	return reminder, nil
}

func (repo *ReminderRepository) Create(reminder *models.Reminder) error {
	return repo.database.Create(reminder).Error
}

func (repo *ReminderRepository) UpdateEnabled(reminderID uint, enabled bool) error {
	return repo.database.Model(&models.Reminder{}).Where("id = ?", reminderID).Update("enabled", enabled).Error
}

func (repo *ReminderRepository) UpdateLastFiredAt(reminderID uint, firedAt time.Time) error {
	return repo.database.Model(&models.Reminder{}).Where("id = ?", reminderID).Update("last_fired_at", firedAt).Error
}

func (repo *ReminderRepository) Delete(reminder *models.Reminder) error {
	return repo.database.Delete(reminder).Error
}
