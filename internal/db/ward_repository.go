package db

import (
	"github.com/terraincognita07/healthpulse/internal/models"
	"gorm.io/gorm"
)

type WardRepository struct {
	database *gorm.DB
}

func NewWardRepository(database *gorm.DB) *WardRepository {
	return &WardRepository{database: database}
}

func (repo *WardRepository) List() ([]models.Ward, error) {
	wards := make([]models.Ward, 0)
	if err := repo.database.Order("id ASC").Find(&wards).Error; err != nil {
		return nil, err
	}
	return wards, nil
}

func (repo *WardRepository) Count() (int64, error) {
	var count int64
	if err := repo.database.Model(&models.Ward{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (repo *WardRepository) CreateBatch(wards []models.Ward) error {
	if len(wards) == 0 {
		return nil
	}
	return repo.database.Create(&wards).Error
}

// SaveCounts writes back the live counts for every ward in one transaction.
func (repo *WardRepository) SaveCounts(wards []models.Ward) error {
	return repo.database.Transaction(func(tx *gorm.DB) error {
		for _, ward := range wards {
			if err := tx.Model(&models.Ward{}).Where("id = ?", ward.ID).Updates(map[string]any{
				"fever_count": ward.FeverCount,
				"cough_count": ward.CoughCount,
			}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
