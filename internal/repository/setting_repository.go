package repository

import (
	"time"

	"github.com/oso-hr/timetracking-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSettingRepository is a GORM implementation of SettingRepository
type GormSettingRepository struct {
	db *gorm.DB
}

// NewSettingRepository creates a new SettingRepository
func NewSettingRepository(db *gorm.DB) SettingRepository {
	return &GormSettingRepository{db: db}
}

func (r *GormSettingRepository) Get(key string) (*models.AppSetting, error) {
	var setting models.AppSetting
	if err := r.db.Where("setting_key = ?", key).First(&setting).Error; err != nil {
		return nil, err
	}
	return &setting, nil
}

func (r *GormSettingRepository) List() ([]models.AppSetting, error) {
	var settings []models.AppSetting
	if err := r.db.Order("setting_key").Find(&settings).Error; err != nil {
		return nil, err
	}
	return settings, nil
}

// Set upserts a setting value, recording who changed it
func (r *GormSettingRepository) Set(key, value string, updatedBy uint64) error {
	setting := models.AppSetting{
		SettingKey:   key,
		SettingValue: value,
		UpdatedBy:    updatedBy,
		UpdatedAt:    time.Now(),
	}

	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "setting_key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"setting_value": value,
			"updated_by":    updatedBy,
			"updated_at":    setting.UpdatedAt,
		}),
	}).Create(&setting).Error
}
