package services

import (
	"errors"
	"fmt"

	"github.com/oso-hr/timetracking-api/internal/constants"
	"github.com/oso-hr/timetracking-api/internal/models"
	"github.com/oso-hr/timetracking-api/internal/repository"
	"gorm.io/gorm"
)

var ErrUnknownSetting = errors.New("unknown setting key")

// SettingService reads and writes application settings.
type SettingService struct {
	settingRepo repository.SettingRepository
}

// NewSettingService creates a new SettingService.
func NewSettingService(settingRepo repository.SettingRepository) *SettingService {
	return &SettingService{settingRepo: settingRepo}
}

// List returns all stored settings.
func (s *SettingService) List() ([]models.AppSetting, error) {
	settings, err := s.settingRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	return settings, nil
}

// LockDateToToday reports whether time entries are restricted to today's
// date. A missing row means the restriction is off.
func (s *SettingService) LockDateToToday() (bool, error) {
	setting, err := s.settingRepo.Get(constants.SettingLockDateToToday)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read setting: %w", err)
	}
	return setting.SettingValue == "true", nil
}

// SetLockDateToToday toggles the date restriction, recording who changed it.
func (s *SettingService) SetLockDateToToday(enabled bool, updatedBy uint64) error {
	value := "false"
	if enabled {
		value = "true"
	}
	if err := s.settingRepo.Set(constants.SettingLockDateToToday, value, updatedBy); err != nil {
		return fmt.Errorf("failed to save setting: %w", err)
	}
	return nil
}
