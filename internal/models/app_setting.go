package models

import "time"

// AppSetting is a global key/value flag, readable by all roles and written by
// admins only.
type AppSetting struct {
	ID           uint64    `gorm:"primarykey" json:"id"`
	SettingKey   string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"setting_key"`
	SettingValue string    `gorm:"type:varchar(255);not null" json:"setting_value"`
	UpdatedBy    uint64    `json:"updated_by"`
	UpdatedAt    time.Time `json:"updated_at"`
}
