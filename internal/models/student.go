package models

import (
	"time"
)

type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
	RoleHR      Role = "hr"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleStudent, RoleAdmin, RoleHR:
		return true
	}
	return false
}

type Student struct {
	ID           uint64 `gorm:"primarykey" json:"id"`
	AuthUserID   string `gorm:"type:varchar(36);uniqueIndex;not null" json:"auth_user_id"`
	Email        string `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Name         string `gorm:"type:varchar(255);not null" json:"name"`
	Role         Role   `gorm:"type:varchar(20);not null;default:'student'" json:"role"`
	FirstLogin   bool   `gorm:"not null;default:true" json:"first_login"`
	PasswordHash string `gorm:"type:varchar(255);not null" json:"-"`
	// ResetToken stores the sha256 of the current recovery token, empty when none.
	ResetToken          string     `gorm:"type:varchar(64)" json:"-"`
	ResetTokenExpiresAt *time.Time `json:"-"`
	Status              string     `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	CreatedAt           time.Time  `json:"created_at"`

	// Relations
	TimeEntries []TimeEntry      `gorm:"foreignKey:StudentID" json:"-"`
	Assignments []TaskAssignment `gorm:"foreignKey:StudentID" json:"-"`
}
