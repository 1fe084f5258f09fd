package repository

import (
	"strings"
	"time"

	"github.com/oso-hr/timetracking-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSentEmailRepository is a GORM implementation of SentEmailRepository
type GormSentEmailRepository struct {
	db *gorm.DB
}

// NewSentEmailRepository creates a new SentEmailRepository
func NewSentEmailRepository(db *gorm.DB) SentEmailRepository {
	return &GormSentEmailRepository{db: db}
}

func (r *GormSentEmailRepository) ListAddresses() ([]string, error) {
	var addresses []string
	if err := r.db.Model(&models.SentEmail{}).
		Order("address").
		Pluck("address", &addresses).Error; err != nil {
		return nil, err
	}
	return addresses, nil
}

// Merge records addresses idempotently; already-present rows are left alone.
func (r *GormSentEmailRepository) Merge(addresses []string) error {
	if len(addresses) == 0 {
		return nil
	}

	now := time.Now()
	rows := make([]models.SentEmail, len(addresses))
	for i, address := range addresses {
		rows[i] = models.SentEmail{
			Address: strings.ToLower(address),
			SentAt:  now,
		}
	}

	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}

func (r *GormSentEmailRepository) Clear() error {
	return r.db.Where("1 = 1").Delete(&models.SentEmail{}).Error
}
