package models

import "time"

// SentEmail records an applicant address a rejection email was already sent
// to. Addresses are stored lowercased; re-uploading a list later marks these
// rows as already sent instead of resending.
type SentEmail struct {
	ID      uint64    `gorm:"primarykey" json:"id"`
	Address string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"address"`
	SentAt  time.Time `json:"sent_at"`
}
