package models

import "time"

type EntryStatus string

const (
	EntryStatusPending  EntryStatus = "pending"
	EntryStatusApproved EntryStatus = "approved"
	EntryStatusRejected EntryStatus = "rejected"
)

func ValidEntryStatus(s EntryStatus) bool {
	switch s {
	case EntryStatusPending, EntryStatusApproved, EntryStatusRejected:
		return true
	}
	return false
}

// TimeEntry is one logged work session. Date is YYYY-MM-DD, the clock times
// are HH:MM on that date; TotalHours is derived and quarter-hour rounded.
type TimeEntry struct {
	ID          uint64      `gorm:"primarykey" json:"id"`
	StudentID   uint64      `gorm:"not null;index" json:"student_id"`
	Date        string      `gorm:"type:varchar(10);not null;index" json:"date"`
	StartTime   string      `gorm:"type:varchar(5);not null" json:"start_time"`
	EndTime     string      `gorm:"type:varchar(5);not null" json:"end_time"`
	TotalHours  float64     `gorm:"not null" json:"total_hours"`
	ProjectID   uint64      `gorm:"not null" json:"project_id"`
	TaskID      uint64      `gorm:"not null" json:"task_id"`
	Description string      `gorm:"type:text" json:"description"`
	Status      EntryStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`

	// Relations
	Student Student `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	Project Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Task    Task    `gorm:"foreignKey:TaskID" json:"task,omitempty"`
}
