package models

import "time"

// TaskAssignment defines which students may log time against a task.
type TaskAssignment struct {
	TaskID    uint64    `gorm:"primarykey" json:"task_id"`
	StudentID uint64    `gorm:"primarykey" json:"student_id"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	Task    Task    `gorm:"foreignKey:TaskID" json:"task,omitempty"`
	Student Student `gorm:"foreignKey:StudentID" json:"student,omitempty"`
}
