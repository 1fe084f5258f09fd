package dto

import (
	"time"

	"github.com/oso-hr/timetracking-api/internal/models"
)

// StudentDTO represents a user profile in API responses
type StudentDTO struct {
	ID         uint64      `json:"id"`
	Email      string      `json:"email"`
	Name       string      `json:"name"`
	Role       models.Role `json:"role"`
	Status     string      `json:"status"`
	FirstLogin bool        `json:"first_login"`
	CreatedAt  time.Time   `json:"created_at"`
}

// ToStudentDTO converts a Student model to StudentDTO
func ToStudentDTO(student models.Student) StudentDTO {
	return StudentDTO{
		ID:         student.ID,
		Email:      student.Email,
		Name:       student.Name,
		Role:       student.Role,
		Status:     student.Status,
		FirstLogin: student.FirstLogin,
		CreatedAt:  student.CreatedAt,
	}
}

// ToStudentDTOs converts a slice of students
func ToStudentDTOs(students []models.Student) []StudentDTO {
	dtos := make([]StudentDTO, len(students))
	for i, student := range students {
		dtos[i] = ToStudentDTO(student)
	}
	return dtos
}
