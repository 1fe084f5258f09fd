package services

import (
	"bytes"
	"context"
	"testing"

	"github.com/oso-hr/timetracking-api/internal/models"
	"github.com/oso-hr/timetracking-api/internal/repository"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupReportService(t *testing.T) (*ReportService, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Student{},
		&models.Project{},
		&models.Task{},
		&models.TimeEntry{},
	))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	svc := NewReportService(repository.NewStudentRepository(db), repository.NewTimeEntryRepository(db))
	return svc, db
}

func seedReportData(t *testing.T, db *gorm.DB) models.Student {
	t.Helper()

	student := models.Student{AuthUserID: "u1", Email: "max@example.com", Name: "Max", Role: models.RoleStudent, PasswordHash: "x"}
	require.NoError(t, db.Create(&student).Error)
	admin := models.Student{AuthUserID: "u2", Email: "admin@example.com", Name: "Admin", Role: models.RoleAdmin, PasswordHash: "x"}
	require.NoError(t, db.Create(&admin).Error)

	project := models.Project{Name: "Website"}
	require.NoError(t, db.Create(&project).Error)

	entries := []models.TimeEntry{
		{StudentID: student.ID, Date: "2026-01-10", StartTime: "09:00", EndTime: "10:30", TotalHours: 1.5, ProjectID: project.ID, TaskID: 1, Status: models.EntryStatusApproved},
		{StudentID: student.ID, Date: "2026-01-11", StartTime: "09:00", EndTime: "11:15", TotalHours: 2.25, ProjectID: project.ID, TaskID: 1, Status: models.EntryStatusPending},
		{StudentID: student.ID, Date: "2026-01-12", StartTime: "09:00", EndTime: "10:00", TotalHours: 1, ProjectID: project.ID, TaskID: 1, Status: models.EntryStatusRejected},
	}
	require.NoError(t, db.Create(&entries).Error)
	return student
}

func TestReportService_Overview(t *testing.T) {
	svc, db := setupReportService(t)
	student := seedReportData(t, db)

	overviews, err := svc.Overview(context.Background())
	require.NoError(t, err)

	// only student-role accounts appear
	require.Len(t, overviews, 1)
	ov := overviews[0]
	require.Equal(t, student.ID, ov.StudentID)
	require.Equal(t, 3, ov.EntryCount)
	require.Equal(t, 4.75, ov.TotalHours)
	require.Equal(t, 1.5, ov.ApprovedHours)
	require.Equal(t, 2.25, ov.PendingHours)
}

func TestReportService_TimesheetRows(t *testing.T) {
	svc, db := setupReportService(t)
	seedReportData(t, db)

	rows, err := svc.TimesheetRows()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	// date-descending ordering
	require.Equal(t, "2026-01-12", rows[0].Date)
	require.Equal(t, "Max", rows[0].Student)
	require.Equal(t, "Website", rows[0].Project)
	require.Equal(t, "1.00", rows[0].TotalHours)
}

func TestReportService_TimesheetWorkbook(t *testing.T) {
	svc, db := setupReportService(t)
	seedReportData(t, db)

	data, err := svc.TimesheetWorkbook()
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Timesheet")
	require.NoError(t, err)
	require.Len(t, rows, 4) // header plus three entries
	require.Equal(t, "Student", rows[0][0])
}
