package services

import (
	"context"
	"fmt"
	"strconv"

	"github.com/oso-hr/timetracking-api/internal/models"
	"github.com/oso-hr/timetracking-api/internal/repository"
	"github.com/oso-hr/timetracking-api/internal/utils"
	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"
)

// ReportService builds the admin reports over students and their hours.
type ReportService struct {
	studentRepo repository.StudentRepository
	entryRepo   repository.TimeEntryRepository
}

// NewReportService creates a new ReportService.
func NewReportService(studentRepo repository.StudentRepository, entryRepo repository.TimeEntryRepository) *ReportService {
	return &ReportService{
		studentRepo: studentRepo,
		entryRepo:   entryRepo,
	}
}

// StudentOverview aggregates one student's logged hours.
type StudentOverview struct {
	StudentID     uint64  `json:"student_id"`
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	EntryCount    int     `json:"entry_count"`
	TotalHours    float64 `json:"total_hours"`
	ApprovedHours float64 `json:"approved_hours"`
	PendingHours  float64 `json:"pending_hours"`
}

// Overview joins students with their time entries. The two collections are
// fetched in parallel and merged in memory.
func (s *ReportService) Overview(ctx context.Context) ([]StudentOverview, error) {
	var (
		students []models.Student
		entries  []models.TimeEntry
	)

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		students, err = s.studentRepo.List()
		return err
	})
	g.Go(func() error {
		var err error
		entries, _, err = s.entryRepo.List(repository.TimeEntryFilter{})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load report data: %w", err)
	}

	byStudent := make(map[uint64]*StudentOverview, len(students))
	overviews := make([]StudentOverview, 0, len(students))
	for _, student := range students {
		if student.Role != models.RoleStudent {
			continue
		}
		overviews = append(overviews, StudentOverview{
			StudentID: student.ID,
			Name:      student.Name,
			Email:     student.Email,
		})
	}
	for i := range overviews {
		byStudent[overviews[i].StudentID] = &overviews[i]
	}

	for _, entry := range entries {
		ov, ok := byStudent[entry.StudentID]
		if !ok {
			continue
		}
		ov.EntryCount++
		ov.TotalHours = utils.TotalHours([]float64{ov.TotalHours, entry.TotalHours})
		switch entry.Status {
		case models.EntryStatusApproved:
			ov.ApprovedHours = utils.TotalHours([]float64{ov.ApprovedHours, entry.TotalHours})
		case models.EntryStatusPending:
			ov.PendingHours = utils.TotalHours([]float64{ov.PendingHours, entry.TotalHours})
		}
	}

	return overviews, nil
}

// TimesheetRows flattens every entry, with student and project names
// resolved, into export rows ordered the way the list query orders them.
func (s *ReportService) TimesheetRows() ([]utils.TimesheetRow, error) {
	entries, _, err := s.entryRepo.List(repository.TimeEntryFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to load time entries: %w", err)
	}

	rows := make([]utils.TimesheetRow, len(entries))
	for i, entry := range entries {
		rows[i] = utils.TimesheetRow{
			Student:     entry.Student.Name,
			Date:        entry.Date,
			StartTime:   entry.StartTime,
			EndTime:     entry.EndTime,
			TotalHours:  strconv.FormatFloat(entry.TotalHours, 'f', 2, 64),
			Project:     entry.Project.Name,
			Description: entry.Description,
			Status:      string(entry.Status),
		}
	}
	return rows, nil
}

// TimesheetWorkbook renders the timesheet rows as an xlsx file.
func (s *ReportService) TimesheetWorkbook() ([]byte, error) {
	rows, err := s.TimesheetRows()
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Timesheet"
	f.SetSheetName("Sheet1", sheet)

	headers := []interface{}{"Student", "Date", "Start Time", "End Time", "Total Hours", "Project", "Description", "Status"}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return nil, err
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := []interface{}{
			row.Student, row.Date, row.StartTime, row.EndTime,
			row.TotalHours, row.Project, row.Description, row.Status,
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
