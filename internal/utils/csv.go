package utils

import (
	"encoding/csv"
	"io"
)

// TimesheetRow is one exported line of the timesheet report.
type TimesheetRow struct {
	Student     string
	Date        string
	StartTime   string
	EndTime     string
	TotalHours  string
	Project     string
	Description string
	Status      string
}

var timesheetHeaders = []string{
	"Student", "Date", "Start Time", "End Time", "Total Hours", "Project", "Description", "Status",
}

// WriteTimesheetCSV streams the timesheet export.
func WriteTimesheetCSV(w io.Writer, rows []TimesheetRow) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(timesheetHeaders); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			row.Student,
			row.Date,
			row.StartTime,
			row.EndTime,
			row.TotalHours,
			row.Project,
			row.Description,
			row.Status,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
