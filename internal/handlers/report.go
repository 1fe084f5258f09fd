package handlers

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/oso-hr/timetracking-api/internal/errors"
	"github.com/oso-hr/timetracking-api/internal/services"
	"github.com/oso-hr/timetracking-api/internal/utils"
)

// ReportHandler coordinates admin report HTTP handlers.
type ReportHandler struct {
	reportService *services.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService *services.ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
	}
}

// Overview returns the per-student hour totals.
func (h *ReportHandler) Overview(c *gin.Context) {
	overviews, err := h.reportService.Overview(c.Request.Context())
	if err != nil {
		apierrors.InternalError(c, "Failed to build overview")
		return
	}

	c.JSON(http.StatusOK, gin.H{"students": overviews})
}

// TimesheetCSV exports every time entry as CSV.
func (h *ReportHandler) TimesheetCSV(c *gin.Context) {
	rows, err := h.reportService.TimesheetRows()
	if err != nil {
		apierrors.InternalError(c, "Failed to build timesheet")
		return
	}

	var buf bytes.Buffer
	if err := utils.WriteTimesheetCSV(&buf, rows); err != nil {
		apierrors.InternalError(c, "Failed to write timesheet")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="timesheet.csv"`)
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

// TimesheetXLSX exports every time entry as a workbook.
func (h *ReportHandler) TimesheetXLSX(c *gin.Context) {
	data, err := h.reportService.TimesheetWorkbook()
	if err != nil {
		apierrors.InternalError(c, "Failed to build timesheet")
		return
	}

	serveWorkbook(c, "timesheet.xlsx", data)
}
