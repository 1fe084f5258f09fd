package services

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// readSheetRows loads the first worksheet of an uploaded .xlsx or .xls file
// into string rows, header row included.
func readSheetRows(filename string, data []byte) ([][]string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".xls":
		workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
		if err != nil {
			return nil, fmt.Errorf("failed to open xls file: %w", err)
		}
		if workbook.NumSheets() == 0 {
			return nil, fmt.Errorf("no worksheet found")
		}
		rows := workbook.ReadAllCells(100000)
		if len(rows) == 0 {
			return nil, fmt.Errorf("worksheet is empty")
		}
		return rows, nil
	case ".xlsx":
		file, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to open xlsx file: %w", err)
		}
		defer func() { _ = file.Close() }()

		sheetName := file.GetSheetName(0)
		if sheetName == "" {
			return nil, fmt.Errorf("no worksheet found")
		}

		rows, err := file.GetRows(sheetName)
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			return nil, fmt.Errorf("worksheet is empty")
		}
		return rows, nil
	default:
		return nil, fmt.Errorf("unsupported file type %q, expected .xlsx or .xls", ext)
	}
}

func normalizeHeader(header string) string {
	return strings.ToLower(strings.TrimSpace(header))
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

var resultHeaders = []string{"Mailadresse", "Name", "Anrede", "Sprache", "Status", "Fehler"}

// writeResultsWorkbook renders a send batch as the results spreadsheet.
func writeResultsWorkbook(recipients []Recipient) (*excelize.File, error) {
	f := excelize.NewFile()
	const sheet = "Ergebnisse"

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, err
	}

	if err := f.SetSheetRow(sheet, "A1", &resultHeaders); err != nil {
		return nil, err
	}

	for i, r := range recipients {
		row := []interface{}{r.Email, r.Name, r.Salutation, r.Language, statusLabel(r.Status), r.Error}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}

	return f, nil
}

func statusLabel(status RecipientStatus) string {
	switch status {
	case RecipientSuccess:
		return "Gesendet"
	case RecipientAlreadySent:
		return "Bereits gesendet"
	case RecipientFailed:
		return "Fehlgeschlagen"
	default:
		return "Ausstehend"
	}
}

// writeSampleWorkbook renders the blank upload template with example rows.
func writeSampleWorkbook() (*excelize.File, error) {
	f := excelize.NewFile()
	const sheet = "Vorlage"

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, err
	}

	headers := []string{"Mailadresse", "Sprache", "Anrede", "Name"}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return nil, err
	}

	samples := [][]interface{}{
		{"max@example.com", "DE", "Du", "Max"},
		{"anna@example.com", "EN", "Sie", "Frau Schmidt"},
		{"tom@example.com", "FR", "Du", "Tom"},
	}
	for i, row := range samples {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}

	return f, nil
}
