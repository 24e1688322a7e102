package presentation

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const (
	SummarySheet   = "Summary"
	DocumentsSheet = "Documents"
	AlertsSheet    = "Alerts"
)

// WriteXLSX exports the rendered view as a workbook with one sheet per panel.
func WriteXLSX(w io.Writer, v View) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return fmt.Errorf("rename summary sheet: %w", err)
	}
	summary := [][]any{{"Metric", "Value"}}
	for _, card := range v.Cards {
		summary = append(summary, []any{card.Label, card.Value})
	}
	if v.RefreshedAt != "" {
		summary = append(summary, []any{"Refreshed At", v.RefreshedAt})
	}
	if err := writeRows(f, SummarySheet, summary); err != nil {
		return err
	}

	docs := [][]any{{"ID", "Filename", "Tag", "Status", "Created", "Risk", "Elevated"}}
	for _, row := range v.Documents.Rows {
		docs = append(docs, []any{row.ID, row.Filename, row.Tag, row.Badge, row.Date, row.Risk.Label, row.Risk.Elevated})
	}
	if err := writeSheet(f, DocumentsSheet, docs); err != nil {
		return err
	}

	alerts := [][]any{{"ID", "Severity", "Title", "Description", "Created"}}
	for _, row := range v.Alerts.Rows {
		alerts = append(alerts, []any{row.ID, row.Severity, row.Title, row.Description, row.Date})
	}
	if err := writeSheet(f, AlertsSheet, alerts); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, rows [][]any) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}
	return writeRows(f, sheet, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
