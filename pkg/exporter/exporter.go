// Package exporter renders an export result into a downloadable xlsx
// workbook with a summary sheet and a detail sheet.
package exporter

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Val0905/INEA/pkg/engine"
	"github.com/Val0905/INEA/pkg/table"
)

const (
	summarySheet = "Resumen"
	detailSheet  = "Detalle"
)

// Write renders the workbook for one export result to w.
func Write(w io.Writer, res *engine.ExportResult) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName(f.GetSheetName(0), summarySheet)
	if err := writeSummary(f, res.Stats); err != nil {
		return fmt.Errorf("summary sheet: %w", err)
	}
	if _, err := f.NewSheet(detailSheet); err != nil {
		return fmt.Errorf("detail sheet: %w", err)
	}
	if err := writeDetail(f, res.Columns, res.Rows); err != nil {
		return fmt.Errorf("detail sheet: %w", err)
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, stats *engine.ActiveStats) error {
	if err := f.MergeCell(summarySheet, "A1", "B1"); err != nil {
		return err
	}
	rows := [][]any{
		{"Desglose de activos"},
		{"Masculino", stats.Male},
		{"Femenino", stats.Female},
		{"Total activos", stats.Active},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(summarySheet, "A", "A", 26); err != nil {
		return err
	}
	return f.SetColWidth(summarySheet, "B", "B", 14)
}

func writeDetail(f *excelize.File, columns []string, rows []table.Row) error {
	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(detailSheet, "A1", &header); err != nil {
		return err
	}
	line := make([]any, len(columns))
	for i, row := range rows {
		for j, c := range columns {
			line[j] = engine.NormalizeText(row[c])
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(detailSheet, cell, &line); err != nil {
			return err
		}
	}
	return nil
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// Filename builds the suggested download name for a region export, e.g.
// Activos_AZUA_2026-08-28.xlsx. Characters outside [A-Za-z0-9_-] in the
// region name collapse to underscores.
func Filename(regionName string, now time.Time) string {
	safe := unsafeName.ReplaceAllString(strings.TrimSpace(regionName), "_")
	safe = strings.Trim(safe, "_")
	if safe == "" {
		safe = "export"
	}
	return fmt.Sprintf("Activos_%s_%s.xlsx", safe, now.Format("2006-01-02"))
}
