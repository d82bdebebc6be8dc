// Package report renders admin reports for download.
package report

import (
	"fmt"
	"io"

	"github.com/bingoo/platform/internal/domain"
	"github.com/xuri/excelize/v2"
)

// DailySheet is the worksheet name used by WriteDailyXLSX.
const DailySheet = "Daily"

var dailyHeaders = []interface{}{"Date", "Deposits", "Transactions", "Points spent", "Claims"}

// WriteDailyXLSX writes one row per day followed by a totals row.
func WriteDailyXLSX(w io.Writer, stats []domain.DailyStat) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", DailySheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(DailySheet, "A1", &dailyHeaders); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}
	if err := f.SetCellStyle(DailySheet, "A1", "E1", bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, s := range stats {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		deposits, _ := s.Deposits.Float64()
		row := []interface{}{s.Date, deposits, s.TransactionCount, s.PointsSpent, s.Claims}
		if err := f.SetSheetRow(DailySheet, cell, &row); err != nil {
			return fmt.Errorf("write row %s: %w", s.Date, err)
		}
	}

	if len(stats) > 0 {
		last := len(stats) + 1
		totals := last + 1
		if err := f.SetCellValue(DailySheet, fmt.Sprintf("A%d", totals), "Total"); err != nil {
			return err
		}
		for _, col := range []string{"B", "C", "D", "E"} {
			formula := fmt.Sprintf("SUM(%s2:%s%d)", col, col, last)
			if err := f.SetCellFormula(DailySheet, fmt.Sprintf("%s%d", col, totals), formula); err != nil {
				return fmt.Errorf("write totals: %w", err)
			}
		}
		if err := f.SetCellStyle(DailySheet, fmt.Sprintf("A%d", totals), fmt.Sprintf("E%d", totals), bold); err != nil {
			return fmt.Errorf("style totals: %w", err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
