package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const (
	summarySheet  = "Sales"
	productsSheet = "Products"
)

// WriteXLSX exports the report as a workbook with a bucket sheet and a
// product sheet.
func WriteXLSX(w io.Writer, r Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), summarySheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(productsSheet); err != nil {
		return err
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	rows := [][]any{
		{"Sales report", string(r.Duration)},
		{"From", r.From, "To", r.To},
		{},
		{"Period", "Transactions", "Cash", "GCash", "Total"},
	}
	headerRow := len(rows)
	for _, p := range r.Points {
		rows = append(rows, []any{p.Label, p.Count, p.Cash, p.GCash, p.Total})
	}
	g := r.GrandTotals
	rows = append(rows, []any{"Total", g.TransactionCount, g.Cash, g.GCash, g.Total})
	if err := writeRows(f, summarySheet, rows); err != nil {
		return err
	}
	if err := styleRow(f, summarySheet, headerRow, 5, header); err != nil {
		return err
	}
	if err := styleRow(f, summarySheet, len(rows), 5, header); err != nil {
		return err
	}

	rows = [][]any{{"Product", "Qty", "Revenue", "Share %"}}
	for _, p := range r.Products {
		rows = append(rows, []any{p.Title, p.Qty, p.Revenue, p.Share})
	}
	if err := writeRows(f, productsSheet, rows); err != nil {
		return err
	}
	if err := styleRow(f, productsSheet, 1, 4, header); err != nil {
		return err
	}
	if err := f.SetColWidth(productsSheet, "A", "A", 32); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func styleRow(f *excelize.File, sheet string, row, cols, style int) error {
	first, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(cols, row)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, first, last, style)
}
