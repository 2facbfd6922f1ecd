package spreadsheet

import (
	"fmt"
	"log/slog"

	"github.com/foxseedlab/chanharvest/internal/spreadsheet"
	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Sheet1"

type ExcelizeSpreadsheet struct{}

func NewExcelizeSpreadsheet() *ExcelizeSpreadsheet {
	return &ExcelizeSpreadsheet{}
}

func (s *ExcelizeSpreadsheet) Write(path string, table spreadsheet.Table) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil {
			slog.Warn("failed to close spreadsheet", "error", cerr, "path", path)
		}
	}()

	sheet := sheetName(table.Sheet)
	if sheet != defaultSheet {
		if err := f.SetSheetName(defaultSheet, sheet); err != nil {
			return fmt.Errorf("rename sheet: %w", err)
		}
	}

	header := make([]any, 0, len(table.Header))
	for _, h := range table.Header {
		header = append(header, h)
	}
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}
	for i, row := range table.Rows {
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save spreadsheet: %w", err)
	}
	return nil
}

func (s *ExcelizeSpreadsheet) Read(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	rows, err := f.GetRows(sheetName(sheet))
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	return rows, nil
}

func setRow(f *excelize.File, sheet string, rowNumber int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNumber)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write row %d: %w", rowNumber, err)
	}
	return nil
}

func sheetName(name string) string {
	if name == "" {
		return defaultSheet
	}
	return name
}
