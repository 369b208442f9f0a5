package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/lince-perdas/internal/domain/losses/model"
)

const (
	quantityFormat = "0.000"
	valueFormat    = "#,##0.00"
)

// ExcelWriter writes a single-sheet workbook with a header row and one row
// per record. Quantity and value are numeric cells.
type ExcelWriter struct {
	sheet string
}

// NewExcelWriter creates an XLSX writer. An empty sheet name uses
// DefaultSheet.
func NewExcelWriter(sheet string) *ExcelWriter {
	if sheet == "" {
		sheet = DefaultSheet
	}
	return &ExcelWriter{sheet: sheet}
}

func (e *ExcelWriter) Extension() string { return FormatXLSX }

func (e *ExcelWriter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Write renders rows as a workbook.
func (e *ExcelWriter) Write(w io.Writer, rows []model.Row) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), e.sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]any, len(Headers))
	for i, h := range Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(e.sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []any{
			r.Product,
			r.Sector,
			r.Month,
			weekValue(r.Week),
			r.Quantity.Round(model.QuantityPlaces).InexactFloat64(),
			r.Value.ToFloat64(),
		}
		if err := f.SetSheetRow(e.sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := e.formatColumns(f, len(rows)); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func (e *ExcelWriter) formatColumns(f *excelize.File, count int) error {
	if err := f.SetColWidth(e.sheet, "A", "A", 40); err != nil {
		return err
	}
	if err := f.SetColWidth(e.sheet, "B", "F", 14); err != nil {
		return err
	}
	if count == 0 {
		return nil
	}

	qtyFmt, valFmt := quantityFormat, valueFormat
	qtyStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &qtyFmt})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}
	valStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &valFmt})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	last := count + 1
	if err := f.SetCellStyle(e.sheet, "E2", fmt.Sprintf("E%d", last), qtyStyle); err != nil {
		return err
	}
	return f.SetCellStyle(e.sheet, "F2", fmt.Sprintf("F%d", last), valStyle)
}
