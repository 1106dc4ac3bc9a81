package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"invoicevision/internal/validator/invoice"
)

const sheetName = "Invoice"

// WriteXLSX renders a record as a single-sheet workbook with the same
// flattened layout as the CSV export.
func WriteXLSX(w io.Writer, rec *invoice.InvoiceRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeRow(f, 1, Columns); err != nil {
		return err
	}
	for i, row := range Rows(rec) {
		if err := writeRow(f, i+2, row); err != nil {
			return err
		}
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, rowNum int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return fmt.Errorf("row %d: %w", rowNum, err)
	}
	row := make([]any, len(values))
	for i, v := range values {
		row[i] = v
	}
	if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
		return fmt.Errorf("row %d: %w", rowNum, err)
	}
	return nil
}
