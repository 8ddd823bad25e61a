// =============================================================================
// ligaconv - Spreadsheet Export
// =============================================================================
//
// This module writes the tracked session to an XLSX workbook for review.
//
// WORKBOOK STRUCTURE:
//
//   Sheet "Files"
//   | ID                 | Name    | Included | Records |
//   |--------------------|---------|----------|---------|
//   | a.csv-1718...-120  | a.csv   | yes      | 3       |
//
//   Sheet "Records"
//   | File  | Row | Quantidade | Card (EN) | Edicao (Sigla) | Extras | Included | Line |
//
// The Line column holds the converted text of the row under the current
// options, so the sheet can be compared against the rendered output.
//
// =============================================================================

package spreadsheet

import (
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
	"gitlab.com/tozd/go/errors"

	"github.com/ginjaninja78/ligaconv/internal/converter"
	"github.com/ginjaninja78/ligaconv/internal/types"
)

// Sheet names.
const (
	SheetFiles   = "Files"
	SheetRecords = "Records"
)

// FilesHeader and RecordsHeader are the first rows of each sheet.
var (
	FilesHeader   = []string{"ID", "Name", "Included", "Records"}
	RecordsHeader = []string{"File", "Row", types.FieldQuantity, types.FieldCardName, types.FieldEdition, types.FieldExtras, "Included", "Line"}
)

// Export writes files and their records to a new workbook at path.
//
// PARAMETERS:
//   - path: Destination .xlsx path. Parent directories are created.
//   - files: The tracked files in list order.
//   - options: Used to render the Line column.
//
// RETURNS:
//   - An error if the workbook cannot be built or saved.
func Export(path string, files []types.FileEntry, options types.ConversionOptions) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetFiles); err != nil {
		return errors.Errorf("failed to name sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetRecords); err != nil {
		return errors.Errorf("failed to create sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return errors.Errorf("failed to create header style: %w", err)
	}

	if err := writeHeader(f, SheetFiles, FilesHeader, headerStyle); err != nil {
		return err
	}
	if err := writeHeader(f, SheetRecords, RecordsHeader, headerStyle); err != nil {
		return err
	}

	recordRow := 2
	for i, file := range files {
		if err := writeRow(f, SheetFiles, i+2, []interface{}{
			file.ID,
			file.Name,
			yesNo(file.Included),
			len(file.Records),
		}); err != nil {
			return err
		}

		for j, record := range file.Records {
			extras, _ := record.Extras()
			if err := writeRow(f, SheetRecords, recordRow, []interface{}{
				file.Name,
				j + 1,
				record.Quantity(),
				record.CardName(),
				record.Edition(),
				extras,
				yesNo(file.Included),
				converter.RenderLine(record, options),
			}); err != nil {
				return err
			}
			recordRow++
		}
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return errors.Errorf("failed to save workbook: %w", err)
	}

	return nil
}

func writeHeader(f *excelize.File, sheet string, header []string, style int) error {
	cells := make([]interface{}, len(header))
	for i, h := range header {
		cells[i] = h
	}
	if err := writeRow(f, sheet, 1, cells); err != nil {
		return err
	}

	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return errors.Errorf("failed to address header: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return errors.Errorf("failed to style header: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, cells []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return errors.Errorf("failed to address row %d: %w", row, err)
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return errors.Errorf("failed to write row %d of %s: %w", row, sheet, err)
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
