// Package workbook renders tabular sheets into an xlsx file.
package workbook

import (
	"github.com/smallbiznis/churnlytics/pkg/apperror"
	"github.com/xuri/excelize/v2"
)

const defaultColumnWidth = 18

// Sheet is one worksheet: a header row followed by data rows. Nil cells are
// written empty.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]any
}

// Render writes sheets in order; the first sheet is the active one.
func Render(sheets ...Sheet) ([]byte, error) {
	if len(sheets) == 0 {
		return nil, apperror.Validation("workbook needs at least one sheet")
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, apperror.Processing("render workbook", err)
	}

	for i, sheet := range sheets {
		if err := writeSheet(f, i, sheet, headerStyle); err != nil {
			return nil, apperror.Processing("render sheet "+sheet.Name, err)
		}
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, apperror.Processing("render workbook", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, index int, sheet Sheet, headerStyle int) error {
	if index == 0 {
		if err := f.SetSheetName(f.GetSheetName(0), sheet.Name); err != nil {
			return err
		}
	} else if _, err := f.NewSheet(sheet.Name); err != nil {
		return err
	}

	header := make([]any, len(sheet.Header))
	for i, name := range sheet.Header {
		header[i] = name
	}
	if err := f.SetSheetRow(sheet.Name, "A1", &header); err != nil {
		return err
	}
	if len(sheet.Header) > 0 {
		if err := f.SetRowStyle(sheet.Name, 1, 1, headerStyle); err != nil {
			return err
		}
		last, err := excelize.ColumnNumberToName(len(sheet.Header))
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet.Name, "A", last, defaultColumnWidth); err != nil {
			return err
		}
	}

	for i, row := range sheet.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := row
		if err := f.SetSheetRow(sheet.Name, cell, &values); err != nil {
			return err
		}
	}
	return nil
}
