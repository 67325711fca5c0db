// Package parser reads uploaded csv and spreadsheet files into a Batch.
package parser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/smallbiznis/churnlytics/internal/importer/domain"
	"github.com/smallbiznis/churnlytics/pkg/apperror"
	"github.com/xuri/excelize/v2"
)

var allowedExtensions = map[string]struct{}{
	"csv":  {},
	"xlsx": {},
	"xls":  {},
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Extension returns the lower-cased extension of filename without the dot.
func Extension(filename string) string {
	ext := filepath.Ext(strings.TrimSpace(filename))
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// AllowedFile reports whether filename carries a supported extension.
func AllowedFile(filename string) bool {
	_, ok := allowedExtensions[Extension(filename)]
	return ok
}

// Parse reads r according to the extension of filename.
func Parse(filename string, r io.Reader) (domain.Batch, error) {
	switch Extension(filename) {
	case "csv":
		return parseCSV(r)
	case "xlsx", "xls":
		return parseSpreadsheet(r)
	default:
		return domain.Batch{}, apperror.Validation("Invalid file type")
	}
}

func parseCSV(r io.Reader) (domain.Batch, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return domain.Batch{}, apperror.Processing("read csv", err)
	}
	raw = bytes.TrimPrefix(raw, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			return domain.Batch{}, apperror.Validation("malformed csv at line %d: %v", parseErr.Line, parseErr.Err)
		}
		return domain.Batch{}, apperror.Processing("read csv", err)
	}
	return build(records, domain.SourceCSV)
}

func parseSpreadsheet(r io.Reader) (domain.Batch, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return domain.Batch{}, apperror.Processing("open spreadsheet", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return domain.Batch{}, apperror.Validation("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return domain.Batch{}, apperror.Processing("read spreadsheet", err)
	}
	return build(rows, domain.SourceSpreadsheet)
}

// build turns raw records into a Batch: the first non-blank record is the
// header, blank records are dropped and short records padded.
func build(records [][]string, source domain.Source) (domain.Batch, error) {
	for len(records) > 0 && blank(records[0]) {
		records = records[1:]
	}
	if len(records) == 0 {
		return domain.Batch{}, apperror.Validation("file has no header row")
	}

	header := records[0]
	for len(header) > 0 && strings.TrimSpace(header[len(header)-1]) == "" {
		header = header[:len(header)-1]
	}

	columns := make([]string, len(header))
	seen := make(map[string]struct{}, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			return domain.Batch{}, apperror.Validation("column %d has an empty header", i+1)
		}
		if _, dup := seen[name]; dup {
			return domain.Batch{}, apperror.Validation("duplicate column %q", name)
		}
		seen[name] = struct{}{}
		columns[i] = name
	}

	rows := make([][]string, 0, len(records)-1)
	for i, record := range records[1:] {
		if blank(record) {
			continue
		}
		if len(record) > len(columns) && !blank(record[len(columns):]) {
			return domain.Batch{}, apperror.Validation("row %d has %d fields, expected %d", domain.RowNumber(i), len(record), len(columns))
		}
		row := make([]string, len(columns))
		for j := range columns {
			if j < len(record) {
				row[j] = strings.TrimSpace(record[j])
			}
		}
		rows = append(rows, row)
	}

	return domain.Batch{Columns: columns, Rows: rows, Source: source}, nil
}

func blank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
