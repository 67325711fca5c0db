package normalizer

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/smallbiznis/churnlytics/internal/importer/domain"
	"github.com/smallbiznis/churnlytics/pkg/apperror"
	"github.com/xuri/excelize/v2"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006 15:04:05",
	"01/02/2006",
	"1/2/2006",
	"01-02-06",
}

// row is one data record with typed accessors that report the offending
// line and column.
type row struct {
	batch domain.Batch
	cells []string
	line  int
}

func (r row) str(col string) string {
	return strings.TrimSpace(r.batch.Cell(r.cells, col))
}

func (r row) invalid(col, kind, value string) error {
	return apperror.Validation("row %d: column %q: invalid %s %q", r.line, col, kind, value)
}

func (r row) required(col string) (string, error) {
	value := r.str(col)
	if value == "" {
		return "", apperror.Validation("row %d: column %q is required", r.line, col)
	}
	return value, nil
}

func (r row) date(col string) (*time.Time, error) {
	value := r.str(col)
	if value == "" {
		return nil, nil
	}
	parsed, ok := parseDate(value, r.batch.Source == domain.SourceSpreadsheet)
	if !ok {
		return nil, r.invalid(col, "date", value)
	}
	return &parsed, nil
}

func (r row) requiredDate(col string) (time.Time, error) {
	if _, err := r.required(col); err != nil {
		return time.Time{}, err
	}
	parsed, err := r.date(col)
	if err != nil {
		return time.Time{}, err
	}
	return *parsed, nil
}

func (r row) float(col string) (*float64, error) {
	value := r.str(col)
	if value == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return nil, r.invalid(col, "number", value)
	}
	return &parsed, nil
}

func (r row) integer(col string) (*int, error) {
	value := r.str(col)
	if value == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || parsed != math.Trunc(parsed) || math.IsInf(parsed, 0) {
		return nil, r.invalid(col, "integer", value)
	}
	out := int(parsed)
	return &out, nil
}

func (r row) optionalBool(col string) (*bool, error) {
	value := r.str(col)
	if value == "" {
		return nil, nil
	}
	parsed, ok := parseBool(value)
	if !ok {
		return nil, r.invalid(col, "boolean", value)
	}
	return &parsed, nil
}

// boolean falls back to def for an empty cell.
func (r row) boolean(col string, def bool) (bool, error) {
	parsed, err := r.optionalBool(col)
	if err != nil {
		return false, err
	}
	if parsed == nil {
		return def, nil
	}
	return *parsed, nil
}

// parseDate tries each layout in turn. Slash and dash dates are month
// first. A bare number is a date only when it is a serial read raw from a
// spreadsheet cell.
func parseDate(value string, serials bool) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC(), true
		}
	}
	if !serials {
		return time.Time{}, false
	}
	if serial, err := strconv.ParseFloat(value, 64); err == nil && serial > 0 {
		if parsed, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return parsed.UTC(), true
		}
	}
	return time.Time{}, false
}

func parseBool(value string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "1.0", "true", "t", "yes", "y":
		return true, true
	case "0", "0.0", "false", "f", "no", "n":
		return false, true
	default:
		return false, false
	}
}

func formatFee(fee float64) string {
	return strconv.FormatFloat(fee, 'f', -1, 64)
}
