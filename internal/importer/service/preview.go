package service

import (
	"strconv"

	"github.com/smallbiznis/churnlytics/internal/importer/domain"
)

const (
	dtypeInt    = "int64"
	dtypeFloat  = "float64"
	dtypeBool   = "bool"
	dtypeObject = "object"
)

func buildPreview(filename string, batch domain.Batch) domain.Preview {
	preview := domain.Preview{
		Filename:      filename,
		Rows:          len(batch.Rows),
		Columns:       len(batch.Columns),
		ColumnNames:   append([]string{}, batch.Columns...),
		SampleData:    make([]map[string]any, 0, min(len(batch.Rows), domain.SampleSize)),
		DataTypes:     make(map[string]string, len(batch.Columns)),
		MissingValues: make(map[string]int, len(batch.Columns)),
	}

	for j, col := range batch.Columns {
		missing := 0
		for _, row := range batch.Rows {
			if row[j] == "" {
				missing++
			}
		}
		preview.MissingValues[col] = missing
		preview.DataTypes[col] = inferType(batch.Rows, j, missing)
	}

	for i, row := range batch.Rows {
		if i == domain.SampleSize {
			break
		}
		record := make(map[string]any, len(batch.Columns))
		for j, col := range batch.Columns {
			record[col] = typedValue(row[j], preview.DataTypes[col])
		}
		preview.SampleData = append(preview.SampleData, record)
	}
	return preview
}

// inferType mirrors dataframe dtype inference: integer columns with gaps
// widen to float64, booleans with gaps become object, all-empty columns are
// float64.
func inferType(rows [][]string, col, missing int) string {
	if missing == len(rows) {
		return dtypeFloat
	}

	ints, floats, bools := true, true, true
	for _, row := range rows {
		value := row[col]
		if value == "" {
			continue
		}
		if ints {
			if _, err := strconv.ParseInt(value, 10, 64); err != nil {
				ints = false
			}
		}
		if floats {
			if _, err := strconv.ParseFloat(value, 64); err != nil {
				floats = false
			}
		}
		if bools {
			if _, ok := previewBool(value); !ok {
				bools = false
			}
		}
	}

	switch {
	case ints && missing == 0:
		return dtypeInt
	case ints || floats:
		return dtypeFloat
	case bools && missing == 0:
		return dtypeBool
	default:
		return dtypeObject
	}
}

func typedValue(value, dtype string) any {
	if value == "" {
		return nil
	}
	switch dtype {
	case dtypeInt:
		if v, err := strconv.ParseInt(value, 10, 64); err == nil {
			return v
		}
	case dtypeFloat:
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			return v
		}
	case dtypeBool:
		if v, ok := previewBool(value); ok {
			return v
		}
	}
	return value
}

func previewBool(value string) (bool, bool) {
	switch value {
	case "True", "TRUE", "true":
		return true, true
	case "False", "FALSE", "false":
		return false, true
	default:
		return false, false
	}
}
