package domain

import (
	"context"
	"io"

	dataset "github.com/smallbiznis/churnlytics/internal/dataset/domain"
)

const (
	EntityMembers  = "members"
	EntityCheckins = "checkins"
	EntitySales    = "sales"
	EntityLeads    = "leads"
)

// SampleSize is the number of leading rows echoed back by Preview.
const SampleSize = 10

type Preview struct {
	Filename      string            `json:"filename"`
	Rows          int               `json:"rows"`
	Columns       int               `json:"columns"`
	ColumnNames   []string          `json:"column_names"`
	SampleData    []map[string]any  `json:"sample_data"`
	DataTypes     map[string]string `json:"data_types"`
	MissingValues map[string]int    `json:"missing_values"`
}

type Result struct {
	Success      bool              `json:"success"`
	Message      string            `json:"message"`
	RowsImported int               `json:"rows_imported"`
	Mode         dataset.WriteMode `json:"mode"`
}

type Service interface {
	Preview(ctx context.Context, filename string, r io.Reader) (Preview, error)
	ImportMembers(ctx context.Context, filename string, r io.Reader, mode string) (Result, error)
	ImportCheckins(ctx context.Context, filename string, r io.Reader, mode string) (Result, error)
	History(ctx context.Context, limit int) ([]dataset.ImportBatch, error)
}
