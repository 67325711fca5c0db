package domain

import (
	"context"
	"strings"

	"github.com/smallbiznis/churnlytics/pkg/apperror"
)

type WriteMode string

const (
	ModeAppend  WriteMode = "append"
	ModeReplace WriteMode = "replace"
)

// ParseWriteMode accepts "append" (the default for an empty value) or
// "replace".
func ParseWriteMode(value string) (WriteMode, error) {
	switch WriteMode(strings.ToLower(strings.TrimSpace(value))) {
	case "", ModeAppend:
		return ModeAppend, nil
	case ModeReplace:
		return ModeReplace, nil
	default:
		return "", apperror.Validation("invalid mode %q: expected append or replace", value)
	}
}

// Table selects which tables a snapshot loads.
type Table uint8

const (
	TableMembers Table = 1 << iota
	TableCheckins
	TableSales
	TableLeads

	AllTables = TableMembers | TableCheckins | TableSales | TableLeads
)

type Counts struct {
	Members  int64 `json:"members"`
	Checkins int64 `json:"checkins"`
	Sales    int64 `json:"sales"`
	Leads    int64 `json:"leads"`
}

func (c Counts) Empty() bool {
	return c.Members == 0 && c.Checkins == 0 && c.Sales == 0 && c.Leads == 0
}

// Reader is the read-only query surface the metrics engine depends on.
type Reader interface {
	Members(ctx context.Context) ([]Member, error)
	Checkins(ctx context.Context) ([]Checkin, error)
	Sales(ctx context.Context) ([]Sale, error)
	Leads(ctx context.Context) ([]Lead, error)
	Counts(ctx context.Context) (Counts, error)
}

// Writer applies imported rows. Replace mode swaps the whole table
// atomically.
type Writer interface {
	WriteMembers(ctx context.Context, rows []Member, mode WriteMode) error
	WriteCheckins(ctx context.Context, rows []Checkin, mode WriteMode) error
	WriteSales(ctx context.Context, rows []Sale, mode WriteMode) error
	WriteLeads(ctx context.Context, rows []Lead, mode WriteMode) error
	RecordImport(ctx context.Context, batch *ImportBatch) error
	ListImports(ctx context.Context, limit int) ([]ImportBatch, error)
}

type Repository interface {
	Reader
	Writer
}
