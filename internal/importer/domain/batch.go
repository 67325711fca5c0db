package domain

// Source is the kind of file a batch was read from.
type Source string

const (
	SourceCSV         Source = "csv"
	SourceSpreadsheet Source = "spreadsheet"
)

// Batch is a parsed tabular upload: trimmed header names and string cells,
// every row padded to the header width.
type Batch struct {
	Columns []string
	Rows    [][]string
	// Source decides whether numeric date cells are spreadsheet serials.
	Source Source
}

// Index returns the position of column name, or -1.
func (b Batch) Index(name string) int {
	for i, col := range b.Columns {
		if col == name {
			return i
		}
	}
	return -1
}

func (b Batch) Has(name string) bool {
	return b.Index(name) >= 0
}

// Cell returns the value of column name in row, or "" when the column is
// absent.
func (b Batch) Cell(row []string, name string) string {
	idx := b.Index(name)
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// WithColumn returns a copy of the batch with an extra column whose cells are
// produced by fill. The receiver is left untouched.
func (b Batch) WithColumn(name string, fill func(row []string) string) Batch {
	out := Batch{
		Columns: append(append(make([]string, 0, len(b.Columns)+1), b.Columns...), name),
		Rows:    make([][]string, len(b.Rows)),
		Source:  b.Source,
	}
	for i, row := range b.Rows {
		next := make([]string, 0, len(row)+1)
		next = append(next, row...)
		out.Rows[i] = append(next, fill(row))
	}
	return out
}

// Copy duplicates column from into a new column to.
func (b Batch) Copy(from, to string) Batch {
	idx := b.Index(from)
	return b.WithColumn(to, func(row []string) string {
		if idx < 0 || idx >= len(row) {
			return ""
		}
		return row[idx]
	})
}

// Constant appends a column holding the same value in every row.
func (b Batch) Constant(name, value string) Batch {
	return b.WithColumn(name, func([]string) string { return value })
}

// RowNumber maps a zero-based data row index to its line in the source file,
// counting the header as line 1.
func RowNumber(i int) int {
	return i + 2
}
