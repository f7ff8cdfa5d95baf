package cards

import "time"

// RowRecord represents one imported spreadsheet row as column-name → value pairs.
// Every record in a dataset carries the same key set; absent cells are "".
type RowRecord map[string]string

// Dataset is the full ordered sequence of rows from one import or one load.
// Columns holds the column names in their original discovery order (the keys
// of the first row, taken from the header row). A Dataset is replaced
// wholesale, never partially updated.
type Dataset struct {
	Columns []string    `json:"columns"`
	Rows    []RowRecord `json:"rows"`
}

// FieldSelection is the user-confirmed ordered subset of columns that cards
// display and that "search all" covers. Non-empty when persisted.
type FieldSelection []string

// PersistenceRecord is the triple the durable store holds: dataset, field
// selection and the expiry timestamp computed at save time.
type PersistenceRecord struct {
	Dataset   Dataset        `json:"dataset"`
	Fields    FieldSelection `json:"fields"`
	ExpiresAt time.Time      `json:"expires_at"`
}

// ScopeAll is the search scope meaning "match against every selected field".
// Any other scope value names a single column to match against.
const ScopeAll = "all"

// RowCount returns the number of data rows.
func (d Dataset) RowCount() int {
	return len(d.Rows)
}

// Empty reports whether the dataset holds no rows.
func (d Dataset) Empty() bool {
	return len(d.Rows) == 0
}

// HasColumn reports whether name is one of the dataset's columns.
func (d Dataset) HasColumn(name string) bool {
	for _, c := range d.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Value returns the cell value for column, defaulting absent cells to "".
func (r RowRecord) Value(column string) string {
	return r[column]
}

// Contains reports whether the selection includes the named column.
func (f FieldSelection) Contains(name string) bool {
	for _, c := range f {
		if c == name {
			return true
		}
	}
	return false
}
