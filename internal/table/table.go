package table

import (
	"fmt"
	"math"
	"strconv"
)

// Kind identifies the value type held by a column.
type Kind int

const (
	// Text columns hold labels. An empty string is a missing label.
	Text Kind = iota
	// Numeric columns hold float64 values. NaN marks a missing cell.
	Numeric
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case Text:
		return "text"
	case Numeric:
		return "numeric"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Column is a named, homogeneous sequence of values.
type Column struct {
	Name   string
	Kind   Kind
	Labels []string
	Values []float64
}

// NewTextColumn creates a text column. The slice is copied.
func NewTextColumn(name string, labels []string) *Column {
	return &Column{
		Name:   name,
		Kind:   Text,
		Labels: append([]string(nil), labels...),
	}
}

// NewNumericColumn creates a numeric column. The slice is copied.
func NewNumericColumn(name string, values []float64) *Column {
	return &Column{
		Name:   name,
		Kind:   Numeric,
		Values: append([]float64(nil), values...),
	}
}

// Len returns the number of cells in the column
func (c *Column) Len() int {
	if c.Kind == Numeric {
		return len(c.Values)
	}
	return len(c.Labels)
}

// IsNumeric reports whether the column holds numbers
func (c *Column) IsNumeric() bool {
	return c.Kind == Numeric
}

// IsMissing reports whether the cell at row i is missing
func (c *Column) IsMissing(i int) bool {
	if c.Kind == Numeric {
		return math.IsNaN(c.Values[i])
	}
	return c.Labels[i] == ""
}

// MissingCount returns the number of missing cells
func (c *Column) MissingCount() int {
	n := 0
	for i := 0; i < c.Len(); i++ {
		if c.IsMissing(i) {
			n++
		}
	}
	return n
}

// Sum adds every non-missing value. Text columns sum to zero.
func (c *Column) Sum() float64 {
	var total float64
	for _, v := range c.Values {
		if !math.IsNaN(v) {
			total += v
		}
	}
	return total
}

// Format renders the cell at row i the way it is written to delimited text:
// shortest round-trip for numbers, empty for missing cells.
func (c *Column) Format(i int) string {
	if c.Kind == Text {
		return c.Labels[i]
	}
	return FormatNumber(c.Values[i])
}

// Clone returns a deep copy of the column
func (c *Column) Clone() *Column {
	if c.Kind == Numeric {
		return NewNumericColumn(c.Name, c.Values)
	}
	return NewTextColumn(c.Name, c.Labels)
}

// pick returns a new column holding only the given rows, in order
func (c *Column) pick(rows []int) *Column {
	out := &Column{Name: c.Name, Kind: c.Kind}
	if c.Kind == Numeric {
		out.Values = make([]float64, len(rows))
		for i, r := range rows {
			out.Values[i] = c.Values[r]
		}
		return out
	}
	out.Labels = make([]string, len(rows))
	for i, r := range rows {
		out.Labels[i] = c.Labels[r]
	}
	return out
}

// FormatNumber renders a value for text output. NaN and infinities render empty.
func FormatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Table is an ordered set of named columns sharing a row index.
// Tables are treated as immutable by every operation in this module:
// transformations return a new Table.
type Table struct {
	columns []*Column
	index   map[string]int
	rows    int
}

// New builds a table from columns. Column names must be unique and every
// column must have the same length.
func New(columns ...*Column) (*Table, error) {
	t := &Table{
		columns: make([]*Column, 0, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	for i, col := range columns {
		if col == nil {
			return nil, fmt.Errorf("column %d is nil", i)
		}
		if _, dup := t.index[col.Name]; dup {
			return nil, fmt.Errorf("duplicate column %q", col.Name)
		}
		if i == 0 {
			t.rows = col.Len()
		} else if col.Len() != t.rows {
			return nil, fmt.Errorf("column %q has %d rows, expected %d", col.Name, col.Len(), t.rows)
		}
		t.index[col.Name] = i
		t.columns = append(t.columns, col)
	}
	return t, nil
}

// MustNew is like New but panics on error. Intended for tests and literals.
func MustNew(columns ...*Column) *Table {
	t, err := New(columns...)
	if err != nil {
		panic(err)
	}
	return t
}

// NumRows returns the row count
func (t *Table) NumRows() int {
	return t.rows
}

// NumCols returns the column count
func (t *Table) NumCols() int {
	return len(t.columns)
}

// Names returns the column names in order
func (t *Table) Names() []string {
	names := make([]string, len(t.columns))
	for i, col := range t.columns {
		names[i] = col.Name
	}
	return names
}

// Columns returns the columns in order. Callers must not modify them.
func (t *Table) Columns() []*Column {
	return t.columns
}

// Column looks up a column by exact name
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.columns[i], true
}

// Has reports whether a column with the exact name exists
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Clone returns a deep copy of the table
func (t *Table) Clone() *Table {
	cols := make([]*Column, len(t.columns))
	for i, col := range t.columns {
		cols[i] = col.Clone()
	}
	return MustNew(cols...)
}

// Filter returns a new table holding the rows for which keep returns true
func (t *Table) Filter(keep func(row int) bool) *Table {
	rows := make([]int, 0, t.rows)
	for r := 0; r < t.rows; r++ {
		if keep(r) {
			rows = append(rows, r)
		}
	}
	return t.Take(rows)
}

// Take returns a new table holding the given rows, in the given order
func (t *Table) Take(rows []int) *Table {
	cols := make([]*Column, len(t.columns))
	for i, col := range t.columns {
		cols[i] = col.pick(rows)
	}
	out := MustNew(cols...)
	out.rows = len(rows)
	return out
}

// Head returns the first n rows
func (t *Table) Head(n int) *Table {
	if n > t.rows {
		n = t.rows
	}
	if n < 0 {
		n = 0
	}
	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}
	return t.Take(rows)
}

// Select returns a new table with only the named columns, in the given order
func (t *Table) Select(names ...string) (*Table, error) {
	cols := make([]*Column, 0, len(names))
	for _, name := range names {
		col, ok := t.Column(name)
		if !ok {
			return nil, fmt.Errorf("column %q not found", name)
		}
		cols = append(cols, col.Clone())
	}
	out, err := New(cols...)
	if err != nil {
		return nil, err
	}
	out.rows = t.rows
	return out, nil
}

// WithColumn returns a new table with col appended, or replacing the column
// of the same name in place.
func (t *Table) WithColumn(col *Column) (*Table, error) {
	if col.Len() != t.rows && len(t.columns) > 0 {
		return nil, fmt.Errorf("column %q has %d rows, expected %d", col.Name, col.Len(), t.rows)
	}
	cols := make([]*Column, 0, len(t.columns)+1)
	replaced := false
	for _, existing := range t.columns {
		if existing.Name == col.Name {
			cols = append(cols, col)
			replaced = true
			continue
		}
		cols = append(cols, existing.Clone())
	}
	if !replaced {
		cols = append(cols, col)
	}
	return New(cols...)
}

// Records renders the table as a header row followed by data rows
func (t *Table) Records() [][]string {
	records := make([][]string, 0, t.rows+1)
	records = append(records, t.Names())
	for r := 0; r < t.rows; r++ {
		row := make([]string, len(t.columns))
		for i, col := range t.columns {
			row[i] = col.Format(r)
		}
		records = append(records, row)
	}
	return records
}

// Equal reports whether two tables have the same columns, kinds and cells.
// Missing numeric cells compare equal to each other.
func (t *Table) Equal(other *Table) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.rows != other.rows || len(t.columns) != len(other.columns) {
		return false
	}
	for i, a := range t.columns {
		b := other.columns[i]
		if a.Name != b.Name || a.Kind != b.Kind {
			return false
		}
		for r := 0; r < t.rows; r++ {
			if a.Kind == Text {
				if a.Labels[r] != b.Labels[r] {
					return false
				}
				continue
			}
			av, bv := a.Values[r], b.Values[r]
			if math.IsNaN(av) && math.IsNaN(bv) {
				continue
			}
			if av != bv {
				return false
			}
		}
	}
	return true
}
