package table

import "strings"

// IsYearName reports whether a column name denotes a year: after removing a
// single optional decimal point it must be a non-empty run of ASCII digits.
// "2019" and "2019.0" qualify; "FY2019", "2019-20" and "" do not.
func IsYearName(name string) bool {
	s := strings.Replace(name, ".", "", 1)
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// YearColumns returns the names of numeric columns whose names denote years,
// in table order. Text columns are never year columns since they cannot be
// summed.
func (t *Table) YearColumns() []string {
	var years []string
	for _, col := range t.columns {
		if col.Kind == Numeric && IsYearName(col.Name) {
			years = append(years, col.Name)
		}
	}
	return years
}

// DeclaredYears filters a declared list of year identifiers down to the ones
// present in the table as numeric columns, preserving the declared order.
func (t *Table) DeclaredYears(declared []string) []string {
	var years []string
	for _, name := range declared {
		if col, ok := t.Column(name); ok && col.Kind == Numeric {
			years = append(years, name)
		}
	}
	return years
}
