// Package table provides the in-memory tabular model shared by the loader,
// the cleaning and aggregation routines, the exporters and the charts.
//
// A Table is an ordered list of named columns over a shared row index. Each
// column is homogeneous: Text columns hold labels (an empty string is a
// missing label) and Numeric columns hold float64 values where NaN marks a
// missing cell.
//
// Year columns are numeric columns whose names are digit tokens such as
// "2019" or "2019.0". They are discovered with YearColumns, or filtered from
// a declared list with DeclaredYears.
package table
