// Package errors defines the typed application errors returned by the loader,
// exporters and chart renderer.
//
// Hard failures (a missing input file, malformed tabular text, an unwritable
// output directory) surface as *AppError values with a Type that callers can
// branch on via IsType or IsNotFound. Expected "no result" cases, such as a
// table without a State/UT column, are not errors at all: the aggregation
// routines return sentinel values instead.
package errors
