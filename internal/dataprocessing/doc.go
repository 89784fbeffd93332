// Package dataprocessing loads the road accident tables and computes the
// aggregates used by the exports and charts.
//
// # Architecture
//
// The package is organized into three main components:
//
// 1. Loader: reads CSV (or XLSX) files into a table.Table with inferred column types
// 2. Cleaner: drops aggregate rows and zero-fills missing numbers
// 3. Aggregator: yearly totals, top-N ranking and growth rates
//
// # Usage
//
//	loader := dataprocessing.NewLoader(paths, logger)
//	accidents, err := loader.LoadStateAccidents(ctx, "")
//	if err != nil {
//	    return err
//	}
//	cleaned := dataprocessing.CleanStateData(accidents)
//	stats := dataprocessing.GetAccidentStats(cleaned)
//	top, ok := dataprocessing.GetTopStates(cleaned, stats.LatestYear, 10)
//
// # Data Flow
//
//	CSV File → Loader → Table → Cleaner → Table → Aggregator → Stats / Rankings
//
// # Error Handling
//
// Only the loader performs I/O and returns errors (*errors.AppError of type
// NOT_FOUND or PARSING). The aggregation functions report unmet column
// preconditions through sentinels: AccidentStats.OK() and a false second
// return value. Division by zero in growth rates yields NaN.
//
// None of the functions mutate their input table.
package dataprocessing
