// Package pipeline wires the loader, cleaner, aggregator, exporters and
// chart renderer into one sequential run.
//
// Stages run in a fixed order (load, clean, analyze, export, charts). A run
// can target a subset of stages; their dependencies are pulled in
// automatically. Each stage runs inside its own trace span and is timed, and
// every file a stage writes is checksummed (BLAKE2b-256) into a RunManifest
// saved next to the exports.
package pipeline
