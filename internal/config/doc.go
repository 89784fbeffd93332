// Package config provides centralized configuration management for the
// accident statistics toolkit.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. YAML configuration file (config.yaml, configs/config.yaml, or --config)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern ACCIDENTS_<SECTION>_<KEY>:
//
//	ACCIDENTS_PATHS_DATA_DIR=/srv/stats/data
//	ACCIDENTS_ANALYSIS_TOP_N=5
//	ACCIDENTS_ANALYSIS_YEARS=2019,2020,2021,2022,2023
//	ACCIDENTS_LOGGING_LEVEL=debug
//	ACCIDENTS_TELEMETRY_ENABLE_TRACING=true
//
// # Paths
//
// Paths resolves every input and output location from the configured
// directories. Input tables live under data/, Tableau exports under
// tableau/ and chart images under visualizations/, all relative to the
// base directory unless configured as absolute paths.
//
// # Datasets
//
// The dataset catalogue (Datasets, LookupDataset) names the six input tables
// and their conventional file names. State accidents and state fatalities
// are required by the pipeline; the other four are optional.
package config
