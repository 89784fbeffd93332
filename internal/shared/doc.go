// Package shared holds helpers used across packages.
//
// The testutil subpackage provides sample datasets written into temp
// directories and a slog handler that captures records for assertions.
package shared
