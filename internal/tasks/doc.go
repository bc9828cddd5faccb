// Package tasks orchestrates bulk catalog operations with real-time progress reporting.
//
// # Core Operations
//
// [CatalogEngine.Warm] refreshes the cached chapter lists of many titles:
//   - Resolves each slug or id to a title (metadata is cached on the way)
//   - Fetches the full chapter list and stores it
//   - Builds the navigation sequence to report chapter count, latest chapter and translation groups
//
// Titles are scheduled through a [rate.Limiter] and processed by a bounded worker pool.
// Failures are collected per title; one bad title never aborts the run.
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
//
// # Implementation
//
// [CatalogEngine] depends on a [WarmSource], normally repositories.CachedCatalog.
package tasks
