// Package tracking exposes the storage layer's operation contracts to
// the application layer: entity create/update/archive (all modeled as
// appended versions), timer start/stop/annotate, manual entries,
// interval and duration queries, and tag operations.
//
// The start path carries the one write-time correction: starting a
// task while any interval is still open first appends a synthetic
// implicit_stop closing it, then records the new start. Corrections
// are reported in the result and logged, never raised as errors.
package tracking
