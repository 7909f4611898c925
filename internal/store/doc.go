// Package store provides SQLite-backed append-only storage for
// chronolog's projects, tasks, and time tracking.
//
// The store holds six append-only tables (projects, project_versions,
// tasks, task_versions, time_entry_events, task_tag_events), a tags
// dictionary, and a schema_migrations marker. Rows are inserted and
// never updated or deleted; archiving an entity appends a new version
// with status = 'archived'.
//
// # Critical Patterns
//
// Dense version sequences
//   - UNIQUE(entity_id, version) constraint, versions 1..N with no gaps
//   - next version computed as max(version)+1 inside an immediate-lock
//     transaction, so read-then-insert is atomic across writers
//   - lost races (cross-process) retry with exponential backoff; an
//     exhausted budget surfaces CONFLICT, never a silent drop
//
// Deterministic query results
//   - version reads order by (effective_at, version, id)
//   - event reads order by (at, id)
//   - the view folds depend on these orders for their tie-breaks
//
// Write-time validation is minimal on purpose: the event log accepts
// any start/stop/annotate sequence and the correction engine repairs
// anomalies by appending synthetic rows at derivation time.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity
//   - _txlock=immediate: write transactions take the write lock up front
package store
