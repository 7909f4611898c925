// Package view derives current state from the append-only row streams:
// current entity versions, time intervals, current tag sets, and the
// anomaly scan shared with the correction engine.
//
// Everything here is a pure, single-threaded fold over rows in
// canonical order. The folds never write; the same input always yields
// the same output regardless of the order rows were inserted, because
// each fold first imposes the canonical order:
//
//   - versions: (effective_at, version, id), maximal row wins
//   - events:   (at, id)
//
// These tie-breaks replace the window-function views of a SQL engine
// (MAX, LEAD, ROW_NUMBER) with explicit ordered iteration and are
// correctness-critical: weakening them makes "current state" depend on
// evaluation order.
package view
