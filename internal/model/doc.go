// Package model defines the domain types shared across the chronolog
// storage layer: entity identifiers, immutable version snapshots,
// time and tag events, and the derived interval shape.
//
// Two canonical orderings underpin every derivation and must never be
// weakened:
//
//   - Version rows order by (effective_at, version, id). The maximal
//     row under this order is the entity's current state. The version
//     and id tie-breaks make "current" deterministic when multiple
//     versions share an effective_at (bulk backfills).
//   - Event rows order by (at, id). The id tie-break makes pairing and
//     tag resolution deterministic for same-timestamp events.
//
// All timestamps are stored as RFC 3339 UTC strings at whole-second
// precision (TimestampFormat) so SQL string ordering and Go time
// ordering coincide.
package model
