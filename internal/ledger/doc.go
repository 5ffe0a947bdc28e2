// Package ledger persists a history of ingest runs in SQLite.
//
// Each run records its parameters, scan totals, per-category counts, and the
// catalog path it produced, giving `seedcat runs` something to show and making
// regressions in collection counts visible across dataset refreshes.
package ledger
