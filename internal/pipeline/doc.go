// Package pipeline orchestrates an ingest run end to end.
//
// It builds the per-phase source indices that guarantee each unique collection
// path is streamed at most once, sequences the metadata pass, the review pass,
// and the transform/join stage, and persists the resulting catalog plus a run
// record in the ledger. Everything runs sequentially on the calling goroutine;
// the only early exits are the per-category capacity and the review scan
// ceiling, both checked cooperatively between records.
package pipeline
