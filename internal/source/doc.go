// Package source reads external record collections as lazy, finite,
// non-restartable streams of field mappings.
//
// Two formats are supported: line-delimited JSON (optionally gzip-compressed)
// and parquet. A Descriptor identifies one collection by format and path
// pattern; patterns may contain globs so partitioned collections
// (full-00000.parquet, full-00001.parquet, ...) read as a single stream.
// Descriptors with equal paths identify the same collection — callers use the
// path as the deduplication key to guarantee each collection is streamed at
// most once per phase.
package source
