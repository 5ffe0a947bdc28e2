package source

import (
	"fmt"
	"path"
	"path/filepath"
	"sort"
)

// Format identifies how a collection's bytes decode into records.
type Format string

const (
	FormatParquet Format = "parquet"
	FormatJSONL   Format = "jsonl"
)

// Descriptor identifies one external record collection. Path may be a glob
// pattern and is resolved relative to the data directory unless absolute.
// Two descriptors identify the same collection iff their paths are equal.
type Descriptor struct {
	Format Format
	Path   string
}

// Label returns a short name for log output.
func (d Descriptor) Label() string {
	return path.Base(filepath.ToSlash(d.Path))
}

// Stream yields records one at a time. Next returns io.EOF once the stream is
// exhausted; a stream cannot be restarted.
type Stream interface {
	Next() (Record, error)
	Close() error
}

// Open resolves a descriptor against the data directory and opens its stream.
// Glob matches are read in lexical order as one continuous stream.
func Open(desc Descriptor, dataDir string) (Stream, error) {
	pattern := desc.Path
	if !filepath.IsAbs(pattern) {
		pattern = filepath.Join(dataDir, pattern)
	}

	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("source %s: bad path pattern: %w", desc.Label(), err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("source %s: no files match %s", desc.Label(), pattern)
	}
	sort.Strings(matches)

	switch desc.Format {
	case FormatJSONL:
		return newJSONLStream(matches), nil
	case FormatParquet:
		return newParquetStream(matches), nil
	default:
		return nil, fmt.Errorf("source %s: unsupported format %q", desc.Label(), desc.Format)
	}
}
