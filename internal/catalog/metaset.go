package catalog

import "seedcat/internal/source"

// MetaSet is a collection of raw metadata records keyed by parent ASIN,
// preserving first-seen order. The metadata pass populates it monotonically;
// after the pass it is only read.
type MetaSet struct {
	keys  []string
	items map[string]source.Record
}

// NewMetaSet returns an empty set.
func NewMetaSet() *MetaSet {
	return &MetaSet{items: make(map[string]source.Record)}
}

// Set stores a record under key. A key keeps its original position when set
// again; only the record value is replaced.
func (m *MetaSet) Set(key string, record source.Record) {
	if _, exists := m.items[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.items[key] = record
}

// Has reports whether key is present.
func (m *MetaSet) Has(key string) bool {
	_, ok := m.items[key]
	return ok
}

// Get returns the record stored under key.
func (m *MetaSet) Get(key string) (source.Record, bool) {
	record, ok := m.items[key]
	return record, ok
}

// Len returns the number of stored records.
func (m *MetaSet) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the stored keys in first-seen order.
func (m *MetaSet) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}
