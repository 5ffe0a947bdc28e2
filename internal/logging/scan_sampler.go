package logging

// ScanSampler suppresses repetitive per-record progress logs while a streaming
// pass runs, emitting only when the scanned count crosses an interval boundary.
type ScanSampler struct {
	interval int
	lastEmit int
}

// NewScanSampler constructs a sampler that emits once per interval records
// (default 50,000).
func NewScanSampler(interval int) *ScanSampler {
	if interval <= 0 {
		interval = 50_000
	}
	return &ScanSampler{interval: interval}
}

// ShouldLog reports whether progress at the given scanned count should be
// logged. A nil sampler never logs.
func (s *ScanSampler) ShouldLog(scanned int) bool {
	if s == nil {
		return false
	}
	if scanned-s.lastEmit < s.interval {
		return false
	}
	s.lastEmit = scanned - scanned%s.interval
	return true
}

// Reset clears the sampler state for a new pass.
func (s *ScanSampler) Reset() {
	if s == nil {
		return
	}
	s.lastEmit = 0
}
