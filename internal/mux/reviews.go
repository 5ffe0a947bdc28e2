package mux

import (
	"errors"
	"io"
	"log/slog"
	"sort"

	"seedcat/internal/logging"
	"seedcat/internal/source"
)

// ReviewResult is the outcome of one review pass. Every key in PerKey holds at
// least one review and at most the requested cap, sorted best-first.
type ReviewResult struct {
	PerKey    map[string][]source.Record
	Scanned   int
	Satisfied int
}

// CollectReviews streams one review collection once, gathering up to
// perProduct reviews for each requested key.
//
// The pass stops when every requested key is satisfied or when maxScan records
// have been read, whichever comes first; the ceiling holds even if nothing was
// satisfied. A non-positive maxScan means the stream is never read. After the
// pass, each key's candidates are ordered by (verified purchase, helpful
// votes) descending and truncated to the cap.
func CollectReviews(stream source.Stream, needed map[string]struct{}, perProduct, maxScan int, logger *slog.Logger, sampler *logging.ScanSampler) (ReviewResult, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	sampler.Reset()

	result := ReviewResult{PerKey: make(map[string][]source.Record)}
	if len(needed) == 0 || maxScan <= 0 || perProduct <= 0 {
		return result, nil
	}

	satisfied := make(map[string]struct{}, len(needed))
	for {
		record, err := stream.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return result, err
		}
		result.Scanned++

		if sampler.ShouldLog(result.Scanned) {
			logger.Info("scan progress",
				"scanned", countPrinter.Sprintf("%d", result.Scanned),
				"satisfied", len(satisfied),
				"requested", len(needed))
		}

		key := record.String("parent_asin")
		if _, wanted := needed[key]; wanted {
			if _, done := satisfied[key]; !done {
				result.PerKey[key] = append(result.PerKey[key], record)
				if len(result.PerKey[key]) >= perProduct {
					satisfied[key] = struct{}{}
				}
			}
		}

		if len(satisfied) >= len(needed) {
			break
		}
		if result.Scanned >= maxScan {
			logger.Warn("scan ceiling reached",
				"max_scan", countPrinter.Sprintf("%d", maxScan),
				"satisfied", len(satisfied),
				"requested", len(needed))
			break
		}
	}

	for key := range result.PerKey {
		SortReviews(result.PerKey[key])
		if len(result.PerKey[key]) > perProduct {
			result.PerKey[key] = result.PerKey[key][:perProduct]
		}
	}
	result.Satisfied = len(satisfied)

	logger.Info("review pass complete",
		"scanned", countPrinter.Sprintf("%d", result.Scanned),
		"with_reviews", len(result.PerKey),
		"satisfied", result.Satisfied,
		"requested", len(needed))
	return result, nil
}

// SortReviews orders reviews best-first: verified purchases before unverified,
// then by helpful-vote count descending. Ties keep stream order.
func SortReviews(reviews []source.Record) {
	sort.SliceStable(reviews, func(i, j int) bool {
		vi, vj := reviews[i].Bool("verified_purchase"), reviews[j].Bool("verified_purchase")
		if vi != vj {
			return vi
		}
		return reviews[i].Int("helpful_vote") > reviews[j].Int("helpful_vote")
	})
}
