package mux

import (
	"errors"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"seedcat/internal/catalog"
	"seedcat/internal/logging"
	"seedcat/internal/source"
)

var countPrinter = message.NewPrinter(language.English)

// MetaConsumer describes one category's interest in a metadata pass: its
// keyword filter and how many more products it may accept.
type MetaConsumer struct {
	Keywords []string
	Capacity int
}

// MetaResult is the outcome of one metadata pass.
type MetaResult struct {
	PerCategory map[string]*catalog.MetaSet
	Scanned     int
}

// CollectMeta streams one metadata collection once, collecting products for
// every consumer.
//
// Records missing a title, a usable price, or a parent ASIN are skipped before
// any consumer is tested: validity is a property of the record, applied
// globally, not per category. A matching record is inserted for each consumer
// that is not yet full and does not already hold its key. The pass ends early
// the moment every consumer is full, so the records read are bounded by the
// scarcest-matching consumer rather than by collection size.
func CollectMeta(stream source.Stream, consumers map[string]MetaConsumer, logger *slog.Logger, sampler *logging.ScanSampler) (MetaResult, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	sampler.Reset()

	result := MetaResult{PerCategory: make(map[string]*catalog.MetaSet, len(consumers))}
	full := make(map[string]struct{}, len(consumers))
	for name, consumer := range consumers {
		result.PerCategory[name] = catalog.NewMetaSet()
		if consumer.Capacity <= 0 {
			full[name] = struct{}{}
		}
	}
	if len(full) >= len(consumers) {
		return result, nil
	}

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
				"collected", collectedTotal(result.PerCategory))
		}

		title := record.String("title")
		if strings.TrimSpace(title) == "" {
			continue
		}
		if _, usable := catalog.ParsePrice(record.String("price")); !usable {
			continue
		}
		key := record.String("parent_asin")
		if key == "" {
			continue
		}

		categoryPath := strings.Join(record.Strings("categories"), " ")
		for name, consumer := range consumers {
			if _, done := full[name]; done {
				continue
			}
			collected := result.PerCategory[name]
			if collected.Has(key) {
				continue
			}
			if !catalog.MatchesKeywords(title, categoryPath, consumer.Keywords) {
				continue
			}
			collected.Set(key, record)
			if collected.Len() >= consumer.Capacity {
				full[name] = struct{}{}
			}
		}

		if len(full) >= len(consumers) {
			break
		}
	}

	logger.Info("metadata pass complete",
		"scanned", countPrinter.Sprintf("%d", result.Scanned),
		"collected", collectedTotal(result.PerCategory),
		"categories", len(consumers))
	return result, nil
}

func collectedTotal(perCategory map[string]*catalog.MetaSet) int {
	total := 0
	for _, set := range perCategory {
		total += set.Len()
	}
	return total
}
