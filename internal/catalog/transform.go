package catalog

import (
	"fmt"
	"math"
	"strings"

	"seedcat/internal/source"
)

// BuildProducts joins a category's collected metadata with its collected
// reviews. Keys are enumerated in first-seen order starting at 1; the index
// advances for every collected key, so ids stay aligned with collection order
// even when review-less products are dropped.
func BuildProducts(category, slug string, metas *MetaSet, reviews map[string][]source.Record) []Product {
	var products []Product
	for idx, key := range metas.Keys() {
		revs := reviews[key]
		if len(revs) == 0 {
			continue
		}
		meta, _ := metas.Get(key)
		products = append(products, buildProduct(category, slug, idx+1, meta, revs))
	}
	return products
}

func buildProduct(category, slug string, idx int, meta source.Record, reviews []source.Record) Product {
	price, ok := ParsePrice(meta.String("price"))
	var basePrice *float64
	if ok {
		basePrice = &price
	}

	rating, _ := meta.Float("average_rating")

	built := make([]Review, 0, len(reviews))
	for _, review := range reviews {
		helpful, _ := review.Float("helpful_vote")
		reviewRating, _ := review.Float("rating")
		built = append(built, Review{
			Rating:       reviewRating,
			Title:        review.String("title"),
			Text:         review.String("text"),
			Verified:     review.Bool("verified_purchase"),
			HelpfulVotes: int(helpful),
		})
	}

	return Product{
		ID:          fmt.Sprintf("prod_%s_%03d", slug, idx),
		ParentASIN:  meta.String("parent_asin"),
		Category:    category,
		Title:       meta.String("title"),
		Description: joinDescription(meta.Strings("description")),
		BasePrice:   basePrice,
		Rating:      math.Round(rating*10) / 10,
		ReviewCount: meta.Int("rating_number"),
		Features:    cleanFeatures(meta.Strings("features")),
		Reviews:     built,
		Store:       meta.String("store"),
		Tags:        []string{},
	}
}

// joinDescription merges description fragments into one multi-line text,
// dropping empty fragments.
func joinDescription(fragments []string) string {
	kept := make([]string, 0, len(fragments))
	for _, fragment := range fragments {
		if fragment == "" {
			continue
		}
		kept = append(kept, fragment)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

// cleanFeatures trims feature entries and drops blank ones.
func cleanFeatures(features []string) []string {
	kept := make([]string, 0, len(features))
	for _, feature := range features {
		trimmed := strings.TrimSpace(feature)
		if trimmed == "" {
			continue
		}
		kept = append(kept, trimmed)
	}
	return kept
}
