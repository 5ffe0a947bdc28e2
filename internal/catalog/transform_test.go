package catalog_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"seedcat/internal/catalog"
	"seedcat/internal/source"
)

func TestMetaSetPreservesFirstSeenOrder(t *testing.T) {
	set := catalog.NewMetaSet()
	set.Set("B", source.Record{"title": "b1"})
	set.Set("A", source.Record{"title": "a"})
	set.Set("B", source.Record{"title": "b2"})

	keys := set.Keys()
	if len(keys) != 2 || keys[0] != "B" || keys[1] != "A" {
		t.Fatalf("unexpected key order: %v", keys)
	}
	rec, ok := set.Get("B")
	if !ok || rec.String("title") != "b2" {
		t.Fatalf("re-set should replace the value: %v", rec)
	}
}

func meta(title, price, asin string) source.Record {
	return source.Record{
		"title":          title,
		"price":          price,
		"parent_asin":    asin,
		"average_rating": 4.26,
		"rating_number":  float64(321),
		"description":    []any{"First line.", "", "Second line."},
		"features":       []any{" Feature A ", "   ", "Feature B"},
		"store":          "Acme",
	}
}

func review(rating float64, verified bool, helpful int) source.Record {
	return source.Record{
		"rating":            rating,
		"title":             "good",
		"text":              "works",
		"verified_purchase": verified,
		"helpful_vote":      float64(helpful),
	}
}

func TestBuildProductsDropsReviewlessAndKeepsIndices(t *testing.T) {
	metas := catalog.NewMetaSet()
	metas.Set("A1", meta("First", "10.00", "A1"))
	metas.Set("A2", meta("Second", "20.00", "A2"))
	metas.Set("A3", meta("Third", "30.00", "A3"))

	reviews := map[string][]source.Record{
		"A1": {review(5, true, 3)},
		"A3": {review(4, false, 1)},
	}

	products := catalog.BuildProducts("Gaming Mice", "gaming_mice", metas, reviews)
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}
	if products[0].ID != "prod_gaming_mice_001" {
		t.Fatalf("unexpected first id: %q", products[0].ID)
	}
	// A2 had no reviews; its slot still advances the enumeration.
	if products[1].ID != "prod_gaming_mice_003" {
		t.Fatalf("unexpected second id: %q", products[1].ID)
	}
	if products[0].ParentASIN != "A1" || products[1].ParentASIN != "A3" {
		t.Fatalf("unexpected join: %+v", products)
	}
}

func TestBuildProductFieldNormalization(t *testing.T) {
	metas := catalog.NewMetaSet()
	metas.Set("A1", meta("Widget", "$1,234.56", "A1"))

	reviews := map[string][]source.Record{
		"A1": {review(5, true, 9)},
	}

	products := catalog.BuildProducts("Toothbrushes", "toothbrushes", metas, reviews)
	if len(products) != 1 {
		t.Fatalf("expected 1 product, got %d", len(products))
	}
	p := products[0]

	if p.BasePrice == nil || *p.BasePrice != 1234.56 {
		t.Fatalf("unexpected base price: %v", p.BasePrice)
	}
	if p.Rating != 4.3 {
		t.Fatalf("rating should round to one decimal: %v", p.Rating)
	}
	if p.ReviewCount != 321 {
		t.Fatalf("unexpected review count: %d", p.ReviewCount)
	}
	if p.Description != "First line.\nSecond line." {
		t.Fatalf("unexpected description: %q", p.Description)
	}
	if len(p.Features) != 2 || p.Features[0] != "Feature A" || p.Features[1] != "Feature B" {
		t.Fatalf("unexpected features: %v", p.Features)
	}
	if len(p.Reviews) != 1 || !p.Reviews[0].Verified || p.Reviews[0].HelpfulVotes != 9 {
		t.Fatalf("unexpected reviews: %+v", p.Reviews)
	}
	if p.Tags == nil || len(p.Tags) != 0 {
		t.Fatalf("tags must be present and empty: %v", p.Tags)
	}
}

func TestBuildProductDefaultsForMissingFields(t *testing.T) {
	metas := catalog.NewMetaSet()
	metas.Set("A1", source.Record{
		"title":       "Bare",
		"price":       "None",
		"parent_asin": "A1",
	})

	reviews := map[string][]source.Record{
		"A1": {{"text": "ok"}},
	}

	products := catalog.BuildProducts("C", "c", metas, reviews)
	if len(products) != 1 {
		t.Fatalf("expected 1 product, got %d", len(products))
	}
	p := products[0]
	if p.BasePrice != nil {
		t.Fatalf("unusable price must stay null: %v", *p.BasePrice)
	}
	if p.Rating != 0 || p.ReviewCount != 0 {
		t.Fatalf("missing rating fields should default to zero: %+v", p)
	}
	if p.Store != "" || p.Description != "" {
		t.Fatalf("missing text fields should default to empty: %+v", p)
	}
}

func TestWriteCatalog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "catalog.json")

	price := 9.99
	in := []catalog.Product{{
		ID:        "prod_c_001",
		Category:  "C",
		BasePrice: &price,
		Features:  []string{},
		Reviews:   []catalog.Review{{Rating: 5, Verified: true}},
		Tags:      []string{},
	}}
	if err := catalog.Write(path, in); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read catalog: %v", err)
	}
	var out []catalog.Product
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("catalog is not valid JSON: %v", err)
	}
	if len(out) != 1 || out[0].ID != "prod_c_001" {
		t.Fatalf("unexpected round trip: %+v", out)
	}
	if !strings.Contains(string(raw), `"base_price": 9.99`) {
		t.Fatalf("expected indented base_price field: %s", raw)
	}
}

func TestWriteEmptyCatalogEmitsArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	if err := catalog.Write(path, nil); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read catalog: %v", err)
	}
	if strings.TrimSpace(string(raw)) != "[]" {
		t.Fatalf("empty catalog should serialize as []: %q", raw)
	}
}
