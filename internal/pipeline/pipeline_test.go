package pipeline_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"seedcat/internal/catalog"
	"seedcat/internal/config"
	"seedcat/internal/ledger"
	"seedcat/internal/pipeline"
	"seedcat/internal/registry"
	"seedcat/internal/source"
)

type sliceStream struct {
	records []source.Record
	pos     int
}

func (s *sliceStream) Next() (source.Record, error) {
	if s.pos >= len(s.records) {
		return nil, io.EOF
	}
	record := s.records[s.pos]
	s.pos++
	return record, nil
}

func (s *sliceStream) Close() error { return nil }

// fakeSources serves in-memory streams and counts opens per path.
type fakeSources struct {
	data  map[string][]source.Record
	opens map[string]int
}

func newFakeSources() *fakeSources {
	return &fakeSources{data: make(map[string][]source.Record), opens: make(map[string]int)}
}

func (f *fakeSources) open(desc source.Descriptor, _ string) (source.Stream, error) {
	f.opens[desc.Path]++
	records, ok := f.data[desc.Path]
	if !ok {
		return nil, fmt.Errorf("no fake data for %s", desc.Path)
	}
	return &sliceStream{records: records}, nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Paths: config.Paths{
			DataDir:    dir,
			OutputPath: filepath.Join(dir, "catalog.json"),
			LedgerPath: filepath.Join(dir, "ledger.db"),
			LogDir:     filepath.Join(dir, "logs"),
		},
		Ingest: config.Ingest{
			ProductsPerCategory: 200,
			ReviewsPerProduct:   5,
			MaxScan:             5_000_000,
			ProgressInterval:    100_000,
		},
	}
}

func desc(path string) source.Descriptor {
	return source.Descriptor{Format: source.FormatJSONL, Path: path}
}

func metaRecord(asin, title string) source.Record {
	return source.Record{"title": title, "price": "25.00", "parent_asin": asin}
}

func reviewRecord(asin string, helpful int) source.Record {
	return source.Record{
		"parent_asin":       asin,
		"rating":            5.0,
		"title":             "review",
		"text":              "text",
		"verified_purchase": true,
		"helpful_vote":      float64(helpful),
	}
}

func mustRegistry(t *testing.T, specs ...registry.Spec) *registry.Registry {
	t.Helper()
	reg, err := registry.New(specs...)
	if err != nil {
		t.Fatalf("registry.New returned error: %v", err)
	}
	return reg
}

func readCatalog(t *testing.T, path string) []catalog.Product {
	t.Helper()
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read catalog: %v", err)
	}
	var products []catalog.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		t.Fatalf("catalog is not valid JSON: %v", err)
	}
	return products
}

func TestRunStreamsSharedSourcesOnce(t *testing.T) {
	fakes := newFakeSources()
	fakes.data["meta.jsonl"] = []source.Record{
		metaRecord("M1", "alpha gadget"),
		metaRecord("B1", "beta gadget"),
	}
	fakes.data["reviews.jsonl"] = []source.Record{
		reviewRecord("M1", 1),
		reviewRecord("B1", 2),
	}

	reg := mustRegistry(t,
		registry.Spec{
			Name:          "Alpha",
			MetaSources:   []source.Descriptor{desc("meta.jsonl")},
			ReviewSources: []source.Descriptor{desc("reviews.jsonl")},
			Keywords:      []string{"alpha"},
		},
		registry.Spec{
			Name:          "Beta",
			MetaSources:   []source.Descriptor{desc("meta.jsonl")},
			ReviewSources: []source.Descriptor{desc("reviews.jsonl")},
			Keywords:      []string{"beta"},
		},
	)

	cfg := testConfig(t)
	p := pipeline.New(cfg, reg, nil, nil)
	p.OpenStream = fakes.open

	result, err := p.Run(context.Background(), pipeline.Options{})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if fakes.opens["meta.jsonl"] != 1 {
		t.Fatalf("shared metadata source opened %d times, want 1", fakes.opens["meta.jsonl"])
	}
	if fakes.opens["reviews.jsonl"] != 1 {
		t.Fatalf("shared review source opened %d times, want 1", fakes.opens["reviews.jsonl"])
	}

	products := readCatalog(t, cfg.Paths.OutputPath)
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}
	if products[0].Category != "Alpha" || products[1].Category != "Beta" {
		t.Fatalf("unexpected category order: %v, %v", products[0].Category, products[1].Category)
	}
	if products[0].ID != "prod_alpha_001" {
		t.Fatalf("unexpected id: %q", products[0].ID)
	}
	if result.Products != 2 {
		t.Fatalf("unexpected result count: %d", result.Products)
	}
}

func TestRunSkipsLaterMetaSourceWhenCategoryFull(t *testing.T) {
	fakes := newFakeSources()
	fakes.data["first.jsonl"] = []source.Record{
		metaRecord("A1", "alpha one"),
		metaRecord("A2", "alpha two"),
	}
	fakes.data["second.jsonl"] = []source.Record{
		metaRecord("A3", "alpha three"),
	}
	fakes.data["reviews.jsonl"] = []source.Record{
		reviewRecord("A1", 1),
		reviewRecord("A2", 1),
	}

	reg := mustRegistry(t, registry.Spec{
		Name:          "Alpha",
		MetaSources:   []source.Descriptor{desc("first.jsonl"), desc("second.jsonl")},
		ReviewSources: []source.Descriptor{desc("reviews.jsonl")},
		Keywords:      []string{"alpha"},
	})

	cfg := testConfig(t)
	p := pipeline.New(cfg, reg, nil, nil)
	p.OpenStream = fakes.open

	_, err := p.Run(context.Background(), pipeline.Options{ProductsPerCategory: 2})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if fakes.opens["second.jsonl"] != 0 {
		t.Fatalf("second source should be skipped entirely when the first fills the category, opened %d times", fakes.opens["second.jsonl"])
	}
}

func TestRunReviewFallbackOnlyRequestsUnsatisfiedKeys(t *testing.T) {
	fakes := newFakeSources()
	fakes.data["meta.jsonl"] = []source.Record{
		metaRecord("K1", "alpha 1"),
		metaRecord("K2", "alpha 2"),
		metaRecord("K3", "alpha 3"),
	}
	// Source one fully satisfies K1 and K2 (cap 2) and leaves K3 untouched.
	fakes.data["rev1.jsonl"] = []source.Record{
		reviewRecord("K1", 10),
		reviewRecord("K1", 11),
		reviewRecord("K2", 20),
		reviewRecord("K2", 21),
	}
	// Source two carries reviews for every key; only K3's may be taken.
	fakes.data["rev2.jsonl"] = []source.Record{
		{"parent_asin": "K1", "helpful_vote": float64(99), "verified_purchase": true, "text": "poison"},
		{"parent_asin": "K2", "helpful_vote": float64(99), "verified_purchase": true, "text": "poison"},
		reviewRecord("K3", 30),
	}

	reg := mustRegistry(t, registry.Spec{
		Name:          "Alpha",
		MetaSources:   []source.Descriptor{desc("meta.jsonl")},
		ReviewSources: []source.Descriptor{desc("rev1.jsonl"), desc("rev2.jsonl")},
		Keywords:      []string{"alpha"},
	})

	cfg := testConfig(t)
	p := pipeline.New(cfg, reg, nil, nil)
	p.OpenStream = fakes.open

	_, err := p.Run(context.Background(), pipeline.Options{ReviewsPerProduct: 2})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	products := readCatalog(t, cfg.Paths.OutputPath)
	if len(products) != 3 {
		t.Fatalf("expected 3 products, got %d", len(products))
	}
	for _, product := range products {
		for _, review := range product.Reviews {
			if review.Text == "poison" {
				t.Fatalf("satisfied key %s re-requested from the second source", product.ParentASIN)
			}
		}
	}
	if len(products[2].Reviews) != 1 || products[2].Reviews[0].HelpfulVotes != 30 {
		t.Fatalf("K3 should fall through to the second source: %+v", products[2].Reviews)
	}
}

func TestRunMergesPartiallySatisfiedKeyAcrossSources(t *testing.T) {
	fakes := newFakeSources()
	fakes.data["meta.jsonl"] = []source.Record{
		metaRecord("P1", "alpha partial"),
	}
	// Source one leaves P1 one review short of the cap of 2.
	fakes.data["rev1.jsonl"] = []source.Record{
		{"parent_asin": "P1", "verified_purchase": false, "helpful_vote": float64(1), "text": "first-lone"},
	}
	// Source two's candidates must be merged with the earlier one, re-sorted
	// best-first, and capped.
	fakes.data["rev2.jsonl"] = []source.Record{
		{"parent_asin": "P1", "verified_purchase": true, "helpful_vote": float64(5), "text": "second-verified"},
		{"parent_asin": "P1", "verified_purchase": false, "helpful_vote": float64(9), "text": "second-popular"},
	}

	reg := mustRegistry(t, registry.Spec{
		Name:          "Alpha",
		MetaSources:   []source.Descriptor{desc("meta.jsonl")},
		ReviewSources: []source.Descriptor{desc("rev1.jsonl"), desc("rev2.jsonl")},
		Keywords:      []string{"alpha"},
	})

	cfg := testConfig(t)
	p := pipeline.New(cfg, reg, nil, nil)
	p.OpenStream = fakes.open

	_, err := p.Run(context.Background(), pipeline.Options{ReviewsPerProduct: 2})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if fakes.opens["rev2.jsonl"] != 1 {
		t.Fatalf("partially satisfied key should fall through to the second source, opened %d times", fakes.opens["rev2.jsonl"])
	}

	products := readCatalog(t, cfg.Paths.OutputPath)
	if len(products) != 1 {
		t.Fatalf("expected 1 product, got %d", len(products))
	}
	reviews := products[0].Reviews
	if len(reviews) != 2 {
		t.Fatalf("merged reviews should be capped at 2, got %d", len(reviews))
	}
	if reviews[0].Text != "second-verified" || reviews[1].Text != "second-popular" {
		t.Fatalf("merged reviews out of order: %q, %q", reviews[0].Text, reviews[1].Text)
	}
}

func TestRunDropsProductsWithoutReviews(t *testing.T) {
	fakes := newFakeSources()
	fakes.data["meta.jsonl"] = []source.Record{
		metaRecord("R1", "alpha reviewed"),
		metaRecord("R2", "alpha silent"),
	}
	fakes.data["reviews.jsonl"] = []source.Record{
		reviewRecord("R1", 4),
	}

	reg := mustRegistry(t, registry.Spec{
		Name:          "Alpha",
		MetaSources:   []source.Descriptor{desc("meta.jsonl")},
		ReviewSources: []source.Descriptor{desc("reviews.jsonl")},
		Keywords:      []string{"alpha"},
	})

	cfg := testConfig(t)
	p := pipeline.New(cfg, reg, nil, nil)
	p.OpenStream = fakes.open

	result, err := p.Run(context.Background(), pipeline.Options{})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	products := readCatalog(t, cfg.Paths.OutputPath)
	if len(products) != 1 || products[0].ParentASIN != "R1" {
		t.Fatalf("review-less product should be dropped: %+v", products)
	}
	if result.Categories[0].Collected != 2 || result.Categories[0].Emitted != 1 {
		t.Fatalf("unexpected outcome counts: %+v", result.Categories[0])
	}
}

func TestRunRejectsUnknownCategory(t *testing.T) {
	reg := mustRegistry(t, registry.Spec{
		Name:          "Alpha",
		MetaSources:   []source.Descriptor{desc("meta.jsonl")},
		ReviewSources: []source.Descriptor{desc("reviews.jsonl")},
		Keywords:      []string{"alpha"},
	})

	p := pipeline.New(testConfig(t), reg, nil, nil)
	p.OpenStream = newFakeSources().open

	_, err := p.Run(context.Background(), pipeline.Options{Categories: []string{"Nope"}})
	if !errors.Is(err, pipeline.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestRunCategoryOrderFollowsRequest(t *testing.T) {
	fakes := newFakeSources()
	fakes.data["meta.jsonl"] = []source.Record{
		metaRecord("A1", "alpha item"),
		metaRecord("B1", "beta item"),
	}
	fakes.data["reviews.jsonl"] = []source.Record{
		reviewRecord("A1", 1),
		reviewRecord("B1", 1),
	}

	reg := mustRegistry(t,
		registry.Spec{
			Name:          "Alpha",
			MetaSources:   []source.Descriptor{desc("meta.jsonl")},
			ReviewSources: []source.Descriptor{desc("reviews.jsonl")},
			Keywords:      []string{"alpha"},
		},
		registry.Spec{
			Name:          "Beta",
			MetaSources:   []source.Descriptor{desc("meta.jsonl")},
			ReviewSources: []source.Descriptor{desc("reviews.jsonl")},
			Keywords:      []string{"beta"},
		},
	)

	cfg := testConfig(t)
	p := pipeline.New(cfg, reg, nil, nil)
	p.OpenStream = fakes.open

	_, err := p.Run(context.Background(), pipeline.Options{Categories: []string{"Beta", "Alpha"}})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	products := readCatalog(t, cfg.Paths.OutputPath)
	if products[0].Category != "Beta" || products[1].Category != "Alpha" {
		t.Fatalf("catalog order should follow the request: %v, %v", products[0].Category, products[1].Category)
	}
}

func TestRunRecordsLedgerEntry(t *testing.T) {
	fakes := newFakeSources()
	fakes.data["meta.jsonl"] = []source.Record{metaRecord("A1", "alpha item")}
	fakes.data["reviews.jsonl"] = []source.Record{reviewRecord("A1", 1)}

	reg := mustRegistry(t, registry.Spec{
		Name:          "Alpha",
		MetaSources:   []source.Descriptor{desc("meta.jsonl")},
		ReviewSources: []source.Descriptor{desc("reviews.jsonl")},
		Keywords:      []string{"alpha"},
	})

	cfg := testConfig(t)
	store, err := ledger.Open(cfg.Paths.LedgerPath)
	if err != nil {
		t.Fatalf("ledger.Open returned error: %v", err)
	}
	defer store.Close()

	p := pipeline.New(cfg, reg, nil, store)
	p.OpenStream = fakes.open

	result, err := p.Run(context.Background(), pipeline.Options{})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	runs, err := store.RecentRuns(context.Background(), 5)
	if err != nil {
		t.Fatalf("RecentRuns returned error: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != result.RunID {
		t.Fatalf("expected the run to be recorded: %+v", runs)
	}
	if runs[0].ProductsWritten != 1 {
		t.Fatalf("unexpected products_written: %d", runs[0].ProductsWritten)
	}
	if len(runs[0].Categories) != 1 || runs[0].Categories[0].Name != "Alpha" {
		t.Fatalf("unexpected run categories: %+v", runs[0].Categories)
	}
}

func TestRunEndToEndWithJSONLFiles(t *testing.T) {
	cfg := testConfig(t)

	writeLines := func(name string, lines ...string) {
		t.Helper()
		body := ""
		for _, line := range lines {
			body += line + "\n"
		}
		if err := os.WriteFile(filepath.Join(cfg.Paths.DataDir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	writeLines("meta.jsonl",
		`{"title":"Alpha Gizmo","price":"$19.99","parent_asin":"E1","average_rating":4.5,"rating_number":12}`,
		`{"title":"No price gizmo","price":"None","parent_asin":"E2"}`,
		`{"title":"Alpha Gadget","price":"8.50","parent_asin":"E3"}`,
	)
	writeLines("reviews.jsonl",
		`{"parent_asin":"E1","rating":5,"title":"great","text":"works","verified_purchase":true,"helpful_vote":3}`,
		`{"parent_asin":"E3","rating":4,"title":"fine","text":"ok","verified_purchase":false,"helpful_vote":1}`,
	)

	reg := mustRegistry(t, registry.Spec{
		Name:          "Alpha",
		MetaSources:   []source.Descriptor{desc("meta.jsonl")},
		ReviewSources: []source.Descriptor{desc("reviews.jsonl")},
		Keywords:      []string{"alpha"},
	})

	p := pipeline.New(cfg, reg, nil, nil)

	result, err := p.Run(context.Background(), pipeline.Options{})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.MetaScanned != 3 {
		t.Fatalf("expected 3 metadata records scanned, got %d", result.MetaScanned)
	}

	products := readCatalog(t, cfg.Paths.OutputPath)
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}
	if products[0].ParentASIN != "E1" || products[1].ParentASIN != "E3" {
		t.Fatalf("unexpected products: %+v", products)
	}
	if products[0].BasePrice == nil || *products[0].BasePrice != 19.99 {
		t.Fatalf("unexpected price: %v", products[0].BasePrice)
	}
	if products[0].Rating != 4.5 || products[0].ReviewCount != 12 {
		t.Fatalf("unexpected rating fields: %+v", products[0])
	}
}
