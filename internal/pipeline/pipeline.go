package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"seedcat/internal/catalog"
	"seedcat/internal/config"
	"seedcat/internal/ledger"
	"seedcat/internal/logging"
	"seedcat/internal/mux"
	"seedcat/internal/registry"
	"seedcat/internal/source"
)

// Options are the per-invocation knobs of a run. Zero values fall back to the
// loaded configuration.
type Options struct {
	Categories          []string
	ProductsPerCategory int
	ReviewsPerProduct   int
	MaxScan             int
	OutputPath          string
}

// CategoryOutcome summarizes one category after a run.
type CategoryOutcome struct {
	Name      string
	Collected int
	Emitted   int
}

// Result summarizes a completed run.
type Result struct {
	RunID         string
	Categories    []CategoryOutcome
	Products      int
	MetaScanned   int
	ReviewScanned int
	OutputPath    string
	Duration      time.Duration
}

// Pipeline runs the catalog ingestion phases against a registry.
type Pipeline struct {
	cfg    *config.Config
	reg    *registry.Registry
	logger *slog.Logger
	store  *ledger.Store

	// OpenStream opens a descriptor's stream; tests substitute it to count
	// opens per path. Defaults to source.Open.
	OpenStream func(source.Descriptor, string) (source.Stream, error)
}

// New constructs a pipeline. The ledger store may be nil, in which case run
// history is not recorded.
func New(cfg *config.Config, reg *registry.Registry, logger *slog.Logger, store *ledger.Store) *Pipeline {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Pipeline{
		cfg:        cfg,
		reg:        reg,
		logger:     logger,
		store:      store,
		OpenStream: source.Open,
	}
}

// Run executes the metadata, review, and transform phases and persists the
// catalog. It refuses to start while another run holds the ingest lock.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Result, error) {
	specs, err := p.reg.Select(opts.Categories)
	if err != nil {
		return nil, wrap(ErrConfiguration, "select categories", "", err)
	}
	p.applyDefaults(&opts)

	if err := p.cfg.EnsureDirectories(); err != nil {
		return nil, wrap(ErrConfiguration, "prepare directories", "", err)
	}

	lock := flock.New(p.cfg.Paths.LedgerPath + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, wrap(ErrLocked, "acquire run lock", lock.Path(), err)
	}
	if !locked {
		return nil, wrap(ErrLocked, "acquire run lock", lock.Path(), nil)
	}
	defer func() { _ = lock.Unlock() }()

	startedAt := time.Now()
	runID := uuid.NewString()
	logger := p.logger.With("run_id", runID)
	sampler := logging.NewScanSampler(p.cfg.Ingest.ProgressInterval)

	logger.Info("ingest run starting",
		"categories", len(specs),
		"products_per_category", opts.ProductsPerCategory,
		"reviews_per_product", opts.ReviewsPerProduct)

	collected, metaScanned, err := p.runMetaPhase(ctx, specs, opts, logger, sampler)
	if err != nil {
		return nil, err
	}

	reviews, reviewScanned, err := p.runReviewPhase(ctx, specs, collected, opts, logger, sampler)
	if err != nil {
		return nil, err
	}

	result := &Result{RunID: runID, OutputPath: opts.OutputPath}
	result.MetaScanned = metaScanned
	result.ReviewScanned = reviewScanned

	var products []catalog.Product
	for _, spec := range specs {
		built := catalog.BuildProducts(spec.Name, spec.Slug(), collected[spec.Name], reviews)
		products = append(products, built...)
		result.Categories = append(result.Categories, CategoryOutcome{
			Name:      spec.Name,
			Collected: collected[spec.Name].Len(),
			Emitted:   len(built),
		})
		logger.Info("category transformed",
			"component", "transform",
			"category", spec.Name,
			"collected", collected[spec.Name].Len(),
			"emitted", len(built))
	}
	result.Products = len(products)

	if err := catalog.Write(opts.OutputPath, products); err != nil {
		return nil, wrap(ErrSource, "persist catalog", opts.OutputPath, err)
	}

	result.Duration = time.Since(startedAt)
	p.recordRun(ctx, runID, startedAt, opts, result, logger)

	logger.Info("ingest run complete",
		"products", result.Products,
		"output", opts.OutputPath,
		"duration", result.Duration.Round(time.Millisecond))
	return result, nil
}

func (p *Pipeline) applyDefaults(opts *Options) {
	if opts.ProductsPerCategory <= 0 {
		opts.ProductsPerCategory = p.cfg.Ingest.ProductsPerCategory
	}
	if opts.ReviewsPerProduct <= 0 {
		opts.ReviewsPerProduct = p.cfg.Ingest.ReviewsPerProduct
	}
	if opts.MaxScan == 0 {
		opts.MaxScan = p.cfg.Ingest.MaxScan
	}
	if opts.OutputPath == "" {
		opts.OutputPath = p.cfg.Paths.OutputPath
	}
}

// runMetaPhase streams each unique metadata path once, serving every category
// that still has capacity. A category that reached its limit on an earlier
// source is excluded from later ones, so a fully-served source is skipped
// without being opened.
func (p *Pipeline) runMetaPhase(
	ctx context.Context,
	specs []registry.Spec,
	opts Options,
	logger *slog.Logger,
	sampler *logging.ScanSampler,
) (map[string]*catalog.MetaSet, int, error) {
	var paths []string
	descByPath := make(map[string]source.Descriptor)
	filtersByPath := make(map[string]map[string][]string)
	for _, spec := range specs {
		for _, desc := range spec.MetaSources {
			if _, seen := descByPath[desc.Path]; !seen {
				paths = append(paths, desc.Path)
				descByPath[desc.Path] = desc
				filtersByPath[desc.Path] = make(map[string][]string)
			}
			filtersByPath[desc.Path][spec.Name] = spec.Keywords
		}
	}

	collected := make(map[string]*catalog.MetaSet, len(specs))
	for _, spec := range specs {
		collected[spec.Name] = catalog.NewMetaSet()
	}

	scanned := 0
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, scanned, err
		}

		desc := descByPath[path]
		consumers := make(map[string]mux.MetaConsumer)
		for name, keywords := range filtersByPath[path] {
			remaining := opts.ProductsPerCategory - collected[name].Len()
			if remaining <= 0 {
				continue
			}
			consumers[name] = mux.MetaConsumer{Keywords: keywords, Capacity: remaining}
		}
		if len(consumers) == 0 {
			logger.Debug("metadata source skipped, all consumers full",
				"component", "metadata", "source", desc.Label())
			continue
		}

		passLogger := logger.With("component", "metadata", "source", desc.Label())
		passLogger.Info("streaming metadata", "categories", len(consumers))

		stream, err := p.OpenStream(desc, p.cfg.Paths.DataDir)
		if err != nil {
			return nil, scanned, wrap(ErrSource, "metadata", desc.Label(), err)
		}
		result, err := mux.CollectMeta(stream, consumers, passLogger, sampler)
		closeErr := stream.Close()
		if err != nil {
			return nil, scanned, wrap(ErrSource, "metadata", desc.Label(), err)
		}
		if closeErr != nil {
			passLogger.Warn("close metadata stream", "error", closeErr)
		}
		scanned += result.Scanned

		for name, batch := range result.PerCategory {
			remaining := opts.ProductsPerCategory - collected[name].Len()
			keys := batch.Keys()
			if len(keys) > remaining {
				keys = keys[:remaining]
			}
			for _, key := range keys {
				record, _ := batch.Get(key)
				collected[name].Set(key, record)
			}
			passLogger.Debug("category progress",
				"category", name, "collected", collected[name].Len())
		}
	}

	return collected, scanned, nil
}

// runReviewPhase streams each unique review path once for the keys that still
// need reviews. Keys satisfied by an earlier source are never re-requested;
// partially-served keys stay needed and fall through to the next configured
// source.
func (p *Pipeline) runReviewPhase(
	ctx context.Context,
	specs []registry.Spec,
	collected map[string]*catalog.MetaSet,
	opts Options,
	logger *slog.Logger,
	sampler *logging.ScanSampler,
) (map[string][]source.Record, int, error) {
	var paths []string
	descByPath := make(map[string]source.Descriptor)
	keysByPath := make(map[string]map[string]struct{})
	for _, spec := range specs {
		keys := collected[spec.Name].Keys()
		for _, desc := range spec.ReviewSources {
			if _, seen := descByPath[desc.Path]; !seen {
				paths = append(paths, desc.Path)
				descByPath[desc.Path] = desc
				keysByPath[desc.Path] = make(map[string]struct{})
			}
			for _, key := range keys {
				keysByPath[desc.Path][key] = struct{}{}
			}
		}
	}

	allReviews := make(map[string][]source.Record)
	satisfied := make(map[string]struct{})
	scanned := 0

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, scanned, err
		}

		desc := descByPath[path]
		needed := make(map[string]struct{})
		for key := range keysByPath[path] {
			if _, done := satisfied[key]; !done {
				needed[key] = struct{}{}
			}
		}
		if len(needed) == 0 {
			logger.Debug("review source skipped, all keys satisfied",
				"component", "reviews", "source", desc.Label())
			continue
		}

		passLogger := logger.With("component", "reviews", "source", desc.Label())
		passLogger.Info("streaming reviews",
			"requested", len(needed), "max_scan", opts.MaxScan)

		stream, err := p.OpenStream(desc, p.cfg.Paths.DataDir)
		if err != nil {
			return nil, scanned, wrap(ErrSource, "reviews", desc.Label(), err)
		}
		result, err := mux.CollectReviews(stream, needed, opts.ReviewsPerProduct, opts.MaxScan, passLogger, sampler)
		closeErr := stream.Close()
		if err != nil {
			return nil, scanned, wrap(ErrSource, "reviews", desc.Label(), err)
		}
		if closeErr != nil {
			passLogger.Warn("close review stream", "error", closeErr)
		}
		scanned += result.Scanned

		for key, batch := range result.PerKey {
			merged := append(allReviews[key], batch...)
			mux.SortReviews(merged)
			if len(merged) > opts.ReviewsPerProduct {
				merged = merged[:opts.ReviewsPerProduct]
			}
			allReviews[key] = merged
			if len(merged) >= opts.ReviewsPerProduct {
				satisfied[key] = struct{}{}
			}
		}
	}

	return allReviews, scanned, nil
}

// recordRun stores the run in the ledger. Failures are logged rather than
// returned: the catalog is already on disk and remains valid.
func (p *Pipeline) recordRun(ctx context.Context, runID string, startedAt time.Time, opts Options, result *Result, logger *slog.Logger) {
	if p.store == nil {
		return
	}

	run := ledger.Run{
		ID:                  runID,
		StartedAt:           startedAt,
		FinishedAt:          time.Now(),
		ProductsPerCategory: opts.ProductsPerCategory,
		ReviewsPerProduct:   opts.ReviewsPerProduct,
		MaxScan:             opts.MaxScan,
		MetaScanned:         result.MetaScanned,
		ReviewScanned:       result.ReviewScanned,
		OutputPath:          result.OutputPath,
		ProductsWritten:     result.Products,
	}
	for _, outcome := range result.Categories {
		run.Categories = append(run.Categories, ledger.CategoryCount{
			Name:      outcome.Name,
			Collected: outcome.Collected,
			Emitted:   outcome.Emitted,
		})
	}

	if err := p.store.RecordRun(ctx, run); err != nil {
		logger.Warn("record run in ledger", "error", err)
	}
}
