package config

const (
	defaultDataDir             = "~/.local/share/seedcat/data"
	defaultOutputPath          = "~/.local/share/seedcat/seed_catalog.json"
	defaultLedgerPath          = "~/.local/share/seedcat/ledger.db"
	defaultLogDir              = "~/.local/share/seedcat/logs"
	defaultProductsPerCategory = 200
	defaultReviewsPerProduct   = 5
	defaultMaxScan             = 5_000_000
	defaultProgressInterval    = 50_000
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:    defaultDataDir,
			OutputPath: defaultOutputPath,
			LedgerPath: defaultLedgerPath,
			LogDir:     defaultLogDir,
		},
		Ingest: Ingest{
			ProductsPerCategory: defaultProductsPerCategory,
			ReviewsPerProduct:   defaultReviewsPerProduct,
			MaxScan:             defaultMaxScan,
			ProgressInterval:    defaultProgressInterval,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
