package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateIngest(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateIngest() error {
	if c.Ingest.ProductsPerCategory < 0 {
		return errors.New("ingest.products_per_category must not be negative")
	}
	if c.Ingest.ReviewsPerProduct < 1 {
		return errors.New("ingest.reviews_per_product must be at least 1")
	}
	if c.Ingest.MaxScan < 0 {
		return errors.New("ingest.max_scan must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
