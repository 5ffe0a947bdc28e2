package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"seedcat/internal/ledger"
	"seedcat/internal/pipeline"
	"seedcat/internal/registry"
)

func newIngestCommand(ctx *commandContext) *cobra.Command {
	var categories []string
	var productsPerCategory int
	var reviewsPerProduct int
	var maxScan int
	var outputPath string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Build the seed catalog from the configured collections",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.buildLogger()
			if err != nil {
				return err
			}

			var store *ledger.Store
			store, err = ledger.Open(cfg.Paths.LedgerPath)
			if err != nil {
				logger.Warn("open run ledger", "path", cfg.Paths.LedgerPath, "error", err)
				store = nil
			} else {
				defer store.Close()
			}

			p := pipeline.New(cfg, registry.Builtin(), logger, store)
			result, err := p.Run(cmd.Context(), pipeline.Options{
				Categories:          categories,
				ProductsPerCategory: productsPerCategory,
				ReviewsPerProduct:   reviewsPerProduct,
				MaxScan:             maxScan,
				OutputPath:          outputPath,
			})
			if err != nil {
				if errors.Is(err, pipeline.ErrLocked) {
					return fmt.Errorf("another ingest run is already in progress: %w", err)
				}
				return err
			}

			if jsonOut {
				return printJSON(cmd.OutOrStdout(), result)
			}
			printIngestSummary(cmd, result)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&categories, "categories", nil, "Categories to ingest (default: all)")
	cmd.Flags().IntVar(&productsPerCategory, "products-per-category", 0, "Products collected per category (default from config)")
	cmd.Flags().IntVar(&reviewsPerProduct, "reviews-per-product", 0, "Reviews kept per product (default from config)")
	cmd.Flags().IntVar(&maxScan, "max-scan", 0, "Ceiling on records read per review source (default from config)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Catalog output path (default from config)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the run summary as JSON")

	return cmd
}

func printIngestSummary(cmd *cobra.Command, result *pipeline.Result) {
	printer := message.NewPrinter(language.English)

	rows := make([][]string, 0, len(result.Categories))
	for _, outcome := range result.Categories {
		rows = append(rows, []string{
			outcome.Name,
			printer.Sprintf("%d", outcome.Collected),
			printer.Sprintf("%d", outcome.Emitted),
		})
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderTable(
		[]column{
			{name: "Category"},
			{name: "Collected", numeric: true},
			{name: "Emitted", numeric: true},
		},
		rows,
	))
	printer.Fprintf(out, "Wrote %d products to %s\n", result.Products, result.OutputPath)
	printer.Fprintf(out, "Scanned %d metadata and %d review records in %s\n",
		result.MetaScanned, result.ReviewScanned, result.Duration.Round(time.Millisecond))
}
