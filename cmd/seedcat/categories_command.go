package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"seedcat/internal/registry"
	"seedcat/internal/source"
)

type categoryView struct {
	Name          string   `json:"name"`
	Slug          string   `json:"slug"`
	MetaSources   []string `json:"metadata_sources"`
	ReviewSources []string `json:"review_sources"`
	Keywords      []string `json:"keywords"`
}

func newCategoriesCommand() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:         "categories",
		Short:       "List the built-in category registry",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := registry.Builtin()

			views := make([]categoryView, 0, reg.Len())
			for _, name := range reg.Names() {
				spec, _ := reg.Get(name)
				views = append(views, categoryView{
					Name:          spec.Name,
					Slug:          spec.Slug(),
					MetaSources:   sourceLabels(spec.MetaSources),
					ReviewSources: sourceLabels(spec.ReviewSources),
					Keywords:      spec.Keywords,
				})
			}

			if jsonOut {
				return printJSON(cmd.OutOrStdout(), views)
			}

			rows := make([][]string, 0, len(views))
			for _, view := range views {
				rows = append(rows, []string{
					view.Name,
					fmt.Sprintf("%d", len(view.MetaSources)),
					fmt.Sprintf("%d", len(view.ReviewSources)),
					strings.Join(view.Keywords, ", "),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]column{
					{name: "Category"},
					{name: "Meta sources", numeric: true},
					{name: "Review sources", numeric: true},
					{name: "Keywords"},
				},
				rows,
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the registry as JSON")
	return cmd
}

func sourceLabels(descs []source.Descriptor) []string {
	labels := make([]string, 0, len(descs))
	for _, desc := range descs {
		labels = append(labels, desc.Label())
	}
	return labels
}
