package registry

import "seedcat/internal/source"

func parquetMeta(name string) source.Descriptor {
	return source.Descriptor{Format: source.FormatParquet, Path: "raw_meta_" + name + "/full-*.parquet"}
}

func jsonlMeta(name string) source.Descriptor {
	return source.Descriptor{Format: source.FormatJSONL, Path: "meta_categories/meta_" + name + ".jsonl"}
}

func jsonlReview(name string) source.Descriptor {
	return source.Descriptor{Format: source.FormatJSONL, Path: "review_categories/" + name + ".jsonl"}
}

// Builtin returns the production category table. Several categories share the
// Electronics collections; the pipeline's per-path dedup keeps those shared
// files to a single pass each.
func Builtin() *Registry {
	reg, err := New(
		Spec{
			Name:          "Wireless Headphones",
			MetaSources:   []source.Descriptor{parquetMeta("Electronics")},
			ReviewSources: []source.Descriptor{jsonlReview("Electronics")},
			// Require a "wireless" or "bluetooth" qualifier to exclude wired
			// headphones, replacement ear tips, and other accessories that
			// match "headphone"/"earbuds" alone.
			Keywords: []string{
				"wireless headphone", "bluetooth headphone", "wireless earbud",
				"bluetooth earbud", "true wireless",
			},
		},
		Spec{
			Name: "Smartwatches",
			MetaSources: []source.Descriptor{
				parquetMeta("Electronics"),
				parquetMeta("Cell_Phones_and_Accessories"),
			},
			ReviewSources: []source.Descriptor{
				jsonlReview("Electronics"),
				jsonlReview("Cell_Phones_and_Accessories"),
			},
			Keywords: []string{"smartwatch", "smart watch", "fitness tracker"},
		},
		Spec{
			Name:          "Mechanical Keyboards",
			MetaSources:   []source.Descriptor{parquetMeta("Electronics")},
			ReviewSources: []source.Descriptor{jsonlReview("Electronics")},
			Keywords:      []string{"mechanical keyboard", "gaming keyboard"},
		},
		Spec{
			Name:          "Gaming Mice",
			MetaSources:   []source.Descriptor{parquetMeta("Electronics")},
			ReviewSources: []source.Descriptor{jsonlReview("Electronics")},
			// "wireless mouse" is too broad, it matches generic office mice.
			// "gaming mice" catches plural titles; "esports mouse" catches
			// competitive peripherals.
			Keywords: []string{"gaming mouse", "gaming mice", "esports mouse"},
		},
		Spec{
			Name:          "Toothbrushes",
			MetaSources:   []source.Descriptor{jsonlMeta("Health_and_Household")},
			ReviewSources: []source.Descriptor{jsonlReview("Health_and_Household")},
			Keywords:      []string{"electric toothbrush", "toothbrush"},
		},
		Spec{
			Name: "Running Shoes",
			MetaSources: []source.Descriptor{
				jsonlMeta("Sports_and_Outdoors"),
				jsonlMeta("Clothing_Shoes_and_Jewelry"),
			},
			ReviewSources: []source.Descriptor{
				jsonlReview("Sports_and_Outdoors"),
				jsonlReview("Clothing_Shoes_and_Jewelry"),
			},
			Keywords: []string{"running shoe", "running shoes"},
		},
	)
	if err != nil {
		panic("registry: invalid builtin table: " + err.Error())
	}
	return reg
}
