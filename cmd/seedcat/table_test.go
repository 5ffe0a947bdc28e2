package main

import (
	"strings"
	"testing"
)

func TestRenderTableRightAlignsNumericColumns(t *testing.T) {
	out := renderTable(
		[]column{
			{name: "Category"},
			{name: "Collected", numeric: true},
		},
		[][]string{
			{"Gaming Mice", "200"},
			{"Toothbrushes", "7"},
		},
	)

	if !strings.Contains(out, "CATEGORY") || !strings.Contains(out, "Gaming Mice") {
		t.Fatalf("missing header or cell: %q", out)
	}

	var short string
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "Toothbrushes") {
			short = line
		}
	}
	if short == "" {
		t.Fatalf("missing Toothbrushes row: %q", out)
	}
	// Right alignment puts the value flush against the column's right edge.
	if !strings.Contains(short, "7 │") {
		t.Fatalf("numeric cell not right-aligned: %q", short)
	}
}

func TestRenderTablePadsShortRows(t *testing.T) {
	out := renderTable(
		[]column{{name: "Run"}, {name: "Products", numeric: true}},
		[][]string{{"run-1"}},
	)
	if !strings.Contains(out, "run-1") {
		t.Fatalf("missing row cell: %q", out)
	}
	// Top border, header, separator, row, bottom border.
	if lines := strings.Count(out, "\n"); lines != 4 {
		t.Fatalf("expected a single padded row, got %d line breaks: %q", lines, out)
	}
}

func TestRenderTableEmptyColumns(t *testing.T) {
	if out := renderTable(nil, nil); out != "" {
		t.Fatalf("expected empty output, got %q", out)
	}
}
