package main

import (
	"encoding/json"
	"io"
)

// printJSON renders v as an indented JSON document for --json output modes.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
