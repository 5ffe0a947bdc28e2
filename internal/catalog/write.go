package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Write persists the catalog as one indented JSON array at path, creating
// parent directories as needed. An empty catalog writes an empty array rather
// than null so consumers always see a JSON sequence.
func Write(path string, products []Product) error {
	if products == nil {
		products = []Product{}
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create catalog file: %w", err)
	}

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(products); err != nil {
		_ = file.Close()
		return fmt.Errorf("encode catalog: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close catalog file: %w", err)
	}
	return nil
}
