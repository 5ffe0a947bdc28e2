package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfiguration marks failures detected before any stream opens.
	ErrConfiguration = errors.New("configuration error")
	// ErrSource marks stream failures that abort a phase. There are no
	// retries: a source that fails mid-read fails its phase.
	ErrSource = errors.New("source error")
	// ErrLocked marks a refused run because another ingest holds the lock.
	ErrLocked = errors.New("ingest already running")
)

// wrap builds an error message that includes phase context while tagging it
// with the provided marker for classification by the CLI.
func wrap(marker error, phase, operation string, err error) error {
	detail := buildDetail(phase, operation)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(phase, operation string) string {
	parts := make([]string, 0, 2)
	if phase = strings.TrimSpace(phase); phase != "" {
		parts = append(parts, phase)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if len(parts) == 0 {
		return "pipeline failure"
	}
	return strings.Join(parts, ": ")
}
