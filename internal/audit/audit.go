// Package audit appends one line per published product to a local text file.
package audit

import (
	"context"
	"fmt"
	"os"
)

// Log appends "productID,datasetURL" lines to a file. The file is opened in
// append mode for every entry and never truncated, so reruns add duplicates.
type Log struct {
	path string
}

// New returns a Log writing to path. The file is created on first use.
func New(path string) *Log {
	return &Log{path: path}
}

// Append records one published product.
func (l *Log) Append(_ context.Context, productID, datasetURL string) error {
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	if _, err := fmt.Fprintf(f, "%s,%s\n", productID, datasetURL); err != nil {
		_ = f.Close()
		return fmt.Errorf("write audit log: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close audit log: %w", err)
	}
	return nil
}
