// Package dataset reads engine inputs from CSV files and writes rankings back out.
package dataset

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/wonny/quantengine/internal/contracts"
)

func open(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return f, nil
}

func unmarshal[T any](r io.Reader, what string) ([]T, error) {
	var rows []T
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse %s csv: %w", what, err)
	}
	return rows, nil
}

// parseDate accepts 2006-01-02 or RFC 3339.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// Files reloads the universe and price history from disk on every call, so a
// long-running scheduler picks up files refreshed by the ingestion side.
type Files struct {
	AssetsPath string
	PricesPath string
}

// Assets loads the universe file.
func (f Files) Assets(_ context.Context) ([]contracts.Asset, error) {
	return LoadAssets(f.AssetsPath)
}

// Prices loads the price file. An unset path yields an empty history.
func (f Files) Prices(_ context.Context) (History, error) {
	if f.PricesPath == "" {
		return History{}, nil
	}
	return LoadPrices(f.PricesPath)
}
