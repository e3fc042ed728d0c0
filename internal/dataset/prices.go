package dataset

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/wonny/quantengine/internal/contracts"
	"github.com/wonny/quantengine/internal/signals"
)

type priceRow struct {
	Date   string  `csv:"date"`
	Ticker string  `csv:"ticker"`
	Close  float64 `csv:"close"`
}

// History maps a ticker to its closes, oldest first.
type History map[string][]contracts.PricePoint

// ReadPrices parses a long-format price file (date, ticker, close). Rows may
// come in any order; each series is sorted by date and a repeated date keeps
// the last row.
func ReadPrices(r io.Reader) (History, error) {
	rows, err := unmarshal[priceRow](r, "prices")
	if err != nil {
		return nil, err
	}

	history := make(History)
	for i, row := range rows {
		date, err := parseDate(row.Date)
		if err != nil {
			return nil, fmt.Errorf("prices row %d: invalid date %q: %w", i+2, row.Date, err)
		}
		ticker := strings.ToUpper(strings.TrimSpace(row.Ticker))
		history[ticker] = append(history[ticker], contracts.PricePoint{Date: date, Close: row.Close})
	}

	for ticker, points := range history {
		slices.SortStableFunc(points, func(a, b contracts.PricePoint) int {
			return a.Date.Compare(b.Date)
		})
		deduped := points[:0]
		for _, p := range points {
			if n := len(deduped); n > 0 && deduped[n-1].Date.Equal(p.Date) {
				deduped[n-1] = p
				continue
			}
			deduped = append(deduped, p)
		}
		history[ticker] = deduped
	}
	return history, nil
}

// LoadPrices reads the price file at path.
func LoadPrices(path string) (History, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadPrices(f)
}

// LatestPrice returns the most recent close of ticker.
func (h History) LatestPrice(_ context.Context, ticker string) (float64, error) {
	points := h[strings.ToUpper(ticker)]
	if len(points) == 0 {
		return 0, fmt.Errorf("%s: %w", ticker, contracts.ErrNotFound)
	}
	return points[len(points)-1].Close, nil
}

// Series returns ticker's dated closes, oldest first.
func (h History) Series(ticker string) []contracts.PricePoint {
	return h[strings.ToUpper(ticker)]
}

// ScanInputs pairs each asset with its history. Assets without history are kept
// with an empty series; the detectors that need one skip them.
func (h History) ScanInputs(assets []contracts.Asset) []signals.Input {
	inputs := make([]signals.Input, 0, len(assets))
	for _, asset := range assets {
		inputs = append(inputs, signals.Input{Asset: asset, History: h[asset.Ticker]})
	}
	return inputs
}
