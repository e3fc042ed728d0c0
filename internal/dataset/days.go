package dataset

import (
	"fmt"
	"io"

	"github.com/wonny/quantengine/internal/tracker"
)

type dayRow struct {
	Date    string  `csv:"date"`
	Equity  float64 `csv:"equity"`
	NetFlow float64 `csv:"net_flow,omitempty"`
}

// ReadDays parses a portfolio's daily equity and net flows. Dates must be
// strictly increasing.
func ReadDays(r io.Reader) ([]tracker.Day, error) {
	rows, err := unmarshal[dayRow](r, "days")
	if err != nil {
		return nil, err
	}

	days := make([]tracker.Day, 0, len(rows))
	for i, row := range rows {
		date, err := parseDate(row.Date)
		if err != nil {
			return nil, fmt.Errorf("days row %d: invalid date %q: %w", i+2, row.Date, err)
		}
		if n := len(days); n > 0 && !date.After(days[n-1].Date) {
			return nil, fmt.Errorf("days row %d: date %s not after %s", i+2, row.Date, days[n-1].Date.Format("2006-01-02"))
		}
		days = append(days, tracker.Day{Date: date, Equity: row.Equity, NetFlow: row.NetFlow})
	}
	return days, nil
}

// LoadDays reads the equity file at path.
func LoadDays(path string) ([]tracker.Day, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadDays(f)
}

// ReadHoldings parses positions (ticker, quantity, price).
func ReadHoldings(r io.Reader) (tracker.Holdings, error) {
	rows, err := unmarshal[tracker.Position](r, "holdings")
	if err != nil {
		return nil, err
	}
	return tracker.Holdings(rows), nil
}

// LoadHoldings reads the holdings file at path.
func LoadHoldings(path string) (tracker.Holdings, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadHoldings(f)
}
