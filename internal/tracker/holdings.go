package tracker

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/wonny/quantengine/internal/perfmath"
)

// Position is a quantity of one instrument marked at a price.
type Position struct {
	Ticker   string  `json:"ticker" csv:"ticker"`
	Quantity float64 `json:"quantity" csv:"quantity"`
	Price    float64 `json:"price" csv:"price"`
}

// Value is quantity times price.
func (p Position) Value() decimal.Decimal {
	return decimal.NewFromFloat(perfmath.Finite(p.Quantity)).Mul(decimal.NewFromFloat(perfmath.Finite(p.Price)))
}

// Split applies a k-for-1 split: quantity times k, price divided by k.
// Market value is unchanged. A non-positive k returns p unchanged.
func (p Position) Split(k float64) Position {
	if k <= 0 || perfmath.Finite(k) == 0 {
		return p
	}
	p.Quantity *= k
	p.Price = perfmath.SafeDiv(p.Price, k)
	return p
}

// Holdings is a set of positions.
type Holdings []Position

// Equity is the mark-to-market value rounded to cents.
func (h Holdings) Equity() float64 {
	total := decimal.Zero
	for _, p := range h {
		total = total.Add(p.Value())
	}
	return total.Round(perfmath.DefaultPlaces).InexactFloat64()
}

// Split applies a split to every position in ticker.
func (h Holdings) Split(ticker string, k float64) Holdings {
	out := make(Holdings, len(h))
	for i, p := range h {
		if strings.EqualFold(p.Ticker, ticker) {
			p = p.Split(k)
		}
		out[i] = p
	}
	return out
}

// Mark updates the price of every position in ticker.
func (h Holdings) Mark(ticker string, price float64) Holdings {
	out := make(Holdings, len(h))
	for i, p := range h {
		if strings.EqualFold(p.Ticker, ticker) {
			p.Price = price
		}
		out[i] = p
	}
	return out
}
