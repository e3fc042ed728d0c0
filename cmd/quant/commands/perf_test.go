package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/quantengine/internal/tracker"
)

func TestParseTickerValue(t *testing.T) {
	tests := []struct {
		name    string
		arg     string
		ticker  string
		value   float64
		wantErr bool
	}{
		{name: "split", arg: "itub4:2", ticker: "ITUB4", value: 2},
		{name: "price with spaces", arg: " PETR4 : 38.5 ", ticker: "PETR4", value: 38.5},
		{name: "missing separator", arg: "PETR4", wantErr: true},
		{name: "missing ticker", arg: ":2", wantErr: true},
		{name: "not a number", arg: "PETR4:abc", wantErr: true},
		{name: "zero", arg: "PETR4:0", wantErr: true},
		{name: "negative", arg: "PETR4:-1", wantErr: true},
		{name: "nan", arg: "PETR4:NaN", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ticker, value, err := parseTickerValue(tt.arg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.ticker, ticker)
			assert.Equal(t, tt.value, value)
		})
	}
}

func TestAdjustHoldings(t *testing.T) {
	holdings := tracker.Holdings{
		{Ticker: "ITUB4", Quantity: 100, Price: 34},
		{Ticker: "petr4", Quantity: 10, Price: 38},
	}

	adjusted, err := adjustHoldings(holdings, []string{"ITUB4:2"}, []string{"PETR4:40", "ITUB4:17.5"})
	require.NoError(t, err)

	assert.Equal(t, 200.0, adjusted[0].Quantity)
	assert.Equal(t, 17.5, adjusted[0].Price, "mark applies after the split")
	assert.Equal(t, 40.0, adjusted[1].Price, "tickers match regardless of case")
	assert.Equal(t, 3900.0, adjusted.Equity())
	assert.Equal(t, 34.0, holdings[0].Price, "input is not modified")

	_, err = adjustHoldings(holdings, []string{"ITUB4"}, nil)
	assert.ErrorContains(t, err, "--split")
	_, err = adjustHoldings(holdings, nil, []string{"ITUB4:x"})
	assert.ErrorContains(t, err, "--mark")
}
