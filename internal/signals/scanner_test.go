package signals

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/quantengine/internal/contracts"
	"github.com/wonny/quantengine/internal/store"
	"github.com/wonny/quantengine/pkg/logger"
)

var now = time.Date(2026, 6, 1, 18, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newScanner(s contracts.SignalStore, mutate ...func(c *ScannerConfig)) *Scanner {
	cfg := DefaultScannerConfig()
	cfg.Clock = fixedClock(now)
	for _, m := range mutate {
		m(&cfg)
	}
	return NewScanner(cfg, s, nil, logger.NewNop())
}

func history(closes ...float64) []contracts.PricePoint {
	points := make([]contracts.PricePoint, len(closes))
	start := now.AddDate(0, 0, -len(closes))
	for i, c := range closes {
		points[i] = contracts.PricePoint{Date: start.AddDate(0, 0, i), Close: c}
	}
	return points
}

func declining(n int, from, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = from - step*float64(i)
	}
	return out
}

func flat(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func liquid(ticker string, price float64, m contracts.Metrics) contracts.Asset {
	if m.Liquidity == 0 {
		m.Liquidity = 5_000_000
	}
	return contracts.Asset{
		Instrument: contracts.Instrument{Ticker: ticker, AssetClass: contracts.AssetEquity, Sector: "Industrials", Price: price},
		Metrics:    m,
	}
}

func types(signals []contracts.QuantSignal) []contracts.SignalType {
	out := make([]contracts.SignalType, 0, len(signals))
	for _, s := range signals {
		out = append(out, s.Type)
	}
	return out
}

func TestScan_CircuitBreaker(t *testing.T) {
	sc := newScanner(store.NewMemorySignalStore())

	illiquid := liquid("AAA3", 10, contracts.Metrics{Liquidity: 1_000})
	res := sc.Scan(context.Background(), []Input{
		{Asset: illiquid, History: history(declining(20, 30, 1)...)},
	})

	assert.False(t, res.Success)
	assert.Equal(t, "no liquid instruments", res.Error)
	assert.Zero(t, res.Analyzed)
	assert.Empty(t, res.Signals)

	res = sc.Scan(context.Background(), nil)
	assert.False(t, res.Success)
	assert.Zero(t, res.Analyzed)
}

func TestScan_HealthyMarketWithoutSignals(t *testing.T) {
	sc := newScanner(store.NewMemorySignalStore())

	res := sc.Scan(context.Background(), []Input{
		{Asset: liquid("AAA3", 20, contracts.Metrics{PE: 20, PB: 3}), History: history(flat(30, 20)...)},
	})

	assert.True(t, res.Success)
	assert.Equal(t, 1, res.Analyzed)
	assert.Empty(t, res.Signals)
}

func TestScan_RSIOversold(t *testing.T) {
	sc := newScanner(store.NewMemorySignalStore())
	closes := declining(15, 30, 1) // 30 → 16

	res := sc.Scan(context.Background(), []Input{
		{Asset: liquid("DROP3", 16, contracts.Metrics{NetMargin: 3}), History: history(closes...)},
		{Asset: liquid("BURN3", 16, contracts.Metrics{NetMargin: -25}), History: history(closes...)},
	})

	require.True(t, res.Success)
	require.Len(t, res.Signals, 1)
	sig := res.Signals[0]
	assert.Equal(t, "DROP3", sig.Ticker)
	assert.Equal(t, contracts.SignalRSIOversold, sig.Type)
	assert.Equal(t, contracts.ProfileBold, sig.Profile)
	assert.Equal(t, contracts.StatusActive, sig.Status)
	assert.Less(t, sig.Value, 30.0)
	assert.Equal(t, 16.0, sig.PriceAtSignal)
	assert.Equal(t, now, sig.CreatedAt)
	assert.NotEmpty(t, sig.ID)
}

func TestScan_BadCloseSkipsHistoryDetectors(t *testing.T) {
	withLast := func(last float64) []float64 {
		closes := flat(15, 20)
		closes[len(closes)-1] = last
		return closes
	}

	tests := []struct {
		name   string
		closes []float64
	}{
		{name: "NaN close", closes: withLast(math.NaN())},
		{name: "blank close", closes: withLast(0)},
		{name: "negative close", closes: withLast(-1)},
		{name: "infinite close mid series", closes: append(flat(7, 20), append([]float64{math.Inf(1)}, flat(7, 20)...)...)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := newScanner(store.NewMemorySignalStore())

			res := sc.Scan(context.Background(), []Input{
				{Asset: liquid("FLAT3", 20, contracts.Metrics{NetMargin: 5}), History: history(tt.closes...)},
			})

			require.True(t, res.Success)
			assert.Equal(t, 1, res.Analyzed)
			assert.Equal(t, 1, res.BadHistory)
			assert.Zero(t, res.Failed)
			assert.Empty(t, res.Signals)
		})
	}
}

func TestScan_BadCloseKeepsDeepValue(t *testing.T) {
	sc := newScanner(store.NewMemorySignalStore())
	closes := flat(15, 10)
	closes[3] = math.NaN()

	res := sc.Scan(context.Background(), []Input{
		{Asset: liquid("CHEAP3", 10, contracts.Metrics{PE: 4, PB: 0.5, NetMargin: 5}), History: history(closes...)},
	})

	require.True(t, res.Success)
	assert.Equal(t, 1, res.BadHistory)
	assert.Equal(t, []contracts.SignalType{contracts.SignalDeepValue}, types(res.Signals))
}

func TestScan_DeepValue(t *testing.T) {
	sc := newScanner(store.NewMemorySignalStore())

	// EPS 2.5, BVPS 20 → Graham ≈ 33.54; 10 is ~30% of it
	res := sc.Scan(context.Background(), []Input{
		{Asset: liquid("CHEAP3", 10, contracts.Metrics{PE: 4, PB: 0.5}), History: history(flat(5, 10)...)},
		{Asset: liquid("FAIR3", 10, contracts.Metrics{PE: 15, PB: 1.5}), History: history(flat(5, 10)...)},
	})

	require.True(t, res.Success)
	require.Len(t, res.Signals, 1)
	assert.Equal(t, "CHEAP3", res.Signals[0].Ticker)
	assert.Equal(t, contracts.SignalDeepValue, res.Signals[0].Type)
	assert.Equal(t, contracts.ProfileModerate, res.Signals[0].Profile)
	assert.InDelta(t, 0.30, res.Signals[0].Value, 0.01)
}

func TestScan_SupportZone(t *testing.T) {
	sc := newScanner(store.NewMemorySignalStore())

	closes := flat(250, 12)
	closes[100] = 10 // 52-week low
	closes[249] = 10.3

	res := sc.Scan(context.Background(), []Input{
		{Asset: liquid("FLOOR3", 10.3, contracts.Metrics{NetMargin: 8, DividendYield: 6}), History: history(closes...)},
		{Asset: liquid("NOYLD3", 10.3, contracts.Metrics{NetMargin: 8, DividendYield: 3}), History: history(closes...)},
		{Asset: liquid("SHORT3", 10.3, contracts.Metrics{NetMargin: 8, DividendYield: 6}), History: history(closes[1:]...)},
		{Asset: liquid("LOSS3", 10.3, contracts.Metrics{NetMargin: -1, DividendYield: 6}), History: history(closes...)},
	})

	require.True(t, res.Success)
	support := make([]string, 0)
	for _, s := range res.Signals {
		if s.Type == contracts.SignalSupportZone {
			support = append(support, s.Ticker)
			assert.Equal(t, contracts.ProfileDefensive, s.Profile)
			assert.InDelta(t, 3.0, s.Value, 1e-9)
		}
	}
	assert.Equal(t, []string{"FLOOR3"}, support)
}

func TestScan_Dedup(t *testing.T) {
	st := store.NewMemorySignalStore()
	inputs := []Input{
		{Asset: liquid("CHEAP3", 10, contracts.Metrics{PE: 4, PB: 0.5}), History: history(declining(15, 24, 1)...)},
	}

	first := newScanner(st).Scan(context.Background(), inputs)
	require.True(t, first.Success)
	assert.ElementsMatch(t, []contracts.SignalType{contracts.SignalRSIOversold, contracts.SignalDeepValue}, types(first.Signals))

	second := newScanner(st).Scan(context.Background(), inputs)
	require.True(t, second.Success)
	assert.Zero(t, second.Created)
	assert.Equal(t, 2, second.Duplicates)

	later := newScanner(st, func(c *ScannerConfig) { c.Clock = fixedClock(now.Add(25 * time.Hour)) }).Scan(context.Background(), inputs)
	assert.Equal(t, 2, later.Created)
	assert.Len(t, st.All(), 4)
}

func TestScan_SkipsIgnoredAndDisqualified(t *testing.T) {
	sc := newScanner(store.NewMemorySignalStore(), func(c *ScannerConfig) { c.Ignored = []string{"IGN3"} })
	m := contracts.Metrics{PE: 4, PB: 0.5}
	bad := m
	bad.Disqualified = true

	res := sc.Scan(context.Background(), []Input{
		{Asset: liquid("IGN3", 10, m)},
		{Asset: liquid("DQ3", 10, bad)},
		{Asset: liquid("OK3", 10, m)},
	})

	require.True(t, res.Success)
	assert.Equal(t, 1, res.Analyzed)
	require.Len(t, res.Signals, 1)
	assert.Equal(t, "OK3", res.Signals[0].Ticker)
}

func TestScan_RecoversPerInstrument(t *testing.T) {
	sc := newScanner(store.NewMemorySignalStore())
	detect := sc.detector
	sc.detector = func(in Input, at time.Time) []contracts.QuantSignal {
		if in.Asset.Ticker == "BOOM3" {
			panic("corrupt history")
		}
		return detect(in, at)
	}

	m := contracts.Metrics{PE: 4, PB: 0.5}
	res := sc.Scan(context.Background(), []Input{
		{Asset: liquid("BOOM3", 10, m)},
		{Asset: liquid("OK3", 10, m)},
	})

	assert.True(t, res.Success)
	assert.Equal(t, 2, res.Analyzed)
	assert.Equal(t, 1, res.Failed)
	require.Len(t, res.Signals, 1)
	assert.Equal(t, "OK3", res.Signals[0].Ticker)
}
