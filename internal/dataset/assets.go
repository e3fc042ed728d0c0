package dataset

import (
	"fmt"
	"io"
	"strings"

	"github.com/wonny/quantengine/internal/contracts"
)

// assetRow is the flat CSV layout of one instrument with its metrics.
type assetRow struct {
	Ticker     string  `csv:"ticker"`
	AssetClass string  `csv:"asset_class"`
	Sector     string  `csv:"sector"`
	Price      float64 `csv:"price"`
	Currency   string  `csv:"currency,omitempty"`

	PE              float64 `csv:"pe,omitempty"`
	PB              float64 `csv:"pb,omitempty"`
	DividendYield   float64 `csv:"dividend_yield,omitempty"`
	ROE             float64 `csv:"roe,omitempty"`
	NetMargin       float64 `csv:"net_margin,omitempty"`
	NetDebtToEBITDA float64 `csv:"net_debt_to_ebitda,omitempty"`
	DebtToEquity    float64 `csv:"debt_to_equity,omitempty"`
	Liquidity       float64 `csv:"liquidity,omitempty"`
	MarketCap       float64 `csv:"market_cap,omitempty"`
	RevenueGrowth   float64 `csv:"revenue_growth,omitempty"`
	EVToEBIT        float64 `csv:"ev_to_ebit,omitempty"`

	BookValuePerUnit float64 `csv:"book_value_per_unit,omitempty"`
	UnitHolders      float64 `csv:"unit_holders,omitempty"`
	Vacancy          float64 `csv:"vacancy,omitempty"`
	FundType         string  `csv:"fund_type,omitempty"`

	Disqualified bool `csv:"disqualified,omitempty"`
}

func (r assetRow) asset() (contracts.Asset, error) {
	ticker := strings.ToUpper(strings.TrimSpace(r.Ticker))
	if ticker == "" {
		return contracts.Asset{}, fmt.Errorf("missing ticker")
	}

	class := contracts.AssetClass(strings.ToUpper(strings.TrimSpace(r.AssetClass)))
	switch class {
	case "":
		class = contracts.AssetEquity
	case contracts.AssetEquity, contracts.AssetREITFund:
	default:
		return contracts.Asset{}, fmt.Errorf("%s: unknown asset class %q", ticker, r.AssetClass)
	}

	fundType := contracts.FundType(strings.ToUpper(strings.TrimSpace(r.FundType)))
	switch fundType {
	case "", contracts.FundPaper, contracts.FundBrick, contracts.FundHybrid:
	default:
		return contracts.Asset{}, fmt.Errorf("%s: unknown fund type %q", ticker, r.FundType)
	}

	return contracts.Asset{
		Instrument: contracts.Instrument{
			Ticker:     ticker,
			AssetClass: class,
			Sector:     strings.TrimSpace(r.Sector),
			Price:      r.Price,
			Currency:   strings.ToUpper(strings.TrimSpace(r.Currency)),
		},
		Metrics: contracts.Metrics{
			PE:               r.PE,
			PB:               r.PB,
			DividendYield:    r.DividendYield,
			ROE:              r.ROE,
			NetMargin:        r.NetMargin,
			NetDebtToEBITDA:  r.NetDebtToEBITDA,
			DebtToEquity:     r.DebtToEquity,
			Liquidity:        r.Liquidity,
			MarketCap:        r.MarketCap,
			RevenueGrowth:    r.RevenueGrowth,
			EVToEBIT:         r.EVToEBIT,
			BookValuePerUnit: r.BookValuePerUnit,
			UnitHolders:      r.UnitHolders,
			Vacancy:          r.Vacancy,
			FundType:         fundType,
			Disqualified:     r.Disqualified,
		}.Normalize(),
	}, nil
}

// ReadAssets parses the instrument universe. Empty metric cells read as zero.
func ReadAssets(r io.Reader) ([]contracts.Asset, error) {
	rows, err := unmarshal[assetRow](r, "assets")
	if err != nil {
		return nil, err
	}

	assets := make([]contracts.Asset, 0, len(rows))
	seen := make(map[string]int, len(rows))
	for i, row := range rows {
		asset, err := row.asset()
		if err != nil {
			return nil, fmt.Errorf("assets row %d: %w", i+2, err)
		}
		if prev, dup := seen[asset.Ticker]; dup {
			return nil, fmt.Errorf("assets row %d: %s already defined on row %d", i+2, asset.Ticker, prev)
		}
		seen[asset.Ticker] = i + 2
		assets = append(assets, asset)
	}
	return assets, nil
}

// LoadAssets reads the universe file at path.
func LoadAssets(path string) ([]contracts.Asset, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadAssets(f)
}
