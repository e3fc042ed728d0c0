package scoring

// Config holds the hard thresholds of the pre-filter and the defensive
// eligibility gate. Score deltas are fixed constants below.
type Config struct {
	// Pre-filter
	MinPrice     float64 `yaml:"min_price" default:"1.0" validate:"gte=0"`
	MinLiquidity float64 `yaml:"min_liquidity" default:"200000" validate:"gte=0"`
	MinPE        float64 `yaml:"min_pe" default:"-50"`

	Equity EquityGate `yaml:"equity"`
	Fund   FundGate   `yaml:"fund"`

	// Workers bounds ScoreAll's fan-out
	Workers int `yaml:"workers" default:"8" validate:"gte=1"`
}

// EquityGate is the defensive eligibility gate for equities.
type EquityGate struct {
	MinLiquidity       float64  `yaml:"min_liquidity" default:"2000000" validate:"gte=0"`
	MinMarketCap       float64  `yaml:"min_market_cap" default:"2000000000" validate:"gte=0"`
	Sectors            []string `yaml:"sectors" default:"[\"Banks\",\"Utilities\",\"Sanitation\",\"Insurance\",\"Telecom\"]" validate:"min=1"`
	MinNetMargin       float64  `yaml:"min_net_margin" default:"5"`
	MaxNetDebtToEBITDA float64  `yaml:"max_net_debt_to_ebitda" default:"3" validate:"gt=0"`
	MinDividendYield   float64  `yaml:"min_dividend_yield" default:"5" validate:"gte=0"`
	MinPB              float64  `yaml:"min_pb" default:"0.3" validate:"gte=0"`
	MaxPB              float64  `yaml:"max_pb" default:"3" validate:"gtfield=MinPB"`
}

// FundGate is the defensive eligibility gate for income funds.
type FundGate struct {
	MinLiquidity     float64 `yaml:"min_liquidity" default:"1000000" validate:"gte=0"`
	MinUnitHolders   float64 `yaml:"min_unit_holders" default:"10000" validate:"gte=0"`
	MaxVacancy       float64 `yaml:"max_vacancy" default:"15" validate:"gte=0,lte=100"`
	MinDividendYield float64 `yaml:"min_dividend_yield" default:"8" validate:"gte=0"`
	MinPVP           float64 `yaml:"min_pvp" default:"0.80" validate:"gt=0"`
	MaxPVP           float64 `yaml:"max_pvp" default:"1.10" validate:"gtfield=MinPVP"`
}

// PerennialSectors are the sectors whose cash flows survive full cycles.
var PerennialSectors = []string{"Banks", "Utilities", "Sanitation", "Insurance", "Telecom"}

// DefaultConfig returns the production scoring thresholds.
func DefaultConfig() Config {
	return Config{
		MinPrice:     1.0,
		MinLiquidity: 200_000,
		MinPE:        -50,
		Equity: EquityGate{
			MinLiquidity:       2_000_000,
			MinMarketCap:       2_000_000_000,
			Sectors:            append([]string(nil), PerennialSectors...),
			MinNetMargin:       5,
			MaxNetDebtToEBITDA: 3,
			MinDividendYield:   5,
			MinPB:              0.3,
			MaxPB:              3.0,
		},
		Fund: FundGate{
			MinLiquidity:     1_000_000,
			MinUnitHolders:   10_000,
			MaxVacancy:       15,
			MinDividendYield: 8,
			MinPVP:           0.80,
			MaxPVP:           1.10,
		},
		Workers: 8,
	}
}

// Profile score bases
const (
	defensiveBase = 50.0
	moderateBase  = 50.0
	boldBase      = 45.0
	structBase    = 50.0
)

// Shared deltas
const (
	bonusLarge  = 15.0
	bonus       = 10.0
	bonusSmall  = 5.0
	malusLarge  = -15.0
	malus       = -10.0
	malusStrong = -20.0
)

// Threshold levels referenced by more than one scorer.
const (
	highROE          = 15.0
	veryHighROE      = 20.0
	lowROE           = 5.0
	highMargin       = 10.0
	lowLeverage      = 1.0
	highLeverage     = 3.0
	highDebtToEquity = 2.0
	growth           = 10.0
	strongGrowth     = 20.0
	cheapPE          = 10.0
	fairPE           = 15.0
	expensivePE      = 25.0
	cheapEVToEBIT    = 8.0
	bigCap           = 10_000_000_000.0
	deepLiquidity    = 10_000_000.0
	thinLiquidity    = 1_000_000.0
	bigFundHolders   = 100_000.0
	lowVacancy       = 5.0
	highVacancy      = 15.0
	fallbackBenchYld = 6.0 // used when the macro context carries no benchmark yield
	thesisUpside     = 10.0
	thesisDownside   = -10.0
)
