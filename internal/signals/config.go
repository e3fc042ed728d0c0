package signals

import (
	"slices"
	"time"
)

// ScannerConfig holds every scanner threshold. Nothing is read from package state.
type ScannerConfig struct {
	MinLiquidity         float64 `yaml:"min_liquidity" default:"500000" validate:"gte=0"`
	MinLiquidInstruments int     `yaml:"min_liquid_instruments" default:"1" validate:"gte=1"`

	RSIPeriod   int     `yaml:"rsi_period" default:"14" validate:"gte=2"`
	RSIOversold float64 `yaml:"rsi_oversold" default:"30" validate:"gt=0,lt=100"`
	MinMargin   float64 `yaml:"min_margin" default:"-20"` // net margin at or below this is "deeply negative"

	DeepValueRatio float64 `yaml:"deep_value_ratio" default:"0.70" validate:"gt=0,lte=1"`

	SupportWindow    int     `yaml:"support_window" default:"250" validate:"gte=2"`
	SupportProximity float64 `yaml:"support_proximity" default:"0.05" validate:"gte=0,lt=1"`
	SupportMinYield  float64 `yaml:"support_min_yield" default:"4" validate:"gte=0"`

	DedupWindow time.Duration `yaml:"dedup_window" default:"24h" validate:"gt=0"`
	Ignored     []string      `yaml:"ignored"`

	Clock func() time.Time `yaml:"-" json:"-"`
}

// DefaultScannerConfig returns the production scanner thresholds.
func DefaultScannerConfig() ScannerConfig {
	return ScannerConfig{
		MinLiquidity:         500_000,
		MinLiquidInstruments: 1,
		RSIPeriod:            14,
		RSIOversold:          30,
		MinMargin:            -20,
		DeepValueRatio:       0.70,
		SupportWindow:        250,
		SupportProximity:     0.05,
		SupportMinYield:      4,
		DedupWindow:          24 * time.Hour,
		Ignored:              []string{},
		Clock:                time.Now,
	}
}

func (c ScannerConfig) now() time.Time {
	if c.Clock == nil {
		return time.Now()
	}
	return c.Clock()
}

func (c ScannerConfig) ignored(ticker string) bool {
	return slices.Contains(c.Ignored, ticker)
}

// AuditorConfig holds the auditor thresholds.
type AuditorConfig struct {
	Horizon       time.Duration `yaml:"horizon" default:"168h" validate:"gt=0"`
	SafetyWindow  time.Duration `yaml:"safety_window" default:"720h" validate:"gtfield=Horizon"`
	HitThreshold  float64       `yaml:"hit_threshold" default:"2" validate:"gte=0"`
	MissThreshold float64       `yaml:"miss_threshold" default:"-2" validate:"lte=0"`

	Clock func() time.Time `yaml:"-" json:"-"`
}

// DefaultAuditorConfig returns the production auditor thresholds.
func DefaultAuditorConfig() AuditorConfig {
	return AuditorConfig{
		Horizon:       7 * 24 * time.Hour,
		SafetyWindow:  30 * 24 * time.Hour,
		HitThreshold:  2,
		MissThreshold: -2,
		Clock:         time.Now,
	}
}

func (c AuditorConfig) now() time.Time {
	if c.Clock == nil {
		return time.Now()
	}
	return c.Clock()
}
