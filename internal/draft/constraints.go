package draft

import (
	"math"
	"slices"
)

// Config defines the draft parameters.
type Config struct {
	TargetPerProfile int     `yaml:"target_per_profile" default:"10" validate:"gte=1"`
	MinScore         float64 `yaml:"min_score" default:"50" validate:"gte=0,lte=100"` // candidates must score strictly above
	MaxSectorShare   float64 `yaml:"max_sector_share" default:"0.20" validate:"gt=0,lte=1"`

	// Concentration penalty
	PenaltyFreeSlots int     `yaml:"penalty_free_slots" default:"2" validate:"gte=0"`
	PenaltyPerExcess float64 `yaml:"penalty_per_excess" default:"10" validate:"gte=0"`
	PenaltyFloor     float64 `yaml:"penalty_floor" default:"20" validate:"gte=0"`

	// Action thresholds on valuation upside (percent)
	BuyUpside    float64 `yaml:"buy_upside" default:"10"`
	SellDownside float64 `yaml:"sell_downside" default:"-10" validate:"ltfield=BuyUpside"`

	BlackList []string `yaml:"blacklist"`
}

// DefaultConfig returns the production draft parameters.
func DefaultConfig() Config {
	return Config{
		TargetPerProfile: 10,
		MinScore:         50,
		MaxSectorShare:   0.20,
		PenaltyFreeSlots: 2,
		PenaltyPerExcess: 10,
		PenaltyFloor:     20,
		BuyUpside:        10,
		SellDownside:     -10,
		BlackList:        []string{},
	}
}

// SectorCap is the most selections one sector may supply to a profile.
func (c Config) SectorCap() int {
	return int(math.Ceil(float64(c.TargetPerProfile) * c.MaxSectorShare))
}

// IsBlackListed checks if a ticker is excluded from every draft.
func (c Config) IsBlackListed(ticker string) bool {
	return slices.Contains(c.BlackList, ticker)
}
