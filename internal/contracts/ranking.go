package contracts

import "time"

// Action is the recommendation attached to a ranking item.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionWait Action = "WAIT"
	ActionSell Action = "SELL"
)

// RankingItem is one drafted selection. Immutable once the draft completes.
type RankingItem struct {
	Position    int         `json:"position"` // 1-based, dense
	Ticker      string      `json:"ticker"`
	Sector      string      `json:"sector"`
	AssetClass  AssetClass  `json:"asset_class"`
	Profile     RiskProfile `json:"profile"`
	Score       float64     `json:"score"`
	Penalty     float64     `json:"penalty,omitempty"` // concentration penalty already applied to Score
	Action      Action      `json:"action"`
	Price       float64     `json:"price"`
	TargetPrice float64     `json:"target_price"`
	Thesis      string      `json:"thesis"`
}

// Ranking is the ordered draft output of one run.
type Ranking struct {
	RunID     string        `json:"run_id"`
	Date      time.Time     `json:"date"`
	Items     []RankingItem `json:"items"`
	CreatedAt time.Time     `json:"created_at"`
}

// ByProfile returns the items drafted for p, preserving ranking order.
func (r *Ranking) ByProfile(p RiskProfile) []RankingItem {
	out := make([]RankingItem, 0)
	for _, item := range r.Items {
		if item.Profile == p {
			out = append(out, item)
		}
	}
	return out
}

// Contains reports whether ticker was drafted for any profile.
func (r *Ranking) Contains(ticker string) bool {
	for _, item := range r.Items {
		if item.Ticker == ticker {
			return true
		}
	}
	return false
}
