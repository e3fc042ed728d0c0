// Package draft allocates scored instruments to risk profiles through a
// sequential competitive draft with sector quotas.
package draft

import (
	"sort"
	"strings"

	"github.com/wonny/quantengine/internal/contracts"
	"github.com/wonny/quantengine/internal/perfmath"
	"github.com/wonny/quantengine/pkg/logger"
)

// Engine runs the draft.
type Engine struct {
	config Config
	logger *logger.Logger
}

// NewEngine creates a draft engine
func NewEngine(config Config, log *logger.Logger) *Engine {
	return &Engine{
		config: config,
		logger: log.WithComponent("draft"),
	}
}

// pick is one drafted selection before ranking.
type pick struct {
	scored  *contracts.ScoredInstrument
	profile contracts.RiskProfile
	score   float64
	penalty float64
}

// Draft assigns instruments to profiles and returns the ranked items.
// Profiles draft in order; a ticker taken by an earlier profile is skipped.
func (e *Engine) Draft(scored []contracts.ScoredInstrument) []contracts.RankingItem {
	taken := newClaims()
	picks := make([]pick, 0, len(contracts.Profiles)*e.config.TargetPerProfile)
	perProfile := make(map[contracts.RiskProfile]int, len(contracts.Profiles))

	for _, profile := range contracts.Profiles {
		selected := e.draftProfile(profile, scored, taken)
		perProfile[profile] = len(selected)
		picks = append(picks, e.penalize(selected)...)
	}

	// Stable: equal scores keep profile order, then candidate order.
	sort.SliceStable(picks, func(i, j int) bool {
		return picks[i].score-picks[i].penalty > picks[j].score-picks[j].penalty
	})

	items := make([]contracts.RankingItem, 0, len(picks))
	for i, p := range picks {
		items = append(items, e.toItem(i+1, p))
	}

	e.logger.WithFields(map[string]interface{}{
		"candidates": len(scored),
		"selected":   len(items),
		"claimed":    taken.len(),
		"per_profile": map[string]int{
			string(contracts.ProfileDefensive): perProfile[contracts.ProfileDefensive],
			string(contracts.ProfileModerate):  perProfile[contracts.ProfileModerate],
			string(contracts.ProfileBold):      perProfile[contracts.ProfileBold],
		},
		"sector_cap": e.config.SectorCap(),
	}).Info("Draft completed")

	return items
}

// draftProfile walks one profile's candidates best-first.
func (e *Engine) draftProfile(profile contracts.RiskProfile, scored []contracts.ScoredInstrument, taken *claims) []pick {
	candidates := make([]pick, 0, len(scored))
	for i := range scored {
		s := &scored[i]
		score := s.Scores.For(profile)
		if score <= e.config.MinScore || e.config.IsBlackListed(s.Ticker()) {
			continue
		}
		candidates = append(candidates, pick{scored: s, profile: profile, score: score})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	sectors := newSectorCounter(e.config.SectorCap())
	selected := make([]pick, 0, e.config.TargetPerProfile)

	for _, c := range candidates {
		if len(selected) >= e.config.TargetPerProfile {
			break
		}
		sector := c.scored.Asset.Sector
		if sectors.full(sector) {
			continue
		}
		if !taken.claim(c.scored.Ticker()) {
			continue
		}
		sectors.add(sector)
		selected = append(selected, c)
	}

	return selected
}

// penalize docks every selection of a sector holding more than
// PenaltyFreeSlots picks within the profile. It only affects ranking.
func (e *Engine) penalize(selected []pick) []pick {
	counts := make(map[string]int)
	for _, p := range selected {
		counts[p.scored.Asset.Sector]++
	}

	for i := range selected {
		excess := counts[selected[i].scored.Asset.Sector] - e.config.PenaltyFreeSlots
		if excess <= 0 {
			continue
		}
		penalized := selected[i].score - e.config.PenaltyPerExcess*float64(excess)
		if penalized < e.config.PenaltyFloor {
			penalized = e.config.PenaltyFloor
		}
		if penalized < selected[i].score {
			selected[i].penalty = selected[i].score - penalized
		}
	}

	return selected
}

func (e *Engine) toItem(position int, p pick) contracts.RankingItem {
	s := p.scored
	return contracts.RankingItem{
		Position:    position,
		Ticker:      s.Ticker(),
		Sector:      s.Asset.Sector,
		AssetClass:  s.Asset.AssetClass,
		Profile:     p.profile,
		Score:       perfmath.Normalize(p.score - p.penalty),
		Penalty:     perfmath.Normalize(p.penalty),
		Action:      e.action(s.Valuation.Upside),
		Price:       perfmath.Normalize(s.Asset.Price),
		TargetPrice: s.Valuation.FairPrice,
		Thesis:      thesis(s),
	}
}

func (e *Engine) action(upside float64) contracts.Action {
	switch {
	case upside >= e.config.BuyUpside:
		return contracts.ActionBuy
	case upside <= e.config.SellDownside:
		return contracts.ActionSell
	default:
		return contracts.ActionWait
	}
}

func thesis(s *contracts.ScoredInstrument) string {
	points := make([]string, 0, len(s.Bullish)+len(s.Bearish))
	points = append(points, s.Bullish...)
	for _, b := range s.Bearish {
		points = append(points, "Risk: "+b)
	}
	return strings.Join(points, "; ")
}
