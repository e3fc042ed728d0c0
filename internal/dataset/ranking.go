package dataset

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"github.com/wonny/quantengine/internal/contracts"
)

type rankingRow struct {
	Position    int     `csv:"position"`
	Profile     string  `csv:"profile"`
	Ticker      string  `csv:"ticker"`
	Sector      string  `csv:"sector"`
	Score       float64 `csv:"score"`
	Penalty     float64 `csv:"penalty"`
	Action      string  `csv:"action"`
	Price       float64 `csv:"price"`
	TargetPrice float64 `csv:"target_price"`
	Thesis      string  `csv:"thesis"`
}

// WriteRanking writes the drafted items as CSV, in ranking order.
func WriteRanking(w io.Writer, items []contracts.RankingItem) error {
	rows := make([]rankingRow, 0, len(items))
	for _, item := range items {
		rows = append(rows, rankingRow{
			Position:    item.Position,
			Profile:     string(item.Profile),
			Ticker:      item.Ticker,
			Sector:      item.Sector,
			Score:       item.Score,
			Penalty:     item.Penalty,
			Action:      string(item.Action),
			Price:       item.Price,
			TargetPrice: item.TargetPrice,
			Thesis:      item.Thesis,
		})
	}

	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("failed to write ranking csv: %w", err)
	}
	return nil
}
