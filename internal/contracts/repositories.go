package contracts

import (
	"context"
	"errors"
	"time"
)

// ErrDuplicateSignal is returned by a SignalStore when the (ticker, type, window)
// uniqueness key is already taken.
var ErrDuplicateSignal = errors.New("duplicate signal within dedup window")

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// SignalStore is the storage collaborator for QuantSignals. Create must enforce
// uniqueness of (ticker, type) within window atomically; callers never rely on a
// separate existence check.
type SignalStore interface {
	Create(ctx context.Context, signal QuantSignal, window time.Duration) error
	ListActive(ctx context.Context, createdAfter, createdBefore time.Time) ([]QuantSignal, error)
	Resolve(ctx context.Context, signal QuantSignal) error
}

// RankingStore persists completed rankings.
type RankingStore interface {
	SaveRanking(ctx context.Context, ranking *Ranking) error
	LatestRanking(ctx context.Context) (*Ranking, error)
}

// SnapshotStore persists quota series points.
type SnapshotStore interface {
	Append(ctx context.Context, snapshot PerformanceSnapshot) error
	Last(ctx context.Context, portfolioID string) (*PerformanceSnapshot, error)
	History(ctx context.Context, portfolioID string, from, to time.Time) ([]PerformanceSnapshot, error)
}

// QuoteSource is the market-data collaborator the auditor asks for current prices.
type QuoteSource interface {
	LatestPrice(ctx context.Context, ticker string) (float64, error)
}
