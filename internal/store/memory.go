package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/wonny/quantengine/internal/contracts"
)

// MemorySignalStore keeps signals in process. The dedup check and the insert
// happen under one lock, so Create is atomic for every caller of this store.
type MemorySignalStore struct {
	mu      sync.Mutex
	signals []contracts.QuantSignal
}

// NewMemorySignalStore creates an empty store
func NewMemorySignalStore() *MemorySignalStore {
	return &MemorySignalStore{signals: make([]contracts.QuantSignal, 0)}
}

// Create inserts the signal unless one of the same ticker and type was created
// less than window before it.
func (s *MemorySignalStore) Create(ctx context.Context, signal contracts.QuantSignal, window time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.signals {
		if existing.Ticker != signal.Ticker || existing.Type != signal.Type {
			continue
		}
		if signal.CreatedAt.Sub(existing.CreatedAt).Abs() < window {
			return contracts.ErrDuplicateSignal
		}
	}

	s.signals = append(s.signals, signal)
	return nil
}

// ListActive returns ACTIVE signals with createdAfter < CreatedAt <= createdBefore, oldest first.
func (s *MemorySignalStore) ListActive(ctx context.Context, createdAfter, createdBefore time.Time) ([]contracts.QuantSignal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]contracts.QuantSignal, 0)
	for _, sig := range s.signals {
		if sig.Status != contracts.StatusActive {
			continue
		}
		if sig.CreatedAt.After(createdAfter) && !sig.CreatedAt.After(createdBefore) {
			out = append(out, sig)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// Resolve stores the audit outcome. Only ACTIVE signals may be resolved.
func (s *MemorySignalStore) Resolve(ctx context.Context, signal contracts.QuantSignal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.signals {
		if s.signals[i].ID != signal.ID {
			continue
		}
		if s.signals[i].Status != contracts.StatusActive {
			return contracts.ErrAlreadyResolved
		}
		s.signals[i] = signal
		return nil
	}
	return contracts.ErrNotFound
}

// All returns a copy of every stored signal.
func (s *MemorySignalStore) All() []contracts.QuantSignal {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]contracts.QuantSignal, len(s.signals))
	copy(out, s.signals)
	return out
}

// MemoryRankingStore keeps the rankings of this process.
type MemoryRankingStore struct {
	mu       sync.RWMutex
	rankings []contracts.Ranking
}

// NewMemoryRankingStore creates an empty store
func NewMemoryRankingStore() *MemoryRankingStore {
	return &MemoryRankingStore{}
}

// SaveRanking appends a ranking.
func (s *MemoryRankingStore) SaveRanking(ctx context.Context, ranking *contracts.Ranking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *ranking
	cp.Items = append([]contracts.RankingItem(nil), ranking.Items...)
	s.rankings = append(s.rankings, cp)
	return nil
}

// LatestRanking returns the most recently saved ranking.
func (s *MemoryRankingStore) LatestRanking(ctx context.Context) (*contracts.Ranking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.rankings) == 0 {
		return nil, contracts.ErrNotFound
	}
	latest := s.rankings[len(s.rankings)-1]
	return &latest, nil
}

// MemorySnapshotStore keeps quota series per portfolio.
type MemorySnapshotStore struct {
	mu     sync.RWMutex
	series map[string][]contracts.PerformanceSnapshot
}

// NewMemorySnapshotStore creates an empty store
func NewMemorySnapshotStore() *MemorySnapshotStore {
	return &MemorySnapshotStore{series: make(map[string][]contracts.PerformanceSnapshot)}
}

// Append adds a point, replacing an existing point of the same date.
func (s *MemorySnapshotStore) Append(ctx context.Context, snapshot contracts.PerformanceSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	points := s.series[snapshot.PortfolioID]
	for i := range points {
		if points[i].Date.Equal(snapshot.Date) {
			points[i] = snapshot
			return nil
		}
	}
	points = append(points, snapshot)
	sort.SliceStable(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	s.series[snapshot.PortfolioID] = points
	return nil
}

// Last returns the latest point of a portfolio.
func (s *MemorySnapshotStore) Last(ctx context.Context, portfolioID string) (*contracts.PerformanceSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	points := s.series[portfolioID]
	if len(points) == 0 {
		return nil, contracts.ErrNotFound
	}
	last := points[len(points)-1]
	return &last, nil
}

// History returns the points with from <= Date <= to.
func (s *MemorySnapshotStore) History(ctx context.Context, portfolioID string, from, to time.Time) ([]contracts.PerformanceSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]contracts.PerformanceSnapshot, 0)
	for _, p := range s.series[portfolioID] {
		if !p.Date.Before(from) && !p.Date.After(to) {
			out = append(out, p)
		}
	}
	return out, nil
}
