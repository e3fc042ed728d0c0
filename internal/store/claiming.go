package store

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/quantengine/internal/contracts"
	"github.com/wonny/quantengine/pkg/redis"
)

// ClaimingSignalStore guards Create with a Redis claim on (ticker, type) that
// lives for the dedup window, so concurrent scanners in different processes
// cannot both insert. The wrapped store stays the source of truth.
type ClaimingSignalStore struct {
	contracts.SignalStore
	claimer *redis.Claimer
}

// NewClaimingSignalStore wraps inner with a Redis claim guard
func NewClaimingSignalStore(inner contracts.SignalStore, claimer *redis.Claimer) *ClaimingSignalStore {
	return &ClaimingSignalStore{SignalStore: inner, claimer: claimer}
}

// Create claims the key, then delegates. A failed insert releases the claim.
func (s *ClaimingSignalStore) Create(ctx context.Context, signal contracts.QuantSignal, window time.Duration) error {
	key := redis.SignalClaimKey(signal.Ticker, string(signal.Type))

	ok, err := s.claimer.Claim(ctx, key, window)
	if err != nil {
		return fmt.Errorf("claim signal slot: %w", err)
	}
	if !ok {
		return contracts.ErrDuplicateSignal
	}

	if err := s.SignalStore.Create(ctx, signal, window); err != nil {
		if relErr := s.claimer.Release(ctx, key); relErr != nil {
			return fmt.Errorf("%w (release claim: %v)", err, relErr)
		}
		return err
	}
	return nil
}
