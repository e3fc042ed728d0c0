package dataset

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"
)

// FileQuotes serves latest closes from a price file, reloading it when the
// file's modification time changes.
type FileQuotes struct {
	path string

	mu      sync.Mutex
	modTime time.Time
	history History
}

// NewFileQuotes creates a quote source over the price file at path.
func NewFileQuotes(path string) *FileQuotes {
	return &FileQuotes{path: path}
}

// LatestPrice returns the last close of ticker in the current file.
func (q *FileQuotes) LatestPrice(ctx context.Context, ticker string) (float64, error) {
	history, err := q.load()
	if err != nil {
		return 0, err
	}
	return history.LatestPrice(ctx, ticker)
}

func (q *FileQuotes) load() (History, error) {
	info, err := os.Stat(q.path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", q.path, err)
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.history != nil && info.ModTime().Equal(q.modTime) {
		return q.history, nil
	}

	history, err := LoadPrices(q.path)
	if err != nil {
		return nil, err
	}
	q.history = history
	q.modTime = info.ModTime()
	return history, nil
}
