package draft

// claims accumulates the tickers taken by earlier profiles of one run.
// A ticker is claimed at most once.
type claims struct {
	taken map[string]bool
}

func newClaims() *claims {
	return &claims{taken: make(map[string]bool)}
}

// claim returns false when the ticker already belongs to another profile.
func (c *claims) claim(ticker string) bool {
	if c.taken[ticker] {
		return false
	}
	c.taken[ticker] = true
	return true
}

func (c *claims) len() int {
	return len(c.taken)
}

// sectorCounter enforces the per-profile sector cap.
type sectorCounter struct {
	cap    int
	counts map[string]int
}

func newSectorCounter(cap int) *sectorCounter {
	return &sectorCounter{cap: cap, counts: make(map[string]int)}
}

func (s *sectorCounter) full(sector string) bool {
	return s.counts[sector] >= s.cap
}

func (s *sectorCounter) add(sector string) {
	s.counts[sector]++
}
