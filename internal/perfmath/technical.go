package perfmath

// RSI computes the simple-average Relative Strength Index over the last period
// changes of closes (oldest first). Returns the neutral 50 when there are fewer
// than period+1 closes or no movement at all.
func RSI(closes []float64, period int) float64 {
	if period <= 0 || len(closes) < period+1 {
		return 50.0
	}

	window := closes[len(closes)-period-1:]

	var gains, losses float64
	for i := 1; i < len(window); i++ {
		change := window[i] - window[i-1]
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}

	if gains == 0 && losses == 0 {
		return 50.0
	}
	if losses == 0 {
		return 100.0
	}

	rs := (gains / float64(period)) / (losses / float64(period))
	return Finite(100 - 100/(1+rs))
}

// LowestClose returns the minimum of the last window closes, or 0 when there are fewer.
func LowestClose(closes []float64, window int) float64 {
	if window <= 0 || len(closes) < window {
		return 0
	}
	low := closes[len(closes)-window]
	for _, c := range closes[len(closes)-window:] {
		if c < low {
			low = c
		}
	}
	return low
}
