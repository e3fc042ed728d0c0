package perfmath

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRSI(t *testing.T) {
	t.Run("monotonic decline is oversold", func(t *testing.T) {
		closes := make([]float64, 15)
		for i := range closes {
			closes[i] = 100 - float64(i)
		}
		assert.Less(t, RSI(closes, 14), 30.0)
	})

	t.Run("monotonic rise", func(t *testing.T) {
		closes := make([]float64, 15)
		for i := range closes {
			closes[i] = 100 + float64(i)
		}
		assert.Equal(t, 100.0, RSI(closes, 14))
	})

	t.Run("insufficient history is neutral", func(t *testing.T) {
		assert.Equal(t, 50.0, RSI([]float64{1, 2, 3}, 14))
	})

	t.Run("flat is neutral", func(t *testing.T) {
		closes := make([]float64, 20)
		for i := range closes {
			closes[i] = 10
		}
		assert.Equal(t, 50.0, RSI(closes, 14))
	})

	t.Run("equal gains and losses", func(t *testing.T) {
		closes := []float64{10, 11, 10, 11, 10, 11, 10, 11, 10, 11, 10, 11, 10, 11, 10}
		assert.InDelta(t, 50.0, RSI(closes, 14), 1e-9)
	})

	t.Run("uses most recent window", func(t *testing.T) {
		closes := []float64{500, 1}
		for i := 0; i < 14; i++ {
			closes = append(closes, 1+float64(i+1))
		}
		assert.Equal(t, 100.0, RSI(closes, 14))
	})
}

func TestLowestClose(t *testing.T) {
	closes := []float64{5, 1, 8, 7, 6}
	assert.Equal(t, 6.0, LowestClose(closes, 3))
	assert.Equal(t, 1.0, LowestClose(closes, 5))
	assert.Equal(t, 0.0, LowestClose(closes, 6))
}
