package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintTable(t *testing.T) {
	var buf bytes.Buffer
	printTable(&buf, []string{"Ticker", "Score"}, [][]string{
		{"ITUB4", "82"},
		{"BBAS3", "7"},
	})

	want := "Ticker  Score\n" +
		strings.Repeat("─", 13) + "\n" +
		"ITUB4   82\n" +
		"BBAS3   7\n"
	assert.Equal(t, want, buf.String())
}

func TestPct(t *testing.T) {
	assert.Equal(t, "12.35%", pct(12.346))
	assert.Equal(t, "-3.00%", pct(-3))
}
