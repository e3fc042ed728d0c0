package commands

import (
	"fmt"
	"io"
	"strings"
)

// Common output helpers so every command prints the same way.

func printHeader(w io.Writer, title string) {
	fmt.Fprintln(w)
	printDoubleSeparator(w)
	fmt.Fprintf(w, "  %s\n", title)
	printSeparator(w)
}

func printSeparator(w io.Writer) {
	fmt.Fprintln(w, strings.Repeat("─", 59))
}

func printDoubleSeparator(w io.Writer) {
	fmt.Fprintln(w, strings.Repeat("═", 59))
}

func printSuccess(w io.Writer, message string) {
	fmt.Fprintf(w, "✅ %s\n", message)
}

func printWarning(w io.Writer, message string) {
	fmt.Fprintf(w, "⚠️  %s\n", message)
}

func printKeyValue(w io.Writer, key, value string) {
	fmt.Fprintf(w, "   %-16s : %s\n", key, value)
}

// printTable prints left-aligned columns sized to their widest cell.
func printTable(w io.Writer, columns []string, rows [][]string) {
	widths := make([]int, len(columns))
	for i, col := range columns {
		widths[i] = len([]rune(col))
	}
	for _, row := range rows {
		for i, cell := range row {
			if n := len([]rune(cell)); i < len(widths) && n > widths[i] {
				widths[i] = n
			}
		}
	}

	printRow(w, columns, widths)
	total := 0
	for _, width := range widths {
		total += width + 2
	}
	fmt.Fprintln(w, strings.Repeat("─", max(total-2, 0)))
	for _, row := range rows {
		printRow(w, row, widths)
	}
}

func printRow(w io.Writer, values []string, widths []int) {
	for i, val := range values {
		if i == len(values)-1 {
			fmt.Fprintln(w, val)
			return
		}
		fmt.Fprintf(w, "%-*s  ", widths[i], val)
	}
	fmt.Fprintln(w)
}

func pct(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}
