package main

import (
	"math"
	"strings"

	"github.com/dustin/go-humanize"
)

// formatPercent renders a probability as a percentage with three decimals.
func formatPercent(p float64) string {
	if math.IsNaN(p) {
		return "-"
	}
	return humanize.FormatFloat("#,###.###", 100*p) + "%"
}

// formatParam renders a parameter value with as many decimals as its step needs.
func formatParam(v, step float64) string {
	switch {
	case step >= 1:
		return humanize.FormatFloat("#.", v)
	case step >= 0.1:
		return humanize.FormatFloat("#.#", v)
	default:
		return humanize.FormatFloat("#.##", v)
	}
}

var eighths = []rune{' ', '▏', '▎', '▍', '▌', '▋', '▊', '▉'}

// hbar draws a horizontal bar filling frac of width cells.
func hbar(frac float64, width int) string {
	if width <= 0 {
		return ""
	}
	if math.IsNaN(frac) || frac < 0 {
		frac = 0
	}
	frac = min(1, frac)
	units := int(math.Round(frac * float64(width) * 8))
	full, rest := units/8, units%8
	var sb strings.Builder
	sb.WriteString(strings.Repeat("█", full))
	if rest > 0 {
		sb.WriteRune(eighths[rest])
		full++
	}
	sb.WriteString(strings.Repeat(" ", width-full))
	return sb.String()
}

// promptTitle renders a prompt label as a fill-in-the-blank sentence.
func promptTitle(label string) string {
	return label + " _____"
}
