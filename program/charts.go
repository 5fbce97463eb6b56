package main

import (
	"math"

	styles "github.com/charmbracelet/lipgloss"
	plot "github.com/chriskim06/drawille-go"
	"github.com/keilerkonzept/sampler-tui-demo/sampler"
)

// logDecades is the number of decades shown on a log-scale chart.
const logDecades = 3

// frameSeries turns a diagnostic frame into plot series indexed by rank.
// The first series holds the bars, the second (if any) traces the cutoff.
//
// Top-p bars are drawn as the cumulative mass through each token, against the
// threshold p; the other filters draw heights relative to the top token.
func frameSeries(f sampler.Frame, points int, logScale bool) [][]float64 {
	if points < 1 {
		return nil
	}
	bars := make([]float64, points)
	for _, b := range f.Bars {
		i := b.Rank - 1
		if i < 0 || i >= points || b.Upper {
			continue
		}
		v := b.Height
		if f.Kind == sampler.KindTopP {
			v = b.Top + b.Height
		}
		bars[i] = scaleValue(v, logScale)
	}
	if !f.HasCutoff {
		return [][]float64{bars}
	}

	cutoff := make([]float64, points)
	for i := range cutoff {
		switch {
		case f.Vertical():
			// step down at the cutoff: 1 while inside the kept range
			if float64(i)/float64(points) < f.Cutoff.Left {
				cutoff[i] = 1
			}
		case f.Kind == sampler.KindTopP:
			cutoff[i] = scaleValue(f.Cutoff.Top, logScale)
		default:
			cutoff[i] = scaleValue(f.Cutoff.Height, logScale)
		}
	}
	return [][]float64{bars, cutoff}
}

func scaleValue(v float64, logScale bool) float64 {
	if !logScale {
		return v
	}
	if v <= 0 {
		return 0
	}
	return max(0, 1+math.Log10(v)/logDecades)
}

// renderFrame draws a frame on a braille canvas of the given size.
func renderFrame(f sampler.Frame, w, h, points int, logScale bool) string {
	series := frameSeries(f, points, logScale)
	if len(series) == 0 || w < 1 || h < 1 {
		return ""
	}
	var bars, cutoff plot.Color
	if styles.DefaultRenderer().HasDarkBackground() {
		bars, cutoff = plot.LightGray, plot.Red
	} else {
		bars, cutoff = plot.DimGray, plot.Black
	}
	p := plot.NewCanvas(w, h)
	p.NumDataPoints = points
	p.ShowAxis = false
	p.LineColors = []plot.Color{bars, cutoff}
	p.Fill(series)
	return p.String()
}
