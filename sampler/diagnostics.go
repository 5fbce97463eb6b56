package sampler

// DefaultDisplayWidth is the number of bar slots in a filter chart.
// It matches the upper bound of the top-k parameter.
const DefaultDisplayWidth = 50

// Box is a rectangle in chart coordinates: fractions of the chart size, with Top
// measured from the upper edge.
type Box struct {
	Left, Top, Width, Height float64
}

// Bar is one rectangle of a filter chart.
type Bar struct {
	Box
	Token TokenID
	Rank  int
	// Kept is false when the filter removed the token.
	Kept bool
	// Upper marks the "mass above" bar of a top-p chart.
	Upper bool
}

// Frame is the diagnostic output of one filter application. It is only used
// for rendering and does not feed back into the pipeline.
type Frame struct {
	Kind   Kind
	Bars   []Bar
	Cutoff Box
	// HasCutoff is false for filters without a decision boundary (temperature).
	HasCutoff bool
	// Threshold is the filter's parameter in its own units (k, p, ...).
	Threshold float64
	In, Out   int
	Err       error
}

// Vertical reports whether the cutoff marker is a vertical line (top-k).
func (f Frame) Vertical() bool {
	return f.HasCutoff && f.Cutoff.Width == 0
}

// relativeBars renders one bar per token with height relative to the top token.
func relativeBars(ws WorkingSet, width int, kept func(TokenID) bool) []Bar {
	_, top, ok := ws.Top()
	if !ok {
		return nil
	}
	bars := make([]Bar, 0, len(ws.Tokens))
	for i, tok := range ws.Tokens {
		h := 0.0
		if top > 0 {
			h = ws.Probs[tok] / top
		}
		bars = append(bars, Bar{
			Box: Box{
				Left:   float64(i) / float64(width),
				Top:    1 - h,
				Width:  1 / float64(width),
				Height: h,
			},
			Token: tok,
			Rank:  i + 1,
			Kept:  kept(tok),
		})
	}
	return bars
}
