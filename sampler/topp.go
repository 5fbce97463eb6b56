package sampler

// TopPFilter keeps the smallest prefix of ranked tokens whose cumulative probability
// exceeds P. The token that crosses P is kept.
type TopPFilter struct {
	P float64 `mapstructure:"p"`
}

func (TopPFilter) Kind() Kind { return KindTopP }
func (TopPFilter) sealed()    {}

func (f TopPFilter) Params() []Param {
	return []Param{{Name: "p", Label: "p", Value: f.P, Min: 0, Max: 1, Step: 0.01}}
}

func (f TopPFilter) WithParam(name string, value float64) Filter {
	if name != "p" {
		return f
	}
	f.P = f.Params()[0].Clamp(value)
	return f
}

func (f TopPFilter) Clamp() TopPFilter {
	f.P = f.Params()[0].Clamp(f.P)
	return f
}

func (f TopPFilter) apply(ws WorkingSet, width int) (WorkingSet, Frame, error) {
	frame := Frame{
		Kind:      KindTopP,
		Threshold: f.P,
		In:        ws.Len(),
		HasCutoff: true,
		Cutoff:    Box{Top: f.P, Width: 1, Height: 1 - f.P},
	}
	norm, err := ws.normalized()
	if err != nil {
		frame.Out = ws.Len()
		return ws, frame, err
	}

	w := 1 / float64(width)
	bars := make([]Bar, 0, 2*norm.Len())
	cumulative := 0.0
	out := norm.keep(func(i int, tok TokenID) bool {
		p := norm.Probs[tok]
		before := cumulative
		cumulative += p
		// p >= 1 keeps everything, even if rounding pushes the running sum past 1.
		kept := f.P >= 1 || before <= f.P
		left := float64(i) / float64(width)
		bars = append(bars,
			Bar{
				Box:   Box{Left: left, Top: before, Width: w, Height: p},
				Token: tok, Rank: i + 1, Kept: kept,
			},
			Bar{
				Box:   Box{Left: left, Top: before + p, Width: w, Height: 1 - before - p},
				Token: tok, Rank: i + 1, Kept: kept, Upper: true,
			},
		)
		return kept
	})
	frame.Bars = bars
	frame.Out = out.Len()
	return out, frame, nil
}
