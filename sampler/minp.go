package sampler

// MinPFilter removes tokens whose probability is below P times the top probability.
type MinPFilter struct {
	P float64 `mapstructure:"p"`
}

func (MinPFilter) Kind() Kind { return KindMinP }
func (MinPFilter) sealed()    {}

func (f MinPFilter) Params() []Param {
	return []Param{{Name: "p", Label: "p", Value: f.P, Min: 0, Max: 1, Step: 0.01}}
}

func (f MinPFilter) WithParam(name string, value float64) Filter {
	if name != "p" {
		return f
	}
	f.P = f.Params()[0].Clamp(value)
	return f
}

func (f MinPFilter) Clamp() MinPFilter {
	f.P = f.Params()[0].Clamp(f.P)
	return f
}

func (f MinPFilter) apply(ws WorkingSet, width int) (WorkingSet, Frame, error) {
	frame := Frame{
		Kind:      KindMinP,
		Threshold: f.P,
		In:        ws.Len(),
		Out:       ws.Len(),
		HasCutoff: true,
		Cutoff:    Box{Top: 1 - f.P, Width: 1, Height: f.P},
	}
	_, top, ok := ws.Top()
	if !ok {
		return ws, frame, nil
	}
	cutoff := top * f.P
	out := ws.keep(func(_ int, tok TokenID) bool { return ws.Probs[tok] >= cutoff })
	frame.Out = out.Len()
	frame.Bars = relativeBars(ws, width, func(tok TokenID) bool { return ws.Probs[tok] >= cutoff })
	return out, frame, nil
}
