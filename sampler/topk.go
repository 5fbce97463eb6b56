package sampler

import "math"

// TopKFilter keeps the K highest ranked tokens. K = 0 removes everything.
type TopKFilter struct {
	K int `mapstructure:"k"`
}

func (TopKFilter) Kind() Kind { return KindTopK }
func (TopKFilter) sealed()    {}

func (f TopKFilter) Params() []Param {
	return []Param{{Name: "k", Label: "k", Value: float64(f.K), Min: 0, Max: DefaultDisplayWidth, Step: 1}}
}

func (f TopKFilter) WithParam(name string, value float64) Filter {
	if name != "k" {
		return f
	}
	p := f.Params()[0]
	f.K = int(math.Round(p.Clamp(value)))
	return f
}

func (f TopKFilter) Clamp() TopKFilter {
	if f.K < 0 {
		f.K = 0
	}
	return f
}

func (f TopKFilter) apply(ws WorkingSet, width int) (WorkingSet, Frame, error) {
	out := ws.keep(func(i int, _ TokenID) bool { return i < f.K })
	frame := Frame{
		Kind:      KindTopK,
		Threshold: float64(f.K),
		In:        ws.Len(),
		Out:       out.Len(),
		HasCutoff: true,
		Cutoff:    Box{Left: float64(f.K) / float64(width), Height: 1},
	}
	frame.Bars = relativeBars(ws, width, func(tok TokenID) bool {
		_, ok := out.Probs[tok]
		return ok
	})
	return out, frame, nil
}
