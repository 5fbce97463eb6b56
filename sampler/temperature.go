package sampler

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// TemperatureFilter rescales probabilities as p^(1/T). It never removes tokens.
//
// With Dynamic set, T is adapted to the entropy of the distribution:
// T' = (T - r) + 2r(H/Hmax)^Exponent with r = min(T, Range). With Smoothing set,
// every probability is re-anchored to the top token (scaled to 1) with a Gaussian falloff in
// log space scaled by SmoothingFactor.
type TemperatureFilter struct {
	T float64 `mapstructure:"t"`

	Dynamic  bool    `mapstructure:"dynamic"`
	Range    float64 `mapstructure:"range"`
	Exponent float64 `mapstructure:"exponent"`

	Smoothing       bool    `mapstructure:"smoothing"`
	SmoothingFactor float64 `mapstructure:"smoothing_factor"`
}

func (TemperatureFilter) Kind() Kind { return KindTemperature }
func (TemperatureFilter) sealed()    {}

func (f TemperatureFilter) Params() []Param {
	return []Param{
		{Name: "t", Label: "T", Value: f.T, Min: 0.01, Max: 5, Step: 0.01},
		{Name: "dynamic", Label: "dynamic", Value: boolParam(f.Dynamic), Max: 1, Step: 1, Toggle: true},
		{Name: "range", Label: "range", Value: f.Range, Min: 0, Max: 5, Step: 0.01},
		{Name: "exponent", Label: "exponent", Value: f.Exponent, Min: 0, Max: 5, Step: 0.01},
		{Name: "smoothing", Label: "smoothing", Value: boolParam(f.Smoothing), Max: 1, Step: 1, Toggle: true},
		{Name: "smoothing_factor", Label: "factor", Value: f.SmoothingFactor, Min: 0, Max: 10, Step: 0.01},
	}
}

func (f TemperatureFilter) WithParam(name string, value float64) Filter {
	p, ok := findParam(f.Params(), name)
	if !ok {
		return f
	}
	v := p.Clamp(value)
	switch name {
	case "t":
		f.T = v
	case "dynamic":
		f.Dynamic = v > 0
	case "range":
		f.Range = v
	case "exponent":
		f.Exponent = v
	case "smoothing":
		f.Smoothing = v > 0
	case "smoothing_factor":
		f.SmoothingFactor = v
	}
	return f
}

// Clamp returns the filter with every numeric parameter inside its range.
func (f TemperatureFilter) Clamp() TemperatureFilter {
	for _, p := range f.Params() {
		if !p.Toggle {
			f = f.WithParam(p.Name, p.Value).(TemperatureFilter)
		}
	}
	return f
}

// Effective returns the temperature that will be applied to a normalized set,
// after the dynamic adjustment if enabled.
func (f TemperatureFilter) Effective(normalized []float64) float64 {
	t := f.T
	if !f.Dynamic || len(normalized) < 2 {
		return t
	}
	r := math.Min(t, f.Range)
	maxEntropy := math.Log(float64(len(normalized)))
	h := stat.Entropy(normalized)
	return (t - r) + 2*r*math.Pow(h/maxEntropy, f.Exponent)
}

func (f TemperatureFilter) apply(ws WorkingSet, width int) (WorkingSet, Frame, error) {
	frame := Frame{Kind: KindTemperature, Threshold: f.T, In: ws.Len(), Out: ws.Len()}
	if ws.Len() < 2 {
		frame.Bars = relativeBars(ws, width, keepAll)
		return ws, frame, nil
	}
	norm, err := ws.normalized()
	if err != nil {
		return ws, frame, err
	}

	values := make([]float64, len(norm.Tokens))
	for i, tok := range norm.Tokens {
		values[i] = norm.Probs[tok]
	}
	t := f.Effective(values)
	frame.Threshold = t
	if t <= 0 || math.IsNaN(t) || math.IsInf(t, 0) {
		return ws, frame, errors.Wrapf(ErrInvalidParameter, "effective temperature %v", t)
	}

	// Scale relative to the top token so p^(1/T) cannot underflow to an all-zero
	// set at low T. The top token maps to 1; ratios are kept.
	top := floats.Max(values)
	inv := 1 / t
	out := norm.clone()
	for _, tok := range out.Tokens {
		out.Probs[tok] = math.Pow(out.Probs[tok]/top, inv)
	}

	if f.Smoothing && f.SmoothingFactor > 0 {
		for _, tok := range out.Tokens {
			d := math.Log(out.Probs[tok])
			out.Probs[tok] = math.Exp(-f.SmoothingFactor * d * d)
		}
	}

	// Reweighting may change the order; bars are drawn for the new ranking.
	out = out.Ranked()
	frame.Bars = relativeBars(out, width, keepAll)
	return out, frame, nil
}

func keepAll(TokenID) bool { return true }
