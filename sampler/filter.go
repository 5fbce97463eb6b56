package sampler

import (
	"fmt"
	"math"
)

// Kind enumerates the supported filters.
type Kind int

const (
	KindTemperature Kind = iota
	KindTopK
	KindTopP
	KindMinP
)

var kindNames = [...]string{
	KindTemperature: "temperature",
	KindTopK:        "top_k",
	KindTopP:        "top_p",
	KindMinP:        "min_p",
}

var kindTitles = [...]string{
	KindTemperature: "Temperature",
	KindTopK:        "Top-K",
	KindTopP:        "Top-P",
	KindMinP:        "Min-P",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Title is the human readable name of the filter.
func (k Kind) Title() string {
	if k < 0 || int(k) >= len(kindTitles) {
		return k.String()
	}
	return kindTitles[k]
}

// ParseKind maps a filter name ("top_k", "min_p", ...) to its Kind.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return Kind(k), true
		}
	}
	return 0, false
}

// Kinds lists every filter kind in its default order.
func Kinds() []Kind {
	return []Kind{KindTemperature, KindTopK, KindTopP, KindMinP}
}

// Filter is one of TemperatureFilter, TopKFilter, TopPFilter or MinPFilter.
type Filter interface {
	Kind() Kind
	// Params lists the adjustable parameters with their current values.
	Params() []Param
	// WithParam returns a copy with the named parameter set (clamped to its range).
	WithParam(name string, value float64) Filter

	sealed()
}

// Param describes one adjustable parameter. Toggle parameters hold 0 or 1.
type Param struct {
	Name   string
	Label  string
	Value  float64
	Min    float64
	Max    float64
	Step   float64
	Toggle bool
}

// Clamp snaps v into [Min, Max].
func (p Param) Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return p.Min
	}
	if p.Toggle {
		if v > 0 {
			return 1
		}
		return 0
	}
	return math.Min(p.Max, math.Max(p.Min, v))
}

// Stepped returns the value moved by n steps and clamped.
func (p Param) Stepped(n int) float64 {
	if p.Toggle {
		if n == 0 {
			return p.Value
		}
		return 1 - p.Clamp(p.Value)
	}
	v := p.Value + float64(n)*p.Step
	// Snap to the step grid to avoid drift from repeated float addition.
	if p.Step > 0 {
		v = math.Round(v/p.Step) * p.Step
	}
	return p.Clamp(v)
}

// DefaultFilter returns the filter of the given kind with default parameters.
func DefaultFilter(k Kind) Filter {
	switch k {
	case KindTemperature:
		return TemperatureFilter{T: 1, Range: 0, Exponent: 1, SmoothingFactor: 0}
	case KindTopK:
		return TopKFilter{K: 40}
	case KindTopP:
		return TopPFilter{P: 0.95}
	case KindMinP:
		return MinPFilter{P: 0.05}
	}
	panic(fmt.Sprintf("unknown filter kind %d", int(k)))
}

func boolParam(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func findParam(params []Param, name string) (Param, bool) {
	for _, p := range params {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}
