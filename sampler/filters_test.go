package sampler

import (
	"fmt"
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopK(t *testing.T) {
	d := dist(t, "a", 0.1, "b", 0.4, "c", 0.2, "d", 0.3)
	ws := NewWorkingSet(d)
	for k := 0; k <= 5; k++ {
		out, frame, err := TopKFilter{K: k}.apply(ws, DefaultDisplayWidth)
		require.NoError(t, err)
		want := []TokenID{"b", "d", "c", "a"}[:min(k, 4)]
		assert.Equalf(t, want, tokens(out), "k=%d", k)
		assert.Lenf(t, out.Probs, len(want), "k=%d", k)
		assert.Len(t, frame.Bars, 4)
		assert.True(t, frame.Vertical())
		assert.InDelta(t, float64(k)/DefaultDisplayWidth, frame.Cutoff.Left, 1e-12)
	}
}

func TestTopKDoesNotRenormalize(t *testing.T) {
	ws := NewWorkingSet(dist(t, "a", 0.5, "b", 0.3, "c", 0.2))
	out, _, err := TopKFilter{K: 2}.apply(ws, DefaultDisplayWidth)
	require.NoError(t, err)
	assert.Equal(t, 0.5, out.Probs["a"])
	assert.Equal(t, 0.3, out.Probs["b"])
	// input untouched
	assert.Len(t, ws.Probs, 3)
}

func TestTopKBars(t *testing.T) {
	ws := NewWorkingSet(dist(t, "a", 0.5, "b", 0.25))
	_, frame, err := TopKFilter{K: 1}.apply(ws, 10)
	require.NoError(t, err)
	require.Len(t, frame.Bars, 2)
	assert.Equal(t, Box{Left: 0, Top: 0, Width: 0.1, Height: 1}, frame.Bars[0].Box)
	assert.InDelta(t, 0.5, frame.Bars[1].Height, 1e-12)
	assert.InDelta(t, 0.5, frame.Bars[1].Top, 1e-12)
	assert.InDelta(t, 0.1, frame.Bars[1].Left, 1e-12)
	assert.True(t, frame.Bars[0].Kept)
	assert.False(t, frame.Bars[1].Kept)
}

func TestTopPKeepsCrossingToken(t *testing.T) {
	ws := NewWorkingSet(dist(t, "a", 0.5, "b", 0.3, "c", 0.2))
	out, frame, err := TopPFilter{P: 0.7}.apply(ws, DefaultDisplayWidth)
	require.NoError(t, err)
	assert.Equal(t, []TokenID{"a", "b"}, tokens(out))
	assert.Equal(t, 2, frame.Out)
	assert.Len(t, frame.Bars, 6)
	assert.InDelta(t, 0.7, frame.Cutoff.Top, 1e-12)
	assert.InDelta(t, 0.3, frame.Cutoff.Height, 1e-12)
	assert.False(t, frame.Vertical())
}

func TestTopPEdges(t *testing.T) {
	tests := []struct {
		name string
		p    float64
		want []TokenID
	}{
		{"zero keeps top token", 0, []TokenID{"a"}},
		{"exact boundary is kept", 0.5, []TokenID{"a", "b"}},
		{"one keeps all", 1, []TokenID{"a", "b", "c"}},
	}
	ws := NewWorkingSet(dist(t, "a", 5.0, "b", 3.0, "c", 2.0))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := TopPFilter{P: tt.p}.apply(ws, DefaultDisplayWidth)
			require.NoError(t, err)
			assert.Equal(t, tt.want, tokens(out))
		})
	}
}

func TestTopPOneKeepsZeroTail(t *testing.T) {
	// Ten tenths sum to slightly more than 1 in floating point.
	pairs := make([]any, 0, 24)
	for i := range 10 {
		pairs = append(pairs, fmt.Sprintf("t%d", i), 0.1)
	}
	pairs = append(pairs, "y", 0.0, "z", 0.0)
	ws := NewWorkingSet(dist(t, pairs...))
	out, frame, err := TopPFilter{P: 1}.apply(ws, DefaultDisplayWidth)
	require.NoError(t, err)
	assert.Equal(t, 12, out.Len())
	assert.Equal(t, 12, frame.Out)
	assert.Equal(t, []TokenID{"y", "z"}, tokens(out)[10:])
}

func TestTopPNormalizesInput(t *testing.T) {
	ws := NewWorkingSet(dist(t, "a", 5.0, "b", 3.0, "c", 2.0))
	out, frame, err := TopPFilter{P: 0.9}.apply(ws, DefaultDisplayWidth)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, out.Probs["a"], 1e-12)
	lower, upper := frame.Bars[2], frame.Bars[3]
	assert.False(t, lower.Upper)
	assert.True(t, upper.Upper)
	assert.InDelta(t, 0.5, lower.Top, 1e-12)
	assert.InDelta(t, 0.3, lower.Height, 1e-12)
	assert.InDelta(t, 0.8, upper.Top, 1e-12)
	assert.InDelta(t, 0.2, upper.Height, 1e-12)
}

func TestTopPZeroSum(t *testing.T) {
	ws := NewWorkingSet(dist(t, "a", 0.0, "b", 0.0))
	out, _, err := TopPFilter{P: 0.5}.apply(ws, DefaultDisplayWidth)
	assert.True(t, errors.Is(err, ErrZeroSum))
	assert.Equal(t, []TokenID{"a", "b"}, tokens(out))
}

func TestMinP(t *testing.T) {
	ws := NewWorkingSet(dist(t, "a", 1.0, "b", 0.5, "c", 0.05))
	out, frame, err := MinPFilter{P: 0.1}.apply(ws, DefaultDisplayWidth)
	require.NoError(t, err)
	assert.Equal(t, []TokenID{"a", "b"}, tokens(out))
	assert.Len(t, frame.Bars, 3)
	assert.False(t, frame.Bars[2].Kept)
	assert.InDelta(t, 0.9, frame.Cutoff.Top, 1e-12)

	// a token exactly at the cutoff stays
	out, _, err = MinPFilter{P: 0.5}.apply(ws, DefaultDisplayWidth)
	require.NoError(t, err)
	assert.Equal(t, []TokenID{"a", "b"}, tokens(out))
}

func TestMinPEmpty(t *testing.T) {
	out, frame, err := MinPFilter{P: 0.5}.apply(WorkingSet{}, DefaultDisplayWidth)
	require.NoError(t, err)
	assert.Equal(t, 0, out.Len())
	assert.Empty(t, frame.Bars)
}

func TestTemperatureIdentity(t *testing.T) {
	ws := NewWorkingSet(dist(t, "a", 0.6, "b", 0.3, "c", 0.1))
	out, frame, err := TemperatureFilter{T: 1}.apply(ws, DefaultDisplayWidth)
	require.NoError(t, err)
	assert.Equal(t, []TokenID{"a", "b", "c"}, tokens(out))
	assert.InDelta(t, 2.0, out.Probs["a"]/out.Probs["b"], 1e-9)
	assert.InDelta(t, 3.0, out.Probs["b"]/out.Probs["c"], 1e-9)
	assert.False(t, frame.HasCutoff)
	assert.Len(t, frame.Bars, 3)
}

func TestTemperatureScaling(t *testing.T) {
	ws := NewWorkingSet(dist(t, "a", 0.5, "b", 0.25))
	out, _, err := TemperatureFilter{T: 0.5}.apply(ws, DefaultDisplayWidth)
	require.NoError(t, err)
	// relative to the top token {1, 1/2}, squared
	assert.InDelta(t, 1.0, out.Probs["a"], 1e-12)
	assert.InDelta(t, 0.25, out.Probs["b"], 1e-12)
	assert.Equal(t, 2, out.Len())
}

func largeDist(t *testing.T, n int, prob func(i int) float64) Distribution {
	t.Helper()
	order := make([]TokenID, n)
	probs := make(map[TokenID]float64, n)
	for i := range order {
		order[i] = fmt.Sprintf("tok%04d", i)
		probs[order[i]] = prob(i)
	}
	d, err := NewDistribution(order, probs)
	require.NoError(t, err)
	return d
}

func TestTemperatureLowOnLargeVocabulary(t *testing.T) {
	const n = 2000
	uniform := largeDist(t, n, func(int) float64 { return 1.0 / n })
	out := Run(uniform, enabled(TemperatureFilter{T: 0.01}), Options{})
	require.Empty(t, out.Issues)
	require.Equal(t, n, out.Final.Len())
	for _, tok := range out.Final.Tokens {
		assert.InDelta(t, 1.0/n, out.Final.Probs[tok], 1e-12)
	}

	// One token at twice the mass of the rest takes almost everything at T=0.01.
	skewed := largeDist(t, n, func(i int) float64 {
		if i == 7 {
			return 2
		}
		return 1
	})
	out = Run(skewed, enabled(TemperatureFilter{T: 0.01}), Options{})
	require.Empty(t, out.Issues)
	tok, p, ok := out.Final.Top()
	require.True(t, ok)
	assert.Equal(t, TokenID("tok0007"), tok)
	assert.InDelta(t, 1.0, p, 1e-9)
	assert.InDelta(t, 1.0, sum(out.Final.Probs), 1e-9)
}

func TestTemperatureSingleton(t *testing.T) {
	ws := NewWorkingSet(dist(t, "a", 0.3))
	out, _, err := TemperatureFilter{T: 3}.apply(ws, DefaultDisplayWidth)
	require.NoError(t, err)
	assert.Equal(t, 0.3, out.Probs["a"])
}

func TestTemperatureDynamic(t *testing.T) {
	// Uniform distribution has maximal entropy, so T' = T + r.
	uniform := NewWorkingSet(dist(t, "a", 1.0, "b", 1.0, "c", 1.0, "d", 1.0))
	f := TemperatureFilter{T: 1, Dynamic: true, Range: 0.5, Exponent: 1}
	_, frame, err := f.apply(uniform, DefaultDisplayWidth)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, frame.Threshold, 1e-9)

	// Range is capped at T.
	f = TemperatureFilter{T: 0.5, Dynamic: true, Range: 3, Exponent: 1}
	assert.InDelta(t, 1.0, f.Effective([]float64{0.25, 0.25, 0.25, 0.25}), 1e-9)
}

func TestTemperatureDynamicZero(t *testing.T) {
	// All mass on one token: entropy 0 and T = range gives T' = 0.
	ws := NewWorkingSet(dist(t, "a", 1.0, "b", 0.0))
	f := TemperatureFilter{T: 1, Dynamic: true, Range: 1, Exponent: 1}
	out, _, err := f.apply(ws, DefaultDisplayWidth)
	assert.True(t, errors.Is(err, ErrInvalidParameter))
	assert.Equal(t, 1.0, out.Probs["a"])
}

func TestTemperatureSmoothing(t *testing.T) {
	ws := NewWorkingSet(dist(t, "a", 0.5, "b", 0.25, "c", 0.25))
	f := TemperatureFilter{T: 1, Smoothing: true, SmoothingFactor: 2}
	out, _, err := f.apply(ws, DefaultDisplayWidth)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, out.Probs["a"], 1e-12)
	d := math.Log(0.5)
	assert.InDelta(t, math.Exp(-2*d*d), out.Probs["b"], 1e-12)

	// Without the toggle the factor is ignored.
	f.Smoothing = false
	out, _, err = f.apply(ws, DefaultDisplayWidth)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, out.Probs["b"], 1e-12)
}

func TestParamStepping(t *testing.T) {
	f := Filter(TopKFilter{K: 49})
	p := f.Params()[0]
	f = f.WithParam(p.Name, p.Stepped(5))
	assert.Equal(t, TopKFilter{K: 50}, f)

	tf := Filter(TemperatureFilter{T: 0.02})
	tf = tf.WithParam("t", tf.Params()[0].Stepped(-10))
	assert.InDelta(t, 0.01, tf.(TemperatureFilter).T, 1e-12)

	tf = tf.WithParam("dynamic", tf.Params()[1].Stepped(1))
	assert.True(t, tf.(TemperatureFilter).Dynamic)

	mp := Filter(MinPFilter{P: 0.05}).WithParam("p", 7)
	assert.Equal(t, MinPFilter{P: 1}, mp)
}
