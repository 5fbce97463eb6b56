package main

import (
	"testing"

	"github.com/keilerkonzept/sampler-tui-demo/sampler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frameFor(t *testing.T, f sampler.Filter) sampler.Frame {
	t.Helper()
	d, err := sampler.NewDistribution(
		[]sampler.TokenID{"a", "b", "c", "d"},
		map[sampler.TokenID]float64{"a": 0.4, "b": 0.3, "c": 0.2, "d": 0.1},
	)
	require.NoError(t, err)
	out := sampler.Run(d, []sampler.Stage{{Filter: f, Enabled: true}}, sampler.Options{DisplayWidth: 8})
	require.Len(t, out.Frames, 1)
	return out.Frames[0]
}

func TestFrameSeriesTopK(t *testing.T) {
	series := frameSeries(frameFor(t, sampler.TopKFilter{K: 2}), 8, false)
	require.Len(t, series, 2)
	assert.InDeltaSlice(t, []float64{1, 0.75, 0.5, 0.25, 0, 0, 0, 0}, series[0], 1e-9)
	assert.Equal(t, []float64{1, 1, 0, 0, 0, 0, 0, 0}, series[1])
}

func TestFrameSeriesTopP(t *testing.T) {
	series := frameSeries(frameFor(t, sampler.TopPFilter{P: 0.6}), 8, false)
	require.Len(t, series, 2)
	assert.InDeltaSlice(t, []float64{0.4, 0.7, 0.9, 1, 0, 0, 0, 0}, series[0], 1e-9)
	for _, v := range series[1] {
		assert.InDelta(t, 0.6, v, 1e-9)
	}
}

func TestFrameSeriesMinP(t *testing.T) {
	series := frameSeries(frameFor(t, sampler.MinPFilter{P: 0.3}), 8, false)
	require.Len(t, series, 2)
	assert.InDelta(t, 0.3, series[1][0], 1e-9)
}

func TestFrameSeriesTemperature(t *testing.T) {
	series := frameSeries(frameFor(t, sampler.TemperatureFilter{T: 1}), 4, false)
	require.Len(t, series, 1)
	assert.InDeltaSlice(t, []float64{1, 0.75, 0.5, 0.25}, series[0], 1e-9)
}

func TestFrameSeriesLogScale(t *testing.T) {
	series := frameSeries(frameFor(t, sampler.TopKFilter{K: 4}), 4, true)
	assert.InDelta(t, 1, series[0][0], 1e-9)
	assert.InDelta(t, 1-0.60206/3, series[0][3], 1e-4)
	assert.Equal(t, 0.0, scaleValue(0.0001, true))
	assert.Nil(t, frameSeries(sampler.Frame{}, 0, false))
}
