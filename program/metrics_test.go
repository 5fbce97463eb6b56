package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDurationRing(t *testing.T) {
	r := newDurationRing(3)
	assert.Equal(t, durationStats{}, r.snapshot())
	for _, d := range []time.Duration{1, 5, 3, 2} {
		r.add(d * time.Millisecond)
	}
	s := r.snapshot()
	assert.Equal(t, 3, s.n)
	assert.Equal(t, 2*time.Millisecond, s.last)
	assert.Equal(t, 5*time.Millisecond, s.max)
	assert.Equal(t, 10*time.Millisecond/3, s.avg)
}

func TestRecomputeMetrics(t *testing.T) {
	m := newRecomputeMetrics(4)
	m.observe(time.Millisecond, 2, false)
	assert.Equal(t, snapshot{}, m.snapshot())

	m.enabled = true
	m.observe(time.Millisecond, 2, false)
	m.observe(3*time.Millisecond, 0, true)
	s := m.snapshot()
	assert.Equal(t, uint64(2), s.recomputes)
	assert.Equal(t, uint64(2), s.issues)
	assert.Equal(t, uint64(1), s.empty)
	assert.Equal(t, 2*time.Millisecond, s.latency.avg)
}
