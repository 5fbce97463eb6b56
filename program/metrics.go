package main

import (
	"time"
)

type durationRing struct {
	buf   []time.Duration
	idx   int
	count int
}

func newDurationRing(n int) *durationRing {
	if n < 1 {
		n = 1
	}
	return &durationRing{buf: make([]time.Duration, n)}
}

func (r *durationRing) add(d time.Duration) {
	r.buf[r.idx] = d
	r.idx++
	if r.idx >= len(r.buf) {
		r.idx = 0
	}
	if r.count < len(r.buf) {
		r.count++
	}
}

type durationStats struct {
	last time.Duration
	max  time.Duration
	avg  time.Duration
	n    int
}

func (r *durationRing) snapshot() durationStats {
	if r.count == 0 {
		return durationStats{}
	}
	var sum, longest time.Duration
	for i := 0; i < r.count; i++ {
		d := r.buf[i]
		sum += d
		longest = max(longest, d)
	}
	lastIdx := r.idx - 1
	if lastIdx < 0 {
		lastIdx = len(r.buf) - 1
	}
	return durationStats{
		last: r.buf[lastIdx],
		max:  longest,
		avg:  sum / time.Duration(r.count),
		n:    r.count,
	}
}

// recomputeMetrics is only touched from the bubbletea update loop.
type recomputeMetrics struct {
	enabled bool

	recomputes uint64
	issues     uint64
	empty      uint64
	latency    *durationRing
}

func newRecomputeMetrics(window int) *recomputeMetrics {
	return &recomputeMetrics{latency: newDurationRing(window)}
}

func (m *recomputeMetrics) observe(d time.Duration, issues int, empty bool) {
	if !m.enabled {
		return
	}
	m.recomputes++
	m.issues += uint64(issues)
	if empty {
		m.empty++
	}
	m.latency.add(d)
}

type snapshot struct {
	recomputes uint64
	issues     uint64
	empty      uint64
	latency    durationStats
}

func (m *recomputeMetrics) snapshot() snapshot {
	if !m.enabled {
		return snapshot{}
	}
	return snapshot{
		recomputes: m.recomputes,
		issues:     m.issues,
		empty:      m.empty,
		latency:    m.latency.snapshot(),
	}
}
