package sampler

import (
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Stage is one slot of the filter chain.
type Stage struct {
	Filter  Filter
	Enabled bool
}

// Options tunes a pipeline run.
type Options struct {
	// DisplayWidth is the number of bar slots in each chart. Defaults to DefaultDisplayWidth.
	DisplayWidth int
}

// Outcome is the result of one recompute pass.
type Outcome struct {
	// Final holds the surviving tokens, ranked and normalized.
	Final WorkingSet
	// Frames has one entry per enabled stage, in chain order.
	Frames []Frame
	// Issues collects recoverable stage failures. Failed stages pass their input through.
	Issues []error
	// Empty is set when no tokens survived.
	Empty bool
}

// Entries returns the final ranking.
func (o Outcome) Entries() []Entry { return o.Final.Entries() }

// Run folds the enabled stages over dist in order and normalizes the survivors.
// The working set is re-ranked before every stage.
func Run(dist Distribution, stages []Stage, opts Options) Outcome {
	width := opts.DisplayWidth
	if width < 1 {
		width = DefaultDisplayWidth
	}

	var out Outcome
	ws := NewWorkingSet(dist)
	for _, stage := range stages {
		if !stage.Enabled || stage.Filter == nil {
			continue
		}
		next, frame, err := applyFilter(stage.Filter, ws.Ranked(), width)
		if err != nil {
			err = errors.Wrapf(err, "%s", stage.Filter.Kind())
			klog.V(2).Infof("stage %s skipped: %v", stage.Filter.Kind(), err)
			frame.Err = err
			out.Issues = append(out.Issues, err)
			next = ws
		} else {
			klog.V(2).Infof("stage %s: %d -> %d tokens", stage.Filter.Kind(), frame.In, frame.Out)
		}
		out.Frames = append(out.Frames, frame)
		ws = next
	}

	ws = ws.Ranked()
	if ws.Len() == 0 {
		out.Final = ws
		out.Empty = true
		return out
	}
	norm, err := ws.normalized()
	if err != nil {
		out.Issues = append(out.Issues, errors.Wrap(err, "final"))
		norm = ws
	}
	out.Final = norm
	return out
}

func applyFilter(f Filter, ws WorkingSet, width int) (WorkingSet, Frame, error) {
	switch f := f.(type) {
	case TemperatureFilter:
		return f.Clamp().apply(ws, width)
	case TopKFilter:
		return f.Clamp().apply(ws, width)
	case TopPFilter:
		return f.Clamp().apply(ws, width)
	case MinPFilter:
		return f.Clamp().apply(ws, width)
	}
	return ws, Frame{Kind: f.Kind()}, errors.Wrapf(ErrInvalidParameter, "unsupported filter %T", f)
}
