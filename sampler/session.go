package sampler

import (
	"time"

	"k8s.io/klog/v2"
)

// Session owns the interactive state: prompt selection, the filter chain and the
// current page. It is not safe for concurrent use.
type Session struct {
	Prompts      []Prompt
	Stages       []Stage
	PageSize     int
	DisplayWidth int

	selected   int
	page       int
	totalPages int
}

// Result is everything a renderer needs after a recompute.
type Result struct {
	Prompt  Prompt
	Index   int
	Outcome Outcome
	Page    Page
	Elapsed time.Duration
}

// NewSession starts on the first prompt and page.
func NewSession(prompts []Prompt, stages []Stage) *Session {
	return &Session{
		Prompts:      prompts,
		Stages:       stages,
		PageSize:     DefaultPageSize,
		DisplayWidth: DefaultDisplayWidth,
		page:         1,
		totalPages:   1,
	}
}

// DefaultStages returns every filter kind with default parameters, in default order.
// Temperature and min-p start enabled.
func DefaultStages() []Stage {
	stages := make([]Stage, 0, len(Kinds()))
	for _, k := range Kinds() {
		stages = append(stages, Stage{
			Filter:  DefaultFilter(k),
			Enabled: k == KindTemperature || k == KindMinP,
		})
	}
	return stages
}

func (s *Session) Selected() int { return s.selected }

// Prompt returns the selected prompt.
func (s *Session) Prompt() Prompt {
	if len(s.Prompts) == 0 {
		return Prompt{}
	}
	return s.Prompts[s.selected]
}

// Select switches prompts. The index is clamped to the available prompts.
func (s *Session) Select(i int) {
	s.selected = min(max(0, i), max(0, len(s.Prompts)-1))
}

// Page returns the current 1-based page number.
func (s *Session) Page() int { return s.page }

// SetPage requests a page. It is clamped on the next recompute.
func (s *Session) SetPage(n int) { s.page = max(1, n) }

// NextPage advances unless already on the last page seen by the previous recompute.
func (s *Session) NextPage() bool {
	if s.page >= s.totalPages {
		return false
	}
	s.page++
	return true
}

// PrevPage goes back one page unless on the first.
func (s *Session) PrevPage() bool {
	if s.page <= 1 {
		return false
	}
	s.page--
	return true
}

// Toggle flips whether stage i takes part in the pipeline.
func (s *Session) Toggle(i int) {
	if i < 0 || i >= len(s.Stages) {
		return
	}
	s.Stages[i].Enabled = !s.Stages[i].Enabled
}

// SetFilter replaces the filter of stage i.
func (s *Session) SetFilter(i int, f Filter) {
	if i < 0 || i >= len(s.Stages) || f == nil {
		return
	}
	s.Stages[i].Filter = f
}

// Move shifts stage i by delta positions and returns its new index.
func (s *Session) Move(i, delta int) int {
	if i < 0 || i >= len(s.Stages) {
		return i
	}
	j := min(max(0, i+delta), len(s.Stages)-1)
	if j == i {
		return i
	}
	stage := s.Stages[i]
	if j > i {
		copy(s.Stages[i:j], s.Stages[i+1:j+1])
	} else {
		copy(s.Stages[j+1:i+1], s.Stages[j:i])
	}
	s.Stages[j] = stage
	return j
}

// Recompute runs the pipeline from the raw distribution of the selected prompt and
// returns the current page. The page number is clamped, not reset.
func (s *Session) Recompute() Result {
	start := time.Now()
	prompt := s.Prompt()
	outcome := Run(prompt.Dist, s.Stages, Options{DisplayWidth: s.DisplayWidth})
	page := Paginate(outcome.Entries(), s.page, s.PageSize)
	s.page = page.Number
	s.totalPages = page.TotalPages
	elapsed := time.Since(start)
	klog.V(1).Infof("recompute prompt=%d tokens=%d->%d page=%d/%d in %s",
		s.selected, prompt.Dist.Len(), page.TotalItems, page.Number, page.TotalPages, elapsed)
	return Result{
		Prompt:  prompt,
		Index:   s.selected,
		Outcome: outcome,
		Page:    page,
		Elapsed: elapsed,
	}
}
