package main

import (
	"fmt"
	"strings"
	"time"

	styles "github.com/charmbracelet/lipgloss"
	"github.com/keilerkonzept/sampler-tui-demo/sampler"
)

func (m *model) View() string {
	left := styles.JoinVertical(styles.Left, m.promptView(), m.listStyle.Render(m.list.View()))
	right := styles.JoinVertical(styles.Left, m.chartView(), m.tokensView())
	view := styles.JoinHorizontal(styles.Top, left, right)

	var bottom []string
	if issues := m.result.Outcome.Issues; len(issues) > 0 {
		lines := make([]string, len(issues))
		for i, err := range issues {
			lines[i] = "WARN: " + err.Error()
		}
		bottom = append(bottom, errorFg.Render(strings.Join(lines, "\n")))
	}
	if config.StatsEnabled {
		bottom = append(bottom, m.statsView())
	}
	bottom = append(bottom, m.help.View(keys))
	return styles.JoinVertical(styles.Left, append([]string{view}, bottom...)...)
}

func (m *model) promptView() string {
	n := len(m.session.Prompts)
	header := fmt.Sprintf("PROMPT %d/%d", m.result.Index+1, n)
	title := truncate(promptTitle(m.result.Prompt.Label), m.leftPaneWidth-1)
	return selectedFg.Render(header) + "\n" + title
}

func (m *model) chartView() string {
	st, ok := m.selectedStage()
	frame, hasFrame := stageFrames(m.session.Stages, m.result.Outcome.Frames)[m.list.Index()]

	chart := ""
	status := "disabled"
	if ok && hasFrame {
		chart = renderFrame(frame, m.chartWidth, m.chartHeight, m.session.DisplayWidth, m.logScale)
		status = fmt.Sprintf("%d → %d tokens", frame.In, frame.Out)
		if frame.Err != nil {
			status = "skipped"
		}
	}
	if chart == "" {
		chart = emptyPlot(m.chartWidth, m.chartHeight)
	}

	name := "-"
	if ok {
		name = st.Filter.Kind().Title()
		if hasFrame && frame.HasCutoff {
			name += " @ " + formatParam(frame.Threshold, 0.01)
		} else if hasFrame && st.Filter.Kind() == sampler.KindTemperature {
			name += " T'=" + formatParam(frame.Threshold, 0.01)
		}
	}

	linColor, logColor := selectedFg, borderFg
	if m.logScale {
		linColor, logColor = borderFg, selectedFg
	}
	linLog := linColor.Render("LIN") + " " + logColor.Render("LOG")

	w := max(0, m.rightPaneWidth-2)
	leftLabel := name + "  " + borderFg.Render(status)
	gap := w - styles.Width(leftLabel) - len("LIN LOG")
	labels := " " + linLog
	if gap >= 2 {
		labels = leftLabel + strings.Repeat(" ", gap) + linLog
	}
	return plotStyle.Render(styles.JoinVertical(styles.Top, chart, labels))
}

func (m *model) tokensView() string {
	page := m.result.Page
	if m.result.Outcome.Empty {
		return errorFg.Render(" " + sampler.ErrEmptyResult.Error())
	}

	const (
		rankWidth = 4
		probWidth = 9
	)
	tokenWidth := 14
	barWidth := max(1, m.rightPaneWidth-rankWidth-tokenWidth-probWidth-4)
	top := topProb(m.result.Outcome)

	rows := make([]string, 0, len(page.Entries)+2)
	rows = append(rows, borderFg.Render(fmt.Sprintf("%*s %-*s %*s", rankWidth, "#", tokenWidth, "token", probWidth, "prob")))
	for i, e := range page.Entries {
		rows = append(rows, fmt.Sprintf("%*d %-*s %*s %s",
			rankWidth, page.Offset+i+1,
			tokenWidth, truncate(e.Token, tokenWidth),
			probWidth, formatPercent(e.Prob),
			selectedFg.Render(hbar(e.Prob/top, barWidth)),
		))
	}
	if line := m.pagerView(); line != "" {
		rows = append(rows, line)
	}
	return strings.Join(rows, "\n")
}

// pagerView is empty when everything fits on one page.
func (m *model) pagerView() string {
	page := m.result.Page
	if page.TotalPages <= 1 {
		return ""
	}
	prev, next := selectedFg, selectedFg
	if !page.HasPrev() {
		prev = borderFg
	}
	if !page.HasNext() {
		next = borderFg
	}
	return fmt.Sprintf(" %s  %s  %s  %s",
		prev.Render("‹ prev"),
		m.pager.View(),
		next.Render("next ›"),
		borderFg.Render(fmt.Sprintf("%d tokens", page.TotalItems)),
	)
}

func (m *model) statsView() string {
	snap := m.metrics.snapshot()
	lines := []string{
		"RECOMPUTE STATS",
		fmt.Sprintf("recomputes: %d (empty: %d, issues: %d)", snap.recomputes, snap.empty, snap.issues),
		fmt.Sprintf("latency last/avg/max: %s / %s / %s",
			formatMetricDuration(snap.latency.last),
			formatMetricDuration(snap.latency.avg),
			formatMetricDuration(snap.latency.max)),
		fmt.Sprintf("samples: %d", snap.latency.n),
	}
	return borderFg.Render(strings.Join(lines, "\n"))
}

func emptyPlot(w, h int) string {
	if w < 1 || h < 1 {
		return ""
	}
	spaces := strings.Repeat(" ", w)
	var sb strings.Builder
	sb.Grow((w + 1) * h)
	for i := 0; i < h; i++ {
		if i > 0 {
			sb.WriteRune('\n')
		}
		sb.WriteString(spaces)
	}
	return sb.String()
}

func formatMetricDuration(d time.Duration) string {
	if d <= 0 {
		return "0.000ms"
	}
	return fmt.Sprintf("%.3fms", float64(d)/float64(time.Millisecond))
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(r[:width-1]) + "…"
}
