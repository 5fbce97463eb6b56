package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/keilerkonzept/sampler-tui-demo/sampler"
	"github.com/olekukonko/tablewriter"
)

const reportBarWidth = 20

// writeReport prints the chain and the requested page of retained tokens as
// plain-text tables.
func writeReport(w io.Writer, res sampler.Result, stages []sampler.Stage) error {
	if _, err := fmt.Fprintf(w, "Prompt %d: %s\n\n", res.Index+1, promptTitle(res.Prompt.Label)); err != nil {
		return err
	}

	chain := tablewriter.NewWriter(w)
	chain.SetHeader([]string{"#", "Filter", "Enabled", "Params", "Tokens"})
	chain.SetAutoFormatHeaders(false)
	chain.SetAutoWrapText(false)
	frames := stageFrames(stages, res.Outcome.Frames)
	for i, st := range stages {
		enabled := "no"
		tokens := "-"
		if st.Enabled {
			enabled = "yes"
		}
		if f, ok := frames[i]; ok {
			tokens = fmt.Sprintf("%d -> %d", f.In, f.Out)
			if f.Err != nil {
				tokens = "skipped: " + f.Err.Error()
			}
		}
		chain.Append([]string{fmt.Sprint(i + 1), st.Filter.Kind().Title(), enabled, paramSummary(st.Filter, -1), tokens})
	}
	chain.Render()

	if res.Outcome.Empty {
		_, err := fmt.Fprintf(w, "\n%s\n", sampler.ErrEmptyResult)
		return err
	}

	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	top := topProb(res.Outcome)
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Rank", "Token", "Probability", ""})
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetColumnAlignment([]int{tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_LEFT})
	for i, e := range res.Page.Entries {
		table.Append([]string{
			fmt.Sprint(res.Page.Offset + i + 1),
			e.Token,
			formatPercent(e.Prob),
			hbar(e.Prob/top, reportBarWidth),
		})
	}
	table.SetCaption(true, fmt.Sprintf("page %d/%d, %d tokens", res.Page.Number, res.Page.TotalPages, res.Page.TotalItems))
	table.Render()
	return nil
}

// stageFrames maps stage indices to the frames of enabled stages.
func stageFrames(stages []sampler.Stage, frames []sampler.Frame) map[int]sampler.Frame {
	out := make(map[int]sampler.Frame, len(frames))
	next := 0
	for i, st := range stages {
		if !st.Enabled || st.Filter == nil {
			continue
		}
		if next >= len(frames) {
			break
		}
		out[i] = frames[next]
		next++
	}
	return out
}

// paramSummary lists a filter's parameters; the one at index selected is bracketed.
func paramSummary(f sampler.Filter, selected int) string {
	params := f.Params()
	parts := make([]string, 0, len(params))
	for i, p := range params {
		var v string
		if p.Toggle {
			v = "off"
			if p.Value > 0 {
				v = "on"
			}
		} else {
			v = formatParam(p.Value, p.Step)
		}
		s := p.Label + "=" + v
		if i == selected {
			s = "[" + s + "]"
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, " ")
}

func topProb(o sampler.Outcome) float64 {
	_, p, ok := o.Final.Top()
	if !ok || p <= 0 {
		return 1
	}
	return p
}
