package main

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/paginator"
	tui "github.com/charmbracelet/bubbletea"
	styles "github.com/charmbracelet/lipgloss"
	"github.com/keilerkonzept/sampler-tui-demo/sampler"
)

type model struct {
	width, height  int
	leftPaneWidth  int
	rightPaneWidth int
	chartWidth     int
	chartHeight    int

	logScale bool

	session *sampler.Session
	result  sampler.Result
	// param is the index of the selected parameter within the selected stage.
	param int

	list         list.Model
	listStyle    styles.Style
	listDelegate *list.DefaultDelegate
	pager        paginator.Model
	help         help.Model

	metrics *recomputeMetrics
}

func newModel(session *sampler.Session) *model {
	const (
		defaultWidth  = 80
		defaultHeight = 20
	)

	d := list.NewDefaultDelegate()
	d.Styles.SelectedTitle = styles.NewStyle().
		Border(styles.NormalBorder(), false, false, false, true).
		BorderForeground(borderColor).
		Foreground(selectedColor).
		Bold(true).
		Padding(0, 0, 0, 1)
	d.Styles.SelectedDesc = d.Styles.SelectedTitle.
		Bold(false)
	d.ShowDescription = true

	l := list.New(make([]list.Item, 0), d, defaultWidth/2-2, defaultHeight)
	l.Styles.NoItems = l.Styles.NoItems.
		Padding(0, 2)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)

	pager := paginator.New()
	pager.Type = paginator.Arabic

	metrics := newRecomputeMetrics(config.StatsWindow)
	metrics.enabled = config.StatsEnabled

	m := &model{
		logScale:     config.LogScale,
		session:      session,
		list:         l,
		listDelegate: &d,
		pager:        pager,
		help:         help.New(),
		metrics:      metrics,
	}
	m.resize(defaultWidth, defaultHeight)
	m.recompute()
	return m
}

func (m *model) Init() tui.Cmd {
	return nil
}

func (m *model) Update(msg tui.Msg) (tui.Model, tui.Cmd) {
	switch msg := msg.(type) {
	case tui.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case tui.KeyMsg:
		return m, m.handleKey(msg)
	}
	var cmd tui.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *model) handleKey(msg tui.KeyMsg) tui.Cmd {
	stage := m.list.Index()
	switch {
	case key.Matches(msg, keys.Quit):
		return tui.Quit
	case key.Matches(msg, keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize(m.width, m.height)
		return nil
	case key.Matches(msg, keys.Up):
		m.list.CursorUp()
		m.param = 0
		m.refreshList()
		return nil
	case key.Matches(msg, keys.Down):
		m.list.CursorDown()
		m.param = 0
		m.refreshList()
		return nil
	case key.Matches(msg, keys.MoveUp):
		m.list.Select(m.session.Move(stage, -1))
	case key.Matches(msg, keys.MoveDown):
		m.list.Select(m.session.Move(stage, 1))
	case key.Matches(msg, keys.Toggle):
		m.session.Toggle(stage)
	case key.Matches(msg, keys.NextParam):
		m.cycleParam(1)
		m.refreshList()
		return nil
	case key.Matches(msg, keys.PrevParam):
		m.cycleParam(-1)
		m.refreshList()
		return nil
	case key.Matches(msg, keys.Inc):
		m.stepParam(1)
	case key.Matches(msg, keys.Dec):
		m.stepParam(-1)
	case key.Matches(msg, keys.NextPage):
		if !m.session.NextPage() {
			return nil
		}
	case key.Matches(msg, keys.PrevPage):
		if !m.session.PrevPage() {
			return nil
		}
	case key.Matches(msg, keys.NextPrompt):
		m.session.Select(m.session.Selected() + 1)
	case key.Matches(msg, keys.PrevPrompt):
		m.session.Select(m.session.Selected() - 1)
	case key.Matches(msg, keys.Scale):
		m.logScale = !m.logScale
		return nil
	default:
		return nil
	}
	m.recompute()
	return nil
}

func (m *model) selectedStage() (sampler.Stage, bool) {
	i := m.list.Index()
	if i < 0 || i >= len(m.session.Stages) {
		return sampler.Stage{}, false
	}
	return m.session.Stages[i], true
}

func (m *model) cycleParam(delta int) {
	st, ok := m.selectedStage()
	if !ok {
		return
	}
	n := len(st.Filter.Params())
	if n == 0 {
		return
	}
	m.param = ((m.param+delta)%n + n) % n
}

func (m *model) stepParam(n int) {
	st, ok := m.selectedStage()
	if !ok {
		return
	}
	params := st.Filter.Params()
	if m.param >= len(params) {
		m.param = 0
	}
	p := params[m.param]
	m.session.SetFilter(m.list.Index(), st.Filter.WithParam(p.Name, p.Stepped(n)))
}

// recompute reruns the pipeline from scratch. It runs inside Update, so there is
// never more than one in flight and the latest input always wins.
func (m *model) recompute() {
	m.result = m.session.Recompute()
	m.metrics.observe(m.result.Elapsed, len(m.result.Outcome.Issues), m.result.Outcome.Empty)
	m.pager.TotalPages = m.result.Page.TotalPages
	m.pager.Page = m.result.Page.Number - 1
	m.refreshList()
}

func (m *model) refreshList() {
	frames := stageFrames(m.session.Stages, m.result.Outcome.Frames)
	items := make([]list.Item, len(m.session.Stages))
	for i, st := range m.session.Stages {
		item := stageItem{Stage: st, Position: i + 1, Param: -1}
		if i == m.list.Index() {
			item.Param = m.param
		}
		if f, ok := frames[i]; ok {
			item.Frame = &f
		}
		items[i] = item
	}
	m.list.SetItems(items)
}

func (m *model) resize(w, h int) {
	m.width, m.height = w, h
	m.leftPaneWidth, m.rightPaneWidth = computePaneWidths(w, config.ViewSplit)

	statsLines := 0
	if config.StatsEnabled {
		// title + 3 metric lines
		statsLines = 4
	}
	helpLines := 1
	if m.help.ShowAll {
		helpLines = 4
	}
	available := max(1, h-statsLines-helpLines)

	// Left: prompt title (2 lines) above the stage list.
	listHeight := max(1, available-2)
	m.list.SetSize(max(1, m.leftPaneWidth), listHeight)
	m.listStyle = styles.NewStyle().Width(max(1, m.leftPaneWidth)).Height(listHeight)
	m.help.Width = w

	// Right: chart box (border + label line) above the token table
	// (header + page rows + pager line).
	tableLines := config.PageSize + 2
	m.chartHeight = max(1, available-tableLines-3)
	m.chartWidth = max(1, m.rightPaneWidth-2)
}

func computePaneWidths(totalWidth int, splitPercent int) (left, right int) {
	if totalWidth <= 1 {
		return 1, 1
	}
	left = totalWidth * splitPercent / 100
	if left < 1 {
		left = 1
	}
	if left > totalWidth-1 {
		left = totalWidth - 1
	}
	right = totalWidth - left

	// Keep panes readable when the terminal is wide enough.
	const minPane = 18
	if totalWidth >= minPane*2 {
		if left < minPane {
			left = minPane
			right = totalWidth - left
		}
		if right < minPane {
			right = minPane
			left = totalWidth - right
		}
	}
	return max(1, left), max(1, right)
}

type stageItem struct {
	sampler.Stage
	Position int
	// Param is the selected parameter, -1 if the stage is not selected.
	Param int
	Frame *sampler.Frame
}

func (i stageItem) Title() string {
	box := "[ ]"
	if i.Enabled {
		box = "[x]"
	}
	title := fmt.Sprintf("%s %d. %s", box, i.Position, i.Filter.Kind().Title())
	if i.Frame != nil {
		if i.Frame.Err != nil {
			return title + "  skipped"
		}
		title += fmt.Sprintf("  %d→%d", i.Frame.In, i.Frame.Out)
	}
	return title
}

func (i stageItem) Description() string { return "    " + paramSummary(i.Filter, i.Param) }
func (i stageItem) FilterValue() string { return i.Filter.Kind().String() }

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Toggle, k.Inc, k.NextParam, k.NextPage, k.NextPrompt, k.Help}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.MoveUp, k.MoveDown},
		{k.Toggle, k.NextParam, k.PrevParam, k.Inc, k.Dec},
		{k.PrevPage, k.NextPage, k.PrevPrompt, k.NextPrompt},
		{k.Scale, k.Help, k.Quit},
	}
}

type keyMap struct {
	Up         key.Binding
	Down       key.Binding
	MoveUp     key.Binding
	MoveDown   key.Binding
	Toggle     key.Binding
	NextParam  key.Binding
	PrevParam  key.Binding
	Inc        key.Binding
	Dec        key.Binding
	NextPage   key.Binding
	PrevPage   key.Binding
	NextPrompt key.Binding
	PrevPrompt key.Binding
	Scale      key.Binding
	Help       key.Binding
	Quit       key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	MoveUp: key.NewBinding(
		key.WithKeys("shift+up", "K"),
		key.WithHelp("K", "move up"),
	),
	MoveDown: key.NewBinding(
		key.WithKeys("shift+down", "J"),
		key.WithHelp("J", "move down"),
	),
	Toggle: key.NewBinding(
		key.WithKeys(" ", "enter"),
		key.WithHelp("space", "on/off"),
	),
	NextParam: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next param"),
	),
	PrevParam: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("shift+tab", "prev param"),
	),
	Inc: key.NewBinding(
		key.WithKeys("right", "l", "+"),
		key.WithHelp("←/→", "adjust"),
	),
	Dec: key.NewBinding(
		key.WithKeys("left", "h", "-"),
		key.WithHelp("←/h", "decrease"),
	),
	NextPage: key.NewBinding(
		key.WithKeys("pgdown", "n"),
		key.WithHelp("n/p", "page"),
	),
	PrevPage: key.NewBinding(
		key.WithKeys("pgup", "p"),
		key.WithHelp("p", "prev page"),
	),
	NextPrompt: key.NewBinding(
		key.WithKeys("]"),
		key.WithHelp("[/]", "prompt"),
	),
	PrevPrompt: key.NewBinding(
		key.WithKeys("["),
		key.WithHelp("[", "prev prompt"),
	),
	Scale: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "log/lin"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q/ctrl+c", "quit"),
	),
}
