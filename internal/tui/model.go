// Package tui is an interactive terminal view of the dashboard: one
// selection, stepped with the arrow keys, redrawn through render.Build.
package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/JonMunkholm/popdash/internal/core"
	"github.com/JonMunkholm/popdash/internal/render"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	title  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	white  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	green  = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	red    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	alert  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	border = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("238")).Padding(0, 1)
)

const (
	nameWidth   = 16
	minBarWidth = 10
)

// Model is the bubbletea model. The zero value is not usable; call New.
type Model struct {
	ds      *core.Dataset
	builder render.Builder
	years   []int // most recent first
	sel     core.Selection

	dash *render.Dashboard
	err  error

	width    int
	height   int
	showHelp bool
}

// New returns a model showing sel.
func New(ds *core.Dataset, sel core.Selection, builder render.Builder) Model {
	m := Model{
		ds:      ds,
		builder: builder,
		years:   ds.Years(),
		sel:     sel,
		width:   80,
		height:  24,
	}
	m.rebuild()
	return m
}

// Selection returns the current selection.
func (m Model) Selection() core.Selection {
	return m.sel
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "left", "h":
		m.stepYear(1)
	case "right", "l":
		m.stepYear(-1)
	case "up", "k":
		m.stepTheme(-1)
	case "down", "j":
		m.stepTheme(1)
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

// stepYear moves through the descending year list; +1 is older. The ends
// do not wrap.
func (m *Model) stepYear(delta int) {
	i := slices.Index(m.years, m.sel.Year)
	next := i + delta
	if i < 0 || next < 0 || next >= len(m.years) {
		return
	}
	sel, err := m.sel.WithYear(m.ds, m.years[next])
	if err != nil {
		m.err = err
		return
	}
	m.sel = sel
	m.rebuild()
}

// stepTheme cycles through the theme list.
func (m *Model) stepTheme(delta int) {
	themes := core.ThemeNames()
	i := slices.Index(themes, m.sel.Theme)
	next := ((i+delta)%len(themes) + len(themes)) % len(themes)
	sel, err := m.sel.WithTheme(themes[next])
	if err != nil {
		m.err = err
		return
	}
	m.sel = sel
	m.rebuild()
}

func (m *Model) rebuild() {
	m.dash, m.err = m.builder.Build(m.ds, m.sel)
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(title.Render("US Population Dashboard"))
	b.WriteString("  ")
	b.WriteString(white.Render(fmt.Sprintf("%d", m.sel.Year)))
	b.WriteString(dim.Render(fmt.Sprintf("  theme: %s", m.sel.Theme)))
	b.WriteString("\n\n")

	if m.err != nil {
		msg := core.MapError(m.err)
		b.WriteString(alert.Render(fmt.Sprintf("%s (%s)", msg.Message, msg.Code)))
		b.WriteString("\n")
		b.WriteString(dim.Render(msg.Action))
		b.WriteString("\n\n")
		b.WriteString(m.footer())
		return b.String()
	}

	b.WriteString(m.bars())
	b.WriteString("\n")
	b.WriteString(m.migration())
	b.WriteString("\n")
	if m.showHelp {
		b.WriteString(border.Render(m.help()))
		b.WriteString("\n")
	}
	b.WriteString(m.footer())
	return b.String()
}

// rows returns how many table rows fit the terminal.
func (m Model) rows() int {
	n := m.height - 10
	if m.showHelp {
		n -= 7
	}
	return max(n, 3)
}

func (m Model) bars() string {
	ramp, err := render.RampFor(m.sel.Theme)
	if err != nil {
		return alert.Render(err.Error())
	}

	barWidth := max(m.width-nameWidth-16, minBarWidth)
	var b strings.Builder
	for _, row := range m.dash.Table.Top(m.rows()) {
		n := max(int(row.Share*float64(barWidth)), 1)
		bar := lipgloss.NewStyle().Foreground(lipgloss.Color(ramp.Hex(row.Share))).Render(strings.Repeat("█", n))

		fmt.Fprintf(&b, "%3d %-*s %s %s\n",
			row.Rank, nameWidth, truncate(row.StateName, nameWidth), bar, dim.Render(render.FormatPopulation(row.Population)))
	}
	return b.String()
}

func (m Model) migration() string {
	mig := m.dash.Migration
	if !mig.Comparable {
		return dim.Render("No earlier year to compare against.")
	}

	top := func(changes []core.PopulationChange, style lipgloss.Style) string {
		if len(changes) == 0 {
			return "-"
		}
		c := changes[0]
		return style.Render(fmt.Sprintf("%s %+d", c.StateName, c.Delta))
	}

	return fmt.Sprintf("%s %s   %s %s   %s",
		dim.Render("gain:"), top(mig.Gains, green),
		dim.Render("loss:"), top(mig.Losses, red),
		dim.Render(fmt.Sprintf("%s in, %s out", render.FormatShare(mig.InboundShare), render.FormatShare(mig.OutboundShare))),
	)
}

func (m Model) help() string {
	return strings.Join([]string{
		"←/h  older year",
		"→/l  newer year",
		"↑/k  previous theme",
		"↓/j  next theme",
		"?    toggle help",
		"q    quit",
	}, "\n")
}

func (m Model) footer() string {
	return dim.Render("←/→ year  ↑/↓ theme  ? help  q quit")
}

// Run starts the program on the terminal and returns the final selection.
func Run(ds *core.Dataset, sel core.Selection, builder render.Builder) (core.Selection, error) {
	final, err := tea.NewProgram(New(ds, sel, builder), tea.WithAltScreen()).Run()
	if err != nil {
		return sel, err
	}
	return final.(Model).Selection(), nil
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
