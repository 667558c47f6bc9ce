package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"hopmap/internal/config"
	"hopmap/internal/domain"
	"hopmap/internal/syncclient"
)

// applyHandler is the click handler the apply button starts with
const applyHandler = "apply"

const (
	refreshRate  = 100 * time.Millisecond
	defaultWidth = 80
)

// Styles
var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	subtleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))

	paneStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)

	buttonStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("63"))

	doneButtonStyle = buttonStyle.
			Background(lipgloss.Color("42"))
)

type tickMsg time.Time

type resultMsg syncclient.Result

type submitErrMsg struct{ err error }

type model struct {
	topo    *config.Topology
	client  *syncclient.Client
	trigger *syncclient.Element
	spinner spinner.Model

	loads   domain.Snapshot
	keys    []domain.EdgeKey
	cursor  int
	minLoad int
	maxLoad int
	width   int

	last *syncclient.Result
	err  error
}

func newModel(topo *config.Topology, client *syncclient.Client, minLoad, maxLoad int) model {
	trigger := syncclient.NewElement(applyHandler)
	client.SetTrigger(trigger)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	loads := topo.InitialLoads()
	return model{
		topo:    topo,
		client:  client,
		trigger: trigger,
		spinner: s,
		loads:   loads,
		keys:    loads.Keys(),
		minLoad: minLoad,
		maxLoad: maxLoad,
		width:   defaultWidth,
	}
}

// currentConfiguration returns the loads as currently adjusted
func (m model) currentConfiguration() domain.Snapshot {
	return m.loads.Clone()
}

func (m model) Init() tea.Cmd {
	// Sync the backend with what is on screen without disturbing the button
	return tea.Batch(m.spinner.Tick, tick(), m.submit(true))
}

func tick() tea.Cmd {
	return tea.Tick(refreshRate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// submit posts the current configuration and waits for its result in a
// command goroutine. Submit itself runs now, so the button leaves Enabled
// before the next key is handled.
func (m model) submit(quiet bool) tea.Cmd {
	sub, err := m.client.Submit(m.currentConfiguration(), quiet)
	if err != nil {
		return func() tea.Msg { return submitErrMsg{err: err} }
	}
	return func() tea.Msg {
		return resultMsg(sub.Result())
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tickMsg:
		// Cooldown reversals happen on a timer; redraw to pick them up
		return m, tick()

	case resultMsg:
		res := syncclient.Result(msg)
		m.last = &res
		m.err = nil

	case submitErrMsg:
		m.err = msg.err
	}

	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.keys)-1 {
			m.cursor++
		}

	case "left", "h":
		m.adjust(-1, 0)
	case "right", "l":
		m.adjust(1, 0)
	case "[":
		m.adjust(0, -1)
	case "]":
		m.adjust(0, 1)

	case "enter", " ":
		// A click only does something while the button carries a handler
		if m.trigger.Clickable() {
			return m, m.submit(false)
		}
	}

	return m, nil
}

// adjust changes the loads of the selected edge within the allowed range
func (m *model) adjust(dForward, dReverse int) {
	if len(m.keys) == 0 {
		return
	}
	key := m.keys[m.cursor]
	load := m.loads[key]
	m.loads[key] = domain.NewEdgeLoad(
		clamp(load.Forward()+dForward, m.minLoad, m.maxLoad),
		clamp(load.Reverse()+dReverse, m.minLoad, m.maxLoad),
	)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("hopmap") + subtleStyle.Render("  "+m.client.Endpoint()) + "\n\n")

	var nodes strings.Builder
	for _, n := range m.topo.Nodes() {
		nodes.WriteString(fmt.Sprintf("%s  %-16s %s\n", n.ID, n.Name, subtleStyle.Render(n.Address)))
	}
	b.WriteString(paneStyle.Render(strings.TrimRight(nodes.String(), "\n")) + "\n")

	var edges strings.Builder
	edges.WriteString(subtleStyle.Render(fmt.Sprintf("  %-6s %8s %8s %6s", "edge", "forward", "reverse", "dist")) + "\n")
	for i, key := range m.keys {
		load := m.loads[key]
		dist := m.topo.LinkDistance(float64(m.width), domain.NewLinkDatum(key, load))
		line := fmt.Sprintf("%-6s %8d %8d %6.0f", key, load.Forward(), load.Reverse(), dist)
		if i == m.cursor {
			edges.WriteString(selectedStyle.Render("> "+line) + "\n")
		} else {
			edges.WriteString("  " + line + "\n")
		}
	}
	b.WriteString(paneStyle.Render(strings.TrimRight(edges.String(), "\n")) + "\n\n")

	b.WriteString(m.buttonView() + "  " + m.statusView() + "\n\n")

	if qr := m.topo.QRPayload(); qr != "" {
		b.WriteString(subtleStyle.Render(qr) + "\n")
	}
	b.WriteString(subtleStyle.Render("↑/↓ select • ←/→ forward • [/] reverse • enter apply • q quit"))

	return b.String()
}

func (m model) buttonView() string {
	switch {
	case m.client.State() == syncclient.StateSubmittedPendingAck:
		return buttonStyle.Render(m.spinner.View() + " Applying")
	case m.trigger.Done():
		return doneButtonStyle.Render("✓ Applied")
	default:
		return buttonStyle.Render("Apply")
	}
}

func (m model) statusView() string {
	if m.err != nil {
		return errorStyle.Render(m.err.Error())
	}
	if m.last == nil {
		return ""
	}

	mode := ""
	if m.last.Quiet {
		mode = " (sync)"
	}
	if !m.last.OK() {
		return errorStyle.Render(fmt.Sprintf("%s%s: %v", m.last.Outcome, mode, m.last.Err))
	}
	status := string(m.last.Outcome)
	if m.last.Reply != nil {
		status = m.last.Reply.Status
	}
	return okStyle.Render(status + mode)
}
