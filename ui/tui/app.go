// Package tui is the interactive front end: one Bubble Tea model over the
// engine. Keys map to engine intents; engine events are applied here, on the
// update loop, so the tables only ever change between renders.
package tui

import (
	"context"
	"time"

	"sysconsole/internal/config"
	"sysconsole/internal/engine"
	"sysconsole/internal/sysquery"
	"sysconsole/ui/tui/components"
	"sysconsole/ui/tui/views"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
)

// MainModel is the Bubble Tea model acting as the controller over the engine.
type MainModel struct {
	eng *engine.Engine
	cfg config.Config

	activeTab sysquery.Kind

	spinner     spinner.Model
	filterInput textinput.Model
	pathInput   textinput.Model
	cpu         *components.CPUWidget

	// Physics for the sliding tab indicator
	spring     harmonica.Spring
	animCursor float64
	velocity   float64

	filtering bool
	pendingG  bool
	confirm   *confirmAction

	status    string
	statusErr bool

	width    int
	height   int
	quitting bool
}

// confirmAction is a destructive action awaiting a y/n answer.
type confirmAction struct {
	prompt string
	run    func() error
}

// Messages
type TickMsg time.Time
type AnimateMsg time.Time
type EngineMsg struct {
	Ev engine.Event
}

func InitialModel(eng *engine.Engine, cfg config.Config) MainModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	filter := textinput.New()
	filter.Placeholder = "filter"
	filter.CharLimit = 64

	path := textinput.New()
	path.Placeholder = "/path/to/file-or-folder"
	path.CharLimit = 512

	spring := harmonica.NewSpring(harmonica.FPS(60), 12.0, 0.9)

	return MainModel{
		eng:         eng,
		cfg:         cfg,
		activeTab:   startTab(cfg.StartTab),
		spinner:     s,
		filterInput: filter,
		pathInput:   path,
		cpu:         components.NewCPUWidget(40, 8),
		spring:      spring,
	}
}

func startTab(name string) sysquery.Kind {
	switch name {
	case "services":
		return sysquery.KindService
	case "connections":
		return sysquery.KindConnection
	default:
		return sysquery.KindProcess
	}
}

func (m *MainModel) Init() tea.Cmd {
	zone.NewGlobal()
	return tea.Batch(
		m.spinner.Tick,
		tickCmd(),
		animateCmd(),
		waitForEvent(m.eng),
	)
}

// Commands
func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func animateCmd() tea.Cmd {
	return tea.Tick(16*time.Millisecond, func(t time.Time) tea.Msg {
		return AnimateMsg(t)
	})
}

func waitForEvent(eng *engine.Engine) tea.Cmd {
	return func() tea.Msg {
		return EngineMsg{Ev: <-eng.Events()}
	}
}

func (m *MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case TickMsg:
		m.applyNotice(m.eng.Tick(time.Time(msg)))
		return m, tickCmd()

	case AnimateMsg:
		var v float64 = m.velocity
		m.animCursor, v = m.spring.Update(m.animCursor, float64(m.activeTab), v)
		m.velocity = v
		return m, animateCmd()

	case EngineMsg:
		m.applyNotice(m.eng.Apply(msg.Ev))
		return m, waitForEvent(m.eng)

	case tea.WindowSizeMsg:
		return m.handleWindowSizeMsg(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.MouseMsg:
		return m.handleMouseMsg(msg)
	}

	return m, nil
}

// applyNotice folds an engine notice into the UI: status line, chart sample.
func (m *MainModel) applyNotice(n engine.Notice) {
	if n.Status != "" {
		m.status = n.Status
		m.statusErr = n.IsError
	}
	for _, kind := range n.Refreshed {
		if kind != sysquery.KindProcess {
			continue
		}
		if snap, ok := m.eng.Cache().Processes(); ok {
			var total float64
			for _, r := range snap.Records {
				total += r.CPUPercent
			}
			m.cpu.Push(total)
		}
	}
}

func (m *MainModel) handleWindowSizeMsg(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	rows := msg.Height - 9
	m.eng.Processes().SetHeight(rows)
	m.eng.Services().SetHeight(rows)
	m.eng.Connections().SetHeight(rows)

	chartW := msg.Width/2 - 6
	if chartW > 10 {
		m.cpu.Resize(chartW, 8)
	}
	return m, nil
}

func (m *MainModel) handleMouseMsg(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionRelease || m.confirm != nil || m.eng.Modal() != nil {
		return m, nil
	}
	for i := range views.TabNames {
		if zone.Get(views.TabZone(i)).InBounds(msg) {
			m.switchTab(sysquery.Kind(i))
			return m, nil
		}
	}
	return m, nil
}

func (m *MainModel) switchTab(kind sysquery.Kind) {
	m.activeTab = kind
	m.filtering = false
	m.pendingG = false
}

func (m *MainModel) View() string {
	if m.quitting {
		return "Bye!\n"
	}

	props := views.Props{
		Width:       m.width,
		Height:      m.height,
		ActiveTab:   int(m.activeTab),
		AnimCursor:  m.animCursor,
		SpinnerView: m.spinner.View(),
		Filtering:   m.filtering,
		FilterView:  m.filterInput.View(),
		Status:      m.status,
		StatusErr:   m.statusErr,
		Stale:       m.activeStale(),
		Elevated:    m.eng.Elevated(),
	}

	if m.confirm != nil {
		return views.RenderConfirm(m.confirm.prompt, props)
	}
	if modal := m.eng.Modal(); modal != nil {
		return views.RenderLockModal(modal, m.pathInput.View(), props)
	}

	var table string
	switch m.activeTab {
	case sysquery.KindService:
		table = views.RenderServices(m.eng.Services(), props)
	case sysquery.KindConnection:
		table = views.RenderConnections(m.eng.Connections(), props)
	default:
		table = views.RenderProcesses(m.eng.Processes(), props)
	}

	sections := []string{
		views.RenderHeader(props),
		table,
	}
	if m.activeTab == sysquery.KindProcess && m.height > 24 {
		sections = append(sections, m.cpu.View())
	}
	sections = append(sections, views.RenderStatus(props))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *MainModel) activeStale() bool {
	switch m.activeTab {
	case sysquery.KindService:
		snap, ok := m.eng.Cache().Services()
		return ok && snap.Stale
	case sysquery.KindConnection:
		snap, ok := m.eng.Cache().Connections()
		return ok && snap.Stale
	default:
		snap, ok := m.eng.Cache().Processes()
		return ok && snap.Stale
	}
}

// Start wires the engine to a fresh program and blocks until quit.
func Start(eng *engine.Engine, cfg config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	eng.Start(ctx)

	m := InitialModel(eng, cfg)
	p := tea.NewProgram(
		&m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, err := p.Run()
	return err
}
