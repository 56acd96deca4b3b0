package tui

import (
	"fmt"

	"sysconsole/internal/engine"
	"sysconsole/internal/sysquery"
	"sysconsole/internal/view"

	tea "github.com/charmbracelet/bubbletea"
)

func (m *MainModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	if m.confirm != nil {
		return m.handleConfirmKeys(msg)
	}
	if m.eng.Modal() != nil {
		return m.handleModalKeys(msg)
	}
	if m.filtering {
		return m.handleFilterKeys(msg)
	}
	return m.handleNormalKeys(msg)
}

func (m *MainModel) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		run := m.confirm.run
		m.confirm = nil
		if err := run(); err != nil {
			m.status = fmt.Sprintf("Action refused: %v", err)
			m.statusErr = true
		}
	case "n", "esc", "q":
		m.confirm = nil
	}
	return m, nil
}

func (m *MainModel) handleModalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	modal := m.eng.Modal()

	if msg.String() == "esc" {
		m.eng.CloseModal()
		return m, nil
	}

	switch modal.Phase {
	case engine.PhaseInput:
		if msg.String() == "enter" {
			m.eng.EditLockPath(m.pathInput.Value())
			m.eng.SubmitLockSearch()
			return m, nil
		}
		var cmd tea.Cmd
		m.pathInput, cmd = m.pathInput.Update(msg)
		m.eng.EditLockPath(m.pathInput.Value())
		return m, cmd

	case engine.PhaseResults:
		switch msg.String() {
		case "j", "down":
			m.eng.NavigateLockResults(1)
		case "k", "up":
			m.eng.NavigateLockResults(-1)
		case "x":
			if target, ok := modal.Selected(); ok {
				m.confirmKill(fmt.Sprintf("Kill lock holder %s (pid %d)?", target.Name, target.PID), func() error {
					return m.eng.KillLockProcess(target.PID)
				})
			}
		}
	}
	return m, nil
}

func (m *MainModel) handleFilterKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.filtering = false
		m.filterInput.Blur()
		return m, nil
	case "esc":
		m.filtering = false
		m.filterInput.Blur()
		m.filterInput.SetValue("")
		m.eng.ClearFilter(m.activeTab)
		return m, nil
	}

	// Every keystroke lands in the view on this same iteration.
	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	m.eng.SetFilter(m.activeTab, m.filterInput.Value())
	return m, cmd
}

func (m *MainModel) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// gg is jump-to-first; any other key after g falls through.
	if m.pendingG {
		m.pendingG = false
		if key == "g" {
			m.eng.Navigate(m.activeTab, view.AnchorFirst, 0)
			return m, nil
		}
	}

	switch key {
	case "q":
		m.quitting = true
		return m, tea.Quit

	case "1":
		m.switchTab(sysquery.KindProcess)
	case "2":
		m.switchTab(sysquery.KindService)
	case "3":
		m.switchTab(sysquery.KindConnection)
	case "tab":
		m.switchTab((m.activeTab + 1) % 3)
	case "shift+tab":
		m.switchTab((m.activeTab + 2) % 3)

	case "j", "down":
		m.eng.Navigate(m.activeTab, view.AnchorNone, 1)
	case "k", "up":
		m.eng.Navigate(m.activeTab, view.AnchorNone, -1)
	case "pgdown", "ctrl+d":
		m.eng.Navigate(m.activeTab, view.AnchorNone, view.PageSize)
	case "pgup", "ctrl+u":
		m.eng.Navigate(m.activeTab, view.AnchorNone, -view.PageSize)
	case "g":
		m.pendingG = true
	case "G", "end":
		m.eng.Navigate(m.activeTab, view.AnchorLast, 0)
	case "home":
		m.eng.Navigate(m.activeTab, view.AnchorFirst, 0)

	case "s":
		m.eng.CycleSort(m.activeTab)
	case "o":
		m.eng.ToggleOrder(m.activeTab)

	case "/":
		m.filtering = true
		m.filterInput.SetValue(m.currentFilter())
		m.filterInput.Focus()
	case "esc":
		m.eng.ClearFilter(m.activeTab)
		m.filterInput.SetValue("")
		m.status = ""

	case "r":
		m.eng.RefreshNow(m.activeTab)
	case "R":
		m.eng.RefreshAll()

	case "x":
		m.killSelected()
	case "t":
		m.toggleSelected()

	case "l":
		modal := m.eng.OpenLockModal()
		m.pathInput.SetValue(modal.Path)
		m.pathInput.Focus()
	}

	return m, nil
}

func (m *MainModel) currentFilter() string {
	switch m.activeTab {
	case sysquery.KindService:
		return m.eng.Services().Filter()
	case sysquery.KindConnection:
		return m.eng.Connections().Filter()
	default:
		return m.eng.Processes().Filter()
	}
}

// killSelected requests termination of the selected process; on the
// connection tab the owning process of the selected endpoint is the target.
func (m *MainModel) killSelected() {
	var pid int32
	var name string
	switch m.activeTab {
	case sysquery.KindProcess:
		r, ok := m.eng.Processes().Selected()
		if !ok {
			return
		}
		pid, name = r.PID, r.Name
	case sysquery.KindConnection:
		r, ok := m.eng.Connections().Selected()
		if !ok || r.PID <= 0 {
			return
		}
		pid, name = r.PID, r.ProcessName
	default:
		return
	}

	m.confirmKill(fmt.Sprintf("Kill %s (pid %d)?", name, pid), func() error {
		return m.eng.KillProcess(pid)
	})
}

// confirmKill either asks first or runs immediately, per configuration.
func (m *MainModel) confirmKill(prompt string, run func() error) {
	if !m.cfg.ConfirmKills {
		if err := run(); err != nil {
			m.status = fmt.Sprintf("Action refused: %v", err)
			m.statusErr = true
		}
		return
	}
	m.confirm = &confirmAction{prompt: prompt, run: run}
}

func (m *MainModel) toggleSelected() {
	if m.activeTab != sysquery.KindService {
		return
	}
	r, ok := m.eng.Services().Selected()
	if !ok {
		return
	}
	if err := m.eng.ToggleService(r.Name); err != nil {
		m.status = fmt.Sprintf("Action refused: %v", err)
		m.statusErr = true
	} else {
		m.status = fmt.Sprintf("Toggling %s...", r.Name)
		m.statusErr = false
	}
}
