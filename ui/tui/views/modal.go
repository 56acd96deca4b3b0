package views

import (
	"fmt"
	"strings"

	"sysconsole/internal/engine"
	"sysconsole/ui/tui/styles"

	"github.com/charmbracelet/lipgloss"
)

// RenderLockModal draws the lock search overlay for whichever phase the
// workflow is in. pathView is the rendered text input for the path buffer.
func RenderLockModal(m *engine.LockModal, pathView string, props Props) string {
	var body string
	switch m.Phase {
	case engine.PhaseInput:
		body = lipgloss.JoinVertical(lipgloss.Left,
			"Find lock holders for a file or folder:",
			pathView,
			styles.HintStyle.Render("enter: search · esc: close · one path per line"),
		)
	case engine.PhaseScanning:
		body = lipgloss.JoinVertical(lipgloss.Left,
			props.SpinnerView+" scanning "+m.Path,
			fmt.Sprintf("%d files scanned, %d locked", m.Scanned, m.Found),
			styles.HintStyle.Render("esc: cancel"),
		)
	case engine.PhaseResults:
		var rows []string
		for i, r := range m.Results {
			line := fmt.Sprintf("%7d  %-24s %s", r.PID, truncate(r.Name, 24), truncate(r.Path, 36))
			if i == m.Cursor {
				line = styles.SelectedRowStyle.Render(line)
			}
			rows = append(rows, line)
		}
		if len(rows) == 0 {
			rows = []string{styles.HintStyle.Render("no lock holders found")}
		}
		body = lipgloss.JoinVertical(lipgloss.Left,
			fmt.Sprintf("%d files scanned, %d locked", m.FilesScanned, m.LocksFound),
			lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("%7s  %-24s %s", "PID", "NAME", "FILE")),
			strings.Join(rows, "\n"),
			styles.HintStyle.Render("j/k: move · x: kill holder · esc: close"),
		)
	}

	card := styles.CardStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Bold(true).Foreground(styles.Highlight).Render("LOCK SEARCH"),
		body,
	))
	return lipgloss.Place(props.Width, props.Height, lipgloss.Center, lipgloss.Center, card)
}

// RenderConfirm draws a yes/no confirmation overlay for a destructive action.
func RenderConfirm(prompt string, props Props) string {
	card := styles.CardStyle.BorderForeground(styles.Danger).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().Bold(true).Foreground(styles.Danger).Render("CONFIRM"),
			prompt,
			styles.HintStyle.Render("y: confirm · n/esc: cancel"),
		),
	)
	return lipgloss.Place(props.Width, props.Height, lipgloss.Center, lipgloss.Center, card)
}

// RenderStatus draws the bottom status bar.
func RenderStatus(props Props) string {
	hints := "1/2/3: tabs · j/k: move · g/G: first/last · s: sort · o: order · /: filter · r: refresh · x: kill · t: toggle · l: locks · q: quit"
	status := props.Status
	style := styles.StatusStyle
	if props.StatusErr {
		style = styles.StatusErrStyle
	}
	if status == "" {
		return styles.HintStyle.Render(hints)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		style.Render(status),
		styles.HintStyle.Render(hints),
	)
}
