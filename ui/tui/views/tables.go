package views

import (
	"fmt"
	"strings"

	"sysconsole/internal/sysquery"
	"sysconsole/internal/view"
	"sysconsole/ui/tui/styles"

	"github.com/charmbracelet/lipgloss"
)

// RenderProcesses draws the process tab's table.
func RenderProcesses(tbl *view.Table[sysquery.ProcessRecord], props Props) string {
	header := fmt.Sprintf("%7s  %-28s %7s %10s  %s", "PID", "NAME", "CPU%", "MEM", "PATH")
	rows := visibleRows(tbl.Rows(), tbl.Offset(), tableHeight(props))
	lines := make([]string, 0, len(rows))
	for i, r := range rows {
		mark := " "
		if r.Elevated {
			mark = "*"
		}
		line := fmt.Sprintf("%7d%s %-28s %6.1f%% %10s  %s",
			r.PID, mark, truncate(r.Name, 28), r.CPUPercent, formatBytes(r.MemoryBytes), truncate(r.Path, 40))
		lines = append(lines, decorateRow(line, tbl.Offset()+i == tbl.Cursor(), r.Stale || r.Degraded))
	}
	return renderTable(header, lines, tableCaption(tbl.SortKey(), tbl.Order(), tbl.Filter(), tbl.Len(), props))
}

// RenderServices draws the service tab's table.
func RenderServices(tbl *view.Table[sysquery.ServiceRecord], props Props) string {
	header := fmt.Sprintf("%-24s %-36s %-12s %-10s %7s", "NAME", "DISPLAY", "STATUS", "START", "PID")
	rows := visibleRows(tbl.Rows(), tbl.Offset(), tableHeight(props))
	lines := make([]string, 0, len(rows))
	for i, r := range rows {
		pid := ""
		if r.PID > 0 {
			pid = fmt.Sprintf("%d", r.PID)
		}
		line := fmt.Sprintf("%-24s %-36s %-12s %-10s %7s",
			truncate(r.Name, 24), truncate(r.DisplayName, 36), r.Status, r.StartType, pid)
		lines = append(lines, decorateRow(line, tbl.Offset()+i == tbl.Cursor(), false))
	}
	return renderTable(header, lines, tableCaption(tbl.SortKey(), tbl.Order(), tbl.Filter(), tbl.Len(), props))
}

// RenderConnections draws the connection tab's table.
func RenderConnections(tbl *view.Table[sysquery.ConnectionRecord], props Props) string {
	header := fmt.Sprintf("%-5s %-22s %-22s %-12s %7s  %s", "PROTO", "LOCAL", "REMOTE", "STATE", "PID", "PROCESS")
	rows := visibleRows(tbl.Rows(), tbl.Offset(), tableHeight(props))
	lines := make([]string, 0, len(rows))
	for i, r := range rows {
		line := fmt.Sprintf("%-5s %-22s %-22s %-12s %7d  %s",
			r.Protocol, truncate(r.Local(), 22), truncate(r.Remote(), 22), r.State, r.PID, truncate(r.ProcessName, 24))
		lines = append(lines, decorateRow(line, tbl.Offset()+i == tbl.Cursor(), false))
	}
	return renderTable(header, lines, tableCaption(tbl.SortKey(), tbl.Order(), tbl.Filter(), tbl.Len(), props))
}

// tableHeight is how many record rows fit under the chrome.
func tableHeight(props Props) int {
	h := props.Height - 9
	if h < 3 {
		h = 3
	}
	return h
}

func visibleRows[T any](rows []T, offset, height int) []T {
	if offset >= len(rows) {
		return nil
	}
	end := offset + height
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end]
}

func decorateRow(line string, selected, stale bool) string {
	switch {
	case selected:
		return styles.SelectedRowStyle.Render(line)
	case stale:
		return styles.StaleStyle.Render(line)
	default:
		return line
	}
}

func renderTable(header string, lines []string, caption string) string {
	if len(lines) == 0 {
		lines = []string{styles.HintStyle.Render("  nothing to show")}
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Bold(true).Render(header),
		strings.Join(lines, "\n"),
		caption,
	)
}

func tableCaption(key view.SortKey, order view.SortOrder, filter string, total int, props Props) string {
	arrow := "↑"
	if order == view.Descending {
		arrow = "↓"
	}
	caption := fmt.Sprintf("sort: %s%s · %d rows", key, arrow, total)
	if filter != "" {
		caption += fmt.Sprintf(" · filter: %q", filter)
	}
	if props.Stale {
		caption += " · " + styles.StaleStyle.Render("stale")
	}
	if props.Filtering {
		caption += " · " + props.FilterView
	}
	return styles.HintStyle.Render(caption)
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	if limit <= 1 {
		return s[:limit]
	}
	return s[:limit-1] + "…"
}

func formatBytes(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := uint64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}
