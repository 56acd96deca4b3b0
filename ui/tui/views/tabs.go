package views

import (
	"fmt"
	"math"
	"strings"

	"sysconsole/ui/tui/styles"

	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
)

// TabNames in display order; indexes match sysquery.Kind values.
var TabNames = []string{"Processes", "Services", "Connections"}

// RenderHeader draws the title row and the tab strip with its animated
// selection indicator. Each tab is zone-marked for mouse hit testing.
func RenderHeader(props Props) string {
	title := styles.TitleStyle.Render("SYSCONSOLE")
	badge := ""
	if !props.Elevated {
		badge = styles.HintStyle.Render(" read-only (not elevated)")
	}

	var tabs []string
	for i, name := range TabNames {
		style := styles.TabStyle
		if i == props.ActiveTab {
			style = styles.ActiveTabStyle
		}

		// The indicator slides between tabs; brighten the ones it passes.
		dist := math.Abs(float64(i) - props.AnimCursor)
		if dist < 0.5 && i != props.ActiveTab {
			style = style.Foreground(styles.Highlight)
		}

		label := fmt.Sprintf("%d:%s", i+1, name)
		tabs = append(tabs, zone.Mark(TabZone(i), style.Render(label)))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Center, title, badge),
		lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...),
		styles.HintStyle.Render(strings.Repeat("─", max(0, props.Width))),
	)
}

// TabZone is the bubblezone id for one tab index.
func TabZone(i int) string {
	return fmt.Sprintf("tab_%d", i)
}
