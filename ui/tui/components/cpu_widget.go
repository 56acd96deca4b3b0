package components

import (
	"sysconsole/ui/tui/styles"

	"github.com/NimbleMarkets/ntcharts/canvas"
	"github.com/NimbleMarkets/ntcharts/linechart"
	"github.com/charmbracelet/lipgloss"
)

const historyCap = 31

// CPUWidget charts the total CPU load observed across process snapshots.
// One value is pushed per applied process refresh.
type CPUWidget struct {
	Chart   linechart.Model
	History []float64
	Width   int
	Height  int
}

func NewCPUWidget(width, height int) *CPUWidget {
	// width, height, minX, maxX, minY, maxY
	lc := linechart.New(width, height, 0, historyCap-1, 0, 100)
	return &CPUWidget{
		Chart:   lc,
		History: make([]float64, 0, historyCap),
		Width:   width,
		Height:  height,
	}
}

// Push appends one total-load sample, clamped to the chart's range.
func (c *CPUWidget) Push(value float64) {
	if value < 0 {
		value = 0
	}
	if value > 100 {
		value = 100
	}
	c.History = append(c.History, value)
	if len(c.History) > historyCap {
		c.History = c.History[1:]
	}
}

func (c *CPUWidget) Resize(w, h int) {
	c.Width = w
	c.Height = h
	c.Chart.Resize(w, h)
}

func (c *CPUWidget) View() string {
	c.Chart.Clear()
	for i := 0; i < len(c.History)-1; i++ {
		c.Chart.DrawBrailleLine(
			canvas.Float64Point{X: float64(i), Y: c.History[i]},
			canvas.Float64Point{X: float64(i + 1), Y: c.History[i+1]},
		)
	}
	c.Chart.DrawXYAxisAndLabel()

	return styles.CardStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().Bold(true).Render("Total CPU"),
			c.Chart.View(),
		),
	)
}
