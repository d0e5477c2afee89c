package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/manav03panchal/dailyclocks/internal/history"
	"github.com/manav03panchal/dailyclocks/internal/model"
	"github.com/manav03panchal/dailyclocks/internal/timer"
)

// Styles for CLI output.
var (
	// Colors
	colorPrimary = lipgloss.Color("#7C3AED") // Purple
	colorMuted   = lipgloss.Color("#6B7280") // Gray
	colorWarning = lipgloss.Color("#F59E0B") // Yellow
	colorError   = lipgloss.Color("#EF4444") // Red
	colorSuccess = lipgloss.Color("#10B981") // Green

	// Styles
	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	styleSuccess = lipgloss.NewStyle().
			Foreground(colorSuccess)

	styleWarning = lipgloss.NewStyle().
			Foreground(colorWarning)

	styleError = lipgloss.NewStyle().
			Foreground(colorError)

	styleMuted = lipgloss.NewStyle().
			Foreground(colorMuted)

	styleBold = lipgloss.NewStyle().
			Bold(true)

	styleLabel = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	styleClock = lipgloss.NewStyle().
			Bold(true)

	styleRunning = lipgloss.NewStyle().
			Foreground(colorSuccess)
)

// CLIFormatter provides CLI-specific formatting.
type CLIFormatter struct {
	*Formatter
}

// NewCLIFormatter creates a new CLI formatter.
func NewCLIFormatter(f *Formatter) *CLIFormatter {
	return &CLIFormatter{Formatter: f}
}

func (c *CLIFormatter) render(s lipgloss.Style, text string) string {
	if c.IsColorEnabled() {
		return s.Render(text)
	}
	return text
}

// Title prints a title.
func (c *CLIFormatter) Title(text string) {
	c.Println(c.render(styleTitle, text))
}

// Success prints a success message.
func (c *CLIFormatter) Success(text string) {
	c.Println(c.render(styleSuccess, "✓ "+text))
}

// Warning prints a warning message.
func (c *CLIFormatter) Warning(text string) {
	c.Println(c.render(styleWarning, "⚠ "+text))
}

// Error prints an error message.
func (c *CLIFormatter) Error(text string) {
	c.Println(c.render(styleError, "✗ "+text))
}

// Muted prints muted text.
func (c *CLIFormatter) Muted(text string) {
	c.Println(c.render(styleMuted, text))
}

// Label formats a timer label.
func (c *CLIFormatter) Label(label string) string {
	return c.render(styleLabel, label)
}

// Clock formats a remaining time as HH:MM:SS.
func (c *CLIFormatter) Clock(seconds int) string {
	return c.render(styleClock, timer.FormatClock(seconds))
}

// PrintTimerAdded prints the confirmation for a new timer.
func (c *CLIFormatter) PrintTimerAdded(t model.Timer) {
	c.Success(fmt.Sprintf("Added %s (%s)", t.Label, timer.FormatClock(t.TotalDuration)))
	c.Muted("  id: " + t.ID)
}

// PrintTimerAction prints the outcome of start, pause or reset.
func (c *CLIFormatter) PrintTimerAction(verb string, t model.Timer) {
	c.Printf("%s %s  %s  %s\n", verb, c.Label(t.Label), c.Clock(t.Remaining), timer.StateLabel(t))
}

// PrintRemoved prints the outcome of a removal.
func (c *CLIFormatter) PrintRemoved(t model.Timer) {
	c.Success(fmt.Sprintf("Removed %s", t.Label))
}

// PrintNoSuchTimer reports a reference that matched nothing.
func (c *CLIFormatter) PrintNoSuchTimer(ref string) {
	c.Warning(fmt.Sprintf("No such timer: %s", ref))
}

// PrintTimers prints every timer with its remaining time and state.
func (c *CLIFormatter) PrintTimers(timers []model.Timer, activeID string) {
	if len(timers) == 0 {
		c.Muted("No timers.")
		c.Muted("Use 'dailyclocks add <label> <duration>' to create one.")
		return
	}

	rows := make([]TableRow, 0, len(timers))
	for _, t := range timers {
		marker := " "
		if t.ID == activeID {
			marker = c.RunningStyle("▶")
		}
		rows = append(rows, TableRow{Columns: []string{
			marker,
			ShortID(t.ID),
			t.Label,
			timer.FormatClock(t.Remaining),
			timer.FormatClock(t.TotalDuration),
			ProgressBar(t.Progress()*100, 10),
			timer.StateLabel(t),
		}})
	}
	c.PrintTable([]string{"", "ID", "Label", "Remaining", "Total", "Progress", "State"}, rows)
}

// PrintHistory prints the ledger grouped by date, newest date first.
func (c *CLIFormatter) PrintHistory(groups []history.DayGroup) {
	if len(groups) == 0 {
		c.Muted("No history yet.")
		return
	}

	var rows []TableRow
	for _, g := range groups {
		for _, e := range g.Entries {
			rows = append(rows, TableRow{Columns: []string{
				g.Date,
				e.Label,
				timer.FormatClock(e.TimeSet),
				timer.FormatClock(e.TimeSpent),
				e.Percent(),
			}})
		}
	}
	c.PrintTable([]string{"Date", "Label", "Time set", "Time spent", "% completed"}, rows)
}

// ProgressBar creates a simple progress bar.
func ProgressBar(percentage float64, width int) string {
	if percentage > 100 {
		percentage = 100
	}
	if percentage < 0 {
		percentage = 0
	}

	filled := int(float64(width) * percentage / 100)
	empty := width - filled

	bar := strings.Repeat("█", filled) + strings.Repeat("░", empty)
	return bar
}

// Table helpers for CLI output.
type TableRow struct {
	Columns []string
}

// PrintTable prints a simple table.
func (c *CLIFormatter) PrintTable(headers []string, rows []TableRow) {
	if len(rows) == 0 {
		return
	}

	// Calculate column widths
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, col := range row.Columns {
			if i < len(widths) && lipgloss.Width(col) > widths[i] {
				widths[i] = lipgloss.Width(col)
			}
		}
	}

	pad := func(s string, w int) string {
		return s + strings.Repeat(" ", w-lipgloss.Width(s)) + "  "
	}

	// Print headers
	var headerLine strings.Builder
	for i, h := range headers {
		headerLine.WriteString(pad(h, widths[i]))
	}
	c.Println(strings.TrimRight(c.render(styleBold, headerLine.String()), " "))

	// Print separator
	var sep strings.Builder
	for _, w := range widths {
		sep.WriteString(strings.Repeat("─", w) + "  ")
	}
	c.Println(strings.TrimRight(sep.String(), " "))

	// Print rows
	for _, row := range rows {
		var rowLine strings.Builder
		for i, col := range row.Columns {
			if i < len(widths) {
				rowLine.WriteString(pad(col, widths[i]))
			}
		}
		c.Println(strings.TrimRight(rowLine.String(), " "))
	}
}

// RunningStyle highlights the running timer's row marker.
func (c *CLIFormatter) RunningStyle(text string) string {
	return c.render(styleRunning, text)
}
