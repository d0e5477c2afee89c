package timer

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/manav03panchal/dailyclocks/internal/model"
	"golang.org/x/term"
)

// DefaultBarWidth is the progress bar width when the terminal size is unknown.
const DefaultBarWidth = 30

// CountdownDisplay handles the visual display of a countdown timer.
type CountdownDisplay struct {
	Writer   io.Writer
	UseColor bool
	BarWidth int
}

// NewCountdownDisplay creates a countdown display on stdout, sizing the
// progress bar to the terminal.
func NewCountdownDisplay() *CountdownDisplay {
	return &CountdownDisplay{
		Writer:   os.Stdout,
		UseColor: true,
		BarWidth: TerminalBarWidth(int(os.Stdout.Fd())),
	}
}

// TerminalBarWidth returns a bar width that fits the terminal on fd.
func TerminalBarWidth(fd int) int {
	width, _, err := term.GetSize(fd)
	if err != nil || width <= 0 {
		return DefaultBarWidth
	}
	// Leave room for the brackets and the percentage.
	w := width - 10
	if w > 60 {
		w = 60
	}
	if w < 10 {
		w = 10
	}
	return w
}

// Styles for countdown display.
var (
	timerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")) // Purple

	runningStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#10B981")) // Green

	pausedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F59E0B")) // Yellow

	completedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#3B82F6")) // Blue

	progressStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280")) // Gray

	statusStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.Color("#6B7280")) // Gray
)

// StateLabel returns the badge shown for a timer state.
func StateLabel(t model.Timer) string {
	switch t.State {
	case model.StateRunning:
		return "RUNNING"
	case model.StateCompleted:
		return "DONE"
	case model.StateIdle:
		if t.Started && t.Remaining < t.TotalDuration {
			return "PAUSED"
		}
		return "IDLE"
	default:
		return strings.ToUpper(string(t.State))
	}
}

func stateStyle(state model.TimerState) lipgloss.Style {
	switch state {
	case model.StateRunning:
		return runningStyle
	case model.StateCompleted:
		return completedStyle
	default:
		return pausedStyle
	}
}

// FormatDuration formats a duration as MM:SS or HH:MM:SS.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}

	totalSeconds := int(d.Seconds())
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// FormatSeconds formats whole seconds like FormatDuration.
func FormatSeconds(seconds int) string {
	return FormatDuration(time.Duration(seconds) * time.Second)
}

// FormatClock formats whole seconds as HH:MM:SS, always with hours.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}

func (cd *CountdownDisplay) style(s lipgloss.Style, text string) string {
	if cd.UseColor {
		return s.Render(text)
	}
	return text
}

// RenderTimer renders the countdown of a single timer.
func (cd *CountdownDisplay) RenderTimer(t model.Timer) string {
	var b strings.Builder

	b.WriteString(cd.style(stateStyle(t.State), StateLabel(t)))
	b.WriteString(" ")
	b.WriteString(t.Label)
	b.WriteString("\n\n")

	b.WriteString(cd.style(timerStyle, FormatSeconds(t.Remaining)))
	b.WriteString(" / ")
	b.WriteString(FormatSeconds(t.TotalDuration))
	b.WriteString("\n\n")

	width := cd.BarWidth
	if width <= 0 {
		width = DefaultBarWidth
	}
	b.WriteString(cd.style(progressStyle, cd.renderProgressBar(t.Progress(), width)))
	b.WriteString("\n\n")

	var status string
	switch t.State {
	case model.StateRunning:
		status = "Press SPACE to pause, Q to quit"
	case model.StateCompleted:
		status = "Time's up!"
	default:
		status = "Press SPACE to start, Q to quit"
	}
	b.WriteString(cd.style(statusStyle, status))

	return b.String()
}

// renderProgressBar creates a progress bar string.
func (cd *CountdownDisplay) renderProgressBar(progress float64, width int) string {
	filled := int(progress * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("[%s] %d%%", bar, int(progress*100))
}

// ClearScreen clears the terminal screen.
func (cd *CountdownDisplay) ClearScreen() {
	fmt.Fprint(cd.Writer, "\033[H\033[2J")
}

// MoveCursorHome moves cursor to home position.
func (cd *CountdownDisplay) MoveCursorHome() {
	fmt.Fprint(cd.Writer, "\033[H")
}

// RenderComplete renders the completion message for label.
func (cd *CountdownDisplay) RenderComplete(label string) string {
	return cd.style(completedStyle, fmt.Sprintf("%s complete!", label))
}
