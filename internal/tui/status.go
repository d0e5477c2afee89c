package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/manav03panchal/dailyclocks/internal/history"
	"github.com/manav03panchal/dailyclocks/internal/model"
	"github.com/manav03panchal/dailyclocks/internal/timer"
	"github.com/manav03panchal/dailyclocks/internal/validate"
)

// TabBar renders the tab headers with active highlighted.
func TabBar(active string) string {
	tabs := []struct {
		id    string
		title string
	}{
		{model.TabTimers, "Timers"},
		{model.TabHistory, "History"},
	}

	var parts []string
	for _, tab := range tabs {
		style := StyleTab
		if tab.id == active {
			style = StyleActiveTab
		}
		parts = append(parts, style.Render(tab.title))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func stateStyle(t model.Timer) lipgloss.Style {
	switch t.State {
	case model.StateRunning:
		return StyleRunning
	case model.StateCompleted:
		return StyleDone
	default:
		return StyleIdle
	}
}

// TimersComponent lists the timers with the selected row marked.
type TimersComponent struct {
	Timers   []model.Timer
	ActiveID string
	Cursor   int
	Width    int
}

// NewTimersComponent creates a new timers component.
func NewTimersComponent(timers []model.Timer, activeID string, cursor, width int) *TimersComponent {
	return &TimersComponent{
		Timers:   timers,
		ActiveID: activeID,
		Cursor:   cursor,
		Width:    width,
	}
}

// View renders the timers component.
func (tc *TimersComponent) View() string {
	var content strings.Builder

	if len(tc.Timers) == 0 {
		content.WriteString(StyleIdle.Render("No timers yet"))
		content.WriteString("\n\n")
		content.WriteString(StyleSubtitle.Render("Press 'a' to add one"))
		return StyleBox.Width(tc.boxWidth()).Render(content.String())
	}

	running := false
	for i, t := range tc.Timers {
		if i > 0 {
			content.WriteString("\n")
		}
		content.WriteString(tc.renderTimer(i, t))
		running = running || t.IsRunning()
	}

	box := StyleBox
	if running {
		box = StyleActiveBox
	}
	return box.Width(tc.boxWidth()).Render(content.String())
}

func (tc *TimersComponent) boxWidth() int {
	return max(tc.Width-4, 20)
}

func (tc *TimersComponent) renderTimer(i int, t model.Timer) string {
	cursor := "  "
	if i == tc.Cursor {
		cursor = StyleCursor.Render("> ")
	}

	marker := " "
	if t.ID == tc.ActiveID {
		marker = StyleRunning.Render("●")
	}

	style := stateStyle(t)
	line := fmt.Sprintf("%s%s %s  %s  %s",
		cursor,
		marker,
		StyleLabel.Render(validate.TruncateString(t.Label, max(tc.boxWidth()-40, 12))),
		StyleClock.Render(timer.FormatClock(t.Remaining)),
		style.Render(timer.StateLabel(t)),
	)

	barWidth := max(tc.boxWidth()-12, 10)
	return line + "\n     " + ProgressBar(t.Progress(), barWidth)
}

// HistoryComponent renders the history ledger grouped by day.
type HistoryComponent struct {
	Groups []history.DayGroup
	Width  int
}

// NewHistoryComponent creates a history component for entries.
func NewHistoryComponent(entries []model.HistoryEntry, width int) *HistoryComponent {
	return &HistoryComponent{
		Groups: history.GroupByDate(entries),
		Width:  width,
	}
}

// View renders the history component.
func (hc *HistoryComponent) View() string {
	var content strings.Builder

	if len(hc.Groups) == 0 {
		content.WriteString(StyleIdle.Render("No history yet"))
		return StyleBox.Width(max(hc.Width-4, 20)).Render(content.String())
	}

	for i, g := range hc.Groups {
		if i > 0 {
			content.WriteString("\n\n")
		}
		content.WriteString(StyleTitle.UnsetMarginBottom().Render(g.Date))
		content.WriteString("  ")
		content.WriteString(StyleSubtitle.Render(fmt.Sprintf("set %s, spent %s",
			timer.FormatClock(g.TimeSet()), timer.FormatClock(g.TimeSpent()))))
		for _, e := range g.Entries {
			content.WriteString("\n")
			content.WriteString(fmt.Sprintf("  %-20s %s / %s  %s%%",
				validate.TruncateString(e.Label, 20),
				timer.FormatClock(e.TimeSpent),
				timer.FormatClock(e.TimeSet),
				e.Percent(),
			))
		}
	}
	return StyleBox.Width(max(hc.Width-4, 20)).Render(content.String())
}

type helpKey struct {
	key  string
	desc string
}

func renderHelp(keys []helpKey) string {
	var parts []string
	for _, k := range keys {
		parts = append(parts, StyleHelpKey.Render(k.key)+" "+StyleHelpDesc.Render(k.desc))
	}
	return StyleHelp.Render(strings.Join(parts, "  •  "))
}

// HelpBar renders the key bindings of the current mode.
func HelpBar(tab string, adding bool) string {
	switch {
	case adding:
		return renderHelp([]helpKey{
			{"tab", "next field"},
			{"enter", "add"},
			{"esc", "cancel"},
		})
	case tab == model.TabHistory:
		return renderHelp([]helpKey{
			{"tab", "timers"},
			{"q", "quit"},
		})
	default:
		return renderHelp([]helpKey{
			{"a", "add"},
			{"s", "start"},
			{"p", "pause"},
			{"r", "reset"},
			{"R", "reset all"},
			{"x", "remove"},
			{"tab", "history"},
			{"q", "quit"},
		})
	}
}
