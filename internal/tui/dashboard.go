package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	apperrors "github.com/manav03panchal/dailyclocks/internal/errors"
	"github.com/manav03panchal/dailyclocks/internal/model"
	"github.com/manav03panchal/dailyclocks/internal/parser"
)

// Registry is what the dashboard reads and drives.
type Registry interface {
	Timers() []model.Timer
	History() []model.HistoryEntry
	ActiveTimerID() string
	ActiveTab() string
	Now() time.Time

	AddTimer(ctx context.Context, label string, totalSeconds int) (model.Timer, error)
	Start(ctx context.Context, id string) error
	Pause(ctx context.Context, id string) error
	Reset(ctx context.Context, id string) error
	ResetAll(ctx context.Context) (int, error)
	Remove(ctx context.Context, id string) error
	SetActiveTab(ctx context.Context, tab string) error
}

// tickMsg is sent on every refresh.
type tickMsg time.Time

// DashboardModel is the main bubbletea model for the dashboard.
type DashboardModel struct {
	ctx      context.Context
	registry Registry

	// Snapshot refreshed on every tick.
	timers   []model.Timer
	history  []model.HistoryEntry
	activeID string

	// UI state
	tab        string
	cursor     int
	width      int
	height     int
	err        error
	message    string
	messageExp time.Time

	// Add form
	adding bool
	inputs []textinput.Model
	focus  int

	refreshInterval time.Duration
}

// DashboardConfig holds configuration for the dashboard.
type DashboardConfig struct {
	Ctx             context.Context
	Registry        Registry
	RefreshInterval time.Duration
}

const (
	inputLabel = iota
	inputDuration
)

// NewDashboardModel creates a new dashboard model on the persisted tab.
func NewDashboardModel(config DashboardConfig) *DashboardModel {
	if config.RefreshInterval <= 0 {
		config.RefreshInterval = 250 * time.Millisecond
	}
	if config.Ctx == nil {
		config.Ctx = context.Background()
	}

	label := textinput.New()
	label.Placeholder = "Focus"
	label.Prompt = "Label:    "
	label.CharLimit = 64

	duration := textinput.New()
	duration.Placeholder = "25m, 1h30m or 01:30:00"
	duration.Prompt = "Duration: "
	duration.CharLimit = 16

	m := &DashboardModel{
		ctx:             config.Ctx,
		registry:        config.Registry,
		tab:             config.Registry.ActiveTab(),
		inputs:          []textinput.Model{label, duration},
		refreshInterval: config.RefreshInterval,
	}
	if !model.IsValidTab(m.tab) {
		m.tab = model.TabTimers
	}
	m.loadData()
	return m
}

// Init initializes the model.
func (m *DashboardModel) Init() tea.Cmd {
	return m.tickCmd()
}

// Update handles messages and updates the model.
func (m *DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.adding {
			return m.handleFormKey(msg)
		}
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		if !m.messageExp.IsZero() && m.registry.Now().After(m.messageExp) {
			m.message = ""
			m.messageExp = time.Time{}
		}
		m.loadData()
		return m, m.tickCmd()
	}

	if m.adding {
		return m.updateInputs(msg)
	}
	return m, nil
}

// handleKeyPress handles keyboard input on the tabs.
func (m *DashboardModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "tab":
		next := model.TabHistory
		if m.tab == model.TabHistory {
			next = model.TabTimers
		}
		m.tab = next
		m.check(m.registry.SetActiveTab(m.ctx, next))
		return m, nil
	}

	if m.tab != model.TabTimers {
		return m, nil
	}

	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.timers)-1 {
			m.cursor++
		}

	case "a":
		return m, m.openForm()

	case "s", "enter":
		m.start()

	case "p":
		m.act("Paused", m.registry.Pause)

	case "r":
		m.act("Reset", m.registry.Reset)

	case "R":
		n, err := m.registry.ResetAll(m.ctx)
		if m.check(err) {
			m.setMessage(fmt.Sprintf("Reset %d timers", n), 2*time.Second)
		}

	case "x", "delete":
		m.act("Removed", m.registry.Remove)
	}

	m.loadData()
	return m, nil
}

// act applies op to the selected timer.
func (m *DashboardModel) act(verb string, op func(context.Context, string) error) {
	t, ok := m.selected()
	if !ok {
		m.setMessage("No timer selected", 2*time.Second)
		return
	}
	if m.check(op(m.ctx, t.ID)) {
		m.setMessage(fmt.Sprintf("%s %s", verb, t.Label), 2*time.Second)
	}
}

// start starts the selected timer. Only one timer may run at a time, so a
// start while another runs is refused.
func (m *DashboardModel) start() {
	t, ok := m.selected()
	if !ok {
		m.setMessage("No timer selected", 2*time.Second)
		return
	}
	if !m.check(m.registry.Start(m.ctx, t.ID)) {
		return
	}
	switch holder := m.registry.ActiveTimerID(); {
	case holder == t.ID:
		m.setMessage(fmt.Sprintf("Started %s", t.Label), 2*time.Second)
	case holder != "":
		m.setMessage("Another timer is running, pause it first", 2*time.Second)
	}
}

func (m *DashboardModel) selected() (model.Timer, bool) {
	if m.cursor < 0 || m.cursor >= len(m.timers) {
		return model.Timer{}, false
	}
	return m.timers[m.cursor], true
}

// check records err and reports whether the operation succeeded.
func (m *DashboardModel) check(err error) bool {
	m.err = err
	return err == nil
}

func (m *DashboardModel) openForm() tea.Cmd {
	m.adding = true
	m.focus = inputLabel
	for i := range m.inputs {
		m.inputs[i].Reset()
		m.inputs[i].Blur()
	}
	return m.inputs[inputLabel].Focus()
}

func (m *DashboardModel) closeForm() {
	m.adding = false
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
}

// handleFormKey handles keyboard input while the add form is open.
func (m *DashboardModel) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		m.closeForm()
		return m, nil

	case "tab", "shift+tab", "up", "down":
		m.inputs[m.focus].Blur()
		m.focus = (m.focus + 1) % len(m.inputs)
		return m, m.inputs[m.focus].Focus()

	case "enter":
		if m.focus == inputLabel {
			m.inputs[m.focus].Blur()
			m.focus = inputDuration
			return m, m.inputs[m.focus].Focus()
		}
		m.submitForm()
		return m, nil
	}

	return m.updateInputs(msg)
}

// submitForm validates the form and adds the timer. The form stays open on
// invalid input so it can be corrected.
func (m *DashboardModel) submitForm() {
	label := strings.TrimSpace(m.inputs[inputLabel].Value())
	if label == "" {
		m.err = apperrors.ErrEmptyLabel
		return
	}

	secs, err := parser.TotalSeconds(m.inputs[inputDuration].Value())
	if err != nil {
		m.err = err
		return
	}

	t, err := m.registry.AddTimer(m.ctx, label, secs)
	if !m.check(err) {
		return
	}
	m.closeForm()
	m.loadData()
	for i, timer := range m.timers {
		if timer.ID == t.ID {
			m.cursor = i
		}
	}
	m.setMessage(fmt.Sprintf("Added %s", t.Label), 2*time.Second)
}

func (m *DashboardModel) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmds := make([]tea.Cmd, len(m.inputs))
	for i := range m.inputs {
		m.inputs[i], cmds[i] = m.inputs[i].Update(msg)
	}
	return m, tea.Batch(cmds...)
}

// View renders the dashboard.
func (m *DashboardModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var sections []string
	sections = append(sections, m.renderHeader())
	sections = append(sections, TabBar(m.tab)+"\n")

	if m.err != nil {
		sections = append(sections, StyleError.Render(fmt.Sprintf("Error: %v", m.err)))
	}
	if m.message != "" {
		sections = append(sections, StyleWarning.Render(m.message))
	}

	switch {
	case m.adding:
		sections = append(sections, m.renderForm())
	case m.tab == model.TabHistory:
		sections = append(sections, NewHistoryComponent(m.history, m.width).View())
	default:
		sections = append(sections, NewTimersComponent(m.timers, m.activeID, m.cursor, m.width).View())
	}

	sections = append(sections, HelpBar(m.tab, m.adding))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *DashboardModel) renderHeader() string {
	title := StyleTitle.Render("Daily Clocks")
	now := StyleSubtitle.Render(m.registry.Now().Local().Format("Mon Jan 2, 15:04:05"))
	return lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", now)
}

func (m *DashboardModel) renderForm() string {
	var content strings.Builder
	content.WriteString(StyleTitle.Render("New timer"))
	content.WriteString("\n")
	for i, in := range m.inputs {
		if i > 0 {
			content.WriteString("\n")
		}
		content.WriteString(in.View())
	}
	return StyleFormBox.Width(max(m.width-4, 20)).Render(content.String())
}

// loadData refreshes the snapshot from the registry and keeps the cursor
// in range.
func (m *DashboardModel) loadData() {
	m.timers = m.registry.Timers()
	m.history = m.registry.History()
	m.activeID = m.registry.ActiveTimerID()
	m.cursor = max(0, min(m.cursor, len(m.timers)-1))
}

func (m *DashboardModel) setMessage(msg string, d time.Duration) {
	m.message = msg
	m.messageExp = m.registry.Now().Add(d)
}

func (m *DashboardModel) tickCmd() tea.Cmd {
	return tea.Tick(m.refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Run starts the dashboard.
func Run(config DashboardConfig) error {
	p := tea.NewProgram(NewDashboardModel(config), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
