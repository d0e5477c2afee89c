package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/manav03panchal/dailyclocks/internal/history"
	"github.com/manav03panchal/dailyclocks/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var created = time.Date(2026, 3, 1, 9, 0, 0, 0, time.Local)

func sampleTimers() []model.Timer {
	running := *model.NewTimer("0192f0c4-aaaa-7000-8000-000000000001", "Focus", 1500, created)
	start := created.Add(-5 * time.Minute)
	running.State = model.StateRunning
	running.StartTimestamp = &start
	running.Started = true
	running.Remaining = 1200

	idle := *model.NewTimer("0192f0c4-bbbb-7000-8000-000000000002", "Read", 600, created)
	return []model.Timer{running, idle}
}

func sampleGroups() []history.DayGroup {
	entries := []model.HistoryEntry{
		history.NewEntry("Focus", 1500, 1500, created),
		history.NewEntry("Read", 600, 0, created.Add(time.Hour)),
		history.NewEntry("Write", 3600, 1800, created.AddDate(0, 0, 1)),
	}
	return history.GroupByDate(entries)
}

func newTestFormatter(format Format) (*Formatter, *bytes.Buffer) {
	var buf bytes.Buffer
	return &Formatter{Writer: &buf, Format: format, ColorMode: ColorNever}, &buf
}

// =============================================================================
// Formatter Tests
// =============================================================================

func TestNewFormatter(t *testing.T) {
	f := NewFormatter()
	assert.NotNil(t, f)
	assert.Equal(t, FormatCLI, f.Format)
	assert.Equal(t, ColorAuto, f.ColorMode)
}

func TestParseFlags(t *testing.T) {
	assert.Equal(t, FormatJSON, ParseFormat("json"))
	assert.Equal(t, FormatPlain, ParseFormat("plain"))
	assert.Equal(t, FormatCLI, ParseFormat("cli"))
	assert.Equal(t, FormatCLI, ParseFormat("xml"))

	assert.Equal(t, ColorAlways, ParseColorMode("always"))
	assert.Equal(t, ColorNever, ParseColorMode("never"))
	assert.Equal(t, ColorAuto, ParseColorMode(""))
}

func TestFormatterIsColorEnabled(t *testing.T) {
	t.Run("color_always", func(t *testing.T) {
		f := &Formatter{ColorMode: ColorAlways}
		assert.True(t, f.IsColorEnabled())
	})

	t.Run("color_never", func(t *testing.T) {
		f := &Formatter{ColorMode: ColorNever}
		assert.False(t, f.IsColorEnabled())
	})

	t.Run("plain_overrides_always", func(t *testing.T) {
		f := &Formatter{Format: FormatPlain, ColorMode: ColorAlways}
		assert.False(t, f.IsColorEnabled())
	})

	t.Run("color_auto_non_terminal", func(t *testing.T) {
		var buf bytes.Buffer
		f := &Formatter{Writer: &buf, ColorMode: ColorAuto}
		// Buffer is not a terminal
		assert.False(t, f.IsColorEnabled())
	})
}

func TestFormatterPrint(t *testing.T) {
	f, buf := newTestFormatter(FormatCLI)
	f.Print("hello")
	f.Println(" world")
	f.Printf("%d", 42)
	assert.Equal(t, "hello world\n42", buf.String())
}

func TestFormatterJSON(t *testing.T) {
	f, buf := newTestFormatter(FormatJSON)
	require.NoError(t, f.JSON(map[string]int{"a": 1}))
	assert.Equal(t, "{\n  \"a\": 1\n}\n", buf.String())
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "0192f0c4", ShortID("0192f0c4-aaaa-7000"))
	assert.Equal(t, "abc", ShortID("abc"))
}

func TestFormatTimeHelpers(t *testing.T) {
	ts := time.Date(2026, 3, 1, 14, 5, 9, 0, time.Local)
	assert.Equal(t, "2026-03-01 14:05:09", FormatTime(ts))
	assert.Equal(t, "2026-03-01", FormatDate(ts))
	assert.Equal(t, "14:05", FormatTimeOnly(ts))
}

// =============================================================================
// CLI Tests
// =============================================================================

func TestCLIMessages(t *testing.T) {
	f, buf := newTestFormatter(FormatCLI)
	c := NewCLIFormatter(f)

	c.Title("Timers")
	c.Success("done")
	c.Warning("careful")
	c.Error("broken")
	c.Muted("quiet")

	out := buf.String()
	assert.Contains(t, out, "Timers\n")
	assert.Contains(t, out, "✓ done")
	assert.Contains(t, out, "⚠ careful")
	assert.Contains(t, out, "✗ broken")
	assert.Contains(t, out, "quiet")
}

func TestPrintTimers(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		f, buf := newTestFormatter(FormatCLI)
		NewCLIFormatter(f).PrintTimers(nil, "")
		assert.Contains(t, buf.String(), "No timers.")
	})

	t.Run("table", func(t *testing.T) {
		f, buf := newTestFormatter(FormatCLI)
		timers := sampleTimers()
		NewCLIFormatter(f).PrintTimers(timers, timers[0].ID)

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 4)
		assert.Contains(t, lines[0], "Remaining")
		assert.Contains(t, lines[2], "▶")
		assert.Contains(t, lines[2], "0192f0c4")
		assert.Contains(t, lines[2], "00:20:00")
		assert.Contains(t, lines[2], "RUNNING")
		assert.Contains(t, lines[3], "Read")
		assert.Contains(t, lines[3], "00:10:00")
		assert.Contains(t, lines[3], "IDLE")
	})
}

func TestPrintTimerAction(t *testing.T) {
	f, buf := newTestFormatter(FormatCLI)
	c := NewCLIFormatter(f)
	tm := sampleTimers()[0]

	c.PrintTimerAdded(tm)
	c.PrintTimerAction("Started", tm)
	c.PrintRemoved(tm)
	c.PrintNoSuchTimer("nope")

	out := buf.String()
	assert.Contains(t, out, "✓ Added Focus (00:25:00)")
	assert.Contains(t, out, "id: "+tm.ID)
	assert.Contains(t, out, "Started Focus  00:20:00  RUNNING")
	assert.Contains(t, out, "✓ Removed Focus")
	assert.Contains(t, out, "No such timer: nope")
}

func TestPrintHistory(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		f, buf := newTestFormatter(FormatCLI)
		NewCLIFormatter(f).PrintHistory(nil)
		assert.Contains(t, buf.String(), "No history yet.")
	})

	t.Run("grouped", func(t *testing.T) {
		f, buf := newTestFormatter(FormatCLI)
		NewCLIFormatter(f).PrintHistory(sampleGroups())

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 5)
		assert.Contains(t, lines[0], "% completed")
		assert.Contains(t, lines[2], "Write")
		assert.Contains(t, lines[2], "50.00")
		assert.Contains(t, lines[3], "Focus")
		assert.Contains(t, lines[3], "00:25:00")
		assert.Contains(t, lines[3], "100.00")
		assert.Contains(t, lines[4], "Read")
		assert.Contains(t, lines[4], "0.00")
	})
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "░░░░░░░░░░", ProgressBar(0, 10))
	assert.Equal(t, "█████░░░░░", ProgressBar(50, 10))
	assert.Equal(t, "██████████", ProgressBar(150, 10))
	assert.Equal(t, "░░░░", ProgressBar(-5, 4))
}

func TestPrintTableSkipsEmpty(t *testing.T) {
	f, buf := newTestFormatter(FormatCLI)
	NewCLIFormatter(f).PrintTable([]string{"A"}, nil)
	assert.Empty(t, buf.String())
}

// =============================================================================
// JSON Tests
// =============================================================================

func TestJSONTimers(t *testing.T) {
	f, buf := newTestFormatter(FormatJSON)
	timers := sampleTimers()
	require.NoError(t, NewJSONFormatter(f).PrintTimers(timers, timers[0].ID))

	var resp TimersResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, timers[0].ID, resp.ActiveTimerID)
	require.Len(t, resp.Timers, 2)
	assert.True(t, resp.Timers[0].Active)
	assert.Equal(t, "running", resp.Timers[0].State)
	assert.Equal(t, 1200, resp.Timers[0].RemainingSeconds)
	assert.Equal(t, 0.2, resp.Timers[0].Progress)
	assert.NotEmpty(t, resp.Timers[0].StartTimestamp)
	assert.False(t, resp.Timers[1].Active)
	assert.Empty(t, resp.Timers[1].StartTimestamp)
}

func TestJSONTimerAction(t *testing.T) {
	f, buf := newTestFormatter(FormatJSON)
	j := NewJSONFormatter(f)
	tm := sampleTimers()[1]

	require.NoError(t, j.PrintTimerAction("added", tm, ""))
	var resp TimerActionResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "added", resp.Status)
	assert.Equal(t, "Read", resp.Timer.Label)

	buf.Reset()
	require.NoError(t, j.PrintNoSuchTimer("ghost"))
	resp = TimerActionResponse{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "not_found", resp.Status)
	assert.Equal(t, "ghost", resp.Ref)
	assert.Nil(t, resp.Timer)
}

func TestJSONHistory(t *testing.T) {
	f, buf := newTestFormatter(FormatJSON)
	require.NoError(t, NewJSONFormatter(f).PrintHistory(sampleGroups()))

	var resp HistoryResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, 3, resp.Count)
	require.Len(t, resp.Days, 2)
	assert.Equal(t, "2026-03-02", resp.Days[0].Date)
	assert.Equal(t, 1500, resp.Days[1].TimeSpentSeconds)
	assert.Equal(t, "100.00", resp.Days[1].Entries[0].PercentageCompleted)
}

func TestJSONError(t *testing.T) {
	f, buf := newTestFormatter(FormatJSON)
	require.NoError(t, NewJSONFormatter(f).PrintError("error", "bad input", "try again"))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, ErrorResponse{Status: "error", Error: "bad input", Message: "try again"}, resp)
}
