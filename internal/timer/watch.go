package timer

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/manav03panchal/dailyclocks/internal/model"
	"golang.org/x/term"
)

// Controls is what a Watcher needs from the timer registry.
type Controls interface {
	Timer(id string) (model.Timer, bool)
	Start(ctx context.Context, id string) error
	Pause(ctx context.Context, id string) error
}

// Watcher renders one timer's countdown until it completes, disappears, or
// the user quits. SPACE toggles between running and paused.
type Watcher struct {
	controls Controls
	id       string
	clock    clockwork.Clock
	interval time.Duration
	display  *CountdownDisplay

	// Input is read for key presses. A terminal is switched to raw mode.
	Input io.Reader
}

// NewWatcher creates a watcher for timer id that redraws every interval.
func NewWatcher(controls Controls, id string, clock clockwork.Clock, interval time.Duration) *Watcher {
	return &Watcher{
		controls: controls,
		id:       id,
		clock:    clock,
		interval: interval,
		display:  NewCountdownDisplay(),
		Input:    os.Stdin,
	}
}

// SetDisplay replaces the display.
func (w *Watcher) SetDisplay(display *CountdownDisplay) {
	w.display = display
}

// Run blocks until the timer completes or is removed, the user quits, or
// ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	raw := false
	if f, ok := w.Input.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		oldState, err := term.MakeRaw(int(f.Fd()))
		if err != nil {
			return err
		}
		defer term.Restore(int(f.Fd()), oldState)
		raw = true
	}

	keys := make(chan byte, 1)
	go w.listenKeyboard(ctx, keys)

	ticker := w.clock.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		t, ok := w.controls.Timer(w.id)
		if !ok {
			return nil
		}
		w.render(t, raw)
		if t.State == model.StateCompleted {
			w.write("\n\n"+w.display.RenderComplete(t.Label)+"\n", raw)
			return nil
		}

		select {
		case <-ctx.Done():
			return nil

		case key := <-keys:
			switch key {
			case ' ':
				if err := w.toggle(ctx, t); err != nil {
					return err
				}
			case 'q', 'Q', 3: // Q or Ctrl+C
				w.write("\n", raw)
				return nil
			}

		case <-ticker.Chan():
		}
	}
}

func (w *Watcher) toggle(ctx context.Context, t model.Timer) error {
	if t.IsRunning() {
		return w.controls.Pause(ctx, t.ID)
	}
	return w.controls.Start(ctx, t.ID)
}

func (w *Watcher) render(t model.Timer, raw bool) {
	w.display.MoveCursorHome()
	w.display.ClearScreen()
	w.write(w.display.RenderTimer(t), raw)
}

// write prints s, turning newlines into CRLF while the terminal is raw.
func (w *Watcher) write(s string, raw bool) {
	if raw {
		s = strings.ReplaceAll(s, "\n", "\r\n")
	}
	io.WriteString(w.display.Writer, s)
}

// listenKeyboard forwards single bytes from Input until ctx is done or
// Input is exhausted.
func (w *Watcher) listenKeyboard(ctx context.Context, keys chan<- byte) {
	buf := make([]byte, 1)
	for {
		n, err := w.Input.Read(buf)
		if err != nil {
			return
		}
		if n == 0 {
			continue
		}
		select {
		case keys <- buf[0]:
		case <-ctx.Done():
			return
		}
	}
}
