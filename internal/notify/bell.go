package notify

import (
	"context"
	"io"
	"sync"
)

// BellSink rings the terminal bell.
type BellSink struct {
	mu  sync.Mutex
	out io.Writer
}

// NewBellSink creates a bell sink writing to out.
func NewBellSink(out io.Writer) *BellSink {
	return &BellSink{out: out}
}

// NotifyCompletion writes BEL.
func (b *BellSink) NotifyCompletion(context.Context, string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	io.WriteString(b.out, "\a")
}
