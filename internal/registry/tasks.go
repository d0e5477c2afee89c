package registry

import (
	"context"

	"github.com/manav03panchal/dailyclocks/internal/logging"
	"github.com/manav03panchal/dailyclocks/internal/model"
	"github.com/manav03panchal/dailyclocks/internal/timer"
)

// StartTicking enables per-timer tick tasks. Running timers get a task
// immediately; timers started later get one from Start. One-shot callers
// never enable ticking and rely on Pass instead.
func (r *Registry) StartTicking(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}
	if r.ticking {
		return nil
	}
	r.ticking = true
	r.tickCtx = context.WithoutCancel(ctx)

	for _, t := range r.running() {
		r.startTask(t.ID)
	}
	logging.FromContext(ctx).Debug("ticking enabled", logging.KeyCount, len(r.tasks))
	return nil
}

// startTask launches the tick task of id, replacing any previous one.
// The caller must hold r.mu.
func (r *Registry) startTask(id string) {
	if !r.ticking || r.closed {
		return
	}
	r.stopTask(id)

	r.nextToken++
	task := &tickTask{token: r.nextToken, stop: make(chan struct{})}
	r.tasks[id] = task

	ticker := r.clock.NewTicker(r.tickInterval)
	r.tasksWG.Add(1)
	go func() {
		defer r.tasksWG.Done()
		defer ticker.Stop()
		for {
			select {
			case <-task.stop:
				return
			case <-ticker.Chan():
				r.tick(id, task.token)
			}
		}
	}()
}

// stopTask cancels the tick task of id. The caller must hold r.mu.
func (r *Registry) stopTask(id string) {
	task, ok := r.tasks[id]
	if !ok {
		return
	}
	close(task.stop)
	delete(r.tasks, id)
}

// tick refreshes one running timer. A tick whose task was cancelled or
// replaced in the meantime is dropped. Plain ticks only touch memory;
// a tick that completes the timer persists like any other transition.
func (r *Registry) tick(id string, token uint64) {
	ctx := r.tickCtx
	if ctx == nil {
		ctx = context.Background()
	}

	_ = r.mutate(ctx, func(c *change) error {
		task, ok := r.tasks[id]
		if !ok || task.token != token {
			return nil
		}
		t, ok := r.index[id]
		if !ok {
			return nil
		}

		now := r.clock.Now()
		if timer.Recompute(t, now) {
			r.complete(ctx, c, t, now)
		}
		return nil
	})
}

// Close stops every tick task, removes completed timers still waiting for
// their grace delay, flushes, and waits for pending notifications.
// Operations after Close return ErrClosed.
func (r *Registry) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}

	c := &change{snapshots: make(map[string]bool)}
	for id := range r.tasks {
		r.stopTask(id)
	}
	for id, g := range r.graces {
		g.Stop()
		delete(r.graces, id)
		if t, ok := r.index[id]; ok && t.State == model.StateCompleted {
			r.drop(c, t)
		}
	}

	ctx := r.tickCtx
	if ctx == nil {
		ctx = context.Background()
	}
	r.flush(ctx, c)
	r.closed = true
	r.mu.Unlock()

	r.tasksWG.Wait()
	r.notifyWG.Wait()
	return nil
}
