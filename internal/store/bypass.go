package store

import (
	"sync"
	"time"

	"buybox_console/pkg/schedule"
)

// BypassWindow pins recently updated listings into the visible set for a
// fixed window regardless of active filters. Re-adding an id restarts its
// window instead of stacking timers.
type BypassWindow struct {
	mu        sync.Mutex
	scheduler schedule.Scheduler
	window    time.Duration
	tasks     map[string]schedule.Task

	// onExpire runs outside the window lock after an id drops out, so the
	// owner can refilter without a lock-order cycle.
	onExpire func(id string)
}

func NewBypassWindow(scheduler schedule.Scheduler, window time.Duration, onExpire func(id string)) *BypassWindow {
	return &BypassWindow{
		scheduler: scheduler,
		window:    window,
		tasks:     make(map[string]schedule.Task),
		onExpire:  onExpire,
	}
}

// Add starts (or restarts) the window for id.
func (w *BypassWindow) Add(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if task, ok := w.tasks[id]; ok {
		task.Stop()
	}

	w.tasks[id] = w.scheduler.After(w.window, func() {
		w.expire(id)
	})
}

func (w *BypassWindow) expire(id string) {
	w.mu.Lock()
	_, ok := w.tasks[id]
	delete(w.tasks, id)
	w.mu.Unlock()

	if ok && w.onExpire != nil {
		w.onExpire(id)
	}
}

func (w *BypassWindow) Contains(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	_, ok := w.tasks[id]
	return ok
}

// Active returns the currently pinned ids as a membership set.
func (w *BypassWindow) Active() map[string]struct{} {
	w.mu.Lock()
	defer w.mu.Unlock()

	active := make(map[string]struct{}, len(w.tasks))
	for id := range w.tasks {
		active[id] = struct{}{}
	}

	return active
}

// Clear stops every pending window without firing expiry callbacks.
func (w *BypassWindow) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for id, task := range w.tasks {
		task.Stop()
		delete(w.tasks, id)
	}
}
