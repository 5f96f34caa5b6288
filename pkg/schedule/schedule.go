// Package schedule wraps delayed and recurring work behind a cancellable
// task handle. Production code runs on real timers; tests drive a manual
// scheduler forward instead of sleeping.
package schedule

import (
	"sync"
	"time"
)

// Task is a handle to scheduled work. Stop reports true when the call
// prevented at least one pending run.
type Task interface {
	Stop() bool
}

type Scheduler interface {
	// After runs fn once after d.
	After(d time.Duration, fn func()) Task
	// Every runs fn repeatedly with period d until stopped.
	Every(d time.Duration, fn func()) Task
}

// TimerScheduler is the wall-clock implementation.
type TimerScheduler struct{}

func NewTimerScheduler() TimerScheduler {
	return TimerScheduler{}
}

func (TimerScheduler) After(d time.Duration, fn func()) Task {
	return timerTask{timer: time.AfterFunc(d, fn)}
}

func (TimerScheduler) Every(d time.Duration, fn func()) Task {
	t := &tickerTask{stop: make(chan struct{})}

	go func() {
		ticker := time.NewTicker(d)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				fn()
			case <-t.stop:
				return
			}
		}
	}()

	return t
}

type timerTask struct {
	timer *time.Timer
}

func (t timerTask) Stop() bool {
	return t.timer.Stop()
}

type tickerTask struct {
	stop chan struct{}
	once sync.Once
}

func (t *tickerTask) Stop() bool {
	var first bool

	t.once.Do(func() {
		close(t.stop)
		first = true
	})

	return first
}
