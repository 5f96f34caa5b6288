package schedule

import (
	"sort"
	"sync"
	"time"
)

// ManualScheduler is a deterministic Scheduler for tests: nothing fires
// until Advance moves virtual time past a task's deadline.
type ManualScheduler struct {
	mu    sync.Mutex
	now   time.Time
	seq   int
	tasks []*manualTask
}

type manualTask struct {
	sched    *ManualScheduler
	at       time.Time
	interval time.Duration // zero for one-shot tasks
	seq      int
	fn       func()
	stopped  bool
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{now: time.Unix(0, 0)}
}

func (s *ManualScheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

func (s *ManualScheduler) After(d time.Duration, fn func()) Task {
	return s.add(d, 0, fn)
}

func (s *ManualScheduler) Every(d time.Duration, fn func()) Task {
	return s.add(d, d, fn)
}

func (s *ManualScheduler) add(d, interval time.Duration, fn func()) Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	task := &manualTask{
		sched:    s,
		at:       s.now.Add(d),
		interval: interval,
		seq:      s.seq,
		fn:       fn,
	}
	s.tasks = append(s.tasks, task)

	return task
}

// Advance moves virtual time forward by d, firing due tasks in deadline
// order. Callbacks run without the scheduler lock held, so they may
// schedule or stop other tasks.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now.Add(d)

	for {
		task := s.nextDueLocked(target)
		if task == nil {
			break
		}

		s.now = task.at

		if task.interval > 0 {
			task.at = task.at.Add(task.interval)
		} else {
			s.removeLocked(task)
		}

		s.mu.Unlock()
		task.fn()
		s.mu.Lock()
	}

	s.now = target
	s.mu.Unlock()
}

func (s *ManualScheduler) nextDueLocked(target time.Time) *manualTask {
	due := make([]*manualTask, 0, len(s.tasks))

	for _, task := range s.tasks {
		if !task.stopped && !task.at.After(target) {
			due = append(due, task)
		}
	}

	if len(due) == 0 {
		return nil
	}

	sort.Slice(due, func(i, j int) bool {
		if due[i].at.Equal(due[j].at) {
			return due[i].seq < due[j].seq
		}
		return due[i].at.Before(due[j].at)
	})

	return due[0]
}

func (s *ManualScheduler) removeLocked(task *manualTask) {
	for i, t := range s.tasks {
		if t == task {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return
		}
	}
}

func (t *manualTask) Stop() bool {
	t.sched.mu.Lock()
	defer t.sched.mu.Unlock()

	if t.stopped {
		return false
	}

	t.stopped = true
	t.sched.removeLocked(t)

	return true
}
