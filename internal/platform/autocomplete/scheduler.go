package autocomplete

import "time"

// Task is a scheduled callback that can be cancelled before it fires.
type Task interface {
	// Cancel stops the task. It reports whether the cancellation happened
	// before the task ran.
	Cancel() bool
}

// Scheduler produces cancellable delayed callbacks. The production
// implementation wraps time.AfterFunc; tests substitute a manual scheduler
// and fire tasks deterministically.
type Scheduler interface {
	After(d time.Duration, fn func()) Task
}

type timerScheduler struct{}

// NewTimerScheduler returns the wall-clock Scheduler used outside tests.
func NewTimerScheduler() Scheduler {
	return timerScheduler{}
}

type timerTask struct {
	t *time.Timer
}

func (timerScheduler) After(d time.Duration, fn func()) Task {
	return timerTask{t: time.AfterFunc(d, fn)}
}

func (t timerTask) Cancel() bool {
	return t.t.Stop()
}
