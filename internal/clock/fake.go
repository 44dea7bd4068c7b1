package clock

import (
	"sync"
	"time"
)

// Fake is a manually advanced [Clock] for tests.
//
// Timers fire only from [Fake.Advance], in deadline order (creation order for
// equal deadlines), synchronously on the calling goroutine. The clock's lock is
// not held while a timer function runs, so timer functions may create or stop
// other timers.
type Fake struct {
	mu     sync.Mutex
	now    time.Time
	seq    uint64
	timers []*fakeTimer
}

type fakeTimer struct {
	clock    *Fake
	deadline time.Time
	seq      uint64
	fn       func()
}

// NewFake creates a [Fake] clock set to start.
func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

// Now returns the fake current time.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// AfterFunc registers fn to run once the clock has advanced by d.
func (f *Fake) AfterFunc(d time.Duration, fn func()) Timer {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.seq++
	t := &fakeTimer{
		clock:    f,
		deadline: f.now.Add(d),
		seq:      f.seq,
		fn:       fn,
	}
	f.timers = append(f.timers, t)
	return t
}

// Stop removes the timer if it is still pending.
func (t *fakeTimer) Stop() bool {
	f := t.clock
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, pending := range f.timers {
		if pending == t {
			f.timers = append(f.timers[:i], f.timers[i+1:]...)
			return true
		}
	}
	return false
}

// Advance moves the clock forward by d, firing every timer whose deadline
// falls within the window. Timers created by fired timers are also fired if
// they become due before the window ends.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	target := f.now.Add(d)
	f.mu.Unlock()

	for {
		f.mu.Lock()
		next := f.popDueLocked(target)
		if next == nil {
			f.now = target
			f.mu.Unlock()
			return
		}
		if next.deadline.After(f.now) {
			f.now = next.deadline
		}
		f.mu.Unlock()

		next.fn()
	}
}

// Pending returns the number of timers that have not fired or been stopped.
func (f *Fake) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.timers)
}

// NextIn returns the time until the earliest pending timer fires.
func (f *Fake) NextIn() (time.Duration, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.timers) == 0 {
		return 0, false
	}
	earliest := f.timers[0]
	for _, t := range f.timers[1:] {
		if t.deadline.Before(earliest.deadline) {
			earliest = t
		}
	}
	return earliest.deadline.Sub(f.now), true
}

// popDueLocked removes and returns the earliest timer due at or before target.
func (f *Fake) popDueLocked(target time.Time) *fakeTimer {
	idx := -1
	for i, t := range f.timers {
		if t.deadline.After(target) {
			continue
		}
		if idx == -1 || t.deadline.Before(f.timers[idx].deadline) ||
			(t.deadline.Equal(f.timers[idx].deadline) && t.seq < f.timers[idx].seq) {
			idx = i
		}
	}
	if idx == -1 {
		return nil
	}
	t := f.timers[idx]
	f.timers = append(f.timers[:idx], f.timers[idx+1:]...)
	return t
}
