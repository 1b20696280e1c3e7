package future

import (
	"errors"
	"sync"
	"time"
)

// ErrNotSettled is returned by Result when the future is still pending
var ErrNotSettled = errors.New("future: not settled yet")

// Future is a single-assignment result container. It transitions from
// pending to exactly one of resolved(value) or failed(error); any further
// settle attempt is ignored. The deadline is observed via StepTimeout by
// the session's timeout sweep, the future never fails itself.
type Future struct {
	mu       sync.Mutex
	done     chan struct{}
	settled  bool
	result   []byte
	err      error
	deadline time.Time // zero value = no deadline
}

// New creates a pending future. A timeout of 0 means no deadline.
func New(timeout time.Duration) *Future {
	f := &Future{
		done: make(chan struct{}),
	}
	if timeout > 0 {
		f.deadline = time.Now().Add(timeout)
	}
	return f
}

// --------------------------------------------------------------------------
// Settling (called by the session)
// --------------------------------------------------------------------------

// SetResult resolves the future with a value. It returns false if the
// future was already settled, in which case nothing changes.
func (f *Future) SetResult(result []byte) bool {
	return f.settle(result, nil)
}

// SetError fails the future with an error. It returns false if the
// future was already settled, in which case nothing changes.
func (f *Future) SetError(err error) bool {
	return f.settle(nil, err)
}

// settle performs the pending -> settled transition at most once
func (f *Future) settle(result []byte, err error) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.settled {
		return false
	}
	f.settled = true
	f.result = result
	f.err = err
	close(f.done)
	return true
}

// --------------------------------------------------------------------------
// Observing (called by the application)
// --------------------------------------------------------------------------

// Get blocks until the future is settled and returns its outcome.
//
// Note that a future only settles when something delivers an outcome: a
// matching response, the timeout sweep, or a connection failure. Callers
// waiting on a future outside of Session.Call must make sure the sweep is
// running (the client facade does this) or the deadline will never fire.
func (f *Future) Get() ([]byte, error) {
	<-f.done
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.result, f.err
}

// Done returns a channel that is closed once the future is settled
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Settled reports whether the future has been resolved or failed
func (f *Future) Settled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.settled
}

// Result returns the outcome without blocking. If the future is still
// pending it returns ErrNotSettled.
func (f *Future) Result() ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.settled {
		return nil, ErrNotSettled
	}
	return f.result, f.err
}

// StepTimeout reports whether the future has a deadline that has elapsed
// while the future is still pending. It never settles the future; failing
// an expired future is the job of the timeout sweep.
func (f *Future) StepTimeout() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.settled || f.deadline.IsZero() {
		return false
	}
	return !time.Now().Before(f.deadline)
}
