package syncs

import "time"

// Signal holds at most one pending wake-up. Raising it many times before a
// wait results in a single wake.
type Signal chan struct{}

func NewSignal() Signal {
	return make(chan struct{}, 1)
}

func (s Signal) Raise() {
	select {
	case s <- struct{}{}:
	default:
	}
}

// Wait returns false on timeout. A non-positive timeout waits forever.
func (s Signal) Wait(timeout time.Duration) bool {
	if timeout <= 0 {
		<-s
		return true
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-s:
		return true
	case <-timer.C:
		return false
	}
}

// Clear drops a pending wake-up.
func (s Signal) Clear() {
	select {
	case <-s:
	default:
	}
}
