package mailboxes

import (
	"time"

	"github.com/reusee/mts/commands"
	"github.com/reusee/mts/values"
)

// Entry is one pending invocation. The argument is copied at creation;
// the result slot, if any, is written by the consumer.
type Entry struct {
	Handle     commands.Handle
	Argument   values.Value
	Result     *values.Value
	OnFinished func(commands.Result)

	finished chan struct{}
	outcome  commands.Result
}

func NewEntry(handle commands.Handle, arg values.Value, result *values.Value) *Entry {
	return &Entry{
		Handle:   handle,
		Argument: arg.Deref(),
		Result:   result,
	}
}

// Blocking makes the entry signal completion to Wait.
func (e *Entry) Blocking() *Entry {
	e.finished = make(chan struct{})
	return e
}

func (e *Entry) IsBlocking() bool {
	return e.finished != nil
}

func (e *Entry) finish(r commands.Result) {
	e.outcome = r
	if e.OnFinished != nil {
		e.OnFinished(r)
	}
	if e.finished != nil {
		close(e.finished)
	}
}

// Wait blocks until the owner has executed the entry. On timeout the entry
// stays queued and may still execute later.
func (e *Entry) Wait(timeout time.Duration) commands.Result {
	if e.finished == nil {
		return commands.Queued
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-e.finished:
		return e.outcome
	case <-timer.C:
		return commands.Timeout
	}
}

// Done is closed after execution of a blocking entry.
func (e *Entry) Done() <-chan struct{} {
	return e.finished
}
