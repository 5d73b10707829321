package mailboxes

import (
	"errors"
	"fmt"

	"github.com/reusee/mts/commands"
	"github.com/uber-go/tally/v4"
)

var ErrDanglingCommand = errors.New("dangling command handle")

type Resolver interface {
	Get(commands.Handle) (*commands.Command, bool)
}

var _ Resolver = new(commands.Table)

// Mailbox is a bounded FIFO of entries. Producers may enqueue from any
// goroutine; only the owning task drains.
type Mailbox struct {
	name      string
	entries   chan *Entry
	resolver  Resolver
	onEnqueue func()
	enqueued  tally.Counter
	full      tally.Counter
	executed  tally.Counter
}

type Option func(*Mailbox)

// OnEnqueue sets a hook called after each successful enqueue.
func OnEnqueue(fn func()) Option {
	return func(m *Mailbox) {
		m.onEnqueue = fn
	}
}

func WithMetrics(scope tally.Scope) Option {
	return func(m *Mailbox) {
		m.setMetrics(scope)
	}
}

func New(name string, capacity int, resolver Resolver, options ...Option) *Mailbox {
	if capacity < 1 {
		capacity = 1
	}
	ret := &Mailbox{
		name:     name,
		entries:  make(chan *Entry, capacity),
		resolver: resolver,
	}
	ret.setMetrics(tally.NoopScope)
	for _, option := range options {
		option(ret)
	}
	return ret
}

func (m *Mailbox) setMetrics(scope tally.Scope) {
	scope = scope.Tagged(map[string]string{
		"mailbox": m.name,
	})
	m.enqueued = scope.Counter("mailbox_enqueued")
	m.full = scope.Counter("mailbox_full")
	m.executed = scope.Counter("mailbox_executed")
}

func (m *Mailbox) Name() string {
	return m.name
}

func (m *Mailbox) Len() int {
	return len(m.entries)
}

func (m *Mailbox) Cap() int {
	return cap(m.entries)
}

// Enqueue never blocks. A full mailbox is reported synchronously.
func (m *Mailbox) Enqueue(e *Entry) commands.Result {
	select {
	case m.entries <- e:
		m.enqueued.Inc(1)
		if m.onEnqueue != nil {
			m.onEnqueue()
		}
		return commands.Queued
	default:
		m.full.Inc(1)
		return commands.MailboxFull
	}
}

// DrainOnce executes, in FIFO order, the entries present when it starts.
// Entries enqueued meanwhile are left for the next call.
func (m *Mailbox) DrainOnce() (int, error) {
	n := len(m.entries)
	for i := range n {
		var e *Entry
		select {
		case e = <-m.entries:
		default:
			return i, nil
		}
		cmd, ok := m.resolver.Get(e.Handle)
		if !ok {
			e.finish(commands.Disconnected)
			return i, fmt.Errorf("%w: mailbox %s", ErrDanglingCommand, m.name)
		}
		e.finish(cmd.Execute(e.Argument, e.Result))
		m.executed.Inc(1)
	}
	return n, nil
}

// Discard drops all pending entries, completing blocking ones as
// disconnected.
func (m *Mailbox) Discard() int {
	n := 0
	for {
		select {
		case e := <-m.entries:
			e.finish(commands.Disconnected)
			n++
		default:
			return n
		}
	}
}
