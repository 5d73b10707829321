package interfaces

import (
	"sync/atomic"
	"time"

	"github.com/reusee/mts/commands"
	"github.com/reusee/mts/mailboxes"
	"github.com/reusee/mts/values"
)

// Function is a placeholder in a required interface. It is bound to a
// provided command by Connect and unbound by Disconnect.
type Function struct {
	name     string
	kind     commands.Kind
	argument values.Prototype
	result   values.Prototype
	timeout  time.Duration
	binding  atomic.Pointer[binding]
}

type binding struct {
	command *commands.Command
	handle  commands.Handle
	mailbox *mailboxes.Mailbox
}

func (f *Function) Name() string {
	return f.name
}

func (f *Function) Kind() commands.Kind {
	return f.kind
}

func (f *Function) ArgumentPrototype() values.Prototype {
	return f.argument
}

func (f *Function) ResultPrototype() values.Prototype {
	return f.result
}

// SetTimeout sets how long queued reads wait for the provider.
func (f *Function) SetTimeout(d time.Duration) {
	f.timeout = d
}

func (f *Function) IsBound() bool {
	return f.binding.Load() != nil
}

// Execute invokes the bound command. Calls into another context are queued:
// void and write calls return Queued once enqueued, reads wait for the
// provider up to the function's timeout.
func (f *Function) Execute(arg values.Value, result *values.Value) commands.Result {
	b := f.binding.Load()
	if b == nil {
		return commands.Disconnected
	}
	if b.mailbox == nil || b.command.ConcurrentRead() {
		return b.command.Execute(arg, result)
	}
	if !b.command.Enabled() {
		return commands.Disabled
	}
	if res := b.command.Check(arg, result); res != commands.Succeeded {
		return res
	}
	if !f.kind.HasResult() {
		return b.mailbox.Enqueue(mailboxes.NewEntry(b.handle, arg, nil))
	}
	// the provider writes into a private slot; the caller's slot is only
	// touched after a successful wait
	slot := result.Prototype().New()
	entry := mailboxes.NewEntry(b.handle, arg, &slot).Blocking()
	if res := b.mailbox.Enqueue(entry); res != commands.Queued {
		return res
	}
	res := entry.Wait(f.timeout)
	if res == commands.Succeeded {
		values.StoreValue(result, slot)
	}
	return res
}

func (f *Function) executeBlocking(arg values.Value, timeout time.Duration) commands.Result {
	b := f.binding.Load()
	if b == nil {
		return commands.Disconnected
	}
	if b.mailbox == nil {
		return b.command.Execute(arg, nil)
	}
	if !b.command.Enabled() {
		return commands.Disabled
	}
	if res := b.command.Check(arg, nil); res != commands.Succeeded {
		return res
	}
	entry := mailboxes.NewEntry(b.handle, arg, nil).Blocking()
	if res := b.mailbox.Enqueue(entry); res != commands.Queued {
		return res
	}
	return entry.Wait(timeout)
}

func (f *Function) Void() commands.Result {
	return f.Execute(values.Void(), nil)
}

func (f *Function) Write(arg values.Value) commands.Result {
	return f.Execute(arg, nil)
}

func (f *Function) Read(result *values.Value) commands.Result {
	return f.Execute(values.Void(), result)
}

func (f *Function) QualifiedRead(arg values.Value, result *values.Value) commands.Result {
	return f.Execute(arg, result)
}

// VoidBlocking returns after the provider has executed the command.
func (f *Function) VoidBlocking(timeout time.Duration) commands.Result {
	return f.executeBlocking(values.Void(), timeout)
}

func (f *Function) WriteBlocking(arg values.Value, timeout time.Duration) commands.Result {
	return f.executeBlocking(arg, timeout)
}

// Call is a typed write.
func Call[A any](f *Function, arg A) commands.Result {
	return f.Write(values.New(arg))
}

// Get is a typed read.
func Get[R any](f *Function) (R, commands.Result) {
	slot := values.New(*new(R))
	res := f.Read(&slot)
	ret, _ := values.Cast[R](slot)
	return ret, res
}
