package interfaces

import (
	"errors"
	"testing"
	"time"

	"github.com/reusee/mts/commands"
	"github.com/reusee/mts/values"
)

type testProvider struct {
	ctx      *Context
	provided *Provided
	value    float64
	resets   int
}

func newTestProvider(t *testing.T, policy QueueingPolicy) *testProvider {
	p := &testProvider{
		ctx: NewContext("provider", nil, nil),
	}
	p.provided = NewProvided("Robot", p.ctx, policy)
	if err := AddWrite(p.provided, "SetValue", func(v float64) error {
		p.value = v
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	if err := AddRead(p.provided, "GetValue", func(v *float64) error {
		*v = p.value
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	if err := p.provided.AddVoid("Reset", func() error {
		p.resets++
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	return p
}

func newTestRequired(t *testing.T, ctx *Context) (*Required, *Function, *Function) {
	required := NewRequired("Robot", ctx)
	set, err := AddFunctionWrite[float64](required, "SetValue")
	if err != nil {
		t.Fatal(err)
	}
	get, err := AddFunctionRead[float64](required, "GetValue")
	if err != nil {
		t.Fatal(err)
	}
	return required, set, get
}

func TestSameContextDirect(t *testing.T) {
	p := newTestProvider(t, Queued)
	required, set, get := newTestRequired(t, p.ctx)
	if err := Connect(required, p.provided); err != nil {
		t.Fatal(err)
	}
	if r := Call(set, 3.14); r != commands.Succeeded {
		t.Fatalf("got %v", r)
	}
	if p.value != 3.14 {
		t.Fatal()
	}
	v, r := Get[float64](get)
	if r != commands.Succeeded || v != 3.14 {
		t.Fatalf("got %v %v", v, r)
	}
}

func TestCrossContextQueued(t *testing.T) {
	p := newTestProvider(t, Queued)
	woken := 0
	p.ctx.SetWake(func() {
		woken++
	})
	consumer := NewContext("consumer", nil, nil)
	required, set, get := newTestRequired(t, consumer)
	if err := Connect(required, p.provided); err != nil {
		t.Fatal(err)
	}

	if r := Call(set, 3.14); r != commands.Queued {
		t.Fatalf("got %v", r)
	}
	if p.value != 0 {
		t.Fatal("executed on caller")
	}
	if woken != 1 {
		t.Fatal()
	}
	n, err := p.provided.ProcessMailboxes()
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 || p.value != 3.14 {
		t.Fatal()
	}

	// queued read waits for the provider
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			n, err := p.provided.ProcessMailboxes()
			if err != nil {
				panic(err)
			}
			if n > 0 {
				return
			}
			time.Sleep(time.Millisecond)
		}
	}()
	v, r := Get[float64](get)
	if r != commands.Succeeded || v != 3.14 {
		t.Fatalf("got %v %v", v, r)
	}
	<-done

	get.SetTimeout(time.Millisecond)
	if _, r := Get[float64](get); r != commands.Timeout {
		t.Fatalf("got %v", r)
	}
}

func TestQueuedTypeMismatch(t *testing.T) {
	p := newTestProvider(t, Queued)
	consumer := NewContext("consumer", nil, nil)
	required, set, _ := newTestRequired(t, consumer)
	if err := Connect(required, p.provided); err != nil {
		t.Fatal(err)
	}
	if r := set.Write(values.New("foo")); r != commands.InvalidInputType {
		t.Fatalf("got %v", r)
	}
	n, _ := p.provided.ProcessMailboxes()
	if n != 0 {
		t.Fatal()
	}
}

func TestNotQueued(t *testing.T) {
	p := newTestProvider(t, NotQueued)
	consumer := NewContext("consumer", nil, nil)
	required, set, _ := newTestRequired(t, consumer)
	if err := Connect(required, p.provided); err != nil {
		t.Fatal(err)
	}
	if r := Call(set, 1.0); r != commands.Succeeded {
		t.Fatalf("got %v", r)
	}
	if p.value != 1 {
		t.Fatal()
	}
}

func TestConcurrentReadBypassesMailbox(t *testing.T) {
	ctx := NewContext("provider", nil, nil)
	provided := NewProvided("Robot", ctx, Queued)
	if err := AddRead(provided, "GetValue", func(v *float64) error {
		*v = 42
		return nil
	}, commands.ConcurrentRead()); err != nil {
		t.Fatal(err)
	}
	required := NewRequired("Robot", NewContext("consumer", nil, nil))
	get, err := AddFunctionRead[float64](required, "GetValue")
	if err != nil {
		t.Fatal(err)
	}
	if err := Connect(required, provided); err != nil {
		t.Fatal(err)
	}
	v, r := Get[float64](get)
	if r != commands.Succeeded || v != 42 {
		t.Fatal()
	}
}

func TestMailboxFull(t *testing.T) {
	p := newTestProvider(t, Queued)
	p.provided.SetMailboxSize(1)
	required, set, _ := newTestRequired(t, NewContext("consumer", nil, nil))
	if err := Connect(required, p.provided); err != nil {
		t.Fatal(err)
	}
	if r := Call(set, 1.0); r != commands.Queued {
		t.Fatal()
	}
	if r := Call(set, 2.0); r != commands.MailboxFull {
		t.Fatalf("got %v", r)
	}
}

func TestConnectAtomic(t *testing.T) {
	p := newTestProvider(t, Queued)
	required, set, get := newTestRequired(t, NewContext("consumer", nil, nil))
	if _, err := required.AddFunctionVoid("Missing"); err != nil {
		t.Fatal(err)
	}
	err := Connect(required, p.provided)
	if !errors.Is(err, ErrInterfaceNotFound) {
		t.Fatalf("got %v", err)
	}
	if set.IsBound() || get.IsBound() {
		t.Fatal("partially bound")
	}
	if required.IsConnected() {
		t.Fatal()
	}
	if len(p.provided.CallerIDs()) != 0 {
		t.Fatal("resources leaked")
	}
	if r := set.Write(values.New(1.0)); r != commands.Disconnected {
		t.Fatalf("got %v", r)
	}
}

func TestConnectMismatch(t *testing.T) {
	p := newTestProvider(t, Queued)

	required := NewRequired("Robot", NewContext("consumer", nil, nil))
	if _, err := AddFunctionRead[float64](required, "SetValue"); err != nil {
		t.Fatal(err)
	}
	if err := Connect(required, p.provided); !errors.Is(err, ErrKindMismatch) {
		t.Fatalf("got %v", err)
	}

	required = NewRequired("Robot", NewContext("consumer", nil, nil))
	if _, err := AddFunctionWrite[int](required, "SetValue"); err != nil {
		t.Fatal(err)
	}
	if err := Connect(required, p.provided); !errors.Is(err, ErrPrototypeMismatch) {
		t.Fatalf("got %v", err)
	}
}

func TestReconnect(t *testing.T) {
	p := newTestProvider(t, Queued)
	required, set, _ := newTestRequired(t, NewContext("consumer", nil, nil))
	if err := Connect(required, p.provided); err != nil {
		t.Fatal(err)
	}
	if err := Connect(required, p.provided); !errors.Is(err, ErrAlreadyConnected) {
		t.Fatalf("got %v", err)
	}
	if err := Disconnect(required); err != nil {
		t.Fatal(err)
	}
	if r := Call(set, 1.0); r != commands.Disconnected {
		t.Fatal()
	}
	if len(p.provided.CallerIDs()) != 0 {
		t.Fatal()
	}
	if err := Disconnect(required); !errors.Is(err, ErrNotConnected) {
		t.Fatal()
	}
	if err := Connect(required, p.provided); err != nil {
		t.Fatal(err)
	}
}

func TestEvents(t *testing.T) {
	providerCtx := NewContext("provider", nil, nil)
	provided := NewProvided("Robot", providerCtx, Queued)
	moved, err := AddEventWrite[float64](provided, "Moved")
	if err != nil {
		t.Fatal(err)
	}
	stopped, err := provided.AddEventVoid("Stopped")
	if err != nil {
		t.Fatal(err)
	}

	consumerCtx := NewContext("consumer", nil, nil)
	required := NewRequired("Robot", consumerCtx)
	var positions []float64
	if _, err := AddEventHandlerWrite(required, "Moved", func(v float64) error {
		positions = append(positions, v)
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	stops := 0
	if _, err := required.AddEventHandlerVoid("Stopped", func() error {
		stops++
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	// no such event, skipped at connect
	if _, err := required.AddEventHandlerVoid("Exploded", func() error {
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	if err := Connect(required, provided); err != nil {
		t.Fatal(err)
	}

	moved(1)
	moved(2)
	stopped()
	if len(positions) != 0 {
		t.Fatal("handler ran on provider thread")
	}
	n, err := required.ProcessEventMailbox()
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 || len(positions) != 2 || positions[1] != 2 || stops != 1 {
		t.Fatal()
	}

	if err := Disconnect(required); err != nil {
		t.Fatal(err)
	}
	moved(3)
	if n, _ := required.ProcessEventMailbox(); n != 0 {
		t.Fatal()
	}
}

func TestEventHandlerMismatch(t *testing.T) {
	ctx := NewContext("provider", nil, nil)
	provided := NewProvided("Robot", ctx, Queued)
	if _, err := AddEventWrite[float64](provided, "Moved"); err != nil {
		t.Fatal(err)
	}
	required := NewRequired("Robot", NewContext("consumer", nil, nil))
	if _, err := AddEventHandlerWrite(required, "Moved", func(int) error {
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	if err := Connect(required, provided); !errors.Is(err, ErrPrototypeMismatch) {
		t.Fatalf("got %v", err)
	}
}

func TestDuplicates(t *testing.T) {
	p := newTestProvider(t, Queued)
	if err := p.provided.AddVoid("Reset", func() error { return nil }); !errors.Is(err, ErrDuplicate) {
		t.Fatal()
	}
	if _, err := p.provided.AddEventVoid("Reset"); !errors.Is(err, ErrDuplicate) {
		t.Fatal()
	}
	if _, err := p.provided.AllocateResources("foo"); err != nil {
		t.Fatal(err)
	}
	if _, err := p.provided.AllocateResources("foo"); !errors.Is(err, ErrAlreadyAllocated) {
		t.Fatal()
	}
}

func TestAccessInfo(t *testing.T) {
	p := newTestProvider(t, Queued)
	if _, err := p.provided.AddEventVoid("Stopped"); err != nil {
		t.Fatal(err)
	}
	info := p.provided.AccessInfo()
	if info.Component != "provider" || info.Interface != "Robot" {
		t.Fatal()
	}
	if len(info.Commands) != 3 {
		t.Fatal()
	}
	if info.Commands[0].Name != "SetValue" || info.Commands[0].Kind != "write" ||
		info.Commands[0].Argument != "float64" {
		t.Fatalf("got %+v", info.Commands[0])
	}
	if len(info.Events) != 1 || info.Events[0].Kind != "void" {
		t.Fatal()
	}
	if info.Format != values.FormatJSON {
		t.Fatal()
	}
}

func TestBlockingVoid(t *testing.T) {
	p := newTestProvider(t, Queued)
	required := NewRequired("Robot", NewContext("consumer", nil, nil))
	reset, err := required.AddFunctionVoid("Reset")
	if err != nil {
		t.Fatal(err)
	}
	if err := Connect(required, p.provided); err != nil {
		t.Fatal(err)
	}
	if r := reset.VoidBlocking(time.Millisecond); r != commands.Timeout {
		t.Fatalf("got %v", r)
	}
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		for {
			select {
			case <-stop:
				return
			case <-time.After(time.Millisecond):
				p.provided.ProcessMailboxes()
			}
		}
	}()
	if r := reset.VoidBlocking(time.Second); r != commands.Succeeded {
		t.Fatalf("got %v", r)
	}
}
