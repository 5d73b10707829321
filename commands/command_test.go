package commands

import (
	"errors"
	"testing"

	"github.com/reusee/mts/values"
)

func TestExecuteKinds(t *testing.T) {
	var got []string

	void := NewVoid("reset", func() error {
		got = append(got, "reset")
		return nil
	})
	if r := void.Execute(values.Void(), nil); r != Succeeded {
		t.Fatalf("got %v", r)
	}

	var stored float64
	write := NewWrite("SetValue", func(v float64) error {
		stored = v
		return nil
	})
	if r := write.Execute(values.New(3.14), nil); r != Succeeded {
		t.Fatalf("got %v", r)
	}
	if stored != 3.14 {
		t.Fatal()
	}

	read := NewRead("GetValue", func(p *float64) error {
		*p = stored
		return nil
	})
	result := values.New(0.0)
	if r := read.Execute(values.Void(), &result); r != Succeeded {
		t.Fatalf("got %v", r)
	}
	if v, _ := values.Cast[float64](result); v != 3.14 {
		t.Fatalf("got %v", v)
	}

	qread := NewQualifiedRead("Scale", func(k int, p *float64) error {
		*p = stored * float64(k)
		return nil
	})
	var target float64
	slot := values.Ref(&target)
	if r := qread.Execute(values.New(2), &slot); r != Succeeded {
		t.Fatalf("got %v", r)
	}
	if target != 6.28 {
		t.Fatalf("got %v", target)
	}

	if len(got) != 1 {
		t.Fatal()
	}
}

func TestTypeMismatchDoesNotInvoke(t *testing.T) {
	calls := 0
	cmds := []*Command{
		NewVoid("void", func() error {
			calls++
			return nil
		}),
		NewWrite("write", func(float64) error {
			calls++
			return nil
		}),
		NewRead("read", func(*float64) error {
			calls++
			return nil
		}),
		NewQualifiedRead("qread", func(float64, *float64) error {
			calls++
			return nil
		}),
	}
	badArgs := []values.Value{
		values.New(1),
		values.New("foo"),
		values.New(int64(1)),
		values.Ref[float64](nil),
	}
	for _, cmd := range cmds {
		for _, arg := range badArgs {
			result := values.New("")
			if r := cmd.Execute(arg, &result); r != InvalidInputType {
				t.Fatalf("%s: got %v", cmd.Name(), r)
			}
		}
	}
	if calls != 0 {
		t.Fatalf("invoked %d times", calls)
	}
}

func TestDisabled(t *testing.T) {
	calls := 0
	cmd := NewVoid("foo", func() error {
		calls++
		return nil
	})
	cmd.Disable()
	if r := cmd.Execute(values.Void(), nil); r != Disabled {
		t.Fatalf("got %v", r)
	}
	if calls != 0 {
		t.Fatal()
	}
	cmd.Enable()
	if r := cmd.Execute(values.Void(), nil); r != Succeeded {
		t.Fatalf("got %v", r)
	}
	if calls != 1 {
		t.Fatal()
	}
}

func TestActionError(t *testing.T) {
	cmd := NewWrite("foo", func(int) error {
		return errors.New("boom")
	})
	r := cmd.Execute(values.New(1), nil)
	if r != Failed {
		t.Fatalf("got %v", r)
	}
	if !errors.Is(r.Err(), ErrFailed) {
		t.Fatal()
	}
}

func TestResultErr(t *testing.T) {
	if Succeeded.Err() != nil || Queued.Err() != nil {
		t.Fatal()
	}
	if !errors.Is(MailboxFull.Err(), ErrMailboxFull) {
		t.Fatal()
	}
	if MailboxFull.String() != "MAILBOX_FULL" {
		t.Fatal()
	}
	if Disconnected.OK() {
		t.Fatal()
	}
}

func TestConcurrentRead(t *testing.T) {
	read := NewRead("foo", func(*int) error { return nil }, ConcurrentRead())
	if !read.ConcurrentRead() {
		t.Fatal()
	}
	write := NewWrite("bar", func(int) error { return nil }, ConcurrentRead())
	if write.ConcurrentRead() {
		t.Fatal()
	}
}
