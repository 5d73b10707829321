package commands

import (
	"sync"
	"sync/atomic"
)

// Handle addresses a command in a Table. A handle outlives its command
// safely: once the slot is removed or reused, lookups miss.
type Handle struct {
	table      uint64
	index      uint32
	generation uint32
}

func (h Handle) IsZero() bool {
	return h == Handle{}
}

type slot struct {
	command    *Command
	generation uint32
}

type Table struct {
	id    uint64
	mu    sync.RWMutex
	slots []slot
	free  []uint32
}

var nextTableID atomic.Uint64

func NewTable() *Table {
	return &Table{
		id: nextTableID.Add(1),
	}
}

func (t *Table) ID() uint64 {
	return t.id
}

func (t *Table) Add(c *Command) Handle {
	t.mu.Lock()
	defer t.mu.Unlock()
	var index uint32
	if n := len(t.free); n > 0 {
		index = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		index = uint32(len(t.slots))
		t.slots = append(t.slots, slot{})
	}
	s := &t.slots[index]
	s.generation++
	s.command = c
	return Handle{
		table:      t.id,
		index:      index,
		generation: s.generation,
	}
}

func (t *Table) Get(h Handle) (*Command, bool) {
	if h.table != t.id {
		return nil, false
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	if int(h.index) >= len(t.slots) {
		return nil, false
	}
	s := t.slots[h.index]
	if s.command == nil || s.generation != h.generation {
		return nil, false
	}
	return s.command, true
}

func (t *Table) Remove(h Handle) bool {
	if h.table != t.id {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if int(h.index) >= len(t.slots) {
		return false
	}
	s := &t.slots[h.index]
	if s.command == nil || s.generation != h.generation {
		return false
	}
	s.command = nil
	t.free = append(t.free, h.index)
	return true
}

// Clear invalidates every handle issued so far.
func (t *Table) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.free = t.free[:0]
	for i := range t.slots {
		if t.slots[i].command != nil {
			t.slots[i].command = nil
		}
		t.free = append(t.free, uint32(i))
	}
}

func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.slots) - len(t.free)
}
