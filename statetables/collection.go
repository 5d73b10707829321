package statetables

import (
	"errors"
	"fmt"

	"github.com/reusee/mts/values"
)

var ErrCollecting = errors.New("collection already started")

// Batch is a set of committed rows delivered to a collector.
type Batch struct {
	Table      string
	Columns    []string
	Prototypes []values.Prototype
	Ticks      []uint64
	Rows       [][]values.Value
}

type CollectionOptions struct {
	// BatchSize is clamped to the table capacity so that no pending row
	// expires before delivery.
	BatchSize int
	// Columns to collect, all when empty.
	Columns []string
	// OnBatch is called on the writer's thread, outside the table lock.
	OnBatch func(Batch)
}

type collection struct {
	options CollectionOptions
	columns []int
	pending []uint64
}

func (t *Table) StartCollection(options CollectionOptions) error {
	if options.OnBatch == nil {
		return fmt.Errorf("no batch callback for %s", t.name)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.collection != nil {
		return fmt.Errorf("%w: %s", ErrCollecting, t.name)
	}
	columns, err := t.columnIndexes(options.Columns)
	if err != nil {
		return err
	}
	options.BatchSize = max(1, min(options.BatchSize, t.capacity))
	t.collection = &collection{
		options: options,
		columns: columns,
	}
	return nil
}

// StopCollection flushes pending rows and stops collecting.
func (t *Table) StopCollection() {
	t.mu.Lock()
	c := t.collection
	if c == nil {
		t.mu.Unlock()
		return
	}
	batch := t.buildBatch()
	t.collection = nil
	t.mu.Unlock()
	if batch != nil {
		c.options.OnBatch(*batch)
	}
}

func (t *Table) IsCollecting() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.collection != nil
}

func (t *Table) collect(tick uint64) (*Batch, func(Batch)) {
	c := t.collection
	if c == nil {
		return nil, nil
	}
	c.pending = append(c.pending, tick)
	if len(c.pending) < c.options.BatchSize {
		return nil, nil
	}
	return t.buildBatch(), c.options.OnBatch
}

func (t *Table) buildBatch() *Batch {
	c := t.collection
	if len(c.pending) == 0 {
		return nil
	}
	batch := &Batch{
		Table: t.name,
	}
	for _, i := range c.columns {
		batch.Columns = append(batch.Columns, t.columns[i].name)
		batch.Prototypes = append(batch.Prototypes, t.columns[i].proto)
	}
	for _, tick := range c.pending {
		row, err := t.checkTick(tick)
		if err != nil {
			continue
		}
		cells := make([]values.Value, 0, len(c.columns))
		for _, i := range c.columns {
			cells = append(cells, t.columns[i].data[row])
		}
		batch.Ticks = append(batch.Ticks, tick)
		batch.Rows = append(batch.Rows, cells)
	}
	c.pending = c.pending[:0]
	return batch
}
