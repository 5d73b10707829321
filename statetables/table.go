package statetables

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/reusee/mts/values"
)

var (
	ErrInUse        = errors.New("state table in use")
	ErrDuplicate    = errors.New("duplicated column")
	ErrExpired      = errors.New("row expired")
	ErrNotAvailable = errors.New("row not available")
	ErrNoColumn     = errors.New("no such column")
)

const DefaultCapacity = 256

// Tic, Toc and Period come first and survive Cleanup.
const builtinColumns = 3

// Index is the tick of a committed row.
type Index uint64

type column struct {
	name     string
	proto    values.Prototype
	snapshot func() values.Value
	data     []values.Value
}

// Table is a ring of rows written by one task once per cycle and read
// concurrently by others. A row stays readable for Capacity advances.
type Table struct {
	name     string
	capacity int
	clock    func() time.Duration

	mu        sync.RWMutex
	columns   []*column
	byName    map[string]int
	ticks     []uint64
	writer    uint64
	inUse     bool
	started   bool
	automatic bool
	delay     int
	epoch     uint64

	tic     time.Duration
	toc     time.Duration
	period  time.Duration
	lastTic time.Duration
	hasTic  bool

	collection *collection

	tics    *Accessor[time.Duration]
	tocs    *Accessor[time.Duration]
	periods *Accessor[time.Duration]
}

type Option func(*Table)

func WithClock(fn func() time.Duration) Option {
	return func(t *Table) {
		t.clock = fn
	}
}

func Automatic(b bool) Option {
	return func(t *Table) {
		t.automatic = b
	}
}

var processStart = time.Now()

func New(name string, capacity int, options ...Option) *Table {
	if capacity < 2 {
		capacity = 2
	}
	t := &Table{
		name:      name,
		capacity:  capacity,
		byName:    make(map[string]int),
		ticks:     make([]uint64, capacity),
		automatic: true,
		clock: func() time.Duration {
			return time.Since(processStart)
		},
	}
	for _, option := range options {
		option(t)
	}
	t.resetTicks()
	t.tics = mustAdd(t, "Tic", &t.tic)
	t.tocs = mustAdd(t, "Toc", &t.toc)
	t.periods = mustAdd(t, "Period", &t.period)
	return t
}

func mustAdd[T any](t *Table, name string, p *T) *Accessor[T] {
	a, err := AddData(t, name, p)
	if err != nil {
		panic(err)
	}
	return a
}

// a row never written holds a tick that no reader can ask for
func (t *Table) resetTicks() {
	for i := range t.ticks {
		t.ticks[i] = ^uint64(0)
	}
	t.writer = 0
}

func (t *Table) Name() string {
	return t.name
}

func (t *Table) Capacity() int {
	return t.capacity
}

// AddData registers a column copied from p at every Advance. Columns can
// only be added before the table is first used.
func AddData[T any](t *Table, name string, p *T) (*Accessor[T], error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.inUse {
		return nil, fmt.Errorf("%w: add %s to %s", ErrInUse, name, t.name)
	}
	if _, ok := t.byName[name]; ok {
		return nil, fmt.Errorf("%w: %s in %s", ErrDuplicate, name, t.name)
	}
	col := &column{
		name:  name,
		proto: values.PrototypeOf[T](),
		snapshot: func() values.Value {
			return values.New(*p)
		},
		data: make([]values.Value, t.capacity),
	}
	t.byName[name] = len(t.columns)
	t.columns = append(t.columns, col)
	return &Accessor[T]{
		table:  t,
		column: len(t.columns) - 1,
		epoch:  t.epoch,
		name:   name,
	}, nil
}

func (t *Table) ColumnNames() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ret := make([]string, 0, len(t.columns))
	for _, col := range t.columns {
		ret = append(ret, col.name)
	}
	return ret
}

func (t *Table) ColumnPrototype(name string) (values.Prototype, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	i, ok := t.byName[name]
	if !ok {
		return values.Prototype{}, false
	}
	return t.columns[i].proto, true
}

// Start marks the beginning of a cycle.
func (t *Table) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.start()
}

func (t *Table) start() {
	t.inUse = true
	t.started = true
	now := t.clock()
	if t.hasTic {
		t.period = now - t.lastTic
	}
	t.tic = now
	t.lastTic = now
	t.hasTic = true
}

// Advance commits the current row and moves the writer to the next one.
// Each call advances the writer tick by exactly one.
func (t *Table) Advance() {
	t.mu.Lock()
	if !t.started {
		t.start()
	}
	t.toc = t.clock()
	tick := t.writer
	row := int(tick % uint64(t.capacity))
	for _, col := range t.columns {
		v := col.snapshot()
		v.SetTimestampIfAutomatic(t.tic)
		col.data[row] = v
	}
	t.ticks[row] = tick
	t.writer++
	t.started = false
	batch, onBatch := t.collect(tick)
	t.mu.Unlock()

	if batch != nil {
		onBatch(*batch)
	}
}

func (t *Table) SetAutomaticAdvance(b bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.automatic = b
}

func (t *Table) AutomaticAdvance() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.automatic
}

func (t *Table) StartIfAutomatic() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.automatic {
		t.start()
	}
}

func (t *Table) AdvanceIfAutomatic() {
	if t.AutomaticAdvance() {
		t.Advance()
	}
}

// WriterTick is the tick of the row being written.
func (t *Table) WriterTick() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.writer
}

// ReaderIndex is the latest committed row.
func (t *Table) ReaderIndex() (Index, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.writer == 0 {
		return 0, false
	}
	return Index(t.writer - 1), true
}

func (t *Table) SetDelay(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if n < 0 {
		n = 0
	}
	if n >= t.capacity {
		n = t.capacity - 1
	}
	t.delay = n
}

// DelayedIndex is the reader index moved back by the configured delay.
func (t *Table) DelayedIndex() (Index, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.writer <= uint64(t.delay) {
		return 0, false
	}
	return Index(t.writer - 1 - uint64(t.delay)), true
}

// Row is a copy of one committed row.
type Row struct {
	Tick   uint64
	Values []values.Value
}

func (t *Table) checkTick(tick uint64) (int, error) {
	if tick >= t.writer {
		return 0, fmt.Errorf("%w: tick %d of %s", ErrNotAvailable, tick, t.name)
	}
	row := int(tick % uint64(t.capacity))
	if t.ticks[row] != tick {
		return 0, fmt.Errorf("%w: tick %d of %s", ErrExpired, tick, t.name)
	}
	return row, nil
}

func (t *Table) ReaderRow(tick uint64) (Row, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	row, err := t.checkTick(tick)
	if err != nil {
		return Row{}, err
	}
	ret := Row{
		Tick:   tick,
		Values: make([]values.Value, 0, len(t.columns)),
	}
	for _, col := range t.columns {
		ret.Values = append(ret.Values, col.data[row])
	}
	return ret, nil
}

// read fails with ErrNoColumn for columns dropped by Cleanup.
func (t *Table) read(column int, epoch uint64, tick uint64) (values.Value, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if column >= len(t.columns) || (column >= builtinColumns && epoch != t.epoch) {
		return values.Value{}, fmt.Errorf("%w: column %d of %s", ErrNoColumn, column, t.name)
	}
	row, err := t.checkTick(tick)
	if err != nil {
		return values.Value{}, err
	}
	return t.columns[column].data[row], nil
}

// ReadColumn reads a column by name.
func (t *Table) ReadColumn(name string, tick uint64) (values.Value, error) {
	t.mu.RLock()
	i, ok := t.byName[name]
	epoch := t.epoch
	t.mu.RUnlock()
	if !ok {
		return values.Value{}, fmt.Errorf("%w: %s in %s", ErrNoColumn, name, t.name)
	}
	return t.read(i, epoch, tick)
}

// Cleanup drops user columns and makes the table accept new ones.
// Accessors of dropped columns return ErrNoColumn from then on.
func (t *Table) Cleanup() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.columns = t.columns[:builtinColumns]
	t.epoch++
	for name, i := range t.byName {
		if i >= builtinColumns {
			delete(t.byName, name)
		}
	}
	t.inUse = false
	t.started = false
	t.hasTic = false
	t.collection = nil
	t.resetTicks()
}

// Reset forgets committed rows, keeping the columns.
func (t *Table) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.started = false
	t.hasTic = false
	t.period = 0
	t.resetTicks()
	if t.collection != nil {
		t.collection.pending = t.collection.pending[:0]
	}
}

func (t *Table) Tic() *Accessor[time.Duration] {
	return t.tics
}

func (t *Table) Toc() *Accessor[time.Duration] {
	return t.tocs
}

func (t *Table) Period() *Accessor[time.Duration] {
	return t.periods
}

// PeriodStats summarizes the committed rows still readable.
type PeriodStats struct {
	Samples     int
	Min         time.Duration
	Max         time.Duration
	Avg         time.Duration
	ComputeTime time.Duration
}

func (t *Table) PeriodStats() PeriodStats {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var stats PeriodStats
	n := min(t.writer, uint64(t.capacity))
	var periodSum, computeSum time.Duration
	for i := uint64(0); i < n; i++ {
		tick := t.writer - 1 - i
		row := int(tick % uint64(t.capacity))
		if tick == 0 {
			// first row has no period
			break
		}
		p, _ := values.Cast[time.Duration](t.columns[2].data[row])
		if stats.Samples == 0 || p < stats.Min {
			stats.Min = p
		}
		if p > stats.Max {
			stats.Max = p
		}
		periodSum += p
		computeSum += t.rowCompute(row)
		stats.Samples++
	}
	if stats.Samples > 0 {
		stats.Avg = periodSum / time.Duration(stats.Samples)
		stats.ComputeTime = computeSum / time.Duration(stats.Samples)
	}
	return stats
}

func (t *Table) rowCompute(row int) time.Duration {
	tic, _ := values.Cast[time.Duration](t.columns[0].data[row])
	toc, _ := values.Cast[time.Duration](t.columns[1].data[row])
	return toc - tic
}

func (t *Table) AveragePeriod() time.Duration {
	return t.PeriodStats().Avg
}

func (t *Table) columnIndexes(names []string) ([]int, error) {
	if len(names) == 0 {
		ret := make([]int, len(t.columns))
		for i := range ret {
			ret[i] = i
		}
		return ret, nil
	}
	ret := make([]int, 0, len(names))
	for _, name := range names {
		i, ok := t.byName[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s in %s", ErrNoColumn, name, t.name)
		}
		if slices.Contains(ret, i) {
			continue
		}
		ret = append(ret, i)
	}
	return ret, nil
}
