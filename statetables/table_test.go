package statetables

import (
	"errors"
	"testing"
	"time"
)

type fakeClock struct {
	now time.Duration
}

func (f *fakeClock) Now() time.Duration {
	return f.now
}

func TestAdvance(t *testing.T) {
	table := New("foo", 4)
	var x float64
	acc, err := AddData(table, "x", &x)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := table.ReaderIndex(); ok {
		t.Fatal()
	}
	if _, err := acc.Latest(); !errors.Is(err, ErrNotAvailable) {
		t.Fatal()
	}

	for i := range 10 {
		before := table.WriterTick()
		x = float64(i)
		table.Start()
		table.Advance()
		if table.WriterTick() != before+1 {
			t.Fatal()
		}
		v, err := acc.Latest()
		if err != nil {
			t.Fatal(err)
		}
		if v != float64(i) {
			t.Fatalf("got %v", v)
		}
	}
}

func TestExpiry(t *testing.T) {
	table := New("foo", 4)
	var x int
	acc, err := AddData(table, "x", &x)
	if err != nil {
		t.Fatal(err)
	}
	table.Advance()
	idx, ok := table.ReaderIndex()
	if !ok || idx != 0 {
		t.Fatal()
	}
	for range table.Capacity() - 1 {
		table.Advance()
		if _, err := acc.Get(idx); err != nil {
			t.Fatal(err)
		}
	}
	table.Advance()
	if _, err := acc.Get(idx); !errors.Is(err, ErrExpired) {
		t.Fatalf("got %v", err)
	}
	if _, err := table.ReaderRow(uint64(idx)); !errors.Is(err, ErrExpired) {
		t.Fatal()
	}
	if _, err := table.ReaderRow(100); !errors.Is(err, ErrNotAvailable) {
		t.Fatal()
	}
}

func TestAddDataAfterUse(t *testing.T) {
	table := New("foo", 4)
	var x int
	if _, err := AddData(table, "x", &x); err != nil {
		t.Fatal(err)
	}
	if _, err := AddData(table, "x", &x); !errors.Is(err, ErrDuplicate) {
		t.Fatal()
	}
	if _, err := AddData(table, "Tic", &x); !errors.Is(err, ErrDuplicate) {
		t.Fatal()
	}
	table.Start()
	var y int
	if _, err := AddData(table, "y", &y); !errors.Is(err, ErrInUse) {
		t.Fatal()
	}

	table.Cleanup()
	if _, err := AddData(table, "y", &y); err != nil {
		t.Fatal(err)
	}
	if len(table.ColumnNames()) != 4 {
		t.Fatalf("got %v", table.ColumnNames())
	}
}

func TestTicTocPeriod(t *testing.T) {
	clock := new(fakeClock)
	table := New("foo", 8, WithClock(clock.Now))
	for range 5 {
		clock.now += 10 * time.Millisecond
		table.Start()
		clock.now += 2 * time.Millisecond
		table.Advance()
	}
	tic, err := table.Tic().Latest()
	if err != nil {
		t.Fatal(err)
	}
	if tic != 58*time.Millisecond {
		t.Fatalf("got %v", tic)
	}
	toc, _ := table.Toc().Latest()
	if toc != 60*time.Millisecond {
		t.Fatalf("got %v", toc)
	}
	period, _ := table.Period().Latest()
	if period != 12*time.Millisecond {
		t.Fatalf("got %v", period)
	}
	stats := table.PeriodStats()
	if stats.Samples != 4 || stats.Avg != 12*time.Millisecond ||
		stats.Min != stats.Max || stats.ComputeTime != 2*time.Millisecond {
		t.Fatalf("got %+v", stats)
	}
	if table.AveragePeriod() != 12*time.Millisecond {
		t.Fatal()
	}

	// values carry the tic of their row
	v, _ := table.Toc().LatestValue()
	if v.Timestamp != tic {
		t.Fatal()
	}
}

func TestDelayAndHistory(t *testing.T) {
	table := New("foo", 8)
	var x int
	acc, err := AddData(table, "x", &x)
	if err != nil {
		t.Fatal(err)
	}
	table.SetDelay(2)
	if _, err := acc.Delayed(); !errors.Is(err, ErrNotAvailable) {
		t.Fatal()
	}
	for i := range 5 {
		x = i * 10
		table.Advance()
	}
	v, err := acc.Delayed()
	if err != nil {
		t.Fatal(err)
	}
	if v != 20 {
		t.Fatalf("got %v", v)
	}
	hist, err := acc.History(1, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(hist) != 3 || hist[0] != 10 || hist[2] != 30 {
		t.Fatalf("got %v", hist)
	}
}

func TestAutomaticAdvance(t *testing.T) {
	table := New("foo", 4)
	table.SetAutomaticAdvance(false)
	table.StartIfAutomatic()
	table.AdvanceIfAutomatic()
	if table.WriterTick() != 0 {
		t.Fatal()
	}
	table.SetAutomaticAdvance(true)
	table.StartIfAutomatic()
	table.AdvanceIfAutomatic()
	if table.WriterTick() != 1 {
		t.Fatal()
	}
	table.Reset()
	if table.WriterTick() != 0 {
		t.Fatal()
	}
}

func TestCollection(t *testing.T) {
	table := New("foo", 4)
	var x int
	if _, err := AddData(table, "x", &x); err != nil {
		t.Fatal(err)
	}
	var batches []Batch
	if err := table.StartCollection(CollectionOptions{
		BatchSize: 3,
		Columns:   []string{"x"},
		OnBatch: func(b Batch) {
			batches = append(batches, b)
		},
	}); err != nil {
		t.Fatal(err)
	}
	if err := table.StartCollection(CollectionOptions{
		OnBatch: func(Batch) {},
	}); !errors.Is(err, ErrCollecting) {
		t.Fatal()
	}
	for i := range 7 {
		x = i
		table.Advance()
	}
	if len(batches) != 2 {
		t.Fatalf("got %d", len(batches))
	}
	b := batches[1]
	if len(b.Columns) != 1 || b.Columns[0] != "x" {
		t.Fatal()
	}
	if len(b.Ticks) != 3 || b.Ticks[0] != 3 {
		t.Fatal()
	}
	table.StopCollection()
	if len(batches) != 3 || len(batches[2].Ticks) != 1 || batches[2].Ticks[0] != 6 {
		t.Fatal()
	}
	if table.IsCollecting() {
		t.Fatal()
	}

	if err := table.StartCollection(CollectionOptions{
		Columns: []string{"nope"},
		OnBatch: func(Batch) {},
	}); !errors.Is(err, ErrNoColumn) {
		t.Fatal()
	}
}

func TestCleanupStaleAccessor(t *testing.T) {
	table := New("foo", 4)
	var x int
	acc, err := AddData(table, "x", &x)
	if err != nil {
		t.Fatal(err)
	}
	table.Advance()
	table.Cleanup()
	table.Advance()
	if _, err := acc.Latest(); !errors.Is(err, ErrNoColumn) {
		t.Fatalf("got %v", err)
	}

	var y string
	accY, err := AddData(table, "y", &y)
	if err != nil {
		t.Fatal(err)
	}
	y = "foo"
	table.Advance()
	if _, err := acc.Latest(); !errors.Is(err, ErrNoColumn) {
		t.Fatalf("got %v", err)
	}
	if v, err := accY.Latest(); err != nil || v != "foo" {
		t.Fatalf("got %v %v", v, err)
	}
	if _, err := table.Tic().Latest(); err != nil {
		t.Fatal(err)
	}
}

func TestHistoryBounds(t *testing.T) {
	table := New("foo", 4)
	var x int
	acc, err := AddData(table, "x", &x)
	if err != nil {
		t.Fatal(err)
	}
	for i := range 6 {
		x = i
		table.Advance()
	}
	if _, err := acc.History(3, ^Index(0)); !errors.Is(err, ErrNotAvailable) {
		t.Fatalf("got %v", err)
	}
	if _, err := acc.History(1, 5); !errors.Is(err, ErrExpired) {
		t.Fatalf("got %v", err)
	}
	hist, err := acc.History(2, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(hist) != 4 || hist[0] != 2 || hist[3] != 5 {
		t.Fatalf("got %v", hist)
	}
}
