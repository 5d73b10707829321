package collectors

import (
	"encoding/json"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/reusee/mts/managers"
	"github.com/reusee/mts/statetables"
	"github.com/reusee/mts/storages"
	"github.com/reusee/mts/tasks"
	"github.com/reusee/mts/values"
	"github.com/stretchr/testify/require"
)

func openDB(t *testing.T) *storages.DB {
	db, err := storages.Open(filepath.Join(t.TempDir(), "samples.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
	})
	return db
}

func TestPersist(t *testing.T) {
	db := openDB(t)
	c, err := New("collector", "test", db, Config{})
	require.NoError(t, err)

	batch := statetables.Batch{
		Table:   "robot",
		Columns: []string{"position", "label"},
		Ticks:   []uint64{3, 4, 5},
	}
	for i := range batch.Ticks {
		batch.Rows = append(batch.Rows, []values.Value{
			values.New(float64(i) * 1.5),
			values.New("row"),
		})
	}
	require.NoError(t, c.persist(batch))
	require.Equal(t, int64(3), c.Rows())
	require.Equal(t, int64(1), c.Batches())

	samples, err := Samples(t.Context(), db, "robot", "position", 0, 0)
	require.NoError(t, err)
	require.Len(t, samples, 3)
	for i, s := range samples {
		require.Equal(t, batch.Ticks[i], s.Tick)
		require.Equal(t, "test", s.Process)
		require.Equal(t, "collector", s.Collector)
		v, err := Decode[float64](s)
		require.NoError(t, err)
		require.Equal(t, float64(i)*1.5, v)
	}

	samples, err = Samples(t.Context(), db, "robot", "position", 4, 4)
	require.NoError(t, err)
	require.Len(t, samples, 1)
	require.Equal(t, uint64(4), samples[0].Tick)

	_, err = Decode[int](samples[0])
	require.ErrorIs(t, err, values.ErrTypeMismatch)

	columns, err := Columns(t.Context(), db)
	require.NoError(t, err)
	require.Equal(t, []ColumnInfo{
		{Table: "robot", Column: "label", Samples: 3},
		{Table: "robot", Column: "position", Samples: 3},
	}, columns)
}

func TestPersistNonFinite(t *testing.T) {
	db := openDB(t)
	c, err := New("collector", "test", db, Config{})
	require.NoError(t, err)

	invalid := values.New(math.NaN())
	invalid.Valid = false
	batch := statetables.Batch{
		Table:   "robot",
		Columns: []string{"position"},
		Ticks:   []uint64{1, 2, 3},
		Rows: [][]values.Value{
			{values.New(1.5)},
			{invalid},
			{values.New(math.Inf(1))},
		},
	}
	require.NoError(t, c.persist(batch))
	require.Equal(t, int64(3), c.Rows())

	samples, err := Samples(t.Context(), db, "robot", "position", 0, 0)
	require.NoError(t, err)
	require.Len(t, samples, 3)
	require.Equal(t, values.FormatJSON, samples[0].Format)
	require.Equal(t, values.FormatGob, samples[1].Format)
	require.Equal(t, values.FormatGob, samples[2].Format)

	v, err := samples[1].Value(values.PrototypeOf[float64]())
	require.NoError(t, err)
	require.False(t, v.Valid)
	f, ok := values.Cast[float64](v)
	require.True(t, ok)
	require.True(t, math.IsNaN(f))

	f, err = Decode[float64](samples[2])
	require.NoError(t, err)
	require.True(t, math.IsInf(f, 1))

	for _, sample := range samples {
		data, err := json.Marshal(sample)
		require.NoError(t, err)
		var decoded Sample
		require.NoError(t, json.Unmarshal(data, &decoded))
		require.Equal(t, sample.Format, decoded.Format)
		require.Equal(t, sample.Tick, decoded.Tick)
		_, err = Decode[float64](decoded)
		require.NoError(t, err)
	}
}

func TestNoDB(t *testing.T) {
	_, err := New("collector", "test", nil, Config{})
	require.ErrorIs(t, err, ErrNoDB)
}

func TestUnconnectedSource(t *testing.T) {
	c, err := New("collector", "test", openDB(t), Config{})
	require.NoError(t, err)
	require.Error(t, c.Create())
	require.Equal(t, tasks.Initializing, c.State())
	c.Kill()
}

func TestCollectFromTask(t *testing.T) {
	db := openDB(t)

	var value float64
	source := tasks.New("source",
		tasks.Periodic(time.Millisecond),
		tasks.OnRun(func(*tasks.Task) error {
			value++
			return nil
		}),
	)
	_, err := statetables.AddData(source.StateTable(), "value", &value)
	require.NoError(t, err)
	_, err = AddSource(source)
	require.NoError(t, err)

	c, err := New("collector", "test", db, Config{
		BatchSize: 5,
		Columns:   []string{"value"},
	})
	require.NoError(t, err)

	m := managers.New("test", nil, nil, nil)
	require.NoError(t, m.Init())
	require.NoError(t, m.AddComponent(source))
	require.NoError(t, m.AddComponent(c))
	_, err = m.Connect("collector", SourceRequired, "source", SourceInterface)
	require.NoError(t, err)
	require.NoError(t, m.CreateAll())
	m.StartAll()

	require.Eventually(t, func() bool {
		return c.Rows() >= 20
	}, 5*time.Second, 5*time.Millisecond)
	require.NoError(t, m.Shutdown(time.Second))

	samples, err := Samples(t.Context(), db, "source", "value", 0, 0)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(samples), 20)
	var last float64
	for i, s := range samples {
		v, err := Decode[float64](s)
		require.NoError(t, err)
		if i > 0 {
			require.Greater(t, s.Tick, samples[i-1].Tick)
			require.Greater(t, v, last)
		}
		last = v
	}

	columns, err := Columns(t.Context(), db)
	require.NoError(t, err)
	require.Len(t, columns, 1)
}

func TestRegister(t *testing.T) {
	db := openDB(t)
	m := managers.New("test", nil, nil, nil)
	require.NoError(t, m.Init())
	require.NoError(t, Register(m, func() (*storages.DB, error) {
		return db, nil
	}))
	require.True(t, m.HasType(TypeName))
	comp, err := m.CreateComponent(TypeName, "col", managers.NoConfig)
	require.NoError(t, err)
	_, ok := comp.(*Collector)
	require.True(t, ok)
	require.NotNil(t, comp.Required(SourceRequired))
	require.NotNil(t, comp.Provided(ControlInterface))
}
