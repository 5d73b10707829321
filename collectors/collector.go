package collectors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/reusee/mts/commands"
	"github.com/reusee/mts/interfaces"
	"github.com/reusee/mts/statetables"
	"github.com/reusee/mts/storages"
	"github.com/reusee/mts/tasks"
	"github.com/reusee/mts/values"
)

const (
	SourceRequired   = "Source"
	ControlInterface = "Control"
)

type Config struct {
	Table     string   `json:"table"`
	BatchSize int      `json:"batch_size"`
	Columns   []string `json:"columns"`
}

// Collector is a task persisting the batches of a source's state table.
// Batches arrive as events and are written on the collector's thread.
type Collector struct {
	*tasks.Task
	db      *storages.DB
	process string
	config  Config

	start *interfaces.Function
	stop  *interfaces.Function

	rows    atomic.Int64
	batches atomic.Int64
}

func New(name string, process string, db *storages.DB, config Config, options ...tasks.Option) (*Collector, error) {
	if db == nil {
		return nil, ErrNoDB
	}
	if err := Migrate(context.Background(), db); err != nil {
		return nil, err
	}
	c := &Collector{
		db:      db,
		process: process,
		config:  config,
	}
	c.Task = tasks.New(name, append(options,
		tasks.OnStartup(c.startup),
		tasks.OnCleanup(c.cleanup),
	)...)

	source, err := c.AddRequired(SourceRequired)
	if err != nil {
		return nil, err
	}
	if c.start, err = interfaces.AddFunctionWrite[Request](source, StartCommand); err != nil {
		return nil, err
	}
	if c.stop, err = interfaces.AddFunctionWrite[string](source, StopCommand); err != nil {
		return nil, err
	}
	if _, err := interfaces.AddEventHandlerWrite(source, BatchReadyEvent, c.persist); err != nil {
		return nil, err
	}

	control, err := c.AddProvided(ControlInterface)
	if err != nil {
		return nil, err
	}
	if err := interfaces.AddRead(control, "Rows", func(ret *int64) error {
		*ret = c.rows.Load()
		return nil
	}, commands.ConcurrentRead()); err != nil {
		return nil, err
	}
	if err := interfaces.AddRead(control, "Batches", func(ret *int64) error {
		*ret = c.batches.Load()
		return nil
	}, commands.ConcurrentRead()); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Collector) startup(*tasks.Task) error {
	res := interfaces.Call(c.start, Request{
		Table:     c.config.Table,
		BatchSize: c.config.BatchSize,
		Columns:   c.config.Columns,
	})
	if !res.OK() {
		return fmt.Errorf("start collection: %w", res.Err())
	}
	c.Context().Logger().Info("collection requested",
		"table", c.config.Table,
		"batch_size", c.config.BatchSize,
	)
	return nil
}

func (c *Collector) cleanup(*tasks.Task) error {
	if res := interfaces.Call(c.stop, c.config.Table); !res.OK() {
		c.Context().Logger().Warn("stop collection", "result", res.String())
	}
	// batches already delivered
	if r := c.Required(SourceRequired); r != nil {
		if _, err := r.ProcessEventMailbox(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Collector) persist(batch statetables.Batch) error {
	ctx := context.Background()
	err := c.db.WithTx(ctx, func(tx storages.Tx) error {
		for i, tick := range batch.Ticks {
			for j, column := range batch.Columns {
				cell := batch.Rows[i][j]
				format, data, err := marshalCell(cell)
				if err != nil {
					return fmt.Errorf("column %s: %w", column, err)
				}
				if _, err := tx.Exec(ctx, insertSample,
					c.process,
					c.Name(),
					batch.Table,
					column,
					int64(tick),
					cell.Prototype().Name(),
					int64(cell.Timestamp),
					format,
					data,
				); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		c.Context().Logger().Error("persist batch",
			"table", batch.Table,
			"rows", len(batch.Ticks),
			"error", err,
		)
		return err
	}
	c.rows.Add(int64(len(batch.Ticks)))
	c.batches.Add(1)
	c.Context().Metrics().Counter("collected_rows").Inc(int64(len(batch.Ticks)))
	return nil
}

// marshalCell encodes cells as JSON, falling back to gob for payloads
// JSON cannot carry, such as NaN and infinite floats.
func marshalCell(cell values.Value) (string, []byte, error) {
	data, err := values.JSON{}.Marshal(cell)
	if err == nil {
		return values.FormatJSON, data, nil
	}
	var valueErr *json.UnsupportedValueError
	var typeErr *json.UnsupportedTypeError
	if !errors.As(err, &valueErr) && !errors.As(err, &typeErr) {
		return "", nil, err
	}
	data, err = values.Gob{}.Marshal(cell)
	if err != nil {
		return "", nil, err
	}
	return values.FormatGob, data, nil
}

func (c *Collector) Rows() int64 {
	return c.rows.Load()
}

func (c *Collector) Batches() int64 {
	return c.batches.Load()
}
