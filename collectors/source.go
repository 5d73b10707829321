package collectors

import (
	"fmt"

	"github.com/reusee/mts/interfaces"
	"github.com/reusee/mts/statetables"
	"github.com/reusee/mts/tasks"
)

const (
	SourceInterface = "StateCollection"
	StartCommand    = "StartCollection"
	StopCommand     = "StopCollection"
	BatchReadyEvent = "BatchReady"
)

// Request selects the rows a source sends. An empty Table is the task's
// default state table.
type Request struct {
	Table     string
	BatchSize int
	Columns   []string
}

// AddSource exposes the state tables of task for collection. Commands run
// on the task's thread and batches are raised as events from it.
func AddSource(task *tasks.Task) (*interfaces.Provided, error) {
	p, err := task.AddProvided(SourceInterface)
	if err != nil {
		return nil, err
	}
	batchReady, err := interfaces.AddEventWrite[statetables.Batch](p, BatchReadyEvent)
	if err != nil {
		return nil, err
	}

	if err := interfaces.AddWrite(p, StartCommand, func(req Request) error {
		table, err := findTable(task, req.Table)
		if err != nil {
			return err
		}
		return table.StartCollection(statetables.CollectionOptions{
			BatchSize: req.BatchSize,
			Columns:   req.Columns,
			OnBatch:   batchReady,
		})
	}); err != nil {
		return nil, err
	}

	if err := interfaces.AddWrite(p, StopCommand, func(name string) error {
		table, err := findTable(task, name)
		if err != nil {
			return err
		}
		table.StopCollection()
		return nil
	}); err != nil {
		return nil, err
	}

	return p, nil
}

func findTable(task *tasks.Task, name string) (*statetables.Table, error) {
	if name == "" {
		return task.StateTable(), nil
	}
	for _, table := range task.StateTables() {
		if table.Name() == name {
			return table, nil
		}
	}
	return nil, fmt.Errorf("%w: %s in %s", ErrNoTable, name, task.Name())
}
