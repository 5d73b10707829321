package statetables

import (
	"fmt"

	"github.com/reusee/mts/values"
)

// Accessor reads one column of a Table with a static type.
type Accessor[T any] struct {
	table  *Table
	column int
	epoch  uint64
	name   string
}

func (a *Accessor[T]) Name() string {
	return a.name
}

func (a *Accessor[T]) Prototype() values.Prototype {
	return values.PrototypeOf[T]()
}

func (a *Accessor[T]) Value(i Index) (values.Value, error) {
	return a.table.read(a.column, a.epoch, uint64(i))
}

func (a *Accessor[T]) Get(i Index) (ret T, err error) {
	v, err := a.Value(i)
	if err != nil {
		return
	}
	ret, ok := values.Cast[T](v)
	if !ok {
		err = fmt.Errorf("%w: %s", values.ErrTypeMismatch, a.name)
	}
	return
}

func (a *Accessor[T]) LatestValue() (values.Value, error) {
	i, ok := a.table.ReaderIndex()
	if !ok {
		return values.Value{}, fmt.Errorf("%w: %s of %s", ErrNotAvailable, a.name, a.table.name)
	}
	return a.Value(i)
}

func (a *Accessor[T]) Latest() (T, error) {
	i, ok := a.table.ReaderIndex()
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %s of %s", ErrNotAvailable, a.name, a.table.name)
	}
	return a.Get(i)
}

func (a *Accessor[T]) Delayed() (T, error) {
	i, ok := a.table.DelayedIndex()
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %s of %s", ErrNotAvailable, a.name, a.table.name)
	}
	return a.Get(i)
}

// History returns the values of ticks [from, to].
func (a *Accessor[T]) History(from, to Index) ([]T, error) {
	if to < from {
		return nil, nil
	}
	writer := Index(a.table.WriterTick())
	if to >= writer {
		return nil, fmt.Errorf("%w: tick %d of %s", ErrNotAvailable, to, a.table.name)
	}
	if writer-from > Index(a.table.capacity) {
		return nil, fmt.Errorf("%w: tick %d of %s", ErrExpired, from, a.table.name)
	}
	ret := make([]T, 0, to-from+1)
	for i := from; i <= to; i++ {
		v, err := a.Get(i)
		if err != nil {
			return nil, err
		}
		ret = append(ret, v)
	}
	return ret, nil
}
