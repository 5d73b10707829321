package collectors

import "errors"

var (
	ErrNoTable = errors.New("no such state table")
	ErrNoDB    = errors.New("no database")
)
