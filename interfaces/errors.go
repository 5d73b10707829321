package interfaces

import "errors"

var (
	ErrInterfaceNotFound = errors.New("interface not found")
	ErrKindMismatch      = errors.New("command kind mismatch")
	ErrPrototypeMismatch = errors.New("prototype mismatch")
	ErrAlreadyConnected  = errors.New("already connected")
	ErrNotConnected      = errors.New("not connected")
	ErrDuplicate         = errors.New("duplicated name")
	ErrAlreadyAllocated  = errors.New("resources already allocated")
)
