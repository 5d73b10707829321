package commands

import (
	"errors"
	"fmt"
)

// Result is the outcome of a command invocation. All outcomes are returned
// values; the invocation path never panics.
type Result uint8

const (
	Succeeded Result = iota
	Failed
	InvalidInputType
	Disabled
	InterfaceNotFound
	MailboxFull
	Disconnected
	Queued
	Timeout
)

var (
	ErrFailed            = errors.New("command failed")
	ErrInvalidInputType  = errors.New("invalid input type")
	ErrDisabled          = errors.New("command disabled")
	ErrInterfaceNotFound = errors.New("interface not found")
	ErrMailboxFull       = errors.New("mailbox full")
	ErrDisconnected      = errors.New("disconnected")
	ErrTimeout           = errors.New("timeout waiting for command completion")
)

func (r Result) String() string {
	switch r {
	case Succeeded:
		return "COMMAND_SUCCEEDED"
	case Failed:
		return "COMMAND_FAILED"
	case InvalidInputType:
		return "INVALID_INPUT_TYPE"
	case Disabled:
		return "COMMAND_DISABLED"
	case InterfaceNotFound:
		return "INTERFACE_NOT_FOUND"
	case MailboxFull:
		return "MAILBOX_FULL"
	case Disconnected:
		return "DISCONNECTED"
	case Queued:
		return "COMMAND_QUEUED"
	case Timeout:
		return "TIMEOUT"
	}
	return fmt.Sprintf("result(%d)", r)
}

// OK is true for outcomes that are not errors.
func (r Result) OK() bool {
	return r == Succeeded || r == Queued
}

func (r Result) Err() error {
	switch r {
	case Succeeded, Queued:
		return nil
	case Failed:
		return ErrFailed
	case InvalidInputType:
		return ErrInvalidInputType
	case Disabled:
		return ErrDisabled
	case InterfaceNotFound:
		return ErrInterfaceNotFound
	case MailboxFull:
		return ErrMailboxFull
	case Disconnected:
		return ErrDisconnected
	case Timeout:
		return ErrTimeout
	}
	return fmt.Errorf("unknown result %d", r)
}
