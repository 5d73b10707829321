package tasks

import "fmt"

type State int32

const (
	Constructed State = iota
	Initializing
	Ready
	Active
	Finishing
	Finished
)

var States = []State{
	Constructed,
	Initializing,
	Ready,
	Active,
	Finishing,
	Finished,
}

func (s State) String() string {
	switch s {
	case Constructed:
		return "CONSTRUCTED"
	case Initializing:
		return "INITIALIZING"
	case Ready:
		return "READY"
	case Active:
		return "ACTIVE"
	case Finishing:
		return "FINISHING"
	case Finished:
		return "FINISHED"
	}
	return fmt.Sprintf("state(%d)", s)
}

func ParseState(s string) (State, error) {
	for _, state := range States {
		if state.String() == s {
			return state, nil
		}
	}
	return 0, fmt.Errorf("unknown state: %s", s)
}

type Request uint8

const (
	RequestCreate Request = iota + 1
	RequestStartupDone
	RequestStart
	RequestSuspend
	RequestKill
	RequestCleanupDone
	RequestReset
)

var Requests = []Request{
	RequestCreate,
	RequestStartupDone,
	RequestStart,
	RequestSuspend,
	RequestKill,
	RequestCleanupDone,
	RequestReset,
}

func (r Request) String() string {
	switch r {
	case RequestCreate:
		return "create"
	case RequestStartupDone:
		return "startup-done"
	case RequestStart:
		return "start"
	case RequestSuspend:
		return "suspend"
	case RequestKill:
		return "kill"
	case RequestCleanupDone:
		return "cleanup-done"
	case RequestReset:
		return "reset"
	}
	return fmt.Sprintf("request(%d)", r)
}

// Next is the transition function of the task lifecycle. It is defined for
// every pair; ok is false when the request is not valid in the state, and
// the state is then returned unchanged.
func Next(state State, req Request) (next State, ok bool) {
	switch state {
	case Constructed:
		switch req {
		case RequestCreate:
			return Initializing, true
		case RequestKill:
			return Finished, true
		}
	case Initializing:
		switch req {
		case RequestCreate:
			return Initializing, true
		case RequestStartupDone:
			return Ready, true
		case RequestKill:
			return Finishing, true
		}
	case Ready:
		switch req {
		case RequestStart:
			return Active, true
		case RequestKill:
			return Finishing, true
		}
	case Active:
		switch req {
		case RequestSuspend:
			return Ready, true
		case RequestKill:
			return Finishing, true
		}
	case Finishing:
		switch req {
		case RequestCleanupDone:
			return Finished, true
		}
	case Finished:
		switch req {
		case RequestReset:
			return Initializing, true
		}
	}
	return state, false
}
