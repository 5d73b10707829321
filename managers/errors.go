package managers

import "errors"

var (
	ErrNotInitialized       = errors.New("manager not initialized")
	ErrDuplicateComponent   = errors.New("duplicated component")
	ErrComponentNotFound    = errors.New("component not found")
	ErrComponentRunning     = errors.New("component running")
	ErrConnectionNotFound   = errors.New("connection not found")
	ErrUnknownType          = errors.New("unknown component type")
	ErrDuplicateType        = errors.New("duplicated component type")
	ErrShutdownTimeout      = errors.New("timeout waiting for components to finish")
	ErrRemoteAlreadyDecided = errors.New("remote connection already established")
	ErrRemoteMismatch       = errors.New("remote connection endpoints mismatch")
)
