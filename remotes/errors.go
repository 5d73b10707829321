package remotes

import (
	"errors"
	"net/http"

	"github.com/reusee/mts/interfaces"
	"github.com/reusee/mts/managers"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnavailable  = errors.New("unavailable")
	ErrBadRequest   = errors.New("bad request")
	ErrRemote       = errors.New("remote error")
	ErrUnknownPeer  = errors.New("unknown peer")
	ErrIncompatible = errors.New("incompatible interface")
)

func statusOf(err error) int {
	switch {
	case errors.Is(err, managers.ErrComponentNotFound),
		errors.Is(err, interfaces.ErrInterfaceNotFound),
		errors.Is(err, managers.ErrConnectionNotFound):
		return http.StatusNotFound
	case errors.Is(err, interfaces.ErrAlreadyAllocated),
		errors.Is(err, managers.ErrRemoteAlreadyDecided),
		errors.Is(err, managers.ErrRemoteMismatch):
		return http.StatusConflict
	case errors.Is(err, managers.ErrNotInitialized):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func errorOf(status int) error {
	switch status {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	case http.StatusServiceUnavailable:
		return ErrUnavailable
	case http.StatusBadRequest:
		return ErrBadRequest
	}
	return ErrRemote
}
