package router

import "errors"

var (
	// ErrProtocol is returned by Run when a neighbor sent an unknown or
	// malformed message. This is fatal and closes the protocol; callers
	// (cmd/routed) should log it and exit.
	ErrProtocol = errors.New("router: fatal protocol error")
)
