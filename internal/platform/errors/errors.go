package apperrors

import "errors"

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotFound            = errors.New("not found")
	ErrNoActiveSession     = errors.New("no active session")
	ErrActiveSessionExists = errors.New("active session already exists")

	// ErrSessionAlreadyOpen is the server's answer to a start when it already holds
	// an open session the local cache did not know about.
	ErrSessionAlreadyOpen = errors.New("session already open on server")

	ErrBusy          = errors.New("operation already in progress")
	ErrAlreadyPaused = errors.New("session already paused")
	ErrNotPaused     = errors.New("session is not paused")

	ErrUnauthorized         = errors.New("unauthorized")
	ErrForbidden            = errors.New("forbidden")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrNotAuthenticated     = errors.New("not authenticated")

	ErrTransport = errors.New("transport failure")
	ErrRemote    = errors.New("remote error")
)
