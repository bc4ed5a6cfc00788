// Package common defines shared constants and sentinel errors used across
// nutrilog client layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Transport-level errors.
	ErrUnavailable = errors.New("server unavailable")

	// Auth lifecycle errors.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrAuthExpired marks a 401 that survived a refresh attempt. The session
	// is unrecoverable and the user must authenticate again.
	ErrAuthExpired = errors.New("authentication expired")

	// ErrNoSession is returned when no credentials are available locally.
	ErrNoSession = errors.New("no active session")
)
