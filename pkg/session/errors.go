package session

import "errors"

// ErrNoClient indicates the request did not pass through Middleware.
var ErrNoClient = errors.New("session.no_client")
