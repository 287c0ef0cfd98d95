package httpserver

import "errors"

var (
	// ErrStart indicates that the server failed to listen or serve.
	ErrStart = errors.New("httpserver.start_failed")
	// ErrShutdown indicates that graceful shutdown did not finish in time.
	ErrShutdown = errors.New("httpserver.shutdown_failed")
	// ErrRunning is returned by Run on a server that is already running.
	ErrRunning = errors.New("httpserver.already_running")
)
