package httpserver

import (
	"log/slog"
	"net"
)

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger for lifecycle messages and the server's error log.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithListener serves on ln instead of listening on Config.Addr.
func WithListener(ln net.Listener) Option {
	return func(s *Server) { s.ln = ln }
}
