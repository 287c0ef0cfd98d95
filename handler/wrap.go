package handler

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/supakit/pkg/binder"
	"github.com/dmitrymomot/supakit/pkg/logger"
)

// HandlerFunc handles a request whose input has been bound into req.
// A returned error is passed to the error handler of Wrap.
type HandlerFunc[R any] func(w http.ResponseWriter, r *http.Request, req R) error

// Bind parses a request into v, such as binder.Form or binder.Query.
type Bind func(r *http.Request, v any) error

// ErrorHandler answers a request that failed.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// WrapOption configures Wrap.
type WrapOption[R any] func(*wrapConfig[R])

type wrapConfig[R any] struct {
	binders      []Bind
	errorHandler ErrorHandler
}

// WithBinders appends binders, applied in order. Later binders overwrite
// fields set by earlier ones.
func WithBinders[R any](binders ...Bind) WrapOption[R] {
	return func(c *wrapConfig[R]) {
		c.binders = append(c.binders, binders...)
	}
}

// WithErrorHandler replaces the default error handler, which renders Error
// without logging.
func WithErrorHandler[R any](h ErrorHandler) WrapOption[R] {
	return func(c *wrapConfig[R]) {
		if h != nil {
			c.errorHandler = h
		}
	}
}

// Wrap converts a typed handler into an http.HandlerFunc.
//
//	r.Post("/auth/login", handler.Wrap(s.login,
//		handler.WithBinders[LoginRequest](binder.Query(), binder.Form()),
//		handler.WithErrorHandler[LoginRequest](s.handleError),
//	))
//
// Binders returning binder.ErrNotApplicable are skipped. Other binding
// failures reach the error handler as a 400 HTTPError.
func Wrap[R any](h HandlerFunc[R], opts ...WrapOption[R]) http.HandlerFunc {
	cfg := &wrapConfig[R]{
		errorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			Error(w, r, logger.Discard(), err)
		},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req R
		for _, bind := range cfg.binders {
			if err := bind(r, &req); err != nil {
				if errors.Is(err, binder.ErrNotApplicable) {
					continue
				}
				cfg.errorHandler(w, r, NewError(http.StatusBadRequest, "The submitted data could not be read.", err))
				return
			}
		}

		if err := h(w, r, req); err != nil {
			cfg.errorHandler(w, r, err)
		}
	}
}
