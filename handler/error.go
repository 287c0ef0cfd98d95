package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/supakit/pkg/logger"
	"github.com/dmitrymomot/supakit/pkg/requestid"
	"github.com/dmitrymomot/supakit/pkg/supabase"
	"github.com/dmitrymomot/supakit/pkg/ui"
)

// ErrorTarget is the element datastar error patches are rendered into.
const ErrorTarget = "#flash"

// HTTPError is an error with the status and message shown to the user.
type HTTPError struct {
	Status  int
	Message string
	Err     error
}

// NewError wraps err with a status code and a user-facing message.
func NewError(status int, message string, err error) *HTTPError {
	return &HTTPError{Status: status, Message: message, Err: err}
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *HTTPError) Unwrap() error { return e.Err }

// classify derives the status and the user-facing message of err. Auth
// rejections keep their status and message; everything else is a 500 with a
// generic text so internals never reach the page.
func classify(err error) (int, string) {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status, httpErr.Message
	}
	var apiErr *supabase.APIError
	if errors.As(err, &apiErr) && supabase.IsAuthError(err) {
		return apiErr.Status, apiErr.Message
	}
	return http.StatusInternalServerError, "We could not complete your request. Please try again."
}

// Error logs err and renders ui.ErrorState with the request id as reference.
// Client errors are logged at warn level, server errors at error level.
func Error(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	status, message := classify(err)
	ctx := r.Context()

	level := slog.LevelError
	if status < http.StatusInternalServerError {
		level = slog.LevelWarn
	}
	log.LogAttrs(ctx, level, "request failed",
		logger.Status(status),
		slog.String("path", r.URL.Path),
		logger.Error(err),
	)

	props := ui.ErrorStateProps{
		Title:     http.StatusText(status),
		Message:   message,
		Reference: requestid.FromContext(ctx),
	}
	if r.Method == http.MethodGet {
		if IsDataStar(r) {
			props.Retry = &ui.Action{Get: r.URL.Path}
		} else {
			props.Retry = &ui.Action{Href: r.URL.RequestURI()}
		}
	}

	if rerr := TemplStatus(w, r, status, ui.ErrorState(props), WithTarget(ErrorTarget), WithPatchMode(PatchInner)); rerr != nil {
		log.ErrorContext(ctx, "failed to render error page", logger.Error(rerr))
	}
}
