package supabase

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
)

var (
	ErrMissingURL          = errors.New("supabase.missing_url")
	ErrMissingAnonKey      = errors.New("supabase.missing_anon_key")
	ErrNoSession           = errors.New("supabase.no_session")
	ErrMissingRefreshToken = errors.New("supabase.missing_refresh_token")
	ErrInvalidSession      = errors.New("supabase.invalid_session")
)

// APIError is a non-2xx answer from the auth server.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("supabase: %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("supabase: %d: %s", e.Status, e.Message)
}

// IsAuthError reports whether err is a rejection of the credentials or
// tokens, as opposed to a transport failure or a server fault.
func IsAuthError(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status >= http.StatusBadRequest && apiErr.Status < http.StatusInternalServerError
}

// errorBody covers both the current and the legacy GoTrue error shapes.
type errorBody struct {
	ErrorCode   string `json:"error_code"`
	Msg         string `json:"msg"`
	Message     string `json:"message"`
	Error       string `json:"error"`
	Description string `json:"error_description"`
}

func parseAPIError(resp *resty.Response) error {
	apiErr := &APIError{Status: resp.StatusCode()}

	var body errorBody
	if err := json.Unmarshal(resp.Body(), &body); err == nil {
		apiErr.Code = firstNonEmpty(body.ErrorCode, body.Error)
		apiErr.Message = firstNonEmpty(body.Msg, body.Message, body.Description, body.Error)
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode())
	}
	return apiErr
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
