package cookie

import (
	"bufio"
	"context"
	"errors"
	"net"
	"net/http"
)

// HTTPStore reads cookies from an inbound request and writes updates to the
// response as Set-Cookie headers.
type HTTPStore struct {
	w http.ResponseWriter
	r *http.Request
}

// NewHTTPStore binds a store to one request/response pair.
func NewHTTPStore(w http.ResponseWriter, r *http.Request) *HTTPStore {
	return &HTTPStore{w: w, r: r}
}

func (s *HTTPStore) GetAll(_ context.Context) ([]Cookie, error) {
	return requestCookies(s.r), nil
}

// SetAll fails with ErrHeadersWritten once the response has been committed,
// which can only be detected when the writer was wrapped with TrackWrites.
func (s *HTTPStore) SetAll(_ context.Context, cookies []Cookie) error {
	if s.w == nil {
		return ErrReadOnly
	}
	if t, ok := s.w.(interface{ Written() bool }); ok && t.Written() {
		return ErrHeadersWritten
	}
	h := s.w.Header()
	for _, c := range cookies {
		SetResponseCookie(h, c)
	}
	return nil
}

// ReadOnlyStore exposes the request cookies of a context that has no response
// to write to, such as rendering a component outside a handler.
type ReadOnlyStore struct {
	r *http.Request
}

func ReadOnly(r *http.Request) ReadOnlyStore {
	return ReadOnlyStore{r: r}
}

func (s ReadOnlyStore) GetAll(_ context.Context) ([]Cookie, error) {
	return requestCookies(s.r), nil
}

func (s ReadOnlyStore) SetAll(_ context.Context, cookies []Cookie) error {
	if len(cookies) == 0 {
		return nil
	}
	return ErrReadOnly
}

func requestCookies(r *http.Request) []Cookie {
	if r == nil {
		return nil
	}
	hc := r.Cookies()
	out := make([]Cookie, 0, len(hc))
	for _, c := range hc {
		out = append(out, FromHTTP(c))
	}
	return out
}

// WriteTracker records whether the response status line has been sent.
type WriteTracker struct {
	http.ResponseWriter
	written bool
}

// TrackWrites wraps w so cookie stores can tell when headers are committed.
func TrackWrites(w http.ResponseWriter) *WriteTracker {
	if t, ok := w.(*WriteTracker); ok {
		return t
	}
	return &WriteTracker{ResponseWriter: w}
}

func (t *WriteTracker) WriteHeader(code int) {
	t.written = true
	t.ResponseWriter.WriteHeader(code)
}

func (t *WriteTracker) Write(b []byte) (int, error) {
	t.written = true
	return t.ResponseWriter.Write(b)
}

func (t *WriteTracker) Written() bool {
	return t.written
}

func (t *WriteTracker) Flush() {
	t.written = true
	if f, ok := t.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (t *WriteTracker) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := t.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("cookie: underlying writer does not support hijacking")
	}
	t.written = true
	return h.Hijack()
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (t *WriteTracker) Unwrap() http.ResponseWriter {
	return t.ResponseWriter
}
