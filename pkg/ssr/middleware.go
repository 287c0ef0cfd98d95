package ssr

import (
	"context"
	"net/http"

	"github.com/dmitrymomot/supakit/pkg/cookie"
	"github.com/dmitrymomot/supakit/pkg/logger"
	"github.com/dmitrymomot/supakit/pkg/supabase"
)

// MiddlewareStore mirrors every cookie write onto the inbound request and the
// outbound response. The request side keeps the full triples, including
// options, while the request's Cookie header is rewritten with the values.
type MiddlewareStore struct {
	r   *http.Request
	w   http.ResponseWriter
	req *cookie.Jar
}

// NewMiddlewareStore binds a store to the request/response pair of a middleware.
func NewMiddlewareStore(r *http.Request, w http.ResponseWriter) *MiddlewareStore {
	hc := r.Cookies()
	seed := make([]cookie.Cookie, 0, len(hc))
	for _, c := range hc {
		seed = append(seed, cookie.FromHTTP(c))
	}
	return &MiddlewareStore{r: r, w: w, req: cookie.NewJar(seed...)}
}

// GetAll returns the request cookies, including updates made through SetAll.
func (s *MiddlewareStore) GetAll(ctx context.Context) ([]cookie.Cookie, error) {
	return s.req.GetAll(ctx)
}

// SetAll applies each cookie to the request and to the response, then marks
// the response as uncacheable so shared caches never store a session cookie.
func (s *MiddlewareStore) SetAll(ctx context.Context, cookies []cookie.Cookie) error {
	if len(cookies) == 0 {
		return nil
	}

	if err := s.req.SetAll(ctx, cookies); err != nil {
		return err
	}
	h := s.w.Header()
	for _, c := range cookies {
		cookie.SetRequestCookie(s.r, c)
		cookie.SetResponseCookie(h, c)
	}

	h.Set("Cache-Control", "private, no-cache, no-store, must-revalidate, max-age=0")
	h.Set("Expires", "0")
	h.Set("Pragma", "no-cache")
	return nil
}

// RequestCookies returns the request-side cookie set with the options of
// every cookie written through the store.
func (s *MiddlewareStore) RequestCookies() []cookie.Cookie {
	all, _ := s.req.GetAll(s.r.Context())
	return all
}

// Request returns the inbound request with its Cookie header kept current.
func (s *MiddlewareStore) Request() *http.Request {
	return s.r
}

// MiddlewareClient is a client whose session cookies are mirrored onto the
// request being served and onto its response.
type MiddlewareClient struct {
	*supabase.Client
	store *MiddlewareStore
}

// NewMiddlewareClient returns a client for use inside HTTP middleware. Every
// session refresh is written to both r and w, so handlers further down the
// chain read the refreshed session and the client stores it for the next request.
func NewMiddlewareClient(cfg supabase.Config, r *http.Request, w http.ResponseWriter, opts ...Option) (*MiddlewareClient, error) {
	if r == nil {
		return nil, ErrNilRequest
	}
	if w == nil {
		return nil, ErrNilResponse
	}
	o := buildOptions(opts)
	store := NewMiddlewareStore(r, w)

	client, err := newClient(cfg, store, o, func(ctx context.Context, cookies []cookie.Cookie, err error) {
		o.logger.ErrorContext(ctx, "failed to mirror session cookies",
			logger.Component("ssr.middleware"),
			logger.Cookies(cookieNames(cookies)...),
			logger.Error(err),
		)
	})
	if err != nil {
		return nil, err
	}
	return &MiddlewareClient{Client: client, store: store}, nil
}

// Request returns the inbound request carrying any refreshed cookies. Pass it
// to the next handler.
func (c *MiddlewareClient) Request() *http.Request {
	return c.store.Request()
}

// RequestCookies returns the request-side cookies with their options.
func (c *MiddlewareClient) RequestCookies() []cookie.Cookie {
	return c.store.RequestCookies()
}
