package supabase

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/dmitrymomot/supakit/pkg/logger"
)

// Version is reported to the backend in the X-Client-Info header.
const Version = "0.3.0"

const (
	defaultTimeout      = 10 * time.Second
	defaultExpiryMargin = 90 * time.Second
)

type options struct {
	storage      Storage
	storageKey   string
	httpClient   *http.Client
	timeout      time.Duration
	expiryMargin time.Duration
	headers      map[string]string
	logger       *slog.Logger
	now          func() time.Time
}

// Option configures a Client.
type Option func(*options)

// WithStorage sets where the session is persisted. Defaults to MemoryStorage.
func WithStorage(s Storage) Option {
	return func(o *options) {
		if s != nil {
			o.storage = s
		}
	}
}

// WithStorageKey overrides the key derived from the project URL.
func WithStorageKey(key string) Option {
	return func(o *options) {
		if key != "" {
			o.storageKey = key
		}
	}
}

// WithHTTPClient sends requests through hc instead of a fresh client.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// WithTimeout bounds each request. Ignored when WithHTTPClient is used.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithExpiryMargin sets how long before expiry a session is refreshed.
func WithExpiryMargin(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.expiryMargin = d
		}
	}
}

// WithHeader adds a header to every request.
func WithHeader(name, value string) Option {
	return func(o *options) {
		if o.headers == nil {
			o.headers = make(map[string]string)
		}
		o.headers[name] = value
	}
}

// WithLogger sets the logger for the client and its HTTP diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// Client is a handle bound to one configuration and one session storage.
type Client struct {
	cfg  Config
	rest *resty.Client
	auth *Auth
	log  *slog.Logger
}

// New constructs a client. It validates presence of the configuration and
// performs no network I/O.
func New(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := &options{
		timeout:      defaultTimeout,
		expiryMargin: defaultExpiryMargin,
		logger:       logger.Discard(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.storage == nil {
		o.storage = NewMemoryStorage()
	}
	if o.storageKey == "" {
		o.storageKey = cfg.StorageKey()
	}

	var rest *resty.Client
	if o.httpClient != nil {
		rest = resty.NewWithClient(o.httpClient)
	} else {
		rest = resty.New().SetTimeout(o.timeout)
	}
	rest.SetBaseURL(cfg.baseURL()).
		SetHeader("apikey", cfg.AnonKey).
		SetHeader("X-Client-Info", "supakit-go/"+Version).
		SetLogger(restyLogger{log: o.logger})
	for k, v := range o.headers {
		rest.SetHeader(k, v)
	}

	c := &Client{
		cfg:  cfg,
		rest: rest,
		log:  o.logger,
	}
	c.auth = &Auth{
		rest:    rest,
		apiKey:  cfg.AnonKey,
		storage: o.storage,
		key:     o.storageKey,
		margin:  o.expiryMargin,
		now:     o.now,
		log:     o.logger,
	}
	return c, nil
}

// Auth returns the authentication API bound to this client's session.
func (c *Client) Auth() *Auth {
	return c.auth
}

// Config returns the configuration the client was built with.
func (c *Client) Config() Config {
	return c.cfg
}

// NewRequest returns a request authorized with the current session's access
// token, refreshing it first when needed. Without a session the anon key is
// used. Paths are relative to the project URL, e.g. "/rest/v1/profiles".
func (c *Client) NewRequest(ctx context.Context) (*resty.Request, error) {
	token := c.cfg.AnonKey
	session, err := c.auth.GetSession(ctx)
	if err != nil {
		return nil, err
	}
	if session != nil {
		token = session.AccessToken
	}
	return c.rest.R().SetContext(ctx).SetAuthToken(token), nil
}

// restyLogger routes resty's diagnostics into slog.
type restyLogger struct {
	log *slog.Logger
}

func (l restyLogger) Errorf(format string, v ...any) {
	l.log.Error("supabase: http client", slog.String("detail", fmt.Sprintf(format, v...)))
}

func (l restyLogger) Warnf(format string, v ...any) {
	l.log.Warn("supabase: http client", slog.String("detail", fmt.Sprintf(format, v...)))
}

func (l restyLogger) Debugf(format string, v ...any) {
	l.log.Debug("supabase: http client", slog.String("detail", fmt.Sprintf(format, v...)))
}
