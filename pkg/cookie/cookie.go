package cookie

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// Cookie is a name/value/options triple.
type Cookie struct {
	Name    string
	Value   string
	Options Options
}

// New builds a cookie with default options overridden by opts.
func New(name, value string, opts ...Option) Cookie {
	return Cookie{Name: name, Value: value, Options: DefaultOptions().Apply(opts...)}
}

// Expired returns a cookie that instructs the client to drop name.
func Expired(name string, opts Options) Cookie {
	opts.MaxAge = -1
	opts.Expires = time.Time{}
	return Cookie{Name: name, Value: "", Options: opts}
}

// IsRemoval reports whether the cookie deletes its name on the client.
func (c Cookie) IsRemoval() bool {
	return c.Options.MaxAge < 0
}

// HTTP converts the cookie into its net/http representation.
func (c Cookie) HTTP() *http.Cookie {
	return &http.Cookie{
		Name:        c.Name,
		Value:       c.Value,
		Path:        c.Options.Path,
		Domain:      c.Options.Domain,
		Expires:     c.Options.Expires,
		MaxAge:      c.Options.MaxAge,
		Secure:      c.Options.Secure,
		HttpOnly:    c.Options.HttpOnly,
		SameSite:    c.Options.SameSite,
		Partitioned: c.Options.Partitioned,
	}
}

// FromHTTP converts a net/http cookie. Request cookies carry name and value only.
func FromHTTP(c *http.Cookie) Cookie {
	return Cookie{
		Name:  c.Name,
		Value: c.Value,
		Options: Options{
			Path:        c.Path,
			Domain:      c.Domain,
			Expires:     c.Expires,
			MaxAge:      c.MaxAge,
			Secure:      c.Secure,
			HttpOnly:    c.HttpOnly,
			SameSite:    c.SameSite,
			Partitioned: c.Partitioned,
		},
	}
}

// Store reads and rewrites the cookie set attached to a request or response.
type Store interface {
	// GetAll returns the current cookies. It must not modify the store.
	GetAll(ctx context.Context) ([]Cookie, error)

	// SetAll applies the given cookies. Removals are cookies with a negative MaxAge.
	SetAll(ctx context.Context, cookies []Cookie) error
}

// Find returns the first cookie with the given name.
func Find(cookies []Cookie, name string) (Cookie, bool) {
	for _, c := range cookies {
		if c.Name == name {
			return c, true
		}
	}
	return Cookie{}, false
}

// SetRequestCookie replaces or adds c in the request's Cookie header so that
// later reads of the same request observe it. Removals drop the name.
func SetRequestCookie(r *http.Request, c Cookie) {
	existing := r.Cookies()
	pairs := make([]string, 0, len(existing)+1)
	replaced := false

	for _, ec := range existing {
		if ec.Name != c.Name {
			pairs = append(pairs, ec.Name+"="+ec.Value)
			continue
		}
		if replaced || c.IsRemoval() {
			continue
		}
		pairs = append(pairs, c.Name+"="+c.Value)
		replaced = true
	}
	if !replaced && !c.IsRemoval() {
		pairs = append(pairs, c.Name+"="+c.Value)
	}

	if len(pairs) == 0 {
		r.Header.Del("Cookie")
		return
	}
	r.Header.Set("Cookie", strings.Join(pairs, "; "))
}

// SetResponseCookie writes c as a Set-Cookie header, replacing any earlier
// Set-Cookie for the same name so the client sees a single final value.
func SetResponseCookie(h http.Header, c Cookie) {
	line := c.HTTP().String()
	if line == "" {
		return
	}

	prefix := c.Name + "="
	var kept []string
	for _, v := range h.Values("Set-Cookie") {
		if !strings.HasPrefix(v, prefix) {
			kept = append(kept, v)
		}
	}
	h.Del("Set-Cookie")
	for _, v := range kept {
		h.Add("Set-Cookie", v)
	}
	h.Add("Set-Cookie", line)
}
