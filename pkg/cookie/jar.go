package cookie

import (
	"context"
	"slices"
	"sync"
)

// Jar is an in-memory cookie store. It stands in for the browser's cookie
// storage when no HTTP exchange is involved and is safe for concurrent use.
type Jar struct {
	mu      sync.RWMutex
	cookies []Cookie
}

// NewJar creates a jar seeded with the given cookies.
func NewJar(cookies ...Cookie) *Jar {
	j := &Jar{}
	j.apply(cookies)
	return j
}

func (j *Jar) GetAll(_ context.Context) ([]Cookie, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return slices.Clone(j.cookies), nil
}

func (j *Jar) SetAll(_ context.Context, cookies []Cookie) error {
	j.apply(cookies)
	return nil
}

// Get returns the cookie stored under name.
func (j *Jar) Get(name string) (Cookie, bool) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return Find(j.cookies, name)
}

// Len returns the number of stored cookies.
func (j *Jar) Len() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(j.cookies)
}

func (j *Jar) apply(cookies []Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()

	for _, c := range cookies {
		idx := slices.IndexFunc(j.cookies, func(e Cookie) bool { return e.Name == c.Name })
		switch {
		case c.IsRemoval() && idx >= 0:
			j.cookies = slices.Delete(j.cookies, idx, idx+1)
		case c.IsRemoval():
		case idx >= 0:
			j.cookies[idx] = c
		default:
			j.cookies = append(j.cookies, c)
		}
	}
}
