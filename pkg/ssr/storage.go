package ssr

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/dmitrymomot/supakit/pkg/cookie"
	"github.com/dmitrymomot/supakit/pkg/logger"
)

// cookieStorage adapts a cookie.Store to supabase.Storage. Writes are kept in
// a local view and only turned into cookies by flush, so one auth operation
// produces one SetAll call carrying the complete session cookie set.
type cookieStorage struct {
	store cookie.Store
	opts  cookie.Options
	chunk int
	log   *slog.Logger

	mu    sync.Mutex
	view  map[string]*string // nil value: removed
	dirty []string
	// sent holds the names set with a value by earlier flushes. The store
	// may not read them back: an HTTPStore only sees the request cookies.
	sent map[string]bool
}

func newCookieStorage(store cookie.Store, o *options) *cookieStorage {
	return &cookieStorage{
		store: store,
		opts:  o.cookieOpts,
		chunk: o.chunkSize,
		log:   o.logger,
		view:  make(map[string]*string),
		sent:  make(map[string]bool),
	}
}

func (s *cookieStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	v, local := s.view[key]
	s.mu.Unlock()
	if local {
		if v == nil {
			return "", false, nil
		}
		return *v, true, nil
	}

	cookies, err := s.store.GetAll(ctx)
	if err != nil {
		return "", false, err
	}
	raw, ok := cookie.Combine(key, cookies)
	if !ok || raw == "" {
		return "", false, nil
	}
	value, err := cookie.Decode(raw)
	if err != nil {
		s.log.WarnContext(ctx, "ignoring malformed session cookie", logger.Cookies(key), logger.Error(err))
		return "", false, nil
	}
	return value, true, nil
}

func (s *cookieStorage) SetItem(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view[key] = &value
	s.markDirty(key)
	return nil
}

func (s *cookieStorage) RemoveItem(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view[key] = nil
	s.markDirty(key)
	return nil
}

func (s *cookieStorage) markDirty(key string) {
	if !slices.Contains(s.dirty, key) {
		s.dirty = append(s.dirty, key)
	}
}

// flush writes pending changes with a single SetAll. Stale chunks of a
// previous, longer value are expired alongside the new ones.
func (s *cookieStorage) flush(ctx context.Context) ([]cookie.Cookie, error) {
	s.mu.Lock()
	dirty := s.dirty
	s.dirty = nil
	values := make(map[string]*string, len(dirty))
	for _, key := range dirty {
		values[key] = s.view[key]
	}
	sent := make([]string, 0, len(s.sent))
	for name := range s.sent {
		sent = append(sent, name)
	}
	s.mu.Unlock()
	slices.Sort(sent)

	if len(dirty) == 0 {
		return nil, nil
	}

	current, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	var out []cookie.Cookie
	for _, key := range dirty {
		written := make(map[string]bool)
		if v := values[key]; v != nil {
			for _, c := range cookie.Chunk(key, cookie.Encode(*v), s.chunk) {
				c.Options = s.opts
				out = append(out, c)
				written[c.Name] = true
			}
		}
		for _, name := range staleNames(key, current, sent) {
			if !written[name] {
				out = append(out, cookie.Expired(name, s.opts))
			}
		}
	}

	if len(out) == 0 {
		return nil, nil
	}
	if err := s.store.SetAll(ctx, out); err != nil {
		return out, err
	}

	s.mu.Lock()
	for _, c := range out {
		if c.IsRemoval() {
			delete(s.sent, c.Name)
		} else {
			s.sent[c.Name] = true
		}
	}
	s.mu.Unlock()
	return out, nil
}

// staleNames lists the cookies of key that exist in the store or were sent
// earlier, each name once.
func staleNames(key string, current []cookie.Cookie, sent []string) []string {
	names := cookie.ChunkNames(key, current)
	for _, name := range sent {
		if cookie.IsChunkOf(key, name) && !slices.Contains(names, name) {
			names = append(names, name)
		}
	}
	return names
}

func cookieNames(cookies []cookie.Cookie) []string {
	names := make([]string, 0, len(cookies))
	for _, c := range cookies {
		names = append(names, c.Name)
	}
	return names
}
