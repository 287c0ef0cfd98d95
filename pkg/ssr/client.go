package ssr

import (
	"context"

	"github.com/dmitrymomot/supakit/pkg/cookie"
	"github.com/dmitrymomot/supakit/pkg/supabase"
)

// writeFailure decides what happens when the session cookies cannot be written.
type writeFailure func(ctx context.Context, cookies []cookie.Cookie, err error)

// newClient builds a supabase client whose session lives in store and whose
// pending cookie changes are flushed on every auth event.
func newClient(cfg supabase.Config, store cookie.Store, o *options, onFailure writeFailure) (*supabase.Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	key := o.storageKey
	if key == "" {
		key = cfg.StorageKey()
	}

	storage := newCookieStorage(store, o)
	clientOpts := append([]supabase.Option{
		supabase.WithStorage(storage),
		supabase.WithStorageKey(key),
		supabase.WithLogger(o.logger),
	}, o.clientOpts...)

	client, err := supabase.New(cfg, clientOpts...)
	if err != nil {
		return nil, err
	}

	client.Auth().OnAuthStateChange(func(ctx context.Context, _ supabase.AuthEvent, _ *supabase.Session) {
		written, err := storage.flush(ctx)
		if err != nil {
			onFailure(ctx, written, err)
		}
	})

	return client, nil
}
