// Package cookie models the HTTP cookie set that carries an auth session.
//
// A Cookie is a name/value/options triple; Options holds the Set-Cookie
// attributes and is passed through every layer untouched. Stores abstract over
// where the set lives:
//
//   - Jar keeps cookies in memory, the in-process stand-in for browser storage.
//   - HTTPStore reads the inbound request and writes Set-Cookie headers.
//   - ReadOnlyStore reads the inbound request and refuses writes.
//
// Values larger than MaxChunkSize are split by Chunk into numbered cookies
// (name.0, name.1, ...) and reassembled with Combine. Encode/Decode wrap a
// value in the "base64-" form so JSON payloads survive cookie transport.
//
// # Usage
//
//	store := cookie.NewHTTPStore(w, r)
//	cookies, _ := store.GetAll(ctx)
//	_ = store.SetAll(ctx, []cookie.Cookie{cookie.New("theme", "dark")})
//
// Wrap the response with TrackWrites when stores must detect a committed
// response: SetAll then fails with ErrHeadersWritten instead of silently
// adding headers nobody will send.
//
// # Configuration
//
// Config is populated from COOKIE_* environment variables through
// github.com/caarlos0/env and converted with Config.Options.
package cookie
