// Package ssr creates auth clients whose session is carried in HTTP cookies.
//
// Three factories cover the places a client is needed:
//
//   - NewBrowserClient: no HTTP exchange; cookies live in an in-memory jar.
//   - NewServerClient: handlers and rendering code. Reads via Store.GetAll,
//     writes via Store.SetAll, and drops write failures because the response
//     may already be committed.
//   - NewMiddlewareClient: middleware in front of the handlers. Writes every
//     refreshed cookie onto the inbound request and the outbound response.
//
// The two server-side paths cooperate: the middleware refreshes the session
// before any handler runs and guarantees the client receives the new cookies;
// a server client created later in the same request observes the refreshed
// request cookies and only writes when it can.
//
// The session is stored as JSON under the project's storage key
// ("sb-<ref>-auth-token"), encoded with cookie.Encode and split into numbered
// chunks when it exceeds the cookie size limit. Changes are buffered and
// written in one SetAll call per auth event.
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//	    client, err := ssr.NewServerClient(cfg, cookie.NewHTTPStore(w, r))
//	    if err != nil { ... }
//	    user, err := client.Auth().GetUser(r.Context())
//	    ...
//	}
//
// A client is bound to one request; create a new one per request and never
// share it between goroutines serving different requests.
package ssr
