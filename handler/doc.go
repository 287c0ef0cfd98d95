// Package handler renders responses for the dashboard's HTTP handlers.
//
// Pages are templ components. Templ writes them as HTML for regular requests
// and as datastar element patches for requests issued by datastar actions, so
// a single route can serve both the full page and a partial update:
//
//	func stats(w http.ResponseWriter, r *http.Request) {
//		grid := ui.StatGrid(ui.StatGridProps{Stats: load(r.Context())})
//		if err := handler.Templ(w, r, grid, handler.WithTarget("#stats")); err != nil {
//			handler.Error(w, r, log, err)
//		}
//	}
//
// Redirect works the same way: a 303 for regular requests and a client-side
// redirect over SSE for datastar ones.
//
// Wrap turns a typed handler into an http.HandlerFunc. Binders from package
// binder fill the request struct first; errors returned by the handler are
// answered by the error handler:
//
//	r.Get("/auth/confirm", handler.Wrap(s.confirm,
//		handler.WithBinders[ConfirmRequest](binder.Query()),
//	))
//
// Error classifies an error, logs it with the request id and renders
// ui.ErrorState. Wrap errors with NewError to choose the status and the
// message shown to the user. Rejections from the auth server keep their
// status; anything else becomes a 500 with a generic message.
package handler
