package handler

import (
	"net/http"

	"github.com/a-h/templ"
	"github.com/starfederation/datastar-go/datastar"
)

// TemplOption is an alias for datastar's PatchElementOption.
type TemplOption = datastar.PatchElementOption

// WithTarget sets the selector of the element a datastar patch replaces.
func WithTarget(selector string) TemplOption {
	return datastar.WithSelector(selector)
}

// WithPatchMode sets how a datastar patch is merged into the DOM.
func WithPatchMode(mode datastar.ElementPatchMode) TemplOption {
	return datastar.WithMode(mode)
}

// Templ writes component as HTML, or as a datastar element patch when the
// request came from a datastar action. Options only apply to patches.
//
//	handler.Templ(w, r, ui.StatGrid(props), handler.WithTarget("#stats"))
func Templ(w http.ResponseWriter, r *http.Request, component templ.Component, opts ...TemplOption) error {
	return TemplPartial(w, r, component, component, opts...)
}

// TemplPartial sends partial to datastar requests and full to regular ones,
// so one route serves both the page and its fragment.
func TemplPartial(w http.ResponseWriter, r *http.Request, partial, full templ.Component, opts ...TemplOption) error {
	if IsDataStar(r) {
		sse := datastar.NewSSE(w, r)
		return sse.PatchElementTempl(partial, opts...)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return full.Render(r.Context(), w)
}

// TemplStatus writes component as HTML with the given status code. Datastar
// requests get a patch since SSE answers always use 200.
func TemplStatus(w http.ResponseWriter, r *http.Request, status int, component templ.Component, opts ...TemplOption) error {
	if IsDataStar(r) {
		return Templ(w, r, component, opts...)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	return component.Render(r.Context(), w)
}
