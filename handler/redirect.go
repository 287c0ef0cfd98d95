package handler

import (
	"net/http"

	"github.com/starfederation/datastar-go/datastar"
)

// Redirect sends the client to url with a 303. Datastar requests are
// redirected on the client through an SSE script.
func Redirect(w http.ResponseWriter, r *http.Request, url string) error {
	if IsDataStar(r) {
		sse := datastar.NewSSE(w, r)
		return sse.Redirect(url)
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
	return nil
}
