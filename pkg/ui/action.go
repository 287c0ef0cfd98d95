package ui

import (
	"strings"

	"github.com/a-h/templ"
)

// Action is a user action attached to a component. Href renders a plain link;
// Get renders a button issuing a datastar GET to that URL. Href wins when both
// are set.
type Action struct {
	Label string
	Href  string
	Get   string
}

func (a *Action) empty() bool {
	return a == nil || (a.Href == "" && a.Get == "")
}

func (a *Action) label() string {
	return orDefault(a.Label, "Continue")
}

var jsQuote = strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`, "\r", `\r`)

// getAction is the datastar expression for a Get action.
func (a *Action) getAction() string {
	return "@get('" + jsQuote.Replace(string(templ.URL(a.Get))) + "')"
}
