// Package ui holds the dashboard's presentation components.
//
// Every component is a templ.Component built from a props struct. Rendering is
// pure: the same props always produce the same markup, all text is
// HTML-escaped and nothing talks to the network or touches storage.
// Enumerated props such as Variant fall back to their default when given an
// unknown value, and Class adds caller classes to the component's own.
//
//	grid := ui.StatGrid(ui.StatGridProps{
//		Stats: []ui.StatProps{
//			{Label: "Sign-ins", Value: "42", Trend: ui.TrendUp},
//			{Label: "Provider", Value: user.Provider()},
//		},
//	})
//
// Components are written as .templ files; the *_templ.go files next to them
// are produced by `templ generate` and committed. Render them with
// handler.Templ or, when a string is needed, Render.
package ui
