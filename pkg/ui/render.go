package ui

import (
	"context"
	"strings"

	"github.com/a-h/templ"
)

// Render renders a component to a string.
func Render(ctx context.Context, c templ.Component) (string, error) {
	var sb strings.Builder
	if err := c.Render(ctx, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// classes joins non-empty class names.
func classes(names ...string) string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return strings.Join(out, " ")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
