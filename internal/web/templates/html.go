// Package templates holds the templ components for the dashboard pages and
// inline SVG charts.
package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// htmlWriter accumulates the first write error so components can emit
// markup without checking every call.
type htmlWriter struct {
	ctx context.Context
	w   io.Writer
	err error
}

func newHTMLWriter(ctx context.Context, w io.Writer) *htmlWriter {
	if ctx == nil {
		ctx = context.Background()
	}
	return &htmlWriter{ctx: ctx, w: w}
}

// raw writes trusted markup.
func (h *htmlWriter) raw(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

// tagf writes markup built from a trusted format. String arguments are
// escaped, so callers pass raw values.
func (h *htmlWriter) tagf(format string, args ...any) {
	if h.err != nil {
		return
	}
	for i, a := range args {
		switch v := a.(type) {
		case string:
			args[i] = templ.EscapeString(v)
		case templ.SafeURL:
			args[i] = templ.EscapeString(string(v))
		case fmt.Stringer:
			args[i] = templ.EscapeString(v.String())
		}
	}
	_, h.err = fmt.Fprintf(h.w, format, args...)
}

// text writes escaped text, safe in element bodies and quoted attributes.
func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

// child renders a nested component.
func (h *htmlWriter) child(c templ.Component) {
	if h.err != nil || c == nil {
		return
	}
	h.err = c.Render(h.ctx, h.w)
}
