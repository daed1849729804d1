package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Layout wraps body in the HTML document shell.
func Layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newHTMLWriter(ctx, w)
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw(`<title>`)
		h.text(title)
		h.raw(`</title><link rel="stylesheet" href="/static/app.css"></head><body>`)
		h.child(body)
		h.raw(`</body></html>`)
		return h.err
	})
}

// ErrorAlert renders a user-facing error with its support code.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newHTMLWriter(ctx, w)
		h.raw(`<div class="alert" role="alert"><strong>`)
		h.text(message)
		h.raw(`</strong>`)
		if action != "" {
			h.raw(`<p>`)
			h.text(action)
			h.raw(`</p>`)
		}
		if code != "" {
			h.raw(`<small>Code: `)
			h.text(code)
			h.raw(`</small>`)
		}
		h.raw(`</div>`)
		return h.err
	})
}

// ErrorPage renders a full page around ErrorAlert.
func ErrorPage(message, action, code string) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newHTMLWriter(ctx, w)
		h.raw(`<main class="content narrow">`)
		h.child(ErrorAlert(message, action, code))
		h.raw(`<p><a href="/">Back to the dashboard</a></p></main>`)
		return h.err
	})
	return Layout("Error - US Population Dashboard", body)
}
