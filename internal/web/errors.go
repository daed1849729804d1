package web

// errors.go provides unified error response handling for the web layer.
//
// Every error is logged with its technical detail and request ID, mapped
// through core.MapError, and returned as JSON for API clients or as an
// HTML page otherwise. An empty selection on a page keeps the sidebar so
// the visitor can recover.

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JonMunkholm/popdash/internal/core"
	"github.com/JonMunkholm/popdash/internal/logging"
	"github.com/JonMunkholm/popdash/internal/web/templates"
	"github.com/a-h/templ"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// statusFor picks the HTTP status for a domain error.
func statusFor(err error) int {
	switch {
	case core.IsEmptySelection(err), errors.Is(err, core.ErrUnknownState):
		return http.StatusNotFound
	case core.IsInvalidSelection(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err and writes a user-friendly response in the format
// the client expects.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := core.MapError(err)

	level := slog.LevelWarn
	if statusCode >= 500 {
		level = slog.LevelError
	}
	logging.FromContext(r.Context()).Log(r.Context(), level, "request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
	)

	if wantsJSON(r) {
		respondErrorJSON(w, userMsg, statusCode)
		return
	}

	var empty *core.EmptySelectionError
	if errors.As(err, &empty) {
		sel := core.Selection{Year: empty.Year, Theme: core.DefaultTheme()}
		if sess := sessionFromContext(r.Context()); sess != nil {
			sel.Theme = sess.Selection().Theme
		}
		writeHTML(w, r, statusCode, templates.EmptyState(sel, s.ds.Years(), core.ThemeNames(), userMsg))
		return
	}

	writeHTML(w, r, statusCode, templates.ErrorPage(userMsg.Message, userMsg.Action, userMsg.Code))
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// wantsJSON checks if the client prefers a JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	// API routes default to JSON
	return strings.HasPrefix(r.URL.Path, "/api/")
}

// writeHTML renders c into memory first so a template failure can still
// produce a 500 instead of a truncated page.
func writeHTML(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	var buf bytes.Buffer
	if err := c.Render(r.Context(), &buf); err != nil {
		logging.FromContext(r.Context()).Error("template render failed", "path", r.URL.Path, "error", err)
		http.Error(w, "internal error (ERR000)", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
