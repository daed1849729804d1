package web

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/JonMunkholm/popdash/internal/core"
	"github.com/JonMunkholm/popdash/internal/render"
	"github.com/JonMunkholm/popdash/internal/web/templates"
	"github.com/go-chi/chi/v5"
)

// handleHealth reports liveness and the number of loaded records.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, map[string]any{
		"status":  "ok",
		"records": s.ds.Len(),
		"years":   len(s.ds.Years()),
	})
}

// handleDashboard renders the full page for the session's selection.
// Optional year and theme query parameters update the selection first,
// so a dashboard URL can be bookmarked.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	q := r.URL.Query()

	var buf bytes.Buffer
	err := sess.Do(func(sel *core.Selection) error {
		next, err := sel.Update(s.ds, q.Get("year"), q.Get("theme"))
		if err != nil {
			return err
		}
		d, err := s.builder.Build(s.ds, next)
		if err != nil {
			return err
		}
		if err := templates.Dashboard(d).Render(r.Context(), &buf); err != nil {
			return err
		}
		*sel = next
		return nil
	})
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

// handleSelection applies a year and/or theme change from the sidebar form.
// Browsers are redirected back to the dashboard; JSON clients get the new
// selection.
func (s *Server) handleSelection(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	sess := sessionFromContext(r.Context())
	var updated core.Selection
	err := sess.Do(func(sel *core.Selection) error {
		next, err := sel.Update(s.ds, r.PostForm.Get("year"), r.PostForm.Get("theme"))
		if err != nil {
			return err
		}
		*sel = next
		updated = next
		return nil
	})
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	if wantsJSON(r) {
		writeJSON(w, r, updated)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleChoroplethSVG renders the session's map as a standalone SVG.
func (s *Server) handleChoroplethSVG(w http.ResponseWriter, r *http.Request) {
	s.renderSVG(w, r, func(sel core.Selection, buf *bytes.Buffer) error {
		view, err := core.SelectYear(s.ds, sel.Year)
		if err != nil {
			return err
		}
		c, err := render.NewChoropleth(view, sel.Theme)
		if err != nil {
			return err
		}
		return templates.ChoroplethSVG(c).Render(r.Context(), buf)
	})
}

// handleHeatmapSVG renders the full-history heatmap in the session's theme.
func (s *Server) handleHeatmapSVG(w http.ResponseWriter, r *http.Request) {
	s.renderSVG(w, r, func(sel core.Selection, buf *bytes.Buffer) error {
		hm, err := render.NewHeatmap(s.ds, sel.Theme)
		if err != nil {
			return err
		}
		return templates.HeatmapSVG(hm).Render(r.Context(), buf)
	})
}

// handleTrendSVG draws one state's population line, e.g. /chart/trend/CA.svg.
func (s *Server) handleTrendSVG(w http.ResponseWriter, r *http.Request) {
	name, ok := strings.CutSuffix(chi.URLParam(r, "file"), ".svg")
	if !ok || name == "" {
		http.NotFound(w, r)
		return
	}

	s.renderSVG(w, r, func(sel core.Selection, buf *bytes.Buffer) error {
		rec, err := s.ds.LookupState(name)
		if err != nil {
			return err
		}
		return render.WriteTrendSVG(buf, s.ds.StateHistory(rec.StateCode), sel.Theme)
	})
}

// renderSVG runs draw under the session lock and writes the result as
// image/svg+xml. The selection is read, never changed.
func (s *Server) renderSVG(w http.ResponseWriter, r *http.Request, draw func(core.Selection, *bytes.Buffer) error) {
	sess := sessionFromContext(r.Context())

	var buf bytes.Buffer
	err := sess.Do(func(sel *core.Selection) error {
		return draw(*sel, &buf)
	})
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	buf.WriteTo(w)
}
