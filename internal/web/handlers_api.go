package web

import (
	"bytes"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/JonMunkholm/popdash/internal/core"
	"github.com/JonMunkholm/popdash/internal/export"
	"github.com/JonMunkholm/popdash/internal/logging"
	"github.com/go-chi/chi/v5"
)

// MetaResponse describes the loaded dataset and the selectable values.
type MetaResponse struct {
	Source       string          `json:"source"`
	Records      int             `json:"records"`
	Years        []int           `json:"years"`
	Themes       []string        `json:"themes"`
	DefaultYear  int             `json:"default_year"`
	DefaultTheme string          `json:"default_theme"`
	Report       core.LoadReport `json:"load_report"`
}

// handleMeta returns dataset metadata for API clients.
func (s *Server) handleMeta(w http.ResponseWriter, r *http.Request) {
	def := core.NewSelection(s.ds)
	writeJSON(w, r, MetaResponse{
		Source:       s.ds.Source(),
		Records:      s.ds.Len(),
		Years:        s.ds.Years(),
		Themes:       core.ThemeNames(),
		DefaultYear:  def.Year,
		DefaultTheme: def.Theme,
		Report:       s.ds.Report(),
	})
}

// handleDashboardJSON builds the dashboard for ?year=&theme= without
// touching any session. Missing parameters take the defaults.
func (s *Server) handleDashboardJSON(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sel, err := core.ParseSelection(s.ds, q.Get("year"), q.Get("theme"))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	d, err := s.builder.Build(s.ds, sel)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, r, d)
}

// handleExport serves /api/export/{year}.csv and /api/export/{year}.xlsx.
// A well-formed year with no records is a 404; anything else malformed
// is a 400.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	file := chi.URLParam(r, "file")
	ext := path.Ext(file)

	format, err := export.ParseFormat(strings.TrimPrefix(ext, "."))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	year, err := core.ParseYear(strings.TrimSuffix(file, ext))
	if err != nil {
		err = fmt.Errorf("year %q: %w", strings.TrimSuffix(file, ext), core.ErrInvalidYear)
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	sel := core.Selection{Year: year, Theme: core.DefaultTheme()}
	d, err := s.builder.Build(s.ds, sel)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, d.Table, d.Heatmap); err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	logging.FromContext(r.Context()).Info("export served",
		"year", year,
		"format", string(format),
		"rows", len(d.Table.Rows),
		"bytes", buf.Len(),
	)

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(year, format)))
	buf.WriteTo(w)
}
