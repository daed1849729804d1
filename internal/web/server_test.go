package web

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/popdash/internal/config"
	"github.com/JonMunkholm/popdash/internal/core"
	"github.com/JonMunkholm/popdash/internal/render"
	"github.com/xuri/excelize/v2"
)

const sampleCSV = `states,states_code,year,population
California,CA,2018,39461588
Texas,TX,2018,28628666
Wyoming,WY,2018,577601
California,CA,2019,39512223
Texas,TX,2019,28995881
Wyoming,WY,2019,578759
`

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:           "127.0.0.1",
			Port:           0,
			RequestTimeout: 5 * time.Second,
		},
		Session: config.SessionConfig{
			CookieName:      "popdash_session",
			TTL:             time.Hour,
			CleanupInterval: time.Minute,
		},
		Security: config.SecurityConfig{EnableCSP: true},
	}
}

func newTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()
	ds, err := core.ReadCSV(strings.NewReader(sampleCSV), "test.csv", core.LoadOptions{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatal(err)
	}
	return NewServer(ds, cfg)
}

func do(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

// sessionCookie returns the session cookie set on rec, failing if none.
func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == "popdash_session" {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func postSelection(s *Server, cookie *http.Cookie, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/selection", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	return do(s, req)
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return resp
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := do(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" || body["records"] != float64(6) {
		t.Errorf("body = %v", body)
	}
}

func TestDashboard_CreatesSession(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := do(s, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	if rec.Header().Get("Content-Security-Policy") == "" {
		t.Error("missing Content-Security-Policy header")
	}

	cookie := sessionCookie(t, rec)
	if !cookie.HttpOnly {
		t.Error("session cookie should be HttpOnly")
	}
	if s.Sessions().Len() != 1 {
		t.Errorf("sessions = %d, want 1", s.Sessions().Len())
	}

	body := rec.Body.String()
	for _, want := range []string{"California", "Wyoming", "2019"} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}

	// The cookie resumes the same session.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	do(s, req)
	if s.Sessions().Len() != 1 {
		t.Errorf("sessions = %d after reuse, want 1", s.Sessions().Len())
	}
}

func TestDashboard_QueryUpdatesSelection(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := do(s, httptest.NewRequest(http.MethodGet, "/?year=2018&theme=magma", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	sess, ok := s.Sessions().Get(sessionCookie(t, rec).Value)
	if !ok {
		t.Fatal("session not stored")
	}
	if got := sess.Selection(); got != (core.Selection{Year: 2018, Theme: "magma"}) {
		t.Errorf("selection = %+v", got)
	}
}

func TestSelection_UpdateAndRedirect(t *testing.T) {
	s := newTestServer(t, testConfig())
	cookie := sessionCookie(t, do(s, httptest.NewRequest(http.MethodGet, "/", nil)))

	rec := postSelection(s, cookie, url.Values{"year": {"2018"}, "theme": {"Reds"}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("Location = %q, want /", loc)
	}

	sess, _ := s.Sessions().Get(cookie.Value)
	if got := sess.Selection(); got != (core.Selection{Year: 2018, Theme: "reds"}) {
		t.Errorf("selection = %+v, want {2018 reds}", got)
	}

	// Theme-only change keeps the year.
	postSelection(s, cookie, url.Values{"theme": {"viridis"}})
	if got := sess.Selection(); got != (core.Selection{Year: 2018, Theme: "viridis"}) {
		t.Errorf("selection = %+v, want {2018 viridis}", got)
	}
}

func TestSelection_InvalidLeavesSessionUnchanged(t *testing.T) {
	s := newTestServer(t, testConfig())
	cookie := sessionCookie(t, do(s, httptest.NewRequest(http.MethodGet, "/", nil)))
	sess, _ := s.Sessions().Get(cookie.Value)
	before := sess.Selection()

	tests := []struct {
		name string
		form url.Values
		code string
	}{
		{"unknown year", url.Values{"year": {"1999"}}, "SEL002"},
		{"garbage year", url.Values{"year": {"soon"}}, "SEL002"},
		{"unknown theme", url.Values{"year": {"2018"}, "theme": {"sepia"}}, "SEL003"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postSelection(s, cookie, tt.form)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tt.code) {
				t.Errorf("body missing %s", tt.code)
			}
			if got := sess.Selection(); got != before {
				t.Errorf("selection = %+v, want unchanged %+v", got, before)
			}
		})
	}
}

func TestSelection_JSONClient(t *testing.T) {
	s := newTestServer(t, testConfig())

	req := httptest.NewRequest(http.MethodPost, "/selection", strings.NewReader("year=2018"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	rec := do(s, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var sel core.Selection
	if err := json.NewDecoder(rec.Body).Decode(&sel); err != nil {
		t.Fatal(err)
	}
	if sel.Year != 2018 || sel.Theme != "blues" {
		t.Errorf("selection = %+v", sel)
	}
}

func TestSessions_AreIsolated(t *testing.T) {
	s := newTestServer(t, testConfig())
	a := sessionCookie(t, do(s, httptest.NewRequest(http.MethodGet, "/", nil)))
	b := sessionCookie(t, do(s, httptest.NewRequest(http.MethodGet, "/", nil)))
	if a.Value == b.Value {
		t.Fatal("two visitors share a session ID")
	}

	postSelection(s, a, url.Values{"year": {"2018"}, "theme": {"turbo"}})

	sessB, _ := s.Sessions().Get(b.Value)
	if got := sessB.Selection(); got != (core.Selection{Year: 2019, Theme: "blues"}) {
		t.Errorf("other session changed: %+v", got)
	}
}

func TestDashboard_EmptySelectionKeepsSidebar(t *testing.T) {
	s := newTestServer(t, testConfig())
	cookie := sessionCookie(t, do(s, httptest.NewRequest(http.MethodGet, "/", nil)))
	sess, _ := s.Sessions().Get(cookie.Value)
	sess.Do(func(sel *core.Selection) error {
		sel.Year = 1999
		return nil
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	rec := do(s, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"No data for 1999", "SEL001", `action="/selection"`} {
		if !strings.Contains(body, want) {
			t.Errorf("empty state missing %q", want)
		}
	}
}

func TestCharts(t *testing.T) {
	s := newTestServer(t, testConfig())

	tests := []struct {
		path   string
		status int
		want   string
	}{
		{"/chart/choropleth.svg", http.StatusOK, "<svg"},
		{"/chart/heatmap.svg", http.StatusOK, "<svg"},
		{"/chart/trend/tx.svg", http.StatusOK, "<svg"},
		{"/chart/trend/Wyoming.svg", http.StatusOK, "<svg"},
		{"/chart/trend/ZZ.svg", http.StatusNotFound, "SEL004"},
		{"/chart/trend/CA.png", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := do(s, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if tt.status == http.StatusOK && rec.Header().Get("Content-Type") != "image/svg+xml" {
				t.Errorf("Content-Type = %q", rec.Header().Get("Content-Type"))
			}
			if !strings.Contains(rec.Body.String(), tt.want) {
				t.Errorf("body missing %q", tt.want)
			}
		})
	}
}

func TestAPI_Meta(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := do(s, httptest.NewRequest(http.MethodGet, "/api/meta", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var meta MetaResponse
	if err := json.NewDecoder(rec.Body).Decode(&meta); err != nil {
		t.Fatal(err)
	}
	if meta.Records != 6 || meta.DefaultYear != 2019 || meta.DefaultTheme != "blues" || len(meta.Themes) != 10 {
		t.Errorf("meta = %+v", meta)
	}
	if len(meta.Years) != 2 || meta.Years[0] != 2019 {
		t.Errorf("Years = %v, want most recent first", meta.Years)
	}
}

func TestAPI_Dashboard(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := do(s, httptest.NewRequest(http.MethodGet, "/api/dashboard?year=2018&theme=viridis", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; body: %s", rec.Code, rec.Body.String())
	}
	var d render.Dashboard
	if err := json.NewDecoder(rec.Body).Decode(&d); err != nil {
		t.Fatal(err)
	}
	if d.Selection != (core.Selection{Year: 2018, Theme: "viridis"}) {
		t.Errorf("Selection = %+v", d.Selection)
	}
	if len(d.Table.Rows) != 3 || d.Table.Rows[0].StateCode != "CA" {
		t.Errorf("Table = %+v", d.Table)
	}
	if s.Sessions().Len() != 0 {
		t.Error("API request created a session")
	}
}

func TestAPI_DashboardErrors(t *testing.T) {
	s := newTestServer(t, testConfig())

	tests := []struct {
		query  string
		status int
		code   string
	}{
		{"?theme=sepia", http.StatusBadRequest, "SEL003"},
		{"?year=1850", http.StatusBadRequest, "SEL002"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := do(s, httptest.NewRequest(http.MethodGet, "/api/dashboard"+tt.query, nil))
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if got := decodeError(t, rec).Code; got != tt.code {
				t.Errorf("code = %q, want %q", got, tt.code)
			}
		})
	}
}

func TestExport_CSV(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := do(s, httptest.NewRequest(http.MethodGet, "/api/export/2018.csv", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; body: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "us-population-2018.csv") {
		t.Errorf("Content-Disposition = %q", cd)
	}

	rows, err := csv.NewReader(rec.Body).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 4 {
		t.Fatalf("rows = %d, want 4", len(rows))
	}
	if rows[1][1] != "California" || rows[1][3] != "2018" || rows[3][2] != "WY" {
		t.Errorf("rows = %v", rows)
	}
}

func TestExport_XLSX(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := do(s, httptest.NewRequest(http.MethodGet, "/api/export/2019.xlsx", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	f, err := excelize.OpenReader(rec.Body)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	got, _ := f.GetCellValue("Population 2019", "C3")
	if got != "TX" {
		t.Errorf("C3 = %q, want TX", got)
	}
}

func TestExport_Errors(t *testing.T) {
	s := newTestServer(t, testConfig())

	tests := []struct {
		path   string
		status int
		code   string
	}{
		{"/api/export/2031.csv", http.StatusNotFound, "SEL001"},
		{"/api/export/next.csv", http.StatusBadRequest, "SEL002"},
		{"/api/export/2019.pdf", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := do(s, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if tt.code != "" {
				if got := decodeError(t, rec).Code; got != tt.code {
					t.Errorf("code = %q, want %q", got, tt.code)
				}
			}
		})
	}
}

func TestAPI_KeyRequired(t *testing.T) {
	cfg := testConfig()
	cfg.Security.RequireAPIKey = true
	cfg.Security.APIKeys = []string{"secret"}
	s := newTestServer(t, cfg)

	rec := do(s, httptest.NewRequest(http.MethodGet, "/api/meta", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no key: status = %d, want 401", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/meta", nil)
	req.Header.Set("X-API-Key", "secret")
	if rec := do(s, req); rec.Code != http.StatusOK {
		t.Errorf("valid key: status = %d, want 200", rec.Code)
	}

	// Pages stay public.
	if rec := do(s, httptest.NewRequest(http.MethodGet, "/", nil)); rec.Code != http.StatusOK {
		t.Errorf("dashboard: status = %d, want 200", rec.Code)
	}
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Rate = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 2, ExportLimit: 1}
	s := newTestServer(t, cfg)

	for i := range 2 {
		if rec := do(s, httptest.NewRequest(http.MethodGet, "/healthz", nil)); rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d", i, rec.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/meta", nil)
	rec := do(s, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}
	if got := decodeError(t, rec).Code; got != "RATE001" {
		t.Errorf("code = %q, want RATE001", got)
	}
}

func TestRateLimiter_WindowReset(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := newRateLimiter(1, time.Minute)
	rl.now = func() time.Time { return now }

	if !rl.allow("10.0.0.1") {
		t.Fatal("first request denied")
	}
	if rl.allow("10.0.0.1") {
		t.Error("second request in window allowed")
	}
	if !rl.allow("10.0.0.2") {
		t.Error("other client denied")
	}

	now = now.Add(61 * time.Second)
	if !rl.allow("10.0.0.1") {
		t.Error("request after window denied")
	}

	now = now.Add(3 * time.Minute)
	rl.sweep()
	if len(rl.visitors) != 0 {
		t.Errorf("visitors = %d after sweep, want 0", len(rl.visitors))
	}
}

func TestServe_DrainsInFlightRequestsAfterCancel(t *testing.T) {
	s := newTestServer(t, testConfig())

	entered := make(chan struct{})
	release := make(chan struct{})
	s.Router().Get("/slow", func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-release
		if err := r.Context().Err(); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		io.WriteString(w, "done")
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	served := make(chan error, 1)
	go func() { served <- s.Serve(ctx, ln) }()

	type result struct {
		status int
		body   string
		err    error
	}
	got := make(chan result, 1)
	go func() {
		resp, err := http.Get("http://" + ln.Addr().String() + "/slow")
		if err != nil {
			got <- result{err: err}
			return
		}
		defer resp.Body.Close()
		b, _ := io.ReadAll(resp.Body)
		got <- result{status: resp.StatusCode, body: string(b)}
	}()

	select {
	case <-entered:
	case <-time.After(5 * time.Second):
		t.Fatal("request never reached the handler")
	}

	cancel()
	shutdownDone := make(chan error, 1)
	go func() {
		sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer scancel()
		shutdownDone <- s.Shutdown(sctx)
	}()
	close(release)

	r := <-got
	if r.err != nil {
		t.Fatalf("GET /slow: %v", r.err)
	}
	if r.status != http.StatusOK || r.body != "done" {
		t.Errorf("in-flight request = %d %q, want 200 \"done\"", r.status, r.body)
	}
	if err := <-shutdownDone; err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
	if err := <-served; !errors.Is(err, http.ErrServerClosed) {
		t.Errorf("Serve() error = %v, want http.ErrServerClosed", err)
	}
}
