package chi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/dirsearch/internal/metrics"
	"github.com/kailas-cloud/dirsearch/internal/transport/backend"
	healthuc "github.com/kailas-cloud/dirsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/dirsearch/internal/usecase/search"
	suggestuc "github.com/kailas-cloud/dirsearch/internal/usecase/suggest"
)

// --- Fakes ---

// manualScheduler runs timers only when flush is called.
type manualScheduler struct {
	mu     sync.Mutex
	timers []*manualTimer
}

type manualTimer struct {
	fn      func()
	stopped bool
}

func (t *manualTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

func (s *manualScheduler) AfterFunc(_ time.Duration, f func()) suggestuc.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{fn: f}
	s.timers = append(s.timers, t)
	return t
}

func (s *manualScheduler) flush() {
	s.mu.Lock()
	timers := s.timers
	s.timers = nil
	s.mu.Unlock()
	for _, t := range timers {
		if !t.stopped {
			t.stopped = true
			t.fn()
		}
	}
}

// fakeDirectory is the upstream company directory API.
type fakeDirectory struct {
	mu       sync.Mutex
	searches []map[string]any
	failWith int
	healthy  bool
}

func (d *fakeDirectory) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/search/comprehensive", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		d.mu.Lock()
		d.searches = append(d.searches, body)
		fail := d.failWith
		d.mu.Unlock()
		if fail != 0 {
			w.WriteHeader(fail)
			return
		}
		_, _ = io.WriteString(w, `{
			"documents":[{"id":"1","name_s":"Acme","industry_s":"Software","locality_ss":["Austin"],"year_founded_d":2010}],
			"totalResults":30,
			"facets":{"industry_s":{"Software":30}}
		}`)
	})
	mux.HandleFunc("/autosuggest", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"allSuggestions":[
			{"text":"Acme","type":"company"},
			{"text":"Austin","type":"location"}
		]}`)
	})
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		d.mu.Lock()
		ok := d.healthy
		d.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	})
	return mux
}

func (d *fakeDirectory) lastSearch(t *testing.T) map[string]any {
	t.Helper()
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.searches) == 0 {
		t.Fatal("no search reached the backend")
	}
	return d.searches[len(d.searches)-1]
}

type gateway struct {
	dir     *fakeDirectory
	sched   *manualScheduler
	handler http.Handler
}

func newGateway(t *testing.T, apiKeys ...string) *gateway {
	t.Helper()
	dir := &fakeDirectory{healthy: true}
	upstream := httptest.NewServer(dir.handler())
	t.Cleanup(upstream.Close)

	client, err := backend.NewClient(backend.Config{BaseURL: upstream.URL})
	if err != nil {
		t.Fatal(err)
	}
	health := healthuc.New(client, time.Second, nil)
	session := searchuc.NewSession(searchuc.New(client, health, nil), 25, nil)
	sched := &manualScheduler{}
	ctrl := suggestuc.New(client, session, suggestuc.Config{Scheduler: sched})
	t.Cleanup(ctrl.Close)

	srv := NewServer(session, ctrl, health, nil, nil)
	return &gateway{dir: dir, sched: sched, handler: srv.Router(apiKeys)}
}

func (g *gateway) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, StateResponse) {
	t.Helper()
	var reader io.Reader = http.NoBody
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rr := httptest.NewRecorder()
	g.handler.ServeHTTP(rr, req)

	var st StateResponse
	if rr.Code == http.StatusOK && strings.HasPrefix(path, "/api/") {
		if err := json.Unmarshal(rr.Body.Bytes(), &st); err != nil {
			t.Fatalf("decode state: %v (%s)", err, rr.Body.String())
		}
	}
	return rr, st
}

// --- Tests ---

func TestGetState_Initial(t *testing.T) {
	g := newGateway(t)

	rr, st := g.do(t, "GET", "/api/state", "")

	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	if st.Search.Page != 1 || st.Search.SortBy != "foundingYear" || st.Search.Searched {
		t.Errorf("unexpected initial search state %+v", st.Search)
	}
	if st.Suggest.Highlighted != -1 || st.Suggest.Visible {
		t.Errorf("unexpected initial dropdown %+v", st.Suggest)
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}
}

func TestTypeSelectSuggestion(t *testing.T) {
	g := newGateway(t)

	g.do(t, "POST", "/api/input", `{"text":"au"}`)
	g.sched.flush()

	_, st := g.do(t, "GET", "/api/state", "")
	if !st.Suggest.Visible || len(st.Suggest.Suggestions) != 2 || !st.Suggest.ShowGroupHeaders {
		t.Fatalf("dropdown = %+v", st.Suggest)
	}

	rr, st := g.do(t, "POST", "/api/suggestions/1", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}
	if st.Search.Filters.Location != "Austin" || st.Search.Filters.SearchTerm != "" {
		t.Errorf("filters = %+v", st.Search.Filters)
	}
	if st.Suggest.Visible || st.Suggest.Query != "Austin" {
		t.Errorf("dropdown = %+v", st.Suggest)
	}
	if len(st.Search.Result.Companies) != 1 || st.Search.TotalPages != 2 {
		t.Errorf("result = %+v", st.Search.Result)
	}

	filters := g.dir.lastSearch(t)["filters"].(map[string]any)
	if got := filters["locality_ss"]; got == nil {
		t.Errorf("expected locality filter, got %v", filters)
	}
}

func TestKeyboardFlow(t *testing.T) {
	g := newGateway(t)
	g.do(t, "POST", "/api/focus", "")
	g.do(t, "POST", "/api/input", `{"text":"acme"}`)
	g.sched.flush()

	_, st := g.do(t, "POST", "/api/key", `{"key":"ArrowDown"}`)
	if st.Suggest.Highlighted != 0 {
		t.Fatalf("highlighted = %d", st.Suggest.Highlighted)
	}
	_, st = g.do(t, "POST", "/api/key", `{"key":"Enter"}`)
	if st.Search.Filters.SearchTerm != "Acme" || !st.Search.Searched {
		t.Errorf("search = %+v", st.Search)
	}
	if g.dir.lastSearch(t)["query"] != "Acme" {
		t.Errorf("backend query = %v", g.dir.lastSearch(t)["query"])
	}
}

func TestKey_Unsupported(t *testing.T) {
	g := newGateway(t)
	rr, _ := g.do(t, "POST", "/api/key", `{"key":"Tab"}`)
	assertError(t, rr, http.StatusBadRequest, CodeValidationFailed)
}

func TestSelectSuggestion_Errors(t *testing.T) {
	g := newGateway(t)

	rr, _ := g.do(t, "POST", "/api/suggestions/x", "")
	assertError(t, rr, http.StatusBadRequest, CodeValidationFailed)

	rr, _ = g.do(t, "POST", "/api/suggestions/3", "")
	assertError(t, rr, http.StatusNotFound, CodeNotFound)
}

func TestSearch_TermAndRawInput(t *testing.T) {
	g := newGateway(t)

	_, st := g.do(t, "POST", "/api/search", `{"term":"robotics"}`)
	if st.Search.Filters.SearchTerm != "robotics" {
		t.Errorf("filters = %+v", st.Search.Filters)
	}

	g.do(t, "POST", "/api/input", `{"text":"x"}`)
	_, st = g.do(t, "POST", "/api/search", "")
	if st.Search.Filters.SearchTerm != "x" {
		t.Errorf("raw input not submitted: %+v", st.Search.Filters)
	}
}

func TestFilters(t *testing.T) {
	g := newGateway(t)

	_, st := g.do(t, "POST", "/api/filters", `{"field":"foundingYear","value":"2015"}`)
	if st.Search.Filters.FoundingYear != "2015" {
		t.Fatalf("filters = %+v", st.Search.Filters)
	}
	years := g.dir.lastSearch(t)["filters"].(map[string]any)["year_founded_d"].(map[string]any)
	if years["from"] != float64(2015) {
		t.Errorf("year range = %v", years)
	}

	rr, _ := g.do(t, "POST", "/api/filters", `{"field":"foundingYear","value":"soon"}`)
	assertError(t, rr, http.StatusBadRequest, CodeValidationFailed)

	rr, _ = g.do(t, "POST", "/api/filters", `{"field":"colour","value":"red"}`)
	assertError(t, rr, http.StatusBadRequest, CodeValidationFailed)

	rr, _ = g.do(t, "POST", "/api/filters", `{`)
	assertError(t, rr, http.StatusBadRequest, CodeBadRequest)

	_, st = g.do(t, "DELETE", "/api/filters", "")
	if !st.Search.Filters.IsEmpty() || st.Search.Searched {
		t.Errorf("filters not cleared: %+v", st.Search)
	}
}

func TestNavigatePageSort(t *testing.T) {
	g := newGateway(t)

	_, st := g.do(t, "POST", "/api/navigate", `{"item":"industry:Software"}`)
	if st.Search.Filters.Industry != "Software" {
		t.Fatalf("filters = %+v", st.Search.Filters)
	}

	_, st = g.do(t, "POST", "/api/page", `{"page":2}`)
	if st.Search.Page != 2 || g.dir.lastSearch(t)["page"] != float64(1) {
		t.Errorf("page = %d, wire page = %v", st.Search.Page, g.dir.lastSearch(t)["page"])
	}

	rr, _ := g.do(t, "POST", "/api/page", `{"page":0}`)
	assertError(t, rr, http.StatusBadRequest, CodeValidationFailed)

	_, st = g.do(t, "POST", "/api/sort", `{"sortBy":"size","sortOrder":"desc"}`)
	if st.Search.Page != 1 || st.Search.SortBy != "size" {
		t.Errorf("sort state = %+v", st.Search)
	}
	if g.dir.lastSearch(t)["sortDirection"] != "current_employee_estimate_l desc" {
		t.Errorf("sortDirection = %v", g.dir.lastSearch(t)["sortDirection"])
	}

	rr, _ = g.do(t, "POST", "/api/sort", `{"sortBy":"size","sortOrder":"sideways"}`)
	assertError(t, rr, http.StatusBadRequest, CodeValidationFailed)
}

func TestFailureAndRetry(t *testing.T) {
	g := newGateway(t)
	g.dir.failWith = http.StatusInternalServerError

	_, st := g.do(t, "POST", "/api/search", `{"term":"acme"}`)
	if st.Search.Err != "Failed to fetch companies from API: HTTP error! status: 500" {
		t.Errorf("err = %q", st.Search.Err)
	}
	if st.Search.Healthy || len(st.Search.Result.Companies) != 0 {
		t.Errorf("search = %+v", st.Search)
	}

	g.dir.mu.Lock()
	g.dir.failWith = 0
	g.dir.mu.Unlock()

	_, st = g.do(t, "POST", "/api/retry", "")
	if st.Search.Err != "" || !st.Search.Healthy || len(st.Search.Result.Companies) != 1 {
		t.Errorf("retry = %+v", st.Search)
	}
}

func TestHealthCheck(t *testing.T) {
	g := newGateway(t)

	rr, _ := g.do(t, "GET", "/health", "")
	if rr.Code != http.StatusOK {
		t.Errorf("healthy: got %d", rr.Code)
	}

	g.dir.mu.Lock()
	g.dir.healthy = false
	g.dir.mu.Unlock()

	rr, _ = g.do(t, "GET", "/health", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("unhealthy: got %d", rr.Code)
	}
	var report healthuc.Report
	if err := json.Unmarshal(rr.Body.Bytes(), &report); err != nil {
		t.Fatal(err)
	}
	if report.Checks["backend"] != healthuc.CheckError {
		t.Errorf("report = %+v", report)
	}
}

func TestAuthOnRouter(t *testing.T) {
	g := newGateway(t, "secret")

	rr, _ := g.do(t, "GET", "/api/state", "")
	assertError(t, rr, http.StatusUnauthorized, CodeUnauthorized)

	rr, _ = g.do(t, "GET", "/health", "")
	if rr.Code != http.StatusOK {
		t.Errorf("health should be exempt, got %d", rr.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	if err := metrics.Register(reg); err != nil {
		t.Fatal(err)
	}
	g := newGateway(t)
	srv := NewServer(nil, nil, nil, reg, nil)

	// Generate one sample through the instrumented router first.
	g.do(t, "GET", "/api/state", "")

	rr := httptest.NewRecorder()
	srv.Metrics(rr, httptest.NewRequest("GET", "/metrics", http.NoBody))
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "dirsearch_http_requests_total") {
		t.Errorf("gateway metrics missing from exposition:\n%s", rr.Body.String())
	}
}

func TestUnknownRoute(t *testing.T) {
	g := newGateway(t)
	rr, _ := g.do(t, "GET", "/api/nope", "")
	assertError(t, rr, http.StatusNotFound, CodeNotFound)
}

func TestRecoverer(t *testing.T) {
	h := jsonRecoverer(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/", http.NoBody))
	assertError(t, rr, http.StatusInternalServerError, CodeInternalError)
}

func assertError(t *testing.T, rr *httptest.ResponseRecorder, status int, code ErrorCode) {
	t.Helper()
	if rr.Code != status {
		t.Fatalf("status: got %d, want %d (%s)", rr.Code, status, rr.Body.String())
	}
	var resp ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if resp.Code != code {
		t.Errorf("code: got %s, want %s", resp.Code, code)
	}
}
