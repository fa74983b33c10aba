// Package chi exposes one search session and its autosuggest dropdown as a JSON API
// for thin web front-ends.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/dirsearch/internal/domain"
	"github.com/kailas-cloud/dirsearch/internal/domain/search/request"
	logpkg "github.com/kailas-cloud/dirsearch/internal/logger"
	"github.com/kailas-cloud/dirsearch/internal/metrics"
	healthuc "github.com/kailas-cloud/dirsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/dirsearch/internal/usecase/search"
	suggestuc "github.com/kailas-cloud/dirsearch/internal/usecase/suggest"
)

// ErrorCode is a machine-readable error class.
type ErrorCode string

// Error codes.
const (
	CodeBadRequest       ErrorCode = "bad_request"
	CodeValidationFailed ErrorCode = "validation_failed"
	CodeNotFound         ErrorCode = "not_found"
	CodeUnauthorized     ErrorCode = "unauthorized"
	CodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// StateResponse is returned by every API call: the search state plus the dropdown.
type StateResponse struct {
	Search  searchuc.State `json:"search"`
	Suggest suggestuc.View `json:"suggest"`
}

// Server serves the gateway API.
type Server struct {
	session  *searchuc.Session
	suggest  *suggestuc.Controller
	health   *healthuc.Service
	gatherer prometheus.Gatherer
	logger   *zap.Logger
}

// NewServer creates a gateway server. gatherer nil means the default registry.
func NewServer(
	session *searchuc.Session,
	suggest *suggestuc.Controller,
	health *healthuc.Service,
	gatherer prometheus.Gatherer,
	logger *zap.Logger,
) *Server {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{session: session, suggest: suggest, health: health, gatherer: gatherer, logger: logger}
}

// Router builds the chi router with the full middleware stack.
func (s *Server) Router(apiKeys []string) http.Handler {
	r := chi.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(accessLog(s.logger))
	r.Use(BearerAuthMiddleware(apiKeys))
	r.Use(metrics.Middleware())

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, CodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeBadRequest, "method not allowed")
	})

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", s.GetState)
		r.Post("/input", s.Input)
		r.Post("/key", s.Key)
		r.Post("/focus", s.Focus)
		r.Post("/blur", s.Blur)
		r.Post("/suggestions/{index}", s.SelectSuggestion)
		r.Post("/search", s.Search)
		r.Post("/filters", s.SetFilter)
		r.Delete("/filters", s.ClearFilters)
		r.Post("/navigate", s.Navigate)
		r.Post("/page", s.SetPage)
		r.Post("/sort", s.SetSort)
		r.Post("/retry", s.Retry)
	})
	return r
}

// GetState handles GET /api/state.
func (s *Server) GetState(w http.ResponseWriter, _ *http.Request) {
	s.writeState(w)
}

type inputRequest struct {
	Text string `json:"text"`
}

// Input handles POST /api/input: a keystroke changed the query text.
func (s *Server) Input(w http.ResponseWriter, r *http.Request) {
	var req inputRequest
	if !decode(w, r, &req) {
		return
	}
	s.suggest.OnInputChange(req.Text)
	s.writeState(w)
}

type keyRequest struct {
	Key string `json:"key"`
}

var knownKeys = map[suggestuc.Key]struct{}{
	suggestuc.KeyArrowDown: {},
	suggestuc.KeyArrowUp:   {},
	suggestuc.KeyEnter:     {},
	suggestuc.KeyEscape:    {},
}

// Key handles POST /api/key.
func (s *Server) Key(w http.ResponseWriter, r *http.Request) {
	var req keyRequest
	if !decode(w, r, &req) {
		return
	}
	key := suggestuc.Key(req.Key)
	if _, ok := knownKeys[key]; !ok {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "unsupported key "+strconv.Quote(req.Key))
		return
	}
	s.suggest.OnKeyDown(r.Context(), key)
	s.writeState(w)
}

// Focus handles POST /api/focus.
func (s *Server) Focus(w http.ResponseWriter, _ *http.Request) {
	s.suggest.OnFocus()
	s.writeState(w)
}

// Blur handles POST /api/blur.
func (s *Server) Blur(w http.ResponseWriter, _ *http.Request) {
	s.suggest.OnBlur()
	s.writeState(w)
}

// SelectSuggestion handles POST /api/suggestions/{index}.
func (s *Server) SelectSuggestion(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "suggestion index must be an integer")
		return
	}
	if err := s.suggest.Click(r.Context(), index); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	s.writeState(w)
}

type searchRequest struct {
	Term *string `json:"term"`
}

// Search handles POST /api/search. Without a term, the current input text is submitted.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if r.ContentLength != 0 && !decode(w, r, &req) {
		return
	}
	if req.Term == nil {
		s.suggest.Submit(r.Context())
	} else {
		s.session.Submit(r.Context(), *req.Term)
	}
	s.writeState(w)
}

type filterRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// SetFilter handles POST /api/filters.
func (s *Server) SetFilter(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	if !decode(w, r, &req) {
		return
	}
	if _, err := s.session.ApplyFilter(r.Context(), req.Field, req.Value); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	s.writeState(w)
}

// ClearFilters handles DELETE /api/filters.
func (s *Server) ClearFilters(w http.ResponseWriter, _ *http.Request) {
	s.session.ClearFilters()
	s.writeState(w)
}

type navigateRequest struct {
	Item string `json:"item"`
}

// Navigate handles POST /api/navigate.
func (s *Server) Navigate(w http.ResponseWriter, r *http.Request) {
	var req navigateRequest
	if !decode(w, r, &req) {
		return
	}
	s.session.Navigate(r.Context(), req.Item)
	s.writeState(w)
}

type pageRequest struct {
	Page int `json:"page"`
}

// SetPage handles POST /api/page.
func (s *Server) SetPage(w http.ResponseWriter, r *http.Request) {
	var req pageRequest
	if !decode(w, r, &req) {
		return
	}
	if _, err := s.session.SetPage(r.Context(), req.Page); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	s.writeState(w)
}

type sortRequest struct {
	SortBy    string `json:"sortBy"`
	SortOrder string `json:"sortOrder"`
}

// SetSort handles POST /api/sort.
func (s *Server) SetSort(w http.ResponseWriter, r *http.Request) {
	var req sortRequest
	if !decode(w, r, &req) {
		return
	}
	if req.SortOrder != "" && req.SortOrder != string(request.Asc) && req.SortOrder != string(request.Desc) {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "sortOrder must be asc or desc")
		return
	}
	s.session.SetSort(r.Context(), req.SortBy, request.Order(req.SortOrder))
	s.writeState(w)
}

// Retry handles POST /api/retry.
func (s *Server) Retry(w http.ResponseWriter, r *http.Request) {
	s.session.Retry(r.Context())
	s.writeState(w)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
		logpkg.FromContextOr(r.Context(), s.logger).Warn("gateway degraded",
			zap.Strings("failing", report.Failing()))
	}
	writeJSON(w, httpStatus, report)
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}).ServeHTTP(w, r)
}

func (s *Server) writeState(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, StateResponse{
		Search:  s.session.State(),
		Suggest: s.suggest.View(),
	})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// domainErrors maps caller errors to responses. The error text is safe to show.
var domainErrors = []struct {
	sentinel error
	status   int
	code     ErrorCode
}{
	{domain.ErrUnknownFilter, http.StatusBadRequest, CodeValidationFailed},
	{domain.ErrInvalidFoundingYear, http.StatusBadRequest, CodeValidationFailed},
	{domain.ErrInvalidPage, http.StatusBadRequest, CodeValidationFailed},
	{domain.ErrInvalidPageSize, http.StatusBadRequest, CodeValidationFailed},
	{domain.ErrSuggestionOutOfRange, http.StatusNotFound, CodeNotFound},
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContext(r.Context())
	for _, de := range domainErrors {
		if errors.Is(err, de.sentinel) {
			log.Debug("rejected request", zap.Error(err))
			writeError(w, de.status, de.code, err.Error())
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
