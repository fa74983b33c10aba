package search

import (
	"context"
	"errors"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/kailas-cloud/dirsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/dirsearch/internal/domain/search/request"
	"github.com/kailas-cloud/dirsearch/internal/domain/search/result"
	"github.com/kailas-cloud/dirsearch/internal/metrics"
	"github.com/kailas-cloud/dirsearch/internal/normalize"
)

// ErrMalformedResponse is returned when the backend answers 2xx with a body that is not JSON.
var ErrMalformedResponse = errors.New("malformed search response")

// Query is everything needed to reproduce one search.
type Query struct {
	Filters   filter.State  `json:"filters"`
	Page      int           `json:"page"`
	PageSize  int           `json:"pageSize"`
	SortBy    string        `json:"sortBy"`
	SortOrder request.Order `json:"sortOrder"`
}

// Service runs searches against the directory backend.
type Service struct {
	backend Backend
	health  HealthChecker
	logger  *zap.Logger
	now     func() time.Time
}

// New creates a search service. logger can be nil.
func New(backend Backend, health HealthChecker, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{backend: backend, health: health, logger: logger, now: time.Now}
}

// Search builds the request for q, calls the backend and normalizes the response.
// The returned Result is always usable: on failure it is result.Empty() and err
// describes what went wrong.
func (s *Service) Search(ctx context.Context, q Query) (result.Result, error) {
	if err := request.Validate(q.Page, q.PageSize); err != nil {
		return result.Empty(), err
	}

	req := request.Builder{Now: s.now}.Build(q.Filters, q.Page, q.PageSize, q.SortBy, q.SortOrder)
	raw, err := s.backend.Search(ctx, req)
	if err != nil {
		return s.fail(q, err)
	}
	if !gjson.ValidBytes(raw) {
		return s.fail(q, ErrMalformedResponse)
	}

	res := normalize.Normalizer{Now: s.now}.Search(raw)
	s.logger.Debug("search completed",
		zap.Int("page", q.Page),
		zap.Int("companies", len(res.Companies)),
		zap.Int("total", res.TotalCount),
	)
	return res, nil
}

func (s *Service) fail(q Query, err error) (result.Result, error) {
	metrics.SearchFailuresTotal.Inc()
	s.logger.Warn("search failed",
		zap.Any("filters", q.Filters),
		zap.Int("page", q.Page),
		zap.Error(err),
	)
	return result.Empty(), err
}

// CheckHealth reports whether the backend is reachable. It never blocks past the health timeout.
func (s *Service) CheckHealth(ctx context.Context) bool {
	if s.health == nil {
		return false
	}
	return s.health.Healthy(ctx)
}
