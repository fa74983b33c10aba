package search

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/kailas-cloud/dirsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/dirsearch/internal/domain/search/request"
	"github.com/kailas-cloud/dirsearch/internal/domain/search/result"
)

// Session defaults.
const (
	DefaultSortBy    = request.SortFoundingYear
	DefaultSortOrder = request.Asc
)

const failurePrefix = "Failed to fetch companies from API: "

// State is a point-in-time view of a Session for the presentation layer.
type State struct {
	Filters    filter.State  `json:"filters"`
	Page       int           `json:"page"`
	PageSize   int           `json:"pageSize"`
	SortBy     string        `json:"sortBy"`
	SortOrder  request.Order `json:"sortOrder"`
	Result     result.Result `json:"result"`
	TotalPages int           `json:"totalPages"`
	Loading    bool          `json:"loading"`
	Err        string        `json:"error,omitempty"`
	Healthy    bool          `json:"healthy"`
	// Searched is false until the user sets at least one criterion.
	Searched bool `json:"searched"`
}

// Session owns the filter state, paging and sort of one user, and turns their
// changes into searches. All methods are safe for concurrent use; when searches
// overlap, the last one to resolve determines the published result.
type Session struct {
	searcher Searcher
	logger   *zap.Logger

	mu       sync.Mutex
	filters  filter.State
	page     int
	pageSize int
	sortBy   string
	order    request.Order
	res      result.Result
	inflight int
	err      string
	healthy  bool
	last     *Query
}

// NewSession creates a Session. pageSize <= 0 uses request.DefaultPageSize.
func NewSession(searcher Searcher, pageSize int, logger *zap.Logger) *Session {
	if pageSize <= 0 {
		pageSize = request.DefaultPageSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		searcher: searcher,
		logger:   logger,
		filters:  filter.Empty(),
		page:     1,
		pageSize: pageSize,
		sortBy:   DefaultSortBy,
		order:    DefaultSortOrder,
		res:      result.Empty(),
		healthy:  true,
	}
}

// State returns a snapshot.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Submit commits term as the free-text search term and returns to page 1.
func (s *Session) Submit(ctx context.Context, term string) State {
	return s.Apply(ctx, func(f filter.State) filter.State { return f.WithSearchTerm(term) })
}

// ApplyFilter sets one filter by field name and returns to page 1.
// Unknown fields and non-numeric founding years are rejected without changing state.
func (s *Session) ApplyFilter(ctx context.Context, field, value string) (State, error) {
	s.mu.Lock()
	if _, err := s.filters.Set(field, value); err != nil {
		st := s.snapshot()
		s.mu.Unlock()
		return st, err
	}
	s.mu.Unlock()
	return s.Apply(ctx, func(f filter.State) filter.State {
		// Set already accepted field and value above, so it cannot fail here.
		updated, _ := f.Set(field, value)
		return updated
	}), nil
}

// Navigate applies a navigation item ("overview", "industry:<x>", "location:<x>").
func (s *Session) Navigate(ctx context.Context, itemID string) State {
	return s.Apply(ctx, func(f filter.State) filter.State { return f.Navigate(itemID) })
}

// Apply replaces the filters with fn(current) and returns to page 1.
// Clearing every criterion also drops the current result.
func (s *Session) Apply(ctx context.Context, fn func(filter.State) filter.State) State {
	s.mu.Lock()
	s.filters = fn(s.filters)
	s.page = 1
	s.err = ""
	if s.filters.IsEmpty() {
		s.res = result.Empty()
	}
	s.mu.Unlock()
	return s.maybeSearch(ctx)
}

// SetPage moves to a 1-based page.
func (s *Session) SetPage(ctx context.Context, page int) (State, error) {
	s.mu.Lock()
	if err := request.Validate(page, s.pageSize); err != nil {
		st := s.snapshot()
		s.mu.Unlock()
		return st, err
	}
	s.page = page
	s.mu.Unlock()
	return s.maybeSearch(ctx), nil
}

// SetSort changes the sort and returns to page 1.
func (s *Session) SetSort(ctx context.Context, sortBy string, order request.Order) State {
	s.mu.Lock()
	s.sortBy = sortBy
	s.order = request.ParseOrder(string(order))
	s.page = 1
	s.mu.Unlock()
	return s.maybeSearch(ctx)
}

// ClearFilters drops every criterion and the current result.
func (s *Session) ClearFilters() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = filter.Empty()
	s.page = 1
	s.res = result.Empty()
	s.err = ""
	return s.snapshot()
}

// Retry re-issues the last search exactly as it was sent.
func (s *Session) Retry(ctx context.Context) State {
	s.mu.Lock()
	q := s.query()
	if s.last != nil {
		q = *s.last
	}
	s.mu.Unlock()
	return s.run(ctx, q)
}

// Refresh searches with the current criteria even when none are set.
func (s *Session) Refresh(ctx context.Context) State {
	s.mu.Lock()
	q := s.query()
	s.mu.Unlock()
	return s.run(ctx, q)
}

// CheckHealth probes the backend and records the outcome without touching Err.
func (s *Session) CheckHealth(ctx context.Context) State {
	healthy := s.searcher.CheckHealth(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.healthy = healthy
	return s.snapshot()
}

// maybeSearch searches only once the user has set a criterion.
func (s *Session) maybeSearch(ctx context.Context) State {
	s.mu.Lock()
	if s.filters.IsEmpty() {
		st := s.snapshot()
		s.mu.Unlock()
		return st
	}
	q := s.query()
	s.mu.Unlock()
	return s.run(ctx, q)
}

func (s *Session) run(ctx context.Context, q Query) State {
	s.mu.Lock()
	s.inflight++
	s.err = ""
	s.last = &q
	s.mu.Unlock()

	res, err := s.searcher.Search(ctx, q)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--
	s.res = res
	if err != nil {
		s.err = failurePrefix + err.Error()
		s.healthy = false
	} else {
		s.healthy = true
	}
	return s.snapshot()
}

// query must be called with mu held.
func (s *Session) query() Query {
	return Query{
		Filters:   s.filters,
		Page:      s.page,
		PageSize:  s.pageSize,
		SortBy:    s.sortBy,
		SortOrder: s.order,
	}
}

// snapshot must be called with mu held.
func (s *Session) snapshot() State {
	total := s.res.Page.TotalPages
	if total <= 0 {
		total = result.TotalPages(s.res.TotalCount, s.pageSize)
	}
	return State{
		Filters:    s.filters.WithTags(s.filters.Tags),
		Page:       s.page,
		PageSize:   s.pageSize,
		SortBy:     s.sortBy,
		SortOrder:  s.order,
		Result:     s.res,
		TotalPages: total,
		Loading:    s.inflight > 0,
		Err:        s.err,
		Healthy:    s.healthy,
		Searched:   !s.filters.IsEmpty(),
	}
}
