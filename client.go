package dirsearch

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/dirsearch/internal/config"
	"github.com/kailas-cloud/dirsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/dirsearch/internal/domain/search/request"
	"github.com/kailas-cloud/dirsearch/internal/domain/search/result"
	domsuggest "github.com/kailas-cloud/dirsearch/internal/domain/suggest"
	"github.com/kailas-cloud/dirsearch/internal/metrics"
	"github.com/kailas-cloud/dirsearch/internal/normalize"
	"github.com/kailas-cloud/dirsearch/internal/transport/backend"
	healthuc "github.com/kailas-cloud/dirsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/dirsearch/internal/usecase/search"
	suggestuc "github.com/kailas-cloud/dirsearch/internal/usecase/suggest"
)

// Public names for the types callers handle.
type (
	// Filters is the active set of search criteria.
	Filters = filter.State
	// Query is one fully specified search: filters, 1-based page, page size and sort.
	Query = searchuc.Query
	// Result is a normalized page of companies with facets.
	Result = result.Result
	// Company is one normalized directory entry.
	Company = result.Company
	// Suggestion is one autosuggest candidate.
	Suggestion = domsuggest.Item
	// Order is a sort direction.
	Order = request.Order
	// Session holds the search state of one user.
	Session = searchuc.Session
	// SessionState is a snapshot of a Session.
	SessionState = searchuc.State
	// Autosuggest is the dropdown controller bound to the client's Session.
	Autosuggest = suggestuc.Controller
	// Dropdown is a snapshot of the Autosuggest dropdown.
	Dropdown = suggestuc.View
	// Key is a navigation key forwarded to Autosuggest.
	Key = suggestuc.Key
)

// EmptyFilters returns the unconstrained filter set.
func EmptyFilters() Filters {
	return filter.Empty()
}

// Sort keys and directions.
const (
	SortFoundingYear = request.SortFoundingYear
	SortIndustry     = request.SortIndustry
	SortSize         = request.SortSize
	SortLocation     = request.SortLocation

	Asc  = request.Asc
	Desc = request.Desc
)

// Navigation keys.
const (
	KeyArrowDown = suggestuc.KeyArrowDown
	KeyArrowUp   = suggestuc.KeyArrowUp
	KeyEnter     = suggestuc.KeyEnter
	KeyEscape    = suggestuc.KeyEscape
)

// Client is the dirsearch SDK entry point.
type Client struct {
	cfg       config.Config
	backend   *backend.Client
	healthSvc *healthuc.Service
	searchSvc *searchuc.Service
	session   *searchuc.Session
	suggest   *suggestuc.Controller
	obs       *observer
	logger    *zap.Logger
}

// New creates a Client. It does not contact the backend; use Health for that.
func New(opts ...Option) (*Client, error) {
	cc := &clientConfig{cfg: config.Default()}
	for _, o := range opts {
		o.apply(cc)
	}
	cc.cfg.ApplyDefaults()
	if err := cc.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("dirsearch: %w", err)
	}

	logger := cc.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	obs, err := newObserver(logger, cc.metricsReg)
	if err != nil {
		return nil, err
	}
	if cc.metricsReg != nil {
		if err := metrics.Register(cc.metricsReg); err != nil {
			return nil, fmt.Errorf("dirsearch: %w", err)
		}
	}

	hc := cc.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: cc.cfg.Backend.RequestTimeout()}
	}

	bc, err := backend.NewClient(backend.Config{
		BaseURL:         cc.cfg.Backend.BaseURL,
		SearchPath:      cc.cfg.Backend.SearchPath,
		AutosuggestPath: cc.cfg.Backend.AutosuggestPath,
		HealthPath:      cc.cfg.Backend.HealthPath,
		HTTPClient:      hc,
		Logger:          logger.Named("backend"),
	})
	if err != nil {
		return nil, fmt.Errorf("dirsearch: %w", err)
	}

	return wireClient(cc.cfg, bc, obs, logger), nil
}

func wireClient(cfg config.Config, bc *backend.Client, obs *observer, logger *zap.Logger) *Client {
	healthSvc := healthuc.New(bc, cfg.Backend.HealthTimeout(), logger)
	searchSvc := searchuc.New(bc, healthSvc, logger.Named("search"))
	session := searchuc.NewSession(searchSvc, cfg.Search.PageSize, logger.Named("session"))
	suggest := suggestuc.New(bc, session, suggestuc.Config{
		Debounce:       cfg.Suggest.Debounce(),
		BlurDelay:      cfg.Suggest.BlurDelay(),
		MinQueryLength: cfg.Suggest.MinQueryLength,
		Limit:          cfg.Suggest.Limit,
		AcceptStale:    !cfg.Suggest.StaleDiscarded(),
		Logger:         logger.Named("suggest"),
	})

	return &Client{
		cfg:       cfg,
		backend:   bc,
		healthSvc: healthSvc,
		searchSvc: searchSvc,
		session:   session,
		suggest:   suggest,
		obs:       obs,
		logger:    logger,
	}
}

// Close stops pending autosuggest timers and lookups.
func (c *Client) Close() {
	if c.suggest != nil {
		c.suggest.Close()
	}
}

// Session returns the client's search session.
func (c *Client) Session() *Session {
	return c.session
}

// Autosuggest returns the dropdown controller. Committed suggestions update Session.
func (c *Client) Autosuggest() *Autosuggest {
	return c.suggest
}

// PageSize is the configured number of companies per page.
func (c *Client) PageSize() int {
	return c.cfg.Search.PageSize
}

// Search runs one search outside the session. A zero Page means the first page
// and a zero PageSize the configured one. The returned Result is always usable,
// the canonical empty result when err is non-nil.
func (c *Client) Search(ctx context.Context, q Query) (res Result, err error) {
	defer c.obs.begin("search")(&err)

	if q.PageSize == 0 {
		q.PageSize = c.cfg.Search.PageSize
	}
	if q.Page == 0 {
		q.Page = 1
	}
	return c.searchSvc.Search(ctx, q)
}

// Suggest fetches suggestions for query right away, without debouncing.
func (c *Client) Suggest(ctx context.Context, query string) (items []Suggestion, err error) {
	defer c.obs.begin("suggest")(&err)

	raw, err := c.backend.Autosuggest(ctx, query, c.cfg.Suggest.Limit)
	if err != nil {
		return nil, fmt.Errorf("autosuggest: %w", err)
	}
	return normalize.Suggestions(raw), nil
}
