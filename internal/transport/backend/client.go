// Package backend is the HTTP client for the company directory search API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
	"go.uber.org/zap"

	"github.com/kailas-cloud/dirsearch/internal/domain/search/request"
	logpkg "github.com/kailas-cloud/dirsearch/internal/logger"
	"github.com/kailas-cloud/dirsearch/internal/metrics"
	"github.com/kailas-cloud/dirsearch/internal/version"
)

// Default endpoint paths, relative to BaseURL.
const (
	DefaultSearchPath      = "/search/comprehensive"
	DefaultAutosuggestPath = "/autosuggest"
	DefaultHealthPath      = "/health"

	// Endpoint labels used for logs and metrics.
	EndpointSearch      = "search"
	EndpointAutosuggest = "autosuggest"
	EndpointHealth      = "health"

	maxErrorBody = 4096
)

// Config holds the backend client settings.
type Config struct {
	BaseURL         string
	SearchPath      string
	AutosuggestPath string
	HealthPath      string
	HTTPClient      *http.Client
	Logger          *zap.Logger
}

// Client talks to the search, autosuggest and health endpoints.
// It returns raw response bodies; shape interpretation belongs to the normalizer.
type Client struct {
	baseURL         *url.URL
	searchPath      string
	autosuggestPath string
	healthPath      string
	httpClient      *http.Client
	logger          *zap.Logger
}

// NewClient validates cfg and creates a Client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("backend: base url is required")
	}
	base, err := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(err, "backend: parse base url")
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, errors.Newf("backend: base url %q must be absolute", cfg.BaseURL)
	}

	c := &Client{
		baseURL:         base,
		searchPath:      orDefault(cfg.SearchPath, DefaultSearchPath),
		autosuggestPath: orDefault(cfg.AutosuggestPath, DefaultAutosuggestPath),
		healthPath:      orDefault(cfg.HealthPath, DefaultHealthPath),
		httpClient:      cfg.HTTPClient,
		logger:          cfg.Logger,
	}
	if c.httpClient == nil {
		c.httpClient = http.DefaultClient
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// Search posts a comprehensive search request and returns the response body.
func (c *Client) Search(ctx context.Context, req request.Request) ([]byte, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, "backend: encode search request")
	}
	return c.do(ctx, EndpointSearch, http.MethodPost, c.endpoint(c.searchPath, nil), body)
}

// Autosuggest fetches up to limit suggestions for query.
func (c *Client) Autosuggest(ctx context.Context, query string, limit int) ([]byte, error) {
	q := url.Values{}
	if err := addFormParam(q, "query", query); err != nil {
		return nil, err
	}
	if err := addFormParam(q, "limit", limit); err != nil {
		return nil, err
	}
	return c.do(ctx, EndpointAutosuggest, http.MethodGet, c.endpoint(c.autosuggestPath, q), nil)
}

// Health returns nil when the backend answers its health endpoint with any 2xx status.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.do(ctx, EndpointHealth, http.MethodGet, c.endpoint(c.healthPath, nil), nil)
	return err
}

// addFormParam encodes a query parameter the way generated OpenAPI clients do (form, explode).
func addFormParam(q url.Values, name string, value any) error {
	frag, err := runtime.StyleParamWithLocation("form", true, name, runtime.ParamLocationQuery, value)
	if err != nil {
		return errors.Wrapf(err, "backend: encode %s", name)
	}
	parsed, err := url.ParseQuery(frag)
	if err != nil {
		return errors.Wrapf(err, "backend: encode %s", name)
	}
	for k, vs := range parsed {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	return nil
}

func (c *Client) endpoint(path string, q url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimSuffix(u.Path, "/") + path
	if q != nil {
		u.RawQuery = q.Encode()
	}
	return u.String()
}

func (c *Client) do(ctx context.Context, endpoint, method, target string, body []byte) (_ []byte, err error) {
	requestID := uuid.NewString()
	start := time.Now()
	status := 0
	defer func() { c.observe(ctx, endpoint, method, target, requestID, status, start, err) }()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, errors.Wrap(err, "backend: build request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classify(ctx, method+" "+endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()
	status = resp.StatusCode

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classify(ctx, "read "+endpoint+" response", err)
	}
	return data, nil
}

func (c *Client) observe(ctx context.Context, endpoint, method, target, requestID string, status int, start time.Time, err error) {
	dur := time.Since(start)
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	metrics.BackendRequestsTotal.WithLabelValues(endpoint, outcome).Inc()
	metrics.BackendRequestDuration.WithLabelValues(endpoint).Observe(dur.Seconds())

	fields := []zap.Field{
		zap.String("endpoint", endpoint),
		zap.String("method", method),
		zap.String("url", target),
		zap.String("request_id", requestID),
		zap.Int("status", status),
		zap.Duration("duration", dur),
	}
	log := logpkg.FromContextOr(ctx, c.logger)
	if err != nil {
		log.Warn("backend request failed", append(fields, zap.Error(err))...)
		return
	}
	log.Debug("backend request completed", fields...)
}

// StatusCode extracts the HTTP status from an error returned by Client, 0 if none.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return 0
}
