package dirsearch

import (
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/dirsearch/internal/config"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	cfg        config.Config
	httpClient *http.Client
	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

// WithConfig replaces the whole configuration, including anything set by
// earlier options. Zero fields take their defaults.
func WithConfig(cfg config.Config) Option {
	return optionFunc(func(c *clientConfig) {
		cfg.ApplyDefaults()
		c.cfg = cfg
	})
}

// WithBaseURL sets the directory backend address, e.g. "http://localhost:8000".
func WithBaseURL(url string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.Backend.BaseURL = strings.TrimSpace(url)
	})
}

// WithHTTPClient sets the HTTP client used for backend calls.
// By default a client with the configured request timeout is used.
func WithHTTPClient(hc *http.Client) Option {
	return optionFunc(func(c *clientConfig) {
		c.httpClient = hc
	})
}

// WithLogger enables structured logging. Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers client metrics (backend calls, autosuggest outcomes,
// SDK operations) on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}

// WithPageSize sets the number of companies per page. Default: 25.
func WithPageSize(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.Search.PageSize = n
	})
}

// WithSuggestLimit sets how many suggestions are requested per lookup. Default: 5.
func WithSuggestLimit(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.Suggest.Limit = n
	})
}

// WithDebounce sets the quiet period after the last keystroke before a
// suggestion lookup is sent. Default: 300ms.
func WithDebounce(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.Suggest.DebounceMs = int(d / time.Millisecond)
	})
}

// WithBlurDelay sets how long the dropdown stays open after the input loses
// focus. Default: 150ms.
func WithBlurDelay(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.Suggest.BlurDelayMs = int(d / time.Millisecond)
	})
}

// WithStaleResponses controls out-of-order suggestion responses. With accept
// set, every response is applied as it arrives; by default a response for a
// superseded query is dropped.
func WithStaleResponses(accept bool) Option {
	return optionFunc(func(c *clientConfig) {
		discard := !accept
		c.cfg.Suggest.DiscardStale = &discard
	})
}
