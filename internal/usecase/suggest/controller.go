// Package suggest drives the as-you-type autosuggest dropdown: debounced fetching,
// stale-response suppression and keyboard navigation over the suggestion list.
package suggest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/kailas-cloud/dirsearch/internal/domain"
	"github.com/kailas-cloud/dirsearch/internal/domain/search/filter"
	domsuggest "github.com/kailas-cloud/dirsearch/internal/domain/suggest"
	"github.com/kailas-cloud/dirsearch/internal/metrics"
	"github.com/kailas-cloud/dirsearch/internal/normalize"
)

// Defaults.
const (
	DefaultDebounce       = 300 * time.Millisecond
	DefaultBlurDelay      = 150 * time.Millisecond
	DefaultMinQueryLength = 2
	DefaultLimit          = 5
)

// Key is a navigation key forwarded from the input field.
type Key string

// Keys the controller reacts to. Anything else is ignored.
const (
	KeyArrowDown Key = "ArrowDown"
	KeyArrowUp   Key = "ArrowUp"
	KeyEnter     Key = "Enter"
	KeyEscape    Key = "Escape"
)

// Config tunes a Controller. Zero durations and lengths take the defaults.
type Config struct {
	Debounce       time.Duration
	BlurDelay      time.Duration
	MinQueryLength int
	Limit          int
	// AcceptStale applies every response as it arrives, even when a newer
	// lookup has been dispatched since.
	AcceptStale bool
	Scheduler   Scheduler
	Logger      *zap.Logger
}

func (c *Config) applyDefaults() {
	if c.Debounce <= 0 {
		c.Debounce = DefaultDebounce
	}
	if c.BlurDelay <= 0 {
		c.BlurDelay = DefaultBlurDelay
	}
	if c.MinQueryLength <= 0 {
		c.MinQueryLength = DefaultMinQueryLength
	}
	if c.Limit <= 0 {
		c.Limit = DefaultLimit
	}
	if c.Scheduler == nil {
		c.Scheduler = RealScheduler{}
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
}

// View is a snapshot of the dropdown for rendering.
type View struct {
	Query            string             `json:"query"`
	Suggestions      []domsuggest.Item  `json:"suggestions"`
	Groups           []domsuggest.Group `json:"groups"`
	ShowGroupHeaders bool               `json:"showGroupHeaders"`
	Visible          bool               `json:"visible"`
	Highlighted      int                `json:"highlightedIndex"`
	Loading          bool               `json:"loading"`
	Focused          bool               `json:"focused"`
}

// Controller is the autosuggest state machine. Safe for concurrent use.
// Highlighted always stays within [-1, len(suggestions)-1].
type Controller struct {
	fetcher Fetcher
	sink    Sink
	cfg     Config
	ctx     context.Context
	cancel  context.CancelFunc

	mu          sync.Mutex
	query       string
	items       []domsuggest.Item
	visible     bool
	highlighted int
	loading     bool
	focused     bool
	seq         uint64
	dropped     uint64 // lookups with seq <= dropped never apply
	debounce    Timer
	debounceGen uint64
	blur        Timer
	blurGen     uint64
	closed      bool
	subs        map[int]func(View)
	nextSub     int
}

// New creates a Controller. Commits are forwarded to sink.
func New(fetcher Fetcher, sink Sink, cfg Config) *Controller {
	cfg.applyDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		fetcher:     fetcher,
		sink:        sink,
		cfg:         cfg,
		ctx:         ctx,
		cancel:      cancel,
		items:       []domsuggest.Item{},
		highlighted: -1,
		subs:        make(map[int]func(View)),
	}
}

// View returns the current snapshot.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view()
}

// Groups returns the suggestions bucketed by type for display.
func (c *Controller) Groups() []domsuggest.Group {
	c.mu.Lock()
	defer c.mu.Unlock()
	return domsuggest.GroupByType(c.items)
}

// ShowGroupHeaders reports whether more than one suggestion type is present.
func (c *Controller) ShowGroupHeaders() bool {
	return len(c.Groups()) > 1
}

// Subscribe registers fn to be called with a fresh View after every state change.
// The returned func unregisters it.
func (c *Controller) Subscribe(fn func(View)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// OnInputChange records the raw query. Short queries clear the dropdown at once;
// longer ones (re)arm the debounce timer so only the last keystroke fetches.
func (c *Controller) OnInputChange(text string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.query = text
	c.cancelDebounce()

	if utf8.RuneCountInString(text) < c.cfg.MinQueryLength {
		c.dropInFlightLocked()
		c.clearLocked()
		c.mu.Unlock()
		c.notify()
		return
	}

	gen := c.debounceGen
	c.debounce = c.cfg.Scheduler.AfterFunc(c.cfg.Debounce, func() { c.fetch(gen, text) })
	c.mu.Unlock()
	c.notify()
}

// OnFocus re-shows cached suggestions without fetching.
func (c *Controller) OnFocus() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.focused = true
	c.cancelBlur()
	if utf8.RuneCountInString(c.query) >= c.cfg.MinQueryLength && len(c.items) > 0 {
		c.visible = true
	}
	c.mu.Unlock()
	c.notify()
}

// OnBlur hides the dropdown after the blur delay, leaving room for a click to land first.
func (c *Controller) OnBlur() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.focused = false
	c.cancelBlur()
	gen := c.blurGen
	c.blur = c.cfg.Scheduler.AfterFunc(c.cfg.BlurDelay, func() {
		c.mu.Lock()
		if c.closed || gen != c.blurGen {
			c.mu.Unlock()
			return
		}
		c.blur = nil
		c.visible = false
		c.highlighted = -1
		c.mu.Unlock()
		c.notify()
	})
	c.mu.Unlock()
	c.notify()
}

// OnKeyDown handles navigation keys. It reports whether the key was consumed.
func (c *Controller) OnKeyDown(ctx context.Context, key Key) bool {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}

	if !c.visible || len(c.items) == 0 {
		c.mu.Unlock()
		if key == KeyEnter {
			c.Submit(ctx)
			return true
		}
		return false
	}

	switch key {
	case KeyArrowDown:
		if c.highlighted < len(c.items)-1 {
			c.highlighted++
		}
	case KeyArrowUp:
		if c.highlighted > 0 {
			c.highlighted--
		} else {
			c.highlighted = -1
		}
	case KeyEnter:
		if c.highlighted >= 0 && c.highlighted < len(c.items) {
			item := c.items[c.highlighted]
			c.mu.Unlock()
			c.Commit(ctx, item)
			return true
		}
		c.mu.Unlock()
		c.Submit(ctx)
		return true
	case KeyEscape:
		c.visible = false
		c.highlighted = -1
		c.focused = false
		c.dropInFlightLocked()
	default:
		c.mu.Unlock()
		return false
	}
	c.mu.Unlock()
	c.notify()
	return true
}

// Click commits the suggestion at a flat index.
func (c *Controller) Click(ctx context.Context, index int) error {
	c.mu.Lock()
	if index < 0 || index >= len(c.items) {
		n := len(c.items)
		c.mu.Unlock()
		return fmt.Errorf("%w: %d (have %d)", domain.ErrSuggestionOutOfRange, index, n)
	}
	item := c.items[index]
	c.mu.Unlock()
	c.Commit(ctx, item)
	return nil
}

// Commit puts item's text in the input, closes the dropdown and applies the
// filter update its type calls for.
func (c *Controller) Commit(ctx context.Context, item domsuggest.Item) {
	c.mu.Lock()
	c.query = item.Text
	c.visible = false
	c.highlighted = -1
	c.focused = false
	c.dropInFlightLocked()
	c.mu.Unlock()
	c.notify()

	if c.sink != nil {
		c.sink.Apply(ctx, commitFilter(item))
	}
}

// Submit commits the raw query as the search term.
func (c *Controller) Submit(ctx context.Context) {
	c.mu.Lock()
	term := c.query
	c.visible = false
	c.highlighted = -1
	c.dropInFlightLocked()
	c.mu.Unlock()
	c.notify()

	if c.sink != nil {
		c.sink.Apply(ctx, func(f filter.State) filter.State { return f.WithSearchTerm(term) })
	}
}

// Close cancels pending timers and in-flight lookups. Later events are ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.cancelDebounce()
	c.cancelBlur()
	c.cancel()
	c.subs = map[int]func(View){}
}

func commitFilter(item domsuggest.Item) func(filter.State) filter.State {
	return func(f filter.State) filter.State {
		switch item.Type {
		case domsuggest.TypeIndustry:
			return f.WithIndustry(item.Text).WithSearchTerm("")
		case domsuggest.TypeLocation:
			return f.WithLocation(item.Text).WithSearchTerm("")
		default:
			return f.WithSearchTerm(item.Text)
		}
	}
}

// fetch runs when the debounce timer armed as generation gen fires.
func (c *Controller) fetch(gen uint64, query string) {
	c.mu.Lock()
	if c.closed || gen != c.debounceGen {
		c.mu.Unlock()
		return
	}
	c.debounce = nil
	c.seq++
	seq := c.seq
	if strings.TrimSpace(query) == "" {
		c.clearLocked()
		c.loading = false
		c.mu.Unlock()
		metrics.SuggestRequestsTotal.WithLabelValues("skipped").Inc()
		c.notify()
		return
	}
	c.loading = true
	c.mu.Unlock()
	c.notify()

	metrics.SuggestRequestsTotal.WithLabelValues("dispatched").Inc()
	raw, err := c.fetcher.Autosuggest(c.ctx, query, c.cfg.Limit)

	var items []domsuggest.Item
	if err == nil {
		items = normalize.Suggestions(raw)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if seq <= c.dropped || (seq != c.seq && !c.cfg.AcceptStale) {
		c.mu.Unlock()
		metrics.SuggestRequestsTotal.WithLabelValues("stale").Inc()
		c.cfg.Logger.Debug("discarding stale suggestions",
			zap.String("query", query), zap.Uint64("seq", seq))
		return
	}
	c.loading = false
	if err != nil {
		c.items = []domsuggest.Item{}
		c.highlighted = -1
		c.mu.Unlock()
		metrics.SuggestRequestsTotal.WithLabelValues("failed").Inc()
		c.cfg.Logger.Warn("autosuggest failed", zap.String("query", query), zap.Error(err))
		c.notify()
		return
	}
	c.items = items
	c.visible = true
	c.highlighted = -1
	c.mu.Unlock()
	metrics.SuggestRequestsTotal.WithLabelValues("applied").Inc()
	c.notify()
}

// clearLocked empties the list and hides the dropdown. mu must be held.
func (c *Controller) clearLocked() {
	c.items = []domsuggest.Item{}
	c.visible = false
	c.highlighted = -1
}

// view must be called with mu held.
func (c *Controller) view() View {
	groups := domsuggest.GroupByType(c.items)
	return View{
		Query:            c.query,
		Suggestions:      append([]domsuggest.Item{}, c.items...),
		Groups:           groups,
		ShowGroupHeaders: len(groups) > 1,
		Visible:          c.visible,
		Highlighted:      c.highlighted,
		Loading:          c.loading,
		Focused:          c.focused,
	}
}

func (c *Controller) notify() {
	c.mu.Lock()
	v := c.view()
	subs := make([]func(View), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()
	for _, fn := range subs {
		fn(v)
	}
}

// cancelDebounce stops the pending lookup. A callback that already fired sees
// the bumped generation and does nothing. mu must be held.
func (c *Controller) cancelDebounce() {
	c.debounceGen++
	if c.debounce != nil {
		c.debounce.Stop()
		c.debounce = nil
	}
}

// dropInFlightLocked cancels the pending debounce and makes any lookup already
// in flight stale, so it cannot reopen the dropdown. mu must be held.
func (c *Controller) dropInFlightLocked() {
	c.cancelDebounce()
	c.seq++
	c.dropped = c.seq
	c.loading = false
}

// cancelBlur is cancelDebounce for the blur timer. mu must be held.
func (c *Controller) cancelBlur() {
	c.blurGen++
	if c.blur != nil {
		c.blur.Stop()
		c.blur = nil
	}
}
