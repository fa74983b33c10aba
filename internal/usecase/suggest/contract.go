package suggest

import (
	"context"
	"time"

	"github.com/kailas-cloud/dirsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/dirsearch/internal/usecase/search"
)

// Fetcher calls the autosuggest endpoint and returns the raw body.
type Fetcher interface {
	Autosuggest(ctx context.Context, query string, limit int) ([]byte, error)
}

// Sink receives committed filter updates. *search.Session implements it.
type Sink interface {
	Apply(ctx context.Context, fn func(filter.State) filter.State) search.State
}

// Timer is a pending scheduled callback.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// RealScheduler schedules on the runtime timer heap.
type RealScheduler struct{}

// AfterFunc wraps time.AfterFunc.
func (RealScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
