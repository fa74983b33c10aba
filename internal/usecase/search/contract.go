package search

import (
	"context"

	"github.com/kailas-cloud/dirsearch/internal/domain/search/request"
	"github.com/kailas-cloud/dirsearch/internal/domain/search/result"
)

// Backend executes comprehensive searches and returns the raw response body.
type Backend interface {
	Search(ctx context.Context, req request.Request) ([]byte, error)
}

// HealthChecker reports backend availability.
type HealthChecker interface {
	Healthy(ctx context.Context) bool
}

// Searcher is what a Session drives. *Service implements it.
type Searcher interface {
	Search(ctx context.Context, q Query) (result.Result, error)
	CheckHealth(ctx context.Context) bool
}
