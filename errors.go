package dirsearch

import (
	"errors"

	"github.com/kailas-cloud/dirsearch/internal/domain"
	"github.com/kailas-cloud/dirsearch/internal/transport/backend"
	searchuc "github.com/kailas-cloud/dirsearch/internal/usecase/search"
)

// Sentinel errors re-exported from the internal layers.
// Use errors.Is() to check.
var (
	ErrInvalidFoundingYear  = domain.ErrInvalidFoundingYear
	ErrInvalidPage          = domain.ErrInvalidPage
	ErrInvalidPageSize      = domain.ErrInvalidPageSize
	ErrUnknownFilter        = domain.ErrUnknownFilter
	ErrSuggestionOutOfRange = domain.ErrSuggestionOutOfRange

	ErrBackendUnavailable = backend.ErrBackendUnavailable
	ErrTimeout            = backend.ErrTimeout
	ErrCanceled           = backend.ErrCanceled
	ErrUnexpectedStatus   = backend.ErrUnexpectedStatus
	ErrMalformedResponse  = searchuc.ErrMalformedResponse
)

var errUnhealthy = errors.New("backend unhealthy")

// StatusCode returns the backend HTTP status carried by err, 0 if none.
func StatusCode(err error) int {
	return backend.StatusCode(err)
}
