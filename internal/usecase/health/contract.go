package health

import "context"

// BackendChecker is satisfied by the directory backend client.
type BackendChecker interface {
	Health(ctx context.Context) error
}

// Probe is one named dependency check; a nil error means the dependency is up.
type Probe func(ctx context.Context) error
