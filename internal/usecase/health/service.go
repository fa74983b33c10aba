package health

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultTimeout bounds every probe of a single Check.
const DefaultTimeout = 5 * time.Second

// Status is the overall verdict of a Check.
type Status string

// Overall verdicts.
const (
	Healthy  Status = "ok"
	Degraded Status = "degraded"
)

// CheckResult is the verdict of a single probe.
type CheckResult string

// Probe verdicts.
const (
	CheckOK    CheckResult = "ok"
	CheckError CheckResult = "error"
)

// Report is what /health serves.
type Report struct {
	Status Status                 `json:"status"`
	Checks map[string]CheckResult `json:"checks"`
}

// Service runs its probes concurrently under a shared deadline.
type Service struct {
	probes  map[string]Probe
	timeout time.Duration
	logger  *zap.Logger
}

// New builds a Service with a "backend" probe. Non-positive timeouts fall back
// to DefaultTimeout; a nil logger is replaced with a no-op one.
func New(backend BackendChecker, timeout time.Duration, logger *zap.Logger) *Service {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{probes: map[string]Probe{}, timeout: timeout, logger: logger}
	if backend != nil {
		s.probes["backend"] = backend.Health
	}
	return s
}

// WithProbe adds or replaces a named probe. Not safe to call concurrently with Check.
func (s *Service) WithProbe(name string, p Probe) *Service {
	s.probes[name] = p
	return s
}

// Check runs every probe. Any failure, a timeout included, degrades the report.
func (s *Service) Check(ctx context.Context) Report {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		checks = make(map[string]CheckResult, len(s.probes))
	)
	for name, probe := range s.probes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := CheckOK
			if err := probe(ctx); err != nil {
				s.logger.Warn("health probe failed", zap.String("probe", name), zap.Error(err))
				res = CheckError
			}
			mu.Lock()
			checks[name] = res
			mu.Unlock()
		}()
	}
	wg.Wait()

	return Report{Status: verdict(checks), Checks: checks}
}

// Failing lists the probes that did not pass, sorted by name.
func (r Report) Failing() []string {
	var out []string
	for name, res := range r.Checks {
		if res != CheckOK {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Healthy reports whether every probe passed.
func (s *Service) Healthy(ctx context.Context) bool {
	return s.Check(ctx).Status == Healthy
}

func verdict(checks map[string]CheckResult) Status {
	for _, res := range checks {
		if res != CheckOK {
			return Degraded
		}
	}
	return Healthy
}
