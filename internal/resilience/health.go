package resilience

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Component status values
const (
	StatusUp       = "up"
	StatusDown     = "down"
	StatusDisabled = "disabled"
)

// Overall status values
const (
	HealthOK       = "ok"
	HealthDegraded = "degraded"
	HealthDown     = "down"
)

// HealthCheckFunc reports whether a dependency is usable
type HealthCheckFunc func(ctx context.Context) error

// ComponentHealth is the outcome of one check
type ComponentHealth struct {
	Name      string `json:"name"`
	Status    string `json:"status"`
	Critical  bool   `json:"critical"`
	Message   string `json:"message,omitempty"`
	LatencyMS int64  `json:"latency_ms"`
}

type component struct {
	check    HealthCheckFunc
	critical bool
}

// HealthRegistry runs dependency checks for the health endpoint.
// A failing critical component makes the service down; a failing optional one only degrades it.
type HealthRegistry struct {
	timeout    time.Duration
	components map[string]component
	disabled   map[string]string
	mutex      sync.RWMutex
}

// NewHealthRegistry creates a registry whose checks each get timeout
func NewHealthRegistry(timeout time.Duration) *HealthRegistry {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &HealthRegistry{
		timeout:    timeout,
		components: make(map[string]component),
		disabled:   make(map[string]string),
	}
}

// Register adds or replaces a component check
func (r *HealthRegistry) Register(name string, critical bool, check HealthCheckFunc) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	delete(r.disabled, name)
	r.components[name] = component{check: check, critical: critical}

	slog.Debug("Registered health check", "component", name, "critical", critical)
}

// Disable lists a component that is switched off by configuration
func (r *HealthRegistry) Disable(name, reason string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	delete(r.components, name)
	r.disabled[name] = reason
}

// Check runs every registered check concurrently and returns the overall status
// together with per-component results sorted by name.
func (r *HealthRegistry) Check(ctx context.Context) (string, []ComponentHealth) {
	r.mutex.RLock()
	components := make(map[string]component, len(r.components))
	for name, c := range r.components {
		components[name] = c
	}
	results := make([]ComponentHealth, 0, len(r.components)+len(r.disabled))
	for name, reason := range r.disabled {
		results = append(results, ComponentHealth{Name: name, Status: StatusDisabled, Message: reason})
	}
	r.mutex.RUnlock()

	var wg sync.WaitGroup
	var mu sync.Mutex
	for name, c := range components {
		wg.Add(1)
		go func(name string, c component) {
			defer wg.Done()

			checkCtx, cancel := context.WithTimeout(ctx, r.timeout)
			defer cancel()

			start := time.Now()
			err := c.check(checkCtx)
			res := ComponentHealth{
				Name:      name,
				Status:    StatusUp,
				Critical:  c.critical,
				LatencyMS: time.Since(start).Milliseconds(),
			}
			if err != nil {
				res.Status = StatusDown
				res.Message = err.Error()
				slog.Warn("Health check failed", "component", name, "critical", c.critical, "error", err)
			}

			mu.Lock()
			results = append(results, res)
			mu.Unlock()
		}(name, c)
	}
	wg.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].Name < results[j].Name })

	overall := HealthOK
	for _, res := range results {
		if res.Status != StatusDown {
			continue
		}
		if res.Critical {
			return HealthDown, results
		}
		overall = HealthDegraded
	}

	return overall, results
}
