package health

import (
	"context"
	"sync"
)

// Aggregator runs a set of health checks and reduces them to one status.
type Aggregator struct {
	mu       sync.RWMutex
	checkers []Checker
}

// NewAggregator creates an aggregator over the given checkers.
func NewAggregator(checkers ...Checker) *Aggregator {
	return &Aggregator{checkers: checkers}
}

// Add registers an additional checker.
func (a *Aggregator) Add(c Checker) {
	if c == nil {
		return
	}
	a.mu.Lock()
	a.checkers = append(a.checkers, c)
	a.mu.Unlock()
}

// CheckAll runs every checker concurrently and returns results by name.
func (a *Aggregator) CheckAll(ctx context.Context) map[string]Result {
	a.mu.RLock()
	checkers := make([]Checker, len(a.checkers))
	copy(checkers, a.checkers)
	a.mu.RUnlock()

	results := make(map[string]Result, len(checkers))
	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, c := range checkers {
		wg.Add(1)
		go func(c Checker) {
			defer wg.Done()
			result := c.Check(ctx)
			mu.Lock()
			results[c.Name()] = result
			mu.Unlock()
		}(c)
	}
	wg.Wait()

	return results
}

// OverallStatus reduces results to the worst observed status.
func (a *Aggregator) OverallStatus(results map[string]Result) Status {
	overall := StatusHealthy
	for _, r := range results {
		if r.Status > overall {
			overall = r.Status
		}
	}
	return overall
}
