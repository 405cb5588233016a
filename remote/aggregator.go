package remote

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/toolgate/observe"
)

// DefaultCatalogTTL is the freshness window for the merged remote catalog.
const DefaultCatalogTTL = 5 * time.Minute

// AggregatorConfig configures a catalog aggregator.
type AggregatorConfig struct {
	// Router provides the per-server clients.
	Router *Router

	// Servers supplies display names for description prefixes. Only
	// entries matching a routable server are consulted.
	Servers []ServerConfig

	// TTL is the catalog freshness window. Default: DefaultCatalogTTL.
	TTL time.Duration

	// Logger receives per-server discovery failures. Default: no-op.
	Logger observe.Logger

	// Metrics records discovery outcomes. Default: no-op.
	Metrics observe.Metrics
}

// Aggregator merges remote catalogs with local tools. The remote portion is
// the only process-wide mutable state in the gate: it is guarded by a mutex
// and refreshed single-flight, so concurrent misses wait on one in-flight
// refresh instead of issuing duplicate upstream calls.
type Aggregator struct {
	router  *Router
	display map[string]string
	ttl     time.Duration
	logger  observe.Logger
	metrics observe.Metrics

	mu        sync.Mutex
	cached    []Tool
	fetchedAt time.Time

	group singleflight.Group
}

// NewAggregator creates a catalog aggregator.
func NewAggregator(config AggregatorConfig) *Aggregator {
	if config.TTL <= 0 {
		config.TTL = DefaultCatalogTTL
	}
	if config.Logger == nil {
		config.Logger = observe.NopLogger()
	}
	if config.Metrics == nil {
		config.Metrics = observe.NewNoopMetrics()
	}

	display := make(map[string]string, len(config.Servers))
	for _, cfg := range config.Servers {
		display[cfg.ID] = cfg.DisplayName
	}

	return &Aggregator{
		router:  config.Router,
		display: display,
		ttl:     config.TTL,
		logger:  config.Logger,
		metrics: config.Metrics,
	}
}

// MergedTools returns local tools followed by the namespaced remote catalog.
// Remote discovery failures never fail the merge: unreachable servers are
// logged and skipped, and partial results are valid results.
func (a *Aggregator) MergedTools(ctx context.Context, local []Tool) []Tool {
	remote := a.remoteTools(ctx)

	merged := make([]Tool, 0, len(local)+len(remote))
	merged = append(merged, local...)
	merged = append(merged, remote...)
	return merged
}

// Invalidate drops the cached catalog so the next merge refreshes.
func (a *Aggregator) Invalidate() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cached = nil
	a.fetchedAt = time.Time{}
}

func (a *Aggregator) remoteTools(ctx context.Context) []Tool {
	a.mu.Lock()
	if time.Since(a.fetchedAt) < a.ttl {
		cached := a.cached
		a.mu.Unlock()
		return cached
	}
	a.mu.Unlock()

	tools, _, _ := a.group.Do("refresh", func() (any, error) {
		// Re-check under the lock: a refresh that completed while this
		// caller waited on the flight group is still fresh.
		a.mu.Lock()
		if time.Since(a.fetchedAt) < a.ttl {
			cached := a.cached
			a.mu.Unlock()
			return cached, nil
		}
		a.mu.Unlock()

		fetched := a.fetchAll(ctx)

		a.mu.Lock()
		a.cached = fetched
		a.fetchedAt = time.Now()
		a.mu.Unlock()
		return fetched, nil
	})
	return tools.([]Tool)
}

// fetchAll queries every routable server concurrently. Each client carries
// its own per-call timeout, so one slow server never blocks the others past
// its bound.
func (a *Aggregator) fetchAll(ctx context.Context) []Tool {
	ids := a.router.ServerIDs()
	sort.Strings(ids)

	perServer := make([][]Tool, len(ids))
	var wg sync.WaitGroup
	for i, id := range ids {
		client, ok := a.router.Client(id)
		if !ok {
			continue
		}
		wg.Add(1)
		go func(i int, id string, client Client) {
			defer wg.Done()

			tools, err := client.ListTools(ctx)
			a.metrics.RecordDiscovery(ctx, id, len(tools), err)
			if err != nil {
				a.logger.Warn(ctx, "remote catalog fetch failed, skipping server",
					observe.Field{Key: "server_id", Value: id},
					observe.Field{Key: "error", Value: err.Error()},
				)
				return
			}
			perServer[i] = a.namespace(ctx, id, tools)
		}(i, id, client)
	}
	wg.Wait()

	var all []Tool
	for _, tools := range perServer {
		all = append(all, tools...)
	}
	return all
}

func (a *Aggregator) namespace(ctx context.Context, serverID string, tools []Tool) []Tool {
	out := make([]Tool, 0, len(tools))
	for _, tool := range tools {
		if tool.Name == "" {
			a.logger.Warn(ctx, "skipping remote tool with no name",
				observe.Field{Key: "server_id", Value: serverID},
			)
			continue
		}
		tool.Name = serverID + Separator + tool.Name
		if name := a.display[serverID]; name != "" {
			tool.Description = "[" + name + "] " + tool.Description
		}
		out = append(out, tool)
	}
	return out
}
