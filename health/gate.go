package health

import (
	"context"
	"fmt"
	"time"

	"github.com/jonwraymond/toolgate/remote"
	"github.com/jonwraymond/toolgate/tenantstore"
)

// Reserved tenant and record ids for the storage probe. The probe record is
// deleted after each check.
const (
	probeTenant = "health"
	probeRecord = "probe"
)

// StoreChecker reports whether the tenant record store can complete a
// save/load/delete round-trip.
func StoreChecker(store *tenantstore.Store) Checker {
	return NewCheckerFunc("tenant-store", func(ctx context.Context) Result {
		probe := tenantstore.Record{
			"checked_at": time.Now().UTC().Format(time.RFC3339),
		}
		if err := store.Save(ctx, probeTenant, probeRecord, probe); err != nil {
			return Unhealthy("storage write failed", err)
		}
		if _, err := store.Load(ctx, probeTenant, probeRecord); err != nil {
			return Unhealthy("storage read failed", err)
		}
		if err := store.Delete(ctx, probeTenant, probeRecord); err != nil {
			return Degraded(fmt.Sprintf("probe cleanup failed: %v", err))
		}
		return Healthy("storage round-trip ok")
	})
}

// RouterChecker reports connectivity to the configured remote tool servers.
// A subset of unreachable servers degrades the gate; all servers unreachable
// is unhealthy. A gate with no remote servers is healthy.
func RouterChecker(router *remote.Router) Checker {
	return NewCheckerFunc("remote-servers", func(ctx context.Context) Result {
		ids := router.ServerIDs()
		if len(ids) == 0 {
			return Healthy("no remote servers configured")
		}

		failed := make(map[string]any)
		for _, id := range ids {
			client, ok := router.Client(id)
			if !ok {
				continue
			}
			if _, err := client.ListTools(ctx); err != nil {
				failed[id] = err.Error()
			}
		}

		switch {
		case len(failed) == 0:
			return Healthy(fmt.Sprintf("%d remote servers reachable", len(ids)))
		case len(failed) == len(ids):
			r := Unhealthy("all remote servers unreachable", nil)
			r.Details = failed
			return r
		default:
			r := Degraded(fmt.Sprintf("%d of %d remote servers unreachable", len(failed), len(ids)))
			r.Details = failed
			return r
		}
	})
}
