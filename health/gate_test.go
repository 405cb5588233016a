package health

import (
	"context"
	"errors"
	"testing"

	"github.com/jonwraymond/toolgate/observe"
	"github.com/jonwraymond/toolgate/remote"
	"github.com/jonwraymond/toolgate/tenantstore"
)

func TestStoreChecker(t *testing.T) {
	store, err := tenantstore.NewStore(t.TempDir(), observe.NopLogger())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}

	result := StoreChecker(store).Check(context.Background())
	if result.Status != StatusHealthy {
		t.Errorf("Check() status = %v, want healthy (%v)", result.Status, result.Error)
	}

	// The probe record must not linger after the check.
	if _, err := store.Load(context.Background(), "health", "probe"); !errors.Is(err, tenantstore.ErrNotFound) {
		t.Errorf("Load(probe) error = %v, want ErrNotFound", err)
	}
}

type stubToolClient struct {
	err error
}

func (c *stubToolClient) ListTools(context.Context) ([]remote.Tool, error) {
	if c.err != nil {
		return nil, c.err
	}
	return []remote.Tool{{Name: "search"}}, nil
}

func (c *stubToolClient) CallTool(context.Context, string, map[string]any) (*remote.CallResult, error) {
	return &remote.CallResult{}, nil
}

func newStubRouter(t *testing.T, errs map[string]error) *remote.Router {
	t.Helper()
	configs := make([]remote.ServerConfig, 0, len(errs))
	for id := range errs {
		configs = append(configs, remote.ServerConfig{
			ID:       id,
			Endpoint: "http://" + id + ".internal",
			Enabled:  true,
		})
	}
	router, err := remote.NewRouter(configs, func(cfg remote.ServerConfig) (remote.Client, error) {
		return &stubToolClient{err: errs[cfg.ID]}, nil
	})
	if err != nil {
		t.Fatalf("NewRouter() error = %v", err)
	}
	return router
}

func TestRouterChecker(t *testing.T) {
	unreachable := errors.New("connection refused")

	tests := []struct {
		name string
		errs map[string]error
		want Status
	}{
		{
			name: "no servers",
			errs: map[string]error{},
			want: StatusHealthy,
		},
		{
			name: "all reachable",
			errs: map[string]error{"search": nil, "docs": nil},
			want: StatusHealthy,
		},
		{
			name: "one unreachable",
			errs: map[string]error{"search": nil, "docs": unreachable},
			want: StatusDegraded,
		},
		{
			name: "all unreachable",
			errs: map[string]error{"search": unreachable, "docs": unreachable},
			want: StatusUnhealthy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newStubRouter(t, tt.errs)
			result := RouterChecker(router).Check(context.Background())
			if result.Status != tt.want {
				t.Errorf("Check() status = %v, want %v", result.Status, tt.want)
			}
		})
	}
}
