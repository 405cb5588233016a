package remote

import (
	"context"
	"errors"
	"testing"
)

// fakeClient is an in-memory Client for router and aggregator tests.
type fakeClient struct {
	tools    []Tool
	listErr  error
	lastCall string
	result   *CallResult
	callErr  error
}

func (f *fakeClient) ListTools(_ context.Context) ([]Tool, error) {
	return f.tools, f.listErr
}

func (f *fakeClient) CallTool(_ context.Context, name string, _ map[string]any) (*CallResult, error) {
	f.lastCall = name
	if f.callErr != nil {
		return nil, f.callErr
	}
	if f.result != nil {
		return f.result, nil
	}
	return &CallResult{Content: []TextContent{NewTextContent("ok")}}, nil
}

func fakeDial(clients map[string]*fakeClient) func(ServerConfig) (Client, error) {
	return func(cfg ServerConfig) (Client, error) {
		return clients[cfg.ID], nil
	}
}

func TestParseToolName(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantServer string
		wantLocal  string
	}{
		{
			name:      "local name",
			input:     "list_objects",
			wantLocal: "list_objects",
		},
		{
			name:       "namespaced name",
			input:      "search__query",
			wantServer: "search",
			wantLocal:  "query",
		},
		{
			name:       "separator inside local name",
			input:      "search__get__raw",
			wantServer: "search",
			wantLocal:  "get__raw",
		},
		{
			name:      "leading separator is local",
			input:     "__oddly_named",
			wantLocal: "__oddly_named",
		},
		{
			name:      "empty name",
			input:     "",
			wantLocal: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, local := ParseToolName(tt.input)
			if server != tt.wantServer || local != tt.wantLocal {
				t.Errorf("ParseToolName(%q) = (%q, %q), want (%q, %q)",
					tt.input, server, local, tt.wantServer, tt.wantLocal)
			}
		})
	}
}

func testConfigs() []ServerConfig {
	return []ServerConfig{
		{ID: "search", DisplayName: "Search", Endpoint: "http://search.internal", Enabled: true},
		{ID: "files", DisplayName: "Files", Endpoint: "http://files.internal", Enabled: true},
		{ID: "legacy", Endpoint: "http://legacy.internal", Enabled: false},
	}
}

func TestNewRouter(t *testing.T) {
	clients := map[string]*fakeClient{"search": {}, "files": {}}
	router, err := NewRouter(testConfigs(), fakeDial(clients))
	if err != nil {
		t.Fatalf("NewRouter() error = %v", err)
	}

	if _, ok := router.Client("search"); !ok {
		t.Error("search client missing")
	}
	// Disabled servers are not routable.
	if _, ok := router.Client("legacy"); ok {
		t.Error("disabled server is routable")
	}
	if got := len(router.ServerIDs()); got != 2 {
		t.Errorf("ServerIDs() has %d entries, want 2", got)
	}
}

func TestNewRouter_RejectsBadConfigs(t *testing.T) {
	bad := []ServerConfig{
		{ID: "a__b", Endpoint: "http://x.internal", Enabled: true},
	}
	if _, err := NewRouter(bad, fakeDial(nil)); err == nil {
		t.Error("NewRouter() accepted a server id containing the separator")
	}

	dup := []ServerConfig{
		{ID: "search", Endpoint: "http://a.internal", Enabled: true},
		{ID: "search", Endpoint: "http://b.internal", Enabled: true},
	}
	if _, err := NewRouter(dup, fakeDial(map[string]*fakeClient{"search": {}})); err == nil {
		t.Error("NewRouter() accepted duplicate server ids")
	}
}

func TestRouter_RouteCall(t *testing.T) {
	search := &fakeClient{}
	router, err := NewRouter(testConfigs(), fakeDial(map[string]*fakeClient{
		"search": search,
		"files":  {},
	}))
	if err != nil {
		t.Fatalf("NewRouter() error = %v", err)
	}

	result, err := router.RouteCall(context.Background(), "search__query", map[string]any{"q": "x"})
	if err != nil {
		t.Fatalf("RouteCall() error = %v", err)
	}
	if search.lastCall != "query" {
		t.Errorf("server received %q, want un-namespaced %q", search.lastCall, "query")
	}
	if len(result.Content) != 1 || result.Content[0].Text != "ok" {
		t.Errorf("result = %+v, want one ok segment", result)
	}

	if _, err := router.RouteCall(context.Background(), "missing__query", nil); !errors.Is(err, ErrUnknownServer) {
		t.Errorf("RouteCall(unknown server) error = %v, want ErrUnknownServer", err)
	}
	if _, err := router.RouteCall(context.Background(), "local_tool", nil); !errors.Is(err, ErrUnknownServer) {
		t.Errorf("RouteCall(local name) error = %v, want ErrUnknownServer", err)
	}
}
