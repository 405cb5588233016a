package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonwraymond/toolgate/auth"
)

func clientFor(t *testing.T, server *httptest.Server, forwardAuth bool) *HTTPClient {
	t.Helper()
	client, err := NewHTTPClient(ServerConfig{
		ID:          "search",
		Endpoint:    server.URL,
		ForwardAuth: forwardAuth,
		Enabled:     true,
	})
	if err != nil {
		t.Fatalf("NewHTTPClient() error = %v", err)
	}
	return client
}

func TestHTTPClient_ListTools(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tools/list" {
			t.Errorf("path = %q, want /tools/list", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"tools": []map[string]any{
				{"name": "query", "description": "run a query"},
			},
		})
	}))
	defer server.Close()

	tools, err := clientFor(t, server, false).ListTools(context.Background())
	if err != nil {
		t.Fatalf("ListTools() error = %v", err)
	}
	if len(tools) != 1 || tools[0].Name != "query" {
		t.Errorf("tools = %+v, want one query tool", tools)
	}
}

func TestHTTPClient_CallTool(t *testing.T) {
	var received callRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tools/call" {
			t.Errorf("path = %q, want /tools/call", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&received)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]any{
				{"type": "text", "text": "found 3 results"},
				{"type": "image", "data": "ignored"},
			},
		})
	}))
	defer server.Close()

	result, err := clientFor(t, server, false).CallTool(context.Background(),
		"query", map[string]any{"q": "x"})
	if err != nil {
		t.Fatalf("CallTool() error = %v", err)
	}
	if received.Name != "query" || received.Arguments["q"] != "x" {
		t.Errorf("server received %+v", received)
	}
	// Non-text segments are dropped from the local shape.
	if len(result.Content) != 1 || result.Content[0].Text != "found 3 results" {
		t.Errorf("result = %+v, want one text segment", result)
	}
}

func TestHTTPClient_ForwardsAuth(t *testing.T) {
	var authHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(map[string]any{"content": []map[string]any{}})
	}))
	defer server.Close()

	ctx := auth.WithState(context.Background(), &auth.RuntimeAuthState{
		Scheme:     auth.SchemeBearer,
		Credential: "tok-xyz",
	})

	if _, err := clientFor(t, server, true).CallTool(ctx, "query", nil); err != nil {
		t.Fatalf("CallTool() error = %v", err)
	}
	if authHeader != "Bearer tok-xyz" {
		t.Errorf("Authorization = %q, want forwarded bearer", authHeader)
	}

	// Forwarding disabled leaves the header empty.
	authHeader = ""
	if _, err := clientFor(t, server, false).CallTool(ctx, "query", nil); err != nil {
		t.Fatalf("CallTool() error = %v", err)
	}
	if authHeader != "" {
		t.Errorf("Authorization = %q, want none", authHeader)
	}
}

func TestHTTPClient_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	if _, err := clientFor(t, server, false).CallTool(context.Background(), "query", nil); err == nil {
		t.Error("CallTool() = nil error on 500 response")
	}
}

func TestHTTPClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	client, err := NewHTTPClient(ServerConfig{
		ID:       "slow",
		Endpoint: server.URL,
		Enabled:  true,
		Timeout:  50 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewHTTPClient() error = %v", err)
	}

	start := time.Now()
	_, err = client.CallTool(context.Background(), "query", nil)
	if err == nil {
		t.Fatal("CallTool() = nil error, want timeout")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("call blocked %v, want the per-server bound", elapsed)
	}
}
