package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jonwraymond/toolgate/auth"
	"github.com/jonwraymond/toolgate/resilience"
)

// Client is the transport contract to one remote tool server.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Cancellation: both methods honor ctx and the server's call timeout.
type Client interface {
	// ListTools fetches the server's tool catalog.
	ListTools(ctx context.Context) ([]Tool, error)

	// CallTool invokes one tool by its local (un-namespaced) name.
	CallTool(ctx context.Context, name string, args map[string]any) (*CallResult, error)
}

// HTTPClient talks JSON over HTTP to a remote tool server.
type HTTPClient struct {
	config ServerConfig
	http   *http.Client
	retry  *resilience.Retry
}

// NewHTTPClient creates a client for the given server.
func NewHTTPClient(config ServerConfig) (*HTTPClient, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &HTTPClient{
		config: config,
		http:   &http.Client{},
		retry:  resilience.NewRetry(resilience.RetryConfig{MaxAttempts: 2}),
	}, nil
}

type listResponse struct {
	Tools []Tool `json:"tools"`
}

// ListTools fetches the server's catalog. Discovery retries once on
// transport failure; the per-server timeout bounds each attempt.
func (c *HTTPClient) ListTools(ctx context.Context) ([]Tool, error) {
	var out listResponse
	err := c.retry.Execute(ctx, func(ctx context.Context) error {
		return c.post(ctx, "/tools/list", map[string]any{}, &out)
	})
	if err != nil {
		return nil, err
	}
	return out.Tools, nil
}

type callRequest struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

type callResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	IsError bool `json:"isError"`
}

// CallTool invokes one tool and converts the server's envelope into the
// local result shape. Calls are not retried; the tool may not be idempotent.
func (c *HTTPClient) CallTool(ctx context.Context, name string, args map[string]any) (*CallResult, error) {
	if args == nil {
		args = map[string]any{}
	}
	var out callResponse
	if err := c.post(ctx, "/tools/call", callRequest{Name: name, Arguments: args}, &out); err != nil {
		return nil, err
	}

	result := &CallResult{IsError: out.IsError}
	for _, segment := range out.Content {
		if segment.Type != "text" {
			continue
		}
		result.Content = append(result.Content, NewTextContent(segment.Text))
	}
	return result, nil
}

func (c *HTTPClient) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("remote: encode request: %w", err)
	}

	return resilience.ExecuteWithTimeout(ctx, c.config.callTimeout(), func(ctx context.Context) error {
		url := strings.TrimRight(c.config.Endpoint, "/") + path
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		if c.config.ForwardAuth {
			if credential := auth.CredentialFromContext(ctx); credential != "" {
				req.Header.Set("Authorization", "Bearer "+credential)
			}
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("remote: server %q: %w", c.config.ID, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			// Drain so the connection can be reused.
			io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
			return fmt.Errorf("remote: server %q returned status %d", c.config.ID, resp.StatusCode)
		}
		return json.NewDecoder(resp.Body).Decode(out)
	})
}

// Ensure HTTPClient implements Client
var _ Client = (*HTTPClient)(nil)
