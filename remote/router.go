package remote

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Separator splits the server namespace from the tool name in merged
// catalogs.
const Separator = "__"

// ErrUnknownServer is returned when a namespaced name references a server
// that is not configured or not enabled.
var ErrUnknownServer = errors.New("remote: unknown server")

func containsSeparator(s string) bool {
	return strings.Contains(s, Separator)
}

// ParseToolName splits a possibly namespaced tool name. Names without the
// separator are local: serverID is empty and the name is returned unchanged.
func ParseToolName(name string) (serverID, localName string) {
	before, after, found := strings.Cut(name, Separator)
	if !found || before == "" {
		return "", name
	}
	return before, after
}

// Router dispatches namespaced tool calls to their server's client.
type Router struct {
	clients map[string]Client
}

// NewRouter creates a router over the given enabled servers. Disabled
// configs are skipped.
func NewRouter(configs []ServerConfig, dial func(ServerConfig) (Client, error)) (*Router, error) {
	if dial == nil {
		dial = func(cfg ServerConfig) (Client, error) { return NewHTTPClient(cfg) }
	}

	clients := make(map[string]Client, len(configs))
	for _, cfg := range configs {
		if !cfg.Enabled {
			continue
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		if _, dup := clients[cfg.ID]; dup {
			return nil, fmt.Errorf("remote: duplicate server id %q", cfg.ID)
		}
		client, err := dial(cfg)
		if err != nil {
			return nil, fmt.Errorf("remote: server %q: %w", cfg.ID, err)
		}
		clients[cfg.ID] = client
	}
	return &Router{clients: clients}, nil
}

// Client returns the client for a server id.
func (r *Router) Client(serverID string) (Client, bool) {
	client, ok := r.clients[serverID]
	return client, ok
}

// ServerIDs returns the ids of all routable servers.
func (r *Router) ServerIDs() []string {
	ids := make([]string, 0, len(r.clients))
	for id := range r.clients {
		ids = append(ids, id)
	}
	return ids
}

// RouteCall dispatches a namespaced tool call. Local names (no separator)
// are not routable here and return ErrUnknownServer.
func (r *Router) RouteCall(ctx context.Context, namespacedName string, args map[string]any) (*CallResult, error) {
	serverID, localName := ParseToolName(namespacedName)
	if serverID == "" {
		return nil, fmt.Errorf("%w: %q is not namespaced", ErrUnknownServer, namespacedName)
	}
	client, ok := r.clients[serverID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownServer, serverID)
	}
	return client.CallTool(ctx, localName, args)
}
