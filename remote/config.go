package remote

import (
	"fmt"
	"net/url"
	"time"
)

// DefaultCallTimeout bounds each remote call when a server config does not
// set its own.
const DefaultCallTimeout = 10 * time.Second

// ServerConfig describes one remote tool server. Configs are static per
// deployment and read-only at runtime.
type ServerConfig struct {
	// ID is the server's namespace prefix. Must not contain the tool-name
	// separator.
	ID string

	// DisplayName is the human-readable name prefixed onto merged tool
	// descriptions.
	DisplayName string

	// Endpoint is the server's base URL.
	Endpoint string

	// ForwardAuth forwards the inbound bearer credential on outgoing
	// calls.
	ForwardAuth bool

	// Enabled gates the server; disabled servers are skipped entirely.
	Enabled bool

	// Timeout bounds each call to this server. Default: DefaultCallTimeout.
	Timeout time.Duration
}

// Validate checks the config for deployment-time mistakes.
func (c ServerConfig) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("remote: server id is required")
	}
	if containsSeparator(c.ID) {
		return fmt.Errorf("remote: server id %q must not contain %q", c.ID, Separator)
	}
	if c.Endpoint == "" {
		return fmt.Errorf("remote: server %q has no endpoint", c.ID)
	}
	u, err := url.Parse(c.Endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("remote: server %q has invalid endpoint %q", c.ID, c.Endpoint)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("remote: server %q has negative timeout", c.ID)
	}
	return nil
}

func (c ServerConfig) callTimeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return DefaultCallTimeout
}
