// Package health provides health-check primitives and HTTP probe handlers.
//
// Probe paths are exempt from credential enforcement at the transport
// boundary: see DefaultPaths and auth.TransportConfig.ExemptPaths.
package health
