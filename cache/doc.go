// Package cache provides a small TTL cache used for request-scoped
// permission probes.
//
// Cache instances are always owned by a single request context; nothing in
// this package is process-wide, so cached decisions can never leak between
// concurrent requests.
package cache
