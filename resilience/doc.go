// Package resilience provides timeout and retry wrappers for calls to
// remote tool servers.
//
// A slow or unreachable remote server must never block the rest of the
// gate: every upstream call runs under an upper-bound timeout, and
// idempotent discovery calls may retry with backoff.
package resilience
