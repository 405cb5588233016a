// Package observe provides observability primitives for the gate.
//
// It is a pure instrumentation library: no execution, no transport, no I/O
// beyond exporter setup. Consumers wire the observer into the request
// pipeline and the remote-tool router.
package observe
