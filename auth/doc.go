// Package auth provides the credential, claims, and authorization primitives
// for the toolgate security core.
//
// It covers bearer-credential discovery and decoding, the two interchangeable
// authentication strategies (capability-based and claims-based), and the
// claims-driven authorization engine that narrows access sessions per call.
// The package is protocol-agnostic and can be used with any transport layer.
package auth
