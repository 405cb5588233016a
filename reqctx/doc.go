// Package reqctx builds and propagates the per-call request context: the
// bundle of request id, resolved identity, authentication strategy, tenant,
// and tenant-scoped services for one inbound call.
//
// Propagation rides Go's context.Context as the per-task slot: each
// inbound call runs on its own context chain, so
// concurrent calls never observe each other's request context, and the
// bundle becomes collectible as soon as the call's context chain is
// dropped. Nothing in this package retains request contexts in any
// process-wide table.
package reqctx
