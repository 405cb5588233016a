// Package remote routes tool calls to configured remote servers and merges
// their catalogs with local tools.
//
// Tool names are namespaced as "{server_id}__{tool_name}"; names without the
// separator are local. The merged catalog caches the remote portion for a
// fixed freshness window with single-flight refresh, and tolerates individual
// server failures so one unreachable server never hides the others.
package remote
