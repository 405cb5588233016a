// Package tenantstore provides tenant-isolated record persistence.
//
// Each tenant gets its own sub-namespace under a base directory. Path
// segments are percent-encoded, never raw-concatenated, and every resolved
// path is verified to remain inside its tenant's namespace before any I/O.
// Writes are atomic: a record is written to a temporary file in the same
// namespace and renamed into place, so partial writes never become visible.
package tenantstore
