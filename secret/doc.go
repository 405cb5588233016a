// Package secret resolves secret-valued configuration such as the claims
// decoder's shared signing secret and remote server auth material.
//
// Values may be plain strings with strict ${VAR} environment expansion, or
// references of the form secretref:<provider>:<ref> resolved through a
// registered provider. Secret values are never logged.
package secret
