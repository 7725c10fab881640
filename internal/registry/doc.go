// Package registry defines the domain types of the ethPM package registry:
// release records, package ownership, and the notification events emitted
// by mutating operations.
package registry
