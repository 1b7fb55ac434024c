// Package preflight provides readiness checks for the paths and tools
// versionup depends on.
//
// The CLI "versionup doctor" command runs RunAll and prints each result.
// Individual checks are exported so other commands can reuse them.
package preflight
