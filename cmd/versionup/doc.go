// Package main hosts the versionup CLI entrypoint and command graph.
//
// The Cobra-based command tree is a thin layer over the internal packages:
// scan resolves every clip on the timeline and stores the result as a plan,
// update applies a stored plan under the apply lock, plans inspects and
// prunes plan history, doctor runs the preflight checks, and config
// scaffolds or validates the configuration file. Configuration resolution
// and logging setup live in commandContext so subcommands stay declarative.
package main
