// Package planstore persists resolution plans between `versionup scan` and
// `versionup update`, and records what each apply did.
//
// Plans are stored in a SQLite database under the configured state
// directory. The clip reports themselves are kept as a JSON document per
// plan; summary counts live in columns so listings do not decode payloads.
//
// Apply runs take an advisory file lock so two processes never relink the
// same timeline at once.
package planstore
