// Package versions finds the sibling renders of a shot and picks the one a
// clip should move to.
//
// Scanner performs one filesystem pass per call and never caches, so a
// render that lands between two scans is seen by the second. It returns
// every distinct version it finds, older ones included; deciding which one
// to use is Select's job. When one version exists in several forms the
// scanner keeps exactly one: media that exists beats an empty version
// directory, an image sequence beats a movie container, and the
// lexicographically first path breaks any remaining tie.
//
// Version directories are followed one level up: a clip whose parent
// directory is itself versioned (BG_PLATE_v01/ or a bare v001/) is compared
// against every sibling directory carrying the same shot key.
package versions
