// Package compat decides whether a candidate version can replace a clip's
// media without disturbing the edit.
//
// The check is frame-number based. A candidate whose first frame differs from
// the clip's source start is rejected unless uniform shifts are allowed and
// both ends moved by the same amount. Unknown frame ranges are never
// compatible.
package compat
