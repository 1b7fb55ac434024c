// Package timeline is the narrow boundary between version resolution and the
// host editing application.
//
// The resolver only ever reads clips and hands back swaps; it never touches
// host objects directly. Source captures the three capabilities it needs:
// enumerate clips on a track, re-read one clip, and relink a clip to new
// media. FileSource implements Source over a JSON timeline export so the
// workflow can run outside the host, and tests substitute an in-memory fake.
package timeline
