// Package shot parses render paths into stable shot identities.
//
// A render path names one version of one shot, for example
// /renders/SHOT010/SHOT010_v003.mov or BG_PLATE_v01.%04d.exr. Parse reduces
// such a path to a Reference carrying the shot key (the name without its
// version token), the integer version and enough of the original filename to
// substitute a different version back in.
//
// Filename grammar, applied to the base name only:
//
//	name    = stem [ "." ext ]
//	stem    = head token tail [ sep frame ]
//	token   = last match of the version pattern, default (?i)v(\d+)
//	frame   = %0Nd | %d | #... | @... | [start-end] | digits
//	sep     = "_" | "." | "-" | " "
//
// Literal frame digits are only treated as a frame number when the extension
// is a known image-sequence extension, so a movie named SHOT_v003_0001.mov
// keeps its trailing digits in the key. The shot key is head with trailing
// separators removed, followed by the separators that came after the token
// and the rest of tail. SHOT010_v003 and SHOT010v003 therefore share the key
// SHOT010; that collapse is intentional so embedded tokens still resolve.
//
// Shot keys are NFC normalised so decomposed filenames written by some
// volumes compare equal to their composed form. Everything used to rebuild a
// path keeps the on-disk bytes.
package shot
