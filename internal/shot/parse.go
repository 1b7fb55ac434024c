package shot

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// DefaultVersionPattern matches v003, V12 and similar tokens.
const DefaultVersionPattern = `(?i)v(\d+)`

// DefaultSequenceExtensions lists image formats rendered as numbered frames.
var DefaultSequenceExtensions = []string{
	"exr", "dpx", "tif", "tiff", "png", "jpg", "jpeg", "tga", "cin", "hdr", "sgi", "jp2",
}

const separators = "_.- "

var (
	// printf, hash, at-sign and bracket range notations. Host applications show
	// sequences as name.[1001-1100].exr.
	patternFrameRE = regexp.MustCompile(`^(.*?)([._ -]?)(%0?\d*d|#+|@+|\[-?\d+-\d+\])$`)
	digitFrameRE   = regexp.MustCompile(`^(.*)([._-])(\d+)$`)
	bracketRE      = regexp.MustCompile(`^\[(-?\d+)-(\d+)\]$`)
	printfRE       = regexp.MustCompile(`^%0?(\d*)d$`)
)

var defaultGrammar = mustGrammar(DefaultVersionPattern, DefaultSequenceExtensions)

// Grammar holds the configurable parts of the filename grammar.
type Grammar struct {
	version      *regexp.Regexp
	sequenceExts map[string]struct{}
}

// NewGrammar compiles a version pattern. The pattern's first capture group
// must hold the version digits.
func NewGrammar(pattern string, sequenceExts []string) (*Grammar, error) {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		pattern = DefaultVersionPattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("version pattern: %w", err)
	}
	if re.NumSubexp() < 1 {
		return nil, errors.New("version pattern: needs a capture group for the version digits")
	}
	if re.MatchString("") {
		return nil, errors.New("version pattern: must not match an empty name")
	}
	if len(sequenceExts) == 0 {
		sequenceExts = DefaultSequenceExtensions
	}
	exts := make(map[string]struct{}, len(sequenceExts))
	for _, ext := range sequenceExts {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" {
			exts[ext] = struct{}{}
		}
	}
	return &Grammar{version: re, sequenceExts: exts}, nil
}

func mustGrammar(pattern string, exts []string) *Grammar {
	g, err := NewGrammar(pattern, exts)
	if err != nil {
		panic(err)
	}
	return g
}

// DefaultGrammar returns the grammar used by Parse.
func DefaultGrammar() *Grammar {
	return defaultGrammar
}

// IsSequenceExt reports whether ext (with or without the dot) is an image
// sequence extension.
func (g *Grammar) IsSequenceExt(ext string) bool {
	_, ok := g.sequenceExts[strings.ToLower(strings.TrimPrefix(ext, "."))]
	return ok
}

// Parse reduces a path to a Reference using the default grammar.
func Parse(path string) (Reference, error) {
	return defaultGrammar.Parse(path)
}

// Parse reduces a path to a Reference. Only ShotKey is NFC normalised; the
// name parts used to rebuild paths keep the bytes found on disk.
func (g *Grammar) Parse(path string) (Reference, error) {
	name := baseName(path)
	ref := Reference{Path: path, Name: name}

	stem, ext := g.splitExt(name)
	ref.Ext = strings.ToLower(ext)
	ref.extRaw = ext

	stem = g.splitFrame(stem, &ref)

	matches := g.version.FindAllStringSubmatchIndex(stem, -1)
	if len(matches) == 0 {
		return Reference{}, &ParseError{Kind: NoVersionToken, Path: path}
	}
	m := matches[len(matches)-1]
	if len(m) < 4 || m[2] < 0 {
		return Reference{}, &ParseError{Kind: NoVersionToken, Path: path}
	}
	digits := stem[m[2]:m[3]]
	version, err := strconv.Atoi(digits)
	if err != nil {
		return Reference{}, &ParseError{Kind: InvalidVersion, Path: path, Err: err}
	}
	if version < 0 {
		return Reference{}, &ParseError{Kind: InvalidVersion, Path: path}
	}

	key := norm.NFC.String(composeKey(stem[:m[0]], stem[m[1]:]))
	if !hasWordRune(key) {
		return Reference{}, &ParseError{Kind: EmptyShotKey, Path: path}
	}

	ref.ShotKey = key
	ref.Version = version
	ref.head = stem[:m[2]]
	ref.width = len(digits)
	ref.tail = stem[m[3]:]
	return ref, nil
}

// BareVersion reports the version of a name that consists of nothing but a
// version token, such as the v003 directory in SHOT010/v003/.
func (g *Grammar) BareVersion(name string) (int, bool) {
	name = norm.NFC.String(baseName(name))
	m := g.version.FindStringSubmatchIndex(name)
	if m == nil || m[0] != 0 || m[1] != len(name) || m[2] < 0 {
		return 0, false
	}
	version, err := strconv.Atoi(name[m[2]:m[3]])
	if err != nil {
		return 0, false
	}
	return version, true
}

func (g *Grammar) splitExt(name string) (string, string) {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 || i == len(name)-1 {
		return name, ""
	}
	ext := name[i+1:]
	if len(ext) > 5 || !isAlnum(ext) || !hasLetter(ext) {
		return name, ""
	}
	// A directory such as SHOT010.v002 ends in a version token, not an extension.
	if loc := g.version.FindStringIndex(ext); loc != nil && loc[0] == 0 && loc[1] == len(ext) {
		return name, ""
	}
	return name[:i], ext
}

func (g *Grammar) splitFrame(stem string, ref *Reference) string {
	if m := patternFrameRE.FindStringSubmatch(stem); m != nil && m[1] != "" {
		ref.Sequence = true
		ref.frameSep = m[2]
		ref.frameToken = m[3]
		ref.FramePad = tokenPad(m[3])
		if b := bracketRE.FindStringSubmatch(m[3]); b != nil {
			ref.Frame, _ = strconv.Atoi(b[1])
			ref.HasFrame = true
		}
		return m[1]
	}
	if !g.IsSequenceExt(ref.Ext) {
		return stem
	}
	if m := digitFrameRE.FindStringSubmatch(stem); m != nil && m[1] != "" {
		frame, err := strconv.Atoi(m[3])
		if err != nil {
			return stem
		}
		ref.Sequence = true
		ref.HasFrame = true
		ref.Frame = frame
		ref.FramePad = len(m[3])
		ref.frameSep = m[2]
		ref.frameToken = m[3]
		return m[1]
	}
	return stem
}

func composeKey(prefix, suffix string) string {
	left := strings.TrimRight(prefix, separators)
	rest := strings.TrimLeft(suffix, separators)
	switch {
	case rest == "":
		return left
	case left == "":
		return rest
	}
	return left + suffix[:len(suffix)-len(rest)] + rest
}

func tokenPad(token string) int {
	switch {
	case strings.HasPrefix(token, "#"), strings.HasPrefix(token, "@"):
		return len(token)
	case strings.HasPrefix(token, "["):
		if b := bracketRE.FindStringSubmatch(token); b != nil {
			return len(strings.TrimPrefix(b[1], "-"))
		}
	case strings.HasPrefix(token, "%"):
		if p := printfRE.FindStringSubmatch(token); p != nil && p[1] != "" {
			n, _ := strconv.Atoi(p[1])
			return n
		}
	}
	return 0
}

func baseName(path string) string {
	path = strings.TrimRight(strings.TrimSpace(path), `/\`)
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		return path[i+1:]
	}
	return path
}

func isAlnum(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func hasWordRune(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
