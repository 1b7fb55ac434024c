package versions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"versionup/internal/logging"
	"versionup/internal/media"
	"versionup/internal/shot"
)

// DefaultMovieExtensions lists single-file containers considered by the scanner.
var DefaultMovieExtensions = []string{"mov", "mp4", "mxf", "mkv", "avi", "m4v"}

// RangeProber reads the frame range of a single-file container.
type RangeProber interface {
	FrameRange(ctx context.Context, path string) (media.FrameRange, error)
}

// Options configures a Scanner.
type Options struct {
	Grammar *shot.Grammar
	// VersionDirectories enables comparing sibling version directories when
	// the clip's own directory is versioned.
	VersionDirectories bool
	MovieExtensions    []string
	// Prober fills in movie frame ranges; nil leaves them unknown.
	Prober RangeProber
	Logger *slog.Logger
}

// Scanner lists the versions of a shot present on disk.
type Scanner struct {
	fs          afero.Fs
	grammar     *shot.Grammar
	versionDirs bool
	movieExts   map[string]struct{}
	prober      RangeProber
	logger      *slog.Logger
}

// NewScanner constructs a scanner over fs.
func NewScanner(fs afero.Fs, opts Options) *Scanner {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	grammar := opts.Grammar
	if grammar == nil {
		grammar = shot.DefaultGrammar()
	}
	exts := opts.MovieExtensions
	if len(exts) == 0 {
		exts = DefaultMovieExtensions
	}
	movieExts := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" {
			movieExts[ext] = struct{}{}
		}
	}
	return &Scanner{
		fs:          fs,
		grammar:     grammar,
		versionDirs: opts.VersionDirectories,
		movieExts:   movieExts,
		prober:      opts.Prober,
		logger:      logging.NewComponentLogger(opts.Logger, "scanner"),
	}
}

// Scan returns every distinct version of shotKey found in dir, ordered by
// version. A missing or unreadable dir yields a *ScanError.
func (s *Scanner) Scan(ctx context.Context, shotKey, dir string) ([]Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir = filepath.Clean(dir)
	entries, err := s.readDir(dir)
	if err != nil {
		return nil, &ScanError{Kind: DirectoryUnavailable, Dir: dir, Err: err}
	}

	roots := []string{dir}
	if s.versionDirs {
		if siblings, ok := s.versionSiblings(shotKey, dir); ok {
			roots = siblings
		}
	}

	var found []Candidate
	for _, root := range roots {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		list := entries
		if root != dir {
			list, err = s.readDir(root)
			if err != nil {
				logging.WarnWithContext(s.logger, "version directory unreadable; skipping", "version_dir_unreadable",
					logging.String("dir", root),
					logging.String(logging.FieldShotKey, shotKey),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "check directory permissions"),
					logging.String(logging.FieldImpact, "versions inside this directory are not considered"),
				)
				continue
			}
		}
		cands := s.collect(shotKey, root, list)
		if len(cands) == 0 && root != dir {
			if empty, ok := s.emptyVersionDir(shotKey, root); ok {
				cands = append(cands, empty)
			}
		}
		found = append(found, cands...)
	}

	winners := dedupe(found)
	s.probeMovies(ctx, winners)
	s.logger.Debug("scan complete",
		logging.String(logging.FieldShotKey, shotKey),
		logging.String("dir", dir),
		logging.Int("roots", len(roots)),
		logging.Int("versions", len(winners)),
	)
	return winners, nil
}

func (s *Scanner) readDir(dir string) ([]os.FileInfo, error) {
	info, err := s.fs.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: not a directory", dir)
	}
	return afero.ReadDir(s.fs, dir)
}

// versionSiblings returns the directories to search when dir is itself a
// version directory: its parent plus every sibling sharing the shot key.
func (s *Scanner) versionSiblings(shotKey, dir string) ([]string, bool) {
	name := filepath.Base(dir)
	bare := false
	if ref, err := s.grammar.Parse(name); err == nil {
		if ref.ShotKey != shotKey {
			return nil, false
		}
	} else if _, ok := s.grammar.BareVersion(name); ok {
		bare = true
	} else {
		return nil, false
	}

	parent := filepath.Dir(dir)
	list, err := s.readDir(parent)
	if err != nil {
		s.logger.Debug("version parent unreadable",
			logging.String("dir", parent),
			logging.Error(err),
		)
		return nil, false
	}

	roots := []string{parent}
	for _, fi := range list {
		if !fi.IsDir() {
			continue
		}
		if s.siblingMatches(shotKey, fi.Name(), bare) {
			roots = append(roots, filepath.Join(parent, fi.Name()))
		}
	}
	sort.Strings(roots[1:])
	return roots, true
}

func (s *Scanner) siblingMatches(shotKey, name string, bare bool) bool {
	if bare {
		_, ok := s.grammar.BareVersion(name)
		return ok
	}
	ref, err := s.grammar.Parse(name)
	return err == nil && ref.ShotKey == shotKey
}

type sequenceGroup struct {
	ref    shot.Reference
	frames []int
}

func (s *Scanner) collect(shotKey, root string, list []os.FileInfo) []Candidate {
	var out []Candidate
	groups := map[string]*sequenceGroup{}

	for _, fi := range list {
		if fi.IsDir() {
			continue
		}
		ref, err := s.grammar.Parse(filepath.Join(root, fi.Name()))
		if err != nil || ref.ShotKey != shotKey {
			continue
		}
		switch {
		case ref.Sequence && ref.HasFrame && s.grammar.IsSequenceExt(ref.Ext):
			name := ref.SequenceName()
			group, ok := groups[name]
			if !ok {
				group = &sequenceGroup{ref: ref}
				groups[name] = group
			}
			group.frames = append(group.frames, ref.Frame)
		case !ref.Sequence && s.isMovie(ref.Ext):
			out = append(out, Candidate{Ref: ref, Kind: KindMovie, Exists: true, Frames: 0})
		}
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		group := groups[name]
		frameRange, missing, ok := media.RangeOf(group.frames)
		if !ok {
			continue
		}
		ref := group.ref
		if seqRef, err := s.grammar.Parse(ref.SequencePath()); err == nil {
			ref = seqRef
		}
		if len(missing) > 0 {
			s.logger.Debug("sequence has missing frames",
				logging.String("sequence", ref.Path),
				logging.String("range", frameRange.String()),
				logging.Frames("missing_frames", missing),
			)
		}
		out = append(out, Candidate{
			Ref:     ref,
			Kind:    KindSequence,
			Exists:  true,
			Range:   &frameRange,
			Missing: missing,
			Frames:  len(group.frames),
		})
	}
	return out
}

// emptyVersionDir represents a version directory with no usable media yet,
// typically a render still in flight.
func (s *Scanner) emptyVersionDir(shotKey, dir string) (Candidate, bool) {
	ref, err := s.grammar.Parse(dir)
	if err != nil || ref.ShotKey != shotKey {
		return Candidate{}, false
	}
	return Candidate{Ref: ref, Kind: KindSequence, Exists: false}, true
}

func (s *Scanner) isMovie(ext string) bool {
	_, ok := s.movieExts[ext]
	return ok
}

func (s *Scanner) probeMovies(ctx context.Context, cands []Candidate) {
	if s.prober == nil {
		return
	}
	for i := range cands {
		if cands[i].Kind != KindMovie || cands[i].Range != nil || !cands[i].Exists {
			continue
		}
		if ctx.Err() != nil {
			return
		}
		frameRange, err := s.prober.FrameRange(ctx, cands[i].Path())
		if err != nil {
			level := slog.LevelDebug
			if !errors.Is(err, media.ErrUnknownFrameCount) {
				level = slog.LevelWarn
			}
			s.logger.Log(ctx, level, "movie frame range unavailable",
				logging.String("path", cands[i].Path()),
				logging.Error(err),
			)
			continue
		}
		cands[i].Range = &frameRange
		cands[i].Frames = frameRange.Len()
	}
}

// dedupe keeps one candidate per version and orders the result by version,
// then path.
func dedupe(found []Candidate) []Candidate {
	best := make(map[int]int, len(found))
	var out []Candidate
	for _, c := range found {
		if idx, ok := best[c.Version()]; ok {
			if c.better(out[idx]) {
				out[idx] = c
			}
			continue
		}
		best[c.Version()] = len(out)
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Version() != out[j].Version() {
			return out[i].Version() < out[j].Version()
		}
		return out[i].Path() < out[j].Path()
	})
	return out
}
