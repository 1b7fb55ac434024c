package versions_test

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"versionup/internal/media"
	"versionup/internal/versions"
)

func touch(t *testing.T, fsys afero.Fs, path string) {
	t.Helper()
	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
	if err := afero.WriteFile(fsys, path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func writeFrames(t *testing.T, fsys afero.Fs, dir, prefix string, first, last int, skip ...int) {
	t.Helper()
	skipped := map[int]bool{}
	for _, f := range skip {
		skipped[f] = true
	}
	for frame := first; frame <= last; frame++ {
		if skipped[frame] {
			continue
		}
		touch(t, fsys, filepath.Join(dir, fmt.Sprintf("%s.%04d.exr", prefix, frame)))
	}
}

func versionsOf(cands []versions.Candidate) []int {
	out := make([]int, 0, len(cands))
	for _, c := range cands {
		out = append(out, c.Version())
	}
	return out
}

func TestScanMovieSiblings(t *testing.T) {
	fsys := afero.NewMemMapFs()
	touch(t, fsys, "/renders/SHOT010/SHOT010_v002.mov")
	touch(t, fsys, "/renders/SHOT010/SHOT010_v003.mov")
	touch(t, fsys, "/renders/SHOT010/SHOT010_v001.mov")
	touch(t, fsys, "/renders/SHOT010/SHOT020_v009.mov")
	touch(t, fsys, "/renders/SHOT010/notes.txt")

	scanner := versions.NewScanner(fsys, versions.Options{})
	cands, err := scanner.Scan(context.Background(), "SHOT010", "/renders/SHOT010")
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if got := fmt.Sprint(versionsOf(cands)); got != "[1 2 3]" {
		t.Fatalf("versions = %s, want [1 2 3]", got)
	}
	for _, c := range cands {
		if c.Kind != versions.KindMovie || !c.Exists {
			t.Fatalf("unexpected candidate %+v", c)
		}
		if c.Range != nil {
			t.Fatalf("movie range should be unknown without a prober, got %v", c.Range)
		}
	}

	selected, ok := versions.Select(cands, 2, versions.Policy{})
	if !ok {
		t.Fatal("expected a newer version")
	}
	if selected.Version() != 3 || selected.Path() != "/renders/SHOT010/SHOT010_v003.mov" {
		t.Fatalf("selected %s (%s)", selected.Ref, selected.Path())
	}
	if selected.Ref.ShotKey != "SHOT010" {
		t.Fatalf("shot key = %q", selected.Ref.ShotKey)
	}
}

func TestScanVersionDirectories(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFrames(t, fsys, "/renders/BG_PLATE/BG_PLATE_v01", "BG_PLATE_v01", 1001, 1100)
	writeFrames(t, fsys, "/renders/BG_PLATE/BG_PLATE_v02", "BG_PLATE_v02", 1001, 1150)

	scanner := versions.NewScanner(fsys, versions.Options{VersionDirectories: true})
	cands, err := scanner.Scan(context.Background(), "BG_PLATE", "/renders/BG_PLATE/BG_PLATE_v01")
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(cands) != 2 {
		t.Fatalf("expected 2 versions, got %d: %v", len(cands), versionsOf(cands))
	}
	latest := cands[1]
	if latest.Kind != versions.KindSequence || latest.Version() != 2 {
		t.Fatalf("unexpected latest candidate %+v", latest)
	}
	if latest.Path() != "/renders/BG_PLATE/BG_PLATE_v02/BG_PLATE_v02.%04d.exr" {
		t.Fatalf("sequence path = %q", latest.Path())
	}
	if latest.Range == nil || *latest.Range != (media.FrameRange{Start: 1001, End: 1150}) {
		t.Fatalf("range = %v", latest.Range)
	}
	if latest.Frames != 150 || len(latest.Missing) != 0 {
		t.Fatalf("frames = %d missing = %v", latest.Frames, latest.Missing)
	}
}

func TestScanVersionDirectoriesDisabled(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFrames(t, fsys, "/renders/BG/BG_v01", "BG_v01", 1, 3)
	writeFrames(t, fsys, "/renders/BG/BG_v02", "BG_v02", 1, 3)

	scanner := versions.NewScanner(fsys, versions.Options{})
	cands, err := scanner.Scan(context.Background(), "BG", "/renders/BG/BG_v01")
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if got := fmt.Sprint(versionsOf(cands)); got != "[1]" {
		t.Fatalf("versions = %s, want [1]", got)
	}
}

func TestScanBareVersionDirectories(t *testing.T) {
	fsys := afero.NewMemMapFs()
	touch(t, fsys, "/renders/SHOT010/v001/SHOT010_v001.mov")
	touch(t, fsys, "/renders/SHOT010/v002/SHOT010_v002.mov")
	touch(t, fsys, "/renders/SHOT010/published/SHOT010_v009.mov")

	scanner := versions.NewScanner(fsys, versions.Options{VersionDirectories: true})
	cands, err := scanner.Scan(context.Background(), "SHOT010", "/renders/SHOT010/v001")
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if got := fmt.Sprint(versionsOf(cands)); got != "[1 2]" {
		t.Fatalf("versions = %s, want [1 2]", got)
	}
}

func TestScanEmptyVersionDirectory(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFrames(t, fsys, "/renders/BG/BG_v01", "BG_v01", 1, 3)
	if err := fsys.MkdirAll("/renders/BG/BG_v02", 0o755); err != nil {
		t.Fatal(err)
	}

	scanner := versions.NewScanner(fsys, versions.Options{VersionDirectories: true})
	cands, err := scanner.Scan(context.Background(), "BG", "/renders/BG/BG_v01")
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(cands) != 2 {
		t.Fatalf("expected 2 versions, got %v", versionsOf(cands))
	}
	if cands[1].Exists || cands[1].Range != nil {
		t.Fatalf("empty version directory should not exist: %+v", cands[1])
	}
}

func TestScanDeduplicatesVersions(t *testing.T) {
	fsys := afero.NewMemMapFs()
	touch(t, fsys, "/renders/SHOT/SHOT_v003.mov")
	writeFrames(t, fsys, "/renders/SHOT", "SHOT_v003", 1, 3)
	touch(t, fsys, "/renders/SHOT/SHOT_v004.mxf")
	touch(t, fsys, "/renders/SHOT/SHOT_v004.mov")
	touch(t, fsys, "/renders/SHOT/SHOT_v4.mov")

	scanner := versions.NewScanner(fsys, versions.Options{})
	cands, err := scanner.Scan(context.Background(), "SHOT", "/renders/SHOT")
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if got := fmt.Sprint(versionsOf(cands)); got != "[3 4]" {
		t.Fatalf("versions = %s, want [3 4]", got)
	}
	if cands[0].Kind != versions.KindSequence {
		t.Fatalf("sequence should win over movie, got %s", cands[0].Path())
	}
	if cands[1].Path() != "/renders/SHOT/SHOT_v004.mov" {
		t.Fatalf("lexicographically first path should win, got %s", cands[1].Path())
	}
}

func TestScanRecordsMissingFrames(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFrames(t, fsys, "/renders/FX", "FX_v02", 1001, 1010, 1004, 1005)

	scanner := versions.NewScanner(fsys, versions.Options{})
	cands, err := scanner.Scan(context.Background(), "FX", "/renders/FX")
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(cands) != 1 {
		t.Fatalf("expected one sequence, got %d", len(cands))
	}
	if got := fmt.Sprint(cands[0].Missing); got != "[1004 1005]" {
		t.Fatalf("missing = %s", got)
	}
	if cands[0].Frames != 8 {
		t.Fatalf("frames = %d, want 8", cands[0].Frames)
	}
}

func TestScanDecomposedNamesResolveToFilesOnDisk(t *testing.T) {
	dir := t.TempDir()
	fsys := afero.NewOsFs()
	writeFrames(t, fsys, dir, "Cafe\u0301_v002", 1001, 1003)

	scanner := versions.NewScanner(fsys, versions.Options{})
	cands, err := scanner.Scan(context.Background(), "Caf\u00e9", dir)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(cands) != 1 || cands[0].Kind != versions.KindSequence {
		t.Fatalf("expected one sequence, got %+v", cands)
	}
	for frame := 1001; frame <= 1003; frame++ {
		path := fmt.Sprintf(cands[0].Path(), frame)
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("frame %d of %q does not exist: %v", frame, cands[0].Path(), err)
		}
	}
}

func TestScanHyphenatedFrameNumbers(t *testing.T) {
	fsys := afero.NewMemMapFs()
	for frame := 1001; frame <= 1005; frame++ {
		touch(t, fsys, fmt.Sprintf("/renders/shot/shot_v01-%04d.exr", frame))
		touch(t, fsys, fmt.Sprintf("/renders/shot/shot_v02-%04d.exr", frame))
	}

	scanner := versions.NewScanner(fsys, versions.Options{})
	cands, err := scanner.Scan(context.Background(), "shot", "/renders/shot")
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if got := fmt.Sprint(versionsOf(cands)); got != "[1 2]" {
		t.Fatalf("versions = %s, want [1 2]", got)
	}
	last := cands[len(cands)-1]
	if last.Path() != "/renders/shot/shot_v02-%04d.exr" {
		t.Fatalf("path = %q", last.Path())
	}
	if last.Range == nil || *last.Range != (media.FrameRange{Start: 1001, End: 1005}) {
		t.Fatalf("range = %v", last.Range)
	}
}

type stubProber struct {
	ranges map[string]media.FrameRange
	calls  []string
}

func (p *stubProber) FrameRange(_ context.Context, path string) (media.FrameRange, error) {
	p.calls = append(p.calls, path)
	r, ok := p.ranges[path]
	if !ok {
		return media.FrameRange{}, media.ErrUnknownFrameCount
	}
	return r, nil
}

func TestScanProbesMovies(t *testing.T) {
	fsys := afero.NewMemMapFs()
	touch(t, fsys, "/renders/SHOT/SHOT_v001.mov")
	touch(t, fsys, "/renders/SHOT/SHOT_v002.mov")
	writeFrames(t, fsys, "/renders/SHOT", "SHOT_v003", 1, 2)

	prober := &stubProber{ranges: map[string]media.FrameRange{
		"/renders/SHOT/SHOT_v002.mov": {Start: 0, End: 47},
	}}
	scanner := versions.NewScanner(fsys, versions.Options{Prober: prober})
	cands, err := scanner.Scan(context.Background(), "SHOT", "/renders/SHOT")
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(prober.calls) != 2 {
		t.Fatalf("expected movies only to be probed, got %v", prober.calls)
	}
	if cands[0].Range != nil {
		t.Fatalf("unprobeable movie should have no range, got %v", cands[0].Range)
	}
	if cands[1].Range == nil || cands[1].Range.Len() != 48 {
		t.Fatalf("probed range = %v", cands[1].Range)
	}
}

type denyFs struct {
	afero.Fs
	denied string
}

func (d denyFs) Open(name string) (afero.File, error) {
	if strings.HasPrefix(filepath.Clean(name), d.denied) {
		return nil, &os.PathError{Op: "open", Path: name, Err: fs.ErrPermission}
	}
	return d.Fs.Open(name)
}

func TestScanUnreadableDirectory(t *testing.T) {
	base := afero.NewMemMapFs()
	touch(t, base, "/renders/LOCKED/LOCKED_v001.mov")

	scanner := versions.NewScanner(denyFs{Fs: base, denied: "/renders/LOCKED"}, versions.Options{})
	_, err := scanner.Scan(context.Background(), "LOCKED", "/renders/LOCKED")
	var scanErr *versions.ScanError
	if !errors.As(err, &scanErr) {
		t.Fatalf("expected *ScanError, got %v", err)
	}
	if scanErr.Kind != versions.DirectoryUnavailable {
		t.Fatalf("kind = %s", scanErr.Kind)
	}
	if !errors.Is(err, fs.ErrPermission) {
		t.Fatalf("expected permission error to be wrapped, got %v", err)
	}
}

func TestScanMissingDirectory(t *testing.T) {
	scanner := versions.NewScanner(afero.NewMemMapFs(), versions.Options{})
	_, err := scanner.Scan(context.Background(), "SHOT", "/nowhere")
	var scanErr *versions.ScanError
	if !errors.As(err, &scanErr) || scanErr.Kind != versions.DirectoryUnavailable {
		t.Fatalf("expected DirectoryUnavailable, got %v", err)
	}
}

func TestScanSkipsUnreadableSibling(t *testing.T) {
	base := afero.NewMemMapFs()
	writeFrames(t, base, "/renders/BG/BG_v01", "BG_v01", 1, 3)
	writeFrames(t, base, "/renders/BG/BG_v02", "BG_v02", 1, 3)

	scanner := versions.NewScanner(denyFs{Fs: base, denied: "/renders/BG/BG_v02"}, versions.Options{VersionDirectories: true})
	cands, err := scanner.Scan(context.Background(), "BG", "/renders/BG/BG_v01")
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if got := fmt.Sprint(versionsOf(cands)); got != "[1]" {
		t.Fatalf("versions = %s, want [1]", got)
	}
}

func TestScanHonoursCancellation(t *testing.T) {
	fsys := afero.NewMemMapFs()
	touch(t, fsys, "/renders/SHOT/SHOT_v001.mov")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	scanner := versions.NewScanner(fsys, versions.Options{})
	if _, err := scanner.Scan(ctx, "SHOT", "/renders/SHOT"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestScanReflectsNewRenders(t *testing.T) {
	fsys := afero.NewMemMapFs()
	touch(t, fsys, "/renders/SHOT/SHOT_v001.mov")
	scanner := versions.NewScanner(fsys, versions.Options{})

	first, err := scanner.Scan(context.Background(), "SHOT", "/renders/SHOT")
	if err != nil {
		t.Fatal(err)
	}
	touch(t, fsys, "/renders/SHOT/SHOT_v002.mov")
	second, err := scanner.Scan(context.Background(), "SHOT", "/renders/SHOT")
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != 1 || len(second) != 2 {
		t.Fatalf("expected rescans to see new files: %v then %v", versionsOf(first), versionsOf(second))
	}
}
