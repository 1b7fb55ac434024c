package timeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/afero"
)

// exportMode applies to exports FileSource creates. Existing exports keep
// their mode across rewrites.
const exportMode fs.FileMode = 0o644

// Document is the JSON timeline export read and written by FileSource.
type Document struct {
	Name   string  `json:"name"`
	Tracks []Track `json:"tracks"`
}

// Track is one video track of the exported timeline, in host order.
type Track struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Clips []Clip `json:"clips"`
}

// FileSource implements Source over a JSON timeline export. Each call reads
// the file again so edits made by the host between scan and apply are seen.
type FileSource struct {
	fs   afero.Fs
	path string
	mu   sync.Mutex
}

// NewFileSource returns a Source backed by the export at path on the OS
// filesystem.
func NewFileSource(path string) *FileSource {
	return NewFileSourceFs(afero.NewOsFs(), path)
}

// NewFileSourceFs returns a Source backed by the export at path on fsys.
func NewFileSourceFs(fsys afero.Fs, path string) *FileSource {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &FileSource{fs: fsys, path: path}
}

// Path returns the export location.
func (s *FileSource) Path() string {
	return s.path
}

// ListClips returns clips on the named track, or on every track for AllTracks
// or an empty name. Tracks match by name (case-insensitive) or 1-based index.
func (s *FileSource) ListClips(ctx context.Context, track string) ([]Clip, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	track = strings.TrimSpace(track)
	all := track == "" || strings.EqualFold(track, AllTracks)

	var clips []Clip
	found := all
	for _, t := range doc.Tracks {
		if !all && !trackMatches(t, track) {
			continue
		}
		found = true
		for _, clip := range t.Clips {
			if clip.Track == "" {
				clip.Track = trackLabel(t)
			}
			clips = append(clips, clip)
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: %q", ErrTrackNotFound, track)
	}
	return clips, nil
}

// GetClip returns the clip with the given ID.
func (s *FileSource) GetClip(ctx context.Context, id string) (Clip, error) {
	if err := ctx.Err(); err != nil {
		return Clip{}, err
	}
	doc, err := s.load()
	if err != nil {
		return Clip{}, err
	}
	for _, t := range doc.Tracks {
		for _, clip := range t.Clips {
			if clip.ID == id {
				if clip.Track == "" {
					clip.Track = trackLabel(t)
				}
				return clip, nil
			}
		}
	}
	return Clip{}, fmt.Errorf("%w: %s", ErrClipNotFound, id)
}

// ApplySwap relinks one clip and rewrites the export atomically.
func (s *FileSource) ApplySwap(ctx context.Context, swap Swap) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	updated := false
	for ti := range doc.Tracks {
		for ci := range doc.Tracks[ti].Clips {
			if doc.Tracks[ti].Clips[ci].ID != swap.ClipID {
				continue
			}
			doc.Tracks[ti].Clips[ci] = doc.Tracks[ti].Clips[ci].Relink(swap)
			updated = true
		}
	}
	if !updated {
		return fmt.Errorf("%w: %s", ErrClipNotFound, swap.ClipID)
	}
	return s.store(doc)
}

func (s *FileSource) load() (Document, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		return Document{}, fmt.Errorf("read timeline: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("parse timeline %s: %w", s.path, err)
	}
	return doc, nil
}

func (s *FileSource) store(doc Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode timeline: %w", err)
	}
	data = append(data, '\n')

	mode := exportMode
	if info, err := s.fs.Stat(s.path); err == nil {
		mode = info.Mode().Perm()
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat timeline: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := afero.TempFile(s.fs, dir, "."+filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("write timeline: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() { _ = s.fs.Remove(tmpPath) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write timeline: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("sync timeline: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close timeline: %w", err)
	}
	if err := s.fs.Chmod(tmpPath, mode); err != nil {
		cleanup()
		return fmt.Errorf("chmod timeline: %w", err)
	}
	if err := s.fs.Rename(tmpPath, s.path); err != nil {
		cleanup()
		return fmt.Errorf("replace timeline: %w", err)
	}
	return nil
}

// WriteDocument writes doc to path, creating parent directories.
func WriteDocument(path string, doc Document) error {
	return WriteDocumentFs(afero.NewOsFs(), path, doc)
}

// WriteDocumentFs writes doc to path on fsys, creating parent directories.
func WriteDocumentFs(fsys afero.Fs, path string, doc Document) error {
	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create timeline directory: %w", err)
	}
	return NewFileSourceFs(fsys, path).store(doc)
}

func trackMatches(t Track, name string) bool {
	if strings.EqualFold(strings.TrimSpace(t.Name), name) {
		return true
	}
	if idx, err := strconv.Atoi(name); err == nil && idx == t.Index {
		return true
	}
	return false
}

func trackLabel(t Track) string {
	if name := strings.TrimSpace(t.Name); name != "" {
		return name
	}
	return "V" + strconv.Itoa(t.Index)
}
