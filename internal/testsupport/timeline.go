package testsupport

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"versionup/internal/planstore"
	"versionup/internal/timeline"
)

// FakeTimeline is an in-memory timeline.Source for tests.
type FakeTimeline struct {
	mu    sync.Mutex
	clips []timeline.Clip

	// ListErr, when set, is returned by ListClips.
	ListErr error
	// SwapErr maps clip IDs to errors returned by ApplySwap.
	SwapErr map[string]error
	// IgnoreSwap lists clip IDs whose ApplySwap succeeds without relinking.
	IgnoreSwap map[string]bool

	swaps []timeline.Swap
}

// NewFakeTimeline returns a FakeTimeline holding clips in order.
func NewFakeTimeline(clips ...timeline.Clip) *FakeTimeline {
	return &FakeTimeline{clips: append([]timeline.Clip(nil), clips...)}
}

// ListClips returns clips on track, or every clip for AllTracks.
func (f *FakeTimeline) ListClips(ctx context.Context, track string) ([]timeline.Clip, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	all := track == "" || strings.EqualFold(track, timeline.AllTracks)
	var out []timeline.Clip
	for _, c := range f.clips {
		if all || strings.EqualFold(c.Track, track) {
			out = append(out, c)
		}
	}
	if !all && len(out) == 0 {
		return nil, fmt.Errorf("%w: %q", timeline.ErrTrackNotFound, track)
	}
	return out, nil
}

// GetClip returns the clip with the given ID.
func (f *FakeTimeline) GetClip(ctx context.Context, id string) (timeline.Clip, error) {
	if err := ctx.Err(); err != nil {
		return timeline.Clip{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.clips {
		if c.ID == id {
			return c, nil
		}
	}
	return timeline.Clip{}, fmt.Errorf("%w: %s", timeline.ErrClipNotFound, id)
}

// ApplySwap relinks the clip named by swap.
func (f *FakeTimeline) ApplySwap(ctx context.Context, swap timeline.Swap) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.SwapErr[swap.ClipID]; err != nil {
		return err
	}
	for i, c := range f.clips {
		if c.ID != swap.ClipID {
			continue
		}
		f.swaps = append(f.swaps, swap)
		if !f.IgnoreSwap[swap.ClipID] {
			f.clips[i] = c.Relink(swap)
		}
		return nil
	}
	return fmt.Errorf("%w: %s", timeline.ErrClipNotFound, swap.ClipID)
}

// Update replaces a clip in place, simulating an edit made by the host.
func (f *FakeTimeline) Update(clip timeline.Clip) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, c := range f.clips {
		if c.ID == clip.ID {
			f.clips[i] = clip
			return
		}
	}
	f.clips = append(f.clips, clip)
}

// Swaps returns the swaps applied so far.
func (f *FakeTimeline) Swaps() []timeline.Swap {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]timeline.Swap(nil), f.swaps...)
}

// Clip returns the current state of a clip, failing the test when absent.
func (f *FakeTimeline) Clip(t testing.TB, id string) timeline.Clip {
	t.Helper()
	clip, err := f.GetClip(context.Background(), id)
	if err != nil {
		t.Fatalf("clip %s: %v", id, err)
	}
	return clip
}

// ErrInjected is a generic failure for fault injection.
var ErrInjected = errors.New("injected failure")

// MustOpenPlanStore opens a planstore.Store in dir and registers cleanup.
func MustOpenPlanStore(t testing.TB, dir string) *planstore.Store {
	t.Helper()

	store, err := planstore.Open(dir)
	if err != nil {
		t.Fatalf("planstore.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
