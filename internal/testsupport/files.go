package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	const chunkSize = 32 * 1024
	buf := make([]byte, chunkSize)
	for i := range buf {
		buf[i] = 0x42
	}

	remaining := size
	for remaining > 0 {
		toWrite := min(int64(chunkSize), remaining)
		if _, err := f.Write(buf[:toWrite]); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
		remaining -= toWrite
	}
}

// WriteSequence creates one file per frame named <prefix>.<frame>.<ext> in
// dir, zero-padded to four digits. Frames listed in skip are left out.
func WriteSequence(t testing.TB, dir, prefix, ext string, first, last int, skip ...int) {
	t.Helper()

	skipped := make(map[int]bool, len(skip))
	for _, f := range skip {
		skipped[f] = true
	}
	for frame := first; frame <= last; frame++ {
		if skipped[frame] {
			continue
		}
		WriteFile(t, filepath.Join(dir, fmt.Sprintf("%s.%04d.%s", prefix, frame, ext)), 1)
	}
}
