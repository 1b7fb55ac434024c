package media

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func writeStubProbe(t *testing.T, payload string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell stub requires a POSIX shell")
	}
	bin := filepath.Join(t.TempDir(), "ffprobe")
	script := "#!/bin/sh\ncat <<'JSON'\n" + payload + "\nJSON\n"
	if err := os.WriteFile(bin, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return bin
}

func TestProberFrameRange(t *testing.T) {
	bin := writeStubProbe(t, `{"streams":[{"codec_type":"video","nb_frames":"120","avg_frame_rate":"24/1"}],"format":{"duration":"5.0"}}`)
	p := Prober{Binary: bin, StartFrame: 1001}

	got, err := p.FrameRange(context.Background(), "/renders/SHOT010_v003.mov")
	if err != nil {
		t.Fatalf("FrameRange: %v", err)
	}
	if got != (FrameRange{Start: 1001, End: 1120}) {
		t.Fatalf("unexpected range %v", got)
	}
}

func TestProberUnknownFrameCount(t *testing.T) {
	bin := writeStubProbe(t, `{"streams":[{"codec_type":"audio"}],"format":{"duration":"5.0"}}`)
	p := Prober{Binary: bin}

	_, err := p.FrameRange(context.Background(), "/renders/SHOT010_v003.mov")
	if !errors.Is(err, ErrUnknownFrameCount) {
		t.Fatalf("expected ErrUnknownFrameCount, got %v", err)
	}
}

func TestProberMissingBinary(t *testing.T) {
	p := Prober{Binary: filepath.Join(t.TempDir(), "missing-ffprobe")}
	if _, err := p.FrameRange(context.Background(), "/renders/x_v001.mov"); err == nil {
		t.Fatal("expected error for missing binary")
	}
}
