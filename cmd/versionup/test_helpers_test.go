package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"versionup/internal/config"
	"versionup/internal/testsupport"
	"versionup/internal/timeline"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	rendersDir string
	baseDir    string
}

// setupCLITestEnv writes a config, a two-track timeline and image sequences:
// BG moves from v01 to v02 cleanly, FG's v02 starts at a different frame.
func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	base := testsupport.BaseDir(cfg)
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv(config.EnvTimeline, "")
	t.Setenv(config.EnvFFprobe, "")
	t.Setenv("NO_COLOR", "1")

	renders := filepath.Join(base, "renders")
	testsupport.WriteSequence(t, filepath.Join(renders, "BG"), "BG_PLATE_v01", "exr", 1001, 1100)
	testsupport.WriteSequence(t, filepath.Join(renders, "BG"), "BG_PLATE_v02", "exr", 1001, 1150)
	testsupport.WriteSequence(t, filepath.Join(renders, "FG"), "FG_PLATE_v01", "exr", 1001, 1100)
	testsupport.WriteSequence(t, filepath.Join(renders, "FG"), "FG_PLATE_v02", "exr", 1051, 1150)

	doc := timeline.Document{
		Name: "reel1",
		Tracks: []timeline.Track{
			{Index: 1, Name: "V1", Clips: []timeline.Clip{{
				ID: "bg", Name: "BG plate",
				SourcePath: filepath.Join(renders, "BG", "BG_PLATE_v01.%04d.exr"),
				InFrame:    0, OutFrame: 89, SourceStartFrame: 1001, SourceEndFrame: 1100,
			}}},
			{Index: 2, Name: "V2", Clips: []timeline.Clip{{
				ID: "fg", Name: "FG plate",
				SourcePath: filepath.Join(renders, "FG", "FG_PLATE_v01.%04d.exr"),
				InFrame:    0, OutFrame: 89, SourceStartFrame: 1001, SourceEndFrame: 1100,
			}}},
		},
	}
	if err := timeline.WriteDocument(cfg.Timeline.Path, doc); err != nil {
		t.Fatalf("write timeline: %v", err)
	}

	configPath := filepath.Join(homeDir, ".config", "versionup", "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		rendersDir: renders,
		baseDir:    base,
	}
}

func runCLI(t *testing.T, env *cliTestEnv, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{}
	if env != nil && env.configPath != "" {
		flags = append(flags, "--config", env.configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func clipSource(t *testing.T, path, id string) string {
	t.Helper()
	clip, err := timeline.NewFileSource(path).GetClip(t.Context(), id)
	if err != nil {
		t.Fatalf("get clip %s: %v", id, err)
	}
	return clip.SourcePath
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q\n%s", needle, haystack)
	}
}
