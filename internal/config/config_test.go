package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"versionup/internal/config"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_STATE_HOME", "")
	t.Setenv(config.EnvTimeline, "")
	t.Setenv(config.EnvFFprobe, "")
	t.Chdir(t.TempDir())
	return home
}

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	home := isolate(t)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if resolved != filepath.Join(home, ".config", "versionup", "config.toml") {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	if cfg.Paths.StateDir != filepath.Join(home, ".local", "state", "versionup") {
		t.Fatalf("unexpected state dir: %q", cfg.Paths.StateDir)
	}
	if cfg.Paths.LogDir != filepath.Join(home, ".local", "share", "versionup", "logs") {
		t.Fatalf("unexpected log dir: %q", cfg.Paths.LogDir)
	}
	if cfg.Timeline.Track != "all" {
		t.Fatalf("unexpected default track %q", cfg.Timeline.Track)
	}
	if cfg.Compat.AllowUniformShift {
		t.Fatal("expected uniform shift to be off by default")
	}
	if cfg.Selection.FallbackToCompatible {
		t.Fatal("expected fallback to be off by default")
	}
	if cfg.FFprobeBinary() != "ffprobe" {
		t.Fatalf("unexpected ffprobe binary %q", cfg.FFprobeBinary())
	}
	if cfg.PlanDBPath() != filepath.Join(cfg.Paths.StateDir, "plans.db") {
		t.Fatalf("unexpected plan db path %q", cfg.PlanDBPath())
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.StateDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	isolate(t)
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "versionup.toml")

	type payload struct {
		Timeline struct {
			Path  string `toml:"path"`
			Track string `toml:"track"`
		} `toml:"timeline"`
		Scan struct {
			MovieExtensions []string `toml:"movie_extensions"`
			Workers         int      `toml:"workers"`
		} `toml:"scan"`
		Compat struct {
			AllowUniformShift bool `toml:"allow_uniform_shift"`
		} `toml:"compat"`
	}
	custom := payload{}
	custom.Timeline.Path = "~/edits/reel1.json"
	custom.Timeline.Track = " V2 "
	custom.Scan.MovieExtensions = []string{".MOV", "mov", "MXF"}
	custom.Scan.Workers = 8
	custom.Compat.AllowUniformShift = true

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected custom path to be used, got %q exists=%v", resolved, exists)
	}
	home, _ := os.UserHomeDir()
	if cfg.Timeline.Path != filepath.Join(home, "edits", "reel1.json") {
		t.Fatalf("timeline path not expanded: %q", cfg.Timeline.Path)
	}
	if cfg.Timeline.Track != "V2" {
		t.Fatalf("track not trimmed: %q", cfg.Timeline.Track)
	}
	if strings.Join(cfg.Scan.MovieExtensions, ",") != "mov,mxf" {
		t.Fatalf("movie extensions not normalized: %v", cfg.Scan.MovieExtensions)
	}
	if cfg.Scan.Workers != 8 || !cfg.Compat.AllowUniformShift {
		t.Fatalf("custom values lost: %+v", cfg)
	}
	if len(cfg.Scan.SequenceExtensions) == 0 {
		t.Fatal("expected default sequence extensions to survive")
	}
}

func TestLoadProjectConfig(t *testing.T) {
	isolate(t)
	if err := os.WriteFile("versionup.toml", []byte("[timeline]\ntrack = \"V1\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || filepath.Base(resolved) != "versionup.toml" {
		t.Fatalf("expected project config, got %q exists=%v", resolved, exists)
	}
	if cfg.Timeline.Track != "V1" {
		t.Fatalf("unexpected track %q", cfg.Timeline.Track)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	isolate(t)
	timelinePath := filepath.Join(t.TempDir(), "cut.json")
	t.Setenv(config.EnvTimeline, timelinePath)
	t.Setenv(config.EnvFFprobe, "/opt/ffmpeg/bin/ffprobe")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Timeline.Path != timelinePath {
		t.Fatalf("timeline override ignored: %q", cfg.Timeline.Path)
	}
	if cfg.FFprobeBinary() != "/opt/ffmpeg/bin/ffprobe" {
		t.Fatalf("ffprobe override ignored: %q", cfg.FFprobeBinary())
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "pattern without group", body: "[versioning]\npattern = 'v\\d+'\n", want: "versioning.pattern"},
		{name: "bad regexp", body: "[versioning]\npattern = '(v'\n", want: "versioning.pattern"},
		{name: "overlapping extensions", body: "[scan]\nmovie_extensions = [\"exr\"]\n", want: "both a sequence and a movie"},
		{name: "log format", body: "[logging]\nformat = \"xml\"\n", want: "logging.format"},
		{name: "negative retention", body: "[plans]\nretention_days = -1\n", want: "plans.retention_days"},
		{name: "unknown key", body: "[scan]\nworkerz = 3\n", want: "workerz"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			isolate(t)
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tc.body), 0o644); err != nil {
				t.Fatal(err)
			}
			_, _, _, err := config.Load(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestSampleConfigLoads(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config should load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	def := config.Default()
	if cfg.Versioning.Pattern != def.Versioning.Pattern {
		t.Fatalf("sample pattern %q differs from default %q", cfg.Versioning.Pattern, def.Versioning.Pattern)
	}
	if cfg.Scan.Workers != def.Scan.Workers || cfg.Compat.RequireContiguous != def.Compat.RequireContiguous {
		t.Fatalf("sample config drifted from defaults: %+v", cfg)
	}
	if _, err := cfg.Grammar(); err != nil {
		t.Fatalf("Grammar: %v", err)
	}
}
