package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/multierr"

	"github.com/Faultbox/drawbucket/internal/engine/bucket"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Bucket.PriorityBits != 4 {
		t.Errorf("expected priority bits 4, got %d", cfg.Bucket.PriorityBits)
	}
	if cfg.Bucket.SortOrder != "program_layout" {
		t.Errorf("expected sort order program_layout, got %s", cfg.Bucket.SortOrder)
	}
	if cfg.Bucket.BaseInstance {
		t.Error("expected base instance to be off by default")
	}
	if cfg.Graphics.Width != 1280 || cfg.Graphics.Height != 720 {
		t.Errorf("expected 1280x720, got %dx%d", cfg.Graphics.Width, cfg.Graphics.Height)
	}
	if !cfg.Graphics.VSync {
		t.Error("expected vsync to be true by default")
	}
	if cfg.Demo.ToggleInterval != 500*time.Millisecond {
		t.Errorf("expected toggle interval 500ms, got %v", cfg.Demo.ToggleInterval)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
bucket:
  priority_bits: 6
  sort_order: layout
  base_instance: true
  max_units: 4096

graphics:
  width: 1920
  height: 1080
  fullscreen: true
  vsync: false

demo:
  columns: 32
  rows: 18
  toggle_interval: 250ms
  scene: scenes/basic.yaml

logging:
  level: "debug"
  log_file: "bucket.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Bucket.PriorityBits != 6 {
		t.Errorf("expected priority bits 6, got %d", cfg.Bucket.PriorityBits)
	}
	if cfg.Bucket.SortOrder != "layout" {
		t.Errorf("expected sort order layout, got %s", cfg.Bucket.SortOrder)
	}
	if !cfg.Bucket.BaseInstance {
		t.Error("expected base instance to be true")
	}
	if cfg.Bucket.MaxUnits != 4096 {
		t.Errorf("expected max units 4096, got %d", cfg.Bucket.MaxUnits)
	}
	if cfg.Graphics.Width != 1920 || !cfg.Graphics.Fullscreen || cfg.Graphics.VSync {
		t.Errorf("graphics not loaded: %+v", cfg.Graphics)
	}
	if cfg.Graphics.GLMajor != 4 {
		t.Errorf("expected untouched gl_major to keep default 4, got %d", cfg.Graphics.GLMajor)
	}
	if cfg.Demo.ToggleInterval != 250*time.Millisecond {
		t.Errorf("expected toggle interval 250ms, got %v", cfg.Demo.ToggleInterval)
	}
	if cfg.Demo.Scene != "scenes/basic.yaml" {
		t.Errorf("expected scene path, got %q", cfg.Demo.Scene)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.LogFile != "bucket.log" {
		t.Errorf("logging not loaded: %+v", cfg.Logging)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{"bad syntax", "bucket:\n  priority_bits: not a number\n  invalid syntax here\n"},
		{"unknown key", "bucket:\n  priority_bitz: 3\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(tmpDir, strings.ReplaceAll(tt.name, " ", "_")+".yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatalf("failed to write test config: %v", err)
			}
			if err := loadFromFile(Default(), path); err == nil {
				t.Error("expected error loading invalid YAML, got nil")
			}
		})
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.Bucket.PriorityBits = 31
	cfg.Bucket.SortOrder = "material"
	cfg.Bucket.MaxUnits = -1
	cfg.Graphics.Width = 0
	cfg.Demo.Rows = 0
	cfg.Logging.Level = "trace"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation errors")
	}
	if n := len(multierr.Errors(err)); n != 6 {
		t.Errorf("expected 6 errors, got %d: %v", n, err)
	}
}

func TestBucketOptions(t *testing.T) {
	cfg := Default()
	cfg.Bucket.PriorityBits = 3
	cfg.Bucket.SortOrder = "program"
	cfg.Bucket.BaseInstance = true
	cfg.Bucket.MaxUnits = 10

	opts, err := cfg.BucketOptions()
	if err != nil {
		t.Fatalf("bucket options: %v", err)
	}
	if opts.PriorityBits != 3 || opts.Order != bucket.SortProgram || !opts.BaseInstance || opts.MaxUnits != 10 {
		t.Errorf("unexpected options: %+v", opts)
	}
	if opts.Logger == nil {
		t.Error("expected a logger in the options")
	}

	cfg.Bucket.SortOrder = "bogus"
	if _, err := cfg.BucketOptions(); err == nil {
		t.Error("expected error for unknown sort order")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	tmpDir := t.TempDir()
	os.Chdir(tmpDir)

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "drawbucket.yaml")
	if err := os.WriteFile(configPath, []byte("bucket:\n  priority_bits: 2\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find drawbucket.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name: "bucket flags",
			setup: func() {
				*flagPriorityBits = 0
				*flagSortOrder = "none"
				*flagBaseInstance = true
			},
			verify: func(cfg *Config) {
				if cfg.Bucket.PriorityBits != 0 {
					t.Errorf("expected priority bits 0, got %d", cfg.Bucket.PriorityBits)
				}
				if cfg.Bucket.SortOrder != "none" {
					t.Errorf("expected sort order none, got %s", cfg.Bucket.SortOrder)
				}
				if !cfg.Bucket.BaseInstance {
					t.Error("expected base instance enabled")
				}
			},
			teardown: func() {
				*flagPriorityBits = -1
				*flagSortOrder = ""
				*flagBaseInstance = false
			},
		},
		{
			name:  "scene flag",
			setup: func() { *flagScene = "frames.yaml" },
			verify: func(cfg *Config) {
				if cfg.Demo.Scene != "frames.yaml" {
					t.Errorf("expected scene frames.yaml, got %s", cfg.Demo.Scene)
				}
			},
			teardown: func() { *flagScene = "" },
		},
		{
			name:  "fullscreen flag",
			setup: func() { *flagFullscreen = true },
			verify: func(cfg *Config) {
				if !cfg.Graphics.Fullscreen {
					t.Error("expected fullscreen to be true with fullscreen flag")
				}
			},
			teardown: func() { *flagFullscreen = false },
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(cfg *Config) {
				if cfg.Graphics.Width != 2560 || cfg.Graphics.Height != 1440 {
					t.Errorf("expected 2560x1440, got %dx%d", cfg.Graphics.Width, cfg.Graphics.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)
			tt.verify(cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
bucket:
  priority_bits: 5
  sort_order: program
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagPriorityBits = 2
	defer func() {
		*flagConfig = ""
		*flagPriorityBits = -1
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Bucket.PriorityBits != 2 {
		t.Errorf("expected priority bits 2 from flag, got %d", cfg.Bucket.PriorityBits)
	}
	if cfg.Bucket.SortOrder != "program" {
		t.Errorf("expected sort order program from file, got %s", cfg.Bucket.SortOrder)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("bucket:\n  priority_bits: 40\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	defer func() { *flagConfig = "" }()

	if _, err := Load(); err == nil {
		t.Error("expected Load to reject out-of-range priority bits")
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Bucket.PriorityBits = 7
	cfg.Demo.ToggleInterval = 2 * time.Second
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loaded.Bucket.PriorityBits != 7 || loaded.Demo.ToggleInterval != 2*time.Second {
		t.Errorf("saved values not reloaded: %+v", loaded)
	}
}
