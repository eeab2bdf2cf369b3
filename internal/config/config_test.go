package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Spline.Resolution != 100 {
		t.Errorf("expected resolution 100, got %d", cfg.Spline.Resolution)
	}
	if cfg.Spline.SampleStep != 1 {
		t.Errorf("expected sample step 1, got %f", cfg.Spline.SampleStep)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
spline:
  resolution: 250
  sample_step: 0.25

data:
  dir: "/srv/splines"

logging:
  level: "debug"
  log_file: "splinetool.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Spline.Resolution != 250 {
		t.Errorf("expected resolution 250, got %d", cfg.Spline.Resolution)
	}
	if cfg.Spline.SampleStep != 0.25 {
		t.Errorf("expected sample step 0.25, got %f", cfg.Spline.SampleStep)
	}
	if cfg.Data.Dir != "/srv/splines" {
		t.Errorf("expected data dir /srv/splines, got %s", cfg.Data.Dir)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "splinetool.log" {
		t.Errorf("expected log file 'splinetool.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFilePartial(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	if err := os.WriteFile(configPath, []byte("spline:\n  resolution: 20\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Spline.Resolution != 20 {
		t.Errorf("expected resolution 20, got %d", cfg.Spline.Resolution)
	}
	// Unset keys keep their defaults.
	if cfg.Spline.SampleStep != 1 {
		t.Errorf("expected default sample step, got %f", cfg.Spline.SampleStep)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
spline:
  resolution: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	err := loadFromFile(cfg, configPath)
	if err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("spline:\n  resolutoin: 50\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	if err := loadFromFile(Default(), path); err == nil {
		t.Error("expected error for misspelt key, got nil")
	}
}

func TestLoadFromFileEmptyAndBOM(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.yaml")
	if err := os.WriteFile(empty, nil, 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	cfg := Default()
	if err := loadFromFile(cfg, empty); err != nil {
		t.Fatalf("empty file: %v", err)
	}
	if cfg.Spline.Resolution != 100 {
		t.Errorf("Resolution = %d, want default 100", cfg.Spline.Resolution)
	}

	bom := filepath.Join(dir, "bom.yaml")
	if err := os.WriteFile(bom, []byte("\xef\xbb\xbfspline:\n  resolution: 25\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	if err := loadFromFile(cfg, bom); err != nil {
		t.Fatalf("BOM file: %v", err)
	}
	if cfg.Spline.Resolution != 25 {
		t.Errorf("Resolution = %d, want 25", cfg.Spline.Resolution)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	err := loadFromFile(cfg, "/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		valid  bool
	}{
		{"defaults", func(*Config) {}, true},
		{"zero resolution", func(c *Config) { c.Spline.Resolution = 0 }, false},
		{"negative step", func(c *Config) { c.Spline.SampleStep = -1 }, false},
		{"zero step", func(c *Config) { c.Spline.SampleStep = 0 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.valid && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.valid && !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	cfg := Default()
	if got := cfg.Resolve("a.yaml"); got != "a.yaml" {
		t.Errorf("expected a.yaml, got %s", got)
	}
	cfg.Data.Dir = "/srv/splines"
	if got := cfg.Resolve("a.yaml"); got != filepath.Join("/srv/splines", "a.yaml") {
		t.Errorf("expected joined path, got %s", got)
	}
	if got := cfg.Resolve("/tmp/a.yaml"); got != "/tmp/a.yaml" {
		t.Errorf("expected absolute path unchanged, got %s", got)
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

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))

	path := findConfigFile()
	if path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	if err := os.WriteFile(filepath.Join(tmpDir, "splinetool.yaml"), []byte("spline:\n  resolution: 50\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	path = findConfigFile()
	if path != "splinetool.yaml" {
		t.Errorf("expected splinetool.yaml in current directory, got %q", path)
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "resolution flag",
			setup: func() { *flagResolution = 400 },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Spline.Resolution != 400 {
					t.Errorf("expected resolution 400, got %d", cfg.Spline.Resolution)
				}
			},
			teardown: func() { *flagResolution = 0 },
		},
		{
			name:  "step flag",
			setup: func() { *flagStep = 0.5 },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Spline.SampleStep != 0.5 {
					t.Errorf("expected sample step 0.5, got %f", cfg.Spline.SampleStep)
				}
			},
			teardown: func() { *flagStep = 0 },
		},
		{
			name: "log and dir flags",
			setup: func() {
				*flagLog = "out.log"
				*flagDir = "/data"
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.LogFile != "out.log" {
					t.Errorf("expected log file out.log, got %s", cfg.Logging.LogFile)
				}
				if cfg.Data.Dir != "/data" {
					t.Errorf("expected data dir /data, got %s", cfg.Data.Dir)
				}
			},
			teardown: func() {
				*flagLog = ""
				*flagDir = ""
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)

			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
spline:
  resolution: 60
  sample_step: 2
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagResolution = 80
	defer func() {
		*flagConfig = ""
		*flagResolution = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Resolution comes from the flag, not the file.
	if cfg.Spline.Resolution != 80 {
		t.Errorf("expected resolution 80 from flag, got %d", cfg.Spline.Resolution)
	}
	if cfg.Spline.SampleStep != 2 {
		t.Errorf("expected sample step 2 from file, got %f", cfg.Spline.SampleStep)
	}
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("spline:\n  resolution: -3\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	defer func() { *flagConfig = "" }()

	if _, err := Load(); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Spline.Resolution = 42

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("failed to reload: %v", err)
	}
	if loaded.Spline.Resolution != 42 {
		t.Errorf("expected resolution 42, got %d", loaded.Spline.Resolution)
	}
}
