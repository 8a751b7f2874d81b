package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// ---------------------------------------------------------------------------
// TestValidate - Field ranges and enumerations
// ---------------------------------------------------------------------------

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
		wantAny bool
	}{
		{
			name:   "default config is valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "store dir too long",
			mutate:  func(c *Config) { c.Store.Dir = strings.Repeat("d", MaxPathLength+1) },
			wantErr: ErrFieldTooLong,
		},
		{
			name:    "logo id too long",
			mutate:  func(c *Config) { c.Export.Logo = strings.Repeat("a", MaxAssetIDLength+1) },
			wantErr: ErrFieldTooLong,
		},
		{
			name:    "unknown preset",
			mutate:  func(c *Config) { c.Import.Preset = "deep" },
			wantAny: true,
		},
		{
			name:   "preset alias accepted",
			mutate: func(c *Config) { c.Import.Preset = "BG_ONLY" },
		},
		{
			name:    "unknown quality",
			mutate:  func(c *Config) { c.Export.Quality = "ultra" },
			wantAny: true,
		},
		{
			name:    "too many workers",
			mutate:  func(c *Config) { c.Workers = MaxWorkers + 1 },
			wantErr: ErrFieldRange,
		},
		{
			name:    "thumbnail too narrow",
			mutate:  func(c *Config) { c.Thumbnail.Width = 10 },
			wantErr: ErrFieldRange,
		},
		{
			name:    "negative raster scale",
			mutate:  func(c *Config) { c.Limits.RasterScale = -1 },
			wantErr: ErrFieldRange,
		},
		{
			name:    "ratio above one",
			mutate:  func(c *Config) { c.Limits.OCRPrintableRatio = 1.5 },
			wantErr: ErrFieldRange,
		},
		{
			name:    "negative occurrence cap",
			mutate:  func(c *Config) { c.Limits.MaxOccurrencesPerImage = -2 },
			wantErr: ErrFieldRange,
		},
		{
			name:    "grid too dense",
			mutate:  func(c *Config) { c.Limits.SampleGrid = MaxSampleGrid + 1 },
			wantErr: ErrFieldRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()

			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
				}
			case tt.wantAny:
				if err == nil {
					t.Error("Validate() error = nil, want error")
				}
			default:
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestLoadConfig - File resolution and parsing
// ---------------------------------------------------------------------------

func TestLoadConfig_FromPath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "club.yaml")
	content := `store:
  dir: /var/revista
import:
  preset: smart
limits:
  sampleGrid: 7
  maxOccurrencesPerImage: 3
workers: 2
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() unexpected error: %v", err)
	}
	if cfg.Store.Dir != "/var/revista" {
		t.Errorf("Store.Dir = %q, want %q", cfg.Store.Dir, "/var/revista")
	}
	if cfg.Import.Preset != "smart" {
		t.Errorf("Import.Preset = %q, want %q", cfg.Import.Preset, "smart")
	}
	if cfg.Import.Mode != "safe" {
		t.Errorf("Import.Mode = %q, want default %q", cfg.Import.Mode, "safe")
	}
	if cfg.Export.Quality != "web" {
		t.Errorf("Export.Quality = %q, want default %q", cfg.Export.Quality, "web")
	}
	if cfg.Limits.SampleGrid != 7 || cfg.Limits.MaxOccurrencesPerImage != 3 {
		t.Errorf("Limits = %+v, want sampleGrid 7 and maxOccurrencesPerImage 3", cfg.Limits)
	}
	if cfg.Workers != 2 {
		t.Errorf("Workers = %d, want 2", cfg.Workers)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	unknownKey := filepath.Join(dir, "unknown.yaml")
	if err := os.WriteFile(unknownKey, []byte("colour: red\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	badRange := filepath.Join(dir, "range.yaml")
	if err := os.WriteFile(badRange, []byte("workers: 99\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"empty name", "", ErrEmptyConfigName},
		{"missing path", filepath.Join(dir, "missing.yaml"), ErrConfigNotFound},
		{"missing name", "definitely-not-a-revista-config", ErrConfigNotFound},
		{"unknown key", unknownKey, ErrConfigParse},
		{"range violation", badRange, ErrFieldRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := LoadConfig(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("LoadConfig(%q) error = %v, want %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestSearchPaths(t *testing.T) {
	t.Parallel()

	paths := SearchPaths("club")
	if len(paths) < 2 {
		t.Fatalf("SearchPaths() returned %d paths, want at least 2", len(paths))
	}
	if paths[0] != "club.yaml" || paths[1] != "club.yml" {
		t.Errorf("SearchPaths() first entries = %v, want club.yaml, club.yml", paths[:2])
	}
}

func TestConfig_YAML(t *testing.T) {
	t.Parallel()

	want := DefaultConfig()
	want.Import.Preset = "smart"
	want.Export.Watermark = true
	want.Export.Logo = "logo-1"
	want.Limits.MaxPages = 40
	want.Limits.SampleScale = 0.5
	want.Thumbnail = ThumbnailConfig{Width: 300, TimeoutSeconds: 9}

	out, err := want.YAML()
	if err != nil {
		t.Fatalf("YAML() error = %v", err)
	}
	if !strings.Contains(string(out), "watermark: true") {
		t.Errorf("YAML() = %q, want block style keys", out)
	}

	path := filepath.Join(t.TempDir(), "dump.yaml")
	if err := os.WriteFile(path, out, 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	got, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig(dump) error = %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("LoadConfig(YAML()) mismatch (-want +got):\n%s", diff)
	}
}
