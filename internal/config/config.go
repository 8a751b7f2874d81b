package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/larabashadi/Revista-2/internal/fileutil"
	"github.com/larabashadi/Revista-2/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrFieldRange      = errors.New("field out of range")
)

// Field limits.
const (
	MaxPathLength    = 4096
	MaxAssetIDLength = 128
	MaxModeLength    = 20
	MaxWorkers       = 32
	MinThumbWidth    = 64
	MaxThumbWidth    = 4096
	MaxTimeoutSecs   = 600
	MaxRasterScale   = 8.0
	MaxSampleGrid    = 50
)

// appDirName is the directory under os.UserConfigDir searched for named configs.
const appDirName = "revista"

var validPresets = map[string]bool{
	"background": true, "bg": true, "bg_only": true, "raster": true,
	"smart": true, "text": true, "pro": true,
}

var validQualities = map[string]bool{"web": true, "print": true}

// Config holds CLI defaults and conversion tunables.
type Config struct {
	Store     StoreConfig     `yaml:"store"`
	Import    ImportConfig    `yaml:"import"`
	Export    ExportConfig    `yaml:"export"`
	Limits    LimitsConfig    `yaml:"limits"`
	Thumbnail ThumbnailConfig `yaml:"thumbnail"`
	Workers   int             `yaml:"workers"` // 0 = auto
}

// StoreConfig locates the file-backed asset store.
type StoreConfig struct {
	Dir string `yaml:"dir"` // Empty = ./assets
}

// ImportConfig sets importer defaults.
type ImportConfig struct {
	Preset     string `yaml:"preset"` // background | smart | text | pro (and aliases)
	Mode       string `yaml:"mode"`   // recorded in document meta, default "safe"
	KeepSource bool   `yaml:"keepSource"`
}

// ExportConfig sets renderer defaults.
type ExportConfig struct {
	Quality   string `yaml:"quality"` // web | print
	Watermark bool   `yaml:"watermark"`
	Logo      string `yaml:"logo"` // asset id injected into locked logo stamps
}

// LimitsConfig mirrors the conversion caps. Zero keeps the library default.
type LimitsConfig struct {
	RasterScale                  float64 `yaml:"rasterScale"`
	LargeDocRasterScale          float64 `yaml:"largeDocRasterScale"`
	LargeDocPages                int     `yaml:"largeDocPages"`
	SmartRasterScale             float64 `yaml:"smartRasterScale"`
	SampleScale                  float64 `yaml:"sampleScale"`
	SampleGrid                   int     `yaml:"sampleGrid"`
	SampleMaxDeviation           float64 `yaml:"sampleMaxDeviation"`
	MaxOccurrencesPerImage       int     `yaml:"maxOccurrencesPerImage"`
	DetectMaxOccurrencesPerImage int     `yaml:"detectMaxOccurrencesPerImage"`
	MinImageSize                 float64 `yaml:"minImageSize"`
	DetectMinImageSize           float64 `yaml:"detectMinImageSize"`
	MaxImagesPerPage             int     `yaml:"maxImagesPerPage"`
	OCRPrintableRatio            float64 `yaml:"ocrPrintableRatio"`
	OCRMinChars                  int     `yaml:"ocrMinChars"`
	MaxPages                     int     `yaml:"maxPages"`
}

// ThumbnailConfig defines preview rendering options.
type ThumbnailConfig struct {
	Width          int `yaml:"width"`          // pixels, 0 = default
	TimeoutSeconds int `yaml:"timeoutSeconds"` // 0 = default
}

// Validate checks lengths, enumerations and numeric ranges.
// Called by LoadConfig, and available for configs built in code.
func (c *Config) Validate() error {
	if err := validateFieldLength("store.dir", c.Store.Dir, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("export.logo", c.Export.Logo, MaxAssetIDLength); err != nil {
		return err
	}
	if err := validateFieldLength("import.mode", c.Import.Mode, MaxModeLength); err != nil {
		return err
	}

	if c.Import.Preset != "" && !validPresets[strings.ToLower(c.Import.Preset)] {
		return fmt.Errorf("import.preset: invalid value %q (must be background, smart, text, or pro)", c.Import.Preset)
	}
	if c.Export.Quality != "" && !validQualities[strings.ToLower(c.Export.Quality)] {
		return fmt.Errorf("export.quality: invalid value %q (must be web or print)", c.Export.Quality)
	}

	if err := validateIntRange("workers", c.Workers, 0, MaxWorkers); err != nil {
		return err
	}
	if c.Thumbnail.Width != 0 {
		if err := validateIntRange("thumbnail.width", c.Thumbnail.Width, MinThumbWidth, MaxThumbWidth); err != nil {
			return err
		}
	}
	if err := validateIntRange("thumbnail.timeoutSeconds", c.Thumbnail.TimeoutSeconds, 0, MaxTimeoutSecs); err != nil {
		return err
	}

	return c.Limits.validate()
}

func (l *LimitsConfig) validate() error {
	scales := []struct {
		name string
		v    float64
	}{
		{"limits.rasterScale", l.RasterScale},
		{"limits.largeDocRasterScale", l.LargeDocRasterScale},
		{"limits.smartRasterScale", l.SmartRasterScale},
		{"limits.sampleScale", l.SampleScale},
	}
	for _, s := range scales {
		if err := validateFloatRange(s.name, s.v, 0, MaxRasterScale); err != nil {
			return err
		}
	}

	if err := validateFloatRange("limits.ocrPrintableRatio", l.OCRPrintableRatio, 0, 1); err != nil {
		return err
	}
	if err := validateFloatRange("limits.sampleMaxDeviation", l.SampleMaxDeviation, 0, 255); err != nil {
		return err
	}
	if err := validateIntRange("limits.sampleGrid", l.SampleGrid, 0, MaxSampleGrid); err != nil {
		return err
	}
	if l.MinImageSize < 0 || l.DetectMinImageSize < 0 {
		return fmt.Errorf("%w: limits.minImageSize and limits.detectMinImageSize must not be negative", ErrFieldRange)
	}

	counts := []struct {
		name string
		v    int
	}{
		{"limits.largeDocPages", l.LargeDocPages},
		{"limits.maxOccurrencesPerImage", l.MaxOccurrencesPerImage},
		{"limits.detectMaxOccurrencesPerImage", l.DetectMaxOccurrencesPerImage},
		{"limits.maxImagesPerPage", l.MaxImagesPerPage},
		{"limits.ocrMinChars", l.OCRMinChars},
		{"limits.maxPages", l.MaxPages},
	}
	for _, c := range counts {
		if c.v < 0 {
			return fmt.Errorf("%w: %s must not be negative, got %d", ErrFieldRange, c.name, c.v)
		}
	}
	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

func validateIntRange(fieldName string, v, lo, hi int) error {
	if v < lo || v > hi {
		return fmt.Errorf("%w: %s must be between %d and %d, got %d", ErrFieldRange, fieldName, lo, hi, v)
	}
	return nil
}

func validateFloatRange(fieldName string, v, lo, hi float64) error {
	if v < lo || v > hi {
		return fmt.Errorf("%w: %s must be between %g and %g, got %g", ErrFieldRange, fieldName, lo, hi, v)
	}
	return nil
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Store:  StoreConfig{Dir: "assets"},
		Import: ImportConfig{Preset: "background", Mode: "safe"},
		Export: ExportConfig{Quality: "web"},
	}
}

// YAML returns c as block-style YAML readable by LoadConfig.
func (c *Config) YAML() ([]byte, error) {
	return yamlutil.Marshal(c)
}

// LoadConfig loads configuration from a file path or config name.
// A value containing a path separator is read as a file; anything else is
// searched for as <name>.yaml or <name>.yml in the working directory and then
// in the user config directory. A missing file is an error.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !fileutil.IsFilePath(nameOrPath) {
		var err error
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	f, err := os.Open(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	defer f.Close()

	var cfg Config
	if err := yamlutil.ReadStrict(f, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	cfg.fillDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// fillDefaults sets the DefaultConfig value for every empty string field.
func (c *Config) fillDefaults() {
	def := DefaultConfig()
	if c.Store.Dir == "" {
		c.Store.Dir = def.Store.Dir
	}
	if c.Import.Preset == "" {
		c.Import.Preset = def.Import.Preset
	}
	if c.Import.Mode == "" {
		c.Import.Mode = def.Import.Mode
	}
	if c.Export.Quality == "" {
		c.Export.Quality = def.Export.Quality
	}
}

// SearchPaths lists where LoadConfig looks for a named config, in order.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)
	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(dir, appDirName, name+ext))
		}
	}
	return paths
}

func resolveConfigPath(name string) (string, error) {
	tried := SearchPaths(name)
	for _, p := range tried {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(tried, ", "))
}
