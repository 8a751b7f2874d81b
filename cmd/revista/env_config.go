package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/larabashadi/Revista-2/internal/config"
)

const envPrefix = "REVISTA_"

// envConfig holds configuration from environment variables.
type envConfig struct {
	ConfigPath string // REVISTA_CONFIG: config file path
	StoreDir   string // REVISTA_STORE_DIR: asset store directory
	Preset     string // REVISTA_PRESET: default import preset
	Watermark  *bool  // REVISTA_WATERMARK: preview watermark on export
	Workers    int    // REVISTA_WORKERS: parallel import workers
}

// knownEnvVars lists valid REVISTA_* environment variables.
var knownEnvVars = map[string]bool{
	"REVISTA_CONFIG":    true,
	"REVISTA_STORE_DIR": true,
	"REVISTA_PRESET":    true,
	"REVISTA_WATERMARK": true,
	"REVISTA_WORKERS":   true,
}

// loadEnvConfig reads the recognized REVISTA_* values. Unparsable numbers
// and booleans are ignored.
func loadEnvConfig(getenv func(string) string) *envConfig {
	cfg := &envConfig{
		ConfigPath: getenv("REVISTA_CONFIG"),
		StoreDir:   getenv("REVISTA_STORE_DIR"),
		Preset:     getenv("REVISTA_PRESET"),
	}

	if v := getenv("REVISTA_WATERMARK"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Watermark = &b
		}
	}
	if v := getenv("REVISTA_WORKERS"); v != "" {
		if w, err := strconv.Atoi(v); err == nil && w > 0 {
			cfg.Workers = w
		}
	}
	return cfg
}

// warnUnknownEnvVars prints a warning for every unrecognized REVISTA_* variable.
func warnUnknownEnvVars(w io.Writer, environ func() []string) {
	if environ == nil {
		return
	}
	for _, kv := range environ() {
		if !strings.HasPrefix(kv, envPrefix) {
			continue
		}
		name, _, _ := strings.Cut(kv, "=")
		if !knownEnvVars[name] {
			fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
		}
	}
}

// applyEnvConfig overrides config file values with environment values.
// Flags are applied afterwards, so the order is flags > env > file > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.StoreDir != "" {
		cfg.Store.Dir = env.StoreDir
	}
	if env.Preset != "" {
		cfg.Import.Preset = env.Preset
	}
	if env.Watermark != nil {
		cfg.Export.Watermark = *env.Watermark
	}
	if env.Workers > 0 {
		cfg.Workers = env.Workers
	}
}
