package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"

	revista "github.com/larabashadi/Revista-2"
	"github.com/larabashadi/Revista-2/internal/config"
	"github.com/larabashadi/Revista-2/internal/fileutil"
	"github.com/larabashadi/Revista-2/internal/hints"
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// Sentinel errors for CLI operations.
var (
	ErrUsage         = errors.New("invalid usage")
	ErrNoInput       = errors.New("no input specified")
	ErrReadInput     = errors.New("failed to read input file")
	ErrWriteOutput   = errors.New("failed to write output file")
	ErrOutputDir     = errors.New("failed to create output directory")
	ErrConverterInit = errors.New("failed to initialize converter")
)

// usageError marks a flag parsing failure as a usage error. Help requests
// pass through untouched.
func usageError(err error) error {
	if errors.Is(err, flag.ErrHelp) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUsage, err)
}

// session is the per-command state shared by every subcommand: resolved
// config, logger and asset store.
type session struct {
	cfg   *config.Config
	log   *logrusLogger
	store *revista.FileAssetStore
}

// newSession resolves config (flags > env > file > defaults), sets up
// logging and GOMAXPROCS, and opens the asset store.
func newSession(common commonFlags, storeDir string, env *Environment) (*session, error) {
	log := newLogger(env.Stderr, common)

	// maxprocs.Set only fails on an invalid GOMAXPROCS value, in which case
	// the runtime default applies.
	_, _ = maxprocs.Set(maxprocs.Logger(log.Debugf))

	cfg, err := loadConfig(common, env)
	if err != nil {
		return nil, err
	}
	if storeDir != "" {
		cfg.Store.Dir = storeDir
	}
	if out, err := cfg.YAML(); err == nil {
		log.Debugf("effective config:\n%s", out)
	}

	store, err := openStore(cfg.Store.Dir)
	if err != nil {
		return nil, err
	}
	log.Debug("session ready", revista.String("store", store.Dir()))
	return &session{cfg: cfg, log: log, store: store}, nil
}

// loadConfig reads the config named by --config or REVISTA_CONFIG, or the
// defaults when neither is set, then applies environment overrides.
func loadConfig(common commonFlags, env *Environment) (*config.Config, error) {
	envCfg := loadEnvConfig(env.Getenv)

	name := common.config
	if name == "" {
		name = envCfg.ConfigPath
	}

	cfg := config.DefaultConfig()
	if name != "" {
		var err error
		cfg, err = config.LoadConfig(name)
		if errors.Is(err, config.ErrConfigNotFound) && !fileutil.IsFilePath(name) {
			return nil, withHint(err, hints.ForConfigNotFound(config.SearchPaths(name)))
		}
		if err != nil {
			return nil, err
		}
	}

	applyEnvConfig(envCfg, cfg)
	return cfg, nil
}

// openStore opens the file-backed asset store, creating dir if needed.
func openStore(dir string) (*revista.FileAssetStore, error) {
	store, err := revista.NewFileAssetStore(dir)
	if err != nil {
		return nil, withHint(err, hints.ForAssetStore(dir))
	}
	return store, nil
}

// limitsFromConfig overlays the non-zero config limits on the defaults.
func limitsFromConfig(lc config.LimitsConfig) revista.Limits {
	l := revista.DefaultLimits()
	setFloat := func(dst *float64, v float64) {
		if v != 0 {
			*dst = v
		}
	}
	setInt := func(dst *int, v int) {
		if v != 0 {
			*dst = v
		}
	}

	setFloat(&l.RasterScale, lc.RasterScale)
	setFloat(&l.LargeDocRasterScale, lc.LargeDocRasterScale)
	setInt(&l.LargeDocPages, lc.LargeDocPages)
	setFloat(&l.SmartRasterScale, lc.SmartRasterScale)
	setFloat(&l.SampleScale, lc.SampleScale)
	setInt(&l.SampleGrid, lc.SampleGrid)
	setFloat(&l.SampleMaxDeviation, lc.SampleMaxDeviation)
	setInt(&l.MaxOccurrencesPerImage, lc.MaxOccurrencesPerImage)
	setInt(&l.DetectMaxOccurrencesPerImage, lc.DetectMaxOccurrencesPerImage)
	setFloat(&l.MinImageSize, lc.MinImageSize)
	setFloat(&l.DetectMinImageSize, lc.DetectMinImageSize)
	setInt(&l.MaxImagesPerPage, lc.MaxImagesPerPage)
	setFloat(&l.OCRPrintableRatio, lc.OCRPrintableRatio)
	setInt(&l.OCRMinChars, lc.OCRMinChars)
	setInt(&l.MaxPages, lc.MaxPages)
	return l
}

// converterOptions builds the revista options for s. A positive timeout
// overrides the configured thumbnail timeout.
func (s *session) converterOptions(timeout time.Duration) []revista.Option {
	opts := []revista.Option{
		revista.WithAssetStore(s.store),
		revista.WithLimits(limitsFromConfig(s.cfg.Limits)),
		revista.WithLogger(s.log),
	}
	if s.cfg.Thumbnail.Width > 0 {
		opts = append(opts, revista.WithThumbnailWidth(s.cfg.Thumbnail.Width))
	}
	if timeout <= 0 && s.cfg.Thumbnail.TimeoutSeconds > 0 {
		timeout = time.Duration(s.cfg.Thumbnail.TimeoutSeconds) * time.Second
	}
	if timeout > 0 {
		opts = append(opts, revista.WithTimeout(timeout))
	}
	return opts
}

// readInput reads a file named on the command line.
func readInput(path string) ([]byte, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided path
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadInput, err)
	}
	return data, nil
}

// writeOutput writes data atomically, creating the parent directory.
func writeOutput(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), dirPermissions); err != nil {
		return fmt.Errorf("%w: %w", ErrOutputDir, err)
	}
	if err := fileutil.WriteFileAtomic(path, data, filePermissions); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}
	return nil
}

// outputPath returns explicit when set, otherwise input with ext.
func outputPath(input, explicit, ext string) string {
	if explicit != "" {
		return explicit
	}
	return fileutil.ReplaceExt(input, ext)
}
