package main

import (
	"errors"
	"os"

	revista "github.com/larabashadi/Revista-2"
	"github.com/larabashadi/Revista-2/internal/config"
	"github.com/larabashadi/Revista-2/internal/hints"
)

// Exit codes for the revista CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess      = 0 // Command completed
	ExitGeneral      = 1 // General/unexpected error
	ExitUsage        = 2 // Invalid flags, config, or options
	ExitIO           = 3 // File not found, permission denied, store failure
	ExitBrowser      = 4 // Browser/Chrome errors
	ExitInvalidInput = 5 // Bad PDF, bad document JSON, bad page index
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Usage/config errors (exit 2). Checked before ErrInvalidInput, which
	// the option sentinels also wrap.
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrFieldRange) ||
		errors.Is(err, revista.ErrInvalidPreset) ||
		errors.Is(err, revista.ErrInvalidQuality) ||
		errors.Is(err, revista.ErrInvalidLimits) {
		return ExitUsage
	}

	// Browser errors (exit 4)
	if errors.Is(err, revista.ErrBrowserConnect) ||
		errors.Is(err, revista.ErrPageCreate) ||
		errors.Is(err, revista.ErrPageLoad) ||
		errors.Is(err, revista.ErrScreenshot) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadInput) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, ErrOutputDir) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, revista.ErrAssetStore) {
		return ExitIO
	}

	// Input errors (exit 5)
	if errors.Is(err, revista.ErrInvalidInput) ||
		errors.Is(err, revista.ErrNoSourcePDF) {
		return ExitInvalidInput
	}

	return ExitGeneral
}

// hintError carries an actionable hint alongside the error it explains.
type hintError struct {
	err  error
	hint string
}

func (e *hintError) Error() string { return e.err.Error() }
func (e *hintError) Unwrap() error { return e.err }

// withHint attaches hint to err. A nil err stays nil.
func withHint(err error, hint string) error {
	if err == nil {
		return nil
	}
	return &hintError{err: err, hint: hint}
}

// hintFor returns the hint text to print after err, or "".
func hintFor(err error) string {
	var he *hintError
	if errors.As(err, &he) {
		return he.hint
	}

	switch {
	case errors.Is(err, revista.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, revista.ErrEmptyPDF), errors.Is(err, revista.ErrNotPDF):
		return hints.ForInvalidPDF()
	case errors.Is(err, revista.ErrNoSourcePDF):
		return hints.ForNoSourcePDF()
	case errors.Is(err, ErrOutputDir):
		return hints.ForOutputDirectory()
	}
	return ""
}
