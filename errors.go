package revista

import (
	"errors"
	"fmt"
)

// Sentinel errors for library operations.
var (
	// ErrInvalidInput is the root of every fatal input error. Match with errors.Is.
	ErrInvalidInput = errors.New("invalid input")

	ErrEmptyPDF  = fmt.Errorf("%w: empty PDF", ErrInvalidInput)
	ErrNotPDF    = fmt.Errorf("%w: not a PDF", ErrInvalidInput)
	ErrPageIndex = fmt.Errorf("%w: page index out of range", ErrInvalidInput)
	ErrNoPages   = fmt.Errorf("%w: document has no pages", ErrInvalidInput)
	ErrTooLarge  = fmt.Errorf("%w: document exceeds page limit", ErrInvalidInput)
	ErrParse     = fmt.Errorf("%w: cannot parse PDF", ErrInvalidInput)

	// Option validation errors.
	ErrInvalidPreset  = fmt.Errorf("%w: invalid import preset", ErrInvalidInput)
	ErrInvalidQuality = fmt.Errorf("%w: invalid export quality", ErrInvalidInput)
	ErrInvalidLimits  = fmt.Errorf("%w: invalid limits", ErrInvalidInput)
	ErrInvalidJSON    = fmt.Errorf("%w: malformed document JSON", ErrInvalidInput)

	// Collaborator errors.
	ErrNoAssetStore = errors.New("no asset store configured")
	ErrNoSourcePDF  = errors.New("document has no source PDF asset")
	ErrAssetStore   = errors.New("asset store operation failed")
	ErrPDFOutput    = errors.New("PDF generation failed")

	// Thumbnail errors.
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrScreenshot     = errors.New("failed to capture screenshot")
)

// Local error kinds. These never abort a call; they are carried by Warning.
var (
	ErrAssetUnresolved = errors.New("asset unresolved")
	ErrGeometryInvalid = errors.New("invalid geometry")
	ErrExtraction      = errors.New("extraction failed")
	ErrItemFailed      = errors.New("item could not be drawn")
)
