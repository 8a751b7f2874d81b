package assets

import "errors"

// Sentinel errors for asset operations.
var (
	// ErrNotFound indicates no asset exists for the id.
	ErrNotFound = errors.New("asset not found")

	// ErrInvalidID indicates an id that is empty or not lowercase hex.
	ErrInvalidID = errors.New("invalid asset id")

	// ErrEmptyData indicates an attempt to store zero bytes.
	ErrEmptyData = errors.New("asset data is empty")

	// ErrInvalidBasePath indicates the configured base path is not a valid directory.
	ErrInvalidBasePath = errors.New("invalid base path")

	// ErrAssetRead indicates an I/O error occurred while reading an asset file.
	ErrAssetRead = errors.New("failed to read asset")

	// ErrAssetWrite indicates an I/O error occurred while writing an asset file.
	ErrAssetWrite = errors.New("failed to write asset")

	// ErrPathTraversal indicates an attempt to access files outside the base path.
	ErrPathTraversal = errors.New("path traversal detected")
)
