package assets

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// idLength is the length of a dashless uuid in hex.
const idLength = 32

// maxExtLength bounds extensions kept from suggested names (".jpeg", ".tiff").
const maxExtLength = 5

// NewID returns a random 32-character lowercase hex id.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// ValidateID checks that id has the shape produced by NewID.
func ValidateID(id string) error {
	if len(id) != idLength {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	for _, r := range id {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return fmt.Errorf("%w: %q", ErrInvalidID, id)
		}
	}
	return nil
}

// extFor derives a safe lowercase extension from a suggested file name.
// Names without a usable extension get ".bin".
func extFor(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if len(ext) < 2 || len(ext) > maxExtLength+1 {
		return ".bin"
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ".bin"
		}
	}
	return ext
}
