package revista

import (
	"errors"
	"fmt"
	"strings"

	"github.com/larabashadi/Revista-2/internal/assets"
)

// AssetID is an opaque asset store key. It is a logical id, not a path.
type AssetID string

// AssetStore stores and resolves binary assets (page rasters, extracted
// images, source PDFs, logos). Implementations must be safe for concurrent use.
type AssetStore interface {
	// Store saves data and returns a new id. name is a hint (extension, logs).
	Store(data []byte, name string) (AssetID, error)
	// Resolve returns the bytes for id, or an error matching ErrAssetNotFound.
	Resolve(id AssetID) ([]byte, error)
}

// ErrAssetNotFound is returned by AssetStore.Resolve for unknown ids.
var ErrAssetNotFound = errors.New("asset not found")

// FileAssetStore keeps assets as files in one directory.
type FileAssetStore struct {
	fs *assets.FileStore
}

var (
	_ AssetStore = (*FileAssetStore)(nil)
	_ AssetStore = (*MemoryAssetStore)(nil)
)

// NewFileAssetStore opens (and creates if missing) an asset directory.
func NewFileAssetStore(dir string) (*FileAssetStore, error) {
	fs, err := assets.NewFileStore(dir, true)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAssetStore, err)
	}
	return &FileAssetStore{fs: fs}, nil
}

// Dir returns the resolved directory.
func (s *FileAssetStore) Dir() string {
	return s.fs.Dir()
}

// Store implements AssetStore.
func (s *FileAssetStore) Store(data []byte, name string) (AssetID, error) {
	id, err := s.fs.Put(data, name)
	if err != nil {
		return "", fmt.Errorf("%w: storing %s: %v", ErrAssetStore, name, err)
	}
	return AssetID(id), nil
}

// Resolve implements AssetStore.
func (s *FileAssetStore) Resolve(id AssetID) ([]byte, error) {
	data, err := s.fs.Get(string(id))
	if err != nil {
		return nil, wrapStoreErr(id, err)
	}
	return data, nil
}

// Path returns the file backing id.
func (s *FileAssetStore) Path(id AssetID) (string, error) {
	p, err := s.fs.Locate(string(id))
	if err != nil {
		return "", wrapStoreErr(id, err)
	}
	return p, nil
}

// MemoryAssetStore keeps assets in memory. Useful for tests and one-shot
// conversions.
type MemoryAssetStore struct {
	ms *assets.MemoryStore
}

// NewMemoryAssetStore returns an empty in-memory store.
func NewMemoryAssetStore() *MemoryAssetStore {
	return &MemoryAssetStore{ms: assets.NewMemoryStore()}
}

// Store implements AssetStore.
func (s *MemoryAssetStore) Store(data []byte, name string) (AssetID, error) {
	id, err := s.ms.Put(data, name)
	if err != nil {
		return "", fmt.Errorf("%w: storing %s: %v", ErrAssetStore, name, err)
	}
	return AssetID(id), nil
}

// Resolve implements AssetStore.
func (s *MemoryAssetStore) Resolve(id AssetID) ([]byte, error) {
	data, err := s.ms.Get(string(id))
	if err != nil {
		return nil, wrapStoreErr(id, err)
	}
	return data, nil
}

// Name returns the name hint recorded when id was stored.
func (s *MemoryAssetStore) Name(id AssetID) string {
	return s.ms.Name(string(id))
}

// Len returns the number of stored assets.
func (s *MemoryAssetStore) Len() int {
	return s.ms.Len()
}

func wrapStoreErr(id AssetID, err error) error {
	if errors.Is(err, assets.ErrNotFound) || errors.Is(err, assets.ErrInvalidID) {
		return fmt.Errorf("%w: %s", ErrAssetNotFound, id)
	}
	return fmt.Errorf("%w: %v", ErrAssetStore, err)
}

// isTemplateToken reports whether ref is an unresolved "{{...}}" placeholder.
func isTemplateToken(ref string) bool {
	return strings.HasPrefix(strings.TrimSpace(ref), "{{")
}
