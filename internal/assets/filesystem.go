package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/larabashadi/Revista-2/internal/fileutil"
)

// FileStore keeps assets as files named <id><ext> under a base directory.
type FileStore struct {
	basePath string
}

// NewFileStore creates a FileStore rooted at basePath. With create set, a
// missing directory is created. Returns ErrInvalidBasePath if the path is not
// a usable directory.
func NewFileStore(basePath string, create bool) (*FileStore, error) {
	if basePath == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidBasePath)
	}

	absPath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}

	if create {
		if err := os.MkdirAll(absPath, 0o750); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
		}
	}

	// Resolve symlinks in base path so containment checks compare real paths.
	if realPath, err := filepath.EvalSymlinks(absPath); err == nil {
		absPath = realPath
	}

	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: directory does not exist: %s", ErrInvalidBasePath, absPath)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: not a directory: %s", ErrInvalidBasePath, absPath)
	}

	return &FileStore{basePath: absPath}, nil
}

// Dir returns the resolved base directory.
func (s *FileStore) Dir() string {
	return s.basePath
}

// Put writes data under a fresh id. The suggested name only contributes
// its extension.
func (s *FileStore) Put(data []byte, name string) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyData
	}

	id := NewID()
	path := filepath.Join(s.basePath, id+extFor(name))
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return "", fmt.Errorf("%w: %v", ErrAssetWrite, err)
	}
	return id, nil
}

// Get returns the bytes stored for id.
func (s *FileStore) Get(id string) ([]byte, error) {
	path, err := s.Locate(id)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path) // #nosec G304 -- path validated by Locate
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: %v", ErrAssetRead, err)
	}
	return data, nil
}

// Locate maps id to its file. The first entry whose name is id followed by
// an extension wins.
func (s *FileStore) Locate(id string) (string, error) {
	if err := ValidateID(id); err != nil {
		return "", err
	}

	matches, err := filepath.Glob(filepath.Join(s.basePath, id+".*"))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAssetRead, err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	path := matches[0]
	if err := s.verifyPathContainment(path); err != nil {
		return "", err
	}
	return path, nil
}

// verifyPathContainment ensures the resolved file path is within basePath.
// Resolves symlinks to prevent escape via symlink pointing outside basePath.
func (s *FileStore) verifyPathContainment(filePath string) error {
	absFilePath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("%w: cannot resolve path", ErrPathTraversal)
	}

	if realPath, err := filepath.EvalSymlinks(absFilePath); err == nil {
		absFilePath = realPath
	}

	// Separator suffix prevents /base/path matching /base/pathevil.
	if !strings.HasPrefix(absFilePath, s.basePath+string(filepath.Separator)) {
		return fmt.Errorf("%w: path escapes base directory", ErrPathTraversal)
	}
	return nil
}
