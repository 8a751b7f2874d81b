// Package assets stores binary assets (raster pages, extracted images, source
// PDFs) behind opaque ids.
//
// # Stores
//
//	FileStore   - one file per asset under a base directory
//	MemoryStore - process-local map, for tests and one-shot CLI runs
//
// An id is a 32-character lowercase hex string. FileStore keeps the id apart
// from the on-disk location: a file is named <id><ext>, where ext comes from
// the suggested name, and lookups go through Locate. The storage layout can
// change without touching ids already recorded in documents.
//
// # Security
//
// Ids are validated before any filesystem access, and resolved paths are
// checked to stay inside the base directory, including through symlinks.
package assets
