// Package storage defines the deck directory file-system abstraction.
package storage

import "time"

// FileInfo describes one file in the deck directory.
type FileInfo struct {
	Path      string
	Size      int64
	UpdatedAt time.Time
}

// Provider is the interface for deck directory file operations.
type Provider interface {
	// Root returns the absolute path of the deck directory.
	Root() string
	// List returns metadata for the regular files directly under dir (relative to the deck root).
	List(dir string) ([]FileInfo, error)
	// Read returns the raw bytes of the file at path (relative to the deck root).
	Read(path string) ([]byte, error)
	// Write atomically replaces the file at path (relative to the deck root).
	Write(path string, content []byte) error
	// Exists reports whether a file is present at path.
	Exists(path string) (bool, error)
}
