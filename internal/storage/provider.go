// Package storage defines the source and output file-tree abstraction.
package storage

import "github.com/starford/pagesmith/internal/models"

// Provider is the interface for file operations under one root. All paths
// are slash-separated and relative to that root.
type Provider interface {
	// List returns metadata for every .md file under dir, sorted by path.
	List(dir string) ([]models.SourceFile, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path, creating parent directories.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
	// Exists reports whether a regular file exists at path.
	Exists(path string) bool
}
