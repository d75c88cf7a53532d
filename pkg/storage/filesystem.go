package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// MaterialStore persists uploaded course documents on disk under a base
// directory, laid out as <university>/<major>/<course>/Week <n>/<filename>.
type MaterialStore struct {
	baseDir string
}

// NewMaterialStore ensures the base directory exists and returns a handle.
func NewMaterialStore(baseDir string) (*MaterialStore, error) {
	if baseDir == "" {
		baseDir = "./storage"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &MaterialStore{baseDir: baseDir}, nil
}

// MaterialPath derives the relative storage path for an upload.
func MaterialPath(university, major, course string, week int, filename string) string {
	return filepath.Join(
		SanitizeComponent(university),
		SanitizeComponent(major),
		SanitizeComponent(course),
		fmt.Sprintf("Week %d", week),
		SanitizeFilename(filename),
	)
}

// Save writes the given bytes to the provided relative path under the base dir.
func (s *MaterialStore) Save(relPath string, data []byte) error {
	path := s.resolve(relPath)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("prepare material directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write material file: %w", err)
	}
	return nil
}

// SaveStream copies from reader into the target file path.
func (s *MaterialStore) SaveStream(relPath string, r io.Reader) error {
	path := s.resolve(relPath)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("prepare material directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create material file: %w", err)
	}
	defer file.Close() //nolint:errcheck
	if _, err := io.Copy(file, r); err != nil {
		return fmt.Errorf("write material stream: %w", err)
	}
	return nil
}

// Open returns a read-only handle for the stored file.
func (s *MaterialStore) Open(relPath string) (*os.File, error) {
	file, err := os.Open(s.resolve(relPath))
	if err != nil {
		return nil, fmt.Errorf("open material file: %w", err)
	}
	return file, nil
}

// Exists reports whether the stored file is present on disk.
func (s *MaterialStore) Exists(relPath string) bool {
	info, err := os.Stat(s.resolve(relPath))
	return err == nil && !info.IsDir()
}

// Delete removes a stored file if present.
func (s *MaterialStore) Delete(relPath string) error {
	if err := os.Remove(s.resolve(relPath)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete material file: %w", err)
	}
	return nil
}

// Path exposes the underlying absolute path.
func (s *MaterialStore) Path(relPath string) string {
	return s.resolve(relPath)
}

func (s *MaterialStore) resolve(relPath string) string {
	if filepath.IsAbs(relPath) {
		return relPath
	}
	return filepath.Join(s.baseDir, relPath)
}

// SanitizeComponent strips path separators and traversal sequences from a
// user-supplied path segment.
func SanitizeComponent(component string) string {
	component = strings.ReplaceAll(component, "/", "_")
	component = strings.ReplaceAll(component, "\\", "_")
	component = strings.ReplaceAll(component, "..", "_")
	return strings.TrimSpace(component)
}

// SanitizeFilename keeps the extension while sanitising the base name and
// capping its length.
func SanitizeFilename(filename string) string {
	ext := filepath.Ext(filename)
	name := SanitizeComponent(strings.TrimSuffix(filename, ext))
	if len(name) > 200 {
		name = name[:200]
	}
	return name + ext
}
