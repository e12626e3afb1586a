package xmlconfig

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/andrescamacho/bob-go/internal/domain/configuration"
)

const fileExt = ".xml"

// FileRepository stores one XML document per profile in a directory
type FileRepository struct {
	dir string
}

// NewFileRepository creates a repository rooted at dir
func NewFileRepository(dir string) *FileRepository {
	return &FileRepository{dir: dir}
}

// Path returns the file backing profile
func (r *FileRepository) Path(profile string) string {
	return filepath.Join(r.dir, profile+fileExt)
}

// Save writes the document through a temporary file so a failed write
// never truncates the previous one
func (r *FileRepository) Save(ctx context.Context, profile string, doc *configuration.Document) error {
	if profile == "" {
		return fmt.Errorf("profile name is required")
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create configuration directory: %w", err)
	}
	return SaveFile(r.Path(profile), doc)
}

// Load reads the document of profile
func (r *FileRepository) Load(ctx context.Context, profile string) (*configuration.Document, error) {
	doc, err := LoadFile(r.Path(profile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", configuration.ErrProfileNotFound, profile)
	}
	return doc, err
}

// List returns the profiles found in the directory
func (r *FileRepository) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list configuration directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fileExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), fileExt))
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes the file of profile
func (r *FileRepository) Delete(ctx context.Context, profile string) error {
	if err := os.Remove(r.Path(profile)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", configuration.ErrProfileNotFound, profile)
		}
		return err
	}
	return nil
}

// LoadFile decodes the document at path
func LoadFile(path string) (*configuration.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// SaveFile encodes doc to path, replacing it atomically
func SaveFile(path string, doc *configuration.Document) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, doc); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
