package storage

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/lumenio-ai/lumen/internal/domain"
)

// FileStore serves a corpus from a directory tree: one subdirectory per
// collection, one file per item.
type FileStore struct {
	basePath string
}

// NewFileStore validates the base path and returns a FileStore.
func NewFileStore(basePath string) (*FileStore, error) {
	info, err := os.Stat(basePath)
	if err != nil {
		return nil, fmt.Errorf("base path does not exist: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("base path is not a directory: %s", basePath)
	}

	log.Printf("file storage initialized at %s", basePath)
	return &FileStore{basePath: basePath}, nil
}

// GetAllCollections lists subdirectories of the base path, sorted by name.
func (s *FileStore) GetAllCollections(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}

	var collections []string
	for _, entry := range entries {
		if entry.IsDir() {
			collections = append(collections, entry.Name())
		}
	}
	sort.Strings(collections)
	return collections, nil
}

// GetCollectionItems lists regular files in a collection directory, sorted
// by name so document ordinals stay stable across passes.
func (s *FileStore) GetCollectionItems(ctx context.Context, collection string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.basePath, collection))
	if err != nil {
		return nil, fmt.Errorf("failed to list collection %q: %w", collection, err)
	}

	var items []string
	for _, entry := range entries {
		if !entry.IsDir() {
			items = append(items, entry.Name())
		}
	}
	sort.Strings(items)
	return items, nil
}

// GetItem reads an item's content.
func (s *FileStore) GetItem(ctx context.Context, collection, item string) (string, error) {
	path := filepath.Join(s.basePath, collection, item)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", domain.ErrItemNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read item %s/%s: %w", collection, item, err)
	}
	return string(data), nil
}
