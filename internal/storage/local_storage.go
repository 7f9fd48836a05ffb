package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
)

type LocalStorage struct {
	basePath string
}

var _ BlobStorage = (*LocalStorage)(nil)

func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
		return nil, err
	}
	return &LocalStorage{basePath: basePath}, nil
}

func (ls *LocalStorage) getPathFromKey(key string) string {
	pathParts := strings.Split(key, "")
	return filepath.Join(ls.basePath, filepath.Join(pathParts...))
}

func (ls *LocalStorage) Save(_ context.Context, key string, data io.Reader) error {
	filePath := ls.getPathFromKey(key)
	dir := filepath.Dir(filePath)

	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return err
	}

	file, err := os.Create(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = io.Copy(file, data)
	return err
}

func (ls *LocalStorage) Get(_ context.Context, key string) (io.ReadCloser, error) {
	filePath := ls.getPathFromKey(key)

	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("blob with key %s not found: %w", key, err)
		}
		return nil, err
	}

	return file, nil
}

func (ls *LocalStorage) Delete(_ context.Context, key string) error {
	filePath := ls.getPathFromKey(key)

	err := os.Remove(filePath)
	if os.IsNotExist(err) {
		// Idempotent, but worth a trace when a record pointed at nothing.
		log.Printf("WARN: blob %s was already absent on delete", key)
		return nil
	}

	return err
}
