package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lockedloop/tempus-fugit/internal/structures"
)

// Backend is a flat key-value tier. Get returns (nil, nil) for an absent
// key; absence is not an error at this layer.
type Backend interface {
	Get(key string) ([]byte, error)
	Set(key string, val []byte) error
	Delete(key string) error
}

// FileBackend is the durable local tier: one zstd-compressed file per key
// under a single directory. Writes go through a temp file and rename so a
// crash mid-write never leaves a truncated document behind.
type FileBackend struct {
	dir        string
	compressor CompressorInterface
}

func NewFileBackend(conf *structures.Config, compressor CompressorInterface) (*FileBackend, error) {
	if err := os.MkdirAll(conf.Storage.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage dir: %w", err)
	}
	return &FileBackend{dir: conf.Storage.Dir, compressor: compressor}, nil
}

func (b *FileBackend) path(key string) string {
	return filepath.Join(b.dir, key+".tf")
}

func (b *FileBackend) Get(key string) ([]byte, error) {
	data, err := os.ReadFile(b.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return b.compressor.Decompress(data)
}

func (b *FileBackend) Set(key string, val []byte) error {
	data, err := b.compressor.Compress(val)
	if err != nil {
		return err
	}

	fileName := b.path(key)
	tmpFile := fileName + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	if _, err = file.Write(data); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, fileName)
}

func (b *FileBackend) Delete(key string) error {
	err := os.Remove(b.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
