package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// FileBackend keeps each collection in <dir>/<name>.json.
//
// Writes are atomic: temp file, fsync, rename. The directory fsync after the
// rename is logged on failure, not returned.
type FileBackend struct {
	dir    string
	logger *slog.Logger
}

type FileOption func(*FileBackend)

func WithLogger(l *slog.Logger) FileOption {
	return func(b *FileBackend) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewFileBackend creates dir if needed.
func NewFileBackend(dir string, opts ...FileOption) (*FileBackend, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("storage dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	b := &FileBackend{dir: dir, logger: slog.Default()}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

func (b *FileBackend) path(name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("invalid collection name %q", name)
	}
	return filepath.Join(b.dir, name+".json"), nil
}

func (b *FileBackend) Load(_ context.Context, name string) ([]byte, error) {
	path, err := b.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

func (b *FileBackend) Save(_ context.Context, name string, data []byte) error {
	path, err := b.path(name)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(path, data, 0o644); err != nil {
		return err
	}
	if err := syncDir(b.dir); err != nil {
		b.logger.Warn("storage dir sync failed",
			slog.String("collection", name),
			slog.String("error", err.Error()),
		)
	}
	return nil
}

func (b *FileBackend) Ping(_ context.Context) error {
	fi, err := os.Stat(b.dir)
	if err != nil {
		return err
	}
	if !fi.IsDir() {
		return fmt.Errorf("%s is not a directory", b.dir)
	}
	return nil
}

func (b *FileBackend) Close() error { return nil }

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := io.Copy(tmp, bytes.NewReader(data)); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}
	committed = true
	return nil
}

var syncDir = func(dir string) error {
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}
