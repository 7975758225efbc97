package persist

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"pixelguard/pkg/platform/sentinel"
)

// File stores one value in a file. Writes go through a temporary file in the
// same directory and are renamed into place.
type File struct {
	path string
	codec
}

// NewFile returns a file serializer for the given format.
func NewFile(path string, format Format, opts ...Option) (*File, error) {
	if path == "" {
		return nil, fmt.Errorf("serializer path: %w", sentinel.ErrConfigurationMissing)
	}
	return &File{path: path, codec: newCodec(format, opts)}, nil
}

// NewJSONFile, NewXMLFile and NewGobFile are shorthands for NewFile.
func NewJSONFile(path string, opts ...Option) (*File, error) { return NewFile(path, FormatJSON, opts...) }

func NewXMLFile(path string, opts ...Option) (*File, error) { return NewFile(path, FormatXML, opts...) }

func NewGobFile(path string, opts ...Option) (*File, error) { return NewFile(path, FormatGob, opts...) }

func (f *File) Path() string { return f.path }

func (f *File) Save(ctx context.Context, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := f.encode(v)
	if err != nil {
		return err
	}
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("save %s: %w", f.path, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("save %s: %w", f.path, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("save %s: %w", f.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save %s: %w", f.path, err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("save %s: %w", f.path, err)
	}
	return nil
}

func (f *File) Load(ctx context.Context, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w", f.path, sentinel.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", f.path, err)
	}
	return f.decode(data, v)
}

// Delete removes the file. Deleting a missing file is not an error.
func (f *File) Delete(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", f.path, err)
	}
	return nil
}
