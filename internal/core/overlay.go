package core

import (
	"context"
	"errors"
	"io/fs"
	"os"
)

// OverlayFileSystem reads through to a base filesystem and keeps every write
// in memory. It backs dry runs: the release executes end to end while the
// working tree stays untouched.
type OverlayFileSystem struct {
	base  FileSystem
	upper *MockFileSystem
}

// NewOverlayFileSystem wraps base in a copy-on-write layer.
func NewOverlayFileSystem(base FileSystem) *OverlayFileSystem {
	return &OverlayFileSystem{base: base, upper: NewMockFileSystem()}
}

// Ensure OverlayFileSystem implements FileSystem.
var _ FileSystem = (*OverlayFileSystem)(nil)

func (o *OverlayFileSystem) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if data, ok := o.upper.GetFile(path); ok {
		return data, nil
	}
	return o.base.ReadFile(ctx, path)
}

func (o *OverlayFileSystem) WriteFile(ctx context.Context, path string, data []byte, perm os.FileMode) error {
	return o.upper.WriteFile(ctx, path, data, perm)
}

func (o *OverlayFileSystem) Stat(ctx context.Context, path string) (os.FileInfo, error) {
	if info, err := o.upper.Stat(ctx, path); err == nil {
		return info, nil
	}
	return o.base.Stat(ctx, path)
}

func (o *OverlayFileSystem) ReadDir(ctx context.Context, path string) ([]os.DirEntry, error) {
	entries, err := o.base.ReadDir(ctx, path)
	if errors.Is(err, fs.ErrNotExist) {
		return o.upper.ReadDir(ctx, path)
	}
	return entries, err
}

// Changed returns the paths written through the overlay, in lexical order.
func (o *OverlayFileSystem) Changed() []string {
	return o.upper.Paths()
}

// Content returns the in-memory content written for path.
func (o *OverlayFileSystem) Content(path string) ([]byte, bool) {
	return o.upper.GetFile(path)
}

// Original returns the content of path in the base filesystem, ignoring
// writes made through the overlay.
func (o *OverlayFileSystem) Original(ctx context.Context, path string) ([]byte, error) {
	return o.base.ReadFile(ctx, path)
}
