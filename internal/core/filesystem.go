// Package core holds the small set of abstractions shared by every monopub
// package: the filesystem seam used for manifest IO and the error taxonomy
// surfaced by a release run.
package core

import (
	"context"
	"os"
)

// File permission constants used when monopub creates or rewrites files.
const (
	// PermOwnerRW is owner read/write only.
	PermOwnerRW os.FileMode = 0o600

	// PermPublicRead is owner read/write, group and others read.
	PermPublicRead os.FileMode = 0o644
)

// FileSystem abstracts the filesystem operations monopub performs.
// Every method honors context cancellation before touching the disk.
type FileSystem interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
	WriteFile(ctx context.Context, path string, data []byte, perm os.FileMode) error
	Stat(ctx context.Context, path string) (os.FileInfo, error)
	ReadDir(ctx context.Context, path string) ([]os.DirEntry, error)
}

// OSFileSystem implements FileSystem on top of the os package.
type OSFileSystem struct{}

// NewOSFileSystem returns the production filesystem.
func NewOSFileSystem() *OSFileSystem {
	return &OSFileSystem{}
}

// Ensure OSFileSystem implements FileSystem.
var _ FileSystem = (*OSFileSystem)(nil)

func (f *OSFileSystem) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

func (f *OSFileSystem) WriteFile(ctx context.Context, path string, data []byte, perm os.FileMode) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return os.WriteFile(path, data, perm)
}

func (f *OSFileSystem) Stat(ctx context.Context, path string) (os.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.Stat(path)
}

func (f *OSFileSystem) ReadDir(ctx context.Context, path string) ([]os.DirEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadDir(path)
}
