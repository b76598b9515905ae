package core

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"
)

// MockFileSystem is an in-memory FileSystem used by tests and by the
// dry-run overlay. Directories are implied by the files stored beneath them.
type MockFileSystem struct {
	mu    sync.RWMutex
	files map[string][]byte

	// ReadErr, when set, is returned by every ReadFile call.
	ReadErr error
	// WriteErr, when set, is returned by every WriteFile call.
	WriteErr error
}

// NewMockFileSystem returns an empty in-memory filesystem.
func NewMockFileSystem() *MockFileSystem {
	return &MockFileSystem{files: make(map[string][]byte)}
}

// Ensure MockFileSystem implements FileSystem.
var _ FileSystem = (*MockFileSystem)(nil)

// SetFile stores data at path, replacing any previous content.
func (m *MockFileSystem) SetFile(path string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[filepath.Clean(path)] = slices.Clone(data)
}

// GetFile returns the content stored at path.
func (m *MockFileSystem) GetFile(path string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.files[filepath.Clean(path)]
	return data, ok
}

// Paths returns every stored file path in lexical order.
func (m *MockFileSystem) Paths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	paths := make([]string, 0, len(m.files))
	for p := range m.files {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	return paths
}

func (m *MockFileSystem) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	data, ok := m.GetFile(path)
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	return slices.Clone(data), nil
}

func (m *MockFileSystem) WriteFile(ctx context.Context, path string, data []byte, _ os.FileMode) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.SetFile(path, data)
	return nil
}

func (m *MockFileSystem) Stat(ctx context.Context, path string) (os.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	clean := filepath.Clean(path)
	if data, ok := m.GetFile(clean); ok {
		return &mockFileInfo{name: filepath.Base(clean), size: int64(len(data))}, nil
	}
	if m.isDir(clean) {
		return &mockFileInfo{name: filepath.Base(clean), dir: true}, nil
	}
	return nil, &fs.PathError{Op: "stat", Path: path, Err: fs.ErrNotExist}
}

func (m *MockFileSystem) ReadDir(ctx context.Context, path string) ([]os.DirEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := dirPrefix(filepath.Clean(path))

	m.mu.RLock()
	children := make(map[string]*mockFileInfo)
	for p, data := range m.files {
		rest, ok := strings.CutPrefix(p, prefix)
		if !ok || rest == "" {
			continue
		}
		name, _, nested := strings.Cut(rest, string(filepath.Separator))
		if nested {
			children[name] = &mockFileInfo{name: name, dir: true}
		} else if _, seen := children[name]; !seen {
			children[name] = &mockFileInfo{name: name, size: int64(len(data))}
		}
	}
	m.mu.RUnlock()

	if len(children) == 0 {
		return nil, &fs.PathError{Op: "readdir", Path: path, Err: fs.ErrNotExist}
	}

	names := make([]string, 0, len(children))
	for name := range children {
		names = append(names, name)
	}
	slices.Sort(names)

	entries := make([]os.DirEntry, 0, len(names))
	for _, name := range names {
		entries = append(entries, fs.FileInfoToDirEntry(children[name]))
	}
	return entries, nil
}

func (m *MockFileSystem) isDir(path string) bool {
	prefix := dirPrefix(path)
	m.mu.RLock()
	defer m.mu.RUnlock()
	for p := range m.files {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}

func dirPrefix(dir string) string {
	if strings.HasSuffix(dir, string(filepath.Separator)) {
		return dir
	}
	return dir + string(filepath.Separator)
}

type mockFileInfo struct {
	name string
	size int64
	dir  bool
}

func (i *mockFileInfo) Name() string { return i.name }
func (i *mockFileInfo) Size() int64  { return i.size }
func (i *mockFileInfo) Mode() fs.FileMode {
	if i.dir {
		return fs.ModeDir | 0o755
	}
	return PermPublicRead
}
func (i *mockFileInfo) ModTime() time.Time { return time.Time{} }
func (i *mockFileInfo) IsDir() bool        { return i.dir }
func (i *mockFileInfo) Sys() any           { return nil }
