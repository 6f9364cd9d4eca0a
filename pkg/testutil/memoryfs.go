package testutil

import (
	"errors"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"
)

// maxLinkHops bounds symlink resolution the way the kernel does
const maxLinkHops = 40

// MemoryFS implements types.FS with in-memory storage. Paths are absolute
// and slash separated; relative paths are taken from "/". Only the final
// path component is resolved through symlinks.
type MemoryFS struct {
	mu    sync.RWMutex
	nodes map[string]*fileNode

	// Error injection
	errorPaths map[string]error

	// Statistics
	writeCount int
}

// fileNode represents a file, directory, symlink or special file in memory.
// mode carries the type bits as well as the permission bits.
type fileNode struct {
	mode     fs.FileMode
	modTime  time.Time
	content  []byte
	linkDest string
}

// NewMemoryFS creates a new in-memory filesystem containing only "/"
func NewMemoryFS() *MemoryFS {
	return &MemoryFS{
		nodes: map[string]*fileNode{
			"/": {mode: fs.ModeDir | 0755, modTime: time.Now()},
		},
		errorPaths: make(map[string]error),
	}
}

// normalizePath converts a path to absolute form
func normalizePath(path string) string {
	if !filepath.IsAbs(path) {
		path = filepath.Join("/", path)
	}
	return filepath.Clean(path)
}

func pathError(op, path string, err error) error {
	return &fs.PathError{Op: op, Path: path, Err: err}
}

// injected returns the error configured for path, if any
func (m *MemoryFS) injected(op, path string) error {
	if err, ok := m.errorPaths[path]; ok {
		return pathError(op, path, err)
	}
	return nil
}

// resolve follows symlinks at path and returns the final path and node
func (m *MemoryFS) resolve(op, path string) (string, *fileNode, error) {
	for i := 0; i < maxLinkHops; i++ {
		node, ok := m.nodes[path]
		if !ok {
			return path, nil, pathError(op, path, fs.ErrNotExist)
		}
		if node.mode&fs.ModeSymlink == 0 {
			return path, node, nil
		}
		dest := node.linkDest
		if !filepath.IsAbs(dest) {
			dest = filepath.Join(filepath.Dir(path), dest)
		}
		path = filepath.Clean(dest)
	}
	return path, nil, pathError(op, path, syscall.ELOOP)
}

// checkParent verifies the parent of path exists and is a directory
func (m *MemoryFS) checkParent(op, path string) error {
	parent, ok := m.nodes[filepath.Dir(path)]
	if !ok {
		return pathError(op, path, fs.ErrNotExist)
	}
	if !parent.mode.IsDir() {
		return pathError(op, path, syscall.ENOTDIR)
	}
	return nil
}

func (m *MemoryFS) hasChildren(path string) bool {
	prefix := path + "/"
	if path == "/" {
		prefix = "/"
	}
	for p := range m.nodes {
		if p != path && strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}

// Stat returns file info, following symlinks
func (m *MemoryFS) Stat(name string) (fs.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	path := normalizePath(name)
	if err := m.injected("stat", path); err != nil {
		return nil, err
	}
	_, node, err := m.resolve("stat", path)
	if err != nil {
		return nil, err
	}
	return newFileInfo(node, path), nil
}

// Lstat returns file info without following symlinks
func (m *MemoryFS) Lstat(name string) (fs.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	path := normalizePath(name)
	if err := m.injected("lstat", path); err != nil {
		return nil, err
	}
	node, ok := m.nodes[path]
	if !ok {
		return nil, pathError("lstat", path, fs.ErrNotExist)
	}
	return newFileInfo(node, path), nil
}

// ReadFile reads the entire file content
func (m *MemoryFS) ReadFile(name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	path := normalizePath(name)
	if err := m.injected("open", path); err != nil {
		return nil, err
	}
	_, node, err := m.resolve("open", path)
	if err != nil {
		return nil, err
	}
	if node.mode.IsDir() {
		return nil, pathError("read", path, syscall.EISDIR)
	}

	// Return a copy to prevent mutation
	content := make([]byte, len(node.content))
	copy(content, node.content)
	return content, nil
}

// WriteFile writes data to a file, creating it if necessary. Like
// os.WriteFile it writes through symlinks and keeps the mode of an
// existing file.
func (m *MemoryFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.writeCount++

	path := normalizePath(name)
	if err := m.injected("open", path); err != nil {
		return err
	}
	path, node, err := m.resolve("open", path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if node != nil {
		if node.mode.IsDir() {
			return pathError("open", path, syscall.EISDIR)
		}
		node.content = append([]byte(nil), data...)
		node.modTime = time.Now()
		return nil
	}
	if err := m.checkParent("open", path); err != nil {
		return err
	}
	m.nodes[path] = &fileNode{
		mode:    perm.Perm(),
		modTime: time.Now(),
		content: append([]byte(nil), data...),
	}
	return nil
}

// Chmod changes permission bits, following symlinks
func (m *MemoryFS) Chmod(name string, mode fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	path := normalizePath(name)
	if err := m.injected("chmod", path); err != nil {
		return err
	}
	_, node, err := m.resolve("chmod", path)
	if err != nil {
		return err
	}
	node.mode = node.mode.Type() | mode.Perm()
	return nil
}

// Rename moves oldpath to newpath, replacing a non-directory at newpath
func (m *MemoryFS) Rename(oldpath, newpath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	from, to := normalizePath(oldpath), normalizePath(newpath)
	if err := m.injected("rename", from); err != nil {
		return err
	}
	if err := m.injected("rename", to); err != nil {
		return err
	}
	node, ok := m.nodes[from]
	if !ok {
		return pathError("rename", from, fs.ErrNotExist)
	}
	if err := m.checkParent("rename", to); err != nil {
		return err
	}
	if existing, ok := m.nodes[to]; ok && existing.mode.IsDir() && !node.mode.IsDir() {
		return pathError("rename", to, syscall.EISDIR)
	}

	// Move the node and, for directories, everything below it
	moved := map[string]*fileNode{to: node}
	if node.mode.IsDir() {
		for p, n := range m.nodes {
			if strings.HasPrefix(p, from+"/") {
				moved[to+strings.TrimPrefix(p, from)] = n
				delete(m.nodes, p)
			}
		}
	}
	delete(m.nodes, from)
	for p, n := range moved {
		m.nodes[p] = n
	}
	return nil
}

// Mkdir creates a single directory whose parent must exist
func (m *MemoryFS) Mkdir(name string, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	path := normalizePath(name)
	if err := m.injected("mkdir", path); err != nil {
		return err
	}
	if _, ok := m.nodes[path]; ok {
		return pathError("mkdir", path, fs.ErrExist)
	}
	if err := m.checkParent("mkdir", path); err != nil {
		return err
	}
	m.nodes[path] = &fileNode{mode: fs.ModeDir | perm.Perm(), modTime: time.Now()}
	return nil
}

// Symlink creates newname as a symbolic link to oldname
func (m *MemoryFS) Symlink(oldname, newname string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	path := normalizePath(newname)
	if err := m.injected("symlink", path); err != nil {
		return err
	}
	if _, ok := m.nodes[path]; ok {
		return pathError("symlink", path, fs.ErrExist)
	}
	if err := m.checkParent("symlink", path); err != nil {
		return err
	}
	m.nodes[path] = &fileNode{mode: fs.ModeSymlink | 0777, modTime: time.Now(), linkDest: oldname}
	return nil
}

// Readlink returns the destination of a symbolic link
func (m *MemoryFS) Readlink(name string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	path := normalizePath(name)
	if err := m.injected("readlink", path); err != nil {
		return "", err
	}
	node, ok := m.nodes[path]
	if !ok {
		return "", pathError("readlink", path, fs.ErrNotExist)
	}
	if node.mode&fs.ModeSymlink == 0 {
		return "", pathError("readlink", path, syscall.EINVAL)
	}
	return node.linkDest, nil
}

// Remove removes a file, symlink or empty directory
func (m *MemoryFS) Remove(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	path := normalizePath(name)
	if err := m.injected("remove", path); err != nil {
		return err
	}
	node, ok := m.nodes[path]
	if !ok {
		return pathError("remove", path, fs.ErrNotExist)
	}
	if node.mode.IsDir() && m.hasChildren(path) {
		return pathError("remove", path, syscall.ENOTEMPTY)
	}
	delete(m.nodes, path)
	return nil
}

// MkdirAll creates a directory and all missing parents. Test setup only.
func (m *MemoryFS) MkdirAll(name string, perm fs.FileMode) {
	path := normalizePath(name)
	if path == "/" {
		return
	}
	m.MkdirAll(filepath.Dir(path), perm)

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.nodes[path]; !ok {
		m.nodes[path] = &fileNode{mode: fs.ModeDir | perm.Perm(), modTime: time.Now()}
	}
}

// AddFile creates a file and its parents. Test setup only.
func (m *MemoryFS) AddFile(name, content string, perm fs.FileMode) {
	path := normalizePath(name)
	m.MkdirAll(filepath.Dir(path), 0755)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.nodes[path] = &fileNode{mode: perm.Perm(), modTime: time.Now(), content: []byte(content)}
}

// AddSymlink creates a symlink and its parents. Test setup only.
func (m *MemoryFS) AddSymlink(dest, name string) {
	path := normalizePath(name)
	m.MkdirAll(filepath.Dir(path), 0755)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.nodes[path] = &fileNode{mode: fs.ModeSymlink | 0777, modTime: time.Now(), linkDest: dest}
}

// AddSpecial creates a named pipe, standing in for any node that is
// neither a file, a directory nor a symlink. Test setup only.
func (m *MemoryFS) AddSpecial(name string) {
	path := normalizePath(name)
	m.MkdirAll(filepath.Dir(path), 0755)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.nodes[path] = &fileNode{mode: fs.ModeNamedPipe | 0644, modTime: time.Now()}
}

// WithError configures the filesystem to return an error for a specific path
func (m *MemoryFS) WithError(path string, err error) *MemoryFS {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.errorPaths[normalizePath(path)] = err
	return m
}

// Paths returns every path in the filesystem, sorted
func (m *MemoryFS) Paths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	paths := make([]string, 0, len(m.nodes))
	for p := range m.nodes {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Writes returns how many WriteFile calls were made
func (m *MemoryFS) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writeCount
}

// newFileInfo snapshots node so later mutations do not leak into the result
func newFileInfo(node *fileNode, path string) *fileInfo {
	snapshot := *node
	return &fileInfo{node: &snapshot, name: filepath.Base(path)}
}

// fileInfo implements fs.FileInfo
type fileInfo struct {
	node *fileNode
	name string
}

func (fi *fileInfo) Name() string       { return fi.name }
func (fi *fileInfo) Size() int64        { return int64(len(fi.node.content)) }
func (fi *fileInfo) Mode() fs.FileMode  { return fi.node.mode }
func (fi *fileInfo) ModTime() time.Time { return fi.node.modTime }
func (fi *fileInfo) IsDir() bool        { return fi.node.mode.IsDir() }
func (fi *fileInfo) Sys() interface{}   { return nil }
