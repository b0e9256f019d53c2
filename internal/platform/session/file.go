package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore persists the session as a small JSON document so the CLI keeps
// its login between invocations. Every mutation rewrites the file atomically
// (write to a temp file in the same directory, then rename) and the file is
// created with 0600 permissions since it holds a bearer token.
type FileStore struct {
	mu    sync.Mutex
	path  string
	items map[string]string
}

// NewFileStore opens (or initialises) a file-backed session store at path.
func NewFileStore(path string) (*FileStore, error) {
	fs := &FileStore{path: path, items: make(map[string]string)}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return fs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}
	if len(data) == 0 {
		return fs, nil
	}
	if err := json.Unmarshal(data, &fs.items); err != nil {
		// A corrupt session file is equivalent to no session.
		fs.items = make(map[string]string)
	}
	return fs, nil
}

func (f *FileStore) Get(key string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.items[key]
}

func (f *FileStore) Set(key, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[key] = value
	f.flushLocked()
}

func (f *FileStore) Delete(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, key)
	f.flushLocked()
}

func (f *FileStore) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = make(map[string]string)
	f.flushLocked()
}

// flushLocked writes the current items to disk. Callers must hold f.mu.
// Write errors are swallowed: losing a session file degrades to "not logged
// in", which every consumer already handles.
func (f *FileStore) flushLocked() {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return
	}

	data, err := json.MarshalIndent(f.items, "", "  ")
	if err != nil {
		return
	}

	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return
	}
	_ = os.Rename(tmpName, f.path)
}
