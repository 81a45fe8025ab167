package tokenstore

import (
	"encoding/json"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/felixgeelhaar/leasehold/internal/errors"
)

// DefaultFileName is the token file name inside the leasehold home directory.
const DefaultFileName = "auth.json"

// fileDocument is the on-disk layout. The token sits under a single
// well-known key, verbatim.
type fileDocument struct {
	Token string `json:"token"`
}

// FileStore persists the token as a small JSON document readable only by
// the current user.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a FileStore backed by path. The file and its parent
// directory are created on the first Set.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultPath returns ~/.leasehold/auth.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".leasehold", DefaultFileName), nil
}

// Path returns the backing file path.
func (f *FileStore) Path() string {
	return f.path
}

// Get reads the token. A missing file is an empty store.
func (f *FileStore) Get() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if stderrors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeStoreReadFailed, "failed to read token file: "+f.path, err)
	}
	if len(data) == 0 {
		return "", nil
	}

	var doc fileDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return "", errors.NewStoreCorruptError(f.path, err)
	}
	return doc.Token, nil
}

// Set writes the token atomically: a temp file in the same directory is
// written, synced and renamed over the target.
func (f *FileStore) Set(token string) error {
	if token == "" {
		return f.Clear()
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.NewStoreWriteError(f.path, err)
	}

	data, err := json.MarshalIndent(fileDocument{Token: token}, "", "  ")
	if err != nil {
		return errors.NewStoreWriteError(f.path, err)
	}

	tmp, err := os.CreateTemp(dir, ".auth-*.json")
	if err != nil {
		return errors.NewStoreWriteError(f.path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // gone after a successful rename

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return errors.NewStoreWriteError(f.path, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.NewStoreWriteError(f.path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.NewStoreWriteError(f.path, err)
	}
	if err := tmp.Close(); err != nil {
		return errors.NewStoreWriteError(f.path, err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return errors.NewStoreWriteError(f.path, err)
	}
	return nil
}

// Clear deletes the token file.
func (f *FileStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	err := os.Remove(f.path)
	if err == nil || stderrors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return errors.NewStoreWriteError(f.path, err)
}
