package narration

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Workspace hands out index-qualified temp paths inside the shared work
// directory and removes them on Cleanup. Stale files from an earlier run
// with the same index are overwritten.
type Workspace struct {
	dir   string
	mu    sync.Mutex
	files []string
}

// NewWorkspace creates dir if absent
func NewWorkspace(dir string) (*Workspace, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create work dir %s: %w", dir, err)
	}
	return &Workspace{dir: dir}, nil
}

// Dir returns the work directory
func (w *Workspace) Dir() string {
	return w.dir
}

// ClipPath returns the tracked temp path for caption index
func (w *Workspace) ClipPath(index int) string {
	path := filepath.Join(w.dir, fmt.Sprintf("temp_tts_%d.wav", index))
	w.Track(path)
	return path
}

// Track registers an extra file for removal on Cleanup
func (w *Workspace) Track(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.files = append(w.files, path)
}

// Files returns the tracked paths
func (w *Workspace) Files() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, len(w.files))
	copy(out, w.files)
	return out
}

// Cleanup removes every tracked file. Files that were never written are
// skipped; other failures are joined into the returned error.
func (w *Workspace) Cleanup() error {
	w.mu.Lock()
	files := w.files
	w.files = nil
	w.mu.Unlock()

	var errs []error
	for _, f := range files {
		if err := os.Remove(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
