package file

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
)

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// Slot stores one ledger slot as a JSON file under a data directory.
type Slot struct {
	path string
}

// NewSlot constructs a slot for key under dir.
func NewSlot(dir, key string) (*Slot, error) {
	if dir == "" {
		return nil, errors.New("file slot: empty dir")
	}
	if key == "" {
		return nil, errors.New("file slot: empty key")
	}
	name := unsafeKeyChars.ReplaceAllString(key, "_") + ".json"
	return &Slot{path: filepath.Join(dir, name)}, nil
}

// Path returns the backing file path.
func (s *Slot) Path() string { return s.path }

// Read returns the file content, nil when the slot was never written.
func (s *Slot) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return data, err
}

// Write replaces the file atomically through a temp file and rename.
func (s *Slot) Write(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}
