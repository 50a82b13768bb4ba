package cartclient

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// FileStorage persists mirrored state as one JSON object per key, the way the
// storefront keeps cartItems and shippingInfo in browser local storage.
type FileStorage struct {
	Path string
}

func NewFileStorage(path string) *FileStorage {
	return &FileStorage{Path: path}
}

func (f *FileStorage) load() (map[string]json.RawMessage, error) {
	b, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, err
	}
	m := map[string]json.RawMessage{}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// Set stores v under key, creating the file on first write.
func (f *FileStorage) Set(key string, v any) error {
	m, err := f.load()
	if err != nil {
		return err
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m[key] = raw
	out, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(f.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(f.Path, out, 0o600)
}

// Get decodes the value stored under key into v. A missing key leaves v
// untouched and returns false.
func (f *FileStorage) Get(key string, v any) (bool, error) {
	m, err := f.load()
	if err != nil {
		return false, err
	}
	raw, ok := m[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, v)
}
