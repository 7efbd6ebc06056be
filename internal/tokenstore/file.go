package tokenstore

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

var encryptedMagic = []byte("TPS1")

// ErrDecrypt is returned when an encrypted store cannot be opened with the configured secret.
var ErrDecrypt = errors.New("tokenstore: cannot decrypt store file")

// ErrCorrupt is returned when the store file is not a JSON document.
var ErrCorrupt = errors.New("tokenstore: corrupt store file")

// FileKV persists values as one JSON document, optionally sealed with XChaCha20-Poly1305.
type FileKV struct {
	mu   sync.Mutex
	path string
	key  []byte
}

// NewFileKV stores values at path. A non-empty secret enables encryption at rest.
func NewFileKV(path, secret string) (*FileKV, error) {
	if path == "" {
		return nil, errors.New("tokenstore: file path is required")
	}
	kv := &FileKV{path: path}
	if secret != "" {
		key := make([]byte, chacha20poly1305.KeySize)
		if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte("tablepos token store")), key); err != nil {
			return nil, fmt.Errorf("derive store key: %w", err)
		}
		kv.key = key
	}
	return kv, nil
}

func (f *FileKV) Get(_ context.Context, keys ...string) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all, err := f.read()
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		if v, ok := all[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

func (f *FileKV) Set(_ context.Context, values map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	all, err := f.read()
	if err != nil {
		if !unreadable(err) {
			return err
		}
		all = map[string]string{}
	}
	for k, v := range values {
		all[k] = v
	}
	return f.write(all)
}

func (f *FileKV) Delete(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	all, err := f.read()
	if err != nil {
		if unreadable(err) {
			return f.write(map[string]string{})
		}
		return err
	}
	for _, k := range keys {
		delete(all, k)
	}
	return f.write(all)
}

func (f *FileKV) read() (map[string]string, error) {
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read store file: %w", err)
	}
	if len(raw) == 0 {
		return map[string]string{}, nil
	}
	if f.key != nil {
		if raw, err = f.open(raw); err != nil {
			return nil, err
		}
	}
	values := map[string]string{}
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return values, nil
}

// unreadable reports whether the file exists but cannot be used, so writes start over.
func unreadable(err error) bool {
	return errors.Is(err, ErrDecrypt) || errors.Is(err, ErrCorrupt)
}

// write replaces the file atomically through a temp file and rename.
func (f *FileKV) write(values map[string]string) error {
	raw, err := json.Marshal(values)
	if err != nil {
		return err
	}
	if f.key != nil {
		if raw, err = f.seal(raw); err != nil {
			return err
		}
	}
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".tablepos-*")
	if err != nil {
		return fmt.Errorf("create temp store file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write store file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.path)
}

func (f *FileKV) seal(plain []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(f.key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	out := append([]byte{}, encryptedMagic...)
	out = append(out, nonce...)
	return aead.Seal(out, nonce, plain, encryptedMagic), nil
}

func (f *FileKV) open(sealed []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(f.key)
	if err != nil {
		return nil, err
	}
	if !bytes.HasPrefix(sealed, encryptedMagic) || len(sealed) < len(encryptedMagic)+aead.NonceSize() {
		return nil, ErrDecrypt
	}
	body := sealed[len(encryptedMagic):]
	nonce, ciphertext := body[:aead.NonceSize()], body[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, ciphertext, encryptedMagic)
	if err != nil {
		return nil, ErrDecrypt
	}
	return plain, nil
}
