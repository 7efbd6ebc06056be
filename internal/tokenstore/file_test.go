package tokenstore

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileKVEncryptsAtRest(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "session.bin")

	kv, err := NewFileKV(path, "kiosk-secret")
	if err != nil {
		t.Fatal(err)
	}
	if err := kv.Set(ctx, map[string]string{KeyAccessToken: "super-secret-token"}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Contains(raw, []byte("super-secret-token")) {
		t.Fatal("token stored in plaintext")
	}

	reopened, _ := NewFileKV(path, "kiosk-secret")
	got, err := reopened.Get(ctx, KeyAccessToken)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got[KeyAccessToken] != "super-secret-token" {
		t.Fatalf("Get() = %v", got)
	}
}

func TestFileKVWrongSecret(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.bin")

	kv, _ := NewFileKV(path, "right")
	_ = kv.Set(ctx, map[string]string{KeyAccessToken: "a"})

	wrong, _ := NewFileKV(path, "wrong")
	if _, err := wrong.Get(ctx, KeyAccessToken); !errors.Is(err, ErrDecrypt) {
		t.Fatalf("Get() error = %v, want ErrDecrypt", err)
	}
	if err := wrong.Delete(ctx, KeyAccessToken); err != nil {
		t.Fatalf("Delete() must reset an unreadable store, got %v", err)
	}
	got, err := wrong.Get(ctx, KeyAccessToken)
	if err != nil || len(got) != 0 {
		t.Fatalf("Get() after reset = %v, %v", got, err)
	}
}

func TestFileKVMissingFileIsEmpty(t *testing.T) {
	kv, _ := NewFileKV(filepath.Join(t.TempDir(), "absent.json"), "")
	got, err := kv.Get(context.Background(), KeyUser)
	if err != nil || len(got) != 0 {
		t.Fatalf("Get() = %v, %v", got, err)
	}
}

func TestNewFileKVRequiresPath(t *testing.T) {
	if _, err := NewFileKV("", ""); err == nil {
		t.Fatal("expected error")
	}
}

func TestCorruptFileIsNoSessionAndRecoverable(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	kv, _ := NewFileKV(path, "")
	if _, err := kv.Get(ctx, KeyUser); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("Get() error = %v, want ErrCorrupt", err)
	}

	store := New(kv, nil)
	if _, err := store.Load(ctx); !errors.Is(err, ErrNoSession) {
		t.Fatalf("Load() error = %v, want ErrNoSession", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(ctx, sampleSession()); err != nil {
		t.Fatalf("Save() over a corrupt file error = %v", err)
	}
	got, err := store.Load(ctx)
	if err != nil || got.AccessToken != "access-1" {
		t.Fatalf("Load() after save = %+v, %v", got, err)
	}
}
