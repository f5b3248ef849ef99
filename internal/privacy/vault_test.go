package privacy_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/JaimeStill/chronicle/internal/privacy"
	"github.com/JaimeStill/chronicle/pkg/lifecycle"
	"github.com/JaimeStill/chronicle/pkg/storage"
)

// memStore is an in-memory storage.System used to exercise the vault
// without a blob service.
type memStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{blobs: make(map[string][]byte)}
}

func (m *memStore) Start(lc *lifecycle.Coordinator) error { return nil }

func (m *memStore) Upload(ctx context.Context, key string, reader io.Reader, contentType string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = data
	return nil
}

func (m *memStore) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.blobs[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(bytes.Clone(data))), nil
}

func (m *memStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blobs[key]; !ok {
		return storage.ErrNotFound
	}
	delete(m.blobs, key)
	return nil
}

func (m *memStore) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.blobs[key]
	return ok, nil
}

func (m *memStore) List(ctx context.Context, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for k := range m.blobs {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openVault(t *testing.T, store storage.System, passphrase string) privacy.Vault {
	t.Helper()

	v := privacy.NewVault(store, &fakeLedger{}, passphrase, testLogger())
	if err := v.Open(context.Background()); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return v
}

func TestVaultOpenInitializes(t *testing.T) {
	store := newMemStore()
	openVault(t, store, "first light")

	for _, key := range []string{"salt", "sentinel"} {
		ok, err := store.Exists(context.Background(), key)
		if err != nil {
			t.Fatalf("Exists(%q) error = %v", key, err)
		}
		if !ok {
			t.Errorf("Open() did not persist %q", key)
		}
	}
}

func TestVaultOpenWithoutPassphrase(t *testing.T) {
	v := privacy.NewVault(newMemStore(), &fakeLedger{}, "", testLogger())
	if err := v.Open(context.Background()); !errors.Is(err, privacy.ErrVaultClosed) {
		t.Errorf("Open() error = %v, want ErrVaultClosed", err)
	}
}

func TestVaultReopenSamePassphrase(t *testing.T) {
	store := newMemStore()
	v := openVault(t, store, "stable")
	if err := v.Store(context.Background(), "token", []byte("abc123")); err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	reopened := openVault(t, store, "stable")
	got, err := reopened.Load(context.Background(), "token")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !bytes.Equal(got, []byte("abc123")) {
		t.Errorf("Load() = %q, want %q", got, "abc123")
	}
}

func TestVaultOpenWrongPassphrase(t *testing.T) {
	store := newMemStore()
	openVault(t, store, "original")

	v := privacy.NewVault(store, &fakeLedger{}, "guess", testLogger())
	if err := v.Open(context.Background()); !errors.Is(err, privacy.ErrIntegrity) {
		t.Errorf("Open() error = %v, want ErrIntegrity", err)
	}
}

func TestVaultUseBeforeOpen(t *testing.T) {
	v := privacy.NewVault(newMemStore(), &fakeLedger{}, "unopened", testLogger())
	ctx := context.Background()

	if err := v.Store(ctx, "key", []byte("value")); !errors.Is(err, privacy.ErrVaultClosed) {
		t.Errorf("Store() error = %v, want ErrVaultClosed", err)
	}
	if _, err := v.Load(ctx, "key"); !errors.Is(err, privacy.ErrVaultClosed) {
		t.Errorf("Load() error = %v, want ErrVaultClosed", err)
	}
	if _, err := v.Keys(ctx); !errors.Is(err, privacy.ErrVaultClosed) {
		t.Errorf("Keys() error = %v, want ErrVaultClosed", err)
	}
	if err := v.Delete(ctx, "key"); !errors.Is(err, privacy.ErrVaultClosed) {
		t.Errorf("Delete() error = %v, want ErrVaultClosed", err)
	}
	if _, err := v.Purge(ctx); !errors.Is(err, privacy.ErrVaultClosed) {
		t.Errorf("Purge() error = %v, want ErrVaultClosed", err)
	}
}

func TestVaultStoreEncryptsAtRest(t *testing.T) {
	store := newMemStore()
	v := openVault(t, store, "at rest")

	plain := []byte("refresh-token-value")
	if err := v.Store(context.Background(), "calendar/token", plain); err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	store.mu.Lock()
	sealed := store.blobs["secrets/calendar/token"]
	store.mu.Unlock()

	if len(sealed) == 0 {
		t.Fatal("secret was not persisted")
	}
	if bytes.Contains(sealed, plain) {
		t.Error("persisted blob contains plaintext")
	}
}

func TestVaultLoadMissing(t *testing.T) {
	v := openVault(t, newMemStore(), "missing")
	if _, err := v.Load(context.Background(), "absent"); !errors.Is(err, privacy.ErrNotFound) {
		t.Errorf("Load() error = %v, want ErrNotFound", err)
	}
}

func TestVaultInvalidKeys(t *testing.T) {
	v := openVault(t, newMemStore(), "keys")
	ctx := context.Background()

	for _, key := range []string{"", "../salt", "a/../b"} {
		if err := v.Store(ctx, key, []byte("x")); !errors.Is(err, privacy.ErrStorage) {
			t.Errorf("Store(%q) error = %v, want ErrStorage", key, err)
		}
		if _, err := v.Load(ctx, key); !errors.Is(err, privacy.ErrStorage) {
			t.Errorf("Load(%q) error = %v, want ErrStorage", key, err)
		}
		if err := v.Delete(ctx, key); !errors.Is(err, privacy.ErrStorage) {
			t.Errorf("Delete(%q) error = %v, want ErrStorage", key, err)
		}
	}
}

func TestVaultKeys(t *testing.T) {
	v := openVault(t, newMemStore(), "listing")
	ctx := context.Background()

	for _, key := range []string{"calendar/token", "teams/token", "export/signing"} {
		if err := v.Store(ctx, key, []byte(key)); err != nil {
			t.Fatalf("Store(%q) error = %v", key, err)
		}
	}

	keys, err := v.Keys(ctx)
	if err != nil {
		t.Fatalf("Keys() error = %v", err)
	}

	want := []string{"calendar/token", "export/signing", "teams/token"}
	if !slices.Equal(keys, want) {
		t.Errorf("Keys() = %v, want %v", keys, want)
	}
}

func TestVaultDelete(t *testing.T) {
	v := openVault(t, newMemStore(), "delete")
	ctx := context.Background()

	if err := v.Store(ctx, "token", []byte("x")); err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	if err := v.Delete(ctx, "token"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := v.Load(ctx, "token"); !errors.Is(err, privacy.ErrNotFound) {
		t.Errorf("Load() after delete error = %v, want ErrNotFound", err)
	}
	if err := v.Delete(ctx, "token"); !errors.Is(err, privacy.ErrNotFound) {
		t.Errorf("Delete() missing error = %v, want ErrNotFound", err)
	}
}

func TestVaultPurge(t *testing.T) {
	store := newMemStore()
	v := openVault(t, store, "purge")
	ctx := context.Background()

	for _, key := range []string{"a", "b", "c"} {
		if err := v.Store(ctx, key, []byte(key)); err != nil {
			t.Fatalf("Store(%q) error = %v", key, err)
		}
	}

	removed, err := v.Purge(ctx)
	if err != nil {
		t.Fatalf("Purge() error = %v", err)
	}
	if removed != 3 {
		t.Errorf("Purge() = %d, want 3", removed)
	}

	store.mu.Lock()
	remaining := len(store.blobs)
	store.mu.Unlock()
	if remaining != 0 {
		t.Errorf("blobs after purge = %d, want 0", remaining)
	}

	// Purging closes the vault; further use requires a fresh Open.
	if _, err := v.Keys(ctx); !errors.Is(err, privacy.ErrVaultClosed) {
		t.Errorf("Keys() after purge error = %v, want ErrVaultClosed", err)
	}

	// Reopening reinitializes with fresh key material.
	reopened := openVault(t, store, "purge")
	keys, err := reopened.Keys(ctx)
	if err != nil {
		t.Fatalf("Keys() error = %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("Keys() after reopen = %v, want empty", keys)
	}
}

func TestVaultAuditsSecretAccess(t *testing.T) {
	ledger := &fakeLedger{}
	v := privacy.NewVault(newMemStore(), ledger, "audited", testLogger())
	ctx := context.Background()

	if err := v.Open(ctx); err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if err := v.Store(ctx, "calendar/token", []byte("tok")); err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	if _, err := v.Load(ctx, "calendar/token"); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := v.Delete(ctx, "calendar/token"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	ledger.mu.Lock()
	defer ledger.mu.Unlock()

	if len(ledger.async) != 3 {
		t.Fatalf("recorded actions = %v, want 3 entries", ledger.async)
	}
	for i, action := range ledger.async {
		if action != privacy.ActionDataAccess {
			t.Errorf("action[%d] = %q, want %q", i, action, privacy.ActionDataAccess)
		}
	}
	for i, op := range []string{"store", "load", "delete"} {
		if ledger.details[i]["operation"] != op {
			t.Errorf("details[%d] operation = %v, want %q", i, ledger.details[i]["operation"], op)
		}
		if ledger.details[i]["key"] != "calendar/token" {
			t.Errorf("details[%d] key = %v", i, ledger.details[i]["key"])
		}
	}
}
