package privacy

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/JaimeStill/chronicle/pkg/storage"
)

const (
	saltKey      = "salt"
	sentinelKey  = "sentinel"
	secretPrefix = "secrets/"

	vaultContentType = "application/octet-stream"
)

// sentinelPlain is the known plaintext sealed into the sentinel blob. A
// vault that cannot open its own sentinel is unreadable: wrong passphrase
// or corrupted material. Callers treat that as fatal rather than running
// with secrets they cannot decrypt.
var sentinelPlain = []byte("chronicle.vault.v1")

// Vault is an encrypted secret store layered over blob storage. All values
// are sealed with a key derived from the configured passphrase; the
// passphrase itself is never persisted.
type Vault interface {
	// Open derives the encryption key and verifies the vault is readable.
	// A new vault is initialized in place. Returns ErrIntegrity when
	// existing material cannot be decrypted.
	Open(ctx context.Context) error

	Store(ctx context.Context, key string, value []byte) error
	Load(ctx context.Context, key string) ([]byte, error)
	Keys(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, key string) error

	// Purge removes every secret plus the salt and sentinel, closes the
	// vault, and returns the number of secrets deleted. A subsequent Open
	// reinitializes the vault with fresh key material.
	Purge(ctx context.Context) (int, error)
}

type vault struct {
	store      storage.System
	ledger     Ledger
	passphrase string
	logger     *slog.Logger

	mu     sync.Mutex
	key    []byte
	locks  map[string]*sync.Mutex
	opened bool
}

// NewVault creates a vault over the given blob store. Secret access is
// recorded against the ledger. The vault is not usable until Open succeeds.
func NewVault(store storage.System, ledger Ledger, passphrase string, logger *slog.Logger) Vault {
	return &vault{
		store:      store,
		ledger:     ledger,
		passphrase: passphrase,
		locks:      make(map[string]*sync.Mutex),
		logger:     logger.With("system", "vault"),
	}
}

func (v *vault) Open(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.opened {
		return nil
	}
	if v.passphrase == "" {
		return fmt.Errorf("%w: passphrase not configured", ErrVaultClosed)
	}

	salt, err := v.loadOrCreateSalt(ctx)
	if err != nil {
		return err
	}

	v.key = DeriveKey(salt, v.passphrase)

	if err := v.checkSentinel(ctx); err != nil {
		return err
	}

	v.opened = true
	v.logger.Info("vault opened")
	return nil
}

func (v *vault) Store(ctx context.Context, key string, value []byte) error {
	ek, err := v.encryptionKey()
	if err != nil {
		return err
	}
	if err := validateSecretKey(key); err != nil {
		return err
	}

	sealed, err := Seal(ek, value)
	if err != nil {
		return fmt.Errorf("%w: seal %s: %w", ErrStorage, key, err)
	}

	lock := v.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	if err := v.store.Upload(ctx, secretPrefix+key, bytes.NewReader(sealed), vaultContentType); err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}

	v.audit("store", key)
	return nil
}

func (v *vault) Load(ctx context.Context, key string) ([]byte, error) {
	ek, err := v.encryptionKey()
	if err != nil {
		return nil, err
	}
	if err := validateSecretKey(key); err != nil {
		return nil, err
	}

	sealed, err := v.download(ctx, secretPrefix+key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	value, err := Open(ek, sealed)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", key, err)
	}

	v.audit("load", key)
	return value, nil
}

func (v *vault) Keys(ctx context.Context) ([]string, error) {
	if _, err := v.encryptionKey(); err != nil {
		return nil, err
	}

	blobs, err := v.store.List(ctx, secretPrefix)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	keys := make([]string, 0, len(blobs))
	for _, b := range blobs {
		keys = append(keys, strings.TrimPrefix(b, secretPrefix))
	}

	return keys, nil
}

func (v *vault) Delete(ctx context.Context, key string) error {
	if _, err := v.encryptionKey(); err != nil {
		return err
	}
	if err := validateSecretKey(key); err != nil {
		return err
	}

	lock := v.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	if err := v.store.Delete(ctx, secretPrefix+key); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}

	v.audit("delete", key)
	return nil
}

func (v *vault) Purge(ctx context.Context) (int, error) {
	keys, err := v.Keys(ctx)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, key := range keys {
		if err := v.store.Delete(ctx, secretPrefix+key); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				continue
			}
			return removed, fmt.Errorf("%w: %w", ErrStorage, err)
		}
		removed++
	}

	for _, key := range []string{sentinelKey, saltKey} {
		if err := v.store.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return removed, fmt.Errorf("%w: %w", ErrStorage, err)
		}
	}

	v.mu.Lock()
	v.key = nil
	v.opened = false
	v.mu.Unlock()

	v.logger.Info("vault purged", "secrets", removed)
	return removed, nil
}

func (v *vault) audit(operation, key string) {
	v.ledger.Record(ActionDataAccess, "vault", map[string]any{
		"operation": operation,
		"key":       key,
	})
}

func (v *vault) loadOrCreateSalt(ctx context.Context) ([]byte, error) {
	salt, err := v.download(ctx, saltKey)
	if err == nil {
		if len(salt) != saltSize {
			return nil, fmt.Errorf("%w: salt is malformed", ErrIntegrity)
		}
		return salt, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	salt, err = NewSalt()
	if err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}

	if err := v.store.Upload(ctx, saltKey, bytes.NewReader(salt), vaultContentType); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	return salt, nil
}

func (v *vault) checkSentinel(ctx context.Context) error {
	sealed, err := v.download(ctx, sentinelKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%w: %w", ErrStorage, err)
		}

		sealed, err = Seal(v.key, sentinelPlain)
		if err != nil {
			return fmt.Errorf("seal sentinel: %w", err)
		}
		if err := v.store.Upload(ctx, sentinelKey, bytes.NewReader(sealed), vaultContentType); err != nil {
			return fmt.Errorf("%w: %w", ErrStorage, err)
		}
		return nil
	}

	plain, err := Open(v.key, sealed)
	if err != nil || !bytes.Equal(plain, sentinelPlain) {
		return fmt.Errorf("%w: sentinel verification failed", ErrIntegrity)
	}

	return nil
}

func (v *vault) encryptionKey() ([]byte, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.opened {
		return nil, ErrVaultClosed
	}
	return v.key, nil
}

func (v *vault) keyLock(key string) *sync.Mutex {
	v.mu.Lock()
	defer v.mu.Unlock()

	lock, ok := v.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		v.locks[key] = lock
	}
	return lock
}

func (v *vault) download(ctx context.Context, key string) ([]byte, error) {
	reader, err := v.store.Download(ctx, key)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	return io.ReadAll(reader)
}

func validateSecretKey(key string) error {
	if key == "" || strings.Contains(key, "..") {
		return fmt.Errorf("%w: invalid secret key %q", ErrStorage, key)
	}
	return nil
}
