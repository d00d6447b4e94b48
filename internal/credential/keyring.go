package credential

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/99designs/keyring"
)

const serviceName = "planit"

// APITokenKey is the keyring entry holding the REST bearer token.
const APITokenKey = "api-token"

// APITokenEnv overrides the keyring when set.
const APITokenEnv = "PLANIT_API_TOKEN"

// Vault reads and writes secrets in the system keyring.
type Vault struct {
	open func() (keyring.Keyring, error)
}

// NewVault returns a vault backed by the OS keyring, falling back to an
// encrypted file under dataDir/credentials.
func NewVault(dataDir string) *Vault {
	fileDir := filepath.Join(dataDir, "credentials")
	return &Vault{open: func() (keyring.Keyring, error) {
		ring, err := keyring.Open(keyring.Config{
			ServiceName: serviceName,
			AllowedBackends: []keyring.BackendType{
				keyring.KeychainBackend,
				keyring.SecretServiceBackend,
				keyring.WinCredBackend,
				keyring.PassBackend,
				keyring.FileBackend,
			},
			FileDir:                  fileDir,
			FilePasswordFunc:         keyring.FixedStringPrompt("planit-file-key"),
			KeychainTrustApplication: true,
		})
		if err != nil {
			return nil, fmt.Errorf("opening keyring: %w", err)
		}
		return ring, nil
	}}
}

// NewVaultWithKeyring wraps an already opened keyring.
func NewVaultWithKeyring(ring keyring.Keyring) *Vault {
	return &Vault{open: func() (keyring.Keyring, error) { return ring, nil }}
}

// Get retrieves a credential value by key from the keyring.
func (v *Vault) Get(key string) (string, error) {
	ring, err := v.open()
	if err != nil {
		return "", err
	}

	item, err := ring.Get(key)
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}

	return string(item.Data), nil
}

// Set stores a credential value by key in the keyring.
func (v *Vault) Set(key string, value string) error {
	ring, err := v.open()
	if err != nil {
		return err
	}

	err = ring.Set(keyring.Item{
		Key:   key,
		Data:  []byte(value),
		Label: serviceName + " " + key,
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}

	return nil
}

// Delete removes a credential by key from the keyring.
func (v *Vault) Delete(key string) error {
	ring, err := v.open()
	if err != nil {
		return err
	}

	err = ring.Remove(key)
	if err != nil {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}

	return nil
}

// APIToken resolves the bearer token: the configured value, then the
// PLANIT_API_TOKEN variable, then the keyring. An empty result disables
// authentication.
func (v *Vault) APIToken(configured string) (string, error) {
	if tok := strings.TrimSpace(configured); tok != "" {
		return tok, nil
	}
	if tok := strings.TrimSpace(os.Getenv(APITokenEnv)); tok != "" {
		return tok, nil
	}
	tok, err := v.Get(APITokenKey)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(tok), nil
}
