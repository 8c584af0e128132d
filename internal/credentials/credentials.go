// Package credentials locates the Quay bearer token.
//
// Sources are tried in order: the QUAYTOKEN environment variable, a token
// file (by default ~/.quaytoken), then the system keyring entry written by
// `quay-pruner auth`.
package credentials

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/99designs/keyring"
)

// EnvVar is the environment variable holding the Quay token.
const EnvVar = "QUAYTOKEN"

// Keyring identifiers for the stored token.
const (
	ServiceName = "quay-pruner"
	KeyName     = "quay-token"
)

// ErrNoCredential is returned when no source provides a token.
var ErrNoCredential = errors.New("no quay token found")

// Source identifies where a token came from.
type Source string

// Token sources.
const (
	SourceEnv     Source = "env"
	SourceFile    Source = "file"
	SourceKeyring Source = "keyring"
)

// KeyringOpener opens the keyring on demand, so machines without a
// keyring backend only fail when the keyring is actually needed.
type KeyringOpener func() (keyring.Keyring, error)

// Resolver looks up the token.
type Resolver struct {
	// Getenv reads environment variables. Defaults to os.Getenv.
	Getenv func(string) string

	// File is the token file path. Skipped when empty.
	File string

	// OpenKeyring opens the keyring. The keyring is skipped when nil.
	OpenKeyring KeyringOpener
}

// Token returns the first token found and its source.
func (r *Resolver) Token() (string, Source, error) {
	getenv := r.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	if token := strings.TrimSpace(getenv(EnvVar)); token != "" {
		return token, SourceEnv, nil
	}

	if r.File != "" {
		data, err := os.ReadFile(r.File)
		switch {
		case err == nil:
			if token := strings.TrimSpace(string(data)); token != "" {
				return token, SourceFile, nil
			}
		case !errors.Is(err, os.ErrNotExist):
			return "", "", fmt.Errorf("read token file: %w", err)
		}
	}

	if r.OpenKeyring != nil {
		ring, err := r.OpenKeyring()
		if err != nil {
			return "", "", fmt.Errorf("%w: open keyring: %w", ErrNoCredential, err)
		}
		item, err := ring.Get(KeyName)
		if err == nil && len(item.Data) > 0 {
			return strings.TrimSpace(string(item.Data)), SourceKeyring, nil
		}
		if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
			return "", "", fmt.Errorf("read keyring: %w", err)
		}
	}

	return "", "", fmt.Errorf("%w: set %s or create %s", ErrNoCredential, EnvVar, r.File)
}

// Store saves token in the keyring.
func Store(ring keyring.Keyring, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("empty token")
	}
	return ring.Set(keyring.Item{
		Key:         KeyName,
		Data:        []byte(token),
		Label:       "quay-pruner - Quay token",
		Description: "Bearer token for the Quay tag API",
	})
}

// OpenSystemKeyring opens the platform keyring used for the stored token.
func OpenSystemKeyring() (keyring.Keyring, error) {
	return keyring.Open(keyring.Config{
		ServiceName:              ServiceName,
		KeychainTrustApplication: true,
		LibSecretCollectionName:  "login",
		KWalletAppID:             ServiceName,
		KWalletFolder:            ServiceName,
	})
}
