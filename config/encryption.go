package config

import (
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/nacl/secretbox"
)

const sealKeyFile = "credentials.key"

// loadOrCreateSealKey returns the machine-local secretbox key, generating
// one on first use. The key file is user-readable only.
func loadOrCreateSealKey(dataDir string) (*[32]byte, error) {
	path := filepath.Join(dataDir, sealKeyFile)

	var key [32]byte
	data, err := os.ReadFile(path)
	if err == nil {
		if len(data) != len(key) {
			return nil, fmt.Errorf("credential key file is corrupt: %s", path)
		}
		copy(key[:], data)
		return &key, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read credential key: %w", err)
	}

	if _, err := rand.Read(key[:]); err != nil {
		return nil, fmt.Errorf("failed to generate credential key: %w", err)
	}
	if err := os.WriteFile(path, key[:], 0600); err != nil {
		return nil, fmt.Errorf("failed to write credential key: %w", err)
	}
	return &key, nil
}

// seal encrypts data with a random nonce prepended to the ciphertext.
func seal(data []byte, key *[32]byte) ([]byte, error) {
	var nonce [24]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return secretbox.Seal(nonce[:], data, &nonce, key), nil
}

// open decrypts data produced by seal.
func open(sealed []byte, key *[32]byte) ([]byte, error) {
	var nonce [24]byte
	if len(sealed) < len(nonce) {
		return nil, fmt.Errorf("sealed credentials are corrupt")
	}
	copy(nonce[:], sealed[:len(nonce)])

	data, ok := secretbox.Open(nil, sealed[len(nonce):], &nonce, key)
	if !ok {
		return nil, fmt.Errorf("failed to decrypt credentials")
	}
	return data, nil
}
