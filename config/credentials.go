package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// CredentialMethod selects how API keys are stored on disk.
type CredentialMethod string

const (
	CredentialPlainText CredentialMethod = "plaintext"
	CredentialSealed    CredentialMethod = "sealed"
)

// Credential store keys, one per cloud provider.
const (
	CredentialGemini    = "gemini"
	CredentialAnthropic = "anthropic"
)

const (
	plainCredentialsFile  = "credentials.json"
	sealedCredentialsFile = "credentials.sealed"
)

// CredentialStore manages API credentials. Plaintext mode writes a 0600
// JSON file; sealed mode encrypts the same payload with a machine-local
// secretbox key (see encryption.go).
type CredentialStore struct {
	method      CredentialMethod
	credentials map[string]string
}

// NewCredentialStore creates a store using the given method. An empty
// method falls back to plaintext.
func NewCredentialStore(method CredentialMethod) *CredentialStore {
	if method == "" {
		method = CredentialPlainText
	}
	return &CredentialStore{
		method:      method,
		credentials: make(map[string]string),
	}
}

// Get returns the stored credential for key, or "".
func (c *CredentialStore) Get(key string) string {
	return c.credentials[key]
}

// Set stores a credential in memory; Save persists it.
func (c *CredentialStore) Set(key, value string) {
	c.credentials[key] = value
}

// Load reads credentials from dataDir. A missing file is not an error.
func (c *CredentialStore) Load(dataDir string) error {
	switch c.method {
	case CredentialPlainText:
		return c.loadPlain(dataDir)
	case CredentialSealed:
		return c.loadSealed(dataDir)
	default:
		return fmt.Errorf("unknown credential method: %s", c.method)
	}
}

// Save writes credentials to dataDir using the configured method.
func (c *CredentialStore) Save(dataDir string) error {
	data, err := json.Marshal(c.credentials)
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	switch c.method {
	case CredentialPlainText:
		path := filepath.Join(dataDir, plainCredentialsFile)
		if err := os.WriteFile(path, data, 0600); err != nil {
			return fmt.Errorf("failed to write credentials: %w", err)
		}
		return nil

	case CredentialSealed:
		key, err := loadOrCreateSealKey(dataDir)
		if err != nil {
			return err
		}
		sealed, err := seal(data, key)
		if err != nil {
			return err
		}
		path := filepath.Join(dataDir, sealedCredentialsFile)
		if err := os.WriteFile(path, sealed, 0600); err != nil {
			return fmt.Errorf("failed to write sealed credentials: %w", err)
		}
		return nil

	default:
		return fmt.Errorf("unknown credential method: %s", c.method)
	}
}

func (c *CredentialStore) loadPlain(dataDir string) error {
	path := filepath.Join(dataDir, plainCredentialsFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read credentials: %w", err)
	}

	return c.decode(data)
}

func (c *CredentialStore) loadSealed(dataDir string) error {
	path := filepath.Join(dataDir, sealedCredentialsFile)
	sealed, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read sealed credentials: %w", err)
	}

	key, err := loadOrCreateSealKey(dataDir)
	if err != nil {
		return err
	}
	data, err := open(sealed, key)
	if err != nil {
		return err
	}
	return c.decode(data)
}

func (c *CredentialStore) decode(data []byte) error {
	creds := make(map[string]string)
	if err := json.Unmarshal(data, &creds); err != nil {
		return fmt.Errorf("failed to parse credentials: %w", err)
	}
	c.credentials = creds
	return nil
}
