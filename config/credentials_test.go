package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCredentialStorePlainTextRoundTrip(t *testing.T) {
	dir := t.TempDir()

	store := NewCredentialStore(CredentialPlainText)
	store.Set(CredentialGemini, "gem-key")
	store.Set(CredentialAnthropic, "ant-key")
	if err := store.Save(dir); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded := NewCredentialStore(CredentialPlainText)
	if err := loaded.Load(dir); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := loaded.Get(CredentialGemini); got != "gem-key" {
		t.Errorf("Get(gemini) = %q, want %q", got, "gem-key")
	}
	if got := loaded.Get(CredentialAnthropic); got != "ant-key" {
		t.Errorf("Get(anthropic) = %q, want %q", got, "ant-key")
	}
}

func TestCredentialStoreMissingFile(t *testing.T) {
	store := NewCredentialStore(CredentialPlainText)
	if err := store.Load(t.TempDir()); err != nil {
		t.Errorf("Load() with no file = %v, want nil", err)
	}
	if got := store.Get(CredentialGemini); got != "" {
		t.Errorf("Get() = %q, want empty", got)
	}
}

func TestCredentialStoreDefaultsToPlainText(t *testing.T) {
	dir := t.TempDir()

	store := NewCredentialStore("")
	store.Set(CredentialGemini, "k")
	if err := store.Save(dir); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if !FileExists(filepath.Join(dir, "credentials.json")) {
		t.Error("empty method did not write the plaintext file")
	}
}

func TestCredentialStoreSealedRoundTrip(t *testing.T) {
	dir := t.TempDir()

	store := NewCredentialStore(CredentialSealed)
	store.Set(CredentialGemini, "super-secret")
	if err := store.Save(dir); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// The secret must not appear in the sealed file.
	sealed, err := os.ReadFile(filepath.Join(dir, "credentials.sealed"))
	if err != nil {
		t.Fatalf("reading sealed file: %v", err)
	}
	if strings.Contains(string(sealed), "super-secret") {
		t.Error("sealed file contains the credential in the clear")
	}

	loaded := NewCredentialStore(CredentialSealed)
	if err := loaded.Load(dir); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := loaded.Get(CredentialGemini); got != "super-secret" {
		t.Errorf("Get() = %q, want %q", got, "super-secret")
	}
}

func TestCredentialStoreSealedTamperDetection(t *testing.T) {
	dir := t.TempDir()

	store := NewCredentialStore(CredentialSealed)
	store.Set(CredentialGemini, "secret")
	if err := store.Save(dir); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	path := filepath.Join(dir, "credentials.sealed")
	sealed, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading sealed file: %v", err)
	}
	sealed[len(sealed)-1] ^= 0xff
	if err := os.WriteFile(path, sealed, 0600); err != nil {
		t.Fatalf("writing tampered file: %v", err)
	}

	loaded := NewCredentialStore(CredentialSealed)
	if err := loaded.Load(dir); err == nil {
		t.Error("Load() of tampered file succeeded, want error")
	}
}

func TestSealKeyPersists(t *testing.T) {
	dir := t.TempDir()

	first, err := loadOrCreateSealKey(dir)
	if err != nil {
		t.Fatalf("loadOrCreateSealKey() error = %v", err)
	}
	second, err := loadOrCreateSealKey(dir)
	if err != nil {
		t.Fatalf("loadOrCreateSealKey() error = %v", err)
	}
	if *first != *second {
		t.Error("seal key changed between loads")
	}
}
