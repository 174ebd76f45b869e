package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// SystemConfig is the machine-level settings file: it only records where
// the user's data directory lives.
type SystemConfig struct {
	DataDirectory string `toml:"data_directory"`
}

// RuntimeConfig configures the on-device model runtime.
type RuntimeConfig struct {
	Host  string `toml:"host"`
	Model string `toml:"model"`
}

// ServerConfig configures the self-hosted chat server.
type ServerConfig struct {
	URL    string `toml:"url"`
	Model  string `toml:"model"`
	Stream bool   `toml:"stream"`
}

// CloudConfig configures the cloud model names. Credentials live in the
// credential store, never in this file.
type CloudConfig struct {
	FlashModel  string `toml:"flash_model"`
	ClaudeModel string `toml:"claude_model"`
}

// UserConfig is the TOML user configuration stored in the data directory.
type UserConfig struct {
	Runtime          RuntimeConfig `toml:"runtime"`
	Server           ServerConfig  `toml:"server"`
	Cloud            CloudConfig   `toml:"cloud"`
	PreferredModel   string        `toml:"preferred_model"`
	InputLanguage    string        `toml:"input_language"`
	SystemPrompt     string        `toml:"system_prompt,omitempty"`
	CredentialMethod string        `toml:"credential_method"`
}

// Config is the resolved application configuration.
type Config struct {
	DataDirectory    string
	Runtime          RuntimeConfig
	Server           ServerConfig
	Cloud            CloudConfig
	PreferredModel   string
	InputLanguage    string
	SystemPrompt     string
	CredentialMethod string

	CredentialStore *CredentialStore
}

var Debug = false
var DebugLog *log.Logger

// DataDir returns the expanded data directory path.
func (c *Config) DataDir() string {
	return ExpandPath(c.DataDirectory)
}

func (c *Config) applyEnvOverrides() {
	if host := os.Getenv("LINGUATUI_RUNTIME_HOST"); host != "" {
		c.Runtime.Host = host
	}
	if model := os.Getenv("LINGUATUI_RUNTIME_MODEL"); model != "" {
		c.Runtime.Model = model
	}
	if url := os.Getenv("LINGUATUI_SERVER_URL"); url != "" {
		c.Server.URL = url
	}
	if model := os.Getenv("LINGUATUI_SERVER_MODEL"); model != "" {
		c.Server.Model = model
	}
	if dataDir := os.Getenv("LINGUATUI_DATA_DIR"); dataDir != "" {
		c.DataDirectory = dataDir
	}
}

// CheckDebug reports whether debug logging is requested via environment.
func CheckDebug() bool {
	debug := os.Getenv("LINGUATUI_DEBUG")
	return debug == "true" || debug == "1"
}

// InitDebugLog opens the file-backed debug log when LINGUATUI_DEBUG is set.
func InitDebugLog(dataDir string) {
	if !CheckDebug() {
		return
	}

	Debug = true
	logPath := filepath.Join(dataDir, "debug.log")

	f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not open debug log at %s: %v\n", logPath, err)
		return
	}

	DebugLog = log.New(f, "", log.Ldate|log.Ltime|log.Lmicroseconds|log.Lshortfile)
	DebugLog.Printf("=== Debug logging started ===")
}

// Load resolves the full configuration: system config for the data
// directory, user config from the data directory, environment overrides on
// top, then the credential store.
func Load() (*Config, error) {
	systemCfg, err := LoadSystemConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load system config: %w", err)
	}

	cfg := &Config{DataDirectory: systemCfg.DataDirectory}
	dataDir := cfg.DataDir()
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	userCfg, err := LoadUserConfig(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}
	cfg.Runtime = userCfg.Runtime
	cfg.Server = userCfg.Server
	cfg.Cloud = userCfg.Cloud
	cfg.PreferredModel = userCfg.PreferredModel
	cfg.InputLanguage = userCfg.InputLanguage
	cfg.SystemPrompt = userCfg.SystemPrompt
	cfg.CredentialMethod = userCfg.CredentialMethod

	cfg.applyEnvOverrides()

	store := NewCredentialStore(CredentialMethod(cfg.CredentialMethod))
	if err := store.Load(cfg.DataDir()); err != nil {
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}
	cfg.CredentialStore = store

	return cfg, nil
}

// SaveUser persists the mutable parts of cfg back to the user config file.
func (c *Config) SaveUser() error {
	userCfg := &UserConfig{
		Runtime:          c.Runtime,
		Server:           c.Server,
		Cloud:            c.Cloud,
		PreferredModel:   c.PreferredModel,
		InputLanguage:    c.InputLanguage,
		SystemPrompt:     c.SystemPrompt,
		CredentialMethod: c.CredentialMethod,
	}
	return SaveUserConfig(userCfg, c.DataDir())
}
