// Package settings stores csvtrans API credentials outside the working
// directory, so a key does not have to live in a project's .env file.
//
// Credentials are kept in the XDG data directory:
//
//	$XDG_DATA_HOME/csvtrans/auth.json  (default: ~/.local/share/csvtrans/)
//
// The file is a JSON object keyed by endpoint: "openai" for the default
// OpenAI endpoint, otherwise the base URL of an OpenAI-compatible server.
// File permissions are 0600 (owner read/write only).
//
// Lookup order for API keys:
//  1. --api-key flag (highest priority)
//  2. OPENAI_API_KEY environment variable (or .env)
//  3. This credential store
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	dataDirName = "csvtrans"
	fileName    = "auth.json"

	// DefaultEndpoint names the entry used when no base URL is configured.
	DefaultEndpoint = "openai"
)

// Info is the entry stored per endpoint in auth.json.
type Info struct {
	Key     string `json:"key"`
	BaseURL string `json:"baseUrl,omitempty"`
}

// Store holds all credentials, keyed by endpoint.
type Store map[string]*Info

// EndpointID returns the store key for a base URL.
func EndpointID(baseURL string) string {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return DefaultEndpoint
	}
	return baseURL
}

// ---------------------------------------------------------------------------
// File path
// ---------------------------------------------------------------------------

// DataDir returns the csvtrans data directory.
// Respects $XDG_DATA_HOME (falls back to ~/.local/share).
func DataDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, dataDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", dataDirName), nil
}

// FilePath returns the auth.json file path for display purposes.
func FilePath() string {
	dir, err := DataDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, fileName)
}

// ---------------------------------------------------------------------------
// Load / Save
// ---------------------------------------------------------------------------

// Load reads the credential store from disk.
// Returns an empty store if the file doesn't exist or is invalid.
func Load() Store {
	path := FilePath()
	if path == "" {
		return make(Store)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return make(Store)
	}
	var store Store
	if err := json.Unmarshal(data, &store); err != nil || store == nil {
		return make(Store)
	}
	return store
}

// Save writes the credential store to disk with 0600 permissions.
func Save(store Store) error {
	path := FilePath()
	if path == "" {
		return fmt.Errorf("cannot determine data directory")
	}

	data, err := json.MarshalIndent(store, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling credentials: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing auth file: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// API key helpers
// ---------------------------------------------------------------------------

// SetAPIKey stores the API key for an endpoint (upsert).
func SetAPIKey(baseURL, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("API key must not be empty")
	}
	store := Load()
	store[EndpointID(baseURL)] = &Info{Key: key, BaseURL: strings.TrimSpace(baseURL)}
	return Save(store)
}

// GetAPIKey returns the stored API key for an endpoint, or "".
func GetAPIKey(baseURL string) string {
	if info := Load()[EndpointID(baseURL)]; info != nil {
		return info.Key
	}
	return ""
}

// Remove deletes the credentials of an endpoint.
func Remove(baseURL string) error {
	store := Load()
	id := EndpointID(baseURL)
	if _, ok := store[id]; !ok {
		return nil // Nothing to delete
	}
	delete(store, id)
	return Save(store)
}

// MaskKey returns a masked version of a key for display.
func MaskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
