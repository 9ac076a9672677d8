package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the default config file name, looked up in the working
// directory.
const FileName = ".csvtrans.yaml"

// ---------------------------------------------------------------------------
// YAML schema
// ---------------------------------------------------------------------------

// File is the .csvtrans.yaml structure. Every field is optional; flags
// take precedence over file values.
type File struct {
	// Model is the chat model identifier.
	Model string `yaml:"model,omitempty"`
	// BaseURL points at an OpenAI-compatible endpoint.
	BaseURL string `yaml:"base_url,omitempty"`
	// Proxy is an HTTP/HTTPS proxy URL.
	Proxy string `yaml:"proxy,omitempty"`
	// Temperature is the sampling temperature.
	Temperature *float64 `yaml:"temperature,omitempty"`
	// Timeout is the per-request timeout (e.g. "90s").
	Timeout time.Duration `yaml:"timeout,omitempty"`
	// ChunkSize is the number of rows per oracle call.
	ChunkSize int `yaml:"chunk_size,omitempty"`
	// Delimiter joins source strings in a request.
	Delimiter string `yaml:"delimiter,omitempty"`
	// RequestDelay is the pause between oracle calls.
	RequestDelay time.Duration `yaml:"request_delay,omitempty"`
	// PromptFile is the prompt template path.
	PromptFile string `yaml:"prompt_file,omitempty"`
	// DebugDir holds ledgers and batch caches.
	DebugDir string `yaml:"debug_dir,omitempty"`
}

// LoadFile reads a config file. Returns nil if the file doesn't exist.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &f, nil
}

// Apply copies the values set in f over c.
func (c *Config) Apply(f *File) {
	if f == nil {
		return
	}
	if f.Model != "" {
		c.Model = f.Model
	}
	if f.BaseURL != "" {
		c.BaseURL = f.BaseURL
	}
	if f.Proxy != "" {
		c.Proxy = f.Proxy
	}
	if f.Temperature != nil {
		c.Temperature = *f.Temperature
	}
	if f.Timeout > 0 {
		c.Timeout = f.Timeout
	}
	if f.ChunkSize != 0 {
		c.ChunkSize = f.ChunkSize
	}
	if f.Delimiter != "" {
		c.Delimiter = f.Delimiter
	}
	if f.RequestDelay > 0 {
		c.RequestDelay = f.RequestDelay
	}
	if f.PromptFile != "" {
		c.PromptFile = f.PromptFile
	}
	if f.DebugDir != "" {
		c.DebugDir = f.DebugDir
	}
}
