// Package config resolves the settings of a translation run from, in
// order of precedence, command-line flags, an optional .csvtrans.yaml
// file, a .env file and built-in defaults. It also maps the two
// positional arguments onto source, destination and output paths.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/minios-linux/csvtrans/langmeta"
	"github.com/minios-linux/csvtrans/settings"
	"github.com/minios-linux/csvtrans/translate"
)

// APIKeyEnv is the environment variable holding the oracle credential.
const APIKeyEnv = "OPENAI_API_KEY"

// Defaults for file locations.
const (
	DefaultPromptFile = "prompt.txt"
	DefaultDebugDir   = "debug"
	DefaultEnvFile    = ".env"
)

var (
	// ErrMissingAPIKey is returned when no credential is configured.
	ErrMissingAPIKey = errors.New(APIKeyEnv + " is not set")
	// ErrPromptNotFound is returned when the prompt template file is missing.
	ErrPromptNotFound = errors.New("prompt template file not found")
)

// Config holds the effective settings of a run.
type Config struct {
	Model        string
	BaseURL      string
	Proxy        string
	APIKey       string
	Temperature  float64
	Timeout      time.Duration
	ChunkSize    int
	Delimiter    string
	RequestDelay time.Duration
	PromptFile   string
	DebugDir     string
}

// Defaults returns the built-in settings.
func Defaults() Config {
	return Config{
		Model:       translate.DefaultModel,
		Temperature: translate.DefaultTemperature,
		Timeout:     120 * time.Second,
		ChunkSize:   translate.DefaultChunkSize,
		Delimiter:   translate.DefaultDelimiter,
		PromptFile:  DefaultPromptFile,
		DebugDir:    DefaultDebugDir,
	}
}

// Validate checks the settings that the pipeline relies on.
func (c *Config) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive, got %d", c.ChunkSize)
	}
	if c.Delimiter == "" {
		return fmt.Errorf("delimiter must not be empty")
	}
	if strings.ContainsAny(c.Delimiter, "\r\n") {
		return fmt.Errorf("delimiter must be a single line, got %q", c.Delimiter)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2, got %v", c.Temperature)
	}
	if c.Model == "" {
		return fmt.Errorf("model must not be empty")
	}
	return nil
}

// ---------------------------------------------------------------------------
// Environment and credentials
// ---------------------------------------------------------------------------

// LoadEnv loads variables from a .env file without overriding variables
// that are already set. A missing file is not an error.
func LoadEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// ResolveAPIKey sets c.APIKey from the flag value, the environment or the
// credential store for c.BaseURL, in that order.
func (c *Config) ResolveAPIKey(flag string) error {
	key := strings.TrimSpace(flag)
	if key == "" {
		key = strings.TrimSpace(os.Getenv(APIKeyEnv))
	}
	if key == "" {
		key = settings.GetAPIKey(c.BaseURL)
	}
	if key == "" {
		return ErrMissingAPIKey
	}
	c.APIKey = key
	return nil
}

// LoadPrompt reads the prompt template file.
func LoadPrompt(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrPromptNotFound, path)
		}
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", fmt.Errorf("prompt template %s is empty", path)
	}
	return string(data), nil
}

// ---------------------------------------------------------------------------
// Positional arguments
// ---------------------------------------------------------------------------

// Paths are the files and target language of a run.
type Paths struct {
	// Source is the source table.
	Source string
	// Dest is a previous translation table to reuse, empty if none.
	Dest string
	// Output is the table this run writes.
	Output string
	// Language is the target language code.
	Language string
}

// Update reports whether previous translations are reused.
func (p Paths) Update() bool {
	return p.Dest != ""
}

// ResolvePaths maps the two positional arguments onto a run.
//
// Source: a .csv path, or a language code meaning "<code>.csv".
// Destination: a .csv path of a previous translation (its name up to the
// first "-" is the target language, "ru-20240101.csv" -> "ru"), or a bare
// language code. The language is taken as-is; see KnownLanguage. The
// output defaults to "<lang>-<YYYYMMDD>.csv" and, when defaulted, must not
// be the destination table it reuses.
func ResolvePaths(sourceArg, destArg, output string, now time.Time) (Paths, error) {
	var p Paths

	sourceArg = strings.TrimSpace(sourceArg)
	destArg = strings.TrimSpace(destArg)
	if sourceArg == "" || destArg == "" {
		return p, fmt.Errorf("source and destination must not be empty")
	}

	if isCSV(sourceArg) {
		p.Source = sourceArg
	} else {
		p.Source = sourceArg + ".csv"
	}

	if isCSV(destArg) {
		p.Dest = destArg
		stem := strings.TrimSuffix(filepath.Base(destArg), filepath.Ext(destArg))
		p.Language = strings.SplitN(stem, "-", 2)[0]
	} else {
		p.Language = destArg
	}
	if p.Language == "" {
		return p, fmt.Errorf("cannot derive a target language from %s", destArg)
	}

	p.Output = output
	if p.Output == "" {
		p.Output = fmt.Sprintf("%s-%s.csv", p.Language, now.Format("20060102"))
		if p.Dest != "" && samePath(p.Output, p.Dest) {
			return p, fmt.Errorf("default output %s is the destination table itself; choose another name with --output", p.Output)
		}
	}
	if samePath(p.Output, p.Source) {
		return p, fmt.Errorf("output %s would overwrite the source table", p.Output)
	}
	return p, nil
}

// KnownLanguage reports whether Language is a well-formed, known BCP 47
// code. Unknown codes are still usable; they reach the prompt verbatim.
func (p Paths) KnownLanguage() error {
	_, err := langmeta.Parse(p.Language)
	return err
}

func isCSV(arg string) bool {
	return strings.EqualFold(filepath.Ext(arg), ".csv")
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return absA == absB
}
