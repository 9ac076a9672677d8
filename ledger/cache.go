package ledger

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Cache stores the raw oracle request and response of every batch of a
// run, plus a human-readable summary table. A stored response whose
// request matches the current one is replayed instead of calling the
// oracle again.
type Cache struct {
	dir string
}

// SummaryEntry is one line of a batch summary table.
type SummaryEntry struct {
	Key         string
	Source      string
	Translation string
	Reused      bool
}

// OpenCache opens (creating if needed) the cache in dir.
func OpenCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating cache directory %s: %w", dir, err)
	}
	return &Cache{dir: dir}, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	return c.dir
}

// BatchFile returns the path of a cache file for a zero-based batch index.
// File names use 1-based numbering.
func (c *Cache) BatchFile(batch int, kind string) string {
	return filepath.Join(c.dir, fmt.Sprintf("batch_%03d_%s.txt", batch+1, kind))
}

// Input returns the recorded request of a batch.
func (c *Cache) Input(batch int) (string, bool, error) {
	return c.read(c.BatchFile(batch, "input"))
}

// Output returns the recorded response of a batch.
func (c *Cache) Output(batch int) (string, bool, error) {
	return c.read(c.BatchFile(batch, "output"))
}

// Lookup returns the recorded response of a batch if it was produced for
// request. A response without a recorded request is accepted as-is.
func (c *Cache) Lookup(batch int, request string) (string, bool, error) {
	response, ok, err := c.Output(batch)
	if err != nil || !ok {
		return "", false, err
	}
	recorded, ok, err := c.Input(batch)
	if err != nil {
		return "", false, err
	}
	if ok && recorded != request {
		return "", false, nil
	}
	return response, true, nil
}

// Invalidate removes the recorded response of a batch. It must run
// before a new request is recorded, so that a response can never sit next
// to a request it was not produced for.
func (c *Cache) Invalidate(batch int) error {
	path := c.BatchFile(batch, "output")
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing %s: %w", path, err)
	}
	return nil
}

// SaveInput records the request of a batch.
func (c *Cache) SaveInput(batch int, request string) error {
	return c.write(c.BatchFile(batch, "input"), request)
}

// SaveOutput records the raw response of a batch.
func (c *Cache) SaveOutput(batch int, response string) error {
	return c.write(c.BatchFile(batch, "output"), response)
}

// SaveSummary writes the summary table of a batch, one line per row:
//
//	NN|OLD|key|source|translation
func (c *Cache) SaveSummary(batch int, entries []SummaryEntry) error {
	var b strings.Builder
	for i, e := range entries {
		status := "NEW"
		if e.Reused {
			status = "OLD"
		}
		fmt.Fprintf(&b, "%02d|%s|%s|%s|%s\n", i+1, status, e.Key, e.Source, e.Translation)
	}
	return c.write(c.BatchFile(batch, "summary"), b.String())
}

func (c *Cache) read(path string) (string, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), true, nil
}

func (c *Cache) write(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
