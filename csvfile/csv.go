// Package csvfile reads source tables and writes translation tables.
//
// A source table has at least two columns per record: the key and the
// source text. Extra columns are ignored. A translation table has exactly
// three columns: key, source text and translated text. Output is written
// with minimal quoting and "\n" record terminators, appended one batch at
// a time.
package csvfile

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Row is a single translatable unit.
type Row struct {
	Key         string
	Source      string
	Translation string
}

// Record returns the three-column output record for r.
func (r Row) Record() []string {
	return []string{r.Key, r.Source, r.Translation}
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ---------------------------------------------------------------------------
// Reading
// ---------------------------------------------------------------------------

// ReadSource reads the full source table into memory, preserving order.
// Every record must carry at least a key and a source text.
func ReadSource(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening source %s: %w", path, err)
	}
	defer f.Close()

	r := newReader(f)
	var rows []Row
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		if len(rec) < 2 {
			line, _ := r.FieldPos(0)
			return nil, fmt.Errorf("%s:%d: record too short (want key and source text): %q", path, line, rec)
		}
		rows = append(rows, Row{Key: rec[0], Source: rec[1]})
	}
	return rows, nil
}

// ReadTranslations reads an existing translation table into a key ->
// translated text map. Records with fewer than three columns or an empty
// translation are skipped; for duplicate keys the last record wins.
// A missing file yields an empty map.
func ReadTranslations(path string) (map[string]string, error) {
	existing := make(map[string]string)

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return existing, nil
		}
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	r := newReader(f)
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		if len(rec) < 3 || rec[2] == "" {
			continue
		}
		existing[rec[0]] = rec[2]
	}
	return existing, nil
}

// CountRecords returns the number of records in a table.
// A missing file counts as zero records.
func CountRecords(path string) (int, error) {
	records, err := readAll(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}
	return len(records), nil
}

func readAll(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := newReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return records, nil
}

// newReader returns a csv.Reader that tolerates a leading UTF-8 BOM, a
// variable number of fields per record and bare quotes inside unquoted
// fields (`Say "hi" now`).
func newReader(r io.Reader) *csv.Reader {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return cr
}

// ---------------------------------------------------------------------------
// Writing
// ---------------------------------------------------------------------------

// Append appends rows to the table at path, creating it if needed.
// The file is synced before Append returns.
func Append(path string, rows []Row) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}

	if err := writeRecords(f, rows); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("syncing %s: %w", path, err)
	}
	return f.Close()
}

// Truncate rewrites the table at path keeping only its first n records.
func Truncate(path string, n int) error {
	records, err := readAll(path)
	if err != nil {
		return err
	}
	if n >= len(records) {
		return nil
	}

	rows := make([]Row, 0, n)
	for _, rec := range records[:n] {
		row := Row{Key: rec[0]}
		if len(rec) > 1 {
			row.Source = rec[1]
		}
		if len(rec) > 2 {
			row.Translation = rec[2]
		}
		rows = append(rows, row)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".csvtrans-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := writeRecords(tmp, rows); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", tmp.Name(), err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

// Remove deletes the table at path. A missing file is not an error.
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing %s: %w", path, err)
	}
	return nil
}

func writeRecords(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	for _, row := range rows {
		if err := cw.Write(row.Record()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
