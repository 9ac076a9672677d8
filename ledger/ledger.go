// Package ledger implements the resume state of a translation run: a
// monotonic cursor naming the next batch to process, and a per-batch cache
// of oracle requests and responses.
//
// Both live in a run directory keyed by the content of the source table,
// the target language and the batch layout:
//
//	<debug_dir>/<run-key>/resume_state.txt
//	<debug_dir>/<run-key>/batch_001_input.txt
//	<debug_dir>/<run-key>/batch_001_output.txt
//	<debug_dir>/<run-key>/batch_001_summary.txt
//
// A changed source file, language or batch size therefore yields a fresh
// cursor and an empty cache.
package ledger

import (
	"crypto/md5"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// FileName is the ledger file name inside a run directory.
const FileName = "resume_state.txt"

// ErrInconsistentState is returned when the ledger and the output table
// disagree about how many batches have been written.
var ErrInconsistentState = errors.New("ledger and output file disagree")

// ---------------------------------------------------------------------------
// Run key
// ---------------------------------------------------------------------------

// Hash computes the MD5 hex digest of a string.
func Hash(s string) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(s)))
}

// RunKey identifies a translation run. Batch boundaries and oracle
// requests are fully determined by these inputs.
func RunKey(source []byte, lang string, chunkSize int, delimiter string) string {
	var b strings.Builder
	b.Write(source)
	b.WriteByte(0)
	b.WriteString(lang)
	b.WriteByte(0)
	b.WriteString(strconv.Itoa(chunkSize))
	b.WriteByte(0)
	b.WriteString(delimiter)
	return lang + "-" + Hash(b.String())[:16]
}

// RunDir returns the run directory for key under debugDir.
func RunDir(debugDir, key string) string {
	return filepath.Join(debugDir, key)
}

// ---------------------------------------------------------------------------
// Ledger
// ---------------------------------------------------------------------------

// Ledger is the persisted cursor of a run. Batches 0..Next()-1 have been
// fully appended to the output table.
type Ledger struct {
	path string
	next int
}

// Load reads the ledger from dir.
// Returns a ledger positioned at batch 0 if the file doesn't exist.
func Load(dir string) (*Ledger, error) {
	l := &Ledger{path: filepath.Join(dir, FileName)}

	data, err := os.ReadFile(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return l, nil
		}
		return nil, fmt.Errorf("reading %s: %w", l.path, err)
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return l, nil
	}
	n, err := strconv.Atoi(text)
	if err != nil || n < 0 {
		return nil, fmt.Errorf("parsing %s: invalid batch index %q", l.path, text)
	}
	l.next = n
	return l, nil
}

// Next returns the index of the next batch to process.
func (l *Ledger) Next() int {
	return l.next
}

// Path returns the ledger file path.
func (l *Ledger) Path() string {
	return l.path
}

// Advance records batch as complete and persists the cursor before
// returning. Batches must be recorded in order.
func (l *Ledger) Advance(batch int) error {
	if batch != l.next {
		return fmt.Errorf("advancing ledger: batch %d recorded out of order (next is %d)", batch, l.next)
	}
	if err := l.write(batch + 1); err != nil {
		return err
	}
	l.next = batch + 1
	return nil
}

// Reset removes the ledger file and rewinds the cursor to batch 0.
func (l *Ledger) Reset() error {
	if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing %s: %w", l.path, err)
	}
	l.next = 0
	return nil
}

// write replaces the ledger file atomically: temp file, fsync, rename.
func (l *Ledger) write(next int) error {
	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".resume-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp ledger: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(strconv.Itoa(next)); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", tmp.Name(), err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), l.path); err != nil {
		return fmt.Errorf("writing %s: %w", l.path, err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Consistency with the output table
// ---------------------------------------------------------------------------

// Expected returns how many output records must exist once the first next
// batches of a table with total rows have been written.
func Expected(next, chunkSize, total int) int {
	n := next * chunkSize
	if n > total {
		return total
	}
	return n
}

// Reconcile compares the ledger with the number of records actually found
// in the output table. It returns the record count the table should be
// truncated to, or ErrInconsistentState when no safe repair exists.
//
// One extra batch on disk is the footprint of a crash between appending a
// batch and advancing the ledger; it is dropped so the batch is redone.
func (l *Ledger) Reconcile(batches, chunkSize, total, found int) (int, error) {
	if l.next > batches {
		return 0, fmt.Errorf("%w: ledger at batch %d but source has only %d batches", ErrInconsistentState, l.next, batches)
	}
	want := Expected(l.next, chunkSize, total)
	switch {
	case found == want:
		return want, nil
	case found > want && found <= Expected(l.next+1, chunkSize, total):
		return want, nil
	case found < want:
		return 0, fmt.Errorf("%w: ledger records %d batches (%d rows) but output has %d rows", ErrInconsistentState, l.next, want, found)
	default:
		return 0, fmt.Errorf("%w: output has %d rows, ledger accounts for only %d", ErrInconsistentState, found, want)
	}
}
