// Package translate implements the batch translation pipeline: rows are
// split into fixed-size batches, each pending batch is sent to an oracle
// as a delimiter-joined request, the response is split back and verified,
// and the finished batch is appended to the output table before the
// ledger advances.
package translate

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/minios-linux/csvtrans/csvfile"
	"github.com/minios-linux/csvtrans/ledger"
)

// DefaultChunkSize is the number of rows sent per oracle call.
const DefaultChunkSize = 50

// DefaultDelimiter joins source strings in a request.
const DefaultDelimiter = "|"

// ---------------------------------------------------------------------------
// Options and job
// ---------------------------------------------------------------------------

// Options controls the translation behavior.
type Options struct {
	// Oracle performs the translation calls.
	Oracle Oracle
	// Language is the target language code (e.g., "ru", "de").
	Language string
	// LanguageName is the human-readable name (e.g., "Russian").
	LanguageName string
	// PromptTemplate is the system prompt with {lang}, {sep} and
	// {lang_name} placeholders.
	PromptTemplate string
	// ChunkSize is how many rows are sent per oracle call.
	ChunkSize int
	// Delimiter separates strings in requests and responses.
	Delimiter string
	// RequestDelay is the pause between oracle calls.
	RequestDelay time.Duration
	// OnProgress is called after each batch is recorded.
	OnProgress func(done, total int)
	// Logger receives pipeline events. Nil discards them.
	Logger *slog.Logger
}

func (o *Options) effectiveChunkSize() int {
	if o.ChunkSize > 0 {
		return o.ChunkSize
	}
	return DefaultChunkSize
}

func (o *Options) effectiveDelimiter() string {
	if o.Delimiter != "" {
		return o.Delimiter
	}
	return DefaultDelimiter
}

func (o *Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// resolvedPrompt returns the system prompt with placeholders substituted.
func (o *Options) resolvedPrompt() string {
	template := o.PromptTemplate
	if template == "" {
		template = DefaultPromptTemplate
	}
	return RenderPrompt(template, o.Language, o.LanguageName, o.effectiveDelimiter())
}

// Job is one run over a source table.
type Job struct {
	// Rows is the full source table.
	Rows []csvfile.Row
	// Existing maps keys to previous translations. Nil disables reuse.
	Existing map[string]string
	// OutputPath is the growing output table.
	OutputPath string
	// Ledger is the run cursor.
	Ledger *ledger.Ledger
	// Cache holds per-batch requests, responses and summaries.
	Cache *ledger.Cache
}

// Result summarizes a run.
type Result struct {
	// Batches is the total number of batches in the source.
	Batches int
	// Skipped is the number of batches already recorded by a previous run.
	Skipped int
	// Processed is the number of batches completed by this run.
	Processed int
	// Translated is the number of rows translated by the oracle (or replayed
	// from the cache).
	Translated int
	// Reused is the number of rows taken from the existing translation table.
	Reused int
	// OracleCalls is the number of oracle requests actually sent.
	OracleCalls int
	// CacheHits is the number of batches replayed from the cache.
	CacheHits int
	// Truncated is the number of stale output rows dropped on resume.
	Truncated int
}

// ---------------------------------------------------------------------------
// Errors
// ---------------------------------------------------------------------------

// MismatchError reports a response whose segment count differs from the
// number of strings sent.
type MismatchError struct {
	Batch      int
	Original   []string
	Translated []string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("batch %d: line count mismatch: sent %d, got %d", e.Batch+1, len(e.Original), len(e.Translated))
}

// ---------------------------------------------------------------------------
// Pipeline
// ---------------------------------------------------------------------------

// Run translates every batch of job that the ledger has not recorded yet.
// Batches are processed strictly in order; each one is appended to the
// output table and then recorded in the ledger. Any error aborts the run
// and leaves the ledger at the failed batch.
func Run(ctx context.Context, job Job, opts Options) (Result, error) {
	log := opts.logger()
	chunkSize := opts.effectiveChunkSize()
	batches := Split(job.Rows, chunkSize)
	res := Result{Batches: len(batches)}

	start := job.Ledger.Next()
	if err := prepareOutput(job, len(batches), chunkSize, &res, log); err != nil {
		return res, err
	}
	res.Skipped = start
	if start > 0 && start < len(batches) {
		log.Debug("resuming", "batch", start+1, "batches", len(batches))
	}

	systemPrompt := opts.resolvedPrompt()

	for i := start; i < len(batches); i++ {
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		default:
		}

		log.Debug("processing batch", "batch", i+1, "batches", len(batches), "rows", len(batches[i]))

		rows, stats, err := translateBatch(ctx, i, batches[i], systemPrompt, job, opts)
		if err != nil {
			return res, err
		}
		if err := csvfile.Append(job.OutputPath, rows); err != nil {
			return res, fmt.Errorf("batch %d: %w", i+1, err)
		}
		if err := job.Ledger.Advance(i); err != nil {
			return res, err
		}

		res.Processed++
		res.Translated += stats.translated
		res.Reused += stats.reused
		if stats.called {
			res.OracleCalls++
		}
		if stats.cacheHit {
			res.CacheHits++
		}
		if opts.OnProgress != nil {
			opts.OnProgress(i+1, len(batches))
		}

		if stats.called && i < len(batches)-1 && opts.RequestDelay > 0 {
			select {
			case <-ctx.Done():
				return res, ctx.Err()
			case <-time.After(opts.RequestDelay):
			}
		}
	}

	return res, nil
}

// prepareOutput brings the output table in line with the ledger before
// any batch is processed: a fresh run starts from an empty table, a
// resumed run must find exactly the rows the ledger accounts for.
func prepareOutput(job Job, batches, chunkSize int, res *Result, log *slog.Logger) error {
	if batches == 0 {
		return nil
	}

	if job.Ledger.Next() == 0 {
		return csvfile.Remove(job.OutputPath)
	}

	found, err := csvfile.CountRecords(job.OutputPath)
	if err != nil {
		return err
	}
	want, err := job.Ledger.Reconcile(batches, chunkSize, len(job.Rows), found)
	if err != nil {
		return fmt.Errorf("%s (%s): %w", job.OutputPath, job.Ledger.Path(), err)
	}
	if found > want {
		log.Warn("dropping rows of an unrecorded batch", "output", job.OutputPath, "rows", found-want)
		if err := csvfile.Truncate(job.OutputPath, want); err != nil {
			return err
		}
		res.Truncated = found - want
	}
	return nil
}

type batchStats struct {
	translated int
	reused     int
	called     bool
	cacheHit   bool
}

// translateBatch produces the output rows of one batch.
func translateBatch(ctx context.Context, index int, batch []csvfile.Row, systemPrompt string, job Job, opts Options) ([]csvfile.Row, batchStats, error) {
	log := opts.logger()
	delim := opts.effectiveDelimiter()

	var stats batchStats
	out := make([]csvfile.Row, len(batch))
	reused := make([]bool, len(batch))
	var missing []string
	var missingIdx []int

	for j, row := range batch {
		out[j] = csvfile.Row{Key: row.Key, Source: row.Source}
		if prev, ok := job.Existing[row.Key]; ok && prev != "" {
			out[j].Translation = prev
			reused[j] = true
			stats.reused++
			continue
		}
		missing = append(missing, row.Source)
		missingIdx = append(missingIdx, j)
	}

	if len(missing) == 0 {
		log.Debug("batch fully reused", "batch", index+1)
	} else {
		request := strings.Join(missing, delim)
		response, hit, err := fetch(ctx, index, systemPrompt, request, job.Cache, opts.Oracle)
		if err != nil {
			return nil, stats, err
		}
		stats.cacheHit = hit
		stats.called = !hit
		if hit {
			log.Debug("using cached response", "batch", index+1, "file", job.Cache.BatchFile(index, "output"))
		} else {
			log.Debug("oracle response", "batch", index+1, "text", truncate(response, 200))
		}

		segments := SplitResponse(response, delim)
		if len(segments) != len(missing) {
			return nil, stats, &MismatchError{Batch: index, Original: missing, Translated: segments}
		}
		for k, j := range missingIdx {
			out[j].Translation = segments[k]
		}
		stats.translated = len(missing)
	}

	summary := make([]ledger.SummaryEntry, len(out))
	for j, row := range out {
		summary[j] = ledger.SummaryEntry{Key: row.Key, Source: row.Source, Translation: row.Translation, Reused: reused[j]}
	}
	if err := job.Cache.SaveSummary(index, summary); err != nil {
		return nil, stats, err
	}

	return out, stats, nil
}

// fetch returns the cached response of a batch when it was produced for
// the same request, and calls the oracle otherwise. A stale response is
// removed and the request recorded before the call; the raw response is
// recorded right after it.
func fetch(ctx context.Context, index int, systemPrompt, request string, cache *ledger.Cache, oracle Oracle) (string, bool, error) {
	if cached, ok, err := cache.Lookup(index, request); err != nil {
		return "", false, err
	} else if ok {
		return cached, true, nil
	}

	if oracle == nil {
		return "", false, fmt.Errorf("batch %d: no oracle configured", index+1)
	}
	if err := cache.Invalidate(index); err != nil {
		return "", false, err
	}
	if err := cache.SaveInput(index, request); err != nil {
		return "", false, err
	}
	response, err := oracle.Complete(ctx, systemPrompt, request)
	if err != nil {
		return "", false, fmt.Errorf("batch %d: %w", index+1, err)
	}
	if err := cache.SaveOutput(index, response); err != nil {
		return "", false, err
	}
	return response, false, nil
}

var markdownCodeBlock = regexp.MustCompile("(?s)^```[a-zA-Z]*\\n(.*?)\\n?```$")

// SplitResponse splits an oracle response into segments. A surrounding
// markdown code fence and one trailing newline are removed first;
// segments themselves are kept verbatim.
func SplitResponse(response, delimiter string) []string {
	if m := markdownCodeBlock.FindStringSubmatch(strings.TrimSpace(response)); len(m) > 1 {
		response = m[1]
	}
	response = strings.TrimSuffix(response, "\n")
	response = strings.TrimSuffix(response, "\r")
	return strings.Split(response, delimiter)
}

// Plan describes the work a run would do without calling the oracle.
type Plan struct {
	Batches int
	Pending int
	// Missing is the number of rows in pending batches that need the oracle.
	Missing int
	// Reusable is the number of rows in pending batches found in the
	// existing translation table.
	Reusable int
	// Cached is the number of pending batches with a replayable response.
	Cached int
}

// DryRun computes the Plan of job.
func DryRun(job Job, opts Options) (Plan, error) {
	chunkSize := opts.effectiveChunkSize()
	delim := opts.effectiveDelimiter()
	batches := Split(job.Rows, chunkSize)
	plan := Plan{Batches: len(batches)}

	for i := job.Ledger.Next(); i < len(batches); i++ {
		plan.Pending++
		var missing []string
		for _, row := range batches[i] {
			if prev, ok := job.Existing[row.Key]; ok && prev != "" {
				plan.Reusable++
				continue
			}
			missing = append(missing, row.Source)
		}
		plan.Missing += len(missing)
		if len(missing) == 0 || job.Cache == nil {
			continue
		}
		if _, ok, err := job.Cache.Lookup(i, strings.Join(missing, delim)); err != nil {
			return plan, err
		} else if ok {
			plan.Cached++
		}
	}
	return plan, nil
}
