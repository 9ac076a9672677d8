// csvtrans batch-translates key/text CSV tables with an LLM.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/minios-linux/csvtrans/config"
	"github.com/minios-linux/csvtrans/csvfile"
	"github.com/minios-linux/csvtrans/i18n"
	"github.com/minios-linux/csvtrans/langmeta"
	"github.com/minios-linux/csvtrans/ledger"
	"github.com/minios-linux/csvtrans/settings"
	"github.com/minios-linux/csvtrans/translate"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ---------------------------------------------------------------------------
// Logging
// ---------------------------------------------------------------------------

var logger = newLogger(os.Stderr, false)

func newLogger(w *os.File, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
		NoColor:    !isTerminal(w),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == "error" && a.Value.Kind() == slog.KindAny {
				if err, ok := a.Value.Any().(error); ok {
					return tint.Err(err)
				}
			}
			return a
		},
	}))
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func logInfo(format string, args ...any) {
	logger.Info(fmt.Sprintf(i18n.T(format), args...))
}

func logSuccess(format string, args ...any) {
	logger.Info(fmt.Sprintf(i18n.T(format), args...), "status", "ok")
}

func logWarning(format string, args ...any) {
	logger.Warn(fmt.Sprintf(i18n.T(format), args...))
}

func logError(format string, args ...any) {
	logger.Error(fmt.Sprintf(i18n.T(format), args...))
}

// ---------------------------------------------------------------------------
// Global flags
// ---------------------------------------------------------------------------

type globalFlags struct {
	configPath string
	verbose    bool
	debugDir   string
	output     string
	chunkSize  int
	delimiter  string
}

// ---------------------------------------------------------------------------
// Root command (translate)
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	var (
		g globalFlags

		// Provider
		apiKey      string
		model       string
		baseURL     string
		proxy       string
		temperature float64
		timeout     time.Duration

		// Translation behavior
		promptFile   string
		requestDelay time.Duration
		noReuse      bool
		restart      bool
		clearLedger  bool
		dryRun       bool
	)

	root := &cobra.Command{
		Use:   "csvtrans <source_lang_or_file> <dest_lang_or_file>",
		Short: "Translate key/text CSV tables with an LLM, resumably",
		Long: `csvtrans batch-translates key/text CSV tables with an LLM.

Reads a CSV of [key, source text] records, sends them to an OpenAI-compatible
chat completion endpoint in fixed-size batches, and appends
[key, source, translation] records to the output table. Progress is recorded
after every batch, so an interrupted run resumes where it stopped.

Arguments:
  source   en.csv or a language code ("en" means en.csv)
  dest     a previous translation (ru-20240101.csv) whose translations are
           reused, or a bare target language code ("ru")

Examples:
  # Translate en.csv into Russian, writing ru-YYYYMMDD.csv
  csvtrans en ru

  # Update an older translation, only new keys are sent to the model
  csvtrans strings.csv ru-20240101.csv

  # Show what would be sent without calling the model
  csvtrans en de --dry-run`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger = newLogger(os.Stderr, g.verbose)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(cmd, translateArgs{
				global: g, source: args[0], dest: args[1],
				apiKey: apiKey, model: model, baseURL: baseURL, proxy: proxy,
				temperature: temperature, timeout: timeout,
				promptFile: promptFile, requestDelay: requestDelay,
				noReuse: noReuse, restart: restart, clearLedger: clearLedger,
				dryRun: dryRun,
			})
		},
	}

	// Global persistent flags, inherited by all subcommands
	pf := root.PersistentFlags()
	pf.StringVar(&g.configPath, "config", config.FileName, "Config file")
	pf.BoolVar(&g.verbose, "verbose", false, "Enable detailed logging")
	pf.StringVar(&g.debugDir, "debug-dir", config.DefaultDebugDir, "Directory for resume state and per-batch request/response files")
	pf.StringVarP(&g.output, "output", "o", "", "Output CSV (default <lang>-YYYYMMDD.csv)")
	pf.IntVar(&g.chunkSize, "chunk-size", translate.DefaultChunkSize, "Rows per API request")
	pf.StringVar(&g.delimiter, "delimiter", translate.DefaultDelimiter, "Separator joining strings in a request")

	// Provider
	root.Flags().StringVar(&apiKey, "api-key", "", "API key (or "+config.APIKeyEnv+" env var, or 'csvtrans auth login')")
	root.Flags().StringVar(&model, "model", translate.DefaultModel, "Model name")
	root.Flags().StringVar(&baseURL, "base-url", "", "OpenAI-compatible API base URL")
	root.Flags().StringVar(&proxy, "proxy", "", "HTTP/HTTPS proxy URL")
	root.Flags().Float64Var(&temperature, "temperature", translate.DefaultTemperature, "Sampling temperature")
	root.Flags().DurationVar(&timeout, "timeout", 120*time.Second, "Request timeout")

	// Translation behavior
	root.Flags().StringVar(&promptFile, "prompt-file", config.DefaultPromptFile, "Prompt template ({lang}, {sep} and {lang_name} placeholders)")
	root.Flags().DurationVar(&requestDelay, "request-delay", 0, "Delay between API requests")
	root.Flags().BoolVar(&noReuse, "no-reuse", false, "Do not reuse translations from the destination file")
	root.Flags().BoolVar(&restart, "restart", false, "Discard recorded progress and start from the first batch")
	root.Flags().BoolVar(&clearLedger, "clear-ledger", false, "Remove the resume state once the run completes")
	root.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be translated without calling the API")

	_ = root.RegisterFlagCompletionFunc("model", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"gpt-4o", "gpt-4o-mini", "gpt-4.1", "gpt-4.1-mini"}, cobra.ShellCompDirectiveNoFileComp
	})

	root.AddCommand(
		newStatusCmd(&g),
		newPromptCmd(),
		newAuthCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	i18n.Init("")
	if err := newRootCmd().Execute(); err != nil {
		logError("%v", err)
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// version
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version, commit hash, and build date.`,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "csvtrans version %s\n", version)
			fmt.Fprintf(out, "  commit:    %s\n", commit)
			fmt.Fprintf(out, "  built:     %s\n", date)
		},
	}
}

// ---------------------------------------------------------------------------
// Configuration
// ---------------------------------------------------------------------------

// loadConfig layers defaults, the config file and explicitly set flags.
func loadConfig(cmd *cobra.Command, g globalFlags) (config.Config, error) {
	cfg := config.Defaults()

	f, err := config.LoadFile(g.configPath)
	if err != nil {
		return cfg, err
	}
	cfg.Apply(f)

	flags := cmd.Flags()
	if flags.Changed("chunk-size") {
		cfg.ChunkSize = g.chunkSize
	}
	if flags.Changed("delimiter") {
		cfg.Delimiter = g.delimiter
	}
	if flags.Changed("debug-dir") {
		cfg.DebugDir = g.debugDir
	}
	return cfg, nil
}

// runSetup is the state shared by the translate and status commands.
type runSetup struct {
	cfg      config.Config
	paths    config.Paths
	rows     []csvfile.Row
	runDir   string
	ledger   *ledger.Ledger
	language langmeta.Meta
}

// prepareRun resolves paths, reads the source table and loads the ledger.
func prepareRun(cfg config.Config, source, dest, output string) (*runSetup, error) {
	paths, err := config.ResolvePaths(source, dest, output, time.Now())
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(paths.Source)
	if err != nil {
		return nil, fmt.Errorf("reading source: %w", err)
	}
	rows, err := csvfile.ReadSource(paths.Source)
	if err != nil {
		return nil, err
	}

	runDir := ledger.RunDir(cfg.DebugDir, ledger.RunKey(raw, paths.Language, cfg.ChunkSize, cfg.Delimiter))
	l, err := ledger.Load(runDir)
	if err != nil {
		return nil, err
	}

	return &runSetup{
		cfg:      cfg,
		paths:    paths,
		rows:     rows,
		runDir:   runDir,
		ledger:   l,
		language: langmeta.Resolve(paths.Language),
	}, nil
}

// ---------------------------------------------------------------------------
// translate
// ---------------------------------------------------------------------------

type translateArgs struct {
	global                   globalFlags
	source, dest             string
	apiKey, model, baseURL   string
	proxy                    string
	temperature              float64
	timeout, requestDelay    time.Duration
	promptFile               string
	noReuse, restart, dryRun bool
	clearLedger              bool
}

func runTranslate(cmd *cobra.Command, a translateArgs) error {
	// Configuration errors must surface before any file is touched.
	if err := config.LoadEnv(config.DefaultEnvFile); err != nil {
		return err
	}
	cfg, err := loadConfig(cmd, a.global)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("model") {
		cfg.Model = a.model
	}
	if flags.Changed("base-url") {
		cfg.BaseURL = a.baseURL
	}
	if flags.Changed("proxy") {
		cfg.Proxy = a.proxy
	}
	if flags.Changed("temperature") {
		cfg.Temperature = a.temperature
	}
	if flags.Changed("timeout") {
		cfg.Timeout = a.timeout
	}
	if flags.Changed("request-delay") {
		cfg.RequestDelay = a.requestDelay
	}
	if flags.Changed("prompt-file") {
		cfg.PromptFile = a.promptFile
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if _, err := config.ResolvePaths(a.source, a.dest, a.global.output, time.Now()); err != nil {
		return err
	}

	var promptTemplate string
	if !a.dryRun {
		if err := cfg.ResolveAPIKey(a.apiKey); err != nil {
			return err
		}
		if promptTemplate, err = config.LoadPrompt(cfg.PromptFile); err != nil {
			return fmt.Errorf("%w (create one with 'csvtrans prompt init')", err)
		}
	}

	// Input
	setup, err := prepareRun(cfg, a.source, a.dest, a.global.output)
	if err != nil {
		return err
	}
	paths := setup.paths
	if err := paths.KnownLanguage(); err != nil {
		logWarning("Target language %q is not a known language code (%v); it is passed to the model as-is", paths.Language, err)
	}

	logInfo("Translating %s → %s (%s)", paths.Source, paths.Output, setup.language.English)

	var existing map[string]string
	if paths.Update() && !a.noReuse {
		existing, err = csvfile.ReadTranslations(paths.Dest)
		if err != nil {
			return err
		}
		logger.Info(fmt.Sprintf(i18n.N("Found %d existing translation in %s", "Found %d existing translations in %s", len(existing)),
			len(existing), paths.Dest))
	}

	if a.dryRun {
		return planRun(setup, existing)
	}

	if a.restart {
		if err := setup.ledger.Reset(); err != nil {
			return err
		}
	}
	cache, err := ledger.OpenCache(setup.runDir)
	if err != nil {
		return err
	}

	job := translate.Job{
		Rows:       setup.rows,
		Existing:   existing,
		OutputPath: paths.Output,
		Ledger:     setup.ledger,
		Cache:      cache,
	}
	opts := translate.Options{
		Oracle: translate.NewOpenAIOracle(translate.OpenAIConfig{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			Proxy:       cfg.Proxy,
			Timeout:     cfg.Timeout,
		}),
		Language:       paths.Language,
		LanguageName:   setup.language.English,
		PromptTemplate: promptTemplate,
		ChunkSize:      cfg.ChunkSize,
		Delimiter:      cfg.Delimiter,
		RequestDelay:   cfg.RequestDelay,
		Logger:         logger,
	}

	batches := translate.BatchCount(len(setup.rows), cfg.ChunkSize)
	if next := setup.ledger.Next(); next > 0 && next < batches {
		logInfo("Resuming from batch %d of %d", next+1, batches)
	}

	// Setup signal handling for graceful cancellation
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logWarning("Interrupted, finishing without recording the current batch...")
			cancel()
		case <-ctx.Done():
		}
	}()

	var bar *progressbar.ProgressBar
	if isTerminal(os.Stderr) && !a.global.verbose && batches > 0 {
		bar = progressbar.NewOptions(batches,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription(paths.Language),
			progressbar.OptionShowCount(),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionClearOnFinish(),
		)
		_ = bar.Set(setup.ledger.Next())
		opts.OnProgress = func(done, total int) {
			_ = bar.Set(done)
		}
	} else {
		opts.OnProgress = func(done, total int) {
			logger.Debug("batch recorded", "batch", done, "batches", total)
		}
	}

	res, err := translate.Run(ctx, job, opts)
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		var mm *translate.MismatchError
		switch {
		case errors.As(err, &mm):
			logError("Line count mismatch in batch %d: sent %d, got %d", mm.Batch+1, len(mm.Original), len(mm.Translated))
			logger.Error(i18n.T("Original"), "segments", fmt.Sprintf("%q", mm.Original))
			logger.Error(i18n.T("Translated"), "segments", fmt.Sprintf("%q", mm.Translated))
			logInfo("Raw response kept in %s", cache.BatchFile(mm.Batch, "output"))
		case ctx.Err() != nil:
			logWarning("Interrupted, rerun the same command to resume from batch %d", setup.ledger.Next()+1)
		}
		return err
	}

	if res.Processed == 0 && res.Batches > 0 {
		logSuccess("Nothing to translate: all %d batches already recorded", res.Batches)
	} else {
		logInfo("Batches: %d processed, %d skipped; rows: %d translated, %d reused; API calls: %d, cache hits: %d",
			res.Processed, res.Skipped, res.Translated, res.Reused, res.OracleCalls, res.CacheHits)
		logSuccess("Translation complete! Output saved to: %s", paths.Output)
	}
	logInfo("Debug files: %s", setup.runDir)

	if a.clearLedger {
		if err := setup.ledger.Reset(); err != nil {
			return err
		}
		logInfo("Resume state cleared")
	}
	return nil
}

// planRun reports what a run would do. It creates and modifies nothing.
func planRun(setup *runSetup, existing map[string]string) error {
	job := translate.Job{Rows: setup.rows, Existing: existing, Ledger: setup.ledger}
	if _, err := os.Stat(setup.runDir); err == nil {
		if job.Cache, err = ledger.OpenCache(setup.runDir); err != nil {
			return err
		}
	}
	plan, err := translate.DryRun(job, translate.Options{
		ChunkSize: setup.cfg.ChunkSize,
		Delimiter: setup.cfg.Delimiter,
	})
	if err != nil {
		return err
	}
	logInfo("Dry run: %d batches, %d pending; %d rows to translate, %d reused, %d batches cached",
		plan.Batches, plan.Pending, plan.Missing, plan.Reusable, plan.Cached)
	return nil
}

// ---------------------------------------------------------------------------
// status (read-only: ledger and output consistency)
// ---------------------------------------------------------------------------

func newStatusCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status <source_lang_or_file> <dest_lang_or_file>",
		Short: "Show resume state and output consistency",
		Long: `Show the run directory, recorded batches and output table state for a
translation run. Takes the same arguments and layout flags as the translate
command. Does not modify any files.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadEnv(config.DefaultEnvFile); err != nil {
				return err
			}
			cfg, err := loadConfig(cmd, *g)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			setup, err := prepareRun(cfg, args[0], args[1], g.output)
			if err != nil {
				return err
			}
			return printStatus(cmd, setup)
		},
	}
}

func printStatus(cmd *cobra.Command, s *runSetup) error {
	out := cmd.OutOrStdout()
	batches := translate.BatchCount(len(s.rows), s.cfg.ChunkSize)
	next := s.ledger.Next()

	found, err := csvfile.CountRecords(s.paths.Output)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s\n", i18n.T("Run"))
	fmt.Fprintln(out, strings.Repeat("─", 60))
	fmt.Fprintf(out, "  %-12s %s\n", i18n.T("Source:"), s.paths.Source)
	fmt.Fprintf(out, "  %-12s %s (%s)\n", i18n.T("Language:"), s.language.Code, s.language.Name)
	if s.paths.Update() {
		fmt.Fprintf(out, "  %-12s %s\n", i18n.T("Reuse from:"), s.paths.Dest)
	}
	fmt.Fprintf(out, "  %-12s %s\n", i18n.T("Output:"), s.paths.Output)
	absRun, _ := filepath.Abs(s.runDir)
	fmt.Fprintf(out, "  %-12s %s\n", i18n.T("Run dir:"), absRun)
	fmt.Fprintln(out)

	fmt.Fprintf(out, "  %-12s %d\n", i18n.T("Rows:"), len(s.rows))
	fmt.Fprintf(out, "  %-12s %d/%d (%s)\n", i18n.T("Batches:"), next, batches, progressPercent(next, batches))
	fmt.Fprintf(out, "  %-12s %d\n", i18n.T("Output rows:"), found)

	verdict := i18n.T("consistent")
	if next == 0 {
		if found > 0 {
			verdict = i18n.T("fresh run, existing output will be replaced")
		} else {
			verdict = i18n.T("not started")
		}
	} else if want, err := s.ledger.Reconcile(batches, s.cfg.ChunkSize, len(s.rows), found); err != nil {
		verdict = err.Error()
	} else if want != found {
		verdict = fmt.Sprintf(i18n.T("%d rows of an unrecorded batch will be dropped"), found-want)
	}
	fmt.Fprintf(out, "  %-12s %s\n", i18n.T("State:"), verdict)
	return nil
}

func progressPercent(done, total int) string {
	if total == 0 {
		return "100%"
	}
	return fmt.Sprintf("%d%%", done*100/total)
}

// ---------------------------------------------------------------------------
// prompt init
// ---------------------------------------------------------------------------

func newPromptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Manage the prompt template",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the built-in prompt template",
		Long: `Write the built-in system prompt template to path (default prompt.txt).

Placeholders substituted at run time:
  {lang}       target language code
  {lang_name}  target language name in English
  {sep}        delimiter between strings`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultPromptFile
			if len(args) == 1 {
				path = args[0]
			}
			return writePromptTemplate(path, force)
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	cmd.AddCommand(initCmd)
	return cmd
}

func writePromptTemplate(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, []byte(translate.DefaultPromptTemplate+"\n"), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	logSuccess("Wrote prompt template to %s", path)
	return nil
}

// ---------------------------------------------------------------------------
// auth (stored API keys)
// ---------------------------------------------------------------------------

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage stored API keys",
		Long: `Manage API keys kept in the user data directory (` + settings.FilePath() + `).

A stored key is used when neither --api-key nor ` + config.APIKeyEnv + ` is set.
Keys are stored per endpoint: the default OpenAI endpoint, or the
--base-url of an OpenAI-compatible server.`,
	}
	cmd.AddCommand(newAuthLoginCmd(), newAuthLogoutCmd(), newAuthListCmd())
	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	var baseURL string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store an API key",
		Long: `Store an API key read from standard input.

Examples:
  csvtrans auth login
  csvtrans auth login --base-url http://localhost:11434/v1
  echo "$KEY" | csvtrans auth login`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := readAPIKey(cmd)
			if err != nil {
				return err
			}
			if err := settings.SetAPIKey(baseURL, key); err != nil {
				return fmt.Errorf("saving API key: %w", err)
			}
			logSuccess("API key for %s saved", settings.EndpointID(baseURL))
			return nil
		},
	}
	cmd.Flags().StringVar(&baseURL, "base-url", "", "OpenAI-compatible API base URL (default: OpenAI)")
	return cmd
}

// readAPIKey reads one line from the command input, without echo when it
// is a terminal.
func readAPIKey(cmd *cobra.Command) (string, error) {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && isTerminal(f) {
		fmt.Fprint(cmd.ErrOrStderr(), "Enter API key: ")
		data, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("reading API key: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}

	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("reading API key: %w", err)
		}
		return "", fmt.Errorf("no API key provided")
	}
	return strings.TrimSpace(scanner.Text()), nil
}

func newAuthLogoutCmd() *cobra.Command {
	var baseURL string

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Remove a stored API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := settings.Remove(baseURL); err != nil {
				return fmt.Errorf("removing API key: %w", err)
			}
			logSuccess("API key for %s removed", settings.EndpointID(baseURL))
			return nil
		},
	}
	cmd.Flags().StringVar(&baseURL, "base-url", "", "OpenAI-compatible API base URL (default: OpenAI)")
	return cmd
}

func newAuthListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show stored API keys",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			store := settings.Load()

			fmt.Fprintf(out, "%s\n", i18n.T("Stored API keys"))
			fmt.Fprintln(out, strings.Repeat("─", 60))
			if len(store) == 0 {
				fmt.Fprintf(out, "  %s\n", i18n.T("none"))
			}
			ids := make([]string, 0, len(store))
			for id := range store {
				ids = append(ids, id)
			}
			sort.Strings(ids)
			for _, id := range ids {
				fmt.Fprintf(out, "  %-40s %s\n", id, settings.MaskKey(store[id].Key))
			}

			fmt.Fprintln(out)
			if env := os.Getenv(config.APIKeyEnv); env != "" {
				fmt.Fprintf(out, "  %s: %s (%s)\n", config.APIKeyEnv, settings.MaskKey(env), i18n.T("overrides stored keys"))
			} else {
				fmt.Fprintf(out, "  %s: %s\n", config.APIKeyEnv, i18n.T("not set"))
			}
		},
	}
}
