package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/minios-linux/csvtrans/config"
	"github.com/minios-linux/csvtrans/csvfile"
	"github.com/minios-linux/csvtrans/ledger"
	"github.com/minios-linux/csvtrans/settings"
)

// newEchoServer answers chat completions by prefixing every
// "|"-separated segment of the user message with "ru:".
func newEchoServer(t *testing.T, calls *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		var req openai.ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != openai.ChatMessageRoleSystem {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}
		parts := strings.Split(req.Messages[1].Content, "|")
		for i := range parts {
			parts[i] = "ru:" + parts[i]
		}
		resp := openai.ChatCompletionResponse{
			ID:    "chatcmpl-test",
			Model: req.Model,
			Choices: []openai.ChatCompletionChoice{{
				Message:      openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: strings.Join(parts, "|")},
				FinishReason: openai.FinishReasonStop,
			}},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// setupWorkspace switches to a temp dir holding en.csv and prompt.txt.
func setupWorkspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))

	source := "greeting,Hello\nfarewell,Goodbye\nthanks,Thank you\nyes,Yes\nno,No\n"
	if err := os.WriteFile("en.csv", []byte(source), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := writePromptTemplate(config.DefaultPromptFile, false); err != nil {
		t.Fatalf("writePromptTemplate: %v", err)
	}
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommandRequiresTwoArgs(t *testing.T) {
	if _, err := execute(t, "en"); err == nil {
		t.Fatal("Execute(en) error = nil, want argument count error")
	}
}

func TestTranslateEndToEnd(t *testing.T) {
	setupWorkspace(t)
	t.Setenv(config.APIKeyEnv, "sk-test")

	var calls int32
	srv := newEchoServer(t, &calls)

	args := []string{"en", "ru", "--base-url", srv.URL + "/v1", "--chunk-size", "2", "--output", "ru.csv"}
	if _, err := execute(t, args...); err != nil {
		t.Fatalf("translate: %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 3 {
		t.Fatalf("API calls = %d, want 3", n)
	}

	got, err := csvfile.ReadTranslations("ru.csv")
	if err != nil {
		t.Fatalf("ReadTranslations: %v", err)
	}
	want := map[string]string{
		"greeting": "ru:Hello",
		"farewell": "ru:Goodbye",
		"thanks":   "ru:Thank you",
		"yes":      "ru:Yes",
		"no":       "ru:No",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("translation[%q] = %q, want %q", k, got[k], v)
		}
	}

	// A completed run is recorded; repeating it calls nothing.
	if _, err := execute(t, args...); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 3 {
		t.Fatalf("API calls after rerun = %d, want 3", n)
	}
	if n, _ := csvfile.CountRecords("ru.csv"); n != 5 {
		t.Fatalf("output records = %d, want 5", n)
	}

	out, err := execute(t, "status", "en", "ru", "--chunk-size", "2", "--output", "ru.csv")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	for _, s := range []string{"3/3", "consistent", "русский"} {
		if !strings.Contains(out, s) {
			t.Errorf("status output missing %q:\n%s", s, out)
		}
	}
}

// ledgerFiles lists the resume state files under the debug directory.
func ledgerFiles(t *testing.T) []string {
	t.Helper()
	files, err := filepath.Glob(filepath.Join(config.DefaultDebugDir, "*", ledger.FileName))
	if err != nil {
		t.Fatalf("Glob: %v", err)
	}
	return files
}

func TestTranslateRestartReplaysFromCache(t *testing.T) {
	setupWorkspace(t)
	t.Setenv(config.APIKeyEnv, "sk-test")

	var calls int32
	srv := newEchoServer(t, &calls)
	args := []string{"en", "ru", "--base-url", srv.URL + "/v1", "--chunk-size", "2", "--output", "ru.csv"}
	if _, err := execute(t, args...); err != nil {
		t.Fatalf("translate: %v", err)
	}
	first, err := os.ReadFile("ru.csv")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	// Rows appended after the completed run must not survive a restart.
	if err := csvfile.Append("ru.csv", []csvfile.Row{{Key: "stray", Source: "x", Translation: "y"}}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	if _, err := execute(t, append(args, "--restart")...); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 3 {
		t.Fatalf("API calls after restart = %d, want 3 (cache replay)", n)
	}
	again, err := os.ReadFile("ru.csv")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(again) != string(first) {
		t.Fatalf("output after restart:\n%s\nwant:\n%s", again, first)
	}
	files := ledgerFiles(t)
	if len(files) != 1 {
		t.Fatalf("ledger files = %v, want one", files)
	}
	if data, _ := os.ReadFile(files[0]); strings.TrimSpace(string(data)) != "3" {
		t.Fatalf("ledger after restart = %q, want 3", data)
	}
}

func TestTranslateClearLedger(t *testing.T) {
	setupWorkspace(t)
	t.Setenv(config.APIKeyEnv, "sk-test")

	var calls int32
	srv := newEchoServer(t, &calls)
	args := []string{"en", "ru", "--base-url", srv.URL + "/v1", "--chunk-size", "2", "--output", "ru.csv", "--clear-ledger"}
	if _, err := execute(t, args...); err != nil {
		t.Fatalf("translate: %v", err)
	}
	if files := ledgerFiles(t); len(files) != 0 {
		t.Fatalf("resume state left after --clear-ledger: %v", files)
	}
	if n, _ := csvfile.CountRecords("ru.csv"); n != 5 {
		t.Fatalf("output records = %d, want 5", n)
	}
}

func TestTranslateUnknownLanguageStem(t *testing.T) {
	setupWorkspace(t)
	t.Setenv(config.APIKeyEnv, "sk-test")

	if err := os.WriteFile("strings.csv", []byte("greeting,Hello,Hallo\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	var calls int32
	srv := newEchoServer(t, &calls)
	if _, err := execute(t, "en", "strings.csv", "--base-url", srv.URL+"/v1", "--output", "out.csv"); err != nil {
		t.Fatalf("translate: %v", err)
	}
	got, err := csvfile.ReadTranslations("out.csv")
	if err != nil {
		t.Fatalf("ReadTranslations: %v", err)
	}
	if got["greeting"] != "Hallo" || got["no"] != "ru:No" {
		t.Fatalf("translations = %v", got)
	}
}

func TestTranslateSameDayUpdateNeedsOutput(t *testing.T) {
	setupWorkspace(t)
	t.Setenv(config.APIKeyEnv, "sk-test")

	today := "ru-" + time.Now().Format("20060102") + ".csv"
	if err := os.WriteFile(today, []byte("greeting,Hello,Привет\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := execute(t, "en", today); err == nil {
		t.Fatal("update run defaulted its output onto the destination")
	}
	if data, _ := os.ReadFile(today); string(data) != "greeting,Hello,Привет\n" {
		t.Fatalf("destination changed: %q", data)
	}
}

func TestTranslateReusesDestination(t *testing.T) {
	setupWorkspace(t)
	t.Setenv(config.APIKeyEnv, "sk-test")

	old := "greeting,Hello,Привет\nthanks,Thank you,Спасибо\n"
	if err := os.WriteFile("ru-20240101.csv", []byte(old), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	var calls int32
	srv := newEchoServer(t, &calls)
	if _, err := execute(t, "en.csv", "ru-20240101.csv", "--base-url", srv.URL+"/v1", "-o", "ru-new.csv"); err != nil {
		t.Fatalf("translate: %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("API calls = %d, want 1", n)
	}

	got, err := csvfile.ReadTranslations("ru-new.csv")
	if err != nil {
		t.Fatalf("ReadTranslations: %v", err)
	}
	if got["greeting"] != "Привет" || got["thanks"] != "Спасибо" {
		t.Errorf("reused translations = %q, %q", got["greeting"], got["thanks"])
	}
	if got["yes"] != "ru:Yes" {
		t.Errorf("translation[yes] = %q", got["yes"])
	}
}

func TestTranslateMissingAPIKeyTouchesNothing(t *testing.T) {
	dir := setupWorkspace(t)
	t.Setenv(config.APIKeyEnv, "")

	_, err := execute(t, "en", "ru", "--output", "ru.csv")
	if !errors.Is(err, config.ErrMissingAPIKey) {
		t.Fatalf("error = %v, want ErrMissingAPIKey", err)
	}
	for _, name := range []string{"ru.csv", config.DefaultDebugDir} {
		if _, err := os.Stat(filepath.Join(dir, name)); !os.IsNotExist(err) {
			t.Errorf("%s exists after a configuration error", name)
		}
	}
}

func TestTranslateDryRunSkipsAPI(t *testing.T) {
	setupWorkspace(t)
	t.Setenv(config.APIKeyEnv, "")

	if _, err := execute(t, "en", "de", "--dry-run", "--output", "de.csv"); err != nil {
		t.Fatalf("dry run: %v", err)
	}
	if _, err := os.Stat("de.csv"); !os.IsNotExist(err) {
		t.Fatal("dry run wrote the output table")
	}
}

func TestTranslateRejectsInvalidChunkSize(t *testing.T) {
	setupWorkspace(t)
	t.Setenv(config.APIKeyEnv, "sk-test")

	if _, err := execute(t, "en", "ru", "--chunk-size", "0"); err == nil {
		t.Fatal("chunk size 0 accepted")
	}
}

func TestWritePromptTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts", "prompt.txt")
	if err := writePromptTemplate(path, false); err != nil {
		t.Fatalf("writePromptTemplate: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "{lang}") || !strings.Contains(string(data), "{sep}") {
		t.Fatalf("template lacks placeholders:\n%s", data)
	}

	if err := writePromptTemplate(path, false); err == nil {
		t.Fatal("overwrote an existing template without --force")
	}
	if err := writePromptTemplate(path, true); err != nil {
		t.Fatalf("writePromptTemplate(force): %v", err)
	}
}

func TestProgressPercent(t *testing.T) {
	cases := []struct {
		done, total int
		want        string
	}{
		{0, 0, "100%"},
		{0, 4, "0%"},
		{1, 3, "33%"},
		{4, 4, "100%"},
	}
	for _, tc := range cases {
		if got := progressPercent(tc.done, tc.total); got != tc.want {
			t.Errorf("progressPercent(%d, %d) = %q, want %q", tc.done, tc.total, got, tc.want)
		}
	}
}

func TestAuthLoginListLogout(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	t.Setenv(config.APIKeyEnv, "")

	cmd := newRootCmd()
	cmd.SetIn(strings.NewReader("sk-stored-123456\n"))
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"auth", "login", "--base-url", "http://localhost:11434/v1"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("auth login: %v", err)
	}
	if got := settings.GetAPIKey("http://localhost:11434/v1"); got != "sk-stored-123456" {
		t.Fatalf("stored key = %q", got)
	}

	out, err := execute(t, "auth", "list")
	if err != nil {
		t.Fatalf("auth list: %v", err)
	}
	if !strings.Contains(out, "http://localhost:11434/v1") || !strings.Contains(out, "sk-s...3456") {
		t.Fatalf("auth list output:\n%s", out)
	}
	if strings.Contains(out, "sk-stored-123456") {
		t.Fatal("auth list printed an unmasked key")
	}

	if _, err := execute(t, "auth", "logout", "--base-url", "http://localhost:11434/v1/"); err != nil {
		t.Fatalf("auth logout: %v", err)
	}
	if got := settings.GetAPIKey("http://localhost:11434/v1"); got != "" {
		t.Fatalf("key still stored after logout: %q", got)
	}
}

func TestAuthLoginRejectsEmptyInput(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	cmd := newRootCmd()
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs([]string{"auth", "login"})
	if err := cmd.Execute(); err == nil {
		t.Fatal("auth login with no input succeeded")
	}
}

func TestTranslateDryRunCreatesNothing(t *testing.T) {
	dir := setupWorkspace(t)
	t.Setenv(config.APIKeyEnv, "")

	if _, err := execute(t, "en", "ru", "--dry-run", "--restart"); err != nil {
		t.Fatalf("dry run: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, config.DefaultDebugDir)); !os.IsNotExist(err) {
		t.Fatal("dry run created the debug directory")
	}
}
