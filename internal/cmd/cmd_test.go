package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// executeCommand runs a cobra command with args and returns captured output
func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err = root.Execute()
	return buf.String(), err
}

func TestRootCommand(t *testing.T) {
	if rootCmd.Use != "rebuttal" {
		t.Errorf("rootCmd.Use = %q, want %q", rootCmd.Use, "rebuttal")
	}

	// Compare by Name(), not Use which includes args
	expectedCmds := []string{"debate", "status", "results", "config", "logs"}
	cmdMap := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		cmdMap[cmd.Name()] = true
	}
	for _, expected := range expectedCmds {
		if !cmdMap[expected] {
			t.Errorf("expected subcommand %q not found", expected)
		}
	}
}

func TestDebateRequiresAssignmentID(t *testing.T) {
	t.Cleanup(viper.Reset)
	for _, name := range []string{"debate", "status", "results"} {
		t.Run(name, func(t *testing.T) {
			if _, err := executeCommand(rootCmd, name); err == nil {
				t.Errorf("%s without an assignment ID succeeded", name)
			}
		})
	}
}

func TestInitConfig_EnvFile(t *testing.T) {
	t.Cleanup(viper.Reset)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	envFile := filepath.Join(t.TempDir(), ".env")
	content := "REBUTTAL_DEBATE_POLL_INTERVAL=45s\nREBUTTAL_LOGGING_LEVEL=debug\n"
	if err := os.WriteFile(envFile, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		_ = os.Unsetenv("REBUTTAL_DEBATE_POLL_INTERVAL")
		_ = os.Unsetenv("REBUTTAL_LOGGING_LEVEL")
	})

	viper.Reset()
	viper.Set("env_file", envFile)
	initConfig()

	if got := viper.GetDuration("debate.poll_interval"); got != 45*time.Second {
		t.Errorf("debate.poll_interval = %v, want 45s from .env", got)
	}
	if got := viper.GetString("logging.level"); got != "debug" {
		t.Errorf("logging.level = %q, want debug from .env", got)
	}
	if got := viper.GetInt("debate.max_words"); got != 300 {
		t.Errorf("debate.max_words = %d, want default 300", got)
	}
}

func TestInitConfig_ExistingEnvWins(t *testing.T) {
	t.Cleanup(viper.Reset)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("REBUTTAL_TUI_THEME", "classroom")

	envFile := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(envFile, []byte("REBUTTAL_TUI_THEME=high-contrast\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	viper.Reset()
	viper.Set("env_file", envFile)
	initConfig()

	if got := viper.GetString("tui.theme"); got != "classroom" {
		t.Errorf("tui.theme = %q, want the process environment to win", got)
	}
}

func TestInitConfig_ConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	cfgPath := filepath.Join(dir, "custom.yaml")
	if err := os.WriteFile(cfgPath, []byte("debate:\n  min_words: 50\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	viper.Reset()
	viper.Set("env_file", "")
	viper.Set("config", cfgPath)
	initConfig()

	if got := viper.GetInt("debate.min_words"); got != 50 {
		t.Errorf("debate.min_words = %d, want 50", got)
	}
	if viper.ConfigFileUsed() != cfgPath {
		t.Errorf("ConfigFileUsed() = %q, want %q", viper.ConfigFileUsed(), cfgPath)
	}
}

func TestNewLogFilter(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	f, err := newLogFilter("warn", "1h", "poll|advance", "asg-1", now)
	if err != nil {
		t.Fatalf("newLogFilter() error = %v", err)
	}
	if f.minLevel != 2 {
		t.Errorf("minLevel = %d, want 2", f.minLevel)
	}
	if !f.since.Equal(now.Add(-time.Hour)) {
		t.Errorf("since = %v", f.since)
	}

	if _, err := newLogFilter("", "yesterday", "", "", now); err == nil {
		t.Error("newLogFilter() accepted an invalid duration")
	}
	if _, err := newLogFilter("", "", "(", "", now); err == nil {
		t.Error("newLogFilter() accepted an invalid pattern")
	}
}

func TestLogFilterPasses(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	entry := &logEntry{
		Time:         now.Add(-10 * time.Minute),
		Level:        "INFO",
		Msg:          "api response",
		AssignmentID: "asg-1",
		Extra:        map[string]any{"endpoint": "POST /posts"},
	}

	tests := []struct {
		name       string
		level      string
		since      string
		grep       string
		assignment string
		want       bool
	}{
		{"no filters", "", "", "", "", true},
		{"level below minimum", "warn", "", "", "", false},
		{"level at minimum", "info", "", "", "", true},
		{"too old", "", "5m", "", "", false},
		{"recent enough", "", "1h", "", "", true},
		{"grep matches extra", "", "", "posts", "", true},
		{"grep misses", "", "", "challenge", "", false},
		{"other assignment", "", "", "", "asg-2", false},
		{"same assignment", "", "", "", "asg-1", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := newLogFilter(tt.level, tt.since, tt.grep, tt.assignment, now)
			if err != nil {
				t.Fatalf("newLogFilter() error = %v", err)
			}
			if got := f.passes(entry); got != tt.want {
				t.Errorf("passes() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormatLogEntry(t *testing.T) {
	entry := &logEntry{
		Time:         time.Date(2026, 5, 1, 12, 0, 0, 0, time.Local),
		Level:        "warn",
		Msg:          "poll failed",
		AssignmentID: "asg-1",
		Action:       "await_ai",
		Extra:        map[string]any{"status": 503, "endpoint": "GET /progress"},
	}

	plain := formatLogEntry(entry, false)
	want := "[12:00:00.000] [WARN] poll failed assignment_id=asg-1 action=await_ai endpoint=GET /progress status=503"
	if plain != want {
		t.Errorf("formatLogEntry() = %q, want %q", plain, want)
	}

	colored := formatLogEntry(entry, true)
	if !strings.Contains(colored, colorYellow+"[WARN]"+colorReset) {
		t.Errorf("colored output missing level color: %q", colored)
	}
}

func TestLogEntryUnmarshal(t *testing.T) {
	var e logEntry
	line := `{"time":"2026-05-01T12:00:00Z","level":"INFO","msg":"snapshot applied","assignment_id":"asg-1","seq":4}`
	if err := e.UnmarshalJSON([]byte(line)); err != nil {
		t.Fatalf("UnmarshalJSON() error = %v", err)
	}
	if e.Msg != "snapshot applied" || e.AssignmentID != "asg-1" {
		t.Errorf("entry = %+v", e)
	}
	if len(e.Extra) != 1 || e.Extra["seq"] != 4.0 {
		t.Errorf("Extra = %v, want only seq", e.Extra)
	}
}

func writeLog(t *testing.T, lines ...string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "rebuttal.log")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestDisplayLogs(t *testing.T) {
	dir := writeLog(t,
		`{"time":"2026-05-01T12:00:00Z","level":"DEBUG","msg":"one"}`,
		`{"time":"2026-05-01T12:00:01Z","level":"INFO","msg":"two"}`,
		`not json`,
		`{"time":"2026-05-01T12:00:02Z","level":"ERROR","msg":"three"}`,
	)
	f, _ := newLogFilter("info", "", "", "", time.Now())

	var buf bytes.Buffer
	if err := displayLogs(&buf, filepath.Join(dir, "rebuttal.log"), 2, f, false); err != nil {
		t.Fatalf("displayLogs() error = %v", err)
	}
	got := buf.String()
	if strings.Contains(got, "one") || strings.Contains(got, "two") {
		t.Errorf("output not filtered and tailed:\n%s", got)
	}
	if !strings.Contains(got, "not json") || !strings.Contains(got, "[ERROR] three") {
		t.Errorf("output missing expected lines:\n%s", got)
	}
}

func TestDisplayLogs_NoMatches(t *testing.T) {
	dir := writeLog(t, `{"time":"2026-05-01T12:00:00Z","level":"DEBUG","msg":"one"}`)
	f, _ := newLogFilter("error", "", "", "", time.Now())

	var buf bytes.Buffer
	if err := displayLogs(&buf, filepath.Join(dir, "rebuttal.log"), 0, f, false); err != nil {
		t.Fatalf("displayLogs() error = %v", err)
	}
	if !strings.Contains(buf.String(), "No matching log entries found.") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestRunLogs_MissingFile(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("paths.state_dir", t.TempDir())

	buf := new(bytes.Buffer)
	cmd := &cobra.Command{}
	cmd.SetOut(buf)
	if err := runLogs(cmd, nil); err != nil {
		t.Fatalf("runLogs() error = %v", err)
	}
	if !strings.Contains(buf.String(), "No logs found.") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestFollowLogs_StopsOnCancel(t *testing.T) {
	dir := writeLog(t, `{"time":"2026-05-01T12:00:00Z","level":"INFO","msg":"old"}`)
	path := filepath.Join(dir, "rebuttal.log")
	f, _ := newLogFilter("", "", "", "", time.Now())

	ctx, cancel := context.WithCancel(context.Background())
	var buf bytes.Buffer
	done := make(chan error, 1)
	go func() { done <- followLogs(ctx, &buf, path, f, false) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("followLogs() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("followLogs() did not stop after cancel")
	}
	if strings.Contains(buf.String(), "old") {
		t.Errorf("follow printed existing entries:\n%s", buf.String())
	}
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func waitForOutput(t *testing.T, b *lockedBuffer, want string) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !strings.Contains(b.String(), want) {
		if time.Now().After(deadline) {
			t.Fatalf("output never contained %q:\n%s", want, b.String())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestFollowLogs_PrintsAppendedEntries(t *testing.T) {
	dir := writeLog(t, `{"time":"2026-05-01T12:00:00Z","level":"INFO","msg":"old"}`)
	path := filepath.Join(dir, "rebuttal.log")
	f, _ := newLogFilter("warn", "", "", "", time.Now())

	ctx, cancel := context.WithCancel(context.Background())
	out := &lockedBuffer{}
	done := make(chan error, 1)
	go func() { done <- followLogs(ctx, out, path, f, false) }()
	waitForOutput(t, out, "Following logs")

	file, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = file.WriteString(`{"time":"2026-05-01T12:00:01Z","level":"INFO","msg":"quiet"}` + "\n")
	_, _ = file.WriteString(`{"time":"2026-05-01T12:00:02Z","level":"ERROR","msg":"post rejected"}` + "\n")
	_ = file.Close()

	waitForOutput(t, out, "post rejected")
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("followLogs() error = %v", err)
	}
	if got := out.String(); strings.Contains(got, "quiet") || strings.Contains(got, "old") {
		t.Errorf("filtered entries printed:\n%s", got)
	}
}
