package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	appconfig "github.com/Iron-Ham/rebuttal/internal/config"
	"github.com/Iron-Ham/rebuttal/internal/logging"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "View debate session logs",
	Long: `View and filter the rebuttal log file.

Examples:
  # Show the last 50 entries
  rebuttal logs

  # Show everything logged for one assignment
  rebuttal logs -a asg-42 -n 0

  # Follow logs in real-time
  rebuttal logs -f

  # Filter by log level
  rebuttal logs --level warn

  # Show logs from the last hour
  rebuttal logs --since 1h

  # Search for specific patterns
  rebuttal logs --grep "poll|advance"`,
	RunE: runLogs,
}

var (
	logsAssignment string
	logsTail       int
	logsFollow     bool
	logsLevel      string
	logsSince      string
	logsGrep       string
)

func init() {
	logsCmd.Flags().StringVarP(&logsAssignment, "assignment", "a", "", "Only show entries for this assignment ID")
	logsCmd.Flags().IntVarP(&logsTail, "tail", "n", 50, "Number of lines to show (0 for all)")
	logsCmd.Flags().BoolVarP(&logsFollow, "follow", "f", false, "Follow log output (like tail -f)")
	logsCmd.Flags().StringVar(&logsLevel, "level", "", "Filter by minimum level (debug/info/warn/error)")
	logsCmd.Flags().StringVar(&logsSince, "since", "", "Show logs since duration ago (e.g., 1h, 30m)")
	logsCmd.Flags().StringVar(&logsGrep, "grep", "", "Filter logs matching pattern (regex)")
}

// logEntry represents a parsed JSON log line
type logEntry struct {
	Time         time.Time      `json:"time"`
	Level        string         `json:"level"`
	Msg          string         `json:"msg"`
	AssignmentID string         `json:"assignment_id,omitempty"`
	Action       string         `json:"action,omitempty"`
	Extra        map[string]any `json:"-"`
}

// UnmarshalJSON implements custom unmarshaling to capture extra fields
func (e *logEntry) UnmarshalJSON(data []byte) error {
	type alias logEntry
	aux := &struct{ *alias }{alias: (*alias)(e)}
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}

	var all map[string]any
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for _, known := range []string{"time", "level", "msg", "assignment_id", "action"} {
		delete(all, known)
	}
	if len(all) > 0 {
		e.Extra = all
	}
	return nil
}

// ANSI color codes for terminal output
const (
	colorReset  = "\033[0m"
	colorGray   = "\033[90m"
	colorBlue   = "\033[34m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorCyan   = "\033[36m"
)

// levelColor returns the ANSI color code for a log level
func levelColor(level string) string {
	switch strings.ToUpper(level) {
	case logging.LevelDebug:
		return colorGray
	case logging.LevelInfo:
		return colorBlue
	case logging.LevelWarn:
		return colorYellow
	case logging.LevelError:
		return colorRed
	default:
		return colorReset
	}
}

// levelPriority returns the priority of a log level for filtering
func levelPriority(level string) int {
	switch strings.ToUpper(level) {
	case logging.LevelDebug:
		return 0
	case logging.LevelInfo:
		return 1
	case logging.LevelWarn:
		return 2
	case logging.LevelError:
		return 3
	default:
		return -1
	}
}

// logFilter holds the parsed filter flags.
type logFilter struct {
	minLevel   int
	since      time.Time
	grep       *regexp.Regexp
	assignment string
}

func newLogFilter(level, since, grep, assignment string, now time.Time) (logFilter, error) {
	f := logFilter{minLevel: -1, assignment: assignment}
	if level != "" {
		f.minLevel = levelPriority(logging.ParseLevel(level))
	}
	if since != "" {
		d, err := time.ParseDuration(since)
		if err != nil {
			return f, fmt.Errorf("invalid duration format: %w", err)
		}
		f.since = now.Add(-d)
	}
	if grep != "" {
		re, err := regexp.Compile(grep)
		if err != nil {
			return f, fmt.Errorf("invalid grep pattern: %w", err)
		}
		f.grep = re
	}
	return f, nil
}

// passes checks if a log entry passes all filter criteria
func (f logFilter) passes(entry *logEntry) bool {
	if f.minLevel >= 0 && levelPriority(entry.Level) < f.minLevel {
		return false
	}
	if !f.since.IsZero() && entry.Time.Before(f.since) {
		return false
	}
	if f.assignment != "" && entry.AssignmentID != f.assignment {
		return false
	}
	if f.grep != nil {
		searchText := entry.Msg
		for _, v := range entry.Extra {
			searchText += " " + fmt.Sprintf("%v", v)
		}
		if !f.grep.MatchString(searchText) {
			return false
		}
	}
	return true
}

// formatLogEntry formats a log entry for terminal output. Colors are only
// emitted when color is set.
func formatLogEntry(entry *logEntry, color bool) string {
	paint := func(code, s string) string {
		if !color {
			return s
		}
		return code + s + colorReset
	}

	var sb strings.Builder
	sb.WriteString(paint(colorGray, "["+entry.Time.Local().Format("15:04:05.000")+"]"))
	sb.WriteString(" ")
	sb.WriteString(paint(levelColor(entry.Level), "["+strings.ToUpper(entry.Level)+"]"))
	sb.WriteString(" ")
	sb.WriteString(entry.Msg)

	if entry.AssignmentID != "" {
		sb.WriteString(" " + paint(colorCyan, "assignment_id="+entry.AssignmentID))
	}
	if entry.Action != "" {
		sb.WriteString(" " + paint(colorCyan, "action="+entry.Action))
	}

	// Extra fields, sorted so output is stable
	keys := make([]string, 0, len(entry.Extra))
	for k := range entry.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		sb.WriteString(" " + paint(colorCyan, k+"=") + fmt.Sprintf("%v", entry.Extra[k]))
	}
	return sb.String()
}

// logPath returns the log file the current config writes to.
func logPath() string {
	paths := appconfig.PathsConfig{StateDir: viper.GetString("paths.state_dir")}
	return filepath.Join(paths.ResolveStateDir(), logging.FileName)
}

func runLogs(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	path := logPath()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Fprintln(out, "No logs found.")
		fmt.Fprintln(out, "Logs are stored at:", path)
		return nil
	}

	filter, err := newLogFilter(logsLevel, logsSince, logsGrep, logsAssignment, time.Now())
	if err != nil {
		return err
	}

	color := false
	if f, ok := out.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd())
	}

	if logsFollow {
		return followLogs(cmd.Context(), out, path, filter, color)
	}
	return displayLogs(out, path, logsTail, filter, color)
}

// displayLogs reads the log file and displays filtered entries
func displayLogs(w io.Writer, path string, tail int, filter logFilter, color bool) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer file.Close()

	var entries []string
	scanner := bufio.NewScanner(file)

	// Increase buffer size for potentially long log lines
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		var entry logEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			entries = append(entries, line)
			continue
		}
		if !filter.passes(&entry) {
			continue
		}
		entries = append(entries, formatLogEntry(&entry, color))
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading log file: %w", err)
	}

	if tail > 0 && len(entries) > tail {
		entries = entries[len(entries)-tail:]
	}
	for _, entry := range entries {
		fmt.Fprintln(w, entry)
	}
	if len(entries) == 0 {
		fmt.Fprintln(w, "No matching log entries found.")
	}
	return nil
}

// followFallback bounds the wait between reads when no write event arrives.
const followFallback = time.Second

// followLogs implements tail -f behavior for the log file until ctx is done.
func followLogs(ctx context.Context, w io.Writer, path string, filter logFilter, color bool) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer file.Close()

	if _, err := file.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("failed to seek to end: %w", err)
	}

	// Without a watcher the fallback tick alone drives reads.
	var events <-chan fsnotify.Event
	if watcher, err := fsnotify.NewWatcher(); err == nil {
		defer watcher.Close()
		if err := watcher.Add(path); err == nil {
			events = watcher.Events
		}
	}

	fmt.Fprintf(w, "Following logs... (Ctrl+C to stop)\n\n")

	reader := bufio.NewReader(file)
	for {
		line, err := reader.ReadString('\n')
		if err == io.EOF {
			select {
			case <-ctx.Done():
				return nil
			case <-events:
			case <-time.After(followFallback):
			}
			// Keep the partial line for the next read.
			if line != "" {
				if _, err := file.Seek(-int64(len(line)), io.SeekCurrent); err != nil {
					return fmt.Errorf("failed to seek: %w", err)
				}
				reader.Reset(file)
			}
			continue
		}
		if err != nil {
			return fmt.Errorf("error reading log file: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var entry logEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			fmt.Fprintln(w, line)
			continue
		}
		if filter.passes(&entry) {
			fmt.Fprintln(w, formatLogEntry(&entry, color))
		}
	}
}
