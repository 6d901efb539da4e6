package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestWriter(t *testing.T, maxBytes int64, backups int) *RotatingWriter {
	t.Helper()
	path := filepath.Join(t.TempDir(), "logs", FileName)
	rw, err := NewRotatingWriter(path, RotationConfig{MaxBackups: backups})
	if err != nil {
		t.Fatalf("NewRotatingWriter() error = %v", err)
	}
	rw.maxSizeB = maxBytes
	t.Cleanup(func() { _ = rw.Close() })
	return rw
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func TestDefaultRotationConfig(t *testing.T) {
	cfg := DefaultRotationConfig()
	if cfg.MaxSizeMB != 10 || cfg.MaxBackups != 3 {
		t.Errorf("DefaultRotationConfig() = %+v", cfg)
	}
}

func TestRotatingWriter_CreatesParentDir(t *testing.T) {
	rw := newTestWriter(t, 0, 1)
	if _, err := os.Stat(rw.FilePath()); err != nil {
		t.Fatalf("log file not created: %v", err)
	}
}

func TestRotatingWriter_Rotates(t *testing.T) {
	rw := newTestWriter(t, 10, 2)

	for _, line := range []string{"first\n", "second\n", "third\n"} {
		if _, err := rw.Write([]byte(line)); err != nil {
			t.Fatalf("Write(%q) error = %v", line, err)
		}
	}

	if got := readFile(t, rw.FilePath()); got != "third\n" {
		t.Errorf("current = %q, want third", got)
	}
	if got := readFile(t, rw.backupPath(1)); got != "second\n" {
		t.Errorf("backup 1 = %q, want second", got)
	}
	if got := readFile(t, rw.backupPath(2)); got != "first\n" {
		t.Errorf("backup 2 = %q, want first", got)
	}
}

func TestRotatingWriter_DropsOldestBackup(t *testing.T) {
	rw := newTestWriter(t, 5, 1)

	for _, line := range []string{"aaaa\n", "bbbb\n", "cccc\n"} {
		if _, err := rw.Write([]byte(line)); err != nil {
			t.Fatal(err)
		}
	}

	if got := readFile(t, rw.backupPath(1)); got != "bbbb\n" {
		t.Errorf("backup 1 = %q, want bbbb", got)
	}
	if _, err := os.Stat(rw.backupPath(2)); !os.IsNotExist(err) {
		t.Errorf("backup 2 should not exist, stat err = %v", err)
	}
}

func TestRotatingWriter_NoBackupsTruncates(t *testing.T) {
	rw := newTestWriter(t, 5, 0)

	for _, line := range []string{"aaaa\n", "bbbb\n"} {
		if _, err := rw.Write([]byte(line)); err != nil {
			t.Fatal(err)
		}
	}

	if got := readFile(t, rw.FilePath()); got != "bbbb\n" {
		t.Errorf("current = %q, want bbbb", got)
	}
	if _, err := os.Stat(rw.backupPath(1)); !os.IsNotExist(err) {
		t.Errorf("no backup expected, stat err = %v", err)
	}
}

func TestRotatingWriter_OversizedFirstWrite(t *testing.T) {
	rw := newTestWriter(t, 4, 1)

	if _, err := rw.Write([]byte("longer than the limit\n")); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(rw.backupPath(1)); !os.IsNotExist(err) {
		t.Error("an empty file should not be rotated")
	}
}

func TestRotatingWriter_AppendsToExisting(t *testing.T) {
	rw := newTestWriter(t, 0, 1)
	if _, err := rw.Write([]byte("one\n")); err != nil {
		t.Fatal(err)
	}
	_ = rw.Close()

	again, err := NewRotatingWriter(rw.FilePath(), RotationConfig{})
	if err != nil {
		t.Fatal(err)
	}
	defer again.Close()
	if again.currentSize != 4 {
		t.Errorf("currentSize = %d, want 4", again.currentSize)
	}
	if _, err := again.Write([]byte("two\n")); err != nil {
		t.Fatal(err)
	}
	if got := readFile(t, rw.FilePath()); !strings.HasPrefix(got, "one\ntwo") {
		t.Errorf("file = %q", got)
	}
}

func TestRotatingWriter_WriteAfterClose(t *testing.T) {
	rw := newTestWriter(t, 0, 1)
	if err := rw.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := rw.Write([]byte("late\n")); err == nil {
		t.Error("Write() after Close() should fail")
	}
	if err := rw.Close(); err != nil {
		t.Errorf("second Close() = %v", err)
	}
}

func TestNewRotatingLogger(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewRotatingLogger(dir, LevelInfo, RotationConfig{MaxSizeMB: 1, MaxBackups: 1})
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("session started", "assignment_id", "42")
	if err := logger.Close(); err != nil {
		t.Fatal(err)
	}

	entries := readEntries(t, []byte(readFile(t, filepath.Join(dir, FileName))))
	if len(entries) != 1 || entries[0]["assignment_id"] != "42" {
		t.Errorf("entries = %v", entries)
	}
}
