package config

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/rebuttal/internal/config"
)

func newViper() *viper.Viper {
	v := viper.New()
	d := config.Default()
	v.Set("api.base_url", d.API.BaseURL)
	v.Set("api.timeout", d.API.Timeout)
	v.Set("debate.poll_interval", d.Debate.PollInterval)
	v.Set("debate.min_words", d.Debate.MinWords)
	v.Set("debate.max_words", d.Debate.MaxWords)
	v.Set("debate.statements_per_round", d.Debate.StatementsPerRound)
	v.Set("debate.results_route", d.Debate.ResultsRoute)
	v.Set("tui.theme", d.TUI.Theme)
	v.Set("tui.alt_screen", d.TUI.AltScreen)
	v.Set("logging.enabled", d.Logging.Enabled)
	v.Set("logging.level", d.Logging.Level)
	return v
}

type saver struct{ calls int }

func (s *saver) save(*viper.Viper) error {
	s.calls++
	return nil
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(m Model, keys ...string) Model {
	for _, k := range keys {
		next, _ := m.Update(key(k))
		m = next.(Model)
	}
	return m
}

// focus moves the cursor to the item with the given key.
func focus(t *testing.T, m Model, itemKey string) Model {
	t.Helper()
	for ci, cat := range m.categories {
		for ii, item := range cat.Items {
			if item.Key == itemKey {
				m.categoryIndex = ci
				m.itemIndex = ii
				return m
			}
		}
	}
	t.Fatalf("no item %q", itemKey)
	return m
}

func TestCategories_CoverDefaults(t *testing.T) {
	defaults := DefaultValues()
	for _, cat := range Categories() {
		for _, item := range cat.Items {
			if _, ok := defaults[item.Key]; !ok {
				t.Errorf("%s has no default", item.Key)
			}
			if item.Key == "api.token" {
				t.Error("token must not be editable here")
			}
		}
	}
}

func TestNavigation(t *testing.T) {
	m := New(newViper(), (&saver{}).save)

	m = send(m, "j")
	if m.categoryIndex != 0 || m.itemIndex != 1 {
		t.Fatalf("after j: (%d,%d)", m.categoryIndex, m.itemIndex)
	}
	m = send(m, "j")
	if m.categoryIndex != 1 || m.itemIndex != 0 {
		t.Fatalf("j should wrap into the next category: (%d,%d)", m.categoryIndex, m.itemIndex)
	}
	m = send(m, "k", "k", "k")
	last := len(m.categories) - 1
	if m.categoryIndex != last || m.itemIndex != len(m.categories[last].Items)-1 {
		t.Fatalf("k should wrap to the last item: (%d,%d)", m.categoryIndex, m.itemIndex)
	}
	m = send(m, "tab")
	if m.categoryIndex != 0 || m.itemIndex != 0 {
		t.Errorf("tab should wrap to the first category: (%d,%d)", m.categoryIndex, m.itemIndex)
	}
}

func TestToggleBool(t *testing.T) {
	v := newViper()
	s := &saver{}
	m := focus(t, New(v, s.save), "tui.alt_screen")

	m = send(m, "enter")
	if v.GetBool("tui.alt_screen") {
		t.Error("alt_screen should toggle off")
	}
	if s.calls != 1 || m.infoMsg != "Saved!" {
		t.Errorf("save calls = %d, info = %q", s.calls, m.infoMsg)
	}
}

func TestEditInt(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		input   string
		want    int
		wantErr string
	}{
		{"valid", "debate.min_words", "50", 50, ""},
		{"not a number", "debate.min_words", "many", 75, "expected integer"},
		{"min above max", "debate.min_words", "400", 75, "debate.max_words"},
		{"zero statements", "debate.statements_per_round", "0", 5, "must be at least 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newViper()
			s := &saver{}
			m := focus(t, New(v, s.save), tt.key)

			m = send(m, "enter")
			if !m.editing {
				t.Fatal("enter should open the editor")
			}
			m.textInput.SetValue(tt.input)
			m = send(m, "enter")

			if got := v.GetInt(tt.key); got != tt.want {
				t.Errorf("%s = %d, want %d", tt.key, got, tt.want)
			}
			if tt.wantErr == "" {
				if m.editing || s.calls != 1 {
					t.Errorf("editing = %v, saves = %d", m.editing, s.calls)
				}
				return
			}
			if !strings.Contains(m.errorMsg, tt.wantErr) {
				t.Errorf("errorMsg = %q, want containing %q", m.errorMsg, tt.wantErr)
			}
			if !m.editing || s.calls != 0 {
				t.Errorf("editing = %v, saves = %d after rejected input", m.editing, s.calls)
			}
		})
	}
}

func TestEditDuration(t *testing.T) {
	v := newViper()
	m := focus(t, New(v, (&saver{}).save), "debate.poll_interval")

	m = send(m, "enter")
	m.textInput.SetValue("10s")
	_ = send(m, "enter")
	if got := v.GetDuration("debate.poll_interval"); got != 10*time.Second {
		t.Errorf("poll_interval = %s", got)
	}

	m = focus(t, New(v, (&saver{}).save), "debate.poll_interval")
	m = send(m, "enter")
	m.textInput.SetValue("100ms")
	m = send(m, "enter")
	if !strings.Contains(m.errorMsg, "at least") {
		t.Errorf("errorMsg = %q", m.errorMsg)
	}
}

func TestSelectTheme(t *testing.T) {
	v := newViper()
	m := focus(t, New(v, (&saver{}).save), "tui.theme")

	m = send(m, "enter", "j", "j", "enter")
	if got := v.GetString("tui.theme"); got != "classroom" {
		t.Errorf("theme = %q, want classroom", got)
	}
	if m.editing {
		t.Error("select should close after enter")
	}
}

func TestEscCancelsEdit(t *testing.T) {
	v := newViper()
	m := focus(t, New(v, (&saver{}).save), "api.base_url")

	m = send(m, "enter")
	m.textInput.SetValue("https://other.example.edu")
	m = send(m, "esc")
	if m.editing || v.GetString("api.base_url") != "http://localhost:8000" {
		t.Errorf("esc should discard: editing=%v url=%q", m.editing, v.GetString("api.base_url"))
	}
}

func TestResetToDefault(t *testing.T) {
	v := newViper()
	v.Set("debate.max_words", 500)
	m := focus(t, New(v, (&saver{}).save), "debate.max_words")

	m = send(m, "r")
	if got := v.GetInt("debate.max_words"); got != 300 {
		t.Errorf("max_words = %d after reset", got)
	}
	if !strings.Contains(m.infoMsg, "Maximum Words") {
		t.Errorf("infoMsg = %q", m.infoMsg)
	}
}

func TestSaveError(t *testing.T) {
	v := newViper()
	m := focus(t, New(v, func(*viper.Viper) error { return errors.New("disk full") }), "logging.enabled")
	m = send(m, "enter")
	if m.errorMsg != "disk full" {
		t.Errorf("errorMsg = %q", m.errorMsg)
	}
}

func TestView(t *testing.T) {
	m := New(newViper(), (&saver{}).save)
	got := m.View()
	for _, want := range []string{"Rebuttal Configuration", "[ API ]", "[ Debate ]", "Minimum Words", "75", "30s"} {
		if !strings.Contains(got, want) {
			t.Errorf("View() missing %q", want)
		}
	}

	m = send(m, "q")
	if m.View() != "" {
		t.Error("View() should be empty after quit")
	}
}

func TestLookup(t *testing.T) {
	item, ok := Lookup("debate.poll_interval")
	if !ok || item.Type != "duration" {
		t.Errorf("Lookup(debate.poll_interval) = %+v, %v", item, ok)
	}
	if _, ok := Lookup("api.token"); ok {
		t.Error("Lookup(api.token) found an item; the token is not editable")
	}
}

func TestSet(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		want    any
		wantErr bool
	}{
		{"theme file", "tui.theme", "themes/chalk.yaml", "themes/chalk.yaml", false},
		{"builtin theme", "tui.theme", "high-contrast", "high-contrast", false},
		{"unknown theme", "tui.theme", "neon", "default", true},
		{"bool", "logging.enabled", "false", false, false},
		{"bad url", "api.base_url", "ftp://example.com", "http://localhost:8000", true},
		{"poll too fast", "debate.poll_interval", "10ms", 30 * time.Second, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newViper()
			item, ok := Lookup(tt.key)
			if !ok {
				t.Fatalf("Lookup(%q) failed", tt.key)
			}
			err := Set(v, item, tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Set(%q, %q) error = %v, wantErr %v", tt.key, tt.value, err, tt.wantErr)
			}
			if got := v.Get(tt.key); got != tt.want {
				t.Errorf("%s = %v (%T), want %v (%T)", tt.key, got, got, tt.want, tt.want)
			}
		})
	}
}

func TestPersisted_DropsTokenAndFlags(t *testing.T) {
	v := newViper()
	v.Set("api.token", "secret")
	v.Set("config", "/tmp/other.yaml")

	out := persisted(v)
	if out.IsSet("api.token") {
		t.Error("persisted config contains the API token")
	}
	if out.IsSet("config") {
		t.Error("persisted config contains the --config flag")
	}
	if got := out.GetInt("debate.max_words"); got != 300 {
		t.Errorf("debate.max_words = %d, want 300", got)
	}
	if got := out.Get("debate.poll_interval"); got != "30s" {
		t.Errorf("debate.poll_interval = %v, want 30s", got)
	}
}
