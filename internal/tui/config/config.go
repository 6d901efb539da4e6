// Package config provides the interactive editor behind `rebuttal config edit`.
package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/rebuttal/internal/config"
	"github.com/Iron-Ham/rebuttal/internal/tui/styles"
)

// ConfigItem represents a single configuration item
type ConfigItem struct {
	Key         string
	Label       string
	Description string
	Type        string   // "string", "bool", "int", "duration", "select"
	Options     []string // For select type
}

// Category represents a group of config items
type Category struct {
	Name  string
	Items []ConfigItem
}

// SaveFunc persists the edited configuration.
type SaveFunc func(v *viper.Viper) error

// Model is the Bubbletea model for the interactive config UI
type Model struct {
	v    *viper.Viper
	save SaveFunc

	categories    []Category
	categoryIndex int
	itemIndex     int
	width         int
	height        int
	editing       bool
	textInput     textinput.Model
	selectIndex   int
	errorMsg      string
	infoMsg       string
	quitting      bool
}

// Categories returns the editable settings. The API token is left out; it
// belongs in the environment or a .env file.
func Categories() []Category {
	return []Category{
		{
			Name: "API",
			Items: []ConfigItem{
				{Key: "api.base_url", Label: "Base URL", Description: "Origin of the learning platform's API", Type: "string"},
				{Key: "api.timeout", Label: "Request Timeout", Description: "Time limit for each request, e.g. 15s", Type: "duration"},
			},
		},
		{
			Name: "Debate",
			Items: []ConfigItem{
				{Key: "debate.poll_interval", Label: "Poll Interval", Description: "How often to check for the opponent's reply", Type: "duration"},
				{Key: "debate.min_words", Label: "Minimum Words", Description: "Shortest statement that can be submitted", Type: "int"},
				{Key: "debate.max_words", Label: "Maximum Words", Description: "Longest statement that can be submitted", Type: "int"},
				{Key: "debate.statements_per_round", Label: "Statements per Round", Description: "Statements each side makes in a debate", Type: "int"},
				{Key: "debate.results_route", Label: "Results Route", Description: "Results page; %s is the assignment ID", Type: "string"},
			},
		},
		{
			Name: "Display",
			Items: []ConfigItem{
				{Key: "tui.theme", Label: "Theme", Description: "Color theme for the debate screen", Type: "select", Options: config.BuiltinThemes()},
				{Key: "tui.alt_screen", Label: "Alternate Screen", Description: "Take over the whole terminal while debating", Type: "bool"},
			},
		},
		{
			Name: "Logging",
			Items: []ConfigItem{
				{Key: "logging.enabled", Label: "Enabled", Description: "Write a debug log to the state directory", Type: "bool"},
				{Key: "logging.level", Label: "Level", Description: "Minimum level written to the log", Type: "select", Options: config.ValidLogLevels()},
			},
		},
	}
}

// New creates a config editor over v. A nil save writes v to the user's
// config file.
func New(v *viper.Viper, save SaveFunc) Model {
	if save == nil {
		save = WriteConfigFile
	}
	ti := textinput.New()
	ti.CharLimit = 200
	ti.Width = 40

	return Model{
		v:          v,
		save:       save,
		categories: Categories(),
		textInput:  ti,
	}
}

// persistedSections are the top-level keys written to the config file.
var persistedSections = []string{"api", "debate", "tui", "logging", "paths"}

// WriteConfigFile writes v to config.ConfigFile, creating its directory.
// The API token and command-line only keys are left out.
func WriteConfigFile(v *viper.Viper) error {
	if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := persisted(v).WriteConfigAs(config.ConfigFile()); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// persisted copies the keys of v that belong in the config file.
func persisted(v *viper.Viper) *viper.Viper {
	out := viper.New()
	for _, key := range v.AllKeys() {
		section, _, _ := strings.Cut(key, ".")
		if key == "api.token" || !slices.Contains(persistedSections, section) {
			continue
		}
		value := v.Get(key)
		if d, ok := value.(time.Duration); ok {
			value = d.String()
		}
		out.Set(key, value)
	}
	return out
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		m.errorMsg = ""
		m.infoMsg = ""

		if m.editing {
			return m.handleEditingKeypress(msg)
		}

		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "up", "k":
			m.itemIndex--
			if m.itemIndex < 0 {
				m.categoryIndex = (m.categoryIndex - 1 + len(m.categories)) % len(m.categories)
				m.itemIndex = len(m.categories[m.categoryIndex].Items) - 1
			}

		case "down", "j":
			m.itemIndex++
			if m.itemIndex >= len(m.categories[m.categoryIndex].Items) {
				m.categoryIndex = (m.categoryIndex + 1) % len(m.categories)
				m.itemIndex = 0
			}

		case "tab":
			m.categoryIndex = (m.categoryIndex + 1) % len(m.categories)
			m.itemIndex = 0

		case "shift+tab":
			m.categoryIndex = (m.categoryIndex - 1 + len(m.categories)) % len(m.categories)
			m.itemIndex = 0

		case "enter", " ":
			item := m.currentItem()
			switch item.Type {
			case "bool":
				if err := m.validateAndSet(item, strconv.FormatBool(!m.v.GetBool(item.Key))); err != nil {
					m.errorMsg = err.Error()
					return m, nil
				}
				m.saveConfig()
			case "select":
				m.editing = true
				m.selectIndex = m.getCurrentSelectIndex()
			default:
				m.editing = true
				m.textInput.SetValue(m.getDisplayValue(item))
				cmd := m.textInput.Focus()
				return m, cmd
			}

		case "r":
			m.resetCurrentToDefault()
		}
	}

	return m, nil
}

func (m Model) handleEditingKeypress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	item := m.currentItem()

	switch msg.String() {
	case "esc":
		m.editing = false
		m.textInput.SetValue("")
		m.textInput.Blur()
		return m, nil

	case "enter":
		value := m.textInput.Value()
		if item.Type == "select" {
			value = item.Options[m.selectIndex]
		}
		if err := m.validateAndSet(item, value); err != nil {
			m.errorMsg = err.Error()
			return m, nil
		}
		m.saveConfig()
		m.editing = false
		m.textInput.SetValue("")
		m.textInput.Blur()
		return m, nil

	case "up", "k":
		if item.Type == "select" {
			m.selectIndex = (m.selectIndex - 1 + len(item.Options)) % len(item.Options)
			return m, nil
		}

	case "down", "j":
		if item.Type == "select" {
			m.selectIndex = (m.selectIndex + 1) % len(item.Options)
			return m, nil
		}
	}

	if item.Type != "select" {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(styles.Title.Render("Rebuttal Configuration"))
	b.WriteString("\n\n")

	configPath := m.v.ConfigFileUsed()
	if configPath == "" {
		configPath = config.ConfigFile() + " (not created)"
	}
	b.WriteString(styles.Muted.Render("Config file: " + configPath))
	b.WriteString("\n\n")

	for ci, cat := range m.categories {
		catStyle := styles.Muted.Bold(true)
		if ci == m.categoryIndex {
			catStyle = styles.Primary.Bold(true)
		}
		b.WriteString(catStyle.Render(fmt.Sprintf("[ %s ]", cat.Name)))
		b.WriteString("\n")

		for ii, item := range cat.Items {
			b.WriteString(m.renderItem(item, ci == m.categoryIndex && ii == m.itemIndex))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if m.editing {
		b.WriteString(m.renderEditOverlay())
	} else {
		b.WriteString(styles.Muted.Render(m.currentItem().Description))
	}
	b.WriteString("\n")

	if m.errorMsg != "" {
		b.WriteString("\n")
		b.WriteString(styles.Error.Render("Error: " + m.errorMsg))
	}
	if m.infoMsg != "" {
		b.WriteString("\n")
		b.WriteString(styles.Secondary.Render(m.infoMsg))
	}

	b.WriteString("\n")
	b.WriteString(m.renderHelp())
	return b.String()
}

func (m Model) renderItem(item ConfigItem, selected bool) string {
	label := fmt.Sprintf("%-24s", item.Label)
	value := m.getDisplayValue(item)
	if selected {
		return fmt.Sprintf("  %s %s  %s", styles.Secondary.Render(">"), styles.Text.Bold(true).Render(label), styles.Primary.Render(value))
	}
	return fmt.Sprintf("    %s  %s", styles.Muted.Render(label), styles.Text.Render(value))
}

func (m Model) renderEditOverlay() string {
	item := m.currentItem()

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.PrimaryColor).
		Padding(1, 2).
		Width(50)

	var content string
	if item.Type == "select" {
		content = fmt.Sprintf("Select %s:\n\n", item.Label)
		for i, opt := range item.Options {
			if i == m.selectIndex {
				content += styles.Selected.Render("> "+opt) + "\n"
			} else {
				content += styles.Unselected.Render("  "+opt) + "\n"
			}
		}
		content += "\n" + styles.Muted.Render("j/k or arrows to select, enter to confirm, esc to cancel")
	} else {
		content = fmt.Sprintf("Edit %s:\n\n", item.Label)
		content += m.textInput.View()
		content += "\n\n" + styles.Muted.Render("enter to save, esc to cancel")
	}
	return "\n" + box.Render(content)
}

func (m Model) renderHelp() string {
	key := styles.HelpKey.Render
	if m.editing {
		return key("enter") + " save  " + key("esc") + " cancel"
	}
	return key("j/k") + " navigate  " +
		key("tab") + " next category  " +
		key("enter") + " edit  " +
		key("r") + " reset  " +
		key("q") + " quit"
}

func (m Model) currentItem() ConfigItem {
	return m.categories[m.categoryIndex].Items[m.itemIndex]
}

func (m Model) getDisplayValue(item ConfigItem) string {
	switch item.Type {
	case "bool":
		return strconv.FormatBool(m.v.GetBool(item.Key))
	case "int":
		return strconv.Itoa(m.v.GetInt(item.Key))
	case "duration":
		return m.v.GetDuration(item.Key).String()
	default:
		return m.v.GetString(item.Key)
	}
}

func (m Model) getCurrentSelectIndex() int {
	item := m.currentItem()
	if i := slices.Index(item.Options, m.v.GetString(item.Key)); i >= 0 {
		return i
	}
	return 0
}

// Lookup returns the editable item for a dotted key.
func Lookup(key string) (ConfigItem, bool) {
	for _, cat := range Categories() {
		for _, item := range cat.Items {
			if item.Key == key {
				return item, true
			}
		}
	}
	return ConfigItem{}, false
}

// ParseValue converts raw input to the type item stores.
func ParseValue(item ConfigItem, value string) (any, error) {
	switch item.Type {
	case "int":
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("expected integer value")
		}
		return n, nil
	case "duration":
		d, err := time.ParseDuration(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("expected a duration like 30s or 2m")
		}
		return d, nil
	case "bool":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("expected true or false")
		}
		return b, nil
	case "select":
		// Theme files are accepted alongside the built-in names.
		if item.Key == "tui.theme" && styles.IsThemeFile(value) {
			return value, nil
		}
		if !slices.Contains(item.Options, value) {
			return nil, fmt.Errorf("invalid option: %s (options: %s)", value, strings.Join(item.Options, ", "))
		}
		return value, nil
	default:
		return strings.TrimSpace(value), nil
	}
}

// Set parses value for item, applies it to v, and rolls it back if the
// resulting configuration gains a validation error.
func Set(v *viper.Viper, item ConfigItem, value string) error {
	parsed, err := ParseValue(item, value)
	if err != nil {
		return err
	}

	before := invalidFields(v)
	previous := v.Get(item.Key)
	v.Set(item.Key, parsed)

	var cfg config.Config
	if err := v.Unmarshal(&cfg); err != nil {
		v.Set(item.Key, previous)
		return err
	}
	for _, verr := range cfg.Validate() {
		if !before[verr.Field] {
			v.Set(item.Key, previous)
			return verr
		}
	}
	return nil
}

func (m *Model) validateAndSet(item ConfigItem, value string) error {
	return Set(m.v, item, value)
}

func invalidFields(v *viper.Viper) map[string]bool {
	fields := make(map[string]bool)
	var cfg config.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return fields
	}
	for _, verr := range cfg.Validate() {
		fields[verr.Field] = true
	}
	return fields
}

func (m *Model) saveConfig() {
	if err := m.save(m.v); err != nil {
		m.errorMsg = err.Error()
		return
	}
	m.infoMsg = "Saved!"
}

// DefaultValues returns the default of every editable key.
func DefaultValues() map[string]any {
	d := config.Default()
	return map[string]any{
		"api.base_url":                d.API.BaseURL,
		"api.timeout":                 d.API.Timeout,
		"debate.poll_interval":        d.Debate.PollInterval,
		"debate.min_words":            d.Debate.MinWords,
		"debate.max_words":            d.Debate.MaxWords,
		"debate.statements_per_round": d.Debate.StatementsPerRound,
		"debate.results_route":        d.Debate.ResultsRoute,
		"tui.theme":                   d.TUI.Theme,
		"tui.alt_screen":              d.TUI.AltScreen,
		"logging.enabled":             d.Logging.Enabled,
		"logging.level":               d.Logging.Level,
	}
}

func (m *Model) resetCurrentToDefault() {
	item := m.currentItem()
	if value, ok := DefaultValues()[item.Key]; ok {
		m.v.Set(item.Key, value)
		m.saveConfig()
		m.infoMsg = fmt.Sprintf("Reset %s to default", item.Label)
	}
}

// Run starts the interactive config UI
func Run(v *viper.Viper) error {
	p := tea.NewProgram(New(v, nil), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
