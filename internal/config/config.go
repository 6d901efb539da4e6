package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete rebuttal configuration
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Debate  DebateConfig  `mapstructure:"debate"`
	TUI     TUIConfig     `mapstructure:"tui"`
	Logging LoggingConfig `mapstructure:"logging"`
	Paths   PathsConfig   `mapstructure:"paths"`
}

// APIConfig controls how the backend is reached
type APIConfig struct {
	// BaseURL is the platform's API origin, e.g. "https://learn.example.edu"
	BaseURL string `mapstructure:"base_url"`
	// Token is the bearer token attached to every request.
	// Usually supplied through REBUTTAL_API_TOKEN or a .env file rather than the config file.
	Token string `mapstructure:"token"`
	// Timeout bounds every individual request (default: 15s)
	Timeout time.Duration `mapstructure:"timeout"`
}

// DebateConfig holds the session rules mirrored from the deployment.
// The server remains authoritative; these only drive client-side guards.
type DebateConfig struct {
	// PollInterval is how often progress is refetched while waiting for the AI (default: 30s)
	PollInterval time.Duration `mapstructure:"poll_interval"`
	// MinWords is the smallest accepted statement, inclusive (default: 75)
	MinWords int `mapstructure:"min_words"`
	// MaxWords is the largest accepted statement, inclusive (default: 300)
	MaxWords int `mapstructure:"max_words"`
	// StatementsPerRound is the number of statements in each debate (default: 5)
	StatementsPerRound int `mapstructure:"statements_per_round"`
	// ResultsRoute is the route the session redirects to once the assignment is complete.
	// "%s" is replaced by the assignment ID.
	ResultsRoute string `mapstructure:"results_route"`
}

// TUIConfig controls the terminal UI
type TUIConfig struct {
	// Theme is a built-in theme name or a path to a YAML theme file (default: "default")
	Theme string `mapstructure:"theme"`
	// AltScreen runs the session in the terminal's alternate screen (default: true)
	AltScreen bool `mapstructure:"alt_screen"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Enabled controls whether logs are written (default: true)
	Enabled bool `mapstructure:"enabled"`
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level"`
}

// PathsConfig controls where rebuttal stores data
type PathsConfig struct {
	// StateDir holds the log file. Empty means $XDG_STATE_HOME/rebuttal
	// or ~/.local/state/rebuttal. Supports ~ for home directory expansion.
	StateDir string `mapstructure:"state_dir"`
}

// ResolveStateDir returns the directory logs are written to.
func (p *PathsConfig) ResolveStateDir() string {
	if p.StateDir != "" {
		return expandHome(p.StateDir)
	}
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "rebuttal")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".rebuttal"
	}
	return filepath.Join(home, ".local", "state", "rebuttal")
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "http://localhost:8000",
			Timeout: 15 * time.Second,
		},
		Debate: DebateConfig{
			PollInterval:       30 * time.Second,
			MinWords:           75,
			MaxWords:           300,
			StatementsPerRound: 5,
			ResultsRoute:       "/student/debates/%s/results",
		},
		TUI: TUIConfig{
			Theme:     "default",
			AltScreen: true,
		},
		Logging: LoggingConfig{
			Enabled: true,
			Level:   "info",
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("api.base_url", defaults.API.BaseURL)
	viper.SetDefault("api.token", defaults.API.Token)
	viper.SetDefault("api.timeout", defaults.API.Timeout)

	viper.SetDefault("debate.poll_interval", defaults.Debate.PollInterval)
	viper.SetDefault("debate.min_words", defaults.Debate.MinWords)
	viper.SetDefault("debate.max_words", defaults.Debate.MaxWords)
	viper.SetDefault("debate.statements_per_round", defaults.Debate.StatementsPerRound)
	viper.SetDefault("debate.results_route", defaults.Debate.ResultsRoute)

	viper.SetDefault("tui.theme", defaults.TUI.Theme)
	viper.SetDefault("tui.alt_screen", defaults.TUI.AltScreen)

	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)

	viper.SetDefault("paths.state_dir", defaults.Paths.StateDir)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "rebuttal")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".rebuttal"
	}
	return filepath.Join(home, ".config", "rebuttal")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
