// Package config provides CLI commands for managing rebuttal configuration.
package config

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	appconfig "github.com/Iron-Ham/rebuttal/internal/config"
	tuiconfig "github.com/Iron-Ham/rebuttal/internal/tui/config"
)

// Wrapper functions for exec to allow testing
var execLookPath = exec.LookPath
var execCommand = exec.Command

// runInteractive opens the config editor; tests replace it.
var runInteractive = tuiconfig.Run

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify rebuttal configuration",
	Long: `View or modify rebuttal configuration.

Without arguments, opens an interactive configuration UI.
Use 'config show' to display configuration non-interactively.
Use subcommands to modify settings or create a config file.`,
	RunE: runConfigInteractive,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in the user's config file.

Keys use dot notation, e.g.:
  rebuttal config set api.base_url https://learn.example.edu
  rebuttal config set debate.poll_interval 15s
  rebuttal config set tui.theme high-contrast

Valid keys:
  api.base_url                - Origin of the learning platform's API
  api.timeout                 - Time limit for each request (e.g. 15s)
  debate.poll_interval        - How often to check for the opponent's reply
  debate.min_words            - Shortest statement that can be submitted
  debate.max_words            - Longest statement that can be submitted
  debate.statements_per_round - Statements each side makes in a debate
  debate.results_route        - Results page; %s is the assignment ID
  tui.theme                   - default, high-contrast, classroom or a .yaml theme file
  tui.alt_screen              - Take over the whole terminal (true/false)
  logging.enabled             - Write a debug log (true/false)
  logging.level               - debug, info, warn or error

The API token is not stored here; set REBUTTAL_API_TOKEN or put it in .env.`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long:  `Create a default config file at ~/.config/rebuttal/config.yaml with all available options.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file path",
	RunE:  runConfigPath,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open config file in your editor",
	Long: `Open the config file in your preferred editor.

Uses $EDITOR environment variable, or falls back to common editors (vim, nano, vi).
If no config file exists, creates one with default values first.`,
	RunE: runConfigEdit,
}

var configResetCmd = &cobra.Command{
	Use:   "reset [key]",
	Short: "Reset configuration to defaults",
	Long: `Reset configuration values to their defaults.

Without arguments, resets all configuration to defaults.
With a key argument, resets only that specific key.

Examples:
  rebuttal config reset                       # Reset all to defaults
  rebuttal config reset debate.poll_interval  # Reset only the poll interval`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigReset,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configResetCmd)
}

// Register adds all config-related commands to the given parent command.
// This is the main entry point for integrating the config subpackage with
// the root command.
func Register(parent *cobra.Command) {
	parent.AddCommand(configCmd)
}

func runConfigInteractive(cmd *cobra.Command, args []string) error {
	return runInteractive(viper.GetViper())
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	var cfg appconfig.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("failed to read configuration: %w", err)
	}

	fmt.Fprintln(out, "Current configuration:")
	fmt.Fprintln(out)

	// Show where config is being read from
	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(out, "Config file: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Fprintf(out, "Config file: (none - using defaults)\n")
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "api:")
	fmt.Fprintf(out, "  base_url: %s\n", cfg.API.BaseURL)
	fmt.Fprintf(out, "  token: %s\n", maskToken(cfg.API.Token))
	fmt.Fprintf(out, "  timeout: %s\n", cfg.API.Timeout)

	fmt.Fprintln(out, "debate:")
	fmt.Fprintf(out, "  poll_interval: %s\n", cfg.Debate.PollInterval)
	fmt.Fprintf(out, "  min_words: %d\n", cfg.Debate.MinWords)
	fmt.Fprintf(out, "  max_words: %d\n", cfg.Debate.MaxWords)
	fmt.Fprintf(out, "  statements_per_round: %d\n", cfg.Debate.StatementsPerRound)
	fmt.Fprintf(out, "  results_route: %s\n", cfg.Debate.ResultsRoute)

	fmt.Fprintln(out, "tui:")
	fmt.Fprintf(out, "  theme: %s\n", cfg.TUI.Theme)
	fmt.Fprintf(out, "  alt_screen: %v\n", cfg.TUI.AltScreen)

	fmt.Fprintln(out, "logging:")
	fmt.Fprintf(out, "  enabled: %v\n", cfg.Logging.Enabled)
	fmt.Fprintf(out, "  level: %s\n", cfg.Logging.Level)

	fmt.Fprintln(out, "paths:")
	fmt.Fprintf(out, "  state_dir: %s\n", cfg.Paths.ResolveStateDir())

	if errs := cfg.Validate(); len(errs) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Problems:")
		for _, e := range errs {
			fmt.Fprintf(out, "  - %s\n", e.Error())
		}
	}
	return nil
}

// maskToken hides all but the last four characters of a token.
func maskToken(token string) string {
	switch {
	case token == "":
		return "(not set)"
	case len(token) <= 8:
		return "****"
	default:
		return "****" + token[len(token)-4:]
	}
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	value := args[1]

	item, ok := tuiconfig.Lookup(key)
	if !ok {
		if key == "api.token" {
			return fmt.Errorf("the API token is not stored in the config file; set REBUTTAL_API_TOKEN or add it to .env")
		}
		return fmt.Errorf("unknown configuration key: %s\nRun 'rebuttal config set --help' to see valid keys", key)
	}

	if err := tuiconfig.Set(viper.GetViper(), item, value); err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}

	if err := tuiconfig.WriteConfigFile(viper.GetViper()); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Set %s = %v\n", key, viper.Get(key))
	fmt.Fprintf(out, "Config saved to %s\n", appconfig.ConfigFile())
	return nil
}

// defaultConfigContent is the commented template written by config init.
const defaultConfigContent = `# Rebuttal Configuration

# Learning platform API
api:
  # Origin of the platform's API
  base_url: http://localhost:8000
  # Time limit for each request
  timeout: 15s
  # The token is read from REBUTTAL_API_TOKEN or a .env file.

# Debate session rules; the server stays authoritative
debate:
  # How often to check for the AI opponent's reply
  poll_interval: 30s
  # Accepted statement length, inclusive
  min_words: 75
  max_words: 300
  # Statements each side makes in one debate
  statements_per_round: 5
  # Results page shown once the assignment is complete
  results_route: /student/debates/%s/results

# Terminal UI
tui:
  # default, high-contrast, classroom, or a path to a .yaml theme file
  theme: default
  # Take over the whole terminal while debating
  alt_screen: true

# Debug log written to the state directory
logging:
  enabled: true
  # debug, info, warn or error
  level: info

# Where rebuttal keeps its log (default: ~/.local/state/rebuttal)
paths:
  state_dir: ""
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	configDir := appconfig.ConfigDir()
	configFile := appconfig.ConfigFile()

	// Check if config file already exists
	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists at %s\nUse 'rebuttal config set' to modify values", configFile)
	}

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(configFile, []byte(defaultConfigContent), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created config file at %s\n", configFile)
	fmt.Fprintln(out, "Edit this file to customize rebuttal's behavior.")
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	configFile := appconfig.ConfigFile()

	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(out, "Active config: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Fprintf(out, "Default path: %s (not created)\n", configFile)
	}

	// Also show config search paths
	fmt.Fprintln(out, "\nSearch paths:")
	fmt.Fprintf(out, "  1. %s\n", filepath.Join(appconfig.ConfigDir(), "config.yaml"))
	fmt.Fprintf(out, "  2. $HOME/.config/rebuttal/config.yaml\n")
	fmt.Fprintf(out, "  3. ./config.yaml (current directory)\n")
	fmt.Fprintln(out, "\nEnvironment variables: REBUTTAL_* (e.g., REBUTTAL_API_TOKEN, REBUTTAL_DEBATE_POLL_INTERVAL)")
	fmt.Fprintln(out, "A .env file in the current directory is loaded first.")
	return nil
}

func runConfigEdit(cmd *cobra.Command, args []string) error {
	configFile := appconfig.ConfigFile()

	// Check if config file exists, if not create it
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		fmt.Fprintf(cmd.OutOrStdout(), "Config file doesn't exist, creating with defaults...\n")
		if err := runConfigInit(cmd, args); err != nil {
			return err
		}
	}

	editor := findEditor()
	if editor == "" {
		return fmt.Errorf("no editor found. Set $EDITOR environment variable")
	}

	editorCmd := execCommand(editor, configFile)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr

	if err := editorCmd.Run(); err != nil {
		return fmt.Errorf("editor exited with error: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Config file saved: %s\n", configFile)
	return nil
}

// findEditor returns $EDITOR, $VISUAL or the first common editor on PATH.
func findEditor() string {
	if editor := os.Getenv("EDITOR"); editor != "" {
		return editor
	}
	if editor := os.Getenv("VISUAL"); editor != "" {
		return editor
	}
	for _, e := range []string{"vim", "nano", "vi"} {
		if _, err := execLookPath(e); err == nil {
			return e
		}
	}
	return ""
}

func runConfigReset(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	defaults := tuiconfig.DefaultValues()

	if len(args) == 0 {
		keys := make([]string, 0, len(defaults))
		for key := range defaults {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			viper.Set(key, defaults[key])
		}
		fmt.Fprintln(out, "Reset all configuration to defaults.")
	} else {
		key := args[0]
		value, ok := defaults[key]
		if !ok {
			return fmt.Errorf("unknown configuration key: %s\nRun 'rebuttal config set --help' to see valid keys", key)
		}
		viper.Set(key, value)
		fmt.Fprintf(out, "Reset %s to default: %v\n", key, value)
	}

	if err := tuiconfig.WriteConfigFile(viper.GetViper()); err != nil {
		return err
	}
	fmt.Fprintf(out, "Config saved to %s\n", appconfig.ConfigFile())
	return nil
}

// printList writes a bulleted list.
func printList(w io.Writer, items []string) {
	for _, item := range items {
		fmt.Fprintf(w, "  - %s\n", strings.TrimSpace(item))
	}
}
