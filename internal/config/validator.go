package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "debate.min_words")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// BuiltinThemes lists the theme names the TUI ships with.
// Must match styles.BuiltinThemes (kept separate to avoid importing the TUI here).
func BuiltinThemes() []string {
	return []string{"default", "high-contrast", "classroom"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateAPI()...)
	errors = append(errors, c.validateDebate()...)
	errors = append(errors, c.validateTUI()...)
	errors = append(errors, c.validateLogging()...)

	return errors
}

func (c *Config) validateAPI() []ValidationError {
	var errors []ValidationError

	if c.API.BaseURL == "" {
		errors = append(errors, ValidationError{
			Field:   "api.base_url",
			Value:   c.API.BaseURL,
			Message: "must be set",
		})
	} else if u, err := url.Parse(c.API.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errors = append(errors, ValidationError{
			Field:   "api.base_url",
			Value:   c.API.BaseURL,
			Message: "must be an absolute http or https URL",
		})
	}

	if c.API.Timeout <= 0 {
		errors = append(errors, ValidationError{
			Field:   "api.timeout",
			Value:   c.API.Timeout,
			Message: "must be positive",
		})
	}

	return errors
}

func (c *Config) validateDebate() []ValidationError {
	var errors []ValidationError

	const minPollInterval = time.Second
	if c.Debate.PollInterval < minPollInterval {
		errors = append(errors, ValidationError{
			Field:   "debate.poll_interval",
			Value:   c.Debate.PollInterval,
			Message: fmt.Sprintf("must be at least %s", minPollInterval),
		})
	}

	if c.Debate.MinWords < 1 {
		errors = append(errors, ValidationError{
			Field:   "debate.min_words",
			Value:   c.Debate.MinWords,
			Message: "must be at least 1",
		})
	}
	if c.Debate.MaxWords < c.Debate.MinWords {
		errors = append(errors, ValidationError{
			Field:   "debate.max_words",
			Value:   c.Debate.MaxWords,
			Message: fmt.Sprintf("must not be less than debate.min_words (%d)", c.Debate.MinWords),
		})
	}

	if c.Debate.StatementsPerRound < 1 {
		errors = append(errors, ValidationError{
			Field:   "debate.statements_per_round",
			Value:   c.Debate.StatementsPerRound,
			Message: "must be at least 1",
		})
	}

	if strings.Count(c.Debate.ResultsRoute, "%s") != 1 {
		errors = append(errors, ValidationError{
			Field:   "debate.results_route",
			Value:   c.Debate.ResultsRoute,
			Message: "must contain exactly one %s placeholder for the assignment ID",
		})
	}

	return errors
}

func (c *Config) validateTUI() []ValidationError {
	theme := c.TUI.Theme
	if theme == "" || slices.Contains(BuiltinThemes(), theme) {
		return nil
	}
	ext := strings.ToLower(filepath.Ext(theme))
	if ext == ".yaml" || ext == ".yml" {
		return nil
	}
	return []ValidationError{{
		Field:   "tui.theme",
		Value:   theme,
		Message: fmt.Sprintf("must be one of %s or a path to a .yaml theme file", strings.Join(BuiltinThemes(), ", ")),
	}}
}

func (c *Config) validateLogging() []ValidationError {
	if c.Logging.Level == "" || slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		return nil
	}
	return []ValidationError{{
		Field:   "logging.level",
		Value:   c.Logging.Level,
		Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
	}}
}
