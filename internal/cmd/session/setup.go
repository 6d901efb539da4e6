package session

import (
	"fmt"

	"github.com/Iron-Ham/rebuttal/internal/api"
	"github.com/Iron-Ham/rebuttal/internal/config"
	"github.com/Iron-Ham/rebuttal/internal/debate"
	"github.com/Iron-Ham/rebuttal/internal/event"
	"github.com/Iron-Ham/rebuttal/internal/logging"
)

// env is what every backend command needs: validated config, a logger and
// an API client.
type env struct {
	cfg    *config.Config
	logger *logging.Logger
	client *api.Client
}

// loadEnv reads the configuration and builds the shared dependencies.
// Callers must call close.
func loadEnv() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := logging.NopLogger()
	if cfg.Logging.Enabled {
		logger, err = logging.NewLogger(cfg.Paths.ResolveStateDir(), cfg.Logging.Level)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
	}

	client, err := api.New(api.Options{
		BaseURL: cfg.API.BaseURL,
		Token:   cfg.API.Token,
		Timeout: cfg.API.Timeout,
		Logger:  logger,
	})
	if err != nil {
		_ = logger.Close()
		return nil, err
	}
	if claims, ok := client.Claims(); ok {
		logger.Debug("authenticated", "subject", claims.Subject)
	}
	return &env{cfg: cfg, logger: logger, client: client}, nil
}

func (e *env) close() {
	_ = e.logger.Close()
}

// settings maps the debate config onto controller settings.
func (e *env) settings() debate.Settings {
	return debate.Settings{
		Limits:             debate.WordLimits{Min: e.cfg.Debate.MinWords, Max: e.cfg.Debate.MaxWords},
		PollInterval:       e.cfg.Debate.PollInterval,
		ResultsRoute:       e.cfg.Debate.ResultsRoute,
		StatementsPerRound: e.cfg.Debate.StatementsPerRound,
	}
}

// newController creates a controller whose session events are mirrored to
// the log.
func (e *env) newController(assignmentID string) *debate.Controller {
	bus := event.NewBus(e.logger)
	logger := e.logger.WithAssignment(assignmentID)
	bus.SubscribeAll(func(ev event.Event) {
		logger.Debug("session event", "type", ev.EventType())
	})
	return debate.NewController(e.client, assignmentID, e.settings(),
		debate.WithLogger(e.logger),
		debate.WithBus(bus),
	)
}
