// Package logging provides structured logging for rebuttal.
//
// Logs are JSON lines produced by log/slog and written to
// {state dir}/rebuttal.log, so they never interleave with the terminal UI.
// Child loggers carry the assignment, the debate number and the server's
// nextAction so a session can be reconstructed after the fact:
//
//	logger, err := logging.NewLogger(stateDir, "info")
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	sessionLog := logger.WithAssignment("42").WithDebate(2)
//	sessionLog.Info("post submitted", "words", 118)
//
// Output:
//
//	{"time":"...","level":"INFO","msg":"post submitted","assignment_id":"42","debate":2,"words":118}
//
// The file rotates by size (see [RotationConfig]); backups sit next to it as
// rebuttal.log.1, rebuttal.log.2 and so on.
//
// Use [NopLogger] in tests.
package logging
