package session

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Iron-Ham/rebuttal/internal/config"
	"github.com/Iron-Ham/rebuttal/internal/report"
	"github.com/Iron-Ham/rebuttal/internal/tui"
	"github.com/Iron-Ham/rebuttal/internal/tui/styles"
)

// Smallest terminal the debate screen is usable in.
const (
	minTerminalWidth  = 40
	minTerminalHeight = 12
)

// Wrapper functions for terminal checks to allow testing
var (
	isTerminal = func(fd uintptr) bool {
		return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	}
	terminalSize = func(fd int) (int, int, error) {
		return term.GetSize(fd)
	}
)

var debateCmd = &cobra.Command{
	Use:   "debate <assignment-id>",
	Short: "Open an assignment's debate session",
	Long: `Open the interactive debate screen for an assignment.

The screen follows the server: it asks for a position when one is needed,
opens the editor when it is your turn, and waits (refreshing every
debate.poll_interval) while the AI opponent writes its reply. Once all three
debates are done the final results are printed.`,
	Args: cobra.ExactArgs(1),
	RunE: runDebate,
}

func runDebate(cmd *cobra.Command, args []string) error {
	if err := checkTerminal(os.Stdin.Fd(), os.Stdout.Fd()); err != nil {
		return err
	}

	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.close()

	palette, err := styles.ResolvePalette(afero.NewOsFs(), e.cfg.TUI.Theme, config.ConfigDir())
	if err != nil {
		return fmt.Errorf("loading theme: %w", err)
	}
	styles.ApplyPalette(palette)

	assignmentID := args[0]
	ctrl := e.newController(assignmentID)
	defer ctrl.Close()

	e.logger.Info("debate session started", "assignment_id", assignmentID)
	result, err := tui.New(cmd.Context(), ctrl, tui.Options{AltScreen: e.cfg.TUI.AltScreen}).Run()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch {
	case result.Redirect != "":
		e.logger.Info("assignment complete", "route", result.Redirect)
		fmt.Fprintf(out, "Assignment complete. Results: %s\n\n", result.Redirect)
		score, err := e.client.GetScore(cmd.Context(), assignmentID)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Could not load results: %v\n", err)
			fmt.Fprintf(cmd.ErrOrStderr(), "Run 'rebuttal results %s' to try again.\n", assignmentID)
			return nil
		}
		return report.Render(out, score, report.FormatText)
	case result.Back:
		fmt.Fprintln(out, "Left the debate without loading it.")
	}
	return nil
}

// checkTerminal refuses to start the full-screen UI when either end is not
// an interactive terminal or the terminal is too small.
func checkTerminal(in, out uintptr) error {
	if !isTerminal(in) || !isTerminal(out) {
		return fmt.Errorf("the debate screen needs an interactive terminal; use 'rebuttal status' for scripted access")
	}
	width, height, err := terminalSize(int(out))
	if err != nil {
		// Size unknown; let the program discover it.
		return nil
	}
	if width < minTerminalWidth || height < minTerminalHeight {
		return fmt.Errorf("terminal is %dx%d; the debate screen needs at least %dx%d",
			width, height, minTerminalWidth, minTerminalHeight)
	}
	return nil
}
