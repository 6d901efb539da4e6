// Package tui runs the interactive debate screen.
package tui

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
)

// Result is how the debate screen ended.
type Result struct {
	// Redirect is the results route, set when the assignment is complete.
	Redirect string
	// Back is set when the student left from the load error frame.
	Back bool
}

// App wraps the Bubbletea program
type App struct {
	program *tea.Program
	model   Model
	opts    []tea.ProgramOption
}

// Options configures how the program takes over the terminal.
type Options struct {
	AltScreen bool
	// Extra is appended to the program options.
	Extra []tea.ProgramOption
}

// New creates a new TUI application bound to ctx.
func New(ctx context.Context, session Session, opts Options) *App {
	programOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if opts.AltScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}
	return &App{
		model: NewModel(ctx, session),
		opts:  append(programOpts, opts.Extra...),
	}
}

// Run starts the TUI and blocks until the student quits or the assignment
// completes.
func (a *App) Run() (Result, error) {
	a.program = tea.NewProgram(a.model, a.opts...)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGHUP)
	done := make(chan struct{})
	defer func() {
		signal.Stop(sigChan)
		close(done)
	}()

	program := a.program
	go func() {
		select {
		case <-sigChan:
			program.Quit()
		case <-done:
		}
	}()

	final, err := program.Run()
	if err != nil {
		return Result{}, fmt.Errorf("running debate screen: %w", err)
	}
	m, ok := final.(Model)
	if !ok {
		return Result{}, nil
	}
	return Result{Redirect: m.Redirect(), Back: m.Back()}, nil
}
