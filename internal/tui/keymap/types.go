// Package keymap defines the debate screen's key bindings per input mode.
// The model resolves a key press to a Command here instead of switching on
// raw key strings in its Update method.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Mode represents the current input mode of the TUI.
// Different modes have different key bindings active.
type Mode string

const (
	ModeLoading        Mode = "loading"         // First fetch in flight
	ModeLoadError      Mode = "load_error"      // First fetch failed
	ModeChoosePosition Mode = "choose_position" // Pro or con
	ModeCompose        Mode = "compose"         // Typing a statement
	ModeBrowse         Mode = "browse"          // submit_post with the editor unfocused
	ModeAwaitAI        Mode = "await_ai"        // Waiting for the opponent
	ModeChallenge      Mode = "challenge"       // Picking a fallacy or appeal
	ModeDebateComplete Mode = "debate_complete" // Between debates
)

// Command represents a named action that can be triggered by a key binding.
type Command string

const (
	CmdPickPro        Command = "pick_pro"
	CmdPickCon        Command = "pick_con"
	CmdSubmit         Command = "submit"
	CmdCycleTechnique Command = "cycle_technique"
	CmdLeaveEditor    Command = "leave_editor"
	CmdEdit           Command = "edit"
	CmdOpenChallenge  Command = "open_challenge"
	CmdNextOption     Command = "next_option"
	CmdPrevOption     Command = "prev_option"
	CmdConfirm        Command = "confirm"
	CmdCancel         Command = "cancel"
	CmdContinue       Command = "continue"
	CmdRefresh        Command = "refresh"
	CmdRetry          Command = "retry"
	CmdBack           Command = "back"
	CmdQuit           Command = "quit"
)

// KeyBinding ties a key.Binding to the command it triggers.
type KeyBinding struct {
	Command  Command
	Binding  key.Binding
	Category string
}

// Matches checks if a tea.KeyMsg matches this binding. Disabled bindings
// never match.
func (kb KeyBinding) Matches(msg tea.KeyMsg) bool {
	return key.Matches(msg, kb.Binding)
}

// String returns the key shown in help, e.g. "ctrl+s".
func (kb KeyBinding) String() string {
	return kb.Binding.Help().Key
}

// Description returns the help text for the binding.
func (kb KeyBinding) Description() string {
	return kb.Binding.Help().Desc
}

// ModeBindings holds all key bindings for a specific mode.
type ModeBindings struct {
	Mode     Mode
	Bindings []KeyBinding
}

// GetBinding looks up a command for a key in this mode.
// Returns the command and true if found, or empty command and false if not.
func (mb *ModeBindings) GetBinding(msg tea.KeyMsg) (Command, bool) {
	for _, binding := range mb.Bindings {
		if binding.Matches(msg) {
			return binding.Command, true
		}
	}
	return "", false
}

// Keymap contains all key bindings organized by mode.
type Keymap struct {
	Name  string
	Modes map[Mode]*ModeBindings

	// Global bindings apply in every mode and are checked first.
	Global []KeyBinding
}

// GetBinding looks up a command for a key in a specific mode.
func (km *Keymap) GetBinding(msg tea.KeyMsg, mode Mode) (Command, bool) {
	for _, binding := range km.Global {
		if binding.Matches(msg) {
			return binding.Command, true
		}
	}
	mb, ok := km.Modes[mode]
	if !ok {
		return "", false
	}
	return mb.GetBinding(msg)
}

// GetModeBindings returns all bindings for a specific mode.
func (km *Keymap) GetModeBindings(mode Mode) []KeyBinding {
	mb, ok := km.Modes[mode]
	if !ok {
		return nil
	}
	return mb.Bindings
}

// GetBindingsForCommand returns all bindings that trigger a specific command.
func (km *Keymap) GetBindingsForCommand(cmd Command, mode Mode) []KeyBinding {
	var result []KeyBinding
	for _, binding := range km.GetModeBindings(mode) {
		if binding.Command == cmd {
			result = append(result, binding)
		}
	}
	return result
}

// SetEnabled enables or disables every binding for cmd across all modes.
// Disabled bindings stay in help output but never match.
func (km *Keymap) SetEnabled(cmd Command, enabled bool) {
	for _, mb := range km.Modes {
		for i := range mb.Bindings {
			if mb.Bindings[i].Command == cmd {
				mb.Bindings[i].Binding.SetEnabled(enabled)
			}
		}
	}
}
