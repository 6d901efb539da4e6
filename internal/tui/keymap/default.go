package keymap

import "github.com/charmbracelet/bubbles/key"

func bind(cmd Command, category, help string, keys ...string) KeyBinding {
	return KeyBinding{
		Command:  cmd,
		Category: category,
		Binding:  key.NewBinding(key.WithKeys(keys...), key.WithHelp(keys[0], help)),
	}
}

// DefaultKeymap returns the debate screen's key bindings.
func DefaultKeymap() *Keymap {
	quit := bind(CmdQuit, "General", "quit", "q", "esc")
	refresh := bind(CmdRefresh, "General", "refresh", "r")
	challenge := bind(CmdOpenChallenge, "Debate", "challenge", "x")

	return &Keymap{
		Name: "default",
		Global: []KeyBinding{
			bind(CmdQuit, "General", "quit", "ctrl+c"),
		},
		Modes: map[Mode]*ModeBindings{
			ModeLoading: {
				Mode:     ModeLoading,
				Bindings: []KeyBinding{quit},
			},
			ModeLoadError: {
				Mode: ModeLoadError,
				Bindings: []KeyBinding{
					bind(CmdRetry, "General", "retry", "r"),
					bind(CmdBack, "General", "back", "b"),
					quit,
				},
			},
			ModeChoosePosition: {
				Mode: ModeChoosePosition,
				Bindings: []KeyBinding{
					bind(CmdPickPro, "Position", "argue pro", "p"),
					bind(CmdPickCon, "Position", "argue con", "c"),
					refresh,
					quit,
				},
			},
			ModeCompose: {
				Mode: ModeCompose,
				Bindings: []KeyBinding{
					bind(CmdSubmit, "Statement", "submit", "ctrl+s"),
					bind(CmdCycleTechnique, "Statement", "technique", "tab"),
					bind(CmdLeaveEditor, "Statement", "done editing", "esc"),
				},
			},
			ModeBrowse: {
				Mode: ModeBrowse,
				Bindings: []KeyBinding{
					bind(CmdEdit, "Statement", "write", "i", "enter"),
					bind(CmdSubmit, "Statement", "submit", "ctrl+s"),
					challenge,
					refresh,
					quit,
				},
			},
			ModeAwaitAI: {
				Mode:     ModeAwaitAI,
				Bindings: []KeyBinding{refresh, quit},
			},
			ModeChallenge: {
				Mode: ModeChallenge,
				Bindings: []KeyBinding{
					bind(CmdNextOption, "Challenge", "next", "down", "j"),
					bind(CmdPrevOption, "Challenge", "previous", "up", "k"),
					bind(CmdConfirm, "Challenge", "challenge", "enter"),
					bind(CmdCancel, "Challenge", "cancel", "esc", "q"),
				},
			},
			ModeDebateComplete: {
				Mode: ModeDebateComplete,
				Bindings: []KeyBinding{
					bind(CmdContinue, "Debate", "continue", "enter"),
					challenge,
					refresh,
					quit,
				},
			},
		},
	}
}
