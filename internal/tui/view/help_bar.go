package view

import (
	"strings"

	"github.com/Iron-Ham/rebuttal/internal/tui/keymap"
	"github.com/Iron-Ham/rebuttal/internal/tui/styles"
)

// HelpBar renders the key hints for the active mode. Disabled bindings are
// shown struck through so the student can see why a key does nothing.
// Bindings sharing a command are listed once.
func HelpBar(bindings []keymap.KeyBinding, width int) string {
	seen := make(map[keymap.Command]bool, len(bindings))
	var items []string
	for _, kb := range bindings {
		if seen[kb.Command] {
			continue
		}
		seen[kb.Command] = true

		k := "[" + kb.String() + "]"
		if !kb.Binding.Enabled() {
			items = append(items, styles.HelpDisabled.Render(k+" "+kb.Description()))
			continue
		}
		items = append(items, styles.HelpKey.Render(k)+" "+styles.HelpText.Render(kb.Description()))
	}
	line := strings.Join(items, "  ")
	if width > 0 {
		return TruncateANSI(line, width)
	}
	return line
}
