// Package msg defines the message types used by the TUI's Bubbletea event loop.
//
// Every network operation the debate screen performs runs as a [tea.Cmd]
// built here and reports back with one of these messages, so the Update
// function never blocks on the backend. Poll results arrive through
// [WaitForUpdate], which the model re-issues after each delivery.
package msg
