// Package view renders the debate screen's components.
//
// Every function here is a pure renderer: it takes the state it needs and
// returns a string, so components can be tested without a running program.
// The model picks which branch to draw from the snapshot's next action:
//
//   - [ChoosePosition]: pro/con picker shown when a debate's side is open
//   - [Compose]: transcript plus the statement editor and word meter
//   - [AwaitAI]: transcript plus a spinner while the opponent replies
//   - [DebateComplete]: the debate's score and a continue prompt
//
// The assignment_complete branch renders nothing; the program exits and the
// results view takes over.
package view
