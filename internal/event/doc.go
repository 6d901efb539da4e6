// Package event provides a synchronous pub-sub bus for session events.
//
// The debate session controller publishes an event for every snapshot it
// applies and every action it performs. The command layer subscribes a
// logger to all of them, which gives a complete audit trail of a session
// without the controller knowing about log files.
//
// # Event types
//
//   - [SnapshotAppliedEvent] ("session.snapshot"): a fetched snapshot replaced the previous one
//   - [ActionChangedEvent] ("session.action_changed"): the server's nextAction changed
//   - [PollEvent] ("session.poll"): the poller fired or stopped
//   - [SubmissionEvent] ("session.submission"): a post, position, challenge or advance resolved
//   - [RedirectEvent] ("session.redirect"): the assignment is complete
//
// # Usage
//
//	bus := event.NewBus(logger)
//	bus.Subscribe("session.action_changed", func(e event.Event) {
//	    changed := e.(event.ActionChangedEvent)
//	    fmt.Println(changed.From, "->", changed.To)
//	})
//
// [Bus] is safe for concurrent use. Handlers are called synchronously on the
// publisher's goroutine and a panicking handler does not prevent delivery to
// the others.
package event
