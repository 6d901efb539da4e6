// Package debate models a student's debate assignment and drives a session
// against it.
//
// An assignment consists of three sequential debates against an AI opponent,
// each with a fixed number of statements. The backend owns all state; the
// client only ever holds the latest snapshot it fetched. The server's
// nextAction selects which of five views is shown:
//
//	choose_position -> submit_post <-> await_ai -> debate_complete -> assignment_complete
//
// # Controller
//
// [Controller] is the session state container. Every successful fetch
// replaces its [Snapshot] wholesale; nothing is patched locally or computed
// optimistically. Mutating operations are guarded against the current
// nextAction and against overlapping submissions, then followed by a refetch:
//
//	ctrl := debate.NewController(client, "42", settings, debate.WithLogger(logger))
//	defer ctrl.Close()
//
//	snap, err := ctrl.Load(ctx)
//	...
//	snap, err = ctrl.SubmitPost(ctx, draft, debate.TechniqueLogos)
//
// # Polling
//
// While the snapshot says await_ai the controller runs a [Poller] that
// refetches progress on a fixed interval and delivers results on
// [Controller.Updates]. Any snapshot that leaves await_ai cancels the
// poller's context, which stops its ticker and aborts an in-flight fetch.
//
// # Thread Safety
//
// Controller is safe for concurrent use. Backend calls are made without
// holding its mutex.
package debate
