package event

import "time"

// Event is the interface that all events must implement.
type Event interface {
	// EventType returns "category.action", e.g. "session.poll".
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

func newBaseEvent(eventType string) baseEvent {
	return baseEvent{eventType: eventType, timestamp: time.Now()}
}

// SnapshotAppliedEvent is emitted when a fetched snapshot replaces the current one.
type SnapshotAppliedEvent struct {
	baseEvent
	AssignmentID string
	Sequence     uint64 // fetch sequence number of the applied snapshot
	Source       string // "load", "refresh", "poll" or the action that triggered the refetch
	Action       string // nextAction of the new snapshot
	Debate       int
	Posts        int
}

// NewSnapshotAppliedEvent creates a SnapshotAppliedEvent.
func NewSnapshotAppliedEvent(assignmentID string, seq uint64, source, action string, debate, posts int) SnapshotAppliedEvent {
	return SnapshotAppliedEvent{
		baseEvent:    newBaseEvent("session.snapshot"),
		AssignmentID: assignmentID,
		Sequence:     seq,
		Source:       source,
		Action:       action,
		Debate:       debate,
		Posts:        posts,
	}
}

// ActionChangedEvent is emitted when the server's nextAction differs from the
// previously applied snapshot.
type ActionChangedEvent struct {
	baseEvent
	AssignmentID string
	From         string
	To           string
}

// NewActionChangedEvent creates an ActionChangedEvent.
func NewActionChangedEvent(assignmentID, from, to string) ActionChangedEvent {
	return ActionChangedEvent{
		baseEvent:    newBaseEvent("session.action_changed"),
		AssignmentID: assignmentID,
		From:         from,
		To:           to,
	}
}

// PollEvent is emitted when the poller starts, fires or stops.
type PollEvent struct {
	baseEvent
	AssignmentID string
	Phase        string // "started", "tick", "stopped"
	Err          error  // set when a tick's fetch failed
}

// NewPollEvent creates a PollEvent.
func NewPollEvent(assignmentID, phase string, err error) PollEvent {
	return PollEvent{
		baseEvent:    newBaseEvent("session.poll"),
		AssignmentID: assignmentID,
		Phase:        phase,
		Err:          err,
	}
}

// SubmissionEvent is emitted when a mutating action resolves.
type SubmissionEvent struct {
	baseEvent
	AssignmentID string
	Action       string // "post", "position", "challenge", "advance"
	Success      bool
	Err          error
}

// NewSubmissionEvent creates a SubmissionEvent.
func NewSubmissionEvent(assignmentID, action string, err error) SubmissionEvent {
	return SubmissionEvent{
		baseEvent:    newBaseEvent("session.submission"),
		AssignmentID: assignmentID,
		Action:       action,
		Success:      err == nil,
		Err:          err,
	}
}

// RedirectEvent is emitted once the assignment is complete.
type RedirectEvent struct {
	baseEvent
	AssignmentID string
	Route        string
}

// NewRedirectEvent creates a RedirectEvent.
func NewRedirectEvent(assignmentID, route string) RedirectEvent {
	return RedirectEvent{
		baseEvent:    newBaseEvent("session.redirect"),
		AssignmentID: assignmentID,
		Route:        route,
	}
}
