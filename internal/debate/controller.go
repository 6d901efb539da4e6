package debate

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/Iron-Ham/rebuttal/internal/errors"
	"github.com/Iron-Ham/rebuttal/internal/event"
	"github.com/Iron-Ham/rebuttal/internal/logging"
)

// Update sources reported on snapshots and events.
const (
	SourceLoad      = "load"
	SourceRefresh   = "refresh"
	SourcePoll      = "poll"
	SourcePost      = "post"
	SourcePosition  = "position"
	SourceChallenge = "challenge"
	SourceAdvance   = "advance"
)

// DefaultPollInterval is how often progress is refetched while waiting on the AI.
const DefaultPollInterval = 30 * time.Second

// DefaultStatementsPerRound applies when the server omits statements_per_round.
const DefaultStatementsPerRound = 5

// DefaultResultsRoute is the results page format; %s is the assignment ID.
const DefaultResultsRoute = "/student/debates/%s/results"

// Settings tunes a Controller.
type Settings struct {
	Limits             WordLimits
	PollInterval       time.Duration
	ResultsRoute       string
	StatementsPerRound int
}

// DefaultSettings returns the deployment defaults.
func DefaultSettings() Settings {
	return Settings{
		Limits:             DefaultWordLimits,
		PollInterval:       DefaultPollInterval,
		ResultsRoute:       DefaultResultsRoute,
		StatementsPerRound: DefaultStatementsPerRound,
	}
}

// Update is a background result delivered on Controller.Updates. Exactly one
// of Snapshot (with Err nil) or Err is meaningful.
type Update struct {
	Snapshot Snapshot
	Source   string
	Err      error
}

// AdvanceOutcome is the result of Advance: either a reloaded snapshot for the
// next debate or a results redirect.
type AdvanceOutcome struct {
	Snapshot Snapshot
	Redirect string
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller's logger.
func WithLogger(logger *logging.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithBus sets the bus session events are published to.
func WithBus(bus *event.Bus) Option {
	return func(c *Controller) {
		c.bus = bus
	}
}

// Controller holds the session snapshot for one assignment and exposes the
// guarded operations the UI invokes.
type Controller struct {
	backend      Backend
	assignmentID string
	settings     Settings
	logger       *logging.Logger
	bus          *event.Bus

	ctx    context.Context
	cancel context.CancelFunc

	mu             sync.Mutex
	snapshot       Snapshot
	loaded         bool
	issued         uint64 // last sequence number handed to a fetch
	inFlight       string // submission currently pending, "" if none
	advancing      bool
	stale          bool // a mutation was accepted but the refetch after it failed
	positionDebate int // debate a position was submitted for
	draft          string
	redirect       string
	poller         *Poller
	closed         bool

	updates chan Update
}

// NewController creates a controller for assignmentID. Nothing is fetched
// until Load is called.
func NewController(backend Backend, assignmentID string, settings Settings, opts ...Option) *Controller {
	if settings.PollInterval <= 0 {
		settings.PollInterval = DefaultPollInterval
	}
	if settings.ResultsRoute == "" {
		settings.ResultsRoute = DefaultResultsRoute
	}
	if settings.Limits == (WordLimits{}) {
		settings.Limits = DefaultWordLimits
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		backend:      backend,
		assignmentID: assignmentID,
		settings:     settings,
		logger:       logging.NopLogger(),
		ctx:          ctx,
		cancel:       cancel,
		updates:      make(chan Update, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.WithAssignment(assignmentID)
	return c
}

// AssignmentID returns the assignment this controller drives.
func (c *Controller) AssignmentID() string {
	return c.assignmentID
}

// Settings returns the effective settings.
func (c *Controller) Settings() Settings {
	return c.settings
}

// Snapshot returns the current state container. The zero Snapshot is
// returned before the first successful Load.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot
}

// Loaded reports whether a snapshot has been applied.
func (c *Controller) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

// Draft returns the text of the last statement that was not accepted.
func (c *Controller) Draft() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// Busy reports which submission is pending, or "" when none is.
func (c *Controller) Busy() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

// Polling reports whether the await_ai poller is running.
func (c *Controller) Polling() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.poller != nil && c.poller.Running()
}

// Updates delivers poll results. Only the latest undelivered update is kept.
func (c *Controller) Updates() <-chan Update {
	return c.updates
}

// Done is closed when the controller is closed.
func (c *Controller) Done() <-chan struct{} {
	return c.ctx.Done()
}

// ChallengeTarget returns the post a challenge may be attached to.
func (c *Controller) ChallengeTarget() (Post, bool) {
	return c.Snapshot().Progress.ChallengeTarget()
}

// Redirect returns the results route once assignment_complete has been
// observed, or "" before that.
func (c *Controller) Redirect() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.redirect
}

// Load fetches assignment metadata and progress concurrently and replaces the
// snapshot. A failure leaves the previous snapshot in place and is returned
// as a *errors.LoadError; there is no automatic retry.
func (c *Controller) Load(ctx context.Context) (Snapshot, error) {
	seq, err := c.begin()
	if err != nil {
		return Snapshot{}, err
	}

	var (
		assignment Assignment
		progress   Progress
	)
	p := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError()
	p.Go(func(ctx context.Context) error {
		a, err := c.backend.GetAssignment(ctx, c.assignmentID)
		if err != nil {
			return errors.Wrap(err, "fetch assignment")
		}
		assignment = a
		return nil
	})
	p.Go(func(ctx context.Context) error {
		pr, err := c.backend.GetProgress(ctx, c.assignmentID)
		if err != nil {
			return errors.Wrap(err, "fetch progress")
		}
		progress = pr
		return nil
	})
	if err := p.Wait(); err != nil {
		c.logger.Error("load failed", "error", err)
		return c.Snapshot(), errors.NewLoadError(c.assignmentID, err)
	}

	snap, _ := c.apply(seq, &assignment, progress, SourceLoad)
	return snap, nil
}

// Refresh refetches progress on demand. It also restarts a poller that was
// stopped by a failed poll.
func (c *Controller) Refresh(ctx context.Context) (Snapshot, error) {
	return c.refetch(ctx, SourceRefresh)
}

// SubmitPost sends a student statement. The content is trimmed and its word
// count checked against the limits before any request is made. On failure
// the draft is kept and the snapshot is unchanged.
func (c *Controller) SubmitPost(ctx context.Context, content string, technique Technique) (Snapshot, error) {
	trimmed := strings.TrimSpace(content)
	words := CountWords(trimmed)

	c.mu.Lock()
	c.draft = content
	if err := c.guardLocked(ActionSubmitPost); err != nil {
		c.mu.Unlock()
		return c.Snapshot(), err
	}
	if !c.snapshot.Progress.CanSubmitPost {
		c.mu.Unlock()
		return c.Snapshot(), errors.NewValidationError("You can't post right now.").
			WithCause(errors.ErrWrongState)
	}
	if !c.settings.Limits.Accepts(words) {
		c.mu.Unlock()
		return c.Snapshot(), errors.NewValidationError(fmt.Sprintf(
			"Statements must be between %d and %d words (currently %d).",
			c.settings.Limits.Min, c.settings.Limits.Max, words)).
			WithField("content").
			WithValue(words).
			WithCause(errors.ErrWordCount)
	}
	if !technique.Valid() {
		c.mu.Unlock()
		return c.Snapshot(), errors.NewValidationError(fmt.Sprintf("Unknown technique %q.", technique)).
			WithField("technique").
			WithValue(technique)
	}
	c.inFlight = SourcePost
	c.mu.Unlock()
	defer c.finish()

	receipt, err := c.backend.SubmitPost(ctx, c.assignmentID, PostSubmission{
		Content:   trimmed,
		WordCount: words,
		Technique: technique,
	})
	if err == nil && (receipt.Flagged || receipt.Post.Moderation == ModerationFlagged) {
		err = errors.ErrContentFlagged
	}
	if err != nil {
		return c.Snapshot(), c.failed(SourcePost, err)
	}

	c.mu.Lock()
	c.draft = ""
	c.mu.Unlock()
	c.succeeded(SourcePost)

	return c.refetchAfter(ctx, SourcePost)
}

// SelectPosition records the student's side for the current debate. Only one
// selection per debate is sent.
func (c *Controller) SelectPosition(ctx context.Context, position Position) (Snapshot, error) {
	if !position.Chosen() {
		return c.Snapshot(), errors.NewValidationError("Pick pro or con.").
			WithField("position").
			WithValue(position)
	}

	c.mu.Lock()
	if err := c.guardLocked(ActionChoosePosition); err != nil {
		c.mu.Unlock()
		return c.Snapshot(), err
	}
	debateNum := c.snapshot.Progress.StudentDebate.CurrentDebate
	if c.positionDebate == debateNum {
		c.mu.Unlock()
		return c.Snapshot(), errors.NewValidationError("A position was already selected for this debate.").
			WithCause(errors.ErrPositionChosen)
	}
	c.inFlight = SourcePosition
	c.mu.Unlock()
	defer c.finish()

	if err := c.backend.SelectPosition(ctx, c.assignmentID, position); err != nil {
		return c.Snapshot(), c.failed(SourcePosition, err)
	}

	c.mu.Lock()
	c.positionDebate = debateNum
	c.mu.Unlock()
	c.succeeded(SourcePosition)
	c.logger.WithDebate(debateNum).Info("position selected", "position", string(position))

	return c.refetchAfter(ctx, SourcePosition)
}

// SubmitChallenge challenges the latest AI post with a catalog entry. It is
// rejected unless postID names the last post, that post is an AI post, and
// optionKey is in the available catalog. nextAction is not affected; the
// refetch only picks up score changes.
func (c *Controller) SubmitChallenge(ctx context.Context, postID, optionKey string) (ChallengeResult, Snapshot, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ChallengeResult{}, Snapshot{}, errors.ErrClosed
	}
	target, ok := c.snapshot.Progress.ChallengeTarget()
	if !ok || target.ID != postID {
		c.mu.Unlock()
		return ChallengeResult{}, c.Snapshot(), errors.NewValidationError("Only the AI's latest post can be challenged.").
			WithField("post_id").
			WithValue(postID).
			WithCause(errors.ErrChallengeUnavailable)
	}
	option, ok := c.snapshot.Progress.ChallengeOption(optionKey)
	if !ok {
		c.mu.Unlock()
		return ChallengeResult{}, c.Snapshot(), errors.NewValidationError("That challenge isn't available.").
			WithField("challenge").
			WithValue(optionKey).
			WithCause(errors.ErrChallengeUnavailable)
	}
	if c.stale {
		c.mu.Unlock()
		return ChallengeResult{}, c.Snapshot(), errors.ErrStaleProgress
	}
	if c.inFlight != "" {
		c.mu.Unlock()
		return ChallengeResult{}, c.Snapshot(), errors.ErrSubmissionInFlight
	}
	c.inFlight = SourceChallenge
	c.mu.Unlock()
	defer c.finish()

	result, err := c.backend.SubmitChallenge(ctx, c.assignmentID, ChallengeSubmission{
		PostID: postID,
		Kind:   option.Kind,
		Key:    option.Key,
	})
	if err != nil {
		return ChallengeResult{}, c.Snapshot(), c.failed(SourceChallenge, err)
	}
	c.succeeded(SourceChallenge)
	c.logger.Info("challenge resolved", "post_id", postID, "challenge", option.Key, "correct", result.Correct)

	snap, err := c.refetchAfter(ctx, SourceChallenge)
	return result, snap, err
}

// Advance moves past a completed debate. It sends at most one request per
// debate: once called, further calls return ErrAdvanceInProgress without a
// network request until a snapshot leaves debate_complete or the request
// fails.
func (c *Controller) Advance(ctx context.Context) (AdvanceOutcome, error) {
	c.mu.Lock()
	if c.advancing {
		c.mu.Unlock()
		return AdvanceOutcome{Snapshot: c.Snapshot()}, errors.ErrAdvanceInProgress
	}
	if err := c.guardLocked(ActionDebateComplete); err != nil {
		c.mu.Unlock()
		return AdvanceOutcome{Snapshot: c.Snapshot()}, err
	}
	c.advancing = true
	c.mu.Unlock()

	result, err := c.backend.Advance(ctx, c.assignmentID)
	if err != nil {
		c.mu.Lock()
		c.advancing = false
		c.mu.Unlock()
		return AdvanceOutcome{Snapshot: c.Snapshot()}, c.failed(SourceAdvance, err)
	}
	c.succeeded(SourceAdvance)

	if result.AssignmentComplete {
		route := c.markRedirect()
		return AdvanceOutcome{Snapshot: c.Snapshot(), Redirect: route}, nil
	}

	c.logger.WithDebate(result.NextDebate).Info("advanced to next debate")
	snap, err := c.Load(ctx)
	if err != nil {
		return AdvanceOutcome{Snapshot: snap}, c.markStale(SourceAdvance, err)
	}
	return AdvanceOutcome{Snapshot: snap, Redirect: c.Redirect()}, nil
}

// Close stops the poller and releases the controller. Later operations
// return ErrClosed and no further updates are delivered.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	poller := c.poller
	c.poller = nil
	c.mu.Unlock()

	if poller != nil {
		poller.Stop()
		c.publish(event.NewPollEvent(c.assignmentID, "stopped", nil))
	}
	c.cancel()
	c.logger.Debug("session closed")
}

// begin reserves a fetch sequence number.
func (c *Controller) begin() (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, errors.ErrClosed
	}
	c.issued++
	return c.issued, nil
}

// guardLocked rejects an operation that needs want as the current action or
// that would overlap another submission. c.mu must be held.
func (c *Controller) guardLocked(want NextAction) error {
	if c.closed {
		return errors.ErrClosed
	}
	if c.stale {
		return errors.ErrStaleProgress
	}
	if got := c.snapshot.Progress.NextAction; got != want {
		return errors.NewValidationError(fmt.Sprintf("That isn't available right now (%s).", got)).
			WithCause(errors.Wrapf(errors.ErrWrongState, "need %s, have %s", want, got))
	}
	if c.inFlight != "" {
		return errors.ErrSubmissionInFlight
	}
	return nil
}

func (c *Controller) finish() {
	c.mu.Lock()
	c.inFlight = ""
	c.mu.Unlock()
}

func (c *Controller) failed(action string, err error) error {
	c.logger.WithAction(action).Warn("submission failed", "error", err)
	c.publish(event.NewSubmissionEvent(c.assignmentID, action, err))
	return errors.NewSubmissionError(action, err)
}

func (c *Controller) succeeded(action string) {
	c.publish(event.NewSubmissionEvent(c.assignmentID, action, nil))
}

// refetch replaces the snapshot with fresh progress, keeping the assignment
// metadata.
func (c *Controller) refetch(ctx context.Context, source string) (Snapshot, error) {
	seq, err := c.begin()
	if err != nil {
		return Snapshot{}, err
	}
	progress, err := c.backend.GetProgress(ctx, c.assignmentID)
	if err != nil {
		c.logger.Warn("refetch failed", "source", source, "error", err)
		return c.Snapshot(), errors.Wrap(err, "refresh progress")
	}
	snap, _ := c.apply(seq, nil, progress, source)
	return snap, nil
}

// refetchAfter is refetch following an accepted mutation. If the refetch
// fails the snapshot no longer reflects the server, so further submissions
// are refused until a fetch succeeds.
func (c *Controller) refetchAfter(ctx context.Context, source string) (Snapshot, error) {
	snap, err := c.refetch(ctx, source)
	if err != nil {
		return snap, c.markStale(source, err)
	}
	return snap, nil
}

func (c *Controller) markStale(source string, err error) error {
	c.mu.Lock()
	if !c.closed {
		c.stale = true
	}
	c.mu.Unlock()
	c.logger.WithAction(source).Warn("accepted but progress is stale", "error", err)
	return fmt.Errorf("%w: %w", errors.ErrStaleProgress, err)
}

// Stale reports whether submissions are held until the next successful fetch.
func (c *Controller) Stale() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stale
}

// poll is the poller's tick. A canceled context means the poller was stopped
// while the request was in flight; the result is dropped.
func (c *Controller) poll(ctx context.Context) {
	seq, err := c.begin()
	if err != nil {
		return
	}
	progress, err := c.backend.GetProgress(ctx, c.assignmentID)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		c.logger.Warn("poll failed", "error", err)
		c.publish(event.NewPollEvent(c.assignmentID, "tick", err))
		c.stopPolling()
		c.deliver(Update{Source: SourcePoll, Err: errors.Wrap(err, "poll progress")})
		return
	}
	c.publish(event.NewPollEvent(c.assignmentID, "tick", nil))
	if snap, ok := c.apply(seq, nil, progress, SourcePoll); ok {
		c.deliver(Update{Snapshot: snap, Source: SourcePoll})
	}
}

func (c *Controller) stopPolling() {
	c.mu.Lock()
	poller := c.poller
	c.poller = nil
	c.mu.Unlock()
	if poller != nil {
		poller.Stop()
		c.publish(event.NewPollEvent(c.assignmentID, "stopped", nil))
	}
}

// deliver hands u to the UI, replacing an undelivered older update.
func (c *Controller) deliver(u Update) {
	select {
	case <-c.ctx.Done():
		return
	default:
	}
	for {
		select {
		case c.updates <- u:
			return
		default:
		}
		select {
		case <-c.updates:
		default:
		}
	}
}

func (c *Controller) markRedirect() string {
	c.mu.Lock()
	if c.redirect != "" {
		route := c.redirect
		c.mu.Unlock()
		return route
	}
	c.redirect = fmt.Sprintf(c.settings.ResultsRoute, c.assignmentID)
	route := c.redirect
	c.mu.Unlock()

	c.logger.Info("assignment complete", "route", route)
	c.publish(event.NewRedirectEvent(c.assignmentID, route))
	return route
}

// apply installs a fetched snapshot unless a newer one was applied already.
// assignment is nil for progress-only fetches. It reconciles the poller with
// the new nextAction and reports whether the snapshot was applied.
func (c *Controller) apply(seq uint64, assignment *Assignment, progress Progress, source string) (Snapshot, bool) {
	c.mu.Lock()
	if c.closed || (c.loaded && seq <= c.snapshot.Sequence) {
		snap := c.snapshot
		c.mu.Unlock()
		c.logger.Debug("discarded stale snapshot", "sequence", seq, "source", source)
		return snap, false
	}

	prev := c.snapshot.Progress.NextAction
	next := Snapshot{
		Assignment: c.snapshot.Assignment,
		Progress:   progress,
		Sequence:   seq,
		FetchedAt:  time.Now(),
	}
	if assignment != nil {
		next.Assignment = *assignment
	}
	if next.Assignment.StatementsPerRound <= 0 {
		next.Assignment.StatementsPerRound = c.settings.StatementsPerRound
	}
	if next.Progress.StatementsPerRound <= 0 {
		next.Progress.StatementsPerRound = next.Assignment.StatementsPerRound
	}
	c.snapshot = next
	c.loaded = true
	c.stale = false

	action := progress.NextAction
	if action != ActionDebateComplete {
		c.advancing = false
	}

	var started, stopped bool
	switch {
	case action == ActionAwaitAI && c.poller == nil:
		c.poller = NewPoller(c.settings.PollInterval, c.poll)
		c.poller.Start(c.ctx)
		started = true
	case action != ActionAwaitAI && c.poller != nil:
		c.poller.Stop()
		c.poller = nil
		stopped = true
	}
	c.mu.Unlock()

	sd := progress.StudentDebate
	c.publish(event.NewSnapshotAppliedEvent(c.assignmentID, seq, source, string(action), sd.CurrentDebate, len(progress.Posts)))
	if prev != action {
		c.logger.WithDebate(sd.CurrentDebate).Info("next action changed", "from", string(prev), "to", string(action), "source", source)
		c.publish(event.NewActionChangedEvent(c.assignmentID, string(prev), string(action)))
	}
	if started {
		c.publish(event.NewPollEvent(c.assignmentID, "started", nil))
	}
	if stopped {
		c.publish(event.NewPollEvent(c.assignmentID, "stopped", nil))
	}
	if action == ActionAssignmentComplete {
		c.markRedirect()
	}
	return next, true
}

func (c *Controller) publish(e event.Event) {
	if c.bus != nil {
		c.bus.Publish(e)
	}
}
