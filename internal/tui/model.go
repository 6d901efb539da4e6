package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/rebuttal/internal/debate"
	"github.com/Iron-Ham/rebuttal/internal/errors"
	"github.com/Iron-Ham/rebuttal/internal/tui/keymap"
	"github.com/Iron-Ham/rebuttal/internal/tui/msg"
	"github.com/Iron-Ham/rebuttal/internal/tui/styles"
	"github.com/Iron-Ham/rebuttal/internal/tui/view"
)

// Session is the controller surface the model drives.
type Session interface {
	msg.Session
	Settings() debate.Settings
	Polling() bool
	Redirect() string
}

var _ Session = (*debate.Controller)(nil)

// transcriptPosts caps how many posts render above the editor.
const transcriptPosts = 6

// Model is the Bubbletea model for one debate session.
type Model struct {
	ctx     context.Context
	session Session
	keys    *keymap.Keymap
	limits  debate.WordLimits

	editor  textarea.Model
	spinner spinner.Model

	width  int
	height int

	snap    debate.Snapshot
	loaded  bool
	loadErr error
	notice  error
	verdict *debate.ChallengeResult

	technique   debate.Technique
	challenging bool
	cursor      int

	// pending names the submission awaiting a response, "" when idle
	pending   string
	advancing bool

	redirect string
	back     bool
	quitting bool
}

// NewModel creates a model over session. ctx bounds every request the
// model issues.
func NewModel(ctx context.Context, session Session) Model {
	editor := textarea.New()
	editor.Placeholder = "Make your argument..."
	editor.ShowLineNumbers = false
	editor.CharLimit = 0
	editor.SetHeight(6)

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(styles.Primary),
	)

	return Model{
		ctx:     ctx,
		session: session,
		keys:    keymap.DefaultKeymap(),
		limits:  session.Settings().Limits,
		editor:  editor,
		spinner: sp,
	}
}

// Redirect returns the results route once the assignment is complete.
func (m Model) Redirect() string {
	return m.redirect
}

// Back reports whether the student asked to leave after a load failure.
func (m Model) Back() bool {
	return m.back
}

// Init starts the first load and the update listener.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		msg.Load(m.ctx, m.session),
		msg.WaitForUpdate(m.session),
		m.spinner.Tick,
	)
}

// Update handles messages.
func (m Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.WindowSizeMsg:
		m.width = message.Width
		m.height = message.Height
		m.editor.SetWidth(max(message.Width-4, 20))
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(message)
		return m, cmd

	case msg.SnapshotMsg:
		return m.handleSnapshot(message)

	case msg.UpdateMsg:
		next := msg.WaitForUpdate(m.session)
		if message.Update.Err != nil {
			m.notice = message.Update.Err
			return m, next
		}
		var cmd tea.Cmd
		m, cmd = m.apply(message.Update.Snapshot)
		return m, tea.Batch(next, cmd)

	case msg.ClosedMsg:
		return m, nil

	case msg.ChallengeResultMsg:
		m.pending = ""
		m.challenging = false
		if message.Err != nil {
			m.notice = message.Err
			return m, nil
		}
		m.notice = nil
		result := message.Result
		m.verdict = &result
		return m.apply(message.Snapshot)

	case msg.AdvanceMsg:
		m.pending = ""
		if message.Err != nil {
			if !errors.Is(message.Err, errors.ErrAdvanceInProgress) && !errors.Is(message.Err, errors.ErrStaleProgress) {
				m.advancing = false
			}
			m.notice = message.Err
			return m, nil
		}
		if message.Outcome.Redirect != "" {
			return m.finish(message.Outcome.Redirect)
		}
		return m.apply(message.Outcome.Snapshot)

	case tea.KeyMsg:
		return m.handleKey(message)
	}

	return m, nil
}

func (m Model) handleSnapshot(message msg.SnapshotMsg) (tea.Model, tea.Cmd) {
	if message.Source == m.pending || message.Source == debate.SourceLoad {
		m.pending = ""
	}
	if message.Err != nil {
		if !m.loaded && message.Source == debate.SourceLoad {
			m.loadErr = message.Err
			return m, nil
		}
		m.notice = message.Err
		if message.Source == debate.SourcePost && errors.Is(message.Err, errors.ErrStaleProgress) {
			// The post was accepted; drop it from the editor and leave
			// compose so r refreshes.
			m.editor.Reset()
			m.editor.Blur()
			m.technique = debate.TechniqueNone
		}
		return m, nil
	}

	m.notice = nil
	if message.Source == debate.SourcePost {
		m.editor.Reset()
		m.technique = debate.TechniqueNone
	}
	return m.apply(message.Snapshot)
}

// apply installs a snapshot from any source. Snapshots older than the one
// shown are ignored; the controller already orders them, but commands can
// report back out of order.
func (m Model) apply(snap debate.Snapshot) (Model, tea.Cmd) {
	if m.loaded && snap.Sequence < m.snap.Sequence {
		return m, nil
	}
	if _, ok := snap.View(); !ok {
		return m, nil
	}

	prev := m.snap.Progress.NextAction
	m.snap = snap
	m.loaded = true
	m.loadErr = nil

	action := snap.Progress.NextAction
	if action != debate.ActionDebateComplete {
		m.advancing = false
	}
	if _, ok := snap.Progress.ChallengeTarget(); !ok {
		m.challenging = false
	}
	if prev != action {
		m.verdict = nil
	}

	switch action {
	case debate.ActionAssignmentComplete:
		return m.finish(m.session.Redirect())
	case debate.ActionSubmitPost:
		if prev != action {
			cmd := m.editor.Focus()
			return m, cmd
		}
	default:
		m.editor.Blur()
	}
	return m, nil
}

func (m Model) finish(route string) (Model, tea.Cmd) {
	m.redirect = route
	m.quitting = true
	return m, tea.Quit
}

func (m Model) mode() keymap.Mode {
	if !m.loaded {
		if m.loadErr != nil {
			return keymap.ModeLoadError
		}
		return keymap.ModeLoading
	}
	if m.challenging {
		return keymap.ModeChallenge
	}
	switch m.snap.Progress.NextAction {
	case debate.ActionChoosePosition:
		return keymap.ModeChoosePosition
	case debate.ActionSubmitPost:
		if m.editor.Focused() {
			return keymap.ModeCompose
		}
		return keymap.ModeBrowse
	case debate.ActionAwaitAI:
		return keymap.ModeAwaitAI
	case debate.ActionDebateComplete:
		return keymap.ModeDebateComplete
	default:
		return keymap.ModeLoading
	}
}

// syncKeys enables the bindings whose action would be accepted right now.
func (m Model) syncKeys() {
	p := m.snap.Progress
	_, challengeable := p.ChallengeTarget()
	idle := m.pending == ""

	m.keys.SetEnabled(keymap.CmdSubmit, idle && m.limits.CanSubmit(p, m.editor.Value()))
	m.keys.SetEnabled(keymap.CmdOpenChallenge, challengeable)
	m.keys.SetEnabled(keymap.CmdConfirm, idle)
	m.keys.SetEnabled(keymap.CmdPickPro, idle)
	m.keys.SetEnabled(keymap.CmdPickCon, idle)
	m.keys.SetEnabled(keymap.CmdContinue, !m.advancing)
}

func (m Model) handleKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.syncKeys()
	mode := m.mode()

	cmd, ok := m.keys.GetBinding(key, mode)
	if !ok {
		if mode == keymap.ModeCompose {
			var c tea.Cmd
			m.editor, c = m.editor.Update(key)
			return m, c
		}
		return m, nil
	}

	switch cmd {
	case keymap.CmdQuit:
		m.quitting = true
		return m, tea.Quit

	case keymap.CmdBack:
		m.back = true
		m.quitting = true
		return m, tea.Quit

	case keymap.CmdRetry:
		m.loadErr = nil
		m.pending = debate.SourceLoad
		return m, msg.Load(m.ctx, m.session)

	case keymap.CmdRefresh:
		m.notice = nil
		return m, msg.Refresh(m.ctx, m.session)

	case keymap.CmdPickPro:
		m.pending = debate.SourcePosition
		return m, msg.SelectPosition(m.ctx, m.session, debate.PositionPro)

	case keymap.CmdPickCon:
		m.pending = debate.SourcePosition
		return m, msg.SelectPosition(m.ctx, m.session, debate.PositionCon)

	case keymap.CmdSubmit:
		m.pending = debate.SourcePost
		return m, msg.SubmitPost(m.ctx, m.session, m.editor.Value(), m.technique)

	case keymap.CmdCycleTechnique:
		m.technique = nextTechnique(m.technique)
		return m, nil

	case keymap.CmdLeaveEditor:
		m.editor.Blur()
		return m, nil

	case keymap.CmdEdit:
		focus := m.editor.Focus()
		return m, focus

	case keymap.CmdOpenChallenge:
		m.challenging = true
		m.cursor = 0
		m.verdict = nil
		return m, nil

	case keymap.CmdNextOption:
		if n := len(m.snap.Progress.AvailableChallenges); n > 0 {
			m.cursor = (m.cursor + 1) % n
		}
		return m, nil

	case keymap.CmdPrevOption:
		if n := len(m.snap.Progress.AvailableChallenges); n > 0 {
			m.cursor = (m.cursor - 1 + n) % n
		}
		return m, nil

	case keymap.CmdConfirm:
		target, ok := m.snap.Progress.ChallengeTarget()
		options := m.snap.Progress.AvailableChallenges
		if !ok || m.cursor >= len(options) {
			m.challenging = false
			return m, nil
		}
		m.pending = debate.SourceChallenge
		return m, msg.SubmitChallenge(m.ctx, m.session, target.ID, options[m.cursor].Key)

	case keymap.CmdCancel:
		m.challenging = false
		return m, nil

	case keymap.CmdContinue:
		m.advancing = true
		m.pending = debate.SourceAdvance
		return m, msg.Advance(m.ctx, m.session)
	}

	return m, nil
}

func nextTechnique(t debate.Technique) debate.Technique {
	all := debate.Techniques()
	for i, candidate := range all {
		if candidate == t {
			return all[(i+1)%len(all)]
		}
	}
	return debate.TechniqueNone
}

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	m.syncKeys()

	mode := m.mode()
	var b strings.Builder
	switch mode {
	case keymap.ModeLoading:
		b.WriteString(view.Loading(m.spinner.View()))
	case keymap.ModeLoadError:
		b.WriteString(view.LoadError(m.loadErr, m.width))
	default:
		b.WriteString(view.Header(m.snap, m.width))
		b.WriteString("\n\n")
		b.WriteString(m.renderBranch(mode))
	}

	if m.verdict != nil {
		b.WriteString("\n\n")
		b.WriteString(view.ChallengeVerdict(*m.verdict))
	}
	if notice := view.Notice(m.notice, m.width); notice != "" {
		b.WriteString("\n\n")
		b.WriteString(notice)
	}
	b.WriteString("\n\n")
	b.WriteString(view.HelpBar(m.keys.GetModeBindings(mode), m.width))
	return b.String()
}

func (m Model) renderBranch(mode keymap.Mode) string {
	p := m.snap.Progress
	branch, _ := m.snap.View()

	if mode == keymap.ModeChallenge {
		target, _ := p.ChallengeTarget()
		return view.ChallengePanel(view.ChallengeState{
			Target:  target,
			Options: p.AvailableChallenges,
			Cursor:  m.cursor,
			Pending: m.pending == debate.SourceChallenge,
		}, m.width)
	}

	switch branch {
	case debate.ViewChoosePosition:
		return view.ChoosePosition(m.snap, m.pending == debate.SourcePosition, m.width)
	case debate.ViewSubmitPost:
		return view.Transcript(p, m.width, transcriptPosts, m.editor.Focused()) + "\n\n" + view.Compose(view.ComposeState{
			Editor:    m.editor.View(),
			Words:     debate.CountWords(m.editor.Value()),
			Limits:    m.limits,
			Technique: m.technique,
			Focused:   m.editor.Focused(),
			Pending:   m.pending == debate.SourcePost,
		}, m.width)
	case debate.ViewAwaitAI:
		return view.Transcript(p, m.width, transcriptPosts, false) + "\n\n" + view.AwaitAI(m.spinner.View(), m.session.Polling())
	case debate.ViewDebateComplete:
		return view.Transcript(p, m.width, transcriptPosts, false) + "\n\n" + view.DebateComplete(m.snap, m.advancing, m.width)
	default:
		return ""
	}
}
