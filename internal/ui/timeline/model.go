// Package timeline renders the voice message list. Each visible row binds a
// tracker listener while it is on screen and releases it when scrolled away.
package timeline

import (
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	log "github.com/echocat/slf4g"

	"github.com/llehouerou/voicetrack/internal/engine"
	"github.com/llehouerou/voicetrack/internal/errmsg"
	"github.com/llehouerou/voicetrack/internal/keymap"
	"github.com/llehouerou/voicetrack/internal/tracker"
)

const (
	seekStep = 0.1
	// header, blank line, recording row, status, help
	chromeHeight = 5
)

var errRecordingDisabled = errors.New("finish playback before recording")

// Tracker is the part of the tracker the timeline consumes.
type Tracker interface {
	Track(id string, l tracker.Listener)
	Untrack(id string)
	TrackActivity(l tracker.ActivityListener)
	UntrackActivity(l tracker.ActivityListener)
	UnregisterListeners()
	PlaybackState(id string) (tracker.State, bool)
	Percentage(id string) (float64, bool)
	IsActive() bool
}

// Engine is the part of the audio engine the timeline drives.
type Engine interface {
	Messages() []engine.Message
	Toggle(id string) error
	Stop(id string)
	Seek(id string, percentage float64) error
	PauseAll()
	StartRecording() error
	StopRecording(now time.Time) (engine.Message, error)
}

var (
	_ Tracker = (*tracker.Tracker)(nil)
	_ Engine  = (*engine.Engine)(nil)
)

// Model is the timeline screen.
type Model struct {
	tracker  Tracker
	engine   Engine
	keys     *keymap.Resolver
	inbox    *inbox
	activity *tracker.ActivityFunc
	spinner  spinner.Model
	now      func() time.Time

	messages []engine.Message
	states   map[string]tracker.State
	bound    map[string]bool
	cursor   int
	offset   int
	width    int
	height   int
	active   bool
	status   string
}

// New creates the timeline and binds the activity listener, the recording
// slot and the initially visible rows.
func New(tr Tracker, eng Engine, now func() time.Time) Model {
	if now == nil {
		now = time.Now
	}
	m := Model{
		tracker:  tr,
		engine:   eng,
		keys:     keymap.NewResolver(keymap.Bindings),
		inbox:    newInbox(),
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(recordStyle)),
		now:      now,
		messages: eng.Messages(),
		states:   make(map[string]tracker.State),
		bound:    make(map[string]bool),
	}
	m.activity = m.inbox.activityListener()
	tr.TrackActivity(m.activity)
	// Registration does not notify; take the current flag.
	m.active = tr.IsActive()
	tr.Track(tracker.RecordingID, m.inbox.listener(tracker.RecordingID))
	m.syncBindings()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.inbox.wait(), m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.scrollToCursor()
		m.syncBindings()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg.String())

	case inboxMsg:
		for _, sub := range msg {
			m.apply(sub)
		}
		return m, m.inbox.wait()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) apply(msg tea.Msg) {
	switch msg := msg.(type) {
	case StateMsg:
		if msg.ID != tracker.RecordingID && !m.bound[msg.ID] {
			return
		}
		m.states[msg.ID] = msg.State
	case ActivityMsg:
		m.active = msg.Active
	}
}

func (m Model) handleKey(key string) (tea.Model, tea.Cmd) {
	action := m.keys.Resolve(key)
	if action == "" {
		return m, nil
	}
	m.status = ""

	switch action {
	case keymap.ActionQuit:
		m.shutdown()
		return m, tea.Quit
	case keymap.ActionMoveUp:
		m.moveCursor(m.cursor - 1)
	case keymap.ActionMoveDown:
		m.moveCursor(m.cursor + 1)
	case keymap.ActionJumpStart:
		m.moveCursor(0)
	case keymap.ActionJumpEnd:
		m.moveCursor(len(m.messages) - 1)
	case keymap.ActionPauseAll:
		m.engine.PauseAll()
	case keymap.ActionRecord:
		m.toggleRecording()
	case keymap.ActionPlayPause, keymap.ActionStop, keymap.ActionSeekForward, keymap.ActionSeekBack:
		if msg, ok := m.selected(); ok {
			m.playbackAction(action, msg)
		}
	}
	return m, nil
}

func (m *Model) playbackAction(action keymap.Action, msg engine.Message) {
	switch action {
	case keymap.ActionPlayPause:
		if err := m.engine.Toggle(msg.ID); err != nil {
			m.fail(errmsg.FormatWith(errmsg.OpPlaybackStart, msg.Title, err), err)
		}
	case keymap.ActionStop:
		m.engine.Stop(msg.ID)
	case keymap.ActionSeekForward, keymap.ActionSeekBack:
		pct, _ := m.tracker.Percentage(msg.ID)
		if action == keymap.ActionSeekForward {
			pct += seekStep
		} else {
			pct -= seekStep
		}
		if err := m.engine.Seek(msg.ID, pct); err != nil {
			m.fail(errmsg.FormatWith(errmsg.OpPlaybackSeek, msg.Title, err), err)
		}
	}
}

func (m *Model) toggleRecording() {
	if _, recording := m.states[tracker.RecordingID].(tracker.Recording); recording {
		msg, err := m.engine.StopRecording(m.now())
		if err != nil {
			m.fail(errmsg.Format(errmsg.OpRecordSave, err), err)
			return
		}
		m.messages = m.engine.Messages()
		m.moveCursor(len(m.messages) - 1)
		log.With("id", msg.ID).Debug("Recording saved.")
		return
	}
	// Recording is disabled while something plays.
	if m.active {
		m.status = errmsg.Format(errmsg.OpRecordStart, errRecordingDisabled)
		return
	}
	if err := m.engine.StartRecording(); err != nil {
		m.fail(errmsg.Format(errmsg.OpRecordStart, err), err)
	}
}

func (m *Model) fail(status string, err error) {
	m.status = status
	log.WithError(err).Warn(status)
}

// shutdown releases every listener. UnregisterListeners flushes Idle to the
// rows synchronously, which lands in the inbox without blocking.
func (m *Model) shutdown() {
	m.tracker.UntrackActivity(m.activity)
	m.tracker.UnregisterListeners()
	clear(m.bound)
}

func (m Model) selected() (engine.Message, bool) {
	if m.cursor < 0 || m.cursor >= len(m.messages) {
		return engine.Message{}, false
	}
	return m.messages[m.cursor], true
}

func (m *Model) moveCursor(to int) {
	if len(m.messages) == 0 {
		m.cursor = 0
		return
	}
	m.cursor = min(max(to, 0), len(m.messages)-1)
	m.scrollToCursor()
	m.syncBindings()
}

func (m *Model) scrollToCursor() {
	rows := m.visibleRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
	m.offset = max(min(m.offset, len(m.messages)-rows), 0)
}

func (m Model) visibleRows() int {
	if m.height == 0 {
		return len(m.messages)
	}
	return max(m.height-chromeHeight, 1)
}

func (m Model) visible() []engine.Message {
	end := min(m.offset+m.visibleRows(), len(m.messages))
	return m.messages[m.offset:end]
}

// syncBindings tracks the rows on screen and untracks the rest.
func (m *Model) syncBindings() {
	want := make(map[string]bool)
	for _, msg := range m.visible() {
		want[msg.ID] = true
	}
	for id := range m.bound {
		if !want[id] {
			m.tracker.Untrack(id)
			delete(m.bound, id)
			delete(m.states, id)
		}
	}
	for id := range want {
		if !m.bound[id] {
			m.tracker.Track(id, m.inbox.listener(id))
			m.bound[id] = true
		}
	}
}

// stateOf prefers the last delivered state and falls back to querying the
// tracker for rows whose replay has not arrived yet.
func (m Model) stateOf(id string) tracker.State {
	if s, ok := m.states[id]; ok {
		return s
	}
	if s, ok := m.tracker.PlaybackState(id); ok {
		return s
	}
	return tracker.Idle{}
}
