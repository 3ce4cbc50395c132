package timeline

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/voicetrack/internal/tracker"
)

// StateMsg carries a tracker update for one message into the program.
type StateMsg struct {
	ID    string
	State tracker.State
}

// ActivityMsg carries the tracker activity flag into the program.
type ActivityMsg struct {
	Active bool
}

// inboxMsg is a batch of StateMsg and ActivityMsg in delivery order.
type inboxMsg []tea.Msg

// inbox hands listener callbacks over to the program. push never blocks,
// so listeners may fire from inside Update (UnregisterListeners does).
type inbox struct {
	mu      sync.Mutex
	pending []tea.Msg
	ready   chan struct{}
}

func newInbox() *inbox {
	return &inbox{ready: make(chan struct{}, 1)}
}

func (b *inbox) push(msg tea.Msg) {
	b.mu.Lock()
	b.pending = append(b.pending, msg)
	b.mu.Unlock()

	select {
	case b.ready <- struct{}{}:
	default:
	}
}

func (b *inbox) drain() []tea.Msg {
	b.mu.Lock()
	defer b.mu.Unlock()
	msgs := b.pending
	b.pending = nil
	return msgs
}

// wait returns a command that blocks until something was pushed and
// delivers everything pending as one batch.
func (b *inbox) wait() tea.Cmd {
	return func() tea.Msg {
		<-b.ready
		return inboxMsg(b.drain())
	}
}

func (b *inbox) listener(id string) tracker.Listener {
	return tracker.ListenerFunc(func(s tracker.State) {
		b.push(StateMsg{ID: id, State: s})
	})
}

func (b *inbox) activityListener() *tracker.ActivityFunc {
	fn := tracker.ActivityFunc(func(active bool) {
		b.push(ActivityMsg{Active: active})
	})
	return &fn
}
