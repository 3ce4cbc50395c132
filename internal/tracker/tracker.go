// Package tracker keeps per-item playback and recording state for audio
// messages and notifies listeners on a single execution context.
package tracker

import (
	"maps"
	"reflect"
	"slices"
	"sync"
	"time"

	log "github.com/echocat/slf4g"
)

// Tracker keeps the playback or recording state of every audio item and
// notifies listeners when it changes.
//
// Mutations may be called from any goroutine. Notifications are posted to
// the Executor, so listeners run one at a time and in mutation order.
// Queries read the state directly and never notify anyone.
type Tracker struct {
	exec Executor

	mu     sync.RWMutex
	states map[string]State

	// Listener registries have their own lock so the executor task can read
	// them while a mutation holds mu.
	lmu       sync.RWMutex
	listeners map[string]Listener
	activity  []ActivityListener
}

// New creates a tracker that delivers notifications on exec.
//
// exec must queue tasks rather than run them inline: tasks are posted while
// the tracker lock is held.
func New(exec Executor) *Tracker {
	return &Tracker{
		exec:      exec,
		states:    make(map[string]State),
		listeners: make(map[string]Listener),
	}
}

// TrackActivity registers an activity listener. It is not notified until
// the next mutation.
func (t *Tracker) TrackActivity(l ActivityListener) {
	t.lmu.Lock()
	defer t.lmu.Unlock()
	t.activity = append(t.activity, l)
}

// UntrackActivity removes the first registration of l. It is a no-op when l
// is not registered or its type is not comparable.
func (t *Tracker) UntrackActivity(l ActivityListener) {
	if l == nil {
		return
	}
	if !reflect.TypeOf(l).Comparable() {
		log.With("type", reflect.TypeOf(l)).
			Debug("Cannot untrack activity listener of non-comparable type.")
		return
	}
	t.lmu.Lock()
	defer t.lmu.Unlock()
	if i := slices.Index(t.activity, l); i >= 0 {
		t.activity = slices.Delete(t.activity, i, i+1)
	}
}

// Track binds l to id, replacing any previous listener for id, and sends l
// the current state of id (Idle if unset) on the executor.
func (t *Tracker) Track(id string, l Listener) {
	t.lmu.Lock()
	t.listeners[id] = l
	t.lmu.Unlock()

	t.mu.RLock()
	defer t.mu.RUnlock()
	current := t.stateLocked(id)
	t.exec.Post(func() {
		l.OnUpdate(detach(current))
	})
}

// Untrack removes the listener bound to id. The state of id is kept.
func (t *Tracker) Untrack(id string) {
	t.lmu.Lock()
	defer t.lmu.Unlock()
	delete(t.listeners, id)
}

// UnregisterListeners sends Idle to every item listener and drops them all.
// Unlike other notifications, the Idle updates are delivered synchronously
// before UnregisterListeners returns. Activity listeners and states are
// left untouched. The registry is cleared before the flush, so a listener
// that calls Track from its Idle update stays registered.
func (t *Tracker) UnregisterListeners() {
	t.lmu.Lock()
	flushed := t.listeners
	t.listeners = make(map[string]Listener)
	t.lmu.Unlock()

	for _, id := range slices.Sorted(maps.Keys(flushed)) {
		flushed[id].OnUpdate(Idle{})
	}
}

// StartPlayback marks id as playing, resuming from its own paused or
// playing position, and resets every other playing item to Idle.
//
// Other items are reset rather than paused: only one playback stream exists
// and their position is not preserved.
func (t *Tracker) StartPlayback(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	pos, pct, _ := position(t.stateLocked(id))
	t.setStateLocked(id, Playing{Position: pos, Percentage: pct})

	for _, other := range slices.Sorted(maps.Keys(t.states)) {
		if other == id {
			continue
		}
		if _, playing := t.states[other].(Playing); playing {
			log.With("id", other).
				With("started", id).
				Debug("Stopping concurrent playback.")
			t.setStateLocked(other, Idle{})
		}
	}
}

// PauseAllPlaybacks pauses every item that has a listener bound.
//
// Items that are playing without a listener are not paused.
func (t *Tracker) PauseAllPlaybacks() {
	t.lmu.RLock()
	ids := slices.Sorted(maps.Keys(t.listeners))
	t.lmu.RUnlock()

	for _, id := range ids {
		t.PausePlayback(id)
	}
}

// PausePlayback moves id from Playing to Paused at the same position.
// Any other state is left as is.
func (t *Tracker) PausePlayback(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if p, ok := t.states[id].(Playing); ok {
		t.setStateLocked(id, Paused(p))
	}
}

// StopPlayback resets id to Idle unless it is in Error.
func (t *Tracker) StopPlayback(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, failed := t.states[id].(Error); failed {
		return
	}
	t.setStateLocked(id, Idle{})
}

// OnError puts id in Error with the given cause.
func (t *Tracker) OnError(id string, cause error) {
	log.WithError(cause).
		With("id", id).
		Debug("Audio item failed.")
	t.setState(id, Error{Cause: cause})
}

// UpdatePlaying sets id to Playing at the given position.
func (t *Tracker) UpdatePlaying(id string, pos time.Duration, percentage float64) {
	t.setState(id, Playing{Position: pos, Percentage: percentage})
}

// UpdatePaused sets id to Paused at the given position.
func (t *Tracker) UpdatePaused(id string, pos time.Duration, percentage float64) {
	t.setState(id, Paused{Position: pos, Percentage: percentage})
}

// UpdateRecording sets id to Recording with a copy of amplitudes.
func (t *Tracker) UpdateRecording(id string, amplitudes []int) {
	t.setState(id, Recording{Amplitudes: slices.Clone(amplitudes)})
}

// PlaybackState returns the state of id. ok is false if id was never set,
// in which case the state is Idle.
func (t *Tracker) PlaybackState(id string) (state State, ok bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	state, ok = t.states[id]
	if !ok {
		return Idle{}, false
	}
	return detach(state), true
}

// PlaybackTime returns the position of id if it is playing or paused.
func (t *Tracker) PlaybackTime(id string) (time.Duration, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	pos, _, ok := position(t.stateLocked(id))
	return pos, ok
}

// Percentage returns the progress of id if it is playing or paused.
func (t *Tracker) Percentage(id string) (float64, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, pct, ok := position(t.stateLocked(id))
	return pct, ok
}

// IsActive reports whether any item is playing or recording.
func (t *Tracker) IsActive() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.activeLocked()
}

func (t *Tracker) setState(id string, s State) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.setStateLocked(id, s)
}

// setStateLocked stores s and posts its delivery. Callers hold mu, which
// keeps posting order equal to write order.
func (t *Tracker) setStateLocked(id string, s State) {
	t.states[id] = s
	active := t.activeLocked()

	log.With("id", id).
		With("state", s).
		With("active", active).
		Trace("Playback state changed.")

	t.exec.Post(func() {
		t.deliver(id, s, active)
	})
}

// deliver runs on the executor. Registries are read at delivery time so a
// listener removed after the mutation is not called.
func (t *Tracker) deliver(id string, s State, active bool) {
	t.lmu.RLock()
	l := t.listeners[id]
	activity := slices.Clone(t.activity)
	t.lmu.RUnlock()

	if l != nil {
		l.OnUpdate(detach(s))
	}
	for _, al := range activity {
		al.OnActiveChange(active)
	}
}

func (t *Tracker) stateLocked(id string) State {
	if s, ok := t.states[id]; ok {
		return s
	}
	return Idle{}
}

func (t *Tracker) activeLocked() bool {
	for _, s := range t.states {
		if isActive(s) {
			return true
		}
	}
	return false
}
