// Package engine simulates the audio engine that feeds the tracker: it
// advances playback positions on a clock and samples a synthetic microphone
// while recording. It never opens an audio device.
package engine

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	log "github.com/echocat/slf4g"
	"github.com/google/uuid"

	"github.com/llehouerou/voicetrack/internal/tracker"
)

var (
	ErrUnknownMessage = errors.New("unknown message")
	ErrBusy           = errors.New("another playback or recording is active")
	ErrNotRecording   = errors.New("not recording")
	ErrDecode         = errors.New("decode failed")
)

// Producer is the part of the tracker the engine reports to.
type Producer interface {
	StartPlayback(id string)
	PausePlayback(id string)
	PauseAllPlaybacks()
	StopPlayback(id string)
	OnError(id string, cause error)
	UpdatePlaying(id string, pos time.Duration, percentage float64)
	UpdatePaused(id string, pos time.Duration, percentage float64)
	UpdateRecording(id string, amplitudes []int)
	PlaybackTime(id string) (time.Duration, bool)
}

var _ Producer = (*tracker.Tracker)(nil)

// Message is a voice message known to the engine.
type Message struct {
	ID     string
	Title  string
	Length time.Duration
	SentAt time.Time
}

// Options configures an Engine.
type Options struct {
	Tick       time.Duration // clock resolution (default: 100ms)
	FailEvery  int           // every Nth playback fails to decode (0 disables)
	Microphone Microphone    // default: SyntheticMicrophone
}

// Engine drives playback and recording for a catalogue of messages.
type Engine struct {
	tracker   Producer
	tick      time.Duration
	failEvery int
	mic       Microphone

	mu        sync.Mutex
	messages  []Message
	playback  *session
	recording *recorder
	plays     int
}

// New creates an engine reporting to p.
func New(p Producer, opts Options) *Engine {
	if opts.Tick <= 0 {
		opts.Tick = 100 * time.Millisecond
	}
	if opts.Microphone == nil {
		opts.Microphone = SyntheticMicrophone
	}
	return &Engine{
		tracker:   p,
		tick:      opts.Tick,
		failEvery: opts.FailEvery,
		mic:       opts.Microphone,
	}
}

// AddMessage appends a message to the catalogue.
func (e *Engine) AddMessage(title string, length time.Duration, sentAt time.Time) Message {
	msg := Message{
		ID:     uuid.NewString(),
		Title:  title,
		Length: length,
		SentAt: sentAt,
	}
	e.mu.Lock()
	e.messages = append(e.messages, msg)
	e.mu.Unlock()
	return msg
}

// Messages returns a copy of the catalogue, oldest first.
func (e *Engine) Messages() []Message {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.messages)
}

// Playing returns the id being played, if any.
func (e *Engine) Playing() (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.playback == nil || e.playback.finished() {
		return "", false
	}
	return e.playback.id, true
}

// Play starts or resumes id, stopping whatever else is playing.
func (e *Engine) Play(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	msg, ok := e.messageLocked(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownMessage, id)
	}
	if e.recordingBusyLocked() {
		return ErrBusy
	}
	halted := e.haltPlaybackLocked()

	e.plays++
	if e.failEvery > 0 && e.plays%e.failEvery == 0 {
		// StartPlayback is skipped, so nothing else resets the halted item.
		if halted != "" && halted != id {
			e.tracker.StopPlayback(halted)
		}
		err := fmt.Errorf("%w: %s", ErrDecode, msg.Title)
		e.tracker.OnError(id, err)
		return err
	}

	e.tracker.StartPlayback(id)
	pos, _ := e.tracker.PlaybackTime(id)
	if pos >= msg.Length {
		pos = 0
		e.tracker.UpdatePlaying(id, 0, 0)
	}

	log.With("id", id).
		With("position", pos).
		Debug("Playback started.")
	e.playback = startSession(e.tracker, msg, pos, e.tick)
	return nil
}

// Pause pauses id if the engine is playing it.
func (e *Engine) Pause(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.playback == nil || e.playback.id != id {
		return
	}
	e.haltPlaybackLocked()
	e.tracker.PausePlayback(id)
}

// Toggle pauses id if it is playing and plays it otherwise.
func (e *Engine) Toggle(id string) error {
	if current, ok := e.Playing(); ok && current == id {
		e.Pause(id)
		return nil
	}
	return e.Play(id)
}

// PauseAll pauses every tracked item and the current playback.
func (e *Engine) PauseAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tracker.PauseAllPlaybacks()
	if e.playback != nil {
		id := e.playback.id
		e.haltPlaybackLocked()
		e.tracker.PausePlayback(id)
	}
}

// Stop stops id and resets it to the start.
func (e *Engine) Stop(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.playback != nil && e.playback.id == id {
		e.haltPlaybackLocked()
	}
	e.tracker.StopPlayback(id)
}

// Seek moves id to percentage (clamped to 0..1). A playing item keeps
// playing from there; anything else ends up paused at that position.
func (e *Engine) Seek(id string, percentage float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	msg, ok := e.messageLocked(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownMessage, id)
	}
	percentage = min(max(percentage, 0), 1)
	pos := time.Duration(float64(msg.Length) * percentage).Truncate(time.Millisecond)

	if e.playback != nil && e.playback.id == id && !e.playback.finished() {
		e.haltPlaybackLocked()
		e.tracker.UpdatePlaying(id, pos, percentage)
		e.playback = startSession(e.tracker, msg, pos, e.tick)
		return nil
	}
	e.tracker.UpdatePaused(id, pos, percentage)
	return nil
}

// StartRecording starts sampling the microphone into the recording slot.
func (e *Engine) StartRecording() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.recordingBusyLocked() {
		return ErrBusy
	}
	if e.playback != nil && !e.playback.finished() {
		return ErrBusy
	}
	src, err := e.mic()
	if err != nil {
		return fmt.Errorf("open microphone: %w", err)
	}

	log.Debug("Recording started.")
	e.recording = startRecorder(e.tracker, src, e.tick)
	return nil
}

// StopRecording stops the recording and adds it to the catalogue.
func (e *Engine) StopRecording(now time.Time) (Message, error) {
	e.mu.Lock()
	rec := e.recording
	e.recording = nil
	e.mu.Unlock()

	if rec == nil {
		return Message{}, ErrNotRecording
	}
	length, err := rec.halt()
	if err != nil {
		return Message{}, err
	}
	e.tracker.StopPlayback(tracker.RecordingID)

	log.With("length", length).
		Debug("Recording stopped.")
	return e.AddMessage("Voice message", length, now), nil
}

// Close stops playback and recording.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.haltPlaybackLocked()
	if e.recording != nil {
		_, _ = e.recording.halt()
		e.recording = nil
	}
}

// haltPlaybackLocked stops the current session and returns the id it was
// playing, or "" if there was none.
func (e *Engine) haltPlaybackLocked() string {
	if e.playback == nil {
		return ""
	}
	id := e.playback.id
	e.playback.halt()
	e.playback = nil
	return id
}

// recordingBusyLocked reports whether a recorder holds the microphone. A
// recorder whose source failed is released.
func (e *Engine) recordingBusyLocked() bool {
	if e.recording == nil {
		return false
	}
	if e.recording.failed() {
		log.Debug("Releasing failed recorder.")
		e.recording = nil
		return false
	}
	return true
}

func (e *Engine) messageLocked(id string) (Message, bool) {
	i := slices.IndexFunc(e.messages, func(m Message) bool { return m.ID == id })
	if i < 0 {
		return Message{}, false
	}
	return e.messages[i], true
}
