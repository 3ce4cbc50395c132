package tracker

import (
	"fmt"
	"slices"
	"time"
)

// RecordingID identifies the recording in progress rather than a message.
const RecordingID = "RECORDING_ID"

// State is the playback or recording state of one audio item.
//
// It is a closed set of variants:
//
//	Idle       nothing happening
//	Error      failed, carries the cause
//	Playing    position + percentage
//	Paused     position + percentage
//	Recording  amplitude trace
//
// A missing entry in the tracker is equivalent to Idle.
//
//sumtype:decl
type State interface {
	fmt.Stringer
	isState()
}

// Idle means no playback or recording.
type Idle struct{}

// Error means playback or recording failed.
type Error struct {
	Cause error
}

// Playing means the item is playing at Position.
type Playing struct {
	Position   time.Duration
	Percentage float64 // 0..1
}

// Paused means playback is suspended at Position.
type Paused struct {
	Position   time.Duration
	Percentage float64 // 0..1
}

// Recording carries the running amplitude trace of a recording. The tracker
// hands out its own copy of Amplitudes with every query and delivery.
type Recording struct {
	Amplitudes []int
}

func (Idle) isState()      {}
func (Error) isState()     {}
func (Playing) isState()   {}
func (Paused) isState()    {}
func (Recording) isState() {}

func (Idle) String() string { return "Idle" }

func (e Error) String() string {
	if e.Cause == nil {
		return "Error"
	}
	return fmt.Sprintf("Error(%v)", e.Cause)
}

func (p Playing) String() string {
	return fmt.Sprintf("Playing(%v, %.2f)", p.Position, p.Percentage)
}

func (p Paused) String() string {
	return fmt.Sprintf("Paused(%v, %.2f)", p.Position, p.Percentage)
}

func (r Recording) String() string {
	return fmt.Sprintf("Recording(%d samples)", len(r.Amplitudes))
}

// isActive reports whether s counts towards the activity flag.
func isActive(s State) bool {
	switch s.(type) {
	case Playing, Recording:
		return true
	default:
		return false
	}
}

// position extracts the playback position and percentage of s.
// Only Playing and Paused carry them.
func position(s State) (time.Duration, float64, bool) {
	switch st := s.(type) {
	case Playing:
		return st.Position, st.Percentage, true
	case Paused:
		return st.Position, st.Percentage, true
	case Idle, Error, Recording:
		return 0, 0, false
	default:
		panic(fmt.Sprintf("tracker: unhandled state %T", s))
	}
}

// detach returns s with its own copy of any slice it carries.
func detach(s State) State {
	if r, ok := s.(Recording); ok {
		return Recording{Amplitudes: slices.Clone(r.Amplitudes)}
	}
	return s
}
