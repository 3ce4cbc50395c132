// Package keymap defines key bindings and action dispatch for the application.
package keymap

// Action represents a user-triggerable action.
type Action string

const (
	// Global actions
	ActionQuit     Action = "quit"
	ActionPauseAll Action = "pause_all"

	// Timeline navigation
	ActionMoveUp    Action = "move_up"
	ActionMoveDown  Action = "move_down"
	ActionJumpStart Action = "jump_start"
	ActionJumpEnd   Action = "jump_end"

	// Playback actions
	ActionPlayPause   Action = "play_pause"
	ActionStop        Action = "stop"
	ActionSeekForward Action = "seek_forward"
	ActionSeekBack    Action = "seek_back"

	// Recording
	ActionRecord Action = "record"
)

// Binding maps keys to an action.
type Binding struct {
	Action      Action
	Keys        []string
	Description string
}

// Bindings contains every key binding of the application.
var Bindings = []Binding{
	{ActionQuit, []string{"q", "ctrl+c"}, "Quit"},
	{ActionPauseAll, []string{"p"}, "Pause all"},

	{ActionMoveUp, []string{"k", "up"}, "Previous message"},
	{ActionMoveDown, []string{"j", "down"}, "Next message"},
	{ActionJumpStart, []string{"g", "home"}, "First message"},
	{ActionJumpEnd, []string{"G", "end"}, "Last message"},

	{ActionPlayPause, []string{" ", "enter"}, "Play/pause"},
	{ActionStop, []string{"s"}, "Stop"},
	{ActionSeekForward, []string{"l", "right"}, "Seek +10%"},
	{ActionSeekBack, []string{"h", "left"}, "Seek -10%"},

	{ActionRecord, []string{"r"}, "Start/stop recording"},
}
