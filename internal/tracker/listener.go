package tracker

// Listener receives state updates for a single item.
type Listener interface {
	OnUpdate(state State)
}

// ActivityListener receives the aggregate activity flag: true while at
// least one item is playing or recording.
type ActivityListener interface {
	OnActiveChange(active bool)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(state State)

// OnUpdate calls f(state).
func (f ListenerFunc) OnUpdate(state State) { f(state) }

// ActivityFunc adapts a function to ActivityListener.
//
// Function values are not comparable, so register a *ActivityFunc when the
// listener has to be removed again with UntrackActivity.
type ActivityFunc func(active bool)

// OnActiveChange calls f(active).
func (f ActivityFunc) OnActiveChange(active bool) { f(active) }

// Executor runs tasks one at a time, in the order they were posted.
type Executor interface {
	Post(task func())
}
