package module

// Notifier wakes up a worker routine when new work is queued. Notifications
// are coalesced: notifying an already notified Notifier is a no-op, and a
// notification sent while nobody listens is remembered until the next receive.
// Notifiers are passed by value and share their internal state.
type Notifier struct {
	// buffered with capacity 1, so Notify never blocks the sender
	notifier chan struct{}
}

// NewNotifier instantiates a Notifier.
func NewNotifier() Notifier {
	return Notifier{make(chan struct{}, 1)}
}

// Notify sends a notification without blocking.
func (n Notifier) Notify() {
	select {
	case n.notifier <- struct{}{}:
	default:
	}
}

// Channel returns a channel for receiving notifications
func (n Notifier) Channel() <-chan struct{} {
	return n.notifier
}
