package module

import (
	"time"
)

// MPCMetrics tracks the admission and certification of MPC sessions. All
// methods are fire-and-forget and must never block.
type MPCMetrics interface {
	// EventReceived is called for every decoded session event.
	EventReceived(kind string, pulled bool)

	// EventDropped is called for every event dropped before admission,
	// labelled by the reason it was dropped for.
	EventDropped(reason string)

	// SessionAdmitted is called when a session becomes ready for computation.
	SessionAdmitted(kind string)

	// SessionCompleted is called when a session output is certified.
	SessionCompleted(kind string, rejected bool)

	// PendingQueues reports the depths of the dependency queues and of the
	// ready queue.
	PendingQueues(forKey, forCommittee, ready uint)

	// OutputSubmitted is called for every authority output handed to the
	// quorum verifier, labelled by the outcome.
	OutputSubmitted(outcome string)

	// MaliciousAuthorities reports authorities found to have voted for a
	// losing output.
	MaliciousAuthorities(count int)

	// RoundComputed tracks the duration of one protocol round.
	RoundComputed(kind string, duration time.Duration)
}

// MempoolMetrics tracks the inbound queues of an engine.
type MempoolMetrics interface {
	MempoolEntries(resource string, entries uint)
}
