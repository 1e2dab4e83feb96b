package sessions

import (
	"github.com/dwallet-labs/dwallet-network-sub004/model/dwallet"
)

// Status is the lifecycle state of a session entry.
type Status int

const (
	// StatusPending entries wait for their event or for round messages.
	StatusPending Status = iota
	// StatusReady entries are in the ready queue.
	StatusReady
	// StatusComputing entries were handed to the protocol party.
	StatusComputing
	// StatusFinished entries have a certified output.
	StatusFinished
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusReady:
		return "ready"
	case StatusComputing:
		return "computing"
	case StatusFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Entry is the registry's record of one session. It may be created before
// the session event is seen, when round messages of other parties arrive
// first; EventData is set exactly once, when the event is admitted.
type Entry struct {
	SessionIdentifier dwallet.SessionIdentifier
	EventData         *dwallet.SessionEventData
	Status            Status
	// Pulled is set when the event was fetched proactively.
	Pulled bool
	// Round is the next round to compute, starting at 1.
	Round uint64
	// Messages holds the round messages received, by round and sender.
	Messages map[uint64]map[dwallet.PartyID][]byte
}

func newEntry(id dwallet.SessionIdentifier) *Entry {
	return &Entry{
		SessionIdentifier: id,
		Status:            StatusPending,
		Round:             1,
		Messages:          make(map[uint64]map[dwallet.PartyID][]byte),
	}
}

// Request returns the request of the session. Only valid once EventData is set.
func (e *Entry) Request() *dwallet.SessionRequest {
	return &e.EventData.Request
}

// MessagesSnapshot returns a copy of the messages received so far.
func (e *Entry) MessagesSnapshot() map[uint64]map[dwallet.PartyID][]byte {
	snapshot := make(map[uint64]map[dwallet.PartyID][]byte, len(e.Messages))
	for round, byParty := range e.Messages {
		m := make(map[dwallet.PartyID][]byte, len(byParty))
		for party, msg := range byParty {
			m[party] = msg
		}
		snapshot[round] = m
	}
	return snapshot
}

// less orders entries for computation: by sequence number, then by session
// identifier. Every validator computes sessions in the same order.
func less(a, b *Entry) bool {
	sa, sb := a.EventData.Request.SequenceNumber, b.EventData.Request.SequenceNumber
	if sa != sb {
		return sa < sb
	}
	return a.SessionIdentifier.Less(b.SessionIdentifier)
}
