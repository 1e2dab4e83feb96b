package module

import (
	"context"
	"errors"

	"github.com/dwallet-labs/dwallet-network-sub004/model/dwallet"
)

var (
	// ErrEpochEnded is returned by an EventSource when the requested epoch is
	// over and no more events will be served for it. It is terminal, callers
	// must not retry.
	ErrEpochEnded = errors.New("epoch has ended")

	// ErrCommitteeNotAvailable is returned by a CommitteeProvider when the
	// committee of the requested epoch is not known yet.
	ErrCommitteeNotAvailable = errors.New("committee not available")
)

// EventSource delivers the chain events the MPC manager turns into sessions.
type EventSource interface {

	// LiveEvents returns the channel live events are pushed to. Delivery is
	// best-effort and may repeat an event.
	LiveEvents() <-chan dwallet.RawEvent

	// PullUncompletedEvents fetches every session event of the given epoch
	// the chain has not recorded as completed yet. It returns ErrEpochEnded
	// once the epoch is over; any other error is transient.
	PullUncompletedEvents(ctx context.Context, epoch uint64) ([]dwallet.RawEvent, error)
}

// CommitteeProvider serves the authority set of an epoch. A returned
// committee is immutable.
type CommitteeProvider interface {
	// CommitteeByEpoch returns ErrCommitteeNotAvailable when the committee of
	// the epoch is not known yet.
	CommitteeByEpoch(epoch uint64) (*dwallet.Committee, error)
}

// ProtocolInput is everything a protocol party needs to advance a session by
// one round.
type ProtocolInput struct {
	EventData *dwallet.SessionEventData
	PartyID   dwallet.PartyID
	// Round is the round to compute, starting at 1.
	Round uint64
	// Messages holds the messages received so far, by round and sender.
	Messages map[uint64]map[dwallet.PartyID][]byte
	// Decryption is nil for protocols that do not use a network key.
	Decryption *dwallet.DecryptionParameters
}

// RoundResult is the result of advancing a session by one round.
type RoundResult struct {
	// Finalized is set when the protocol terminated with PublicOutput.
	Finalized    bool
	PublicOutput []byte
	// Message is broadcast to the other parties when the protocol advanced to
	// the next round.
	Message []byte
	// MaliciousParties are the parties the protocol found to have misbehaved
	// in earlier rounds.
	MaliciousParties []dwallet.PartyID
}

// ProtocolParty runs the cryptographic rounds of the MPC protocols. It is
// treated as a black box.
type ProtocolParty interface {
	// Advance computes the next round of a session. Any error is a
	// cryptographic processing failure of the session.
	Advance(ctx context.Context, input ProtocolInput) (RoundResult, error)
}

// MPCMessenger sends the local party's messages to the other authorities.
type MPCMessenger interface {
	// BroadcastRoundMessage sends the message computed for the given round.
	BroadcastRoundMessage(session dwallet.SessionIdentifier, round uint64, message []byte) error

	// PublishOutput submits the output this authority computed for a session,
	// so that it can be verified by every authority.
	PublishOutput(output *dwallet.SessionOutputMessage) error
}

// CheckpointBuilder collects the checkpoint messages of certified sessions
// for the next checkpoint.
type CheckpointBuilder interface {
	Append(messages []dwallet.CheckpointMessage) error
}
