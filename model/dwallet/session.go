package dwallet

import (
	"fmt"

	"golang.org/x/crypto/sha3"
)

// SessionType distinguishes sessions requested by users from sessions the
// system starts on its own.
type SessionType uint8

const (
	SessionTypeUser SessionType = iota
	SessionTypeSystem
)

func (t SessionType) String() string {
	switch t {
	case SessionTypeUser:
		return "user"
	case SessionTypeSystem:
		return "system"
	default:
		return "unknown"
	}
}

// SessionRequest is the typed request decoded from a chain event. It is
// immutable after creation.
type SessionRequest struct {
	SessionIdentifier SessionIdentifier
	Epoch             uint64
	// SequenceNumber is the chain-assigned session sequence number, used for
	// deterministic ordering and for idempotence on the receiving side.
	SequenceNumber              uint64
	RequiresNextActiveCommittee bool
	Input                       RequestInput
}

// SessionType is fixed by the family of the request input.
func (r *SessionRequest) SessionType() SessionType {
	return r.Input.SessionType()
}

// Kind returns the protocol the request runs.
func (r *SessionRequest) Kind() ProtocolKind {
	if r.Input == nil {
		return ProtocolKindUnknown
	}
	return r.Input.Kind()
}

// encodableRequest is the canonical form of a request used for digests.
type encodableRequest struct {
	SessionIdentifier           SessionIdentifier
	Epoch                       uint64
	SequenceNumber              uint64
	RequiresNextActiveCommittee bool
	Kind                        ProtocolKind
	Input                       []byte
}

// Fingerprint returns the digest of the canonical encoding of the request.
// Two requests with equal fingerprints are interchangeable.
func (r *SessionRequest) Fingerprint() ([IdentifierLen]byte, error) {
	var fp [IdentifierLen]byte
	input, err := Encode(r.Input)
	if err != nil {
		return fp, fmt.Errorf("could not encode request input: %w", err)
	}
	encoded, err := Encode(encodableRequest{
		SessionIdentifier:           r.SessionIdentifier,
		Epoch:                       r.Epoch,
		SequenceNumber:              r.SequenceNumber,
		RequiresNextActiveCommittee: r.RequiresNextActiveCommittee,
		Kind:                        r.Kind(),
		Input:                       input,
	})
	if err != nil {
		return fp, fmt.Errorf("could not encode request: %w", err)
	}
	return sha3.Sum256(encoded), nil
}

// RawEvent is an undecoded chain event as delivered by the event source.
type RawEvent struct {
	// Type is the fully qualified chain event type.
	Type     string
	Contents []byte
	// Pulled is set for events fetched proactively from the chain rather
	// than delivered live.
	Pulled bool
}

// InboundEvent is a decoded session request entering admission.
type InboundEvent struct {
	Request SessionRequest
	// Pulled events may belong to a past epoch (carry-over work), live
	// events always belong to the current one.
	Pulled bool
}

// SessionEventData is the dependency-resolved context of a session. It is
// created exactly once per session, after every dependency is available.
type SessionEventData struct {
	Request SessionRequest
	// NetworkKeyID is set when the protocol runs against a network key.
	NetworkKeyID *NetworkKeyID
	// ProtocolPublicParameters of the network key, empty when NetworkKeyID
	// is nil.
	ProtocolPublicParameters []byte
	// PublicInput is the canonical encoding of the request input handed to
	// the protocol party.
	PublicInput []byte
}
