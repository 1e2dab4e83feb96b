package dwallet

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/sha3"
)

// IdentifierLen is the length of all identifiers used in the MPC model.
const IdentifierLen = 32

// sessionIdentifierDomain separates session identifiers from other digests
// computed over the same preimage.
var sessionIdentifierDomain = []byte("DWALLET_MPC_SESSION_IDENTIFIER")

// SessionIdentifier is the globally unique, stable digest of the event that
// defined a session.
type SessionIdentifier [IdentifierLen]byte

// ZeroSessionIdentifier is the zero value, never assigned to a real session.
var ZeroSessionIdentifier SessionIdentifier

// MakeSessionIdentifier derives the identifier of a session from the
// preimage emitted by the chain together with the session event.
func MakeSessionIdentifier(preimage []byte) SessionIdentifier {
	hasher := sha3.New256()
	_, _ = hasher.Write(sessionIdentifierDomain)
	_, _ = hasher.Write(preimage)
	var id SessionIdentifier
	copy(id[:], hasher.Sum(nil))
	return id
}

func (id SessionIdentifier) String() string {
	return hex.EncodeToString(id[:])
}

// Less defines the canonical order of session identifiers.
func (id SessionIdentifier) Less(other SessionIdentifier) bool {
	return bytes.Compare(id[:], other[:]) < 0
}

// HexStringToSessionIdentifier parses a hex encoded session identifier.
func HexStringToSessionIdentifier(s string) (SessionIdentifier, error) {
	var id SessionIdentifier
	b, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("could not decode session identifier: %w", err)
	}
	if len(b) != IdentifierLen {
		return id, fmt.Errorf("session identifier must be %d bytes, got %d", IdentifierLen, len(b))
	}
	copy(id[:], b)
	return id, nil
}

// ObjectID identifies an on-chain object (dWallet, presign, encrypted share...).
type ObjectID [IdentifierLen]byte

func (id ObjectID) String() string {
	return hex.EncodeToString(id[:])
}

// NetworkKeyID identifies a network-wide decryption key. There may be
// several, one per supported curve / key family.
type NetworkKeyID [IdentifierLen]byte

func (id NetworkKeyID) String() string {
	return hex.EncodeToString(id[:])
}

// HexStringToNetworkKeyID parses a hex encoded network key identifier.
func HexStringToNetworkKeyID(s string) (NetworkKeyID, error) {
	var id NetworkKeyID
	b, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("could not decode network key id: %w", err)
	}
	if len(b) != IdentifierLen {
		return id, fmt.Errorf("network key id must be %d bytes, got %d", IdentifierLen, len(b))
	}
	copy(id[:], b)
	return id, nil
}

// AuthorityID identifies a validator that submits outputs and carries stake.
type AuthorityID [IdentifierLen]byte

func (id AuthorityID) String() string {
	return hex.EncodeToString(id[:])
}

// HexStringToAuthorityID parses a hex encoded authority identifier.
func HexStringToAuthorityID(s string) (AuthorityID, error) {
	var id AuthorityID
	b, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("could not decode authority id: %w", err)
	}
	if len(b) != IdentifierLen {
		return id, fmt.Errorf("authority id must be %d bytes, got %d", IdentifierLen, len(b))
	}
	copy(id[:], b)
	return id, nil
}

// PartyID is the index of an authority within the MPC access structure.
type PartyID uint16

// VirtualPartyID is one of the sub-shares held by a single party to simulate
// a weighted threshold access structure.
type VirtualPartyID uint16
