package dwallet

// NetworkKeyState tells how the current public data of a network key came
// to be.
type NetworkKeyState uint8

const (
	NetworkKeyStateFromDKG NetworkKeyState = iota
	NetworkKeyStateFromReconfiguration
)

func (s NetworkKeyState) String() string {
	switch s {
	case NetworkKeyStateFromDKG:
		return "from_dkg"
	case NetworkKeyStateFromReconfiguration:
		return "from_reconfiguration"
	default:
		return "unknown"
	}
}

// NetworkKeyOutputVersion is the format version of the public output of the
// protocol round that produced the key material.
type NetworkKeyOutputVersion uint8

const (
	NetworkKeyOutputV1 NetworkKeyOutputVersion = 1
)

// NetworkDecryptionKeyPublicData is the public material of a network key. It
// is replaced wholesale on each reconfiguration.
type NetworkDecryptionKeyPublicData struct {
	State   NetworkKeyState
	Version NetworkKeyOutputVersion
	// LatestPublicOutput is the public output of the latest DKG or
	// reconfiguration round.
	LatestPublicOutput              []byte
	DecryptionSharePublicParameters []byte
	ProtocolPublicParameters        []byte
	// OriginatingDKGOutput is the public output of the DKG that created the
	// key, kept across reconfigurations.
	OriginatingDKGOutput []byte
}

// DecryptionKeyShare is one virtual party's share of a network decryption key.
type DecryptionKeyShare []byte

// ValidatorPrivateKeyShares is the secret material of this validator. It is
// recomputed whenever the public data of a network key changes and is never
// transmitted.
type ValidatorPrivateKeyShares struct {
	PartyID PartyID
	// DecryptionKey is the validator's private encryption key, used to open
	// the shares encrypted to it.
	DecryptionKey [32]byte
	Shares        map[NetworkKeyID]map[VirtualPartyID]DecryptionKeyShare
}

// DecryptionParameters is what the protocol party needs to decrypt with a
// network key.
type DecryptionParameters struct {
	KeyID                           NetworkKeyID
	DecryptionSharePublicParameters []byte
	Shares                          map[VirtualPartyID]DecryptionKeyShare
}
