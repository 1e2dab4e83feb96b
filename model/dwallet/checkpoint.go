package dwallet

// CheckpointMessageKind enumerates the records a certified session produces.
type CheckpointMessageKind uint8

const (
	CheckpointMessageKindUnknown CheckpointMessageKind = iota
	RespondDWalletDKGFirstRoundOutputKind
	RespondDWalletDKGSecondRoundOutputKind
	RespondDWalletPresignKind
	RespondDWalletSignKind
	RespondDWalletPartialSignatureVerificationOutputKind
	RespondDWalletEncryptedUserShareKind
	RespondMakeDWalletUserSecretKeySharesPublicKind
	RespondDWalletImportedKeyVerificationOutputKind
	RespondDWalletMPCNetworkDKGOutputKind
	RespondDWalletMPCNetworkReconfigurationOutputKind
)

func (k CheckpointMessageKind) String() string {
	switch k {
	case RespondDWalletDKGFirstRoundOutputKind:
		return "respond_dwallet_dkg_first_round_output"
	case RespondDWalletDKGSecondRoundOutputKind:
		return "respond_dwallet_dkg_second_round_output"
	case RespondDWalletPresignKind:
		return "respond_dwallet_presign"
	case RespondDWalletSignKind:
		return "respond_dwallet_sign"
	case RespondDWalletPartialSignatureVerificationOutputKind:
		return "respond_dwallet_partial_signature_verification_output"
	case RespondDWalletEncryptedUserShareKind:
		return "respond_dwallet_encrypted_user_share"
	case RespondMakeDWalletUserSecretKeySharesPublicKind:
		return "respond_make_dwallet_user_secret_key_shares_public"
	case RespondDWalletImportedKeyVerificationOutputKind:
		return "respond_dwallet_imported_key_verification_output"
	case RespondDWalletMPCNetworkDKGOutputKind:
		return "respond_dwallet_mpc_network_dkg_output"
	case RespondDWalletMPCNetworkReconfigurationOutputKind:
		return "respond_dwallet_mpc_network_reconfiguration_output"
	default:
		return "unknown"
	}
}

// CheckpointMessage is a finalized, chain-bound record summarizing a
// certified session result.
type CheckpointMessage interface {
	Kind() CheckpointMessageKind
	Header() MessageHeader
}

// MessageHeader holds the fields every checkpoint message carries.
type MessageHeader struct {
	SessionSequenceNumber uint64
	Rejected              bool
}

func (h MessageHeader) Header() MessageHeader { return h }

type RespondDWalletDKGFirstRoundOutput struct {
	MessageHeader
	DWalletID        ObjectID
	FirstRoundOutput []byte
}

func (*RespondDWalletDKGFirstRoundOutput) Kind() CheckpointMessageKind {
	return RespondDWalletDKGFirstRoundOutputKind
}

type RespondDWalletDKGSecondRoundOutput struct {
	MessageHeader
	DWalletID                     ObjectID
	EncryptedUserSecretKeyShareID ObjectID
	Output                        []byte
}

func (*RespondDWalletDKGSecondRoundOutput) Kind() CheckpointMessageKind {
	return RespondDWalletDKGSecondRoundOutputKind
}

type RespondDWalletPresign struct {
	MessageHeader
	DWalletID ObjectID
	PresignID ObjectID
	Presign   []byte
}

func (*RespondDWalletPresign) Kind() CheckpointMessageKind { return RespondDWalletPresignKind }

type RespondDWalletSign struct {
	MessageHeader
	DWalletID    ObjectID
	SignID       ObjectID
	Signature    []byte
	IsFutureSign bool
}

func (*RespondDWalletSign) Kind() CheckpointMessageKind { return RespondDWalletSignKind }

type RespondDWalletPartialSignatureVerificationOutput struct {
	MessageHeader
	DWalletID                         ObjectID
	PartialCentralizedSignedMessageID ObjectID
}

func (*RespondDWalletPartialSignatureVerificationOutput) Kind() CheckpointMessageKind {
	return RespondDWalletPartialSignatureVerificationOutputKind
}

type RespondDWalletEncryptedUserShare struct {
	MessageHeader
	DWalletID                     ObjectID
	EncryptedUserSecretKeyShareID ObjectID
}

func (*RespondDWalletEncryptedUserShare) Kind() CheckpointMessageKind {
	return RespondDWalletEncryptedUserShareKind
}

type RespondMakeDWalletUserSecretKeySharesPublic struct {
	MessageHeader
	DWalletID                 ObjectID
	PublicUserSecretKeyShares []byte
}

func (*RespondMakeDWalletUserSecretKeySharesPublic) Kind() CheckpointMessageKind {
	return RespondMakeDWalletUserSecretKeySharesPublicKind
}

type RespondDWalletImportedKeyVerificationOutput struct {
	MessageHeader
	DWalletID                     ObjectID
	EncryptedUserSecretKeyShareID ObjectID
	Output                        []byte
}

func (*RespondDWalletImportedKeyVerificationOutput) Kind() CheckpointMessageKind {
	return RespondDWalletImportedKeyVerificationOutputKind
}

// NetworkKeyOutputChunk is one slice of a network key public output. Outputs
// larger than the chain's message limit are emitted as a sequence of chunks
// sharing the same key and session identifiers.
type NetworkKeyOutputChunk struct {
	MessageHeader
	NetworkEncryptionKeyID NetworkKeyID
	ChunkIndex             uint32
	PublicOutput           []byte
	IsLast                 bool
}

type RespondDWalletMPCNetworkDKGOutput struct {
	NetworkKeyOutputChunk
}

func (*RespondDWalletMPCNetworkDKGOutput) Kind() CheckpointMessageKind {
	return RespondDWalletMPCNetworkDKGOutputKind
}

type RespondDWalletMPCNetworkReconfigurationOutput struct {
	NetworkKeyOutputChunk
}

func (*RespondDWalletMPCNetworkReconfigurationOutput) Kind() CheckpointMessageKind {
	return RespondDWalletMPCNetworkReconfigurationOutputKind
}

// Chunk returns the network key chunk carried by the message, if any.
func Chunk(msg CheckpointMessage) (NetworkKeyOutputChunk, bool) {
	switch m := msg.(type) {
	case *RespondDWalletMPCNetworkDKGOutput:
		return m.NetworkKeyOutputChunk, true
	case *RespondDWalletMPCNetworkReconfigurationOutput:
		return m.NetworkKeyOutputChunk, true
	default:
		return NetworkKeyOutputChunk{}, false
	}
}
