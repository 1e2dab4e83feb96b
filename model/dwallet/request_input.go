package dwallet

import (
	"errors"
	"fmt"
)

// ErrUnsupportedKeyScheme is returned when a request references a curve or a
// signature algorithm this validator does not support.
var ErrUnsupportedKeyScheme = errors.New("unsupported key scheme")

// ProtocolKind enumerates the MPC protocols a session can run.
type ProtocolKind uint8

const (
	ProtocolKindUnknown ProtocolKind = iota
	ProtocolKindDKGFirstRound
	ProtocolKindDKGSecondRound
	ProtocolKindPresign
	ProtocolKindSign
	ProtocolKindPartialSignatureVerification
	ProtocolKindEncryptedShareVerification
	ProtocolKindMakeSharesPublic
	ProtocolKindImportedKeyVerification
	ProtocolKindNetworkKeyDKG
	ProtocolKindNetworkKeyReconfiguration
)

func (k ProtocolKind) String() string {
	switch k {
	case ProtocolKindDKGFirstRound:
		return "dkg_first_round"
	case ProtocolKindDKGSecondRound:
		return "dkg_second_round"
	case ProtocolKindPresign:
		return "presign"
	case ProtocolKindSign:
		return "sign"
	case ProtocolKindPartialSignatureVerification:
		return "partial_signature_verification"
	case ProtocolKindEncryptedShareVerification:
		return "encrypted_share_verification"
	case ProtocolKindMakeSharesPublic:
		return "make_shares_public"
	case ProtocolKindImportedKeyVerification:
		return "imported_key_verification"
	case ProtocolKindNetworkKeyDKG:
		return "network_key_dkg"
	case ProtocolKindNetworkKeyReconfiguration:
		return "network_key_reconfiguration"
	default:
		return "unknown"
	}
}

// Curve is the elliptic curve a dWallet lives on.
type Curve uint32

const (
	CurveSecp256k1 Curve = iota
	CurveSecp256r1
	CurveCurve25519
	CurveRistretto
)

func (c Curve) Valid() bool {
	return c <= CurveRistretto
}

// SignatureAlgorithm is the signature scheme a sign session produces.
type SignatureAlgorithm uint32

const (
	SignatureAlgorithmECDSA SignatureAlgorithm = iota
	SignatureAlgorithmTaproot
	SignatureAlgorithmEdDSA
	SignatureAlgorithmSchnorrkelSubstrate
)

func (a SignatureAlgorithm) Valid() bool {
	return a <= SignatureAlgorithmSchnorrkelSubstrate
}

func validateScheme(curve Curve, algorithm *SignatureAlgorithm) error {
	if !curve.Valid() {
		return fmt.Errorf("curve %d: %w", curve, ErrUnsupportedKeyScheme)
	}
	if algorithm != nil && !algorithm.Valid() {
		return fmt.Errorf("signature algorithm %d: %w", *algorithm, ErrUnsupportedKeyScheme)
	}
	return nil
}

// RequestInput is the protocol specific part of a session request. The
// interface is sealed: every implementation belongs either to the user family
// (UserRequestInput) or to the system family (SystemRequestInput), so the
// session type of a request is fixed by the type of its input.
type RequestInput interface {
	Kind() ProtocolKind
	SessionType() SessionType
	// NetworkKeyID returns the network key the protocol depends on, if any.
	NetworkKeyID() (NetworkKeyID, bool)
	// Validate checks the input for schemes this validator cannot serve.
	Validate() error
	sealed()
}

// UserRequestInput is implemented by inputs of sessions triggered by users.
type UserRequestInput interface {
	RequestInput
	userRequest()
}

// SystemRequestInput is implemented by inputs of sessions triggered by the
// system (network key generation and reconfiguration).
type SystemRequestInput interface {
	RequestInput
	systemRequest()
}

type userFamily struct{}

func (userFamily) SessionType() SessionType { return SessionTypeUser }
func (userFamily) userRequest()             {}
func (userFamily) sealed()                  {}

type systemFamily struct{}

func (systemFamily) SessionType() SessionType { return SessionTypeSystem }
func (systemFamily) systemRequest()           {}
func (systemFamily) sealed()                  {}

/* ~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~ user requests ~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~ */

// DKGFirstRoundRequest starts the creation of a new dWallet.
type DKGFirstRoundRequest struct {
	userFamily
	DWalletID              ObjectID
	NetworkEncryptionKeyID NetworkKeyID
	Curve                  Curve
}

func (r *DKGFirstRoundRequest) Kind() ProtocolKind { return ProtocolKindDKGFirstRound }
func (r *DKGFirstRoundRequest) NetworkKeyID() (NetworkKeyID, bool) {
	return r.NetworkEncryptionKeyID, true
}
func (r *DKGFirstRoundRequest) Validate() error { return validateScheme(r.Curve, nil) }

// DKGSecondRoundRequest completes the creation of a dWallet with the user's
// centralized party contribution.
type DKGSecondRoundRequest struct {
	userFamily
	DWalletID                               ObjectID
	EncryptedUserSecretKeyShareID           ObjectID
	NetworkEncryptionKeyID                  NetworkKeyID
	FirstRoundOutput                        []byte
	CentralizedPublicKeyShareAndProof       []byte
	EncryptedCentralizedSecretShareAndProof []byte
	EncryptionKey                           []byte
	SignerPublicKey                         []byte
	Curve                                   Curve
}

func (r *DKGSecondRoundRequest) Kind() ProtocolKind { return ProtocolKindDKGSecondRound }
func (r *DKGSecondRoundRequest) NetworkKeyID() (NetworkKeyID, bool) {
	return r.NetworkEncryptionKeyID, true
}
func (r *DKGSecondRoundRequest) Validate() error { return validateScheme(r.Curve, nil) }

// PresignRequest computes a presignature, either bound to a dWallet or global
// (zero DWalletID).
type PresignRequest struct {
	userFamily
	DWalletID              ObjectID
	PresignID              ObjectID
	NetworkEncryptionKeyID NetworkKeyID
	DWalletPublicOutput    []byte
	Curve                  Curve
	SignatureAlgorithm     SignatureAlgorithm
}

func (r *PresignRequest) Kind() ProtocolKind { return ProtocolKindPresign }
func (r *PresignRequest) NetworkKeyID() (NetworkKeyID, bool) {
	return r.NetworkEncryptionKeyID, true
}
func (r *PresignRequest) Validate() error {
	return validateScheme(r.Curve, &r.SignatureAlgorithm)
}

// SignRequest computes the network's part of a threshold signature.
type SignRequest struct {
	userFamily
	SignID                           ObjectID
	DWalletID                        ObjectID
	NetworkEncryptionKeyID           NetworkKeyID
	Message                          []byte
	HashScheme                       uint32
	Presign                          []byte
	DWalletDecentralizedPublicOutput []byte
	MessageCentralizedSignature      []byte
	IsFutureSign                     bool
	Curve                            Curve
	SignatureAlgorithm               SignatureAlgorithm
}

func (r *SignRequest) Kind() ProtocolKind { return ProtocolKindSign }
func (r *SignRequest) NetworkKeyID() (NetworkKeyID, bool) {
	return r.NetworkEncryptionKeyID, true
}
func (r *SignRequest) Validate() error {
	return validateScheme(r.Curve, &r.SignatureAlgorithm)
}

// PartialSignatureVerificationRequest verifies a user's partial signature for
// a future sign.
type PartialSignatureVerificationRequest struct {
	userFamily
	PartialCentralizedSignedMessageID ObjectID
	DWalletID                         ObjectID
	NetworkEncryptionKeyID            NetworkKeyID
	Message                           []byte
	HashScheme                        uint32
	Presign                           []byte
	DWalletDecentralizedPublicOutput  []byte
	MessageCentralizedSignature       []byte
	Curve                             Curve
	SignatureAlgorithm                SignatureAlgorithm
}

func (r *PartialSignatureVerificationRequest) Kind() ProtocolKind {
	return ProtocolKindPartialSignatureVerification
}
func (r *PartialSignatureVerificationRequest) NetworkKeyID() (NetworkKeyID, bool) {
	return r.NetworkEncryptionKeyID, true
}
func (r *PartialSignatureVerificationRequest) Validate() error {
	return validateScheme(r.Curve, &r.SignatureAlgorithm)
}

// EncryptedShareVerificationRequest verifies a re-encryption of the user
// secret key share to another encryption key.
type EncryptedShareVerificationRequest struct {
	userFamily
	EncryptedUserSecretKeyShareID           ObjectID
	DWalletID                               ObjectID
	NetworkEncryptionKeyID                  NetworkKeyID
	EncryptedCentralizedSecretShareAndProof []byte
	DecentralizedPublicOutput               []byte
	EncryptionKey                           []byte
	EncryptionKeyID                         ObjectID
	Curve                                   Curve
}

func (r *EncryptedShareVerificationRequest) Kind() ProtocolKind {
	return ProtocolKindEncryptedShareVerification
}
func (r *EncryptedShareVerificationRequest) NetworkKeyID() (NetworkKeyID, bool) {
	return r.NetworkEncryptionKeyID, true
}
func (r *EncryptedShareVerificationRequest) Validate() error { return validateScheme(r.Curve, nil) }

// MakeSharesPublicRequest verifies user secret key shares the user decided to
// publish, turning the dWallet into a zero-trust-less one.
type MakeSharesPublicRequest struct {
	userFamily
	DWalletID                 ObjectID
	NetworkEncryptionKeyID    NetworkKeyID
	PublicUserSecretKeyShares []byte
	PublicOutput              []byte
	Curve                     Curve
}

func (r *MakeSharesPublicRequest) Kind() ProtocolKind { return ProtocolKindMakeSharesPublic }
func (r *MakeSharesPublicRequest) NetworkKeyID() (NetworkKeyID, bool) {
	return r.NetworkEncryptionKeyID, true
}
func (r *MakeSharesPublicRequest) Validate() error { return validateScheme(r.Curve, nil) }

// ImportedKeyVerificationRequest verifies the centralized party message of a
// dWallet created from an existing key.
type ImportedKeyVerificationRequest struct {
	userFamily
	DWalletID                     ObjectID
	EncryptedUserSecretKeyShareID ObjectID
	NetworkEncryptionKeyID        NetworkKeyID
	CentralizedPartyMessage       []byte
	EncryptionKey                 []byte
	EncryptionKeyID               ObjectID
	Curve                         Curve
}

func (r *ImportedKeyVerificationRequest) Kind() ProtocolKind {
	return ProtocolKindImportedKeyVerification
}
func (r *ImportedKeyVerificationRequest) NetworkKeyID() (NetworkKeyID, bool) {
	return r.NetworkEncryptionKeyID, true
}
func (r *ImportedKeyVerificationRequest) Validate() error { return validateScheme(r.Curve, nil) }

/* ~~~~~~~~~~~~~~~~~~~~~~~~~~~~~ system requests ~~~~~~~~~~~~~~~~~~~~~~~~~~~~~ */

// NetworkKeyDKGRequest generates a new network decryption key. It creates the
// key and therefore does not depend on one.
type NetworkKeyDKGRequest struct {
	systemFamily
	NetworkEncryptionKeyID NetworkKeyID
	Curve                  Curve
}

func (r *NetworkKeyDKGRequest) Kind() ProtocolKind                 { return ProtocolKindNetworkKeyDKG }
func (r *NetworkKeyDKGRequest) NetworkKeyID() (NetworkKeyID, bool) { return NetworkKeyID{}, false }
func (r *NetworkKeyDKGRequest) Validate() error                    { return validateScheme(r.Curve, nil) }

// NetworkKeyReconfigurationRequest re-shares an existing network key to the
// next epoch's committee.
type NetworkKeyReconfigurationRequest struct {
	systemFamily
	NetworkEncryptionKeyID NetworkKeyID
}

func (r *NetworkKeyReconfigurationRequest) Kind() ProtocolKind {
	return ProtocolKindNetworkKeyReconfiguration
}
func (r *NetworkKeyReconfigurationRequest) NetworkKeyID() (NetworkKeyID, bool) {
	return r.NetworkEncryptionKeyID, true
}
func (r *NetworkKeyReconfigurationRequest) Validate() error { return nil }

var (
	_ UserRequestInput   = (*DKGFirstRoundRequest)(nil)
	_ UserRequestInput   = (*DKGSecondRoundRequest)(nil)
	_ UserRequestInput   = (*PresignRequest)(nil)
	_ UserRequestInput   = (*SignRequest)(nil)
	_ UserRequestInput   = (*PartialSignatureVerificationRequest)(nil)
	_ UserRequestInput   = (*EncryptedShareVerificationRequest)(nil)
	_ UserRequestInput   = (*MakeSharesPublicRequest)(nil)
	_ UserRequestInput   = (*ImportedKeyVerificationRequest)(nil)
	_ SystemRequestInput = (*NetworkKeyDKGRequest)(nil)
	_ SystemRequestInput = (*NetworkKeyReconfigurationRequest)(nil)
)
