package networkkeys

import (
	"fmt"

	"github.com/dwallet-labs/dwallet-network-sub004/model/dwallet"
)

// PublicOutput is the decoded public output of a network key DKG or
// reconfiguration round: the key shares of every virtual party, each
// encrypted to the validator holding it, and the public parameters derived
// from the key.
type PublicOutput struct {
	Version                         dwallet.NetworkKeyOutputVersion
	EncryptionsOfShares             map[dwallet.VirtualPartyID][]byte
	ProtocolPublicParameters        []byte
	DecryptionSharePublicParameters []byte
}

// Encode returns the canonical encoding of the output.
func (o *PublicOutput) Encode() ([]byte, error) {
	return dwallet.Encode(o)
}

// DecodePublicOutput parses a public output of the given format version.
func DecodePublicOutput(version dwallet.NetworkKeyOutputVersion, data []byte) (*PublicOutput, error) {
	switch version {
	case dwallet.NetworkKeyOutputV1:
	default:
		return nil, fmt.Errorf("public output version %d: %w", version, dwallet.ErrUnsupportedKeyScheme)
	}

	var out PublicOutput
	err := dwallet.Decode(data, &out)
	if err != nil {
		return nil, fmt.Errorf("could not decode public output: %w", err)
	}
	if out.Version != version {
		return nil, fmt.Errorf("public output declares version %d, expected %d", out.Version, version)
	}
	if len(out.ProtocolPublicParameters) == 0 {
		return nil, fmt.Errorf("public output carries no protocol public parameters")
	}
	return &out, nil
}
