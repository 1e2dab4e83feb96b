package unittest

import (
	"crypto/rand"
	"fmt"

	"github.com/dwallet-labs/dwallet-network-sub004/model/dwallet"
	"github.com/dwallet-labs/dwallet-network-sub004/module/committees"
)

func RandomBytes(n int) []byte {
	b := make([]byte, n)
	_, err := rand.Read(b)
	if err != nil {
		panic(err)
	}
	return b
}

func IdentifierFixture() [dwallet.IdentifierLen]byte {
	var id [dwallet.IdentifierLen]byte
	copy(id[:], RandomBytes(dwallet.IdentifierLen))
	return id
}

func SessionIdentifierFixture() dwallet.SessionIdentifier {
	return dwallet.MakeSessionIdentifier(RandomBytes(32))
}

func NetworkKeyIDFixture() dwallet.NetworkKeyID {
	return IdentifierFixture()
}

func ObjectIDFixture() dwallet.ObjectID {
	return IdentifierFixture()
}

func AuthorityIDFixture() dwallet.AuthorityID {
	return IdentifierFixture()
}

// CommitteeFixture returns a committee with one authority per weight. Party
// ids are assigned from 1 in the order of the weights.
func CommitteeFixture(epoch uint64, weights ...uint64) *dwallet.Committee {
	authorities := make([]dwallet.Authority, 0, len(weights))
	for i, w := range weights {
		authorities = append(authorities, dwallet.Authority{
			ID:      AuthorityIDFixture(),
			PartyID: dwallet.PartyID(i + 1),
			Weight:  w,
		})
	}
	committee, err := committees.NewCommittee(epoch, authorities)
	if err != nil {
		panic(fmt.Sprintf("invalid committee fixture: %v", err))
	}
	return committee
}

// EqualStakeCommitteeFixture returns a committee of n authorities sharing a
// total weight of 10000.
func EqualStakeCommitteeFixture(epoch uint64, n int) *dwallet.Committee {
	weights := make([]uint64, n)
	for i := range weights {
		weights[i] = 10000 / uint64(n)
	}
	return CommitteeFixture(epoch, weights...)
}

func SignRequestFixture(keyID dwallet.NetworkKeyID) *dwallet.SignRequest {
	return &dwallet.SignRequest{
		SignID:                 ObjectIDFixture(),
		DWalletID:              ObjectIDFixture(),
		NetworkEncryptionKeyID: keyID,
		Message:                RandomBytes(32),
		Presign:                RandomBytes(64),
		Curve:                  dwallet.CurveSecp256k1,
		SignatureAlgorithm:     dwallet.SignatureAlgorithmECDSA,
	}
}

func PresignRequestFixture(keyID dwallet.NetworkKeyID) *dwallet.PresignRequest {
	return &dwallet.PresignRequest{
		DWalletID:              ObjectIDFixture(),
		PresignID:              ObjectIDFixture(),
		NetworkEncryptionKeyID: keyID,
		Curve:                  dwallet.CurveSecp256k1,
		SignatureAlgorithm:     dwallet.SignatureAlgorithmECDSA,
	}
}

func NetworkKeyDKGRequestFixture() *dwallet.NetworkKeyDKGRequest {
	return &dwallet.NetworkKeyDKGRequest{
		NetworkEncryptionKeyID: NetworkKeyIDFixture(),
		Curve:                  dwallet.CurveSecp256k1,
	}
}

func NetworkKeyReconfigurationRequestFixture(keyID dwallet.NetworkKeyID) *dwallet.NetworkKeyReconfigurationRequest {
	return &dwallet.NetworkKeyReconfigurationRequest{NetworkEncryptionKeyID: keyID}
}

// SessionRequestFixture returns a request for a sign session of epoch 1,
// customizable with options.
func SessionRequestFixture(opts ...func(*dwallet.SessionRequest)) *dwallet.SessionRequest {
	req := &dwallet.SessionRequest{
		SessionIdentifier: SessionIdentifierFixture(),
		Epoch:             1,
		SequenceNumber:    1,
		Input:             SignRequestFixture(NetworkKeyIDFixture()),
	}
	for _, apply := range opts {
		apply(req)
	}
	return req
}

func WithEpoch(epoch uint64) func(*dwallet.SessionRequest) {
	return func(r *dwallet.SessionRequest) {
		r.Epoch = epoch
	}
}

func WithSequenceNumber(seq uint64) func(*dwallet.SessionRequest) {
	return func(r *dwallet.SessionRequest) {
		r.SequenceNumber = seq
	}
}

func WithInput(input dwallet.RequestInput) func(*dwallet.SessionRequest) {
	return func(r *dwallet.SessionRequest) {
		r.Input = input
	}
}

func WithRequiresNextCommittee() func(*dwallet.SessionRequest) {
	return func(r *dwallet.SessionRequest) {
		r.RequiresNextActiveCommittee = true
	}
}

func InboundEventFixture(req *dwallet.SessionRequest, pulled bool) dwallet.InboundEvent {
	return dwallet.InboundEvent{Request: *req, Pulled: pulled}
}
