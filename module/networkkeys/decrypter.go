package networkkeys

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/nacl/box"

	"github.com/dwallet-labs/dwallet-network-sub004/model/dwallet"
)

// ShareDecrypter opens the key shares encrypted to this validator.
type ShareDecrypter interface {
	DecryptShare(keyID dwallet.NetworkKeyID, party dwallet.VirtualPartyID, ciphertext []byte) (dwallet.DecryptionKeyShare, error)
}

// BoxShareDecrypter opens shares sealed with NaCl anonymous boxes to the
// validator's encryption key.
type BoxShareDecrypter struct {
	publicKey  [32]byte
	privateKey [32]byte
}

var _ ShareDecrypter = (*BoxShareDecrypter)(nil)

func NewBoxShareDecrypter(privateKey [32]byte) (*BoxShareDecrypter, error) {
	pub, err := curve25519.X25519(privateKey[:], curve25519.Basepoint)
	if err != nil {
		return nil, fmt.Errorf("could not derive encryption public key: %w", err)
	}
	d := &BoxShareDecrypter{privateKey: privateKey}
	copy(d.publicKey[:], pub)
	return d, nil
}

// PublicKey returns the key shares must be sealed to.
func (d *BoxShareDecrypter) PublicKey() [32]byte {
	return d.publicKey
}

func (d *BoxShareDecrypter) DecryptShare(keyID dwallet.NetworkKeyID, party dwallet.VirtualPartyID, ciphertext []byte) (dwallet.DecryptionKeyShare, error) {
	share, ok := box.OpenAnonymous(nil, ciphertext, &d.publicKey, &d.privateKey)
	if !ok {
		return nil, fmt.Errorf("could not open share of virtual party %d for key %s", party, keyID)
	}
	return share, nil
}

// SealShare encrypts a key share to the given encryption public key.
func SealShare(recipient [32]byte, share dwallet.DecryptionKeyShare) ([]byte, error) {
	ciphertext, err := box.SealAnonymous(nil, share, &recipient, rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("could not seal share: %w", err)
	}
	return ciphertext, nil
}

// GenerateEncryptionKey returns a fresh encryption key pair.
func GenerateEncryptionKey() (public, private [32]byte, err error) {
	pub, priv, err := box.GenerateKey(rand.Reader)
	if err != nil {
		return public, private, fmt.Errorf("could not generate encryption key: %w", err)
	}
	return *pub, *priv, nil
}
