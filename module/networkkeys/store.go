package networkkeys

import (
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/exp/maps"

	"github.com/dwallet-labs/dwallet-network-sub004/model/dwallet"
	"github.com/dwallet-labs/dwallet-network-sub004/storage"
)

// Store owns the network key material of this validator: the public data of
// every network key and the decryption key shares derived from it.
//
// Store is not safe for concurrent use. It is owned by the MPC manager of the
// current epoch.
type Store struct {
	log        zerolog.Logger
	decrypter  ShareDecrypter
	publicData map[dwallet.NetworkKeyID]*dwallet.NetworkDecryptionKeyPublicData
	shares     dwallet.ValidatorPrivateKeyShares
	keys       storage.NetworkKeys // optional
}

// Option configures a Store.
type Option func(*Store)

// WithShareDecrypter replaces the default NaCl box share decrypter.
func WithShareDecrypter(decrypter ShareDecrypter) Option {
	return func(s *Store) {
		s.decrypter = decrypter
	}
}

// WithStorage persists the public data of every applied key update.
func WithStorage(keys storage.NetworkKeys) Option {
	return func(s *Store) {
		s.keys = keys
	}
}

// NewStore creates an empty key store for the given party, holding the
// validator's private encryption key.
func NewStore(log zerolog.Logger, party dwallet.PartyID, decryptionKey [32]byte, opts ...Option) (*Store, error) {
	s := &Store{
		log:        log.With().Str("module", "network_keys").Logger(),
		publicData: make(map[dwallet.NetworkKeyID]*dwallet.NetworkDecryptionKeyPublicData),
		shares: dwallet.ValidatorPrivateKeyShares{
			PartyID:       party,
			DecryptionKey: decryptionKey,
			Shares:        make(map[dwallet.NetworkKeyID]map[dwallet.VirtualPartyID]dwallet.DecryptionKeyShare),
		},
	}
	for _, apply := range opts {
		apply(s)
	}
	if s.decrypter == nil {
		decrypter, err := NewBoxShareDecrypter(decryptionKey)
		if err != nil {
			return nil, err
		}
		s.decrypter = decrypter
	}
	return s, nil
}

// UpdateNetworkKey replaces the public data of the key and recomputes this
// validator's shares of it. The update is applied entirely or not at all.
// Expected errors during normal operations:
//   - CryptographicProcessingError if the public output cannot be decoded or
//     a share cannot be derived
func (s *Store) UpdateNetworkKey(keyID dwallet.NetworkKeyID, data *dwallet.NetworkDecryptionKeyPublicData, access *dwallet.WeightedAccessStructure) error {
	output, err := DecodePublicOutput(data.Version, data.LatestPublicOutput)
	if err != nil {
		return NewCryptographicProcessingErrorf(keyID, "invalid public output: %w", err)
	}
	virtualParties, err := access.VirtualParties(s.shares.PartyID)
	if err != nil {
		return NewCryptographicProcessingErrorf(keyID, "could not assign virtual parties: %w", err)
	}

	shares := make(map[dwallet.VirtualPartyID]dwallet.DecryptionKeyShare, len(virtualParties))
	for _, party := range virtualParties {
		ciphertext, ok := output.EncryptionsOfShares[party]
		if !ok {
			return NewCryptographicProcessingErrorf(keyID, "public output has no share for virtual party %d", party)
		}
		share, err := s.decrypter.DecryptShare(keyID, party, ciphertext)
		if err != nil {
			return NewCryptographicProcessingErrorf(keyID, "could not derive share: %w", err)
		}
		shares[party] = share
	}

	updated := *data
	updated.ProtocolPublicParameters = output.ProtocolPublicParameters
	updated.DecryptionSharePublicParameters = output.DecryptionSharePublicParameters
	if len(updated.OriginatingDKGOutput) == 0 {
		previous, ok := s.publicData[keyID]
		switch {
		case ok:
			updated.OriginatingDKGOutput = previous.OriginatingDKGOutput
		case updated.State == dwallet.NetworkKeyStateFromDKG:
			updated.OriginatingDKGOutput = updated.LatestPublicOutput
		}
	}

	if s.keys != nil {
		err = s.keys.Store(keyID, &updated)
		if err != nil {
			return fmt.Errorf("could not persist network key: %w", err)
		}
	}

	s.publicData[keyID] = &updated
	s.shares.Shares[keyID] = shares
	s.log.Info().
		Str("network_key_id", keyID.String()).
		Str("state", updated.State.String()).
		Int("virtual_parties", len(shares)).
		Msg("network key updated")
	return nil
}

// Bootstrap re-applies the public data of every persisted key. It is a no-op
// when the store has no storage. Keys whose stored output cannot be turned into
// shares under the given access structure are skipped; they stay unknown until
// the next update of the key.
// No errors are expected during normal operation.
func (s *Store) Bootstrap(access *dwallet.WeightedAccessStructure) error {
	if s.keys == nil {
		return nil
	}
	stored, err := s.keys.All()
	if err != nil {
		return fmt.Errorf("could not load network keys: %w", err)
	}
	for keyID, data := range stored {
		err = s.UpdateNetworkKey(keyID, data, access)
		if IsCryptographicProcessingError(err) {
			s.log.Warn().Err(err).
				Str("network_key_id", keyID.String()).
				Msg("skipping stored network key that cannot be restored")
			continue
		}
		if err != nil {
			return fmt.Errorf("could not restore network key %s: %w", keyID, err)
		}
	}
	return nil
}

// KeyPublicDataExists returns whether the public data of the key is known.
func (s *Store) KeyPublicDataExists(keyID dwallet.NetworkKeyID) bool {
	_, ok := s.publicData[keyID]
	return ok
}

// ProtocolPublicParameters returns ErrWaitingForNetworkKey if the key is
// not known yet.
func (s *Store) ProtocolPublicParameters(keyID dwallet.NetworkKeyID) ([]byte, error) {
	data, ok := s.publicData[keyID]
	if !ok {
		return nil, fmt.Errorf("protocol public parameters of %s: %w", keyID, ErrWaitingForNetworkKey)
	}
	return data.ProtocolPublicParameters, nil
}

// DecryptionParameters returns what is needed to decrypt with the key. It
// returns ErrWaitingForNetworkKey if the key is not known yet.
func (s *Store) DecryptionParameters(keyID dwallet.NetworkKeyID) (*dwallet.DecryptionParameters, error) {
	data, ok := s.publicData[keyID]
	if !ok {
		return nil, fmt.Errorf("decryption parameters of %s: %w", keyID, ErrWaitingForNetworkKey)
	}
	return &dwallet.DecryptionParameters{
		KeyID:                           keyID,
		DecryptionSharePublicParameters: data.DecryptionSharePublicParameters,
		Shares:                          maps.Clone(s.shares.Shares[keyID]),
	}, nil
}

// PublicData returns the public data of the key.
func (s *Store) PublicData(keyID dwallet.NetworkKeyID) (*dwallet.NetworkDecryptionKeyPublicData, bool) {
	data, ok := s.publicData[keyID]
	return data, ok
}

// Shares returns this validator's shares of the key.
func (s *Store) Shares(keyID dwallet.NetworkKeyID) map[dwallet.VirtualPartyID]dwallet.DecryptionKeyShare {
	return maps.Clone(s.shares.Shares[keyID])
}

// NetworkKeyIDs lists the keys whose public data is known.
func (s *Store) NetworkKeyIDs() []dwallet.NetworkKeyID {
	return maps.Keys(s.publicData)
}

// PartyID returns the party of this validator.
func (s *Store) PartyID() dwallet.PartyID {
	return s.shares.PartyID
}
