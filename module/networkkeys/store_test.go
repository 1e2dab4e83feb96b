package networkkeys_test

import (
	"errors"
	"testing"

	"github.com/dgraph-io/badger/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/dwallet-labs/dwallet-network-sub004/model/dwallet"
	"github.com/dwallet-labs/dwallet-network-sub004/module/committees"
	"github.com/dwallet-labs/dwallet-network-sub004/module/networkkeys"
	bstorage "github.com/dwallet-labs/dwallet-network-sub004/storage/badger"
	"github.com/dwallet-labs/dwallet-network-sub004/utils/unittest"
)

func TestStore(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

type StoreSuite struct {
	suite.Suite

	public  [32]byte
	private [32]byte
	access  *dwallet.WeightedAccessStructure
	keyID   dwallet.NetworkKeyID
	store   *networkkeys.Store
}

func (s *StoreSuite) SetupTest() {
	var err error
	s.public, s.private, err = networkkeys.GenerateEncryptionKey()
	s.Require().NoError(err)

	// party 1 holds virtual parties 1 and 2, party 2 holds virtual party 3
	s.access, err = committees.AccessStructure(unittest.CommitteeFixture(1, 2, 1))
	s.Require().NoError(err)

	s.keyID = unittest.NetworkKeyIDFixture()
	s.store, err = networkkeys.NewStore(unittest.Logger(), 1, s.private)
	s.Require().NoError(err)
}

// publicData builds the public data of a key whose shares are all sealed to
// this validator.
func (s *StoreSuite) publicData(state dwallet.NetworkKeyState, shares map[dwallet.VirtualPartyID]dwallet.DecryptionKeyShare) *dwallet.NetworkDecryptionKeyPublicData {
	output := &networkkeys.PublicOutput{
		Version:                         dwallet.NetworkKeyOutputV1,
		EncryptionsOfShares:             make(map[dwallet.VirtualPartyID][]byte),
		ProtocolPublicParameters:        unittest.RandomBytes(16),
		DecryptionSharePublicParameters: unittest.RandomBytes(16),
	}
	for party, share := range shares {
		ciphertext, err := networkkeys.SealShare(s.public, share)
		s.Require().NoError(err)
		output.EncryptionsOfShares[party] = ciphertext
	}
	encoded, err := output.Encode()
	s.Require().NoError(err)
	return &dwallet.NetworkDecryptionKeyPublicData{
		State:              state,
		Version:            dwallet.NetworkKeyOutputV1,
		LatestPublicOutput: encoded,
	}
}

func (s *StoreSuite) shares() map[dwallet.VirtualPartyID]dwallet.DecryptionKeyShare {
	return map[dwallet.VirtualPartyID]dwallet.DecryptionKeyShare{
		1: unittest.RandomBytes(32),
		2: unittest.RandomBytes(32),
		3: unittest.RandomBytes(32),
	}
}

func (s *StoreSuite) TestWaitingForNetworkKey() {
	s.Assert().False(s.store.KeyPublicDataExists(s.keyID))

	_, err := s.store.ProtocolPublicParameters(s.keyID)
	s.Assert().True(errors.Is(err, networkkeys.ErrWaitingForNetworkKey))
	_, err = s.store.DecryptionParameters(s.keyID)
	s.Assert().True(errors.Is(err, networkkeys.ErrWaitingForNetworkKey))
	s.Assert().False(networkkeys.IsCryptographicProcessingError(err))
}

func (s *StoreSuite) TestUpdateNetworkKey() {
	shares := s.shares()
	data := s.publicData(dwallet.NetworkKeyStateFromDKG, shares)
	s.Require().NoError(s.store.UpdateNetworkKey(s.keyID, data, s.access))

	s.Assert().True(s.store.KeyPublicDataExists(s.keyID))
	s.Assert().Equal([]dwallet.NetworkKeyID{s.keyID}, s.store.NetworkKeyIDs())

	params, err := s.store.ProtocolPublicParameters(s.keyID)
	s.Require().NoError(err)
	s.Assert().NotEmpty(params)

	decryption, err := s.store.DecryptionParameters(s.keyID)
	s.Require().NoError(err)
	s.Assert().Equal(s.keyID, decryption.KeyID)
	// only the virtual parties of this validator are kept
	s.Assert().Equal(map[dwallet.VirtualPartyID]dwallet.DecryptionKeyShare{1: shares[1], 2: shares[2]}, decryption.Shares)

	stored, ok := s.store.PublicData(s.keyID)
	s.Require().True(ok)
	s.Assert().Equal(data.LatestPublicOutput, stored.OriginatingDKGOutput)

	// reconfiguration replaces the shares and keeps the originating output
	reshared := s.shares()
	s.Require().NoError(s.store.UpdateNetworkKey(s.keyID, s.publicData(dwallet.NetworkKeyStateFromReconfiguration, reshared), s.access))
	s.Assert().Equal(reshared[1], s.store.Shares(s.keyID)[1])
	stored, _ = s.store.PublicData(s.keyID)
	s.Assert().Equal(dwallet.NetworkKeyStateFromReconfiguration, stored.State)
	s.Assert().Equal(data.LatestPublicOutput, stored.OriginatingDKGOutput)
}

// TestUpdateNetworkKey_Atomic checks that failing updates keep the previous
// key material.
func (s *StoreSuite) TestUpdateNetworkKey_Atomic() {
	shares := s.shares()
	s.Require().NoError(s.store.UpdateNetworkKey(s.keyID, s.publicData(dwallet.NetworkKeyStateFromDKG, shares), s.access))
	before, err := s.store.ProtocolPublicParameters(s.keyID)
	s.Require().NoError(err)

	s.Run("undecodable output", func() {
		data := &dwallet.NetworkDecryptionKeyPublicData{Version: dwallet.NetworkKeyOutputV1, LatestPublicOutput: []byte{0xff, 0x00}}
		err := s.store.UpdateNetworkKey(s.keyID, data, s.access)
		s.Assert().True(networkkeys.IsCryptographicProcessingError(err))
	})
	s.Run("unsupported version", func() {
		data := s.publicData(dwallet.NetworkKeyStateFromReconfiguration, s.shares())
		data.Version = 9
		err := s.store.UpdateNetworkKey(s.keyID, data, s.access)
		s.Assert().True(networkkeys.IsCryptographicProcessingError(err))
		s.Assert().True(errors.Is(err, dwallet.ErrUnsupportedKeyScheme))
	})
	s.Run("missing share", func() {
		partial := s.shares()
		delete(partial, 2)
		err := s.store.UpdateNetworkKey(s.keyID, s.publicData(dwallet.NetworkKeyStateFromReconfiguration, partial), s.access)
		s.Assert().True(networkkeys.IsCryptographicProcessingError(err))
	})
	s.Run("share sealed to another validator", func() {
		otherPublic, _, err := networkkeys.GenerateEncryptionKey()
		s.Require().NoError(err)
		output := &networkkeys.PublicOutput{
			Version:                  dwallet.NetworkKeyOutputV1,
			EncryptionsOfShares:      make(map[dwallet.VirtualPartyID][]byte),
			ProtocolPublicParameters: unittest.RandomBytes(16),
		}
		for party, share := range s.shares() {
			output.EncryptionsOfShares[party], err = networkkeys.SealShare(otherPublic, share)
			s.Require().NoError(err)
		}
		encoded, err := output.Encode()
		s.Require().NoError(err)
		data := &dwallet.NetworkDecryptionKeyPublicData{Version: dwallet.NetworkKeyOutputV1, LatestPublicOutput: encoded}
		err = s.store.UpdateNetworkKey(s.keyID, data, s.access)
		s.Assert().True(networkkeys.IsCryptographicProcessingError(err))
	})

	after, err := s.store.ProtocolPublicParameters(s.keyID)
	s.Require().NoError(err)
	s.Assert().Equal(before, after)
	s.Assert().Equal(shares[1], s.store.Shares(s.keyID)[1])
}

func (s *StoreSuite) TestUnknownParty() {
	store, err := networkkeys.NewStore(unittest.Logger(), 42, s.private)
	s.Require().NoError(err)
	err = store.UpdateNetworkKey(s.keyID, s.publicData(dwallet.NetworkKeyStateFromDKG, s.shares()), s.access)
	s.Assert().True(networkkeys.IsCryptographicProcessingError(err))
	s.Assert().False(store.KeyPublicDataExists(s.keyID))
}

func TestStore_PersistAndBootstrap(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		public, private, err := networkkeys.GenerateEncryptionKey()
		require.NoError(t, err)
		access, err := committees.AccessStructure(unittest.CommitteeFixture(1, 1, 1))
		require.NoError(t, err)

		share := dwallet.DecryptionKeyShare(unittest.RandomBytes(32))
		ciphertext, err := networkkeys.SealShare(public, share)
		require.NoError(t, err)
		output := &networkkeys.PublicOutput{
			Version:                  dwallet.NetworkKeyOutputV1,
			EncryptionsOfShares:      map[dwallet.VirtualPartyID][]byte{1: ciphertext},
			ProtocolPublicParameters: unittest.RandomBytes(16),
		}
		encoded, err := output.Encode()
		require.NoError(t, err)
		keyID := unittest.NetworkKeyIDFixture()

		keys := bstorage.NewNetworkKeys(db)
		store, err := networkkeys.NewStore(unittest.Logger(), 1, private, networkkeys.WithStorage(keys))
		require.NoError(t, err)
		require.NoError(t, store.UpdateNetworkKey(keyID, &dwallet.NetworkDecryptionKeyPublicData{
			Version:            dwallet.NetworkKeyOutputV1,
			LatestPublicOutput: encoded,
		}, access))

		restarted, err := networkkeys.NewStore(unittest.Logger(), 1, private, networkkeys.WithStorage(keys))
		require.NoError(t, err)
		assert.False(t, restarted.KeyPublicDataExists(keyID))
		require.NoError(t, restarted.Bootstrap(access))
		assert.True(t, restarted.KeyPublicDataExists(keyID))
		assert.Equal(t, share, restarted.Shares(keyID)[1])
	})
}

// TestStore_BootstrapSkipsUnrestorableKeys verifies that a stored key whose
// output lacks shares for the current access structure is skipped while the
// other stored keys are restored.
func TestStore_BootstrapSkipsUnrestorableKeys(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		public, private, err := networkkeys.GenerateEncryptionKey()
		require.NoError(t, err)

		publicData := func(parties ...dwallet.VirtualPartyID) *dwallet.NetworkDecryptionKeyPublicData {
			output := &networkkeys.PublicOutput{
				Version:                  dwallet.NetworkKeyOutputV1,
				EncryptionsOfShares:      make(map[dwallet.VirtualPartyID][]byte),
				ProtocolPublicParameters: unittest.RandomBytes(16),
			}
			for _, party := range parties {
				ciphertext, err := networkkeys.SealShare(public, unittest.RandomBytes(32))
				require.NoError(t, err)
				output.EncryptionsOfShares[party] = ciphertext
			}
			encoded, err := output.Encode()
			require.NoError(t, err)
			return &dwallet.NetworkDecryptionKeyPublicData{
				State:              dwallet.NetworkKeyStateFromDKG,
				Version:            dwallet.NetworkKeyOutputV1,
				LatestPublicOutput: encoded,
			}
		}

		// shared when party 1 had weight 1
		stale := unittest.NetworkKeyIDFixture()
		current := unittest.NetworkKeyIDFixture()
		keys := bstorage.NewNetworkKeys(db)
		require.NoError(t, keys.Store(stale, publicData(1)))
		require.NoError(t, keys.Store(current, publicData(1, 2)))

		// party 1 now holds virtual parties 1 and 2
		access, err := committees.AccessStructure(unittest.CommitteeFixture(2, 2, 1))
		require.NoError(t, err)
		store, err := networkkeys.NewStore(unittest.Logger(), 1, private, networkkeys.WithStorage(keys))
		require.NoError(t, err)

		require.NoError(t, store.Bootstrap(access))
		assert.False(t, store.KeyPublicDataExists(stale))
		assert.True(t, store.KeyPublicDataExists(current))
		assert.Len(t, store.Shares(current), 2)
	})
}
