package operation

import (
	"errors"
	"testing"

	"github.com/dgraph-io/badger/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwallet-labs/dwallet-network-sub004/model/dwallet"
	"github.com/dwallet-labs/dwallet-network-sub004/storage"
	"github.com/dwallet-labs/dwallet-network-sub004/utils/unittest"
)

func TestCompletedSessionsInsertCheckLookup(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		first := unittest.SessionIdentifierFixture()
		second := unittest.SessionIdentifierFixture()
		other := unittest.SessionIdentifierFixture()

		require.NoError(t, db.Update(InsertCompletedSession(3, first)))
		require.NoError(t, db.Update(IndexEpochCompletedSession(3, first)))
		require.NoError(t, db.Update(InsertCompletedSession(3, second)))
		require.NoError(t, db.Update(IndexEpochCompletedSession(3, second)))
		require.NoError(t, db.Update(InsertCompletedSession(4, other)))
		require.NoError(t, db.Update(IndexEpochCompletedSession(4, other)))

		err := db.Update(InsertCompletedSession(3, first))
		assert.True(t, errors.Is(err, storage.ErrAlreadyExists))

		var completed bool
		require.NoError(t, db.View(CheckCompletedSession(first, &completed)))
		assert.True(t, completed)
		require.NoError(t, db.View(CheckCompletedSession(unittest.SessionIdentifierFixture(), &completed)))
		assert.False(t, completed)

		var epoch uint64
		require.NoError(t, db.View(RetrieveCompletedSessionEpoch(other, &epoch)))
		assert.Equal(t, uint64(4), epoch)

		var ids []dwallet.SessionIdentifier
		require.NoError(t, db.View(LookupCompletedSessionsByEpoch(3, &ids)))
		assert.ElementsMatch(t, []dwallet.SessionIdentifier{first, second}, ids)
	})
}

func TestNetworkKeyPublicDataUpsertRetrieve(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		keyID := unittest.NetworkKeyIDFixture()
		data := &dwallet.NetworkDecryptionKeyPublicData{
			State:                    dwallet.NetworkKeyStateFromDKG,
			Version:                  dwallet.NetworkKeyOutputV1,
			LatestPublicOutput:       unittest.RandomBytes(100),
			ProtocolPublicParameters: unittest.RandomBytes(10),
		}

		var actual dwallet.NetworkDecryptionKeyPublicData
		err := db.View(RetrieveNetworkKeyPublicData(keyID, &actual))
		assert.True(t, errors.Is(err, storage.ErrNotFound))

		require.NoError(t, db.Update(UpsertNetworkKeyPublicData(keyID, data)))
		require.NoError(t, db.View(RetrieveNetworkKeyPublicData(keyID, &actual)))
		assert.Equal(t, data.LatestPublicOutput, actual.LatestPublicOutput)
		assert.Equal(t, data.ProtocolPublicParameters, actual.ProtocolPublicParameters)

		reconfigured := *data
		reconfigured.State = dwallet.NetworkKeyStateFromReconfiguration
		require.NoError(t, db.Update(UpsertNetworkKeyPublicData(keyID, &reconfigured)))

		otherID := unittest.NetworkKeyIDFixture()
		require.NoError(t, db.Update(UpsertNetworkKeyPublicData(otherID, data)))

		all := make(map[dwallet.NetworkKeyID]*dwallet.NetworkDecryptionKeyPublicData)
		require.NoError(t, db.View(TraverseNetworkKeyPublicData(all)))
		require.Len(t, all, 2)
		assert.Equal(t, dwallet.NetworkKeyStateFromReconfiguration, all[keyID].State)
		assert.Equal(t, dwallet.NetworkKeyStateFromDKG, all[otherID].State)
	})
}
