package badger_test

import (
	"errors"
	"testing"

	"github.com/dgraph-io/badger/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwallet-labs/dwallet-network-sub004/model/dwallet"
	"github.com/dwallet-labs/dwallet-network-sub004/storage"
	bstorage "github.com/dwallet-labs/dwallet-network-sub004/storage/badger"
	"github.com/dwallet-labs/dwallet-network-sub004/utils/unittest"
)

func TestMPCSessions_MarkCompletedIsIdempotent(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		store := bstorage.NewMPCSessions(db)
		id := unittest.SessionIdentifierFixture()

		completed, err := store.IsCompleted(id)
		require.NoError(t, err)
		assert.False(t, completed)

		require.NoError(t, store.MarkCompleted(7, id))
		require.NoError(t, store.MarkCompleted(7, id))
		// a later epoch does not move the session
		require.NoError(t, store.MarkCompleted(8, id))

		completed, err = store.IsCompleted(id)
		require.NoError(t, err)
		assert.True(t, completed)

		ids, err := store.CompletedByEpoch(7)
		require.NoError(t, err)
		assert.Equal(t, []dwallet.SessionIdentifier{id}, ids)

		ids, err = store.CompletedByEpoch(8)
		require.NoError(t, err)
		assert.Empty(t, ids)
	})
}

func TestNetworkKeys_StoreRetrieve(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		store := bstorage.NewNetworkKeys(db)
		keyID := unittest.NetworkKeyIDFixture()

		_, err := store.ByID(keyID)
		assert.True(t, errors.Is(err, storage.ErrNotFound))

		data := &dwallet.NetworkDecryptionKeyPublicData{
			Version:              dwallet.NetworkKeyOutputV1,
			LatestPublicOutput:   unittest.RandomBytes(64),
			OriginatingDKGOutput: unittest.RandomBytes(64),
		}
		require.NoError(t, store.Store(keyID, data))

		actual, err := store.ByID(keyID)
		require.NoError(t, err)
		assert.Equal(t, data.LatestPublicOutput, actual.LatestPublicOutput)
		assert.Equal(t, data.OriginatingDKGOutput, actual.OriginatingDKGOutput)

		all, err := store.All()
		require.NoError(t, err)
		require.Contains(t, all, keyID)
	})
}
