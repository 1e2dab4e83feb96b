package operation

import (
	"fmt"

	"github.com/dgraph-io/badger/v2"

	"github.com/dwallet-labs/dwallet-network-sub004/model/dwallet"
)

// InsertCompletedSession records that the output of the session was certified
// in the given epoch. Returns storage.ErrAlreadyExists if the session was
// already recorded.
func InsertCompletedSession(epoch uint64, sessionID dwallet.SessionIdentifier) func(*badger.Txn) error {
	return insert(makePrefix(codeCompletedSession, sessionID), epoch)
}

// IndexEpochCompletedSession indexes the completed session by its epoch.
func IndexEpochCompletedSession(epoch uint64, sessionID dwallet.SessionIdentifier) func(*badger.Txn) error {
	return insert(makePrefix(codeEpochCompletedSession, epoch, sessionID), sessionID)
}

// CheckCompletedSession sets completed to whether the session was recorded.
func CheckCompletedSession(sessionID dwallet.SessionIdentifier, completed *bool) func(*badger.Txn) error {
	return check(makePrefix(codeCompletedSession, sessionID), completed)
}

// RetrieveCompletedSessionEpoch retrieves the epoch the session completed in.
func RetrieveCompletedSessionEpoch(sessionID dwallet.SessionIdentifier, epoch *uint64) func(*badger.Txn) error {
	return retrieve(makePrefix(codeCompletedSession, sessionID), epoch)
}

// LookupCompletedSessionsByEpoch collects the sessions completed in the epoch,
// ordered by session identifier.
func LookupCompletedSessionsByEpoch(epoch uint64, sessionIDs *[]dwallet.SessionIdentifier) func(*badger.Txn) error {
	prefix := makePrefix(codeEpochCompletedSession, epoch)
	return traverseKeys(prefix, func(key []byte) error {
		if len(key) != len(prefix)+dwallet.IdentifierLen {
			return fmt.Errorf("unexpected key length %d in completed session index", len(key))
		}
		var id dwallet.SessionIdentifier
		copy(id[:], key[len(prefix):])
		*sessionIDs = append(*sessionIDs, id)
		return nil
	})
}

// UpsertNetworkKeyPublicData stores the public data of a network key,
// replacing the previous version.
func UpsertNetworkKeyPublicData(keyID dwallet.NetworkKeyID, data *dwallet.NetworkDecryptionKeyPublicData) func(*badger.Txn) error {
	return upsert(makePrefix(codeNetworkKeyPublicData, keyID), data)
}

// RetrieveNetworkKeyPublicData retrieves the public data of a network key.
func RetrieveNetworkKeyPublicData(keyID dwallet.NetworkKeyID, data *dwallet.NetworkDecryptionKeyPublicData) func(*badger.Txn) error {
	return retrieve(makePrefix(codeNetworkKeyPublicData, keyID), data)
}

// TraverseNetworkKeyPublicData collects the public data of every stored key.
func TraverseNetworkKeyPublicData(keys map[dwallet.NetworkKeyID]*dwallet.NetworkDecryptionKeyPublicData) func(*badger.Txn) error {
	prefix := makePrefix(codeNetworkKeyPublicData)
	return traverse(prefix, func() (func() interface{}, handleKeyFunc) {
		var data dwallet.NetworkDecryptionKeyPublicData
		create := func() interface{} {
			return &data
		}
		handle := func(key []byte) error {
			if len(key) != len(prefix)+dwallet.IdentifierLen {
				return fmt.Errorf("unexpected key length %d in network key index", len(key))
			}
			var keyID dwallet.NetworkKeyID
			copy(keyID[:], key[len(prefix):])
			keys[keyID] = &data
			return nil
		}
		return create, handle
	})
}
