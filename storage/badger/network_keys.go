package badger

import (
	"fmt"

	"github.com/dgraph-io/badger/v2"

	"github.com/dwallet-labs/dwallet-network-sub004/model/dwallet"
	"github.com/dwallet-labs/dwallet-network-sub004/storage"
	"github.com/dwallet-labs/dwallet-network-sub004/storage/badger/operation"
)

// NetworkKeys implements storage.NetworkKeys on badger.
type NetworkKeys struct {
	db *badger.DB
}

var _ storage.NetworkKeys = (*NetworkKeys)(nil)

func NewNetworkKeys(db *badger.DB) *NetworkKeys {
	return &NetworkKeys{db: db}
}

func (k *NetworkKeys) Store(keyID dwallet.NetworkKeyID, data *dwallet.NetworkDecryptionKeyPublicData) error {
	err := k.db.Update(operation.UpsertNetworkKeyPublicData(keyID, data))
	if err != nil {
		return fmt.Errorf("could not store public data of network key %s: %w", keyID, err)
	}
	return nil
}

func (k *NetworkKeys) ByID(keyID dwallet.NetworkKeyID) (*dwallet.NetworkDecryptionKeyPublicData, error) {
	var data dwallet.NetworkDecryptionKeyPublicData
	err := k.db.View(operation.RetrieveNetworkKeyPublicData(keyID, &data))
	if err != nil {
		return nil, fmt.Errorf("could not retrieve public data of network key %s: %w", keyID, err)
	}
	return &data, nil
}

func (k *NetworkKeys) All() (map[dwallet.NetworkKeyID]*dwallet.NetworkDecryptionKeyPublicData, error) {
	keys := make(map[dwallet.NetworkKeyID]*dwallet.NetworkDecryptionKeyPublicData)
	err := k.db.View(operation.TraverseNetworkKeyPublicData(keys))
	if err != nil {
		return nil, fmt.Errorf("could not traverse network keys: %w", err)
	}
	return keys, nil
}
