package storage

import (
	"github.com/dwallet-labs/dwallet-network-sub004/model/dwallet"
)

// MPCSessions records the sessions whose output was certified, so that their
// events are not admitted again after a restart or an epoch change.
type MPCSessions interface {

	// MarkCompleted records the session of the given epoch as completed. It
	// is idempotent.
	MarkCompleted(epoch uint64, sessionID dwallet.SessionIdentifier) error

	// IsCompleted returns whether the session was recorded as completed.
	IsCompleted(sessionID dwallet.SessionIdentifier) (bool, error)

	// CompletedByEpoch returns the sessions completed in the given epoch.
	CompletedByEpoch(epoch uint64) ([]dwallet.SessionIdentifier, error)
}

// NetworkKeys persists the public data of the network keys known to this
// validator. The private shares are never persisted, they are recomputed
// from the public data at start-up.
type NetworkKeys interface {

	// Store replaces the public data of the key.
	Store(keyID dwallet.NetworkKeyID, data *dwallet.NetworkDecryptionKeyPublicData) error

	// ByID returns storage.ErrNotFound if the key is unknown.
	ByID(keyID dwallet.NetworkKeyID) (*dwallet.NetworkDecryptionKeyPublicData, error)

	// All returns the public data of every stored key.
	All() (map[dwallet.NetworkKeyID]*dwallet.NetworkDecryptionKeyPublicData, error)
}
