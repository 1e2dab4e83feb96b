package badger

import (
	"fmt"

	"github.com/dgraph-io/badger/v2"

	"github.com/dwallet-labs/dwallet-network-sub004/model/dwallet"
	"github.com/dwallet-labs/dwallet-network-sub004/storage"
	"github.com/dwallet-labs/dwallet-network-sub004/storage/badger/operation"
)

// MPCSessions implements storage.MPCSessions on badger.
type MPCSessions struct {
	db *badger.DB
}

var _ storage.MPCSessions = (*MPCSessions)(nil)

func NewMPCSessions(db *badger.DB) *MPCSessions {
	return &MPCSessions{db: db}
}

func (s *MPCSessions) MarkCompleted(epoch uint64, sessionID dwallet.SessionIdentifier) error {
	return s.db.Update(func(tx *badger.Txn) error {
		var completed bool
		err := operation.CheckCompletedSession(sessionID, &completed)(tx)
		if err != nil {
			return fmt.Errorf("could not check completed session: %w", err)
		}
		if completed {
			return nil
		}
		err = operation.InsertCompletedSession(epoch, sessionID)(tx)
		if err != nil {
			return fmt.Errorf("could not insert completed session: %w", err)
		}
		err = operation.IndexEpochCompletedSession(epoch, sessionID)(tx)
		if err != nil {
			return fmt.Errorf("could not index completed session: %w", err)
		}
		return nil
	})
}

func (s *MPCSessions) IsCompleted(sessionID dwallet.SessionIdentifier) (bool, error) {
	var completed bool
	err := s.db.View(operation.CheckCompletedSession(sessionID, &completed))
	if err != nil {
		return false, fmt.Errorf("could not check completed session: %w", err)
	}
	return completed, nil
}

func (s *MPCSessions) CompletedByEpoch(epoch uint64) ([]dwallet.SessionIdentifier, error) {
	var ids []dwallet.SessionIdentifier
	err := s.db.View(operation.LookupCompletedSessionsByEpoch(epoch, &ids))
	if err != nil {
		return nil, fmt.Errorf("could not lookup completed sessions of epoch %d: %w", epoch, err)
	}
	return ids, nil
}
