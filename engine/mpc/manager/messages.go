package manager

import (
	"time"

	"github.com/dwallet-labs/dwallet-network-sub004/model/dwallet"
	"github.com/dwallet-labs/dwallet-network-sub004/module"
)

type networkKeyUpdate struct {
	keyID dwallet.NetworkKeyID
	data  *dwallet.NetworkDecryptionKeyPublicData
}

type roundMessage struct {
	session dwallet.SessionIdentifier
	round   uint64
	from    dwallet.PartyID
	message []byte
}

// computationResult is the result of computing one round of a session.
type computationResult struct {
	session  dwallet.SessionIdentifier
	request  dwallet.SessionRequest
	round    uint64
	result   module.RoundResult
	err      error
	duration time.Duration
}
