package logging

import (
	"encoding/hex"

	"github.com/dwallet-labs/dwallet-network-sub004/model/dwallet"
)

// AuthorityIDs returns the hex encodings of the identifiers, for logging.
func AuthorityIDs(ids []dwallet.AuthorityID) []string {
	ss := make([]string, 0, len(ids))
	for _, id := range ids {
		ss = append(ss, hex.EncodeToString(id[:]))
	}
	return ss
}

// SessionIDs returns the hex encodings of the identifiers, for logging.
func SessionIDs(ids []dwallet.SessionIdentifier) []string {
	ss := make([]string, 0, len(ids))
	for _, id := range ids {
		ss = append(ss, hex.EncodeToString(id[:]))
	}
	return ss
}
