package logging_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dwallet-labs/dwallet-network-sub004/model/dwallet"
	"github.com/dwallet-labs/dwallet-network-sub004/utils/logging"
)

func TestIdentifiers(t *testing.T) {
	var a dwallet.AuthorityID
	a[0] = 0xab
	assert.Equal(t, []string{a.String()}, logging.AuthorityIDs([]dwallet.AuthorityID{a}))

	var s dwallet.SessionIdentifier
	s[31] = 0x01
	assert.Equal(t, []string{s.String()}, logging.SessionIDs([]dwallet.SessionIdentifier{s}))
	assert.Empty(t, logging.SessionIDs(nil))
}
