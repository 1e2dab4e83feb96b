package committees_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwallet-labs/dwallet-network-sub004/model/dwallet"
	"github.com/dwallet-labs/dwallet-network-sub004/module"
	"github.com/dwallet-labs/dwallet-network-sub004/module/committees"
	"github.com/dwallet-labs/dwallet-network-sub004/utils/unittest"
)

func TestNewCommittee(t *testing.T) {
	a := dwallet.Authority{ID: unittest.AuthorityIDFixture(), PartyID: 2, Weight: 2500}
	b := dwallet.Authority{ID: unittest.AuthorityIDFixture(), PartyID: 1, Weight: 7500}

	c, err := committees.NewCommittee(3, []dwallet.Authority{a, b})
	require.NoError(t, err)
	assert.Equal(t, uint64(3), c.Epoch)
	assert.Equal(t, uint64(6667), c.QuorumThreshold)
	assert.Equal(t, uint64(10000), c.TotalWeight())
	assert.Equal(t, dwallet.PartyID(1), c.Authorities[0].PartyID)
	assert.Equal(t, uint64(2500), c.WeightOf(a.ID))
	assert.Equal(t, uint64(0), c.WeightOf(unittest.AuthorityIDFixture()))

	t.Run("empty", func(t *testing.T) {
		_, err := committees.NewCommittee(3, nil)
		assert.True(t, errors.Is(err, committees.ErrInvalidCommittee))
	})
	t.Run("zero weight", func(t *testing.T) {
		_, err := committees.NewCommittee(3, []dwallet.Authority{{ID: a.ID, PartyID: 1}})
		assert.True(t, errors.Is(err, committees.ErrInvalidCommittee))
	})
	t.Run("duplicate authority", func(t *testing.T) {
		dup := b
		dup.ID = a.ID
		_, err := committees.NewCommittee(3, []dwallet.Authority{a, dup})
		assert.True(t, errors.Is(err, committees.ErrInvalidCommittee))
	})
	t.Run("duplicate party", func(t *testing.T) {
		dup := b
		dup.PartyID = a.PartyID
		_, err := committees.NewCommittee(3, []dwallet.Authority{a, dup})
		assert.True(t, errors.Is(err, committees.ErrInvalidCommittee))
	})
}

func TestAccessStructure(t *testing.T) {
	c := unittest.CommitteeFixture(1, 3, 1, 2)
	structure, err := committees.AccessStructure(c)
	require.NoError(t, err)
	assert.Equal(t, uint32(6), structure.TotalVirtualParties())
	assert.Equal(t, uint16(5), structure.Threshold)

	first, err := structure.VirtualParties(1)
	require.NoError(t, err)
	assert.Equal(t, []dwallet.VirtualPartyID{1, 2, 3}, first)
	third, err := structure.VirtualParties(3)
	require.NoError(t, err)
	assert.Equal(t, []dwallet.VirtualPartyID{5, 6}, third)

	_, err = structure.VirtualParties(9)
	assert.Error(t, err)

	_, err = committees.AccessStructure(unittest.CommitteeFixture(1, 70000))
	assert.True(t, errors.Is(err, committees.ErrInvalidCommittee))
}

func TestStaticProvider(t *testing.T) {
	c := unittest.EqualStakeCommitteeFixture(5, 4)
	p := committees.NewStaticProvider(c)

	got, err := p.CommitteeByEpoch(5)
	require.NoError(t, err)
	assert.Same(t, c, got)

	_, err = p.CommitteeByEpoch(6)
	assert.True(t, errors.Is(err, module.ErrCommitteeNotAvailable))

	next := unittest.EqualStakeCommitteeFixture(6, 4)
	require.NoError(t, p.Add(next))
	assert.Error(t, p.Add(next))
	got, err = p.CommitteeByEpoch(6)
	require.NoError(t, err)
	assert.Same(t, next, got)
}
