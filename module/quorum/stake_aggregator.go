package quorum

import (
	"github.com/dwallet-labs/dwallet-network-sub004/model/dwallet"
)

// StakeAggregator accumulates the weight of the authorities that voted for
// one (output, request) pair.
type StakeAggregator struct {
	request     dwallet.SessionRequest
	output      []byte
	weight      uint64
	authorities []dwallet.AuthorityID
}

func newStakeAggregator(request dwallet.SessionRequest, output []byte) *StakeAggregator {
	return &StakeAggregator{
		request: request,
		output:  output,
	}
}

// Add adds the weight of the authority and returns the accumulated weight.
// The caller guarantees every authority is added at most once.
func (a *StakeAggregator) Add(authority dwallet.AuthorityID, weight uint64) uint64 {
	a.authorities = append(a.authorities, authority)
	a.weight += weight
	return a.weight
}

// Weight returns the accumulated weight.
func (a *StakeAggregator) Weight() uint64 {
	return a.weight
}

// Authorities returns the authorities that voted, in vote order.
func (a *StakeAggregator) Authorities() []dwallet.AuthorityID {
	return a.authorities
}
