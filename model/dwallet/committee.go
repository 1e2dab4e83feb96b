package dwallet

import (
	"fmt"
	"sort"
)

// Authority is a committee member with its stake weight.
type Authority struct {
	ID      AuthorityID
	PartyID PartyID
	Weight  uint64
	// EncryptionKey is the public key network key shares are encrypted to.
	EncryptionKey [32]byte
}

// Committee is the authority set of one epoch. It is immutable once built.
type Committee struct {
	Epoch           uint64
	Authorities     []Authority
	QuorumThreshold uint64
}

// TotalWeight returns the sum of all authorities' weights.
func (c *Committee) TotalWeight() uint64 {
	var total uint64
	for _, a := range c.Authorities {
		total += a.Weight
	}
	return total
}

// ByID returns the authority with the given identifier.
func (c *Committee) ByID(id AuthorityID) (Authority, bool) {
	for _, a := range c.Authorities {
		if a.ID == id {
			return a, true
		}
	}
	return Authority{}, false
}

// ByPartyID returns the authority with the given party index.
func (c *Committee) ByPartyID(party PartyID) (Authority, bool) {
	for _, a := range c.Authorities {
		if a.PartyID == party {
			return a, true
		}
	}
	return Authority{}, false
}

// WeightOf returns the weight of the given authority, zero for non-members.
func (c *Committee) WeightOf(id AuthorityID) uint64 {
	a, ok := c.ByID(id)
	if !ok {
		return 0
	}
	return a.Weight
}

// WeightedAccessStructure describes how the network key is shared among the
// parties: each party holds as many virtual parties as its weight.
type WeightedAccessStructure struct {
	Threshold    uint16
	PartyWeights map[PartyID]uint16
}

// TotalVirtualParties returns the number of virtual parties in the structure.
func (s *WeightedAccessStructure) TotalVirtualParties() uint32 {
	var total uint32
	for _, w := range s.PartyWeights {
		total += uint32(w)
	}
	return total
}

// VirtualParties returns the virtual party identifiers of the given party.
// Virtual parties are numbered from 1, consecutively in ascending party order.
func (s *WeightedAccessStructure) VirtualParties(party PartyID) ([]VirtualPartyID, error) {
	parties := make([]PartyID, 0, len(s.PartyWeights))
	for p := range s.PartyWeights {
		parties = append(parties, p)
	}
	sort.Slice(parties, func(i, j int) bool { return parties[i] < parties[j] })

	next := VirtualPartyID(1)
	for _, p := range parties {
		weight := s.PartyWeights[p]
		if p == party {
			ids := make([]VirtualPartyID, 0, weight)
			for i := uint16(0); i < weight; i++ {
				ids = append(ids, next+VirtualPartyID(i))
			}
			return ids, nil
		}
		next += VirtualPartyID(weight)
	}
	return nil, fmt.Errorf("party %d is not part of the access structure", party)
}
