package committees

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"golang.org/x/exp/slices"

	"github.com/dwallet-labs/dwallet-network-sub004/model/dwallet"
	"github.com/dwallet-labs/dwallet-network-sub004/module"
)

var ErrInvalidCommittee = errors.New("invalid committee")

// NewCommittee builds the committee of the given epoch. Authorities are
// ordered by party id and the quorum threshold is derived from their total
// weight.
func NewCommittee(epoch uint64, authorities []dwallet.Authority) (*dwallet.Committee, error) {
	if len(authorities) == 0 {
		return nil, fmt.Errorf("committee of epoch %d has no authorities: %w", epoch, ErrInvalidCommittee)
	}
	ids := make(map[dwallet.AuthorityID]struct{}, len(authorities))
	parties := make(map[dwallet.PartyID]struct{}, len(authorities))
	var total uint64
	for _, a := range authorities {
		if a.Weight == 0 {
			return nil, fmt.Errorf("authority %x has zero weight: %w", a.ID, ErrInvalidCommittee)
		}
		if _, dup := ids[a.ID]; dup {
			return nil, fmt.Errorf("duplicate authority %x: %w", a.ID, ErrInvalidCommittee)
		}
		if _, dup := parties[a.PartyID]; dup {
			return nil, fmt.Errorf("duplicate party id %d: %w", a.PartyID, ErrInvalidCommittee)
		}
		if total+a.Weight < total {
			return nil, fmt.Errorf("total weight overflows: %w", ErrInvalidCommittee)
		}
		ids[a.ID] = struct{}{}
		parties[a.PartyID] = struct{}{}
		total += a.Weight
	}

	sorted := slices.Clone(authorities)
	slices.SortFunc(sorted, func(a, b dwallet.Authority) int {
		return int(a.PartyID) - int(b.PartyID)
	})
	return &dwallet.Committee{
		Epoch:           epoch,
		Authorities:     sorted,
		QuorumThreshold: WeightThresholdToBuildQuorum(total),
	}, nil
}

// AccessStructure returns the weighted threshold access structure the
// network key is shared with among the committee: every authority holds one
// virtual party per unit of weight.
func AccessStructure(committee *dwallet.Committee) (*dwallet.WeightedAccessStructure, error) {
	weights := make(map[dwallet.PartyID]uint16, len(committee.Authorities))
	var total uint64
	for _, a := range committee.Authorities {
		if a.Weight > math.MaxUint16 {
			return nil, fmt.Errorf("weight %d of party %d exceeds the virtual party limit: %w", a.Weight, a.PartyID, ErrInvalidCommittee)
		}
		weights[a.PartyID] = uint16(a.Weight)
		total += a.Weight
	}
	if total > math.MaxUint16 {
		return nil, fmt.Errorf("total weight %d exceeds the virtual party limit: %w", total, ErrInvalidCommittee)
	}
	return &dwallet.WeightedAccessStructure{
		Threshold:    uint16(WeightThresholdToBuildQuorum(total)),
		PartyWeights: weights,
	}, nil
}

// StaticProvider is a CommitteeProvider backed by committees added explicitly.
// It is safe for concurrent use.
type StaticProvider struct {
	mu         sync.RWMutex
	committees map[uint64]*dwallet.Committee
}

var _ module.CommitteeProvider = (*StaticProvider)(nil)

func NewStaticProvider(committees ...*dwallet.Committee) *StaticProvider {
	p := &StaticProvider{committees: make(map[uint64]*dwallet.Committee)}
	for _, c := range committees {
		p.committees[c.Epoch] = c
	}
	return p
}

// Add registers the committee of an epoch. Committees are immutable, adding a
// second committee for the same epoch is an error.
func (p *StaticProvider) Add(committee *dwallet.Committee) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.committees[committee.Epoch]; ok {
		return fmt.Errorf("committee of epoch %d already known", committee.Epoch)
	}
	p.committees[committee.Epoch] = committee
	return nil
}

func (p *StaticProvider) CommitteeByEpoch(epoch uint64) (*dwallet.Committee, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	c, ok := p.committees[epoch]
	if !ok {
		return nil, fmt.Errorf("epoch %d: %w", epoch, module.ErrCommitteeNotAvailable)
	}
	return c, nil
}
