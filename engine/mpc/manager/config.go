package manager

import (
	"time"

	"github.com/dwallet-labs/dwallet-network-sub004/engine/mpc/admission"
	"github.com/dwallet-labs/dwallet-network-sub004/model/dwallet"
	"github.com/dwallet-labs/dwallet-network-sub004/module/checkpoint"
)

// Config is the configuration of the MPC manager of one epoch.
type Config struct {
	Epoch uint64
	// Authority is this validator, it must be a member of the committee of
	// the epoch.
	Authority dwallet.AuthorityID
	// MaxConcurrentComputations bounds the protocol rounds computed in
	// parallel.
	MaxConcurrentComputations int
	// QueueCapacity bounds each inbound queue.
	QueueCapacity     int
	PullRetryInterval time.Duration
	MaxChunkSize      int
	// RecentEventsCacheSize is the number of raw events remembered to drop
	// repeated deliveries.
	RecentEventsCacheSize int
}

// DefaultConfig returns the default configuration for the given epoch and
// authority.
func DefaultConfig(epoch uint64, authority dwallet.AuthorityID) Config {
	return Config{
		Epoch:                     epoch,
		Authority:                 authority,
		MaxConcurrentComputations: 4,
		QueueCapacity:             10_000,
		PullRetryInterval:         admission.DefaultPullRetryInterval,
		MaxChunkSize:              checkpoint.DefaultMaxChunkSize,
		RecentEventsCacheSize:     admission.DefaultRecentEventsCacheSize,
	}
}
