package admission

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"

	"github.com/dwallet-labs/dwallet-network-sub004/model/dwallet"
	"github.com/dwallet-labs/dwallet-network-sub004/module"
)

// DefaultPullRetryInterval is the delay between two attempts to pull the
// uncompleted events of an epoch.
const DefaultPullRetryInterval = 2 * time.Second

// Puller proactively fetches the session events of an epoch the chain has
// not recorded as completed, so that sessions whose live events were missed
// are computed anyway.
type Puller struct {
	log      zerolog.Logger
	source   module.EventSource
	interval time.Duration
}

func NewPuller(log zerolog.Logger, source module.EventSource, interval time.Duration) *Puller {
	return &Puller{
		log:      log.With().Str("module", "mpc_event_puller").Logger(),
		source:   source,
		interval: interval,
	}
}

// Pull returns the uncompleted events of the epoch, marked as pulled. Transient
// failures of the event source are retried until the context is cancelled.
// The result is empty if the epoch has ended.
func (p *Puller) Pull(ctx context.Context, epoch uint64) ([]dwallet.RawEvent, error) {
	backoff := retry.NewConstant(p.interval)

	var events []dwallet.RawEvent
	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		pulled, err := p.source.PullUncompletedEvents(ctx, epoch)
		if errors.Is(err, module.ErrEpochEnded) {
			p.log.Info().Uint64("epoch", epoch).Msg("epoch ended, nothing to pull")
			events = nil
			return nil
		}
		if err != nil {
			p.log.Warn().Err(err).
				Uint64("epoch", epoch).
				Int("attempt", attempt).
				Msg("could not pull uncompleted events, retrying")
			return retry.RetryableError(err)
		}
		events = pulled
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("could not pull uncompleted events of epoch %d: %w", epoch, err)
	}

	for i := range events {
		events[i].Pulled = true
	}
	p.log.Info().
		Uint64("epoch", epoch).
		Int("events", len(events)).
		Int("attempts", attempt).
		Msg("pulled uncompleted events")
	return events, nil
}

// DecodeAll decodes a batch of raw events. Events that cannot be decoded are
// skipped, the returned error aggregates their failures.
func DecodeAll(codec *EventCodec, raws []dwallet.RawEvent) ([]dwallet.InboundEvent, error) {
	var result *multierror.Error
	events := make([]dwallet.InboundEvent, 0, len(raws))
	for _, raw := range raws {
		event, err := codec.Decode(raw)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		events = append(events, event)
	}
	return events, result.ErrorOrNil()
}
