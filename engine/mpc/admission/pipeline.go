package admission

import (
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/sha3"

	"github.com/dwallet-labs/dwallet-network-sub004/model/dwallet"
	"github.com/dwallet-labs/dwallet-network-sub004/module"
	"github.com/dwallet-labs/dwallet-network-sub004/module/sessions"
	"github.com/dwallet-labs/dwallet-network-sub004/storage"
)

// DefaultRecentEventsCacheSize is the number of raw event digests remembered
// to drop repeated deliveries before decoding them.
const DefaultRecentEventsCacheSize = 10_000

// Reasons events are dropped before admission.
const (
	DropReasonDuplicate   = "duplicate"
	DropReasonUnknownType = "unknown_type"
	DropReasonMalformed   = "malformed"
	DropReasonStaleEpoch  = "stale_epoch"
	DropReasonCompleted   = "completed"
	DropReasonInvalid     = "invalid"
)

// KeyStore serves the public data of the network keys.
type KeyStore interface {
	KeyPublicDataExists(keyID dwallet.NetworkKeyID) bool
	ProtocolPublicParameters(keyID dwallet.NetworkKeyID) ([]byte, error)
}

// Pipeline admits session events of one epoch into the session registry,
// deferring the events whose dependencies are not available yet.
//
// Pipeline is not safe for concurrent use. It is owned by the MPC manager of
// the epoch.
type Pipeline struct {
	log        zerolog.Logger
	metrics    module.MPCMetrics
	epoch      uint64
	codec      *EventCodec
	registry   *sessions.Registry
	keys       KeyStore
	committees module.CommitteeProvider
	completed  storage.MPCSessions // optional
	recent     *lru.Cache[[32]byte, struct{}]
	recentSize int
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithCompletedSessions skips events of sessions already recorded as completed.
func WithCompletedSessions(completed storage.MPCSessions) Option {
	return func(p *Pipeline) {
		p.completed = completed
	}
}

// WithRecentEventsCacheSize sets the number of raw event digests remembered.
func WithRecentEventsCacheSize(size int) Option {
	return func(p *Pipeline) {
		p.recentSize = size
	}
}

func NewPipeline(
	log zerolog.Logger,
	collector module.MPCMetrics,
	epoch uint64,
	codec *EventCodec,
	keys KeyStore,
	committees module.CommitteeProvider,
	opts ...Option,
) (*Pipeline, error) {
	p := &Pipeline{
		log:        log.With().Str("module", "mpc_admission").Uint64("epoch", epoch).Logger(),
		metrics:    collector,
		epoch:      epoch,
		codec:      codec,
		keys:       keys,
		committees: committees,
		recentSize: DefaultRecentEventsCacheSize,
	}
	for _, apply := range opts {
		apply(p)
	}
	recent, err := lru.New[[32]byte, struct{}](p.recentSize)
	if err != nil {
		return nil, fmt.Errorf("could not create recent events cache: %w", err)
	}
	p.recent = recent
	p.registry = sessions.NewRegistry(log, p)
	return p, nil
}

// Registry returns the session registry the pipeline admits into.
func (p *Pipeline) Registry() *sessions.Registry {
	return p.registry
}

// Epoch returns the epoch the pipeline admits sessions for.
func (p *Pipeline) Epoch() uint64 {
	return p.epoch
}

// HandleRawEvent decodes the raw event and admits it. Malformed events and
// repeated deliveries are dropped.
func (p *Pipeline) HandleRawEvent(raw dwallet.RawEvent) {
	digest := rawEventDigest(raw)
	if p.recent.Contains(digest) {
		p.metrics.EventDropped(DropReasonDuplicate)
		return
	}

	event, err := p.codec.Decode(raw)
	if err != nil {
		reason := DropReasonMalformed
		if IsUnknownEventTypeError(err) {
			reason = DropReasonUnknownType
		}
		p.log.Warn().Err(err).
			Str("event_type", raw.Type).
			Bool("pulled", raw.Pulled).
			Msg("dropping malformed session event")
		p.metrics.EventDropped(reason)
		return
	}

	if p.HandleEvent(event) {
		p.recent.Add(digest, struct{}{})
	}
}

// HandleEvent admits a decoded event. Live events of another epoch are
// dropped, pulled events are carry-over work and are admitted whatever their
// epoch. It returns true once the session of the event is known to the
// registry or recorded as completed, so later deliveries of the same event
// carry no news. Dropped events return false, since the same event may still
// be admitted when delivered as pulled or once storage recovers.
func (p *Pipeline) HandleEvent(event dwallet.InboundEvent) bool {
	request := &event.Request
	kind := request.Kind().String()
	p.metrics.EventReceived(kind, event.Pulled)

	lg := p.log.With().
		Str("session_id", request.SessionIdentifier.String()).
		Uint64("sequence_number", request.SequenceNumber).
		Str("kind", kind).
		Logger()

	if !event.Pulled && request.Epoch != p.epoch {
		lg.Debug().Uint64("event_epoch", request.Epoch).Msg("dropping live event of another epoch")
		p.metrics.EventDropped(DropReasonStaleEpoch)
		return false
	}

	if p.completed != nil {
		done, err := p.completed.IsCompleted(request.SessionIdentifier)
		if err != nil {
			lg.Error().Err(err).Msg("could not check whether session is completed")
			return false
		}
		if done {
			lg.Debug().Msg("dropping event of completed session")
			p.metrics.EventDropped(DropReasonCompleted)
			return true
		}
	}

	result, err := p.registry.Admit(event)
	p.observe(lg, kind, result, err)
	return err == nil
}

// OnNetworkKeyUpdated re-admits the events waiting for the key.
func (p *Pipeline) OnNetworkKeyUpdated(keyID dwallet.NetworkKeyID) {
	readmissions := p.registry.DrainForKey(keyID)
	p.log.Info().
		Str("network_key_id", keyID.String()).
		Int("events", len(readmissions)).
		Msg("re-admitting events waiting for network key")
	p.readmit(readmissions)
}

// OnNextCommitteeAvailable re-admits the events waiting for the committee of
// the next epoch.
func (p *Pipeline) OnNextCommitteeAvailable() {
	readmissions := p.registry.DrainForCommittee()
	p.log.Info().
		Int("events", len(readmissions)).
		Msg("re-admitting events waiting for next committee")
	p.readmit(readmissions)
}

func (p *Pipeline) readmit(readmissions []sessions.Readmission) {
	for _, r := range readmissions {
		lg := p.log.With().
			Str("session_id", r.Event.Request.SessionIdentifier.String()).
			Str("kind", r.Event.Request.Kind().String()).
			Logger()
		p.observe(lg, r.Event.Request.Kind().String(), r.Result, r.Err)
	}
}

func (p *Pipeline) observe(lg zerolog.Logger, kind string, result sessions.AdmitResult, err error) {
	defer p.reportQueues()
	if err != nil {
		lg.Warn().Err(err).Msg("dropping session event that could not be admitted")
		p.metrics.EventDropped(DropReasonInvalid)
		return
	}
	lg.Debug().Str("result", result.String()).Msg("session event admitted")
	if result == sessions.Admitted {
		p.metrics.SessionAdmitted(kind)
	}
}

func (p *Pipeline) reportQueues() {
	p.metrics.PendingQueues(
		uint(p.registry.PendingForKeyLen()),
		uint(p.registry.PendingForCommitteeLen()),
		uint(p.registry.ReadyLen()),
	)
}

// NetworkKeyReady implements sessions.Dependencies.
func (p *Pipeline) NetworkKeyReady(keyID dwallet.NetworkKeyID) bool {
	return p.keys.KeyPublicDataExists(keyID)
}

// NextCommitteeReady implements sessions.Dependencies.
func (p *Pipeline) NextCommitteeReady() bool {
	_, err := p.committees.CommitteeByEpoch(p.epoch + 1)
	if err == nil {
		return true
	}
	if !errors.Is(err, module.ErrCommitteeNotAvailable) {
		p.log.Error().Err(err).Msg("could not get next committee")
	}
	return false
}

// EventData implements sessions.Dependencies.
func (p *Pipeline) EventData(request *dwallet.SessionRequest) (*dwallet.SessionEventData, error) {
	input, err := dwallet.Encode(request.Input)
	if err != nil {
		return nil, fmt.Errorf("could not encode request input: %w", err)
	}
	data := &dwallet.SessionEventData{
		Request:     *request,
		PublicInput: input,
	}
	keyID, ok := request.Input.NetworkKeyID()
	if !ok {
		return data, nil
	}
	params, err := p.keys.ProtocolPublicParameters(keyID)
	if err != nil {
		return nil, err
	}
	data.NetworkKeyID = &keyID
	data.ProtocolPublicParameters = params
	return data, nil
}

func rawEventDigest(raw dwallet.RawEvent) [32]byte {
	hasher := sha3.New256()
	_, _ = hasher.Write([]byte(raw.Type))
	_, _ = hasher.Write(raw.Contents)
	var digest [32]byte
	copy(digest[:], hasher.Sum(nil))
	return digest
}

var _ sessions.Dependencies = (*Pipeline)(nil)
