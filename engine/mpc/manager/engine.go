package manager

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gammazero/workerpool"
	"github.com/rs/zerolog"
	"go.uber.org/atomic"

	"github.com/dwallet-labs/dwallet-network-sub004/engine/common/fifoqueue"
	"github.com/dwallet-labs/dwallet-network-sub004/engine/mpc/admission"
	"github.com/dwallet-labs/dwallet-network-sub004/model/dwallet"
	"github.com/dwallet-labs/dwallet-network-sub004/module"
	"github.com/dwallet-labs/dwallet-network-sub004/module/committees"
	"github.com/dwallet-labs/dwallet-network-sub004/module/component"
	"github.com/dwallet-labs/dwallet-network-sub004/module/irrecoverable"
	"github.com/dwallet-labs/dwallet-network-sub004/module/metrics"
	"github.com/dwallet-labs/dwallet-network-sub004/module/networkkeys"
	"github.com/dwallet-labs/dwallet-network-sub004/module/quorum"
	"github.com/dwallet-labs/dwallet-network-sub004/module/sessions"
	"github.com/dwallet-labs/dwallet-network-sub004/storage"
	"github.com/dwallet-labs/dwallet-network-sub004/utils/logging"
)

// ErrEngineRunning is returned when the state of an engine is read while its
// workers are still running.
var ErrEngineRunning = errors.New("engine is still running")

// Engine is the MPC manager of one epoch. It admits the session events of the
// epoch, runs the protocol rounds of admitted sessions, and certifies their
// outputs once a quorum of the committee agrees on them.
//
// All inputs are queued and processed by a single worker, which exclusively
// owns the session registry, the network key store and the quorum verifier.
// Protocol rounds are computed on a bounded worker pool and their results are
// queued back to the processing worker.
type Engine struct {
	log       zerolog.Logger
	metrics   module.MPCMetrics
	epoch     uint64
	authority dwallet.AuthorityID
	party     dwallet.PartyID
	committee *dwallet.Committee
	access    *dwallet.WeightedAccessStructure

	committees  module.CommitteeProvider
	keys        *networkkeys.Store
	source      module.EventSource
	protocol    module.ProtocolParty
	messenger   module.MPCMessenger
	checkpoints module.CheckpointBuilder
	completed   storage.MPCSessions

	pipeline *admission.Pipeline
	puller   *admission.Puller
	verifier *quorum.Verifier
	workers  *workerpool.WorkerPool

	rawEvents            *fifoqueue.FifoQueue[dwallet.RawEvent]
	inboundEvents        *fifoqueue.FifoQueue[dwallet.InboundEvent]
	networkKeyUpdates    *fifoqueue.FifoQueue[networkKeyUpdate]
	sessionOutputs       *fifoqueue.FifoQueue[*dwallet.SessionOutputMessage]
	roundMessages        *fifoqueue.FifoQueue[roundMessage]
	computationResults   *fifoqueue.FifoQueue[computationResult]
	nextCommitteePending *atomic.Bool
	notifier             module.Notifier

	started *atomic.Bool
	cm      *component.ComponentManager
	component.Component
}

func NewEngine(
	log zerolog.Logger,
	collector module.MPCMetrics,
	mempool module.MempoolMetrics,
	cfg Config,
	provider module.CommitteeProvider,
	keys *networkkeys.Store,
	source module.EventSource,
	protocol module.ProtocolParty,
	messenger module.MPCMessenger,
	checkpoints module.CheckpointBuilder,
	completed storage.MPCSessions,
) (*Engine, error) {
	committee, err := provider.CommitteeByEpoch(cfg.Epoch)
	if err != nil {
		return nil, fmt.Errorf("could not get committee of epoch %d: %w", cfg.Epoch, err)
	}
	self, ok := committee.ByID(cfg.Authority)
	if !ok {
		return nil, fmt.Errorf("authority %s is not a member of the committee of epoch %d", cfg.Authority, cfg.Epoch)
	}
	if self.PartyID != keys.PartyID() {
		return nil, fmt.Errorf("key store of party %d cannot serve party %d", keys.PartyID(), self.PartyID)
	}
	access, err := committees.AccessStructure(committee)
	if err != nil {
		return nil, fmt.Errorf("could not build access structure of epoch %d: %w", cfg.Epoch, err)
	}

	codec, err := admission.NewEventCodec(admission.DefaultEventTable())
	if err != nil {
		return nil, fmt.Errorf("could not create event codec: %w", err)
	}
	pipeline, err := admission.NewPipeline(log, collector, cfg.Epoch, codec, keys, provider,
		admission.WithCompletedSessions(completed),
		admission.WithRecentEventsCacheSize(cfg.RecentEventsCacheSize),
	)
	if err != nil {
		return nil, fmt.Errorf("could not create admission pipeline: %w", err)
	}
	verifier, err := quorum.NewVerifier(log, cfg.MaxChunkSize)
	if err != nil {
		return nil, fmt.Errorf("could not create quorum verifier: %w", err)
	}

	e := &Engine{
		log:                  log.With().Str("engine", "mpc_manager").Uint64("epoch", cfg.Epoch).Logger(),
		metrics:              collector,
		epoch:                cfg.Epoch,
		authority:            cfg.Authority,
		party:                self.PartyID,
		committee:            committee,
		access:               access,
		committees:           provider,
		keys:                 keys,
		source:               source,
		protocol:             protocol,
		messenger:            messenger,
		checkpoints:          checkpoints,
		completed:            completed,
		pipeline:             pipeline,
		puller:               admission.NewPuller(log, source, cfg.PullRetryInterval),
		verifier:             verifier,
		workers:              workerpool.New(cfg.MaxConcurrentComputations),
		nextCommitteePending: atomic.NewBool(false),
		notifier:             module.NewNotifier(),
		started:              atomic.NewBool(false),
	}

	e.rawEvents, err = newQueue[dwallet.RawEvent](cfg.QueueCapacity, mempool, metrics.ResourceRawEvent)
	if err != nil {
		return nil, err
	}
	e.inboundEvents, err = newQueue[dwallet.InboundEvent](cfg.QueueCapacity, mempool, metrics.ResourceInboundEvent)
	if err != nil {
		return nil, err
	}
	e.networkKeyUpdates, err = newQueue[networkKeyUpdate](cfg.QueueCapacity, mempool, metrics.ResourceNetworkKey)
	if err != nil {
		return nil, err
	}
	e.sessionOutputs, err = newQueue[*dwallet.SessionOutputMessage](cfg.QueueCapacity, mempool, metrics.ResourceSessionOutput)
	if err != nil {
		return nil, err
	}
	e.roundMessages, err = newQueue[roundMessage](cfg.QueueCapacity, mempool, metrics.ResourceRoundMessage)
	if err != nil {
		return nil, err
	}
	// results of computations already started are never dropped
	e.computationResults, err = newQueue[computationResult](0, mempool, metrics.ResourceRoundResult)
	if err != nil {
		return nil, err
	}

	e.cm = component.NewComponentManagerBuilder().
		AddWorker(e.processingLoop).
		AddWorker(e.liveEventsLoop).
		AddWorker(e.pullLoop).
		Build()
	e.Component = e.cm

	return e, nil
}

func newQueue[T any](capacity int, mempool module.MempoolMetrics, resource string) (*fifoqueue.FifoQueue[T], error) {
	opts := []fifoqueue.ConstructorOption{
		fifoqueue.WithLengthObserver(func(len int) { mempool.MempoolEntries(resource, uint(len)) }),
	}
	if capacity > 0 {
		opts = append(opts, fifoqueue.WithCapacity(capacity))
	}
	q, err := fifoqueue.NewFifoQueue[T](opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create queue for %s: %w", resource, err)
	}
	return q, nil
}

// Start starts the worker routines of the engine.
func (e *Engine) Start(ctx irrecoverable.SignalerContext) {
	e.started.Store(true)
	e.Component.Start(ctx)
}

// Epoch returns the epoch the engine manages.
func (e *Engine) Epoch() uint64 {
	return e.epoch
}

// OnRawEvent queues a chain event for admission.
func (e *Engine) OnRawEvent(raw dwallet.RawEvent) {
	if !e.rawEvents.Push(raw) {
		e.log.Warn().Str("event_type", raw.Type).Msg("raw event queue full, dropping event")
		e.metrics.EventDropped("queue_full")
		return
	}
	e.notifier.Notify()
}

// OnInboundEvent queues a decoded event for admission, typically an event
// carried over from the previous epoch.
func (e *Engine) OnInboundEvent(event dwallet.InboundEvent) {
	if !e.inboundEvents.Push(event) {
		e.log.Warn().
			Str("session_id", event.Request.SessionIdentifier.String()).
			Msg("inbound event queue full, dropping event")
		e.metrics.EventDropped("queue_full")
		return
	}
	e.notifier.Notify()
}

// OnNetworkKeyUpdate queues new public data of a network key.
func (e *Engine) OnNetworkKeyUpdate(keyID dwallet.NetworkKeyID, data *dwallet.NetworkDecryptionKeyPublicData) {
	if !e.networkKeyUpdates.Push(networkKeyUpdate{keyID: keyID, data: data}) {
		e.log.Error().Str("network_key_id", keyID.String()).Msg("network key update queue full, dropping update")
		return
	}
	e.notifier.Notify()
}

// OnNextCommittee signals that the committee of the next epoch is known.
func (e *Engine) OnNextCommittee() {
	e.nextCommitteePending.Store(true)
	e.notifier.Notify()
}

// OnSessionOutput queues the output an authority reported for a session.
func (e *Engine) OnSessionOutput(output *dwallet.SessionOutputMessage) {
	if !e.sessionOutputs.Push(output) {
		e.log.Warn().
			Str("session_id", output.Request.SessionIdentifier.String()).
			Str("authority", output.Authority.String()).
			Msg("session output queue full, dropping output")
		return
	}
	e.notifier.Notify()
}

// OnRoundMessage queues the message a party sent for a round of a session.
func (e *Engine) OnRoundMessage(session dwallet.SessionIdentifier, round uint64, from dwallet.PartyID, message []byte) {
	if !e.roundMessages.Push(roundMessage{session: session, round: round, from: from, message: message}) {
		e.log.Warn().Str("session_id", session.String()).Msg("round message queue full, dropping message")
		return
	}
	e.notifier.Notify()
}

// CarryOver returns the events of every session that did not complete, to
// be admitted by the manager of the next epoch. Events still queued are
// admitted first. It returns ErrEngineRunning if the engine was started and
// is not done yet.
func (e *Engine) CarryOver() ([]dwallet.InboundEvent, error) {
	if e.started.Load() {
		select {
		case <-e.cm.Done():
		default:
			return nil, ErrEngineRunning
		}
	}
	for {
		raw, ok := e.rawEvents.Pop()
		if !ok {
			break
		}
		e.pipeline.HandleRawEvent(raw)
	}
	for {
		event, ok := e.inboundEvents.Pop()
		if !ok {
			break
		}
		e.pipeline.HandleEvent(event)
	}
	undecided := e.pipeline.Registry().Undecided()
	ids := make([]dwallet.SessionIdentifier, 0, len(undecided))
	for _, event := range undecided {
		ids = append(ids, event.Request.SessionIdentifier)
	}
	e.log.Info().
		Strs("sessions", logging.SessionIDs(ids)).
		Msg("carrying over undecided sessions")
	return undecided, nil
}

// processingLoop is the single worker processing every queued input.
func (e *Engine) processingLoop(ctx irrecoverable.SignalerContext, ready component.ReadyFunc) {
	err := e.keys.Bootstrap(e.access)
	if err != nil {
		ctx.Throw(fmt.Errorf("could not restore network keys: %w", err))
	}
	ready()
	defer e.workers.Stop()

	doneSignal := ctx.Done()
	newInputSignal := e.notifier.Channel()
	for {
		select {
		case <-doneSignal:
			return
		case <-newInputSignal:
			err := e.processQueues(ctx) // no errors expected during normal operations
			if err != nil {
				ctx.Throw(err)
			}
		}
	}
}

// processQueues processes queued inputs until every queue is empty, then
// hands the sessions ready for computation to the worker pool.
// No errors are expected during normal operation. All returned exceptions
// are potential symptoms of internal state corruption and should be fatal.
func (e *Engine) processQueues(ctx context.Context) error {
	for {
		if update, ok := e.networkKeyUpdates.Pop(); ok {
			err := e.onNetworkKeyUpdate(update)
			if err != nil {
				return err
			}
			continue
		}
		if e.nextCommitteePending.CompareAndSwap(true, false) {
			e.pipeline.OnNextCommitteeAvailable()
			continue
		}
		if event, ok := e.inboundEvents.Pop(); ok {
			e.pipeline.HandleEvent(event)
			continue
		}
		if raw, ok := e.rawEvents.Pop(); ok {
			e.pipeline.HandleRawEvent(raw)
			continue
		}
		if msg, ok := e.roundMessages.Pop(); ok {
			e.onRoundMessage(msg)
			continue
		}
		if result, ok := e.computationResults.Pop(); ok {
			e.onComputationResult(result)
			continue
		}
		if output, ok := e.sessionOutputs.Pop(); ok {
			err := e.onSessionOutput(output)
			if err != nil {
				return err
			}
			continue
		}

		e.dispatchReady(ctx)
		return nil
	}
}

func (e *Engine) onNetworkKeyUpdate(update networkKeyUpdate) error {
	err := e.keys.UpdateNetworkKey(update.keyID, update.data, e.access)
	if networkkeys.IsCryptographicProcessingError(err) {
		e.log.Error().Err(err).
			Str("network_key_id", update.keyID.String()).
			Msg("could not apply network key update")
		return nil
	}
	if err != nil {
		return fmt.Errorf("could not update network key %s: %w", update.keyID, err)
	}
	e.pipeline.OnNetworkKeyUpdated(update.keyID)
	return nil
}

func (e *Engine) onRoundMessage(msg roundMessage) {
	if _, ok := e.committee.ByPartyID(msg.from); !ok {
		e.log.Warn().
			Str("session_id", msg.session.String()).
			Uint16("party_id", uint16(msg.from)).
			Msg("dropping round message of unknown party")
		return
	}
	if e.pipeline.Registry().RecordMessage(msg.session, msg.round, msg.from, msg.message) {
		e.checkRoundReady(msg.session)
	}
}

// checkRoundReady moves the session back to the ready queue once parties
// holding a quorum of the weight sent their messages of the last round.
func (e *Engine) checkRoundReady(id dwallet.SessionIdentifier) {
	entry, ok := e.pipeline.Registry().Entry(id)
	if !ok || entry.EventData == nil || entry.Status != sessions.StatusPending || entry.Round < 2 {
		return
	}
	var weight uint64
	for party := range entry.Messages[entry.Round-1] {
		if a, ok := e.committee.ByPartyID(party); ok {
			weight += a.Weight
		}
	}
	if weight >= e.committee.QuorumThreshold {
		e.pipeline.Registry().MarkReadyToCompute(id)
	}
}

// dispatchReady submits a computation for every ready session.
func (e *Engine) dispatchReady(ctx context.Context) {
	registry := e.pipeline.Registry()
	for {
		entry, ok := registry.PopReady()
		if !ok {
			return
		}
		request := *entry.Request()
		input := module.ProtocolInput{
			EventData: entry.EventData,
			PartyID:   e.party,
			Round:     entry.Round,
			Messages:  entry.MessagesSnapshot(),
		}
		if keyID := entry.EventData.NetworkKeyID; keyID != nil {
			params, err := e.keys.DecryptionParameters(*keyID)
			if err != nil {
				e.log.Error().Err(err).
					Str("session_id", request.SessionIdentifier.String()).
					Msg("network key of admitted session is unavailable")
				e.publishOutput(&request, dwallet.NewFailedOutput())
				continue
			}
			input.Decryption = params
		}

		e.workers.Submit(func() {
			start := time.Now()
			result, err := e.protocol.Advance(ctx, input)
			e.computationResults.Push(computationResult{
				session:  request.SessionIdentifier,
				request:  request,
				round:    input.Round,
				result:   result,
				err:      err,
				duration: time.Since(start),
			})
			e.notifier.Notify()
		})
	}
}

func (e *Engine) onComputationResult(r computationResult) {
	kind := r.request.Kind().String()
	lg := e.log.With().
		Str("session_id", r.session.String()).
		Str("kind", kind).
		Uint64("round", r.round).
		Logger()
	e.metrics.RoundComputed(kind, r.duration)

	registry := e.pipeline.Registry()
	if entry, ok := registry.Entry(r.session); ok && entry.Status == sessions.StatusFinished {
		lg.Debug().Msg("session certified while computing, discarding result")
		return
	}
	if r.err != nil {
		lg.Warn().Err(r.err).Msg("cryptographic processing of session failed, reporting failure")
		e.publishOutput(&r.request, dwallet.NewFailedOutput())
		return
	}
	if len(r.result.MaliciousParties) > 0 {
		lg.Warn().Int("malicious_parties", len(r.result.MaliciousParties)).Msg("protocol reported malicious parties")
	}
	if r.result.Finalized {
		lg.Info().Msg("session computed")
		e.publishOutput(&r.request, dwallet.NewSuccessOutput(r.result.PublicOutput))
		return
	}

	err := e.messenger.BroadcastRoundMessage(r.session, r.round, r.result.Message)
	if err != nil {
		lg.Error().Err(err).Msg("could not broadcast round message")
	}
	registry.RecordMessage(r.session, r.round, e.party, r.result.Message)
	registry.AdvanceRound(r.session, r.round)
	e.checkRoundReady(r.session)
}

// publishOutput reports the output computed by this authority. It is
// counted like any other authority's output once delivered back.
func (e *Engine) publishOutput(request *dwallet.SessionRequest, output dwallet.SessionOutput) {
	encoded, err := output.Encode()
	if err != nil {
		e.log.Error().Err(err).Msg("could not encode session output")
		return
	}
	err = e.messenger.PublishOutput(&dwallet.SessionOutputMessage{
		Authority: e.authority,
		Request:   *request,
		Output:    encoded,
	})
	if err != nil {
		e.log.Error().Err(err).
			Str("session_id", request.SessionIdentifier.String()).
			Msg("could not publish session output")
	}
}

func (e *Engine) onSessionOutput(msg *dwallet.SessionOutputMessage) error {
	lg := e.log.With().
		Str("session_id", msg.Request.SessionIdentifier.String()).
		Str("authority", msg.Authority.String()).
		Logger()

	committee, err := e.committees.CommitteeByEpoch(msg.Request.Epoch)
	if err != nil {
		lg.Warn().Err(err).Uint64("request_epoch", msg.Request.Epoch).Msg("dropping output without committee")
		e.metrics.OutputSubmitted("invalid")
		return nil
	}
	result, err := e.verifier.SubmitOutput(&msg.Request, msg.Output, msg.Authority, committee)
	if err != nil {
		lg.Warn().Err(err).Msg("dropping invalid session output")
		e.metrics.OutputSubmitted("invalid")
		return nil
	}
	e.metrics.OutputSubmitted(result.Outcome.String())
	if result.Outcome != quorum.OutcomeCertified {
		return nil
	}
	return e.onCertified(result)
}

func (e *Engine) onCertified(result *quorum.Result) error {
	id := result.Request.SessionIdentifier
	kind := result.Request.Kind().String()

	err := e.checkpoints.Append(result.Messages)
	if err != nil {
		e.log.Error().Err(err).Str("session_id", id.String()).Msg("could not append checkpoint messages")
	}
	err = e.completed.MarkCompleted(e.epoch, id)
	if err != nil {
		return fmt.Errorf("could not mark session %s completed: %w", id, err)
	}
	e.pipeline.Registry().Complete(id)

	rejected := len(result.Messages) > 0 && result.Messages[0].Header().Rejected
	e.metrics.SessionCompleted(kind, rejected)
	if len(result.MaliciousAuthorities) > 0 {
		e.metrics.MaliciousAuthorities(len(result.MaliciousAuthorities))
		e.log.Warn().
			Str("session_id", id.String()).
			Strs("malicious_authorities", logging.AuthorityIDs(result.MaliciousAuthorities)).
			Msg("authorities voted for a losing output")
	}
	e.log.Info().
		Str("session_id", id.String()).
		Str("kind", kind).
		Bool("rejected", rejected).
		Int("messages", len(result.Messages)).
		Msg("session completed")
	return nil
}

// liveEventsLoop queues the events pushed by the event source.
func (e *Engine) liveEventsLoop(ctx irrecoverable.SignalerContext, ready component.ReadyFunc) {
	ready()

	events := e.source.LiveEvents()
	for {
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-events:
			if !ok {
				return
			}
			e.OnRawEvent(raw)
		}
	}
}

// pullLoop queues the uncompleted events of the epoch once at start-up.
func (e *Engine) pullLoop(ctx irrecoverable.SignalerContext, ready component.ReadyFunc) {
	ready()

	raws, err := e.puller.Pull(ctx, e.epoch)
	if err != nil {
		if ctx.Err() == nil {
			e.log.Error().Err(err).Msg("could not pull uncompleted events")
		}
		return
	}
	for _, raw := range raws {
		e.OnRawEvent(raw)
	}
}
