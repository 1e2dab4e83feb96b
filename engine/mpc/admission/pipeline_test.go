package admission_test

import (
	"fmt"
	"testing"

	"github.com/dgraph-io/badger/v2"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/dwallet-labs/dwallet-network-sub004/engine/mpc/admission"
	"github.com/dwallet-labs/dwallet-network-sub004/model/dwallet"
	"github.com/dwallet-labs/dwallet-network-sub004/module/committees"
	"github.com/dwallet-labs/dwallet-network-sub004/module/metrics"
	"github.com/dwallet-labs/dwallet-network-sub004/module/networkkeys"
	"github.com/dwallet-labs/dwallet-network-sub004/module/sessions"
	bstorage "github.com/dwallet-labs/dwallet-network-sub004/storage/badger"
	"github.com/dwallet-labs/dwallet-network-sub004/utils/unittest"
)

// keyStore is an in-memory admission.KeyStore.
type keyStore struct {
	params map[dwallet.NetworkKeyID][]byte
}

func (k *keyStore) KeyPublicDataExists(keyID dwallet.NetworkKeyID) bool {
	_, ok := k.params[keyID]
	return ok
}

func (k *keyStore) ProtocolPublicParameters(keyID dwallet.NetworkKeyID) ([]byte, error) {
	params, ok := k.params[keyID]
	if !ok {
		return nil, fmt.Errorf("key %s: %w", keyID, networkkeys.ErrWaitingForNetworkKey)
	}
	return params, nil
}

// dropRecorder counts dropped events by reason.
type dropRecorder struct {
	*metrics.NoopCollector
	dropped  map[string]int
	admitted int
}

func (r *dropRecorder) EventDropped(reason string) { r.dropped[reason]++ }
func (r *dropRecorder) SessionAdmitted(string)     { r.admitted++ }

func TestPipeline(t *testing.T) {
	suite.Run(t, new(PipelineSuite))
}

type PipelineSuite struct {
	suite.Suite

	keyID      dwallet.NetworkKeyID
	keys       *keyStore
	committees *committees.StaticProvider
	metrics    *dropRecorder
	pipeline   *admission.Pipeline
}

func (s *PipelineSuite) SetupTest() {
	s.keyID = unittest.NetworkKeyIDFixture()
	s.keys = &keyStore{params: make(map[dwallet.NetworkKeyID][]byte)}
	s.committees = committees.NewStaticProvider(unittest.EqualStakeCommitteeFixture(1, 4))
	s.metrics = &dropRecorder{NoopCollector: metrics.NewNoopCollector(), dropped: make(map[string]int)}
	s.pipeline = s.newPipeline()
}

func (s *PipelineSuite) newPipeline(opts ...admission.Option) *admission.Pipeline {
	pipeline, err := admission.NewPipeline(unittest.Logger(), s.metrics, 1, defaultCodec(s.T()), s.keys, s.committees, opts...)
	s.Require().NoError(err)
	return pipeline
}

func (s *PipelineSuite) signEvent(seq uint64, pulled bool) dwallet.InboundEvent {
	req := unittest.SessionRequestFixture(
		unittest.WithSequenceNumber(seq),
		unittest.WithInput(unittest.SignRequestFixture(s.keyID)),
	)
	return unittest.InboundEventFixture(req, pulled)
}

func (s *PipelineSuite) registry() *sessions.Registry {
	return s.pipeline.Registry()
}

// TestAdmitsWithDependencies verifies that an event whose network key is known
// is admitted with the protocol public parameters of the key.
func (s *PipelineSuite) TestAdmitsWithDependencies() {
	s.keys.params[s.keyID] = []byte("params")
	event := s.signEvent(1, false)

	s.Require().True(s.pipeline.HandleEvent(event))

	entry, ok := s.registry().Entry(event.Request.SessionIdentifier)
	s.Require().True(ok)
	s.Require().NotNil(entry.EventData)
	s.Assert().Equal([]byte("params"), entry.EventData.ProtocolPublicParameters)
	s.Require().NotNil(entry.EventData.NetworkKeyID)
	s.Assert().Equal(s.keyID, *entry.EventData.NetworkKeyID)
	s.Assert().NotEmpty(entry.EventData.PublicInput)
	s.Assert().Equal(1, s.registry().ReadyLen())
	s.Assert().Equal(1, s.metrics.admitted)
}

// TestNetworkKeyDKGHasNoKeyDependency verifies that sessions creating a
// network key do not wait for one.
func (s *PipelineSuite) TestNetworkKeyDKGHasNoKeyDependency() {
	req := unittest.SessionRequestFixture(unittest.WithInput(unittest.NetworkKeyDKGRequestFixture()))

	s.pipeline.HandleEvent(unittest.InboundEventFixture(req, false))

	entry, ok := s.registry().Entry(req.SessionIdentifier)
	s.Require().True(ok)
	s.Assert().Nil(entry.EventData.NetworkKeyID)
	s.Assert().Empty(entry.EventData.ProtocolPublicParameters)
}

// TestDefersUntilNetworkKey verifies that events wait for their key and are
// admitted once it is updated.
func (s *PipelineSuite) TestDefersUntilNetworkKey() {
	events := []dwallet.InboundEvent{s.signEvent(3, false), s.signEvent(1, false), s.signEvent(2, true)}
	for _, event := range events {
		s.Require().True(s.pipeline.HandleEvent(event))
	}
	s.Assert().Equal(3, s.registry().PendingForKeyLen())
	s.Assert().Equal(0, s.registry().ReadyLen())

	// updates of other keys do not release the events
	s.pipeline.OnNetworkKeyUpdated(unittest.NetworkKeyIDFixture())
	s.Assert().Equal(3, s.registry().PendingForKeyLen())

	s.keys.params[s.keyID] = []byte("params")
	s.pipeline.OnNetworkKeyUpdated(s.keyID)

	s.Assert().Equal(0, s.registry().PendingForKeyLen())
	s.Require().Equal(3, s.registry().ReadyLen())
	for _, seq := range []uint64{1, 2, 3} {
		entry, ok := s.registry().PopReady()
		s.Require().True(ok)
		s.Assert().Equal(seq, entry.Request().SequenceNumber)
	}
}

// TestDefersUntilNextCommittee verifies that reconfiguration sessions wait for
// the committee of the next epoch.
func (s *PipelineSuite) TestDefersUntilNextCommittee() {
	s.keys.params[s.keyID] = []byte("params")
	req := unittest.SessionRequestFixture(
		unittest.WithInput(unittest.NetworkKeyReconfigurationRequestFixture(s.keyID)),
		unittest.WithRequiresNextCommittee(),
	)

	s.pipeline.HandleEvent(unittest.InboundEventFixture(req, false))
	s.Assert().Equal(1, s.registry().PendingForCommitteeLen())
	s.Assert().Equal(0, s.registry().ReadyLen())

	s.Require().NoError(s.committees.Add(unittest.EqualStakeCommitteeFixture(2, 4)))
	s.pipeline.OnNextCommitteeAvailable()

	s.Assert().Equal(0, s.registry().PendingForCommitteeLen())
	s.Assert().Equal(1, s.registry().ReadyLen())
}

// TestDropsStaleLiveEvents verifies that live events of another epoch are
// dropped while pulled ones are carried over.
func (s *PipelineSuite) TestDropsStaleLiveEvents() {
	s.keys.params[s.keyID] = []byte("params")
	stale := unittest.SessionRequestFixture(unittest.WithEpoch(0), unittest.WithInput(unittest.SignRequestFixture(s.keyID)))
	carried := unittest.SessionRequestFixture(unittest.WithEpoch(0), unittest.WithInput(unittest.SignRequestFixture(s.keyID)))

	s.Assert().False(s.pipeline.HandleEvent(unittest.InboundEventFixture(stale, false)))
	s.Assert().True(s.pipeline.HandleEvent(unittest.InboundEventFixture(carried, true)))

	_, ok := s.registry().Entry(stale.SessionIdentifier)
	s.Assert().False(ok)
	_, ok = s.registry().Entry(carried.SessionIdentifier)
	s.Assert().True(ok)
	s.Assert().Equal(1, s.metrics.dropped[admission.DropReasonStaleEpoch])
}

// TestStaleLiveEventIsAdmittedWhenPulled verifies that a raw event dropped as
// a stale live delivery is still admitted when the same event is pulled.
func (s *PipelineSuite) TestStaleLiveEventIsAdmittedWhenPulled() {
	s.keys.params[s.keyID] = []byte("params")
	raw, err := admission.EncodeEvent(admission.EventTypePresign, 0, 1, unittest.RandomBytes(8), unittest.PresignRequestFixture(s.keyID))
	s.Require().NoError(err)

	s.pipeline.HandleRawEvent(raw)
	s.Require().Equal(0, s.registry().Len())
	s.Require().Equal(1, s.metrics.dropped[admission.DropReasonStaleEpoch])

	raw.Pulled = true
	s.pipeline.HandleRawEvent(raw)
	s.Assert().Equal(1, s.registry().ReadyLen())
	s.Assert().Zero(s.metrics.dropped[admission.DropReasonDuplicate])

	// once admitted, later deliveries are duplicates
	s.pipeline.HandleRawEvent(raw)
	s.Assert().Equal(1, s.metrics.dropped[admission.DropReasonDuplicate])
}

// unencodableInput is a request input that cannot be encoded as public input.
type unencodableInput struct {
	*dwallet.SignRequest
	Updates chan int
}

// TestDropsEventsWithoutEventData verifies that an event whose event data
// cannot be built is dropped as invalid and may be delivered again.
func (s *PipelineSuite) TestDropsEventsWithoutEventData() {
	s.keys.params[s.keyID] = []byte("params")
	req := unittest.SessionRequestFixture(unittest.WithInput(unencodableInput{
		SignRequest: unittest.SignRequestFixture(s.keyID),
		Updates:     make(chan int),
	}))

	s.Assert().False(s.pipeline.HandleEvent(unittest.InboundEventFixture(req, false)))
	s.Assert().Equal(0, s.registry().ReadyLen())
	s.Assert().Equal(1, s.metrics.dropped[admission.DropReasonInvalid])

	// the pipeline keeps admitting other sessions
	s.Assert().True(s.pipeline.HandleEvent(s.signEvent(2, false)))
	s.Assert().Equal(1, s.registry().ReadyLen())
}

// TestDropsDuplicateRawEvents verifies that repeated deliveries are dropped
// before decoding.
func (s *PipelineSuite) TestDropsDuplicateRawEvents() {
	s.keys.params[s.keyID] = []byte("params")
	raw, err := admission.EncodeEvent(admission.EventTypeSign, 1, 1, unittest.RandomBytes(8), unittest.SignRequestFixture(s.keyID))
	s.Require().NoError(err)

	s.pipeline.HandleRawEvent(raw)
	s.pipeline.HandleRawEvent(raw)

	s.Assert().Equal(1, s.registry().Len())
	s.Assert().Equal(1, s.metrics.dropped[admission.DropReasonDuplicate])
}

// TestDropsMalformedRawEvents verifies that malformed events are dropped by
// reason and never reach the registry.
func (s *PipelineSuite) TestDropsMalformedRawEvents() {
	s.pipeline.HandleRawEvent(dwallet.RawEvent{Type: "coordinator_inner::Unknown", Contents: []byte{1}})
	s.pipeline.HandleRawEvent(dwallet.RawEvent{Type: admission.EventTypeSign, Contents: []byte{0xff}})

	input := unittest.SignRequestFixture(s.keyID)
	input.SignatureAlgorithm = dwallet.SignatureAlgorithm(99)
	raw, err := admission.EncodeEvent(admission.EventTypeSign, 1, 1, unittest.RandomBytes(8), input)
	s.Require().NoError(err)
	s.pipeline.HandleRawEvent(raw)

	s.Assert().Equal(0, s.registry().Len())
	s.Assert().Equal(1, s.metrics.dropped[admission.DropReasonUnknownType])
	s.Assert().Equal(2, s.metrics.dropped[admission.DropReasonMalformed])
}

// TestAlreadyKnownEventsAreIgnored verifies that a session is admitted once.
func (s *PipelineSuite) TestAlreadyKnownEventsAreIgnored() {
	s.keys.params[s.keyID] = []byte("params")
	event := s.signEvent(1, false)

	s.pipeline.HandleEvent(event)
	s.pipeline.HandleEvent(event)

	s.Assert().Equal(1, s.registry().ReadyLen())
	s.Assert().Equal(1, s.metrics.admitted)
}

// TestSkipsCompletedSessions verifies that events of sessions recorded as
// completed are not admitted again.
func (s *PipelineSuite) TestSkipsCompletedSessions() {
	unittest.RunWithBadgerDB(s.T(), func(db *badger.DB) {
		completed := bstorage.NewMPCSessions(db)
		s.pipeline = s.newPipeline(admission.WithCompletedSessions(completed))
		s.keys.params[s.keyID] = []byte("params")

		done := s.signEvent(1, true)
		require.NoError(s.T(), completed.MarkCompleted(0, done.Request.SessionIdentifier))
		open := s.signEvent(2, true)

		s.pipeline.HandleEvent(done)
		s.pipeline.HandleEvent(open)

		_, ok := s.registry().Entry(done.Request.SessionIdentifier)
		s.Assert().False(ok)
		_, ok = s.registry().Entry(open.Request.SessionIdentifier)
		s.Assert().True(ok)
		s.Assert().Equal(1, s.metrics.dropped[admission.DropReasonCompleted])
	})
}
