package sessions

import (
	"bytes"
	"fmt"

	"github.com/ef-ds/deque"
	"github.com/rs/zerolog"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/dwallet-labs/dwallet-network-sub004/model/dwallet"
)

// Dependencies tells the registry whether the dependencies of a session are
// available, and materializes the event data once they are.
type Dependencies interface {
	NetworkKeyReady(keyID dwallet.NetworkKeyID) bool
	NextCommitteeReady() bool
	// EventData builds the dependency-resolved context of the session. It is
	// only called once every dependency is available.
	EventData(request *dwallet.SessionRequest) (*dwallet.SessionEventData, error)
}

// AdmitResult is the outcome of admitting an event.
type AdmitResult int

const (
	// Admitted events completed their entry, which joined the ready queue.
	Admitted AdmitResult = iota
	// QueuedForKey events wait for the public data of their network key.
	QueuedForKey
	// QueuedForCommittee events wait for the committee of the next epoch.
	QueuedForCommittee
	// AlreadyKnown events belong to a session that is already admitted or
	// queued; the event is ignored.
	AlreadyKnown
)

func (r AdmitResult) String() string {
	switch r {
	case Admitted:
		return "admitted"
	case QueuedForKey:
		return "queued_for_key"
	case QueuedForCommittee:
		return "queued_for_committee"
	case AlreadyKnown:
		return "already_known"
	default:
		return "unknown"
	}
}

// Readmission is the outcome of re-admitting a drained event.
type Readmission struct {
	Event  dwallet.InboundEvent
	Result AdmitResult
	Err    error
}

// Registry maps session identifiers to session entries and holds the events
// whose dependencies are not available yet.
//
// Registry is not safe for concurrent use. It is owned by the MPC manager of
// the current epoch and rebuilt on every epoch change.
type Registry struct {
	log  zerolog.Logger
	deps Dependencies

	sessions            map[dwallet.SessionIdentifier]*Entry
	pendingForKey       map[dwallet.NetworkKeyID]*deque.Deque
	pendingForCommittee *deque.Deque
	queued              map[dwallet.SessionIdentifier]struct{}
	ready               []*Entry
}

func NewRegistry(log zerolog.Logger, deps Dependencies) *Registry {
	return &Registry{
		log:                 log.With().Str("module", "session_registry").Logger(),
		deps:                deps,
		sessions:            make(map[dwallet.SessionIdentifier]*Entry),
		pendingForKey:       make(map[dwallet.NetworkKeyID]*deque.Deque),
		pendingForCommittee: deque.New(),
		queued:              make(map[dwallet.SessionIdentifier]struct{}),
	}
}

// Admit routes the event to a pending queue if one of its dependencies is
// missing. Otherwise, it completes the session entry and moves it to the
// ready queue. Events of sessions already admitted or queued are ignored.
// An error is returned if the event data cannot be built; the event is
// dropped in that case.
func (r *Registry) Admit(event dwallet.InboundEvent) (AdmitResult, error) {
	id := event.Request.SessionIdentifier
	if e, ok := r.sessions[id]; ok && e.EventData != nil {
		return AlreadyKnown, nil
	}
	if _, ok := r.queued[id]; ok {
		return AlreadyKnown, nil
	}
	return r.admit(event)
}

func (r *Registry) admit(event dwallet.InboundEvent) (AdmitResult, error) {
	id := event.Request.SessionIdentifier
	if keyID, ok := event.Request.Input.NetworkKeyID(); ok && !r.deps.NetworkKeyReady(keyID) {
		q, ok := r.pendingForKey[keyID]
		if !ok {
			q = deque.New()
			r.pendingForKey[keyID] = q
		}
		q.PushBack(event)
		r.queued[id] = struct{}{}
		return QueuedForKey, nil
	}
	if event.Request.RequiresNextActiveCommittee && !r.deps.NextCommitteeReady() {
		r.pendingForCommittee.PushBack(event)
		r.queued[id] = struct{}{}
		return QueuedForCommittee, nil
	}

	data, err := r.deps.EventData(&event.Request)
	if err != nil {
		return 0, fmt.Errorf("could not build event data of session %s: %w", id, err)
	}

	e, ok := r.sessions[id]
	if !ok {
		e = newEntry(id)
		r.sessions[id] = e
	}
	e.EventData = data
	e.Pulled = event.Pulled
	r.pushReady(e)
	return Admitted, nil
}

// DrainForKey re-admits every event queued for the key, in arrival order.
// Each queued event is re-admitted exactly once.
func (r *Registry) DrainForKey(keyID dwallet.NetworkKeyID) []Readmission {
	q, ok := r.pendingForKey[keyID]
	if !ok {
		return nil
	}
	delete(r.pendingForKey, keyID)
	return r.drain(q)
}

// DrainForCommittee re-admits every event queued for the next committee, in
// arrival order.
func (r *Registry) DrainForCommittee() []Readmission {
	q := r.pendingForCommittee
	r.pendingForCommittee = deque.New()
	return r.drain(q)
}

func (r *Registry) drain(q *deque.Deque) []Readmission {
	results := make([]Readmission, 0, q.Len())
	for q.Len() > 0 {
		v, _ := q.PopFront()
		event := v.(dwallet.InboundEvent)
		delete(r.queued, event.Request.SessionIdentifier)
		result, err := r.admit(event)
		results = append(results, Readmission{Event: event, Result: result, Err: err})
	}
	return results
}

// MarkReadyToCompute moves an admitted session waiting for round messages
// back to the ready queue. For sessions not seen yet, it creates the entry,
// which joins the ready queue once its event is admitted.
func (r *Registry) MarkReadyToCompute(id dwallet.SessionIdentifier) {
	e := r.getOrCreate(id)
	if e.EventData == nil || e.Status != StatusPending {
		return
	}
	r.pushReady(e)
}

// RecordMessage stores the round message of a party. Only the first message
// of a party for a round is kept. It returns whether the message was stored.
func (r *Registry) RecordMessage(id dwallet.SessionIdentifier, round uint64, from dwallet.PartyID, message []byte) bool {
	e := r.getOrCreate(id)
	if e.Status == StatusFinished {
		return false
	}
	byParty, ok := e.Messages[round]
	if !ok {
		byParty = make(map[dwallet.PartyID][]byte)
		e.Messages[round] = byParty
	}
	if _, dup := byParty[from]; dup {
		return false
	}
	byParty[from] = message
	return true
}

// AdvanceRound records that the round was computed and the session waits
// for the messages of the next one.
func (r *Registry) AdvanceRound(id dwallet.SessionIdentifier, computed uint64) {
	e, ok := r.sessions[id]
	if !ok || e.Status != StatusComputing {
		return
	}
	e.Round = computed + 1
	e.Status = StatusPending
}

// PopReady removes the first entry of the ready queue and marks it as
// computing.
func (r *Registry) PopReady() (*Entry, bool) {
	if len(r.ready) == 0 {
		return nil, false
	}
	e := r.ready[0]
	r.ready[0] = nil
	r.ready = r.ready[1:]
	e.Status = StatusComputing
	return e, true
}

// Complete marks the session as finished. Its entry is kept so that late
// events and messages are ignored.
func (r *Registry) Complete(id dwallet.SessionIdentifier) {
	e := r.getOrCreate(id)
	if e.Status == StatusReady {
		r.removeReady(e)
	}
	e.Status = StatusFinished
	e.Messages = make(map[uint64]map[dwallet.PartyID][]byte)
}

// Entry returns the entry of the session.
func (r *Registry) Entry(id dwallet.SessionIdentifier) (*Entry, bool) {
	e, ok := r.sessions[id]
	return e, ok
}

// Undecided returns the events of every session that did not finish, queued
// events included, ordered for computation. They are carried over to the
// next epoch.
func (r *Registry) Undecided() []dwallet.InboundEvent {
	var admitted []*Entry
	for _, e := range r.sessions {
		if e.EventData != nil && e.Status != StatusFinished {
			admitted = append(admitted, e)
		}
	}
	slices.SortFunc(admitted, compare)

	events := make([]dwallet.InboundEvent, 0, len(admitted)+len(r.queued))
	for _, e := range admitted {
		events = append(events, dwallet.InboundEvent{Request: e.EventData.Request, Pulled: true})
	}
	collect := func(q *deque.Deque) {
		for i := 0; i < q.Len(); i++ {
			v, _ := q.PopFront()
			q.PushBack(v)
			event := v.(dwallet.InboundEvent)
			event.Pulled = true
			events = append(events, event)
		}
	}
	keyIDs := maps.Keys(r.pendingForKey)
	slices.SortFunc(keyIDs, func(a, b dwallet.NetworkKeyID) int {
		return bytes.Compare(a[:], b[:])
	})
	for _, keyID := range keyIDs {
		collect(r.pendingForKey[keyID])
	}
	collect(r.pendingForCommittee)
	return events
}

func (r *Registry) Len() int {
	return len(r.sessions)
}

func (r *Registry) ReadyLen() int {
	return len(r.ready)
}

func (r *Registry) PendingForKeyLen() int {
	total := 0
	for _, q := range r.pendingForKey {
		total += q.Len()
	}
	return total
}

func (r *Registry) PendingForCommitteeLen() int {
	return r.pendingForCommittee.Len()
}

func (r *Registry) getOrCreate(id dwallet.SessionIdentifier) *Entry {
	e, ok := r.sessions[id]
	if !ok {
		e = newEntry(id)
		r.sessions[id] = e
	}
	return e
}

func (r *Registry) pushReady(e *Entry) {
	e.Status = StatusReady
	i, _ := slices.BinarySearchFunc(r.ready, e, compare)
	r.ready = slices.Insert(r.ready, i, e)
}

func (r *Registry) removeReady(e *Entry) {
	i, found := slices.BinarySearchFunc(r.ready, e, compare)
	if found && r.ready[i] == e {
		r.ready = slices.Delete(r.ready, i, i+1)
	}
}

func compare(a, b *Entry) int {
	switch {
	case less(a, b):
		return -1
	case less(b, a):
		return 1
	default:
		return 0
	}
}
