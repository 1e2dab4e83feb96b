package quorum

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/exp/slices"

	"github.com/dwallet-labs/dwallet-network-sub004/model/dwallet"
	"github.com/dwallet-labs/dwallet-network-sub004/module/checkpoint"
)

var (
	// ErrCommitteeEpochMismatch is returned when the committee passed with an
	// output is not the committee of the request's epoch.
	ErrCommitteeEpochMismatch = errors.New("committee epoch does not match request epoch")

	// ErrUnknownAuthority is returned when the submitting authority is not a
	// member of the committee.
	ErrUnknownAuthority = errors.New("authority is not a committee member")

	// ErrInvalidChunkSize is returned when the verifier is created with a
	// chunk size that cannot split network key outputs.
	ErrInvalidChunkSize = errors.New("max chunk size must be positive")
)

// Outcome of submitting an output.
type Outcome int

const (
	// OutcomeAwaitingQuorum means the vote was counted and no output has
	// reached quorum yet.
	OutcomeAwaitingQuorum Outcome = iota
	// OutcomeCertified means this vote brought an output to quorum. The
	// result carries the checkpoint messages of the output.
	OutcomeCertified
	// OutcomeAlreadyCertified means the session was certified before; the
	// vote was ignored.
	OutcomeAlreadyCertified
	// OutcomeDuplicateVote means the authority already voted for the session,
	// which is not certified yet; the vote was ignored.
	OutcomeDuplicateVote
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAwaitingQuorum:
		return "awaiting_quorum"
	case OutcomeCertified:
		return "certified"
	case OutcomeAlreadyCertified:
		return "already_certified"
	case OutcomeDuplicateVote:
		return "duplicate_vote"
	default:
		return "unknown"
	}
}

// Status is the certification status of a session.
type Status int

const (
	StatusUnknown Status = iota
	StatusAwaitingQuorum
	StatusCertified
)

func (s Status) String() string {
	switch s {
	case StatusAwaitingQuorum:
		return "awaiting_quorum"
	case StatusCertified:
		return "certified"
	default:
		return "unknown"
	}
}

// Result of submitting an output.
type Result struct {
	Outcome Outcome
	// The fields below are only set for OutcomeCertified.
	Request  *dwallet.SessionRequest
	Output   []byte
	Messages []dwallet.CheckpointMessage
	// MaliciousAuthorities voted for an output that lost.
	MaliciousAuthorities []dwallet.AuthorityID
}

type voteKey struct {
	output  string
	request [dwallet.IdentifierLen]byte
}

// sessionVotes holds the votes of one session. Once certified, only the
// status and the malicious authorities are kept.
type sessionVotes struct {
	status           Status
	votes            map[voteKey]*StakeAggregator
	authoritiesVoted map[dwallet.AuthorityID]voteKey
	malicious        []dwallet.AuthorityID
}

// Verifier decides, from the outputs independently submitted by the
// authorities, when the network agrees on the output of a session.
//
// Verifier is not safe for concurrent use. Submissions are serialized by the
// MPC manager.
type Verifier struct {
	log          zerolog.Logger
	maxChunkSize int
	sessions     map[dwallet.SessionIdentifier]*sessionVotes
}

func NewVerifier(log zerolog.Logger, maxChunkSize int) (*Verifier, error) {
	if maxChunkSize <= 0 {
		return nil, fmt.Errorf("got %d: %w", maxChunkSize, ErrInvalidChunkSize)
	}
	return &Verifier{
		log:          log.With().Str("module", "quorum_verifier").Logger(),
		maxChunkSize: maxChunkSize,
		sessions:     make(map[dwallet.SessionIdentifier]*sessionVotes),
	}, nil
}

// SubmitOutput counts the vote of an authority for the output of a session.
// Each authority is counted at most once per session, with its weight in the
// committee of the request's epoch. The first (output, request) pair that
// reaches the committee's quorum threshold certifies the session; its vote
// state is dropped and the checkpoint messages of the output are returned.
// Expected errors during normal operations:
//   - ErrCommitteeEpochMismatch if the committee is not the request's
//   - ErrUnknownAuthority if the authority is not a committee member
func (v *Verifier) SubmitOutput(request *dwallet.SessionRequest, output []byte, authority dwallet.AuthorityID, committee *dwallet.Committee) (*Result, error) {
	id := request.SessionIdentifier
	sv, ok := v.sessions[id]
	if ok && sv.status == StatusCertified {
		return &Result{Outcome: OutcomeAlreadyCertified}, nil
	}
	if committee.Epoch != request.Epoch {
		return nil, fmt.Errorf("committee of epoch %d for request of epoch %d: %w", committee.Epoch, request.Epoch, ErrCommitteeEpochMismatch)
	}
	member, isMember := committee.ByID(authority)
	if !isMember {
		return nil, fmt.Errorf("authority %s: %w", authority, ErrUnknownAuthority)
	}
	if !ok {
		sv = &sessionVotes{
			status:           StatusAwaitingQuorum,
			votes:            make(map[voteKey]*StakeAggregator),
			authoritiesVoted: make(map[dwallet.AuthorityID]voteKey),
		}
		v.sessions[id] = sv
	}
	if _, voted := sv.authoritiesVoted[authority]; voted {
		return &Result{Outcome: OutcomeDuplicateVote}, nil
	}

	fingerprint, err := request.Fingerprint()
	if err != nil {
		return nil, fmt.Errorf("could not fingerprint request of session %s: %w", id, err)
	}
	key := voteKey{output: string(output), request: fingerprint}
	aggregator, ok := sv.votes[key]
	if !ok {
		aggregator = newStakeAggregator(*request, output)
		sv.votes[key] = aggregator
	}
	sv.authoritiesVoted[authority] = key
	weight := aggregator.Add(authority, member.Weight)
	if weight < committee.QuorumThreshold {
		return &Result{Outcome: OutcomeAwaitingQuorum}, nil
	}

	// the session stays open, with the vote counted, if the messages cannot
	// be built
	messages, err := checkpoint.BuildMessages(&aggregator.request, aggregator.output, v.maxChunkSize)
	if err != nil {
		return nil, fmt.Errorf("could not build checkpoint messages of session %s: %w", id, err)
	}

	for voter, votedFor := range sv.authoritiesVoted {
		if votedFor != key {
			sv.malicious = append(sv.malicious, voter)
		}
	}
	slices.SortFunc(sv.malicious, func(a, b dwallet.AuthorityID) int {
		return bytes.Compare(a[:], b[:])
	})
	sv.status = StatusCertified
	sv.votes = nil
	sv.authoritiesVoted = nil

	v.log.Info().
		Str("session_id", id.String()).
		Str("protocol", request.Kind().String()).
		Uint64("weight", weight).
		Int("malicious_authorities", len(sv.malicious)).
		Msg("session output certified")

	return &Result{
		Outcome:              OutcomeCertified,
		Request:              &aggregator.request,
		Output:               aggregator.output,
		Messages:             messages,
		MaliciousAuthorities: slices.Clone(sv.malicious),
	}, nil
}

// Status returns the certification status of the session.
func (v *Verifier) Status(id dwallet.SessionIdentifier) Status {
	sv, ok := v.sessions[id]
	if !ok {
		return StatusUnknown
	}
	return sv.status
}

// MaliciousAuthorities returns the authorities that voted for a losing
// output of a certified session.
func (v *Verifier) MaliciousAuthorities(id dwallet.SessionIdentifier) []dwallet.AuthorityID {
	sv, ok := v.sessions[id]
	if !ok {
		return nil
	}
	return slices.Clone(sv.malicious)
}

// CountedWeight returns the weight accumulated for the pair, zero once the
// session is certified.
func (v *Verifier) CountedWeight(request *dwallet.SessionRequest, output []byte) (uint64, error) {
	sv, ok := v.sessions[request.SessionIdentifier]
	if !ok || sv.status == StatusCertified {
		return 0, nil
	}
	fingerprint, err := request.Fingerprint()
	if err != nil {
		return 0, err
	}
	aggregator, ok := sv.votes[voteKey{output: string(output), request: fingerprint}]
	if !ok {
		return 0, nil
	}
	return aggregator.Weight(), nil
}
