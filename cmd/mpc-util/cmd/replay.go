package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/dwallet-labs/dwallet-network-sub004/engine/mpc/admission"
	"github.com/dwallet-labs/dwallet-network-sub004/model/dwallet"
	"github.com/dwallet-labs/dwallet-network-sub004/module"
	"github.com/dwallet-labs/dwallet-network-sub004/module/committees"
	"github.com/dwallet-labs/dwallet-network-sub004/module/metrics"
	"github.com/dwallet-labs/dwallet-network-sub004/module/networkkeys"
	"github.com/dwallet-labs/dwallet-network-sub004/module/quorum"
)

var (
	flagFixture      string
	flagServeMetrics bool
)

func init() {
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().StringVar(&flagFixture, "fixture", "",
		"JSON file with the committee, network keys, raw events and authority outputs to replay")
	_ = replayCmd.MarkFlagRequired("fixture")
	replayCmd.Flags().BoolVar(&flagServeMetrics, "serve-metrics", false,
		"keep serving the metrics of the replay on the metrics address until interrupted")
}

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "admit recorded events and certify recorded outputs, printing the resulting checkpoint messages",
	Run: func(cmd *cobra.Command, args []string) {
		data, err := os.ReadFile(flagFixture)
		if err != nil {
			log.Fatal().Err(err).Msg("could not read fixture")
		}
		var fixture ReplayFixture
		err = json.Unmarshal(data, &fixture)
		if err != nil {
			log.Fatal().Err(err).Msg("could not decode fixture")
		}

		registry := prometheus.NewRegistry()
		collector := metrics.NewMPCCollector(registry)
		messages, err := Replay(log.Logger, collector, &fixture, flagEpoch, mpcConfig.MaxChunkSize)
		if err != nil {
			log.Fatal().Err(err).Msg("could not replay fixture")
		}
		for _, msg := range messages {
			out, err := json.MarshalIndent(struct {
				Kind    string
				Message dwallet.CheckpointMessage
			}{msg.Kind().String(), msg}, "", "  ")
			if err != nil {
				log.Fatal().Err(err).Msg("could not encode checkpoint message")
			}
			fmt.Println(string(out))
		}

		if !flagServeMetrics {
			return
		}
		server := metrics.NewServer(log.Logger, mpcConfig.MetricsAddress, registry)
		<-server.Ready()
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		<-server.Done()
	},
}

// ReplayFixture is a recorded epoch: its committee, the network keys known
// to the validator, the raw chain events and the outputs reported by the
// authorities, in delivery order.
type ReplayFixture struct {
	Committee     []FixtureAuthority  `json:"committee"`
	NextCommittee []FixtureAuthority  `json:"next_committee,omitempty"`
	NetworkKeys   []FixtureNetworkKey `json:"network_keys"`
	Events        []dwallet.RawEvent  `json:"events"`
	Outputs       []FixtureOutput     `json:"outputs"`
}

type FixtureAuthority struct {
	ID      string `json:"id"`
	PartyID uint16 `json:"party_id"`
	Weight  uint64 `json:"weight"`
}

type FixtureNetworkKey struct {
	ID                       string `json:"id"`
	ProtocolPublicParameters []byte `json:"protocol_public_parameters"`
}

type FixtureOutput struct {
	Authority string `json:"authority"`
	SessionID string `json:"session_id"`
	Rejected  bool   `json:"rejected"`
	Output    []byte `json:"output,omitempty"`
}

// replayKeys serves the network keys of a fixture.
type replayKeys map[dwallet.NetworkKeyID][]byte

func (k replayKeys) KeyPublicDataExists(keyID dwallet.NetworkKeyID) bool {
	_, ok := k[keyID]
	return ok
}

func (k replayKeys) ProtocolPublicParameters(keyID dwallet.NetworkKeyID) ([]byte, error) {
	params, ok := k[keyID]
	if !ok {
		return nil, fmt.Errorf("key %s: %w", keyID, networkkeys.ErrWaitingForNetworkKey)
	}
	return params, nil
}

// Replay admits the events of the fixture and submits its outputs to a quorum
// verifier. It returns the checkpoint messages of the certified sessions.
func Replay(log zerolog.Logger, collector module.MPCMetrics, fixture *ReplayFixture, epoch uint64, maxChunkSize int) ([]dwallet.CheckpointMessage, error) {
	committee, err := buildCommittee(epoch, fixture.Committee)
	if err != nil {
		return nil, err
	}
	provider := committees.NewStaticProvider(committee)
	if len(fixture.NextCommittee) > 0 {
		next, err := buildCommittee(epoch+1, fixture.NextCommittee)
		if err != nil {
			return nil, err
		}
		err = provider.Add(next)
		if err != nil {
			return nil, err
		}
	}

	keys := make(replayKeys, len(fixture.NetworkKeys))
	for _, k := range fixture.NetworkKeys {
		keyID, err := dwallet.HexStringToNetworkKeyID(k.ID)
		if err != nil {
			return nil, err
		}
		keys[keyID] = k.ProtocolPublicParameters
	}

	codec, err := admission.NewEventCodec(admission.DefaultEventTable())
	if err != nil {
		return nil, err
	}
	pipeline, err := admission.NewPipeline(log, collector, epoch, codec, keys, provider)
	if err != nil {
		return nil, err
	}
	for _, raw := range fixture.Events {
		pipeline.HandleRawEvent(raw)
	}
	registry := pipeline.Registry()

	verifier, err := quorum.NewVerifier(log, maxChunkSize)
	if err != nil {
		return nil, err
	}
	var messages []dwallet.CheckpointMessage
	for i, out := range fixture.Outputs {
		lg := log.With().Int("output", i).Str("session_id", out.SessionID).Logger()
		id, err := dwallet.HexStringToSessionIdentifier(out.SessionID)
		if err != nil {
			return nil, fmt.Errorf("output %d: %w", i, err)
		}
		authority, err := dwallet.HexStringToAuthorityID(out.Authority)
		if err != nil {
			return nil, fmt.Errorf("output %d: %w", i, err)
		}
		entry, ok := registry.Entry(id)
		if !ok || entry.EventData == nil {
			lg.Warn().Msg("skipping output of a session that was not admitted")
			continue
		}
		requestCommittee, err := provider.CommitteeByEpoch(entry.Request().Epoch)
		if err != nil {
			lg.Warn().Err(err).Msg("skipping output without committee")
			continue
		}
		encoded, err := dwallet.SessionOutput{Rejected: out.Rejected, Output: out.Output}.Encode()
		if err != nil {
			return nil, fmt.Errorf("output %d: %w", i, err)
		}

		result, err := verifier.SubmitOutput(entry.Request(), encoded, authority, requestCommittee)
		if err != nil {
			collector.OutputSubmitted("invalid")
			lg.Warn().Err(err).Msg("skipping invalid output")
			continue
		}
		collector.OutputSubmitted(result.Outcome.String())
		if result.Outcome == quorum.OutcomeCertified {
			messages = append(messages, result.Messages...)
			registry.Complete(id)
			rejected := len(result.Messages) > 0 && result.Messages[0].Header().Rejected
			collector.SessionCompleted(entry.Request().Kind().String(), rejected)
			if len(result.MaliciousAuthorities) > 0 {
				collector.MaliciousAuthorities(len(result.MaliciousAuthorities))
			}
		}
	}

	log.Info().
		Int("sessions", registry.Len()).
		Int("pending_for_key", registry.PendingForKeyLen()).
		Int("pending_for_committee", registry.PendingForCommitteeLen()).
		Int("messages", len(messages)).
		Msg("replay done")
	return messages, nil
}

func buildCommittee(epoch uint64, authorities []FixtureAuthority) (*dwallet.Committee, error) {
	members := make([]dwallet.Authority, 0, len(authorities))
	for _, a := range authorities {
		id, err := dwallet.HexStringToAuthorityID(a.ID)
		if err != nil {
			return nil, err
		}
		members = append(members, dwallet.Authority{ID: id, PartyID: dwallet.PartyID(a.PartyID), Weight: a.Weight})
	}
	return committees.NewCommittee(epoch, members)
}
