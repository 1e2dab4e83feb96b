package admission

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/dwallet-labs/dwallet-network-sub004/model/dwallet"
)

// Fully qualified chain event types of the session requests.
const (
	EventTypeDKGFirstRound                = "coordinator_inner::DWalletDKGFirstRoundRequestEvent"
	EventTypeDKGSecondRound               = "coordinator_inner::DWalletDKGSecondRoundRequestEvent"
	EventTypePresign                      = "coordinator_inner::PresignRequestEvent"
	EventTypeSign                         = "coordinator_inner::SignRequestEvent"
	EventTypeFutureSign                   = "coordinator_inner::FutureSignRequestEvent"
	EventTypePartialSignatureVerification = "coordinator_inner::PartialSignatureVerificationRequestEvent"
	EventTypeEncryptedShareVerification   = "coordinator_inner::EncryptedShareVerificationRequestEvent"
	EventTypeMakeSharesPublic             = "coordinator_inner::MakeDWalletUserSecretKeySharesPublicRequestEvent"
	EventTypeImportedKeyVerification      = "coordinator_inner::DWalletImportedKeyVerificationRequestEvent"
	EventTypeNetworkKeyDKG                = "coordinator_inner::DWalletNetworkDKGEncryptionKeyRequestEvent"
	EventTypeNetworkKeyReconfiguration    = "coordinator_inner::DWalletEncryptionKeyReconfigurationRequestEvent"
)

// Envelope is the part of a session event common to every event type.
type Envelope struct {
	Epoch                     uint64
	SessionSequenceNumber     uint64
	SessionIdentifierPreimage []byte
	EventData                 cbor.RawMessage
}

// InputDecoder decodes the event data of one event type.
type InputDecoder func(data []byte) (dwallet.RequestInput, error)

// EventSpec tells how to decode an event type and what its sessions depend on.
type EventSpec struct {
	Decode InputDecoder
	// RequiresNextActiveCommittee is set for protocols whose output is
	// addressed to the committee of the next epoch.
	RequiresNextActiveCommittee bool
}

// EventTable maps event types to their decoding.
type EventTable map[string]EventSpec

func decodeInput[T any, P interface {
	*T
	dwallet.RequestInput
}](data []byte) (dwallet.RequestInput, error) {
	var v T
	err := dwallet.Decode(data, &v)
	if err != nil {
		return nil, err
	}
	return P(&v), nil
}

// DefaultEventTable returns the decoding of every session event the chain
// emits.
func DefaultEventTable() EventTable {
	return EventTable{
		EventTypeDKGFirstRound:                {Decode: decodeInput[dwallet.DKGFirstRoundRequest]},
		EventTypeDKGSecondRound:               {Decode: decodeInput[dwallet.DKGSecondRoundRequest]},
		EventTypePresign:                      {Decode: decodeInput[dwallet.PresignRequest]},
		EventTypeSign:                         {Decode: decodeInput[dwallet.SignRequest]},
		EventTypeFutureSign:                   {Decode: decodeFutureSign},
		EventTypePartialSignatureVerification: {Decode: decodeInput[dwallet.PartialSignatureVerificationRequest]},
		EventTypeEncryptedShareVerification:   {Decode: decodeInput[dwallet.EncryptedShareVerificationRequest]},
		EventTypeMakeSharesPublic:             {Decode: decodeInput[dwallet.MakeSharesPublicRequest]},
		EventTypeImportedKeyVerification:      {Decode: decodeInput[dwallet.ImportedKeyVerificationRequest]},
		EventTypeNetworkKeyDKG:                {Decode: decodeInput[dwallet.NetworkKeyDKGRequest]},
		EventTypeNetworkKeyReconfiguration: {
			Decode:                      decodeInput[dwallet.NetworkKeyReconfigurationRequest],
			RequiresNextActiveCommittee: true,
		},
	}
}

// decodeFutureSign decodes a sign request whose partial signature was
// verified in advance.
func decodeFutureSign(data []byte) (dwallet.RequestInput, error) {
	var req dwallet.SignRequest
	err := dwallet.Decode(data, &req)
	if err != nil {
		return nil, err
	}
	req.IsFutureSign = true
	return &req, nil
}

// EventCodec turns raw chain events into inbound session events. The table is
// fixed at construction.
type EventCodec struct {
	table EventTable
}

func NewEventCodec(table EventTable) (*EventCodec, error) {
	copied := make(EventTable, len(table))
	for eventType, spec := range table {
		if spec.Decode == nil {
			return nil, fmt.Errorf("event type %s has no decoder", eventType)
		}
		copied[eventType] = spec
	}
	return &EventCodec{table: copied}, nil
}

// Decode decodes a raw event.
// Expected errors during normal operations:
//   - UnknownEventTypeError if the event type is not in the table
//   - EventUnmarshalError if the contents are malformed or request an
//     unsupported key scheme
func (c *EventCodec) Decode(raw dwallet.RawEvent) (dwallet.InboundEvent, error) {
	spec, ok := c.table[raw.Type]
	if !ok {
		return dwallet.InboundEvent{}, NewUnknownEventTypeError(raw.Type)
	}

	var envelope Envelope
	err := dwallet.Decode(raw.Contents, &envelope)
	if err != nil {
		return dwallet.InboundEvent{}, NewEventUnmarshalError(raw.Type, err)
	}
	if len(envelope.SessionIdentifierPreimage) == 0 {
		return dwallet.InboundEvent{}, NewEventUnmarshalError(raw.Type, fmt.Errorf("empty session identifier preimage"))
	}
	input, err := spec.Decode(envelope.EventData)
	if err != nil {
		return dwallet.InboundEvent{}, NewEventUnmarshalError(raw.Type, err)
	}
	err = input.Validate()
	if err != nil {
		return dwallet.InboundEvent{}, NewEventUnmarshalError(raw.Type, err)
	}

	return dwallet.InboundEvent{
		Request: dwallet.SessionRequest{
			SessionIdentifier:           dwallet.MakeSessionIdentifier(envelope.SessionIdentifierPreimage),
			Epoch:                       envelope.Epoch,
			SequenceNumber:              envelope.SessionSequenceNumber,
			RequiresNextActiveCommittee: spec.RequiresNextActiveCommittee,
			Input:                       input,
		},
		Pulled: raw.Pulled,
	}, nil
}

// EncodeEvent builds the raw event the chain would emit for the request.
func EncodeEvent(eventType string, epoch uint64, sequenceNumber uint64, preimage []byte, input dwallet.RequestInput) (dwallet.RawEvent, error) {
	data, err := dwallet.Encode(input)
	if err != nil {
		return dwallet.RawEvent{}, err
	}
	contents, err := dwallet.Encode(Envelope{
		Epoch:                     epoch,
		SessionSequenceNumber:     sequenceNumber,
		SessionIdentifierPreimage: preimage,
		EventData:                 data,
	})
	if err != nil {
		return dwallet.RawEvent{}, err
	}
	return dwallet.RawEvent{Type: eventType, Contents: contents}, nil
}
