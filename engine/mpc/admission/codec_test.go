package admission_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwallet-labs/dwallet-network-sub004/engine/mpc/admission"
	"github.com/dwallet-labs/dwallet-network-sub004/model/dwallet"
	"github.com/dwallet-labs/dwallet-network-sub004/utils/unittest"
)

func defaultCodec(t *testing.T) *admission.EventCodec {
	codec, err := admission.NewEventCodec(admission.DefaultEventTable())
	require.NoError(t, err)
	return codec
}

func TestEventCodec_Decode(t *testing.T) {
	codec := defaultCodec(t)
	keyID := unittest.NetworkKeyIDFixture()

	cases := []struct {
		eventType     string
		input         dwallet.RequestInput
		kind          dwallet.ProtocolKind
		nextCommittee bool
	}{
		{admission.EventTypeDKGFirstRound, &dwallet.DKGFirstRoundRequest{DWalletID: unittest.ObjectIDFixture(), NetworkEncryptionKeyID: keyID}, dwallet.ProtocolKindDKGFirstRound, false},
		{admission.EventTypePresign, unittest.PresignRequestFixture(keyID), dwallet.ProtocolKindPresign, false},
		{admission.EventTypeSign, unittest.SignRequestFixture(keyID), dwallet.ProtocolKindSign, false},
		{admission.EventTypeMakeSharesPublic, &dwallet.MakeSharesPublicRequest{DWalletID: unittest.ObjectIDFixture(), NetworkEncryptionKeyID: keyID}, dwallet.ProtocolKindMakeSharesPublic, false},
		{admission.EventTypeNetworkKeyDKG, unittest.NetworkKeyDKGRequestFixture(), dwallet.ProtocolKindNetworkKeyDKG, false},
		{admission.EventTypeNetworkKeyReconfiguration, unittest.NetworkKeyReconfigurationRequestFixture(keyID), dwallet.ProtocolKindNetworkKeyReconfiguration, true},
	}

	for _, c := range cases {
		t.Run(c.eventType, func(t *testing.T) {
			preimage := unittest.RandomBytes(40)
			raw, err := admission.EncodeEvent(c.eventType, 3, 17, preimage, c.input)
			require.NoError(t, err)
			raw.Pulled = true

			event, err := codec.Decode(raw)
			require.NoError(t, err)

			assert.True(t, event.Pulled)
			assert.Equal(t, dwallet.MakeSessionIdentifier(preimage), event.Request.SessionIdentifier)
			assert.Equal(t, uint64(3), event.Request.Epoch)
			assert.Equal(t, uint64(17), event.Request.SequenceNumber)
			assert.Equal(t, c.kind, event.Request.Kind())
			assert.Equal(t, c.nextCommittee, event.Request.RequiresNextActiveCommittee)
			assert.Equal(t, c.input, event.Request.Input)
		})
	}
}

func TestEventCodec_FutureSign(t *testing.T) {
	codec := defaultCodec(t)
	input := unittest.SignRequestFixture(unittest.NetworkKeyIDFixture())

	raw, err := admission.EncodeEvent(admission.EventTypeFutureSign, 1, 1, unittest.RandomBytes(8), input)
	require.NoError(t, err)

	event, err := codec.Decode(raw)
	require.NoError(t, err)
	sign, ok := event.Request.Input.(*dwallet.SignRequest)
	require.True(t, ok)
	assert.True(t, sign.IsFutureSign)
}

func TestEventCodec_Rejects(t *testing.T) {
	codec := defaultCodec(t)

	t.Run("unknown event type", func(t *testing.T) {
		raw, err := admission.EncodeEvent("coordinator_inner::UnknownEvent", 1, 1, unittest.RandomBytes(8), unittest.NetworkKeyDKGRequestFixture())
		require.NoError(t, err)

		_, err = codec.Decode(raw)
		require.Error(t, err)
		assert.True(t, admission.IsUnknownEventTypeError(err))
		assert.False(t, admission.IsEventUnmarshalError(err))
	})

	t.Run("undecodable contents", func(t *testing.T) {
		_, err := codec.Decode(dwallet.RawEvent{Type: admission.EventTypeSign, Contents: []byte{0xff, 0x00, 0x13}})
		require.Error(t, err)
		assert.True(t, admission.IsEventUnmarshalError(err))
	})

	t.Run("empty session identifier preimage", func(t *testing.T) {
		raw, err := admission.EncodeEvent(admission.EventTypeNetworkKeyDKG, 1, 1, nil, unittest.NetworkKeyDKGRequestFixture())
		require.NoError(t, err)

		_, err = codec.Decode(raw)
		assert.True(t, admission.IsEventUnmarshalError(err))
	})

	t.Run("unsupported key scheme", func(t *testing.T) {
		input := unittest.SignRequestFixture(unittest.NetworkKeyIDFixture())
		input.Curve = dwallet.Curve(42)
		raw, err := admission.EncodeEvent(admission.EventTypeSign, 1, 1, unittest.RandomBytes(8), input)
		require.NoError(t, err)

		_, err = codec.Decode(raw)
		assert.True(t, admission.IsEventUnmarshalError(err))
		assert.True(t, errors.Is(err, dwallet.ErrUnsupportedKeyScheme))
	})
}

func TestEventCodec_TableIsFixed(t *testing.T) {
	table := admission.EventTable{
		admission.EventTypeNetworkKeyDKG: admission.DefaultEventTable()[admission.EventTypeNetworkKeyDKG],
	}
	codec, err := admission.NewEventCodec(table)
	require.NoError(t, err)

	// later changes to the table do not leak into the codec
	table[admission.EventTypeSign] = admission.DefaultEventTable()[admission.EventTypeSign]
	raw, err := admission.EncodeEvent(admission.EventTypeSign, 1, 1, unittest.RandomBytes(8), unittest.SignRequestFixture(unittest.NetworkKeyIDFixture()))
	require.NoError(t, err)
	_, err = codec.Decode(raw)
	assert.True(t, admission.IsUnknownEventTypeError(err))

	_, err = admission.NewEventCodec(admission.EventTable{"x": {}})
	assert.Error(t, err)
}

func TestDecodeAll(t *testing.T) {
	codec := defaultCodec(t)
	valid, err := admission.EncodeEvent(admission.EventTypeNetworkKeyDKG, 1, 1, unittest.RandomBytes(8), unittest.NetworkKeyDKGRequestFixture())
	require.NoError(t, err)

	raws := []dwallet.RawEvent{
		valid,
		{Type: "unknown", Contents: []byte{1}},
		{Type: admission.EventTypeSign, Contents: []byte{0xff}},
	}
	events, err := admission.DecodeAll(codec, raws)
	require.Error(t, err)
	assert.Len(t, events, 1)
	assert.True(t, admission.IsUnknownEventTypeError(err))
	assert.True(t, admission.IsEventUnmarshalError(err))
}
