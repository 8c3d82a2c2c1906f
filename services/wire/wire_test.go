package wire_test

import (
	"testing"

	"github.com/beamtrade/beam/services/wire"
	"github.com/stretchr/testify/require"
)

func testRoundTrip(t *testing.T, codec wire.Codec) {
	e := &wire.Envelope{Kind: wire.KindRequest, Tag: "Echo", ID: 7, Payload: []byte("hi"), Err: ""}
	data, err := codec.MarshalEnvelope(e)
	require.NoError(t, err)
	got, err := codec.UnmarshalEnvelope(data)
	require.NoError(t, err)
	require.Equal(t, e.Kind, got.Kind)
	require.Equal(t, e.Tag, got.Tag)
	require.Equal(t, e.ID, got.ID)
	require.Equal(t, e.Payload, got.Payload)
}

func TestJSONCodecRoundTrip(t *testing.T) {
	testRoundTrip(t, wire.JSONCodec{})
}

func TestMsgpackCodecRoundTrip(t *testing.T) {
	testRoundTrip(t, wire.MsgpackCodec{})
}

func TestPayloadRoundTripBothCodecs(t *testing.T) {
	type params struct {
		A int
		B string
	}
	for _, codec := range []wire.Codec{wire.JSONCodec{}, wire.MsgpackCodec{}} {
		p := params{A: 1, B: "x"}
		data, err := codec.MarshalPayload(p)
		require.NoError(t, err)
		var out params
		require.NoError(t, codec.UnmarshalPayload(data, &out))
		require.Equal(t, p, out)
	}
}
