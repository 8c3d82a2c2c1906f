package wire

import jsoniter "github.com/json-iterator/go"

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// JSONCodec is the default wire codec, grounded on the teacher's pervasive
// use of json-iterator/go wherever `encoding/json` would otherwise sit on
// a hot path (api/client.go request/response (de)serialization).
type JSONCodec struct{}

func (JSONCodec) Name() string { return "json" }

func (JSONCodec) MarshalEnvelope(e *Envelope) ([]byte, error) {
	return jsonAPI.Marshal(e)
}

func (JSONCodec) UnmarshalEnvelope(data []byte) (*Envelope, error) {
	e := &Envelope{}
	if err := jsonAPI.Unmarshal(data, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (JSONCodec) MarshalPayload(v any) ([]byte, error) { return jsonAPI.Marshal(v) }

func (JSONCodec) UnmarshalPayload(data []byte, v any) error { return jsonAPI.Unmarshal(data, v) }
