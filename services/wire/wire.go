// Package wire provides the on-the-wire envelope and codec interface for
// the service protocol (spec §4.9): every message is framed as a 4-byte
// big-endian length prefix followed by a Codec-encoded Envelope.
/*
 * Copyright (c) 2018-2026, Beam Systems. All rights reserved.
 */
package wire

// Kind identifies which of the three service-protocol message shapes an
// Envelope carries.
type Kind int

const (
	KindRecord Kind = iota
	KindRequest
	KindResponse
)

// Envelope is the generic container every Codec marshals: Tag names the
// registered message type (spec §4.9's "static type tag"), ID is set for
// Request/Response, Payload carries the type-specific body already
// encoded by the same Codec, and Err carries a ServiceRequestError
// message for a failed Response.
type Envelope struct {
	Kind    Kind
	Tag     string
	ID      uint64
	Payload []byte
	Err     string
}

// Codec marshals an Envelope's structure (the envelope fields
// themselves) and, separately, arbitrary typed payload values into/out
// of the Payload bytes - kept as two methods so a Request's parameters
// and a Response's result can be encoded with the same per-payload
// marshaling the codec uses elsewhere.
type Codec interface {
	Name() string
	MarshalEnvelope(e *Envelope) ([]byte, error)
	UnmarshalEnvelope(data []byte) (*Envelope, error)
	MarshalPayload(v any) ([]byte, error)
	UnmarshalPayload(data []byte, v any) error
}
