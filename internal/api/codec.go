// Package api defines the wire messages of the bill and settings services
// and the Connect handler and client constructors that serve them.
//
// Messages are plain Go structs carried by a JSON codec, so any Connect or
// plain HTTP client can call the API with
// `POST /billreminder.v1.BillService/<Method>` and an `application/json` body.
package api

import (
	"encoding/json"

	"connectrpc.com/connect"
)

// codecName replaces Connect's protobuf-only JSON codec.
const codecName = "json"

type jsonCodec struct{}

var _ connect.Codec = jsonCodec{}

func (jsonCodec) Name() string { return codecName }

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// WithJSON configures a handler or client to use the plain JSON codec.
func WithJSON() connect.Option {
	return connect.WithCodec(jsonCodec{})
}
