package codec

import (
	"encoding/json"

	"rpcfabric/wire"
)

// JSONCodec uses the standard library's encoding/json for the envelope
// itself. Human-readable, cross-language, easy to debug — the teacher's
// tradeoff, unchanged.
type JSONCodec struct{}

func (c *JSONCodec) EncodeRequest(req *wire.Request) ([]byte, error) {
	return json.Marshal(req)
}

func (c *JSONCodec) DecodeRequest(data []byte) (*wire.Request, error) {
	var req wire.Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

func (c *JSONCodec) EncodeResponse(resp *wire.Response) ([]byte, error) {
	return json.Marshal(resp)
}

func (c *JSONCodec) DecodeResponse(data []byte) (*wire.Response, error) {
	var resp wire.Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *JSONCodec) Type() wire.CodecType {
	return wire.CodecTypeJSON
}
