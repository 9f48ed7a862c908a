package codec

import (
	"testing"

	"rpcfabric/wire"
)

func TestBinaryCodecRequestRoundTrip(t *testing.T) {
	c := &BinaryCodec{}
	req := &wire.Request{MID: 42, Method: "Arith.Add", Params: []byte(`{"A":1,"B":2}`)}

	data, err := c.EncodeRequest(req)
	if err != nil {
		t.Fatalf("EncodeRequest: %v", err)
	}
	got, err := c.DecodeRequest(data)
	if err != nil {
		t.Fatalf("DecodeRequest: %v", err)
	}
	if got.MID != req.MID || got.Method != req.Method || string(got.Params) != string(req.Params) {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, req)
	}
}

func TestBinaryCodecResponseRoundTrip(t *testing.T) {
	c := &BinaryCodec{}
	resp := &wire.Response{MID: 7, Status: 0, ErrorCode: 0, Result: []byte(`{"Result":3}`)}

	data, err := c.EncodeResponse(resp)
	if err != nil {
		t.Fatalf("EncodeResponse: %v", err)
	}
	got, err := c.DecodeResponse(data)
	if err != nil {
		t.Fatalf("DecodeResponse: %v", err)
	}
	if got.MID != resp.MID || got.Status != resp.Status || got.ErrorCode != resp.ErrorCode || string(got.Result) != string(resp.Result) {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, resp)
	}
}

func TestJSONCodecRoundTrip(t *testing.T) {
	c := &JSONCodec{}
	req := &wire.Request{MID: 1, Method: "Echo.Call", Params: []byte(`[1,2,3]`)}

	data, err := c.EncodeRequest(req)
	if err != nil {
		t.Fatalf("EncodeRequest: %v", err)
	}
	got, err := c.DecodeRequest(data)
	if err != nil {
		t.Fatalf("DecodeRequest: %v", err)
	}
	if got.MID != req.MID || got.Method != req.Method {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, req)
	}
}

func TestGetFactory(t *testing.T) {
	if Get(wire.CodecTypeJSON).Type() != wire.CodecTypeJSON {
		t.Fatal("Get(CodecTypeJSON) did not return a JSON codec")
	}
	if Get(wire.CodecTypeBinary).Type() != wire.CodecTypeBinary {
		t.Fatal("Get(CodecTypeBinary) did not return a binary codec")
	}
}

func TestMethodNameTooLong(t *testing.T) {
	c := &BinaryCodec{}
	longMethod := make([]byte, wire.MaxMethodLen+1)
	for i := range longMethod {
		longMethod[i] = 'a'
	}
	_, err := c.EncodeRequest(&wire.Request{MID: 1, Method: string(longMethod)})
	if err == nil {
		t.Fatal("expected error for over-length method name")
	}
}
