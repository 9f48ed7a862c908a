package codec

import (
	"encoding/binary"
	"fmt"

	"rpcfabric/wire"
)

// BinaryCodec is a compact binary serialization of the request/response
// envelopes.
//
// Request format:
//
//	┌────────┬─────────────┬──────────────┬──────────────┬─────────┐
//	│ MID(4) │ MethodLen(2)│ Method bytes │ ParamsLen(4) │ Params  │
//	└────────┴─────────────┴──────────────┴──────────────┴─────────┘
//
// Response format:
//
//	┌────────┬──────────┬─────────────┬──────────────┬────────┐
//	│ MID(4) │ Status(4)│ ErrorCode(4)│ ResultLen(4) │ Result │
//	└────────┴──────────┴─────────────┴──────────────┴────────┘
//
// The layout is the teacher's BinaryCodec offset bookkeeping adapted to
// the spec's envelope fields: length-prefixed variable fields, fixed-width
// integers in big-endian, single contiguous allocation per encode.
type BinaryCodec struct{}

func (c *BinaryCodec) EncodeRequest(req *wire.Request) ([]byte, error) {
	if len(req.Method) > wire.MaxMethodLen {
		return nil, fmt.Errorf("codec: method name exceeds %d bytes", wire.MaxMethodLen)
	}
	total := 4 + 2 + len(req.Method) + 4 + len(req.Params)
	buf := make([]byte, total)
	offset := 0

	binary.BigEndian.PutUint32(buf[offset:offset+4], req.MID)
	offset += 4

	binary.BigEndian.PutUint16(buf[offset:offset+2], uint16(len(req.Method)))
	offset += 2
	copy(buf[offset:offset+len(req.Method)], req.Method)
	offset += len(req.Method)

	binary.BigEndian.PutUint32(buf[offset:offset+4], uint32(len(req.Params)))
	offset += 4
	copy(buf[offset:offset+len(req.Params)], req.Params)

	return buf, nil
}

func (c *BinaryCodec) DecodeRequest(data []byte) (*wire.Request, error) {
	if len(data) < 4+2 {
		return nil, fmt.Errorf("codec: request envelope too short")
	}
	offset := 0
	mid := binary.BigEndian.Uint32(data[offset : offset+4])
	offset += 4

	methodLen := int(binary.BigEndian.Uint16(data[offset : offset+2]))
	offset += 2
	if len(data) < offset+methodLen+4 {
		return nil, fmt.Errorf("codec: truncated request envelope")
	}
	method := string(data[offset : offset+methodLen])
	offset += methodLen

	paramsLen := int(binary.BigEndian.Uint32(data[offset : offset+4]))
	offset += 4
	if len(data) < offset+paramsLen {
		return nil, fmt.Errorf("codec: truncated request params")
	}
	params := make([]byte, paramsLen)
	copy(params, data[offset:offset+paramsLen])

	return &wire.Request{MID: mid, Method: method, Params: params}, nil
}

func (c *BinaryCodec) EncodeResponse(resp *wire.Response) ([]byte, error) {
	total := 4 + 4 + 4 + 4 + len(resp.Result)
	buf := make([]byte, total)
	offset := 0

	binary.BigEndian.PutUint32(buf[offset:offset+4], resp.MID)
	offset += 4
	binary.BigEndian.PutUint32(buf[offset:offset+4], uint32(resp.Status))
	offset += 4
	binary.BigEndian.PutUint32(buf[offset:offset+4], uint32(resp.ErrorCode))
	offset += 4
	binary.BigEndian.PutUint32(buf[offset:offset+4], uint32(len(resp.Result)))
	offset += 4
	copy(buf[offset:offset+len(resp.Result)], resp.Result)

	return buf, nil
}

func (c *BinaryCodec) DecodeResponse(data []byte) (*wire.Response, error) {
	if len(data) < 16 {
		return nil, fmt.Errorf("codec: response envelope too short")
	}
	offset := 0
	mid := binary.BigEndian.Uint32(data[offset : offset+4])
	offset += 4
	status := int32(binary.BigEndian.Uint32(data[offset : offset+4]))
	offset += 4
	errorCode := int32(binary.BigEndian.Uint32(data[offset : offset+4]))
	offset += 4
	resultLen := int(binary.BigEndian.Uint32(data[offset : offset+4]))
	offset += 4
	if len(data) < offset+resultLen {
		return nil, fmt.Errorf("codec: truncated response result")
	}
	result := make([]byte, resultLen)
	copy(result, data[offset:offset+resultLen])

	return &wire.Response{MID: mid, Status: status, ErrorCode: errorCode, Result: result}, nil
}

func (c *BinaryCodec) Type() wire.CodecType {
	return wire.CodecTypeBinary
}
