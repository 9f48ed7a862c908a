// Package wire defines the request/response envelopes exchanged between
// client and server and the codec contract (§4.C) used to serialize them.
// The core routes solely on MID and method name; it holds no assumption
// about envelope bytes beyond what Codec promises.
//
// Grounded on the teacher's message.RPCMessage + codec pairing, split into
// two envelope kinds (request/response) carrying the fields the spec's
// data model requires instead of the teacher's single ServiceMethod/
// Error/Payload struct.
package wire

// MaxMethodLen is the largest a method name may be.
const MaxMethodLen = 128

// MaxParamsLen is the largest a request's params or a response's result
// may be — matches the frame codec's payload cap since an envelope is
// always carried inside exactly one frame.
const MaxParamsLen = 1 << 20

// Request is the request envelope: ⟨mid, method_name, params⟩.
type Request struct {
	MID    uint32
	Method string
	Params []byte
}

// Response is the response envelope: ⟨mid, status, error_code, result⟩.
// Status carries transport-level delivery status; ErrorCode is the
// handler's application-level code. Both zero means success.
type Response struct {
	MID       uint32
	Status    int32
	ErrorCode int32
	Result    []byte
}

// Codec is the wire-protocol serialization contract: deterministic,
// self-delimiting encode/decode over contiguous byte buffers. Any codec
// satisfying this contract may be swapped in — the core holds no
// assumption beyond it.
type Codec interface {
	EncodeRequest(req *Request) ([]byte, error)
	EncodeResponse(resp *Response) ([]byte, error)
	DecodeRequest(data []byte) (*Request, error)
	DecodeResponse(data []byte) (*Response, error)
	Type() CodecType
}

// CodecType identifies the serialization format in use. It is not carried
// per-frame: both sides are constructed with the same codec
// (client.New / server.New take it as an argument).
type CodecType byte

const (
	CodecTypeBinary CodecType = 0
	CodecTypeJSON   CodecType = 1
)
