// Package frame implements the length-prefixed framing used by the TCP and
// IPC transports: a 4-byte big-endian length N followed by N payload bytes.
//
// It is a pure function over a byte buffer with an implicit read cursor —
// grounded on the teacher's protocol.Encode/Decode, trimmed to exactly the
// spec's wire layout (no magic bytes, no version, no per-frame codec tag;
// the codec is fixed when a client or server is constructed). In-process transport never
// goes through this package — it hands opaque byte slices across the
// process boundary directly.
package frame

import (
	"encoding/binary"
	"errors"
)

// HeaderSize is the length of the length-prefix itself.
const HeaderSize = 4

// MaxPayload is the largest payload a frame may carry. Frames whose
// declared length exceeds this are a fatal protocol error to the receiver.
const MaxPayload = 1 << 20 // 1 MiB

// ErrNeedMore indicates the buffer does not yet hold a complete frame;
// the caller should read more bytes and retry.
var ErrNeedMore = errors.New("frame: need more data")

// ErrZeroLength indicates a frame declared a length of 0, which is invalid.
var ErrZeroLength = errors.New("frame: zero-length frame")

// ErrTooLarge indicates a frame declared a length exceeding MaxPayload.
var ErrTooLarge = errors.New("frame: payload exceeds maximum frame size")

// AppendFrame appends the length-prefixed encoding of payload to dst and
// returns the extended slice. payload must be non-empty and at most
// MaxPayload bytes; violations are checked here so a caller can't write an
// unparseable frame onto the wire.
func AppendFrame(dst []byte, payload []byte) ([]byte, error) {
	n := len(payload)
	if n == 0 {
		return dst, ErrZeroLength
	}
	if n > MaxPayload {
		return dst, ErrTooLarge
	}
	var lenBuf [HeaderSize]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(n))
	dst = append(dst, lenBuf[:]...)
	dst = append(dst, payload...)
	return dst, nil
}

// Extract pulls one frame out of buf without copying: the returned payload
// slice aliases buf's backing array. consumed is the number of bytes of buf
// that made up the frame (header + body); the caller must advance its
// cursor by consumed before the next call. Returns ErrNeedMore when buf
// does not yet hold a complete frame — this is not an error condition, it
// means "come back after more bytes arrive" and buffered bytes are left
// untouched, matching the idempotent-partial-read invariant.
func Extract(buf []byte) (payload []byte, consumed int, err error) {
	if len(buf) < HeaderSize {
		return nil, 0, ErrNeedMore
	}
	n := binary.BigEndian.Uint32(buf[:HeaderSize])
	if n == 0 {
		return nil, 0, ErrZeroLength
	}
	if n > MaxPayload {
		return nil, 0, ErrTooLarge
	}
	total := HeaderSize + int(n)
	if len(buf) < total {
		return nil, 0, ErrNeedMore
	}
	return buf[HeaderSize:total], total, nil
}

// ExtractCopy behaves like Extract but returns a payload slice that owns
// its own backing array, safe to retain past the lifetime of buf (e.g. to
// hand off to a dispatcher goroutine that outlives the read-buffer reuse).
func ExtractCopy(buf []byte) (payload []byte, consumed int, err error) {
	p, consumed, err := Extract(buf)
	if err != nil {
		return nil, 0, err
	}
	owned := make([]byte, len(p))
	copy(owned, p)
	return owned, consumed, nil
}
