// Package codec provides the pluggable wire-envelope serializers consumed
// by the wire protocol (component C): a compact BinaryCodec and a
// human-readable JSONCodec, exactly the two the teacher ships.
//
// This is the external, generic serializer §1 calls out — the core only
// consumes its byte-array interface (wire.Codec); it never assumes
// anything about how the bytes are actually laid out.
package codec

import "rpcfabric/wire"

// Get is a factory function that returns the appropriate codec by type.
func Get(t wire.CodecType) wire.Codec {
	if t == wire.CodecTypeJSON {
		return &JSONCodec{}
	}
	return &BinaryCodec{}
}
