// codec.go -- byte-order codecs for persisted structures
//
// (c) Sudhi Herle 2018
//
// Author: Sudhi Herle <sudhi@herle.net>
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

package cdb

import "encoding/binary"

// All multi-byte integers in a CDB file -- the 256-bucket directory,
// the per-bucket hash tables, and the record payloads -- are persisted
// little-endian regardless of host byte order. le is a package-level
// alias so call sites read the same way the teacher's dbwriter.go
// reads with its "be := binary.BigEndian" local.
var le = binary.LittleEndian

func putU32(b []byte, v uint32) { le.PutUint32(b, v) }
func putU64(b []byte, v uint64) { le.PutUint64(b, v) }
func getU32(b []byte) uint32    { return le.Uint32(b) }
func getU64(b []byte) uint64    { return le.Uint64(b) }

// payloadNarrowSize and payloadWideSize are the two payload shapes
// spec'd in the data model: a narrow payload is u32 offset || u32
// length; a wide payload is u64 offset || u32 length, used once a
// record's offset no longer fits in 32 bits.
const (
	payloadNarrowSize = 8
	payloadWideSize   = 12

	maxNarrowOffset = uint64(1)<<32 - 1
)

// EncodePayload returns the little-endian encoded (offset, length)
// pair for a record, choosing the narrow (8-byte) or wide (12-byte)
// shape by the magnitude of offset.
func EncodePayload(offset uint64, length uint32) []byte {
	if offset <= maxNarrowOffset {
		b := make([]byte, payloadNarrowSize)
		putU32(b[0:4], uint32(offset))
		putU32(b[4:8], length)
		return b
	}

	b := make([]byte, payloadWideSize)
	putU64(b[0:8], offset)
	putU32(b[8:12], length)
	return b
}

// DecodePayload reverses EncodePayload, dispatching on the byte slice
// length (8 vs 12) rather than carrying a separate shape tag.
func DecodePayload(b []byte) (offset uint64, length uint32, ok bool) {
	switch len(b) {
	case payloadNarrowSize:
		return uint64(getU32(b[0:4])), getU32(b[4:8]), true
	case payloadWideSize:
		return getU64(b[0:8]), getU32(b[8:12]), true
	default:
		return 0, 0, false
	}
}
