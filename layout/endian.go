package layout

import "math"

// leUint32 decodes a little-endian uint32 from a 4-byte slice.
func leUint32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

// putLeUint32 encodes v as little-endian into a 4-byte slice.
func putLeUint32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

// leUint16 decodes a little-endian uint16 from a 2-byte slice.
func leUint16(b []byte) uint16 {
	return uint16(b[0]) | uint16(b[1])<<8
}

// putLeUint16 encodes v as little-endian into a 2-byte slice.
func putLeUint16(b []byte, v uint16) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
}

func putLeFloat32(b []byte, v float32) {
	putLeUint32(b, math.Float32bits(v))
}

func leFloat32(b []byte) float32 {
	return math.Float32frombits(leUint32(b))
}

// PutLeUint32 encodes v as little-endian into a 4-byte slice. Exported for
// callers outside this package that write individual metadata fields
// in-place (device's per-frame input write, snapshot's header framing).
func PutLeUint32(b []byte, v uint32) { putLeUint32(b, v) }

// LeUint32 decodes a little-endian uint32 from a 4-byte slice.
func LeUint32(b []byte) uint32 { return leUint32(b) }

// PutLeUint16 encodes v as little-endian into a 2-byte slice.
func PutLeUint16(b []byte, v uint16) { putLeUint16(b, v) }

// LeUint16 decodes a little-endian uint16 from a 2-byte slice.
func LeUint16(b []byte) uint16 { return leUint16(b) }

// PutLeFloat32 encodes v as little-endian into a 4-byte slice.
func PutLeFloat32(b []byte, v float32) { putLeFloat32(b, v) }

// LeFloat32 decodes a little-endian float32 from a 4-byte slice.
func LeFloat32(b []byte) float32 { return leFloat32(b) }
