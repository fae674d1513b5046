// Package endian converts fixed-width values between the big-endian byte
// order used by every jsystem container and native Go values.
package endian

import (
	"encoding/binary"
	"math"
)

var order = binary.BigEndian

// Uint16 decodes a big-endian uint16 from the first two bytes of b.
func Uint16(b []byte) uint16 { return order.Uint16(b) }

// Uint32 decodes a big-endian uint32 from the first four bytes of b.
func Uint32(b []byte) uint32 { return order.Uint32(b) }

// Int16 decodes a big-endian int16.
func Int16(b []byte) int16 { return int16(order.Uint16(b)) } //nolint:gosec // reinterpreting bits

// Int32 decodes a big-endian int32.
func Int32(b []byte) int32 { return int32(order.Uint32(b)) } //nolint:gosec // reinterpreting bits

// Float32 decodes a big-endian IEEE-754 single.
func Float32(b []byte) float32 { return math.Float32frombits(order.Uint32(b)) }

// PutUint16 encodes v into the first two bytes of b.
func PutUint16(b []byte, v uint16) { order.PutUint16(b, v) }

// PutUint32 encodes v into the first four bytes of b.
func PutUint32(b []byte, v uint32) { order.PutUint32(b, v) }

// PutInt16 encodes v into the first two bytes of b.
func PutInt16(b []byte, v int16) { order.PutUint16(b, uint16(v)) } //nolint:gosec // reinterpreting bits

// PutInt32 encodes v into the first four bytes of b.
func PutInt32(b []byte, v int32) { order.PutUint32(b, uint32(v)) } //nolint:gosec // reinterpreting bits

// PutFloat32 encodes v into the first four bytes of b.
func PutFloat32(b []byte, v float32) { order.PutUint32(b, math.Float32bits(v)) }

// Align rounds n up to the next multiple of a. a must be a power of two.
func Align(n, a int) int {
	return (n + a - 1) &^ (a - 1)
}
