// Package lz implements the sliding-window LZ77 variant used inside Yaz0
// containers.
//
// A compressed stream is a sequence of groups. Each group starts with one
// flag byte whose bits, most significant first, describe up to eight
// operations: a set bit copies one literal byte, a clear bit is a
// back-reference into the already decoded output. Back-references come in a
// 2-byte form (4-bit length, 12-bit distance) and a 3-byte form carrying an
// extra length byte. The stream has no terminator; decoding is driven by the
// expected output size.
//
// The package knows nothing about container headers; see package yaz0.
package lz
