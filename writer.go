package asmresolver

import (
	"encoding/binary"
	"math"
)

// Writer mirrors Reader for the write path: a byte-addressable, growable,
// little-endian sink. Unlike Reader it owns its buffer outright, since
// nothing else can alias memory that has not been allocated yet.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer { return &Writer{} }

// Bytes returns the bytes written so far. The slice aliases the Writer's
// internal buffer and is invalidated by further writes.
func (w *Writer) Bytes() []byte { return w.buf }

// Len returns the number of bytes written so far.
func (w *Writer) Len() uint32 { return uint32(len(w.buf)) }

func (w *Writer) grow(n int) []byte {
	start := len(w.buf)
	w.buf = append(w.buf, make([]byte, n)...)
	return w.buf[start : start+n]
}

// WriteU8 appends one byte.
func (w *Writer) WriteU8(v uint8) { w.grow(1)[0] = v }

// WriteI8 appends one signed byte.
func (w *Writer) WriteI8(v int8) { w.WriteU8(uint8(v)) }

// WriteU16 appends a little-endian uint16.
func (w *Writer) WriteU16(v uint16) { binary.LittleEndian.PutUint16(w.grow(2), v) }

// WriteI16 appends a little-endian int16.
func (w *Writer) WriteI16(v int16) { w.WriteU16(uint16(v)) }

// WriteU32 appends a little-endian uint32.
func (w *Writer) WriteU32(v uint32) { binary.LittleEndian.PutUint32(w.grow(4), v) }

// WriteI32 appends a little-endian int32.
func (w *Writer) WriteI32(v int32) { w.WriteU32(uint32(v)) }

// WriteU64 appends a little-endian uint64.
func (w *Writer) WriteU64(v uint64) { binary.LittleEndian.PutUint64(w.grow(8), v) }

// WriteI64 appends a little-endian int64.
func (w *Writer) WriteI64(v int64) { w.WriteU64(uint64(v)) }

// WriteF32 appends a little-endian IEEE-754 single.
func (w *Writer) WriteF32(v float32) { w.WriteU32(math.Float32bits(v)) }

// WriteF64 appends a little-endian IEEE-754 double.
func (w *Writer) WriteF64(v float64) { w.WriteU64(math.Float64bits(v)) }

// WriteBytes appends b verbatim.
func (w *Writer) WriteBytes(b []byte) { copy(w.grow(len(b)), b) }

// WriteCompressedUint32 writes v using the narrowest ECMA-335 §II.23.2
// compressed-integer form that can represent it. v must fit in 29 bits.
func (w *Writer) WriteCompressedUint32(v uint32) {
	switch {
	case v <= 0x7F:
		w.WriteU8(uint8(v))
	case v <= 0x3FFF:
		w.WriteU8(uint8(0x80 | (v >> 8)))
		w.WriteU8(uint8(v))
	default:
		w.WriteU8(uint8(0xC0 | (v >> 24)))
		w.WriteU8(uint8(v >> 16))
		w.WriteU8(uint8(v >> 8))
		w.WriteU8(uint8(v))
	}
}

// WriteSerString writes s as an ECMA-335 SerString: the nil marker (0xFF)
// if ok is false, otherwise a compressed-uint32 length prefix followed by
// s's UTF-8 bytes.
func (w *Writer) WriteSerString(s string, ok bool) {
	if !ok {
		w.WriteU8(0xFF)
		return
	}
	w.WriteCompressedUint32(uint32(len(s)))
	w.WriteBytes([]byte(s))
}
