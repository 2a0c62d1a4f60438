package asmresolver

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the metadata resolution core. Callers may
// compare against these with errors.Is; ImageError additionally carries the
// table/stream/offset that was being decoded when the error occurred.
var (
	// ErrMalformedImage is returned when the tables-stream header is
	// internally inconsistent, e.g. the valid mask names a table with a zero
	// row count, or a row count overflows the stream.
	ErrMalformedImage = errors.New("asmresolver: malformed metadata image")

	// ErrMalformedCompressedInt is returned when a compressed unsigned
	// integer's first byte has the reserved 0b111xxxxx prefix.
	ErrMalformedCompressedInt = errors.New("asmresolver: malformed compressed integer")

	// ErrInvalidCodedIndex is returned when a coded index's tag selects a
	// table outside its candidate list.
	ErrInvalidCodedIndex = errors.New("asmresolver: invalid coded index tag")

	// ErrTokenOutOfRange is returned when a token's RID exceeds the row
	// count of its table.
	ErrTokenOutOfRange = errors.New("asmresolver: token rid out of range")

	// ErrUnsupportedElement is returned when a custom-attribute element's
	// type byte is not one of the element types spec.md §4.7.2 lists.
	ErrUnsupportedElement = errors.New("asmresolver: unsupported element type")

	// ErrMemberResolution is returned when a Class/Enum/ValueType element
	// cannot be resolved to the member needed to decode its value.
	ErrMemberResolution = errors.New("asmresolver: could not resolve member")

	// ErrSignatureRecursion is returned when a TypeSpec signature expands
	// into itself.
	ErrSignatureRecursion = errors.New("asmresolver: cyclic TypeSpec signature")

	// ErrOutsideBoundary is returned when a read would run past the end of
	// the owning buffer. Mirrors the teacher's ErrOutsideBoundary in spirit;
	// kept as a distinct sentinel since it is a reader-level, not an
	// image-level, failure.
	ErrOutsideBoundary = errors.New("asmresolver: read outside buffer boundary")
)

// ImageError wraps one of the sentinel errors above with the table, stream,
// or offset that was being decoded, so a malformed image produces one
// specific, locatable error rather than a bare sentinel.
type ImageError struct {
	// Op names the operation that failed, e.g. "parse TypeDef row".
	Op string
	// Table is the table index involved, or -1 if not table-specific.
	Table int
	// Offset is the byte offset into the relevant stream (a heap index for
	// heap reads), or 0 if unknown.
	Offset uint32
	Err    error
}

func (e *ImageError) Error() string {
	switch {
	case e.Table >= 0:
		return fmt.Sprintf("asmresolver: %s (table %s, offset 0x%x): %v",
			e.Op, TableIndex(e.Table), e.Offset, e.Err)
	default:
		return fmt.Sprintf("asmresolver: %s (offset 0x%x): %v", e.Op, e.Offset, e.Err)
	}
}

func (e *ImageError) Unwrap() error { return e.Err }

func newImageError(op string, table int, offset uint32, err error) error {
	return &ImageError{Op: op, Table: table, Offset: offset, Err: err}
}
