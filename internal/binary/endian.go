package binary

import (
	"encoding/binary"
	"fmt"
)

// Endianness represents byte order for multi-byte values.
type Endianness int

const (
	// BigEndian is used by JPEG segments, IPTC IIM and "MM" TIFF headers.
	BigEndian Endianness = iota

	// LittleEndian is used by "II" TIFF headers.
	LittleEndian
)

// String returns the TIFF header mark for the byte order.
func (e Endianness) String() string {
	if e == LittleEndian {
		return "II"
	}
	return "MM"
}

// Order reads and appends fixed-width integers in one byte order.
type Order interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// ByteOrder returns the encoding/binary order for e.
func (e Endianness) ByteOrder() Order {
	if e == LittleEndian {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// ParseTIFFOrder reads the two-byte byte order mark at the start of a TIFF
// header.
func ParseTIFFOrder(mark []byte) (Endianness, error) {
	if len(mark) >= 2 {
		switch string(mark[:2]) {
		case "II":
			return LittleEndian, nil
		case "MM":
			return BigEndian, nil
		}
	}
	return BigEndian, fmt.Errorf("invalid TIFF byte order mark %q", mark[:min(len(mark), 2)])
}

func sizeOf[T uint8 | uint16 | uint32 | uint64]() int {
	var zero T
	switch any(zero).(type) {
	case uint8:
		return 1
	case uint16:
		return 2
	case uint32:
		return 4
	default:
		return 8
	}
}

// ReadLE reads a numeric value of type T at the given offset using
// little-endian byte order.
func ReadLE[T uint8 | uint16 | uint32 | uint64](sr *SafeReader, off int64, what string) (T, error) {
	return ReadEndian[T](sr, off, what, LittleEndian)
}

// ReadBE reads a numeric value of type T at the given offset using
// big-endian byte order.
//
// Example:
//
//	length, err := binary.ReadBE[uint16](sr, offset, "segment length")
func ReadBE[T uint8 | uint16 | uint32 | uint64](sr *SafeReader, off int64, what string) (T, error) {
	return ReadEndian[T](sr, off, what, BigEndian)
}

// ReadEndian reads a numeric value of type T at the given offset with
// specified byte order.
//
// Example:
//
//	count, err := binary.ReadEndian[uint16](sr, ifdOffset, "IFD entry count", order)
func ReadEndian[T uint8 | uint16 | uint32 | uint64](sr *SafeReader, off int64, what string, endian Endianness) (T, error) {
	buf := make([]byte, sizeOf[T]())
	if err := sr.ReadAt(buf, off, what); err != nil {
		var zero T
		return zero, err
	}
	return Decode[T](buf, endian), nil
}

// Decode converts the leading bytes of b to T. b must hold at least the
// size of T.
func Decode[T uint8 | uint16 | uint32 | uint64](b []byte, endian Endianness) T {
	order := endian.ByteOrder()
	var zero T
	switch any(zero).(type) {
	case uint8:
		return T(b[0])
	case uint16:
		return T(order.Uint16(b))
	case uint32:
		return T(order.Uint32(b))
	default:
		return T(order.Uint64(b))
	}
}

// Encode appends val to b in the given byte order.
func Encode[T uint8 | uint16 | uint32 | uint64](b []byte, val T, endian Endianness) []byte {
	order := endian.ByteOrder()
	var zero T
	switch any(zero).(type) {
	case uint8:
		return append(b, byte(val))
	case uint16:
		return order.AppendUint16(b, uint16(val))
	case uint32:
		return order.AppendUint32(b, uint32(val))
	default:
		return order.AppendUint64(b, uint64(val))
	}
}

// Put overwrites the bytes of b at off with val. It is used to patch
// offsets once the final layout is known.
func Put[T uint8 | uint16 | uint32 | uint64](b []byte, off int, val T, endian Endianness) {
	copy(b[off:], Encode[T](nil, val, endian))
}
