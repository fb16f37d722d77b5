package exif

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"

	"github.com/simonhull/imagemeta/internal/binary"
	"github.com/simonhull/imagemeta/internal/types"
	"github.com/simonhull/imagemeta/internal/value"
)

// TIFF field types.
const (
	typeByte      uint16 = 1
	typeAscii     uint16 = 2
	typeShort     uint16 = 3
	typeLong      uint16 = 4
	typeRational  uint16 = 5
	typeSByte     uint16 = 6
	typeUndefined uint16 = 7
	typeSShort    uint16 = 8
	typeSLong     uint16 = 9
	typeSRational uint16 = 10
	typeFloat     uint16 = 11
	typeDouble    uint16 = 12
)

var fieldTypes = map[uint16]struct {
	id   types.TypeID
	size int
}{
	typeByte:      {types.TypeByte, 1},
	typeAscii:     {types.TypeAscii, 1},
	typeShort:     {types.TypeShort, 2},
	typeLong:      {types.TypeLong, 4},
	typeRational:  {types.TypeRational, 8},
	typeSByte:     {types.TypeSByte, 1},
	typeUndefined: {types.TypeUndefined, 1},
	typeSShort:    {types.TypeSShort, 2},
	typeSLong:     {types.TypeSLong, 4},
	typeSRational: {types.TypeSRational, 8},
	typeFloat:     {types.TypeFloat, 4},
	typeDouble:    {types.TypeDouble, 8},
}

func fieldType(id types.TypeID) (uint16, bool) {
	for code, ft := range fieldTypes {
		if ft.id == id {
			return code, true
		}
	}
	return 0, false
}

func endianness(o types.ByteOrder) binary.Endianness {
	if o == types.LittleEndian {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// decodeValue renders the bytes of a field in its raw text form.
func decodeValue(typ uint16, data []byte, e binary.Endianness) string {
	size := fieldTypes[typ].size
	n := len(data) / size
	parts := make([]string, 0, n)

	switch typ {
	case typeAscii:
		if i := bytes.IndexByte(data, 0); i >= 0 {
			data = data[:i]
		}
		return string(data)
	case typeByte, typeUndefined:
		return value.FormatUndefined(data)
	case typeRational:
		r := make([]value.Rational, n)
		for i := range n {
			r[i] = value.Rational{
				Num: binary.Decode[uint32](data[i*8:], e),
				Den: binary.Decode[uint32](data[i*8+4:], e),
			}
		}
		return value.FormatRationals(r)
	case typeSRational:
		r := make([]value.SRational, n)
		for i := range n {
			r[i] = value.SRational{
				Num: int32(binary.Decode[uint32](data[i*8:], e)),
				Den: int32(binary.Decode[uint32](data[i*8+4:], e)),
			}
		}
		return value.FormatSRationals(r)
	}

	for i := range n {
		b := data[i*size:]
		switch typ {
		case typeShort:
			parts = append(parts, strconv.FormatUint(uint64(binary.Decode[uint16](b, e)), 10))
		case typeLong:
			parts = append(parts, strconv.FormatUint(uint64(binary.Decode[uint32](b, e)), 10))
		case typeSByte:
			parts = append(parts, strconv.Itoa(int(int8(b[0]))))
		case typeSShort:
			parts = append(parts, strconv.Itoa(int(int16(binary.Decode[uint16](b, e)))))
		case typeSLong:
			parts = append(parts, strconv.Itoa(int(int32(binary.Decode[uint32](b, e)))))
		case typeFloat:
			f := math.Float32frombits(binary.Decode[uint32](b, e))
			parts = append(parts, strconv.FormatFloat(float64(f), 'g', -1, 32))
		case typeDouble:
			f := math.Float64frombits(binary.Decode[uint64](b, e))
			parts = append(parts, strconv.FormatFloat(f, 'g', -1, 64))
		}
	}
	return strings.Join(parts, " ")
}

// encodeValue converts a raw text value to field bytes and returns the
// element count.
func encodeValue(typ uint16, raw string, e binary.Endianness) ([]byte, uint32, error) {
	var out []byte
	switch typ {
	case typeAscii:
		out = append([]byte(raw), 0)
		return out, uint32(len(out)), nil
	case typeByte, typeUndefined:
		b, err := value.ParseUndefined(raw)
		return b, uint32(len(b)), err
	case typeShort, typeLong:
		bits := 16
		if typ == typeLong {
			bits = 32
		}
		v, err := value.ParseUnsigned(raw, bits)
		if err != nil {
			return nil, 0, err
		}
		for _, n := range v {
			if typ == typeShort {
				out = binary.Encode(out, uint16(n), e)
			} else {
				out = binary.Encode(out, uint32(n), e)
			}
		}
		return out, uint32(len(v)), nil
	case typeSByte, typeSShort, typeSLong:
		bits := map[uint16]int{typeSByte: 8, typeSShort: 16, typeSLong: 32}[typ]
		v, err := value.ParseSigned(raw, bits)
		if err != nil {
			return nil, 0, err
		}
		for _, n := range v {
			switch typ {
			case typeSByte:
				out = append(out, byte(int8(n)))
			case typeSShort:
				out = binary.Encode(out, uint16(int16(n)), e)
			default:
				out = binary.Encode(out, uint32(int32(n)), e)
			}
		}
		return out, uint32(len(v)), nil
	case typeRational:
		r, err := value.ParseRationals(raw)
		if err != nil {
			return nil, 0, err
		}
		for _, x := range r {
			out = binary.Encode(out, x.Num, e)
			out = binary.Encode(out, x.Den, e)
		}
		return out, uint32(len(r)), nil
	case typeSRational:
		r, err := value.ParseSRationals(raw)
		if err != nil {
			return nil, 0, err
		}
		for _, x := range r {
			out = binary.Encode(out, uint32(x.Num), e)
			out = binary.Encode(out, uint32(x.Den), e)
		}
		return out, uint32(len(r)), nil
	case typeFloat, typeDouble:
		bits := 32
		if typ == typeDouble {
			bits = 64
		}
		f, err := value.ParseFloats(raw, bits)
		if err != nil {
			return nil, 0, err
		}
		for _, x := range f {
			if typ == typeFloat {
				out = binary.Encode(out, math.Float32bits(float32(x)), e)
			} else {
				out = binary.Encode(out, math.Float64bits(x), e)
			}
		}
		return out, uint32(len(f)), nil
	}
	return nil, 0, fmt.Errorf("unsupported field type %d", typ)
}

// Charset prefixes of comment fields.
var commentPrefixes = []struct {
	charset string
	prefix  string
}{
	{value.CharsetAscii, "ASCII\x00\x00\x00"},
	{value.CharsetJis, "JIS\x00\x00\x00\x00\x00"},
	{value.CharsetUnicode, "UNICODE\x00"},
	{value.CharsetUndefined, "\x00\x00\x00\x00\x00\x00\x00\x00"},
}

func commentEncoding(charset string, e binary.Endianness) encoding.Encoding {
	switch charset {
	case value.CharsetUnicode:
		if e == binary.LittleEndian {
			return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
		}
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	case value.CharsetJis:
		return japanese.ISO2022JP
	default:
		return encoding.Nop
	}
}

// decodeComment renders a comment field as `charset=<name> text`.
func decodeComment(data []byte, e binary.Endianness) string {
	if len(data) < 8 {
		return string(bytes.TrimRight(data, "\x00"))
	}
	charset := ""
	for _, p := range commentPrefixes {
		if string(data[:8]) == p.prefix {
			charset = p.charset
			break
		}
	}
	body := data[8:]
	if charset == "" {
		return string(bytes.TrimRight(data, "\x00"))
	}

	text, err := commentEncoding(charset, e).NewDecoder().Bytes(body)
	if err != nil {
		text = body
	}
	text = bytes.TrimRight(text, "\x00")
	return value.FormatComment(charset, string(text))
}

// encodeComment converts the raw comment form back to field bytes.
func encodeComment(raw string, e binary.Endianness) ([]byte, error) {
	charset, text, err := value.ParseComment(raw)
	if err != nil {
		return nil, err
	}
	var prefix string
	for _, p := range commentPrefixes {
		if p.charset == charset {
			prefix = p.prefix
		}
	}
	body, err := commentEncoding(charset, e).NewEncoder().Bytes([]byte(text))
	if err != nil {
		return nil, err
	}
	return append([]byte(prefix), body...), nil
}
