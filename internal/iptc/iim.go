// Package iptc reads and writes IPTC IIM datasets and the Photoshop image
// resource blocks that carry them in JPEG files.
package iptc

import (
	"bytes"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/simonhull/imagemeta/internal/binary"
	"github.com/simonhull/imagemeta/internal/codes"
	"github.com/simonhull/imagemeta/internal/metadata"
	"github.com/simonhull/imagemeta/internal/schema"
	"github.com/simonhull/imagemeta/internal/types"
	"github.com/simonhull/imagemeta/internal/value"
)

const marker = 0x1c

// utf8Designation is the ISO 2022 escape sequence for UTF-8 in 1:90.
const utf8Designation = "\x1b%G"

// Decode parses an IIM block into a container. Datasets of unknown records
// are skipped with a warning. A block that does not start with a tag
// marker is an error.
func Decode(buf []byte) (*metadata.Container, []types.Warning, error) {
	const op = "iptc.Decode"
	c := metadata.NewContainer(metadata.Iptc)
	if len(buf) == 0 {
		return c, nil, nil
	}
	if buf[0] != marker {
		return nil, nil, codes.New(op, codes.CorruptedMetadata)
	}

	sr := binary.NewSafeReader(bytes.NewReader(buf), int64(len(buf)), "iptc")
	r := binary.NewReader(sr, 0)

	type entry struct {
		info schema.IptcDataSetInfo
		data []byte
	}
	var entries []entry
	var warnings []types.Warning
	utf8Declared := false

	for r.Remaining() >= 5 {
		at := r.Offset()
		cr := binary.NewChainReader(r)
		m := binary.ReadChained[uint8](cr, "tag marker")
		rec := binary.ReadChained[uint8](cr, "record")
		num := binary.ReadChained[uint8](cr, "dataset")
		length := uint32(binary.ReadChained[uint16](cr, "dataset length"))
		if err := cr.Error(); err != nil {
			return nil, nil, codes.New(op, codes.CorruptedMetadata)
		}
		if m != marker {
			// Trailing padding is common after the last dataset.
			break
		}
		if length&0x8000 != 0 {
			n := int(length & 0x7fff)
			if n == 0 || n > 4 {
				return nil, nil, codes.New(op, codes.CorruptedMetadata)
			}
			ext := cr.Bytes(n, "extended length")
			length = 0
			for _, b := range ext {
				length = length<<8 | uint32(b)
			}
		}
		data := cr.Bytes(int(length), "dataset data")
		if err := cr.Error(); err != nil {
			return nil, nil, codes.New(op, codes.OffsetOutOfRange)
		}

		if rec != schema.RecordEnvelope && rec != schema.RecordApplication2 {
			warnings = append(warnings, types.Warning{
				Stage:   "iptc",
				Message: fmt.Sprintf("dataset %d:%d of unsupported record skipped", rec, num),
				Offset:  at,
			})
			continue
		}
		info := schema.IptcDataSet(rec, num)
		if rec == schema.RecordEnvelope && num == schema.DataSetCharacterSet && string(data) == utf8Designation {
			utf8Declared = true
		}
		entries = append(entries, entry{info: info, data: data})
	}

	for _, e := range entries {
		raw, err := decodeValue(e.info.Type, e.data, utf8Declared)
		if err != nil {
			warnings = append(warnings, types.Warning{
				Stage:   "iptc",
				Message: fmt.Sprintf("%s: %v", schema.IptcKey{Info: e.info}, err),
			})
			raw = value.FormatUndefined(e.data)
		}
		c.Append(metadata.Datum{Key: schema.IptcKey{Info: e.info}.String(), Type: e.info.Type, Raw: raw})
	}
	return c, warnings, nil
}

func decodeValue(typ types.TypeID, data []byte, utf8Declared bool) (string, error) {
	switch typ {
	case types.TypeShort:
		if len(data) != 2 {
			return "", fmt.Errorf("short of %d bytes", len(data))
		}
		return strconv.Itoa(int(binary.Decode[uint16](data, binary.BigEndian))), nil
	case types.TypeUndefined:
		return value.FormatUndefined(data), nil
	case types.TypeDate:
		d, err := value.ParseDate(string(data))
		if err != nil {
			return "", err
		}
		return value.FormatDate(d), nil
	case types.TypeTime:
		tm, err := value.ParseTime(string(data))
		if err != nil {
			return "", err
		}
		return value.FormatTime(tm), nil
	default:
		return decodeString(data, utf8Declared), nil
	}
}

// decodeString reads text as UTF-8 when declared or valid, and as Latin-1
// otherwise.
func decodeString(data []byte, utf8Declared bool) string {
	if utf8Declared || utf8.Valid(data) {
		return string(data)
	}
	s, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return string(data)
	}
	return string(s)
}

// Encode serialises c as an IIM block. Datasets are ordered by record and
// keep container order within a record. Text is written as UTF-8.
func Encode(c *metadata.Container) ([]byte, error) {
	const op = "iptc.Encode"
	data := c.Data()
	if len(data) == 0 {
		return nil, nil
	}

	type entry struct {
		info schema.IptcDataSetInfo
		raw  string
	}
	entries := make([]entry, 0, len(data))
	for _, d := range data {
		k, err := schema.ParseIptcKey(d.Key)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry{info: k.Info, raw: d.Raw})
	}
	slices.SortStableFunc(entries, func(a, b entry) int { return int(a.info.Record) - int(b.info.Record) })

	var out []byte
	for _, e := range entries {
		payload, err := encodeValue(e.info.Type, e.raw)
		if err != nil {
			return nil, codes.New(op, codes.InvalidValue, e.raw)
		}
		out = append(out, marker, e.info.Record, e.info.Number)
		if len(payload) < 0x8000 {
			out = binary.Encode(out, uint16(len(payload)), binary.BigEndian)
		} else {
			out = binary.Encode(out, uint16(0x8004), binary.BigEndian)
			out = binary.Encode(out, uint32(len(payload)), binary.BigEndian)
		}
		out = append(out, payload...)
	}
	return out, nil
}

func encodeValue(typ types.TypeID, raw string) ([]byte, error) {
	switch typ {
	case types.TypeShort:
		v, err := value.ParseUnsigned(raw, 16)
		if err != nil || len(v) != 1 {
			return nil, fmt.Errorf("invalid short %q", raw)
		}
		return binary.Encode(nil, uint16(v[0]), binary.BigEndian), nil
	case types.TypeUndefined:
		return value.ParseUndefined(raw)
	case types.TypeDate:
		d, err := value.ParseDate(raw)
		if err != nil {
			return nil, err
		}
		return []byte(d.Format("20060102")), nil
	case types.TypeTime:
		tm, err := value.ParseTime(raw)
		if err != nil {
			return nil, err
		}
		return []byte(tm.Format("150405-0700")), nil
	default:
		return []byte(raw), nil
	}
}

// Charset names the character set of the IPTC values in c: "UTF-8" when
// 1:90 designates UTF-8 or every value is valid UTF-8 with some non-ASCII
// text, "ASCII" when every value is 7-bit, and "" otherwise.
func Charset(c *metadata.Container) string {
	const charsetKey = "Iptc.Envelope.CharacterSet"
	ascii := true
	for _, d := range c.Data() {
		if d.Key == charsetKey {
			if b, err := value.ParseUndefined(d.Raw); err == nil && string(b) == utf8Designation {
				return "UTF-8"
			}
			continue
		}
		if d.Type == types.TypeUndefined || d.Type == types.TypeShort {
			continue
		}
		if !utf8.ValidString(d.Raw) {
			return ""
		}
		if strings.IndexFunc(d.Raw, func(r rune) bool { return r >= utf8.RuneSelf }) >= 0 {
			ascii = false
		}
	}
	if ascii {
		return "ASCII"
	}
	return "UTF-8"
}
