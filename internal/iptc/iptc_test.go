package iptc

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonhull/imagemeta/internal/metadata"
	"github.com/simonhull/imagemeta/internal/types"
)

func container(data ...metadata.Datum) *metadata.Container {
	c := metadata.NewContainer(metadata.Iptc)
	for _, d := range data {
		c.Append(d)
	}
	return c
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	src := container(
		metadata.Datum{Key: "Iptc.Application2.Keywords", Type: types.TypeString, Raw: "fjord"},
		metadata.Datum{Key: "Iptc.Envelope.ModelVersion", Type: types.TypeShort, Raw: "4"},
		metadata.Datum{Key: "Iptc.Application2.Keywords", Type: types.TypeString, Raw: "Bergen"},
		metadata.Datum{Key: "Iptc.Application2.Caption", Type: types.TypeString, Raw: "Ferry at dawn, ü"},
		metadata.Datum{Key: "Iptc.Application2.DateCreated", Type: types.TypeDate, Raw: "2024-06-01"},
		metadata.Datum{Key: "Iptc.Application2.TimeCreated", Type: types.TypeTime, Raw: "05:12:00+02:00"},
	)

	buf, err := Encode(src)
	require.NoError(t, err)

	got, warnings, err := Decode(buf)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	// Envelope datasets come first; order within a record is kept.
	var keys, raws []string
	for _, d := range got.Data() {
		keys = append(keys, d.Key)
		raws = append(raws, d.Raw)
	}
	assert.Equal(t, []string{
		"Iptc.Envelope.ModelVersion",
		"Iptc.Application2.Keywords",
		"Iptc.Application2.Keywords",
		"Iptc.Application2.Caption",
		"Iptc.Application2.DateCreated",
		"Iptc.Application2.TimeCreated",
	}, keys)
	assert.Equal(t, []string{"4", "fjord", "Bergen", "Ferry at dawn, ü", "2024-06-01", "05:12:00+02:00"}, raws)
}

func TestEncode_DateTimeWireFormat(t *testing.T) {
	buf, err := Encode(container(
		metadata.Datum{Key: "Iptc.Application2.DateCreated", Type: types.TypeDate, Raw: "2024-06-01"},
	))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x1c, 2, 55, 0, 8, '2', '0', '2', '4', '0', '6', '0', '1'}, buf)
}

func TestEncode_ExtendedLength(t *testing.T) {
	long := make([]byte, 0x9000)
	for i := range long {
		long[i] = 'a'
	}
	src := container(metadata.Datum{Key: "Iptc.Application2.Caption", Type: types.TypeString, Raw: string(long)})
	buf, err := Encode(src)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x1c, 2, 120, 0x80, 0x04, 0, 0, 0x90, 0}, buf[:9])

	got, _, err := Decode(buf)
	require.NoError(t, err)
	h, ok := got.FindFirst("Iptc.Application2.Caption")
	require.True(t, ok)
	assert.Len(t, got.Datum(h).Raw, 0x9000)
}

func TestEncode_Empty(t *testing.T) {
	buf, err := Encode(container())
	require.NoError(t, err)
	assert.Nil(t, buf)
}

func TestDecode_Latin1Fallback(t *testing.T) {
	buf := []byte{0x1c, 2, 90, 0, 4, 'K', 0xf6, 'l', 'n'}
	got, _, err := Decode(buf)
	require.NoError(t, err)
	h, ok := got.FindFirst("Iptc.Application2.City")
	require.True(t, ok)
	assert.Equal(t, "Köln", got.Datum(h).Raw)
}

func TestDecode_UnknownRecordWarns(t *testing.T) {
	buf := []byte{
		0x1c, 3, 10, 0, 1, 'x',
		0x1c, 2, 25, 0, 2, 'o', 'k',
	}
	got, warnings, err := Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Len())
	require.Len(t, warnings, 1)
	assert.Equal(t, "iptc", warnings[0].Stage)
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
	}{
		{"no marker", []byte{0x00, 2, 25, 0, 1, 'x'}},
		{"length past end", []byte{0x1c, 2, 25, 0, 9, 'x'}},
		{"extended length past end", []byte("\x1c\x02\x19\x80\x04\x7f\xff\xff\xffab")},
		{"extended length on unknown record", []byte("\x1c00\x80\x04\xff\xff0f")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Decode(tt.buf)
			require.Error(t, err)
			assert.Equal(t, types.KindCorruption, types.KindOf(err))
		})
	}
}

func TestDecode_ExtendedLengthDoesNotAllocate(t *testing.T) {
	buf := []byte("\x1c\x02\x19\x80\x04\x7f\xff\xff\xffab")

	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	_, _, err := Decode(buf)
	runtime.ReadMemStats(&after)

	require.Error(t, err)
	assert.Less(t, after.TotalAlloc-before.TotalAlloc, uint64(1<<20))
}

func TestCharset(t *testing.T) {
	tests := []struct {
		name string
		c    *metadata.Container
		want string
	}{
		{"empty", container(), "ASCII"},
		{"ascii", container(metadata.Datum{Key: "Iptc.Application2.City", Type: types.TypeString, Raw: "Oslo"}), "ASCII"},
		{"utf-8 text", container(metadata.Datum{Key: "Iptc.Application2.City", Type: types.TypeString, Raw: "Tromsø"}), "UTF-8"},
		{"declared", container(
			metadata.Datum{Key: "Iptc.Envelope.CharacterSet", Type: types.TypeUndefined, Raw: "27 37 71"},
			metadata.Datum{Key: "Iptc.Application2.City", Type: types.TypeString, Raw: "Oslo"},
		), "UTF-8"},
		{"invalid", container(metadata.Datum{Key: "Iptc.Application2.City", Type: types.TypeString, Raw: "\xff\xfe"}), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Charset(tt.c))
		})
	}
}

func TestResources_ReplaceKeepsOthers(t *testing.T) {
	res := []Resource{
		{ID: 0x03ed, Data: []byte{0, 72, 0, 1, 0, 1}},
		{ID: ResourceIPTC, Name: "x", Data: []byte{0x1c, 2, 25, 0, 1, 'a'}},
		{ID: 0x040c, Data: []byte{1, 2, 3}},
	}
	section := EncodeResources(res)

	parsed, err := ParseResources(section)
	require.NoError(t, err)
	assert.Equal(t, res, parsed)

	iim, ok := FindIPTC(parsed)
	require.True(t, ok)
	assert.Equal(t, []byte{0x1c, 2, 25, 0, 1, 'a'}, iim)

	replaced := ReplaceIPTC(parsed, []byte{0x1c, 2, 25, 0, 1, 'b'})
	require.Len(t, replaced, 3)
	assert.Equal(t, uint16(0x03ed), replaced[0].ID)
	assert.Equal(t, []byte{0x1c, 2, 25, 0, 1, 'b'}, replaced[1].Data)
	assert.Equal(t, "x", replaced[1].Name)

	removed := ReplaceIPTC(parsed, nil)
	require.Len(t, removed, 2)
	_, ok = FindIPTC(removed)
	assert.False(t, ok)

	added := ReplaceIPTC(removed, []byte{0x1c, 2, 25, 0, 1, 'c'})
	assert.Equal(t, ResourceIPTC, added[len(added)-1].ID)
}

func TestParseResources_Corrupt(t *testing.T) {
	_, err := ParseResources([]byte("8BIX\x04\x04\x00\x00\x00\x00\x00\x00"))
	require.Error(t, err)
	assert.Equal(t, types.KindCorruption, types.KindOf(err))
}
