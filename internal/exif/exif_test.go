package exif

import (
	"bytes"
	"errors"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonhull/imagemeta/internal/binary"
	"github.com/simonhull/imagemeta/internal/metadata"
	"github.com/simonhull/imagemeta/internal/types"
)

func sample() *metadata.Container {
	c := metadata.NewContainer(metadata.Exif)
	c.Append(metadata.Datum{Key: "Exif.Image.Make", Type: types.TypeAscii, Raw: "Canon"})
	c.Append(metadata.Datum{Key: "Exif.Image.Orientation", Type: types.TypeShort, Raw: "6"})
	c.Append(metadata.Datum{Key: "Exif.Image.XResolution", Type: types.TypeRational, Raw: "72/1"})
	c.Append(metadata.Datum{Key: "Exif.Photo.ExposureTime", Type: types.TypeRational, Raw: "1/250"})
	c.Append(metadata.Datum{Key: "Exif.Photo.ExposureBiasValue", Type: types.TypeSRational, Raw: "-1/3"})
	c.Append(metadata.Datum{Key: "Exif.Photo.ExifVersion", Type: types.TypeUndefined, Raw: "48 50 51 48"})
	c.Append(metadata.Datum{Key: "Exif.Photo.UserComment", Type: types.TypeUndefined, Raw: "charset=Ascii hello world"})
	c.Append(metadata.Datum{Key: "Exif.Iop.InteroperabilityIndex", Type: types.TypeAscii, Raw: "R98"})
	c.Append(metadata.Datum{Key: "Exif.GPSInfo.GPSLatitudeRef", Type: types.TypeAscii, Raw: "N"})
	c.Append(metadata.Datum{Key: "Exif.GPSInfo.GPSLatitude", Type: types.TypeRational, Raw: "59/1 54/1 3000/100"})
	c.Append(metadata.Datum{Key: "Exif.Image.0xc000", Type: types.TypeSLong, Raw: "-7 8"})
	return c
}

func rawValues(c *metadata.Container) map[string]string {
	out := map[string]string{}
	for _, d := range c.Data() {
		out[d.Key] = d.Raw
	}
	return out
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	for _, order := range []types.ByteOrder{types.LittleEndian, types.BigEndian} {
		t.Run(order.String(), func(t *testing.T) {
			src := sample()
			buf, err := Encode(src, order)
			require.NoError(t, err)

			block, err := Decode(buf)
			require.NoError(t, err)
			assert.Equal(t, order, block.ByteOrder)
			assert.Empty(t, block.Warnings)
			assert.Equal(t, rawValues(src), rawValues(block.Data))

			// Types survive, and the comment is stored as Undefined.
			for _, d := range block.Data.Data() {
				if d.Key == "Exif.Photo.UserComment" {
					assert.Equal(t, types.TypeUndefined, d.Type)
				}
				if d.Key == "Exif.Photo.ExposureBiasValue" {
					assert.Equal(t, types.TypeSRational, d.Type)
				}
			}

			again, err := Encode(block.Data, order)
			require.NoError(t, err)
			assert.Equal(t, buf, again, "encoding is stable")
		})
	}
}

func TestEncode_PointersAreNotRecords(t *testing.T) {
	buf, err := Encode(sample(), types.LittleEndian)
	require.NoError(t, err)
	block, err := Decode(buf)
	require.NoError(t, err)

	for _, d := range block.Data.Data() {
		assert.NotEqual(t, "Exif.Image.0x8769", d.Key)
		assert.NotEqual(t, "Exif.Image.0x8825", d.Key)
		assert.NotEqual(t, "Exif.Photo.0xa005", d.Key)
	}
}

func TestEncode_Empty(t *testing.T) {
	buf, err := Encode(metadata.NewContainer(metadata.Exif), types.LittleEndian)
	require.NoError(t, err)
	assert.Nil(t, buf)
}

func TestEncode_InvalidRaw(t *testing.T) {
	c := metadata.NewContainer(metadata.Exif)
	c.Append(metadata.Datum{Key: "Exif.Image.Orientation", Type: types.TypeShort, Raw: "up"})
	_, err := Encode(c, types.BigEndian)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrInvalidValue))
}

func TestThumbnail_RoundTrip(t *testing.T) {
	thumb := []byte{0xFF, 0xD8, 0xFF, 0xDB, 0x00, 0x03, 0x01, 0xFF, 0xD9}

	c := metadata.NewContainer(metadata.Exif)
	c.Append(metadata.Datum{Key: "Exif.Image.Make", Type: types.TypeAscii, Raw: "Nikon"})
	c.Append(metadata.Datum{Key: "Exif.Thumbnail.Compression", Type: types.TypeShort, Raw: "6"})
	h := c.Append(metadata.Datum{Key: "Exif.Thumbnail.JPEGInterchangeFormat", Type: types.TypeLong, Raw: "0", DataArea: thumb})
	c.Append(metadata.Datum{Key: "Exif.Thumbnail.JPEGInterchangeFormatLength", Type: types.TypeLong, Raw: "0"})

	buf, err := Encode(c, types.BigEndian)
	require.NoError(t, err)
	assert.Equal(t, thumb, buf[len(buf)-len(thumb):])
	assert.NotEqual(t, "0", c.Datum(h).Raw, "offset is rewritten")

	block, err := Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, rawValues(c), rawValues(block.Data))

	var got []byte
	for _, d := range block.Data.All() {
		if d.Key == "Exif.Thumbnail.JPEGInterchangeFormat" {
			got = d.DataArea
		}
	}
	assert.Equal(t, thumb, got)
}

// allocated reports the bytes allocated while fn runs.
func allocated(fn func()) uint64 {
	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	fn()
	runtime.ReadMemStats(&after)
	return after.TotalAlloc - before.TotalAlloc
}

func TestThumbnail_LengthPastEnd(t *testing.T) {
	thumb := []byte{0xFF, 0xD8, 0xFF, 0xD9}
	c := metadata.NewContainer(metadata.Exif)
	c.Append(metadata.Datum{Key: "Exif.Image.Make", Type: types.TypeAscii, Raw: "Nikon"})
	c.Append(metadata.Datum{Key: "Exif.Thumbnail.JPEGInterchangeFormat", Type: types.TypeLong, Raw: "0", DataArea: thumb})
	c.Append(metadata.Datum{Key: "Exif.Thumbnail.JPEGInterchangeFormatLength", Type: types.TypeLong, Raw: "0"})
	buf, err := Encode(c, types.BigEndian)
	require.NoError(t, err)

	// Claim a 2 GiB thumbnail in a block of a few dozen bytes.
	entry := bytes.Index(buf, []byte{0x02, 0x02, 0x00, 0x04, 0x00, 0x00, 0x00, 0x01})
	require.GreaterOrEqual(t, entry, 0)
	copy(buf[entry+8:], []byte{0x7F, 0xFF, 0xFF, 0xFF})

	var block *Block
	n := allocated(func() {
		block, err = Decode(buf)
	})
	require.NoError(t, err)
	assert.Less(t, n, uint64(1<<20))

	var messages []string
	for _, w := range block.Warnings {
		messages = append(messages, w.Message)
	}
	require.NotEmpty(t, messages)
	assert.Contains(t, strings.Join(messages, "\n"), "thumbnail skipped")
	for _, d := range block.Data.All() {
		assert.Nil(t, d.DataArea, d.Key)
	}
}

func TestDecode_EntryCountPastEnd(t *testing.T) {
	c := metadata.NewContainer(metadata.Exif)
	c.Append(metadata.Datum{Key: "Exif.Image.Make", Type: types.TypeAscii, Raw: "Nikon Corporation"})
	buf, err := Encode(c, types.BigEndian)
	require.NoError(t, err)

	// Make is ASCII (type 2); inflate its count far beyond the block.
	entry := bytes.Index(buf, []byte{0x01, 0x0F, 0x00, 0x02})
	require.GreaterOrEqual(t, entry, 0)
	copy(buf[entry+4:], []byte{0x7F, 0xFF, 0xFF, 0xFF})

	n := allocated(func() {
		_, _ = Decode(buf)
	})
	assert.Less(t, n, uint64(1<<20))
}

func TestComment_Charsets(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"ascii", "charset=Ascii plain"},
		{"unicode", "charset=Unicode Grüße ✓"},
		{"jis", "charset=Jis こんにちは"},
		{"undefined", "no charset"},
	}
	for _, tt := range tests {
		for _, e := range []binary.Endianness{binary.LittleEndian, binary.BigEndian} {
			t.Run(tt.name+"/"+e.String(), func(t *testing.T) {
				data, err := encodeComment(tt.raw, e)
				require.NoError(t, err)
				assert.Len(t, data[:8], 8)
				assert.Equal(t, tt.raw, decodeComment(data, e))
			})
		}
	}

	_, err := encodeComment("charset=Klingon x", binary.BigEndian)
	assert.Error(t, err)
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
		kind types.Kind
	}{
		{"too short", []byte("II*"), types.KindMalformedInput},
		{"bad order", []byte("XX*\x00\x08\x00\x00\x00"), types.KindMalformedInput},
		{"bad magic", []byte("II\x2b\x00\x08\x00\x00\x00"), types.KindMalformedInput},
		{"IFD0 out of range", []byte("II*\x00\xff\x00\x00\x00"), types.KindCorruption},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.buf)
			require.Error(t, err)
			assert.Equal(t, tt.kind, types.KindOf(err))
		})
	}
}

func TestDecode_LoopIsSkipped(t *testing.T) {
	// IFD0 with no entries whose next pointer is itself.
	buf := []byte{
		'I', 'I', 42, 0, 8, 0, 0, 0,
		0, 0,
		8, 0, 0, 0,
	}
	block, err := Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, 0, block.Data.Len())
	require.Len(t, block.Warnings, 1)
	assert.Contains(t, block.Warnings[0].Message, "IFD1")
}

func TestDecode_UnknownFieldTypeWarns(t *testing.T) {
	buf := []byte{
		'M', 'M', 0, 42, 0, 0, 0, 8,
		0, 2,
		0x01, 0x0f, 0, 2, 0, 0, 0, 2, 'A', 0, 0, 0, // Make = "A"
		0x01, 0x10, 0, 99, 0, 0, 0, 1, 0, 0, 0, 0, // Model with type 99
		0, 0, 0, 0,
	}
	block, err := Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Exif.Image.Make": "A"}, rawValues(block.Data))
	require.Len(t, block.Warnings, 1)
	assert.Equal(t, "exif", block.Warnings[0].Stage)
}
