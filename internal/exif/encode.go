package exif

import (
	"slices"
	"strconv"

	"github.com/simonhull/imagemeta/internal/binary"
	"github.com/simonhull/imagemeta/internal/codes"
	"github.com/simonhull/imagemeta/internal/metadata"
	"github.com/simonhull/imagemeta/internal/schema"
	"github.com/simonhull/imagemeta/internal/types"
)

type field struct {
	tag   uint16
	typ   uint16
	count uint32
	data  []byte
}

type directory struct {
	group  string
	fields []field
	offset uint32
}

func (d *directory) size() uint32 {
	n := uint32(2 + entrySize*len(d.fields) + 4)
	for _, f := range d.fields {
		if len(f.data) > 4 {
			n += uint32(len(f.data) + len(f.data)%2)
		}
	}
	return n
}

func (d *directory) has(tag uint16) bool {
	return slices.ContainsFunc(d.fields, func(f field) bool { return f.tag == tag })
}

func (d *directory) set(tag uint16, v uint32, e binary.Endianness) {
	for i := range d.fields {
		if d.fields[i].tag == tag {
			d.fields[i].data = binary.Encode(nil, v, e)
			return
		}
	}
	d.fields = append(d.fields, field{tag: tag, typ: typeLong, count: 1, data: binary.Encode(nil, v, e)})
}

// Encode serialises c as a TIFF structure in the given byte order. An empty
// container encodes to nil.
//
// Sub-IFD pointers and the thumbnail offset are recomputed. The raw values
// of the thumbnail offset and length records are updated to what was
// written, so a decode of the output reads back the same values.
func Encode(c *metadata.Container, order types.ByteOrder) ([]byte, error) {
	const op = "exif.Encode"
	if c.Empty() {
		return nil, nil
	}
	e := endianness(order)

	dirs := map[string]*directory{}
	for _, g := range schema.ExifGroups() {
		dirs[g] = &directory{group: g}
	}

	var thumb []byte
	var thumbHandle metadata.Handle
	var thumbLenHandle *metadata.Handle
	for h, d := range c.All() {
		k, err := schema.ParseExifKey(d.Key)
		if err != nil {
			return nil, err
		}
		info := k.Info
		if _, ptr := subIFD(info.Group, info.Tag); ptr {
			continue
		}
		dir := dirs[info.Group]
		if dir.has(info.Tag) {
			continue
		}

		if info.Group == schema.GroupThumbnail {
			switch info.Tag {
			case schema.TagJPEGInterchange:
				thumb, thumbHandle = d.DataArea, h
				continue
			case schema.TagJPEGInterchangeLn:
				thumbLenHandle = &h
				continue
			}
		}

		f, err := encodeField(info, d, e)
		if err != nil {
			return nil, codes.New(op, codes.InvalidValue, d.Key+" "+d.Raw)
		}
		dir.fields = append(dir.fields, f)
	}

	if len(thumb) > 0 {
		ifd1 := dirs[schema.GroupThumbnail]
		ifd1.set(schema.TagJPEGInterchange, 0, e)
		ifd1.set(schema.TagJPEGInterchangeLn, uint32(len(thumb)), e)
	}

	ifd0, photo, iop, gps, ifd1 := dirs[schema.GroupImage], dirs[schema.GroupPhoto], dirs[schema.GroupIop], dirs[schema.GroupGPS], dirs[schema.GroupThumbnail]
	hasIop := len(iop.fields) > 0
	hasPhoto := len(photo.fields) > 0 || hasIop
	hasGPS := len(gps.fields) > 0
	hasIFD1 := len(ifd1.fields) > 0

	// Placeholders first, so directory sizes are final before layout.
	if hasPhoto {
		ifd0.set(schema.TagExifIFD, 0, e)
	}
	if hasGPS {
		ifd0.set(schema.TagGPSIFD, 0, e)
	}
	if hasIop {
		photo.set(schema.TagInteropIFD, 0, e)
	}

	layout := []*directory{ifd0}
	if hasPhoto {
		layout = append(layout, photo)
	}
	if hasIop {
		layout = append(layout, iop)
	}
	if hasGPS {
		layout = append(layout, gps)
	}
	if hasIFD1 {
		layout = append(layout, ifd1)
	}

	pos := uint32(headerSize)
	for _, d := range layout {
		d.offset = pos
		pos += d.size()
	}
	thumbOffset := pos

	if hasPhoto {
		ifd0.set(schema.TagExifIFD, photo.offset, e)
	}
	if hasGPS {
		ifd0.set(schema.TagGPSIFD, gps.offset, e)
	}
	if hasIop {
		photo.set(schema.TagInteropIFD, iop.offset, e)
	}
	if len(thumb) > 0 {
		ifd1.set(schema.TagJPEGInterchange, thumbOffset, e)
	}

	out := make([]byte, 0, int(pos)+len(thumb))
	out = append(out, e.String()...)
	out = binary.Encode(out, uint16(tiffMagic), e)
	out = binary.Encode(out, uint32(headerSize), e)
	for _, d := range layout {
		var next uint32
		if d == ifd0 && hasIFD1 {
			next = ifd1.offset
		}
		out = d.append(out, next, e)
	}
	out = append(out, thumb...)

	if len(thumb) > 0 {
		c.Datum(thumbHandle).Raw = strconv.FormatUint(uint64(thumbOffset), 10)
		if thumbLenHandle != nil {
			c.Datum(*thumbLenHandle).Raw = strconv.Itoa(len(thumb))
		}
	}
	return out, nil
}

func encodeField(info schema.ExifTagInfo, d *metadata.Datum, e binary.Endianness) (field, error) {
	typ, ok := fieldType(d.Type)
	if !ok {
		typ, ok = fieldType(info.Type)
	}
	if !ok {
		typ = typeUndefined
	}

	if info.Type == types.TypeComment {
		data, err := encodeComment(d.Raw, e)
		if err != nil {
			return field{}, err
		}
		return field{tag: info.Tag, typ: typeUndefined, count: uint32(len(data)), data: data}, nil
	}

	data, count, err := encodeValue(typ, d.Raw, e)
	if err != nil {
		return field{}, err
	}
	return field{tag: info.Tag, typ: typ, count: count, data: data}, nil
}

// append writes the directory at its assigned offset. Values that do not
// fit the entry follow the directory, word aligned.
func (d *directory) append(out []byte, next uint32, e binary.Endianness) []byte {
	slices.SortFunc(d.fields, func(a, b field) int { return int(a.tag) - int(b.tag) })

	dataOff := d.offset + uint32(2+entrySize*len(d.fields)+4)
	var data []byte

	out = binary.Encode(out, uint16(len(d.fields)), e)
	for _, f := range d.fields {
		out = binary.Encode(out, f.tag, e)
		out = binary.Encode(out, f.typ, e)
		out = binary.Encode(out, f.count, e)
		if len(f.data) <= 4 {
			var inline [4]byte
			copy(inline[:], f.data)
			out = append(out, inline[:]...)
			continue
		}
		out = binary.Encode(out, dataOff+uint32(len(data)), e)
		data = append(data, f.data...)
		if len(f.data)%2 == 1 {
			data = append(data, 0)
		}
	}
	out = binary.Encode(out, next, e)
	return append(out, data...)
}
