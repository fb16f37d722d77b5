// Package exif reads and writes the Exif namespace as a TIFF structure:
// IFD0, the Exif, GPS and Interoperability sub-IFDs, and IFD1 with its
// JPEG thumbnail.
package exif

import (
	"bytes"
	"fmt"

	"github.com/simonhull/imagemeta/internal/binary"
	"github.com/simonhull/imagemeta/internal/codes"
	"github.com/simonhull/imagemeta/internal/metadata"
	"github.com/simonhull/imagemeta/internal/schema"
	"github.com/simonhull/imagemeta/internal/types"
)

const (
	headerSize = 8
	entrySize  = 12
	tiffMagic  = 42

	// maxEntries bounds the entry count of a single IFD.
	maxEntries = 4096
)

// Block is one decoded Exif block.
type Block struct {
	Data      *metadata.Container
	ByteOrder types.ByteOrder
	Warnings  []types.Warning
}

type decoder struct {
	sr      *binary.SafeReader
	order   binary.Endianness
	block   *Block
	visited map[uint32]bool
}

// Decode parses a TIFF structure. buf starts at the byte order mark.
//
// Unreadable entries and sub-IFDs are skipped with a warning. An invalid
// header or a directory that cannot be read at all is an error.
func Decode(buf []byte) (*Block, error) {
	const op = "exif.Decode"
	if len(buf) < headerSize {
		return nil, codes.New(op, codes.NotAnImage, "TIFF")
	}
	order, err := binary.ParseTIFFOrder(buf)
	if err != nil {
		return nil, codes.New(op, codes.NotAnImage, "TIFF")
	}

	d := &decoder{
		sr:      binary.NewSafeReader(bytes.NewReader(buf), int64(len(buf)), "exif"),
		order:   order,
		block:   &Block{Data: metadata.NewContainer(metadata.Exif)},
		visited: make(map[uint32]bool),
	}
	if order == binary.LittleEndian {
		d.block.ByteOrder = types.LittleEndian
	} else {
		d.block.ByteOrder = types.BigEndian
	}

	if binary.Decode[uint16](buf[2:], order) != tiffMagic {
		return nil, codes.New(op, codes.NotAnImage, "TIFF")
	}
	ifd0 := binary.Decode[uint32](buf[4:], order)

	next, err := d.readIFD(schema.GroupImage, ifd0)
	if err != nil {
		return nil, err
	}
	if next != 0 {
		if _, err := d.readIFD(schema.GroupThumbnail, next); err != nil {
			d.warn(fmt.Sprintf("IFD1 skipped: %v", err), int64(next))
		}
	}
	return d.block, nil
}

func (d *decoder) warn(msg string, off int64) {
	d.block.Warnings = append(d.block.Warnings, types.Warning{Stage: "exif", Message: msg, Offset: off})
}

type rawEntry struct {
	tag    uint16
	typ    uint16
	count  uint32
	offset int64 // offset of the value bytes
	data   []byte
}

// readIFD reads one directory into group and follows its sub-IFD pointers.
// It returns the offset of the next IFD in the chain.
func (d *decoder) readIFD(group string, off uint32) (uint32, error) {
	const op = "exif.readIFD"
	if d.visited[off] {
		return 0, codes.New(op, codes.CorruptedMetadata)
	}
	d.visited[off] = true

	cr := binary.NewChainReader(binary.NewReader(d.sr, int64(off)).WithOrder(d.order))
	count := binary.ReadChained[uint16](cr, "IFD entry count")
	if err := cr.Error(); err != nil {
		return 0, codes.New(op, codes.OffsetOutOfRange)
	}
	if count > maxEntries {
		return 0, codes.New(op, codes.TooManyTiffDirectoryEntries, group)
	}
	if int64(off)+2+int64(count)*entrySize+4 > d.sr.Size() {
		return 0, codes.New(op, codes.TiffDirectoryTooLarge)
	}

	entries := make([]rawEntry, 0, count)
	for i := range int(count) {
		at := int64(off) + 2 + int64(i)*entrySize
		e, err := d.readEntry(at)
		if err != nil {
			d.warn(fmt.Sprintf("%s entry %d skipped: %v", group, i, err), at)
			continue
		}
		entries = append(entries, e)
	}
	next, _ := binary.ReadEndian[uint32](d.sr, int64(off)+2+int64(count)*entrySize, "next IFD offset", d.order)

	var stored []rawEntry
	var handles []metadata.Handle
	for _, e := range entries {
		if sub, ok := subIFD(group, e.tag); ok && len(e.data) >= 4 {
			ptr := binary.Decode[uint32](e.data, d.order)
			if _, err := d.readIFD(sub, ptr); err != nil {
				d.warn(fmt.Sprintf("%s IFD skipped: %v", sub, err), int64(ptr))
			}
			continue
		}
		stored = append(stored, e)
		handles = append(handles, d.store(group, e))
	}
	if group == schema.GroupThumbnail {
		d.thumbnail(stored, handles)
	}
	return next, nil
}

func (d *decoder) readEntry(at int64) (rawEntry, error) {
	cr := binary.NewChainReader(binary.NewReader(d.sr, at).WithOrder(d.order))
	e := rawEntry{
		tag:   binary.ReadChained[uint16](cr, "tag"),
		typ:   binary.ReadChained[uint16](cr, "type"),
		count: binary.ReadChained[uint32](cr, "count"),
	}
	if err := cr.Error(); err != nil {
		return e, err
	}
	ft, ok := fieldTypes[e.typ]
	if !ok {
		return e, codes.New("exif.readEntry", codes.InvalidTypeValue, fmt.Sprintf("tag 0x%04x", e.tag))
	}

	size := uint64(e.count) * uint64(ft.size)
	if size > uint64(d.sr.Size()) {
		return e, codes.New("exif.readEntry", codes.OffsetOutOfRange)
	}
	e.offset = at + 8
	if size > 4 {
		ptr, err := binary.ReadEndian[uint32](d.sr, at+8, "value offset", d.order)
		if err != nil {
			return e, err
		}
		e.offset = int64(ptr)
	}
	data, err := d.sr.Bytes(e.offset, int(size), "entry value")
	if err != nil {
		return e, codes.New("exif.readEntry", codes.OffsetOutOfRange)
	}
	e.data = data
	return e, nil
}

func subIFD(group string, tag uint16) (string, bool) {
	switch {
	case group == schema.GroupImage && tag == schema.TagExifIFD:
		return schema.GroupPhoto, true
	case group == schema.GroupImage && tag == schema.TagGPSIFD:
		return schema.GroupGPS, true
	case group == schema.GroupPhoto && tag == schema.TagInteropIFD:
		return schema.GroupIop, true
	}
	return "", false
}

// store appends one entry to the container in its raw text form.
func (d *decoder) store(group string, e rawEntry) metadata.Handle {
	info := schema.ExifTag(group, e.tag)
	datum := metadata.Datum{
		Key:  schema.ExifKey{Info: info}.String(),
		Type: fieldTypes[e.typ].id,
	}
	if info.Type == types.TypeComment {
		datum.Raw = decodeComment(e.data, d.order)
	} else {
		datum.Raw = decodeValue(e.typ, e.data, d.order)
	}
	return d.block.Data.Append(datum)
}

// thumbnail loads the JPEG thumbnail bytes of IFD1 into the data area of
// its JPEGInterchangeFormat record.
func (d *decoder) thumbnail(entries []rawEntry, handles []metadata.Handle) {
	var off, length int64 = -1, -1
	var h metadata.Handle
	for i, e := range entries {
		var v int64
		switch {
		case e.typ == typeLong && len(e.data) >= 4:
			v = int64(binary.Decode[uint32](e.data, d.order))
		case e.typ == typeShort && len(e.data) >= 2:
			v = int64(binary.Decode[uint16](e.data, d.order))
		default:
			continue
		}
		switch e.tag {
		case schema.TagJPEGInterchange:
			off, h = v, handles[i]
		case schema.TagJPEGInterchangeLn:
			length = v
		}
	}
	if off < 0 {
		return
	}
	if length < 0 {
		d.warn("thumbnail length missing", off)
		return
	}
	data, err := d.sr.Bytes(off, int(length), "thumbnail")
	if err != nil {
		d.warn(fmt.Sprintf("thumbnail skipped: %v", err), off)
		return
	}
	d.block.Data.Datum(h).DataArea = data
}
