// Package jpeg walks JPEG marker segments and implements the JPEG codec:
// Exif and XMP in APP1, ICC profiles in APP2, IPTC in APP13 and the COM
// comment.
package jpeg

import (
	"fmt"
	"io"

	"github.com/simonhull/imagemeta/internal/binary"
	"github.com/simonhull/imagemeta/internal/codes"
)

// Markers.
const (
	markerSOI   = 0xD8
	markerEOI   = 0xD9
	markerSOS   = 0xDA
	markerAPP0  = 0xE0
	markerAPP1  = 0xE1
	markerAPP2  = 0xE2
	markerAPP13 = 0xED
	markerCOM   = 0xFE
)

// maxPayload is the largest payload a segment can carry after its
// two-byte length.
const maxPayload = 0xFFFF - 2

// Segment is one marker segment.
type Segment struct {
	Marker byte
	Offset int64 // offset of the 0xFF byte
	Data   []byte
}

// Name returns a short label for the marker, e.g. "APP1" or "SOF0".
func (s Segment) Name() string {
	m := s.Marker
	switch {
	case m >= 0xE0 && m <= 0xEF:
		return fmt.Sprintf("APP%d", m-0xE0)
	case m >= 0xC0 && m <= 0xCF && m != 0xC4 && m != 0xC8 && m != 0xCC:
		return fmt.Sprintf("SOF%d", m-0xC0)
	}
	switch m {
	case 0xC4:
		return "DHT"
	case 0xDB:
		return "DQT"
	case 0xDD:
		return "DRI"
	case markerSOS:
		return "SOS"
	case markerCOM:
		return "COM"
	}
	return fmt.Sprintf("0x%02X", m)
}

// isSOF reports whether the marker starts a frame.
func isSOF(m byte) bool {
	return m >= 0xC0 && m <= 0xCF && m != 0xC4 && m != 0xC8 && m != 0xCC
}

// standalone reports whether the marker carries no length or payload.
func standalone(m byte) bool {
	return m == 0x01 || m == markerEOI || (m >= 0xD0 && m <= 0xD7)
}

// Layout is the segment structure of a JPEG file up to the first scan.
type Layout struct {
	Segments []Segment

	// Scan is the offset of the SOS marker. Everything from here to the
	// end of the file is copied verbatim on write.
	Scan int64
}

// Walk reads the segments of a JPEG stream up to and including the first
// SOS header.
func Walk(r io.ReaderAt, size int64, path string) (*Layout, error) {
	const op = "jpeg.Walk"
	sr := binary.NewSafeReader(r, size, path)

	soi, err := sr.Bytes(0, 2, "SOI")
	if err != nil || soi[0] != 0xFF || soi[1] != markerSOI {
		return nil, codes.New(op, codes.NotAJpeg)
	}

	layout := &Layout{Scan: -1}
	off := int64(2)
	for off < size {
		at := off
		b, err := binary.Read[uint8](sr, off, "marker")
		if err != nil {
			return nil, codes.New(op, codes.FailedToReadImageData)
		}
		if b != 0xFF {
			return nil, codes.New(op, codes.NotAJpeg)
		}
		// Fill bytes may precede a marker.
		for b == 0xFF {
			off++
			if b, err = binary.Read[uint8](sr, off, "marker"); err != nil {
				return nil, codes.New(op, codes.FailedToReadImageData)
			}
		}
		m := b
		off++
		if m == 0x00 {
			return nil, codes.New(op, codes.NotAJpeg)
		}

		if m == markerEOI {
			layout.Segments = append(layout.Segments, Segment{Marker: m, Offset: at})
			return layout, nil
		}
		if standalone(m) {
			layout.Segments = append(layout.Segments, Segment{Marker: m, Offset: at})
			continue
		}

		length, err := binary.ReadBE[uint16](sr, off, "segment length")
		if err != nil || length < 2 {
			return nil, codes.New(op, codes.FailedToReadImageData)
		}
		data, err := sr.Bytes(off+2, int(length)-2, "segment data")
		if err != nil {
			return nil, codes.New(op, codes.FailedToReadImageData)
		}
		layout.Segments = append(layout.Segments, Segment{Marker: m, Offset: at, Data: data})
		off += int64(length)

		if m == markerSOS {
			layout.Scan = at
			return layout, nil
		}
	}
	return layout, nil
}

// appendSegment writes a marker segment, failing when data does not fit.
func appendSegment(out []byte, marker byte, data []byte, what string) ([]byte, error) {
	if len(data) > maxPayload {
		return nil, codes.New("jpeg.appendSegment", codes.TooLargeJpegSegment, what)
	}
	out = append(out, 0xFF, marker)
	out = binary.Encode(out, uint16(len(data)+2), binary.BigEndian)
	return append(out, data...), nil
}
