package jpeg

import (
	"bytes"
	"fmt"
	"io"

	"github.com/simonhull/imagemeta/internal/binary"
	"github.com/simonhull/imagemeta/internal/codes"
	"github.com/simonhull/imagemeta/internal/exif"
	"github.com/simonhull/imagemeta/internal/iptc"
	"github.com/simonhull/imagemeta/internal/metadata"
	"github.com/simonhull/imagemeta/internal/registry"
	"github.com/simonhull/imagemeta/internal/types"
	"github.com/simonhull/imagemeta/internal/xmp"
)

// Segment signatures.
const (
	exifSignature = "Exif\x00\x00"
	xmpSignature  = "http://ns.adobe.com/xap/1.0/\x00"
	iccSignature  = "ICC_PROFILE\x00"
)

// iccChunk is the payload an APP2 ICC segment can carry after its
// signature and sequence bytes.
const iccChunk = maxPayload - len(iccSignature) - 2

type codec struct{}

func init() {
	registry.Register(types.FormatJPEG, &codec{})
}

// Decode extracts Exif, IPTC, XMP, the ICC profile and the comment of a
// JPEG file. A broken metadata block is reported as a warning and leaves
// its namespace empty.
func (c *codec) Decode(r io.ReaderAt, size int64, path string) (*metadata.Image, error) {
	layout, err := Walk(r, size, path)
	if err != nil {
		return nil, err
	}

	img := metadata.NewImage()
	var icc [][]byte
	exifSeen, xmpSeen := false, false

	for _, seg := range layout.Segments {
		switch {
		case seg.Marker == markerAPP1 && bytes.HasPrefix(seg.Data, []byte(exifSignature)):
			if exifSeen {
				img.Warn("jpeg", "additional Exif segment ignored", seg.Offset)
				continue
			}
			exifSeen = true
			block, err := exif.Decode(seg.Data[len(exifSignature):])
			if err != nil {
				img.Warn("exif", err.Error(), seg.Offset)
				continue
			}
			img.Exif = block.Data
			img.ByteOrder = block.ByteOrder
			img.Warnings = append(img.Warnings, block.Warnings...)

		case seg.Marker == markerAPP1 && bytes.HasPrefix(seg.Data, []byte(xmpSignature)):
			if xmpSeen {
				// Extended XMP is not merged.
				img.Warn("jpeg", "additional XMP segment ignored", seg.Offset)
				continue
			}
			xmpSeen = true
			packet := seg.Data[len(xmpSignature):]
			img.XMPPacket = string(packet)
			data, warnings, err := xmp.Decode(packet)
			if err != nil {
				img.Warn("xmp", err.Error(), seg.Offset)
				continue
			}
			img.Xmp = data
			img.Warnings = append(img.Warnings, warnings...)

		case seg.Marker == markerAPP2 && bytes.HasPrefix(seg.Data, []byte(iccSignature)):
			chunk := seg.Data[len(iccSignature):]
			if len(chunk) < 2 || chunk[0] == 0 {
				img.Warn("jpeg", "malformed ICC_PROFILE segment", seg.Offset)
				continue
			}
			seq, count := int(chunk[0]), int(chunk[1])
			if icc == nil {
				icc = make([][]byte, count)
			}
			if count != len(icc) || seq > count {
				img.Warn("jpeg", "inconsistent ICC_PROFILE sequence", seg.Offset)
				continue
			}
			icc[seq-1] = chunk[2:]

		case seg.Marker == markerAPP13 && bytes.HasPrefix(seg.Data, []byte(iptc.PhotoshopSignature)):
			c.decodeIPTC(img, seg)

		case seg.Marker == markerCOM:
			img.Comment = string(bytes.TrimRight(seg.Data, "\x00"))

		case isSOF(seg.Marker):
			if len(seg.Data) >= 5 {
				img.Height = int(binary.Decode[uint16](seg.Data[1:], binary.BigEndian))
				img.Width = int(binary.Decode[uint16](seg.Data[3:], binary.BigEndian))
			}
		}
	}

	if icc != nil {
		profile, ok := joinICC(icc)
		if !ok {
			img.Warn("jpeg", "incomplete ICC profile ignored", 0)
		} else {
			img.ICC = profile
		}
	}
	return img, nil
}

func (c *codec) decodeIPTC(img *metadata.Image, seg Segment) {
	res, err := iptc.ParseResources(seg.Data[len(iptc.PhotoshopSignature):])
	if err != nil {
		img.Warn("iptc", err.Error(), seg.Offset)
		return
	}
	iim, ok := iptc.FindIPTC(res)
	if !ok {
		return
	}
	data, warnings, err := iptc.Decode(iim)
	if err != nil {
		img.Warn("iptc", err.Error(), seg.Offset)
		return
	}
	img.Iptc = data
	img.Warnings = append(img.Warnings, warnings...)
}

func joinICC(chunks [][]byte) ([]byte, bool) {
	var out []byte
	for _, ch := range chunks {
		if ch == nil {
			return nil, false
		}
		out = append(out, ch...)
	}
	return out, true
}

// Encode writes the original file to w with its metadata segments replaced
// by those of img. Everything from the first scan onwards is copied as is.
//
// The new segments follow SOI and any leading APP0 (JFIF) segments in this
// order: Exif, XMP, ICC profile, Photoshop resources, comment. Other
// Photoshop resources of the original APP13 are kept.
func (c *codec) Encode(w io.Writer, img *metadata.Image, original io.ReaderAt, originalSize int64) error {
	const op = "jpeg.Encode"
	layout, err := Walk(original, originalSize, "")
	if err != nil {
		return err
	}
	if layout.Scan < 0 {
		return codes.New(op, codes.NoImageInInputData)
	}

	out := []byte{0xFF, markerSOI}
	rest := layout.Segments
	for len(rest) > 0 && rest[0].Marker == markerAPP0 {
		if out, err = appendSegment(out, markerAPP0, rest[0].Data, "APP0"); err != nil {
			return err
		}
		rest = rest[1:]
	}

	order := img.ByteOrder
	if order == types.InvalidByteOrder {
		order = types.LittleEndian
	}
	block, err := exif.Encode(img.Exif, order)
	if err != nil {
		return err
	}
	if block != nil {
		if out, err = appendSegment(out, markerAPP1, append([]byte(exifSignature), block...), "Exif"); err != nil {
			return err
		}
	}

	packet, err := xmp.Encode(img.Xmp)
	if err != nil {
		return err
	}
	if packet != "" {
		if out, err = appendSegment(out, markerAPP1, append([]byte(xmpSignature), packet...), "XMP"); err != nil {
			return err
		}
	}

	if out, err = appendICC(out, img.ICC); err != nil {
		return err
	}

	var resources []iptc.Resource
	for _, seg := range rest {
		if seg.Marker == markerAPP13 && bytes.HasPrefix(seg.Data, []byte(iptc.PhotoshopSignature)) {
			if res, err := iptc.ParseResources(seg.Data[len(iptc.PhotoshopSignature):]); err == nil {
				resources = res
			}
			break
		}
	}
	iim, err := iptc.Encode(img.Iptc)
	if err != nil {
		return err
	}
	resources = iptc.ReplaceIPTC(resources, iim)
	if len(resources) > 0 {
		payload := append([]byte(iptc.PhotoshopSignature), iptc.EncodeResources(resources)...)
		if out, err = appendSegment(out, markerAPP13, payload, "Photoshop"); err != nil {
			return err
		}
	}

	if img.Comment != "" {
		if out, err = appendSegment(out, markerCOM, []byte(img.Comment), "comment"); err != nil {
			return err
		}
	}

	for _, seg := range rest {
		if replaced(seg) || seg.Marker == markerSOS {
			continue
		}
		if standalone(seg.Marker) {
			out = append(out, 0xFF, seg.Marker)
			continue
		}
		if out, err = appendSegment(out, seg.Marker, seg.Data, seg.Name()); err != nil {
			return err
		}
	}

	if _, err := w.Write(out); err != nil {
		return codes.New(op, codes.ImageWriteFailed)
	}
	if _, err := io.Copy(w, io.NewSectionReader(original, layout.Scan, originalSize-layout.Scan)); err != nil {
		return codes.New(op, codes.ImageWriteFailed)
	}
	return nil
}

// replaced reports whether Encode regenerates the segment.
func replaced(seg Segment) bool {
	switch seg.Marker {
	case markerAPP1:
		return bytes.HasPrefix(seg.Data, []byte(exifSignature)) || bytes.HasPrefix(seg.Data, []byte(xmpSignature))
	case markerAPP2:
		return bytes.HasPrefix(seg.Data, []byte(iccSignature))
	case markerAPP13:
		return bytes.HasPrefix(seg.Data, []byte(iptc.PhotoshopSignature))
	case markerCOM:
		return true
	}
	return false
}

func appendICC(out, profile []byte) ([]byte, error) {
	if len(profile) == 0 {
		return out, nil
	}
	count := (len(profile) + iccChunk - 1) / iccChunk
	if count > 255 {
		return nil, codes.New("jpeg.appendICC", codes.TooLargeJpegSegment, "ICC profile")
	}
	var err error
	for i := 0; i < count; i++ {
		end := min((i+1)*iccChunk, len(profile))
		payload := append([]byte(iccSignature), byte(i+1), byte(count))
		payload = append(payload, profile[i*iccChunk:end]...)
		if out, err = appendSegment(out, markerAPP2, payload, "ICC profile"); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Previews returns the Exif JPEG thumbnail, if any.
func (c *codec) Previews(img *metadata.Image) ([]types.Preview, error) {
	return exif.Thumbnail(img.Exif), nil
}

// String is used by diagnostics.
func (s Segment) String() string {
	return fmt.Sprintf("%s at %d (%d bytes)", s.Name(), s.Offset, len(s.Data))
}
