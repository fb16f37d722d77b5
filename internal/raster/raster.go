// Package raster implements read-only codecs for PNG, GIF, TIFF and WebP.
//
// Metadata is extracted where the container carries it (PNG eXIf, iTXt and
// iCCP chunks; WebP EXIF, XMP and ICCP chunks; the TIFF structure itself).
// Writing is not supported for any of these formats.
package raster

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"image"
	_ "image/gif" // dimensions
	_ "image/png" // dimensions
	"io"

	_ "golang.org/x/image/tiff" // dimensions
	_ "golang.org/x/image/webp" // dimensions

	"github.com/simonhull/imagemeta/internal/binary"
	"github.com/simonhull/imagemeta/internal/codes"
	"github.com/simonhull/imagemeta/internal/exif"
	"github.com/simonhull/imagemeta/internal/metadata"
	"github.com/simonhull/imagemeta/internal/registry"
	"github.com/simonhull/imagemeta/internal/types"
	"github.com/simonhull/imagemeta/internal/xmp"
)

const (
	pngSignature = "\x89PNG\r\n\x1a\n"
	xmpKeyword   = "XML:com.adobe.xmp"
)

// maxChunk bounds a single PNG or WebP chunk read into memory.
const maxChunk = 64 << 20

type codec struct {
	format types.Format
}

func init() {
	for _, f := range []types.Format{types.FormatPNG, types.FormatGIF, types.FormatTIFF, types.FormatWebP} {
		registry.Register(f, &codec{format: f})
	}
}

// Decode reads the dimensions and whatever metadata the format carries.
func (c *codec) Decode(r io.ReaderAt, size int64, path string) (*metadata.Image, error) {
	const op = "raster.Decode"
	img := metadata.NewImage()

	cfg, _, err := image.DecodeConfig(io.NewSectionReader(r, 0, size))
	if err != nil {
		return nil, codes.New(op, codes.FileContainsUnknownImageType, path)
	}
	img.Width, img.Height = cfg.Width, cfg.Height

	sr := binary.NewSafeReader(r, size, path)
	switch c.format {
	case types.FormatPNG:
		err = decodePNG(sr, img)
	case types.FormatWebP:
		err = decodeWebP(sr, img)
	case types.FormatTIFF:
		err = decodeTIFF(sr, img)
	}
	if err != nil {
		return nil, err
	}
	return img, nil
}

// Encode always fails: these formats are read-only.
func (c *codec) Encode(io.Writer, *metadata.Image, io.ReaderAt, int64) error {
	return codes.New("raster.Encode", codes.WritingImageFormatUnsupported, c.format.String())
}

// Previews returns the IFD1 thumbnail of TIFF files.
func (c *codec) Previews(img *metadata.Image) ([]types.Preview, error) {
	return exif.Thumbnail(img.Exif), nil
}

func decodeTIFF(sr *binary.SafeReader, img *metadata.Image) error {
	buf, err := sr.Bytes(0, int(sr.Size()), "TIFF file")
	if err != nil {
		return codes.New("raster.decodeTIFF", codes.FailedToReadImageData)
	}
	block, err := exif.Decode(buf)
	if err != nil {
		return err
	}
	img.Exif = block.Data
	img.ByteOrder = block.ByteOrder
	img.Warnings = append(img.Warnings, block.Warnings...)
	return nil
}

func decodePNG(sr *binary.SafeReader, img *metadata.Image) error {
	r := binary.NewReader(sr, int64(len(pngSignature)))
	for r.Remaining() >= 12 {
		at := r.Offset()
		cr := binary.NewChainReader(r)
		length := binary.ReadChained[uint32](cr, "chunk length")
		kind := cr.String(4, "chunk type")
		if err := cr.Error(); err != nil {
			return codes.New("raster.decodePNG", codes.FailedToReadImageData)
		}
		if kind == "IEND" {
			break
		}
		if kind == "IDAT" || length > maxChunk {
			r.Skip(int64(length) + 4)
			continue
		}
		data := cr.Bytes(int(length), "chunk data")
		r.Skip(4) // CRC
		if cr.Error() != nil {
			img.Warn("png", fmt.Sprintf("truncated %s chunk", kind), at)
			break
		}

		switch kind {
		case "eXIf":
			exifBlock(img, data, at)
		case "iTXt":
			if bytes.HasPrefix(data, []byte(xmpKeyword+"\x00")) {
				pngXMP(img, data[len(xmpKeyword)+1:], at)
			}
		case "tEXt":
			if text, ok := bytes.CutPrefix(data, []byte("Comment\x00")); ok {
				img.Comment = string(text)
			}
		case "iCCP":
			if i := bytes.IndexByte(data, 0); i >= 0 && i+2 <= len(data) {
				profile, err := inflate(data[i+2:])
				if err != nil {
					img.Warn("png", "unreadable iCCP profile: "+err.Error(), at)
					continue
				}
				img.ICC = profile
			}
		}
	}
	return nil
}

// pngXMP reads the text of an iTXt chunk following its keyword.
func pngXMP(img *metadata.Image, data []byte, at int64) {
	if len(data) < 2 {
		img.Warn("png", "short iTXt chunk", at)
		return
	}
	compressed := data[0] == 1
	rest := data[2:]
	// Language tag and translated keyword.
	for range 2 {
		i := bytes.IndexByte(rest, 0)
		if i < 0 {
			img.Warn("png", "malformed iTXt chunk", at)
			return
		}
		rest = rest[i+1:]
	}
	if compressed {
		var err error
		if rest, err = inflate(rest); err != nil {
			img.Warn("png", "unreadable XMP: "+err.Error(), at)
			return
		}
	}
	xmpBlock(img, rest, at)
}

func inflate(data []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(io.LimitReader(zr, maxChunk))
}

func decodeWebP(sr *binary.SafeReader, img *metadata.Image) error {
	r := binary.NewReader(sr, 12).WithOrder(binary.LittleEndian)
	for r.Remaining() >= 8 {
		at := r.Offset()
		cr := binary.NewChainReader(r)
		kind := cr.String(4, "chunk fourcc")
		length := binary.ReadChained[uint32](cr, "chunk size")
		if err := cr.Error(); err != nil {
			return codes.New("raster.decodeWebP", codes.FailedToReadImageData)
		}
		padded := int64(length) + int64(length&1)
		if (kind != "EXIF" && kind != "XMP " && kind != "ICCP") || length > maxChunk {
			r.Skip(padded)
			continue
		}
		data := cr.Bytes(int(length), "chunk data")
		if cr.Error() != nil {
			img.Warn("webp", fmt.Sprintf("truncated %s chunk", kind), at)
			break
		}
		r.Skip(padded - int64(length))

		switch kind {
		case "EXIF":
			exifBlock(img, bytes.TrimPrefix(data, []byte("Exif\x00\x00")), at)
		case "XMP ":
			xmpBlock(img, data, at)
		case "ICCP":
			img.ICC = data
		}
	}
	return nil
}

func exifBlock(img *metadata.Image, data []byte, at int64) {
	block, err := exif.Decode(data)
	if err != nil {
		img.Warn("exif", err.Error(), at)
		return
	}
	img.Exif = block.Data
	img.ByteOrder = block.ByteOrder
	img.Warnings = append(img.Warnings, block.Warnings...)
}

func xmpBlock(img *metadata.Image, packet []byte, at int64) {
	img.XMPPacket = string(packet)
	data, warnings, err := xmp.Decode(packet)
	if err != nil {
		img.Warn("xmp", err.Error(), at)
		return
	}
	img.Xmp = data
	img.Warnings = append(img.Warnings, warnings...)
}
