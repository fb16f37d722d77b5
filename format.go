package imagemeta

import (
	"io"

	"github.com/simonhull/imagemeta/internal/types"
)

// Format is the detected image container format.
type Format = types.Format

// Image formats.
const (
	FormatUnknown = types.FormatUnknown
	FormatJPEG    = types.FormatJPEG
	FormatPNG     = types.FormatPNG
	FormatTIFF    = types.FormatTIFF
	FormatWebP    = types.FormatWebP
	FormatGIF     = types.FormatGIF
)

// DetectFormat identifies the format of r from its magic bytes.
func DetectFormat(r io.ReaderAt, size int64, path string) (Format, error) {
	return types.DetectFormat(r, size, path)
}

// ByteOrder is the byte order of the Exif block.
type ByteOrder = types.ByteOrder

// Byte orders.
const (
	InvalidByteOrder = types.InvalidByteOrder
	LittleEndian     = types.LittleEndian
	BigEndian        = types.BigEndian
)
