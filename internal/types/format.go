package types

import (
	"bytes"
	"io"

	"github.com/simonhull/imagemeta/internal/binary"
)

// Format represents the detected image container format.
type Format int

const (
	// FormatUnknown represents an unknown or unsupported format.
	FormatUnknown Format = iota
	// FormatJPEG represents JPEG/JFIF/Exif files.
	FormatJPEG
	// FormatPNG represents PNG files.
	FormatPNG
	// FormatTIFF represents TIFF files (and TIFF-based raw formats).
	FormatTIFF
	// FormatWebP represents RIFF WebP files.
	FormatWebP
	// FormatGIF represents GIF files.
	FormatGIF
)

var formatNames = [...]string{
	FormatUnknown: "Unknown",
	FormatJPEG:    "JPEG",
	FormatPNG:     "PNG",
	FormatTIFF:    "TIFF",
	FormatWebP:    "WebP",
	FormatGIF:     "GIF",
}

func (f Format) String() string {
	if f < 0 || int(f) >= len(formatNames) {
		return formatNames[FormatUnknown]
	}
	return formatNames[f]
}

// MIMEType returns the MIME type of the main image for this format.
func (f Format) MIMEType() string {
	switch f {
	case FormatJPEG:
		return "image/jpeg"
	case FormatPNG:
		return "image/png"
	case FormatTIFF:
		return "image/tiff"
	case FormatWebP:
		return "image/webp"
	case FormatGIF:
		return "image/gif"
	default:
		return ""
	}
}

// Extensions returns common file extensions for this format.
func (f Format) Extensions() []string {
	switch f {
	case FormatJPEG:
		return []string{".jpg", ".jpeg", ".jpe"}
	case FormatPNG:
		return []string{".png"}
	case FormatTIFF:
		return []string{".tif", ".tiff", ".dng", ".nef", ".cr2"}
	case FormatWebP:
		return []string{".webp"}
	case FormatGIF:
		return []string{".gif"}
	default:
		return nil
	}
}

// DetectFormat determines the image format by examining magic bytes.
//
// FormatUnknown with a nil error means the data was readable but matched
// no known signature. A non-nil error means the header could not be read.
func DetectFormat(r io.ReaderAt, size int64, path string) (Format, error) {
	if size < 4 {
		return FormatUnknown, nil
	}

	sr := binary.NewSafeReader(r, size, path)

	n := int64(12)
	if size < n {
		n = size
	}
	magic := make([]byte, n)
	if err := sr.ReadAt(magic, 0, "file magic bytes"); err != nil {
		return FormatUnknown, err
	}

	switch {
	case len(magic) >= 3 && magic[0] == 0xFF && magic[1] == 0xD8 && magic[2] == 0xFF:
		return FormatJPEG, nil
	case len(magic) >= 8 && bytes.Equal(magic[:8], []byte("\x89PNG\r\n\x1a\n")):
		return FormatPNG, nil
	case bytes.HasPrefix(magic, []byte("II*\x00")), bytes.HasPrefix(magic, []byte("MM\x00*")):
		return FormatTIFF, nil
	case len(magic) >= 12 && string(magic[:4]) == "RIFF" && string(magic[8:12]) == "WEBP":
		return FormatWebP, nil
	case bytes.HasPrefix(magic, []byte("GIF87a")), bytes.HasPrefix(magic, []byte("GIF89a")):
		return FormatGIF, nil
	}

	return FormatUnknown, nil
}
