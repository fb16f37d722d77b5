package types

import (
	"fmt"
	"os"
)

// Preview is an embedded secondary image (thumbnail or larger preview).
//
// A Preview is a snapshot: it is never re-queried from the document it was
// taken from.
type Preview struct {
	// MIME type of the image data
	MIMEType string // "image/jpeg", "image/tiff", ...

	// Extension including the leading dot, e.g. ".jpg"
	Extension string

	// Size of the payload in bytes
	Size int

	// Dimensions (0 when they could not be determined)
	Width  int
	Height int

	data []byte
}

// NewPreview builds a Preview owning a private copy of data.
func NewPreview(mimeType, extension string, data []byte, width, height int) Preview {
	buf := make([]byte, len(data))
	copy(buf, data)
	return Preview{
		MIMEType:  mimeType,
		Extension: extension,
		Size:      len(buf),
		Width:     width,
		Height:    height,
		data:      buf,
	}
}

// Data returns a copy of the preview payload.
func (p Preview) Data() []byte {
	buf := make([]byte, len(p.data))
	copy(buf, p.data)
	return buf
}

// WriteFile writes the payload to path with the preview extension appended
// and returns the name of the written file.
func (p Preview) WriteFile(path string) (string, error) {
	name := path + p.Extension
	if err := os.WriteFile(name, p.data, 0o644); err != nil {
		return "", err
	}
	return name, nil
}

// String returns a short description, e.g. "image/jpeg 160x120 (5KB)".
func (p Preview) String() string {
	dims := ""
	if p.Width > 0 && p.Height > 0 {
		dims = fmt.Sprintf(" %dx%d", p.Width, p.Height)
	}
	return fmt.Sprintf("%s%s (%s)", p.MIMEType, dims, formatSize(p.Size))
}

// formatSize formats byte size in human-readable form.
func formatSize(bytes int) string {
	const (
		KB = 1024
		MB = 1024 * KB
	)

	switch {
	case bytes >= MB:
		return fmt.Sprintf("%.1fMB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%dKB", bytes/KB)
	default:
		return fmt.Sprintf("%dB", bytes)
	}
}
