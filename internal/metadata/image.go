package metadata

import (
	"github.com/simonhull/imagemeta/internal/types"
)

// Image is everything a codec decodes from one file, and everything it
// needs to write the metadata back.
type Image struct {
	Exif *Container
	Iptc *Container
	Xmp  *Container

	// ByteOrder of the Exif block. Invalid when the file carries none.
	ByteOrder types.ByteOrder

	Comment string
	ICC     []byte

	// XMPPacket is the packet as found in the file. Encoders regenerate it
	// from Xmp.
	XMPPacket string

	Width  int
	Height int

	Warnings []types.Warning
}

// NewImage returns an Image with three empty containers.
func NewImage() *Image {
	return &Image{
		Exif: NewContainer(Exif),
		Iptc: NewContainer(Iptc),
		Xmp:  NewContainer(Xmp),
	}
}

// Warn records a non-fatal decode issue.
func (img *Image) Warn(stage, message string, offset int64) {
	img.Warnings = append(img.Warnings, types.Warning{Stage: stage, Message: message, Offset: offset})
}

// Clone returns a deep copy.
func (img *Image) Clone() *Image {
	cp := *img
	cp.Exif = img.Exif.Clone()
	cp.Iptc = img.Iptc.Clone()
	cp.Xmp = img.Xmp.Clone()
	cp.ICC = append([]byte(nil), img.ICC...)
	cp.Warnings = append([]types.Warning(nil), img.Warnings...)
	return &cp
}
