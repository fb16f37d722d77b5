// Package registry manages the metadata codecs for image formats.
package registry

import (
	"io"

	"github.com/simonhull/imagemeta/internal/metadata"
	"github.com/simonhull/imagemeta/internal/types"
)

// Codec is the interface all format codecs implement.
type Codec interface {
	// Decode extracts the metadata of an image file.
	Decode(r io.ReaderAt, size int64, path string) (*metadata.Image, error)

	// Encode writes the file to w with the metadata of img.
	// original provides read access to the source file for copying image data.
	Encode(w io.Writer, img *metadata.Image, original io.ReaderAt, originalSize int64) error
}

// PreviewExtractor is an optional interface for codecs that expose embedded
// preview images.
type PreviewExtractor interface {
	// Previews lists the previews of a decoded image, smallest first.
	Previews(img *metadata.Image) ([]types.Preview, error)
}

// codecs maps formats to their codecs.
var codecs = make(map[types.Format]Codec)

// Register registers a codec for a format.
// This is called by format packages during initialization (init functions).
func Register(format types.Format, codec Codec) {
	codecs[format] = codec
}

// Get returns the codec for a given format.
// Returns nil if no codec is registered for the format.
func Get(format types.Format) Codec {
	return codecs[format]
}
