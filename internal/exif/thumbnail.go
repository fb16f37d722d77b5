package exif

import (
	"bytes"
	"image"
	_ "image/jpeg" // thumbnail dimensions

	"github.com/simonhull/imagemeta/internal/metadata"
	"github.com/simonhull/imagemeta/internal/schema"
	"github.com/simonhull/imagemeta/internal/types"
)

// Thumbnail returns the IFD1 JPEG thumbnail of c as a preview, or nothing
// when c has none.
func Thumbnail(c *metadata.Container) []types.Preview {
	h, ok := c.FindFirst(schema.ThumbnailOffsetKey)
	if !ok {
		return nil
	}
	data := c.Datum(h).DataArea
	if len(data) == 0 {
		return nil
	}
	var w, hgt int
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		w, hgt = cfg.Width, cfg.Height
	}
	return []types.Preview{types.NewPreview("image/jpeg", ".jpg", data, w, hgt)}
}
