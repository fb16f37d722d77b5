package imagemeta

import (
	"bytes"
	"os"
	"strconv"
	"strings"

	"github.com/simonhull/imagemeta/internal/codes"
	"github.com/simonhull/imagemeta/internal/exif"
	"github.com/simonhull/imagemeta/internal/metadata"
	"github.com/simonhull/imagemeta/internal/schema"
	"github.com/simonhull/imagemeta/internal/types"
)

const thumbnailGroup = "Exif." + schema.GroupThumbnail + "."

// Thumbnail is the JPEG thumbnail stored in the Exif IFD1 of a document.
// Every method reads the current Exif container, so changes made through
// other tags are visible.
type Thumbnail struct {
	doc *Document
}

// Thumbnail returns the thumbnail accessor of the document. It is created
// on first use and shared afterwards.
func (d *Document) Thumbnail() (*Thumbnail, error) {
	if _, err := d.image("Thumbnail"); err != nil {
		return nil, err
	}
	if d.thumb == nil {
		d.thumb = &Thumbnail{doc: d}
	}
	return d.thumb, nil
}

func (t *Thumbnail) preview() (*types.Preview, error) {
	c, err := t.doc.ExifData()
	if err != nil {
		return nil, err
	}
	previews := exif.Thumbnail(c)
	if len(previews) == 0 {
		return nil, nil
	}
	return &previews[0], nil
}

// MIMEType returns "image/jpeg", or "" when there is no thumbnail.
func (t *Thumbnail) MIMEType() (string, error) {
	p, err := t.preview()
	if err != nil || p == nil {
		return "", err
	}
	return p.MIMEType, nil
}

// Extension returns ".jpg", or "" when there is no thumbnail.
func (t *Thumbnail) Extension() (string, error) {
	p, err := t.preview()
	if err != nil || p == nil {
		return "", err
	}
	return p.Extension, nil
}

// Data returns a copy of the thumbnail image, nil when there is none.
func (t *Thumbnail) Data() ([]byte, error) {
	p, err := t.preview()
	if err != nil || p == nil {
		return nil, err
	}
	return p.Data(), nil
}

// WriteFile writes the thumbnail to path with its extension appended and
// returns the file name. It fails with KindInvalidKey when there is no
// thumbnail.
func (t *Thumbnail) WriteFile(path string) (string, error) {
	const op = "Thumbnail.WriteFile"
	p, err := t.preview()
	if err != nil {
		return "", err
	}
	if p == nil {
		return "", codes.New(op, codes.KeyNotFound, schema.ThumbnailOffsetKey)
	}
	name, err := p.WriteFile(path)
	if err != nil {
		return "", codes.Wrap(op, codes.FileOpenFailed, err, path+p.Extension, "wb", reason(err))
	}
	return name, nil
}

// Erase removes the thumbnail and every other IFD1 record.
func (t *Thumbnail) Erase() error {
	c, err := t.doc.ExifData()
	if err != nil {
		return err
	}
	eraseThumbnail(c)
	return nil
}

func eraseThumbnail(c *metadata.Container) {
	for h, d := range c.All() {
		if strings.HasPrefix(d.Key, thumbnailGroup) {
			_ = c.Erase(h)
		}
	}
}

// SetFromFile replaces the thumbnail with the JPEG file at path.
func (t *Thumbnail) SetFromFile(path string) error {
	const op = "Thumbnail.SetFromFile"
	if _, err := t.doc.ExifData(); err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return codes.Wrap(op, codes.FileOpenFailed, err, path, "rb", reason(err))
	}
	return t.set(op, data)
}

// SetFromBytes replaces the thumbnail with the JPEG image in data.
func (t *Thumbnail) SetFromBytes(data []byte) error {
	return t.set("Thumbnail.SetFromBytes", data)
}

func (t *Thumbnail) set(op string, data []byte) error {
	c, err := t.doc.ExifData()
	if err != nil {
		return err
	}
	format, err := types.DetectFormat(bytes.NewReader(data), int64(len(data)), "")
	if err != nil || format != FormatJPEG {
		return codes.New(op, codes.NotAJpeg)
	}
	if limit := state().maxThumbnailSize; limit > 0 && int64(len(data)) > limit {
		return codes.New(op, codes.DataAreaValueTooLarge, strconv.Itoa(len(data)))
	}

	eraseThumbnail(c)
	c.Append(metadata.Datum{Key: thumbnailGroup + "Compression", Type: types.TypeShort, Raw: "6"})
	c.Append(metadata.Datum{Key: schema.ThumbnailOffsetKey, Type: types.TypeLong, Raw: "0", DataArea: bytes.Clone(data)})
	c.Append(metadata.Datum{Key: schema.ThumbnailLengthKey, Type: types.TypeLong, Raw: strconv.Itoa(len(data))})
	t.doc.log.Debug("thumbnail replaced", "size", len(data))
	return nil
}
