package imagemeta

import (
	"slices"

	"github.com/simonhull/imagemeta/internal/codes"
	"github.com/simonhull/imagemeta/internal/metadata"
	"github.com/simonhull/imagemeta/internal/schema"
	"github.com/simonhull/imagemeta/internal/types"
)

// ExifTag is one record of the Exif namespace.
type ExifTag = metadata.ExifTag

// IptcTag is one IPTC dataset together with all of its values.
type IptcTag = metadata.IptcTag

// XmpTag is one record of the XMP namespace.
type XmpTag = metadata.XmpTag

// TypeID names the representation type of a value ("Ascii", "XmpBag", ...).
type TypeID = types.TypeID

// LangAlt is one language alternative of a LangAlt XMP value.
type LangAlt = types.LangAlt

// NewExifTag returns a detached Exif tag, e.g. for "Exif.Image.Artist".
// Bind it to a document with Document.SetExifTag.
func NewExifTag(key string) (*ExifTag, error) {
	return metadata.NewExifTag(key)
}

// NewIptcTag returns a detached IPTC tag, e.g. for
// "Iptc.Application2.Keywords".
func NewIptcTag(key string) (*IptcTag, error) {
	return metadata.NewIptcTag(key)
}

// NewXmpTag returns a detached XMP tag, e.g. for "Xmp.dc.subject".
func NewXmpTag(key string) (*XmpTag, error) {
	return metadata.NewXmpTag(key)
}

// ExifKeys lists the distinct Exif keys in document order.
func (d *Document) ExifKeys() ([]string, error) {
	c, err := d.ExifData()
	if err != nil {
		return nil, err
	}
	return slices.Collect(c.Keys()), nil
}

// ExifTag returns the tag stored under key, bound to the document. It
// fails with KindInvalidKey when the key is malformed or not set.
func (d *Document) ExifTag(key string) (*ExifTag, error) {
	c, err := d.ExifData()
	if err != nil {
		return nil, err
	}
	tag, err := metadata.AttachExifTag(key, c, d.img.ByteOrder)
	if err != nil {
		return nil, codes.Classify("ExifTag", err)
	}
	return tag, nil
}

// SetExifTag stores tag in the document and binds it there.
func (d *Document) SetExifTag(tag *ExifTag) error {
	return codes.Classify("SetExifTag", tag.SetParent(d))
}

// DeleteExifTag removes the first record stored under key.
func (d *Document) DeleteExifTag(key string) error {
	const op = "DeleteExifTag"
	c, err := d.ExifData()
	if err != nil {
		return err
	}
	k, err := schema.ParseExifKey(key)
	if err != nil {
		return codes.Classify(op, err)
	}
	return codes.Classify(op, c.EraseFirst(k.String()))
}

// IptcKeys lists the distinct IPTC keys in document order. A repeated
// dataset appears once.
func (d *Document) IptcKeys() ([]string, error) {
	c, err := d.IptcData()
	if err != nil {
		return nil, err
	}
	return slices.Collect(c.Keys()), nil
}

// IptcTag returns the tag holding every value stored under key. It fails
// with KindNotRepeatable when a non-repeatable dataset holds several
// values.
func (d *Document) IptcTag(key string) (*IptcTag, error) {
	c, err := d.IptcData()
	if err != nil {
		return nil, err
	}
	tag, err := metadata.AttachIptcTag(key, c)
	if err != nil {
		return nil, codes.Classify("IptcTag", err)
	}
	return tag, nil
}

// SetIptcTag stores the values of tag in the document, replacing those
// under the same key, and binds it there.
func (d *Document) SetIptcTag(tag *IptcTag) error {
	return codes.Classify("SetIptcTag", tag.SetParent(d))
}

// DeleteIptcTag removes every value stored under key.
func (d *Document) DeleteIptcTag(key string) error {
	const op = "DeleteIptcTag"
	c, err := d.IptcData()
	if err != nil {
		return err
	}
	k, err := schema.ParseIptcKey(key)
	if err != nil {
		return codes.Classify(op, err)
	}
	return codes.Classify(op, c.EraseAll(k.String()))
}

// XmpKeys lists the distinct XMP keys in document order.
func (d *Document) XmpKeys() ([]string, error) {
	c, err := d.XmpData()
	if err != nil {
		return nil, err
	}
	return slices.Collect(c.Keys()), nil
}

// XmpTag returns the tag stored under key, bound to the document.
func (d *Document) XmpTag(key string) (*XmpTag, error) {
	c, err := d.XmpData()
	if err != nil {
		return nil, err
	}
	tag, err := metadata.AttachXmpTag(key, c)
	if err != nil {
		return nil, codes.Classify("XmpTag", err)
	}
	return tag, nil
}

// SetXmpTag stores tag in the document and binds it there.
func (d *Document) SetXmpTag(tag *XmpTag) error {
	return codes.Classify("SetXmpTag", tag.SetParent(d))
}

// DeleteXmpTag removes the first record stored under key.
func (d *Document) DeleteXmpTag(key string) error {
	const op = "DeleteXmpTag"
	c, err := d.XmpData()
	if err != nil {
		return err
	}
	k, err := schema.ParseXmpKey(key)
	if err != nil {
		return codes.Classify(op, err)
	}
	return codes.Classify(op, c.EraseFirst(k.String()))
}
