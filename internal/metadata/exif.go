package metadata

import (
	"github.com/simonhull/imagemeta/internal/codes"
	"github.com/simonhull/imagemeta/internal/schema"
	"github.com/simonhull/imagemeta/internal/types"
	"github.com/simonhull/imagemeta/internal/value"
)

// Parent is anything that owns the three containers a record can be bound
// to. Documents implement it.
type Parent interface {
	ExifData() (*Container, error)
	IptcData() (*Container, error)
	XmpData() (*Container, error)
	ByteOrder() (types.ByteOrder, error)
}

// binding is either an owned datum (detached) or a handle into a container
// (attached).
type binding struct {
	owned  *Datum
	parent *Container
	handle Handle
}

func (b *binding) datum() *Datum {
	if b.parent == nil {
		return b.owned
	}
	return b.parent.Datum(b.handle)
}

func (b *binding) attached() bool {
	return b.parent != nil
}

func (b *binding) attach(c *Container, h Handle) {
	b.owned = nil
	b.parent = c
	b.handle = h
}

// ExifTag is one record of the Exif namespace.
type ExifTag struct {
	key   schema.ExifKey
	typ   types.TypeID
	order types.ByteOrder
	binding
}

// NewExifTag returns a detached tag for key with an empty value.
func NewExifTag(key string) (*ExifTag, error) {
	k, err := schema.ParseExifKey(key)
	if err != nil {
		return nil, err
	}
	t := &ExifTag{key: k, typ: k.Info.Type}
	t.owned = &Datum{Key: k.String(), Type: t.storedType()}
	return t, nil
}

// AttachExifTag binds a tag to the first record under key in c. The key must
// be present.
func AttachExifTag(key string, c *Container, order types.ByteOrder) (*ExifTag, error) {
	k, err := schema.ParseExifKey(key)
	if err != nil {
		return nil, err
	}
	h, ok := c.FindFirst(k.String())
	if !ok {
		return nil, codes.New("AttachExifTag", codes.KeyNotFound, key)
	}

	t := &ExifTag{key: k, typ: k.Info.Type, order: order}
	t.attach(c, h)
	t.resolveType()
	return t, nil
}

// resolveType prefers the observed type of the stored entry over the
// declared one, except for Comment which is always kept as declared.
func (t *ExifTag) resolveType() {
	if !t.attached() || t.key.Info.Type == types.TypeComment {
		return
	}
	if d := t.datum(); d != nil && d.Type != "" {
		t.typ = d.Type
	}
}

// Key returns the canonical key.
func (t *ExifTag) Key() string { return t.key.String() }

// Type returns the value type name.
func (t *ExifTag) Type() types.TypeID { return t.typ }

// Name returns the tag name.
func (t *ExifTag) Name() string { return t.key.Info.Name }

// Label returns the human-readable tag label.
func (t *ExifTag) Label() string { return t.key.Info.Label }

// Description returns the tag description.
func (t *ExifTag) Description() string { return t.key.Info.Description }

// SectionName returns the schema section the tag belongs to.
func (t *ExifTag) SectionName() string { return t.key.Info.Section }

// SectionDescription returns the description of the section.
func (t *ExifTag) SectionDescription() string { return schema.SectionDescription(t.key.Info.Section) }

// Group returns the IFD group name ("Image", "Photo", ...).
func (t *ExifTag) Group() string { return t.key.Info.Group }

// TagNumber returns the numeric tag.
func (t *ExifTag) TagNumber() uint16 { return t.key.Info.Tag }

// ByteOrder returns the byte order of the Exif block the tag belongs to.
func (t *ExifTag) ByteOrder() types.ByteOrder { return t.order }

// Attached reports whether the tag is bound to a container.
func (t *ExifTag) Attached() bool { return t.attached() }

// RawValue returns the value in its raw text form. A tag whose record was
// removed from its container reads as empty.
func (t *ExifTag) RawValue() string {
	if d := t.datum(); d != nil {
		return d.Raw
	}
	return ""
}

// HumanValue returns a readable rendering of the value.
func (t *ExifTag) HumanValue() string {
	return humanExif(t.key.Info, t.RawValue())
}

// SetRawValue validates raw against the tag type and stores it.
func (t *ExifTag) SetRawValue(raw string) error {
	d := t.datum()
	if d == nil {
		return codes.New("SetRawValue", codes.KeyNotFound, t.Key())
	}
	norm, err := value.Normalize("SetRawValue", t.typ, raw)
	if err != nil {
		return err
	}
	d.Raw = norm
	if d.Type == "" {
		d.Type = t.storedType()
	}
	return nil
}

// storedType is the entry type written to the container. Comments are
// stored as Undefined, as TIFF has no comment type.
func (t *ExifTag) storedType() types.TypeID {
	if t.typ == types.TypeComment {
		return types.TypeUndefined
	}
	return t.typ
}

// SetParent rebinds the tag to the Exif container of p, carrying the value
// over and adopting p's byte order. The record under the tag's key is
// created when absent. Rebinding to the slot the tag already uses is a no-op.
func (t *ExifTag) SetParent(p Parent) error {
	c, err := p.ExifData()
	if err != nil {
		return err
	}
	if t.parent == c && c.Valid(t.handle) {
		if h, ok := c.FindFirst(t.Key()); ok && h == t.handle {
			return nil
		}
	}
	order, err := p.ByteOrder()
	if err != nil {
		return err
	}

	var snapshot Datum
	if d := t.datum(); d != nil {
		snapshot = d.Clone()
	}

	h := c.Slot(t.Key())
	dst := c.Datum(h)
	dst.Raw = snapshot.Raw
	dst.DataArea = snapshot.DataArea
	dst.Type = snapshot.Type
	if dst.Type == "" {
		dst.Type = t.storedType()
	}

	t.attach(c, h)
	t.order = order
	return nil
}
