package metadata

import (
	"github.com/simonhull/imagemeta/internal/codes"
	"github.com/simonhull/imagemeta/internal/schema"
	"github.com/simonhull/imagemeta/internal/types"
	"github.com/simonhull/imagemeta/internal/value"
)

// IptcTag is one key of the IPTC namespace together with all of its
// values. A detached tag owns a private container; an attached tag shares
// its parent's container.
type IptcTag struct {
	key      schema.IptcKey
	typ      types.TypeID
	data     *Container
	attached bool
}

// NewIptcTag returns a detached tag for key with no values.
func NewIptcTag(key string) (*IptcTag, error) {
	k, err := schema.ParseIptcKey(key)
	if err != nil {
		return nil, err
	}
	return &IptcTag{key: k, typ: k.Info.Type, data: NewContainer(Iptc)}, nil
}

// AttachIptcTag binds a tag to the records under key in c. The key must be
// present, and a non-repeatable key must not hold more than one record.
func AttachIptcTag(key string, c *Container) (*IptcTag, error) {
	k, err := schema.ParseIptcKey(key)
	if err != nil {
		return nil, err
	}
	handles := c.FindAll(k.String())
	if len(handles) == 0 {
		return nil, codes.New("AttachIptcTag", codes.KeyNotFound, key)
	}
	if !k.Info.Repeatable && len(handles) > 1 {
		return nil, codes.New("AttachIptcTag", codes.NonRepeatable, k.String())
	}

	t := &IptcTag{key: k, typ: k.Info.Type, data: c, attached: true}
	if d := c.Datum(handles[0]); d.Type != "" {
		t.typ = d.Type
	}
	return t, nil
}

// Key returns the canonical key.
func (t *IptcTag) Key() string { return t.key.String() }

// Type returns the value type name.
func (t *IptcTag) Type() types.TypeID { return t.typ }

// Name returns the dataset name.
func (t *IptcTag) Name() string { return t.key.Info.Name }

// Title returns the dataset title.
func (t *IptcTag) Title() string { return t.key.Info.Title }

// Description returns the dataset description.
func (t *IptcTag) Description() string { return t.key.Info.Description }

// PhotoshopName returns the name Photoshop shows for the dataset.
func (t *IptcTag) PhotoshopName() string { return t.key.Info.PhotoshopName }

// Repeatable reports whether the dataset may hold several values.
func (t *IptcTag) Repeatable() bool { return t.key.Info.Repeatable }

// RecordName returns the IIM record name.
func (t *IptcTag) RecordName() string { return t.key.Info.RecordName() }

// RecordDescription returns the IIM record description.
func (t *IptcTag) RecordDescription() string { return t.key.Info.RecordDescription() }

// Attached reports whether the tag is bound to a document's container.
func (t *IptcTag) Attached() bool { return t.attached }

// RawValues returns every value under the key in container order.
func (t *IptcTag) RawValues() []string {
	var out []string
	for _, h := range t.data.FindAll(t.Key()) {
		out = append(out, t.data.Datum(h).Raw)
	}
	return out
}

// SetRawValues replaces the values under the key with values.
//
// A non-repeatable key given more than one value fails with NotRepeatable
// before anything changes. Otherwise existing records are overwritten in
// order, surplus values are appended and leftover records are erased. A
// value failing validation stops the walk; values written before it stay
// written.
func (t *IptcTag) SetRawValues(values []string) error {
	const op = "SetRawValues"
	key := t.Key()

	if !t.key.Info.Repeatable && len(values) > 1 {
		return codes.New(op, codes.NonRepeatable, key)
	}

	existing := t.data.FindAll(key)
	for i, raw := range values {
		norm, err := value.Normalize(op, t.typ, raw)
		if err != nil {
			return err
		}
		if i < len(existing) {
			d := t.data.Datum(existing[i])
			d.Raw = norm
			d.Type = t.typ
			continue
		}
		if _, err := t.data.Insert(Datum{Key: key, Type: t.typ, Raw: norm}); err != nil {
			return err
		}
	}

	for _, h := range existing[min(len(values), len(existing)):] {
		if err := t.data.Erase(h); err != nil {
			return err
		}
	}
	return nil
}

// SetRawValue replaces all values under the key with the single value raw.
func (t *IptcTag) SetRawValue(raw string) error {
	return t.SetRawValues([]string{raw})
}

// SetParent rebinds the tag to the IPTC container of p. All current values
// are re-applied to the destination, which re-validates the repeatability
// rule there. Rebinding to the current container is a no-op.
func (t *IptcTag) SetParent(p Parent) error {
	c, err := p.IptcData()
	if err != nil {
		return err
	}
	if c == t.data {
		return nil
	}

	values := t.RawValues()
	t.data = c
	t.attached = true
	return t.SetRawValues(values)
}
