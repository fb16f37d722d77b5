package metadata

import (
	"slices"
	"strings"

	"github.com/simonhull/imagemeta/internal/codes"
	"github.com/simonhull/imagemeta/internal/schema"
	"github.com/simonhull/imagemeta/internal/types"
	"github.com/simonhull/imagemeta/internal/value"
)

// XmpTag is one record of the XMP namespace.
type XmpTag struct {
	key schema.XmpKey
	binding
}

// NewXmpTag returns a detached tag for key. Its value starts empty with the
// representation declared by the schema.
func NewXmpTag(key string) (*XmpTag, error) {
	k, err := schema.ParseXmpKey(key)
	if err != nil {
		return nil, err
	}
	t := &XmpTag{key: k}
	t.owned = &Datum{Key: k.String(), Type: k.Info.Type}
	return t, nil
}

// AttachXmpTag binds a tag to the record under key in c. The key must be
// present.
func AttachXmpTag(key string, c *Container) (*XmpTag, error) {
	k, err := schema.ParseXmpKey(key)
	if err != nil {
		return nil, err
	}
	h, ok := c.FindFirst(k.String())
	if !ok {
		return nil, codes.New("AttachXmpTag", codes.KeyNotFound, key)
	}
	t := &XmpTag{key: k}
	t.attach(c, h)
	return t, nil
}

// Key returns the canonical key.
func (t *XmpTag) Key() string { return t.key.String() }

// ObservedType returns the representation of the stored value (XmpText,
// XmpBag, XmpSeq, XmpAlt or LangAlt).
func (t *XmpTag) ObservedType() types.TypeID {
	if d := t.datum(); d != nil && d.Type != "" {
		return d.Type
	}
	return t.key.Info.Type
}

// Type returns the semantic XMP value type declared by the schema, e.g.
// "Lang Alt" or "bag Text". It is empty for properties the schema does not
// know.
func (t *XmpTag) Type() string { return t.key.Info.ValueType }

// Name returns the property name.
func (t *XmpTag) Name() string { return t.key.Info.Name }

// Title returns the property title.
func (t *XmpTag) Title() string { return t.key.Info.Title }

// Description returns the property description.
func (t *XmpTag) Description() string { return t.key.Info.Description }

// Attached reports whether the tag is bound to a container.
func (t *XmpTag) Attached() bool { return t.attached() }

func (t *XmpTag) writable(op string) (*Datum, error) {
	d := t.datum()
	if d == nil {
		return nil, codes.New(op, codes.KeyNotFound, t.Key())
	}
	return d, nil
}

// SetTextValue stores a simple text value.
func (t *XmpTag) SetTextValue(text string) error {
	d, err := t.writable("SetTextValue")
	if err != nil {
		return err
	}
	*d = Datum{Key: d.Key, Type: types.TypeXmpText, Raw: text}
	return nil
}

// TextValue returns the value of an XmpText record.
func (t *XmpTag) TextValue() (string, error) {
	d, err := t.readable("TextValue", types.TypeXmpText)
	if err != nil {
		return "", err
	}
	return d.Raw, nil
}

// SetArrayValue clears the value and appends each element as one array
// member. The array kind is kept when the record already holds one,
// otherwise the schema kind is used, falling back to XmpBag.
func (t *XmpTag) SetArrayValue(values []string) error {
	d, err := t.writable("SetArrayValue")
	if err != nil {
		return err
	}
	kind := d.Type
	if !kind.IsXmpArray() {
		kind = t.key.Info.Type
	}
	if !kind.IsXmpArray() {
		kind = types.TypeXmpBag
	}
	*d = Datum{Key: d.Key, Type: kind, Items: slices.Clone(values)}
	return nil
}

// ArrayValue returns the members of an XmpBag, XmpSeq or XmpAlt record.
func (t *XmpTag) ArrayValue() ([]string, error) {
	d := t.datum()
	if d == nil {
		return nil, codes.New("ArrayValue", codes.KeyNotFound, t.Key())
	}
	if !d.Type.IsXmpArray() {
		return nil, codes.New("ArrayValue", codes.UnhandledXmpdatum, t.Key(), string(d.Type))
	}
	return slices.Clone(d.Items), nil
}

// SetLangAltValue clears the value and stores one alternative per entry of
// values. Alternatives are stored with x-default first, then by language.
func (t *XmpTag) SetLangAltValue(values map[string]string) error {
	const op = "SetLangAltValue"
	d, err := t.writable(op)
	if err != nil {
		return err
	}

	langs := make([]string, 0, len(values))
	for lang := range values {
		langs = append(langs, lang)
	}
	slices.SortFunc(langs, compareLang)

	alts := make([]types.LangAlt, 0, len(langs))
	for _, lang := range langs {
		alt, err := value.ParseLangAlt(value.EncodeLangAlt(lang, values[lang]))
		if err != nil || alt.Lang != lang {
			return codes.New(op, codes.EncodeLangAltPropertyFailed, t.Key())
		}
		alts = append(alts, alt)
	}

	*d = Datum{Key: d.Key, Type: types.TypeLangAlt, Alts: alts}
	return nil
}

func compareLang(a, b string) int {
	switch {
	case a == b:
		return 0
	case a == "x-default":
		return -1
	case b == "x-default":
		return 1
	default:
		return strings.Compare(a, b)
	}
}

// LangAltValue returns the alternatives of a LangAlt record keyed by
// language.
func (t *XmpTag) LangAltValue() (map[string]string, error) {
	d, err := t.readable("LangAltValue", types.TypeLangAlt)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(d.Alts))
	for _, alt := range d.Alts {
		out[alt.Lang] = alt.Text
	}
	return out, nil
}

// LangAlts returns the alternatives of a LangAlt record in stored order.
func (t *XmpTag) LangAlts() ([]types.LangAlt, error) {
	d, err := t.readable("LangAlts", types.TypeLangAlt)
	if err != nil {
		return nil, err
	}
	return slices.Clone(d.Alts), nil
}

func (t *XmpTag) readable(op string, want types.TypeID) (*Datum, error) {
	d := t.datum()
	if d == nil {
		return nil, codes.New(op, codes.KeyNotFound, t.Key())
	}
	if d.Type != want {
		if want == types.TypeXmpText {
			return nil, codes.New(op, codes.InvalidXmpText, string(d.Type))
		}
		return nil, codes.New(op, codes.UnhandledXmpdatum, t.Key(), string(d.Type))
	}
	return d, nil
}

// SetParent rebinds the tag to the record under its key in p's XMP
// container, creating the record when absent, and carries the value over.
// Rebinding to the slot the tag already uses is a no-op.
func (t *XmpTag) SetParent(p Parent) error {
	c, err := p.XmpData()
	if err != nil {
		return err
	}
	h := c.Slot(t.Key())
	if t.parent == c && t.handle == h {
		return nil
	}

	var snapshot Datum
	if d := t.datum(); d != nil {
		snapshot = d.Clone()
	}
	snapshot.Key = t.Key()
	if snapshot.Type == "" {
		snapshot.Type = t.key.Info.Type
	}
	*c.Datum(h) = snapshot

	t.attach(c, h)
	return nil
}
