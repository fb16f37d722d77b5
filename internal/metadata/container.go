// Package metadata implements the record model shared by the three metadata
// namespaces: a Container arena owning record slots, and the ExifTag,
// IptcTag and XmpTag records that are either detached (owning their value)
// or attached to a Container slot through a generation-checked Handle.
package metadata

import (
	"iter"
	"slices"

	"github.com/simonhull/imagemeta/internal/codes"
	"github.com/simonhull/imagemeta/internal/schema"
	"github.com/simonhull/imagemeta/internal/types"
)

// Namespace identifies the metadata family a Container holds.
type Namespace int

const (
	Exif Namespace = iota
	Iptc
	Xmp
)

func (n Namespace) String() string {
	switch n {
	case Exif:
		return "Exif"
	case Iptc:
		return "Iptc"
	case Xmp:
		return "Xmp"
	default:
		return "Unknown"
	}
}

// Datum is the value storage of one record.
type Datum struct {
	Key  string
	Type types.TypeID

	// Raw is the text form of Exif, IPTC and XmpText values.
	Raw string

	// Items holds the members of XmpBag, XmpSeq and XmpAlt values.
	Items []string

	// Alts holds the alternatives of LangAlt values.
	Alts []types.LangAlt

	// DataArea is out-of-line data referenced by the entry (the IFD1
	// thumbnail for Exif.Thumbnail.JPEGInterchangeFormat).
	DataArea []byte
}

// Clone returns a deep copy of d.
func (d Datum) Clone() Datum {
	d.Items = slices.Clone(d.Items)
	d.Alts = slices.Clone(d.Alts)
	d.DataArea = slices.Clone(d.DataArea)
	return d
}

// Handle addresses one slot of a Container. A handle goes stale when its
// slot is erased or the container contents are replaced.
type Handle struct {
	index int
	gen   uint32
}

type slot struct {
	datum Datum
	gen   uint32
	live  bool
}

// Container is the ordered collection of records of one namespace.
//
// A Container is not safe for concurrent mutation.
type Container struct {
	ns    Namespace
	slots []slot
	free  []int
	order []int
}

// NewContainer returns an empty container for ns.
func NewContainer(ns Namespace) *Container {
	return &Container{ns: ns}
}

// Namespace returns the namespace the container holds.
func (c *Container) Namespace() Namespace {
	return c.ns
}

// Len returns the number of records.
func (c *Container) Len() int {
	return len(c.order)
}

// Empty reports whether the container holds no records.
func (c *Container) Empty() bool {
	return len(c.order) == 0
}

// Valid reports whether h still addresses a live slot.
func (c *Container) Valid(h Handle) bool {
	return h.index >= 0 && h.index < len(c.slots) &&
		c.slots[h.index].live && c.slots[h.index].gen == h.gen
}

// Datum returns the value stored at h, or nil for a stale handle.
func (c *Container) Datum(h Handle) *Datum {
	if !c.Valid(h) {
		return nil
	}
	return &c.slots[h.index].datum
}

func (c *Container) handle(index int) Handle {
	return Handle{index: index, gen: c.slots[index].gen}
}

// FindFirst returns the first record under key.
func (c *Container) FindFirst(key string) (Handle, bool) {
	for _, i := range c.order {
		if c.slots[i].datum.Key == key {
			return c.handle(i), true
		}
	}
	return Handle{}, false
}

// FindAll returns every record under key in container order.
func (c *Container) FindAll(key string) []Handle {
	var out []Handle
	for _, i := range c.order {
		if c.slots[i].datum.Key == key {
			out = append(out, c.handle(i))
		}
	}
	return out
}

// Count returns the number of records under key.
func (c *Container) Count(key string) int {
	n := 0
	for _, i := range c.order {
		if c.slots[i].datum.Key == key {
			n++
		}
	}
	return n
}

// Slot returns the first record under key, appending an empty one when the
// key is absent.
func (c *Container) Slot(key string) Handle {
	if h, ok := c.FindFirst(key); ok {
		return h
	}
	return c.Append(Datum{Key: key})
}

// Append adds d at the end without any cardinality check. Codecs use it to
// load decoded data verbatim.
func (c *Container) Append(d Datum) Handle {
	var index int
	if n := len(c.free); n > 0 {
		index = c.free[n-1]
		c.free = c.free[:n-1]
		c.slots[index].datum = d
		c.slots[index].live = true
	} else {
		index = len(c.slots)
		c.slots = append(c.slots, slot{datum: d, live: true})
	}
	c.order = append(c.order, index)
	return c.handle(index)
}

// Insert adds d at the end. For IPTC containers, a non-repeatable key that
// already holds a record fails with NotRepeatable and leaves the container
// unchanged.
func (c *Container) Insert(d Datum) (Handle, error) {
	if c.ns == Iptc && c.Count(d.Key) > 0 {
		k, err := schema.ParseIptcKey(d.Key)
		if err != nil {
			return Handle{}, err
		}
		if !k.Info.Repeatable {
			return Handle{}, codes.New("Insert", codes.NonRepeatable, d.Key)
		}
	}
	return c.Append(d), nil
}

// Erase removes the record at h.
func (c *Container) Erase(h Handle) error {
	if !c.Valid(h) {
		return codes.New("Erase", codes.KeyNotFound, "")
	}
	c.release(h.index)
	if i := slices.Index(c.order, h.index); i >= 0 {
		c.order = slices.Delete(c.order, i, i+1)
	}
	return nil
}

func (c *Container) release(index int) {
	c.slots[index].datum = Datum{}
	c.slots[index].live = false
	c.slots[index].gen++
	c.free = append(c.free, index)
}

// EraseFirst removes the first record under key.
func (c *Container) EraseFirst(key string) error {
	h, ok := c.FindFirst(key)
	if !ok {
		return codes.New("EraseFirst", codes.KeyNotFound, key)
	}
	return c.Erase(h)
}

// EraseAll removes every record under key. It fails when there is none.
func (c *Container) EraseAll(key string) error {
	kept := c.order[:0]
	removed := 0
	for _, i := range c.order {
		if c.slots[i].datum.Key == key {
			c.release(i)
			removed++
			continue
		}
		kept = append(kept, i)
	}
	c.order = kept
	if removed == 0 {
		return codes.New("EraseAll", codes.KeyNotFound, key)
	}
	return nil
}

// Clear removes every record. Outstanding handles go stale.
func (c *Container) Clear() {
	for _, i := range c.order {
		c.release(i)
	}
	c.order = c.order[:0]
}

// Keys yields each distinct key once, in first-occurrence order. Every call
// walks the current contents.
func (c *Container) Keys() iter.Seq[string] {
	return func(yield func(string) bool) {
		seen := make(map[string]struct{})
		for _, i := range c.order {
			key := c.slots[i].datum.Key
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			if !yield(key) {
				return
			}
		}
	}
}

// All yields every record in container order.
func (c *Container) All() iter.Seq2[Handle, *Datum] {
	return func(yield func(Handle, *Datum) bool) {
		for _, i := range slices.Clone(c.order) {
			if !c.slots[i].live {
				continue
			}
			if !yield(c.handle(i), &c.slots[i].datum) {
				return
			}
		}
	}
}

// Data returns deep copies of every record in container order.
func (c *Container) Data() []Datum {
	out := make([]Datum, 0, len(c.order))
	for _, i := range c.order {
		out = append(out, c.slots[i].datum.Clone())
	}
	return out
}

// Clone returns a deep copy of the container.
func (c *Container) Clone() *Container {
	cp := NewContainer(c.ns)
	for _, d := range c.Data() {
		cp.Append(d)
	}
	return cp
}

// ReplaceWith overwrites the contents with a deep copy of src. Handles into
// the previous contents go stale.
func (c *Container) ReplaceWith(src *Container) {
	data := src.Data()
	c.Clear()
	for _, d := range data {
		c.Append(d)
	}
}
