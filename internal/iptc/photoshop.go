package iptc

import (
	"bytes"

	"github.com/simonhull/imagemeta/internal/binary"
	"github.com/simonhull/imagemeta/internal/codes"
)

// PhotoshopSignature starts the payload of a JPEG APP13 segment.
const PhotoshopSignature = "Photoshop 3.0\x00"

// ResourceIPTC is the image resource id holding the IIM block.
const ResourceIPTC uint16 = 0x0404

const resourceSignature = "8BIM"

// Resource is one Photoshop image resource block.
type Resource struct {
	ID   uint16
	Name string
	Data []byte
}

// ParseResources splits an image resource section (the APP13 payload after
// the signature) into its blocks.
func ParseResources(buf []byte) ([]Resource, error) {
	const op = "iptc.ParseResources"
	sr := binary.NewSafeReader(bytes.NewReader(buf), int64(len(buf)), "photoshop")
	r := binary.NewReader(sr, 0)

	var out []Resource
	for r.Remaining() >= 12 {
		cr := binary.NewChainReader(r)
		sig := cr.String(4, "resource signature")
		id := binary.ReadChained[uint16](cr, "resource id")
		nameLen := binary.ReadChained[uint8](cr, "resource name length")
		name := cr.String(int(nameLen), "resource name")
		// The Pascal string, length byte included, is padded to even size.
		if (int(nameLen)+1)%2 == 1 {
			r.Skip(1)
		}
		size := binary.ReadChained[uint32](cr, "resource size")
		if err := cr.Error(); err != nil {
			return nil, codes.New(op, codes.CorruptedMetadata)
		}
		if sig != resourceSignature {
			return nil, codes.New(op, codes.CorruptedMetadata)
		}
		if int64(size) > r.Remaining() {
			return nil, codes.New(op, codes.OffsetOutOfRange)
		}
		data, err := r.ReadBytes(int(size), "resource data")
		if err != nil {
			return nil, codes.New(op, codes.OffsetOutOfRange)
		}
		if size%2 == 1 && r.Remaining() > 0 {
			r.Skip(1)
		}
		out = append(out, Resource{ID: id, Name: name, Data: data})
	}
	return out, nil
}

// EncodeResources joins resource blocks back into a resource section.
func EncodeResources(res []Resource) []byte {
	var out []byte
	for _, r := range res {
		out = append(out, resourceSignature...)
		out = binary.Encode(out, r.ID, binary.BigEndian)
		out = append(out, byte(len(r.Name)))
		out = append(out, r.Name...)
		if (len(r.Name)+1)%2 == 1 {
			out = append(out, 0)
		}
		out = binary.Encode(out, uint32(len(r.Data)), binary.BigEndian)
		out = append(out, r.Data...)
		if len(r.Data)%2 == 1 {
			out = append(out, 0)
		}
	}
	return out
}

// FindIPTC returns the IIM block of the first IPTC resource.
func FindIPTC(res []Resource) ([]byte, bool) {
	for _, r := range res {
		if r.ID == ResourceIPTC {
			return r.Data, true
		}
	}
	return nil, false
}

// ReplaceIPTC returns res with the IPTC resource replaced by iim. Other
// resources are kept in place. An empty iim removes the IPTC resource.
func ReplaceIPTC(res []Resource, iim []byte) []Resource {
	out := make([]Resource, 0, len(res)+1)
	replaced := false
	for _, r := range res {
		if r.ID != ResourceIPTC {
			out = append(out, r)
			continue
		}
		if !replaced && len(iim) > 0 {
			out = append(out, Resource{ID: ResourceIPTC, Name: r.Name, Data: iim})
		}
		replaced = true
	}
	if !replaced && len(iim) > 0 {
		out = append(out, Resource{ID: ResourceIPTC, Data: iim})
	}
	return out
}
