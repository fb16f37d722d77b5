// Package xmp parses and serialises XMP packets. Simple text properties,
// bag, seq and alt arrays and language alternatives are supported;
// structures are skipped with a warning.
package xmp

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/simonhull/imagemeta/internal/codes"
	"github.com/simonhull/imagemeta/internal/metadata"
	"github.com/simonhull/imagemeta/internal/schema"
	"github.com/simonhull/imagemeta/internal/types"
)

const (
	rdfNS  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	xmlNS  = "http://www.w3.org/XML/1998/namespace"
	metaNS = "adobe:ns:meta/"
)

type node struct {
	name     xml.Name
	attr     []xml.Attr
	children []*node
	text     strings.Builder
}

func (n *node) attrValue(space, local string) (string, bool) {
	for _, a := range n.attr {
		if a.Name.Space == space && a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

func (n *node) is(space, local string) bool {
	return n.name.Space == space && n.name.Local == local
}

// parse builds an element tree and collects the prefixes declared for
// each namespace URI.
func parse(packet []byte) (*node, map[string]string, error) {
	dec := xml.NewDecoder(bytes.NewReader(bytes.TrimPrefix(packet, []byte("\xef\xbb\xbf"))))
	root := &node{}
	stack := []*node{root}
	prefixes := map[string]string{}

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		top := stack[len(stack)-1]
		switch t := tok.(type) {
		case xml.StartElement:
			n := &node{name: t.Name, attr: t.Copy().Attr}
			for _, a := range t.Attr {
				if a.Name.Space == "xmlns" {
					prefixes[a.Value] = a.Name.Local
				}
			}
			top.children = append(top.children, n)
			stack = append(stack, n)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			top.text.Write(t)
		}
	}
	return root, prefixes, nil
}

// Decode parses an XMP packet into a container.
//
// Properties of namespaces missing from the registry are registered under
// the prefix the packet declares, unless that prefix is taken.
func Decode(packet []byte) (*metadata.Container, []types.Warning, error) {
	c := metadata.NewContainer(metadata.Xmp)
	if len(bytes.TrimSpace(packet)) == 0 {
		return c, nil, nil
	}
	root, prefixes, err := parse(packet)
	if err != nil {
		return nil, nil, codes.New("xmp.Decode", codes.InvalidXMP, err.Error())
	}

	d := &decoder{c: c, prefixes: prefixes}
	var walk func(n *node)
	walk = func(n *node) {
		if n.is(rdfNS, "Description") {
			d.description(n)
			return
		}
		for _, ch := range n.children {
			walk(ch)
		}
	}
	walk(root)
	return c, d.warnings, nil
}

type decoder struct {
	c        *metadata.Container
	prefixes map[string]string
	warnings []types.Warning
}

func (d *decoder) warn(format string, args ...any) {
	d.warnings = append(d.warnings, types.Warning{Stage: "xmp", Message: fmt.Sprintf(format, args...)})
}

func (d *decoder) key(name xml.Name) (string, bool) {
	prefix := schema.Namespaces.Prefix(name.Space)
	if prefix == "" {
		declared, ok := d.prefixes[name.Space]
		if !ok {
			d.warn("no prefix for namespace %s", name.Space)
			return "", false
		}
		if _, err := schema.Namespaces.NS(declared); err == nil {
			d.warn("prefix %s already bound to another namespace", declared)
			return "", false
		}
		if err := schema.Namespaces.Register(name.Space, declared); err != nil {
			d.warn("cannot register namespace %s: %v", name.Space, err)
			return "", false
		}
		prefix = declared
	}
	return "Xmp." + prefix + "." + name.Local, true
}

func (d *decoder) description(desc *node) {
	for _, a := range desc.attr {
		if a.Name.Space == "" || a.Name.Space == "xmlns" || a.Name.Space == rdfNS || a.Name.Space == xmlNS {
			continue
		}
		if key, ok := d.key(a.Name); ok {
			d.c.Append(metadata.Datum{Key: key, Type: types.TypeXmpText, Raw: a.Value})
		}
	}
	for _, p := range desc.children {
		d.property(p)
	}
}

func (d *decoder) property(p *node) {
	key, ok := d.key(p.name)
	if !ok {
		return
	}

	if len(p.children) == 0 {
		if parseType, _ := p.attrValue(rdfNS, "parseType"); parseType == "Resource" {
			d.warn("%s: structures are not supported", key)
			return
		}
		text := p.text.String()
		if res, ok := p.attrValue(rdfNS, "resource"); ok {
			text = res
		}
		d.c.Append(metadata.Datum{Key: key, Type: types.TypeXmpText, Raw: text})
		return
	}

	arr := p.children[0]
	var kind types.TypeID
	switch {
	case len(p.children) != 1:
		kind = ""
	case arr.is(rdfNS, "Bag"):
		kind = types.TypeXmpBag
	case arr.is(rdfNS, "Seq"):
		kind = types.TypeXmpSeq
	case arr.is(rdfNS, "Alt"):
		kind = types.TypeXmpAlt
	}
	if kind == "" {
		d.warn("%s: structures are not supported", key)
		return
	}

	datum := metadata.Datum{Key: key, Type: kind}
	for _, li := range arr.children {
		if !li.is(rdfNS, "li") || len(li.children) > 0 {
			d.warn("%s: nested array items are not supported", key)
			return
		}
		text := li.text.String()
		if lang, ok := li.attrValue(xmlNS, "lang"); ok && kind == types.TypeXmpAlt {
			datum.Alts = append(datum.Alts, types.LangAlt{Lang: lang, Text: text})
			continue
		}
		datum.Items = append(datum.Items, text)
	}
	if kind == types.TypeXmpAlt && len(datum.Alts) > 0 {
		if len(datum.Items) > 0 {
			d.warn("%s: mixed language alternatives", key)
			return
		}
		datum.Type = types.TypeLangAlt
	}
	d.c.Append(datum)
}

// Encode serialises c as an XMP packet. An empty container encodes to "".
// Only the first record of a key is written.
func Encode(c *metadata.Container) (string, error) {
	data := c.Data()
	if len(data) == 0 {
		return "", nil
	}

	type prop struct {
		prefix, local string
		datum         metadata.Datum
	}
	var props []prop
	uris := map[string]string{}
	seen := map[string]bool{}
	for _, d := range data {
		if seen[d.Key] {
			continue
		}
		seen[d.Key] = true
		k, err := schema.ParseXmpKey(d.Key)
		if err != nil {
			return "", err
		}
		uris[k.Prefix] = k.URI
		props = append(props, prop{prefix: k.Prefix, local: k.Property, datum: d})
	}

	prefixes := make([]string, 0, len(uris))
	for p := range uris {
		prefixes = append(prefixes, p)
	}
	slices.Sort(prefixes)

	var b strings.Builder
	b.WriteString("<?xpacket begin=\"\ufeff\" id=\"W5M0MpCehiHzreSzNTczkc9d\"?>\n")
	b.WriteString(`<x:xmpmeta xmlns:x="` + metaNS + `">` + "\n")
	b.WriteString(` <rdf:RDF xmlns:rdf="` + rdfNS + `">` + "\n")
	b.WriteString(`  <rdf:Description rdf:about=""`)
	for _, p := range prefixes {
		fmt.Fprintf(&b, "\n    xmlns:%s=\"%s\"", p, escape(uris[p]))
	}
	b.WriteString(">\n")

	for _, p := range props {
		name := p.prefix + ":" + p.local
		d := p.datum
		switch d.Type {
		case types.TypeXmpBag, types.TypeXmpSeq, types.TypeXmpAlt:
			container := map[types.TypeID]string{types.TypeXmpBag: "Bag", types.TypeXmpSeq: "Seq", types.TypeXmpAlt: "Alt"}[d.Type]
			fmt.Fprintf(&b, "   <%s>\n    <rdf:%s>\n", name, container)
			for _, item := range d.Items {
				fmt.Fprintf(&b, "     <rdf:li>%s</rdf:li>\n", escape(item))
			}
			fmt.Fprintf(&b, "    </rdf:%s>\n   </%s>\n", container, name)
		case types.TypeLangAlt:
			fmt.Fprintf(&b, "   <%s>\n    <rdf:Alt>\n", name)
			for _, alt := range d.Alts {
				fmt.Fprintf(&b, "     <rdf:li xml:lang=\"%s\">%s</rdf:li>\n", escape(alt.Lang), escape(alt.Text))
			}
			fmt.Fprintf(&b, "    </rdf:Alt>\n   </%s>\n", name)
		default:
			fmt.Fprintf(&b, "   <%s>%s</%s>\n", name, escape(d.Raw), name)
		}
	}

	b.WriteString("  </rdf:Description>\n </rdf:RDF>\n</x:xmpmeta>\n")
	b.WriteString(`<?xpacket end="w"?>`)
	return b.String(), nil
}

func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
