package imagemeta

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Open(filepath.Join(t.TempDir(), "missing.jpg"))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrIOFailure)
		assert.ErrorIs(t, err, fs.ErrNotExist)
	})

	t.Run("unknown file type", func(t *testing.T) {
		path := writeTemp(t, "notes.jpg", []byte("just some text"))
		_, err := Open(path)
		require.Error(t, err)
		assert.Equal(t, KindMalformedInput, KindOf(err))

		var e *Error
		require.True(t, errors.As(err, &e))
		assert.Equal(t, path, e.Context)
	})

	t.Run("unknown memory type", func(t *testing.T) {
		_, err := OpenBytes([]byte("just some text"))
		assert.ErrorIs(t, err, ErrMalformedInput)
	})

	t.Run("empty buffer", func(t *testing.T) {
		_, err := OpenBytes(nil)
		assert.ErrorIs(t, err, ErrMalformedInput)
	})
}

func TestOpenBytes_CopiesInput(t *testing.T) {
	data := append([]byte(nil), minimalJPEG...)
	doc, err := OpenBytes(data)
	require.NoError(t, err)
	for i := range data {
		data[i] = 0
	}
	require.NoError(t, doc.Read())
	buf, err := doc.Buffer()
	require.NoError(t, err)
	assert.Equal(t, minimalJPEG, buf)
}

func TestDocument_NotRead(t *testing.T) {
	doc, err := OpenBytes(richJPEG(t))
	require.NoError(t, err)
	other := readBytes(t, minimalJPEG)

	tag, err := NewExifTag("Exif.Image.Make")
	require.NoError(t, err)

	ops := map[string]func() error{
		"ExifData":    func() error { _, err := doc.ExifData(); return err },
		"IptcData":    func() error { _, err := doc.IptcData(); return err },
		"XmpData":     func() error { _, err := doc.XmpData(); return err },
		"ByteOrder":   func() error { _, err := doc.ByteOrder(); return err },
		"ExifKeys":    func() error { _, err := doc.ExifKeys(); return err },
		"IptcKeys":    func() error { _, err := doc.IptcKeys(); return err },
		"XmpKeys":     func() error { _, err := doc.XmpKeys(); return err },
		"ExifTag":     func() error { _, err := doc.ExifTag("Exif.Image.Make"); return err },
		"IptcTag":     func() error { _, err := doc.IptcTag("Iptc.Application2.City"); return err },
		"XmpTag":      func() error { _, err := doc.XmpTag("Xmp.xmp.Rating"); return err },
		"SetExifTag":  func() error { return doc.SetExifTag(tag) },
		"DeleteExif":  func() error { return doc.DeleteExifTag("Exif.Image.Make") },
		"DeleteIptc":  func() error { return doc.DeleteIptcTag("Iptc.Application2.City") },
		"DeleteXmp":   func() error { return doc.DeleteXmpTag("Xmp.xmp.Rating") },
		"Comment":     func() error { _, err := doc.Comment(); return err },
		"SetComment":  func() error { return doc.SetComment("x") },
		"Previews":    func() error { _, err := doc.Previews(); return err },
		"Thumbnail":   func() error { _, err := doc.Thumbnail(); return err },
		"PixelWidth":  func() error { _, err := doc.PixelWidth(); return err },
		"MIMEType":    func() error { _, err := doc.MIMEType(); return err },
		"ICCProfile":  func() error { _, err := doc.ICCProfile(); return err },
		"IptcCharset": func() error { _, err := doc.IptcCharset(); return err },
		"XMPPacket":   func() error { _, err := doc.XMPPacket(); return err },
		"Write":       func() error { return doc.Write() },
		"CopyTo":      func() error { return doc.CopyMetadata(other, true, true, true) },
		"CopyFrom":    func() error { return other.CopyMetadata(doc, true, true, true) },
	}
	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			err := op()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrNotReadYet)
		})
	}

	// The detached tag was not bound anywhere.
	assert.False(t, tag.Attached())
}

func TestRead_MalformedJPEG(t *testing.T) {
	doc, err := OpenBytes([]byte("\xFF\xD8\xFF\x00not an image"))
	require.NoError(t, err)
	assert.Equal(t, FormatJPEG, doc.Format)

	err = doc.Read()
	require.Error(t, err)
	assert.Equal(t, KindMalformedInput, KindOf(err))

	// The document stays unusable.
	_, err = doc.ExifData()
	assert.ErrorIs(t, err, ErrNotReadYet)
	assert.Same(t, doc.Read(), doc.Read())
}

func TestRead_Properties(t *testing.T) {
	doc := readBytes(t, richJPEG(t))

	w, err := doc.PixelWidth()
	require.NoError(t, err)
	h, err := doc.PixelHeight()
	require.NoError(t, err)
	assert.Equal(t, 32, w)
	assert.Equal(t, 16, h)

	mime, err := doc.MIMEType()
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", mime)

	order, err := doc.ByteOrder()
	require.NoError(t, err)
	assert.Equal(t, LittleEndian, order)

	charset, err := doc.IptcCharset()
	require.NoError(t, err)
	assert.Equal(t, "ASCII", charset)

	packet, err := doc.XMPPacket()
	require.NoError(t, err)
	assert.Contains(t, packet, "xmp:Rating")

	icc, err := doc.ICCProfile()
	require.NoError(t, err)
	assert.Nil(t, icc)

	assert.NotEmpty(t, doc.ID())
	assert.Empty(t, doc.Warnings)
}

func TestXMPPacket_EmptyWithoutXmp(t *testing.T) {
	doc := readBytes(t, minimalJPEG)
	packet, err := doc.XMPPacket()
	require.NoError(t, err)
	assert.Empty(t, packet)
}

func TestRoundTrip_AllNamespaces(t *testing.T) {
	data := richJPEG(t)
	first := readBytes(t, data)
	require.NoError(t, first.Write())
	again, err := first.Buffer()
	require.NoError(t, err)
	second := readBytes(t, again)

	for _, pair := range [][2]*Container{
		{first.img.Exif, second.img.Exif},
		{first.img.Iptc, second.img.Iptc},
		{first.img.Xmp, second.img.Xmp},
	} {
		assert.Equal(t, pair[0].Data(), pair[1].Data())
	}

	keys, err := second.ExifKeys()
	require.NoError(t, err)
	assert.Equal(t, []string{"Exif.Image.Make", "Exif.Photo.ExposureTime"}, keys)

	comment, err := second.Comment()
	require.NoError(t, err)
	assert.Equal(t, "hello", comment)
}

func TestIptcKeys_RepeatedDatasetOnce(t *testing.T) {
	doc := readBytes(t, richJPEG(t))
	keys, err := doc.IptcKeys()
	require.NoError(t, err)
	assert.Equal(t, []string{"Iptc.Application2.Keywords", "Iptc.Application2.City"}, keys)

	tag, err := doc.IptcTag("Iptc.Application2.Keywords")
	require.NoError(t, err)
	assert.Equal(t, []string{"fjord", "winter"}, tag.RawValues())
}

func TestExifTag_NotSet(t *testing.T) {
	doc := readBytes(t, minimalJPEG)

	tests := []struct {
		name string
		get  func() error
	}{
		{"exif", func() error { _, err := doc.ExifTag("Exif.Image.Artist"); return err }},
		{"iptc", func() error { _, err := doc.IptcTag("Iptc.Application2.City"); return err }},
		{"xmp", func() error { _, err := doc.XmpTag("Xmp.dc.title"); return err }},
		{"malformed key", func() error { _, err := doc.ExifTag("Exif.Nope"); return err }},
		{"delete exif", func() error { return doc.DeleteExifTag("Exif.Image.Artist") }},
		{"delete iptc", func() error { return doc.DeleteIptcTag("Iptc.Application2.City") }},
		{"delete xmp", func() error { return doc.DeleteXmpTag("Xmp.dc.title") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.get()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidKey)
		})
	}
}

func TestSetIptcTag_NotRepeatable(t *testing.T) {
	doc := readBytes(t, richJPEG(t))
	tag, err := doc.IptcTag("Iptc.Application2.City")
	require.NoError(t, err)

	err = tag.SetRawValues([]string{"Oslo", "Tromsø"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotRepeatable)

	c, err := doc.IptcData()
	require.NoError(t, err)
	assert.Equal(t, 1, c.Count("Iptc.Application2.City"))
	assert.Equal(t, []string{"Bergen"}, tag.RawValues())
}

func TestSetExifTag_SelfIsNoop(t *testing.T) {
	doc := readBytes(t, richJPEG(t))
	tag, err := doc.ExifTag("Exif.Image.Make")
	require.NoError(t, err)
	before := doc.img.Exif.Data()

	require.NoError(t, doc.SetExifTag(tag))
	assert.Equal(t, before, doc.img.Exif.Data())
	assert.True(t, tag.Attached())
	assert.Equal(t, "Canon", tag.RawValue())
}

func TestSetTag_AfterDelete(t *testing.T) {
	doc := readBytes(t, richJPEG(t))
	exifTag, err := doc.ExifTag("Exif.Image.Make")
	require.NoError(t, err)
	xmpTag, err := doc.XmpTag("Xmp.xmp.Rating")
	require.NoError(t, err)

	require.NoError(t, doc.DeleteExifTag("Exif.Image.Make"))
	require.NoError(t, doc.DeleteXmpTag("Xmp.xmp.Rating"))

	require.NoError(t, doc.SetExifTag(exifTag))
	require.NoError(t, doc.SetXmpTag(xmpTag))

	exifKeys, err := doc.ExifKeys()
	require.NoError(t, err)
	assert.Contains(t, exifKeys, "Exif.Image.Make")
	xmpKeys, err := doc.XmpKeys()
	require.NoError(t, err)
	assert.Contains(t, xmpKeys, "Xmp.xmp.Rating")

	require.NoError(t, exifTag.SetRawValue("Nikon"))
	again, err := doc.ExifTag("Exif.Image.Make")
	require.NoError(t, err)
	assert.Equal(t, "Nikon", again.RawValue())
}

func TestSetExifTag_AfterReRead(t *testing.T) {
	doc := readBytes(t, richJPEG(t))
	tag, err := doc.ExifTag("Exif.Image.Make")
	require.NoError(t, err)
	require.NoError(t, tag.SetRawValue("Nikon"))
	require.NoError(t, doc.Read())

	require.NoError(t, doc.SetExifTag(tag))
	require.NoError(t, tag.SetRawValue("Leica"))

	current, err := doc.ExifTag("Exif.Image.Make")
	require.NoError(t, err)
	assert.Equal(t, "Leica", current.RawValue())
	keys, err := doc.ExifKeys()
	require.NoError(t, err)
	assert.Equal(t, []string{"Exif.Image.Make", "Exif.Photo.ExposureTime"}, keys)
}

func TestSetExifTag_MovesBetweenDocuments(t *testing.T) {
	src := readBytes(t, richJPEG(t))
	dst := readBytes(t, minimalJPEG)

	tag, err := src.ExifTag("Exif.Image.Make")
	require.NoError(t, err)
	require.NoError(t, dst.SetExifTag(tag))
	require.NoError(t, tag.SetRawValue("Nikon"))

	moved, err := dst.ExifTag("Exif.Image.Make")
	require.NoError(t, err)
	assert.Equal(t, "Nikon", moved.RawValue())

	// The source keeps its own record.
	kept, err := src.ExifTag("Exif.Image.Make")
	require.NoError(t, err)
	assert.Equal(t, "Canon", kept.RawValue())
}

func TestDelete(t *testing.T) {
	doc := readBytes(t, richJPEG(t))

	require.NoError(t, doc.DeleteExifTag("Exif.Image.Make"))
	require.NoError(t, doc.DeleteIptcTag("Iptc.Application2.Keywords"))
	require.NoError(t, doc.DeleteXmpTag("Xmp.xmp.Rating"))

	assert.Equal(t, 0, doc.img.Exif.Count("Exif.Image.Make"))
	assert.Equal(t, 0, doc.img.Iptc.Count("Iptc.Application2.Keywords"))
	assert.Equal(t, 0, doc.img.Xmp.Count("Xmp.xmp.Rating"))
	assert.Equal(t, 1, doc.img.Iptc.Count("Iptc.Application2.City"))
}

func TestComment(t *testing.T) {
	doc := readBytes(t, minimalJPEG)
	require.NoError(t, doc.SetComment("first"))
	comment, err := doc.Comment()
	require.NoError(t, err)
	assert.Equal(t, "first", comment)

	require.NoError(t, doc.ClearComment())
	comment, err = doc.Comment()
	require.NoError(t, err)
	assert.Empty(t, comment)
}

func TestCopyMetadata_XmpOnly(t *testing.T) {
	a := readBytes(t, fixture(t, func(t testing.TB, doc *Document) {
		for _, key := range []string{"Xmp.xmp.Rating", "Xmp.xmp.Label", "Xmp.xmp.Nickname", "Xmp.dc.source", "Xmp.dc.identifier"} {
			setXmpText(t, doc, key, "a")
		}
	}))
	b := readBytes(t, fixture(t, func(t testing.TB, doc *Document) {
		setXmpText(t, doc, "Xmp.xmp.Rating", "1")
		setXmpText(t, doc, "Xmp.xmp.CreatorTool", "b")
		setExif(t, doc, "Exif.Image.Make", "Canon")
	}))
	exifBefore := b.img.Exif.Data()

	require.NoError(t, a.CopyMetadata(b, false, false, true))

	assert.Equal(t, 5, b.img.Xmp.Len())
	assert.Equal(t, a.img.Xmp.Data(), b.img.Xmp.Data())
	assert.Equal(t, exifBefore, b.img.Exif.Data())

	// The copy is independent of its source.
	require.NoError(t, a.DeleteXmpTag("Xmp.xmp.Rating"))
	assert.Equal(t, 5, b.img.Xmp.Len())
}

func TestCopyMetadata_ChecksDestinationFirst(t *testing.T) {
	unreadSrc, err := OpenBytes(minimalJPEG)
	require.NoError(t, err)
	unreadDst, err := OpenBytes(minimalJPEG)
	require.NoError(t, err)

	err = unreadSrc.CopyMetadata(unreadDst, true, true, true)
	var e *Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, KindNotReadYet, e.Kind)
	assert.Equal(t, "CopyMetadata", e.Op)
}

func TestBuffer_PreservesCursor(t *testing.T) {
	data := richJPEG(t)
	path := writeTemp(t, "photo.jpg", data)
	doc, err := Open(path)
	require.NoError(t, err)
	defer doc.Close()

	const offset = 7
	_, err = doc.src.Seek(offset, io.SeekStart)
	require.NoError(t, err)

	buf, err := doc.Buffer()
	require.NoError(t, err)
	assert.Equal(t, data, buf)

	pos, err := doc.src.Seek(0, io.SeekCurrent)
	require.NoError(t, err)
	assert.Equal(t, int64(offset), pos)
}

func TestBuffer_AfterClose(t *testing.T) {
	path := writeTemp(t, "photo.jpg", minimalJPEG)
	doc, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, doc.Close())

	buf, err := doc.Buffer()
	require.NoError(t, err)
	assert.Equal(t, minimalJPEG, buf)
	assert.Nil(t, doc.src)
}

func TestRead_Warnings(t *testing.T) {
	broken := withSegment(0xE1, append([]byte("http://ns.adobe.com/xap/1.0/\x00"), "<rdf:RDF><open>"...))

	t.Run("default", func(t *testing.T) {
		doc := readBytes(t, broken)
		require.Len(t, doc.Warnings, 1)
		assert.Equal(t, "xmp", doc.Warnings[0].Stage)
		keys, err := doc.XmpKeys()
		require.NoError(t, err)
		assert.Empty(t, keys)
	})

	t.Run("ignored", func(t *testing.T) {
		doc := readBytes(t, broken, WithIgnoreWarnings())
		assert.Empty(t, doc.Warnings)
	})

	t.Run("strict", func(t *testing.T) {
		doc, err := OpenBytes(broken, WithStrictParsing())
		require.NoError(t, err)
		err = doc.Read()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrCorruption)
	})
}

func TestRead_AgainDiscardsChanges(t *testing.T) {
	doc := readBytes(t, richJPEG(t))
	tag, err := doc.ExifTag("Exif.Image.Make")
	require.NoError(t, err)
	require.NoError(t, doc.DeleteXmpTag("Xmp.xmp.Rating"))

	require.NoError(t, doc.Read())
	assert.Equal(t, 1, doc.img.Xmp.Count("Xmp.xmp.Rating"))
	assert.Empty(t, tag.RawValue())
}

func TestOpenMany(t *testing.T) {
	dir := t.TempDir()
	paths := make([]string, 4)
	for i := range paths {
		paths[i] = filepath.Join(dir, string(rune('a'+i))+".jpg")
		require.NoError(t, os.WriteFile(paths[i], minimalJPEG, 0o644))
	}

	docs, err := OpenMany(context.Background(), paths...)
	require.NoError(t, err)
	require.Len(t, docs, len(paths))
	for i, doc := range docs {
		assert.Equal(t, paths[i], doc.Path)
		_, err := doc.ExifKeys()
		assert.NoError(t, err)
		doc.Close()
	}

	none, err := OpenMany(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, none)
}

func TestOpenMany_Failure(t *testing.T) {
	good := writeTemp(t, "good.jpg", minimalJPEG)
	bad := writeTemp(t, "bad.jpg", []byte("\xFF\xD8\xFF\x00broken"))

	docs, err := OpenMany(context.Background(), good, bad)
	require.Error(t, err)
	assert.Nil(t, docs)
	assert.Contains(t, err.Error(), bad)
	assert.ErrorIs(t, err, ErrMalformedInput)
}

func TestOpenMany_Cancelled(t *testing.T) {
	path := writeTemp(t, "a.jpg", minimalJPEG)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	docs, err := OpenMany(ctx, path, path)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, docs)

	_, err = OpenContext(ctx, path)
	assert.ErrorIs(t, err, context.Canceled)
}
