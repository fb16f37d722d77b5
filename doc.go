// Package imagemeta reads and writes the Exif, IPTC and XMP metadata
// embedded in image files.
//
// # Quick Start
//
//	if err := imagemeta.Init(); err != nil {
//		log.Fatal(err)
//	}
//	defer imagemeta.Shutdown()
//
//	doc, err := imagemeta.Open("photo.jpg")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer doc.Close()
//
//	if err := doc.Read(); err != nil {
//		log.Fatal(err)
//	}
//	make, err := doc.ExifTag("Exif.Image.Make")
//	if err == nil {
//		fmt.Println(make.HumanValue())
//	}
//
// # Supported Formats
//
//   - JPEG: Exif (APP1), XMP (APP1), ICC profile (APP2), IPTC (APP13), comment; read and write
//   - TIFF: Exif structure and IFD1 thumbnail; read only
//   - PNG: eXIf, iTXt XMP, iCCP and the tEXt comment; read only
//   - WebP: EXIF, XMP and ICCP chunks; read only
//   - GIF: dimensions only
//
// # Namespaces and Records
//
// A Document holds three containers, one per namespace. Keys follow
// "Exif.<Group>.<Tag>", "Iptc.<Record>.<Dataset>" and
// "Xmp.<prefix>.<Property>".
//
// Records are bound either to a container (attached, as returned by
// Document.ExifTag) or to nothing (detached, as returned by NewExifTag).
// Setting an attached record writes through to its container; SetExifTag
// and friends rebind a record to another document, carrying its value.
//
//	tag, _ := imagemeta.NewIptcTag("Iptc.Application2.Keywords")
//	tag.SetRawValues([]string{"fjord", "winter"})
//	doc.SetIptcTag(tag)
//	doc.Write()
//
// # Error Handling
//
// Every failure is an *Error with a Kind:
//
//	_, err := doc.ExifTag("Exif.Image.Artist")
//	if errors.Is(err, imagemeta.ErrInvalidKey) {
//		// not set
//	}
//
// Broken metadata blocks do not fail Read; they are reported in
// Document.Warnings and leave their namespace empty. WithStrictParsing
// turns them into errors.
//
// # Concurrency
//
// A Document is not safe for concurrent mutation. OpenMany opens and reads
// many files in parallel.
package imagemeta
