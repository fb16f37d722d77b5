package imagemeta

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"runtime"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/simonhull/imagemeta/internal/codes"
	"github.com/simonhull/imagemeta/internal/iptc"
	"github.com/simonhull/imagemeta/internal/metadata"
	"github.com/simonhull/imagemeta/internal/registry"
	"github.com/simonhull/imagemeta/internal/types"
	"github.com/simonhull/imagemeta/internal/xmp"
)

// Container is the ordered collection of records of one namespace.
type Container = metadata.Container

type readState int

const (
	unread readState = iota
	decoded
	failed
)

// source is the open file or in-memory buffer behind a Document.
type source interface {
	io.ReaderAt
	io.ReadSeeker
}

// Document is one image file or buffer together with its decoded metadata.
//
// A Document starts out unread: only Read, Buffer and Close work until Read
// succeeds, everything else fails with KindNotReadYet. A failed Read leaves
// the Document unusable.
//
// A Document is not safe for concurrent mutation. Distinct Documents can
// be used from different goroutines.
//
//	doc, err := imagemeta.Open("photo.jpg")
//	if err != nil {
//		return err
//	}
//	defer doc.Close()
//	if err := doc.Read(); err != nil {
//		return err
//	}
//	tag, err := doc.ExifTag("Exif.Image.Make")
type Document struct {
	// Path of the file, empty for documents opened from memory
	Path string

	// Detected format
	Format Format

	// Size of the file or buffer in bytes
	Size int64

	// Warnings encountered while decoding (non-fatal issues)
	Warnings []Warning

	id    uuid.UUID
	opts  *openOptions
	log   *slog.Logger
	codec registry.Codec

	// mu is held across decode, encode and buffer access.
	mu   sync.Mutex
	src  source // nil once closed
	data []byte // backing buffer of memory documents

	state   readState
	readErr error
	img     *metadata.Image
	thumb   *Thumbnail
}

// Open opens an image file. The metadata is not decoded until Read.
//
// Supported formats: JPEG (read and write), PNG, TIFF, WebP and GIF (read).
func Open(path string, opts ...Option) (*Document, error) {
	const op = "Open"
	if err := requireInit(op); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, codes.Wrap(op, codes.FileOpenFailed, err, path, "rb", reason(err))
	}
	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, codes.Wrap(op, codes.FileOpenFailed, err, path, "rb", reason(err))
	}

	doc, err := newDocument(op, f, stat.Size(), path, opts)
	if err != nil {
		f.Close()
		return nil, err
	}
	return doc, nil
}

// OpenBytes opens an image held in memory. data is copied, so the caller
// may reuse it as soon as OpenBytes returns.
func OpenBytes(data []byte, opts ...Option) (*Document, error) {
	const op = "OpenBytes"
	if err := requireInit(op); err != nil {
		return nil, err
	}

	buf := bytes.Clone(data)
	if buf == nil {
		buf = []byte{}
	}
	doc, err := newDocument(op, bytes.NewReader(buf), int64(len(buf)), "", opts)
	if err != nil {
		return nil, err
	}
	doc.data = buf
	return doc, nil
}

// OpenContext is Open with a cancellation check before the file is touched.
func OpenContext(ctx context.Context, path string, opts ...Option) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Open(path, opts...)
}

func newDocument(op string, src source, size int64, path string, opts []Option) (*Document, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	format, err := types.DetectFormat(src, size, path)
	if err != nil {
		return nil, codes.Wrap(op, codes.FailedToReadImageData, err)
	}
	if format == FormatUnknown {
		if path == "" {
			return nil, codes.New(op, codes.MemoryContainsUnknownImageType)
		}
		return nil, codes.New(op, codes.FileContainsUnknownImageType, path)
	}
	codec := registry.Get(format)
	if codec == nil {
		return nil, codes.New(op, codes.UnsupportedImageType, format.String())
	}

	id := uuid.New()
	return &Document{
		Path:   path,
		Format: format,
		Size:   size,
		id:     id,
		opts:   options,
		log:    logger().With("doc", id.String(), "path", path, "format", format.String()),
		codec:  codec,
		src:    src,
	}, nil
}

// reason returns the operating system message of err without the path the
// failure arguments already carry.
func reason(err error) string {
	var pe *fs.PathError
	if errors.As(err, &pe) {
		return pe.Err.Error()
	}
	var le *os.LinkError
	if errors.As(err, &le) {
		return le.Err.Error()
	}
	return err.Error()
}

// ID identifies the document in log output.
func (d *Document) ID() string {
	return d.id.String()
}

// Read decodes the metadata of the document.
//
// Reading again discards unsaved changes, and records attached to the
// previous contents go stale. Once Read has failed, it keeps failing with
// the same error.
func (d *Document) Read() error {
	const op = "Read"
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state == failed {
		return d.readErr
	}

	src, release, err := d.acquire(op)
	if err != nil {
		return err
	}
	defer release()

	img, err := d.codec.Decode(src, d.Size, d.Path)
	if err != nil {
		return d.fail(codes.Classify(op, err))
	}

	warnings := img.Warnings
	if d.opts.strictParsing && len(warnings) > 0 {
		return d.fail(codes.New(op, codes.CorruptedMetadata, warnings[0].String()))
	}
	if d.opts.ignoreWarnings {
		warnings = nil
	}
	for _, w := range warnings {
		d.log.Warn("decode warning", "stage", w.Stage, "offset", w.Offset, "message", w.Message)
	}

	if d.img != nil {
		// Records bound to the old contents go stale.
		d.img.Exif.ReplaceWith(img.Exif)
		d.img.Iptc.ReplaceWith(img.Iptc)
		d.img.Xmp.ReplaceWith(img.Xmp)
		img.Exif, img.Iptc, img.Xmp = d.img.Exif, d.img.Iptc, d.img.Xmp
	}
	d.img = img
	d.Warnings = warnings
	d.state = decoded

	d.log.Debug("metadata read",
		"exif", img.Exif.Len(),
		"iptc", img.Iptc.Len(),
		"xmp", img.Xmp.Len(),
		"warnings", len(warnings),
	)
	return nil
}

func (d *Document) fail(err error) error {
	d.state = failed
	d.readErr = err
	d.log.Debug("metadata read failed", "error", err)
	return err
}

// acquire returns the document source, reopening a closed file. release
// closes what acquire opened and is a no-op otherwise.
func (d *Document) acquire(op string) (source, func(), error) {
	if d.src != nil {
		return d.src, func() {}, nil
	}
	if d.data != nil {
		return bytes.NewReader(d.data), func() {}, nil
	}
	f, err := os.Open(d.Path)
	if err != nil {
		return nil, nil, codes.Wrap(op, codes.FileOpenFailed, err, d.Path, "rb", reason(err))
	}
	return f, func() { f.Close() }, nil
}

// Close releases the file handle. Decoded metadata stays available and
// Write reopens the file when needed.
func (d *Document) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	src := d.src
	d.src = nil
	if c, ok := src.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Buffer returns a copy of the whole file or buffer. It works before Read
// and after Close, and leaves the read position of the source unchanged.
func (d *Document) Buffer() ([]byte, error) {
	const op = "Buffer"
	d.mu.Lock()
	defer d.mu.Unlock()

	src, release, err := d.acquire(op)
	if err != nil {
		return nil, err
	}
	defer release()

	pos, err := src.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, codes.Wrap(op, codes.FailedToReadImageData, err)
	}
	defer src.Seek(pos, io.SeekStart) //nolint:errcheck // best effort restore

	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, codes.Wrap(op, codes.FailedToReadImageData, err)
	}
	buf := make([]byte, d.Size)
	if _, err := io.ReadFull(src, buf); err != nil {
		return nil, codes.Wrap(op, codes.FailedToReadImageData, err)
	}
	return buf, nil
}

// image returns the decoded metadata or fails with KindNotReadYet.
func (d *Document) image(op string) (*metadata.Image, error) {
	if d.state != decoded {
		return nil, codes.New(op, codes.MetadataNotRead)
	}
	return d.img, nil
}

// ExifData returns the Exif container.
func (d *Document) ExifData() (*Container, error) {
	img, err := d.image("ExifData")
	if err != nil {
		return nil, err
	}
	return img.Exif, nil
}

// IptcData returns the IPTC container.
func (d *Document) IptcData() (*Container, error) {
	img, err := d.image("IptcData")
	if err != nil {
		return nil, err
	}
	return img.Iptc, nil
}

// XmpData returns the XMP container.
func (d *Document) XmpData() (*Container, error) {
	img, err := d.image("XmpData")
	if err != nil {
		return nil, err
	}
	return img.Xmp, nil
}

// ByteOrder returns the byte order of the Exif block. Documents without
// one report InvalidByteOrder.
func (d *Document) ByteOrder() (ByteOrder, error) {
	img, err := d.image("ByteOrder")
	if err != nil {
		return InvalidByteOrder, err
	}
	return img.ByteOrder, nil
}

// PixelWidth returns the width of the main image.
func (d *Document) PixelWidth() (int, error) {
	img, err := d.image("PixelWidth")
	if err != nil {
		return 0, err
	}
	return img.Width, nil
}

// PixelHeight returns the height of the main image.
func (d *Document) PixelHeight() (int, error) {
	img, err := d.image("PixelHeight")
	if err != nil {
		return 0, err
	}
	return img.Height, nil
}

// MIMEType returns the MIME type of the main image.
func (d *Document) MIMEType() (string, error) {
	if _, err := d.image("MIMEType"); err != nil {
		return "", err
	}
	return d.Format.MIMEType(), nil
}

// ICCProfile returns a copy of the embedded color profile, nil when there
// is none.
func (d *Document) ICCProfile() ([]byte, error) {
	img, err := d.image("ICCProfile")
	if err != nil {
		return nil, err
	}
	return bytes.Clone(img.ICC), nil
}

// IptcCharset names the character set of the IPTC values: "UTF-8",
// "ASCII", or "" when it cannot be determined.
func (d *Document) IptcCharset() (string, error) {
	img, err := d.image("IptcCharset")
	if err != nil {
		return "", err
	}
	return iptc.Charset(img.Iptc), nil
}

// XMPPacket serializes the current XMP container. It is empty when the
// document has no XMP.
func (d *Document) XMPPacket() (string, error) {
	const op = "XMPPacket"
	img, err := d.image(op)
	if err != nil {
		return "", err
	}
	packet, err := xmp.Encode(img.Xmp)
	if err != nil {
		return "", codes.Classify(op, err)
	}
	return packet, nil
}

// Comment returns the image comment (JPEG COM segment).
func (d *Document) Comment() (string, error) {
	img, err := d.image("Comment")
	if err != nil {
		return "", err
	}
	return img.Comment, nil
}

// SetComment replaces the image comment. It is written by the next Write.
func (d *Document) SetComment(comment string) error {
	img, err := d.image("SetComment")
	if err != nil {
		return err
	}
	img.Comment = comment
	return nil
}

// ClearComment removes the image comment.
func (d *Document) ClearComment() error {
	return d.SetComment("")
}

// CopyMetadata replaces whole namespaces of dst with copies of those of d.
// Both documents must have been read; dst is checked first.
func (d *Document) CopyMetadata(dst *Document, exif, iptc, xmp bool) error {
	const op = "CopyMetadata"
	to, err := dst.image(op)
	if err != nil {
		return err
	}
	from, err := d.image(op)
	if err != nil {
		return err
	}
	if exif {
		to.Exif.ReplaceWith(from.Exif)
		to.ByteOrder = from.ByteOrder
	}
	if iptc {
		to.Iptc.ReplaceWith(from.Iptc)
	}
	if xmp {
		to.Xmp.ReplaceWith(from.Xmp)
	}
	d.log.Debug("metadata copied", "to", dst.ID(), "exif", exif, "iptc", iptc, "xmp", xmp)
	return nil
}

// OpenMany opens and reads multiple files concurrently.
//
// Files are processed by up to runtime.NumCPU() goroutines. Results are in
// the order of paths. If any file fails, the documents already opened are
// closed and the first error is returned.
//
//	docs, err := imagemeta.OpenMany(ctx, paths...)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer func() {
//		for _, d := range docs {
//			d.Close()
//		}
//	}()
func OpenMany(ctx context.Context, paths ...string) ([]*Document, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	results := make([]*Document, len(paths))
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			doc, err := Open(path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = doc
			if err := doc.Read(); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		for _, doc := range results {
			if doc != nil {
				doc.Close()
			}
		}
		return nil, err
	}
	return results, nil
}
