package imagemeta

// Option configures how a Document is opened and read.
//
// Example:
//
//	doc, err := imagemeta.Open("photo.jpg",
//	    imagemeta.WithStrictParsing(),
//	    imagemeta.WithMaxPreviewSize(1<<20),
//	)
type Option func(*openOptions)

type openOptions struct {
	strictParsing  bool  // Fail Read on any warning
	ignoreWarnings bool  // Drop all warnings
	maxPreviewSize int64 // Largest preview returned by Previews (0 = no limit)
}

// defaultOptions starts from the process-wide limits installed by Init.
func defaultOptions() *openOptions {
	return &openOptions{
		maxPreviewSize: state().maxPreviewSize,
	}
}

// WithStrictParsing treats any decode warning as a fatal error.
//
// By default Read keeps going past broken metadata blocks (an unreadable
// XMP packet, an IFD entry of unknown type) and records a Warning. With
// strict parsing, Read fails with KindCorruption instead.
func WithStrictParsing() Option {
	return func(o *openOptions) {
		o.strictParsing = true
	}
}

// WithIgnoreWarnings discards decode warnings.
//
// Document.Warnings will always be empty.
func WithIgnoreWarnings() Option {
	return func(o *openOptions) {
		o.ignoreWarnings = true
	}
}

// WithMaxPreviewSize sets the largest preview, in bytes, that Previews
// returns. Larger previews are skipped with a warning.
//
// Default is the limit from the config passed to Init, or no limit.
func WithMaxPreviewSize(bytes int64) Option {
	return func(o *openOptions) {
		o.maxPreviewSize = bytes
	}
}
