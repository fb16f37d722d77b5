// Package schema holds the static tables describing Exif tags, IPTC datasets
// and XMP properties, the key grammar of each namespace, and the XMP
// namespace-prefix registry.
package schema
