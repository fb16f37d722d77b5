package types

import (
	"bytes"
	"testing"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Format
	}{
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10}, FormatJPEG},
		{"png", []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\x0d"), FormatPNG},
		{"tiff little endian", []byte("II*\x00\x08\x00\x00\x00"), FormatTIFF},
		{"tiff big endian", []byte("MM\x00*\x00\x00\x00\x08"), FormatTIFF},
		{"webp", []byte("RIFF\x00\x00\x00\x00WEBPVP8 "), FormatWebP},
		{"gif", []byte("GIF89a\x01\x00\x01\x00"), FormatGIF},
		{"garbage", []byte("not an image at all"), FormatUnknown},
		{"too small", []byte{0xFF, 0xD8}, FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectFormat(bytes.NewReader(tt.data), int64(len(tt.data)), tt.name)
			if err != nil {
				t.Fatalf("DetectFormat() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("DetectFormat() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormat_Extensions(t *testing.T) {
	tests := []struct {
		format Format
		want   string
	}{
		{FormatJPEG, ".jpg"},
		{FormatPNG, ".png"},
		{FormatTIFF, ".tif"},
		{FormatWebP, ".webp"},
		{FormatGIF, ".gif"},
	}

	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			exts := tt.format.Extensions()
			if len(exts) == 0 || exts[0] != tt.want {
				t.Errorf("Extensions() = %v, want first %q", exts, tt.want)
			}
		})
	}

	if FormatUnknown.Extensions() != nil {
		t.Error("FormatUnknown.Extensions() should be nil")
	}
}

func TestFormat_MIMEType(t *testing.T) {
	if got := FormatJPEG.MIMEType(); got != "image/jpeg" {
		t.Errorf("MIMEType() = %q, want image/jpeg", got)
	}
	if got := FormatUnknown.MIMEType(); got != "" {
		t.Errorf("MIMEType() = %q, want empty", got)
	}
	if got := Format(99).String(); got != "Unknown" {
		t.Errorf("String() = %q, want Unknown", got)
	}
}
