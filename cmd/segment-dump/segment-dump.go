package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/simonhull/imagemeta/internal/jpeg"
)

// Useful test file to confirm which segments a JPEG carries and where.
func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: segment-dump <file.jpg>")
		os.Exit(1)
	}

	f, err := os.Open(os.Args[1])
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	layout, err := jpeg.Walk(f, stat.Size(), os.Args[1])
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	for _, seg := range layout.Segments {
		fmt.Printf("%s%s\n", seg, signature(seg.Data))
	}
	if layout.Scan >= 0 {
		fmt.Printf("scan data at %d (%d bytes)\n", layout.Scan, stat.Size()-layout.Scan)
	}
}

// signature returns the identifier string APPn payloads start with, e.g.
// " [Exif]" or " [http://ns.adobe.com/xap/1.0/]".
func signature(data []byte) string {
	i := bytes.IndexByte(data, 0)
	if i <= 0 || i > 40 {
		return ""
	}
	for _, b := range data[:i] {
		if b < 0x20 || b > 0x7E {
			return ""
		}
	}
	return " [" + string(data[:i]) + "]"
}
