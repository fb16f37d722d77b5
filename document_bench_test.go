package imagemeta

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// BenchmarkRead measures decoding a JPEG carrying all three namespaces.
func BenchmarkRead(b *testing.B) {
	data := richJPEG(b)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		doc, err := OpenBytes(data)
		if err != nil {
			b.Fatal(err)
		}
		if err := doc.Read(); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkWrite measures re-encoding the metadata in memory.
func BenchmarkWrite(b *testing.B) {
	doc := readBytes(b, richJPEG(b))

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if err := doc.Write(); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkOpenMany measures concurrent open and read of many files.
func BenchmarkOpenMany(b *testing.B) {
	data := richJPEG(b)
	dir := b.TempDir()
	paths := make([]string, 16)
	for i := range paths {
		paths[i] = filepath.Join(dir, fmt.Sprintf("photo%02d.jpg", i))
		if err := os.WriteFile(paths[i], data, 0o644); err != nil {
			b.Fatal(err)
		}
	}
	ctx := context.Background()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		docs, err := OpenMany(ctx, paths...)
		if err != nil {
			b.Fatal(err)
		}
		for _, d := range docs {
			d.Close()
		}
	}
}
