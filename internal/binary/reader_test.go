package binary

import (
	"bytes"
	"io"
	"runtime"
	"strings"
	"testing"
)

// mockReader implements io.ReaderAt for testing.
type mockReader struct {
	data []byte
}

func (m *mockReader) ReadAt(p []byte, off int64) (n int, err error) {
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n = copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func TestSafeReader_ReadAt_Success(t *testing.T) {
	data := []byte{0xFF, 0xD8, 0xFF, 0xE1}
	sr := NewSafeReader(&mockReader{data: data}, int64(len(data)), "test.jpg")

	buf := make([]byte, 2)
	if err := sr.ReadAt(buf, 0, "SOI"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf[0] != 0xFF || buf[1] != 0xD8 {
		t.Errorf("expected [0xFF, 0xD8], got [0x%02x, 0x%02x]", buf[0], buf[1])
	}
}

func TestSafeReader_ReadAt_OutOfBounds(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x04}
	sr := NewSafeReader(&mockReader{data: data}, int64(len(data)), "test.jpg")

	tests := []struct {
		name string
		off  int64
		n    int
	}{
		{"offset past end", 10, 2},
		{"negative offset", -1, 1},
		{"read spans end", 3, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := sr.ReadAt(make([]byte, tt.n), tt.off, "segment header")
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			msg := err.Error()
			if !strings.Contains(msg, "test.jpg") {
				t.Errorf("error should contain path: %v", msg)
			}
			if !strings.Contains(msg, "segment header") {
				t.Errorf("error should contain context: %v", msg)
			}
		})
	}
}

func TestSafeReader_Bytes(t *testing.T) {
	data := []byte("Exif\x00\x00II*\x00")
	sr := NewSafeReader(bytes.NewReader(data), int64(len(data)), "mem")

	got, err := sr.Bytes(6, 4, "TIFF header")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != "II*\x00" {
		t.Errorf("got %q", got)
	}

	empty, err := sr.Bytes(100, 0, "nothing")
	if err != nil || len(empty) != 0 {
		t.Errorf("zero-length read: %v %v", empty, err)
	}

	if _, err := sr.Bytes(0, -1, "bad"); err == nil {
		t.Error("expected error for negative length")
	}
}

func TestSafeReader_Bytes_LengthPastEnd(t *testing.T) {
	data := []byte{0x1c, 0x02, 0x19, 'a', 'b'}
	sr := NewSafeReader(bytes.NewReader(data), int64(len(data)), "iptc")

	tests := []struct {
		name string
		off  int64
		n    int
	}{
		{"huge length", 3, 1<<31 - 1},
		{"one past end", 3, 3},
		{"offset past end", 10, 1},
		{"negative offset", -1, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var before, after runtime.MemStats
			runtime.ReadMemStats(&before)
			_, err := sr.Bytes(tt.off, tt.n, "dataset data")
			runtime.ReadMemStats(&after)

			if err == nil {
				t.Fatal("expected error")
			}
			if grown := after.TotalAlloc - before.TotalAlloc; grown > 1<<20 {
				t.Errorf("allocated %d bytes for a rejected read", grown)
			}
		})
	}
}

func TestRead_BigEndian(t *testing.T) {
	data := []byte{0x12, 0x34, 0x56, 0x78, 0x9A, 0xBC, 0xDE, 0xF0}
	sr := NewSafeReader(bytes.NewReader(data), int64(len(data)), "mem")

	u8, err := Read[uint8](sr, 0, "u8")
	if err != nil || u8 != 0x12 {
		t.Errorf("uint8: got 0x%x, %v", u8, err)
	}
	u16, err := Read[uint16](sr, 0, "u16")
	if err != nil || u16 != 0x1234 {
		t.Errorf("uint16: got 0x%x, %v", u16, err)
	}
	u32, err := Read[uint32](sr, 0, "u32")
	if err != nil || u32 != 0x12345678 {
		t.Errorf("uint32: got 0x%x, %v", u32, err)
	}
	u64, err := Read[uint64](sr, 0, "u64")
	if err != nil || u64 != 0x123456789ABCDEF0 {
		t.Errorf("uint64: got 0x%x, %v", u64, err)
	}
}

func TestReader_Sequential(t *testing.T) {
	// A little-endian IFD entry: tag 0x0112, type 3, count 1, value 6.
	data := []byte{
		0x12, 0x01,
		0x03, 0x00,
		0x01, 0x00, 0x00, 0x00,
		0x06, 0x00, 0x00, 0x00,
	}
	sr := NewSafeReader(bytes.NewReader(data), int64(len(data)), "ifd")
	r := NewReader(sr, 0).WithOrder(LittleEndian)

	tag, err := ReadValue[uint16](r, "tag")
	if err != nil || tag != 0x0112 {
		t.Fatalf("tag: got 0x%x, %v", tag, err)
	}
	typ, _ := ReadValue[uint16](r, "type")
	count, _ := ReadValue[uint32](r, "count")
	val, _ := ReadValue[uint16](r, "value")
	if typ != 3 || count != 1 || val != 6 {
		t.Errorf("got type=%d count=%d value=%d", typ, count, val)
	}
	if r.Offset() != 10 {
		t.Errorf("offset: got %d, want 10", r.Offset())
	}
	if r.Remaining() != 2 {
		t.Errorf("remaining: got %d, want 2", r.Remaining())
	}

	r.SeekTo(0)
	if r.Offset() != 0 {
		t.Errorf("seek: got %d", r.Offset())
	}
}

func TestChainReader(t *testing.T) {
	data := []byte{'8', 'B', 'I', 'M', 0x04, 0x04, 0x00, 0x00}
	sr := NewSafeReader(bytes.NewReader(data), int64(len(data)), "irb")
	cr := NewChainReader(NewReader(sr, 0))

	sig := cr.String(4, "signature")
	id := ReadChained[uint16](cr, "resource id")
	name := ReadChained[uint16](cr, "name")
	if err := cr.Error(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sig != "8BIM" || id != 0x0404 || name != 0 {
		t.Errorf("got %q 0x%x %d", sig, id, name)
	}

	// Past the end: the first failure sticks and later reads are skipped.
	size := ReadChained[uint32](cr, "size")
	more := cr.Bytes(2, "data")
	if cr.Error() == nil {
		t.Fatal("expected accumulated error")
	}
	if size != 0 || more != nil {
		t.Errorf("expected zero values, got %d %v", size, more)
	}
}
