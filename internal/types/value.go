package types

// TypeID names the representation type of a metadata value.
//
// Names follow the metadata collaborator's vocabulary so they can be shown
// to callers verbatim.
type TypeID string

// Exif value types.
const (
	TypeByte      TypeID = "Byte"
	TypeAscii     TypeID = "Ascii"
	TypeShort     TypeID = "Short"
	TypeLong      TypeID = "Long"
	TypeRational  TypeID = "Rational"
	TypeSByte     TypeID = "SByte"
	TypeUndefined TypeID = "Undefined"
	TypeSShort    TypeID = "SShort"
	TypeSLong     TypeID = "SLong"
	TypeSRational TypeID = "SRational"
	TypeFloat     TypeID = "Float"
	TypeDouble    TypeID = "Double"

	// TypeComment is the declared type of user comments. It is always
	// reported as declared, even when the stored entry says Undefined.
	TypeComment TypeID = "Comment"
)

// IPTC value types. Short and Undefined are shared with Exif.
const (
	TypeString TypeID = "String"
	TypeDate   TypeID = "Date"
	TypeTime   TypeID = "Time"
)

// XMP value types.
const (
	TypeXmpText TypeID = "XmpText"
	TypeXmpBag  TypeID = "XmpBag"
	TypeXmpSeq  TypeID = "XmpSeq"
	TypeXmpAlt  TypeID = "XmpAlt"
	TypeLangAlt TypeID = "LangAlt"
)

// IsXmpArray reports whether t is one of the ordered/unordered XMP array types.
func (t TypeID) IsXmpArray() bool {
	return t == TypeXmpBag || t == TypeXmpSeq || t == TypeXmpAlt
}

// LangAlt is one language alternative of a LangAlt XMP value.
type LangAlt struct {
	Lang string
	Text string
}

// ByteOrder is the byte order of an Exif (TIFF) block.
type ByteOrder int

const (
	// InvalidByteOrder means no Exif block has been decoded yet.
	InvalidByteOrder ByteOrder = iota
	LittleEndian
	BigEndian
)

func (b ByteOrder) String() string {
	switch b {
	case LittleEndian:
		return "little-endian"
	case BigEndian:
		return "big-endian"
	default:
		return "invalid"
	}
}

// Namespace is one entry of the XMP namespace-prefix registry.
type Namespace struct {
	Prefix  string
	URI     string
	Builtin bool
}
