package codes

import (
	"errors"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/simonhull/imagemeta/internal/types"
)

// CodecVersion is the version of the codec family whose failure codes this
// library reports. Config can override it to emulate an older codec.
const CodecVersion = "0.28.3"

// Table maps failure codes to error kinds for one codec era.
type Table struct {
	name  string
	kinds map[Code]types.Kind
}

// Name returns the table name ("modern" or "legacy").
func (t *Table) Name() string {
	return t.name
}

// Kind returns the kind for code c, or KindUnclassified for codes the table
// does not know.
func (t *Table) Kind(c Code) types.Kind {
	if k, ok := t.kinds[c]; ok {
		return k
	}
	return types.KindUnclassified
}

// Len returns the number of codes the table classifies.
func (t *Table) Len() int {
	return len(t.kinds)
}

// library codes are shared by every table.
var library = map[Code]types.Kind{
	MetadataNotRead:  types.KindNotReadYet,
	NonRepeatable:    types.KindNotRepeatable,
	KeyNotFound:      types.KindInvalidKey,
	InvalidValue:     types.KindInvalidValue,
	ExistingPrefix:   types.KindInvalidKey,
	BuiltinNamespace: types.KindInvalidKey,
	NotRegistered:    types.KindInvalidKey,
}

// Modern classifies codes reported by codec versions 0.27 and later.
var Modern = newTable("modern", map[Code]types.Kind{
	ErrorMessage:                      types.KindUnclassified,
	CallFailed:                        types.KindIOFailure,
	NotAnImage:                        types.KindMalformedInput,
	InvalidDataset:                    types.KindInvalidKey,
	InvalidRecord:                     types.KindInvalidKey,
	InvalidKey:                        types.KindInvalidKey,
	InvalidTag:                        types.KindInvalidKey,
	ValueNotSet:                       types.KindInvalidValue,
	DataSourceOpenFailed:              types.KindIOFailure,
	FileOpenFailed:                    types.KindIOFailure,
	FileContainsUnknownImageType:      types.KindMalformedInput,
	MemoryContainsUnknownImageType:    types.KindMalformedInput,
	UnsupportedImageType:              types.KindUnsupportedOperation,
	FailedToReadImageData:             types.KindIOFailure,
	NotAJpeg:                          types.KindMalformedInput,
	FailedToMapFileForReadWrite:       types.KindIOFailure,
	FileRenameFailed:                  types.KindIOFailure,
	TransferFailed:                    types.KindIOFailure,
	MemoryTransferFailed:              types.KindIOFailure,
	InputDataReadFailed:               types.KindIOFailure,
	ImageWriteFailed:                  types.KindIOFailure,
	NoImageInInputData:                types.KindMalformedInput,
	InvalidIfdID:                      types.KindInvalidKey,
	ValueTooLarge:                     types.KindInvalidValue,
	DataAreaValueTooLarge:             types.KindInvalidValue,
	OffsetOutOfRange:                  types.KindCorruption,
	UnsupportedDataAreaOffsetType:     types.KindCorruption,
	InvalidCharset:                    types.KindInvalidValue,
	UnsupportedDateFormat:             types.KindInvalidValue,
	UnsupportedTimeFormat:             types.KindInvalidValue,
	WritingImageFormatUnsupported:     types.KindUnsupportedOperation,
	InvalidSettingForImage:            types.KindUnsupportedOperation,
	NotACrwImage:                      types.KindMalformedInput,
	FunctionNotSupported:              types.KindUnsupportedOperation,
	NoNamespaceInfoForXmpPrefix:       types.KindInvalidKey,
	NoPrefixForNamespace:              types.KindInvalidKey,
	TooLargeJpegSegment:               types.KindInvalidValue,
	UnhandledXmpdatum:                 types.KindTypeMismatch,
	UnhandledXmpNode:                  types.KindTypeMismatch,
	XMPToolkitError:                   types.KindCorruption,
	DecodeLangAltPropertyFailed:       types.KindInvalidValue,
	DecodeLangAltQualifierFailed:      types.KindInvalidValue,
	EncodeLangAltPropertyFailed:       types.KindInvalidValue,
	PropertyNameIdentificationFailed:  types.KindInvalidKey,
	SchemaNamespaceNotRegistered:      types.KindInvalidKey,
	NoNamespaceForPrefix:              types.KindInvalidKey,
	AliasesNotSupported:               types.KindUnsupportedOperation,
	InvalidXmpText:                    types.KindTypeMismatch,
	TooManyTiffDirectoryEntries:       types.KindCorruption,
	MultipleTiffArrayElementTagsInDir: types.KindCorruption,
	WrongTiffArrayElementTagType:      types.KindTypeMismatch,
	InvalidKeyXmpValue:                types.KindInvalidValue,
	InvalidIccProfile:                 types.KindInvalidValue,
	InvalidXMP:                        types.KindMalformedInput,
	TiffDirectoryTooLarge:             types.KindCorruption,
	InvalidTypeValue:                  types.KindTypeMismatch,
	InvalidMalloc:                     types.KindResourceExhaustion,
	CorruptedMetadata:                 types.KindCorruption,
	ArithmeticOverflow:                types.KindResourceExhaustion,
	MallocFailed:                      types.KindResourceExhaustion,
})

// Legacy classifies codes reported by codec versions before 0.27. Codes 1,
// 16, 24, 25 and 34 and everything above 52 except the library codes were
// never classified in that era and fall to Unclassified.
var Legacy = newTable("legacy", map[Code]types.Kind{
	CallFailed:                        types.KindIOFailure,
	NotAnImage:                        types.KindMalformedInput,
	InvalidDataset:                    types.KindInvalidKey,
	InvalidRecord:                     types.KindInvalidKey,
	InvalidKey:                        types.KindInvalidKey,
	InvalidTag:                        types.KindInvalidKey,
	ValueNotSet:                       types.KindInvalidValue,
	DataSourceOpenFailed:              types.KindIOFailure,
	FileOpenFailed:                    types.KindIOFailure,
	FileContainsUnknownImageType:      types.KindMalformedInput,
	MemoryContainsUnknownImageType:    types.KindMalformedInput,
	UnsupportedImageType:              types.KindUnsupportedOperation,
	FailedToReadImageData:             types.KindIOFailure,
	NotAJpeg:                          types.KindMalformedInput,
	FileRenameFailed:                  types.KindIOFailure,
	TransferFailed:                    types.KindIOFailure,
	MemoryTransferFailed:              types.KindIOFailure,
	InputDataReadFailed:               types.KindIOFailure,
	ImageWriteFailed:                  types.KindIOFailure,
	NoImageInInputData:                types.KindMalformedInput,
	InvalidIfdID:                      types.KindInvalidKey,
	OffsetOutOfRange:                  types.KindCorruption,
	UnsupportedDataAreaOffsetType:     types.KindCorruption,
	InvalidCharset:                    types.KindInvalidValue,
	UnsupportedDateFormat:             types.KindInvalidValue,
	UnsupportedTimeFormat:             types.KindInvalidValue,
	WritingImageFormatUnsupported:     types.KindUnsupportedOperation,
	InvalidSettingForImage:            types.KindUnsupportedOperation,
	NotACrwImage:                      types.KindMalformedInput,
	NoNamespaceInfoForXmpPrefix:       types.KindInvalidKey,
	NoPrefixForNamespace:              types.KindInvalidKey,
	TooLargeJpegSegment:               types.KindInvalidValue,
	UnhandledXmpdatum:                 types.KindTypeMismatch,
	UnhandledXmpNode:                  types.KindTypeMismatch,
	XMPToolkitError:                   types.KindCorruption,
	DecodeLangAltPropertyFailed:       types.KindInvalidValue,
	DecodeLangAltQualifierFailed:      types.KindInvalidValue,
	EncodeLangAltPropertyFailed:       types.KindInvalidValue,
	PropertyNameIdentificationFailed:  types.KindInvalidKey,
	SchemaNamespaceNotRegistered:      types.KindInvalidKey,
	NoNamespaceForPrefix:              types.KindInvalidKey,
	AliasesNotSupported:               types.KindUnsupportedOperation,
	InvalidXmpText:                    types.KindTypeMismatch,
	TooManyTiffDirectoryEntries:       types.KindCorruption,
	MultipleTiffArrayElementTagsInDir: types.KindCorruption,
	WrongTiffArrayElementTagType:      types.KindTypeMismatch,
	InvalidKeyXmpValue:                types.KindInvalidValue,
})

func newTable(name string, kinds map[Code]types.Kind) *Table {
	t := &Table{name: name, kinds: make(map[Code]types.Kind, len(kinds)+len(library))}
	for c, k := range kinds {
		t.kinds[c] = k
	}
	for c, k := range library {
		t.kinds[c] = k
	}
	return t
}

// Select returns the table for the given codec version ("0.27.5", "0.26").
// Versions that do not parse select the modern table.
func Select(version string) *Table {
	major, minor, ok := parseVersion(version)
	if !ok {
		return Modern
	}
	if major == 0 && minor < 27 {
		return Legacy
	}
	return Modern
}

func parseVersion(v string) (major, minor int, ok bool) {
	v = strings.TrimPrefix(strings.TrimSpace(v), "v")
	parts := strings.Split(v, ".")
	if len(parts) < 2 {
		return 0, 0, false
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	minor, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	return major, minor, true
}

var active atomic.Pointer[Table]

// Use installs t as the process-wide table. Passing nil restores the modern
// table.
func Use(t *Table) {
	if t == nil {
		t = Modern
	}
	active.Store(t)
}

// Active returns the process-wide table.
func Active() *Table {
	if t := active.Load(); t != nil {
		return t
	}
	return Modern
}

// New builds a classified error for code c raised by op. The first argument
// becomes the error context.
func New(op string, c Code, args ...string) *types.Error {
	f := &Failure{Code: c, Args: args}
	return types.NewError(Active().Kind(c), op, f.Context(), f)
}

// Wrap is like New but keeps cause reachable through errors.Is and
// errors.As.
func Wrap(op string, c Code, cause error, args ...string) *types.Error {
	f := &Failure{Code: c, Args: args, Cause: cause}
	return types.NewError(Active().Kind(c), op, f.Context(), f)
}

// Classify converts err into a *types.Error. Failures are classified through
// the active table, *types.Error values pass through with op filled in when
// missing, and anything else becomes KindUnclassified.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var te *types.Error
	if errors.As(err, &te) {
		if te.Op == "" {
			cp := *te
			cp.Op = op
			return &cp
		}
		return te
	}

	var f *Failure
	if errors.As(err, &f) {
		return types.NewError(Active().Kind(f.Code), op, f.Context(), err)
	}

	return types.NewError(types.KindUnclassified, op, "", err)
}

// CodeOf returns the failure code carried by err, or 0 when err carries none.
func CodeOf(err error) Code {
	var f *Failure
	if errors.As(err, &f) {
		return f.Code
	}
	return 0
}
