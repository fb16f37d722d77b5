// Package codes classifies failures reported by the metadata codecs into the
// caller-facing error kinds.
//
// Codecs report a numeric Code plus arguments, mirroring the codes of the
// exiv2 family of metadata libraries. A versioned Table maps every code to
// a types.Kind. The table is chosen once, at process start, from the codec
// version, and every failure is classified through it.
package codes

import (
	"fmt"
	"strings"
)

// Code identifies one failure condition reported by a metadata codec.
type Code int

// Codec failure codes.
const (
	ErrorMessage                      Code = 1
	CallFailed                        Code = 2
	NotAnImage                        Code = 3
	InvalidDataset                    Code = 4
	InvalidRecord                     Code = 5
	InvalidKey                        Code = 6
	InvalidTag                        Code = 7
	ValueNotSet                       Code = 8
	DataSourceOpenFailed              Code = 9
	FileOpenFailed                    Code = 10
	FileContainsUnknownImageType      Code = 11
	MemoryContainsUnknownImageType    Code = 12
	UnsupportedImageType              Code = 13
	FailedToReadImageData             Code = 14
	NotAJpeg                          Code = 15
	FailedToMapFileForReadWrite       Code = 16
	FileRenameFailed                  Code = 17
	TransferFailed                    Code = 18
	MemoryTransferFailed              Code = 19
	InputDataReadFailed               Code = 20
	ImageWriteFailed                  Code = 21
	NoImageInInputData                Code = 22
	InvalidIfdID                      Code = 23
	ValueTooLarge                     Code = 24
	DataAreaValueTooLarge             Code = 25
	OffsetOutOfRange                  Code = 26
	UnsupportedDataAreaOffsetType     Code = 27
	InvalidCharset                    Code = 28
	UnsupportedDateFormat             Code = 29
	UnsupportedTimeFormat             Code = 30
	WritingImageFormatUnsupported     Code = 31
	InvalidSettingForImage            Code = 32
	NotACrwImage                      Code = 33
	FunctionNotSupported              Code = 34
	NoNamespaceInfoForXmpPrefix       Code = 35
	NoPrefixForNamespace              Code = 36
	TooLargeJpegSegment               Code = 37
	UnhandledXmpdatum                 Code = 38
	UnhandledXmpNode                  Code = 39
	XMPToolkitError                   Code = 40
	DecodeLangAltPropertyFailed       Code = 41
	DecodeLangAltQualifierFailed      Code = 42
	EncodeLangAltPropertyFailed       Code = 43
	PropertyNameIdentificationFailed  Code = 44
	SchemaNamespaceNotRegistered      Code = 45
	NoNamespaceForPrefix              Code = 46
	AliasesNotSupported               Code = 47
	InvalidXmpText                    Code = 48
	TooManyTiffDirectoryEntries       Code = 49
	MultipleTiffArrayElementTagsInDir Code = 50
	WrongTiffArrayElementTagType      Code = 51
	InvalidKeyXmpValue                Code = 52
	InvalidIccProfile                 Code = 53
	InvalidXMP                        Code = 54
	TiffDirectoryTooLarge             Code = 55
	InvalidTypeValue                  Code = 56
	InvalidMalloc                     Code = 57
	CorruptedMetadata                 Code = 58
	ArithmeticOverflow                Code = 59
	MallocFailed                      Code = 60
)

// Library failure codes. They are raised by this library rather than by a
// codec and keep the same meaning under every table.
const (
	MetadataNotRead  Code = 101
	NonRepeatable    Code = 102
	KeyNotFound      Code = 103
	InvalidValue     Code = 104
	ExistingPrefix   Code = 105
	BuiltinNamespace Code = 106
	NotRegistered    Code = 107
)

// messages holds the message templates. %1, %2, ... are replaced by the
// failure arguments.
var messages = map[Code]string{
	ErrorMessage:                      "%1",
	CallFailed:                        "%1: Call to `%3' failed: %2",
	NotAnImage:                        "This does not look like a %1 image",
	InvalidDataset:                    "Invalid dataset name `%1'",
	InvalidRecord:                     "Invalid record name `%1'",
	InvalidKey:                        "Invalid key `%1'",
	InvalidTag:                        "Invalid tag name or ifdId `%1', ifdId %2",
	ValueNotSet:                       "Value not set",
	DataSourceOpenFailed:              "%1: Failed to open the data source: %2",
	FileOpenFailed:                    "%1: Failed to open file (%2): %3",
	FileContainsUnknownImageType:      "%1: The file contains data of an unknown image type",
	MemoryContainsUnknownImageType:    "The memory contains data of an unknown image type",
	UnsupportedImageType:              "Image type %1 is not supported",
	FailedToReadImageData:             "Failed to read image data",
	NotAJpeg:                          "This does not look like a JPEG image",
	FailedToMapFileForReadWrite:       "%1: Failed to map file for reading and writing: %2",
	FileRenameFailed:                  "%1: Failed to rename file to %2: %3",
	TransferFailed:                    "%1: Transfer failed: %2",
	MemoryTransferFailed:              "Memory transfer failed: %1",
	InputDataReadFailed:               "Failed to read input data",
	ImageWriteFailed:                  "Failed to write image",
	NoImageInInputData:                "Input data does not contain a valid image",
	InvalidIfdID:                      "Invalid ifdId %1",
	ValueTooLarge:                     "Entry::setValue: Value too large %1",
	DataAreaValueTooLarge:             "Entry::setDataArea: Value too large %1",
	OffsetOutOfRange:                  "Offset out of range",
	UnsupportedDataAreaOffsetType:     "Unsupported data area offset type",
	InvalidCharset:                    "Invalid charset: `%1'",
	UnsupportedDateFormat:             "Unsupported date format",
	UnsupportedTimeFormat:             "Unsupported time format",
	WritingImageFormatUnsupported:     "Writing to %1 images is not supported",
	InvalidSettingForImage:            "Setting %1 in %2 images is not supported",
	NotACrwImage:                      "This does not look like a CRW image",
	FunctionNotSupported:              "%1: Not supported",
	NoNamespaceInfoForXmpPrefix:       "No namespace info available for XMP prefix `%1'",
	NoPrefixForNamespace:              "No prefix registered for namespace `%2', needed for property path `%1'",
	TooLargeJpegSegment:               "Size of %1 JPEG segment is larger than 65535 bytes",
	UnhandledXmpdatum:                 "Unhandled Xmpdatum %1 of type %2",
	UnhandledXmpNode:                  "Unhandled XMP node %1 with opt=%2",
	XMPToolkitError:                   "XMP Toolkit error %1: %2",
	DecodeLangAltPropertyFailed:       "Failed to decode Lang Alt property %1 with opt=%2",
	DecodeLangAltQualifierFailed:      "Failed to decode Lang Alt qualifier %1 with opt=%2",
	EncodeLangAltPropertyFailed:       "Failed to encode Lang Alt property %1",
	PropertyNameIdentificationFailed:  "Failed to determine property name from path %1, namespace %2",
	SchemaNamespaceNotRegistered:      "Schema namespace %1 is not registered with the XMP Toolkit",
	NoNamespaceForPrefix:              "No namespace registered for prefix `%1'",
	AliasesNotSupported:               "Aliases are not supported: `%1', `%2', `%3'",
	InvalidXmpText:                    "Invalid XmpText type `%1'",
	TooManyTiffDirectoryEntries:       "TIFF directory %1 has too many entries",
	MultipleTiffArrayElementTagsInDir: "Multiple TIFF array element tags %1 in one directory",
	WrongTiffArrayElementTagType:      "TIFF array element tag %1 has wrong type",
	InvalidKeyXmpValue:                "%1 has invalid XMP value type `%2'",
	InvalidIccProfile:                 "Not a valid ICC Profile",
	InvalidXMP:                        "Not valid XMP",
	TiffDirectoryTooLarge:             "tiff directory length is too large",
	InvalidTypeValue:                  "Invalid type value detected in %1",
	InvalidMalloc:                     "Invalid memory allocation request",
	CorruptedMetadata:                 "Corrupted image metadata",
	ArithmeticOverflow:                "Arithmetic operation overflow",
	MallocFailed:                      "Memory allocation failed",

	MetadataNotRead:  "Image metadata has not been read yet",
	NonRepeatable:    "Tag not repeatable: %1",
	KeyNotFound:      "Tag not set: %1",
	InvalidValue:     "Invalid value: %1",
	ExistingPrefix:   "A namespace with this prefix already exists: %1",
	BuiltinNamespace: "Cannot unregister a builtin namespace: %1",
	NotRegistered:    "No namespace registered under this name: %1",
}

// Failure is a structured failure signal: a code plus its arguments.
type Failure struct {
	Code Code
	Args []string

	// Cause is the underlying error, typically from the operating system.
	Cause error
}

// Error formats the message template of the code with the arguments.
func (f *Failure) Error() string {
	tmpl, ok := messages[f.Code]
	if !ok {
		if len(f.Args) > 0 {
			return fmt.Sprintf("error %d: %s", f.Code, strings.Join(f.Args, ", "))
		}
		return fmt.Sprintf("error %d", f.Code)
	}
	// Replace higher placeholders first so %1 does not eat the prefix of %10.
	for i := len(f.Args); i >= 1; i-- {
		tmpl = strings.ReplaceAll(tmpl, fmt.Sprintf("%%%d", i), f.Args[i-1])
	}
	return tmpl
}

// Context returns the first argument, which by convention names the
// offending key, value or path.
func (f *Failure) Context() string {
	if len(f.Args) == 0 {
		return ""
	}
	return f.Args[0]
}

// Unwrap returns the underlying cause.
func (f *Failure) Unwrap() error {
	return f.Cause
}
