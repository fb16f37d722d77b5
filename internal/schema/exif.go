package schema

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/simonhull/imagemeta/internal/codes"
	"github.com/simonhull/imagemeta/internal/types"
)

// Exif groups. Each group is one IFD of the TIFF structure.
const (
	GroupImage     = "Image"     // IFD0
	GroupPhoto     = "Photo"     // Exif sub-IFD
	GroupGPS       = "GPSInfo"   // GPS sub-IFD
	GroupIop       = "Iop"       // Interoperability sub-IFD
	GroupThumbnail = "Thumbnail" // IFD1
)

// Pointer and thumbnail tag numbers.
const (
	TagExifIFD           uint16 = 0x8769
	TagGPSIFD            uint16 = 0x8825
	TagInteropIFD        uint16 = 0xa005
	TagJPEGInterchange   uint16 = 0x0201
	TagJPEGInterchangeLn uint16 = 0x0202
	TagOrientation       uint16 = 0x0112
	TagUserComment       uint16 = 0x9286
	TagPixelXDimension   uint16 = 0xa002
	TagPixelYDimension   uint16 = 0xa003
)

// Keys of the IFD1 thumbnail records.
const (
	ThumbnailOffsetKey = "Exif.Thumbnail.JPEGInterchangeFormat"
	ThumbnailLengthKey = "Exif.Thumbnail.JPEGInterchangeFormatLength"
)

// ExifTagInfo is the static description of one Exif tag.
type ExifTagInfo struct {
	Tag         uint16
	Group       string
	Name        string
	Label       string
	Description string
	Section     string
	Type        types.TypeID
}

// Known reports whether the tag came from the schema table.
func (i ExifTagInfo) Known() bool {
	return i.Label != ""
}

// ExifKey is a parsed Exif key such as "Exif.Image.Orientation".
type ExifKey struct {
	Info ExifTagInfo
}

// String returns the canonical key.
func (k ExifKey) String() string {
	return "Exif." + k.Info.Group + "." + k.Info.Name
}

var sections = map[string]string{
	"ImageStructure":       "Image data structure",
	"RecordingOffset":      "Recording offset",
	"ImageCharacteristics": "Image data characteristics",
	"OtherTags":            "Other data",
	"ExifFormat":           "Exif data structure",
	"ExifVersion":          "Exif version",
	"ImageConfig":          "Image configuration",
	"UserInfo":             "User information",
	"DateTime":             "Date and time",
	"CaptureCond":          "Picture taking conditions",
	"GPS":                  "GPS information",
	"Interop":              "Interoperability information",
}

// SectionDescription returns the description of a section, falling back to
// the section name.
func SectionDescription(section string) string {
	if d, ok := sections[section]; ok {
		return d
	}
	return section
}

func tag(group string, num uint16, name, label string, typ types.TypeID, section, desc string) ExifTagInfo {
	return ExifTagInfo{Tag: num, Group: group, Name: name, Label: label, Type: typ, Section: section, Description: desc}
}

var exifTags = []ExifTagInfo{
	tag(GroupImage, 0x0100, "ImageWidth", "Image Width", types.TypeLong, "ImageStructure", "The number of columns of image data, equal to the number of pixels per row."),
	tag(GroupImage, 0x0101, "ImageLength", "Image Length", types.TypeLong, "ImageStructure", "The number of rows of image data."),
	tag(GroupImage, 0x0102, "BitsPerSample", "Bits per Sample", types.TypeShort, "ImageStructure", "The number of bits per image component."),
	tag(GroupImage, 0x0103, "Compression", "Compression", types.TypeShort, "ImageStructure", "The compression scheme used for the image data."),
	tag(GroupImage, 0x0106, "PhotometricInterpretation", "Photometric Interpretation", types.TypeShort, "ImageStructure", "The pixel composition."),
	tag(GroupImage, 0x010e, "ImageDescription", "Image Description", types.TypeAscii, "OtherTags", "A character string giving the title of the image."),
	tag(GroupImage, 0x010f, "Make", "Manufacturer", types.TypeAscii, "OtherTags", "The manufacturer of the recording equipment."),
	tag(GroupImage, 0x0110, "Model", "Model", types.TypeAscii, "OtherTags", "The model name or model number of the equipment."),
	tag(GroupImage, 0x0111, "StripOffsets", "Strip Offsets", types.TypeLong, "RecordingOffset", "For each strip, the byte offset of that strip."),
	tag(GroupImage, TagOrientation, "Orientation", "Orientation", types.TypeShort, "ImageStructure", "The image orientation viewed in terms of rows and columns."),
	tag(GroupImage, 0x0115, "SamplesPerPixel", "Samples per Pixel", types.TypeShort, "ImageStructure", "The number of components per pixel."),
	tag(GroupImage, 0x0116, "RowsPerStrip", "Rows per Strip", types.TypeLong, "RecordingOffset", "The number of rows per strip."),
	tag(GroupImage, 0x0117, "StripByteCounts", "Strip Byte Count", types.TypeLong, "RecordingOffset", "The total number of bytes in each strip."),
	tag(GroupImage, 0x011a, "XResolution", "X-Resolution", types.TypeRational, "ImageStructure", "The number of pixels per ResolutionUnit in the ImageWidth direction."),
	tag(GroupImage, 0x011b, "YResolution", "Y-Resolution", types.TypeRational, "ImageStructure", "The number of pixels per ResolutionUnit in the ImageLength direction."),
	tag(GroupImage, 0x011c, "PlanarConfiguration", "Planar Configuration", types.TypeShort, "ImageStructure", "Indicates whether pixel components are recorded in chunky or planar format."),
	tag(GroupImage, 0x0128, "ResolutionUnit", "Resolution Unit", types.TypeShort, "ImageStructure", "The unit for measuring XResolution and YResolution."),
	tag(GroupImage, 0x0131, "Software", "Software", types.TypeAscii, "OtherTags", "The name and version of the software used to generate the image."),
	tag(GroupImage, 0x0132, "DateTime", "Date and Time", types.TypeAscii, "OtherTags", "The date and time of image creation."),
	tag(GroupImage, 0x013b, "Artist", "Artist", types.TypeAscii, "OtherTags", "The name of the camera owner, photographer or image creator."),
	tag(GroupImage, 0x013e, "WhitePoint", "White Point", types.TypeRational, "ImageCharacteristics", "The chromaticity of the white point of the image."),
	tag(GroupImage, 0x013f, "PrimaryChromaticities", "Primary Chromaticities", types.TypeRational, "ImageCharacteristics", "The chromaticity of the three primary colors of the image."),
	tag(GroupImage, 0x0211, "YCbCrCoefficients", "YCbCr Coefficients", types.TypeRational, "ImageCharacteristics", "The matrix coefficients for transformation from RGB to YCbCr image data."),
	tag(GroupImage, 0x0213, "YCbCrPositioning", "YCbCr Positioning", types.TypeShort, "ImageStructure", "The position of chrominance components in relation to the luminance component."),
	tag(GroupImage, 0x0214, "ReferenceBlackWhite", "Reference Black/White", types.TypeRational, "ImageCharacteristics", "The reference black point value and reference white point value."),
	tag(GroupImage, 0x4746, "Rating", "Windows Rating", types.TypeShort, "OtherTags", "Rating tag used by Windows."),
	tag(GroupImage, 0x8298, "Copyright", "Copyright", types.TypeAscii, "OtherTags", "Copyright information."),
	tag(GroupImage, TagExifIFD, "ExifTag", "Exif IFD Pointer", types.TypeLong, "ExifFormat", "A pointer to the Exif IFD."),
	tag(GroupImage, TagGPSIFD, "GPSTag", "GPS Info IFD Pointer", types.TypeLong, "ExifFormat", "A pointer to the GPS Info IFD."),
	tag(GroupImage, 0x9c9b, "XPTitle", "Windows Title", types.TypeByte, "OtherTags", "Title tag used by Windows, encoded in UCS2."),
	tag(GroupImage, 0x9c9c, "XPComment", "Windows Comment", types.TypeByte, "OtherTags", "Comment tag used by Windows, encoded in UCS2."),
	tag(GroupImage, 0x9c9d, "XPAuthor", "Windows Author", types.TypeByte, "OtherTags", "Author tag used by Windows, encoded in UCS2."),
	tag(GroupImage, 0x9c9e, "XPKeywords", "Windows Keywords", types.TypeByte, "OtherTags", "Keywords tag used by Windows, encoded in UCS2."),

	tag(GroupPhoto, 0x829a, "ExposureTime", "Exposure Time", types.TypeRational, "CaptureCond", "Exposure time, given in seconds."),
	tag(GroupPhoto, 0x829d, "FNumber", "FNumber", types.TypeRational, "CaptureCond", "The F number."),
	tag(GroupPhoto, 0x8822, "ExposureProgram", "Exposure Program", types.TypeShort, "CaptureCond", "The class of the program used by the camera to set exposure."),
	tag(GroupPhoto, 0x8827, "ISOSpeedRatings", "ISO Speed Ratings", types.TypeShort, "CaptureCond", "The ISO Speed and ISO Latitude of the camera or input device."),
	tag(GroupPhoto, 0x9000, "ExifVersion", "Exif Version", types.TypeUndefined, "ExifVersion", "The version of this standard supported."),
	tag(GroupPhoto, 0x9003, "DateTimeOriginal", "Date and Time (original)", types.TypeAscii, "DateTime", "The date and time when the original image data was generated."),
	tag(GroupPhoto, 0x9004, "DateTimeDigitized", "Date and Time (digitized)", types.TypeAscii, "DateTime", "The date and time when the image was stored as digital data."),
	tag(GroupPhoto, 0x9101, "ComponentsConfiguration", "Components Configuration", types.TypeUndefined, "ImageConfig", "Information specific to compressed data."),
	tag(GroupPhoto, 0x9201, "ShutterSpeedValue", "Shutter speed", types.TypeSRational, "CaptureCond", "Shutter speed, in APEX units."),
	tag(GroupPhoto, 0x9202, "ApertureValue", "Aperture", types.TypeRational, "CaptureCond", "The lens aperture, in APEX units."),
	tag(GroupPhoto, 0x9204, "ExposureBiasValue", "Exposure Bias", types.TypeSRational, "CaptureCond", "The exposure bias, in APEX units."),
	tag(GroupPhoto, 0x9205, "MaxApertureValue", "Max Aperture Value", types.TypeRational, "CaptureCond", "The smallest F number of the lens."),
	tag(GroupPhoto, 0x9207, "MeteringMode", "Metering Mode", types.TypeShort, "CaptureCond", "The metering mode."),
	tag(GroupPhoto, 0x9208, "LightSource", "Light Source", types.TypeShort, "CaptureCond", "The kind of light source."),
	tag(GroupPhoto, 0x9209, "Flash", "Flash", types.TypeShort, "CaptureCond", "Indicates the status of flash when the image was shot."),
	tag(GroupPhoto, 0x920a, "FocalLength", "Focal Length", types.TypeRational, "CaptureCond", "The actual focal length of the lens, in mm."),
	tag(GroupPhoto, 0x927c, "MakerNote", "Maker Note", types.TypeUndefined, "UserInfo", "A tag for manufacturers of Exif writers to record any desired information."),
	tag(GroupPhoto, TagUserComment, "UserComment", "User Comment", types.TypeComment, "UserInfo", "A tag for Exif users to write keywords or comments on the image."),
	tag(GroupPhoto, 0x9290, "SubSecTime", "Sub-seconds Time", types.TypeAscii, "DateTime", "Fractions of seconds for the DateTime tag."),
	tag(GroupPhoto, 0x9291, "SubSecTimeOriginal", "Sub-seconds Time Original", types.TypeAscii, "DateTime", "Fractions of seconds for the DateTimeOriginal tag."),
	tag(GroupPhoto, 0x9292, "SubSecTimeDigitized", "Sub-seconds Time Digitized", types.TypeAscii, "DateTime", "Fractions of seconds for the DateTimeDigitized tag."),
	tag(GroupPhoto, 0xa000, "FlashpixVersion", "FlashPix Version", types.TypeUndefined, "ExifVersion", "The FlashPix format version supported by a FPXR file."),
	tag(GroupPhoto, 0xa001, "ColorSpace", "Color Space", types.TypeShort, "ImageCharacteristics", "The color space information tag."),
	tag(GroupPhoto, TagPixelXDimension, "PixelXDimension", "Pixel X Dimension", types.TypeLong, "ImageConfig", "The valid width of the meaningful image."),
	tag(GroupPhoto, TagPixelYDimension, "PixelYDimension", "Pixel Y Dimension", types.TypeLong, "ImageConfig", "The valid height of the meaningful image."),
	tag(GroupPhoto, TagInteropIFD, "InteroperabilityTag", "Interoperability IFD Pointer", types.TypeLong, "ExifFormat", "A pointer to the Interoperability IFD."),
	tag(GroupPhoto, 0xa402, "ExposureMode", "Exposure Mode", types.TypeShort, "CaptureCond", "The exposure mode set when the image was shot."),
	tag(GroupPhoto, 0xa403, "WhiteBalance", "White Balance", types.TypeShort, "CaptureCond", "The white balance mode set when the image was shot."),
	tag(GroupPhoto, 0xa405, "FocalLengthIn35mmFilm", "Focal Length In 35mm Film", types.TypeShort, "CaptureCond", "The equivalent focal length assuming a 35mm film camera, in mm."),
	tag(GroupPhoto, 0xa406, "SceneCaptureType", "Scene Capture Type", types.TypeShort, "CaptureCond", "The type of scene that was shot."),
	tag(GroupPhoto, 0xa420, "ImageUniqueID", "Image Unique ID", types.TypeAscii, "OtherTags", "An identifier assigned uniquely to each image."),
	tag(GroupPhoto, 0xa430, "CameraOwnerName", "Camera Owner Name", types.TypeAscii, "OtherTags", "The owner of the camera."),
	tag(GroupPhoto, 0xa431, "BodySerialNumber", "Body Serial Number", types.TypeAscii, "OtherTags", "The serial number of the camera body."),
	tag(GroupPhoto, 0xa433, "LensMake", "Lens Make", types.TypeAscii, "OtherTags", "The lens manufacturer."),
	tag(GroupPhoto, 0xa434, "LensModel", "Lens Model", types.TypeAscii, "OtherTags", "The lens model name and model number."),

	tag(GroupGPS, 0x0000, "GPSVersionID", "GPS Version ID", types.TypeByte, "GPS", "The version of the GPS IFD."),
	tag(GroupGPS, 0x0001, "GPSLatitudeRef", "GPS Latitude Reference", types.TypeAscii, "GPS", "Indicates whether the latitude is north or south latitude."),
	tag(GroupGPS, 0x0002, "GPSLatitude", "GPS Latitude", types.TypeRational, "GPS", "The latitude as degrees, minutes and seconds."),
	tag(GroupGPS, 0x0003, "GPSLongitudeRef", "GPS Longitude Reference", types.TypeAscii, "GPS", "Indicates whether the longitude is east or west longitude."),
	tag(GroupGPS, 0x0004, "GPSLongitude", "GPS Longitude", types.TypeRational, "GPS", "The longitude as degrees, minutes and seconds."),
	tag(GroupGPS, 0x0005, "GPSAltitudeRef", "GPS Altitude Reference", types.TypeByte, "GPS", "The altitude used as the reference altitude."),
	tag(GroupGPS, 0x0006, "GPSAltitude", "GPS Altitude", types.TypeRational, "GPS", "The altitude based on the reference in GPSAltitudeRef, in meters."),
	tag(GroupGPS, 0x0007, "GPSTimeStamp", "GPS Time Stamp", types.TypeRational, "GPS", "The time as UTC (hour, minute, second)."),
	tag(GroupGPS, 0x0012, "GPSMapDatum", "GPS Map Datum", types.TypeAscii, "GPS", "The geodetic survey data used by the GPS receiver."),
	tag(GroupGPS, 0x001d, "GPSDateStamp", "GPS Date Stamp", types.TypeAscii, "GPS", "The date and time information relative to UTC."),

	tag(GroupIop, 0x0001, "InteroperabilityIndex", "Interoperability Index", types.TypeAscii, "Interop", "The identification of the Interoperability rule."),
	tag(GroupIop, 0x0002, "InteroperabilityVersion", "Interoperability Version", types.TypeUndefined, "Interop", "Interoperability version."),

	tag(GroupThumbnail, 0x0103, "Compression", "Compression", types.TypeShort, "ImageStructure", "The compression scheme used for the thumbnail data."),
	tag(GroupThumbnail, 0x011a, "XResolution", "X-Resolution", types.TypeRational, "ImageStructure", "The thumbnail resolution in the width direction."),
	tag(GroupThumbnail, 0x011b, "YResolution", "Y-Resolution", types.TypeRational, "ImageStructure", "The thumbnail resolution in the height direction."),
	tag(GroupThumbnail, 0x0128, "ResolutionUnit", "Resolution Unit", types.TypeShort, "ImageStructure", "The unit for measuring the thumbnail resolution."),
	tag(GroupThumbnail, TagJPEGInterchange, "JPEGInterchangeFormat", "JPEG Interchange Format", types.TypeLong, "RecordingOffset", "The offset to the start byte of the JPEG thumbnail."),
	tag(GroupThumbnail, TagJPEGInterchangeLn, "JPEGInterchangeFormatLength", "JPEG Interchange Format Length", types.TypeLong, "RecordingOffset", "The number of bytes of JPEG thumbnail data."),
}

var (
	exifGroups = []string{GroupImage, GroupPhoto, GroupGPS, GroupIop, GroupThumbnail}

	exifByName   = map[string]ExifTagInfo{} // "Group.Name"
	exifByNumber = map[string]ExifTagInfo{} // "Group.0xNNNN"
)

func init() {
	for _, info := range exifTags {
		exifByName[info.Group+"."+info.Name] = info
		exifByNumber[numberKey(info.Group, info.Tag)] = info
	}
}

func numberKey(group string, tag uint16) string {
	return fmt.Sprintf("%s.0x%04x", group, tag)
}

func isExifGroup(g string) bool {
	for _, eg := range exifGroups {
		if eg == g {
			return true
		}
	}
	return false
}

// ExifGroups returns the known Exif groups in IFD order.
func ExifGroups() []string {
	return append([]string(nil), exifGroups...)
}

// ExifTag returns the schema entry for tag in group. Unknown tags get a
// synthetic entry named 0xNNNN with the Undefined type.
func ExifTag(group string, num uint16) ExifTagInfo {
	if info, ok := exifByNumber[numberKey(group, num)]; ok {
		return info
	}
	return ExifTagInfo{
		Tag:     num,
		Group:   group,
		Name:    fmt.Sprintf("0x%04x", num),
		Section: "OtherTags",
		Type:    types.TypeUndefined,
	}
}

// ParseExifKey parses "Exif.<Group>.<Name|0xNNNN>". Numeric names of known
// tags are canonicalised to the tag name.
func ParseExifKey(key string) (ExifKey, error) {
	parts := strings.Split(key, ".")
	if len(parts) != 3 || parts[0] != "Exif" || parts[2] == "" {
		return ExifKey{}, codes.New("ParseExifKey", codes.InvalidKey, key)
	}
	group, name := parts[1], parts[2]
	if !isExifGroup(group) {
		return ExifKey{}, codes.New("ParseExifKey", codes.InvalidIfdID, group)
	}

	if info, ok := exifByName[group+"."+name]; ok {
		return ExifKey{Info: info}, nil
	}

	if strings.HasPrefix(name, "0x") || strings.HasPrefix(name, "0X") {
		n, err := strconv.ParseUint(name[2:], 16, 16)
		if err == nil {
			return ExifKey{Info: ExifTag(group, uint16(n))}, nil
		}
	}

	return ExifKey{}, codes.New("ParseExifKey", codes.InvalidTag, name, group)
}
