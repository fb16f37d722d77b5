package metadata

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/simonhull/imagemeta/internal/schema"
	"github.com/simonhull/imagemeta/internal/value"
)

var (
	orientations = map[uint64]string{
		1: "top, left", 2: "top, right", 3: "bottom, right", 4: "bottom, left",
		5: "left, top", 6: "right, top", 7: "right, bottom", 8: "left, bottom",
	}
	resolutionUnits = map[uint64]string{1: "none", 2: "inch", 3: "cm"}
	exposurePrograms = map[uint64]string{
		0: "Not defined", 1: "Manual", 2: "Auto", 3: "Aperture priority",
		4: "Shutter priority", 5: "Creative program", 6: "Action program",
		7: "Portrait mode", 8: "Landscape mode",
	}
	meteringModes = map[uint64]string{
		0: "Unknown", 1: "Average", 2: "Center weighted average", 3: "Spot",
		4: "Multi-spot", 5: "Multi-segment", 6: "Partial", 255: "Other",
	}
	colorSpaces = map[uint64]string{1: "sRGB", 2: "Adobe RGB", 0xffff: "Uncalibrated"}
)

// humanExif renders a raw Exif value for display. Tags without a dedicated
// rendering return the raw value.
func humanExif(info schema.ExifTagInfo, raw string) string {
	if raw == "" {
		return ""
	}
	switch info.Group + "." + info.Name {
	case "Image.Orientation":
		return lookup(orientations, raw)
	case "Image.ResolutionUnit", "Thumbnail.ResolutionUnit":
		return lookup(resolutionUnits, raw)
	case "Photo.ExposureProgram":
		return lookup(exposurePrograms, raw)
	case "Photo.MeteringMode":
		return lookup(meteringModes, raw)
	case "Photo.ColorSpace":
		return lookup(colorSpaces, raw)
	case "Photo.ExposureTime":
		return exposureTime(raw)
	case "Photo.FNumber":
		return fnumber(raw)
	case "Photo.FocalLength":
		return focalLength(raw)
	case "Photo.Flash":
		return flash(raw)
	case "Photo.UserComment":
		_, text, err := value.ParseComment(raw)
		if err != nil {
			return raw
		}
		return text
	case "Photo.ExifVersion", "Photo.FlashpixVersion", "Iop.InteroperabilityVersion":
		return version(raw)
	}
	return raw
}

func lookup(table map[uint64]string, raw string) string {
	v, err := value.ParseUnsigned(raw, 32)
	if err != nil || len(v) == 0 {
		return raw
	}
	if s, ok := table[v[0]]; ok {
		return s
	}
	return fmt.Sprintf("(%d)", v[0])
}

func firstRational(raw string) (value.Rational, bool) {
	r, err := value.ParseRationals(raw)
	if err != nil || len(r) == 0 || r[0].Den == 0 {
		return value.Rational{}, false
	}
	return r[0], true
}

func exposureTime(raw string) string {
	r, ok := firstRational(raw)
	if !ok {
		return raw
	}
	if r.Num > 0 && r.Num < r.Den && r.Den%r.Num == 0 {
		return fmt.Sprintf("1/%d s", r.Den/r.Num)
	}
	return strconv.FormatFloat(r.Float(), 'f', -1, 64) + " s"
}

func fnumber(raw string) string {
	r, ok := firstRational(raw)
	if !ok {
		return raw
	}
	return "F" + strconv.FormatFloat(r.Float(), 'f', 1, 64)
}

func focalLength(raw string) string {
	r, ok := firstRational(raw)
	if !ok {
		return raw
	}
	return strconv.FormatFloat(r.Float(), 'f', 1, 64) + " mm"
}

func flash(raw string) string {
	v, err := value.ParseUnsigned(raw, 16)
	if err != nil || len(v) == 0 {
		return raw
	}
	if v[0]&0x1 == 0 {
		return "No flash"
	}
	parts := []string{"Fired"}
	switch (v[0] >> 3) & 0x3 {
	case 1:
		parts = append(parts, "compulsory")
	case 3:
		parts = append(parts, "auto mode")
	}
	if v[0]&0x40 != 0 {
		parts = append(parts, "red-eye reduction")
	}
	return strings.Join(parts, ", ")
}

func version(raw string) string {
	b, err := value.ParseUndefined(raw)
	if err != nil || len(b) != 4 {
		return raw
	}
	major := strings.TrimLeft(string(b[:2]), "0")
	if major == "" {
		major = "0"
	}
	return major + "." + string(b[2:])
}
