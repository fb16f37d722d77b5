// Package value parses, validates and formats the raw text form of metadata
// values.
//
// Every record value is held as text. Numbers are space separated,
// rationals are written n/d, Undefined data is written as decimal bytes,
// comments may carry a charset=<name> prefix, and IPTC dates and times use
// YYYY-MM-DD and HH:MM:SS±HH:MM.
package value

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/simonhull/imagemeta/internal/codes"
	"github.com/simonhull/imagemeta/internal/types"
)

// Comment charsets.
const (
	CharsetAscii     = "Ascii"
	CharsetJis       = "Jis"
	CharsetUnicode   = "Unicode"
	CharsetUndefined = "Undefined"
)

var (
	errBadCharset = errors.New("invalid charset")
	errBadDate    = errors.New("unsupported date format")
	errBadTime    = errors.New("unsupported time format")
)

// Normalize validates raw against type t and returns its canonical form.
//
// Validation failures are returned as classified errors carrying the
// offending literal (or charset name) as context.
func Normalize(op string, t types.TypeID, raw string) (string, error) {
	norm, err := normalize(t, raw)
	if err == nil {
		return norm, nil
	}
	var cerr *charsetError
	switch {
	case errors.As(err, &cerr):
		return "", codes.New(op, codes.InvalidCharset, cerr.name)
	case errors.Is(err, errBadDate):
		return "", codes.New(op, codes.UnsupportedDateFormat, raw)
	case errors.Is(err, errBadTime):
		return "", codes.New(op, codes.UnsupportedTimeFormat, raw)
	default:
		return "", codes.New(op, codes.InvalidValue, raw)
	}
}

func normalize(t types.TypeID, raw string) (string, error) {
	switch t {
	case types.TypeByte:
		return normUnsigned(raw, 8)
	case types.TypeShort:
		return normUnsigned(raw, 16)
	case types.TypeLong:
		return normUnsigned(raw, 32)
	case types.TypeSByte:
		return normSigned(raw, 8)
	case types.TypeSShort:
		return normSigned(raw, 16)
	case types.TypeSLong:
		return normSigned(raw, 32)
	case types.TypeRational:
		r, err := ParseRationals(raw)
		if err != nil {
			return "", err
		}
		return FormatRationals(r), nil
	case types.TypeSRational:
		r, err := ParseSRationals(raw)
		if err != nil {
			return "", err
		}
		return FormatSRationals(r), nil
	case types.TypeFloat:
		return normFloat(raw, 32)
	case types.TypeDouble:
		return normFloat(raw, 64)
	case types.TypeUndefined:
		b, err := ParseUndefined(raw)
		if err != nil {
			return "", err
		}
		return FormatUndefined(b), nil
	case types.TypeComment:
		charset, text, err := ParseComment(raw)
		if err != nil {
			return "", err
		}
		return FormatComment(charset, text), nil
	case types.TypeDate:
		d, err := ParseDate(raw)
		if err != nil {
			return "", err
		}
		return FormatDate(d), nil
	case types.TypeTime:
		tm, err := ParseTime(raw)
		if err != nil {
			return "", err
		}
		return FormatTime(tm), nil
	case types.TypeAscii, types.TypeString, types.TypeXmpText:
		return raw, nil
	default:
		return "", fmt.Errorf("unknown type %q", t)
	}
}

func normUnsigned(raw string, bits int) (string, error) {
	v, err := ParseUnsigned(raw, bits)
	if err != nil {
		return "", err
	}
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = strconv.FormatUint(n, 10)
	}
	return strings.Join(parts, " "), nil
}

func normSigned(raw string, bits int) (string, error) {
	v, err := ParseSigned(raw, bits)
	if err != nil {
		return "", err
	}
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = strconv.FormatInt(n, 10)
	}
	return strings.Join(parts, " "), nil
}

func normFloat(raw string, bits int) (string, error) {
	v, err := ParseFloats(raw, bits)
	if err != nil {
		return "", err
	}
	parts := make([]string, len(v))
	for i, f := range v {
		parts[i] = strconv.FormatFloat(f, 'g', -1, bits)
	}
	return strings.Join(parts, " "), nil
}

// ParseUnsigned parses space-separated unsigned integers of the given width.
func ParseUnsigned(raw string, bits int) ([]uint64, error) {
	fields := strings.Fields(raw)
	out := make([]uint64, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.ParseUint(f, 10, bits)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// ParseSigned parses space-separated signed integers of the given width.
func ParseSigned(raw string, bits int) ([]int64, error) {
	fields := strings.Fields(raw)
	out := make([]int64, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.ParseInt(f, 10, bits)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// ParseFloats parses space-separated floating point numbers.
func ParseFloats(raw string, bits int) ([]float64, error) {
	fields := strings.Fields(raw)
	out := make([]float64, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.ParseFloat(f, bits)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// Rational is an unsigned numerator/denominator pair.
type Rational struct {
	Num, Den uint32
}

// SRational is a signed numerator/denominator pair.
type SRational struct {
	Num, Den int32
}

// ParseRationals parses space-separated n/d pairs.
func ParseRationals(raw string) ([]Rational, error) {
	fields := strings.Fields(raw)
	out := make([]Rational, 0, len(fields))
	for _, f := range fields {
		n, d, ok := strings.Cut(f, "/")
		if !ok {
			return nil, fmt.Errorf("rational %q: missing '/'", f)
		}
		num, err := strconv.ParseUint(n, 10, 32)
		if err != nil {
			return nil, err
		}
		den, err := strconv.ParseUint(d, 10, 32)
		if err != nil {
			return nil, err
		}
		out = append(out, Rational{uint32(num), uint32(den)})
	}
	return out, nil
}

// ParseSRationals parses space-separated signed n/d pairs.
func ParseSRationals(raw string) ([]SRational, error) {
	fields := strings.Fields(raw)
	out := make([]SRational, 0, len(fields))
	for _, f := range fields {
		n, d, ok := strings.Cut(f, "/")
		if !ok {
			return nil, fmt.Errorf("rational %q: missing '/'", f)
		}
		num, err := strconv.ParseInt(n, 10, 32)
		if err != nil {
			return nil, err
		}
		den, err := strconv.ParseInt(d, 10, 32)
		if err != nil {
			return nil, err
		}
		out = append(out, SRational{int32(num), int32(den)})
	}
	return out, nil
}

// FormatRationals renders rationals as space-separated n/d pairs.
func FormatRationals(r []Rational) string {
	parts := make([]string, len(r))
	for i, v := range r {
		parts[i] = fmt.Sprintf("%d/%d", v.Num, v.Den)
	}
	return strings.Join(parts, " ")
}

// FormatSRationals renders signed rationals as space-separated n/d pairs.
func FormatSRationals(r []SRational) string {
	parts := make([]string, len(r))
	for i, v := range r {
		parts[i] = fmt.Sprintf("%d/%d", v.Num, v.Den)
	}
	return strings.Join(parts, " ")
}

// Float returns the rational as a float64, or NaN for a zero denominator.
func (r Rational) Float() float64 {
	if r.Den == 0 {
		return math.NaN()
	}
	return float64(r.Num) / float64(r.Den)
}

// Float returns the rational as a float64, or NaN for a zero denominator.
func (r SRational) Float() float64 {
	if r.Den == 0 {
		return math.NaN()
	}
	return float64(r.Num) / float64(r.Den)
}

// ParseUndefined parses space-separated decimal bytes.
func ParseUndefined(raw string) ([]byte, error) {
	v, err := ParseUnsigned(raw, 8)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(v))
	for i, n := range v {
		out[i] = byte(n)
	}
	return out, nil
}

// FormatUndefined renders bytes as space-separated decimals.
func FormatUndefined(b []byte) string {
	parts := make([]string, len(b))
	for i, c := range b {
		parts[i] = strconv.Itoa(int(c))
	}
	return strings.Join(parts, " ")
}

type charsetError struct {
	name string
}

func (e *charsetError) Error() string {
	return fmt.Sprintf("%v: %q", errBadCharset, e.name)
}

// ParseComment splits a comment of the form `charset=<name> text`. A comment
// without the prefix has the Undefined charset. The charset name may be
// quoted.
func ParseComment(raw string) (charset, text string, err error) {
	if !strings.HasPrefix(raw, "charset=") {
		return CharsetUndefined, raw, nil
	}
	rest := raw[len("charset="):]
	name, text, _ := strings.Cut(rest, " ")
	name = strings.Trim(name, `"`)
	switch name {
	case CharsetAscii, CharsetJis, CharsetUnicode, CharsetUndefined:
		return name, text, nil
	default:
		return "", "", &charsetError{name: name}
	}
}

// FormatComment renders a comment in its raw text form.
func FormatComment(charset, text string) string {
	if charset == "" || charset == CharsetUndefined {
		return text
	}
	return "charset=" + charset + " " + text
}

// ParseDate accepts YYYY-MM-DD and YYYYMMDD.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{"2006-01-02", "20060102"} {
		if d, err := time.Parse(layout, raw); err == nil {
			return d, nil
		}
	}
	return time.Time{}, errBadDate
}

// FormatDate renders d as YYYY-MM-DD.
func FormatDate(d time.Time) string {
	return d.Format("2006-01-02")
}

// ParseTime accepts HH:MM:SS±HH:MM, HHMMSS±HHMM and the same forms without
// a zone (read as UTC).
func ParseTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{"15:04:05-07:00", "150405-0700", "15:04:05", "150405"} {
		if tm, err := time.Parse(layout, raw); err == nil {
			return tm, nil
		}
	}
	return time.Time{}, errBadTime
}

// FormatTime renders tm as HH:MM:SS±HH:MM.
func FormatTime(tm time.Time) string {
	return tm.Format("15:04:05-07:00")
}

// EncodeLangAlt renders one language alternative as `lang="<tag>" <text>`.
func EncodeLangAlt(lang, text string) string {
	return `lang="` + lang + `" ` + text
}

// ParseLangAlt parses the `lang="<tag>" <text>` form. Text without a
// qualifier belongs to x-default.
func ParseLangAlt(s string) (types.LangAlt, error) {
	if !strings.HasPrefix(s, "lang=") {
		return types.LangAlt{Lang: "x-default", Text: s}, nil
	}
	rest := s[len("lang="):]

	var lang string
	if strings.HasPrefix(rest, `"`) {
		end := strings.IndexByte(rest[1:], '"')
		if end < 0 {
			return types.LangAlt{}, fmt.Errorf("unterminated language qualifier in %q", s)
		}
		lang = rest[1 : end+1]
		rest = rest[end+2:]
	} else {
		lang, rest, _ = strings.Cut(rest, " ")
		rest = " " + rest
	}
	if lang == "" {
		return types.LangAlt{}, fmt.Errorf("empty language qualifier in %q", s)
	}
	return types.LangAlt{Lang: lang, Text: strings.TrimPrefix(rest, " ")}, nil
}
