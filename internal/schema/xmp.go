package schema

import (
	"slices"
	"strings"
	"sync"

	"github.com/simonhull/imagemeta/internal/codes"
	"github.com/simonhull/imagemeta/internal/types"
)

// XmpPropertyInfo is the static description of one XMP property.
type XmpPropertyInfo struct {
	Prefix      string
	Name        string
	Title       string
	Description string

	// ValueType is the semantic XMP value type, e.g. "Lang Alt" or "bag Text".
	ValueType string

	// Type is the representation the property is stored as.
	Type types.TypeID
}

// XmpKey is a parsed XMP key such as "Xmp.dc.title".
type XmpKey struct {
	Prefix   string
	Property string
	URI      string
	Info     XmpPropertyInfo
}

// String returns the canonical key.
func (k XmpKey) String() string {
	return "Xmp." + k.Prefix + "." + k.Property
}

var builtinNamespaces = []types.Namespace{
	{Prefix: "dc", URI: "http://purl.org/dc/elements/1.1/", Builtin: true},
	{Prefix: "xmp", URI: "http://ns.adobe.com/xap/1.0/", Builtin: true},
	{Prefix: "xmpRights", URI: "http://ns.adobe.com/xap/1.0/rights/", Builtin: true},
	{Prefix: "xmpMM", URI: "http://ns.adobe.com/xap/1.0/mm/", Builtin: true},
	{Prefix: "photoshop", URI: "http://ns.adobe.com/photoshop/1.0/", Builtin: true},
	{Prefix: "tiff", URI: "http://ns.adobe.com/tiff/1.0/", Builtin: true},
	{Prefix: "exif", URI: "http://ns.adobe.com/exif/1.0/", Builtin: true},
	{Prefix: "lr", URI: "http://ns.adobe.com/lightroom/1.0/", Builtin: true},
	{Prefix: "Iptc4xmpCore", URI: "http://iptc.org/std/Iptc4xmpCore/1.0/xmlns/", Builtin: true},
}

func prop(prefix, name, title, valueType string, typ types.TypeID, desc string) XmpPropertyInfo {
	return XmpPropertyInfo{Prefix: prefix, Name: name, Title: title, ValueType: valueType, Type: typ, Description: desc}
}

var xmpProperties = []XmpPropertyInfo{
	prop("dc", "contributor", "Contributor", "bag ProperName", types.TypeXmpBag, "Contributors to the resource (other than the authors)."),
	prop("dc", "coverage", "Coverage", "Text", types.TypeXmpText, "The spatial or temporal topic of the resource."),
	prop("dc", "creator", "Creator", "seq ProperName", types.TypeXmpSeq, "The authors of the resource, listed in order of precedence."),
	prop("dc", "date", "Date", "seq Date", types.TypeXmpSeq, "Dates associated with events in the life cycle of the resource."),
	prop("dc", "description", "Description", "Lang Alt", types.TypeLangAlt, "A textual description of the content of the resource."),
	prop("dc", "format", "Format", "MIMEType", types.TypeXmpText, "The file format used when saving the resource."),
	prop("dc", "identifier", "Identifier", "Text", types.TypeXmpText, "Unique identifier of the resource."),
	prop("dc", "language", "Language", "bag Locale", types.TypeXmpBag, "An unordered array specifying the languages used in the resource."),
	prop("dc", "publisher", "Publisher", "bag ProperName", types.TypeXmpBag, "Publishers."),
	prop("dc", "relation", "Relation", "bag Text", types.TypeXmpBag, "Relationships to other documents."),
	prop("dc", "rights", "Rights", "Lang Alt", types.TypeLangAlt, "Informal rights statement, selected by language."),
	prop("dc", "source", "Source", "Text", types.TypeXmpText, "Unique identifier of the work from which this resource was derived."),
	prop("dc", "subject", "Subject", "bag Text", types.TypeXmpBag, "An unordered array of descriptive phrases or keywords."),
	prop("dc", "title", "Title", "Lang Alt", types.TypeLangAlt, "The title of the document, or the name given to the resource."),
	prop("dc", "type", "Type", "bag open Choice", types.TypeXmpBag, "A document type; for example, novel, poem, or working paper."),

	prop("xmp", "BaseURL", "Base URL", "URL", types.TypeXmpText, "The base URL for relative URLs in the document content."),
	prop("xmp", "CreateDate", "Create Date", "Date", types.TypeXmpText, "The date and time the resource was originally created."),
	prop("xmp", "CreatorTool", "Creator Tool", "AgentName", types.TypeXmpText, "The name of the first known tool used to create the resource."),
	prop("xmp", "Identifier", "Identifier", "bag Text", types.TypeXmpBag, "An unordered array of text strings that identify the resource."),
	prop("xmp", "Label", "Label", "Text", types.TypeXmpText, "A word or short phrase that identifies a document as a member of a user-defined collection."),
	prop("xmp", "MetadataDate", "Metadata Date", "Date", types.TypeXmpText, "The date and time that any metadata for this resource was last changed."),
	prop("xmp", "ModifyDate", "Modify Date", "Date", types.TypeXmpText, "The date and time the resource was last modified."),
	prop("xmp", "Nickname", "Nickname", "Text", types.TypeXmpText, "A short informal name for the resource."),
	prop("xmp", "Rating", "Rating", "Closed Choice of Integer", types.TypeXmpText, "A number that indicates a document's status relative to other documents."),

	prop("xmpRights", "Certificate", "Certificate", "URL", types.TypeXmpText, "Online rights management certificate."),
	prop("xmpRights", "Marked", "Marked", "Boolean", types.TypeXmpText, "Indicates that this is a rights-managed resource."),
	prop("xmpRights", "Owner", "Owner", "bag ProperName", types.TypeXmpBag, "An unordered array specifying the legal owner(s) of a resource."),
	prop("xmpRights", "UsageTerms", "Usage Terms", "Lang Alt", types.TypeLangAlt, "Text instructions on how a resource can be legally used."),
	prop("xmpRights", "WebStatement", "Web Statement", "URL", types.TypeXmpText, "The location of a web page describing the owner and/or rights statement."),

	prop("xmpMM", "DocumentID", "Document ID", "URI", types.TypeXmpText, "The common identifier for all versions and renditions of a document."),
	prop("xmpMM", "InstanceID", "Instance ID", "URI", types.TypeXmpText, "An identifier for a specific incarnation of a document."),
	prop("xmpMM", "OriginalDocumentID", "Original Document ID", "URI", types.TypeXmpText, "The common identifier for the original resource."),

	prop("photoshop", "AuthorsPosition", "Authors Position", "Text", types.TypeXmpText, "By-line title."),
	prop("photoshop", "CaptionWriter", "Caption Writer", "ProperName", types.TypeXmpText, "Writer/editor."),
	prop("photoshop", "Category", "Category", "Text", types.TypeXmpText, "Category. Limited to 3 7-bit ASCII characters."),
	prop("photoshop", "City", "City", "Text", types.TypeXmpText, "City."),
	prop("photoshop", "Country", "Country", "Text", types.TypeXmpText, "Country/primary location."),
	prop("photoshop", "Credit", "Credit", "Text", types.TypeXmpText, "Credit."),
	prop("photoshop", "DateCreated", "Date Created", "Date", types.TypeXmpText, "The date the intellectual content of the document was created."),
	prop("photoshop", "Headline", "Headline", "Text", types.TypeXmpText, "Headline."),
	prop("photoshop", "Instructions", "Instructions", "Text", types.TypeXmpText, "Special instructions."),
	prop("photoshop", "Source", "Source", "Text", types.TypeXmpText, "Source."),
	prop("photoshop", "State", "State", "Text", types.TypeXmpText, "Province/state."),
	prop("photoshop", "SupplementalCategories", "Supplemental Categories", "bag Text", types.TypeXmpBag, "Supplemental category."),
	prop("photoshop", "TransmissionReference", "Transmission Reference", "Text", types.TypeXmpText, "Original transmission reference."),
	prop("photoshop", "Urgency", "Urgency", "Integer", types.TypeXmpText, "Urgency. Valid range is 1-8."),

	prop("tiff", "Artist", "Artist", "ProperName", types.TypeXmpText, "Camera owner, photographer or image creator."),
	prop("tiff", "Copyright", "Copyright", "Lang Alt", types.TypeLangAlt, "Copyright information."),
	prop("tiff", "DateTime", "Date and Time", "Date", types.TypeXmpText, "Date and time of image creation."),
	prop("tiff", "ImageLength", "Image Length", "Integer", types.TypeXmpText, "Image height in pixels."),
	prop("tiff", "ImageWidth", "Image Width", "Integer", types.TypeXmpText, "Image width in pixels."),
	prop("tiff", "Make", "Make", "ProperName", types.TypeXmpText, "Manufacturer of recording equipment."),
	prop("tiff", "Model", "Model", "ProperName", types.TypeXmpText, "Model name or number of equipment."),
	prop("tiff", "Orientation", "Orientation", "Closed Choice of Integer", types.TypeXmpText, "Orientation."),
	prop("tiff", "Software", "Software", "AgentName", types.TypeXmpText, "Software or firmware used to generate the image."),

	prop("exif", "DateTimeOriginal", "Date and Time Original", "Date", types.TypeXmpText, "Date and time when the original image was generated."),
	prop("exif", "ExposureTime", "Exposure Time", "Rational", types.TypeXmpText, "Exposure time in seconds."),
	prop("exif", "FNumber", "F Number", "Rational", types.TypeXmpText, "F number."),
	prop("exif", "FocalLength", "Focal Length", "Rational", types.TypeXmpText, "Focal length of the lens, in millimeters."),
	prop("exif", "GPSLatitude", "GPS Latitude", "GPSCoordinate", types.TypeXmpText, "GPS latitude."),
	prop("exif", "GPSLongitude", "GPS Longitude", "GPSCoordinate", types.TypeXmpText, "GPS longitude."),
	prop("exif", "ISOSpeedRatings", "ISO Speed Ratings", "seq Integer", types.TypeXmpSeq, "ISO Speed and ISO Latitude of the input device."),
	prop("exif", "UserComment", "User Comment", "Lang Alt", types.TypeLangAlt, "Comments from user."),

	prop("lr", "hierarchicalSubject", "Hierarchical Subject", "bag Text", types.TypeXmpBag, "Keywords organised in a hierarchy."),

	prop("Iptc4xmpCore", "CountryCode", "Country Code", "closed Choice of Text", types.TypeXmpText, "Code of the country the content is focusing on."),
	prop("Iptc4xmpCore", "IntellectualGenre", "Intellectual Genre", "Text", types.TypeXmpText, "Describes the nature, intellectual or journalistic characteristic of an item."),
	prop("Iptc4xmpCore", "Location", "Location", "Text", types.TypeXmpText, "Name of a location the content is focusing on."),
	prop("Iptc4xmpCore", "Scene", "IPTC Scene", "bag closed Choice of Text", types.TypeXmpBag, "Describes the scene of a photo content."),
	prop("Iptc4xmpCore", "SubjectCode", "IPTC Subject Code", "bag closed Choice of Text", types.TypeXmpBag, "Specifies one or more Subjects from the IPTC Subject-NewsCodes taxonomy."),
}

var xmpByName = map[string]XmpPropertyInfo{}

func init() {
	for _, info := range xmpProperties {
		xmpByName[info.Prefix+"."+info.Name] = info
	}
}

// XmpProperty returns the schema entry for prefix:property. Properties not
// in the table are plain text.
func XmpProperty(prefix, property string) XmpPropertyInfo {
	if info, ok := xmpByName[prefix+"."+property]; ok {
		return info
	}
	return XmpPropertyInfo{Prefix: prefix, Name: property, Type: types.TypeXmpText}
}

// Registry is the XMP namespace-prefix registry. Builtin entries can never
// be removed.
type Registry struct {
	mu       sync.RWMutex
	byPrefix map[string]types.Namespace
}

// NewRegistry returns a registry holding only the builtin namespaces.
func NewRegistry() *Registry {
	r := &Registry{byPrefix: make(map[string]types.Namespace)}
	for _, ns := range builtinNamespaces {
		r.byPrefix[ns.Prefix] = ns
	}
	return r
}

// Namespaces is the process-wide registry used by key parsing and the XMP
// codec.
var Namespaces = NewRegistry()

// normalizeURI makes sure the URI ends in '/' or '#'.
func normalizeURI(uri string) string {
	if strings.HasSuffix(uri, "/") || strings.HasSuffix(uri, "#") {
		return uri
	}
	return uri + "/"
}

// NS returns the URI registered for prefix.
func (r *Registry) NS(prefix string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ns, ok := r.byPrefix[prefix]
	if !ok {
		return "", codes.New("NS", codes.NoNamespaceForPrefix, prefix)
	}
	return ns.URI, nil
}

// Prefix returns the prefix registered for uri, or "" when there is none.
func (r *Registry) Prefix(uri string) string {
	uri = normalizeURI(uri)
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, ns := range r.byPrefix {
		if ns.URI == uri {
			return ns.Prefix
		}
	}
	return ""
}

// Lookup returns the registry entry for uri.
func (r *Registry) Lookup(uri string) (types.Namespace, bool) {
	prefix := r.Prefix(uri)
	if prefix == "" {
		return types.Namespace{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	ns, ok := r.byPrefix[prefix]
	return ns, ok
}

// Register adds a custom namespace. A custom entry registered under the same
// URI is replaced. Builtin prefixes cannot be taken over.
func (r *Registry) Register(uri, prefix string) error {
	if uri == "" || prefix == "" || strings.ContainsAny(prefix, ".:/ ") {
		return codes.New("Register", codes.InvalidKey, prefix)
	}
	uri = normalizeURI(uri)

	r.mu.Lock()
	defer r.mu.Unlock()
	if ns, ok := r.byPrefix[prefix]; ok && ns.Builtin {
		return codes.New("Register", codes.ExistingPrefix, prefix)
	}
	for p, ns := range r.byPrefix {
		if ns.URI == uri && !ns.Builtin {
			delete(r.byPrefix, p)
		}
	}
	r.byPrefix[prefix] = types.Namespace{Prefix: prefix, URI: uri}
	return nil
}

// Unregister removes the custom namespace registered under uri. Builtin
// namespaces are silently kept.
func (r *Registry) Unregister(uri string) {
	uri = normalizeURI(uri)
	r.mu.Lock()
	defer r.mu.Unlock()
	for p, ns := range r.byPrefix {
		if ns.URI == uri && !ns.Builtin {
			delete(r.byPrefix, p)
		}
	}
}

// UnregisterAll removes every custom namespace.
func (r *Registry) UnregisterAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for p, ns := range r.byPrefix {
		if !ns.Builtin {
			delete(r.byPrefix, p)
		}
	}
}

// List returns all namespaces sorted by prefix.
func (r *Registry) List() []types.Namespace {
	r.mu.RLock()
	out := make([]types.Namespace, 0, len(r.byPrefix))
	for _, ns := range r.byPrefix {
		out = append(out, ns)
	}
	r.mu.RUnlock()
	slices.SortFunc(out, func(a, b types.Namespace) int {
		return strings.Compare(a.Prefix, b.Prefix)
	})
	return out
}

// ParseXmpKey parses "Xmp.<prefix>.<property>" against the registry.
func (r *Registry) ParseXmpKey(key string) (XmpKey, error) {
	parts := strings.SplitN(key, ".", 3)
	if len(parts) != 3 || parts[0] != "Xmp" || parts[1] == "" || parts[2] == "" {
		return XmpKey{}, codes.New("ParseXmpKey", codes.InvalidKey, key)
	}
	uri, err := r.NS(parts[1])
	if err != nil {
		return XmpKey{}, codes.New("ParseXmpKey", codes.NoNamespaceForPrefix, parts[1])
	}
	return XmpKey{
		Prefix:   parts[1],
		Property: parts[2],
		URI:      uri,
		Info:     XmpProperty(parts[1], parts[2]),
	}, nil
}

// ParseXmpKey parses key against the process-wide registry.
func ParseXmpKey(key string) (XmpKey, error) {
	return Namespaces.ParseXmpKey(key)
}
