package schema

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/simonhull/imagemeta/internal/codes"
	"github.com/simonhull/imagemeta/internal/types"
)

// IPTC records.
const (
	RecordEnvelope     uint8 = 1
	RecordApplication2 uint8 = 2
)

// DataSetCharacterSet is the 1:90 dataset declaring the coded character set.
const DataSetCharacterSet uint8 = 90

// IptcRecordInfo describes one IIM record.
type IptcRecordInfo struct {
	Number      uint8
	Name        string
	Description string
}

var iptcRecords = []IptcRecordInfo{
	{RecordEnvelope, "Envelope", "IIM envelope record"},
	{RecordApplication2, "Application2", "IIM application record 2"},
}

// IptcDataSetInfo is the static description of one IPTC dataset.
type IptcDataSetInfo struct {
	Record        uint8
	Number        uint8
	Name          string
	Title         string
	Description   string
	PhotoshopName string
	Repeatable    bool
	Type          types.TypeID
}

// RecordName returns the name of the record the dataset belongs to.
func (i IptcDataSetInfo) RecordName() string {
	return iptcRecord(i.Record).Name
}

// RecordDescription returns the description of the record.
func (i IptcDataSetInfo) RecordDescription() string {
	return iptcRecord(i.Record).Description
}

// IptcKey is a parsed IPTC key such as "Iptc.Application2.Keywords".
type IptcKey struct {
	Info IptcDataSetInfo
}

// String returns the canonical key.
func (k IptcKey) String() string {
	return "Iptc." + k.Info.RecordName() + "." + k.Info.Name
}

func ds(record, num uint8, name, title string, repeatable bool, typ types.TypeID, psName, desc string) IptcDataSetInfo {
	return IptcDataSetInfo{
		Record: record, Number: num, Name: name, Title: title, Repeatable: repeatable,
		Type: typ, PhotoshopName: psName, Description: desc,
	}
}

const (
	repeatable    = true
	notRepeatable = false
)

var iptcDataSets = []IptcDataSetInfo{
	ds(RecordEnvelope, 0, "ModelVersion", "Model Version", notRepeatable, types.TypeShort, "", "Version of the IIM envelope record."),
	ds(RecordEnvelope, 5, "Destination", "Destination", repeatable, types.TypeString, "", "Routing information."),
	ds(RecordEnvelope, 20, "FileFormat", "File Format", notRepeatable, types.TypeShort, "", "File format of the data described by the object data."),
	ds(RecordEnvelope, 22, "FileVersion", "File Version", notRepeatable, types.TypeShort, "", "Version of the file format."),
	ds(RecordEnvelope, 30, "ServiceId", "Service ID", notRepeatable, types.TypeString, "", "Identifies the provider and product."),
	ds(RecordEnvelope, 40, "EnvelopeNumber", "Envelope Number", notRepeatable, types.TypeString, "", "Envelope number, unique for the date and service."),
	ds(RecordEnvelope, 50, "ProductId", "Product ID", repeatable, types.TypeString, "", "Identifies subsets of provider's overall service."),
	ds(RecordEnvelope, 60, "EnvelopePriority", "Envelope Priority", notRepeatable, types.TypeString, "", "Envelope handling priority."),
	ds(RecordEnvelope, 70, "DateSent", "Date Sent", notRepeatable, types.TypeDate, "", "Date the service sent the material."),
	ds(RecordEnvelope, 80, "TimeSent", "Time Sent", notRepeatable, types.TypeTime, "", "Time the service sent the material."),
	ds(RecordEnvelope, DataSetCharacterSet, "CharacterSet", "Character Set", notRepeatable, types.TypeUndefined, "", "Control functions used for the announcement, invocation or designation of coded character sets."),
	ds(RecordEnvelope, 100, "UNO", "Unique Name of Object", notRepeatable, types.TypeString, "", "Eternal, globally unique identification for the object."),

	ds(RecordApplication2, 0, "RecordVersion", "Record Version", notRepeatable, types.TypeShort, "", "Version of the IIM application record 2."),
	ds(RecordApplication2, 3, "ObjectType", "Object Type", notRepeatable, types.TypeString, "", "Object type reference."),
	ds(RecordApplication2, 4, "ObjectAttribute", "Object Attribute", repeatable, types.TypeString, "", "Object attribute reference."),
	ds(RecordApplication2, 5, "ObjectName", "Object Name", notRepeatable, types.TypeString, "Document Title", "Shorthand reference for the object."),
	ds(RecordApplication2, 7, "EditStatus", "Edit Status", notRepeatable, types.TypeString, "", "Status of the object data, according to the practice of the provider."),
	ds(RecordApplication2, 10, "Urgency", "Urgency", notRepeatable, types.TypeString, "Urgency", "Editorial urgency of content."),
	ds(RecordApplication2, 12, "Subject", "Subject", repeatable, types.TypeString, "", "Subject reference."),
	ds(RecordApplication2, 15, "Category", "Category", notRepeatable, types.TypeString, "Category", "Subject of the object data."),
	ds(RecordApplication2, 20, "SuppCategory", "Supplemental Category", repeatable, types.TypeString, "Supplemental Categories", "Further refinement of the subject."),
	ds(RecordApplication2, 22, "FixtureId", "Fixture Id", notRepeatable, types.TypeString, "", "Identifies object data that recurs often and predictably."),
	ds(RecordApplication2, 25, "Keywords", "Keywords", repeatable, types.TypeString, "Keywords", "Keywords to express the subject of the content."),
	ds(RecordApplication2, 26, "LocationCode", "Location Code", repeatable, types.TypeString, "", "Country code of the location shown."),
	ds(RecordApplication2, 27, "LocationName", "Location Name", repeatable, types.TypeString, "", "Full name of the location shown."),
	ds(RecordApplication2, 30, "ReleaseDate", "Release Date", notRepeatable, types.TypeDate, "", "Earliest date the provider intends the object to be used."),
	ds(RecordApplication2, 35, "ReleaseTime", "Release Time", notRepeatable, types.TypeTime, "", "Earliest time the provider intends the object to be used."),
	ds(RecordApplication2, 37, "ExpirationDate", "Expiration Date", notRepeatable, types.TypeDate, "", "Latest date the provider intends the object to be used."),
	ds(RecordApplication2, 38, "ExpirationTime", "Expiration Time", notRepeatable, types.TypeTime, "", "Latest time the provider intends the object to be used."),
	ds(RecordApplication2, 40, "SpecialInstructions", "Special Instructions", notRepeatable, types.TypeString, "Instructions", "Other editorial instructions concerning the use of the object."),
	ds(RecordApplication2, 42, "ActionAdvised", "Action Advised", notRepeatable, types.TypeString, "", "Type of action this object provides to a previous object."),
	ds(RecordApplication2, 45, "ReferenceService", "Reference Service", repeatable, types.TypeString, "", "Service identifier of a prior envelope."),
	ds(RecordApplication2, 47, "ReferenceDate", "Reference Date", repeatable, types.TypeDate, "", "Date of a prior envelope."),
	ds(RecordApplication2, 50, "ReferenceNumber", "Reference Number", repeatable, types.TypeString, "", "Envelope number of a prior envelope."),
	ds(RecordApplication2, 55, "DateCreated", "Date Created", notRepeatable, types.TypeDate, "Date Created", "Date the intellectual content was created."),
	ds(RecordApplication2, 60, "TimeCreated", "Time Created", notRepeatable, types.TypeTime, "", "Time the intellectual content was created."),
	ds(RecordApplication2, 62, "DigitizationDate", "Digital Creation Date", notRepeatable, types.TypeDate, "", "Date the digital representation was created."),
	ds(RecordApplication2, 63, "DigitizationTime", "Digital Creation Time", notRepeatable, types.TypeTime, "", "Time the digital representation was created."),
	ds(RecordApplication2, 65, "Program", "Program", notRepeatable, types.TypeString, "", "Program used to originate the object data."),
	ds(RecordApplication2, 70, "ProgramVersion", "Program Version", notRepeatable, types.TypeString, "", "Version of the originating program."),
	ds(RecordApplication2, 75, "ObjectCycle", "Object Cycle", notRepeatable, types.TypeString, "", "Editorial cycle: a (morning), p (evening) or b (both)."),
	ds(RecordApplication2, 80, "Byline", "By-line", repeatable, types.TypeString, "Author", "Name of the creator of the object."),
	ds(RecordApplication2, 85, "BylineTitle", "By-line Title", repeatable, types.TypeString, "Authors Position", "Title of the creator or creators."),
	ds(RecordApplication2, 90, "City", "City", notRepeatable, types.TypeString, "City", "City of object origin."),
	ds(RecordApplication2, 92, "SubLocation", "Sub Location", notRepeatable, types.TypeString, "", "Location within a city."),
	ds(RecordApplication2, 95, "ProvinceState", "Province/State", notRepeatable, types.TypeString, "State/Province", "Province or state of object origin."),
	ds(RecordApplication2, 100, "CountryCode", "Country Code", notRepeatable, types.TypeString, "", "ISO country code of object origin."),
	ds(RecordApplication2, 101, "CountryName", "Country Name", notRepeatable, types.TypeString, "Country", "Full name of the country of object origin."),
	ds(RecordApplication2, 103, "TransmissionReference", "Transmission Reference", notRepeatable, types.TypeString, "Transmission Reference", "Code representing the location of original transmission."),
	ds(RecordApplication2, 105, "Headline", "Headline", notRepeatable, types.TypeString, "Headline", "Synopsis of the contents of the object data."),
	ds(RecordApplication2, 110, "Credit", "Credit", notRepeatable, types.TypeString, "Credit", "Provider of the object data."),
	ds(RecordApplication2, 115, "Source", "Source", notRepeatable, types.TypeString, "Source", "Original owner of the intellectual content."),
	ds(RecordApplication2, 116, "Copyright", "Copyright", notRepeatable, types.TypeString, "Copyright Notice", "Copyright notice."),
	ds(RecordApplication2, 118, "Contact", "Contact", repeatable, types.TypeString, "", "Person or organisation to contact for further information."),
	ds(RecordApplication2, 120, "Caption", "Caption", notRepeatable, types.TypeString, "Description", "Textual description of the object data."),
	ds(RecordApplication2, 122, "Writer", "Writer", repeatable, types.TypeString, "Description Writer", "Person involved in writing the caption."),
	ds(RecordApplication2, 130, "ImageType", "Image Type", notRepeatable, types.TypeString, "", "Color components in an image."),
	ds(RecordApplication2, 131, "ImageOrientation", "Image Orientation", notRepeatable, types.TypeString, "", "Image orientation: P (portrait), L (landscape) or S (square)."),
	ds(RecordApplication2, 135, "Language", "Language Identifier", notRepeatable, types.TypeString, "", "Major national language of the object."),
}

var (
	iptcByName   = map[string]IptcDataSetInfo{}
	iptcByNumber = map[[2]uint8]IptcDataSetInfo{}
)

func init() {
	for _, info := range iptcDataSets {
		iptcByName[info.RecordName()+"."+info.Name] = info
		iptcByNumber[[2]uint8{info.Record, info.Number}] = info
	}
}

func iptcRecord(n uint8) IptcRecordInfo {
	for _, r := range iptcRecords {
		if r.Number == n {
			return r
		}
	}
	return IptcRecordInfo{Number: n, Name: fmt.Sprintf("0x%04x", n), Description: "Unknown IIM record"}
}

func iptcRecordByName(name string) (IptcRecordInfo, bool) {
	for _, r := range iptcRecords {
		if r.Name == name {
			return r, true
		}
	}
	return IptcRecordInfo{}, false
}

// IptcDataSet returns the schema entry for record:dataset. Unknown datasets
// get a synthetic repeatable String entry named 0xNNNN.
func IptcDataSet(record, num uint8) IptcDataSetInfo {
	if info, ok := iptcByNumber[[2]uint8{record, num}]; ok {
		return info
	}
	return IptcDataSetInfo{
		Record:     record,
		Number:     num,
		Name:       fmt.Sprintf("0x%04x", num),
		Title:      "Unknown dataset",
		Repeatable: true,
		Type:       types.TypeString,
	}
}

// ParseIptcKey parses "Iptc.<Record>.<DataSet|0xNNNN>".
func ParseIptcKey(key string) (IptcKey, error) {
	parts := strings.Split(key, ".")
	if len(parts) != 3 || parts[0] != "Iptc" || parts[2] == "" {
		return IptcKey{}, codes.New("ParseIptcKey", codes.InvalidKey, key)
	}

	rec, ok := iptcRecordByName(parts[1])
	if !ok {
		return IptcKey{}, codes.New("ParseIptcKey", codes.InvalidRecord, parts[1])
	}

	if info, ok := iptcByName[rec.Name+"."+parts[2]]; ok {
		return IptcKey{Info: info}, nil
	}

	name := parts[2]
	if strings.HasPrefix(name, "0x") || strings.HasPrefix(name, "0X") {
		n, err := strconv.ParseUint(name[2:], 16, 8)
		if err == nil {
			return IptcKey{Info: IptcDataSet(rec.Number, uint8(n))}, nil
		}
	}

	return IptcKey{}, codes.New("ParseIptcKey", codes.InvalidDataset, name)
}
