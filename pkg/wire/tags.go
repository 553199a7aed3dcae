package wire

import "fmt"

// Tag is the one-byte type marker that precedes every tagged value.
type Tag byte

// Type tags. Values are fixed by the wire protocol.
const (
	TagUnknown        Tag = 0
	TagBoolean        Tag = 2
	TagByte           Tag = 3
	TagShort          Tag = 4
	TagFloat          Tag = 5
	TagDouble         Tag = 6
	TagString         Tag = 7
	TagNull           Tag = 8
	TagCompressedInt  Tag = 9
	TagCompressedLong Tag = 10

	// Small integer shorthands. The trailing underscore marks the negative
	// form, whose payload is the magnitude.
	TagInt1  Tag = 11
	TagInt1_ Tag = 12
	TagInt2  Tag = 13
	TagInt2_ Tag = 14
	TagL1    Tag = 15
	TagL1_   Tag = 16
	TagL2    Tag = 17
	TagL2_   Tag = 18

	TagCustom            Tag = 19
	TagDictionary        Tag = 20
	TagHashtable         Tag = 21
	TagObjectArray       Tag = 23
	TagOperationRequest  Tag = 24
	TagOperationResponse Tag = 25
	TagEventData         Tag = 26

	// Zero shorthands carry no payload.
	TagBooleanFalse Tag = 27
	TagBooleanTrue  Tag = 28
	TagShortZero    Tag = 29
	TagIntZero      Tag = 30
	TagLongZero     Tag = 31
	TagFloatZero    Tag = 32
	TagDoubleZero   Tag = 33
	TagByteZero     Tag = 34

	TagArray               Tag = 64
	TagBooleanArray        Tag = 66
	TagByteArray           Tag = 67
	TagShortArray          Tag = 68
	TagFloatArray          Tag = 69
	TagDoubleArray         Tag = 70
	TagStringArray         Tag = 71
	TagCompressedIntArray  Tag = 73
	TagCompressedLongArray Tag = 74
	TagCustomTypeArray     Tag = 83
	TagDictionaryArray     Tag = 84
	TagHashtableArray      Tag = 85

	// TagCustomTypeSlim is added to custom codes below SlimCustomCodeLimit.
	TagCustomTypeSlim Tag = 128
)

// SlimCustomCodeLimit is the first custom code that needs the two byte
// Custom+code form.
const SlimCustomCodeLimit = 100

var tagNames = map[Tag]string{
	TagUnknown:             "Unknown",
	TagBoolean:             "Boolean",
	TagByte:                "Byte",
	TagShort:               "Short",
	TagFloat:               "Float",
	TagDouble:              "Double",
	TagString:              "String",
	TagNull:                "Null",
	TagCompressedInt:       "CompressedInt",
	TagCompressedLong:      "CompressedLong",
	TagInt1:                "Int1",
	TagInt1_:               "Int1_",
	TagInt2:                "Int2",
	TagInt2_:               "Int2_",
	TagL1:                  "L1",
	TagL1_:                 "L1_",
	TagL2:                  "L2",
	TagL2_:                 "L2_",
	TagCustom:              "Custom",
	TagDictionary:          "Dictionary",
	TagHashtable:           "Hashtable",
	TagObjectArray:         "ObjectArray",
	TagOperationRequest:    "OperationRequest",
	TagOperationResponse:   "OperationResponse",
	TagEventData:           "EventData",
	TagBooleanFalse:        "BooleanFalse",
	TagBooleanTrue:         "BooleanTrue",
	TagShortZero:           "ShortZero",
	TagIntZero:             "IntZero",
	TagLongZero:            "LongZero",
	TagFloatZero:           "FloatZero",
	TagDoubleZero:          "DoubleZero",
	TagByteZero:            "ByteZero",
	TagArray:               "Array",
	TagBooleanArray:        "BooleanArray",
	TagByteArray:           "ByteArray",
	TagShortArray:          "ShortArray",
	TagFloatArray:          "FloatArray",
	TagDoubleArray:         "DoubleArray",
	TagStringArray:         "StringArray",
	TagCompressedIntArray:  "CompressedIntArray",
	TagCompressedLongArray: "CompressedLongArray",
	TagCustomTypeArray:     "CustomTypeArray",
	TagDictionaryArray:     "DictionaryArray",
	TagHashtableArray:      "HashtableArray",
}

// String returns the tag name.
func (t Tag) String() string {
	if name, ok := tagNames[t]; ok {
		return name
	}
	if t.IsSlimCustom() {
		return fmt.Sprintf("CustomTypeSlim(%d)", t.CustomCode())
	}
	return fmt.Sprintf("Tag(%d)", byte(t))
}

// IsSlimCustom reports whether the tag is a single-byte custom type tag.
// Only codes below SlimCustomCodeLimit have one.
func (t Tag) IsSlimCustom() bool {
	return t >= TagCustomTypeSlim && t < TagCustomTypeSlim+SlimCustomCodeLimit
}

// CustomCode returns the custom type code carried by a slim custom tag.
func (t Tag) CustomCode() byte {
	return byte(t - TagCustomTypeSlim)
}

// IsKnown reports whether the decoder understands the tag.
func (t Tag) IsKnown() bool {
	_, ok := tagNames[t]
	return (ok && t != TagUnknown) || t.IsSlimCustom()
}
