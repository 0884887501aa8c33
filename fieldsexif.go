// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package jfifmeta

import (
	"fmt"
	"slices"
)

// FieldType is the TIFF data type of an IFD entry.
type FieldType uint16

const (
	TypeByte      FieldType = 1
	TypeASCII     FieldType = 2
	TypeShort     FieldType = 3
	TypeLong      FieldType = 4
	TypeRational  FieldType = 5
	TypeSByte     FieldType = 6
	TypeUndefined FieldType = 7
	TypeSShort    FieldType = 8
	TypeSLong     FieldType = 9
	TypeSRational FieldType = 10
	TypeFloat     FieldType = 11
	TypeDouble    FieldType = 12
)

var fieldTypeNames = map[FieldType]string{
	TypeByte:      "BYTE",
	TypeASCII:     "ASCII",
	TypeShort:     "SHORT",
	TypeLong:      "LONG",
	TypeRational:  "RATIONAL",
	TypeSByte:     "SBYTE",
	TypeUndefined: "UNDEFINED",
	TypeSShort:    "SSHORT",
	TypeSLong:     "SLONG",
	TypeSRational: "SRATIONAL",
	TypeFloat:     "FLOAT",
	TypeDouble:    "DOUBLE",
}

func (t FieldType) String() string {
	if s, ok := fieldTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("FieldType(%d)", uint16(t))
}

// Strategy selects how an IFD entry is turned into a value.
type Strategy uint8

const (
	// StrategyScalar stores the value field as decimal text.
	StrategyScalar Strategy = iota + 1
	// StrategyASCII reads count bytes at the value offset as a string.
	StrategyASCII
	// StrategyRational reads an unsigned numerator/denominator pair at the value offset.
	StrategyRational
	// StrategySRational reads a signed numerator/denominator pair at the value offset.
	StrategySRational
	// StrategyRationalSeries reads six rationals at 8 byte strides, stored as Name0..Name5.
	StrategyRationalSeries
	// StrategySubIFD follows the value offset to a nested IFD.
	StrategySubIFD
	// StrategyPlaceholder marks a known tag that is deliberately left unparsed.
	StrategyPlaceholder
)

var strategyNames = [...]string{
	StrategyScalar:         "scalar",
	StrategyASCII:          "ascii",
	StrategyRational:       "rational",
	StrategySRational:      "srational",
	StrategyRationalSeries: "rational-series",
	StrategySubIFD:         "sub-ifd",
	StrategyPlaceholder:    "placeholder",
}

func (s Strategy) String() string {
	if int(s) < len(strategyNames) && strategyNames[s] != "" {
		return strategyNames[s]
	}
	return fmt.Sprintf("Strategy(%d)", uint8(s))
}

// TagDef describes how one EXIF tag is decoded.
type TagDef struct {
	ID   uint16
	Name string
	// Type is the field type the tag is expected to carry.
	// It is enforced by the ASCII and rational strategies only.
	Type     FieldType
	Strategy Strategy
}

const (
	tagExifIFDPointer = 0x8769
	tagGPSInfo        = 0x8825
)

var exifTagDefs = []TagDef{
	{0x010f, "Make", TypeASCII, StrategyASCII},
	{0x0110, "Model", TypeASCII, StrategyASCII},
	{0x0112, "Orientation", TypeShort, StrategyScalar},
	{0x011a, "XResolution", TypeRational, StrategyRational},
	{0x011b, "YResolution", TypeRational, StrategyRational},
	{0x0128, "ResolutionUnit", TypeShort, StrategyScalar},
	{0x0131, "Software", TypeASCII, StrategyASCII},
	{0x0132, "DateTime", TypeASCII, StrategyASCII},
	{0x013b, "Artist", TypeASCII, StrategyASCII},
	{0x0213, "YCbCrPositioning", TypeShort, StrategyScalar},
	{0x0214, "ReferenceBlackWhite", TypeRational, StrategyRationalSeries},
	{0x8298, "Copyright", TypeASCII, StrategyASCII},
	{0x829a, "ExposureTime", TypeRational, StrategyRational},
	{0x829d, "FNumber", TypeRational, StrategyRational},
	{tagExifIFDPointer, "ExifOffset", TypeLong, StrategySubIFD},
	{0x8822, "ExposureProgram", TypeShort, StrategyScalar},
	{tagGPSInfo, "GPSInfo", TypeLong, StrategyPlaceholder},
	{0x8827, "PhotographicSensitivity", TypeShort, StrategyScalar},
	{0x8830, "SensitivityType", TypeShort, StrategyScalar},
	{0x9000, "ExifVersion", TypeUndefined, StrategyPlaceholder},
	{0x9003, "DateTimeOriginal", TypeASCII, StrategyASCII},
	{0x9004, "DateTimeDigitized", TypeASCII, StrategyASCII},
	{0x9010, "OffsetTime", TypeASCII, StrategyASCII},
	{0x9101, "ComponentsConfiguration", TypeUndefined, StrategyPlaceholder},
	{0x9201, "ShutterSpeedValue", TypeSRational, StrategySRational},
	{0x9202, "ApertureValue", TypeRational, StrategyRational},
	{0x9203, "BrightnessValue", TypeSRational, StrategySRational},
	{0x9204, "ExposureBiasValue", TypeSRational, StrategySRational},
	{0x9205, "MaxApertureValue", TypeRational, StrategyRational},
	{0x9207, "MeteringMode", TypeShort, StrategyScalar},
	{0x9208, "LightSource", TypeShort, StrategyScalar},
	{0x9209, "Flash", TypeShort, StrategyScalar},
	{0x920a, "FocalLength", TypeRational, StrategyRational},
	{0x9214, "SubjectArea", TypeShort, StrategyScalar},
	// Opaque: the value field (an offset for any real payload) is stored as is.
	{0x927c, "MakerNote", TypeUndefined, StrategyScalar},
	{0x9286, "UserComment", TypeUndefined, StrategyScalar},
	{0x9290, "SubSecTime", TypeASCII, StrategyASCII},
	{0x9291, "SubSecTimeOriginal", TypeASCII, StrategyASCII},
	{0x9292, "SubSecTimeDigitized", TypeASCII, StrategyASCII},
	{0xa000, "FlashPixVersion", TypeUndefined, StrategyScalar},
	{0xa001, "ColorSpace", TypeShort, StrategyScalar},
	{0xa002, "PixelXDimension", TypeShort, StrategyScalar},
	{0xa003, "PixelYDimension", TypeShort, StrategyScalar},
	{0xa20e, "FocalPlaneXResolution", TypeRational, StrategyRational},
	{0xa20f, "FocalPlaneYResolution", TypeRational, StrategyRational},
	{0xa210, "FocalPlaneResolutionUnit", TypeShort, StrategyScalar},
	{0xa217, "SensingMethod", TypeShort, StrategyScalar},
	{0xa300, "FileSource", TypeUndefined, StrategyScalar},
	{0xa301, "SceneType", TypeUndefined, StrategyScalar},
	{0xa302, "CFAPattern", TypeUndefined, StrategyScalar},
	{0xa401, "CustomRendered", TypeShort, StrategyScalar},
	{0xa402, "ExposureMode", TypeShort, StrategyScalar},
	{0xa403, "WhiteBalance", TypeShort, StrategyScalar},
	{0xa404, "DigitalZoomRatio", TypeRational, StrategyRational},
	{0xa405, "FocalLengthIn35mmFilm", TypeShort, StrategyScalar},
	{0xa406, "SceneCaptureType", TypeShort, StrategyScalar},
	{0xa407, "GainControl", TypeShort, StrategyScalar},
	{0xa408, "Contrast", TypeShort, StrategyScalar},
	{0xa409, "Saturation", TypeShort, StrategyScalar},
	{0xa40a, "Sharpness", TypeShort, StrategyScalar},
	{0xa40c, "SubjectDistanceRange", TypeShort, StrategyScalar},
	{0xa431, "BodySerialNumber", TypeASCII, StrategyASCII},
	// Only the first of the four rationals is read.
	{0xa432, "LensSpecification", TypeRational, StrategyRational},
	{0xa433, "LensMake", TypeASCII, StrategyASCII},
	{0xa434, "LensModel", TypeASCII, StrategyASCII},
	{0xa435, "LensSerialNumber", TypeASCII, StrategyASCII},
}

var exifTagsByID = map[uint16]TagDef{}

func init() {
	for _, def := range exifTagDefs {
		if _, found := exifTagsByID[def.ID]; found {
			panic(fmt.Sprintf("duplicate EXIF tag 0x%04x", def.ID))
		}
		exifTagsByID[def.ID] = def
	}
}

// LookupTag returns the definition of the EXIF tag with the given id.
func LookupTag(id uint16) (TagDef, bool) {
	def, ok := exifTagsByID[id]
	return def, ok
}

// Tags returns all known EXIF tag definitions sorted by id.
func Tags() []TagDef {
	defs := slices.Clone(exifTagDefs)
	slices.SortFunc(defs, func(a, b TagDef) int {
		return int(a.ID) - int(b.ID)
	})
	return defs
}
