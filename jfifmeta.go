// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

// Package jfifmeta reads JFIF header fields and EXIF metadata from JPEG streams.
package jfifmeta

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"
)

const (
	// DefaultMaxIFDDepth is the default maximum nesting of sub-IFD pointers.
	DefaultMaxIFDDepth = 16
	// DefaultLimitNumTags is the default maximum number of IFD entries read per EXIF block.
	DefaultLimitNumTags = 5000
)

// DecodeMode controls how values stored inline in an IFD entry are interpreted.
type DecodeMode int

const (
	// ModeCompatible skips ASCII values with a count of 4 or less, keeps every
	// byte of longer strings including the terminating NUL, and reports scalar
	// tags as the raw 32-bit value field.
	ModeCompatible DecodeMode = iota

	// ModeInline reads ASCII values of 4 bytes or less from the inline value field,
	// trims trailing NULs, and reads single SHORT scalars from the first two bytes
	// of the value field in the block's byte order.
	ModeInline
)

func (m DecodeMode) String() string {
	switch m {
	case ModeCompatible:
		return "compatible"
	case ModeInline:
		return "inline"
	default:
		return fmt.Sprintf("DecodeMode(%d)", int(m))
	}
}

// ParseDecodeMode parses the String form of a DecodeMode.
func ParseDecodeMode(s string) (DecodeMode, error) {
	switch strings.ToLower(s) {
	case "", "compatible":
		return ModeCompatible, nil
	case "inline":
		return ModeInline, nil
	default:
		return 0, fmt.Errorf("unknown decode mode %q", s)
	}
}

// Logger receives diagnostics from the decoder.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any) {}
func (NopLogger) Infof(string, ...any)  {}
func (NopLogger) Warnf(string, ...any)  {}

// Options contains the options for the Decode function.
type Options struct {
	// The Reader (typically a *os.File) positioned at the start of a JPEG stream.
	R io.Reader

	// Logger receives marker tracing, unknown tag reports and warnings.
	// If not set, diagnostics are discarded.
	Logger Logger

	// MaxIFDDepth is the maximum nesting of sub-IFD pointers.
	// Default value is 16.
	MaxIFDDepth int

	// LimitNumTags is the maximum number of IFD entries to read per EXIF block.
	// Default value is 5000.
	LimitNumTags uint32

	// Mode controls how inline values are interpreted.
	Mode DecodeMode
}

func (opts Options) withDefaults() Options {
	if opts.Logger == nil {
		opts.Logger = NopLogger{}
	}
	if opts.MaxIFDDepth <= 0 {
		opts.MaxIFDDepth = DefaultMaxIFDDepth
	}
	if opts.LimitNumTags == 0 {
		opts.LimitNumTags = DefaultLimitNumTags
	}
	return opts
}

// DensityUnit is the unit of the JFIF pixel density fields.
type DensityUnit uint8

const (
	// DensityNone means the density fields only give the aspect ratio.
	DensityNone DensityUnit = 0
	// DensityInch is dots per inch.
	DensityInch DensityUnit = 1
	// DensityCentimeter is dots per centimeter.
	DensityCentimeter DensityUnit = 2
)

func (u DensityUnit) String() string {
	switch u {
	case DensityNone:
		return "none"
	case DensityInch:
		return "dpi"
	case DensityCentimeter:
		return "dpcm"
	default:
		return fmt.Sprintf("DensityUnit(%d)", uint8(u))
	}
}

// Document is the result of decoding one JPEG stream.
type Document struct {
	// Version is the JFIF version, e.g. 0x0102.
	Version uint16

	Unit     DensityUnit
	DensityX uint16
	DensityY uint16

	ThumbnailWidth  uint8
	ThumbnailHeight uint8

	// EXIF is nil if the stream had no EXIF APP1 segment or its block could not be decoded.
	EXIF *EXIF
}

// VersionString returns the JFIF version as major.minor, e.g. "1.02".
func (d *Document) VersionString() string {
	return fmt.Sprintf("%d.%02d", d.Version>>8, d.Version&0xff)
}

// EXIF holds the values decoded from one EXIF block.
// Values from the primary IFD and all sub-IFDs are merged into one map.
type EXIF struct {
	ByteOrder binary.ByteOrder
	Values    map[string]string
}

// Get returns the value of the named tag.
func (x *EXIF) Get(name string) (string, bool) {
	if x == nil {
		return "", false
	}
	v, ok := x.Values[name]
	return v, ok
}

// Names returns the tag names in x, sorted.
func (x *EXIF) Names() []string {
	if x == nil {
		return nil
	}
	names := make([]string, 0, len(x.Values))
	for k := range x.Values {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

// Rational parses the named unsigned rational tag.
func (x *EXIF) Rational(name string) (Rat[uint32], error) {
	var r Rat[uint32]
	err := x.unmarshalTag(name, &r)
	return r, err
}

// SignedRational parses the named signed rational tag.
func (x *EXIF) SignedRational(name string) (Rat[int32], error) {
	var r Rat[int32]
	err := x.unmarshalTag(name, &r)
	return r, err
}

func (x *EXIF) unmarshalTag(name string, v interface{ UnmarshalText([]byte) error }) error {
	s, ok := x.Get(name)
	if !ok {
		return fmt.Errorf("tag %q not present", name)
	}
	return v.UnmarshalText([]byte(s))
}

// DateTime returns the capture time from DateTimeOriginal, falling back to DateTime.
// OffsetTime is applied if present, else the time is in time.Local.
func (x *EXIF) DateTime() (time.Time, error) {
	const layout = "2006:01:02 15:04:05"

	var dateStr string
	for _, name := range []string{"DateTimeOriginal", "DateTime"} {
		if s, ok := x.Get(name); ok {
			dateStr = trimNulls(s)
			break
		}
	}
	if dateStr == "" {
		return time.Time{}, errors.New("no date/time tag present")
	}

	if offset, ok := x.Get("OffsetTime"); ok {
		if tm, err := time.Parse(layout+"-07:00", dateStr+trimNulls(offset)); err == nil {
			return tm, nil
		}
	}

	return time.ParseInLocation(layout, dateStr, time.Local)
}

// Decode reads the JFIF marker stream from opts.R and returns the decoded document.
// A document is only returned if the stream reached its EOI marker; any other outcome
// returns an error, which for malformed or truncated streams satisfies IsInvalidFormat.
func Decode(opts Options) (*Document, error) {
	if opts.R == nil {
		return nil, errors.New("no reader provided")
	}
	opts = opts.withDefaults()

	dec := &imageDecoderJPEG{
		streamReader: newStreamReader(opts.R),
		opts:         opts,
	}

	doc, err := dec.decode()
	if err != nil {
		if isInvalidFormatErrorCandidate(err) {
			err = newInvalidFormatError(err)
		}
		opts.Logger.Debugf("decode failed: %v", err)
		return nil, err
	}

	return doc, nil
}

// DecodeEXIF decodes a raw EXIF/TIFF block, i.e. the APP1 payload following the
// "Exif\x00\x00" signature. opts.R is not used.
func DecodeEXIF(block []byte, opts Options) (*EXIF, error) {
	opts = opts.withDefaults()
	x, err := newMetaDecoderEXIF(block, opts).decode()
	if err != nil {
		return nil, newInvalidFormatError(err)
	}
	return x, nil
}
