// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package jfifmeta

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strconv"
)

const (
	byteOrderBigEndian    = 'M'
	byteOrderLittleEndian = 'I'

	ifdEntrySize         = 12
	referenceSeriesLen   = 6
	referenceSeriesWidth = 8
)

// ifdEntry is one 12 byte IFD record:
//   - 2 bytes for the tag ID
//   - 2 bytes for the data type
//   - 4 bytes for the number of data values of the specified type
//   - 4 bytes for the value itself, if it fits, otherwise for an offset into the block
//     where the data may be found; this could be the start of another IFD.
type ifdEntry struct {
	tag   uint16
	typ   FieldType
	count uint32
	value uint32

	// The value field as stored, in file order.
	inline []byte
}

// valueDecoder turns an entry into text. A false return means the value is absent.
type valueDecoder func(e *metaDecoderEXIF, entry ifdEntry, offset uint32) (string, bool, error)

var strategyDecoders = map[Strategy]valueDecoder{
	StrategyScalar:         (*metaDecoderEXIF).decodeScalar,
	StrategyASCII:          (*metaDecoderEXIF).decodeASCII,
	StrategyRational:       (*metaDecoderEXIF).decodeRational,
	StrategySRational:      (*metaDecoderEXIF).decodeSRational,
	StrategyRationalSeries: (*metaDecoderEXIF).decodeRational,
}

type metaDecoderEXIF struct {
	blockReader
	opts Options

	values  map[string]string
	numTags uint32
}

func newMetaDecoderEXIF(block []byte, opts Options) *metaDecoderEXIF {
	return &metaDecoderEXIF{
		blockReader: blockReader{b: block},
		opts:        opts,
		values:      make(map[string]string),
	}
}

func (e *metaDecoderEXIF) decode() (*EXIF, error) {
	if len(e.b) == 0 {
		return nil, fmt.Errorf("%w: empty EXIF block", ErrOutOfBounds)
	}

	switch e.b[0] {
	case byteOrderBigEndian:
		e.byteOrder = binary.BigEndian
	case byteOrderLittleEndian:
		e.byteOrder = binary.LittleEndian
	default:
		return nil, fmt.Errorf("%w: 0x%02x", ErrInvalidByteOrder, e.b[0])
	}
	e.opts.Logger.Debugf("byte order: %s", e.byteOrder)

	ifd0Offset, err := e.read4(4)
	if err != nil {
		return nil, err
	}

	n, err := e.decodeIFD(ifd0Offset, 0)
	if err != nil {
		return nil, err
	}
	e.opts.Logger.Debugf("decoded %d IFD entries, %d values", n, len(e.values))

	return &EXIF{
		ByteOrder: e.byteOrder,
		Values:    e.values,
	}, nil
}

// decodeIFD decodes the directory at offset and any sub-IFDs it points to.
// It returns the number of entries processed.
func (e *metaDecoderEXIF) decodeIFD(offset uint32, depth int) (int, error) {
	if depth > e.opts.MaxIFDDepth {
		return 0, fmt.Errorf("%w: IFD at offset %d nested %d levels deep", ErrMaxDepth, offset, depth)
	}

	numTags, err := e.read2(offset)
	if err != nil {
		return 0, fmt.Errorf("IFD entry count: %w", err)
	}
	pos := offset + 2

	var processed int
	for i := 0; i < int(numTags); i++ {
		e.numTags++
		if e.numTags > e.opts.LimitNumTags {
			return processed, fmt.Errorf("%w: limit is %d", ErrTooManyTags, e.opts.LimitNumTags)
		}

		entry, err := e.readEntry(pos)
		if err != nil {
			return processed, err
		}
		pos += ifdEntrySize

		n, err := e.decodeTag(entry, depth)
		if err != nil {
			return processed, err
		}
		processed += 1 + n
	}

	return processed, nil
}

func (e *metaDecoderEXIF) readEntry(pos uint32) (entry ifdEntry, err error) {
	if entry.inline, err = e.readBytes(pos+8, 4); err != nil {
		return
	}
	var typ uint16
	if entry.tag, err = e.read2(pos); err != nil {
		return
	}
	if typ, err = e.read2(pos + 2); err != nil {
		return
	}
	entry.typ = FieldType(typ)
	if entry.count, err = e.read4(pos + 4); err != nil {
		return
	}
	entry.value, err = e.read4(pos + 8)
	return
}

// decodeTag dispatches entry through the tag table. It returns the number
// of entries processed in any sub-IFD.
func (e *metaDecoderEXIF) decodeTag(entry ifdEntry, depth int) (int, error) {
	def, found := exifTagsByID[entry.tag]
	if !found {
		e.opts.Logger.Infof("unknown tag 0x%04x type %d count %d value %d", entry.tag, entry.typ, entry.count, entry.value)
		return 0, nil
	}

	switch def.Strategy {
	case StrategySubIFD:
		e.opts.Logger.Debugf("%s: IFD at offset %d", def.Name, entry.value)
		return e.decodeIFD(entry.value, depth+1)
	case StrategyPlaceholder:
		e.opts.Logger.Debugf("%s: not parsed", def.Name)
		return 0, nil
	case StrategyRationalSeries:
		if entry.typ != def.Type {
			e.warnTypeMismatch(def.Name, entry.typ, def.Type)
			return 0, nil
		}
		for i := 0; i < referenceSeriesLen; i++ {
			offset := uint64(entry.value) + uint64(i*referenceSeriesWidth)
			if offset > math.MaxUint32 {
				return 0, fmt.Errorf("%s: %w: offset %d", def.Name, ErrOutOfBounds, offset)
			}
			if err := e.store(fmt.Sprintf("%s%d", def.Name, i), def.Strategy, entry, uint32(offset)); err != nil {
				return 0, err
			}
		}
		return 0, nil
	default:
		return 0, e.store(def.Name, def.Strategy, entry, entry.value)
	}
}

func (e *metaDecoderEXIF) store(name string, strategy Strategy, entry ifdEntry, offset uint32) error {
	decode, found := strategyDecoders[strategy]
	if !found {
		return fmt.Errorf("%s: no decoder for strategy %s", name, strategy)
	}

	v, ok, err := decode(e, entry, offset)
	if err != nil {
		var mismatch *typeMismatchError
		if errors.As(err, &mismatch) {
			e.warnTypeMismatch(name, mismatch.got, mismatch.want)
			return nil
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	if !ok {
		e.opts.Logger.Debugf("%s: no value (count %d)", name, entry.count)
		return nil
	}

	e.values[name] = v
	return nil
}

func (e *metaDecoderEXIF) warnTypeMismatch(name string, got, want FieldType) {
	e.opts.Logger.Warnf("%s: %v: got %s, want %s", name, ErrTypeMismatch, got, want)
}

type typeMismatchError struct {
	got, want FieldType
}

func (err *typeMismatchError) Error() string {
	return fmt.Sprintf("%s: got %s, want %s", ErrTypeMismatch, err.got, err.want)
}

func (err *typeMismatchError) Unwrap() error {
	return ErrTypeMismatch
}

func expectType(entry ifdEntry, want FieldType) error {
	if entry.typ != want {
		return &typeMismatchError{got: entry.typ, want: want}
	}
	return nil
}

func (e *metaDecoderEXIF) decodeScalar(entry ifdEntry, _ uint32) (string, bool, error) {
	if e.opts.Mode == ModeInline && entry.typ == TypeShort && entry.count == 1 {
		return strconv.FormatUint(uint64(e.byteOrder.Uint16(entry.inline)), 10), true, nil
	}
	return strconv.FormatUint(uint64(entry.value), 10), true, nil
}

func (e *metaDecoderEXIF) decodeASCII(entry ifdEntry, offset uint32) (string, bool, error) {
	if err := expectType(entry, TypeASCII); err != nil {
		return "", false, err
	}

	if entry.count <= 4 {
		if e.opts.Mode != ModeInline {
			return "", false, nil
		}
		return decodeLossyUTF8(trimTrailingNulls(entry.inline[:entry.count])), true, nil
	}

	b, err := e.readBytes(offset, entry.count)
	if err != nil {
		return "", false, err
	}
	if e.opts.Mode == ModeInline {
		b = trimTrailingNulls(b)
	}
	return decodeLossyUTF8(b), true, nil
}

func (e *metaDecoderEXIF) decodeRational(entry ifdEntry, offset uint32) (string, bool, error) {
	if err := expectType(entry, TypeRational); err != nil {
		return "", false, err
	}
	num, err := e.read4(offset)
	if err != nil {
		return "", false, err
	}
	den, err := e.read4(offset + 4)
	if err != nil {
		return "", false, err
	}
	return Rat[uint32]{Num: num, Den: den}.String(), true, nil
}

func (e *metaDecoderEXIF) decodeSRational(entry ifdEntry, offset uint32) (string, bool, error) {
	if err := expectType(entry, TypeSRational); err != nil {
		return "", false, err
	}
	num, err := e.read4s(offset)
	if err != nil {
		return "", false, err
	}
	den, err := e.read4s(offset + 4)
	if err != nil {
		return "", false, err
	}
	return Rat[int32]{Num: num, Den: den}.String(), true, nil
}
