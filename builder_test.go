// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package jfifmeta

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// tagEntry describes one IFD entry to synthesize.
// If data is set it is stored after the directory and value becomes its offset.
// If sub is set a nested IFD is written and value becomes its offset.
// If inline is set it is written as the raw value field.
type tagEntry struct {
	tag    uint16
	typ    FieldType
	count  uint32
	value  uint32
	data   []byte
	sub    []tagEntry
	inline []byte
}

func asciiEntry(tag uint16, s string) tagEntry {
	return tagEntry{tag: tag, typ: TypeASCII, count: uint32(len(s)), data: []byte(s)}
}

type blockBuilder struct {
	order binary.ByteOrder
	b     []byte
}

// buildEXIF returns a TIFF/EXIF block with IFD0 at offset 8.
func buildEXIF(order binary.ByteOrder, entries []tagEntry) []byte {
	bb := &blockBuilder{order: order}
	if order == binary.LittleEndian {
		bb.b = []byte("II")
	} else {
		bb.b = []byte("MM")
	}
	bb.b = append(bb.b, make([]byte, 6)...)
	order.PutUint16(bb.b[2:], 42)
	order.PutUint32(bb.b[4:], 8)
	bb.writeIFD(entries)
	return bb.b
}

func (bb *blockBuilder) writeIFD(entries []tagEntry) uint32 {
	start := len(bb.b)
	bb.b = append(bb.b, make([]byte, 2+ifdEntrySize*len(entries)+4)...)
	bb.order.PutUint16(bb.b[start:], uint16(len(entries)))

	for i, en := range entries {
		value := en.value
		switch {
		case en.sub != nil:
			value = bb.writeIFD(en.sub)
		case en.data != nil:
			value = uint32(len(bb.b))
			bb.b = append(bb.b, en.data...)
			if len(bb.b)%2 != 0 {
				bb.b = append(bb.b, 0)
			}
		}
		p := start + 2 + ifdEntrySize*i
		bb.order.PutUint16(bb.b[p:], en.tag)
		bb.order.PutUint16(bb.b[p+2:], uint16(en.typ))
		bb.order.PutUint32(bb.b[p+4:], en.count)
		if en.inline != nil {
			copy(bb.b[p+8:p+12], en.inline)
		} else {
			bb.order.PutUint32(bb.b[p+8:], value)
		}
	}
	return uint32(start)
}

// ratBytes encodes numerator/denominator pairs.
func ratBytes(order binary.ByteOrder, vals ...uint32) []byte {
	b := make([]byte, 4*len(vals))
	for i, v := range vals {
		order.PutUint32(b[4*i:], v)
	}
	return b
}

type jpegBuilder struct {
	bytes.Buffer
}

func newJPEG() *jpegBuilder {
	j := &jpegBuilder{}
	j.Write([]byte{0xff, markerSOI})
	return j
}

func (j *jpegBuilder) segment(marker byte, payload ...[]byte) *jpegBuilder {
	var n int
	for _, p := range payload {
		n += len(p)
	}
	j.Write([]byte{0xff, marker, byte((n + 2) >> 8), byte(n + 2)})
	for _, p := range payload {
		j.Write(p)
	}
	return j
}

func (j *jpegBuilder) app0(version uint16, unit DensityUnit, dx, dy uint16, tw, th uint8) *jpegBuilder {
	header := []byte{
		'J', 'F', 'I', 'F', 0,
		byte(version >> 8), byte(version),
		byte(unit),
		byte(dx >> 8), byte(dx),
		byte(dy >> 8), byte(dy),
		tw, th,
	}
	return j.segment(markerAPP0, header, make([]byte, 3*int(tw)*int(th)))
}

func (j *jpegBuilder) app1EXIF(block []byte) *jpegBuilder {
	return j.segment(markerAPP1, signatureEXIF, block)
}

func (j *jpegBuilder) raw(b ...byte) *jpegBuilder {
	j.Write(b)
	return j
}

func (j *jpegBuilder) eoi() []byte {
	j.Write([]byte{0xff, markerEOI})
	return j.Bytes()
}

// recordingLogger collects diagnostics.
type recordingLogger struct {
	debug []string
	info  []string
	warn  []string
}

func (l *recordingLogger) Debugf(format string, args ...any) {
	l.debug = append(l.debug, fmt.Sprintf(format, args...))
}

func (l *recordingLogger) Infof(format string, args ...any) {
	l.info = append(l.info, fmt.Sprintf(format, args...))
}

func (l *recordingLogger) Warnf(format string, args ...any) {
	l.warn = append(l.warn, fmt.Sprintf(format, args...))
}
