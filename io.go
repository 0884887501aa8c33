// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package jfifmeta

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"
)

var bytesPool = &sync.Pool{
	New: func() any {
		b := make([]byte, 1024)
		return &b
	},
}

func getBytes(length int) *[]byte {
	b := bytesPool.Get().(*[]byte)
	if length > cap(*b) {
		*b = make([]byte, length)
	}
	*b = (*b)[:length]
	return b
}

func putBytes(b *[]byte) {
	*b = (*b)[:0]
	bytesPool.Put(b)
}

// ReadUint16 reads a 2 byte unsigned integer at offset in b using the given byte order.
func ReadUint16(b []byte, offset uint32, byteOrder binary.ByteOrder) (uint16, error) {
	if err := checkBounds(b, offset, 2); err != nil {
		return 0, err
	}
	return byteOrder.Uint16(b[offset:]), nil
}

// ReadUint32 reads a 4 byte unsigned integer at offset in b using the given byte order.
func ReadUint32(b []byte, offset uint32, byteOrder binary.ByteOrder) (uint32, error) {
	if err := checkBounds(b, offset, 4); err != nil {
		return 0, err
	}
	return byteOrder.Uint32(b[offset:]), nil
}

// ReadInt32 reads a 4 byte signed integer at offset in b using the given byte order.
func ReadInt32(b []byte, offset uint32, byteOrder binary.ByteOrder) (int32, error) {
	v, err := ReadUint32(b, offset, byteOrder)
	return int32(v), err
}

func checkBounds(b []byte, offset, n uint32) error {
	if uint64(offset)+uint64(n) > uint64(len(b)) {
		return fmt.Errorf("%w: %d bytes at offset %d, block length %d", ErrOutOfBounds, n, offset, len(b))
	}
	return nil
}

// blockReader reads fields from an in-memory EXIF block.
// All offsets are relative to the start of the block.
type blockReader struct {
	b         []byte
	byteOrder binary.ByteOrder
}

func (r blockReader) read2(offset uint32) (uint16, error) {
	return ReadUint16(r.b, offset, r.byteOrder)
}

func (r blockReader) read4(offset uint32) (uint32, error) {
	return ReadUint32(r.b, offset, r.byteOrder)
}

func (r blockReader) read4s(offset uint32) (int32, error) {
	return ReadInt32(r.b, offset, r.byteOrder)
}

// readBytes returns n bytes at offset. The slice aliases the block.
func (r blockReader) readBytes(offset, n uint32) ([]byte, error) {
	if err := checkBounds(r.b, offset, n); err != nil {
		return nil, err
	}
	return r.b[offset : offset+n], nil
}

// streamReader is a wrapper around a Reader that reads the JPEG marker stream.
// Marker stream fields are always big-endian.
// Note that this is not thread safe.
type streamReader struct {
	r   *bufio.Reader
	buf []byte

	readerOffset int64
}

func newStreamReader(r io.Reader) *streamReader {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &streamReader{r: br}
}

func (e *streamReader) pos() int64 {
	return e.readerOffset
}

func (e *streamReader) readErr(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w at offset %d", ErrTruncatedInput, e.readerOffset)
	}
	return err
}

func (e *streamReader) read1() (uint8, error) {
	b, err := e.r.ReadByte()
	if err != nil {
		return 0, e.readErr(err)
	}
	e.readerOffset++
	return b, nil
}

func (e *streamReader) read2() (uint16, error) {
	const n = 2
	b, err := e.readBytesVolatile(n)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

// readBytesVolatile reads a slice of bytes from the stream
// which is not guaranteed to be valid after the next read.
func (e *streamReader) readBytesVolatile(n int) ([]byte, error) {
	if n > cap(e.buf) {
		e.buf = make([]byte, n)
	}
	b := e.buf[:n]
	if err := e.readFull(b); err != nil {
		return nil, err
	}
	return b, nil
}

func (e *streamReader) readFull(b []byte) error {
	n, err := io.ReadFull(e.r, b)
	e.readerOffset += int64(n)
	if err != nil {
		return e.readErr(err)
	}
	return nil
}

// readLength reads a segment length field. The value includes the 2 bytes
// of the field itself, so anything below 2 is malformed.
func (e *streamReader) readLength() (uint16, error) {
	length, err := e.read2()
	if err != nil {
		return 0, err
	}
	if length < 2 {
		return 0, fmt.Errorf("%w: segment length %d at offset %d", ErrMalformedMarker, length, e.readerOffset-2)
	}
	return length, nil
}

func (e *streamReader) skip(n int64) error {
	if n <= 0 {
		return nil
	}
	m, err := io.CopyN(io.Discard, e.r, n)
	e.readerOffset += m
	if err != nil {
		return e.readErr(err)
	}
	return nil
}
