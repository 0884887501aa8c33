// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package jfifmeta

import (
	"bytes"
	"fmt"
)

const (
	markerPrefix = 0xff
	markerStuff  = 0x00
	markerRST0   = 0xd0
	markerRST7   = 0xd7
	markerSOI    = 0xd8
	markerEOI    = 0xd9
	markerAPP0   = 0xe0
	markerAPP1   = 0xe1

	// Length field, "JFIF\x00", version, unit, two densities and two thumbnail dimensions.
	app0HeaderLen = 16
	// Length field and "Exif\x00\x00".
	app1HeaderLen = 8
)

var (
	signatureJFIF = []byte("JFIF\x00")
	signatureEXIF = []byte("Exif\x00\x00")
)

type scanState int

const (
	stateInit scanState = iota
	stateExpectSOI
	stateInStream
	stateSawFF
	stateAccepted
	stateError
	stateIOError
)

var scanStateNames = [...]string{
	stateInit:      "Init",
	stateExpectSOI: "ExpectSOI",
	stateInStream:  "InStream",
	stateSawFF:     "SawFF",
	stateAccepted:  "Accepted",
	stateError:     "Error",
	stateIOError:   "IOError",
}

func (s scanState) String() string {
	if int(s) < len(scanStateNames) {
		return scanStateNames[s]
	}
	return fmt.Sprintf("scanState(%d)", int(s))
}

func (s scanState) terminal() bool {
	return s == stateAccepted || s == stateError || s == stateIOError
}

type imageDecoderJPEG struct {
	*streamReader
	opts Options
	doc  Document
}

// decode runs the marker state machine until it reaches a terminal state.
func (e *imageDecoderJPEG) decode() (*Document, error) {
	var err error
	state := stateInit

	for !state.terminal() {
		var b byte
		if b, err = e.read1(); err != nil {
			state = stateIOError
			break
		}

		switch state {
		case stateInit:
			if b != markerPrefix {
				err = fmt.Errorf("%w: expected 0xff at start of stream, got 0x%02x", ErrMalformedMarker, b)
				state = stateError
				break
			}
			state = stateExpectSOI
		case stateExpectSOI:
			if b != markerSOI {
				err = fmt.Errorf("%w: expected SOI, got 0xff%02x", ErrMalformedMarker, b)
				state = stateError
				break
			}
			state = stateInStream
		case stateInStream:
			// Anything but a marker prefix is entropy-coded data or filler.
			if b == markerPrefix {
				state = stateSawFF
			}
		case stateSawFF:
			state, err = e.handleMarker(b)
		}
	}

	if state != stateAccepted {
		if err == nil {
			err = fmt.Errorf("%w: stopped in state %s", ErrMalformedMarker, state)
		}
		return nil, err
	}

	e.opts.Logger.Debugf("accepted at offset %d", e.pos())
	doc := e.doc
	return &doc, nil
}

func (e *imageDecoderJPEG) handleMarker(b byte) (scanState, error) {
	switch {
	case b == markerStuff, b >= markerRST0 && b <= markerRST7:
		return stateInStream, nil
	case b == markerEOI:
		return stateAccepted, nil
	case b == markerAPP0:
		if err := e.handleAPP0(); err != nil {
			return stateError, fmt.Errorf("APP0: %w", err)
		}
		return stateInStream, nil
	case b == markerAPP1:
		if err := e.handleAPP1(); err != nil {
			return stateError, fmt.Errorf("APP1: %w", err)
		}
		return stateInStream, nil
	default:
		if err := e.skipSegment(b); err != nil {
			return stateError, fmt.Errorf("%s: %w", markerName(b), err)
		}
		return stateInStream, nil
	}
}

// skipSegment discards a length-prefixed segment we have no use for.
func (e *imageDecoderJPEG) skipSegment(marker byte) error {
	length, err := e.readLength()
	if err != nil {
		return err
	}
	e.opts.Logger.Debugf("marker 0xff%02x (%s) length %d", marker, markerName(marker), length)
	return e.skip(int64(length - 2))
}

func (e *imageDecoderJPEG) handleAPP0() error {
	length, err := e.readLength()
	if err != nil {
		return err
	}
	e.opts.Logger.Debugf("APP0 length %d", length)
	if length < app0HeaderLen {
		return fmt.Errorf("%w: length %d shorter than the JFIF header", ErrMalformedMarker, length)
	}

	b, err := e.readBytesVolatile(app0HeaderLen - 2)
	if err != nil {
		return err
	}
	if !bytes.Equal(b[:5], signatureJFIF) {
		return fmt.Errorf("%w: signature %q", ErrMalformedMarker, b[:5])
	}

	e.doc.Version = uint16(b[5])<<8 | uint16(b[6])
	e.doc.Unit = DensityUnit(b[7])
	e.doc.DensityX = uint16(b[8])<<8 | uint16(b[9])
	e.doc.DensityY = uint16(b[10])<<8 | uint16(b[11])
	e.doc.ThumbnailWidth = b[12]
	e.doc.ThumbnailHeight = b[13]

	// Thumbnail pixels.
	return e.skip(int64(length - app0HeaderLen))
}

func (e *imageDecoderJPEG) handleAPP1() error {
	length, err := e.readLength()
	if err != nil {
		return err
	}
	e.opts.Logger.Debugf("APP1 length %d", length)
	if length < app1HeaderLen {
		return fmt.Errorf("%w: length %d shorter than the APP1 signature", ErrMalformedMarker, length)
	}

	sig, err := e.readBytesVolatile(len(signatureEXIF))
	if err != nil {
		return err
	}
	remaining := int(length - app1HeaderLen)

	if !bytes.Equal(sig, signatureEXIF) {
		// XMP or some other APP1 payload.
		e.opts.Logger.Debugf("APP1 is not EXIF")
		return e.skip(int64(remaining))
	}
	e.opts.Logger.Debugf("APP1 is EXIF, %d bytes", remaining)

	block := getBytes(remaining)
	defer putBytes(block)
	if err := e.readFull(*block); err != nil {
		return err
	}

	x, err := newMetaDecoderEXIF(*block, e.opts).decode()
	if err != nil {
		// A bad EXIF block does not invalidate the JFIF stream,
		// but it replaces any earlier result.
		e.opts.Logger.Warnf("EXIF: %v", err)
		e.doc.EXIF = nil
		return nil
	}
	e.doc.EXIF = x

	return nil
}
