// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package jfifmeta

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedMarker is returned when a byte where a fixed marker value,
	// signature or minimum segment length was required had another value.
	ErrMalformedMarker = errors.New("malformed marker")

	// ErrTruncatedInput is returned when the stream ends before an expected field was fully read.
	ErrTruncatedInput = errors.New("truncated input")

	// ErrInvalidByteOrder is returned when the EXIF byte order marker is neither 'I' nor 'M'.
	ErrInvalidByteOrder = errors.New("invalid byte order")

	// ErrOutOfBounds is returned when a computed offset and length exceeds the EXIF block.
	ErrOutOfBounds = errors.New("offset out of bounds")

	// ErrTypeMismatch signals that a tag's field type does not match its decode strategy.
	// It is tag local: the tag is dropped and reported through the Logger, and it
	// is never returned from Decode.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrMaxDepth is returned when sub-IFD pointers nest deeper than Options.MaxIFDDepth.
	ErrMaxDepth = errors.New("max IFD depth exceeded")

	// ErrTooManyTags is returned when an EXIF block holds more entries than Options.LimitNumTags.
	ErrTooManyTags = errors.New("too many tags")
)

// InvalidFormatError is used when the format is invalid.
type InvalidFormatError struct {
	Err error
}

func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("jfifmeta: invalid format: %s", e.Err)
}

// Unwrap returns the underlying error.
func (e *InvalidFormatError) Unwrap() error {
	return e.Err
}

// IsInvalidFormat reports whether err is an InvalidFormatError.
func IsInvalidFormat(err error) bool {
	if err == nil {
		return false
	}
	var e *InvalidFormatError
	return errors.As(err, &e)
}

func newInvalidFormatError(err error) error {
	if IsInvalidFormat(err) {
		return err
	}
	return &InvalidFormatError{Err: err}
}

func isInvalidFormatErrorCandidate(err error) bool {
	for _, candidate := range []error{
		ErrMalformedMarker,
		ErrTruncatedInput,
		ErrInvalidByteOrder,
		ErrOutOfBounds,
		ErrMaxDepth,
		ErrTooManyTags,
	} {
		if errors.Is(err, candidate) {
			return true
		}
	}
	return false
}
