// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package jfifmeta

import (
	"bytes"
	"encoding"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

var _ encoding.TextUnmarshaler = (*Rat[int32])(nil)

// Rat is a rational number as stored in an IFD entry.
// It is never reduced, so the String form round trips the stored fields.
type Rat[T int32 | uint32] struct {
	Num T
	Den T
}

// Float64 returns the float64 representation of the rational number.
func (r Rat[T]) Float64() float64 {
	return float64(r.Num) / float64(r.Den)
}

// String returns the rational number as "num/den".
func (r Rat[T]) String() string {
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

func (r *Rat[T]) UnmarshalText(text []byte) error {
	s := trimNulls(string(text))
	if !strings.Contains(s, "/") {
		num, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("failed to parse %q as a rational number: %w", s, err)
		}
		r.Num = T(num)
		r.Den = 1
		return nil
	}
	if _, err := fmt.Sscanf(s, "%d/%d", &r.Num, &r.Den); err != nil {
		return fmt.Errorf("failed to parse %q as a rational number: %w", s, err)
	}
	return nil
}

// decodeLossyUTF8 converts b to a string, replacing ill-formed UTF-8 with U+FFFD.
// All valid bytes are kept, NULs included.
func decodeLossyUTF8(b []byte) string {
	s, err := unicode.UTF8.NewDecoder().Bytes(b)
	if err != nil {
		return strings.ToValidUTF8(string(b), "\uFFFD")
	}
	return string(s)
}

func trimTrailingNulls(b []byte) []byte {
	return bytes.TrimRight(b, "\x00")
}

func trimNulls(s string) string {
	return strings.TrimRight(s, "\x00")
}
