// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package jfifmeta

import (
	"encoding"
	"fmt"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestStringer(t *testing.T) {
	c := qt.New(t)

	c.Assert(TypeASCII.String(), qt.Equals, "ASCII")
	c.Assert(TypeUndefined.String(), qt.Equals, "UNDEFINED")
	c.Assert(StrategyRationalSeries.String(), qt.Equals, "rational-series")
	c.Assert(StrategySubIFD.String(), qt.Equals, "sub-ifd")
	c.Assert(Strategy(42).String(), qt.Equals, "Strategy(42)")

	var unit DensityUnit
	c.Assert(unit.String(), qt.Equals, "none")
	c.Assert(DensityCentimeter.String(), qt.Equals, "dpcm")
	c.Assert(DensityUnit(9).String(), qt.Equals, "DensityUnit(9)")

	c.Assert(ModeInline.String(), qt.Equals, "inline")
	c.Assert(stateSawFF.String(), qt.Equals, "SawFF")
	c.Assert(scanState(42).String(), qt.Equals, "scanState(42)")

	c.Assert(markerName(0xdb), qt.Equals, "DQT")
	c.Assert(markerName(0xc2), qt.Equals, "SOF2")
	c.Assert(markerName(0xd5), qt.Equals, "RST5")
	c.Assert(markerName(0xed), qt.Equals, "APP13")
	c.Assert(markerName(0x02), qt.Equals, "RES02")
}

func BenchmarkDecodeLossyUTF8(b *testing.B) {
	runBench := func(b *testing.B, name, s string) {
		b.Run(name, func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				_ = decodeLossyUTF8([]byte(s))
			}
		})
	}

	runBench(b, "ASCII", "Hello, World!\x00")
	runBench(b, "UTF-8", "Hello, 世界!")
	runBench(b, "Invalid", "Hello, \xffWorld!")
}

func TestRat(t *testing.T) {
	c := qt.New(t)

	c.Run("String", func(c *qt.C) {
		c.Assert(Rat[uint32]{Num: 1, Den: 2}.String(), qt.Equals, "1/2")
		// Not reduced.
		c.Assert(Rat[uint32]{Num: 10, Den: 20}.String(), qt.Equals, "10/20")
		c.Assert(Rat[uint32]{Num: 4, Den: 1}.String(), qt.Equals, "4/1")
		c.Assert(Rat[int32]{Num: -1, Den: 3}.String(), qt.Equals, "-1/3")
		c.Assert(Rat[uint32]{}.String(), qt.Equals, "0/0")
	})

	c.Run("Float64", func(c *qt.C) {
		c.Assert(Rat[uint32]{Num: 1, Den: 4}.Float64(), qt.Equals, 0.25)
		c.Assert(Rat[int32]{Num: -3, Den: 2}.Float64(), qt.Equals, -1.5)
	})

	c.Run("UnmarshalText", func(c *qt.C) {
		var ru Rat[uint32]
		err := encoding.TextUnmarshaler(&ru).UnmarshalText([]byte("3/4"))
		c.Assert(err, qt.IsNil)
		c.Assert(ru, qt.Equals, Rat[uint32]{Num: 3, Den: 4})

		err = ru.UnmarshalText([]byte("4"))
		c.Assert(err, qt.IsNil)
		c.Assert(ru, qt.Equals, Rat[uint32]{Num: 4, Den: 1})

		var ri Rat[int32]
		err = ri.UnmarshalText([]byte("-7/2\x00"))
		c.Assert(err, qt.IsNil)
		c.Assert(ri, qt.Equals, Rat[int32]{Num: -7, Den: 2})

		err = ri.UnmarshalText([]byte("a/b"))
		c.Assert(err, qt.ErrorMatches, `failed to parse "a/b" as a rational number: .*`)
	})

	c.Run("Format", func(c *qt.C) {
		r := Rat[uint32]{Num: 1, Den: 3}
		c.Assert(fmt.Sprintf("%s", r), qt.Equals, "1/3")
		c.Assert(fmt.Sprintf("%v", r), qt.Equals, "1/3")
	})
}

func TestTrimNulls(t *testing.T) {
	c := qt.New(t)

	c.Assert(trimNulls("Sony\x00\x00"), qt.Equals, "Sony")
	c.Assert(trimNulls("\x00a\x00b"), qt.Equals, "\x00a\x00b")
	c.Assert(string(trimTrailingNulls([]byte("ab\x00"))), qt.Equals, "ab")
	c.Assert(trimTrailingNulls([]byte("\x00\x00")), qt.HasLen, 0)
}
