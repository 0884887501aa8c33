// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package jfifmeta

import "fmt"

var markerNames [256]string

func init() {
	markerNames[0x01] = "TEM"
	markerNames[0xc4] = "DHT"
	markerNames[0xc8] = "JPG"
	markerNames[0xcc] = "DAC"
	markerNames[markerSOI] = "SOI"
	markerNames[markerEOI] = "EOI"
	markerNames[0xda] = "SOS"
	markerNames[0xdb] = "DQT"
	markerNames[0xdc] = "DNL"
	markerNames[0xdd] = "DRI"
	markerNames[0xde] = "DHP"
	markerNames[0xdf] = "EXP"
	markerNames[0xfe] = "COM"
	markerNames[0xff] = "FILL"

	for i := 0xc0; i <= 0xcf; i++ {
		if i == 0xc4 || i == 0xc8 || i == 0xcc {
			continue
		}
		markerNames[i] = fmt.Sprintf("SOF%d", i-0xc0)
	}
	for i := markerRST0; i <= markerRST7; i++ {
		markerNames[i] = fmt.Sprintf("RST%d", i-markerRST0)
	}
	for i := markerAPP0; i <= markerAPP0+0xf; i++ {
		markerNames[i] = fmt.Sprintf("APP%d", i-markerAPP0)
	}
	for i := 0xf0; i <= 0xfd; i++ {
		markerNames[i] = fmt.Sprintf("JPG%d", i-0xf0)
	}
}

// markerName returns the name of the marker with the given second byte.
func markerName(b byte) string {
	if s := markerNames[b]; s != "" {
		return s
	}
	return fmt.Sprintf("RES%02X", b)
}
