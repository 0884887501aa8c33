// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

// Package printer writes decoded documents in text or JSON form.
package printer

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/bep/jfifmeta"
	"github.com/bep/jfifmeta/internal/config"
)

// Printer writes one document per input.
type Printer struct {
	w        io.Writer
	format   string
	showJFIF bool

	// Header enables a "== name" line before each document in text form.
	Header bool
}

// New creates a Printer writing to w.
func New(w io.Writer, format string, showJFIF bool) (*Printer, error) {
	switch format {
	case config.FormatText, config.FormatJSON:
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
	return &Printer{w: w, format: format, showJFIF: showJFIF}, nil
}

// JFIF is the JSON form of the APP0 fields.
type JFIF struct {
	Version         string `json:"version"`
	Unit            string `json:"unit"`
	DensityX        uint16 `json:"densityX"`
	DensityY        uint16 `json:"densityY"`
	ThumbnailWidth  uint8  `json:"thumbnailWidth"`
	ThumbnailHeight uint8  `json:"thumbnailHeight"`
}

// Result is the JSON form of one decoded input.
type Result struct {
	File      string            `json:"file"`
	ByteOrder string            `json:"byteOrder,omitempty"`
	JFIF      *JFIF             `json:"jfif,omitempty"`
	EXIF      map[string]string `json:"exif,omitempty"`
}

// Print writes doc, decoded from name.
func (p *Printer) Print(name string, doc *jfifmeta.Document) error {
	if p.format == config.FormatJSON {
		return p.printJSON(name, doc)
	}
	return p.printText(name, doc)
}

func (p *Printer) printJSON(name string, doc *jfifmeta.Document) error {
	res := Result{
		File: name,
		JFIF: &JFIF{
			Version:         doc.VersionString(),
			Unit:            doc.Unit.String(),
			DensityX:        doc.DensityX,
			DensityY:        doc.DensityY,
			ThumbnailWidth:  doc.ThumbnailWidth,
			ThumbnailHeight: doc.ThumbnailHeight,
		},
	}
	if doc.EXIF != nil {
		res.ByteOrder = doc.EXIF.ByteOrder.String()
		res.EXIF = doc.EXIF.Values
	}
	return json.NewEncoder(p.w).Encode(res)
}

func (p *Printer) printText(name string, doc *jfifmeta.Document) error {
	var sb strings.Builder
	if p.Header {
		fmt.Fprintf(&sb, "== %s\n", name)
	}
	if p.showJFIF {
		fmt.Fprintf(&sb, "JFIFVersion: %s\n", doc.VersionString())
		fmt.Fprintf(&sb, "DensityUnit: %s\n", doc.Unit)
		fmt.Fprintf(&sb, "Density: %dx%d\n", doc.DensityX, doc.DensityY)
		fmt.Fprintf(&sb, "Thumbnail: %dx%d\n", doc.ThumbnailWidth, doc.ThumbnailHeight)
	}
	for _, k := range doc.EXIF.Names() {
		// NULs are kept in the decoded values but have no place on a terminal.
		fmt.Fprintf(&sb, "%s: %s\n", k, strings.TrimRight(doc.EXIF.Values[k], "\x00"))
	}
	_, err := io.WriteString(p.w, sb.String())
	return err
}
