// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package svgcanvas implements an indicator.Canvas that produces SVG.
package svgcanvas

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/svg"
)

const mediaType = "image/svg+xml"

// Canvas records drawing operations. The zero value is not usable; use New.
type Canvas struct {
	width, height float64

	fillStyle string
	font      string
	textAlign string

	path   []arc
	shapes []shape
}

type arc struct {
	x, y, r    float64
	start, end float64
}

type shape struct {
	// Exactly one of arc and text is set.
	arc  *arc
	text string

	x, y   float64 // text anchor
	fill   string
	font   string
	anchor string
}

// New returns an empty canvas of the given size. Fill style, font and text
// alignment start with the same defaults as a browser 2D context.
func New(width, height float64) *Canvas {
	return &Canvas{
		width:     width,
		height:    height,
		fillStyle: "#000000",
		font:      "10px sans-serif",
		textAlign: "start",
	}
}

// BeginPath discards the current path.
func (c *Canvas) BeginPath() { c.path = c.path[:0] }

// Arc adds an arc to the current path. Angles are in radians, clockwise.
func (c *Canvas) Arc(x, y, radius, startAngle, endAngle float64) {
	c.path = append(c.path, arc{x: x, y: y, r: radius, start: startAngle, end: endAngle})
}

// SetFillStyle sets the color used by Fill and FillText.
func (c *Canvas) SetFillStyle(style string) { c.fillStyle = style }

// Fill fills every arc of the current path.
func (c *Canvas) Fill() {
	for _, a := range c.path {
		c.shapes = append(c.shapes, shape{arc: &a, fill: c.fillStyle})
	}
}

// SetFont sets the CSS font used by FillText.
func (c *Canvas) SetFont(font string) { c.font = font }

// SetTextAlign sets the text alignment used by FillText.
func (c *Canvas) SetTextAlign(align string) { c.textAlign = align }

// FillText draws text anchored at (x, y).
func (c *Canvas) FillText(text string, x, y float64) {
	c.shapes = append(c.shapes, shape{
		text:   text,
		x:      x,
		y:      y,
		fill:   c.fillStyle,
		font:   c.font,
		anchor: textAnchor(c.textAlign),
	})
}

// ClearRect removes shapes lying inside the rectangle. Text is removed when
// its anchor point is inside.
func (c *Canvas) ClearRect(x, y, w, h float64) {
	inside := func(px, py float64) bool {
		return px >= x && px <= x+w && py >= y && py <= y+h
	}
	kept := c.shapes[:0]
	for _, s := range c.shapes {
		if s.arc != nil {
			a := s.arc
			if inside(a.x-a.r, a.y-a.r) && inside(a.x+a.r, a.y+a.r) {
				continue
			}
		} else if inside(s.x, s.y) {
			continue
		}
		kept = append(kept, s)
	}
	c.shapes = kept
}

func textAnchor(align string) string {
	switch align {
	case "center":
		return "middle"
	case "end", "right":
		return "end"
	default:
		return "start"
	}
}

// splitFont splits a CSS font shorthand like "24pt Calibri" into size and
// family. Style and weight keywords are not supported.
func splitFont(font string) (size, family string) {
	size, family, ok := strings.Cut(strings.TrimSpace(font), " ")
	if !ok {
		return "", size
	}
	return size, strings.TrimSpace(family)
}

func num(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

func escape(s string) string {
	var buf strings.Builder
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// WriteTo writes the SVG document to w.
func (c *Canvas) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" width="%[1]s" height="%[2]s" viewBox="0 0 %[1]s %[2]s">`+"\n", num(c.width), num(c.height))
	for _, s := range c.shapes {
		if s.arc != nil {
			writeArc(&buf, s.arc, s.fill)
			continue
		}
		size, family := splitFont(s.font)
		fmt.Fprintf(&buf, `<text x="%s" y="%s" fill="%s" text-anchor="%s"`, num(s.x), num(s.y), escape(s.fill), s.anchor)
		if size != "" {
			fmt.Fprintf(&buf, ` font-size="%s"`, escape(size))
		}
		if family != "" {
			fmt.Fprintf(&buf, ` font-family="%s"`, escape(family))
		}
		fmt.Fprintf(&buf, ">%s</text>\n", escape(s.text))
	}
	buf.WriteString("</svg>\n")
	return buf.WriteTo(w)
}

func writeArc(buf *bytes.Buffer, a *arc, fill string) {
	sweep := a.end - a.start
	if math.Abs(sweep) >= 2*math.Pi {
		fmt.Fprintf(buf, `<circle cx="%s" cy="%s" r="%s" fill="%s"/>`+"\n", num(a.x), num(a.y), num(a.r), escape(fill))
		return
	}
	var large, dir int
	if math.Abs(sweep) > math.Pi {
		large = 1
	}
	if sweep > 0 {
		dir = 1
	}
	sx, sy := a.x+a.r*math.Cos(a.start), a.y+a.r*math.Sin(a.start)
	ex, ey := a.x+a.r*math.Cos(a.end), a.y+a.r*math.Sin(a.end)
	fmt.Fprintf(buf, `<path d="M%s %s A%s %s 0 %d %d %s %s Z" fill="%s"/>`+"\n",
		num(sx), num(sy), num(a.r), num(a.r), large, dir, num(ex), num(ey), escape(fill))
}

// Bytes returns the minified SVG document.
func (c *Canvas) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := c.WriteTo(&buf); err != nil {
		return nil, err
	}
	m := minify.New()
	m.AddFunc(mediaType, svg.Minify)
	return m.Bytes(mediaType, buf.Bytes())
}
