// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Package indicator draws the result of a primality check.

A check is started by [Handler.OnCheckClicked]: it reads the input field,
asks the [primality.Checker] about its value and paints a circle with a glyph
on a [Canvas]:

	green circle, ✅   the number is prime
	red circle, ❌     the number is not prime
	gray circle, ❔    the checker failed

The input is passed to the checker exactly as typed.
*/
package indicator

import (
	"math"

	"go.astrophena.name/isprime/internal/primality"
)

// Canvas is the subset of the 2D canvas rendering context that indicator
// draws with.
type Canvas interface {
	BeginPath()
	Arc(x, y, radius, startAngle, endAngle float64)
	SetFillStyle(style string)
	Fill()
	SetFont(font string)
	SetTextAlign(align string)
	FillText(text string, x, y float64)
	ClearRect(x, y, w, h float64)
}

// Elements holds the DOM ids of the page elements the indicator is wired to.
type Elements struct {
	Input  string // <input> with the number
	Button string // <button> that starts a check
	Canvas string // <canvas> to draw on
}

// DefaultElements are the ids used by the page.
var DefaultElements = Elements{
	Input:  "PrimeNumber",
	Button: "CheckNumber",
	Canvas: "board",
}

// Mark is how a single verdict looks.
type Mark struct {
	Fill  string // circle color
	Glyph string // text drawn over the circle
}

// Style describes the indicator geometry and look.
type Style struct {
	X, Y       float64 // center
	Radius     float64
	Font       string
	GlyphColor string

	NotPrime Mark
	Prime    Mark
	Unknown  Mark

	// Overlay disables clearing the indicator before drawing, so that every
	// draw is painted over the previous ones.
	Overlay bool
}

// DefaultStyle is the style the page uses.
var DefaultStyle = Style{
	X:          50,
	Y:          50,
	Radius:     25,
	Font:       "24pt Calibri",
	GlyphColor: "white",
	NotPrime:   Mark{Fill: "red", Glyph: "❌"},
	Prime:      Mark{Fill: "green", Glyph: "✅"},
	Unknown:    Mark{Fill: "gray", Glyph: "❔"},
}

// Mark returns the mark for v.
func (s *Style) Mark(v primality.Verdict) Mark {
	switch v {
	case primality.NotPrime:
		return s.NotPrime
	case primality.Prime:
		return s.Prime
	default:
		return s.Unknown
	}
}

// Render draws v on c. If s is nil, DefaultStyle is used.
func Render(c Canvas, s *Style, v primality.Verdict) {
	if s == nil {
		s = &DefaultStyle
	}
	if !s.Overlay {
		c.ClearRect(s.X-s.Radius, s.Y-s.Radius, 2*s.Radius, 2*s.Radius)
	}

	m := s.Mark(v)

	c.BeginPath()
	c.Arc(s.X, s.Y, s.Radius, 0, 2*math.Pi)
	c.SetFillStyle(m.Fill)
	c.Fill()

	c.SetFont(s.Font)
	c.SetFillStyle(s.GlyphColor)
	c.SetTextAlign("center")
	c.FillText(m.Glyph, s.X, s.Y)
}
