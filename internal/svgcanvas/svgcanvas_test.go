// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package svgcanvas

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"go.astrophena.name/base/testutil"
	"go.astrophena.name/isprime/internal/indicator"
	"go.astrophena.name/isprime/internal/primality"
)

var _ indicator.Canvas = (*Canvas)(nil)

func render(t *testing.T, c *Canvas) string {
	t.Helper()
	var buf bytes.Buffer
	if _, err := c.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}
	return buf.String()
}

func TestRenderIndicator(t *testing.T) {
	c := New(100, 100)
	indicator.Render(c, nil, primality.Prime)

	const want = `<svg xmlns="http://www.w3.org/2000/svg" width="100" height="100" viewBox="0 0 100 100">
<circle cx="50" cy="50" r="25" fill="green"/>
<text x="50" y="50" fill="white" text-anchor="middle" font-size="24pt" font-family="Calibri">✅</text>
</svg>
`
	testutil.AssertEqual(t, render(t, c), want)
}

func TestClearRect(t *testing.T) {
	c := New(100, 100)
	indicator.Render(c, nil, primality.Prime)
	indicator.Render(c, nil, primality.NotPrime)

	got := render(t, c)
	if strings.Contains(got, "green") || strings.Contains(got, "✅") {
		t.Fatalf("previous indicator wasn't cleared:\n%s", got)
	}
	if !strings.Contains(got, `fill="red"`) || !strings.Contains(got, "❌") {
		t.Fatalf("latest indicator is missing:\n%s", got)
	}
}

func TestOverlay(t *testing.T) {
	s := indicator.DefaultStyle
	s.Overlay = true

	c := New(100, 100)
	indicator.Render(c, &s, primality.Prime)
	indicator.Render(c, &s, primality.NotPrime)

	got := render(t, c)
	testutil.AssertEqual(t, strings.Count(got, "<circle"), 2)
	testutil.AssertEqual(t, strings.Count(got, "<text"), 2)
	if strings.Index(got, "green") > strings.Index(got, "red") {
		t.Fatalf("shapes must keep drawing order:\n%s", got)
	}
}

func TestClearRectKeepsOutside(t *testing.T) {
	c := New(200, 100)
	c.BeginPath()
	c.Arc(150, 50, 25, 0, 2*math.Pi)
	c.Fill()
	c.ClearRect(25, 25, 50, 50)
	testutil.AssertEqual(t, strings.Count(render(t, c), "<circle"), 1)
}

func TestPartialArc(t *testing.T) {
	c := New(100, 100)
	c.BeginPath()
	c.Arc(50, 50, 10, 0, math.Pi/2)
	c.SetFillStyle("blue")
	c.Fill()
	testutil.AssertEqual(t, strings.Contains(render(t, c), `<path d="M60 50 A10 10 0 0 1 50 60 Z" fill="blue"/>`), true)
}

func TestBeginPath(t *testing.T) {
	c := New(100, 100)
	c.BeginPath()
	c.Arc(10, 10, 5, 0, 2*math.Pi)
	c.Fill()
	c.BeginPath()
	c.Arc(80, 80, 5, 0, 2*math.Pi)
	c.Fill()
	testutil.AssertEqual(t, strings.Count(render(t, c), "<circle"), 2)
}

func TestEscape(t *testing.T) {
	c := New(10, 10)
	c.FillText("<&>", 1, 1)
	got := render(t, c)
	if !strings.Contains(got, "&lt;&amp;&gt;") {
		t.Fatalf("text is not escaped:\n%s", got)
	}
	// Default font is "10px sans-serif".
	if !strings.Contains(got, `font-size="10px" font-family="sans-serif"`) {
		t.Fatalf("default font is missing:\n%s", got)
	}
}

func TestSplitFont(t *testing.T) {
	cases := map[string]struct {
		in, size, family string
	}{
		"size and family": {"24pt Calibri", "24pt", "Calibri"},
		"multiword":       {"12px Times New Roman", "12px", "Times New Roman"},
		"family only":     {"serif", "", "serif"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			size, family := splitFont(tc.in)
			testutil.AssertEqual(t, size, tc.size)
			testutil.AssertEqual(t, family, tc.family)
		})
	}
}

func TestBytes(t *testing.T) {
	c := New(100, 100)
	indicator.Render(c, nil, primality.NotPrime)
	b, err := c.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	got := string(b)
	if !strings.HasPrefix(got, "<svg") || !strings.Contains(got, "❌") {
		t.Fatalf("unexpected minified output:\n%s", got)
	}
	if len(b) >= len(render(t, c)) {
		t.Fatalf("minified output isn't smaller:\n%s", got)
	}
}
