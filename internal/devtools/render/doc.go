// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Render draws the prime indicator for the given inputs as SVG.

# Usage

	$ go tool render [flags] input...

Each input is checked in order, just like typing it into the page and pressing
the button, and the resulting indicator is drawn on the same canvas. The SVG
document is written to the standard output, or to the file set by -o.

With -script, check_prime from the given Starlark file is used instead of the
built-in checker. With -overlay, the indicator isn't cleared between inputs.
*/
package main

import (
	_ "embed"

	"go.astrophena.name/base/cli"
)

//go:embed doc.go
var doc []byte

func init() { cli.SetDocComment(doc) }
