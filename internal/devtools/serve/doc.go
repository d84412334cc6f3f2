// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Serve serves the prime checker page for local development.

# Usage:

	$ go tool serve [flags]

Serve builds the WebAssembly module, performs an initial build of the site
and serves the output from the directory set by -dir (default "build"). It
then watches for file changes in the "pages", "static", and "templates"
directories and automatically rebuilds the site. Changes to Go code need a
restart.
*/
package main

import (
	_ "embed"

	"go.astrophena.name/base/cli"
)

//go:embed doc.go
var doc []byte

func init() { cli.SetDocComment(doc) }
