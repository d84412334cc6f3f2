// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Build builds the prime checker page.

# Usage

	$ go tool build [flags]

Build compiles the WebAssembly module into static/wasm, copies the matching
wasm_exec.js from GOROOT and builds the site into the directory set by -dir
(default "build").
*/
package main

import (
	_ "embed"

	"go.astrophena.name/base/cli"
)

//go:embed doc.go
var doc []byte

func init() { cli.SetDocComment(doc) }
