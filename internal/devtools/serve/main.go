// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"context"
	"flag"
	"path/filepath"

	"go.astrophena.name/base/cli"
	"go.astrophena.name/isprime/internal/devtools"
	"go.astrophena.name/isprime/internal/site"
)

func main() { cli.Main(new(app)) }

type app struct {
	listen   string
	dir      string
	skipWasm bool
}

func (a *app) Flags(fs *flag.FlagSet) {
	fs.StringVar(&a.listen, "listen", "localhost:3000", "Listen on `host:port`.")
	fs.StringVar(&a.dir, "dir", filepath.Join(".", "build"), "Serve from `dir`.")
	fs.BoolVar(&a.skipWasm, "skip-wasm", false, "Skip building the WebAssembly module.")
}

func (a *app) Run(ctx context.Context) error {
	devtools.EnsureRoot()

	if !a.skipWasm {
		if err := devtools.BuildWasm(ctx); err != nil {
			return err
		}
	}

	return site.Serve(ctx, &site.Config{
		Src: ".",
		Dst: a.dir,
	}, a.listen)
}
