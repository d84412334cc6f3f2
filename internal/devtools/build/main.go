// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"path/filepath"

	"go.astrophena.name/base/cli"
	"go.astrophena.name/base/logger"
	"go.astrophena.name/isprime/internal/devtools"
	"go.astrophena.name/isprime/internal/env"
	"go.astrophena.name/isprime/internal/site"
)

func main() { cli.Main(new(app)) }

type app struct {
	dir      string
	env      string
	skipWasm bool
}

func (a *app) Flags(fs *flag.FlagSet) {
	fs.StringVar(&a.dir, "dir", filepath.Join(".", "build"), "Build into `dir`.")
	fs.StringVar(&a.env, "env", string(env.Dev), "Build for `environment` (dev, staging or prod).")
	fs.BoolVar(&a.skipWasm, "skip-wasm", false, "Skip building the WebAssembly module.")
}

func (a *app) Run(ctx context.Context) error {
	devtools.EnsureRoot()

	e := env.Env(a.env)
	switch e {
	case env.Dev, env.Staging, env.Prod:
	default:
		return fmt.Errorf("%w: unknown environment %q", cli.ErrInvalidArgs, a.env)
	}

	if !a.skipWasm {
		logger.Info(ctx, "building WebAssembly module", slog.String("path", devtools.WasmPath))
		if err := devtools.BuildWasm(ctx); err != nil {
			return err
		}
	}

	logger.Info(ctx, "building site", slog.String("dir", a.dir), slog.String("env", a.env))
	return site.Build(&site.Config{
		Src: ".",
		Dst: a.dir,
		Env: e,
	})
}
