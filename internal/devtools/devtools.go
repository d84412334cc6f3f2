// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package devtools contains common functionality for development tools.
package devtools

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.astrophena.name/base/unwrap"
)

// EnsureRoot checks that the current working directory is at the repository
// root and panics if it doesn't.
func EnsureRoot() {
	wd := unwrap.Value(os.Getwd())
	if _, err := os.Stat(filepath.Join(wd, "go.mod")); os.IsNotExist(err) {
		panic("Are you at repo root?")
	} else if err != nil {
		panic(err)
	}
}

// Paths of the WebAssembly module and its loader, relative to the
// repository root.
var (
	WasmPath     = filepath.Join("static", "wasm", "isprime.wasm")
	WasmExecPath = filepath.Join("static", "js", "go_wasm_exec.js")
)

// wasmPkg is the package compiled to WebAssembly.
const wasmPkg = "./internal/webapp"

// BuildWasm copies wasm_exec.js from GOROOT, so that the loader matches the
// toolchain, and compiles the WebAssembly module.
func BuildWasm(ctx context.Context) error {
	gorootb, err := exec.CommandContext(ctx, "go", "env", "GOROOT").Output()
	if err != nil {
		return fmt.Errorf("finding GOROOT: %w", err)
	}
	goroot := strings.TrimSuffix(string(gorootb), "\n")

	wasmExecJS, err := os.ReadFile(filepath.Join(goroot, "lib", "wasm", "wasm_exec.js"))
	if err != nil {
		return err
	}
	for _, p := range []string{WasmPath, WasmExecPath} {
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(WasmExecPath, wasmExecJS, 0o644); err != nil {
		return err
	}

	build := exec.CommandContext(ctx,
		"go",
		"build",
		"-ldflags", "-s -w -buildid=",
		"-trimpath",
		"-o", WasmPath,
		wasmPkg,
	)
	build.Env = append(os.Environ(), "GOOS=js", "GOARCH=wasm")
	build.Stderr = os.Stderr
	return build.Run()
}
