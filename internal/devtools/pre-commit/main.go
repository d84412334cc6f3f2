// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Pre-commit runs the checks that must pass before committing.
package main

import (
	"bytes"
	"log"
	"os"
	"os/exec"

	"go.astrophena.name/isprime/internal/devtools"
)

func main() {
	log.SetFlags(0)
	devtools.EnsureRoot()

	isCI := os.Getenv("CI") == "true"

	var w bytes.Buffer

	run(&w, nil, "gofmt", "-d", ".")
	if diff := w.String(); diff != "" {
		log.Fatalf("Run gofmt on these files:\n\t%v", diff)
	}

	run(&w, nil, "go", "tool", "staticcheck", "./...")
	// The browser binding is only compiled for js/wasm.
	run(&w, []string{"GOOS=js", "GOARCH=wasm"}, "go", "vet", "./internal/webapp")

	if isCI {
		run(&w, nil, "go", "test", "-race", "./...")
	} else {
		run(&w, nil, "go", "test", "./...")
	}

	run(&w, nil, "go", "mod", "tidy", "--diff")

	run(&w, nil, "go", "tool", "addcopyright")
	if isCI {
		run(&w, nil, "git", "diff", "--exit-code")
	}
}

func run(buf *bytes.Buffer, env []string, cmd string, args ...string) {
	buf.Reset()
	c := exec.Command(cmd, args...)
	c.Env = append(os.Environ(), env...)
	c.Stdout = buf
	c.Stderr = buf
	if err := c.Run(); err != nil {
		log.Fatalf("%s failed: %v:\n%v", cmd, err, buf.String())
	}
}
