// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Addcopyright adds copyright header to each source file.
package main

import (
	"bytes"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"go.astrophena.name/isprime/internal/devtools"
)

var templates = map[string]string{
	".go": `// © %d Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

`,
	".star": `# © %d Ilya Mateyko. All rights reserved.
# Use of this source code is governed by the ISC
# license that can be found in the LICENSE.md file.

`,
	".js": `// © %d Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

`,
	".css": `/*
© %d Ilya Mateyko. All rights reserved.
Use of this source code is governed by the ISC
license that can be found in the LICENSE.md file.
*/

`,
	".html": `<!--
© %d Ilya Mateyko. All rights reserved.
Use of this source code is governed by the CC-BY-SA
license that can be found in the LICENSE.md file.
-->

`,
}

var headers = map[string]string{
	".go":   `// ©`,
	".js":   `// ©`,
	".css":  "/*\n© ",
	".html": "<!--\n© ",
	".star": `# ©`,
}

var exclusions = []string{
	"LICENSE.md",
	// Copied from GOROOT by the build tool.
	"go_wasm_exec.js",
}

// Directories that are never touched.
var skipDirs = []string{
	".git",
	"_examples",
	"build",
	"testdata",
	"pages", // front matter must come first
}

func isExcluded(path string) bool {
	for _, ex := range exclusions {
		if strings.HasSuffix(path, ex) {
			return true
		}
	}
	return false
}

func main() {
	devtools.EnsureRoot()

	if err := filepath.WalkDir(".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			for _, dir := range skipDirs {
				if d.Name() == dir {
					return filepath.SkipDir
				}
			}
			return nil
		}
		if isExcluded(path) {
			return nil
		}

		ext := filepath.Ext(path)
		tmpl, ok := templates[ext]
		if !ok {
			return nil
		}
		header := headers[ext]

		info, err := d.Info()
		if err != nil {
			return err
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		if bytes.HasPrefix(content, []byte(header)) {
			return nil // already has a copyright header
		}

		var buf bytes.Buffer
		fmt.Fprintf(&buf, tmpl, info.ModTime().Year())
		buf.Write(content)

		return os.WriteFile(path, buf.Bytes(), 0o644)
	}); err != nil {
		log.Fatal(err)
	}
}
