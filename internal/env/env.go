// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package env contains definitions for the environments the page can be
// built for.
package env

// Env is the environment the page is built for.
type Env string

// Available environments.
const (
	Dev     = Env("dev")
	Staging = Env("staging")
	Prod    = Env("prod")
)

// IsProd reports whether e produces a public build: absolute URLs derived
// from the base URL.
func (e Env) IsProd() bool { return e == Prod || e == Staging }
