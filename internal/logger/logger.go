// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package logger defines a logging type for code that has no context to log
// with, such as event handlers running in the browser.
package logger

// Logf is a printf-like logging func. Like log.Printf, the format need not end
// in a newline. Logf functions must be safe for concurrent use.
type Logf func(format string, args ...any)
