// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Package starcheck implements a primality checker written in Starlark.

The script must define a check_prime function that accepts the input string
and returns an int result code (0 means not prime) or a bool:

	def check_prime(s):
	    n = int(s)
	    if n < 2:
	        return 0
	    i = 2
	    while i * i <= n:
	        if n % i == 0:
	            return 0
	        i += 1
	    return 1
*/
package starcheck

import (
	"errors"
	"fmt"
	"log"

	"go.astrophena.name/isprime/internal/logger"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// FuncName is the name of the function the script must define.
const FuncName = "check_prime"

// DefaultMaxSteps bounds a single check_prime call.
const DefaultMaxSteps = 10_000_000

var (
	errNoFunc    = errors.New("script doesn't define " + FuncName)
	errNotFunc   = errors.New(FuncName + " is not callable")
	errBadResult = errors.New(FuncName + " must return int or bool")
)

// Config configures a Checker.
type Config struct {
	// Filename is used in error messages. If empty, "check.star" is used.
	Filename string
	// Src is the script source.
	Src []byte
	// MaxSteps bounds execution steps of a single call. If zero,
	// DefaultMaxSteps is used.
	MaxSteps uint64
	// Logf receives script print output. If nil, log.Printf is used.
	Logf logger.Logf
}

func (c *Config) setDefaults() {
	if c.Filename == "" {
		c.Filename = "check.star"
	}
	if c.MaxSteps == 0 {
		c.MaxSteps = DefaultMaxSteps
	}
	if c.Logf == nil {
		c.Logf = log.Printf
	}
}

// Checker is a primality.Checker backed by a Starlark script. It is safe for
// concurrent use.
type Checker struct {
	c  Config
	fn starlark.Callable
}

// New executes the script and returns a Checker calling its check_prime.
func New(c Config) (*Checker, error) {
	c.setDefaults()
	ch := &Checker{c: c}

	globals, err := starlark.ExecFileOptions(
		&syntax.FileOptions{
			While:           true,
			TopLevelControl: true,
			GlobalReassign:  true,
		},
		ch.thread(),
		c.Filename,
		c.Src,
		nil,
	)
	if err != nil {
		return nil, err
	}

	v, ok := globals[FuncName]
	if !ok {
		return nil, fmt.Errorf("%s: %w", c.Filename, errNoFunc)
	}
	fn, ok := v.(starlark.Callable)
	if !ok {
		return nil, fmt.Errorf("%s: %w (got %s)", c.Filename, errNotFunc, v.Type())
	}
	ch.fn = fn
	return ch, nil
}

func (ch *Checker) thread() *starlark.Thread {
	thread := &starlark.Thread{
		Name:  ch.c.Filename,
		Print: func(_ *starlark.Thread, msg string) { ch.c.Logf("%s", msg) },
	}
	thread.SetMaxExecutionSteps(ch.c.MaxSteps)
	return thread
}

// CheckPrime calls check_prime(input).
func (ch *Checker) CheckPrime(input string) (int, error) {
	res, err := starlark.Call(ch.thread(), ch.fn, starlark.Tuple{starlark.String(input)}, nil)
	if err != nil {
		return 0, err
	}

	switch v := res.(type) {
	case starlark.Bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case starlark.Int:
		// Only zero matters, so clamp whatever doesn't fit.
		if n, ok := v.Int64(); ok && n == int64(int(n)) {
			return int(n), nil
		}
		return v.Sign(), nil
	default:
		return 0, fmt.Errorf("%w, got %s", errBadResult, res.Type())
	}
}
