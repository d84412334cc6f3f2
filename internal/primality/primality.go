// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package primality defines the boundary between the page and whatever
// decides that a number is prime.
package primality

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrMalformed is returned by Builtin when the input is not an unsigned 32-bit
// decimal number.
var ErrMalformed = errors.New("malformed number")

// Checker checks whether the number in input is prime. It returns a result
// code: 0 means not prime, anything else means prime.
type Checker interface {
	CheckPrime(input string) (int, error)
}

// CheckerFunc is an adapter to allow the use of ordinary functions as
// Checkers.
type CheckerFunc func(input string) (int, error)

// CheckPrime calls f(input).
func (f CheckerFunc) CheckPrime(input string) (int, error) { return f(input) }

// Verdict is a result code converted at the Checker boundary.
type Verdict int

// Possible verdicts.
const (
	// Unknown means the check failed and nothing is known about the input.
	Unknown Verdict = iota
	NotPrime
	Prime
)

// FromCode converts a result code returned by a Checker to a Verdict. Zero
// is NotPrime, every other value, negative ones included, is Prime.
func FromCode(code int) Verdict {
	if code == 0 {
		return NotPrime
	}
	return Prime
}

func (v Verdict) String() string {
	switch v {
	case NotPrime:
		return "not prime"
	case Prime:
		return "prime"
	default:
		return "unknown"
	}
}

// Builtin is the Checker compiled into the page. It accepts unsigned 32-bit
// decimal numbers only.
var Builtin Checker = CheckerFunc(checkPrime)

func checkPrime(input string) (int, error) {
	n, err := strconv.ParseUint(input, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("couldn't parse %q: %w", input, ErrMalformed)
	}
	if IsPrime(n) {
		return 1, nil
	}
	return 0, nil
}

// IsPrime reports whether n is prime.
func IsPrime(n uint64) bool {
	if n < 2 {
		return false
	}
	if n%2 == 0 {
		return n == 2
	}
	for i := uint64(3); i <= n/i; i += 2 {
		if n%i == 0 {
			return false
		}
	}
	return true
}
