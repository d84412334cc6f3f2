// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package indicator

import (
	"fmt"
	"log"

	"go.astrophena.name/isprime/internal/logger"
	"go.astrophena.name/isprime/internal/primality"
)

// Field is a text input.
type Field interface {
	Value() string
}

// Handler connects an input field, a checker and a canvas.
type Handler struct {
	Field   Field
	Checker primality.Checker
	Canvas  Canvas
	// Style is the indicator style. If nil, DefaultStyle is used.
	Style *Style
	// Logf reports failed checks. If nil, log.Printf is used.
	Logf logger.Logf
}

// OnCheckClicked checks the current field value and draws the verdict.
func (h *Handler) OnCheckClicked() {
	input := h.Field.Value()
	v, err := h.Check(input)
	if err != nil {
		h.logf("checking %q: %v", input, err)
	}
	Render(h.Canvas, h.Style, v)
}

// Check passes input to the checker and converts its result code. A failed
// or panicking checker yields primality.Unknown and an error.
func (h *Handler) Check(input string) (v primality.Verdict, err error) {
	defer func() {
		if r := recover(); r != nil {
			v, err = primality.Unknown, fmt.Errorf("checker panicked: %v", r)
		}
	}()

	code, err := h.Checker.CheckPrime(input)
	if err != nil {
		return primality.Unknown, err
	}
	return primality.FromCode(code), nil
}

func (h *Handler) logf(format string, args ...any) {
	if h.Logf != nil {
		h.Logf(format, args...)
		return
	}
	log.Printf(format, args...)
}
