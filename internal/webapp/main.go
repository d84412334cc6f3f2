// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

//go:build js

// Webapp implements the WebAssembly module that powers the prime checker page.
package main

import (
	"fmt"
	"syscall/js"

	"go.astrophena.name/isprime/internal/indicator"
	"go.astrophena.name/isprime/internal/primality"
)

// canvas adapts a CanvasRenderingContext2D to indicator.Canvas.
type canvas struct {
	ctx js.Value
}

func (c canvas) BeginPath() { c.ctx.Call("beginPath") }
func (c canvas) Arc(x, y, radius, startAngle, endAngle float64) {
	c.ctx.Call("arc", x, y, radius, startAngle, endAngle)
}
func (c canvas) SetFillStyle(style string)          { c.ctx.Set("fillStyle", style) }
func (c canvas) Fill()                              { c.ctx.Call("fill") }
func (c canvas) SetFont(font string)                { c.ctx.Set("font", font) }
func (c canvas) SetTextAlign(align string)          { c.ctx.Set("textAlign", align) }
func (c canvas) FillText(text string, x, y float64) { c.ctx.Call("fillText", text, x, y) }
func (c canvas) ClearRect(x, y, w, h float64)       { c.ctx.Call("clearRect", x, y, w, h) }

// field adapts an <input> element to indicator.Field.
type field struct {
	el js.Value
}

func (f field) Value() string { return f.el.Get("value").String() }

func consoleLogf(format string, args ...any) {
	js.Global().Get("console").Call("error", fmt.Sprintf(format, args...))
}

func element(doc js.Value, id string) js.Value {
	el := doc.Call("getElementById", id)
	if !el.Truthy() {
		panic(fmt.Sprintf("element #%s not found", id))
	}
	return el
}

func checkPrime() js.Func {
	return js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) != 1 {
			return js.Global().Get("Error").New("checkPrime: want one argument")
		}
		code, err := primality.Builtin.CheckPrime(args[0].String())
		if err != nil {
			return js.Global().Get("Error").New(err.Error())
		}
		return code
	})
}

func main() {
	doc := js.Global().Get("document")
	els := indicator.DefaultElements

	h := &indicator.Handler{
		Field:   field{el: element(doc, els.Input)},
		Checker: primality.Builtin,
		Canvas:  canvas{ctx: element(doc, els.Canvas).Call("getContext", "2d")},
		Logf:    consoleLogf,
	}

	onClick := js.FuncOf(func(this js.Value, args []js.Value) any {
		h.OnCheckClicked()
		return nil
	})
	element(doc, els.Button).Call("addEventListener", "click", onClick)
	js.Global().Set("checkPrime", checkPrime())

	<-make(chan struct{})
}
