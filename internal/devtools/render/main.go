// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"go.astrophena.name/base/cli"
	"go.astrophena.name/base/logger"
	"go.astrophena.name/isprime/internal/indicator"
	"go.astrophena.name/isprime/internal/primality"
	"go.astrophena.name/isprime/internal/starcheck"
	"go.astrophena.name/isprime/internal/svgcanvas"
)

func main() { cli.Main(new(app)) }

type app struct {
	script  string
	out     string
	overlay bool
	size    float64
}

func (a *app) Flags(fs *flag.FlagSet) {
	fs.StringVar(&a.script, "script", "", "Use check_prime from the Starlark `file`.")
	fs.StringVar(&a.out, "o", "", "Write SVG to `file` instead of stdout.")
	fs.BoolVar(&a.overlay, "overlay", false, "Draw every indicator over the previous one without clearing.")
	fs.Float64Var(&a.size, "size", 100, "Canvas width and height.")
}

func (a *app) Run(ctx context.Context) error {
	env := cli.GetEnv(ctx)
	if len(env.Args) == 0 {
		return fmt.Errorf("%w: want at least one input", cli.ErrInvalidArgs)
	}

	checker := primality.Builtin
	if a.script != "" {
		src, err := os.ReadFile(a.script)
		if err != nil {
			return err
		}
		sc, err := starcheck.New(starcheck.Config{
			Filename: a.script,
			Src:      src,
			Logf: func(format string, args ...any) {
				logger.Info(ctx, "script output", slog.String("msg", fmt.Sprintf(format, args...)))
			},
		})
		if err != nil {
			return err
		}
		checker = sc
	}

	style := indicator.DefaultStyle
	style.Overlay = a.overlay

	w := env.Stdout
	if a.out != "" {
		f, err := os.Create(a.out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	return render(ctx, w, env.Args, checker, &style, a.size)
}

func render(ctx context.Context, w io.Writer, inputs []string, checker primality.Checker, style *indicator.Style, size float64) error {
	c := svgcanvas.New(size, size)
	f := new(field)
	h := &indicator.Handler{
		Field:   f,
		Checker: checker,
		Canvas:  c,
		Style:   style,
		Logf: func(format string, args ...any) {
			logger.Error(ctx, "check failed", slog.String("err", fmt.Sprintf(format, args...)))
		},
	}
	for _, in := range inputs {
		f.value = in
		h.OnCheckClicked()
	}

	b, err := c.Bytes()
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// field is the input field the handler reads from.
type field struct {
	value string
}

func (f *field) Value() string { return f.value }
