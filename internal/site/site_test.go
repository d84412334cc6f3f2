// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package site

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"go.astrophena.name/base/testutil"
	"go.astrophena.name/base/txtar"
	"go.astrophena.name/isprime/internal/env"
	"go.astrophena.name/isprime/internal/indicator"

	"github.com/PuerkitoBio/goquery"
	"github.com/fsnotify/fsnotify"
)

// extract unpacks testdata/app.txtar into a temporary directory.
func extract(t *testing.T) string {
	t.Helper()
	ar, err := txtar.ParseFile(filepath.Join("testdata", "app.txtar"))
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	testutil.ExtractTxtar(t, ar, dir)
	return dir
}

func readDoc(t *testing.T, path string) *goquery.Document {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(b))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestBuild(t *testing.T) {
	srcDir, dstDir := extract(t), t.TempDir()

	if err := Build(&Config{Src: srcDir, Dst: dstDir}); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"index.html", "about.html", "robots.txt", filepath.Join("js", "go_wasm_exec.js")} {
		if _, err := os.Stat(filepath.Join(dstDir, name)); err != nil {
			t.Errorf("%s wasn't built: %v", name, err)
		}
	}

	index := readDoc(t, filepath.Join(dstDir, "index.html"))
	testutil.AssertEqual(t, index.Find("title").Text(), "Is it prime? | Is it prime?")
	testutil.AssertEqual(t, index.Find("body").AttrOr("data-env", ""), string(env.Dev))

	// Static files referenced from the page are hashed and exist.
	wasm, ok := index.Find("script[data-wasm]").Attr("data-wasm")
	if !ok {
		t.Fatal("no script with data-wasm attribute")
	}
	if !strings.HasPrefix(wasm, "/wasm/isprime-") || !strings.HasSuffix(wasm, ".wasm") {
		t.Fatalf("WebAssembly module isn't hashed: %s", wasm)
	}
	b, err := os.ReadFile(filepath.Join(dstDir, filepath.FromSlash(wasm)))
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, string(b), "not really wasm\n")

	css, ok := index.Find("link[rel=stylesheet]").Attr("href")
	if !ok {
		t.Fatal("no stylesheet")
	}
	b, err = os.ReadFile(filepath.Join(dstDir, filepath.FromSlash(css)))
	if err != nil {
		t.Fatal(err)
	}
	if got := string(b); !strings.HasPrefix(got, "canvas{") || strings.Contains(got, "\n") {
		t.Fatalf("stylesheet isn't minified: %q", got)
	}

	about := readDoc(t, filepath.Join(dstDir, "about.html"))
	testutil.AssertEqual(t, about.Find("h1").Text(), "About")
	testutil.AssertEqual(t, about.Find("strong").Text(), "Check")
}

func TestBuildProd(t *testing.T) {
	srcDir, dstDir := extract(t), t.TempDir()

	if err := Build(&Config{
		Src:     srcDir,
		Dst:     dstDir,
		Env:     env.Prod,
		BaseURL: &url.URL{Scheme: "https", Host: "example.com"},
	}); err != nil {
		t.Fatal(err)
	}

	index := readDoc(t, filepath.Join(dstDir, "index.html"))
	src, _ := index.Find("script[data-wasm]").Attr("src")
	if !strings.HasPrefix(src, "https://example.com/js/main-") {
		t.Fatalf("want absolute URL, got %s", src)
	}
}

func TestBuildMissingElements(t *testing.T) {
	const frontmatter = `{
  "title": "Is it prime?",
  "template": "layout",
  "permalink": "/",
  "app": true
}
`
	cases := map[string]struct {
		body string
		els  indicator.Elements
	}{
		"no canvas": {
			body: `<input id="PrimeNumber"><button id="CheckNumber">Check</button>`,
		},
		"no input": {
			body: `<button id="CheckNumber">Check</button><canvas id="board"></canvas>`,
		},
		"wrong tag": {
			body: `<input id="PrimeNumber"><button id="CheckNumber">Check</button><div id="board"></div>`,
		},
		"custom ids": {
			body: `<input id="PrimeNumber"><button id="CheckNumber">Check</button><canvas id="board"></canvas>`,
			els:  indicator.Elements{Input: "n", Button: "go", Canvas: "c"},
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			srcDir := extract(t)
			if err := os.WriteFile(filepath.Join(srcDir, "pages", "index.html"), []byte(frontmatter+"\n"+tc.body+"\n"), 0o644); err != nil {
				t.Fatal(err)
			}
			err := Build(&Config{Src: srcDir, Dst: t.TempDir(), Elements: tc.els})
			if !errors.Is(err, errElementMissing) {
				t.Fatalf("want %v, got %v", errElementMissing, err)
			}
		})
	}
}

func TestBuildMissingTemplate(t *testing.T) {
	srcDir := extract(t)
	if err := os.Remove(filepath.Join(srcDir, "templates", "layout.html")); err != nil {
		t.Fatal(err)
	}
	if err := Build(&Config{Src: srcDir, Dst: t.TempDir()}); err == nil {
		t.Fatal("must fail without a template")
	}
}

func TestServe(t *testing.T) {
	// Find a free port for us.
	port, err := getFreePort()
	if err != nil {
		t.Fatalf("Failed to find a free port: %v", err)
	}
	addr := fmt.Sprintf("localhost:%d", port)

	var wg sync.WaitGroup

	ready := make(chan struct{})
	serveReadyHook = func() {
		ready <- struct{}{}
	}
	t.Cleanup(func() { serveReadyHook = nil })
	errCh := make(chan error, 1)
	ctx, cancel := context.WithCancel(context.Background())
	srcDir, dstDir := extract(t), t.TempDir()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := Serve(ctx, &Config{
			Src: srcDir,
			Dst: dstDir,
		}, addr); err != nil {
			errCh <- err
		}
	}()

	// Wait until the server is ready.
	select {
	case err := <-errCh:
		t.Fatalf("Test server crashed during startup or runtime: %v", err)
	case <-ready:
	}

	// Make some HTTP requests.
	urls := []struct {
		url        string
		wantStatus int
	}{
		{url: "/", wantStatus: http.StatusOK},
		{url: "/about", wantStatus: http.StatusOK},
		{url: "/robots.txt", wantStatus: http.StatusOK},
		{url: "/js/go_wasm_exec.js", wantStatus: http.StatusOK},
		{url: "/does-not-exist", wantStatus: http.StatusNotFound},
		{url: "/js/", wantStatus: http.StatusNotFound},
	}

	for _, u := range urls {
		res, err := http.Get("http://" + addr + u.url)
		if err != nil {
			t.Fatal(err)
		}
		res.Body.Close()
		if res.StatusCode != u.wantStatus {
			t.Fatalf("GET %s: want status code %d, got %d", u.url, u.wantStatus, res.StatusCode)
		}
	}

	// Try to gracefully shutdown the server.
	cancel()
	// Wait until the server shuts down.
	wg.Wait()
	// See if the server failed to shutdown.
	select {
	case err := <-errCh:
		t.Fatalf("Test server crashed during shutdown: %v", err)
	default:
	}
}

// getFreePort asks the kernel for a free open port that is ready to use.
// Copied from
// https://github.com/phayes/freeport/blob/74d24b5ae9f58fbe4057614465b11352f71cdbea/freeport.go.
func getFreePort() (port int, err error) {
	addr, err := net.ResolveTCPAddr("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}

	l, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

func TestShouldRebuild(t *testing.T) {
	cases := map[string]struct {
		path string
		op   fsnotify.Op
		want bool
	}{
		"macOS garbage":   {".DS_Store", fsnotify.Create, false},
		"vim temp file":   {"lololol/4913", fsnotify.Write, false},
		"vim backup file": {"pages/index.html~", fsnotify.Create, false},
		"file creation":   {"pages/index.html", fsnotify.Create, true},
		"file removal":    {"pages/index.html", fsnotify.Remove, true},
		"file write":      {"static/wasm/isprime.wasm", fsnotify.Write, true},
		"ignore chmod":    {"pages/index.html", fsnotify.Chmod, false},
		"ignore rename":   {"pages/index.html", fsnotify.Rename, false},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got := shouldRebuild(tc.path, tc.op)
			if got != tc.want {
				t.Fatalf("shouldRebuild(%q, %+v): want %v, got %v", tc.path, tc.op, tc.want, got)
			}
		})
	}
}

func TestStripComments(t *testing.T) {
	b := newBuildContext(&Config{})
	tpl := template.Must(template.New("test").Funcs(b.funcs).Parse(`{{ content . }}`))

	const content = `{
  "title": "Foo",
  "template": "layout",
  "permalink": "/"
}

Foo.

<!-- Some comment. -->
<!-- LOL. -->
`

	const strippedContent = "<p>Foo.</p>"

	p := &Page{path: "foo.md"}
	if err := p.parse(strings.NewReader(content)); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := p.build(b, tpl, &buf); err != nil {
		t.Fatal(err)
	}

	// Don't care about whitespace.
	got := strings.TrimSpace(buf.String())
	testutil.AssertEqual(t, got, strippedContent)
}

func TestPage(t *testing.T) {
	cases := map[string]struct {
		name, content string
		wantErr       error
		wantApp       bool
		wantDst       string
	}{
		"valid frontmatter": {
			name: "foo.md",
			content: `{
  "title": "Foo",
  "template": "layout",
  "permalink": "/"
}

Foo.
`,
			wantDst: "/index.html",
		},
		"app page": {
			name: "index.html",
			content: `{
  "title": "Is it prime?",
  "template": "layout",
  "permalink": "/check",
  "app": true
}

<canvas id="board"></canvas>
`,
			wantApp: true,
			wantDst: "/check.html",
		},
		"no frontmatter": {
			name:    "bar.md",
			content: "Hello, world!",
			wantErr: errFrontmatterMissing,
		},
		"invalid frontmatter (missing title)": {
			name: "invalid.md",
			content: `{
  "template": "layout",
  "permalink": "/"
}

Bar.
`,
			wantErr: errFrontmatterMissingParam,
		},
		"unsupported format": {
			name:    "unsupported.rst",
			content: "Sample text.",
			wantErr: errFormatUnsupported,
		},
		"invalid permalink": {
			name: "permalink.md",
			content: `{
  "title": "Foo",
  "template": "layout",
  "permalink": "dwd/"
}

Test.
`,
			wantErr: errPermalinkInvalid,
		},
		"invalid frontmatter (JSON)": {
			name: "invalid-frontmatter.html",
			content: `{
	"title": 0
}

<p>test</p>
`,
			wantErr: errFrontmatterParse,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			p := &Page{path: tc.name}
			err := p.parse(strings.NewReader(tc.content))

			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("want error %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("got error: %v", err)
			}

			testutil.AssertEqual(t, p.App, tc.wantApp)
			testutil.AssertEqual(t, p.dstPath, tc.wantDst)
		})
	}
}

func TestURLTemplateFunc(t *testing.T) {
	bu := &url.URL{
		Scheme: "https",
		Host:   "example.com",
	}
	cases := map[string]struct {
		c    *Config
		in   string
		want string
	}{
		"env dev (base URL set)": {
			c:    &Config{BaseURL: bu, Env: env.Dev},
			in:   "/test",
			want: "/test",
		},
		"env prod (base URL not set)": {
			c:    &Config{Env: env.Prod},
			in:   "/lol",
			want: "/lol",
		},
		"env prod (base URL set)": {
			c:    &Config{BaseURL: bu, Env: env.Prod},
			in:   "/hello",
			want: "https://example.com/hello",
		},
		"env staging (base URL set)": {
			c:    &Config{BaseURL: bu, Env: env.Staging},
			in:   "/hello",
			want: "https://example.com/hello",
		},
		"single slash": {
			c:    &Config{},
			in:   "/",
			want: "/",
		},
		"full url": {
			c:    &Config{Env: env.Prod, BaseURL: bu},
			in:   "https://go.astrophena.name",
			want: "https://go.astrophena.name",
		},
	}
	b := &buildContext{}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			b.c = tc.c
			got := b.url(tc.in)
			testutil.AssertEqual(t, got, tc.want)
		})
	}
}

func TestFormatStaticName(t *testing.T) {
	cases := map[string]struct {
		filename, hash, want string
	}{
		"empty filename": {"", "abc", ""},
		"empty hash":     {"wasm/isprime.wasm", "", "wasm/isprime.wasm"},
		"with extension": {"wasm/isprime.wasm", "abc", "wasm/isprime-abc.wasm"},
		"no extension":   {"LICENSE", "abc", "LICENSE-abc"},
		"two extensions": {"js/main.min.js", "abc", "js/main-abc.min.js"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, formatStaticName(tc.filename, tc.hash), tc.want)
		})
	}
}
