// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Package site builds the prime checker page.

# Directory Structure

Site has the following directories:

	build      This is where the generated site will be placed by default.
	pages      All pages live inside this directory. HTML and Markdown
	           formats can be used.
	static     Files in this directory will be copied to the generated site
	           under content-hashed names. This is where the WebAssembly
	           module and its loader are placed by the build tool.
	templates  These are the templates that wrap pages. Templates are
	           chosen on a page-by-page basis in the front matter.
	           They must have the '.html' extension.

# Page Layout

Each page must be of the supported format (HTML or Markdown) and have JSON front
matter in the beginning:

	{
	  "title": "Is it prime?",
	  "template": "layout",
	  "permalink": "/",
	  "app": true
	}

Pages with "app" set must contain the elements the WebAssembly module binds
to (see [indicator.Elements]), otherwise the build fails.

See Page for all available front matter fields.
*/
package site

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"sync"
	ttemplate "text/template"
	"time"

	"go.astrophena.name/base/logger"
	"go.astrophena.name/isprime/internal/env"
	"go.astrophena.name/isprime/internal/indicator"

	"github.com/PuerkitoBio/goquery"
	"github.com/fsnotify/fsnotify"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
	mjson "github.com/tdewolff/minify/v2/json"
	"github.com/tdewolff/minify/v2/svg"
	"rsc.io/markdown"
)

// Possible errors, used in tests.
var (
	errFrontmatterSplit        = errors.New("failed to split frontmatter and contents")
	errFrontmatterParse        = errors.New("failed to parse frontmatter")
	errFrontmatterMissing      = errors.New("missing frontmatter")
	errFrontmatterMissingParam = errors.New("missing required frontmatter parameter (title, template, permalink)")
	errFormatUnsupported       = errors.New("format unsupported")
	errPermalinkInvalid        = errors.New("invalid permalink")
	errElementMissing          = errors.New("missing app element")
)

// Config represents a build configuration.
type Config struct {
	// Title is the title of the site.
	Title string
	// BaseURL is the base URL of the site.
	BaseURL *url.URL
	// Src is the directory where to read files from. If empty, uses the current
	// directory.
	Src string
	// Dst is the directory where to write files. If empty, uses the build
	// directory.
	Dst string
	// Env is the environment to build for. If empty, env.Dev is used. In
	// production environments the base URL is used to derive absolute URLs from
	// relative ones.
	Env env.Env
	// Elements are the ids app pages must contain. If zero,
	// indicator.DefaultElements is used.
	Elements indicator.Elements
}

func (c *Config) setDefaults() {
	if c.Title == "" {
		c.Title = "Is it prime?"
	}

	if c.BaseURL == nil {
		c.BaseURL = &url.URL{
			Scheme: "https",
			Host:   "isprime.astrophena.name",
		}
	}

	if c.Src == "" {
		c.Src = filepath.Join(".")
	}

	if c.Dst == "" {
		c.Dst = filepath.Join(".", "build")
	}

	if c.Env == "" {
		c.Env = env.Dev
	}

	if c.Elements == (indicator.Elements{}) {
		c.Elements = indicator.DefaultElements
	}
}

// Build builds a site based on the provided [Config].
func Build(c *Config) error {
	c.setDefaults()
	b := newBuildContext(c)

	// Parse templates and pages.
	if err := filepath.WalkDir(filepath.Join(b.c.Src, "templates"), b.parseTemplates); err != nil {
		return err
	}
	if err := filepath.WalkDir(filepath.Join(b.c.Src, "pages"), b.parsePages); err != nil {
		return err
	}
	// Hash static files.
	if err := filepath.WalkDir(filepath.Join(b.c.Src, "static"), b.hashStatic); err != nil {
		return err
	}

	// Clean up after previous build.
	if _, err := os.Stat(b.c.Dst); err == nil {
		if err := os.RemoveAll(b.c.Dst); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(b.c.Dst, 0o755); err != nil {
		return err
	}

	for _, p := range b.pages {
		if err := b.writePage(p); err != nil {
			return err
		}
	}

	// Write robots.txt.
	if err := os.WriteFile(filepath.Join(b.c.Dst, "robots.txt"), []byte(robotsTxt), 0o644); err != nil {
		return err
	}
	// Copy static files.
	return filepath.WalkDir(filepath.Join(b.c.Src, "static"), b.copyStatic)
}

const robotsTxt = `User-agent: *
`

func (b *buildContext) writePage(p *Page) error {
	tpl, ok := b.templates[p.Template]
	if !ok {
		return fmt.Errorf("%s: no such template %q", p.path, p.Template)
	}

	var buf bytes.Buffer
	if err := p.build(b, tpl, &buf); err != nil {
		return err
	}
	if p.App {
		if err := verifyElements(p.path, buf.Bytes(), b.c.Elements); err != nil {
			return err
		}
	}

	dst := filepath.Join(b.c.Dst, p.dstPath)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dst, buf.Bytes(), 0o644)
}

// verifyElements checks that the built page has every element the
// WebAssembly module looks up by id, with the expected tag.
func verifyElements(name string, page []byte, els indicator.Elements) error {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	for _, want := range []struct{ id, tag string }{
		{els.Input, "input"},
		{els.Button, "button"},
		{els.Canvas, "canvas"},
	} {
		sel := doc.Find("#" + want.id)
		if sel.Length() == 0 {
			return fmt.Errorf("%s: %w: no element with id %q", name, errElementMissing, want.id)
		}
		if tag := goquery.NodeName(sel.First()); tag != want.tag {
			return fmt.Errorf("%s: %w: #%s is <%s>, want <%s>", name, errElementMissing, want.id, tag, want.tag)
		}
	}
	return nil
}

type min struct {
	m *minify.M
}

func newMin() *min {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.Add("text/html", &html.Minifier{
		KeepDocumentTags:    true,
		KeepDefaultAttrVals: true,
		KeepEndTags:         true,
	})
	m.AddFunc("application/javascript", js.Minify)
	m.AddFunc("application/json", mjson.Minify)
	m.AddFunc("image/svg+xml", svg.Minify)

	return &min{m: m}
}

func (m *min) Bytes(mediaType string, b []byte) ([]byte, error) {
	return m.m.Bytes(mediaType, b)
}

var serveReadyHook func() // used in tests, called when Serve started serving the site

// debouncer delays execution of a function until a specified duration has
// passed without any new events.
type debouncer struct {
	d  time.Duration
	mu sync.Mutex
	f  func()
	t  *time.Timer
}

// newDebouncer creates a new debouncer.
func newDebouncer(d time.Duration, f func()) *debouncer {
	return &debouncer{
		d: d,
		f: f,
	}
}

// Do schedules a function to be executed.
func (d *debouncer) Do() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.t != nil {
		d.t.Stop()
	}

	d.t = time.AfterFunc(d.d, d.f)
}

// Serve builds the site and starts serving it on a provided host:port.
func Serve(ctx context.Context, c *Config, addr string) error {
	c.setDefaults()

	logger.Info(ctx, "performing an initial build")
	if err := Build(c); err != nil {
		logger.Error(ctx, "initial build failed", slog.Any("err", err))
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	for _, dir := range []string{
		filepath.Join(c.Src, "pages"),
		filepath.Join(c.Src, "static"),
		filepath.Join(c.Src, "templates"),
	} {
		if err := watchRecursive(watcher, dir); err != nil {
			return err
		}
	}

	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	defer l.Close()
	logger.Info(ctx, "listening for HTTP requests", slog.String("addr", "http://"+l.Addr().String()))

	httpSrv := &http.Server{Handler: &staticHandler{fs: os.DirFS(c.Dst)}}
	errCh := make(chan error, 1)
	go func() {
		if err := httpSrv.Serve(l); err != nil {
			if err != http.ErrServerClosed {
				errCh <- err
			}
		}
	}()

	rebuild := func() {
		logger.Info(ctx, "triggering build")
		if err := Build(c); err != nil {
			logger.Error(ctx, "failed to rebuild the site", slog.Any("err", err))
		}
	}
	// Editors write in bursts, so wait a bit before rebuilding.
	debouncer := newDebouncer(250*time.Millisecond, rebuild)

	go func() {
		logger.Info(ctx, "started watching for new changes")

		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !shouldRebuild(event.Name, event.Op) {
					continue
				}
				logger.Info(ctx, "detected change, scheduling build",
					slog.String("name", event.Name),
					slog.Any("op", event.Op),
				)
				debouncer.Do()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Error(ctx, "watcher failed", slog.Any("err", err))
			case <-ctx.Done():
				return
			}
		}
	}()

	if serveReadyHook != nil {
		serveReadyHook()
	}

	select {
	case <-ctx.Done():
		logger.Info(ctx, "gracefully shutting down")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return httpSrv.Shutdown(shutdownCtx)
}

func watchRecursive(w *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		return w.Add(path)
	})
}

// Based on
// https://github.com/brandur/modulir/blob/1ff912fdc45a79cb4d8d9f199d213ae9c3598cbd/watch.go#L201.
func shouldRebuild(path string, op fsnotify.Op) bool {
	base := filepath.Base(path)

	// Mac OS' worst mistake.
	if base == ".DS_Store" {
		return false
	}

	// Vim creates this temporary file to see whether it can write into a target
	// directory.
	if base == "4913" {
		return false
	}

	// Vim backups.
	if strings.HasSuffix(base, "~") {
		return false
	}

	// Chmod doesn't change the output, and a rename is followed by a create.
	return op&(fsnotify.Create|fsnotify.Remove|fsnotify.Write) != 0
}

type staticHandler struct {
	fs fs.FS
}

func (h *staticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p := r.URL.Path
	if p == "/" {
		p += "/index.html"
	}
	p = strings.TrimPrefix(path.Clean(p), "/")

	// Special case: /foo will serve content from foo.html, if it exists.
	if _, err := fs.Stat(h.fs, p+".html"); err == nil {
		p += ".html"
	}

	d, err := fs.Stat(h.fs, p)
	if errors.Is(err, fs.ErrNotExist) {
		h.serveNotFound(w, r)
		return
	} else if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if d.IsDir() {
		h.serveNotFound(w, r)
		return
	}

	b, err := fs.ReadFile(h.fs, p)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	http.ServeContent(w, r, d.Name(), d.ModTime(), bytes.NewReader(b))
}

func (h *staticHandler) serveNotFound(w http.ResponseWriter, r *http.Request) {
	f, err := h.fs.Open("404.html")
	if errors.Is(err, fs.ErrNotExist) {
		http.NotFound(w, r)
		return
	} else if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer f.Close()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	io.Copy(w, f)
}

type buildContext struct {
	c         *Config
	md        *markdown.Parser
	funcs     template.FuncMap
	pages     []*Page
	templates map[string]*template.Template
	static    map[string]string // path -> hashed path (e.g. /wasm/isprime.wasm -> /wasm/isprime-[hash].wasm)
	min       *min
}

func newBuildContext(c *Config) *buildContext {
	b := &buildContext{
		c: c,
		md: &markdown.Parser{
			HeadingID:     true,
			Strikethrough: true,
			AutoLinkText:  true,
			Table:         true,
			Emoji:         true,
			SmartDash:     true,
			SmartQuote:    true,
		},
		templates: make(map[string]*template.Template),
		static:    make(map[string]string),
		min:       newMin(),
	}

	b.funcs = template.FuncMap{
		"content": func(p *Page) template.HTML { return template.HTML(p.contents) },
		"url":     b.url,
		"static":  b.getStatic,
		"env":     func() env.Env { return b.c.Env },
		"title":   func() string { return b.c.Title },
	}

	return b
}

func isFullURL(url string) bool {
	return strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://")
}

func (b *buildContext) url(base string) string {
	if isFullURL(base) || !b.c.Env.IsProd() || b.c.BaseURL == nil {
		return base
	}
	u := *b.c.BaseURL
	u.Path = path.Join(u.Path, base)
	return u.String()
}

func (b *buildContext) getStatic(base string) string {
	hashed, ok := b.static[base]
	if !ok {
		return b.url(base)
	}
	return b.url(hashed)
}

func (b *buildContext) parseTemplates(path string, d fs.DirEntry, err error) error {
	if err != nil {
		return err
	}

	if d.IsDir() || filepath.Ext(path) != ".html" {
		return nil
	}

	name, err := filepath.Rel(filepath.Join(b.c.Src, "templates"), path)
	if err != nil {
		return err
	}
	name = filepath.ToSlash(strings.TrimSuffix(name, filepath.Ext(name)))

	bb, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	b.templates[name], err = template.New(name).Funcs(b.funcs).Parse(string(bb))
	return err
}

func (b *buildContext) parsePages(path string, d fs.DirEntry, err error) error {
	if err != nil {
		return err
	}

	if d.IsDir() || isIgnorable(path) {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	p := &Page{path: path}
	if err := p.parse(f); err != nil {
		return err
	}
	b.pages = append(b.pages, p)

	return nil
}

var skipHashing = []string{
	"robots.txt",
	// Loaded by the page before the hashed assets, and replaced on every
	// build from GOROOT.
	"go_wasm_exec.js",
}

func (b *buildContext) hashStatic(path string, d fs.DirEntry, err error) error {
	if err != nil {
		return err
	}

	if d.IsDir() || isIgnorable(path) {
		return nil
	}

	for _, skip := range skipHashing {
		if strings.Contains(path, skip) {
			return nil
		}
	}

	rel, err := filepath.Rel(filepath.Join(b.c.Src, "static"), path)
	if err != nil {
		return err
	}
	rel = filepath.ToSlash(rel)

	buf, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	hash := sha256.Sum256(buf)
	hashhex := hex.EncodeToString(hash[:])
	b.static["/"+rel] = "/" + formatStaticName(rel, hashhex)

	return nil
}

// formatStaticName returns a hash name that inserts hash before the filename's
// extension. If no extension exists on filename then the hash is appended.
// Returns the original filename if hash is blank. Returns a blank string if
// the filename is blank.
func formatStaticName(filename, hash string) string {
	if filename == "" {
		return ""
	} else if hash == "" {
		return filename
	}

	dir, base := path.Split(filename)
	if i := strings.Index(base, "."); i != -1 {
		return path.Join(dir, fmt.Sprintf("%s-%s%s", base[:i], hash, base[i:]))
	}
	return path.Join(dir, fmt.Sprintf("%s-%s", base, hash))
}

var mediaTypes = map[string]string{
	".css":  "text/css",
	".js":   "application/javascript",
	".json": "application/json",
	".svg":  "image/svg+xml",
}

func (b *buildContext) copyStatic(path string, d fs.DirEntry, err error) error {
	if err != nil {
		return err
	}

	if d.IsDir() || isIgnorable(path) {
		return nil
	}

	rel, err := filepath.Rel(filepath.Join(b.c.Src, "static"), path)
	if err != nil {
		return err
	}
	rel = filepath.ToSlash(rel)

	hashed, ok := b.static["/"+rel]
	if !ok {
		hashed = "/" + rel
	}

	buf, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if mediaType, ok := mediaTypes[filepath.Ext(path)]; ok {
		minified, err := b.min.Bytes(mediaType, buf)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		buf = minified
	}

	dst := filepath.Join(b.c.Dst, filepath.FromSlash(hashed))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dst, buf, 0o644)
}

func isIgnorable(path string) bool {
	// Ignore files that look like Vim backups.
	if strings.HasSuffix(path, "~") {
		return true
	}

	// Ignore .gitignore files.
	if strings.Contains(path, ".gitignore") {
		return true
	}

	return false
}

// Page represents a site page. The exported fields is the front matter fields.
type Page struct {
	Title     string            `json:"title"`               // title: Page title, required.
	Permalink string            `json:"permalink"`           // permalink: Output path for the page, required.
	Template  string            `json:"template"`            // template: Template that should be used for rendering this page, required.
	App       bool              `json:"app,omitempty"`       // app: Determines whether this page hosts the checker and must contain its elements, false by default.
	Summary   string            `json:"summary,omitempty"`   // summary: Page summary, used for the description meta tag, optional.
	MetaTags  map[string]string `json:"meta_tags,omitempty"` // meta_tags: Determines additional HTML meta tags that will be added to this page, optional.
	CSS       []string          `json:"css,omitempty"`       // css: Additional CSS files that should be loaded, optional.
	JS        []string          `json:"js,omitempty"`        // js: Additional JavaScript files that should be loaded, optional.

	path     string // path to the page source
	dstPath  string // where to write the built page
	contents []byte // page contents without front matter
}

func (p *Page) parse(r io.Reader) error {
	if !slices.Contains([]string{".html", ".md"}, filepath.Ext(p.path)) {
		return fmt.Errorf("%s: %w", p.path, errFormatUnsupported)
	}

	const (
		leftDelim  = "{\n"
		rightDelim = "}\n"
	)

	// Split the front matter and contents.
	scanner := bufio.NewScanner(r)
	var (
		frontmatter, contents []byte
		reachedFrontmatter    bool
		reachedContents       bool
	)
	for scanner.Scan() {
		line := scanner.Text() + "\n"

		if !reachedContents {
			if line == leftDelim {
				reachedFrontmatter = true
			}

			if line == rightDelim {
				reachedFrontmatter = false
				frontmatter = append(frontmatter, line...)
				reachedContents = true
				continue
			}
		}

		if reachedFrontmatter {
			frontmatter = append(frontmatter, line...)
			continue
		}

		if reachedContents {
			contents = append(contents, line...)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("%s: %w: %v", p.path, errFrontmatterSplit, err)
	}
	if len(frontmatter) == 0 {
		return fmt.Errorf("%s: %w", p.path, errFrontmatterMissing)
	}
	p.contents = contents

	if err := json.Unmarshal(frontmatter, p); err != nil {
		return fmt.Errorf("%s: %w: %v", p.path, errFrontmatterParse, err)
	}

	if p.Title == "" || p.Template == "" || p.Permalink == "" {
		return fmt.Errorf("%s: %w", p.path, errFrontmatterMissingParam)
	}
	if _, err := url.ParseRequestURI(p.Permalink); err != nil {
		return fmt.Errorf("%s: %w: %v", p.path, errPermalinkInvalid, err)
	}
	p.dstPath = p.Permalink
	if !strings.HasSuffix(p.dstPath, ".html") {
		if p.dstPath == "/" {
			p.dstPath = p.dstPath + "index"
		}
		p.dstPath = p.dstPath + ".html"
	}
	p.dstPath = path.Clean(p.dstPath)

	return nil
}

var htmlCommentRe = regexp.MustCompile("<!--(.*?)-->")

func (p *Page) build(b *buildContext, tpl *template.Template, w io.Writer) error {
	// text/template, because HTML in Markdown sources must stay unescaped.
	ptpl, err := ttemplate.New(p.path).Funcs(ttemplate.FuncMap(b.funcs)).Parse(string(p.contents))
	if err != nil {
		return err
	}
	var pbuf bytes.Buffer
	if err = ptpl.Execute(&pbuf, p); err != nil {
		return fmt.Errorf("%s: failed to execute page template: %w", p.path, err)
	}
	p.contents = pbuf.Bytes()

	if filepath.Ext(p.path) == ".md" {
		doc := b.md.Parse(string(p.contents))
		p.contents = []byte(markdown.ToHTML(doc))
	}

	p.contents = htmlCommentRe.ReplaceAll(p.contents, []byte{})

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, p); err != nil {
		return fmt.Errorf("%s: failed to execute template %q: %w", p.path, p.Template, err)
	}

	minified, err := b.min.Bytes("text/html", buf.Bytes())
	if err != nil {
		return err
	}

	_, err = w.Write(minified)
	return err
}
