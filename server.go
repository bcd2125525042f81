// Copyright 2022, 2024 Harald Albrecht.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package shenandoah

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/yuin/goldmark"
	"go.uber.org/zap"
)

// Content types of the responses; these are set explicitly instead of being
// derived from file name extensions.
const (
	javascriptContentType = "text/javascript"
	libraryContentType    = "application/javascript"
	cssContentType        = "text/css"
	htmlContentType       = "text/html"
)

// Route paths of the stylesheet and its deprecated predecessor.
const (
	StylePath       = "/shenandoah.css"
	LegacyStylePath = "/screw.css"
)

// IntroName is the optional Markdown file in the spec root that gets rendered
// at the top of the spec index.
const IntroName = "README.md"

// Server implements an http.Handler serving the bundled browser runner, the
// project's main and spec files, the stylesheet, the spec index and the
// multirunner.
type Server struct {
	locator     Locator     // maps roles to project directories.
	projectName string      // optional name shown in the spec index.
	specGlob    string      // spec files to list in the index.
	assets      fs.FS       // bundled JavaScript and default stylesheet.
	stamp       time.Time   // modification time for files without one.
	log         *zap.Logger // never nil.
	router      chi.Router
}

// ServerOption sets optional properties at the time of creating a Server.
type ServerOption func(*Server)

// WithLocator sets the Locator for main and spec files.
func WithLocator(l Locator) ServerOption {
	return func(s *Server) {
		s.locator = l
	}
}

// WithProjectName sets the project name shown as the heading of the spec
// index.
func WithProjectName(name string) ServerOption {
	return func(s *Server) {
		s.projectName = name
	}
}

// WithSpecGlob sets the pattern of the spec files listed in the spec index,
// relative to the spec root. It defaults to DefaultSpecGlob.
func WithSpecGlob(glob string) ServerOption {
	return func(s *Server) {
		s.specGlob = glob
	}
}

// WithAssets replaces the bundled assets, such as with os.DirFS of an
// unpacked asset directory.
func WithAssets(assets fs.FS) ServerOption {
	return func(s *Server) {
		s.assets = assets
	}
}

// WithStamp sets the modification time reported for assets that lack their
// own modification time, as is the case with embedded files. It defaults to
// the modification time of the executable.
func WithStamp(stamp time.Time) ServerOption {
	return func(s *Server) {
		s.stamp = stamp
	}
}

// WithLogger sets the logger for request and resolution logging.
func WithLogger(log *zap.Logger) ServerOption {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// NewServer returns a new Server. Unless configured otherwise, main files are
// located in "lib" and spec files in "spec", relative to the current working
// directory.
func NewServer(opts ...ServerOption) *Server {
	s := &Server{
		locator:  &DefaultLocator{MainPath: "lib", SpecPath: "spec"},
		specGlob: DefaultSpecGlob,
		assets:   Assets,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.stamp.IsZero() {
		s.stamp = executableStamp()
	}
	s.router = s.routes()
	return s
}

// ServeHTTP delegates to the router, satisfying http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.GetHead)

	r.Get("/", s.handleIndex)
	r.Get("/multirunner", s.handleMultirunner)
	r.Get("/shenandoah/browser-runner.js", s.handleBundle(BrowserRunnerBundle))
	r.Get("/shenandoah/multirunner.js", s.handleBundle(MultirunnerBundle))
	r.Get(StylePath, s.handleStyle)
	r.Get(LegacyStylePath, s.handleLegacyStyle)
	r.Get("/main/*", s.handleRoleFile(RoleMain))
	r.Get("/spec/*", s.handleRoleFile(RoleSpec))
	r.Get("/js/*", s.handleLibrary)
	return r
}

// modTime returns t, or the server's stamp if t is unknown.
func (s *Server) modTime(t time.Time) time.Time {
	if t.IsZero() {
		return s.stamp
	}
	return t
}

// fail logs err and sends a normalized error response.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	s.log.Warn("request failed",
		zap.String("path", r.URL.Path),
		zap.Error(err))
	NormalizedHttpError(w, err)
}

// handleBundle serves the concatenated members of bundle, last modified when
// its most recent member was modified.
func (s *Server) handleBundle(bundle Bundle) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		composed, err := Compose(s.assets, bundle)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		w.Header().Set("Content-Type", javascriptContentType)
		http.ServeContent(w, r, bundle.Name, s.modTime(composed.ModTime), bytes.NewReader(composed.Content))
	}
}

// handleRoleFile serves a main or spec file of the project, telling clients
// to always revalidate it.
func (s *Server) handleRoleFile(role Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filename, err := s.locator.Locate(role, chi.URLParam(r, "*"))
		if err != nil {
			s.fail(w, r, err)
			return
		}
		f, err := os.Open(filename)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		defer func() { _ = f.Close() }()
		info, err := f.Stat()
		if err != nil {
			s.fail(w, r, err)
			return
		}
		w.Header().Set("Cache-Control", "no-cache")
		http.ServeContent(w, r, filepath.Base(filename), info.ModTime(), f)
	}
}

// handleStyle serves the project's stylesheet, compiling Sass on the fly.
func (s *Server) handleStyle(w http.ResponseWriter, r *http.Request) {
	style, err := ResolveStyle(s.locator.Root(RoleSpec), s.assets)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	css, err := style.Render()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.log.Debug("stylesheet",
		zap.Stringer("kind", style.Kind),
		zap.String("source", style.Path))
	w.Header().Set("Content-Type", cssContentType)
	http.ServeContent(w, r, path.Base(StylePath), s.modTime(style.ModTime), strings.NewReader(css))
}

// handleLegacyStyle permanently redirects to the stylesheet's current
// location.
func (s *Server) handleLegacyStyle(w http.ResponseWriter, r *http.Request) {
	location := strings.TrimSuffix(basePath(r), "/") + StylePath
	w.Header().Set("Location", location)
	w.Header().Set("Content-Type", htmlContentType)
	w.WriteHeader(http.StatusMovedPermanently)
	_, _ = fmt.Fprintf(w, "This URI is deprecated.  Use <a href='%s'>%s</a>.",
		template.HTMLEscapeString(location), template.HTMLEscapeString(location))
}

// handleLibrary serves a single bundled JavaScript file.
func (s *Server) handleLibrary(w http.ResponseWriter, r *http.Request) {
	name := path.Join("javascript", path.Clean("/" + chi.URLParam(r, "*"))[1:])
	info, err := fs.Stat(s.assets, name)
	if err == nil && !info.Mode().IsRegular() {
		err = fs.ErrNotExist
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	f, err := s.assets.Open(name)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	defer func() { _ = f.Close() }()
	content, ok := f.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(f)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		content = bytes.NewReader(data)
	}
	w.Header().Set("Content-Type", libraryContentType)
	http.ServeContent(w, r, path.Base(name), s.modTime(info.ModTime()), content)
}

type indexPage struct {
	Base        string
	ProjectName string
	Intro       template.HTML
	Groups      []SpecGroup
}

// handleIndex renders the index of all specs found in the spec root.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	root := s.locator.Root(RoleSpec)
	groups, err := BuildSpecIndex(root, s.specGlob)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	intro, err := renderIntro(filepath.Join(root, IntroName))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.render(w, r, "index.html", indexPage{
		Base:        basePath(r),
		ProjectName: s.projectName,
		Intro:       intro,
		Groups:      groups,
	})
}

type multirunnerPage struct {
	Base  string
	Specs []string
}

// handleMultirunner renders the page running the spec fixtures passed in the
// "spec" query parameters inside iframes.
func (s *Server) handleMultirunner(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "multirunner.html", multirunnerPage{
		Base:  basePath(r),
		Specs: r.URL.Query()["spec"],
	})
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	var buff bytes.Buffer
	if err := pageTemplates.ExecuteTemplate(&buff, name, data); err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", htmlContentType)
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(buff.Bytes())
}

// renderIntro renders the Markdown file at filename into HTML; a missing file
// renders into nothing.
func renderIntro(filename string) (template.HTML, error) {
	src, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	var html bytes.Buffer
	if err := goldmark.Convert(src, &html); err != nil {
		return "", err
	}
	return template.HTML(html.String()), nil
}
