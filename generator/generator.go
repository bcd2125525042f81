// Copyright 2024 Harald Albrecht.
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

/*
Package generator scaffolds a new JavaScript spec inside a host project: an
HTML fixture loading the browser runner together with a spec stub requiring
the spec helper and the presumed main file.

The files go into the "javascript" subdirectory of the project's first
existing conventional spec directory, that is, "spec", "test", or
"examples". For the name "models/hat" in a project with a "test"
directory:

	test/javascript/models/hat.html
	test/javascript/models/hat_spec.js

with the spec stub describing "models.Hat".
*/
package generator

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"text/template"
	"unicode"
	"unicode/utf8"

	"github.com/fatih/color"

	"github.com/thediveo/shenandoah/internal/project"
)

// ErrNoSpecDir is returned when the project has none of the conventional spec
// directories.
var ErrNoSpecDir = project.ErrNoSpecDir

// ErrInvalidName is returned for spec names without a final element once the
// "_spec" suffix is removed, such as "" or "models/_spec".
var ErrInvalidName = errors.New("invalid spec name")

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// Options control the generation of a spec.
type Options struct {
	Root  string    // project root directory; defaults to ".".
	Name  string    // spec name, optionally with directories and "_spec" suffix.
	Quiet bool      // suppresses the progress report.
	Force bool      // overwrites existing files that differ.
	Out   io.Writer // progress report; defaults to os.Stdout.
}

// Result tells what has been generated where.
type Result struct {
	SpecDir   string // the project's spec directory, such as ".../test".
	HTMLPath  string
	JSPath    string
	BaseName  string // slash path of the spec, relative to the JavaScript spec dir.
	ClassName string // dotted name the spec describes.
}

// Names returns the slash-separated base name and the dotted class name for
// the given spec name. A trailing "_spec" (or "_spec.js") is removed first.
// The class name consists of the directory elements followed by the
// camel-cased final element. Names without a final element, such as
// "models/_spec", return empty names.
func Names(name string) (base, class string) {
	base = strings.Trim(path.Clean("/"+filepath.ToSlash(name)), "/")
	base = strings.TrimSuffix(base, ".js")
	base = strings.TrimSuffix(base, "_spec")
	elems := strings.Split(base, "/")
	last := camelize(elems[len(elems)-1])
	if last == "" {
		return "", ""
	}
	elems[len(elems)-1] = last
	return base, strings.Join(elems, ".")
}

// camelize turns "some_thing" into "SomeThing".
func camelize(s string) string {
	var b strings.Builder
	for _, word := range strings.Split(s, "_") {
		if word == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(word)
		b.WriteRune(unicode.ToUpper(r))
		b.WriteString(word[size:])
	}
	return b.String()
}

// Generate writes the HTML fixture and the JavaScript spec stub for
// opts.Name. Existing files are kept unless opts.Force is set.
func Generate(opts Options) (*Result, error) {
	root := opts.Root
	if root == "" {
		root = "."
	}
	base, class := Names(opts.Name)
	if base == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, opts.Name)
	}
	specDir, err := project.FindSpecDir(root)
	if err != nil {
		return nil, fmt.Errorf("cannot generate spec in %s: %w", root, err)
	}
	jsDir := filepath.Join(specDir, project.JavaScriptDir)
	res := &Result{
		SpecDir:   specDir,
		HTMLPath:  filepath.Join(jsDir, filepath.FromSlash(base)+".html"),
		JSPath:    filepath.Join(jsDir, filepath.FromSlash(base)+"_spec.js"),
		BaseName:  base,
		ClassName: class,
	}
	rep := &reporter{root: root, out: opts.Out, quiet: opts.Quiet}
	if rep.out == nil {
		rep.out = os.Stdout
	}
	if err := rep.mkdirAll(filepath.Dir(res.HTMLPath)); err != nil {
		return nil, err
	}
	for _, file := range []struct {
		filename string
		template string
	}{
		{res.HTMLPath, "fixture.html.tmpl"},
		{res.JSPath, "spec.js.tmpl"},
	} {
		var content bytes.Buffer
		if err := templates.ExecuteTemplate(&content, file.template, res); err != nil {
			return nil, err
		}
		if err := rep.writeFile(file.filename, content.Bytes(), opts.Force); err != nil {
			return nil, err
		}
	}
	return res, nil
}

var (
	createColor = color.New(color.FgGreen, color.Bold)
	existsColor = color.New(color.FgBlue, color.Bold)
	skipColor   = color.New(color.FgYellow, color.Bold)
	forceColor  = color.New(color.FgRed, color.Bold)
)

// reporter creates directories and files, reporting each step relative to
// the project root.
type reporter struct {
	root  string
	out   io.Writer
	quiet bool
}

func (r *reporter) report(c *color.Color, status, filename string) {
	if r.quiet {
		return
	}
	if rel, err := filepath.Rel(r.root, filename); err == nil {
		filename = rel
	}
	_, _ = c.Fprintf(r.out, "%12s", status)
	_, _ = fmt.Fprintf(r.out, "  %s\n", filename)
}

// mkdirAll creates dir and its missing parents below the project root.
func (r *reporter) mkdirAll(dir string) error {
	var missing []string
	for d := dir; ; d = filepath.Dir(d) {
		if _, err := os.Stat(d); err == nil {
			r.report(existsColor, "exists", d)
			break
		}
		missing = append(missing, d)
		if parent := filepath.Dir(d); parent == d {
			break
		}
	}
	for i := len(missing) - 1; i >= 0; i-- {
		if err := os.Mkdir(missing[i], 0o755); err != nil && !errors.Is(err, os.ErrExist) {
			return err
		}
		r.report(createColor, "create", missing[i])
	}
	return nil
}

// writeFile writes content to filename, unless filename already exists with
// different content and force isn't set.
func (r *reporter) writeFile(filename string, content []byte, force bool) error {
	existing, err := os.ReadFile(filename)
	switch {
	case err == nil && bytes.Equal(existing, content):
		r.report(existsColor, "identical", filename)
		return nil
	case err == nil && !force:
		r.report(skipColor, "skip", filename)
		return nil
	case err == nil:
		r.report(forceColor, "force", filename)
	case errors.Is(err, os.ErrNotExist):
		r.report(createColor, "create", filename)
	default:
		return err
	}
	return os.WriteFile(filename, content, 0o644)
}
