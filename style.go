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

package shenandoah

import (
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/thediveo/shenandoah/sass"
)

// Names of the stylesheet files looked for in a project's spec directory, as
// well as the directory of the bundled default stylesheet.
const (
	StyleName       = "shenandoah.css"
	StyleSassName   = "shenandoah.sass"
	DefaultStyleDir = "css"
)

// StyleKind tells where a stylesheet comes from.
type StyleKind int

// The stylesheet sources, in order of preference.
const (
	CustomCSS   StyleKind = iota // plain CSS in the project's spec directory.
	CustomSass                   // Sass in the project's spec directory.
	DefaultSass                  // the bundled default Sass.
)

func (k StyleKind) String() string {
	switch k {
	case CustomCSS:
		return "custom CSS"
	case CustomSass:
		return "custom Sass"
	case DefaultSass:
		return "default Sass"
	}
	return "unknown"
}

// StyleSource is a resolved stylesheet: its kind, where it lives, and when it
// was last modified.
type StyleSource struct {
	Kind    StyleKind
	Path    string    // OS path for custom stylesheets, slash path inside FS otherwise.
	ModTime time.Time // modification time of the stylesheet source.
	FS      fs.FS     // FS containing Path.
}

// ResolveStyle returns the stylesheet to serve: a plain CSS stylesheet in
// dir, else a Sass stylesheet in dir, else the default Sass stylesheet
// bundled in defaults. An empty dir skips the custom stylesheets.
func ResolveStyle(dir string, defaults fs.FS) (*StyleSource, error) {
	if dir != "" {
		custom := os.DirFS(dir)
		for _, candidate := range []struct {
			name string
			kind StyleKind
		}{
			{StyleName, CustomCSS},
			{StyleSassName, CustomSass},
		} {
			info, err := fs.Stat(custom, candidate.name)
			if err == nil && info.Mode().IsRegular() {
				return &StyleSource{
					Kind:    candidate.kind,
					Path:    filepath.Join(dir, candidate.name),
					ModTime: info.ModTime(),
					FS:      custom,
				}, nil
			}
			if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return nil, err
			}
		}
	}
	name := path.Join(DefaultStyleDir, StyleSassName)
	info, err := fs.Stat(defaults, name)
	if err != nil {
		return nil, err
	}
	return &StyleSource{
		Kind:    DefaultSass,
		Path:    name,
		ModTime: info.ModTime(),
		FS:      defaults,
	}, nil
}

// Render returns the CSS text of the stylesheet, compiling Sass as necessary.
// Sass imports are resolved relative to the stylesheet.
func (s *StyleSource) Render() (string, error) {
	name := path.Base(filepath.ToSlash(s.Path))
	dir := "."
	if s.Kind == DefaultSass {
		name = s.Path
		dir = path.Dir(s.Path)
	}
	src, err := fs.ReadFile(s.FS, name)
	if err != nil {
		return "", err
	}
	if s.Kind == CustomCSS {
		return string(src), nil
	}
	return sass.Compile(src, sass.FSImporter(s.FS, dir))
}
