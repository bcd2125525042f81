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
Package project knows the directory conventions of host projects: where the
JavaScript sources live and where specs go.
*/
package project

import (
	"errors"
	"os"
	"path/filepath"
)

// SpecDirNames lists the conventional spec directories of a host project, in
// order of preference.
var SpecDirNames = []string{"spec", "test", "examples"}

// JavaScriptDir is the subdirectory of a spec directory holding JavaScript
// specs and their HTML fixtures.
const JavaScriptDir = "javascript"

// MainDirNames lists the conventional directories of a host project's
// JavaScript sources, in order of preference.
var MainDirNames = []string{filepath.Join("public", "javascripts"), "lib"}

// ErrNoSpecDir is returned when a project has none of the conventional spec
// directories.
var ErrNoSpecDir = errors.New("none of spec, test, or examples directories found")

// FindSpecDir returns the first of the conventional spec directories existing
// inside root.
func FindSpecDir(root string) (string, error) {
	if dir := firstDir(root, SpecDirNames); dir != "" {
		return dir, nil
	}
	return "", ErrNoSpecDir
}

// SpecPath returns the directory of the JavaScript specs of the project in
// root. If the project doesn't have any spec directory yet, the first
// conventional one is assumed.
func SpecPath(root string) string {
	dir, err := FindSpecDir(root)
	if err != nil {
		dir = filepath.Join(root, SpecDirNames[0])
	}
	return filepath.Join(dir, JavaScriptDir)
}

// MainPath returns the directory of the JavaScript sources of the project in
// root, falling back to "lib".
func MainPath(root string) string {
	if dir := firstDir(root, MainDirNames); dir != "" {
		return dir
	}
	return filepath.Join(root, MainDirNames[len(MainDirNames)-1])
}

func firstDir(root string, names []string) string {
	for _, name := range names {
		dir := filepath.Join(root, name)
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}
	return ""
}
