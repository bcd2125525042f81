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
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"time"
)

//go:embed assets
var embeddedAssets embed.FS

// Assets contains the bundled browser-side JavaScript files below
// "javascript/" and the default stylesheet below "css/".
var Assets = mustSub(embeddedAssets, "assets")

// mustSub returns the subtree of fsys rooted at dir, panicking if dir isn't a
// directory of fsys.
func mustSub(fsys fs.FS, dir string) fs.FS {
	if info, err := fs.Stat(fsys, dir); err != nil || !info.IsDir() {
		panic(fmt.Sprintf("missing embedded directory %q", dir))
	}
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// executableStamp returns the modification time of the running executable,
// standing in for the missing modification times of embedded files. It
// returns the zero time if the executable cannot be determined.
func executableStamp() time.Time {
	exe, err := os.Executable()
	if err != nil {
		return time.Time{}
	}
	info, err := os.Stat(exe)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}
