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
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Role identifies the kind of project file a request asks for.
type Role string

// The roles known to a Locator.
const (
	RoleMain Role = "main" // the project's JavaScript sources under test.
	RoleSpec Role = "spec" // the specs, fixtures and spec helpers.
)

// Title returns the role name with its first letter in upper case, as used in
// user-facing messages.
func (r Role) Title() string {
	if r == "" {
		return ""
	}
	return strings.ToUpper(string(r[:1])) + string(r[1:])
}

// DefaultSpecGlob matches the spec files below a spec root.
const DefaultSpecGlob = "**/*_spec.js"

// Locator maps a role and a relative file name to an absolute path on disk.
type Locator interface {
	// Locate returns the absolute path of the named file for the given role,
	// or a *NotFoundError if there is no such file.
	Locate(role Role, name string) (string, error)
	// Root returns the root directory of the specified role.
	Root(role Role) string
}

// NotFoundError reports a role file that does not exist. It wraps
// fs.ErrNotExist so that it normalizes into a 404.
type NotFoundError struct {
	Role Role
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s file not found: %s", e.Role.Title(), e.Path)
}

func (e *NotFoundError) Unwrap() error { return fs.ErrNotExist }

// DefaultLocator locates main files below MainPath and spec files below
// SpecPath.
type DefaultLocator struct {
	MainPath string
	SpecPath string
}

var _ Locator = (*DefaultLocator)(nil)

// Root returns the configured root directory of role, or "" for unknown
// roles.
func (l *DefaultLocator) Root(role Role) string {
	switch role {
	case RoleMain:
		return l.MainPath
	case RoleSpec:
		return l.SpecPath
	}
	return ""
}

// Locate returns the absolute path of name below the root of role. Names
// without an extension are taken to be JavaScript files. The name is rooted
// before joining it to the role root, so "../" elements cannot escape the
// root.
func (l *DefaultLocator) Locate(role Role, name string) (string, error) {
	root := l.Root(role)
	if root == "" {
		return "", fmt.Errorf("unknown role %q", role)
	}
	if path.Ext(name) == "" {
		name += ".js"
	}
	abs, err := filepath.Abs(filepath.Join(root, filepath.FromSlash(path.Clean("/"+name))))
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil || !info.Mode().IsRegular() {
		return "", &NotFoundError{Role: role, Path: abs}
	}
	return abs, nil
}
