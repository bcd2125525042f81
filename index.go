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
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// SpecSuffix ends the names of spec files.
const SpecSuffix = "_spec.js"

// RootGroupLabel labels the specs directly inside the spec root.
const RootGroupLabel = "[root]"

// SpecEntry is a spec found in the spec root.
type SpecEntry struct {
	Name    string // slash path relative to the spec root, without suffix.
	Title   string // final element of Name.
	Dir     string // directory part of Name; "" for the spec root itself.
	Fixture string // unrooted URL path of the spec's HTML fixture.
}

// SpecGroup contains the specs inside the same directory, sorted by name.
type SpecGroup struct {
	Dir   string
	Label string
	Specs []SpecEntry
}

// BuildSpecIndex scans the spec root for spec files matching glob (see
// DefaultSpecGlob) and returns the specs grouped by their directories. The
// group of the spec root comes first, followed by the other groups in
// directory order. A missing spec root simply has no specs.
func BuildSpecIndex(root string, glob string) ([]SpecGroup, error) {
	if glob == "" {
		glob = DefaultSpecGlob
	}
	matches, err := doublestar.Glob(os.DirFS(root), glob, doublestar.WithFilesOnly())
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	groups := map[string]*SpecGroup{}
	for _, match := range matches {
		name := strings.TrimSuffix(match, SpecSuffix)
		if name == match {
			name = strings.TrimSuffix(match, path.Ext(match))
		}
		dir, title := path.Split(name)
		dir = strings.TrimSuffix(dir, "/")
		group, ok := groups[dir]
		if !ok {
			label := dir
			if dir == "" {
				label = RootGroupLabel
			}
			group = &SpecGroup{Dir: dir, Label: label}
			groups[dir] = group
		}
		group.Specs = append(group.Specs, SpecEntry{
			Name:    name,
			Title:   title,
			Dir:     dir,
			Fixture: path.Join(string(RoleSpec), name+".html"),
		})
	}
	index := make([]SpecGroup, 0, len(groups))
	for _, group := range groups {
		sort.Slice(group.Specs, func(i, j int) bool {
			return group.Specs[i].Name < group.Specs[j].Name
		})
		index = append(index, *group)
	}
	sort.Slice(index, func(i, j int) bool { return index[i].Dir < index[j].Dir })
	return index, nil
}
