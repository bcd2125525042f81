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
	"bytes"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"time"
)

// BannerPrefix introduces the name of each member file inside a composed
// bundle.
const BannerPrefix = "////// "

// Bundle describes a set of asset files served as a single concatenated
// response. Members are the matches of each of the Patterns in turn, sorted
// within each pattern, without duplicates and without any file matching one
// of the Exclude expressions.
type Bundle struct {
	Name     string           // name the bundle is served under.
	Patterns []string         // fs.Glob patterns, in load order.
	Exclude  []*regexp.Regexp // members to leave out.
}

// BrowserRunnerBundle contains everything a single spec fixture needs in the
// browser. The multirunner, the query parser and the index page helper are
// not part of it.
var BrowserRunnerBundle = Bundle{
	Name: "browser-runner.js",
	Patterns: []string{
		"javascript/common/*.js",
		"javascript/browser/*.js",
	},
	Exclude: []*regexp.Regexp{
		regexp.MustCompile(`multirunner.js$`),
		regexp.MustCompile(`(?i)parsequery`),
		regexp.MustCompile(`index.js$`),
	},
}

// MultirunnerBundle contains the multirunner page script together with the
// query parser it relies on.
var MultirunnerBundle = Bundle{
	Name: "multirunner.js",
	Patterns: []string{
		"javascript/browser/parsequery.js",
		"javascript/browser/multirunner.js",
	},
}

// Members returns the (slash-separated) paths of the files inside fsys
// belonging to the bundle, in load order.
func (b Bundle) Members(fsys fs.FS) ([]string, error) {
	seen := map[string]bool{}
	members := []string{}
	for _, pattern := range b.Patterns {
		matches, err := fs.Glob(fsys, pattern)
		if err != nil {
			return nil, fmt.Errorf("bundle %s: %w", b.Name, err)
		}
		sort.Strings(matches)
	nextMatch:
		for _, match := range matches {
			if seen[match] {
				continue
			}
			for _, re := range b.Exclude {
				if re.MatchString(match) {
					continue nextMatch
				}
			}
			seen[match] = true
			members = append(members, match)
		}
	}
	return members, nil
}

// Composed is the result of concatenating a bundle's members.
type Composed struct {
	Members []string
	Content []byte
	ModTime time.Time // latest modification time of all members.
}

// Compose concatenates the members of bundle from fsys, prefixing each
// member's contents with a banner line naming the member. The modification
// time of the composed bundle is the latest modification time of its
// members.
func Compose(fsys fs.FS, bundle Bundle) (*Composed, error) {
	members, err := bundle.Members(fsys)
	if err != nil {
		return nil, err
	}
	var buff bytes.Buffer
	var modtime time.Time
	for _, member := range members {
		info, err := fs.Stat(fsys, member)
		if err != nil {
			return nil, err
		}
		if info.ModTime().After(modtime) {
			modtime = info.ModTime()
		}
		contents, err := fs.ReadFile(fsys, member)
		if err != nil {
			return nil, err
		}
		buff.WriteString(BannerPrefix + member + "\n")
		buff.Write(contents)
		if len(contents) > 0 && contents[len(contents)-1] != '\n' {
			buff.WriteByte('\n')
		}
	}
	return &Composed{
		Members: members,
		Content: buff.Bytes(),
		ModTime: modtime,
	}, nil
}
