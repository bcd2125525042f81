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

package sass

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"strings"
)

// Importer returns the source of the stylesheet imported under name.
type Importer func(name string) ([]byte, error)

// ErrNoImporter is returned when a stylesheet imports another stylesheet but
// no Importer has been specified.
var ErrNoImporter = errors.New("no importer for @import")

// FSImporter returns an Importer loading stylesheets from the directory dir
// inside fsys. For an import name "foo" it tries "foo", "foo.sass" and the
// partial "_foo.sass", in this order.
func FSImporter(fsys fs.FS, dir string) Importer {
	return func(name string) ([]byte, error) {
		d, base := path.Split(name)
		candidates := []string{name}
		if path.Ext(name) != ".sass" {
			candidates = append(candidates,
				name+".sass",
				path.Join(d, "_"+base+".sass"))
		}
		for _, candidate := range candidates {
			src, err := fs.ReadFile(fsys, path.Join(dir, candidate))
			if err == nil {
				return src, nil
			}
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, err
			}
		}
		return nil, fmt.Errorf("cannot import %q: %w", name, fs.ErrNotExist)
	}
}

// Compile translates a stylesheet in the indented Sass syntax into CSS,
// using the nested output style. Imports are resolved using importer, which
// may be nil when the stylesheet doesn't import anything.
func Compile(src []byte, importer Importer) (string, error) {
	c := &compiler{
		importer:  importer,
		vars:      map[string]string{},
		importing: map[string]bool{},
	}
	nodes, err := c.parse(src, "")
	if err != nil {
		return "", err
	}
	if err := c.block(nodes, nil, 0); err != nil {
		return "", err
	}
	return c.render(), nil
}

// node is a single logical line of the indented syntax together with the
// lines nested below it.
type node struct {
	text     string
	file     string
	line     int
	indent   int
	children []*node
}

func (n *node) errorf(format string, args ...any) error {
	where := fmt.Sprintf("line %d", n.line)
	if n.file != "" {
		where = n.file + ": " + where
	}
	return fmt.Errorf(where+": "+format, args...)
}

type property struct {
	name  string
	value string
}

type rule struct {
	selectors []string
	props     []property
	indent    int
	raw       string // directives passed through verbatim.
}

type compiler struct {
	importer  Importer
	vars      map[string]string
	importing map[string]bool
	rules     []*rule
}

type srcLine struct {
	text   string
	num    int
	indent int
}

// lines splits the source into logical lines, dropping blank lines as well
// as comments (including the lines indented below them) and joining
// selector lists continued over several lines.
func lines(src []byte) []srcLine {
	var result []srcLine
	commentIndent := -1
	for i, line := range bytes.Split(src, []byte("\n")) {
		num := i + 1
		raw := strings.ReplaceAll(strings.TrimRight(string(line), "\r"), "\t", "  ")
		text := strings.TrimSpace(raw)
		if text == "" {
			continue
		}
		indent := len(raw) - len(strings.TrimLeft(raw, " "))
		if commentIndent >= 0 {
			if indent > commentIndent {
				continue
			}
			commentIndent = -1
		}
		if strings.HasPrefix(text, "//") || strings.HasPrefix(text, "/*") {
			commentIndent = indent
			continue
		}
		text = stripComment(text)
		if n := len(result); n > 0 && strings.HasSuffix(result[n-1].text, ",") &&
			!isProperty(result[n-1].text) && !strings.HasPrefix(result[n-1].text, "@") {
			result[n-1].text += " " + text
			continue
		}
		result = append(result, srcLine{text: text, num: num, indent: indent})
	}
	return result
}

// stripComment removes a trailing "//" comment from text. A "//" only starts
// a comment at the beginning or after whitespace, and never inside quotes or
// parentheses, so "url(http://...)" survives.
func stripComment(text string) string {
	var quote byte
	depth := 0
	for i := 0; i < len(text); i++ {
		ch := text[i]
		switch {
		case quote != 0:
			if ch == '\\' {
				i++
			} else if ch == quote {
				quote = 0
			}
		case ch == '"' || ch == '\'':
			quote = ch
		case ch == '(':
			depth++
		case ch == ')':
			if depth > 0 {
				depth--
			}
		case ch == '/' && depth == 0 && strings.HasPrefix(text[i:], "//") &&
			(i == 0 || text[i-1] == ' '):
			return strings.TrimRight(text[:i], " ")
		}
	}
	return text
}

// parse builds the node tree of src, splicing in imported stylesheets.
func (c *compiler) parse(src []byte, file string) ([]*node, error) {
	root := &node{indent: -1}
	stack := []*node{root}
	for _, l := range lines(src) {
		for stack[len(stack)-1].indent >= l.indent {
			stack = stack[:len(stack)-1]
		}
		n := &node{text: l.text, file: file, line: l.num, indent: l.indent}
		parent := stack[len(stack)-1]
		parent.children = append(parent.children, n)
		stack = append(stack, n)
	}
	return c.expandImports(root.children)
}

var cssImportRe = regexp.MustCompile(`^(url\(|https?://)|\.css$`)

// expandImports replaces @import directives of Sass stylesheets with the
// nodes of the imported stylesheets. Imports of plain CSS are kept.
func (c *compiler) expandImports(nodes []*node) ([]*node, error) {
	expanded := make([]*node, 0, len(nodes))
	for _, n := range nodes {
		if !strings.HasPrefix(n.text, "@import") {
			children, err := c.expandImports(n.children)
			if err != nil {
				return nil, err
			}
			n.children = children
			expanded = append(expanded, n)
			continue
		}
		for _, name := range strings.Split(strings.TrimSpace(strings.TrimPrefix(n.text, "@import")), ",") {
			name = strings.Trim(strings.TrimSpace(name), `"'`)
			if name == "" {
				return nil, n.errorf("empty @import")
			}
			if cssImportRe.MatchString(name) {
				expanded = append(expanded, &node{
					text: "@import " + name, file: n.file, line: n.line, indent: n.indent})
				continue
			}
			if c.importer == nil {
				return nil, n.errorf("%w %q", ErrNoImporter, name)
			}
			if c.importing[name] {
				return nil, n.errorf("circular @import of %q", name)
			}
			src, err := c.importer(name)
			if err != nil {
				return nil, n.errorf("%w", err)
			}
			c.importing[name] = true
			imported, err := c.parse(src, name)
			delete(c.importing, name)
			if err != nil {
				return nil, err
			}
			expanded = append(expanded, imported...)
		}
	}
	return expanded, nil
}

var (
	propertyRe    = regexp.MustCompile(`^(\*?[-\w]+):(?:\s+(.*))?$`)
	oldPropertyRe = regexp.MustCompile(`^:(\*?[-\w]+)\s+(.+)$`)
	variableRe    = regexp.MustCompile(`^(?:\$([-\w]+)\s*:|!([-\w]+)\s*(\|\|)?=)\s*(.*?)(\s+!default)?$`)
	referenceRe   = regexp.MustCompile(`[$!]([A-Za-z_][-\w]*)`)
)

func isProperty(text string) bool {
	return propertyRe.MatchString(text) || oldPropertyRe.MatchString(text)
}

// block evaluates nodes inside the context of the (already resolved)
// selectors, emitting a rule for the properties at this level first,
// followed by the rules of nested selectors.
func (c *compiler) block(nodes []*node, selectors []string, indent int) error {
	r := &rule{selectors: selectors, indent: indent}
	c.rules = append(c.rules, r)
	var nested []*node
	for _, n := range nodes {
		switch {
		case variableRe.MatchString(n.text):
			m := variableRe.FindStringSubmatch(n.text)
			name := m[1] + m[2]
			if _, defined := c.vars[name]; defined && (m[3] != "" || m[5] != "") {
				continue
			}
			c.vars[name] = c.substitute(m[4])
		case strings.HasPrefix(n.text, "@import"):
			if selectors != nil {
				return n.errorf("CSS @import must be at the top level")
			}
			c.rules = append(c.rules, &rule{raw: n.text + ";"})
		case strings.HasPrefix(n.text, "@"):
			return n.errorf("unsupported directive %q", n.text)
		case isProperty(n.text):
			if selectors == nil {
				return n.errorf("property %q outside of a rule", n.text)
			}
			if err := c.property(r, n, ""); err != nil {
				return err
			}
		default:
			nested = append(nested, n)
		}
	}
	if len(r.props) > 0 {
		indent++
	}
	for _, n := range nested {
		if err := c.block(n.children, combine(selectors, splitSelectors(n.text)), indent); err != nil {
			return err
		}
	}
	return nil
}

// property adds the property of node n to rule r, including any nested
// properties sharing n's name as their namespace.
func (c *compiler) property(r *rule, n *node, namespace string) error {
	var name, value string
	if m := oldPropertyRe.FindStringSubmatch(n.text); m != nil {
		name, value = m[1], m[2]
	} else if m := propertyRe.FindStringSubmatch(n.text); m != nil {
		name, value = m[1], m[2]
	}
	name = namespace + name
	if value = strings.TrimSpace(value); value != "" {
		r.props = append(r.props, property{name: name, value: c.substitute(value)})
	} else if len(n.children) == 0 {
		return n.errorf("property %q without value", name)
	}
	for _, child := range n.children {
		if !isProperty(child.text) {
			return child.errorf("only properties may be nested inside property %q", name)
		}
		if err := c.property(r, child, name+"-"); err != nil {
			return err
		}
	}
	return nil
}

// substitute replaces variable references with their values; unknown
// references such as "!important" are left untouched.
func (c *compiler) substitute(value string) string {
	return referenceRe.ReplaceAllStringFunc(value, func(ref string) string {
		if v, ok := c.vars[ref[1:]]; ok {
			return v
		}
		return ref
	})
}

func splitSelectors(text string) []string {
	var selectors []string
	for _, sel := range strings.Split(text, ",") {
		if sel = strings.Join(strings.Fields(sel), " "); sel != "" {
			selectors = append(selectors, sel)
		}
	}
	return selectors
}

// combine returns the selectors of a nested rule, given the selectors of its
// parent rule. A "&" in a nested selector stands for the parent selector.
func combine(parents, children []string) []string {
	if len(parents) == 0 {
		return children
	}
	combined := make([]string, 0, len(parents)*len(children))
	for _, parent := range parents {
		for _, child := range children {
			if strings.Contains(child, "&") {
				combined = append(combined, strings.ReplaceAll(child, "&", parent))
				continue
			}
			combined = append(combined, parent+" "+child)
		}
	}
	return combined
}

func (c *compiler) render() string {
	var css strings.Builder
	first := true
	for _, r := range c.rules {
		if r.raw != "" {
			css.WriteString(r.raw + "\n")
			continue
		}
		if len(r.props) == 0 {
			continue
		}
		if r.indent == 0 && !first {
			css.WriteString("\n")
		}
		first = false
		prefix := strings.Repeat("  ", r.indent)
		css.WriteString(prefix + strings.Join(r.selectors, ", ") + " {")
		for _, p := range r.props {
			css.WriteString("\n" + prefix + "  " + p.name + ": " + p.value + ";")
		}
		css.WriteString(" }\n")
	}
	return css.String()
}
